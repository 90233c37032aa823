package client

import (
	"context"
	"net/url"
	"strconv"

	"github.com/turtacn/PrintShop-Customizer/pkg/errors"
)

// CatalogClient reads the product catalog.
type CatalogClient struct {
	client *Client
}

// Product summarizes one product type.
type Product struct {
	Type      string `json:"type"`
	Label     string `json:"label"`
	Archetype string `json:"archetype"`
	Locations int    `json:"locations"`
}

// Anchor positions a location on the product mesh.
type Anchor struct {
	Offset       [3]float64 `json:"offset"`
	BaseRotation [3]float64 `json:"baseRotation"`
	Side         string     `json:"side"`
}

// Location is a placement slot on a product.
type Location struct {
	ID        string  `json:"id"`
	Label     string  `json:"label"`
	Anchor    Anchor  `json:"anchor"`
	BaseScale float64 `json:"baseScale"`
	Popular   bool    `json:"popular"`
	SizeClass string  `json:"sizeClass"`
}

// Texture is a rendered material image.
type Texture struct {
	ContentType string
	ETag        string
	Key         string
	Wrap        string
	URL         string
	Data        []byte
}

// TextureOptions selects the encoding of a texture.  Zero values use the
// server defaults.
type TextureOptions struct {
	Color  string
	Seed   *uint64
	Format string
	Size   int
}

func (o TextureOptions) query() string {
	q := url.Values{}
	if o.Color != "" {
		q.Set("color", o.Color)
	}
	if o.Seed != nil {
		q.Set("seed", strconv.FormatUint(*o.Seed, 10))
	}
	if o.Format != "" {
		q.Set("format", o.Format)
	}
	if o.Size > 0 {
		q.Set("size", strconv.Itoa(o.Size))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// ListProducts returns every product in the catalog.
func (c *CatalogClient) ListProducts(ctx context.Context) ([]Product, error) {
	var resp struct {
		Products []Product `json:"products"`
	}
	if err := c.client.get(ctx, "/catalog/products", &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

// Locations returns the placement locations of productType in catalog order.
func (c *CatalogClient) Locations(ctx context.Context, productType string) ([]Location, error) {
	if productType == "" {
		return nil, errors.InvalidParam("productType is required")
	}
	var resp struct {
		Locations []Location `json:"locations"`
	}
	if err := c.client.get(ctx, "/catalog/products/"+url.PathEscape(productType)+"/locations", &resp); err != nil {
		return nil, err
	}
	return resp.Locations, nil
}

// Texture renders the base material of productType.
func (c *CatalogClient) Texture(ctx context.Context, productType string, opts TextureOptions) (*Texture, error) {
	if productType == "" {
		return nil, errors.InvalidParam("productType is required")
	}
	var raw rawResponse
	if err := c.client.get(ctx, "/catalog/products/"+url.PathEscape(productType)+"/texture"+opts.query(), &raw); err != nil {
		return nil, err
	}
	return textureFrom(&raw), nil
}

func textureFrom(raw *rawResponse) *Texture {
	return &Texture{
		ContentType: raw.Header.Get("Content-Type"),
		ETag:        raw.Header.Get("ETag"),
		Key:         raw.Header.Get("X-Texture-Key"),
		Wrap:        raw.Header.Get("X-Texture-Wrap"),
		URL:         raw.Header.Get("X-Texture-URL"),
		Data:        raw.Body,
	}
}

//Personal.AI order the ending
