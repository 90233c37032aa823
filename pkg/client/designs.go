package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/turtacn/PrintShop-Customizer/pkg/errors"
)

// DesignsClient manages customization designs.
type DesignsClient struct {
	client *Client
}

// ─────────────────────────────────────────────────────────────────────────────
// Resource types
// ─────────────────────────────────────────────────────────────────────────────

// TextureStatus is the load state of a logo image.
type TextureStatus struct {
	State  string `json:"state"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Reason string `json:"reason,omitempty"`
}

type Logo struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	ImageRef string        `json:"imageRef"`
	Texture  TextureStatus `json:"texture"`
}

// Placement is one selected location.  State is "needs_logo" or
// "configured".
type Placement struct {
	LocationID      string  `json:"locationId"`
	Label           string  `json:"label"`
	Side            string  `json:"side"`
	State           string  `json:"state"`
	LogoID          string  `json:"logoId,omitempty"`
	SizePercent     float64 `json:"sizePercent"`
	RotationDegrees float64 `json:"rotationDegrees"`
}

// Design is the server view of a customization session.
type Design struct {
	ID            string      `json:"id"`
	ProductType   string      `json:"productType"`
	ProductColor  string      `json:"productColor"`
	TermsAccepted bool        `json:"termsAccepted"`
	Readiness     string      `json:"readiness"`
	Ready         bool        `json:"ready"`
	Logos         []Logo      `json:"logos"`
	Placements    []Placement `json:"placements"`
	Version       int64       `json:"version"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// SelectedLocation is one placement inside a snapshot.
type SelectedLocation struct {
	LocationID      string  `json:"locationId"`
	LogoID          string  `json:"logoId,omitempty"`
	SizePercent     float64 `json:"sizePercent"`
	RotationDegrees float64 `json:"rotationDegrees"`
}

// Snapshot is the portable form of a design.
type Snapshot struct {
	ProductType       string             `json:"productType,omitempty"`
	ProductColor      string             `json:"productColor"`
	SelectedLocations []SelectedLocation `json:"selectedLocations"`
}

type LogoAsset struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageRef string `json:"imageRef"`
}

// ExportedSnapshot pairs a snapshot with the logos it references.
type ExportedSnapshot struct {
	Snapshot Snapshot    `json:"snapshot"`
	Logos    []LogoAsset `json:"logos"`
}

// FrameItem is one decal of a render frame.  Orientation is the raw
// quaternion.
type FrameItem struct {
	LocationID  string          `json:"locationId"`
	LogoID      string          `json:"logoId"`
	TextureRef  string          `json:"textureRef"`
	Side        string          `json:"side"`
	Position    [3]float64      `json:"position"`
	Rotation    [3]float64      `json:"rotation"`
	Scale       [3]float64      `json:"scale"`
	Orientation json.RawMessage `json:"orientation,omitempty"`
}

type SkippedLocation struct {
	LocationID string `json:"locationId"`
	Reason     string `json:"reason"`
	Detail     string `json:"detail,omitempty"`
}

// Frame is the render description of a design.
type Frame struct {
	ProductType string `json:"productType"`
	Material    struct {
		Archetype string `json:"archetype"`
		Color     string `json:"color"`
		Wrap      string `json:"wrap"`
	} `json:"material"`
	Items   []FrameItem       `json:"items"`
	Skipped []SkippedLocation `json:"skipped,omitempty"`
}

// LineItem is a priced order line.  Amounts are in minor currency units.
type LineItem struct {
	ProductType         string `json:"productType"`
	Quantity            int    `json:"quantity"`
	BaseUnit            int64  `json:"baseUnit"`
	ConfiguredLocations int    `json:"configuredLocations"`
	SurchargePerUnit    int64  `json:"surchargePerUnit"`
	UnitPrice           int64  `json:"unitPrice"`
	LineTotal           int64  `json:"lineTotal"`
	Currency            string `json:"currency"`
}

// QuoteRequest is a persisted quote or sample request.
type QuoteRequest struct {
	ID        string    `json:"id"`
	DesignID  string    `json:"designId"`
	Kind      string    `json:"kind"`
	Item      LineItem  `json:"item"`
	Snapshot  Snapshot  `json:"snapshot"`
	CreatedAt time.Time `json:"createdAt"`
}

// ResolveResult reports a texture batch merge.
type ResolveResult struct {
	Requested int     `json:"requested"`
	Applied   int     `json:"applied"`
	Failed    int     `json:"failed"`
	Design    *Design `json:"design"`
}

// PlacementUpdate changes the non-nil fields of a placement.
type PlacementUpdate struct {
	LogoID          *string  `json:"logoId,omitempty"`
	SizePercent     *float64 `json:"sizePercent,omitempty"`
	RotationDegrees *float64 `json:"rotationDegrees,omitempty"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Lifecycle
// ─────────────────────────────────────────────────────────────────────────────

// Create starts a design.  Empty values take the server defaults.
func (c *DesignsClient) Create(ctx context.Context, productType, productColor string) (*Design, error) {
	body := map[string]string{"productType": productType, "productColor": productColor}
	var d Design
	if err := c.client.post(ctx, "/designs", body, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *DesignsClient) Get(ctx context.Context, id string) (*Design, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	var d Design
	if err := c.client.get(ctx, designPath(id), &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *DesignsClient) Delete(ctx context.Context, id string) error {
	if err := requireID(id); err != nil {
		return err
	}
	return c.client.delete(ctx, designPath(id))
}

// ─────────────────────────────────────────────────────────────────────────────
// Logos
// ─────────────────────────────────────────────────────────────────────────────

// AddLogo uploads an image and returns the new logo id with the updated design.
func (c *DesignsClient) AddLogo(ctx context.Context, id, name, contentType string, data []byte) (string, *Design, error) {
	if err := requireID(id); err != nil {
		return "", nil, err
	}
	if len(data) == 0 {
		return "", nil, errors.InvalidParam("logo image is empty")
	}
	body := map[string]interface{}{"name": name, "contentType": contentType, "data": data}
	var resp struct {
		LogoID string  `json:"logoId"`
		Design *Design `json:"design"`
	}
	if err := c.client.post(ctx, designPath(id)+"/logos", body, &resp); err != nil {
		return "", nil, err
	}
	return resp.LogoID, resp.Design, nil
}

func (c *DesignsClient) RenameLogo(ctx context.Context, id, logoID, name string) (*Design, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	var d Design
	if err := c.client.patch(ctx, designPath(id)+"/logos/"+url.PathEscape(logoID), map[string]string{"name": name}, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *DesignsClient) RemoveLogo(ctx context.Context, id, logoID string) (*Design, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	var d Design
	if err := c.client.do(ctx, http.MethodDelete, designPath(id)+"/logos/"+url.PathEscape(logoID), nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Placements
// ─────────────────────────────────────────────────────────────────────────────

// ToggleLocation flips the selection of a location and reports whether it is
// selected afterwards.
func (c *DesignsClient) ToggleLocation(ctx context.Context, id, locationID string) (bool, *Design, error) {
	if err := requireID(id); err != nil {
		return false, nil, err
	}
	var resp struct {
		Selected bool    `json:"selected"`
		Design   *Design `json:"design"`
	}
	if err := c.client.post(ctx, designPath(id)+"/locations/"+url.PathEscape(locationID)+"/toggle", nil, &resp); err != nil {
		return false, nil, err
	}
	return resp.Selected, resp.Design, nil
}

func (c *DesignsClient) UpdatePlacement(ctx context.Context, id, locationID string, upd PlacementUpdate) (*Design, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	var d Design
	if err := c.client.patch(ctx, designPath(id)+"/locations/"+url.PathEscape(locationID), upd, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *DesignsClient) SetColor(ctx context.Context, id, color string) (*Design, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	var d Design
	if err := c.client.put(ctx, designPath(id)+"/color", map[string]string{"color": color}, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *DesignsClient) AcceptTerms(ctx context.Context, id string, accepted bool) (*Design, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	var d Design
	if err := c.client.put(ctx, designPath(id)+"/terms", map[string]bool{"accepted": accepted}, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Rendering
// ─────────────────────────────────────────────────────────────────────────────

func (c *DesignsClient) Render(ctx context.Context, id string) (*Frame, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	var f Frame
	if err := c.client.get(ctx, designPath(id)+"/render", &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// ResolveTextures loads every pending logo image of the design.
func (c *DesignsClient) ResolveTextures(ctx context.Context, id string) (*ResolveResult, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	var res ResolveResult
	if err := c.client.post(ctx, designPath(id)+"/textures/resolve", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Texture fetches the design's base material.  Color and Seed in opts are
// ignored; the design decides them.
func (c *DesignsClient) Texture(ctx context.Context, id string, opts TextureOptions) (*Texture, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	opts.Color, opts.Seed = "", nil
	var raw rawResponse
	if err := c.client.get(ctx, designPath(id)+"/texture"+opts.query(), &raw); err != nil {
		return nil, err
	}
	return textureFrom(&raw), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Pricing
// ─────────────────────────────────────────────────────────────────────────────

func (c *DesignsClient) Quote(ctx context.Context, id string, quantity int) (*LineItem, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, errors.New(errors.ErrCodeQuantityInvalid, "quantity must be at least 1").
			WithDetail("quantity=" + strconv.Itoa(quantity))
	}
	var item LineItem
	if err := c.client.get(ctx, designPath(id)+"/quote?quantity="+strconv.Itoa(quantity), &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// RequestQuote submits a "quote" or "sample" request for a ready design.
func (c *DesignsClient) RequestQuote(ctx context.Context, id string, quantity int, kind string) (*QuoteRequest, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	body := map[string]interface{}{"quantity": quantity, "kind": kind}
	var req QuoteRequest
	if err := c.client.post(ctx, designPath(id)+"/quote-requests", body, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Snapshots
// ─────────────────────────────────────────────────────────────────────────────

func (c *DesignsClient) ExportSnapshot(ctx context.Context, id string) (*ExportedSnapshot, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	var snap ExportedSnapshot
	if err := c.client.get(ctx, designPath(id)+"/snapshot", &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// ImportSnapshot restores an exported snapshot into a new design.
func (c *DesignsClient) ImportSnapshot(ctx context.Context, snap *ExportedSnapshot, termsAccepted bool) (*Design, error) {
	if snap == nil {
		return nil, errors.InvalidParam("snapshot is required")
	}
	body := map[string]interface{}{
		"snapshot":      snap.Snapshot,
		"logos":         snap.Logos,
		"termsAccepted": termsAccepted,
	}
	var d Design
	if err := c.client.post(ctx, "/designs/import", body, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func designPath(id string) string { return "/designs/" + url.PathEscape(id) }

func requireID(id string) error {
	if id == "" {
		return errors.InvalidParam("design id is required")
	}
	return nil
}

//Personal.AI order the ending
