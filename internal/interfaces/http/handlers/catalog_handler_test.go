package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appcustomization "github.com/turtacn/PrintShop-Customizer/internal/application/customization"
	"github.com/turtacn/PrintShop-Customizer/internal/application/rendering"
	domain "github.com/turtacn/PrintShop-Customizer/internal/domain/customization"
	"github.com/turtacn/PrintShop-Customizer/internal/domain/render"
	"github.com/turtacn/PrintShop-Customizer/pkg/errors"
)

func TestCatalogHandler_ListProducts(t *testing.T) {
	svc := new(mockDesignService)
	svc.On("ListProducts", mock.Anything).Return([]appcustomization.ProductSummary{
		{Type: domain.ProductTShirt, Label: "T-Shirt", Locations: 8},
		{Type: domain.ProductBusinessCard, Label: "Business Card", Locations: 3},
	})
	h := designRouter(nil, NewCatalogHandler(svc, nil, nil))

	w := do(h, http.MethodGet, "/catalog/products", "")

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Products []appcustomization.ProductSummary `json:"products"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Products, 2)
	assert.Equal(t, 8, body.Products[0].Locations)
}

func TestCatalogHandler_Locations(t *testing.T) {
	svc := new(mockDesignService)
	catalog := domain.DefaultCatalog()
	locs, err := catalog.LocationsFor(domain.ProductBusinessCard)
	require.NoError(t, err)
	svc.On("Locations", mock.Anything, domain.ProductBusinessCard).Return(locs, nil)
	svc.On("Locations", mock.Anything, domain.ProductType("mug")).
		Return(nil, errors.New(errors.ErrCodeProductTypeUnknown, "unknown product type"))
	h := designRouter(nil, NewCatalogHandler(svc, nil, nil))

	w := do(h, http.MethodGet, "/catalog/products/business-card/locations", "")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		ProductType string            `json:"productType"`
		Locations   []json.RawMessage `json:"locations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "business-card", body.ProductType)
	assert.Len(t, body.Locations, 3)

	w = do(h, http.MethodGet, "/catalog/products/mug/locations", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, string(errors.ErrCodeProductTypeUnknown), decodeError(t, w).Code)
}

func TestCatalogHandler_Texture(t *testing.T) {
	tex := new(mockTextureService)
	seed := uint64(42)
	tex.On("BaseTexture", mock.Anything, &rendering.BaseTextureInput{
		ProductType: domain.ProductTShirt,
		Color:       domain.DefaultProductColor,
		Seed:        &seed,
		Format:      "webp",
		Size:        128,
	}).Return(&rendering.BaseTexture{
		Key:         "textures/f00.webp",
		ContentType: "image/webp",
		Digest:      "f00",
		Wrap:        render.WrapRepeat,
		Data:        []byte("RIFF"),
	}, nil)
	h := designRouter(nil, NewCatalogHandler(new(mockDesignService), tex, nil))

	w := do(h, http.MethodGet, "/catalog/products/tshirt/texture?seed=42&format=webp&size=128", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/webp", w.Header().Get("Content-Type"))
	assert.Empty(t, w.Header().Get("X-Texture-URL"))
	assert.Equal(t, "RIFF", w.Body.String())
	tex.AssertExpectations(t)

	w = do(h, http.MethodGet, "/catalog/products/tshirt/texture?seed=-1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "seed=-1", decodeError(t, w).Detail)
}

func TestCatalogHandler_TextureUnconfigured(t *testing.T) {
	h := designRouter(nil, NewCatalogHandler(new(mockDesignService), nil, nil))
	w := do(h, http.MethodGet, "/catalog/products/tshirt/texture", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

//Personal.AI order the ending
