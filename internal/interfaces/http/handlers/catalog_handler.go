package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	appcustomization "github.com/turtacn/PrintShop-Customizer/internal/application/customization"
	"github.com/turtacn/PrintShop-Customizer/internal/application/rendering"
	domain "github.com/turtacn/PrintShop-Customizer/internal/domain/customization"
	"github.com/turtacn/PrintShop-Customizer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PrintShop-Customizer/pkg/errors"
)

// CatalogHandler serves the read-only product catalog.
type CatalogHandler struct {
	designs  appcustomization.Service
	textures rendering.Service
	logger   logging.Logger
}

func NewCatalogHandler(designs appcustomization.Service, textures rendering.Service, logger logging.Logger) *CatalogHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &CatalogHandler{designs: designs, textures: textures, logger: logger.Named("catalog-handler")}
}

// ListProducts handles GET /catalog/products.
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"products": h.designs.ListProducts(r.Context()),
	})
}

// Locations handles GET /catalog/products/{productType}/locations.
func (h *CatalogHandler) Locations(w http.ResponseWriter, r *http.Request) {
	pt := domain.ProductType(chi.URLParam(r, "productType"))
	locs, err := h.designs.Locations(r.Context(), pt)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"productType": pt,
		"locations":   locs,
	})
}

// Texture handles GET /catalog/products/{productType}/texture?color=&seed=&format=&size=.
func (h *CatalogHandler) Texture(w http.ResponseWriter, r *http.Request) {
	if h.textures == nil {
		writeAppError(w, r, h.logger, errors.Unavailable("texture rendering is not configured"))
		return
	}
	q := r.URL.Query()
	in := &rendering.BaseTextureInput{
		ProductType: domain.ProductType(chi.URLParam(r, "productType")),
		Color:       q.Get("color"),
		Format:      q.Get("format"),
	}
	if in.Color == "" {
		in.Color = domain.DefaultProductColor
	}
	if s := q.Get("seed"); s != "" {
		seed, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			writeAppError(w, r, h.logger, errors.InvalidParam("seed must be an unsigned integer").WithDetail("seed="+s))
			return
		}
		in.Seed = &seed
	}
	size, err := queryInt(r, "size", 0)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	in.Size = size

	tex, err := h.textures.BaseTexture(r.Context(), in)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeTexture(w, tex)
}

//Personal.AI order the ending
