package handlers

import (
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	appcustomization "github.com/turtacn/PrintShop-Customizer/internal/application/customization"
	"github.com/turtacn/PrintShop-Customizer/internal/application/rendering"
	domain "github.com/turtacn/PrintShop-Customizer/internal/domain/customization"
	"github.com/turtacn/PrintShop-Customizer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PrintShop-Customizer/pkg/errors"
)

// DesignHandler serves the /designs resource.
type DesignHandler struct {
	designs      appcustomization.Service
	textures     rendering.Service
	logger       logging.Logger
	maxBodySize  int64
	maxLogoBytes int64
}

// NewDesignHandler creates a DesignHandler.  maxLogoBytes bounds uploads;
// maxBodySize bounds JSON bodies.
func NewDesignHandler(designs appcustomization.Service, textures rendering.Service, logger logging.Logger, maxBodySize, maxLogoBytes int64) *DesignHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if maxLogoBytes <= 0 {
		maxLogoBytes = 5 << 20
	}
	return &DesignHandler{
		designs:      designs,
		textures:     textures,
		logger:       logger.Named("design-handler"),
		maxBodySize:  maxBodySize,
		maxLogoBytes: maxLogoBytes,
	}
}

func designID(r *http.Request) domain.DesignID {
	return domain.DesignID(chi.URLParam(r, "designID"))
}

// ─────────────────────────────────────────────────────────────────────────────
// Lifecycle
// ─────────────────────────────────────────────────────────────────────────────

// CreateDesignRequest is the body of POST /designs.
type CreateDesignRequest struct {
	ProductType  string `json:"productType"`
	ProductColor string `json:"productColor"`
}

func (h *DesignHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateDesignRequest
	if err := decodeJSON(w, r, h.maxBodySize, &req); err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	v, err := h.designs.CreateDesign(r.Context(), &appcustomization.CreateDesignInput{
		ProductType:  domain.ProductType(req.ProductType),
		ProductColor: req.ProductColor,
	})
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	w.Header().Set("Location", "/api/v1/designs/"+string(v.ID))
	writeJSON(w, http.StatusCreated, v)
}

func (h *DesignHandler) Get(w http.ResponseWriter, r *http.Request) {
	v, err := h.designs.GetDesign(r.Context(), designID(r))
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *DesignHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.designs.DeleteDesign(r.Context(), designID(r)); err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ─────────────────────────────────────────────────────────────────────────────
// Logos
// ─────────────────────────────────────────────────────────────────────────────

// AddLogoRequest is the JSON form of a logo upload.  Data is base64.
type AddLogoRequest struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"data"`
}

// AddLogo accepts multipart/form-data with "name" and "file" parts, or a
// JSON AddLogoRequest.
func (h *DesignHandler) AddLogo(w http.ResponseWriter, r *http.Request) {
	in, err := h.readLogo(w, r)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	in.DesignID = designID(r)
	res, err := h.designs.AddLogo(r.Context(), in)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *DesignHandler) readLogo(w http.ResponseWriter, r *http.Request) (*appcustomization.AddLogoInput, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var req AddLogoRequest
		// base64 inflates the payload by a third
		if err := decodeJSON(w, r, h.maxLogoBytes*4/3+4096, &req); err != nil {
			return nil, err
		}
		return &appcustomization.AddLogoInput{Name: req.Name, ContentType: req.ContentType, Data: req.Data}, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxLogoBytes+1<<16)
	if err := r.ParseMultipartForm(h.maxLogoBytes); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBadRequest, "malformed multipart body")
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, errors.InvalidParam("multipart part \"file\" is required")
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, h.maxLogoBytes+1))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBadRequest, "failed to read upload")
	}
	name := r.FormValue("name")
	if name == "" {
		name = strings.TrimSuffix(header.Filename, fileExt(header.Filename))
	}
	return &appcustomization.AddLogoInput{
		Name:        name,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func fileExt(name string) string {
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		return name[i:]
	}
	return ""
}

// RenameLogoRequest is the body of PATCH /designs/{id}/logos/{logoID}.
type RenameLogoRequest struct {
	Name string `json:"name"`
}

func (h *DesignHandler) RenameLogo(w http.ResponseWriter, r *http.Request) {
	var req RenameLogoRequest
	if err := decodeJSON(w, r, h.maxBodySize, &req); err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	v, err := h.designs.RenameLogo(r.Context(), designID(r), domain.LogoID(chi.URLParam(r, "logoID")), req.Name)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *DesignHandler) RemoveLogo(w http.ResponseWriter, r *http.Request) {
	v, err := h.designs.RemoveLogo(r.Context(), designID(r), domain.LogoID(chi.URLParam(r, "logoID")))
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// ─────────────────────────────────────────────────────────────────────────────
// Placements
// ─────────────────────────────────────────────────────────────────────────────

func (h *DesignHandler) ToggleLocation(w http.ResponseWriter, r *http.Request) {
	res, err := h.designs.ToggleLocation(r.Context(), designID(r), domain.LocationID(chi.URLParam(r, "locationID")))
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// UpdatePlacementRequest is the body of PATCH /designs/{id}/locations/{loc}.
// Absent fields are left unchanged.
type UpdatePlacementRequest struct {
	LogoID          *string  `json:"logoId"`
	SizePercent     *float64 `json:"sizePercent"`
	RotationDegrees *float64 `json:"rotationDegrees"`
}

func (h *DesignHandler) UpdatePlacement(w http.ResponseWriter, r *http.Request) {
	var req UpdatePlacementRequest
	if err := decodeJSON(w, r, h.maxBodySize, &req); err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	in := &appcustomization.UpdatePlacementInput{
		DesignID:        designID(r),
		LocationID:      domain.LocationID(chi.URLParam(r, "locationID")),
		SizePercent:     req.SizePercent,
		RotationDegrees: req.RotationDegrees,
	}
	if req.LogoID != nil {
		id := domain.LogoID(*req.LogoID)
		in.LogoID = &id
	}
	v, err := h.designs.UpdatePlacement(r.Context(), in)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// SetColorRequest is the body of PUT /designs/{id}/color.
type SetColorRequest struct {
	Color string `json:"color"`
}

func (h *DesignHandler) SetColor(w http.ResponseWriter, r *http.Request) {
	var req SetColorRequest
	if err := decodeJSON(w, r, h.maxBodySize, &req); err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	v, err := h.designs.SetProductColor(r.Context(), designID(r), req.Color)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// AcceptTermsRequest is the body of PUT /designs/{id}/terms.
type AcceptTermsRequest struct {
	Accepted bool `json:"accepted"`
}

func (h *DesignHandler) AcceptTerms(w http.ResponseWriter, r *http.Request) {
	var req AcceptTermsRequest
	if err := decodeJSON(w, r, h.maxBodySize, &req); err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	v, err := h.designs.AcceptTerms(r.Context(), designID(r), req.Accepted)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// ─────────────────────────────────────────────────────────────────────────────
// Rendering
// ─────────────────────────────────────────────────────────────────────────────

func (h *DesignHandler) Render(w http.ResponseWriter, r *http.Request) {
	frame, err := h.designs.RenderFrame(r.Context(), designID(r))
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, frame)
}

// ResolveTextures loads pending logo images synchronously.
func (h *DesignHandler) ResolveTextures(w http.ResponseWriter, r *http.Request) {
	res, err := h.designs.ResolveTextures(r.Context(), designID(r))
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Texture returns the design's base-material texture as an image.  Query
// parameters: format (webp|png), size.
func (h *DesignHandler) Texture(w http.ResponseWriter, r *http.Request) {
	if h.textures == nil {
		writeAppError(w, r, h.logger, errors.Unavailable("texture rendering is not configured"))
		return
	}
	size, err := queryInt(r, "size", 0)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	tex, err := h.textures.DesignTexture(r.Context(), designID(r), r.URL.Query().Get("format"), size)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeTexture(w, tex)
}

func writeTexture(w http.ResponseWriter, tex *rendering.BaseTexture) {
	w.Header().Set("Content-Type", tex.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(tex.Data)))
	w.Header().Set("ETag", `"`+tex.Digest+`"`)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Header().Set("X-Texture-Key", tex.Key)
	w.Header().Set("X-Texture-Wrap", tex.Wrap.String())
	if tex.URL != "" {
		w.Header().Set("X-Texture-URL", tex.URL)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(tex.Data)
}

// ─────────────────────────────────────────────────────────────────────────────
// Pricing
// ─────────────────────────────────────────────────────────────────────────────

func (h *DesignHandler) Quote(w http.ResponseWriter, r *http.Request) {
	qty, err := queryInt(r, "quantity", 1)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	item, err := h.designs.Quote(r.Context(), designID(r), qty)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// QuoteRequestBody is the body of POST /designs/{id}/quote-requests.
type QuoteRequestBody struct {
	Quantity int    `json:"quantity"`
	Kind     string `json:"kind"`
}

func (h *DesignHandler) RequestQuote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequestBody
	if err := decodeJSON(w, r, h.maxBodySize, &req); err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	out, err := h.designs.RequestQuote(r.Context(), &appcustomization.RequestQuoteInput{
		DesignID: designID(r),
		Quantity: req.Quantity,
		Kind:     req.Kind,
	})
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

// ─────────────────────────────────────────────────────────────────────────────
// Snapshots
// ─────────────────────────────────────────────────────────────────────────────

func (h *DesignHandler) ExportSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.designs.ExportSnapshot(r.Context(), designID(r))
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// ImportSnapshotRequest is the body of POST /designs/import.
type ImportSnapshotRequest struct {
	Snapshot      domain.Snapshot    `json:"snapshot"`
	Logos         []domain.LogoAsset `json:"logos"`
	TermsAccepted bool               `json:"termsAccepted"`
}

func (h *DesignHandler) ImportSnapshot(w http.ResponseWriter, r *http.Request) {
	var req ImportSnapshotRequest
	if err := decodeJSON(w, r, h.maxBodySize, &req); err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	v, err := h.designs.ImportSnapshot(r.Context(), &appcustomization.ImportSnapshotInput{
		Snapshot:      req.Snapshot,
		Logos:         req.Logos,
		TermsAccepted: req.TermsAccepted,
	})
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	w.Header().Set("Location", "/api/v1/designs/"+string(v.ID))
	writeJSON(w, http.StatusCreated, v)
}

//Personal.AI order the ending
