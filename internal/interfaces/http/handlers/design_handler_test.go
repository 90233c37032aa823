package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appcustomization "github.com/turtacn/PrintShop-Customizer/internal/application/customization"
	"github.com/turtacn/PrintShop-Customizer/internal/application/rendering"
	domain "github.com/turtacn/PrintShop-Customizer/internal/domain/customization"
	"github.com/turtacn/PrintShop-Customizer/internal/domain/pricing"
	"github.com/turtacn/PrintShop-Customizer/internal/domain/render"
	"github.com/turtacn/PrintShop-Customizer/internal/testutil"
	"github.com/turtacn/PrintShop-Customizer/pkg/errors"
)

const testDesign = domain.DesignID("d-1")

func newDesignFixture(t *testing.T) (*mockDesignService, *mockTextureService, http.Handler, *testutil.MockLogger) {
	t.Helper()
	svc := new(mockDesignService)
	tex := new(mockTextureService)
	logger := testutil.NewMockLogger()
	h := NewDesignHandler(svc, tex, logger, 4096, 1024)
	t.Cleanup(func() { svc.AssertExpectations(t) })
	return svc, tex, designRouter(h, nil), logger
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestDesignHandler_Create(t *testing.T) {
	svc, _, h, _ := newDesignFixture(t)
	svc.On("CreateDesign", mock.Anything, &appcustomization.CreateDesignInput{
		ProductType:  domain.ProductHoodie,
		ProductColor: "#112233",
	}).Return(&appcustomization.DesignView{ID: testDesign, ProductType: domain.ProductHoodie}, nil)

	w := do(h, http.MethodPost, "/designs", `{"productType":"hoodie","productColor":"#112233"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "/api/v1/designs/d-1", w.Header().Get("Location"))
	var v appcustomization.DesignView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	assert.Equal(t, testDesign, v.ID)
}

func TestDesignHandler_Create_BadBodies(t *testing.T) {
	_, _, h, _ := newDesignFixture(t)

	cases := map[string]string{
		"malformed":     `{"productType":`,
		"unknown field": `{"productType":"tshirt","price":3}`,
		"too large":     `{"productType":"` + strings.Repeat("x", 5000) + `"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w := do(h, http.MethodPost, "/designs", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, string(errors.ErrCodeBadRequest), decodeError(t, w).Code)
		})
	}

	t.Run("empty", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/designs", http.NoBody)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "request body is required", decodeError(t, w).Message)
	})
}

func TestDesignHandler_ErrorMapping(t *testing.T) {
	svc, _, h, logger := newDesignFixture(t)
	svc.On("GetDesign", mock.Anything, domain.DesignID("missing")).
		Return(nil, errors.New(errors.ErrCodeDesignNotFound, "design not found").WithDetail("id=missing"))
	svc.On("GetDesign", mock.Anything, domain.DesignID("broken")).
		Return(nil, errors.New(errors.ErrCodeDatabaseError, "pq: connection refused"))
	svc.On("GetDesign", mock.Anything, domain.DesignID("locked")).
		Return(nil, errors.New(errors.ErrCodeDesignLocked, "design is locked by another request"))

	w := do(h, http.MethodGet, "/designs/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, string(errors.ErrCodeDesignNotFound), resp.Code)
	assert.Equal(t, "id=missing", resp.Detail)

	w = do(h, http.MethodGet, "/designs/broken", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp = decodeError(t, w)
	assert.Equal(t, string(errors.ErrCodeInternal), resp.Code)
	assert.NotContains(t, w.Body.String(), "pq:")
	assert.True(t, logger.HasMessage("error", "Request failed"))

	w = do(h, http.MethodGet, "/designs/locked", "")
	assert.Equal(t, http.StatusLocked, w.Code)
}

func TestDesignHandler_Delete(t *testing.T) {
	svc, _, h, _ := newDesignFixture(t)
	svc.On("DeleteDesign", mock.Anything, testDesign).Return(nil)

	w := do(h, http.MethodDelete, "/designs/d-1", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.Bytes())
}

func TestDesignHandler_AddLogo_JSON(t *testing.T) {
	svc, _, h, _ := newDesignFixture(t)
	svc.On("AddLogo", mock.Anything, &appcustomization.AddLogoInput{
		DesignID:    testDesign,
		Name:        "Acme",
		ContentType: "image/png",
		Data:        []byte("png!"),
	}).Return(&appcustomization.AddLogoResult{LogoID: "logo-1"}, nil)

	// "cG5nIQ==" is base64 for "png!"
	w := do(h, http.MethodPost, "/designs/d-1/logos", `{"name":"Acme","contentType":"image/png","data":"cG5nIQ=="}`)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"logoId":"logo-1"`)
}

func TestDesignHandler_AddLogo_Multipart(t *testing.T) {
	svc, _, h, _ := newDesignFixture(t)
	svc.On("AddLogo", mock.Anything, mock.MatchedBy(func(in *appcustomization.AddLogoInput) bool {
		return in.DesignID == testDesign && in.Name == "brand" && string(in.Data) == "\x89PNG"
	})).Return(&appcustomization.AddLogoResult{LogoID: "logo-2"}, nil)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "brand.png")
	require.NoError(t, err)
	_, _ = part.Write([]byte("\x89PNG"))
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/designs/d-1/logos", &body)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestDesignHandler_AddLogo_MissingFile(t *testing.T) {
	_, _, h, _ := newDesignFixture(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("name", "nothing"))
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/designs/d-1/logos", &body)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w).Message, `"file"`)
}

func TestDesignHandler_LogoRenameAndRemove(t *testing.T) {
	svc, _, h, _ := newDesignFixture(t)
	svc.On("RenameLogo", mock.Anything, testDesign, domain.LogoID("logo-1"), "New").
		Return(&appcustomization.DesignView{ID: testDesign}, nil)
	svc.On("RemoveLogo", mock.Anything, testDesign, domain.LogoID("logo-1")).
		Return(nil, errors.New(errors.ErrCodeLogoNotFound, "logo not found"))

	assert.Equal(t, http.StatusOK, do(h, http.MethodPatch, "/designs/d-1/logos/logo-1", `{"name":"New"}`).Code)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodDelete, "/designs/d-1/logos/logo-1", "").Code)
}

func TestDesignHandler_Placements(t *testing.T) {
	svc, _, h, _ := newDesignFixture(t)
	svc.On("ToggleLocation", mock.Anything, testDesign, domain.FrontCenter).
		Return(&appcustomization.ToggleResult{Selected: true}, nil)
	svc.On("ToggleLocation", mock.Anything, testDesign, domain.LocationID("collar")).
		Return(nil, errors.New(errors.ErrCodeLocationUnknown, "unknown placement location"))
	svc.On("UpdatePlacement", mock.Anything, mock.MatchedBy(func(in *appcustomization.UpdatePlacementInput) bool {
		return in.LocationID == domain.FrontCenter &&
			in.LogoID != nil && *in.LogoID == "logo-1" &&
			in.SizePercent != nil && *in.SizePercent == 50 &&
			in.RotationDegrees == nil
	})).Return(&appcustomization.DesignView{ID: testDesign}, nil)

	w := do(h, http.MethodPost, "/designs/d-1/locations/front-center/toggle", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"selected":true`)

	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, "/designs/d-1/locations/collar/toggle", "").Code)

	w = do(h, http.MethodPatch, "/designs/d-1/locations/front-center", `{"logoId":"logo-1","sizePercent":50}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDesignHandler_ColorAndTerms(t *testing.T) {
	svc, _, h, _ := newDesignFixture(t)
	svc.On("SetProductColor", mock.Anything, testDesign, "red").
		Return(nil, errors.New(errors.ErrCodeProductColorInvalid, "invalid product color"))
	svc.On("AcceptTerms", mock.Anything, testDesign, true).
		Return(&appcustomization.DesignView{ID: testDesign, TermsAccepted: true}, nil)

	w := do(h, http.MethodPut, "/designs/d-1/color", `{"color":"red"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(errors.ErrCodeProductColorInvalid), decodeError(t, w).Code)

	w = do(h, http.MethodPut, "/designs/d-1/terms", `{"accepted":true}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"termsAccepted":true`)
}

func TestDesignHandler_RenderAndResolve(t *testing.T) {
	svc, _, h, _ := newDesignFixture(t)
	svc.On("RenderFrame", mock.Anything, testDesign).Return(&render.Frame{}, nil)
	svc.On("ResolveTextures", mock.Anything, testDesign).
		Return(&appcustomization.ResolveResult{Requested: 2, Applied: 1, Failed: 1}, nil)

	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/designs/d-1/render", "").Code)

	w := do(h, http.MethodPost, "/designs/d-1/textures/resolve", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"failed":1`)
}

func TestDesignHandler_Texture(t *testing.T) {
	_, tex, h, _ := newDesignFixture(t)
	tex.On("DesignTexture", mock.Anything, testDesign, "png", 64).Return(&rendering.BaseTexture{
		Key:         "textures/abc.png",
		URL:         "http://minio/textures/abc.png",
		ContentType: "image/png",
		Digest:      "abc",
		Wrap:        render.WrapRepeat,
		Data:        []byte("img"),
	}, nil)

	w := do(h, http.MethodGet, "/designs/d-1/texture?format=png&size=64", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, `"abc"`, w.Header().Get("ETag"))
	assert.Equal(t, "textures/abc.png", w.Header().Get("X-Texture-Key"))
	assert.Equal(t, "repeat", w.Header().Get("X-Texture-Wrap"))
	assert.Equal(t, "http://minio/textures/abc.png", w.Header().Get("X-Texture-URL"))
	assert.Equal(t, "img", w.Body.String())

	w = do(h, http.MethodGet, "/designs/d-1/texture?size=big", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	tex.AssertExpectations(t)
}

func TestDesignHandler_TextureUnconfigured(t *testing.T) {
	h := designRouter(NewDesignHandler(new(mockDesignService), nil, nil, 0, 0), nil)
	assert.Equal(t, http.StatusServiceUnavailable, do(h, http.MethodGet, "/designs/d-1/texture", "").Code)
}

func TestDesignHandler_Quote(t *testing.T) {
	svc, _, h, _ := newDesignFixture(t)
	svc.On("Quote", mock.Anything, testDesign, 1).
		Return(&pricing.LineItem{Quantity: 1, LineTotal: 2000, Currency: "INR"}, nil)
	svc.On("Quote", mock.Anything, testDesign, 5).
		Return(&pricing.LineItem{Quantity: 5, SurchargePerUnit: 100, UnitPrice: 2500, LineTotal: 12500, Currency: "INR"}, nil)
	svc.On("Quote", mock.Anything, testDesign, 0).
		Return(nil, errors.New(errors.ErrCodeQuantityInvalid, "quantity must be at least 1"))

	w := do(h, http.MethodGet, "/designs/d-1/quote", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"lineTotal":2000`)

	w = do(h, http.MethodGet, "/designs/d-1/quote?quantity=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"lineTotal":12500`)

	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodGet, "/designs/d-1/quote?quantity=0", "").Code)
}

func TestDesignHandler_RequestQuote(t *testing.T) {
	svc, _, h, _ := newDesignFixture(t)
	svc.On("RequestQuote", mock.Anything, &appcustomization.RequestQuoteInput{
		DesignID: testDesign, Quantity: 10, Kind: "quote",
	}).Return(&pricing.QuoteRequest{ID: "q-1", DesignID: testDesign, Kind: pricing.RequestQuote}, nil)
	svc.On("RequestQuote", mock.Anything, &appcustomization.RequestQuoteInput{
		DesignID: testDesign, Quantity: 1, Kind: "sample",
	}).Return(nil, errors.New(errors.ErrCodeDesignNotReady, "design is not ready"))

	w := do(h, http.MethodPost, "/designs/d-1/quote-requests", `{"quantity":10,"kind":"quote"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"q-1"`)

	w = do(h, http.MethodPost, "/designs/d-1/quote-requests", `{"quantity":1,"kind":"sample"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, string(errors.ErrCodeDesignNotReady), decodeError(t, w).Code)
}

func TestDesignHandler_Snapshots(t *testing.T) {
	svc, _, h, _ := newDesignFixture(t)
	snap := domain.Snapshot{
		ProductType:  domain.ProductTShirt,
		ProductColor: "#FFFFFF",
		SelectedLocations: []domain.SelectedLocation{
			{LocationID: domain.FrontCenter, LogoID: "logo-1", SizePercent: 35},
		},
	}
	svc.On("ExportSnapshot", mock.Anything, testDesign).
		Return(&appcustomization.ExportedSnapshot{Snapshot: snap}, nil)
	svc.On("ImportSnapshot", mock.Anything, mock.MatchedBy(func(in *appcustomization.ImportSnapshotInput) bool {
		return in.TermsAccepted && in.Snapshot.ProductType == domain.ProductTShirt &&
			len(in.Snapshot.SelectedLocations) == 1 &&
			in.Snapshot.SelectedLocations[0].LocationID == domain.FrontCenter
	})).Return(&appcustomization.DesignView{ID: "d-2"}, nil)

	w := do(h, http.MethodGet, "/designs/d-1/snapshot", "")
	require.Equal(t, http.StatusOK, w.Code)

	var exported appcustomization.ExportedSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &exported))
	body, err := json.Marshal(ImportSnapshotRequest{Snapshot: exported.Snapshot, TermsAccepted: true})
	require.NoError(t, err)

	w = do(h, http.MethodPost, "/designs/import", string(body))
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "/api/v1/designs/d-2", w.Header().Get("Location"))
}

//Personal.AI order the ending
