package handlers

import (
	"context"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"

	appcustomization "github.com/turtacn/PrintShop-Customizer/internal/application/customization"
	"github.com/turtacn/PrintShop-Customizer/internal/application/rendering"
	domain "github.com/turtacn/PrintShop-Customizer/internal/domain/customization"
	"github.com/turtacn/PrintShop-Customizer/internal/domain/pricing"
	"github.com/turtacn/PrintShop-Customizer/internal/domain/render"
	"github.com/turtacn/PrintShop-Customizer/pkg/types/common"
)

type mockDesignService struct{ mock.Mock }

func (m *mockDesignService) ListProducts(ctx context.Context) []appcustomization.ProductSummary {
	return m.Called(ctx).Get(0).([]appcustomization.ProductSummary)
}

func (m *mockDesignService) Locations(ctx context.Context, pt domain.ProductType) ([]domain.PlacementLocation, error) {
	args := m.Called(ctx, pt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PlacementLocation), args.Error(1)
}

func (m *mockDesignService) view(args mock.Arguments) (*appcustomization.DesignView, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appcustomization.DesignView), args.Error(1)
}

func (m *mockDesignService) CreateDesign(ctx context.Context, in *appcustomization.CreateDesignInput) (*appcustomization.DesignView, error) {
	return m.view(m.Called(ctx, in))
}

func (m *mockDesignService) GetDesign(ctx context.Context, id domain.DesignID) (*appcustomization.DesignView, error) {
	return m.view(m.Called(ctx, id))
}

func (m *mockDesignService) DeleteDesign(ctx context.Context, id domain.DesignID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockDesignService) AddLogo(ctx context.Context, in *appcustomization.AddLogoInput) (*appcustomization.AddLogoResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appcustomization.AddLogoResult), args.Error(1)
}

func (m *mockDesignService) RenameLogo(ctx context.Context, id domain.DesignID, logoID domain.LogoID, name string) (*appcustomization.DesignView, error) {
	return m.view(m.Called(ctx, id, logoID, name))
}

func (m *mockDesignService) RemoveLogo(ctx context.Context, id domain.DesignID, logoID domain.LogoID) (*appcustomization.DesignView, error) {
	return m.view(m.Called(ctx, id, logoID))
}

func (m *mockDesignService) ToggleLocation(ctx context.Context, id domain.DesignID, loc domain.LocationID) (*appcustomization.ToggleResult, error) {
	args := m.Called(ctx, id, loc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appcustomization.ToggleResult), args.Error(1)
}

func (m *mockDesignService) UpdatePlacement(ctx context.Context, in *appcustomization.UpdatePlacementInput) (*appcustomization.DesignView, error) {
	return m.view(m.Called(ctx, in))
}

func (m *mockDesignService) SetProductColor(ctx context.Context, id domain.DesignID, color string) (*appcustomization.DesignView, error) {
	return m.view(m.Called(ctx, id, color))
}

func (m *mockDesignService) AcceptTerms(ctx context.Context, id domain.DesignID, accepted bool) (*appcustomization.DesignView, error) {
	return m.view(m.Called(ctx, id, accepted))
}

func (m *mockDesignService) ResolveTextures(ctx context.Context, id domain.DesignID) (*appcustomization.ResolveResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appcustomization.ResolveResult), args.Error(1)
}

func (m *mockDesignService) RenderFrame(ctx context.Context, id domain.DesignID) (*render.Frame, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*render.Frame), args.Error(1)
}

func (m *mockDesignService) Quote(ctx context.Context, id domain.DesignID, quantity int) (*pricing.LineItem, error) {
	args := m.Called(ctx, id, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricing.LineItem), args.Error(1)
}

func (m *mockDesignService) RequestQuote(ctx context.Context, in *appcustomization.RequestQuoteInput) (*pricing.QuoteRequest, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricing.QuoteRequest), args.Error(1)
}

func (m *mockDesignService) ExportSnapshot(ctx context.Context, id domain.DesignID) (*appcustomization.ExportedSnapshot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appcustomization.ExportedSnapshot), args.Error(1)
}

func (m *mockDesignService) ImportSnapshot(ctx context.Context, in *appcustomization.ImportSnapshotInput) (*appcustomization.DesignView, error) {
	return m.view(m.Called(ctx, in))
}

type mockTextureService struct{ mock.Mock }

func (m *mockTextureService) BaseTexture(ctx context.Context, in *rendering.BaseTextureInput) (*rendering.BaseTexture, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rendering.BaseTexture), args.Error(1)
}

func (m *mockTextureService) DesignTexture(ctx context.Context, id domain.DesignID, format string, size int) (*rendering.BaseTexture, error) {
	args := m.Called(ctx, id, format, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rendering.BaseTexture), args.Error(1)
}

func (m *mockTextureService) HandleDesignEvent(ctx context.Context, msg *common.Message) error {
	return m.Called(ctx, msg).Error(0)
}

// designRouter mounts h the way the API router does, without middleware.
func designRouter(h *DesignHandler, c *CatalogHandler) chi.Router {
	r := chi.NewRouter()
	if c != nil {
		r.Get("/catalog/products", c.ListProducts)
		r.Get("/catalog/products/{productType}/locations", c.Locations)
		r.Get("/catalog/products/{productType}/texture", c.Texture)
	}
	if h != nil {
		r.Post("/designs", h.Create)
		r.Post("/designs/import", h.ImportSnapshot)
		r.Route("/designs/{designID}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Delete("/", h.Delete)
			r.Post("/logos", h.AddLogo)
			r.Patch("/logos/{logoID}", h.RenameLogo)
			r.Delete("/logos/{logoID}", h.RemoveLogo)
			r.Post("/locations/{locationID}/toggle", h.ToggleLocation)
			r.Patch("/locations/{locationID}", h.UpdatePlacement)
			r.Put("/color", h.SetColor)
			r.Put("/terms", h.AcceptTerms)
			r.Get("/render", h.Render)
			r.Post("/textures/resolve", h.ResolveTextures)
			r.Get("/texture", h.Texture)
			r.Get("/quote", h.Quote)
			r.Post("/quote-requests", h.RequestQuote)
			r.Get("/snapshot", h.ExportSnapshot)
		})
	}
	return r
}

//Personal.AI order the ending
