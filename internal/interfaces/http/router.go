package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/PrintShop-Customizer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PrintShop-Customizer/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/PrintShop-Customizer/internal/interfaces/http/handlers"
	"github.com/turtacn/PrintShop-Customizer/internal/interfaces/http/middleware"
)

// RouterConfig is everything the route tree is built from.  Nil handlers
// leave their routes unmounted; nil middleware is skipped.
type RouterConfig struct {
	DesignHandler  *handlers.DesignHandler
	CatalogHandler *handlers.CatalogHandler
	HealthHandler  *handlers.HealthHandler

	CORSMiddleware      *middleware.CORSMiddleware
	LoggingMiddleware   *middleware.LoggingMiddleware
	RateLimitMiddleware *middleware.RateLimitMiddleware
	AuthMiddleware      *middleware.AuthMiddleware

	Logger           logging.Logger
	MetricsCollector prometheus.MetricsCollector
}

// chain lists the optional middleware outermost first.  CORS runs before
// auth so that preflight requests never need credentials.
func (cfg RouterConfig) chain() []func(http.Handler) http.Handler {
	var out []func(http.Handler) http.Handler
	if m := cfg.CORSMiddleware; m != nil {
		out = append(out, m.Handler)
	}
	if m := cfg.LoggingMiddleware; m != nil {
		out = append(out, m.Handler)
	}
	if m := cfg.RateLimitMiddleware; m != nil {
		out = append(out, m.Handler)
	}
	if m := cfg.AuthMiddleware; m != nil {
		out = append(out, m.Handler)
	}
	return out
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.RealIP, chimw.Recoverer)
	r.Use(cfg.chain()...)

	if h := cfg.HealthHandler; h != nil {
		r.Get("/healthz", h.Liveness)
		r.Get("/healthz/detail", h.Detailed)
		r.Get("/readyz", h.Readiness)
	}
	if cfg.MetricsCollector != nil {
		r.Handle("/metrics", cfg.MetricsCollector.Handler())
	}

	r.Route("/api/v1", func(api chi.Router) {
		if cfg.CatalogHandler != nil {
			api.Route("/catalog/products", catalogRoutes(cfg.CatalogHandler))
		}
		if cfg.DesignHandler != nil {
			api.Route("/designs", designRoutes(cfg.DesignHandler))
		}
	})
	return r
}

func catalogRoutes(h *handlers.CatalogHandler) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Get("/{productType}/locations", h.Locations)
		r.Get("/{productType}/texture", h.Texture)
	}
}

func designRoutes(h *handlers.DesignHandler) func(chi.Router) {
	return func(r chi.Router) {
		r.Post("/", h.Create)
		r.Post("/import", h.ImportSnapshot)

		r.Route("/{designID}", func(d chi.Router) {
			d.Get("/", h.Get)
			d.Delete("/", h.Delete)
			d.Get("/snapshot", h.ExportSnapshot)

			d.Post("/logos", h.AddLogo)
			d.Patch("/logos/{logoID}", h.RenameLogo)
			d.Delete("/logos/{logoID}", h.RemoveLogo)

			d.Post("/locations/{locationID}/toggle", h.ToggleLocation)
			d.Patch("/locations/{locationID}", h.UpdatePlacement)
			d.Put("/color", h.SetColor)
			d.Put("/terms", h.AcceptTerms)

			d.Get("/render", h.Render)
			d.Get("/texture", h.Texture)
			d.Post("/textures/resolve", h.ResolveTextures)

			d.Get("/quote", h.Quote)
			d.Post("/quote-requests", h.RequestQuote)
		})
	}
}

//Personal.AI order the ending
