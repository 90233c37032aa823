// Package customization provides the application-level service for product
// customization designs.  It sits between the HTTP/CLI interfaces and the
// design aggregate, adding persistence, locking, object storage and events.
package customization

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	domain "github.com/turtacn/PrintShop-Customizer/internal/domain/customization"
	"github.com/turtacn/PrintShop-Customizer/internal/domain/pricing"
	"github.com/turtacn/PrintShop-Customizer/internal/domain/render"
	"github.com/turtacn/PrintShop-Customizer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PrintShop-Customizer/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/PrintShop-Customizer/pkg/errors"
	"github.com/turtacn/PrintShop-Customizer/pkg/types/common"
)

// Service defines the interface for design operations.
type Service interface {
	ListProducts(ctx context.Context) []ProductSummary
	Locations(ctx context.Context, productType domain.ProductType) ([]domain.PlacementLocation, error)

	CreateDesign(ctx context.Context, input *CreateDesignInput) (*DesignView, error)
	GetDesign(ctx context.Context, id domain.DesignID) (*DesignView, error)
	DeleteDesign(ctx context.Context, id domain.DesignID) error

	AddLogo(ctx context.Context, input *AddLogoInput) (*AddLogoResult, error)
	RenameLogo(ctx context.Context, id domain.DesignID, logoID domain.LogoID, name string) (*DesignView, error)
	RemoveLogo(ctx context.Context, id domain.DesignID, logoID domain.LogoID) (*DesignView, error)

	ToggleLocation(ctx context.Context, id domain.DesignID, location domain.LocationID) (*ToggleResult, error)
	UpdatePlacement(ctx context.Context, input *UpdatePlacementInput) (*DesignView, error)
	SetProductColor(ctx context.Context, id domain.DesignID, color string) (*DesignView, error)
	AcceptTerms(ctx context.Context, id domain.DesignID, accepted bool) (*DesignView, error)

	ResolveTextures(ctx context.Context, id domain.DesignID) (*ResolveResult, error)
	RenderFrame(ctx context.Context, id domain.DesignID) (*render.Frame, error)

	Quote(ctx context.Context, id domain.DesignID, quantity int) (*pricing.LineItem, error)
	RequestQuote(ctx context.Context, input *RequestQuoteInput) (*pricing.QuoteRequest, error)

	ExportSnapshot(ctx context.Context, id domain.DesignID) (*ExportedSnapshot, error)
	ImportSnapshot(ctx context.Context, input *ImportSnapshotInput) (*DesignView, error)
}

// CreateDesignInput contains input for creating a design.  An empty product
// type selects the t-shirt.
type CreateDesignInput struct {
	ProductType  domain.ProductType
	ProductColor string
}

// AddLogoInput carries an uploaded logo image.
type AddLogoInput struct {
	DesignID    domain.DesignID
	Name        string
	ContentType string
	Data        []byte
}

// AddLogoResult is the registered logo and the updated design.
type AddLogoResult struct {
	LogoID domain.LogoID `json:"logoId"`
	Design *DesignView   `json:"design"`
}

// UpdatePlacementInput mutates the fields that are non-nil.
type UpdatePlacementInput struct {
	DesignID        domain.DesignID
	LocationID      domain.LocationID
	LogoID          *domain.LogoID
	SizePercent     *float64
	RotationDegrees *float64
}

// ToggleResult reports whether the location is selected after the toggle.
type ToggleResult struct {
	Selected bool        `json:"selected"`
	Design   *DesignView `json:"design"`
}

// ResolveResult reports a texture batch merge.
type ResolveResult struct {
	Requested int         `json:"requested"`
	Applied   int         `json:"applied"`
	Failed    int         `json:"failed"`
	Design    *DesignView `json:"design"`
}

// RequestQuoteInput contains input for a quote or sample request.
type RequestQuoteInput struct {
	DesignID domain.DesignID
	Quantity int
	Kind     string
}

// ImportSnapshotInput restores a snapshot into a new design.  Logos must
// contain every logo the snapshot references.
type ImportSnapshotInput struct {
	Snapshot      domain.Snapshot
	Logos         []domain.LogoAsset
	TermsAccepted bool
}

// ServiceConfig tunes the design service.
type ServiceConfig struct {
	MaxLogoBytes int64
	// MaxLogoDimension bounds the declared width and height of an upload.
	MaxLogoDimension int
	// BackgroundResolve loads logo textures in-process after each upload
	// instead of leaving them to the worker.
	BackgroundResolve bool
	ResolveTimeout    time.Duration
}

// serviceImpl implements the Service interface.
type serviceImpl struct {
	catalog   *domain.Catalog
	repo      domain.Repository
	requests  pricing.RequestRepository
	policy    pricing.Policy
	cache     DesignCache
	locker    Locker
	logos     LogoStore
	loader    TextureLoader
	publisher EventPublisher
	metrics   *prometheus.AppMetrics
	logger    logging.Logger
	cfg       ServiceConfig
	now       func() time.Time
}

// NewService creates a new design service.  cache, locker, publisher and
// metrics may be nil.
func NewService(
	catalog *domain.Catalog,
	repo domain.Repository,
	requests pricing.RequestRepository,
	policy pricing.Policy,
	cache DesignCache,
	locker Locker,
	logos LogoStore,
	loader TextureLoader,
	publisher EventPublisher,
	metrics *prometheus.AppMetrics,
	logger logging.Logger,
	cfg ServiceConfig,
) Service {
	if cache == nil {
		cache = nopCache{}
	}
	if locker == nil {
		locker = nopLocker{}
	}
	if publisher == nil {
		publisher = NopPublisher{}
	}
	if metrics == nil {
		metrics = prometheus.NewNoopAppMetrics()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if cfg.MaxLogoBytes <= 0 {
		cfg.MaxLogoBytes = 5 << 20
	}
	if cfg.ResolveTimeout <= 0 {
		cfg.ResolveTimeout = 30 * time.Second
	}
	return &serviceImpl{
		catalog:   catalog,
		repo:      repo,
		requests:  requests,
		policy:    policy,
		cache:     cache,
		locker:    locker,
		logos:     logos,
		loader:    loader,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger.Named("design-service"),
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Catalog
// ─────────────────────────────────────────────────────────────────────────────

func (s *serviceImpl) ListProducts(_ context.Context) []ProductSummary {
	types := s.catalog.ProductTypes()
	out := make([]ProductSummary, 0, len(types))
	for _, pt := range types {
		tmpl, err := s.catalog.Template(pt)
		if err != nil {
			continue
		}
		out = append(out, ProductSummary{
			Type:      tmpl.Type,
			Label:     tmpl.Label,
			Archetype: tmpl.Archetype.Kind,
			Locations: len(tmpl.Locations),
		})
	}
	return out
}

func (s *serviceImpl) Locations(_ context.Context, productType domain.ProductType) ([]domain.PlacementLocation, error) {
	return s.catalog.LocationsFor(productType)
}

// ─────────────────────────────────────────────────────────────────────────────
// Lifecycle
// ─────────────────────────────────────────────────────────────────────────────

func (s *serviceImpl) CreateDesign(ctx context.Context, input *CreateDesignInput) (*DesignView, error) {
	start := time.Now()
	pt := input.ProductType
	if pt == "" {
		pt = domain.ProductTShirt
	}
	d, err := domain.NewDesign(s.catalog, pt, input.ProductColor, domain.WithClock(s.now))
	if err == nil {
		err = s.repo.Create(ctx, d)
	}
	prometheus.RecordDesignOperation(s.metrics, "create_design", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Design created",
		logging.DesignID(string(d.ID())),
		logging.String("product_type", string(pt)),
	)
	return ToView(d), nil
}

func (s *serviceImpl) GetDesign(ctx context.Context, id domain.DesignID) (*DesignView, error) {
	d, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToView(d), nil
}

func (s *serviceImpl) DeleteDesign(ctx context.Context, id domain.DesignID) error {
	start := time.Now()
	err := s.deleteDesign(ctx, id)
	prometheus.RecordDesignOperation(s.metrics, "delete_design", time.Since(start), err)
	return err
}

func (s *serviceImpl) deleteDesign(ctx context.Context, id domain.DesignID) error {
	release, err := s.locker.AcquireDesign(ctx, id)
	if err != nil {
		return err
	}
	defer release()

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	if s.logos != nil {
		n, err := s.logos.DeleteDesign(ctx, id)
		if err != nil {
			s.logger.Warn("Failed to delete logo images", logging.DesignID(string(id)), logging.Err(err))
		} else {
			s.logger.Debug("Logo images deleted", logging.DesignID(string(id)), logging.Int("count", n))
		}
	}
	s.logger.Info("Design deleted", logging.DesignID(string(id)))
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Logos
// ─────────────────────────────────────────────────────────────────────────────

func (s *serviceImpl) AddLogo(ctx context.Context, input *AddLogoInput) (*AddLogoResult, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.InvalidParam("logo name is required")
	}
	size := int64(len(input.Data))
	if size == 0 {
		return nil, errors.InvalidParam("logo image is empty")
	}
	if size > s.cfg.MaxLogoBytes {
		err := errors.New(errors.ErrCodeLogoTooLarge, "logo image exceeds the upload limit").
			WithDetail("limit=" + formatBytes(s.cfg.MaxLogoBytes))
		prometheus.RecordLogoUpload(s.metrics, input.ContentType, size, err)
		return nil, err
	}
	if s.logos == nil {
		return nil, errors.Unavailable("logo storage is not configured")
	}
	_, format, err := render.DecodeLogoBytes(input.Data, s.cfg.MaxLogoDimension)
	if err != nil {
		prometheus.RecordLogoUpload(s.metrics, input.ContentType, size, err)
		return nil, err
	}
	contentType := "image/" + format

	var logoID domain.LogoID
	d, err := s.mutate(ctx, "add_logo", input.DesignID, func(d *domain.Design) ([]common.DomainEvent, error) {
		ref, err := s.logos.Put(ctx, d.ID(), contentType, input.Data)
		if err != nil {
			return nil, err
		}
		logoID = d.AddLogo(name, ref)
		asset, _ := d.Registry().Get(logoID)
		return []common.DomainEvent{domain.NewLogoUploadedEvent(d.ID(), asset, contentType, size)}, nil
	})
	prometheus.RecordLogoUpload(s.metrics, contentType, size, err)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Logo added",
		logging.DesignID(string(d.ID())),
		logging.LogoID(string(logoID)),
		logging.Int64("bytes", size),
	)
	if s.cfg.BackgroundResolve && s.loader != nil {
		s.resolveInBackground(ctx, d.ID())
	}
	return &AddLogoResult{LogoID: logoID, Design: ToView(d)}, nil
}

func (s *serviceImpl) RenameLogo(ctx context.Context, id domain.DesignID, logoID domain.LogoID, name string) (*DesignView, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.InvalidParam("logo name is required")
	}
	d, err := s.mutate(ctx, "rename_logo", id, func(d *domain.Design) ([]common.DomainEvent, error) {
		d.RenameLogo(logoID, name)
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return ToView(d), nil
}

// RemoveLogo leaves the stored image in place; identical uploads share one
// object and it is reclaimed with the design.
func (s *serviceImpl) RemoveLogo(ctx context.Context, id domain.DesignID, logoID domain.LogoID) (*DesignView, error) {
	d, err := s.mutate(ctx, "remove_logo", id, func(d *domain.Design) ([]common.DomainEvent, error) {
		if d.RemoveLogo(logoID) {
			s.logger.Info("Logo removed", logging.DesignID(string(id)), logging.LogoID(string(logoID)))
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return ToView(d), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Placements
// ─────────────────────────────────────────────────────────────────────────────

func (s *serviceImpl) ToggleLocation(ctx context.Context, id domain.DesignID, location domain.LocationID) (*ToggleResult, error) {
	var selected bool
	d, err := s.mutate(ctx, "toggle_location", id, func(d *domain.Design) ([]common.DomainEvent, error) {
		var err error
		selected, err = d.Store().ToggleLocation(location)
		return nil, err
	})
	if err != nil {
		return nil, err
	}
	return &ToggleResult{Selected: selected, Design: ToView(d)}, nil
}

func (s *serviceImpl) UpdatePlacement(ctx context.Context, input *UpdatePlacementInput) (*DesignView, error) {
	if input.LogoID == nil && input.SizePercent == nil && input.RotationDegrees == nil {
		return nil, errors.InvalidParam("at least one of logoId, sizePercent or rotationDegrees is required")
	}
	d, err := s.mutate(ctx, "update_placement", input.DesignID, func(d *domain.Design) ([]common.DomainEvent, error) {
		st := d.Store()
		if input.LogoID != nil {
			if err := st.SetLogo(input.LocationID, *input.LogoID); err != nil {
				return nil, err
			}
		}
		if input.SizePercent != nil {
			if err := st.SetSize(input.LocationID, *input.SizePercent); err != nil {
				return nil, err
			}
		}
		if input.RotationDegrees != nil {
			if err := st.SetRotation(input.LocationID, *input.RotationDegrees); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return ToView(d), nil
}

func (s *serviceImpl) SetProductColor(ctx context.Context, id domain.DesignID, color string) (*DesignView, error) {
	d, err := s.mutate(ctx, "set_product_color", id, func(d *domain.Design) ([]common.DomainEvent, error) {
		previous := d.ProductColor()
		changed, err := d.SetProductColor(color)
		if err != nil || !changed {
			return nil, err
		}
		return []common.DomainEvent{domain.NewColorChangedEvent(d, previous)}, nil
	})
	if err != nil {
		return nil, err
	}
	return ToView(d), nil
}

func (s *serviceImpl) AcceptTerms(ctx context.Context, id domain.DesignID, accepted bool) (*DesignView, error) {
	d, err := s.mutate(ctx, "accept_terms", id, func(d *domain.Design) ([]common.DomainEvent, error) {
		d.AcceptTerms(accepted)
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return ToView(d), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Textures and rendering
// ─────────────────────────────────────────────────────────────────────────────

// ResolveTextures loads every pending logo image without holding the design
// lock, then merges the batch in one locked transition.
func (s *serviceImpl) ResolveTextures(ctx context.Context, id domain.DesignID) (*ResolveResult, error) {
	if s.loader == nil {
		return nil, errors.Unavailable("texture loader is not configured")
	}
	start := time.Now()
	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	pending := d.PendingTextures()
	if len(pending) == 0 {
		return &ResolveResult{Design: ToView(d)}, nil
	}

	results, err := s.loader.Load(ctx, pending).Wait(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTimeout, "texture load interrupted")
	}
	failed := 0
	for _, r := range results {
		if r.Status.State == domain.TextureFailed {
			failed++
		}
	}
	prometheus.RecordTextureBatch(s.metrics, len(results)-failed, failed, time.Since(start))

	applied := 0
	d, err = s.mutate(ctx, "resolve_textures", id, func(d *domain.Design) ([]common.DomainEvent, error) {
		applied = d.ApplyTextures(results)
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Textures resolved",
		logging.DesignID(string(id)),
		logging.Int("requested", len(pending)),
		logging.Int("applied", applied),
		logging.Int("failed", failed),
	)
	return &ResolveResult{Requested: len(pending), Applied: applied, Failed: failed, Design: ToView(d)}, nil
}

func (s *serviceImpl) resolveInBackground(ctx context.Context, id domain.DesignID) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ResolveTimeout)
	go func() {
		defer cancel()
		if _, err := s.ResolveTextures(ctx, id); err != nil {
			s.logger.Warn("Background texture resolve failed", logging.DesignID(string(id)), logging.Err(err))
		}
	}()
}

func (s *serviceImpl) RenderFrame(ctx context.Context, id domain.DesignID) (*render.Frame, error) {
	d, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	frame := render.MapDesign(d)
	for _, sk := range frame.Skipped {
		s.metrics.RenderSkippedPlacements.WithLabelValues(string(sk.Reason)).Inc()
	}
	return &frame, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Pricing
// ─────────────────────────────────────────────────────────────────────────────

func (s *serviceImpl) Quote(ctx context.Context, id domain.DesignID, quantity int) (*pricing.LineItem, error) {
	d, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	item, err := s.policy.Quote(d.ProductType(), d.Placements(), quantity)
	if err != nil {
		return nil, err
	}
	prometheus.RecordQuote(s.metrics, string(item.ProductType), int64(item.LineTotal))
	return &item, nil
}

func (s *serviceImpl) RequestQuote(ctx context.Context, input *RequestQuoteInput) (*pricing.QuoteRequest, error) {
	kind, err := pricing.ParseRequestKind(input.Kind)
	if err != nil {
		return nil, err
	}
	req, err := s.requestQuote(ctx, kind, input)
	prometheus.RecordQuoteRequest(s.metrics, string(kind), err)
	return req, err
}

func (s *serviceImpl) requestQuote(ctx context.Context, kind pricing.RequestKind, input *RequestQuoteInput) (*pricing.QuoteRequest, error) {
	d, err := s.repo.Get(ctx, input.DesignID)
	if err != nil {
		return nil, err
	}
	if r := d.Readiness(); !r.IsReady() {
		return nil, errors.New(errors.ErrCodeDesignNotReady, "design is not ready for a quote").
			WithDetail("readiness=" + r.String())
	}
	item, err := s.policy.Quote(d.ProductType(), d.Placements(), kind.EffectiveQuantity(input.Quantity))
	if err != nil {
		return nil, err
	}
	req := pricing.QuoteRequest{
		ID:        uuid.NewString(),
		DesignID:  d.ID(),
		Kind:      kind,
		Item:      item,
		Snapshot:  d.Snapshot(),
		CreatedAt: s.now(),
	}
	if s.requests != nil {
		if err := s.requests.Save(ctx, req); err != nil {
			return nil, err
		}
	}
	s.publish(ctx, pricing.NewQuoteRequestedEvent(req))
	s.logger.Info("Quote requested",
		logging.DesignID(string(d.ID())),
		logging.String("kind", string(kind)),
		logging.Int("quantity", item.Quantity),
		logging.Int64("line_total", int64(item.LineTotal)),
	)
	return &req, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Snapshots
// ─────────────────────────────────────────────────────────────────────────────

func (s *serviceImpl) ExportSnapshot(ctx context.Context, id domain.DesignID) (*ExportedSnapshot, error) {
	d, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ExportedSnapshot{Snapshot: d.Snapshot(), Logos: d.Registry().List()}, nil
}

func (s *serviceImpl) ImportSnapshot(ctx context.Context, input *ImportSnapshotInput) (*DesignView, error) {
	start := time.Now()
	d, err := domain.RestoreDesign(s.catalog, input.Snapshot, input.Logos, domain.WithClock(s.now))
	if err == nil {
		d.AcceptTerms(input.TermsAccepted)
		err = s.repo.Create(ctx, d)
	}
	prometheus.RecordDesignOperation(s.metrics, "import_snapshot", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Design imported",
		logging.DesignID(string(d.ID())),
		logging.Int("placements", len(input.Snapshot.SelectedLocations)),
	)
	return ToView(d), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

// load reads a design through the cache.  Cache failures fall back to the
// repository.
func (s *serviceImpl) load(ctx context.Context, id domain.DesignID) (*domain.Design, error) {
	rec, hit, err := s.cache.Get(ctx, id)
	if err != nil {
		s.logger.Warn("Design cache read failed", logging.DesignID(string(id)), logging.Err(err))
	}
	prometheus.RecordCacheAccess(s.metrics, "design", hit)
	if hit {
		d, err := domain.RehydrateDesign(s.catalog, rec, domain.WithClock(s.now))
		if err == nil {
			return d, nil
		}
		s.logger.Warn("Discarding unreadable cached design", logging.DesignID(string(id)), logging.Err(err))
		s.invalidate(ctx, id)
	}

	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Put(ctx, d.Record()); err != nil {
		s.logger.Warn("Design cache write failed", logging.DesignID(string(id)), logging.Err(err))
	}
	return d, nil
}

// mutate runs fn on a freshly loaded design under the design lock, saves the
// result with a version check and publishes the returned events.
func (s *serviceImpl) mutate(ctx context.Context, op string, id domain.DesignID, fn func(d *domain.Design) ([]common.DomainEvent, error)) (*domain.Design, error) {
	start := time.Now()
	d, events, err := s.mutateLocked(ctx, id, fn)
	prometheus.RecordDesignOperation(s.metrics, op, time.Since(start), err)
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeDesignVersionConflict) {
			s.metrics.DesignVersionConflicts.WithLabelValues().Inc()
		}
		return nil, err
	}
	s.metrics.DesignReadiness.WithLabelValues(d.Readiness().String()).Inc()
	s.publish(ctx, events...)
	return d, nil
}

func (s *serviceImpl) mutateLocked(ctx context.Context, id domain.DesignID, fn func(d *domain.Design) ([]common.DomainEvent, error)) (*domain.Design, []common.DomainEvent, error) {
	release, err := s.locker.AcquireDesign(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	defer release()

	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	events, err := fn(d)
	if err != nil {
		return nil, nil, err
	}
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, nil, err
	}
	// Write through: the cache only accepts newer versions, so a reader
	// still holding the previous version cannot put it back.
	if err := s.cache.Put(ctx, d.Record()); err != nil {
		s.logger.Warn("Design cache write failed", logging.DesignID(string(id)), logging.Err(err))
		s.invalidate(ctx, id)
	}
	return d, events, nil
}

func (s *serviceImpl) invalidate(ctx context.Context, id domain.DesignID) {
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.Warn("Design cache invalidation failed", logging.DesignID(string(id)), logging.Err(err))
	}
}

// publish is best effort: the design is already committed.
func (s *serviceImpl) publish(ctx context.Context, events ...common.DomainEvent) {
	for _, ev := range events {
		err := s.publisher.Publish(ctx, ev)
		prometheus.RecordEventPublished(s.metrics, ev.EventType(), err)
		if err != nil {
			s.logger.Error("Failed to publish event",
				logging.String("event_type", ev.EventType()),
				logging.DesignID(ev.AggregateID()),
				logging.Err(err),
			)
		}
	}
}

func formatBytes(n int64) string {
	const unit = 1024
	switch {
	case n >= unit*unit && n%(unit*unit) == 0:
		return strconv.FormatInt(n/(unit*unit), 10) + "MiB"
	case n >= unit && n%unit == 0:
		return strconv.FormatInt(n/unit, 10) + "KiB"
	default:
		return strconv.FormatInt(n, 10) + "B"
	}
}

//Personal.AI order the ending
