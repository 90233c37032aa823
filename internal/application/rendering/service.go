// Package rendering provides base-material texture production and the
// design-event handler run by the texture worker.
package rendering

import (
	"context"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	appcustomization "github.com/turtacn/PrintShop-Customizer/internal/application/customization"
	domain "github.com/turtacn/PrintShop-Customizer/internal/domain/customization"
	"github.com/turtacn/PrintShop-Customizer/internal/domain/render"
	"github.com/turtacn/PrintShop-Customizer/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/PrintShop-Customizer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PrintShop-Customizer/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/PrintShop-Customizer/internal/infrastructure/storage/minio"
	"github.com/turtacn/PrintShop-Customizer/pkg/errors"
	"github.com/turtacn/PrintShop-Customizer/pkg/types/common"
)

// TextureStore keeps encoded textures by content address.
// *minio.TextureStore satisfies it.
type TextureStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (uploaded bool, err error)
	URL(ctx context.Context, key string) (string, error)
}

// Designs is the part of the design service the renderer depends on.
type Designs interface {
	GetDesign(ctx context.Context, id domain.DesignID) (*appcustomization.DesignView, error)
	ResolveTextures(ctx context.Context, id domain.DesignID) (*appcustomization.ResolveResult, error)
}

// Service defines the rendering operations.
type Service interface {
	BaseTexture(ctx context.Context, input *BaseTextureInput) (*BaseTexture, error)
	DesignTexture(ctx context.Context, id domain.DesignID, format string, size int) (*BaseTexture, error)
	HandleDesignEvent(ctx context.Context, msg *common.Message) error
}

// BaseTextureInput selects a texture.  Zero Seed and Size use the configured
// defaults; an empty Format selects WebP.
type BaseTextureInput struct {
	ProductType domain.ProductType
	Color       string
	Seed        *uint64
	Format      string
	Size        int
}

// BaseTexture is an encoded base-material texture.
type BaseTexture struct {
	Key         string               `json:"key"`
	URL         string               `json:"url,omitempty"`
	ContentType string               `json:"contentType"`
	Digest      string               `json:"digest"`
	Archetype   domain.ArchetypeKind `json:"archetype"`
	Wrap        render.WrapMode      `json:"wrap"`
	Color       string               `json:"color"`
	Seed        uint64               `json:"seed"`
	Size        int                  `json:"size"`
	Bytes       int                  `json:"bytes"`
	Uploaded    bool                 `json:"uploaded"`
	Stats       render.Stats         `json:"stats"`
	Data        []byte               `json:"-"`
}

// Config carries the synthesis defaults.
type Config struct {
	Options render.TextureOptions
	Seed    uint64
}

type serviceImpl struct {
	catalog *domain.Catalog
	store   TextureStore
	designs Designs
	cfg     Config
	group   singleflight.Group
	metrics *prometheus.AppMetrics
	logger  logging.Logger
}

// NewService creates a rendering service.  store may be nil, in which case
// textures are returned without being stored.  designs may be nil for
// callers that only synthesize.
func NewService(catalog *domain.Catalog, store TextureStore, designs Designs, cfg Config, metrics *prometheus.AppMetrics, logger logging.Logger) Service {
	if cfg.Options.Size == 0 {
		cfg.Options = render.DefaultTextureOptions()
	}
	if metrics == nil {
		metrics = prometheus.NewNoopAppMetrics()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &serviceImpl{
		catalog: catalog,
		store:   store,
		designs: designs,
		cfg:     cfg,
		metrics: metrics,
		logger:  logger.Named("rendering-service"),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Base textures
// ─────────────────────────────────────────────────────────────────────────────

func (s *serviceImpl) BaseTexture(ctx context.Context, input *BaseTextureInput) (*BaseTexture, error) {
	tmpl, err := s.catalog.Template(input.ProductType)
	if err != nil {
		return nil, err
	}
	color, err := domain.NormalizeColor(input.Color)
	if err != nil {
		return nil, err
	}
	format, err := render.ParseFormat(input.Format)
	if err != nil {
		return nil, err
	}
	opts := s.cfg.Options
	if input.Size != 0 {
		opts.Size = input.Size
	}
	seed := s.cfg.Seed
	if input.Seed != nil {
		seed = *input.Seed
	}

	kind := tmpl.Archetype.Kind
	flight := string(kind) + "|" + color + "|" + strconv.FormatUint(seed, 10) + "|" + string(format) + "|" + strconv.Itoa(opts.Size)
	v, err, shared := s.group.Do(flight, func() (interface{}, error) {
		return s.produce(ctx, kind, color, seed, format, opts)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Debug("Texture request coalesced", logging.String("key", flight))
	}
	out := *v.(*BaseTexture)
	return &out, nil
}

func (s *serviceImpl) produce(ctx context.Context, kind domain.ArchetypeKind, color string, seed uint64, format render.Format, opts render.TextureOptions) (*BaseTexture, error) {
	start := time.Now()
	tex, err := render.Synthesize(kind, color, seed, opts)
	if err != nil {
		return nil, err
	}
	data, digest, err := render.EncodeBytes(tex.Image, format)
	if err != nil {
		return nil, err
	}
	out := &BaseTexture{
		Key:         minio.TextureKey(digest, format.Ext()),
		ContentType: format.ContentType(),
		Digest:      digest,
		Archetype:   kind,
		Wrap:        tex.Wrap,
		Color:       tex.Color,
		Seed:        seed,
		Size:        opts.Size,
		Bytes:       len(data),
		Stats:       render.Measure(tex.Image),
		Data:        data,
	}

	if s.store != nil {
		out.Uploaded, err = s.store.Put(ctx, out.Key, out.ContentType, data)
		if err != nil {
			return nil, err
		}
		url, err := s.store.URL(ctx, out.Key)
		if err != nil {
			s.logger.Warn("Failed to presign texture URL", logging.String("key", out.Key), logging.Err(err))
		}
		out.URL = url
	}
	prometheus.RecordTextureSynthesis(s.metrics, string(kind), time.Since(start), out.Uploaded)

	s.logger.Debug("Base texture produced",
		logging.String("archetype", string(kind)),
		logging.String("color", out.Color),
		logging.String("key", out.Key),
		logging.Bool("uploaded", out.Uploaded),
	)
	return out, nil
}

func (s *serviceImpl) DesignTexture(ctx context.Context, id domain.DesignID, format string, size int) (*BaseTexture, error) {
	if s.designs == nil {
		return nil, errors.Unavailable("design service is not configured")
	}
	d, err := s.designs.GetDesign(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.BaseTexture(ctx, &BaseTextureInput{
		ProductType: d.ProductType,
		Color:       d.ProductColor,
		Format:      format,
		Size:        size,
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// Worker
// ─────────────────────────────────────────────────────────────────────────────

// HandleDesignEvent is the consumer handler for design events.  A returned
// error makes the consumer retry and eventually dead-letter the message.
func (s *serviceImpl) HandleDesignEvent(ctx context.Context, msg *common.Message) error {
	env, err := kafka.MessageToEventEnvelope(msg)
	if err != nil {
		return err
	}
	log := s.logger.With(
		logging.String("event_type", env.EventType),
		logging.String("event_id", env.EventID),
		logging.DesignID(env.AggregateID),
	)

	switch env.EventType {
	case domain.EventLogoUploaded:
		return s.onLogoUploaded(ctx, env, log)
	case domain.EventDesignColorChanged:
		return s.onColorChanged(ctx, env, log)
	default:
		log.Debug("Ignoring event")
		return nil
	}
}

func (s *serviceImpl) onLogoUploaded(ctx context.Context, env *kafka.EventEnvelope, log logging.Logger) error {
	if s.designs == nil {
		return errors.Unavailable("design service is not configured")
	}
	res, err := s.designs.ResolveTextures(ctx, domain.DesignID(env.AggregateID))
	if errors.IsCode(err, errors.ErrCodeDesignNotFound) {
		log.Info("Design gone before textures were resolved")
		return nil
	}
	if err != nil {
		return err
	}
	log.Info("Logo textures resolved",
		logging.Int("applied", res.Applied),
		logging.Int("failed", res.Failed),
	)
	return nil
}

func (s *serviceImpl) onColorChanged(ctx context.Context, env *kafka.EventEnvelope, log logging.Logger) error {
	var ev domain.ColorChangedEvent
	if err := env.DecodePayload(&ev); err != nil {
		return err
	}
	tex, err := s.BaseTexture(ctx, &BaseTextureInput{ProductType: ev.ProductType, Color: ev.Color})
	if err != nil {
		return err
	}
	log.Info("Base texture pre-rendered",
		logging.String("color", tex.Color),
		logging.String("key", tex.Key),
		logging.Bool("uploaded", tex.Uploaded),
	)
	return nil
}

//Personal.AI order the ending
