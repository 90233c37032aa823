package customization

import (
	"context"

	domain "github.com/turtacn/PrintShop-Customizer/internal/domain/customization"
	"github.com/turtacn/PrintShop-Customizer/internal/domain/render"
	"github.com/turtacn/PrintShop-Customizer/pkg/types/common"
)

// DesignCache caches persisted design records.  Put must not replace a cached
// record with one of a lower version.  *redis.DesignCache satisfies it.
type DesignCache interface {
	Get(ctx context.Context, id domain.DesignID) (domain.DesignRecord, bool, error)
	Put(ctx context.Context, rec domain.DesignRecord) error
	Invalidate(ctx context.Context, id domain.DesignID) error
}

// Locker serialises writers of one design.  *redis.LockFactory satisfies it.
type Locker interface {
	AcquireDesign(ctx context.Context, id domain.DesignID) (release func(), err error)
}

// LogoStore keeps uploaded logo images.  *minio.LogoStore satisfies it.
type LogoStore interface {
	Put(ctx context.Context, design domain.DesignID, contentType string, data []byte) (domain.ImageRef, error)
	DeleteDesign(ctx context.Context, design domain.DesignID) (int, error)
}

// TextureLoader starts an asynchronous logo image load.  *render.Loader
// satisfies it.
type TextureLoader interface {
	Load(ctx context.Context, logos []domain.LogoAsset) *render.Future
}

// EventPublisher sends domain events to the message bus.
// *kafka.EventPublisher satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, events ...common.DomainEvent) error
}

// ─────────────────────────────────────────────────────────────────────────────
// No-op adapters
// ─────────────────────────────────────────────────────────────────────────────

type nopCache struct{}

func (nopCache) Get(context.Context, domain.DesignID) (domain.DesignRecord, bool, error) {
	return domain.DesignRecord{}, false, nil
}
func (nopCache) Put(context.Context, domain.DesignRecord) error    { return nil }
func (nopCache) Invalidate(context.Context, domain.DesignID) error { return nil }

type nopLocker struct{}

func (nopLocker) AcquireDesign(context.Context, domain.DesignID) (func(), error) {
	return func() {}, nil
}

// NopPublisher drops every event.  Used when Kafka is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ...common.DomainEvent) error { return nil }

//Personal.AI order the ending
