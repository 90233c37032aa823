package customization

import (
	"strings"

	"github.com/google/uuid"
	apperrors "github.com/turtacn/PrintShop-Customizer/pkg/errors"
)

// LogoID identifies a logo asset within a design's registry.
type LogoID string

// ImageRef is an opaque reference to the uploaded image bytes.  The registry
// never interprets it; the texture loader resolves it against object storage.
type ImageRef string

// LogoAsset is an uploaded logo.  Only Name is mutable after registration.
type LogoAsset struct {
	ID       LogoID   `json:"id"`
	Name     string   `json:"name"`
	ImageRef ImageRef `json:"imageRef"`
}

// IDGenerator produces candidate logo ids.
type IDGenerator func() LogoID

// NewUUIDGenerator returns an IDGenerator backed by random UUIDs.
func NewUUIDGenerator() IDGenerator {
	return func() LogoID { return LogoID(uuid.NewString()) }
}

// RegistryObserver is notified after the registry's membership changes.
type RegistryObserver interface {
	LogoAdded(asset LogoAsset)
	LogoRemoved(asset LogoAsset)
}

// LogoRegistry is the ordered list of logos uploaded to one design.  It is the
// source of truth for which logos may be assigned to a placement.  Not safe
// for concurrent use; the owning Design serialises access.
type LogoRegistry struct {
	assets    []LogoAsset
	newID     IDGenerator
	observers []RegistryObserver
}

// RegistryOption configures a LogoRegistry.
type RegistryOption func(*LogoRegistry)

// WithIDGenerator overrides the id source (tests use deterministic ids).
func WithIDGenerator(g IDGenerator) RegistryOption {
	return func(r *LogoRegistry) {
		if g != nil {
			r.newID = g
		}
	}
}

// NewLogoRegistry returns an empty registry.
func NewLogoRegistry(opts ...RegistryOption) *LogoRegistry {
	r := &LogoRegistry{newID: NewUUIDGenerator()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Subscribe registers an observer for add/remove notifications.
func (r *LogoRegistry) Subscribe(o RegistryObserver) {
	if o != nil {
		r.observers = append(r.observers, o)
	}
}

// Add appends a new asset under a fresh id and returns that id.  Existing
// entries are never overwritten: a generated id that collides is discarded
// and another is drawn.
func (r *LogoRegistry) Add(name string, ref ImageRef) LogoID {
	id := r.newID()
	for id == "" || r.Contains(id) {
		id = r.newID()
	}
	asset := LogoAsset{ID: id, Name: strings.TrimSpace(name), ImageRef: ref}
	r.assets = append(r.assets, asset)
	for _, o := range r.observers {
		o.LogoAdded(asset)
	}
	return id
}

// Restore re-inserts a previously persisted asset under its original id.
// Observers are not notified; callers rebuilding a design restore placements
// themselves.
func (r *LogoRegistry) Restore(asset LogoAsset) error {
	if asset.ID == "" {
		return apperrors.InvalidParam("logo id must not be empty")
	}
	if r.Contains(asset.ID) {
		return apperrors.New(apperrors.ErrCodeLogoDuplicate, "logo already registered").
			WithDetail("id=" + string(asset.ID))
	}
	r.assets = append(r.assets, asset)
	return nil
}

// Rename changes the display name of id.  Unknown ids are ignored; the
// return value reports whether anything changed.
func (r *LogoRegistry) Rename(id LogoID, name string) bool {
	i := r.indexOf(id)
	if i < 0 {
		return false
	}
	r.assets[i].Name = strings.TrimSpace(name)
	return true
}

// Remove deletes id and notifies observers so that dependent placements can
// be repaired.  Unknown ids are ignored.
func (r *LogoRegistry) Remove(id LogoID) bool {
	i := r.indexOf(id)
	if i < 0 {
		return false
	}
	removed := r.assets[i]
	r.assets = append(r.assets[:i], r.assets[i+1:]...)
	for _, o := range r.observers {
		o.LogoRemoved(removed)
	}
	return true
}

// Get returns the asset registered under id.
func (r *LogoRegistry) Get(id LogoID) (LogoAsset, bool) {
	i := r.indexOf(id)
	if i < 0 {
		return LogoAsset{}, false
	}
	return r.assets[i], true
}

// Contains reports whether id is registered.
func (r *LogoRegistry) Contains(id LogoID) bool {
	return r.indexOf(id) >= 0
}

// First returns the earliest registered asset still present.
func (r *LogoRegistry) First() (LogoAsset, bool) {
	if len(r.assets) == 0 {
		return LogoAsset{}, false
	}
	return r.assets[0], true
}

// List returns the assets in registration order.
func (r *LogoRegistry) List() []LogoAsset {
	out := make([]LogoAsset, len(r.assets))
	copy(out, r.assets)
	return out
}

// Len returns the number of registered assets.
func (r *LogoRegistry) Len() int { return len(r.assets) }

func (r *LogoRegistry) indexOf(id LogoID) int {
	for i := range r.assets {
		if r.assets[i].ID == id {
			return i
		}
	}
	return -1
}

//Personal.AI order the ending
