package customization

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/turtacn/PrintShop-Customizer/pkg/errors"
)

// DesignID identifies a design aggregate.
type DesignID string

// DefaultProductColor is used when a design is created without a color.
const DefaultProductColor = "#FFFFFF"

var hexColor = regexp.MustCompile(`^#?([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// NormalizeColor canonicalises "#RGB", "RRGGBB" and "#rrggbb" forms to
// upper-case "#RRGGBB".
func NormalizeColor(c string) (string, error) {
	c = strings.TrimSpace(c)
	m := hexColor.FindStringSubmatch(c)
	if m == nil {
		return "", apperrors.New(apperrors.ErrCodeProductColorInvalid, "product color must be #RRGGBB").
			WithDetail("color=" + c)
	}
	hex := strings.ToUpper(m[1])
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	return "#" + hex, nil
}

// Design is the aggregate root of one customer's product customization.  It
// owns the logo registry, the placement store and the texture load status of
// each logo.  A Design is not safe for concurrent use.
type Design struct {
	id            DesignID
	template      ProductTemplate
	color         string
	termsAccepted bool
	registry      *LogoRegistry
	store         *Store
	textures      map[LogoID]TextureStatus
	version       int64
	createdAt     time.Time
	updatedAt     time.Time
	now           func() time.Time
}

// DesignOption configures a new or rehydrated Design.
type DesignOption func(*designOptions)

type designOptions struct {
	id    DesignID
	now   func() time.Time
	idGen IDGenerator
}

// WithDesignID fixes the aggregate id.
func WithDesignID(id DesignID) DesignOption {
	return func(o *designOptions) { o.id = id }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) DesignOption {
	return func(o *designOptions) { o.now = now }
}

// WithLogoIDGenerator overrides the registry's logo id source.
func WithLogoIDGenerator(g IDGenerator) DesignOption {
	return func(o *designOptions) { o.idGen = g }
}

// NewDesign creates an empty design for productType.  An empty color selects
// DefaultProductColor.
func NewDesign(catalog *Catalog, productType ProductType, color string, opts ...DesignOption) (*Design, error) {
	tmpl, err := catalog.Template(productType)
	if err != nil {
		return nil, err
	}
	if color == "" {
		color = DefaultProductColor
	}
	color, err = NormalizeColor(color)
	if err != nil {
		return nil, err
	}
	o := designOptions{now: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(&o)
	}
	if o.id == "" {
		o.id = DesignID(uuid.NewString())
	}
	var regOpts []RegistryOption
	if o.idGen != nil {
		regOpts = append(regOpts, WithIDGenerator(o.idGen))
	}
	reg := NewLogoRegistry(regOpts...)
	ts := o.now()
	d := &Design{
		id:        o.id,
		template:  tmpl,
		color:     color,
		registry:  reg,
		store:     NewStore(tmpl, reg),
		textures:  make(map[LogoID]TextureStatus),
		createdAt: ts,
		updatedAt: ts,
		now:       o.now,
	}
	d.store.OnChange(func(Change) { d.touch() })
	return d, nil
}

func (d *Design) touch() { d.updatedAt = d.now() }

// ID returns the aggregate id.
func (d *Design) ID() DesignID { return d.id }

// ProductType returns the product the design customizes.
func (d *Design) ProductType() ProductType { return d.template.Type }

// Template returns the product template.
func (d *Design) Template() ProductTemplate { return d.template.clone() }

// ProductColor returns the base color as "#RRGGBB".
func (d *Design) ProductColor() string { return d.color }

// SetProductColor validates and stores a new base color.  It reports whether
// the color changed.
func (d *Design) SetProductColor(c string) (bool, error) {
	norm, err := NormalizeColor(c)
	if err != nil {
		return false, err
	}
	if norm == d.color {
		return false, nil
	}
	d.color = norm
	d.touch()
	return true, nil
}

// TermsAccepted reports the externally supplied terms flag.
func (d *Design) TermsAccepted() bool { return d.termsAccepted }

// AcceptTerms records the terms flag.
func (d *Design) AcceptTerms(accepted bool) {
	if d.termsAccepted != accepted {
		d.termsAccepted = accepted
		d.touch()
	}
}

// Registry exposes the logo registry.
func (d *Design) Registry() *LogoRegistry { return d.registry }

// Store exposes the placement store.
func (d *Design) Store() *Store { return d.store }

// Placements is shorthand for Store().Placements().
func (d *Design) Placements() []Placement { return d.store.Placements() }

// Readiness derives the design's completeness.
func (d *Design) Readiness() Readiness {
	return ComputeReadiness(d.store.Placements(), d.termsAccepted)
}

// IsReady reports whether quote and sample actions are allowed.
func (d *Design) IsReady() bool { return d.Readiness().IsReady() }

// Version is the persisted version used for optimistic concurrency.
func (d *Design) Version() int64 { return d.version }

// CreatedAt returns the creation time.
func (d *Design) CreatedAt() time.Time { return d.createdAt }

// UpdatedAt returns the time of the last mutation.
func (d *Design) UpdatedAt() time.Time { return d.updatedAt }

// AddLogo registers a logo and marks its texture pending.  NeedsLogo
// placements are completed with the first registered logo.
func (d *Design) AddLogo(name string, ref ImageRef) LogoID {
	id := d.registry.Add(name, ref)
	d.textures[id] = TextureStatus{State: TexturePending}
	d.touch()
	return id
}

// RenameLogo renames a logo; unknown ids are ignored.
func (d *Design) RenameLogo(id LogoID, name string) bool {
	if d.registry.Rename(id, name) {
		d.touch()
		return true
	}
	return false
}

// RemoveLogo removes a logo and repairs every placement that used it.
// Unknown ids are ignored.
func (d *Design) RemoveLogo(id LogoID) bool {
	if !d.registry.Remove(id) {
		return false
	}
	delete(d.textures, id)
	d.touch()
	return true
}

// TextureStatus implements TextureLookup.  Logos without a recorded status
// are pending.
func (d *Design) TextureStatus(id LogoID) TextureStatus {
	if st, ok := d.textures[id]; ok {
		return st
	}
	return TextureStatus{State: TexturePending}
}

// PendingTextures lists the logos whose image has not been loaded yet.
func (d *Design) PendingTextures() []LogoAsset {
	var out []LogoAsset
	for _, a := range d.registry.List() {
		if d.TextureStatus(a.ID).State == TexturePending {
			out = append(out, a)
		}
	}
	return out
}

// ApplyTextures merges a completed load batch in one transition.  Results for
// logos that left the registry while loading are dropped, as are pending
// results from interrupted loads.  It returns the number of results applied.
func (d *Design) ApplyTextures(results []TextureResult) int {
	applied := 0
	for _, r := range results {
		if r.Status.State == TexturePending || !d.registry.Contains(r.LogoID) {
			continue
		}
		d.textures[r.LogoID] = r.Status
		applied++
	}
	if applied > 0 {
		d.touch()
	}
	return applied
}

//Personal.AI order the ending
