package customization

import (
	"time"

	domain "github.com/turtacn/PrintShop-Customizer/internal/domain/customization"
)

// DesignView is the API representation of a design.
type DesignView struct {
	ID            domain.DesignID    `json:"id"`
	ProductType   domain.ProductType `json:"productType"`
	ProductColor  string             `json:"productColor"`
	TermsAccepted bool               `json:"termsAccepted"`
	Readiness     domain.Readiness   `json:"readiness"`
	Ready         bool               `json:"ready"`
	Logos         []LogoView         `json:"logos"`
	Placements    []PlacementView    `json:"placements"`
	Version       int64              `json:"version"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

// LogoView is a registered logo with its texture load status.
type LogoView struct {
	ID       domain.LogoID        `json:"id"`
	Name     string               `json:"name"`
	ImageRef domain.ImageRef      `json:"imageRef"`
	Texture  domain.TextureStatus `json:"texture"`
}

// Placement states as rendered in PlacementView.State.
const (
	StateConfigured = "configured"
	StateNeedsLogo  = "needs_logo"
)

// PlacementView is one selected location.  LogoID is empty while the
// placement needs a logo.
type PlacementView struct {
	LocationID      domain.LocationID `json:"locationId"`
	Label           string            `json:"label"`
	Side            domain.Side       `json:"side"`
	State           string            `json:"state"`
	LogoID          domain.LogoID     `json:"logoId,omitempty"`
	SizePercent     float64           `json:"sizePercent"`
	RotationDegrees float64           `json:"rotationDegrees"`
}

// ToView converts a design aggregate.
func ToView(d *domain.Design) *DesignView {
	r := d.Readiness()
	v := &DesignView{
		ID:            d.ID(),
		ProductType:   d.ProductType(),
		ProductColor:  d.ProductColor(),
		TermsAccepted: d.TermsAccepted(),
		Readiness:     r,
		Ready:         r.IsReady(),
		Logos:         []LogoView{},
		Placements:    []PlacementView{},
		Version:       d.Version(),
		CreatedAt:     d.CreatedAt(),
		UpdatedAt:     d.UpdatedAt(),
	}
	for _, a := range d.Registry().List() {
		v.Logos = append(v.Logos, LogoView{ID: a.ID, Name: a.Name, ImageRef: a.ImageRef, Texture: d.TextureStatus(a.ID)})
	}
	for _, p := range d.Placements() {
		pv := PlacementView{
			LocationID: p.Location.ID,
			Label:      p.Location.Label,
			Side:       p.Location.Anchor.Side,
		}
		domain.MatchState(p.State,
			func(c domain.Configured) struct{} {
				pv.State = StateConfigured
				pv.LogoID = c.Config.LogoID
				pv.SizePercent = c.Config.SizePercent
				pv.RotationDegrees = c.Config.RotationDegrees
				return struct{}{}
			},
			func(n domain.NeedsLogo) struct{} {
				pv.State = StateNeedsLogo
				pv.SizePercent = n.SizePercent
				pv.RotationDegrees = n.RotationDegrees
				return struct{}{}
			},
		)
		v.Placements = append(v.Placements, pv)
	}
	return v
}

// ProductSummary lists a product type in the catalog.
type ProductSummary struct {
	Type      domain.ProductType   `json:"type"`
	Label     string               `json:"label"`
	Archetype domain.ArchetypeKind `json:"archetype"`
	Locations int                  `json:"locations"`
}

// ExportedSnapshot is a design snapshot with the logos it references.
type ExportedSnapshot struct {
	Snapshot domain.Snapshot    `json:"snapshot"`
	Logos    []domain.LogoAsset `json:"logos"`
}

//Personal.AI order the ending
