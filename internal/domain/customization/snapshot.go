package customization

import (
	"time"

	apperrors "github.com/turtacn/PrintShop-Customizer/pkg/errors"
)

// SelectedLocation is the serialised form of one placement.  An empty LogoID
// encodes NeedsLogo.
type SelectedLocation struct {
	LocationID      LocationID `json:"locationId"`
	LogoID          LogoID     `json:"logoId,omitempty"`
	SizePercent     float64    `json:"sizePercent"`
	RotationDegrees float64    `json:"rotationDegrees"`
}

// Snapshot is the portable description of a design exchanged with other
// systems.  Restoring a snapshot with the same logo registry reproduces the
// same placements, readiness and render frame.
type Snapshot struct {
	ProductType       ProductType        `json:"productType,omitempty"`
	ProductColor      string             `json:"productColor"`
	SelectedLocations []SelectedLocation `json:"selectedLocations"`
}

func toSelected(p Placement) SelectedLocation {
	sl := SelectedLocation{
		LocationID:      p.Location.ID,
		SizePercent:     p.State.Size(),
		RotationDegrees: p.State.Rotation(),
	}
	if logo, ok := LogoOf(p.State); ok {
		sl.LogoID = logo
	}
	return sl
}

func (sl SelectedLocation) state() PlacementState {
	if sl.LogoID == "" {
		return NeedsLogo{SizePercent: sl.SizePercent, RotationDegrees: sl.RotationDegrees}
	}
	return Configured{Config: PlacementConfig{
		LogoID:          sl.LogoID,
		SizePercent:     sl.SizePercent,
		RotationDegrees: sl.RotationDegrees,
	}}
}

// Snapshot serialises the design's color and placements in selection order.
func (d *Design) Snapshot() Snapshot {
	placements := d.store.Placements()
	out := Snapshot{
		ProductType:       d.template.Type,
		ProductColor:      d.color,
		SelectedLocations: make([]SelectedLocation, 0, len(placements)),
	}
	for _, p := range placements {
		out.SelectedLocations = append(out.SelectedLocations, toSelected(p))
	}
	return out
}

// RestoreDesign rebuilds a design from a snapshot and the logos it refers to.
// Placements referencing a logo absent from logos are repaired to the first
// logo, or to NeedsLogo when logos is empty.  A snapshot without a product
// type defaults to t-shirt.
func RestoreDesign(catalog *Catalog, snap Snapshot, logos []LogoAsset, opts ...DesignOption) (*Design, error) {
	pt := snap.ProductType
	if pt == "" {
		pt = ProductTShirt
	}
	d, err := NewDesign(catalog, pt, snap.ProductColor, opts...)
	if err != nil {
		return nil, err
	}
	if err := d.restorePlacements(logos, snap.SelectedLocations); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Design) restorePlacements(logos []LogoAsset, selected []SelectedLocation) error {
	for _, a := range logos {
		if err := d.registry.Restore(a); err != nil {
			return apperrors.Wrap(err, apperrors.CodeUnknown, "restore logo")
		}
		d.textures[a.ID] = TextureStatus{State: TexturePending}
	}
	for _, sl := range selected {
		if err := d.store.restore(sl.LocationID, sl.state()); err != nil {
			if apperrors.IsCode(err, apperrors.ErrCodeLocationUnknown) {
				return apperrors.Wrap(err, apperrors.ErrCodeSnapshotInvalid, "snapshot references an unknown location")
			}
			return err
		}
	}
	return nil
}

// DesignRecord is the complete persisted state of a design.
type DesignRecord struct {
	ID            DesignID                 `json:"id"`
	ProductType   ProductType              `json:"productType"`
	ProductColor  string                   `json:"productColor"`
	TermsAccepted bool                     `json:"termsAccepted"`
	Logos         []LogoAsset              `json:"logos"`
	Placements    []SelectedLocation       `json:"placements"`
	Textures      map[LogoID]TextureStatus `json:"textures,omitempty"`
	Version       int64                    `json:"version"`
	CreatedAt     time.Time                `json:"createdAt"`
	UpdatedAt     time.Time                `json:"updatedAt"`
}

// Record captures the design for persistence.
func (d *Design) Record() DesignRecord {
	snap := d.Snapshot()
	tex := make(map[LogoID]TextureStatus, len(d.textures))
	for k, v := range d.textures {
		tex[k] = v
	}
	return DesignRecord{
		ID:            d.id,
		ProductType:   d.template.Type,
		ProductColor:  d.color,
		TermsAccepted: d.termsAccepted,
		Logos:         d.registry.List(),
		Placements:    snap.SelectedLocations,
		Textures:      tex,
		Version:       d.version,
		CreatedAt:     d.createdAt,
		UpdatedAt:     d.updatedAt,
	}
}

// RehydrateDesign rebuilds a design from a persisted record, preserving its
// id, version, texture status and timestamps.
func RehydrateDesign(catalog *Catalog, rec DesignRecord, opts ...DesignOption) (*Design, error) {
	if rec.ID == "" {
		return nil, apperrors.InvalidParam("design record has no id")
	}
	opts = append(opts, WithDesignID(rec.ID))
	d, err := NewDesign(catalog, rec.ProductType, rec.ProductColor, opts...)
	if err != nil {
		return nil, err
	}
	if err := d.restorePlacements(rec.Logos, rec.Placements); err != nil {
		return nil, err
	}
	for id, st := range rec.Textures {
		if d.registry.Contains(id) {
			d.textures[id] = st
		}
	}
	d.termsAccepted = rec.TermsAccepted
	d.version = rec.Version
	if !rec.CreatedAt.IsZero() {
		d.createdAt = rec.CreatedAt
	}
	if !rec.UpdatedAt.IsZero() {
		d.updatedAt = rec.UpdatedAt
	}
	return d, nil
}

// SetVersion is called by repositories after a successful write.
func (d *Design) SetVersion(v int64) { d.version = v }

//Personal.AI order the ending
