package customization

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	apperrors "github.com/turtacn/PrintShop-Customizer/pkg/errors"
)

// ProductType names a customizable product.
type ProductType string

const (
	ProductTShirt       ProductType = "tshirt"
	ProductHoodie       ProductType = "hoodie"
	ProductBusinessCard ProductType = "business-card"
)

// ArchetypeKind groups products by base material.
type ArchetypeKind string

const (
	ArchetypeFabric ArchetypeKind = "fabric"
	ArchetypeCard   ArchetypeKind = "card"
)

// Archetype carries the per-material rendering rules.
//
// Back-side locations always compose a half-turn about BackHalfTurnAxis.
// MirrorBackX additionally negates the X offset of back-side anchors.
type Archetype struct {
	Kind             ArchetypeKind `json:"kind"`
	MirrorBackX      bool          `json:"mirrorBackX"`
	BackHalfTurnAxis mgl64.Vec3    `json:"backHalfTurnAxis"`
	AspectScale      mgl64.Vec2    `json:"aspectScale"`
}

// FabricArchetype is used by garments.
func FabricArchetype() Archetype {
	return Archetype{
		Kind:             ArchetypeFabric,
		MirrorBackX:      true,
		BackHalfTurnAxis: mgl64.Vec3{0, 1, 0},
		AspectScale:      mgl64.Vec2{1, 1},
	}
}

// CardArchetype is used by rigid card stock.
func CardArchetype() Archetype {
	return Archetype{
		Kind:             ArchetypeCard,
		MirrorBackX:      false,
		BackHalfTurnAxis: mgl64.Vec3{0, 1, 0},
		AspectScale:      mgl64.Vec2{1, 1},
	}
}

// ProductTemplate is the catalog entry for one product type.
type ProductTemplate struct {
	Type      ProductType         `json:"type"`
	Label     string              `json:"label"`
	Archetype Archetype           `json:"archetype"`
	Locations []PlacementLocation `json:"locations"`
}

// Location looks up a location by id.
func (t ProductTemplate) Location(id LocationID) (PlacementLocation, bool) {
	for _, l := range t.Locations {
		if l.ID == id {
			return l, true
		}
	}
	return PlacementLocation{}, false
}

// MirrorsX reports whether loc's X offset is negated when rendered.
func (t ProductTemplate) MirrorsX(loc PlacementLocation) bool {
	if !loc.IsBack() {
		return false
	}
	switch loc.Mirror {
	case MirrorAlways:
		return true
	case MirrorNever:
		return false
	default:
		return t.Archetype.MirrorBackX
	}
}

func (t ProductTemplate) clone() ProductTemplate {
	out := t
	out.Locations = make([]PlacementLocation, len(t.Locations))
	copy(out.Locations, t.Locations)
	return out
}

// Catalog is the immutable set of product templates.
type Catalog struct {
	templates map[ProductType]ProductTemplate
	order     []ProductType
}

// NewCatalog validates and indexes templates.  Templates keep the order given.
func NewCatalog(templates ...ProductTemplate) (*Catalog, error) {
	c := &Catalog{templates: make(map[ProductType]ProductTemplate, len(templates))}
	for _, t := range templates {
		if err := validateTemplate(t); err != nil {
			return nil, err
		}
		if _, dup := c.templates[t.Type]; dup {
			return nil, catalogError("duplicate product type " + string(t.Type))
		}
		t = t.clone()
		if n := t.Archetype.BackHalfTurnAxis.Len(); n > 0 {
			t.Archetype.BackHalfTurnAxis = t.Archetype.BackHalfTurnAxis.Mul(1 / n)
		}
		c.templates[t.Type] = t
		c.order = append(c.order, t.Type)
	}
	return c, nil
}

func validateTemplate(t ProductTemplate) error {
	if t.Type == "" {
		return catalogError("product type must not be empty")
	}
	switch t.Archetype.Kind {
	case ArchetypeFabric, ArchetypeCard:
	default:
		return catalogError("unknown archetype " + string(t.Archetype.Kind) + " for " + string(t.Type))
	}
	if t.Archetype.BackHalfTurnAxis.Len() == 0 {
		return catalogError("half-turn axis must be non-zero for " + string(t.Type))
	}
	if t.Archetype.AspectScale.X() <= 0 || t.Archetype.AspectScale.Y() <= 0 {
		return catalogError("aspect scale must be positive for " + string(t.Type))
	}
	if len(t.Locations) == 0 {
		return catalogError("product " + string(t.Type) + " has no locations")
	}
	seen := make(map[LocationID]struct{}, len(t.Locations))
	for _, l := range t.Locations {
		if l.ID == "" {
			return catalogError("location id must not be empty in " + string(t.Type))
		}
		if _, dup := seen[l.ID]; dup {
			return catalogError("duplicate location " + string(l.ID) + " in " + string(t.Type))
		}
		seen[l.ID] = struct{}{}
		if l.BaseScale <= 0 || math.IsNaN(l.BaseScale) || math.IsInf(l.BaseScale, 0) {
			return catalogError("location " + string(l.ID) + " needs a positive base scale")
		}
		if l.Anchor.Side != SideFront && l.Anchor.Side != SideBack {
			return catalogError("location " + string(l.ID) + " has an invalid side")
		}
	}
	return nil
}

func catalogError(msg string) error {
	return apperrors.New(apperrors.ErrCodeCatalogInvalid, msg)
}

// ProductTypes lists the catalog's product types in declaration order.
func (c *Catalog) ProductTypes() []ProductType {
	out := make([]ProductType, len(c.order))
	copy(out, c.order)
	return out
}

// Template returns a copy of the template for pt.
func (c *Catalog) Template(pt ProductType) (ProductTemplate, error) {
	t, ok := c.templates[pt]
	if !ok {
		return ProductTemplate{}, apperrors.New(apperrors.ErrCodeProductTypeUnknown, "unknown product type").
			WithDetail("type=" + string(pt))
	}
	return t.clone(), nil
}

// LocationsFor returns the ordered locations offered for pt.  The returned
// slice is a copy; mutating it does not affect the catalog.
func (c *Catalog) LocationsFor(pt ProductType) ([]PlacementLocation, error) {
	t, err := c.Template(pt)
	if err != nil {
		return nil, err
	}
	return t.Locations, nil
}

// DefaultCatalog returns the shipped product templates.  Offsets are in model
// units with +Z facing the viewer and +Y up.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(tshirtTemplate(), hoodieTemplate(), businessCardTemplate())
	if err != nil {
		panic("customization: default catalog is invalid: " + err.Error())
	}
	return c
}

func tshirtTemplate() ProductTemplate {
	return ProductTemplate{
		Type:      ProductTShirt,
		Label:     "Classic T-Shirt",
		Archetype: FabricArchetype(),
		Locations: []PlacementLocation{
			{
				ID: FrontCenter, Label: "Front Center", Popular: true, SizeClass: SizeClassCenter, BaseScale: 0.30,
				Anchor: Anchor{Offset: mgl64.Vec3{0, 0.15, 0.16}, Side: SideFront},
			},
			{
				ID: LeftChest, Label: "Left Chest", Popular: true, SizeClass: SizeClassCompact, BaseScale: 0.12,
				Anchor: Anchor{Offset: mgl64.Vec3{0.11, 0.32, 0.15}, Side: SideFront},
			},
			{
				ID: RightChest, Label: "Right Chest", SizeClass: SizeClassCompact, BaseScale: 0.12,
				Anchor: Anchor{Offset: mgl64.Vec3{-0.11, 0.32, 0.15}, Side: SideFront},
			},
			{
				ID: LeftSleeve, Label: "Left Sleeve", SizeClass: SizeClassCompact, BaseScale: 0.10,
				Anchor: Anchor{Offset: mgl64.Vec3{0.34, 0.30, 0.02}, BaseRotation: mgl64.Vec3{0, math.Pi / 2, 0}, Side: SideFront},
			},
			{
				ID: RightSleeve, Label: "Right Sleeve", SizeClass: SizeClassCompact, BaseScale: 0.10,
				Anchor: Anchor{Offset: mgl64.Vec3{-0.34, 0.30, 0.02}, BaseRotation: mgl64.Vec3{0, -math.Pi / 2, 0}, Side: SideFront},
			},
			{
				ID: BackCenter, Label: "Back Center", Popular: true, SizeClass: SizeClassCenter, BaseScale: 0.32,
				Anchor: Anchor{Offset: mgl64.Vec3{0, 0.12, -0.16}, Side: SideBack},
			},
			{
				ID: BackNeck, Label: "Back Neck", SizeClass: SizeClassCompact, BaseScale: 0.08,
				Anchor: Anchor{Offset: mgl64.Vec3{0, 0.38, -0.15}, Side: SideBack},
			},
			{
				ID: BackLeftShoulder, Label: "Back Left Shoulder", SizeClass: SizeClassCompact, BaseScale: 0.10,
				Anchor: Anchor{Offset: mgl64.Vec3{0.14, 0.33, -0.15}, Side: SideBack},
			},
		},
	}
}

func hoodieTemplate() ProductTemplate {
	return ProductTemplate{
		Type:      ProductHoodie,
		Label:     "Pullover Hoodie",
		Archetype: FabricArchetype(),
		Locations: []PlacementLocation{
			{
				ID: FrontCenter, Label: "Front Center", Popular: true, SizeClass: SizeClassCenter, BaseScale: 0.28,
				Anchor: Anchor{Offset: mgl64.Vec3{0, 0.10, 0.18}, Side: SideFront},
			},
			{
				ID: LeftChest, Label: "Left Chest", Popular: true, SizeClass: SizeClassCompact, BaseScale: 0.12,
				Anchor: Anchor{Offset: mgl64.Vec3{0.11, 0.30, 0.17}, Side: SideFront},
			},
			{
				ID: LeftSleeve, Label: "Left Sleeve", SizeClass: SizeClassCompact, BaseScale: 0.10,
				Anchor: Anchor{Offset: mgl64.Vec3{0.36, 0.22, 0.02}, BaseRotation: mgl64.Vec3{0, math.Pi / 2, 0}, Side: SideFront},
			},
			{
				ID: RightSleeve, Label: "Right Sleeve", SizeClass: SizeClassCompact, BaseScale: 0.10,
				Anchor: Anchor{Offset: mgl64.Vec3{-0.36, 0.22, 0.02}, BaseRotation: mgl64.Vec3{0, -math.Pi / 2, 0}, Side: SideFront},
			},
			{
				ID: BackCenter, Label: "Back Center", Popular: true, SizeClass: SizeClassCenter, BaseScale: 0.32,
				Anchor: Anchor{Offset: mgl64.Vec3{0, 0.12, -0.18}, Side: SideBack},
			},
		},
	}
}

func businessCardTemplate() ProductTemplate {
	return ProductTemplate{
		Type:      ProductBusinessCard,
		Label:     "Business Card",
		Archetype: CardArchetype(),
		Locations: []PlacementLocation{
			{
				ID: CardFront, Label: "Card Front", Popular: true, SizeClass: SizeClassCenter, BaseScale: 0.50,
				Anchor: Anchor{Offset: mgl64.Vec3{0, 0, 0.001}, Side: SideFront},
			},
			{
				ID: CardCorner, Label: "Card Corner", SizeClass: SizeClassCompact, BaseScale: 0.18,
				Anchor: Anchor{Offset: mgl64.Vec3{0.30, -0.15, 0.001}, Side: SideFront},
			},
			{
				ID: CardBack, Label: "Card Back", SizeClass: SizeClassCenter, BaseScale: 0.50,
				Anchor: Anchor{Offset: mgl64.Vec3{0, 0, -0.001}, Side: SideBack},
			},
		},
	}
}

//Personal.AI order the ending
