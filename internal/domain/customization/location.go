package customization

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// LocationID identifies a placement location within a product template.
type LocationID string

// Locations shipped in the default catalog.
const (
	FrontCenter      LocationID = "front-center"
	LeftChest        LocationID = "left-chest"
	RightChest       LocationID = "right-chest"
	LeftSleeve       LocationID = "left-sleeve"
	RightSleeve      LocationID = "right-sleeve"
	BackCenter       LocationID = "back-center"
	BackNeck         LocationID = "back-neck"
	BackLeftShoulder LocationID = "back-left-shoulder"

	CardFront  LocationID = "card-front"
	CardCorner LocationID = "card-corner"
	CardBack   LocationID = "card-back"
)

// Side is the face of the product a location sits on.
type Side int

const (
	SideFront Side = iota
	SideBack
)

func (s Side) String() string {
	switch s {
	case SideFront:
		return "front"
	case SideBack:
		return "back"
	default:
		return fmt.Sprintf("side(%d)", int(s))
	}
}

// MarshalText encodes the side as "front" or "back".
func (s Side) MarshalText() ([]byte, error) {
	if s != SideFront && s != SideBack {
		return nil, fmt.Errorf("customization: invalid side %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes "front" or "back" (case-insensitive).
func (s *Side) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "front":
		*s = SideFront
	case "back":
		*s = SideBack
	default:
		return fmt.Errorf("customization: unknown side %q", string(b))
	}
	return nil
}

// SizeClass selects a location's default logo size.
type SizeClass int

const (
	// SizeClassCenter covers large central prints (front/back center, card face).
	SizeClassCenter SizeClass = iota
	// SizeClassCompact covers chest, sleeve, neck and corner marks.
	SizeClassCompact
)

// Default sizes, in percent of the location's base scale.
const (
	DefaultCenterSizePercent  = 35.0
	DefaultCompactSizePercent = 20.0
)

// DefaultSizePercent returns the size a freshly selected location starts at.
func (c SizeClass) DefaultSizePercent() float64 {
	if c == SizeClassCompact {
		return DefaultCompactSizePercent
	}
	return DefaultCenterSizePercent
}

func (c SizeClass) String() string {
	if c == SizeClassCompact {
		return "compact"
	}
	return "center"
}

// MarshalText encodes the class as "center" or "compact".
func (c SizeClass) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText decodes "center" or "compact".
func (c *SizeClass) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "center":
		*c = SizeClassCenter
	case "compact":
		*c = SizeClassCompact
	default:
		return fmt.Errorf("customization: unknown size class %q", string(b))
	}
	return nil
}

// MirrorRule lets a single location override its archetype's back-side X
// mirroring.
type MirrorRule int

const (
	MirrorInherit MirrorRule = iota
	MirrorAlways
	MirrorNever
)

// Anchor is the geometric attachment point of a location in model space.
// The X offset of a back-side anchor is authored as seen from behind the
// product; archetypes that mirror negate it into model space.
type Anchor struct {
	Offset       mgl64.Vec3 `json:"offset"`
	BaseRotation mgl64.Vec3 `json:"baseRotation"`
	Side         Side       `json:"side"`
}

// PlacementLocation is an immutable catalog entry.
type PlacementLocation struct {
	ID        LocationID `json:"id"`
	Label     string     `json:"label"`
	Anchor    Anchor     `json:"anchor"`
	BaseScale float64    `json:"baseScale"`
	Popular   bool       `json:"popular"`
	SizeClass SizeClass  `json:"sizeClass"`
	Mirror    MirrorRule `json:"-"`
}

// DefaultSizePercent is the location's size-class default.
func (l PlacementLocation) DefaultSizePercent() float64 {
	return l.SizeClass.DefaultSizePercent()
}

// IsBack reports whether the location sits on the back face.
func (l PlacementLocation) IsBack() bool { return l.Anchor.Side == SideBack }

//Personal.AI order the ending
