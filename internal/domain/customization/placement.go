package customization

import (
	"fmt"
	"math"
)

// Size and rotation ranges.  Out-of-range input is clamped, never rejected.
const (
	MinSizePercent         = 10.0
	MaxSizePercent         = 60.0
	MinRotationDegrees     = -180.0
	MaxRotationDegrees     = 180.0
	DefaultRotationDegrees = 0.0
)

// ClampSize bounds v to [MinSizePercent, MaxSizePercent].  NaN yields fallback
// (itself clamped).
func ClampSize(v, fallback float64) float64 {
	if math.IsNaN(v) {
		v = fallback
	}
	return math.Max(MinSizePercent, math.Min(MaxSizePercent, v))
}

// ClampRotation bounds v to [MinRotationDegrees, MaxRotationDegrees].  NaN
// yields DefaultRotationDegrees.  Values are clamped rather than wrapped, so
// 270 becomes 180.
func ClampRotation(v float64) float64 {
	if math.IsNaN(v) {
		return DefaultRotationDegrees
	}
	return math.Max(MinRotationDegrees, math.Min(MaxRotationDegrees, v))
}

// PlacementConfig is the full configuration of a location that has a logo.
type PlacementConfig struct {
	LogoID          LogoID  `json:"logoId"`
	SizePercent     float64 `json:"sizePercent"`
	RotationDegrees float64 `json:"rotationDegrees"`
}

// PlacementState is the per-location state of a selected location.  It is a
// closed sum: the only implementations are Configured and NeedsLogo.
type PlacementState interface {
	isPlacementState()
	// Size returns the size in percent, retained even without a logo.
	Size() float64
	// Rotation returns the rotation in degrees, retained even without a logo.
	Rotation() float64
}

// Configured is a selected location with a logo that exists in the registry.
type Configured struct {
	Config PlacementConfig
}

// NeedsLogo is a selected location waiting for a logo.  Size and rotation are
// kept so that a later assignment does not reset user adjustments.
type NeedsLogo struct {
	SizePercent     float64
	RotationDegrees float64
}

func (Configured) isPlacementState() {}
func (NeedsLogo) isPlacementState()  {}

func (c Configured) Size() float64     { return c.Config.SizePercent }
func (c Configured) Rotation() float64 { return c.Config.RotationDegrees }
func (n NeedsLogo) Size() float64      { return n.SizePercent }
func (n NeedsLogo) Rotation() float64  { return n.RotationDegrees }

// MatchState dispatches on the variant of s.  Every caller handles both
// variants; a nil or foreign state panics.
func MatchState[T any](s PlacementState, configured func(Configured) T, needsLogo func(NeedsLogo) T) T {
	switch v := s.(type) {
	case Configured:
		return configured(v)
	case NeedsLogo:
		return needsLogo(v)
	default:
		panic(fmt.Sprintf("customization: unexpected placement state %T", s))
	}
}

// LogoOf returns the assigned logo, if any.
func LogoOf(s PlacementState) (LogoID, bool) {
	if c, ok := s.(Configured); ok {
		return c.Config.LogoID, true
	}
	return "", false
}

// Placement pairs a selected location with its state.
type Placement struct {
	Location PlacementLocation
	State    PlacementState
}

// IsConfigured reports whether the placement has a logo.
func (p Placement) IsConfigured() bool {
	_, ok := p.State.(Configured)
	return ok
}

//Personal.AI order the ending
