// Package render maps a customization design onto the numeric parameters a 3D
// surface consumes: one transform per configured placement and a procedurally
// synthesized base-material texture.
package render

import (
	"image/color"
	"strconv"

	"github.com/turtacn/PrintShop-Customizer/internal/domain/customization"
)

// LuminanceThreshold separates dark from light base colors.
const LuminanceThreshold = 0.5

// ParseHexColor converts a "#RGB" or "#RRGGBB" string into an opaque color.
func ParseHexColor(s string) (color.NRGBA, error) {
	norm, err := customization.NormalizeColor(s)
	if err != nil {
		return color.NRGBA{}, err
	}
	v, _ := strconv.ParseUint(norm[1:], 16, 32)
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// Luminance returns the perceptual brightness of c in [0,1] using Rec. 601
// luma weights.
func Luminance(c color.NRGBA) float64 {
	return (0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)) / 255
}

// IsDark reports whether c falls below LuminanceThreshold.
func IsDark(c color.NRGBA) bool { return Luminance(c) < LuminanceThreshold }

func clamp8(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v + 0.5)
	}
}

// mix blends a toward b by t in [0,1].
func mix(a, b color.NRGBA, t float64) color.NRGBA {
	return color.NRGBA{
		R: clamp8(float64(a.R) + (float64(b.R)-float64(a.R))*t),
		G: clamp8(float64(a.G) + (float64(b.G)-float64(a.G))*t),
		B: clamp8(float64(a.B) + (float64(b.B)-float64(a.B))*t),
		A: a.A,
	}
}

//Personal.AI order the ending
