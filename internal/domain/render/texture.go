package render

import (
	"fmt"
	"image"
	"image/color"
	"math/rand/v2"
	"strings"

	"golang.org/x/image/draw"
	"gonum.org/v1/gonum/stat"

	"github.com/turtacn/PrintShop-Customizer/internal/domain/customization"
	apperrors "github.com/turtacn/PrintShop-Customizer/pkg/errors"
)

// WrapMode tells the surface how to sample outside [0,1] texture coordinates.
type WrapMode int

const (
	WrapRepeat WrapMode = iota
	WrapClamp
)

func (w WrapMode) String() string {
	if w == WrapClamp {
		return "clamp"
	}
	return "repeat"
}

// MarshalText encodes the mode as "repeat" or "clamp".
func (w WrapMode) MarshalText() ([]byte, error) { return []byte(w.String()), nil }

// UnmarshalText decodes "repeat" or "clamp".
func (w *WrapMode) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "repeat":
		*w = WrapRepeat
	case "clamp":
		*w = WrapClamp
	default:
		return fmt.Errorf("render: unknown wrap mode %q", string(b))
	}
	return nil
}

// WrapFor returns the wrap mode used by an archetype's base material.
func WrapFor(kind customization.ArchetypeKind) WrapMode {
	if kind == customization.ArchetypeCard {
		return WrapClamp
	}
	return WrapRepeat
}

// ─────────────────────────────────────────────────────────────────────────────
// Options
// ─────────────────────────────────────────────────────────────────────────────

// Texture synthesis limits and defaults.
const (
	MinTextureSize     = 16
	MaxTextureSize     = 4096
	DefaultTextureSize = 256

	DefaultFabricNoiseAmplitude = 0.08
	DefaultFabricGridPeriod     = 8
	DefaultFabricGridAlpha      = 18
	DefaultCardSpeckleDensity   = 0.02
	DefaultPremiumColor         = "#1A1A1A"
)

// Premium accent band geometry, as fractions of the texture height.
const (
	PremiumBandTop    = 0.78
	PremiumBandBottom = 0.84
)

var (
	premiumGold = color.NRGBA{R: 212, G: 175, B: 55, A: 255}
	strokeLight = color.NRGBA{R: 245, G: 245, B: 245, A: 255}
	strokeDark  = color.NRGBA{R: 30, G: 30, B: 30, A: 255}
	white       = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

// TextureOptions parameterises base-material synthesis.
type TextureOptions struct {
	Size                 int
	FabricNoiseAmplitude float64
	FabricGridPeriod     int
	FabricGridAlpha      uint8
	CardSpeckleDensity   float64
	PremiumColor         string
}

// DefaultTextureOptions returns the shipped synthesis parameters.
func DefaultTextureOptions() TextureOptions {
	return TextureOptions{
		Size:                 DefaultTextureSize,
		FabricNoiseAmplitude: DefaultFabricNoiseAmplitude,
		FabricGridPeriod:     DefaultFabricGridPeriod,
		FabricGridAlpha:      DefaultFabricGridAlpha,
		CardSpeckleDensity:   DefaultCardSpeckleDensity,
		PremiumColor:         DefaultPremiumColor,
	}
}

func (o TextureOptions) validate() error {
	if o.Size < MinTextureSize || o.Size > MaxTextureSize {
		return apperrors.Newf(apperrors.ErrCodeBadRequest, "texture size must be within [%d,%d]", MinTextureSize, MaxTextureSize).
			WithDetail(fmt.Sprintf("size=%d", o.Size))
	}
	if o.FabricNoiseAmplitude < 0 || o.FabricNoiseAmplitude > 0.1 {
		return apperrors.New(apperrors.ErrCodeBadRequest, "fabric noise amplitude must be within [0,0.1]")
	}
	if o.FabricGridPeriod < 2 {
		return apperrors.New(apperrors.ErrCodeBadRequest, "fabric grid period must be at least 2")
	}
	if o.CardSpeckleDensity < 0 || o.CardSpeckleDensity > 1 {
		return apperrors.New(apperrors.ErrCodeBadRequest, "card speckle density must be within [0,1]")
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Synthesis
// ─────────────────────────────────────────────────────────────────────────────

// Texture is a synthesized base-material image.
type Texture struct {
	Image     *image.NRGBA
	Archetype customization.ArchetypeKind
	Color     string
	Seed      uint64
	Wrap      WrapMode
}

// Synthesize produces the base-material texture of an archetype.  Output is a
// pure function of its arguments: equal inputs yield identical pixels.
func Synthesize(kind customization.ArchetypeKind, baseColor string, seed uint64, opts TextureOptions) (*Texture, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	base, err := ParseHexColor(baseColor)
	if err != nil {
		return nil, err
	}
	norm, _ := customization.NormalizeColor(baseColor)

	img := image.NewNRGBA(image.Rect(0, 0, opts.Size, opts.Size))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: base}, image.Point{}, draw.Src)
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	switch kind {
	case customization.ArchetypeFabric:
		paintFabric(img, base, rng, opts)
	case customization.ArchetypeCard:
		premium := false
		if p, err := customization.NormalizeColor(opts.PremiumColor); err == nil && p == norm {
			premium = true
		}
		paintCard(img, base, rng, opts, premium)
	default:
		return nil, apperrors.New(apperrors.ErrCodeTextureSynthesisFailed, "unknown archetype").
			WithDetail("archetype=" + string(kind))
	}

	return &Texture{Image: img, Archetype: kind, Color: norm, Seed: seed, Wrap: WrapFor(kind)}, nil
}

// paintFabric perturbs brightness per pixel and overlays a faint weave grid.
func paintFabric(img *image.NRGBA, base color.NRGBA, rng *rand.Rand, opts TextureOptions) {
	b := img.Bounds()
	amp := opts.FabricNoiseAmplitude * 255
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			d := (rng.Float64()*2 - 1) * amp
			i := img.PixOffset(x, y)
			img.Pix[i] = clamp8(float64(base.R) + d)
			img.Pix[i+1] = clamp8(float64(base.G) + d)
			img.Pix[i+2] = clamp8(float64(base.B) + d)
		}
	}

	line := &image.Uniform{C: color.NRGBA{A: opts.FabricGridAlpha}}
	for p := 0; p < b.Dx(); p += opts.FabricGridPeriod {
		draw.Draw(img, image.Rect(p, b.Min.Y, p+1, b.Max.Y), line, image.Point{}, draw.Over)
	}
	for p := 0; p < b.Dy(); p += opts.FabricGridPeriod {
		draw.Draw(img, image.Rect(b.Min.X, p, b.Max.X, p+1), line, image.Point{}, draw.Over)
	}
}

// paintCard adds light speckle, two corner strokes and the premium band.
func paintCard(img *image.NRGBA, base color.NRGBA, rng *rand.Rand, opts TextureOptions, premium bool) {
	b := img.Bounds()
	speck := SpeckleColor(base)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if rng.Float64() < opts.CardSpeckleDensity {
				img.SetNRGBA(x, y, speck)
			}
		}
	}

	if premium {
		top := int(float64(b.Dy()) * PremiumBandTop)
		bottom := int(float64(b.Dy()) * PremiumBandBottom)
		draw.Draw(img, image.Rect(b.Min.X, top, b.Max.X, bottom), &image.Uniform{C: premiumGold}, image.Point{}, draw.Src)
	}

	stroke := &image.Uniform{C: StrokeColor(base)}
	for _, s := range cornerStrokes(b.Dx(), b.Dy()) {
		for i := 0; i <= s.length; i++ {
			x, y := s.x0+i, s.y0-i
			draw.Draw(img, image.Rect(x, y, x+s.width, y+s.width), stroke, image.Point{}, draw.Src)
		}
	}
}

type strokeSeg struct {
	x0, y0, length, width int
}

// cornerStrokes returns the top-left and bottom-right accents as rising
// diagonals starting at their lower-left end.
func cornerStrokes(w, h int) []strokeSeg {
	m := w / 16
	l := w / 5
	width := w / 96
	if width < 1 {
		width = 1
	}
	return []strokeSeg{
		{x0: m, y0: m + l, length: l, width: width},
		{x0: w - m - l - width, y0: h - m - width, length: l, width: width},
	}
}

// StrokeColor picks the corner accent color: light on dark bases, dark on
// light bases.
func StrokeColor(base color.NRGBA) color.NRGBA {
	if IsDark(base) {
		return strokeLight
	}
	return strokeDark
}

// SpeckleColor is the light fleck painted onto card stock.
func SpeckleColor(base color.NRGBA) color.NRGBA { return mix(base, white, 0.4) }

// ─────────────────────────────────────────────────────────────────────────────
// Statistics
// ─────────────────────────────────────────────────────────────────────────────

// Stats summarises a texture's luminance distribution.
type Stats struct {
	Pixels          int     `json:"pixels"`
	MeanLuminance   float64 `json:"meanLuminance"`
	StdDevLuminance float64 `json:"stdDevLuminance"`
}

// Measure computes luminance statistics over every pixel of img.
func Measure(img *image.NRGBA) Stats {
	b := img.Bounds()
	lum := make([]float64, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			lum = append(lum, Luminance(img.NRGBAAt(x, y)))
		}
	}
	if len(lum) == 0 {
		return Stats{}
	}
	mean, std := stat.MeanStdDev(lum, nil)
	return Stats{Pixels: len(lum), MeanLuminance: mean, StdDevLuminance: std}
}

//Personal.AI order the ending
