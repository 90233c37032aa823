package render

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"image"
	"image/png"
	"io"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/draw"

	apperrors "github.com/turtacn/PrintShop-Customizer/pkg/errors"
)

// Format is an encoded image container.
type Format string

const (
	FormatWebP Format = "webp"
	FormatPNG  Format = "png"
)

// ParseFormat accepts "webp" or "png" in any case.  An empty string selects
// WebP.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatWebP:
		return FormatWebP, nil
	case FormatPNG:
		return FormatPNG, nil
	default:
		return "", apperrors.New(apperrors.ErrCodeTextureFormatInvalid, "unsupported texture format").
			WithDetail("format=" + s)
	}
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/webp"
}

// Ext returns the file extension of f, without the dot.
func (f Format) Ext() string { return string(f) }

// Encode writes img to w in format f.  WebP output is lossless.
func Encode(w io.Writer, img image.Image, f Format) error {
	var err error
	switch f {
	case FormatWebP:
		err = nativewebp.Encode(w, img, nil)
	case FormatPNG:
		err = png.Encode(w, img)
	default:
		return apperrors.New(apperrors.ErrCodeTextureFormatInvalid, "unsupported texture format").
			WithDetail("format=" + string(f))
	}
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeTextureEncodeFailed, "encode texture")
	}
	return nil
}

// EncodeBytes encodes img and returns the bytes with their SHA-256 hex digest.
func EncodeBytes(img image.Image, f Format) ([]byte, string, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, f); err != nil {
		return nil, "", err
	}
	sum := sha256.Sum256(buf.Bytes())
	return buf.Bytes(), hex.EncodeToString(sum[:]), nil
}

// Thumbnail scales img so that its longer side is at most maxDim, keeping the
// aspect ratio.  Images already within bounds are copied unscaled.
func Thumbnail(img image.Image, maxDim int) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxDim > 0 && (w > maxDim || h > maxDim) {
		if w >= h {
			h = max(1, h*maxDim/w)
			w = maxDim
		} else {
			w = max(1, w*maxDim/h)
			h = maxDim
		}
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
		return dst
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

//Personal.AI order the ending
