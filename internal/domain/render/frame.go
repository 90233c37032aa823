package render

import (
	"github.com/turtacn/PrintShop-Customizer/internal/domain/customization"
)

// SkipReason explains why a selected location produced no frame item.
type SkipReason string

const (
	SkipNeedsLogo      SkipReason = "needs_logo"
	SkipTexturePending SkipReason = "texture_pending"
	SkipTextureFailed  SkipReason = "texture_failed"
	SkipLogoMissing    SkipReason = "logo_missing"
)

// FrameItem is one decal for the render surface.
type FrameItem struct {
	LocationID customization.LocationID `json:"locationId"`
	LogoID     customization.LogoID     `json:"logoId"`
	TextureRef customization.ImageRef   `json:"textureRef"`
	Side       customization.Side       `json:"side"`
	Transform
}

// Skipped is a selected location left out of the frame.
type Skipped struct {
	LocationID customization.LocationID `json:"locationId"`
	Reason     SkipReason               `json:"reason"`
	Detail     string                   `json:"detail,omitempty"`
}

// BaseMaterial describes the texture the surface should apply to the product.
type BaseMaterial struct {
	Archetype customization.ArchetypeKind `json:"archetype"`
	Color     string                      `json:"color"`
	Wrap      WrapMode                    `json:"wrap"`
}

// Frame is the full render description of a design.
type Frame struct {
	ProductType customization.ProductType `json:"productType"`
	Material    BaseMaterial              `json:"material"`
	Items       []FrameItem               `json:"items"`
	Skipped     []Skipped                 `json:"skipped,omitempty"`
}

// LogoSource resolves logo ids to assets.  *customization.LogoRegistry
// satisfies it.
type LogoSource interface {
	Get(id customization.LogoID) (customization.LogoAsset, bool)
}

// MapPlacements builds a frame from explicit inputs.  Placements without a
// logo, or whose logo texture is not ready, are listed in Skipped and emit no
// geometry.  A nil lookup treats every texture as ready.
func MapPlacements(
	tmpl customization.ProductTemplate,
	productColor string,
	placements []customization.Placement,
	logos LogoSource,
	lookup customization.TextureLookup,
) Frame {
	if lookup == nil {
		lookup = customization.AllTexturesReady{}
	}
	f := Frame{
		ProductType: tmpl.Type,
		Material: BaseMaterial{
			Archetype: tmpl.Archetype.Kind,
			Color:     productColor,
			Wrap:      WrapFor(tmpl.Archetype.Kind),
		},
		Items: make([]FrameItem, 0, len(placements)),
	}
	for _, p := range placements {
		logoID, ok := customization.LogoOf(p.State)
		if !ok {
			f.Skipped = append(f.Skipped, Skipped{LocationID: p.Location.ID, Reason: SkipNeedsLogo})
			continue
		}
		asset, ok := logos.Get(logoID)
		if !ok {
			f.Skipped = append(f.Skipped, Skipped{LocationID: p.Location.ID, Reason: SkipLogoMissing})
			continue
		}
		switch st := lookup.TextureStatus(logoID); st.State {
		case customization.TextureReady:
		case customization.TextureFailed:
			f.Skipped = append(f.Skipped, Skipped{LocationID: p.Location.ID, Reason: SkipTextureFailed, Detail: st.Reason})
			continue
		default:
			f.Skipped = append(f.Skipped, Skipped{LocationID: p.Location.ID, Reason: SkipTexturePending})
			continue
		}
		f.Items = append(f.Items, FrameItem{
			LocationID: p.Location.ID,
			LogoID:     logoID,
			TextureRef: asset.ImageRef,
			Side:       p.Location.Anchor.Side,
			Transform:  MapTransform(tmpl, p.Location, p.State),
		})
	}
	return f
}

// MapDesign builds the frame of d using its own texture status.
func MapDesign(d *customization.Design) Frame {
	return MapPlacements(d.Template(), d.ProductColor(), d.Placements(), d.Registry(), d)
}

//Personal.AI order the ending
