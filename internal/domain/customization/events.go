package customization

import (
	"github.com/turtacn/PrintShop-Customizer/pkg/types/common"
)

const (
	EventLogoUploaded       = "logo.uploaded"
	EventDesignColorChanged = "design.color_changed"
)

// LogoUploadedEvent is raised once a logo image is stored and registered.
type LogoUploadedEvent struct {
	common.BaseEvent
	LogoID      LogoID   `json:"logo_id"`
	Name        string   `json:"name"`
	ImageRef    ImageRef `json:"image_ref"`
	ContentType string   `json:"content_type"`
	SizeBytes   int64    `json:"size_bytes"`
}

func NewLogoUploadedEvent(design DesignID, asset LogoAsset, contentType string, size int64) *LogoUploadedEvent {
	return &LogoUploadedEvent{
		BaseEvent:   common.NewBaseEvent(EventLogoUploaded, string(design)),
		LogoID:      asset.ID,
		Name:        asset.Name,
		ImageRef:    asset.ImageRef,
		ContentType: contentType,
		SizeBytes:   size,
	}
}

// ColorChangedEvent is raised when a design's product color changes.
type ColorChangedEvent struct {
	common.BaseEvent
	ProductType ProductType `json:"product_type"`
	Color       string      `json:"color"`
	Previous    string      `json:"previous"`
}

func NewColorChangedEvent(d *Design, previous string) *ColorChangedEvent {
	return &ColorChangedEvent{
		BaseEvent:   common.NewBaseEvent(EventDesignColorChanged, string(d.ID())),
		ProductType: d.ProductType(),
		Color:       d.ProductColor(),
		Previous:    previous,
	}
}

//Personal.AI order the ending
