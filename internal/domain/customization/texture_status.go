package customization

import (
	"fmt"
	"strings"
)

// TextureState tracks whether a logo's image has been decoded for rendering.
type TextureState int

const (
	TexturePending TextureState = iota
	TextureReady
	TextureFailed
)

var textureStateNames = [...]string{"pending", "ready", "failed"}

func (s TextureState) String() string {
	if s < TexturePending || s > TextureFailed {
		return fmt.Sprintf("TextureState(%d)", int(s))
	}
	return textureStateNames[s]
}

// MarshalText encodes the state by name.
func (s TextureState) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText decodes a state name.
func (s *TextureState) UnmarshalText(b []byte) error {
	for i, n := range textureStateNames {
		if strings.EqualFold(n, string(b)) {
			*s = TextureState(i)
			return nil
		}
	}
	return fmt.Errorf("customization: unknown texture state %q", string(b))
}

// TextureStatus is the load outcome of one logo image.
type TextureStatus struct {
	State  TextureState `json:"state"`
	Width  int          `json:"width,omitempty"`
	Height int          `json:"height,omitempty"`
	Reason string       `json:"reason,omitempty"`
}

// TextureResult is one entry of a completed load batch.
type TextureResult struct {
	LogoID LogoID
	Status TextureStatus
}

// TextureLookup reports the texture status of a logo.  Renderers consult it to
// skip logos whose image is not usable.
type TextureLookup interface {
	TextureStatus(id LogoID) TextureStatus
}

// AllTexturesReady is a TextureLookup that reports every logo as ready.
type AllTexturesReady struct{}

func (AllTexturesReady) TextureStatus(LogoID) TextureStatus {
	return TextureStatus{State: TextureReady}
}

//Personal.AI order the ending
