package customization

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/turtacn/PrintShop-Customizer/pkg/errors"
)

func TestNormalizeColor(t *testing.T) {
	valid := map[string]string{
		"#1a1a1a":  "#1A1A1A",
		"1A1A1A":   "#1A1A1A",
		"#fff":     "#FFFFFF",
		" #0a0 ":   "#00AA00",
		"#C0FFEE":  "#C0FFEE",
	}
	for in, want := range valid {
		got, err := NormalizeColor(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "red", "#12345", "#GGGGGG", "#1234567"} {
		_, err := NormalizeColor(in)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeProductColorInvalid), in)
	}
}

func TestNewDesign(t *testing.T) {
	d := newTestDesign(t, ProductTShirt)

	assert.Equal(t, DesignID("design-1"), d.ID())
	assert.Equal(t, ProductTShirt, d.ProductType())
	assert.Equal(t, "#1A1A1A", d.ProductColor())
	assert.Equal(t, ReadinessEmpty, d.Readiness())
	assert.Equal(t, fixedNow, d.CreatedAt())
	assert.Zero(t, d.Version())
}

func TestNewDesign_Defaults(t *testing.T) {
	d, err := NewDesign(DefaultCatalog(), ProductHoodie, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultProductColor, d.ProductColor())
	assert.NotEmpty(t, d.ID())
}

func TestNewDesign_Errors(t *testing.T) {
	_, err := NewDesign(DefaultCatalog(), "mug", "#FFFFFF")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeProductTypeUnknown))

	_, err = NewDesign(DefaultCatalog(), ProductTShirt, "blue")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeProductColorInvalid))
}

func TestDesign_ReadinessLifecycle(t *testing.T) {
	d := newTestDesign(t, ProductTShirt)

	_, err := d.Store().ToggleLocation(FrontCenter)
	require.NoError(t, err)
	assert.Equal(t, ReadinessLocationsOnly, d.Readiness())

	l1 := d.AddLogo("Acme", "logos/acme.png")
	assert.Equal(t, ReadinessLogosAssigned, d.Readiness())
	assert.False(t, d.IsReady())

	d.AcceptTerms(true)
	assert.True(t, d.IsReady())

	require.True(t, d.RemoveLogo(l1))
	assert.Equal(t, ReadinessLocationsOnly, d.Readiness())
	assert.False(t, d.RemoveLogo(l1))
}

func TestDesign_SetProductColor(t *testing.T) {
	d := newTestDesign(t, ProductTShirt)

	changed, err := d.SetProductColor("#1A1A1A")
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = d.SetProductColor("#f00")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "#FF0000", d.ProductColor())

	_, err = d.SetProductColor("nope")
	assert.Error(t, err)
	assert.Equal(t, "#FF0000", d.ProductColor())
}

func TestDesign_UpdatedAtFollowsMutations(t *testing.T) {
	now := fixedNow
	d, err := NewDesign(DefaultCatalog(), ProductTShirt, "#FFFFFF", WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	now = now.Add(time.Minute)
	_, _ = d.Store().ToggleLocation(LeftChest)
	assert.Equal(t, now, d.UpdatedAt())

	now = now.Add(time.Minute)
	d.RenameLogo("ghost", "x")
	assert.Equal(t, fixedNow.Add(time.Minute), d.UpdatedAt(), "no-op rename must not touch")

	id := d.AddLogo("Acme", "r")
	now = now.Add(time.Minute)
	assert.True(t, d.RenameLogo(id, "Acme Corp"))
	assert.Equal(t, now, d.UpdatedAt())
	assert.Equal(t, fixedNow, d.CreatedAt())
}

func TestDesign_TextureLifecycle(t *testing.T) {
	d := newTestDesign(t, ProductTShirt)
	l1 := d.AddLogo("Acme", "r1")
	l2 := d.AddLogo("Globex", "r2")

	assert.Equal(t, TexturePending, d.TextureStatus(l1).State)
	assert.Len(t, d.PendingTextures(), 2)

	d.RemoveLogo(l2)
	applied := d.ApplyTextures([]TextureResult{
		{LogoID: l1, Status: TextureStatus{State: TextureReady, Width: 64, Height: 32}},
		{LogoID: l2, Status: TextureStatus{State: TextureReady}},
	})

	assert.Equal(t, 1, applied)
	assert.Equal(t, TextureStatus{State: TextureReady, Width: 64, Height: 32}, d.TextureStatus(l1))
	assert.Equal(t, TexturePending, d.TextureStatus(l2).State)
	assert.Empty(t, d.PendingTextures())
}

func TestDesign_FailedTextureDoesNotChangeReadiness(t *testing.T) {
	d := newTestDesign(t, ProductTShirt)
	l1 := d.AddLogo("Acme", "r1")
	_, _ = d.Store().ToggleLocation(FrontCenter)

	d.ApplyTextures([]TextureResult{{LogoID: l1, Status: TextureStatus{State: TextureFailed, Reason: "decode"}}})

	assert.Equal(t, ReadinessLogosAssigned, d.Readiness())
}

func TestDesign_PendingResultIsNotApplied(t *testing.T) {
	d := newTestDesign(t, ProductTShirt)
	l1 := d.AddLogo("Acme", "r1")
	before := d.UpdatedAt()

	applied := d.ApplyTextures([]TextureResult{{LogoID: l1, Status: TextureStatus{State: TexturePending, Reason: "interrupted"}}})

	assert.Zero(t, applied)
	assert.Equal(t, TextureStatus{State: TexturePending}, d.TextureStatus(l1))
	require.Len(t, d.PendingTextures(), 1)
	assert.Equal(t, l1, d.PendingTextures()[0].ID)
	assert.Equal(t, before, d.UpdatedAt())
}

func TestTextureState_Text(t *testing.T) {
	var s TextureState
	require.NoError(t, s.UnmarshalText([]byte("FAILED")))
	assert.Equal(t, TextureFailed, s)
	assert.Error(t, s.UnmarshalText([]byte("lost")))
	assert.Equal(t, "TextureState(5)", TextureState(5).String())
	assert.Equal(t, TextureReady, AllTexturesReady{}.TextureStatus("any").State)
}

//Personal.AI order the ending
