package customization

import (
	"encoding/json"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/turtacn/PrintShop-Customizer/pkg/errors"
)

func TestDefaultCatalog_ProductTypes(t *testing.T) {
	c := DefaultCatalog()
	assert.Equal(t, []ProductType{ProductTShirt, ProductHoodie, ProductBusinessCard}, c.ProductTypes())
}

func TestCatalog_LocationsForIsOrderedAndImmutable(t *testing.T) {
	c := DefaultCatalog()

	locs, err := c.LocationsFor(ProductTShirt)
	require.NoError(t, err)
	require.NotEmpty(t, locs)
	assert.Equal(t, FrontCenter, locs[0].ID)

	locs[0].Label = "changed"
	again, err := c.LocationsFor(ProductTShirt)
	require.NoError(t, err)
	assert.Equal(t, "Front Center", again[0].Label)
}

func TestDefaultCatalog_LocationIDs(t *testing.T) {
	tests := []struct {
		product ProductType
		want    []LocationID
	}{
		{ProductTShirt, []LocationID{FrontCenter, LeftChest, RightChest, LeftSleeve, RightSleeve, BackCenter, BackNeck, BackLeftShoulder}},
		{ProductHoodie, []LocationID{FrontCenter, LeftChest, LeftSleeve, RightSleeve, BackCenter}},
		{ProductBusinessCard, []LocationID{CardFront, CardCorner, CardBack}},
	}
	for _, tt := range tests {
		t.Run(string(tt.product), func(t *testing.T) {
			locs, err := DefaultCatalog().LocationsFor(tt.product)
			require.NoError(t, err)
			ids := make([]LocationID, 0, len(locs))
			for _, l := range locs {
				ids = append(ids, l.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestCatalog_UnknownProductType(t *testing.T) {
	_, err := DefaultCatalog().LocationsFor("mug")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeProductTypeUnknown))
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCatalog_SizeClasses(t *testing.T) {
	tmpl, err := DefaultCatalog().Template(ProductTShirt)
	require.NoError(t, err)

	cases := map[LocationID]float64{
		FrontCenter: DefaultCenterSizePercent,
		BackCenter:  DefaultCenterSizePercent,
		LeftChest:   DefaultCompactSizePercent,
		LeftSleeve:  DefaultCompactSizePercent,
		RightSleeve: DefaultCompactSizePercent,
		BackNeck:    DefaultCompactSizePercent,
	}
	for id, want := range cases {
		loc, ok := tmpl.Location(id)
		require.True(t, ok, id)
		assert.Equal(t, want, loc.DefaultSizePercent(), id)
	}
}

func TestProductTemplate_MirrorsX(t *testing.T) {
	c := DefaultCatalog()
	shirt, _ := c.Template(ProductTShirt)
	card, _ := c.Template(ProductBusinessCard)

	front, _ := shirt.Location(FrontCenter)
	back, _ := shirt.Location(BackCenter)
	cardBack, _ := card.Location(CardBack)

	assert.False(t, shirt.MirrorsX(front))
	assert.True(t, shirt.MirrorsX(back))
	assert.False(t, card.MirrorsX(cardBack))

	back.Mirror = MirrorNever
	assert.False(t, shirt.MirrorsX(back))
	cardBack.Mirror = MirrorAlways
	assert.True(t, card.MirrorsX(cardBack))
}

func TestNewCatalog_Validation(t *testing.T) {
	valid := func() ProductTemplate {
		return ProductTemplate{
			Type:      "mug",
			Archetype: CardArchetype(),
			Locations: []PlacementLocation{{ID: "wrap", BaseScale: 0.4}},
		}
	}

	cases := []struct {
		name   string
		mutate func(*ProductTemplate)
	}{
		{"empty type", func(p *ProductTemplate) { p.Type = "" }},
		{"unknown archetype", func(p *ProductTemplate) { p.Archetype.Kind = "glass" }},
		{"zero axis", func(p *ProductTemplate) { p.Archetype.BackHalfTurnAxis = mgl64.Vec3{} }},
		{"bad aspect", func(p *ProductTemplate) { p.Archetype.AspectScale = mgl64.Vec2{0, 1} }},
		{"no locations", func(p *ProductTemplate) { p.Locations = nil }},
		{"empty location id", func(p *ProductTemplate) { p.Locations[0].ID = "" }},
		{"duplicate location", func(p *ProductTemplate) { p.Locations = append(p.Locations, p.Locations[0]) }},
		{"zero base scale", func(p *ProductTemplate) { p.Locations[0].BaseScale = 0 }},
		{"invalid side", func(p *ProductTemplate) { p.Locations[0].Anchor.Side = Side(7) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tmpl := valid()
			tc.mutate(&tmpl)
			_, err := NewCatalog(tmpl)
			require.Error(t, err)
			assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeCatalogInvalid))
		})
	}

	_, err := NewCatalog(valid(), valid())
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeCatalogInvalid))

	c, err := NewCatalog(valid())
	require.NoError(t, err)
	assert.Equal(t, []ProductType{"mug"}, c.ProductTypes())
}

func TestNewCatalog_NormalizesHalfTurnAxis(t *testing.T) {
	tmpl := ProductTemplate{
		Type:      "mug",
		Archetype: CardArchetype(),
		Locations: []PlacementLocation{{ID: "wrap", BaseScale: 0.4}},
	}
	tmpl.Archetype.BackHalfTurnAxis = mgl64.Vec3{0, 4, 0}

	c, err := NewCatalog(tmpl)
	require.NoError(t, err)
	got, _ := c.Template("mug")
	assert.InDelta(t, 1.0, got.Archetype.BackHalfTurnAxis.Len(), 1e-12)
}

func TestPlacementLocation_JSON(t *testing.T) {
	tmpl, _ := DefaultCatalog().Template(ProductTShirt)
	loc, _ := tmpl.Location(BackNeck)

	b, err := json.Marshal(loc)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"side":"back"`)
	assert.Contains(t, string(b), `"sizeClass":"compact"`)

	var back PlacementLocation
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, loc, back)
}

//Personal.AI order the ending
