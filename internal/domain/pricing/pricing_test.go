package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/PrintShop-Customizer/internal/domain/customization"
	apperrors "github.com/turtacn/PrintShop-Customizer/pkg/errors"
)

func testPolicy(t *testing.T) Policy {
	t.Helper()
	p, err := NewPolicy(50, "inr", map[customization.ProductType]Amount{
		customization.ProductTShirt:       150,
		customization.ProductBusinessCard: 2,
	})
	require.NoError(t, err)
	return p
}

func configured(logo customization.LogoID) customization.Placement {
	return customization.Placement{State: customization.Configured{Config: customization.PlacementConfig{LogoID: logo, SizePercent: 35}}}
}

func waiting() customization.Placement {
	return customization.Placement{State: customization.NeedsLogo{SizePercent: 20}}
}

func TestQuote_TwoConfiguredLocations(t *testing.T) {
	p := testPolicy(t)

	item, err := p.Quote(customization.ProductTShirt, []customization.Placement{configured("L1"), configured("L2")}, 50)
	require.NoError(t, err)

	assert.Equal(t, LineItem{
		ProductType:         customization.ProductTShirt,
		Quantity:            50,
		BaseUnit:            150,
		ConfiguredLocations: 2,
		SurchargePerUnit:    100,
		UnitPrice:           250,
		LineTotal:           12500,
		Currency:            "INR",
	}, item)
}

func TestQuote_FromLiveDesign(t *testing.T) {
	d, err := customization.NewDesign(customization.DefaultCatalog(), customization.ProductTShirt, "#FFFFFF")
	require.NoError(t, err)
	l1 := d.AddLogo("Acme", "a")
	l2 := d.AddLogo("Globex", "b")
	require.NoError(t, d.Store().SetLogo(customization.FrontCenter, l1))
	require.NoError(t, d.Store().SetLogo(customization.BackCenter, l2))

	item, err := testPolicy(t).Quote(d.ProductType(), d.Placements(), 50)
	require.NoError(t, err)
	assert.Equal(t, Amount(12500), item.LineTotal)
}

func TestSurchargeIgnoresLocationsWithoutLogo(t *testing.T) {
	p := testPolicy(t)
	ps := []customization.Placement{configured("L1"), waiting(), waiting()}

	assert.Equal(t, Amount(50), p.SurchargePerUnit(ps))
	assert.Equal(t, 1, ConfiguredCount(ps))
	assert.Zero(t, p.SurchargePerUnit(nil))
}

func TestQuote_Errors(t *testing.T) {
	p := testPolicy(t)

	for _, q := range []int{0, -3} {
		_, err := p.Quote(customization.ProductTShirt, nil, q)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeQuantityInvalid))
	}

	_, err := p.Quote(customization.ProductHoodie, nil, 1)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeBasePriceMissing))
}

func TestQuote_QuantityUpperBound(t *testing.T) {
	p := testPolicy(t)

	item, err := p.Quote(customization.ProductTShirt, nil, MaxQuantity)
	require.NoError(t, err)
	assert.Equal(t, Amount(150*MaxQuantity), item.LineTotal)

	for _, q := range []int{MaxQuantity + 1, math.MaxInt64 / 100, math.MaxInt64} {
		item, err := p.Quote(customization.ProductTShirt, nil, q)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeQuantityInvalid), "quantity %d", q)
		assert.Zero(t, item.LineTotal)
	}
}

func TestQuote_TotalOverflowRejected(t *testing.T) {
	p, err := NewPolicy(0, "INR", map[customization.ProductType]Amount{
		customization.ProductTShirt: math.MaxInt64 / 10,
	})
	require.NoError(t, err)

	_, err = p.Quote(customization.ProductTShirt, nil, 11)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeQuantityInvalid))

	item, err := p.Quote(customization.ProductTShirt, nil, 10)
	require.NoError(t, err)
	assert.Positive(t, int64(item.LineTotal))
}

func TestCheckQuantity(t *testing.T) {
	assert.NoError(t, CheckQuantity(1))
	assert.NoError(t, CheckQuantity(MaxQuantity))
	assert.Error(t, CheckQuantity(0))
	assert.Error(t, CheckQuantity(MaxQuantity+1))
}

func TestQuote_NoPlacementsChargesBaseOnly(t *testing.T) {
	item, err := testPolicy(t).Quote(customization.ProductBusinessCard, nil, 500)
	require.NoError(t, err)
	assert.Equal(t, Amount(1000), item.LineTotal)
}

func TestNewPolicy_Validation(t *testing.T) {
	_, err := NewPolicy(-1, "INR", nil)
	assert.True(t, apperrors.IsValidation(err))

	_, err = NewPolicy(10, "INR", map[customization.ProductType]Amount{customization.ProductHoodie: -5})
	assert.True(t, apperrors.IsValidation(err))

	src := map[customization.ProductType]Amount{customization.ProductHoodie: 450}
	p, err := NewPolicy(10, "usd", src)
	require.NoError(t, err)
	src[customization.ProductHoodie] = 1
	price, _ := p.BasePrice(customization.ProductHoodie)
	assert.Equal(t, Amount(450), price)
	assert.Equal(t, "USD", p.Currency)
}

func TestPolicyFromTable(t *testing.T) {
	p, err := PolicyFromTable(500, "inr", map[string]int64{"tshirt": 2000, "hoodie": 4000})
	require.NoError(t, err)
	price, err := p.BasePrice(customization.ProductTShirt)
	require.NoError(t, err)
	assert.Equal(t, Amount(2000), price)
	assert.Equal(t, Amount(500), p.FlatLogoFee)

	_, err = PolicyFromTable(0, "INR", map[string]int64{"tshirt": -1})
	assert.True(t, apperrors.IsValidation(err))
}

func TestRequestKind(t *testing.T) {
	k, err := ParseRequestKind(" Sample ")
	require.NoError(t, err)
	assert.Equal(t, RequestSample, k)
	assert.Equal(t, 1, k.EffectiveQuantity(40))
	assert.Equal(t, 40, RequestQuote.EffectiveQuantity(40))

	_, err = ParseRequestKind("invoice")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeQuoteRequestKind))
}

//Personal.AI order the ending
