// Package pricing derives quotation line items from a design's placements.
// It applies only the per-location logo surcharge; taxes and discounts are
// layered on by the caller.
package pricing

import (
	"fmt"
	"math"
	"strings"

	"github.com/turtacn/PrintShop-Customizer/internal/domain/customization"
	apperrors "github.com/turtacn/PrintShop-Customizer/pkg/errors"
)

// Amount is a monetary value in whole units of the policy currency.
type Amount int64

// MaxQuantity caps a single line.  Larger runs are negotiated offline.
const MaxQuantity = 1_000_000

// Policy holds the prices a quotation is computed from.
type Policy struct {
	FlatLogoFee Amount
	Currency    string
	BasePrices  map[customization.ProductType]Amount
}

// NewPolicy validates and copies the price table.
func NewPolicy(flatLogoFee Amount, currency string, basePrices map[customization.ProductType]Amount) (Policy, error) {
	if flatLogoFee < 0 {
		return Policy{}, apperrors.InvalidParam("flat logo fee must not be negative")
	}
	prices := make(map[customization.ProductType]Amount, len(basePrices))
	for pt, p := range basePrices {
		if p < 0 {
			return Policy{}, apperrors.InvalidParam(fmt.Sprintf("base price for %s must not be negative", pt))
		}
		prices[pt] = p
	}
	return Policy{FlatLogoFee: flatLogoFee, Currency: strings.ToUpper(currency), BasePrices: prices}, nil
}

// PolicyFromTable is NewPolicy over a price table keyed by product type name,
// as it appears in configuration.
func PolicyFromTable(flatLogoFee int64, currency string, basePrices map[string]int64) (Policy, error) {
	prices := make(map[customization.ProductType]Amount, len(basePrices))
	for pt, p := range basePrices {
		prices[customization.ProductType(pt)] = Amount(p)
	}
	return NewPolicy(Amount(flatLogoFee), currency, prices)
}

// BasePrice returns the unit price of pt before surcharges.
func (p Policy) BasePrice(pt customization.ProductType) (Amount, error) {
	price, ok := p.BasePrices[pt]
	if !ok {
		return 0, apperrors.New(apperrors.ErrCodeBasePriceMissing, "no base price for product").
			WithDetail("type=" + string(pt))
	}
	return price, nil
}

// ConfiguredCount counts the placements that carry a logo.
func ConfiguredCount(placements []customization.Placement) int {
	n := 0
	for _, pl := range placements {
		if pl.IsConfigured() {
			n++
		}
	}
	return n
}

// SurchargePerUnit charges FlatLogoFee once per configured location.
// Locations still waiting for a logo are free.
func (p Policy) SurchargePerUnit(placements []customization.Placement) Amount {
	return p.FlatLogoFee * Amount(ConfiguredCount(placements))
}

// LineItem is one quotation line.
type LineItem struct {
	ProductType         customization.ProductType `json:"productType"`
	Quantity            int                       `json:"quantity"`
	BaseUnit            Amount                    `json:"baseUnit"`
	ConfiguredLocations int                       `json:"configuredLocations"`
	SurchargePerUnit    Amount                    `json:"surchargePerUnit"`
	UnitPrice           Amount                    `json:"unitPrice"`
	LineTotal           Amount                    `json:"lineTotal"`
	Currency            string                    `json:"currency"`
}

// Quote computes (base + surcharge) × quantity.  Quantity must lie in
// [1, MaxQuantity] and the total must fit an Amount.
func (p Policy) Quote(pt customization.ProductType, placements []customization.Placement, quantity int) (LineItem, error) {
	if err := CheckQuantity(quantity); err != nil {
		return LineItem{}, err
	}
	base, err := p.BasePrice(pt)
	if err != nil {
		return LineItem{}, err
	}
	n := ConfiguredCount(placements)
	surcharge := p.FlatLogoFee * Amount(n)
	unit := base + surcharge
	if unit > 0 && Amount(quantity) > math.MaxInt64/unit {
		return LineItem{}, apperrors.New(apperrors.ErrCodeQuantityInvalid, "line total out of range").
			WithDetail(fmt.Sprintf("quantity=%d unit=%d", quantity, unit))
	}
	return LineItem{
		ProductType:         pt,
		Quantity:            quantity,
		BaseUnit:            base,
		ConfiguredLocations: n,
		SurchargePerUnit:    surcharge,
		UnitPrice:           unit,
		LineTotal:           unit * Amount(quantity),
		Currency:            p.Currency,
	}, nil
}

// CheckQuantity rejects quantities outside [1, MaxQuantity].
func CheckQuantity(quantity int) error {
	switch {
	case quantity < 1:
		return apperrors.New(apperrors.ErrCodeQuantityInvalid, "quantity must be at least 1").
			WithDetail(fmt.Sprintf("quantity=%d", quantity))
	case quantity > MaxQuantity:
		return apperrors.New(apperrors.ErrCodeQuantityInvalid, "quantity exceeds the per-line maximum").
			WithDetail(fmt.Sprintf("quantity=%d max=%d", quantity, MaxQuantity))
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Request kinds
// ─────────────────────────────────────────────────────────────────────────────

// RequestKind distinguishes a bulk quotation from a physical sample.
type RequestKind string

const (
	RequestQuote  RequestKind = "quote"
	RequestSample RequestKind = "sample"
)

// SampleQuantity is the quantity billed for a sample request.
const SampleQuantity = 1

// ParseRequestKind accepts "quote" or "sample" in any case.
func ParseRequestKind(s string) (RequestKind, error) {
	switch k := RequestKind(strings.ToLower(strings.TrimSpace(s))); k {
	case RequestQuote, RequestSample:
		return k, nil
	default:
		return "", apperrors.New(apperrors.ErrCodeQuoteRequestKind, "request kind must be quote or sample").
			WithDetail("kind=" + s)
	}
}

// EffectiveQuantity returns the quantity a request is priced at.  Samples are
// always a single unit.
func (k RequestKind) EffectiveQuantity(requested int) int {
	if k == RequestSample {
		return SampleQuantity
	}
	return requested
}

//Personal.AI order the ending
