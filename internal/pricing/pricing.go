// Package pricing computes the persisted snapshot of one product line:
// unit price, discount, and line total. All functions are pure — they never
// touch the datastore.
package pricing

import (
	"errors"
	"fmt"

	"github.com/saadullahkhan123123/saeedautobackend/internal/model"

	"github.com/shopspring/decimal"
)

// Bulk discount policy: flat per-unit reduction on eligible cover types at or
// above the quantity threshold. Fixed business rule, no config surface.
const bulkMinQuantity = 10

var (
	bulkDiscountPerUnit = decimal.NewFromInt(10)

	// priceTolerance is the slack before a caller-supplied unit price is
	// treated as a manual override rather than rounding noise.
	priceTolerance = decimal.RequireFromString("0.01")

	bulkEligibleCovers = map[string]bool{
		"Aster Cover":         true,
		"Without Aster Cover": true,
		"Calendar Cover":      true,
	}
)

// ErrInvalidLine marks a line that cannot be priced (quantity ≤ 0 or negative
// base price). Callers surface it as a validation failure.
var ErrInvalidLine = errors.New("invalid product line")

// LineInput is everything PriceLine needs about one requested line.
type LineInput struct {
	ProductType string
	Attrs       model.ProductAttrs
	// Name from the request; when empty a label is synthesized from the attrs.
	Name      string
	Quantity  int
	BasePrice decimal.Decimal
	// ExplicitUnitPrice, when set and diverging from the computed price,
	// becomes authoritative and is recorded as a manual discount.
	ExplicitUnitPrice *decimal.Decimal
}

// LineQuote is the computed snapshot persisted onto the slip.
type LineQuote struct {
	Name           string
	UnitPrice      decimal.Decimal
	DiscountAmount decimal.Decimal // line total: per-unit discount × quantity
	DiscountType   string
	TotalPrice     decimal.Decimal // quantity × unit price
}

// PriceLine prices one product line.
//
// Order of precedence: bulk rule first, then the manual override check against
// the bulk-adjusted price, else list price.
func PriceLine(in LineInput) (*LineQuote, error) {
	if in.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive, got %d", ErrInvalidLine, in.Quantity)
	}
	if in.BasePrice.IsNegative() {
		return nil, fmt.Errorf("%w: base price must not be negative, got %s", ErrInvalidLine, in.BasePrice)
	}

	qty := decimal.NewFromInt(int64(in.Quantity))

	perUnitDiscount := decimal.Zero
	discountType := model.DiscountNone
	if bulkEligible(in) {
		perUnitDiscount = bulkDiscountPerUnit
		discountType = model.DiscountBulk
	}
	unitPrice := in.BasePrice.Sub(perUnitDiscount)

	if in.ExplicitUnitPrice != nil && in.ExplicitUnitPrice.Sub(unitPrice).Abs().GreaterThan(priceTolerance) {
		unitPrice = *in.ExplicitUnitPrice
		discountType = model.DiscountManual
		perUnitDiscount = in.BasePrice.Sub(unitPrice)
		if perUnitDiscount.IsNegative() {
			perUnitDiscount = decimal.Zero
		}
	}

	if unitPrice.IsNegative() {
		unitPrice = decimal.Zero
	}

	name := in.Name
	if name == "" {
		name = in.Attrs.Label(in.ProductType)
	}

	return &LineQuote{
		Name:           name,
		UnitPrice:      unitPrice,
		DiscountAmount: perUnitDiscount.Mul(qty),
		DiscountType:   discountType,
		TotalPrice:     unitPrice.Mul(qty),
	}, nil
}

func bulkEligible(in LineInput) bool {
	if in.ProductType != model.TypeCover || in.Quantity < bulkMinQuantity {
		return false
	}
	return in.Attrs.CoverType != nil && bulkEligibleCovers[*in.Attrs.CoverType]
}
