// Package pricing turns priced cart lines into an order total. It is pure:
// no I/O, deterministic for identical inputs, and all money is carried as
// int64 minor currency units with decimal arithmetic in between.
package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"backend/internal/models"
)

// ErrEmptyCart is returned when the cart has no lines and no floor total is
// configured.
var ErrEmptyCart = errors.New("cart has no items")

var oneHundred = decimal.NewFromInt(100)

// Line is one cart entry as seen by the calculator. UnitPrice is minor units
// and pre-discount; DiscountPercent is 0..100.
type Line struct {
	UnitPrice       int64
	Quantity        int
	DiscountPercent float64
}

// Settings are the storefront checkout knobs. Disabling tax or shipping
// forces the corresponding component to zero regardless of the rate values.
// EmptyCartFloor, when positive, turns an empty cart into a floor-only total
// instead of an error (legacy test-cart behaviour).
type Settings struct {
	TaxEnabled      bool
	TaxRate         float64
	ShippingEnabled bool
	ShippingCharges int64
	EmptyCartFloor  int64
}

// Calculate prices the given lines. The returned breakdown always satisfies
// GrandTotal == Subtotal - DiscountAmount + TaxAmount + ShippingAmount; the
// identity is re-checked before returning rather than assumed.
func Calculate(lines []Line, settings Settings) (models.OrderPricing, error) {
	if len(lines) == 0 {
		if settings.EmptyCartFloor > 0 {
			// Floor-only total; carried as subtotal so the grand-total
			// identity below still holds.
			return models.OrderPricing{
				Subtotal:   settings.EmptyCartFloor,
				GrandTotal: settings.EmptyCartFloor,
			}, nil
		}
		return models.OrderPricing{}, ErrEmptyCart
	}

	subtotal := decimal.Zero
	discount := decimal.Zero

	for i, line := range lines {
		if line.UnitPrice < 0 {
			return models.OrderPricing{}, fmt.Errorf("line %d: negative unit price", i)
		}
		if line.Quantity < 1 {
			return models.OrderPricing{}, fmt.Errorf("line %d: quantity must be at least 1", i)
		}
		if line.DiscountPercent < 0 || line.DiscountPercent > 100 {
			return models.OrderPricing{}, fmt.Errorf("line %d: discount percent out of range", i)
		}

		lineSubtotal := decimal.NewFromInt(line.UnitPrice).Mul(decimal.NewFromInt(int64(line.Quantity)))
		subtotal = subtotal.Add(lineSubtotal)

		if line.DiscountPercent > 0 {
			rate := decimal.NewFromFloat(line.DiscountPercent).Div(oneHundred)
			// Round half-up to the minor unit per line, not once at the end.
			discount = discount.Add(lineSubtotal.Mul(rate).Round(0))
		}
	}

	afterDiscount := subtotal.Sub(discount)

	tax := decimal.Zero
	if settings.TaxEnabled {
		rate := decimal.NewFromFloat(settings.TaxRate).Div(oneHundred)
		tax = afterDiscount.Mul(rate).Round(0)
	}

	shipping := decimal.Zero
	if settings.ShippingEnabled {
		shipping = decimal.NewFromInt(settings.ShippingCharges)
	}

	total := afterDiscount.Add(tax).Add(shipping)

	breakdown := models.OrderPricing{
		Subtotal:       subtotal.IntPart(),
		DiscountAmount: discount.IntPart(),
		TaxAmount:      tax.IntPart(),
		ShippingAmount: shipping.IntPart(),
		GrandTotal:     total.IntPart(),
	}
	if err := checkBreakdown(breakdown); err != nil {
		return models.OrderPricing{}, err
	}
	return breakdown, nil
}

func checkBreakdown(b models.OrderPricing) error {
	if b.Subtotal < 0 || b.DiscountAmount < 0 || b.TaxAmount < 0 || b.ShippingAmount < 0 || b.GrandTotal < 0 {
		return fmt.Errorf("pricing produced a negative component: %+v", b)
	}
	if b.GrandTotal != b.Subtotal-b.DiscountAmount+b.TaxAmount+b.ShippingAmount {
		return fmt.Errorf("pricing identity violated: %+v", b)
	}
	return nil
}
