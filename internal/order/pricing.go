package order

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/wichananm65/storefront-backend/internal/apperr"
)

// MaxItemQty caps the quantity of one order line.
const MaxItemQty = 10_000

// Policy decides tax and shipping for an order.
type Policy struct {
	TaxRate      decimal.Decimal
	ShippingFlat decimal.Decimal
	// Deferred leaves tax and shipping to the payment processor; both are zero here.
	Deferred bool
}

type Prices struct {
	Items    decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}

// ValidateItems rejects an empty list, items without a product reference,
// quantities outside 1..MaxItemQty and negative prices.
func ValidateItems(items []Item) error {
	if len(items) == 0 {
		return apperr.Validation("No order items")
	}
	for i, it := range items {
		switch {
		case it.ProductID == "":
			return apperr.Validation(fmt.Sprintf("item %d: product is required", i))
		case it.Qty <= 0:
			return apperr.Validation(fmt.Sprintf("item %d: quantity must be positive", i))
		case it.Qty > MaxItemQty:
			return apperr.Validation(fmt.Sprintf("item %d: quantity must not exceed %d", i, MaxItemQty))
		case it.Price.IsNegative():
			return apperr.Validation(fmt.Sprintf("item %d: price must not be negative", i))
		}
	}
	return nil
}

// Price validates items and computes the breakdown. Total is always
// Items + Tax + Shipping.
func (p Policy) Price(items []Item) (Prices, error) {
	if err := ValidateItems(items); err != nil {
		return Prices{}, err
	}
	var out Prices
	for _, it := range items {
		out.Items = out.Items.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Qty))))
	}
	if !p.Deferred {
		out.Tax = out.Items.Mul(p.TaxRate).Round(2)
		if out.Items.IsPositive() {
			out.Shipping = p.ShippingFlat
		}
	}
	out.Total = out.Items.Add(out.Tax).Add(out.Shipping)
	return out, nil
}
