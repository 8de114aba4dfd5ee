package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/avdeyev/storefront/internal/domain"
)

// Business pricing policy: 8% flat tax on the item subtotal, and a flat
// shipping rate waived once the subtotal is above the free-shipping
// threshold.
var (
	taxRate               = decimal.NewFromFloat(0.08)
	shippingFlatRate      = decimal.NewFromFloat(5.99)
	freeShippingThreshold = decimal.NewFromInt(50)
)

// Pricing holds the computed price components. They are fixed at order
// composition time and never recomputed afterwards.
type Pricing struct {
	ItemsPrice    float64
	TaxPrice      float64
	ShippingPrice float64
	TotalPrice    float64
}

// PriceCart derives the pricing breakdown from a cart's line items, using
// the unit prices captured in the cart snapshots. All arithmetic is done in
// decimals and rounded to cents, so float accumulation error never reaches
// the wire.
func PriceCart(items []domain.CartItem) Pricing {
	subtotal := decimal.Zero
	for _, item := range items {
		price := decimal.NewFromFloat(item.Product.Price)
		subtotal = subtotal.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	subtotal = subtotal.Round(2)

	tax := subtotal.Mul(taxRate).Round(2)

	shipping := shippingFlatRate
	if subtotal.GreaterThan(freeShippingThreshold) {
		shipping = decimal.Zero
	}

	total := subtotal.Add(tax).Add(shipping)

	return Pricing{
		ItemsPrice:    subtotal.InexactFloat64(),
		TaxPrice:      tax.InexactFloat64(),
		ShippingPrice: shipping.InexactFloat64(),
		TotalPrice:    total.InexactFloat64(),
	}
}

// TotalCents returns the order total in minor currency units, the amount the
// payment provider is asked to charge.
func (p Pricing) TotalCents() int64 {
	return decimal.NewFromFloat(p.TotalPrice).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
