// Package cart owns the in-session line item state machine. Mutations are
// pure functions over a cart snapshot; persistence and caching live in the
// surrounding Service so the engine stays trivially testable.
package cart

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/avdeyev/storefront/internal/domain"
)

// AddItem merges quantity into an existing line item for the same product id,
// or appends a new line item. There is never more than one line item per
// product id.
func AddItem(c *domain.Cart, product domain.Product, quantity int) {
	merged := false
	for i := range c.Items {
		if c.Items[i].Product.ID == product.ID {
			c.Items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		c.Items = append(c.Items, domain.CartItem{Product: product, Quantity: quantity})
	}
	recomputeTotals(c)
}

// RemoveItem drops the line item for productID. Removing an absent product
// is a no-op, not an error.
func RemoveItem(c *domain.Cart, productID primitive.ObjectID) {
	for i := range c.Items {
		if c.Items[i].Product.ID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			break
		}
	}
	recomputeTotals(c)
}

// UpdateQuantity replaces the quantity of the matching line item. A quantity
// of zero or less means "remove". Unknown product ids are ignored.
func UpdateQuantity(c *domain.Cart, productID primitive.ObjectID, quantity int) {
	if quantity <= 0 {
		RemoveItem(c, productID)
		return
	}
	for i := range c.Items {
		if c.Items[i].Product.ID == productID {
			c.Items[i].Quantity = quantity
			break
		}
	}
	recomputeTotals(c)
}

// Clear empties the cart and drops staged checkout state. Shipping address
// and payment method must not leak into a fresh cart.
func Clear(c *domain.Cart) {
	c.Items = nil
	c.ShippingAddress = nil
	c.PaymentMethod = ""
	recomputeTotals(c)
}

func SetShippingAddress(c *domain.Cart, address *domain.ShippingAddress) {
	c.ShippingAddress = address
}

func SetPaymentMethod(c *domain.Cart, method string) {
	c.PaymentMethod = method
}

// recomputeTotals derives both totals from the line items from scratch.
// Totals are never patched incrementally, so they cannot drift.
func recomputeTotals(c *domain.Cart) {
	totalItems := 0
	totalPrice := 0.0
	for _, item := range c.Items {
		totalItems += item.Quantity
		totalPrice += item.Product.Price * float64(item.Quantity)
	}
	c.TotalItems = totalItems
	c.TotalPrice = totalPrice
}
