package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Cart struct {
	ID              primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	UserID          primitive.ObjectID `json:"user" bson:"user_id"`
	Items           []CartItem         `json:"items" bson:"items"`
	TotalItems      int                `json:"totalItems" bson:"total_items"`
	TotalPrice      float64            `json:"totalPrice" bson:"total_price"`
	ShippingAddress *ShippingAddress   `json:"shippingAddress" bson:"shipping_address,omitempty"`
	PaymentMethod   string             `json:"paymentMethod" bson:"payment_method,omitempty"`
	CreatedAt       time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt       time.Time          `json:"updatedAt" bson:"updated_at"`
}

// CartItem holds a point-in-time product snapshot. Prices captured here are
// the ones an order is composed with; later catalog price changes do not
// apply retroactively.
type CartItem struct {
	Product  Product `json:"product" bson:"product"`
	Quantity int     `json:"quantity" bson:"quantity"`
}

type ShippingAddress struct {
	Address    string `json:"address" bson:"address"`
	City       string `json:"city" bson:"city"`
	PostalCode string `json:"postalCode" bson:"postal_code"`
	Country    string `json:"country" bson:"country"`
}
