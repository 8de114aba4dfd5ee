package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// String representation (for logging)
func (s OrderStatus) String() string {
	return string(s)
}

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo enforces monotonic progression
// pending -> processing -> shipped -> delivered, with cancelled reachable
// from any non-terminal state.
func CanTransitionTo(from, to OrderStatus) bool {
	if from.IsTerminal() {
		return false
	}
	if to == OrderStatusCancelled {
		return true
	}
	rank := map[OrderStatus]int{
		OrderStatusPending:    0,
		OrderStatusProcessing: 1,
		OrderStatusShipped:    2,
		OrderStatusDelivered:  3,
	}
	fromRank, ok1 := rank[from]
	toRank, ok2 := rank[to]
	return ok1 && ok2 && toRank == fromRank+1
}

type OrderItem struct {
	Product  primitive.ObjectID `json:"product" bson:"product"`
	Name     string             `json:"name" bson:"name"`
	Image    string             `json:"image,omitempty" bson:"image,omitempty"`
	Quantity int                `json:"quantity" bson:"quantity"`
	Price    float64            `json:"price" bson:"price"`
}

type PaymentResult struct {
	ID           string `json:"id" bson:"id"`
	Status       string `json:"status" bson:"status"`
	UpdateTime   string `json:"update_time,omitempty" bson:"update_time,omitempty"`
	EmailAddress string `json:"email_address,omitempty" bson:"email_address,omitempty"`
}

type Order struct {
	ID              primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	UserID          primitive.ObjectID `json:"user" bson:"user_id"`
	Items           []OrderItem        `json:"items" bson:"items"`
	ShippingAddress ShippingAddress    `json:"shippingAddress" bson:"shipping_address"`
	PaymentMethod   string             `json:"paymentMethod" bson:"payment_method"`
	ItemsPrice      float64            `json:"itemsPrice" bson:"items_price"`
	TaxPrice        float64            `json:"taxPrice" bson:"tax_price"`
	ShippingPrice   float64            `json:"shippingPrice" bson:"shipping_price"`
	TotalPrice      float64            `json:"totalPrice" bson:"total_price"`
	PaymentResult   PaymentResult      `json:"paymentResult" bson:"payment_result"`
	IsPaid          bool               `json:"isPaid" bson:"is_paid"`
	PaidAt          *time.Time         `json:"paidAt,omitempty" bson:"paid_at,omitempty"`
	IsDelivered     bool               `json:"isDelivered" bson:"is_delivered"`
	DeliveredAt     *time.Time         `json:"deliveredAt,omitempty" bson:"delivered_at,omitempty"`
	Status          OrderStatus        `json:"status" bson:"status"`
	CreatedAt       time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt       time.Time          `json:"updatedAt" bson:"updated_at"`
}
