// Package checkout turns a cart snapshot plus checkout inputs into a
// persisted order: pricing, payment handoff, and best-effort stock
// reconciliation.
package checkout

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/avdeyev/storefront/internal/domain"
	"github.com/avdeyev/storefront/internal/payment"
	"github.com/avdeyev/storefront/internal/repository"
)

const defaultPaymentTimeout = 10 * time.Second

// StockAdjuster is the slice of the catalog the composer needs after an
// order is persisted.
type StockAdjuster interface {
	DecrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error
}

// EventPublisher receives order lifecycle notifications. Implementations
// must be best-effort: a failed publish never fails the operation.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, order *domain.Order)
}

// OrderDraft is a fully priced order request that has not yet been paid for
// or persisted.
type OrderDraft struct {
	Items           []domain.OrderItem
	ShippingAddress domain.ShippingAddress
	PaymentMethod   string
	Pricing         Pricing
}

// Receipt is what a successful submission returns to the caller.
type Receipt struct {
	Order        *domain.Order `json:"order"`
	ClientSecret string        `json:"clientSecret"`
	// StockWarnings lists line items whose stock decrement failed. The
	// order stands regardless; reconciliation is best-effort by design.
	StockWarnings []string `json:"stockWarnings,omitempty"`
}

// PaymentConfirmation carries the processor callback fields for MarkPaid.
type PaymentConfirmation struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	UpdateTime   string `json:"update_time"`
	EmailAddress string `json:"email_address"`
}

type Composer struct {
	orders         repository.OrderRepository
	stock          StockAdjuster
	provider       payment.Provider
	events         EventPublisher
	paymentTimeout time.Duration
}

func NewComposer(orders repository.OrderRepository, stock StockAdjuster, provider payment.Provider, events EventPublisher) *Composer {
	return &Composer{
		orders:         orders,
		stock:          stock,
		provider:       provider,
		events:         events,
		paymentTimeout: defaultPaymentTimeout,
	}
}

// Compose builds a priced order draft from a cart snapshot. Unit prices come
// from the snapshots captured at add-to-cart time; the catalog is not
// consulted here.
func (c *Composer) Compose(cart *domain.Cart, address domain.ShippingAddress, method string) (*OrderDraft, error) {
	if cart == nil || len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	items := make([]domain.OrderItem, 0, len(cart.Items))
	for _, line := range cart.Items {
		item := domain.OrderItem{
			Product:  line.Product.ID,
			Name:     line.Product.Name,
			Quantity: line.Quantity,
			Price:    line.Product.Price,
		}
		if len(line.Product.Images) > 0 {
			item.Image = line.Product.Images[0]
		}
		items = append(items, item)
	}

	return &OrderDraft{
		Items:           items,
		ShippingAddress: address,
		PaymentMethod:   method,
		Pricing:         PriceCart(cart.Items),
	}, nil
}

// Submit hands the total to the payment provider, persists the order and
// then reconciles stock per line item. A stock decrement failure is logged
// and surfaced as a warning but never rolls the order back. Submit never
// touches the cart that produced the draft; clearing it is the caller's
// decision.
func (c *Composer) Submit(ctx context.Context, userID primitive.ObjectID, draft *OrderDraft) (*Receipt, error) {
	paymentCtx, cancel := context.WithTimeout(ctx, c.paymentTimeout)
	defer cancel()

	intent, err := c.provider.CreateIntent(paymentCtx, draft.Pricing.TotalCents(), "usd")
	if err != nil {
		return nil, fmt.Errorf("payment handoff failed: %w", err)
	}

	order := &domain.Order{
		UserID:          userID,
		Items:           draft.Items,
		ShippingAddress: draft.ShippingAddress,
		PaymentMethod:   draft.PaymentMethod,
		ItemsPrice:      draft.Pricing.ItemsPrice,
		TaxPrice:        draft.Pricing.TaxPrice,
		ShippingPrice:   draft.Pricing.ShippingPrice,
		TotalPrice:      draft.Pricing.TotalPrice,
		PaymentResult: domain.PaymentResult{
			ID:     intent.ID,
			Status: intent.Status,
		},
		Status: domain.OrderStatusPending,
	}

	if err := c.orders.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to persist order: %w", err)
	}

	var warnings []string
	for _, item := range draft.Items {
		if err := c.stock.DecrementStock(ctx, item.Product, item.Quantity); err != nil {
			log.Printf("stock decrement failed for product %s: %v", item.Product.Hex(), err)
			warnings = append(warnings, fmt.Sprintf("stock not decremented for product %s", item.Product.Hex()))
		}
	}

	if c.events != nil {
		c.events.Publish(ctx, "order.created", order)
	}

	return &Receipt{
		Order:         order,
		ClientSecret:  intent.ClientSecret,
		StockWarnings: warnings,
	}, nil
}

// MarkPaid records the payment confirmation on an existing order.
func (c *Composer) MarkPaid(ctx context.Context, orderID primitive.ObjectID, confirmation PaymentConfirmation) (*domain.Order, error) {
	order, err := c.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	order.IsPaid = true
	order.PaidAt = &now
	order.PaymentResult = domain.PaymentResult{
		ID:           confirmation.ID,
		Status:       confirmation.Status,
		UpdateTime:   confirmation.UpdateTime,
		EmailAddress: confirmation.EmailAddress,
	}

	if err := c.orders.SaveOrder(ctx, order); err != nil {
		return nil, err
	}

	if c.events != nil {
		c.events.Publish(ctx, "order.paid", order)
	}

	return order, nil
}

// UpdateStatus moves an order through its lifecycle. Transitions are
// validated: status only progresses forward, with cancellation allowed from
// any non-terminal state.
func (c *Composer) UpdateStatus(ctx context.Context, orderID primitive.ObjectID, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, ErrUnknownStatus
	}

	order, err := c.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !domain.CanTransitionTo(order.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, status)
	}

	order.Status = status
	if status == domain.OrderStatusDelivered {
		now := time.Now()
		order.IsDelivered = true
		order.DeliveredAt = &now
	}

	if err := c.orders.SaveOrder(ctx, order); err != nil {
		return nil, err
	}

	if c.events != nil {
		c.events.Publish(ctx, "order.status_changed", order)
	}

	return order, nil
}

// GetOrder returns a single order, visible to its owner and to admins.
func (c *Composer) GetOrder(ctx context.Context, orderID, requesterID primitive.ObjectID, requesterRole string) (*domain.Order, error) {
	order, err := c.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.UserID != requesterID && requesterRole != domain.RoleAdmin {
		return nil, ErrNotOrderOwner
	}

	return order, nil
}

func (c *Composer) ListMyOrders(ctx context.Context, userID primitive.ObjectID) ([]*domain.Order, error) {
	return c.orders.ListOrdersByUser(ctx, userID)
}

func (c *Composer) ListAllOrders(ctx context.Context) ([]*domain.Order, error) {
	return c.orders.ListOrders(ctx)
}
