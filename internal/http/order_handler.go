package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/avdeyev/storefront/internal/cart"
	"github.com/avdeyev/storefront/internal/checkout"
	"github.com/avdeyev/storefront/internal/domain"
	"github.com/avdeyev/storefront/internal/payment"
	"github.com/avdeyev/storefront/internal/repository"
)

type OrderHandler struct {
	composer *checkout.Composer
	carts    *cart.Service
}

func NewOrderHandler(composer *checkout.Composer, carts *cart.Service) *OrderHandler {
	return &OrderHandler{composer: composer, carts: carts}
}

type CreateOrderRequestDTO struct {
	ShippingAddress *domain.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                  `json:"paymentMethod"`
}

type UpdateStatusRequestDTO struct {
	Status string `json:"status"`
}

// Create composes an order from the caller's cart, submits it and then
// clears the cart. The composer itself never mutates the cart; clearing is
// this handler's responsibility, and only after a successful submission.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req CreateOrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	c, err := h.carts.GetCart(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load cart")
		return
	}

	// Body values win over checkout state staged on the cart.
	address := c.ShippingAddress
	if req.ShippingAddress != nil {
		address = req.ShippingAddress
	}
	method := c.PaymentMethod
	if req.PaymentMethod != "" {
		method = req.PaymentMethod
	}

	if address == nil || address.Address == "" || address.City == "" || address.PostalCode == "" || address.Country == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "shipping address is required")
		return
	}
	if method == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "payment method is required")
		return
	}

	draft, err := h.composer.Compose(c, *address, method)
	if err != nil {
		if errors.Is(err, checkout.ErrEmptyCart) {
			respondError(w, http.StatusBadRequest, "empty_cart", "no order items")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to compose order")
		return
	}

	receipt, err := h.composer.Submit(r.Context(), userID, draft)
	if err != nil {
		if errors.Is(err, payment.ErrInvalidAmount) {
			respondError(w, http.StatusBadRequest, "payment_failed", "payment amount rejected")
			return
		}
		respondError(w, http.StatusBadGateway, "payment_failed", "payment handoff failed")
		return
	}

	// The order is already placed; losing the cart clear is annoying but
	// not fatal.
	if _, err := h.carts.Clear(r.Context(), userID); err != nil {
		log.Printf("failed to clear cart for user %s after order %s: %v", userID.Hex(), receipt.Order.ID.Hex(), err)
	}

	respondJSON(w, http.StatusCreated, receipt)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	orderID, ok := orderIDFromURL(w, r)
	if !ok {
		return
	}

	order, err := h.composer.GetOrder(r.Context(), orderID, userID, getUserRole(r.Context()))
	if err != nil {
		handleOrderError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	orders, err := h.composer.ListMyOrders(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list orders")
		return
	}
	if orders == nil {
		orders = []*domain.Order{}
	}

	respondJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	orders, err := h.composer.ListAllOrders(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list orders")
		return
	}
	if orders == nil {
		orders = []*domain.Order{}
	}

	respondJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) Pay(w http.ResponseWriter, r *http.Request) {
	orderID, ok := orderIDFromURL(w, r)
	if !ok {
		return
	}

	var confirmation checkout.PaymentConfirmation
	if err := json.NewDecoder(r.Body).Decode(&confirmation); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	order, err := h.composer.MarkPaid(r.Context(), orderID, confirmation)
	if err != nil {
		handleOrderError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := orderIDFromURL(w, r)
	if !ok {
		return
	}

	var req UpdateStatusRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	order, err := h.composer.UpdateStatus(r.Context(), orderID, domain.OrderStatus(req.Status))
	if err != nil {
		handleOrderError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, order)
}

func orderIDFromURL(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "orderID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order id must be a valid object id")
		return primitive.NilObjectID, false
	}
	return id, true
}

func handleOrderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "not_found", "order not found")
	case errors.Is(err, checkout.ErrNotOrderOwner):
		respondError(w, http.StatusForbidden, "forbidden", "order belongs to another user")
	case errors.Is(err, checkout.ErrUnknownStatus):
		respondError(w, http.StatusBadRequest, "invalid_status", "unknown order status")
	case errors.Is(err, checkout.ErrInvalidTransition):
		respondError(w, http.StatusConflict, "invalid_transition", "illegal order status transition")
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
