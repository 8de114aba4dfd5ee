package checkout

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/avdeyev/storefront/internal/domain"
	"github.com/avdeyev/storefront/internal/payment"
	"github.com/avdeyev/storefront/internal/repository"
)

// MockOrderRepository implements repository.OrderRepository for testing
type MockOrderRepository struct {
	Orders    map[primitive.ObjectID]*domain.Order
	CreateErr error
	SaveErr   error
	Created   *domain.Order // Captures the order passed to CreateOrder
}

func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{Orders: make(map[primitive.ObjectID]*domain.Order)}
}

func (m *MockOrderRepository) CreateOrder(_ context.Context, order *domain.Order) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	order.ID = primitive.NewObjectID()
	m.Orders[order.ID] = order
	m.Created = order
	return nil
}

func (m *MockOrderRepository) GetOrder(_ context.Context, id primitive.ObjectID) (*domain.Order, error) {
	order, ok := m.Orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	copied := *order
	return &copied, nil
}

func (m *MockOrderRepository) ListOrdersByUser(_ context.Context, userID primitive.ObjectID) ([]*domain.Order, error) {
	var orders []*domain.Order
	for _, order := range m.Orders {
		if order.UserID == userID {
			orders = append(orders, order)
		}
	}
	return orders, nil
}

func (m *MockOrderRepository) ListOrders(context.Context) ([]*domain.Order, error) {
	var orders []*domain.Order
	for _, order := range m.Orders {
		orders = append(orders, order)
	}
	return orders, nil
}

func (m *MockOrderRepository) SaveOrder(_ context.Context, order *domain.Order) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	if _, ok := m.Orders[order.ID]; !ok {
		return repository.ErrOrderNotFound
	}
	copied := *order
	m.Orders[order.ID] = &copied
	return nil
}

// MockStockAdjuster records decrements and can fail for selected products
type MockStockAdjuster struct {
	Decrements map[primitive.ObjectID]int
	FailFor    map[primitive.ObjectID]error
}

func NewMockStockAdjuster() *MockStockAdjuster {
	return &MockStockAdjuster{
		Decrements: make(map[primitive.ObjectID]int),
		FailFor:    make(map[primitive.ObjectID]error),
	}
}

func (m *MockStockAdjuster) DecrementStock(_ context.Context, id primitive.ObjectID, quantity int) error {
	if err, ok := m.FailFor[id]; ok {
		return err
	}
	m.Decrements[id] += quantity
	return nil
}

// MockProvider captures the charged amount
type MockProvider struct {
	AmountCents int64
	Currency    string
	Calls       int
	Err         error
}

func (m *MockProvider) CreateIntent(_ context.Context, amountCents int64, currency string) (*payment.Intent, error) {
	m.Calls++
	m.AmountCents = amountCents
	m.Currency = currency
	if m.Err != nil {
		return nil, m.Err
	}
	return &payment.Intent{
		ID:           fmt.Sprintf("pi_test_%d", amountCents),
		ClientSecret: "pi_test_secret",
		Status:       "requires_payment_method",
	}, nil
}

// MockEventSink records published events
type MockEventSink struct {
	Events []string
}

func (m *MockEventSink) Publish(_ context.Context, eventType string, _ *domain.Order) {
	m.Events = append(m.Events, eventType)
}
