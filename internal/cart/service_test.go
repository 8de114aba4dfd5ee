package cart

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/avdeyev/storefront/internal/cache"
	"github.com/avdeyev/storefront/internal/domain"
	"github.com/avdeyev/storefront/internal/repository"
)

type mockRepository struct {
	m    sync.RWMutex
	cart *domain.Cart
	err  error
}

func (m *mockRepository) GetCart(context.Context, primitive.ObjectID) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.cart == nil {
		return nil, repository.ErrCartNotFound
	}
	copied := *m.cart
	return &copied, nil
}

func (m *mockRepository) UpsertCart(_ context.Context, c *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	copied := *c
	m.cart = &copied
	return nil
}

func (m *mockRepository) DeleteCart(context.Context, primitive.ObjectID) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.cart = nil
	return m.err
}

type mockCache struct {
	m       sync.RWMutex
	cart    *domain.Cart
	deletes int
	err     error
}

func (m *mockCache) Get(context.Context, string) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.cart == nil {
		return nil, cache.ErrCacheMiss
	}
	return m.cart, nil
}

func (m *mockCache) Set(_ context.Context, _ string, cart *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.cart = cart
	return m.err
}

func (m *mockCache) Delete(context.Context, string) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.cart = nil
	m.deletes++
	return m.err
}

type mockProducts struct {
	products map[primitive.ObjectID]domain.Product
}

func (m *mockProducts) GetProduct(_ context.Context, id primitive.ObjectID) (*domain.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return &p, nil
}

func newTestService(repo *mockRepository, c *mockCache, products ...domain.Product) *Service {
	getter := &mockProducts{products: make(map[primitive.ObjectID]domain.Product)}
	for _, p := range products {
		getter.products[p.ID] = p
	}
	return NewService(repo, c, getter)
}

func TestGetCart_ReturnsEmptyCartWhenNoneStored(t *testing.T) {
	svc := newTestService(&mockRepository{}, &mockCache{})

	userID := primitive.NewObjectID()
	c, err := svc.GetCart(context.Background(), userID)

	require.NoError(t, err)
	assert.Equal(t, userID, c.UserID)
	assert.Empty(t, c.Items)
	assert.Equal(t, 0, c.TotalItems)
	assert.Zero(t, c.TotalPrice)
}

func TestGetCart_PrefersCache(t *testing.T) {
	cached := &domain.Cart{TotalItems: 7}
	svc := newTestService(&mockRepository{}, &mockCache{cart: cached})

	c, err := svc.GetCart(context.Background(), primitive.NewObjectID())

	require.NoError(t, err)
	assert.Equal(t, 7, c.TotalItems)
}

func TestAddItem_SnapshotsProductAndPersists(t *testing.T) {
	p := testProduct(19.99)
	repo := &mockRepository{}
	cacheMock := &mockCache{}
	svc := newTestService(repo, cacheMock, p)

	userID := primitive.NewObjectID()
	c, err := svc.AddItem(context.Background(), userID, p.ID, 2)

	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, p.Name, c.Items[0].Product.Name)
	assert.InDelta(t, 39.98, c.TotalPrice, 1e-9)

	// persisted snapshot matches
	require.NotNil(t, repo.cart)
	assert.Equal(t, 2, repo.cart.TotalItems)
	// mutations invalidate the cache
	assert.Equal(t, 1, cacheMock.deletes)
}

func TestAddItem_UnknownProduct(t *testing.T) {
	svc := newTestService(&mockRepository{}, &mockCache{})

	_, err := svc.AddItem(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), 1)

	assert.ErrorIs(t, err, repository.ErrProductNotFound)
}

func TestMutations_SurviveSnapshotRoundTrip(t *testing.T) {
	p := testProduct(10.00)
	repo := &mockRepository{}
	svc := newTestService(repo, &mockCache{}, p)
	userID := primitive.NewObjectID()

	_, err := svc.AddItem(context.Background(), userID, p.ID, 3)
	require.NoError(t, err)

	c, err := svc.UpdateQuantity(context.Background(), userID, p.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, c.TotalItems)

	c, err = svc.RemoveItem(context.Background(), userID, p.ID)
	require.NoError(t, err)
	assert.Empty(t, c.Items)
}

func TestClear_DropsStagedCheckoutState(t *testing.T) {
	p := testProduct(10.00)
	repo := &mockRepository{}
	svc := newTestService(repo, &mockCache{}, p)
	userID := primitive.NewObjectID()

	_, err := svc.AddItem(context.Background(), userID, p.ID, 1)
	require.NoError(t, err)
	_, err = svc.SetShippingAddress(context.Background(), userID, &domain.ShippingAddress{Address: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "US"})
	require.NoError(t, err)
	_, err = svc.SetPaymentMethod(context.Background(), userID, "card")
	require.NoError(t, err)

	c, err := svc.Clear(context.Background(), userID)

	require.NoError(t, err)
	assert.Empty(t, c.Items)
	assert.Nil(t, c.ShippingAddress)
	assert.Empty(t, c.PaymentMethod)
}

func TestMutate_RepositoryErrorPropagates(t *testing.T) {
	p := testProduct(10.00)
	repo := &mockRepository{err: assert.AnError}
	svc := newTestService(repo, &mockCache{}, p)

	_, err := svc.AddItem(context.Background(), primitive.NewObjectID(), p.ID, 1)

	assert.Error(t, err)
}
