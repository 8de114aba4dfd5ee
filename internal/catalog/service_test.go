package catalog

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/avdeyev/storefront/internal/domain"
	"github.com/avdeyev/storefront/internal/repository"
)

type mockProductRepo struct {
	mu       sync.Mutex
	products map[primitive.ObjectID]*domain.Product

	lastFilter repository.ProductListFilter
	listTotal  int64
	listErr    error
	replaceErr error
}

func newMockProductRepo() *mockProductRepo {
	return &mockProductRepo{products: make(map[primitive.ObjectID]*domain.Product)}
}

func (m *mockProductRepo) add(p *domain.Product) *domain.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	m.products[p.ID] = p
	return p
}

func (m *mockProductRepo) ListProducts(_ context.Context, filter repository.ProductListFilter) ([]*domain.Product, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastFilter = filter
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	var out []*domain.Product
	for _, p := range m.products {
		out = append(out, p)
	}
	total := m.listTotal
	if total == 0 {
		total = int64(len(out))
	}
	return out, total, nil
}

func (m *mockProductRepo) GetProduct(_ context.Context, id primitive.ObjectID) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *mockProductRepo) CreateProduct(_ context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	product.ID = primitive.NewObjectID()
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepo) ReplaceProduct(_ context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.replaceErr != nil {
		return m.replaceErr
	}
	if _, ok := m.products[product.ID]; !ok {
		return repository.ErrProductNotFound
	}
	copied := *product
	m.products[product.ID] = &copied
	return nil
}

func (m *mockProductRepo) DeleteProduct(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepo) DecrementStock(_ context.Context, id primitive.ObjectID, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return repository.ErrProductNotFound
	}
	p.Stock -= quantity
	return nil
}

func TestList_DefaultsAndPageCount(t *testing.T) {
	repo := newMockProductRepo()
	repo.listTotal = 25
	svc := NewService(repo)

	result, err := svc.List(context.Background(), repository.ProductListFilter{})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Page)
	assert.Equal(t, 12, result.Limit)
	assert.Equal(t, int64(25), result.Total)
	// 25 items at 12 per page is 3 pages
	assert.Equal(t, int64(3), result.TotalPages)
	assert.Equal(t, 12, repo.lastFilter.Limit)
	assert.Equal(t, 1, repo.lastFilter.Page)
}

func TestList_ExactPageBoundary(t *testing.T) {
	repo := newMockProductRepo()
	repo.listTotal = 24
	svc := NewService(repo)

	result, err := svc.List(context.Background(), repository.ProductListFilter{Limit: 12})

	require.NoError(t, err)
	assert.Equal(t, int64(2), result.TotalPages)
}

func TestList_EmptyCatalogReturnsEmptySlice(t *testing.T) {
	svc := NewService(newMockProductRepo())

	result, err := svc.List(context.Background(), repository.ProductListFilter{})

	require.NoError(t, err)
	require.NotNil(t, result.Products)
	assert.Empty(t, result.Products)
	assert.Equal(t, int64(0), result.TotalPages)
}

func TestUpdate_PartialFields(t *testing.T) {
	repo := newMockProductRepo()
	existing := repo.add(&domain.Product{
		Name:        "Old Name",
		Description: "Old description",
		Price:       19.99,
		Category:    "books",
		Stock:       5,
	})
	svc := NewService(repo)

	updated, err := svc.Update(context.Background(), existing.ID, ProductInput{Price: 24.99})

	require.NoError(t, err)
	assert.Equal(t, 24.99, updated.Price)
	assert.Equal(t, "Old Name", updated.Name)
	assert.Equal(t, "Old description", updated.Description)
	assert.Equal(t, "books", updated.Category)
	assert.Equal(t, 5, updated.Stock)
}

func TestUpdate_UnknownProduct(t *testing.T) {
	svc := NewService(newMockProductRepo())

	_, err := svc.Update(context.Background(), primitive.NewObjectID(), ProductInput{Name: "x"})

	assert.ErrorIs(t, err, repository.ErrProductNotFound)
}

func TestAddReview(t *testing.T) {
	repo := newMockProductRepo()
	product := repo.add(&domain.Product{Name: "Widget", Price: 9.99})
	svc := NewService(repo)

	reviewer := primitive.NewObjectID()
	updated, err := svc.AddReview(context.Background(), product.ID, reviewer, 4, "solid")

	require.NoError(t, err)
	require.Len(t, updated.Ratings, 1)
	assert.Equal(t, reviewer, updated.Ratings[0].User)
	assert.Equal(t, 4.0, updated.AvgRating)

	// a second reviewer shifts the average
	updated, err = svc.AddReview(context.Background(), product.ID, primitive.NewObjectID(), 5, "great")
	require.NoError(t, err)
	assert.Equal(t, 4.5, updated.AvgRating)
}

func TestAddReview_OncePerUser(t *testing.T) {
	repo := newMockProductRepo()
	product := repo.add(&domain.Product{Name: "Widget"})
	svc := NewService(repo)

	reviewer := primitive.NewObjectID()
	_, err := svc.AddReview(context.Background(), product.ID, reviewer, 3, "")
	require.NoError(t, err)

	_, err = svc.AddReview(context.Background(), product.ID, reviewer, 5, "changed my mind")
	assert.ErrorIs(t, err, ErrAlreadyReviewed)

	stored, err := repo.GetProduct(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Ratings, 1)
}

func TestAddReview_RatingBounds(t *testing.T) {
	repo := newMockProductRepo()
	product := repo.add(&domain.Product{Name: "Widget"})
	svc := NewService(repo)

	for _, rating := range []int{0, -1, 6} {
		_, err := svc.AddReview(context.Background(), product.ID, primitive.NewObjectID(), rating, "")
		assert.ErrorIs(t, err, ErrInvalidRating)
	}
}

func TestCreateAndDelete(t *testing.T) {
	repo := newMockProductRepo()
	svc := NewService(repo)

	product, err := svc.Create(context.Background(), ProductInput{
		Name:     "Widget",
		Price:    9.99,
		Category: "gadgets",
		Stock:    10,
	})
	require.NoError(t, err)
	assert.False(t, product.ID.IsZero())

	require.NoError(t, svc.Delete(context.Background(), product.ID))

	_, err = svc.GetProduct(context.Background(), product.ID)
	assert.ErrorIs(t, err, repository.ErrProductNotFound)
}
