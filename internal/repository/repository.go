package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/avdeyev/storefront/internal/domain"
)

var (
	ErrCartNotFound    = errors.New("cart not found")
	ErrProductNotFound = errors.New("product not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrDuplicateEmail  = errors.New("email already registered")
)

// CartRepository persists whole cart snapshots. The cart engine mutates a
// snapshot in memory; the repository only ever stores and restores it
// verbatim.
type CartRepository interface {
	GetCart(ctx context.Context, userID primitive.ObjectID) (*domain.Cart, error)
	UpsertCart(ctx context.Context, cart *domain.Cart) error
	DeleteCart(ctx context.Context, userID primitive.ObjectID) error
}

// ProductListFilter carries catalog query parameters. Zero values mean
// "no filter".
type ProductListFilter struct {
	Search   string
	Category string
	MinPrice *float64
	MaxPrice *float64
	SortBy   string
	Page     int
	Limit    int
}

type ProductRepository interface {
	ListProducts(ctx context.Context, filter ProductListFilter) ([]*domain.Product, int64, error)
	GetProduct(ctx context.Context, id primitive.ObjectID) (*domain.Product, error)
	CreateProduct(ctx context.Context, product *domain.Product) error
	ReplaceProduct(ctx context.Context, product *domain.Product) error
	DeleteProduct(ctx context.Context, id primitive.ObjectID) error
	DecrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrder(ctx context.Context, id primitive.ObjectID) (*domain.Order, error)
	ListOrdersByUser(ctx context.Context, userID primitive.ObjectID) ([]*domain.Order, error)
	ListOrders(ctx context.Context) ([]*domain.Order, error)
	SaveOrder(ctx context.Context, order *domain.Order) error
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	SaveUser(ctx context.Context, user *domain.User) error
}
