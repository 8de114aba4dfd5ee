package cart

import (
	"context"
	"errors"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/singleflight"

	"github.com/avdeyev/storefront/internal/cache"
	"github.com/avdeyev/storefront/internal/domain"
	"github.com/avdeyev/storefront/internal/repository"
)

// ProductGetter is the slice of the catalog the cart needs: resolving a
// product id to a snapshot at add-to-cart time.
type ProductGetter interface {
	GetProduct(ctx context.Context, id primitive.ObjectID) (*domain.Product, error)
}

type Service struct {
	repo     repository.CartRepository
	cache    cache.CartCache
	products ProductGetter
	sfg      singleflight.Group // Prevents cache stampede
}

func NewService(repo repository.CartRepository, cache cache.CartCache, products ProductGetter) *Service {
	return &Service{
		repo:     repo,
		cache:    cache,
		products: products,
	}
}

func (s *Service) GetCart(ctx context.Context, userID primitive.ObjectID) (*domain.Cart, error) {
	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(userID.Hex(), func() (interface{}, error) {

		cart, err := s.cache.Get(ctx, userID.Hex())
		if err == nil {
			return cart, nil // cart is in cache
		}

		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("cache get error: %v", err) // log cache error but continue
		}

		cart, errGet := s.loadCart(ctx, userID)
		if errGet != nil {
			return nil, errGet
		}

		// set cache
		go func() {
			errSet := s.cache.Set(context.Background(), userID.Hex(), cart)
			if errSet != nil {
				log.Printf("cache set error: %v", errSet)
			}
		}()

		return cart, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

// loadCart reads the authoritative snapshot. A user with no stored cart gets
// a fresh empty one.
func (s *Service) loadCart(ctx context.Context, userID primitive.ObjectID) (*domain.Cart, error) {
	cart, err := s.repo.GetCart(ctx, userID)
	if errors.Is(err, repository.ErrCartNotFound) {
		now := time.Now()
		return &domain.Cart{
			UserID:    userID,
			Items:     nil,
			CreatedAt: now,
			UpdatedAt: now,
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *Service) AddItem(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (*domain.Cart, error) {
	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, userID, func(c *domain.Cart) {
		AddItem(c, *product, quantity)
	})
}

func (s *Service) UpdateQuantity(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (*domain.Cart, error) {
	return s.mutate(ctx, userID, func(c *domain.Cart) {
		UpdateQuantity(c, productID, quantity)
	})
}

func (s *Service) RemoveItem(ctx context.Context, userID, productID primitive.ObjectID) (*domain.Cart, error) {
	return s.mutate(ctx, userID, func(c *domain.Cart) {
		RemoveItem(c, productID)
	})
}

func (s *Service) Clear(ctx context.Context, userID primitive.ObjectID) (*domain.Cart, error) {
	return s.mutate(ctx, userID, Clear)
}

func (s *Service) SetShippingAddress(ctx context.Context, userID primitive.ObjectID, address *domain.ShippingAddress) (*domain.Cart, error) {
	return s.mutate(ctx, userID, func(c *domain.Cart) {
		SetShippingAddress(c, address)
	})
}

func (s *Service) SetPaymentMethod(ctx context.Context, userID primitive.ObjectID, method string) (*domain.Cart, error) {
	return s.mutate(ctx, userID, func(c *domain.Cart) {
		SetPaymentMethod(c, method)
	})
}

// mutate applies an engine mutation to the stored snapshot and persists the
// result. Mutations always read through the repository, never the cache.
func (s *Service) mutate(ctx context.Context, userID primitive.ObjectID, fn func(*domain.Cart)) (*domain.Cart, error) {
	cart, err := s.loadCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	fn(cart)

	if err := s.repo.UpsertCart(ctx, cart); err != nil {
		log.Printf("repo upsert cart error: %v", err)
		return nil, err
	}

	s.invalidateCache(userID)
	return cart, nil
}

func (s *Service) invalidateCache(userID primitive.ObjectID) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	errInvalidate := s.cache.Delete(ctx, userID.Hex())
	if errInvalidate != nil {
		log.Printf("cache invalidate error: %v", errInvalidate)
	}
}
