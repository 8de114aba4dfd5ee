// Package catalog implements product queries and management over the
// product repository.
package catalog

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/avdeyev/storefront/internal/domain"
	"github.com/avdeyev/storefront/internal/repository"
)

var (
	ErrAlreadyReviewed = errors.New("product already reviewed by this user")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
)

// ListResult is the catalog page shape returned to clients.
type ListResult struct {
	Products   []*domain.Product `json:"products"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	Total      int64             `json:"total"`
	TotalPages int64             `json:"totalPages"`
}

// ProductInput carries create/update fields. On update, zero values leave
// the existing field untouched, matching the partial-update contract of the
// admin UI.
type ProductInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Images      []string `json:"images"`
	Category    string   `json:"category"`
	Stock       int      `json:"stock"`
}

type Service struct {
	repo repository.ProductRepository
}

func NewService(repo repository.ProductRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filter repository.ProductListFilter) (*ListResult, error) {
	if filter.Limit <= 0 {
		filter.Limit = 12
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}

	products, total, err := s.repo.ListProducts(ctx, filter)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []*domain.Product{}
	}

	totalPages := total / int64(filter.Limit)
	if total%int64(filter.Limit) != 0 {
		totalPages++
	}

	return &ListResult{
		Products:   products,
		Page:       filter.Page,
		Limit:      filter.Limit,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

func (s *Service) GetProduct(ctx context.Context, id primitive.ObjectID) (*domain.Product, error) {
	return s.repo.GetProduct(ctx, id)
}

func (s *Service) Create(ctx context.Context, input ProductInput) (*domain.Product, error) {
	product := &domain.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Images:      input.Images,
		Category:    input.Category,
		Stock:       input.Stock,
	}

	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *Service) Update(ctx context.Context, id primitive.ObjectID, input ProductInput) (*domain.Product, error) {
	product, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		product.Name = input.Name
	}
	if input.Description != "" {
		product.Description = input.Description
	}
	if input.Price != 0 {
		product.Price = input.Price
	}
	if len(input.Images) > 0 {
		product.Images = input.Images
	}
	if input.Category != "" {
		product.Category = input.Category
	}
	if input.Stock != 0 {
		product.Stock = input.Stock
	}

	if err := s.repo.ReplaceProduct(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *Service) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.repo.DeleteProduct(ctx, id)
}

// AddReview appends a review and recomputes the average rating. A user may
// review a product at most once.
func (s *Service) AddReview(ctx context.Context, productID, userID primitive.ObjectID, rating int, comment string) (*domain.Product, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	product, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	for _, review := range product.Ratings {
		if review.User == userID {
			return nil, ErrAlreadyReviewed
		}
	}

	product.Ratings = append(product.Ratings, domain.Review{
		User:      userID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: time.Now(),
	})
	product.RecalculateAvgRating()

	if err := s.repo.ReplaceProduct(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *Service) DecrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error {
	return s.repo.DecrementStock(ctx, id, quantity)
}
