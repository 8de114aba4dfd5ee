package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/avdeyev/storefront/internal/catalog"
	"github.com/avdeyev/storefront/internal/repository"
)

type ProductHandler struct {
	service *catalog.Service
}

func NewProductHandler(service *catalog.Service) *ProductHandler {
	return &ProductHandler{service: service}
}

type ReviewRequestDTO struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := repository.ProductListFilter{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		SortBy:   q.Get("sortBy"),
	}
	if v, err := strconv.Atoi(q.Get("page")); err == nil {
		filter.Page = v
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil {
		filter.Limit = v
	}
	if v, err := strconv.ParseFloat(q.Get("minPrice"), 64); err == nil {
		filter.MinPrice = &v
	}
	if v, err := strconv.ParseFloat(q.Get("maxPrice"), 64); err == nil {
		filter.MaxPrice = &v
	}

	result, err := h.service.List(r.Context(), filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list products")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDFromURL(w, r)
	if !ok {
		return
	}

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		handleCatalogError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input catalog.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if input.Name == "" || input.Price < 0 {
		respondError(w, http.StatusBadRequest, "invalid_request", "name is required and price must be non-negative")
		return
	}

	product, err := h.service.Create(r.Context(), input)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to create product")
		return
	}

	respondJSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDFromURL(w, r)
	if !ok {
		return
	}

	var input catalog.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	product, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		handleCatalogError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDFromURL(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		handleCatalogError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "product removed"})
}

func (h *ProductHandler) AddReview(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDFromURL(w, r)
	if !ok {
		return
	}

	userID, authed := getUserID(r.Context())
	if !authed {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req ReviewRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	product, err := h.service.AddReview(r.Context(), id, userID, req.Rating, req.Comment)
	if err != nil {
		handleCatalogError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, product)
}

func productIDFromURL(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "productID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product id must be a valid object id")
		return primitive.NilObjectID, false
	}
	return id, true
}

func handleCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "not_found", "product not found")
	case errors.Is(err, catalog.ErrAlreadyReviewed):
		respondError(w, http.StatusBadRequest, "already_reviewed", "product already reviewed")
	case errors.Is(err, catalog.ErrInvalidRating):
		respondError(w, http.StatusBadRequest, "invalid_rating", "rating must be between 1 and 5")
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
