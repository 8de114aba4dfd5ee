// Package http is the REST surface of the storefront. Handlers translate
// between wire DTOs and the cart/catalog/checkout services.
package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/avdeyev/storefront/internal/auth"
)

type RouterConfig struct {
	Tokens         *auth.TokenManager
	Auth           *AuthHandler
	Products       *ProductHandler
	Cart           *CartHandler
	Orders         *OrderHandler
	RequestTimeout time.Duration
	AllowedOrigins []string
}

func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	requireAuth := AuthMiddleware(cfg.Tokens)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", cfg.Auth.Register)
			r.Post("/login", cfg.Auth.Login)
			r.With(requireAuth).Get("/profile", cfg.Auth.GetProfile)
			r.With(requireAuth).Put("/profile", cfg.Auth.UpdateProfile)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", cfg.Products.List)
			r.Get("/{productID}", cfg.Products.Get)
			r.With(requireAuth).Post("/{productID}/reviews", cfg.Products.AddReview)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth, RequireAdmin)
				r.Post("/", cfg.Products.Create)
				r.Put("/{productID}", cfg.Products.Update)
				r.Delete("/{productID}", cfg.Products.Delete)
			})
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", cfg.Cart.GetCart)
			r.Post("/items", cfg.Cart.AddItem)
			r.Put("/items/{productID}", cfg.Cart.UpdateQuantity)
			r.Delete("/items/{productID}", cfg.Cart.RemoveItem)
			r.Post("/clear", cfg.Cart.ClearCart)
			r.Put("/shipping", cfg.Cart.SetShippingAddress)
			r.Put("/payment-method", cfg.Cart.SetPaymentMethod)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", cfg.Orders.Create)
			r.Get("/mine", cfg.Orders.ListMine)
			r.Get("/{orderID}", cfg.Orders.Get)
			r.Put("/{orderID}/pay", cfg.Orders.Pay)

			r.Group(func(r chi.Router) {
				r.Use(RequireAdmin)
				r.Get("/", cfg.Orders.ListAll)
				r.Put("/{orderID}/status", cfg.Orders.UpdateStatus)
			})
		})
	})

	return r
}
