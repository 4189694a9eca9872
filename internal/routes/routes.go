package routes

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/mvaldes/almacen/internal/auth"
	"github.com/mvaldes/almacen/internal/handlers"
	"github.com/mvaldes/almacen/internal/middleware"
	"github.com/mvaldes/almacen/internal/reqlock"
)

// Guards bundles the per-surface dedup guards so each mutating route group
// gets a hold window sized to its expected latency
type Guards struct {
	Default *reqlock.Guard
	Stock   *reqlock.Guard
}

// RegisterRoutes wires every application route. The dedup guard runs before
// authentication on mutating routes so an identical in-flight request is
// rejected as early as possible.
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	productHandler *handlers.ProductHandler,
	adminHandler *handlers.AdminHandler,
	tokenManager *auth.TokenManager,
	guards Guards,
	logger *slog.Logger,
) {
	rateLimit := middleware.RateLimitByIP(middleware.DefaultAuthRateLimit())
	dedup := reqlock.Middleware(guards.Default, logger)
	stockDedup := reqlock.Middleware(guards.Stock, logger)

	// Public routes
	router.With(rateLimit, dedup).Post("/auth/login", authHandler.Login)
	router.With(rateLimit, dedup).Post("/auth/register", authHandler.Register)
	router.With(rateLimit).Post("/auth/refresh", authHandler.Refresh)
	router.Get("/auth/verify", authHandler.Verify)

	router.Get("/products", productHandler.ListProducts)
	router.Get("/products/stats", productHandler.Stats)
	router.Get("/products/{id}", productHandler.GetProduct)

	// Authenticated routes
	router.Group(func(r chi.Router) {
		r.Use(auth.Middleware(tokenManager))

		r.Get("/users/{id}", userHandler.GetUser)

		r.With(dedup).Post("/products", productHandler.CreateProduct)
		r.With(dedup).Put("/products/{id}", productHandler.UpdateProduct)
		r.With(stockDedup).Patch("/products/{id}/stock", productHandler.UpdateStock)

		// Admin-only routes
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole("admin"))

			r.Get("/users", userHandler.ListUsers)
			r.With(dedup).Post("/users", userHandler.CreateUser)
			r.With(dedup).Put("/users/{id}", userHandler.UpdateUser)
			r.With(dedup).Delete("/users/{id}", userHandler.DeleteUser)
			r.With(dedup).Delete("/products/{id}", productHandler.DeleteProduct)

			r.Get("/admin/guards", adminHandler.GuardStats)
		})
	})
}
