package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"foodorder/internal/model"
	"foodorder/internal/mw"
	"foodorder/internal/service"
)

type Services struct {
	Auth    *service.AuthService
	Catalog *service.CatalogService
	Orders  *service.OrderService
	Pricing *service.PricingService
	Health  Pinger
}

type RouterConfig struct {
	JWTSecret      string
	AllowedOrigins []string
}

func NewRouter(svc Services, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(NotFound)
	r.MethodNotAllowed(MethodNotAllowed)

	authenticate := mw.AuthMiddleware(cfg.JWTSecret, Fail)
	staff := mw.RequireRole(Fail, model.RoleAdmin, model.RoleRestaurant)

	r.Get("/health", HealthHandler(svc.Health))

	r.Route("/api", func(r chi.Router) {
		r.Get("/", IndexHandler())

		r.Post("/auth/register", RegisterHandler(svc.Auth, cfg.JWTSecret))
		r.Post("/auth/login", LoginHandler(svc.Auth, cfg.JWTSecret))

		r.Route("/foods", func(r chi.Router) {
			r.Get("/", ListFoodsHandler(svc.Catalog))
			r.Get("/search", SearchFoodsHandler(svc.Catalog))
			r.Get("/categories", FoodCategoriesHandler(svc.Catalog))
			r.Get("/{id}", GetFoodHandler(svc.Catalog))

			r.Group(func(r chi.Router) {
				r.Use(authenticate, staff)
				r.Post("/", CreateFoodHandler(svc.Catalog))
				r.Put("/{id}", UpdateFoodHandler(svc.Catalog))
				r.Delete("/{id}", DeleteFoodHandler(svc.Catalog))
			})
		})

		r.Route("/promo-codes", func(r chi.Router) {
			r.Post("/validate", ValidatePromoCodeHandler(svc.Pricing))
			r.Get("/active", ActivePromoCodesHandler(svc.Pricing))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/", CreateOrderHandler(svc.Orders))
			r.Get("/", ListOrdersHandler(svc.Orders))
			r.Get("/{id}", GetOrderHandler(svc.Orders))
			r.With(staff).Patch("/{id}/status", UpdateOrderStatusHandler(svc.Orders))
			r.Patch("/{id}/cancel", CancelOrderHandler(svc.Orders))
			r.Post("/{id}/rating", RateOrderHandler(svc.Orders))
		})
	})

	return r
}
