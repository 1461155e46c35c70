package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront-backend/api/controllers"
	cartcontrollers "github.com/angelmondragon/storefront-backend/api/controllers/cart"
	ordercontrollers "github.com/angelmondragon/storefront-backend/api/controllers/orders"
	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/auth"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/categories"
	"github.com/angelmondragon/storefront-backend/internal/dashboard"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	products "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/internal/users"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

// Params carries everything the HTTP surface is assembled from.
// Redis, Gatherer and HTTPMetrics are optional.
type Params struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          db.Pinger
	Redis       *redis.Client
	Gatherer    prometheus.Gatherer
	HTTPMetrics *metrics.HTTPMetrics

	Auth       auth.Service
	Users      users.Service
	Categories categories.Service
	Products   products.Service
	Cart       cart.Service
	Orders     orders.Service
	Dashboard  dashboard.Service
}

func NewRouter(p Params) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
		middleware.Metrics(p.HTTPMetrics),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	// Redis-backed middleware only runs when a client is configured.
	var redisPinger redis.Pinger
	rateLimit := func(policy middleware.AuthRateLimitPolicy) func(http.Handler) http.Handler {
		return passthrough
	}
	idempotency := passthrough
	if p.Redis != nil {
		redisPinger = p.Redis
		rateLimit = func(policy middleware.AuthRateLimitPolicy) func(http.Handler) http.Handler {
			return middleware.AuthRateLimit(policy, p.Redis, logg)
		}
		idempotency = middleware.Idempotency(p.Redis, cfg.Idempotency.TTL, logg)
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, redisPinger))
	})

	if p.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{}))
	}

	r.With(rateLimit(registerPolicy)).Post("/register", controllers.AuthRegister(p.Auth, logg))
	r.With(rateLimit(loginPolicy)).Post("/login", controllers.AuthLogin(p.Auth, logg))

	r.Get("/users/{userId}", controllers.GetUser(p.Users, logg))
	r.Get("/categories", controllers.ListCategories(p.Categories, logg))
	r.Get("/products", controllers.ListProducts(p.Products, logg))
	r.Get("/products/{productId}", controllers.GetProduct(p.Products, logg))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.RoleAdmin))
			r.Post("/categories", controllers.CreateCategory(p.Categories, logg))
			r.Post("/products", controllers.CreateProduct(p.Products, logg))
			r.Put("/products/{productId}", controllers.UpdateProduct(p.Products, logg))
			r.Delete("/products/{productId}", controllers.DeleteProduct(p.Products, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(idempotency)
			r.Get("/cart", cartcontrollers.CartFetch(p.Cart, logg))
			r.Post("/cart/items", cartcontrollers.CartAddItem(p.Cart, logg))
			r.Post("/orders", ordercontrollers.Create(p.Orders, logg))
		})

		r.Get("/dashboard", controllers.Dashboard(p.Dashboard, logg))
	})

	return r
}

func passthrough(next http.Handler) http.Handler {
	return next
}
