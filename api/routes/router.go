package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aromabay/aromabay-backend/api/controllers"
	"github.com/aromabay/aromabay-backend/api/middleware"
	"github.com/aromabay/aromabay-backend/internal/auth"
	"github.com/aromabay/aromabay-backend/internal/cart"
	"github.com/aromabay/aromabay-backend/internal/catalog"
	"github.com/aromabay/aromabay-backend/internal/favorites"
	"github.com/aromabay/aromabay-backend/internal/orders"
	"github.com/aromabay/aromabay-backend/internal/users"
	"github.com/aromabay/aromabay-backend/pkg/auth/session"
	"github.com/aromabay/aromabay-backend/pkg/config"
	"github.com/aromabay/aromabay-backend/pkg/db"
	"github.com/aromabay/aromabay-backend/pkg/logger"
	"github.com/aromabay/aromabay-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// RouterParams bundles everything the HTTP surface depends on.
type RouterParams struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             db.Pinger
	Redis          *redis.Client
	SessionManager sessionManager
	AuthService    auth.Service
	Register       auth.RegisterService
	UsersService   users.Service
	CatalogService catalog.Service
	CartService    cart.Service
	Favorites      favorites.Service
	OrdersService  orders.Service
	MetricsReg     *prometheus.Registry
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginLoginLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterLoginLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, readinessDeps(p)))
	})

	if p.MetricsReg != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.MetricsReg, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).Post("/login", controllers.Login(p.AuthService, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, p.Redis, logg)).Post("/register", controllers.Register(p.Register, logg))
		r.Post("/refresh", controllers.Refresh(p.AuthService, logg))
		r.Post("/logout", controllers.Logout(p.AuthService, logg))
	})

	// Browsing the catalog needs no account.
	r.Route("/api/v1/catalog", func(r chi.Router) {
		r.Get("/categories", controllers.ListCategories(p.CatalogService, logg))
		r.Get("/items", controllers.ListItems(p.CatalogService, logg))
		r.Get("/items/{itemID}", controllers.GetItem(p.CatalogService, logg))
	})

	var idemStore redis.IdempotencyStore
	if p.Redis != nil {
		idemStore = p.Redis
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.SessionManager, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", controllers.GetProfile(p.UsersService, logg))
			r.Patch("/", controllers.UpdateProfile(p.UsersService, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.GetCart(p.CartService, logg))
			r.Post("/items", controllers.AddCartItem(p.CartService, logg))
			r.Put("/items/{itemID}", controllers.UpdateCartItem(p.CartService, logg))
			r.Delete("/items/{itemID}", controllers.RemoveCartItem(p.CartService, logg))
			r.Delete("/", controllers.ClearCart(p.CartService, logg))
		})

		r.Route("/favorites", func(r chi.Router) {
			r.Get("/", controllers.ListFavorites(p.Favorites, logg))
			r.Put("/{itemID}", controllers.AddFavorite(p.Favorites, logg))
			r.Delete("/{itemID}", controllers.RemoveFavorite(p.Favorites, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.PlaceOrder(p.OrdersService, p.CartService, logg))
			r.Get("/", controllers.ListOrders(p.OrdersService, logg))
			r.Get("/{orderID}", controllers.GetOrder(p.OrdersService, logg))
			r.Post("/{orderID}/cancel", controllers.CancelOrder(p.OrdersService, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequirePrivileged(logg))
			r.Get("/ping", controllers.AdminPing())

			r.Route("/categories", func(r chi.Router) {
				r.Post("/", controllers.AdminCreateCategory(p.CatalogService, logg))
				r.Delete("/{categoryID}", controllers.AdminDeleteCategory(p.CatalogService, logg))
			})
			r.Route("/items", func(r chi.Router) {
				r.Post("/", controllers.AdminCreateItem(p.CatalogService, logg))
				r.Patch("/{itemID}", controllers.AdminUpdateItem(p.CatalogService, logg))
				r.Delete("/{itemID}", controllers.AdminDeleteItem(p.CatalogService, logg))
			})
			r.Post("/orders/{orderID}/advance", controllers.AdvanceOrder(p.OrdersService, logg))
		})
	})

	return r
}

func readinessDeps(p RouterParams) map[string]controllers.HealthDep {
	deps := map[string]controllers.HealthDep{}
	if p.DB != nil {
		deps["postgres"] = p.DB
	}
	if p.Redis != nil {
		deps["redis"] = p.Redis
	}
	return deps
}
