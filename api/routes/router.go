package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shopsphere/shopsphere-backend/api/controllers"
	"github.com/shopsphere/shopsphere-backend/api/middleware"
	authsvc "github.com/shopsphere/shopsphere-backend/internal/auth"
	cartsvc "github.com/shopsphere/shopsphere-backend/internal/cart"
	categorysvc "github.com/shopsphere/shopsphere-backend/internal/categories"
	ordersvc "github.com/shopsphere/shopsphere-backend/internal/orders"
	productsvc "github.com/shopsphere/shopsphere-backend/internal/products"
	userssvc "github.com/shopsphere/shopsphere-backend/internal/users"
	"github.com/shopsphere/shopsphere-backend/pkg/auth/session"
	"github.com/shopsphere/shopsphere-backend/pkg/config"
	"github.com/shopsphere/shopsphere-backend/pkg/enums"
	"github.com/shopsphere/shopsphere-backend/pkg/logger"
	"github.com/shopsphere/shopsphere-backend/pkg/metrics"
	"github.com/shopsphere/shopsphere-backend/pkg/redis"
)

// RouterParams bundles everything the HTTP surface depends on.
type RouterParams struct {
	Config      *config.Config
	Logger      *logger.Logger
	Redis       *redis.Client
	Sessions    session.Resolver
	HTTPMetrics *metrics.HTTPMetrics
	Readiness   map[string]controllers.Pinger

	AuthService     authsvc.Service
	UsersService    userssvc.Service
	ProductsService productsvc.Service
	CategoryService categorysvc.Service
	CartService     cartsvc.Service
	OrdersService   ordersvc.Service
}

// NewRouter assembles the storefront HTTP surface. Paths mirror the client's
// existing expectations, so some of them carry historical quirks.
func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, p.HTTPMetrics),
		middleware.CORS(),
	)

	auth := middleware.Auth(cfg.Session, p.Sessions, logg)
	adminOnly := middleware.RequireRole(string(enums.RoleAdmin), logg)

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

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, p.Readiness))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, p.Redis, logg)).
			Post("/register", controllers.Register(p.AuthService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).
			Post("/login", controllers.Login(p.AuthService, cfg.Session, logg))
		r.Post("/logout", controllers.Logout(p.AuthService, cfg.Session, logg))
		r.Route("/forgot-password", func(r chi.Router) {
			r.Post("/send-otp", controllers.ForgotPasswordSendOTP(p.AuthService, logg))
			r.Post("/verify", controllers.ForgotPasswordVerify(p.AuthService, logg))
			r.Post("/reset", controllers.ForgotPasswordReset(p.AuthService, logg))
		})
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", controllers.ProductList(p.ProductsService, logg))
		r.Get("/search", controllers.ProductSearch(p.ProductsService, logg))
		r.Get("/filters/options", controllers.ProductFilterOptions(p.ProductsService, logg))
		// Historical double segment preserved for the storefront client.
		r.Get("/products/wishlist", controllers.WishlistResolve(p.ProductsService, logg))

		r.Group(func(r chi.Router) {
			r.Use(auth, adminOnly)
			r.Get("/all", controllers.AdminProductList(p.ProductsService, logg))
			r.Post("/add", controllers.AdminProductCreate(p.ProductsService, logg))
			r.Put("/update/{id}", controllers.AdminProductUpdate(p.ProductsService, logg))
			r.Delete("/delete/{id}", controllers.AdminProductDelete(p.ProductsService, logg))
		})

		r.Get("/{id}", controllers.ProductGet(p.ProductsService, logg))
		r.Post("/{id}/reviews", controllers.ReviewAdd(p.ProductsService, logg))
		r.Put("/{id}/reviews/{reviewId}", controllers.ReviewUpdate(p.ProductsService, logg))
		r.Delete("/{id}/reviews/{reviewId}", controllers.ReviewDelete(p.ProductsService, logg))
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/all", controllers.CategoryListAll(p.CategoryService, logg))
		r.With(auth, adminOnly).Post("/add", controllers.CategoryAdd(p.CategoryService, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(auth)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(p.CartService, logg))
			r.Post("/add", controllers.CartAdd(p.CartService, logg))
			r.Put("/update", controllers.CartUpdateQuantity(p.CartService, logg))
			r.Delete("/remove/{productId}", controllers.CartRemove(p.CartService, logg))
			r.Delete("/clear", controllers.CartClear(p.CartService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.OrderPlace(p.OrdersService, logg))
			r.Get("/", controllers.OrderList(p.OrdersService, logg))
			r.Put("/{id}/cancel", controllers.OrderCancel(p.OrdersService, logg))
			r.Delete("/{id}", controllers.OrderDelete(p.OrdersService, logg))
		})

		r.Route("/admin/orders", func(r chi.Router) {
			r.Use(adminOnly)
			r.Get("/summary", controllers.AdminOrderSummary(p.OrdersService, logg))
			// The client mounts admin order paths under a second /admin segment.
			r.Get("/admin/all", controllers.AdminOrderListAll(p.OrdersService, logg))
			r.Put("/admin/{id}/cancel", controllers.AdminOrderCancel(p.OrdersService, logg))
			r.Put("/admin/{id}/status", controllers.AdminOrderSetStatus(p.OrdersService, logg))
		})

		r.Route("/user", func(r chi.Router) {
			r.Get("/me", controllers.Me(p.UsersService, logg))
			r.Post("/address", controllers.AddressAdd(p.UsersService, logg))
			r.Put("/address/{id}", controllers.AddressUpdate(p.UsersService, logg))
			r.Delete("/address/{id}", controllers.AddressDelete(p.UsersService, logg))
		})
	})

	return r
}
