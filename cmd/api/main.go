package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/shopsphere/shopsphere-backend/api/controllers"
	"github.com/shopsphere/shopsphere-backend/api/routes"
	"github.com/shopsphere/shopsphere-backend/internal/auth"
	"github.com/shopsphere/shopsphere-backend/internal/cart"
	"github.com/shopsphere/shopsphere-backend/internal/categories"
	"github.com/shopsphere/shopsphere-backend/internal/mailer"
	"github.com/shopsphere/shopsphere-backend/internal/orders"
	"github.com/shopsphere/shopsphere-backend/internal/products"
	"github.com/shopsphere/shopsphere-backend/internal/users"
	"github.com/shopsphere/shopsphere-backend/pkg/auth/session"
	"github.com/shopsphere/shopsphere-backend/pkg/config"
	"github.com/shopsphere/shopsphere-backend/pkg/db"
	"github.com/shopsphere/shopsphere-backend/pkg/logger"
	"github.com/shopsphere/shopsphere-backend/pkg/metrics"
	"github.com/shopsphere/shopsphere-backend/pkg/migrate"
	"github.com/shopsphere/shopsphere-backend/pkg/redis"
	"github.com/shopsphere/shopsphere-backend/pkg/storage/gcs"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.Session)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	readiness := map[string]controllers.Pinger{
		"database": dbClient,
		"redis":    redisClient,
	}

	// Blob storage is optional in local setups; catalog image uploads fail
	// with a dependency error until a bucket is configured.
	var uploader products.ImageUploader
	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Warn(context.Background(), "gcs not configured; product image uploads disabled")
	} else {
		uploader = gcsClient
		readiness["gcs"] = gcsClient
	}

	// Email is optional in local setups; OTP codes are stored but not sent.
	var mailSender mailer.Sender
	if mailClient, err := mailer.NewClient(cfg.Sendgrid, logg); err != nil {
		logg.Warn(context.Background(), "sendgrid not configured; otp email disabled")
	} else {
		mailSender = mailClient
	}

	usersRepo := users.NewRepository(dbClient.DB())
	productsRepo := products.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		Sessions:       sessionManager,
		Mailer:         mailSender,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	usersService, err := users.NewService(usersRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	productsService, err := products.NewService(productsRepo, uploader)
	if err != nil {
		logg.Error(context.Background(), "failed to create products service", err)
		os.Exit(1)
	}

	var categoryUploader categories.ImageUploader
	if gcsClient != nil {
		categoryUploader = gcsClient
	}
	categoryService, err := categories.NewService(categories.NewRepository(dbClient.DB()), categoryUploader)
	if err != nil {
		logg.Error(context.Background(), "failed to create category service", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(cart.NewRepository(dbClient.DB()), productsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(orders.ServiceParams{
		Repo:  orders.NewRepository(dbClient.DB()),
		Users: usersRepo,
		Logg:  logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	httpMetrics := metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:          cfg,
			Logger:          logg,
			Redis:           redisClient,
			Sessions:        sessionManager,
			HTTPMetrics:     httpMetrics,
			Readiness:       readiness,
			AuthService:     authService,
			UsersService:    usersService,
			ProductsService: productsService,
			CategoryService: categoryService,
			CartService:     cartService,
			OrdersService:   ordersService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
