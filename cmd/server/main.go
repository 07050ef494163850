package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/dstrand/vitrine/internal"
	"github.com/dstrand/vitrine/internal/billing"
	"github.com/dstrand/vitrine/internal/checkout"
	"github.com/dstrand/vitrine/internal/commerce"
	"github.com/dstrand/vitrine/internal/handler/storefront"
	"github.com/dstrand/vitrine/internal/handler/vendor"
	"github.com/dstrand/vitrine/internal/middleware"
	"github.com/dstrand/vitrine/internal/postgres"
	"github.com/dstrand/vitrine/internal/router"
	"github.com/dstrand/vitrine/internal/routes"
	"github.com/dstrand/vitrine/internal/service"
	"github.com/dstrand/vitrine/internal/telemetry"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize Sentry error tracking
	sentryCleanup, err := telemetry.InitSentry(telemetry.SentryConfig{
		DSN:         cfg.Sentry.DSN,
		Enabled:     cfg.Sentry.Enabled,
		Environment: cfg.Sentry.Environment,
		Release:     cfg.Sentry.Release,
		SampleRate:  cfg.Sentry.SampleRate,
		Debug:       cfg.Sentry.Debug,
	}, logger)
	if err != nil {
		return fmt.Errorf("sentry initialization failed: %w", err)
	}
	defer sentryCleanup()

	// Initialize database/sql connection for migrations
	logger.Info("Connecting to database...")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	// Verify database connection
	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	logger.Info("Database connection established")

	// Run migrations
	logger.Info("Running database migrations...")
	if err := internal.RunMigrations(sqlDB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Initialize pgx connection pool for application
	pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	// Initialize commerce API client
	logger.Info("Initializing commerce API client...", "base_url", cfg.Commerce.BaseURL)
	commerceClient, err := commerce.NewHTTPClient(commerce.HTTPClientConfig{
		BaseURL: cfg.Commerce.BaseURL,
		Timeout: cfg.Commerce.Timeout,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize commerce client: %w", err)
	}

	// Initialize Stripe billing provider
	logger.Info("Initializing Stripe billing provider...")
	stripeConfig := billing.StripeConfig{
		APIKey:        cfg.Stripe.SecretKey,
		WebhookSecret: cfg.Stripe.WebhookSecret,
	}
	billingProvider, err := billing.NewStripeProvider(stripeConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize Stripe provider: %w", err)
	}
	logger.Info("Stripe billing provider initialized", "test_mode", stripeConfig.IsTestMode())

	// Initialize business metrics
	businessMetrics := telemetry.InitBusinessMetrics("vitrine")

	// Initialize services
	cartDebounce := time.Duration(cfg.Cart.DebounceMs) * time.Millisecond
	cartService := service.NewCartService(commerceClient, cartDebounce, logger, businessMetrics)
	productService := service.NewProductService(commerceClient)
	orderService := service.NewOrderService(commerceClient)
	vendorService := service.NewVendorService(commerceClient)
	wishlistService := service.NewWishlistService(commerceClient)

	// Initialize checkout flow with persistent sessions
	checkoutFlow := checkout.NewFlow(checkout.FlowConfig{
		Commerce: commerceClient,
		Billing:  billingProvider,
		Store:    postgres.NewCheckoutSessionStore(pool),
		Logger:   logger,
		Metrics:  businessMetrics,
	})
	logger.Info("Checkout flow initialized")

	// ==========================================================================
	// Build route dependencies
	// ==========================================================================

	storefrontDeps := routes.StorefrontDeps{
		ProductHandler:  storefront.NewProductHandler(productService, logger),
		CartHandler:     storefront.NewCartHandler(cartService, logger),
		CheckoutHandler: storefront.NewCheckoutHandler(checkoutFlow, cartService, logger),
		OrderHandler:    storefront.NewOrderHandler(orderService, logger),
		WishlistHandler: storefront.NewWishlistHandler(wishlistService, logger),
	}

	vendorDeps := routes.VendorDeps{
		ProductHandler: vendor.NewProductHandler(vendorService, logger),
		OrderHandler:   vendor.NewOrderHandler(vendorService, logger),
		ProfileHandler: vendor.NewProfileHandler(vendorService, logger),
	}

	// ==========================================================================
	// Initialize middleware
	// ==========================================================================

	// Initialize Prometheus metrics
	metrics := middleware.NewMetrics("vitrine")

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	r := router.New(
		router.Recovery(logger),
		middleware.RequestID,
		metrics.Middleware,
		telemetry.SentryMiddleware(),
		router.CORS(cfg.AllowedOrigins),
		middleware.MaxBodySize(middleware.DefaultMaxBodySize),
		middleware.Timeout(middleware.DefaultTimeout),
		router.Logger(logger),
	)

	// Metrics endpoint (no auth required, but should be protected in production via firewall)
	r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
		metrics.Handler().ServeHTTP(w, req)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Register route groups
	routes.RegisterStorefrontRoutes(r, storefrontDeps)
	routes.RegisterVendorRoutes(r, vendorDeps)

	// ==========================================================================
	// Start server
	// ==========================================================================

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("Starting storefront server", "address", addr)

	if err := http.ListenAndServe(addr, r); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
