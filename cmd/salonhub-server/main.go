package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/salonhub/salonhub/internal/config"
	"github.com/salonhub/salonhub/internal/domain/admin"
	"github.com/salonhub/salonhub/internal/domain/booking"
	"github.com/salonhub/salonhub/internal/domain/catalog"
	"github.com/salonhub/salonhub/internal/domain/coupon"
	"github.com/salonhub/salonhub/internal/domain/review"
	"github.com/salonhub/salonhub/internal/domain/staff"
	"github.com/salonhub/salonhub/internal/domain/vendor"
	"github.com/salonhub/salonhub/internal/platform/auth"
	"github.com/salonhub/salonhub/internal/platform/cache"
	"github.com/salonhub/salonhub/internal/platform/db"
	"github.com/salonhub/salonhub/internal/platform/metrics"
	"github.com/salonhub/salonhub/internal/platform/middleware"
	"github.com/salonhub/salonhub/internal/platform/notification"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "salonhub-server",
		Short: "SalonHub booking marketplace API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.MigrationsDir
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.MigrationsDir
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Cache: Redis when configured, in-process otherwise.
	var store cache.Store
	if cfg.RedisURL != "" {
		redisStore, err := cache.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisStore.Close()
		store = redisStore
		logger.Info().Msg("connected to redis")
	} else {
		store = cache.NewMemoryStore()
		logger.Warn().Msg("REDIS_URL not set; using in-process availability cache")
	}

	// Metrics
	metrics.Register()

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.RequestTimeout(cfg.Timeout()))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Auth middleware
	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:   cfg.AuthIssuer,
			Audience: cfg.AuthAudience,
			JWKSURL:  cfg.AuthJWKSURL,
		}))
	}

	// API group
	apiV1 := e.Group("/api/v1")

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	// Health and metrics
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Notifications (log sender; swap for a real provider in production)
	templates := notification.NewTemplateEngine()
	sender := &notification.LogSender{Logger: logger}
	dispatcher := notification.NewDispatcher(templates, sender, sender, logger)

	// -- Domain wiring --

	runTx := func(ctx context.Context, fn func(ctx context.Context) error) error {
		return db.WithTx(ctx, pool, fn)
	}

	vendorSvc := vendor.NewService(vendor.NewRepoPG(pool))
	vendorHandler := vendor.NewHandler(vendorSvc)
	vendorHandler.RegisterRoutes(apiV1)

	// Handlers from other domains check vendor ownership through this hook.
	ownsVendor := func(c echo.Context, vendorID uuid.UUID) (bool, error) {
		v, err := vendorSvc.Get(c.Request().Context(), vendorID)
		if err != nil {
			return false, err
		}
		return v.OwnerID == auth.UserIDFromContext(c.Request().Context()), nil
	}

	catalogSvc := catalog.NewCatalogService(catalog.NewRepoPG(pool))
	catalogHandler := catalog.NewHandler(catalogSvc, catalog.OwnershipFunc(ownsVendor))
	catalogHandler.RegisterRoutes(apiV1)

	staffSvc := staff.NewService(staff.NewRepoPG(pool))
	staffHandler := staff.NewHandler(staffSvc, staff.OwnershipFunc(ownsVendor))
	staffHandler.RegisterRoutes(apiV1)

	couponSvc := coupon.NewService(coupon.NewRepoPG(pool))
	couponHandler := coupon.NewHandler(couponSvc, coupon.OwnershipFunc(ownsVendor))
	couponHandler.RegisterRoutes(apiV1)

	bookingSvc := booking.NewService(booking.ServiceOpts{
		Bookings: booking.NewRepoPG(pool),
		Vendors:  vendorSvc,
		Services: catalogSvc,
		Staff:    staffSvc,
		Coupons:  couponSvc,
		Cache:    store,
		Notify:   dispatcher,
		RunTx:    runTx,
		GridMin:  cfg.SlotGridMin,
		CacheTTL: cfg.AvailabilityTTL(),
	})
	bookingHandler := booking.NewHandler(bookingSvc, booking.OwnershipFunc(ownsVendor))
	bookingHandler.RegisterRoutes(apiV1)

	reviewSvc := review.NewService(review.NewRepoPG(pool), bookingSvc, runTx)
	reviewHandler := review.NewHandler(reviewSvc)
	reviewHandler.RegisterRoutes(apiV1)

	adminHandler := admin.NewHandler(vendorSvc, admin.NewAnalytics(pool), dispatcher)
	adminHandler.RegisterRoutes(apiV1)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
