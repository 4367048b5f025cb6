package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/akshalkotian/doctorappointment/internal/booking"
	"github.com/akshalkotian/doctorappointment/internal/config"
	"github.com/akshalkotian/doctorappointment/internal/database"
	"github.com/akshalkotian/doctorappointment/internal/handlers"
	"github.com/akshalkotian/doctorappointment/internal/logging"
	"github.com/akshalkotian/doctorappointment/internal/middleware"
	"github.com/akshalkotian/doctorappointment/internal/notify"
	"github.com/akshalkotian/doctorappointment/internal/routes"
	"github.com/akshalkotian/doctorappointment/internal/services"
	"github.com/akshalkotian/doctorappointment/internal/store"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}

	// Seed collections and users always live in the data directory
	st, err := store.Open(cfg.DataDir)
	if err != nil {
		slog.Error("failed to open data store", "dir", cfg.DataDir, "error", err)
		os.Exit(1)
	}

	// Ledger
	var (
		ledger       booking.Ledger
		pgLogHandler *logging.PGHandler
		cleanupDone  = make(chan struct{})
	)
	switch cfg.LedgerDriver {
	case config.LedgerPostgres:
		if cfg.DBPassword == "" {
			slog.Error("DB_PASSWORD environment variable is required")
			os.Exit(1)
		}
		if err := database.Connect(cfg); err != nil {
			slog.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		if err := database.MigrateSystemLogs(); err != nil {
			slog.Error("system log migration failed", "error", err)
			os.Exit(1)
		}
		sqlLedger := booking.NewSQLLedger(database.DB)
		if err := sqlLedger.Migrate(); err != nil {
			slog.Error("appointment migration failed", "error", err)
			os.Exit(1)
		}
		ledger = sqlLedger

		// PostgreSQL log handler (ERROR+ async batch)
		pgLogHandler = logging.NewPGHandler(database.DB)
		slog.SetDefault(slog.New(logging.NewMultiHandler(
			logging.NewStdoutHandler(os.Stdout),
			pgLogHandler,
		)))
		logging.StartCleanup(database.DB, cfg.LogRetentionDays, cleanupDone)
	case config.LedgerFile:
		locker, err := newLocker(cfg)
		if err != nil {
			slog.Error("lock backend unavailable", "driver", cfg.LockDriver, "error", err)
			os.Exit(1)
		}
		ledger = booking.NewGuard(st.Appointments, locker)
	default:
		slog.Error("unknown LEDGER_DRIVER", "driver", cfg.LedgerDriver)
		os.Exit(1)
	}
	slog.Info("ledger ready", "driver", cfg.LedgerDriver, "lock", cfg.LockDriver)

	// Services
	clock := services.ClockIn(cfg.Location())
	catalogService := services.NewCatalogService(st)
	authService := services.NewAuthService(store.NewUsers(st.Users), cfg)
	bookingService := services.NewBookingService(ledger, catalogService, clock, cfg.BookingWindowDays)
	gateway := services.NewMockGateway(cfg.PaymentSuccessRate, time.Now().UnixNano())
	paymentService := services.NewPaymentService(ledger, bookingService, gateway, notify.New(cfg), clock)
	adminService := services.NewAdminService(ledger, catalogService, clock)
	symptomService := services.NewSymptomService(catalogService)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	healthHandler := handlers.NewHealthHandler(ledger, cfg.LedgerDriver)
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	paymentHandler := handlers.NewPaymentHandler(paymentService, bookingService)
	symptomHandler := handlers.NewSymptomHandler(symptomService)
	adminHandler := handlers.NewAdminHandler(adminService)

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	// Routes
	routes.Setup(app, cfg, authHandler, healthHandler, catalogHandler, bookingHandler, paymentHandler, symptomHandler, adminHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	close(cleanupDone)
	if pgLogHandler != nil {
		pgLogHandler.Stop()
	}
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	if err := database.Close(); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("server stopped")
}

// newLocker picks the exclusive section guarding the file ledger. The
// process lock only serializes one server; run several against the same
// data directory with LOCK_DRIVER=redis.
func newLocker(cfg *config.Config) (booking.Locker, error) {
	if cfg.LockDriver != config.LockRedis {
		return booking.NewProcessLocker(), nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := booking.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, err
	}
	return booking.NewRedisLocker(client, cfg.LockTTL), nil
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
