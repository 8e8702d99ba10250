package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/joho/godotenv"

	"github.com/oticalume/otica-crm/internal/apperr"
	"github.com/oticalume/otica-crm/internal/config"
	"github.com/oticalume/otica-crm/internal/handlers"
	"github.com/oticalume/otica-crm/internal/identity"
	"github.com/oticalume/otica-crm/internal/logging"
	"github.com/oticalume/otica-crm/internal/middleware"
	"github.com/oticalume/otica-crm/internal/routes"
	"github.com/oticalume/otica-crm/internal/services"
	"github.com/oticalume/otica-crm/internal/sheets"
	"github.com/oticalume/otica-crm/internal/storage"
)

func main() {
	_ = godotenv.Load()

	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	// User roster
	roster := identity.DefaultRegistry()
	if cfg.UsersConfigPath != "" {
		loaded, err := identity.LoadFromFile(cfg.UsersConfigPath)
		if err != nil {
			slog.Error("failed to load user roster", "path", cfg.UsersConfigPath, "error", err)
			os.Exit(1)
		}
		roster = loaded
	}
	slog.Info("user roster loaded", "users", len(roster.All()))

	// Per-user store factory; open the default store eagerly so a broken
	// storage configuration fails at startup, not on the first request.
	stores := storage.NewFactory(cfg)
	if err := stores.Ping(); err != nil {
		slog.Error("storage unavailable", "driver", cfg.StorageDriver, "error", err)
		os.Exit(1)
	}

	// Audit log handler (WARN+ async batch)
	fileHandler := logging.NewFileHandler(cfg.AuditLogPath)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		fileHandler,
	)))

	// Services
	clientService := services.NewClientService(stores, roster)
	contactService := services.NewContactService(stores, roster)
	eventService := services.NewEventService(stores, roster)
	exporter := sheets.NewExporter(cfg)

	// Handlers
	healthHandler := handlers.NewHealthHandler(stores, roster)
	userHandler := handlers.NewUserHandler(roster)
	clientHandler := handlers.NewClientHandler(clientService)
	contactHandler := handlers.NewContactHandler(contactService)
	eventHandler := handlers.NewEventHandler(eventService)
	sheetsHandler := handlers.NewSheetsHandler(exporter, clientService)

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         dsn,
			Environment: os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: apperr.Handler,
	})

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
	app.Use(middleware.Identity(roster, cfg))

	// Routes
	routes.Setup(app, healthHandler, userHandler, clientHandler, contactHandler, eventHandler, sheetsHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "driver", cfg.StorageDriver)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	fileHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("server stopped")
}
