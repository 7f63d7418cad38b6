package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/ellavondegurechaff/gohye-trades/backend/config"
	"github.com/ellavondegurechaff/gohye-trades/backend/handlers"
	"github.com/ellavondegurechaff/gohye-trades/backend/middleware"
)

const shutdownTimeout = 15 * time.Second

// Server is the trade HTTP API
type Server struct {
	app *fiber.App
	cfg config.WebConfig
}

// NewServer builds the fiber app and its routes
func NewServer(webApp *handlers.WebApp, cfg config.WebConfig) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "GoHYE Trades API",
		ServerHeader:          "GoHYE-Trades",
		ErrorHandler:          middleware.ErrorHandler,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(middleware.SecurityHeaders())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization,Cookie",
		AllowCredentials: true,
	}))
	app.Use(middleware.LoggingMiddleware())

	s := &Server{app: app, cfg: cfg}
	s.setupRoutes(webApp)
	return s
}

// App exposes the fiber app for tests
func (s *Server) App() *fiber.App {
	return s.app
}

// Run serves until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	address := s.cfg.Address()
	slog.Info("Starting trade API server",
		slog.String("type", "http"),
		slog.String("address", address))

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listen(address)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down trade API server...", slog.String("type", "http"))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func (s *Server) setupRoutes(webApp *handlers.WebApp) {
	s.app.Get("/health", handlers.HealthCheck(webApp))

	api := s.app.Group("/api", middleware.AuthRequired(webApp))

	trades := api.Group("/trades")
	if s.cfg.ProposeLimit > 0 {
		trades.Post("/", middleware.CallerRateLimit(s.cfg.ProposeLimit, s.cfg.ProposeWindow.Std()), handlers.TradesPropose(webApp))
	} else {
		trades.Post("/", handlers.TradesPropose(webApp))
	}
	trades.Get("/", handlers.TradesList(webApp))
	trades.Get("/pending", handlers.TradesPending(webApp))
	trades.Get("/:id", handlers.TradesDetail(webApp))
	trades.Patch("/:id/respond", handlers.TradesRespond(webApp))
	trades.Patch("/:id/cancel", handlers.TradesCancel(webApp))

	inbox := api.Group("/notifications")
	inbox.Get("/", handlers.NotificationsList(webApp))
	inbox.Get("/unread-count", handlers.NotificationsUnreadCount(webApp))
	inbox.Patch("/read-all", handlers.NotificationsMarkAllRead(webApp))
	inbox.Get("/:id", handlers.NotificationsDetail(webApp))
	inbox.Patch("/:id/read", handlers.NotificationsMarkRead(webApp))
	inbox.Delete("/:id", handlers.NotificationsDelete(webApp))

	// 404 handler for unmatched routes
	s.app.Use(func(c *fiber.Ctx) error {
		slog.Warn("No route matched for request",
			slog.String("type", "http"),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("ip", c.IP()),
		)
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested endpoint does not exist",
		})
	})
}
