package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ellavondegurechaff/gohye-trades/backend"
	"github.com/ellavondegurechaff/gohye-trades/backend/handlers"
	webservices "github.com/ellavondegurechaff/gohye-trades/backend/services"
	"github.com/ellavondegurechaff/gohye-trades/internal/config"
	"github.com/ellavondegurechaff/gohye-trades/internal/domain/notifications"
	"github.com/ellavondegurechaff/gohye-trades/internal/domain/trades"
	"github.com/ellavondegurechaff/gohye-trades/internal/gateways/database"
	"github.com/ellavondegurechaff/gohye-trades/internal/gateways/database/repositories"
	"github.com/ellavondegurechaff/gohye-trades/internal/gateways/discord"
	"github.com/ellavondegurechaff/gohye-trades/internal/telemetry"
)

const (
	startupTimeout = 30 * time.Second
	drainTimeout   = 15 * time.Second
)

var serveCMD = &cobra.Command{
	Use:   "serve",
	Short: "run the trade HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := bootstrap()
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCMD)
}

func serve(ctx context.Context, cfg *config.Config) error {
	slog.Info("Starting GoHYE trade service",
		slog.String("type", "sys"),
		slog.String("version", version),
		slog.String("commit", commit))

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Otel)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			slog.Warn("Trace flush failed", slog.String("type", "sys"), slog.String("error", err.Error()))
		}
	}()

	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	db, err := connect(startCtx, cfg)
	cancel()
	if err != nil {
		return err
	}
	defer db.Close()
	slog.Info("Database connected successfully",
		slog.String("type", "db"),
		slog.String("driver", cfg.DB.Driver))

	dispatcher := newDispatcher(cfg, db)
	defer func() {
		drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
		defer cancel()
		if err := dispatcher.Close(drainCtx); err != nil {
			slog.Warn("Notification drain incomplete", slog.String("type", "sys"), slog.String("error", err.Error()))
		}
	}()

	engine, err := newEngine(cfg, db, dispatcher)
	if err != nil {
		return err
	}

	webApp := &handlers.WebApp{
		Trades:         engine,
		Inbox:          notifications.NewInbox(repositories.NewNotificationRepository(db.BunDB())),
		DB:             db,
		SessionService: webservices.NewSessionService(cfg.Web.SessionKey),
		Version:        version,
		Commit:         commit,
	}

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := backend.NewServer(webApp, cfg.Web).Run(runCtx); err != nil {
		return err
	}

	slog.Info("Trade service shutdown complete", slog.String("type", "sys"))
	return nil
}

func newDispatcher(cfg *config.Config, db *database.DB) *notifications.Dispatcher {
	var sinks []notifications.Sink
	if cfg.Notifications.Persist {
		sinks = append(sinks, repositories.NewNotificationRepository(db.BunDB()))
	}
	if cfg.Discord.Enabled {
		sinks = append(sinks, discord.NewDMNotifier(cfg.Discord.Token))
	}

	slog.Info("Notification dispatcher ready",
		slog.String("type", "sys"),
		slog.Int("sinks", len(sinks)),
		slog.Bool("async", cfg.Notifications.Async))

	return notifications.NewDispatcher(notifications.DispatcherConfig{
		Async:           cfg.Notifications.Async,
		MaxInFlight:     cfg.Notifications.MaxInFlight,
		DeliveryTimeout: cfg.Notifications.DeliveryTimeout.Std(),
	}, sinks...)
}

func newEngine(cfg *config.Config, db *database.DB, notifier trades.Notifier) (*trades.Service, error) {
	isolation, err := cfg.Trades.IsolationLevel()
	if err != nil {
		return nil, err
	}

	uow := repositories.NewUnitOfWork(db, isolation, cfg.Trades.TxTimeout.Std())
	return trades.NewService(uow, repositories.NewTradeRepository(db.BunDB()), notifier,
		trades.WithCacheSize(cfg.Trades.CacheSize),
		trades.WithLogger(slog.Default()),
	)
}
