package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ellavondegurechaff/gohye-trades/internal/config"
	"github.com/ellavondegurechaff/gohye-trades/internal/gateways/database"
	"github.com/ellavondegurechaff/gohye-trades/internal/logger"
)

var (
	version = "dev"
	commit  = "unknown"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "gohye-trades",
	Short:         "Card trade negotiation and exchange service",
	Version:       fmt.Sprintf("%s (%s)", version, commit),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	addConfigFlag(rootCmd.PersistentFlags())
}

func addConfigFlag(fs *pflag.FlagSet) {
	fs.StringVarP(&configPath, "config", "c", "config.toml", "path to config, GOHYE_* variables override it")
}

// Execute runs the CLI and exits non-zero on failure
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		slog.Error("Command failed", slog.String("type", "sys"), slog.Any("error", err))
		os.Exit(1)
	}
}

// bootstrap loads the config and installs the logger
func bootstrap() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger.Setup(cfg.Log)
	return cfg, nil
}

// connect opens the configured database and makes sure the schema exists
func connect(ctx context.Context, cfg *config.Config) (*database.DB, error) {
	db, err := database.New(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if err := db.InitializeSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
