package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ellavondegurechaff/gohye-trades/internal/logger"
)

var migrateCMD = &cobra.Command{
	Use:   "migrate",
	Short: "create the trade tables and indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := bootstrap()
		if err != nil {
			return err
		}

		db, err := connect(cmd.Context(), cfg)
		if err != nil {
			logger.LogError("Failed to initialize schema", err)
			return err
		}
		defer db.Close()

		logger.LogSystem("Schema initialized",
			"driver", cfg.DB.Driver,
			"database", cfg.DB.Database)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCMD)
}
