package main

import (
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := openStore(cmd.Context(), cfg.Storage, logger)
		if err != nil {
			return err
		}
		logger.Info("Migrations applied", "driver", cfg.Storage.Driver)
		return store.Close()
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
