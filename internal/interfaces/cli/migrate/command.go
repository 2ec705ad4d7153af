// Package migrate runs schema migrations and exits.
package migrate

import (
	"fmt"

	"github.com/spf13/cobra"

	"marketplace/internal/infrastructure/config"
	"marketplace/internal/infrastructure/database"
	"marketplace/internal/infrastructure/persistence/migrations"
	"marketplace/internal/shared/logger"
)

// NewCommand returns the migrate subcommand.
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load("")
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := logger.Init(&cfg.Logger, false); err != nil {
				return fmt.Errorf("failed to init logger: %w", err)
			}
			if err := database.Init(&cfg.Database); err != nil {
				return fmt.Errorf("failed to init database: %w", err)
			}
			defer database.Close()

			return migrations.Run(database.Get(), logger.NewLogger())
		},
	}
}
