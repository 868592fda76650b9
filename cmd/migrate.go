package cmd

import (
	"video-tracking-system/internal/database"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		defer rt.close()

		rt.log.Info("Running database migrations...")
		if err := database.Migrate(rt.db); err != nil {
			return err
		}
		rt.log.Info("Database migrations completed successfully")
		return nil
	},
}
