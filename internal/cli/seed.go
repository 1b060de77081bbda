package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"brandquiz-bot/internal/config"
	"brandquiz-bot/internal/infra/postgres"
)

// NewSeedCmd loads the starter question bank into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed the question bank",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("postgres url not configured")
			}

			db := openBun(cfg.Postgres.URL)
			defer db.Close()

			if err := migrateBun(cmd.Context(), db); err != nil {
				return err
			}

			seeded, err := seedContent(cmd.Context(), postgres.NewContentStore(db))
			if err != nil {
				return err
			}
			fmt.Printf("seeded %d questions\n", seeded)
			return nil
		},
	}
}
