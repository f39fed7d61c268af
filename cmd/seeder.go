package cmd

import (
	"context"

	"github.com/frahmantamala/chathub/internal/seed"
	"github.com/frahmantamala/chathub/pkg/logger"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with demo tenants, users, models, templates, follow-up flows and knowledge sources.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		cfg, err := loadConfig(configDir)
		if err != nil {
			return err
		}
		log := logger.LoggerWrapper()

		conn, err := initDB(cfg.Database, false)
		if err != nil {
			return err
		}
		defer conn.Close()

		fixtures, err := seed.LoadFixtures()
		if err != nil {
			return err
		}
		seeder := seed.NewSeeder(conn.Gorm, fixtures, cfg.Security.BCryptCost, log)

		if clearData {
			if err := seeder.Clear(ctx); err != nil {
				return err
			}
			log.Info("existing data cleared")
		}

		res, err := seeder.Run(ctx)
		if err != nil {
			return err
		}
		for _, u := range fixtures.Users {
			log.Info("demo login", "email", u.Email, "role", u.Role)
		}
		log.Info("seeding finished", "users", res.Users, "models", res.Models)
		return nil
	},
}
