package main

import (
	"context"
	"fmt"

	"contestatii/internal/db"
	"contestatii/internal/seed"
	"contestatii/internal/store"

	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the database with a demo user and demo complaints",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "password",
			Usage:   "Password for the demo user",
			Value:   "contestatii-demo",
			EnvVars: []string{"SEED_PASSWORD"},
		},
	},
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger := newLogger(cfg)
		ctx := context.Background()

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		if err := db.Migrate(ctx, pool, logger); err != nil {
			return err
		}

		user, err := seed.SeedUser(ctx, store.NewUserRepository(pool), c.String("password"), logger)
		if err != nil {
			return err
		}

		seeded, err := seed.SeedComplaints(ctx, store.NewComplaintRepository(pool), user.ID, logger)
		if err != nil {
			return err
		}

		logger.WithField("complaints", seeded).Info("seed complete")

		return nil
	},
}
