package main

import (
	"context"
	"fmt"

	"countyconnect/internal/db"
	"countyconnect/internal/seed"
	"countyconnect/internal/store"

	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the database with towns and demo data",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "listings",
			Usage: "Also create demo listings",
		},
		&cli.StringSliceFlag{
			Name:  "admin",
			Usage: "User ID (Cognito sub) to grant the admin role, may be repeated",
		},
	},
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logger := newLogger(cfg)

		ctx := context.Background()

		// Connect to database
		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		logger.Info("connected to database")

		townRepo := store.NewTownRepository(pool)
		userRepo := store.NewUserRepository(pool)
		listingRepo := store.NewListingRepository(pool)

		summary, err := seed.Run(ctx, townRepo, userRepo, listingRepo, c.Bool("listings"))
		if err != nil {
			return fmt.Errorf("failed to seed: %w", err)
		}

		for _, userID := range c.StringSlice("admin") {
			if err := seed.PromoteAdmin(ctx, userRepo, userID); err != nil {
				return err
			}
			logger.WithField("user_id", userID).Info("granted admin role")
		}

		logger.WithField("towns", summary.Towns).
			WithField("users", summary.Users).
			WithField("listings", summary.Listings).
			Info("seed complete")

		return nil
	},
}
