package main

import (
	"context"
	"fmt"

	"countyconnect/internal/db"

	"github.com/urfave/cli/v2"
)

var migrateCommand = &cli.Command{
	Name:  "migrate",
	Usage: "Create or update the database schema",
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

		if err := db.Migrate(ctx, pool, cfg.DatabaseSchema); err != nil {
			return err
		}

		logger.WithField("schema", cfg.DatabaseSchema).Info("schema is up to date")
		return nil
	},
}
