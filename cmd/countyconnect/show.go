package main

import (
	"context"
	"fmt"

	"countyconnect/internal/db"
	"countyconnect/internal/store"
	"countyconnect/pkg/types"

	"github.com/k0kubun/pp/v3"
	"github.com/urfave/cli/v2"
)

var showCommand = &cli.Command{
	Name:  "show",
	Usage: "Pretty print configuration and stored records",
	Subcommands: []*cli.Command{
		{
			Name:  "config",
			Usage: "Print the resolved configuration with secrets masked",
			Action: func(c *cli.Context) error {
				cfg, err := loadConfig(c)
				if err != nil {
					return err
				}
				_, err = pp.Println(maskConfig(*cfg))
				return err
			},
		},
		{
			Name:      "listing",
			Usage:     "Print a listing and its status history",
			ArgsUsage: "<listing id>",
			Action: func(c *cli.Context) error {
				if c.Args().Len() != 1 {
					return fmt.Errorf("expected exactly one listing id")
				}

				return withPool(c, func(ctx context.Context, repos repositories) error {
					listing, err := repos.listings.Listing(ctx, c.Args().First())
					if err != nil {
						return err
					}
					history, err := repos.transitions.TransitionsByListing(ctx, listing.ID)
					if err != nil {
						return err
					}

					pp.Println(listing)
					pp.Println(history)
					return nil
				})
			},
		},
		{
			Name:  "queue",
			Usage: "Print how many listings of each kind await moderation",
			Action: func(c *cli.Context) error {
				return withPool(c, func(ctx context.Context, repos repositories) error {
					counts, err := repos.listings.CountByStatus(ctx, types.ListingStatusPending)
					if err != nil {
						return err
					}
					pp.Println(counts)
					return nil
				})
			},
		},
	},
}

type repositories struct {
	listings    *store.ListingRepository
	transitions *store.TransitionRepository
}

func withPool(c *cli.Context, fn func(ctx context.Context, repos repositories) error) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	return fn(ctx, repositories{
		listings:    store.NewListingRepository(pool),
		transitions: store.NewTransitionRepository(pool),
	})
}

func maskConfig(c types.Config) types.Config {
	mask := func(v *string) {
		if *v != "" {
			*v = "********"
		}
	}
	mask(&c.DatabaseURL)
	mask(&c.CookieHashKey)
	mask(&c.CookieBlockKey)
	return c
}
