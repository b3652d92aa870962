package seed

import (
	"context"
	"fmt"

	"countyconnect/pkg/types"
)

type TownUpserter interface {
	UpsertTown(ctx context.Context, town *types.Town) error
}

// Towns is the source of truth for the county's town list. IDs are fixed so
// reseeding never orphans listings that reference them.
//
// To generate new IDs: `go run ./cmd/countyconnect nanoid`
var Towns = []types.Town{
	{ID: "Wvlouhqw8kgh7KSKb4OGExuTv2wGYR0f", Name: "Millbrook", Slug: "millbrook"},
	{ID: "cLdpI2ji5pqBpBC63iwn2iKfY0JVbOdn", Name: "Pine Ridge", Slug: "pine-ridge"},
	{ID: "BbaS82pHCcm3BuNM2KJUg0pHo5JZO5VG", Name: "Cedar Falls", Slug: "cedar-falls"},
	{ID: "Jv7fPtpEiJUmPT92J13lsXZVSnNJw58A", Name: "Harlow Springs", Slug: "harlow-springs"},
	{ID: "jYhXwYSKp0hhv9YjzFl5t823cTdx380z", Name: "Oak Hollow", Slug: "oak-hollow"},
	{ID: "FsmZvbDlECSS0SrzOecuxOtn8eZ9VPsa", Name: "West Fork", Slug: "west-fork"},
}

func SeedTowns(ctx context.Context, repo TownUpserter) error {
	for _, town := range Towns {
		t := town
		if err := repo.UpsertTown(ctx, &t); err != nil {
			return fmt.Errorf("failed to upsert town %s: %w", town.Slug, err)
		}
	}
	return nil
}
