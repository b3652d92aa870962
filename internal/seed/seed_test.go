package seed

import (
	"context"
	"testing"
	"time"

	"countyconnect/internal/expiry"
	"countyconnect/internal/lifecycle"
	"countyconnect/internal/store/memory"
	"countyconnect/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunIsRepeatable(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()

	summary, err := Run(ctx, mem, mem, mem, true)
	require.NoError(t, err)
	assert.Equal(t, len(Towns), summary.Towns)
	assert.Equal(t, len(fakeUsers), summary.Users)
	assert.Equal(t, len(fakeListings), summary.Listings)

	summary, err = Run(ctx, mem, mem, mem, true)
	require.NoError(t, err)
	assert.Zero(t, summary.Users)
	assert.Zero(t, summary.Listings)

	towns, err := mem.AllTowns(ctx)
	require.NoError(t, err)
	assert.Len(t, towns, len(Towns))
}

func TestSeedTownsHaveUniqueSlugsAndIDs(t *testing.T) {
	ids := map[string]bool{}
	slugs := map[string]bool{}
	for _, town := range Towns {
		assert.Len(t, town.ID, 32)
		assert.False(t, ids[town.ID], town.ID)
		assert.False(t, slugs[town.Slug], town.Slug)
		ids[town.ID] = true
		slugs[town.Slug] = true
	}
}

func TestFakeListingsArePublic(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	clock := &expiry.Calculator{Now: func() time.Time { return now }}

	for _, fake := range fakeListings {
		listing := fakeListing(fake, clock)
		assert.Equal(t, lifecycle.ForKind(fake.Kind).Visible(), listing.Status, fake.Title)

		if fake.Kind.Ephemeral() {
			require.NotNil(t, listing.ExpiresAt, fake.Title)
			assert.Equal(t, now.AddDate(0, 0, expiry.DefaultDays), *listing.ExpiresAt)
		} else {
			assert.Nil(t, listing.ExpiresAt, fake.Title)
		}

		if fake.Town < 0 {
			assert.Nil(t, listing.TownID, fake.Title)
		} else {
			assert.Equal(t, Towns[fake.Town].Name, *listing.Town)
		}

		if fake.Kind.Slugged() {
			assert.NotNil(t, listing.Slug, fake.Title)
		}
	}
}

func TestPromoteAdmin(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()

	_, err := mem.UpsertIdentity(ctx, "carol", "carol@example.com")
	require.NoError(t, err)

	require.NoError(t, PromoteAdmin(ctx, mem, "carol"))
	require.NoError(t, PromoteAdmin(ctx, mem, "dave"))

	carol, err := mem.User(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, types.UserRoleAdmin, carol.Role)
	assert.Equal(t, "carol@example.com", *carol.Email)

	dave, err := mem.User(ctx, "dave")
	require.NoError(t, err)
	assert.True(t, dave.IsAdmin())
}
