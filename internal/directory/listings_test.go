package directory

import (
	"context"
	"strings"
	"testing"

	"countyconnect/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBulletinPostExpires(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	post := f.create(t, f.alice, types.ListingKindBulletinPost, types.ListingInput{
		Title:         str("Free couch"),
		TownID:        str("T1"),
		ExpiresInDays: days("7"),
	})
	require.NotNil(t, post.ExpiresAt)
	assert.Equal(t, t0.AddDate(0, 0, 7), *post.ExpiresAt)
	assert.Equal(t, types.ListingStatusPending, post.Status)

	f.transition(t, f.admin, post, types.ActionApprove)

	page, err := f.svc.LoadPosts(ctx, nil, types.ListingOptions{}, nil)
	require.NoError(t, err)
	require.Len(t, page.Listings, 1)
	assert.Equal(t, 7, *page.Listings[0].DaysRemaining)
	assert.False(t, page.Listings[0].Expired)

	f.now = t0.AddDate(0, 0, 8)

	page, err = f.svc.LoadPosts(ctx, nil, types.ListingOptions{}, nil)
	require.NoError(t, err)
	assert.Empty(t, page.Listings)

	stored, err := f.mem.Listing(ctx, post.ID)
	require.NoError(t, err)
	assert.True(t, f.svc.clock.IsExpired(stored.ExpiresAt))

	_, err = f.svc.Listing(ctx, nil, types.ListingKindBulletinPost, post.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)

	owned, err := f.svc.LoadOwned(ctx, f.alice, types.ListingKindBulletinPost)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.True(t, owned[0].Expired)
}

func TestExpiryInputIsValidated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, n := range []string{"0", "366", "-1", "1.5"} {
		_, err := f.svc.CreateListing(ctx, f.alice, types.ListingKindBulletinPost, types.ListingInput{
			Title:         str("Garage sale"),
			ExpiresInDays: days(n),
		})
		assert.ErrorIs(t, err, types.ErrValidation, n)
	}

	post := f.create(t, f.alice, types.ListingKindLostFound, types.ListingInput{Title: str("Lost cat")})
	assert.Equal(t, t0.AddDate(0, 0, 30), *post.ExpiresAt)

	_, err := f.svc.CreateListing(ctx, f.alice, types.ListingKindChurch, types.ListingInput{
		Title:         str("St. Mark's"),
		ExpiresInDays: days("7"),
	})
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestEditRestartsExpiry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	post := f.create(t, f.alice, types.ListingKindBulletinPost, types.ListingInput{Title: str("Piano"), ExpiresInDays: days("3")})

	f.now = t0.AddDate(0, 0, 2)
	updated, err := f.svc.UpdateListing(ctx, f.alice, post.Kind, post.ID, types.ListingInput{ExpiresInDays: days("3")})
	require.NoError(t, err)
	assert.Equal(t, t0.AddDate(0, 0, 5), *updated.ExpiresAt)
	assert.Equal(t, "Piano", updated.Title)
}

func TestStoreSlugIsUniquePerKind(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.create(t, f.alice, types.ListingKindStore, types.ListingInput{Title: str("Joe's Diner"), Slug: str("joes-diner")})
	assert.Equal(t, "joes-diner", *first.Slug)
	assert.Equal(t, types.ListingStatusDraft, first.Status)

	_, err := f.svc.CreateListing(ctx, f.bob, types.ListingKindStore, types.ListingInput{Title: str("Joe's Other Diner"), Slug: str("joes-diner")})
	assert.ErrorIs(t, err, types.ErrConflict)

	stores, err := f.mem.List(ctx, types.ListingKindStore, "")
	require.NoError(t, err)
	assert.Len(t, stores, 1)

	// same slug, different kind
	f.create(t, f.bob, types.ListingKindServicePage, types.ListingInput{Title: str("Joe's Diner"), Slug: str("joes-diner")})

	other := f.create(t, f.bob, types.ListingKindStore, types.ListingInput{Title: str("Bob's Bikes")})
	assert.Equal(t, "bobs-bikes", *other.Slug)

	_, err = f.svc.UpdateListing(ctx, f.bob, other.Kind, other.ID, types.ListingInput{Slug: str("joes-diner")})
	assert.ErrorIs(t, err, types.ErrConflict)

	_, err = f.svc.UpdateListing(ctx, f.alice, first.Kind, first.ID, types.ListingInput{Slug: str("joes-diner")})
	assert.NoError(t, err)
}

func TestLongStoreTitleGetsShortenedSlug(t *testing.T) {
	f := newFixture(t)

	title := strings.TrimSpace(strings.Repeat("County Line Hardware ", 7))
	require.Greater(t, len(title), 120)
	require.LessOrEqual(t, len(title), 200)

	store := f.create(t, f.alice, types.ListingKindStore, types.ListingInput{Title: str(title)})
	require.NotNil(t, store.Slug)
	assert.LessOrEqual(t, len(*store.Slug), 120)
	assert.True(t, strings.HasPrefix(*store.Slug, "county-line-hardware-county"))
	assert.False(t, strings.HasSuffix(*store.Slug, "-"))
	assert.Equal(t, title, store.Title)
}

func TestSlugMustBeCanonical(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateListing(context.Background(), f.alice, types.ListingKindStore, types.ListingInput{Title: str("Joe's"), Slug: str("Joes Diner")})
	assert.ErrorIs(t, err, types.ErrValidation)

	_, err = f.svc.CreateListing(context.Background(), f.alice, types.ListingKindStore, types.ListingInput{Title: str("!!!")})
	assert.ErrorIs(t, err, types.ErrValidation)

	// non-slugged kinds don't need a slug
	church := f.create(t, f.alice, types.ListingKindChurch, types.ListingInput{Title: str("!!!")})
	assert.Nil(t, church.Slug)
}

func TestTownReconciliation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	byID := f.create(t, f.alice, types.ListingKindChurch, types.ListingInput{Title: str("First Baptist"), TownID: str("T2"), Town: str("Millbrook")})
	assert.Equal(t, "T2", *byID.TownID)
	assert.Equal(t, "Pine Ridge", *byID.Town)

	byName := f.create(t, f.alice, types.ListingKindChurch, types.ListingInput{Title: str("Grace"), Town: str("  millbrook ")})
	assert.Equal(t, "T1", *byName.TownID)
	assert.Equal(t, "Millbrook", *byName.Town)

	countyWide := f.create(t, f.alice, types.ListingKindChurch, types.ListingInput{Title: str("Circuit Riders")})
	assert.Nil(t, countyWide.TownID)
	assert.Nil(t, countyWide.Town)

	_, err := f.svc.CreateListing(ctx, f.alice, types.ListingKindChurch, types.ListingInput{Title: str("Ghost"), TownID: str("T9")})
	assert.ErrorIs(t, err, types.ErrValidation)

	_, err = f.svc.CreateListing(ctx, f.alice, types.ListingKindChurch, types.ListingInput{Title: str("Ghost"), Town: str("Atlantis")})
	assert.ErrorIs(t, err, types.ErrValidation)

	cleared, err := f.svc.UpdateListing(ctx, f.alice, byID.Kind, byID.ID, types.ListingInput{TownID: str("")})
	require.NoError(t, err)
	assert.Nil(t, cleared.TownID)
	assert.Nil(t, cleared.Town)
}

func TestLoadPublicFiltersByLocationAndSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.create(t, f.admin, types.ListingKindSportsTeam, types.ListingInput{Title: str("Millbrook Marlins"), TownID: str("T1"), Category: str("swim")})
	f.create(t, f.admin, types.ListingKindSportsTeam, types.ListingInput{Title: str("Pine Ridge Pirates"), TownID: str("T2"), Category: str("baseball")})
	f.create(t, f.admin, types.ListingKindSportsTeam, types.ListingInput{Title: str("County Rovers"), Category: str("soccer")})
	pending := f.create(t, f.bob, types.ListingKindSportsTeam, types.ListingInput{Title: str("Unreviewed United")})
	assert.Equal(t, types.ListingStatusPending, pending.Status)

	page, err := f.svc.LoadPublic(ctx, nil, types.ListingKindSportsTeam, types.ListingOptions{Sort: "title"}, nil)
	require.NoError(t, err)
	assert.Equal(t, types.LocationModeAll, page.Filter.Mode)
	assert.Equal(t, []string{"County Rovers", "Millbrook Marlins", "Pine Ridge Pirates"}, titles(page.Listings))
	assert.Len(t, page.Towns, 2)

	// alice defaults to her own town plus county-wide entries
	page, err = f.svc.LoadPublic(ctx, f.alice, types.ListingKindSportsTeam, types.ListingOptions{Sort: "title"}, nil)
	require.NoError(t, err)
	assert.Equal(t, types.LocationModeMine, page.Filter.Mode)
	require.NotNil(t, page.UserTown)
	assert.Equal(t, "T1", page.UserTown.ID)
	assert.Equal(t, []string{"County Rovers", "Millbrook Marlins"}, titles(page.Listings))

	page, err = f.svc.LoadPublic(ctx, f.alice, types.ListingKindSportsTeam, types.ListingOptions{Mode: "custom", TownIDs: []string{"T2"}, Sort: "title"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"County Rovers", "Pine Ridge Pirates"}, titles(page.Listings))

	saved := types.LocationFilterState{Mode: types.LocationModeAll}
	page, err = f.svc.LoadPublic(ctx, f.alice, types.ListingKindSportsTeam, types.ListingOptions{Search: "PIRATES"}, &saved)
	require.NoError(t, err)
	assert.Equal(t, []string{"Pine Ridge Pirates"}, titles(page.Listings))

	page, err = f.svc.LoadPublic(ctx, nil, types.ListingKindSportsTeam, types.ListingOptions{Category: "soccer"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"County Rovers"}, titles(page.Listings))

	_, err = f.svc.LoadPublic(ctx, nil, types.ListingKindSportsTeam, types.ListingOptions{Mode: "nearby"}, nil)
	assert.ErrorIs(t, err, types.ErrValidation)

	_, err = f.svc.LoadPublic(ctx, nil, types.ListingKindSportsTeam, types.ListingOptions{Sort: "owner_id"}, nil)
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestListingVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	l := f.create(t, f.alice, types.ListingKindJob, types.ListingInput{Title: str("Line cook")})

	_, err := f.svc.Listing(ctx, nil, l.Kind, l.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = f.svc.Listing(ctx, f.bob, l.Kind, l.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = f.svc.Listing(ctx, f.alice, l.Kind, l.ID)
	assert.NoError(t, err)
	_, err = f.svc.Listing(ctx, f.admin, l.Kind, l.ID)
	assert.NoError(t, err)

	_, err = f.svc.Listing(ctx, f.admin, types.ListingKindEvent, l.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)

	f.transition(t, f.admin, l, types.ActionApprove)
	_, err = f.svc.Listing(ctx, nil, l.Kind, l.ID)
	assert.NoError(t, err)
}

func TestUpdateAndDeletePermissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	l := f.create(t, f.alice, types.ListingKindEvent, types.ListingInput{Title: str("Fair")})

	_, err := f.svc.UpdateListing(ctx, nil, l.Kind, l.ID, types.ListingInput{Title: str("x")})
	assert.ErrorIs(t, err, types.ErrNotAuthenticated)

	_, err = f.svc.UpdateListing(ctx, f.bob, l.Kind, l.ID, types.ListingInput{Title: str("x")})
	assert.ErrorIs(t, err, types.ErrPermissionDenied)

	_, err = f.svc.UpdateListing(ctx, f.alice, l.Kind, l.ID, types.ListingInput{Title: str("  ")})
	assert.ErrorIs(t, err, types.ErrValidation)

	_, err = f.svc.UpdateListing(ctx, f.alice, l.Kind, l.ID, types.ListingInput{ImageURL: str("not a url")})
	assert.ErrorIs(t, err, types.ErrValidation)

	_, err = f.svc.UpdateListing(ctx, f.alice, l.Kind, l.ID, types.ListingInput{Attributes: map[string]any{
		"starts_at": "2026-06-01T18:00:00Z",
		"ends_at":   "2026-06-01T17:00:00Z",
	}})
	assert.ErrorIs(t, err, types.ErrValidation)

	updated, err := f.svc.UpdateListing(ctx, f.admin, l.Kind, l.ID, types.ListingInput{Title: str("County Fair"), Description: str("")})
	require.NoError(t, err)
	assert.Equal(t, "County Fair", updated.Title)
	assert.Equal(t, types.ListingStatusPending, updated.Status)

	assert.ErrorIs(t, f.svc.DeleteListing(ctx, f.bob, l.Kind, l.ID), types.ErrPermissionDenied)
	require.NoError(t, f.svc.DeleteListing(ctx, f.alice, l.Kind, l.ID))
	assert.ErrorIs(t, f.svc.DeleteListing(ctx, f.alice, l.Kind, l.ID), types.ErrNotFound)
}

func TestCreateRequiresUserAndTitle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateListing(ctx, nil, types.ListingKindChurch, types.ListingInput{Title: str("x")})
	assert.ErrorIs(t, err, types.ErrNotAuthenticated)

	_, err = f.svc.CreateListing(ctx, f.alice, types.ListingKindChurch, types.ListingInput{})
	var verr *types.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "title")

	admin := f.create(t, f.admin, types.ListingKindChurch, types.ListingInput{Title: str("Cathedral")})
	assert.Equal(t, types.ListingStatusActive, admin.Status)
	assert.Nil(t, admin.OwnerID)
	assert.Equal(t, "admin", admin.CreatedBy)

	member := f.create(t, f.alice, types.ListingKindChurch, types.ListingInput{Title: str("Chapel")})
	require.NotNil(t, member.OwnerID)
	assert.Equal(t, "alice", *member.OwnerID)
}
