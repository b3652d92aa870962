package seed

import (
	"context"
	"errors"
	"fmt"

	"countyconnect/internal/expiry"
	"countyconnect/internal/lifecycle"
	"countyconnect/internal/utils"
	"countyconnect/pkg/types"
)

type ListingRepository interface {
	Listing(ctx context.Context, listingID string) (*types.Listing, error)
	CreateListing(ctx context.Context, listing *types.Listing) error
}

type fakeListingSeed struct {
	ID          string
	Kind        types.ListingKind
	Title       string
	Slug        string
	Description string
	Category    string
	Town        int // index into Towns, -1 for county-wide
	Owner       string
	Attributes  map[string]any
}

var fakeListings = []fakeListingSeed{
	{ID: "zS7QMz9UCdE0nzLJzSs6Fcrca49WI4Vk", Kind: types.ListingKindChurch, Title: "Grace Community Church", Description: "Sunday service at 10am, all are welcome.", Category: "non-denominational", Town: 0},
	{ID: "BAXhSNk6wRnNn1t2K2ZpBLDMBxRmdQbd", Kind: types.ListingKindChurch, Title: "St. Brendan's Parish", Description: "Mass on Saturdays at 5pm and Sundays at 9am.", Category: "catholic", Town: 1},
	{ID: "n2pJWqis35HJi2YxjfVTIoxkAwJqSiVm", Kind: types.ListingKindSchool, Title: "Pine Ridge High School", Description: "Home of the Timberwolves.", Category: "high-school", Town: 1},
	{ID: "HZZWMmReaQckkOYcYLxrRKohVknM6Bwk", Kind: types.ListingKindCommunityResource, Title: "County Food Pantry", Description: "Open Tuesdays and Thursdays, no appointment needed.", Category: "food", Town: -1},
	{ID: "tsBwYNAXad6AviBt9SWCuYBIbGM1gWrc", Kind: types.ListingKindEmergency, Title: "Millbrook Volunteer Fire Department", Category: "fire", Town: 0},
	{ID: "cad9gwCuAZfOoWClLe3Jdi3MHJDPYp5a", Kind: types.ListingKindFoodTruck, Title: "Smokin' Barrels BBQ", Description: "Brisket and ribs, Fridays at the Cedar Falls square.", Category: "bbq", Town: 2},
	{ID: "qB3J7X8aaFMYGNMByYgdp1b8pQshHvv9", Kind: types.ListingKindEvent, Title: "Harlow Springs Harvest Fair", Description: "Hayrides, pie contest and a craft market.", Category: "festival", Town: 3, Attributes: map[string]any{"starts_at": "2026-10-03T10:00:00Z", "ends_at": "2026-10-04T18:00:00Z"}},
	{ID: "pQcNlVpU2aQIwvWLZYXShcHogpUwhDJ2", Kind: types.ListingKindBulletinPost, Title: "Church bake sale this weekend", Category: "sale", Town: 0, Owner: "22222222-2222-2222-2222-222222222222"},
	{ID: "M89kzgBT5rHxVPqVFYjA2DBVryTlVQCR", Kind: types.ListingKindLostFound, Title: "Found: grey tabby near West Fork library", Category: "found", Town: 5, Owner: "33333333-3333-3333-3333-333333333333"},
	{ID: "ZTspsNW6xiDFPCAKaxNr5LOaXe5uFkmc", Kind: types.ListingKindStore, Title: "Oak Hollow Outfitters", Slug: "oak-hollow-outfitters", Description: "Fishing, camping and hunting supplies.", Category: "outdoors", Town: 4, Owner: "44444444-4444-4444-4444-444444444444"},
	{ID: "1IXwP0SfdWLGEEpxPA51MUCio9MGVgSW", Kind: types.ListingKindJob, Title: "Part-time library assistant", Category: "public-sector", Town: 5},
	{ID: "uJznTVE29JuJg9WkGfUaKzQdRkSgSGUQ", Kind: types.ListingKindGovernment, Title: "County Clerk's Office", Description: "Vehicle registration, marriage licenses and property records.", Category: "records", Town: -1},
}

// SeedFakeListings creates demo listings in each kind's public status.
// Member owned seeds start owned; the rest are unclaimed directory entries.
func SeedFakeListings(ctx context.Context, repo ListingRepository, clock *expiry.Calculator) (int, error) {
	if clock == nil {
		clock = expiry.New()
	}

	seeded := 0
	for _, fake := range fakeListings {
		_, err := repo.Listing(ctx, fake.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, types.ErrListingNotFound) {
			return seeded, fmt.Errorf("failed to fetch fake listing %s: %w", fake.ID, err)
		}

		listing := fakeListing(fake, clock)
		if err := repo.CreateListing(ctx, listing); err != nil {
			return seeded, fmt.Errorf("failed to create fake listing %s: %w", fake.ID, err)
		}
		seeded++
	}

	return seeded, nil
}

func fakeListing(fake fakeListingSeed, clock *expiry.Calculator) *types.Listing {
	listing := &types.Listing{
		ID:         fake.ID,
		Kind:       fake.Kind,
		Title:      fake.Title,
		Status:     lifecycle.ForKind(fake.Kind).Visible(),
		CreatedBy:  fakeUsers[0].ID,
		Attributes: fake.Attributes,
	}
	if fake.Slug != "" {
		listing.Slug = utils.StringPtr(fake.Slug)
	}
	if fake.Description != "" {
		listing.Description = utils.StringPtr(fake.Description)
	}
	if fake.Category != "" {
		listing.Category = utils.StringPtr(fake.Category)
	}
	if fake.Town >= 0 {
		town := Towns[fake.Town]
		listing.TownID = utils.StringPtr(town.ID)
		listing.Town = utils.StringPtr(town.Name)
	}
	if fake.Owner != "" {
		listing.OwnerID = utils.StringPtr(fake.Owner)
		listing.CreatedBy = fake.Owner
	}
	if fake.Kind.Ephemeral() {
		listing.ExpiresAt = utils.TimePtr(clock.Compute(expiry.DefaultDays))
	}

	return listing
}

// Run seeds towns, demo users and, when withListings is set, demo listings.
func Run(ctx context.Context, towns TownUpserter, users UserRepository, listings ListingRepository, withListings bool) (Summary, error) {
	var summary Summary

	if err := SeedTowns(ctx, towns); err != nil {
		return summary, err
	}
	summary.Towns = len(Towns)

	n, err := SeedFakeUsers(ctx, users)
	if err != nil {
		return summary, err
	}
	summary.Users = n

	if withListings {
		n, err = SeedFakeListings(ctx, listings, nil)
		if err != nil {
			return summary, err
		}
		summary.Listings = n
	}

	return summary, nil
}

type Summary struct {
	Towns    int
	Users    int
	Listings int
}
