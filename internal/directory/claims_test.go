package directory

import (
	"context"
	"errors"
	"testing"
	"time"

	"countyconnect/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProfiles struct {
	profile *types.Profile
	err     error
	calls   int
}

func (s *stubProfiles) Profile(_ context.Context, _ string) (*types.Profile, error) {
	s.calls++
	return s.profile, s.err
}

func TestClaimApproval(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	church := f.create(t, f.admin, types.ListingKindChurch, types.ListingInput{Title: str("Old Stone Church")})

	claim, err := f.svc.RequestClaim(ctx, f.alice, types.ClaimInput{EntityType: "church", EntityID: church.ID})
	require.NoError(t, err)
	assert.Equal(t, types.ClaimStatusPending, claim.Status)
	assert.Equal(t, "Old Stone Church", claim.EntityName)
	assert.Equal(t, "alice@example.com", *claim.UserEmail)

	_, err = f.svc.RequestClaim(ctx, f.alice, types.ClaimInput{EntityType: "church", EntityID: church.ID})
	assert.ErrorIs(t, err, types.ErrConflict)

	_, err = f.svc.ResolveClaim(ctx, f.alice, claim.ID, true, types.ClaimResolution{})
	assert.ErrorIs(t, err, types.ErrPermissionDenied)

	resolved, err := f.svc.ResolveClaim(ctx, f.admin, claim.ID, true, types.ClaimResolution{})
	require.NoError(t, err)
	assert.Equal(t, types.ClaimStatusApproved, resolved.Status)
	assert.Equal(t, t0, *resolved.ResolvedAt)
	assert.Equal(t, "admin", *resolved.ResolvedBy)
	assert.Nil(t, resolved.RejectionReason)

	owned, err := f.mem.Listing(ctx, church.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", *owned.OwnerID)
	assert.True(t, owned.OwnedBy("alice"))

	// resolved exactly once
	_, err = f.svc.ResolveClaim(ctx, f.admin, claim.ID, false, types.ClaimResolution{})
	assert.ErrorIs(t, err, types.ErrInvalidTransition)

	// the new owner can edit, and nobody else can claim it now
	_, err = f.svc.UpdateListing(ctx, f.alice, church.Kind, church.ID, types.ListingInput{Description: str("Since 1852")})
	assert.NoError(t, err)
	_, err = f.svc.RequestClaim(ctx, f.bob, types.ClaimInput{EntityType: "church", EntityID: church.ID})
	assert.ErrorIs(t, err, types.ErrConflict)
}

func TestClaimRejection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	school := f.create(t, f.admin, types.ListingKindSchool, types.ListingInput{Title: str("Ridge High")})
	claim, err := f.svc.RequestClaim(ctx, f.bob, types.ClaimInput{EntityType: "school", EntityID: school.ID})
	require.NoError(t, err)

	resolved, err := f.svc.ResolveClaim(ctx, f.admin, claim.ID, false, types.ClaimResolution{Reason: str(" not staff ")})
	require.NoError(t, err)
	assert.Equal(t, types.ClaimStatusRejected, resolved.Status)
	assert.Equal(t, "not staff", *resolved.RejectionReason)

	unchanged, err := f.mem.Listing(ctx, school.ID)
	require.NoError(t, err)
	assert.Nil(t, unchanged.OwnerID)

	pending, err := f.svc.Claims(ctx, f.admin, "pending")
	require.NoError(t, err)
	assert.Empty(t, pending)

	all, err := f.svc.Claims(ctx, f.admin, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = f.svc.Claims(ctx, f.admin, "lost")
	assert.ErrorIs(t, err, types.ErrValidation)

	// a rejected claimant may ask again
	_, err = f.svc.RequestClaim(ctx, f.bob, types.ClaimInput{EntityType: "school", EntityID: school.ID})
	assert.NoError(t, err)
}

func TestClaimRequestValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	mine := f.create(t, f.alice, types.ListingKindUtility, types.ListingInput{Title: str("Water works")})

	_, err := f.svc.RequestClaim(ctx, nil, types.ClaimInput{EntityType: "utility", EntityID: mine.ID})
	assert.ErrorIs(t, err, types.ErrNotAuthenticated)

	_, err = f.svc.RequestClaim(ctx, f.alice, types.ClaimInput{EntityType: "utility", EntityID: mine.ID})
	assert.ErrorIs(t, err, types.ErrValidation)

	_, err = f.svc.RequestClaim(ctx, f.bob, types.ClaimInput{EntityType: "spaceship", EntityID: mine.ID})
	assert.ErrorIs(t, err, types.ErrValidation)

	_, err = f.svc.RequestClaim(ctx, f.bob, types.ClaimInput{EntityType: "church", EntityID: mine.ID})
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = f.svc.RequestClaim(ctx, f.bob, types.ClaimInput{EntityType: "utility"})
	assert.ErrorIs(t, err, types.ErrValidation)

	// still pending review, so bob cannot see it
	_, err = f.svc.RequestClaim(ctx, f.bob, types.ClaimInput{EntityType: "utility", EntityID: mine.ID})
	assert.ErrorIs(t, err, types.ErrListingNotFound)

	f.transition(t, f.admin, mine, types.ActionApprove)
	_, err = f.svc.RequestClaim(ctx, f.bob, types.ClaimInput{EntityType: "utility", EntityID: mine.ID})
	assert.ErrorIs(t, err, types.ErrConflict)
}

func TestClaimOnHiddenListing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	church := f.create(t, f.admin, types.ListingKindChurch, types.ListingInput{Title: str("Chapel on the Hill")})
	f.transition(t, f.admin, church, types.ActionSuspend)

	_, err := f.svc.Listing(ctx, f.bob, church.Kind, church.ID)
	require.ErrorIs(t, err, types.ErrListingNotFound)

	_, err = f.svc.RequestClaim(ctx, f.bob, types.ClaimInput{EntityType: "church", EntityID: church.ID})
	assert.ErrorIs(t, err, types.ErrListingNotFound)

	claims, err := f.svc.Claims(ctx, f.admin, "")
	require.NoError(t, err)
	assert.Empty(t, claims)

	bulletin := f.create(t, f.admin, types.ListingKindBulletinPost, types.ListingInput{Title: str("Lost cat"), ExpiresInDays: days("1")})
	f.now = t0.Add(48 * time.Hour)
	_, err = f.svc.RequestClaim(ctx, f.bob, types.ClaimInput{EntityType: string(types.ListingKindBulletinPost), EntityID: bulletin.ID})
	assert.ErrorIs(t, err, types.ErrListingNotFound)
}

func TestSecondClaimApprovalConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	church := f.create(t, f.admin, types.ListingKindChurch, types.ListingInput{Title: str("Grace Chapel")})

	first, err := f.svc.RequestClaim(ctx, f.alice, types.ClaimInput{EntityType: "church", EntityID: church.ID})
	require.NoError(t, err)
	second, err := f.svc.RequestClaim(ctx, f.bob, types.ClaimInput{EntityType: "church", EntityID: church.ID})
	require.NoError(t, err)

	_, err = f.svc.ResolveClaim(ctx, f.admin, first.ID, true, types.ClaimResolution{})
	require.NoError(t, err)

	_, err = f.svc.ResolveClaim(ctx, f.admin, second.ID, true, types.ClaimResolution{})
	assert.ErrorIs(t, err, types.ErrConflict)

	owned, err := f.mem.Listing(ctx, church.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", *owned.OwnerID)

	// the losing claim can still be rejected
	rejected, err := f.svc.ResolveClaim(ctx, f.admin, second.ID, false, types.ClaimResolution{Reason: str("already claimed")})
	require.NoError(t, err)
	assert.Equal(t, types.ClaimStatusRejected, rejected.Status)
}

func TestClaimFallsBackToIdentityProvider(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	profiles := &stubProfiles{profile: &types.Profile{UserID: "bob", Name: "Bob Builder", Email: "other@example.com"}}
	f.svc.profiles = profiles

	hall := f.create(t, f.admin, types.ListingKindGovernment, types.ListingInput{Title: str("Town Hall")})
	claim, err := f.svc.RequestClaim(ctx, f.bob, types.ClaimInput{EntityType: "government_service", EntityID: hall.ID})
	require.NoError(t, err)

	assert.Equal(t, 1, profiles.calls)
	assert.Equal(t, "Bob Builder", *claim.UserName)
	assert.Equal(t, "bob@example.com", *claim.UserEmail)

	profiles.err = errors.New("cognito down")
	cell := f.create(t, f.admin, types.ListingKindEmergency, types.ListingInput{Title: str("Fire Dept")})
	claim, err = f.svc.RequestClaim(ctx, f.bob, types.ClaimInput{EntityType: "emergency_service", EntityID: cell.ID})
	require.NoError(t, err)
	assert.Nil(t, claim.UserName)
}
