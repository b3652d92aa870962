package directory

import (
	"context"
	"fmt"
	"strings"

	"countyconnect/internal/metrics"
	"countyconnect/pkg/types"
)

// RequestClaim records a user's request to take over an unowned listing.
// The requester's name and email are snapshotted onto the claim.
func (s *Service) RequestClaim(ctx context.Context, actor *types.User, input types.ClaimInput) (*types.ClaimRequest, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	if err := s.check(input); err != nil {
		return nil, err
	}

	kind, err := types.ParseListingKind(input.EntityType)
	if err != nil {
		return nil, types.FieldError("entity_type", err.Error())
	}

	listing, err := s.listingOfKind(ctx, kind, input.EntityID)
	if err != nil {
		return nil, err
	}
	if !s.public(listing) && !canEdit(actor, listing) {
		return nil, types.ErrListingNotFound
	}

	if listing.OwnedBy(actor.ID) {
		return nil, types.FieldError("entity_id", "you already own this listing")
	}
	if listing.OwnerID != nil {
		return nil, fmt.Errorf("%w: listing %s is already claimed", types.ErrConflict, listing.ID)
	}

	pending, err := s.claims.PendingClaimExists(ctx, listing.ID, actor.ID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, fmt.Errorf("%w: a claim on listing %s is already pending", types.ErrConflict, listing.ID)
	}

	name, email := s.contactFor(ctx, actor)

	claim := &types.ClaimRequest{
		EntityType: kind,
		EntityID:   listing.ID,
		EntityName: listing.Title,
		UserID:     actor.ID,
		UserName:   name,
		UserEmail:  email,
		Status:     types.ClaimStatusPending,
	}

	if err := s.claims.CreateClaim(ctx, claim); err != nil {
		return nil, err
	}

	s.logger.WithField("claim_id", claim.ID).
		WithField("listing_id", listing.ID).
		WithField("user_id", actor.ID).
		Info("claim requested")

	return claim, nil
}

// contactFor prefers the local profile and falls back to the identity
// provider. Lookup failures leave the fields empty.
func (s *Service) contactFor(ctx context.Context, actor *types.User) (name, email *string) {
	name, email = optional(actor.FullName), optional(actor.Email)
	if (name != nil && email != nil) || s.profiles == nil {
		return name, email
	}

	profile, err := s.profiles.Profile(ctx, actor.ID)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", actor.ID).Warn("failed to look up claimant profile")
		return name, email
	}

	if name == nil {
		name = optional(&profile.Name)
	}
	if email == nil {
		email = optional(&profile.Email)
	}
	return name, email
}

// ResolveClaim approves or rejects a pending claim. Approval transfers
// ownership of an unowned listing to the claimant. A claim is resolved once.
func (s *Service) ResolveClaim(ctx context.Context, actor *types.User, claimID string, approve bool, resolution types.ClaimResolution) (*types.ClaimRequest, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := s.check(resolution); err != nil {
		return nil, err
	}

	claim, err := s.claims.Claim(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if claim.Status != types.ClaimStatusPending {
		return nil, fmt.Errorf("%w: claim %s was already %s", types.ErrInvalidTransition, claim.ID, claim.Status)
	}

	if approve {
		listing, err := s.listings.Listing(ctx, claim.EntityID)
		if err != nil {
			return nil, err
		}
		if listing.OwnerID != nil {
			return nil, fmt.Errorf("%w: listing %s is already claimed", types.ErrConflict, listing.ID)
		}
	}

	now := s.clock.Current()
	resolvedBy := actor.ID
	claim.ResolvedAt = &now
	claim.ResolvedBy = &resolvedBy

	if approve {
		claim.Status = types.ClaimStatusApproved
	} else {
		claim.Status = types.ClaimStatusRejected
		if resolution.Reason != nil && strings.TrimSpace(*resolution.Reason) != "" {
			claim.RejectionReason = optional(resolution.Reason)
		}
	}

	if err := s.claims.ResolveClaim(ctx, claim); err != nil {
		return nil, err
	}

	metrics.ObserveClaimResolved(string(claim.Status))
	s.logger.WithField("claim_id", claim.ID).
		WithField("status", claim.Status).
		WithField("actor_id", actor.ID).
		Info("claim resolved")

	return claim, nil
}

// Claims lists claims for admins. An empty status returns every claim.
func (s *Service) Claims(ctx context.Context, actor *types.User, status string) ([]*types.ClaimRequest, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	switch types.ClaimStatus(status) {
	case "", types.ClaimStatusPending, types.ClaimStatusApproved, types.ClaimStatusRejected:
	default:
		return nil, types.FieldError("status", fmt.Sprintf("unknown claim status %q", status))
	}

	return s.claims.ClaimsByStatus(ctx, types.ClaimStatus(status))
}
