package directory

import (
	"context"
	"fmt"

	"countyconnect/internal/lifecycle"
	"countyconnect/internal/metrics"
	"countyconnect/internal/query"
	"countyconnect/pkg/types"
)

// LoadModeration lists listings of kind for the admin queue, optionally
// narrowed to one status.
func (s *Service) LoadModeration(ctx context.Context, actor *types.User, kind types.ListingKind, opts types.ListingOptions) ([]*types.ListingView, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	match := map[string]any{}
	if opts.Status != "" {
		status := types.ListingStatus(opts.Status)
		if !lifecycle.ForKind(kind).Valid(status) {
			return nil, types.FieldError("status", fmt.Sprintf("%s listings are never %q", kind, opts.Status))
		}
		match["status"] = status
	}

	listings, err := s.listings.Filter(ctx, kind, match, opts.Sort)
	if err != nil {
		return nil, err
	}

	listings = query.Run(listings, query.Criteria[*types.Listing]{
		Search: opts.Search,
		Text:   query.ListingText,
		Fields: map[string]string{
			"category":    opts.Category,
			"subcategory": opts.Subcategory,
		},
		Field: query.ListingField,
	})

	return s.views(listings), nil
}

// Transition applies a lifecycle action to a listing and records it in the
// audit log. Submitting is open to the owner; everything else needs an
// admin. Suspending an already parked listing changes nothing.
func (s *Service) Transition(ctx context.Context, actor *types.User, kind types.ListingKind, listingID string, action types.LifecycleAction) (*types.Listing, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	if lifecycle.AdminOnly(action) && !actor.IsAdmin() {
		return nil, types.ErrPermissionDenied
	}

	listing, err := s.listingOfKind(ctx, kind, listingID)
	if err != nil {
		return nil, err
	}
	if !canEdit(actor, listing) {
		return nil, types.ErrPermissionDenied
	}

	from := listing.Status
	to, changed, err := lifecycle.ForKind(kind).Apply(from, action)
	if err != nil {
		return nil, err
	}
	if !changed {
		return listing, nil
	}

	if err := s.listings.UpdateStatus(ctx, listing.ID, from, to); err != nil {
		return nil, err
	}
	listing.Status = to

	entry := s.logger.WithField("listing_id", listing.ID).
		WithField("kind", kind).
		WithField("action", action).
		WithField("from", from).
		WithField("to", to).
		WithField("actor_id", actor.ID)

	err = s.transitions.RecordTransition(ctx, &types.StatusTransition{
		ListingID:  listing.ID,
		Kind:       kind,
		Action:     action,
		FromStatus: from,
		ToStatus:   to,
		ActorID:    actor.ID,
	})
	if err != nil {
		// the status change already landed
		entry.WithError(err).Error("failed to record status transition")
	}

	metrics.ObserveTransition(string(kind), string(action))
	entry.Info("listing status changed")

	return listing, nil
}

// Transitions returns the audit log of a listing to its owner or an admin.
func (s *Service) Transitions(ctx context.Context, actor *types.User, kind types.ListingKind, listingID string) ([]*types.StatusTransition, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}

	listing, err := s.listingOfKind(ctx, kind, listingID)
	if err != nil {
		return nil, err
	}
	if !canEdit(actor, listing) {
		return nil, types.ErrPermissionDenied
	}

	return s.transitions.TransitionsByListing(ctx, listing.ID)
}

// RefreshModerationStats publishes the size of each kind's review queue.
func (s *Service) RefreshModerationStats(ctx context.Context) error {
	counts, err := s.listings.CountByStatus(ctx, types.ListingStatusPending)
	if err != nil {
		return err
	}

	for _, kind := range types.AllListingKinds() {
		metrics.SetModerationQueue(string(kind), counts[kind])
	}

	s.logger.WithField("kinds", len(counts)).Debug("moderation stats refreshed")
	return nil
}
