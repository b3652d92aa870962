package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"countyconnect/internal/expiry"
	"countyconnect/internal/lifecycle"
	"countyconnect/internal/location"
	"countyconnect/internal/query"
	"countyconnect/internal/slug"
	"countyconnect/pkg/types"

	"golang.org/x/sync/errgroup"
)

// ResolveFilter combines the caller's saved location preference with any
// override from the request. Without either it falls back to the default
// derived from the user's preferred town.
func (s *Service) ResolveFilter(actor *types.User, opts types.ListingOptions, saved *types.LocationFilterState) (types.LocationFilterState, error) {
	state := s.LocationDefault(actor)
	if saved != nil && saved.Mode != "" {
		state = saved.WithMode(saved.Mode)
	}

	if opts.Mode != "" {
		mode, err := types.ParseLocationMode(opts.Mode)
		if err != nil {
			return types.LocationFilterState{}, err
		}
		state = state.WithMode(mode)
	}

	if len(opts.TownIDs) > 0 {
		state = state.WithTowns(opts.TownIDs)
	}

	return state, nil
}

// LocationDefault is "mine" for users with a preferred town, "all" otherwise.
func (s *Service) LocationDefault(actor *types.User) types.LocationFilterState {
	if actor == nil {
		return location.Default(nil)
	}
	return location.Default(actor.PreferredTownID)
}

// LoadPublic builds a public listing page: only listings in the kind's
// visible status, narrowed by search, category filters, expiry and
// location.
func (s *Service) LoadPublic(ctx context.Context, actor *types.User, kind types.ListingKind, opts types.ListingOptions, saved *types.LocationFilterState) (*types.ListingPage, error) {

	state, err := s.ResolveFilter(actor, opts, saved)
	if err != nil {
		return nil, err
	}

	machine := lifecycle.ForKind(kind)

	var (
		towns    []*types.Town
		listings []*types.Listing
		userTown *types.Town
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		towns, err = s.towns.AllTowns(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		listings, err = s.listings.Filter(gctx, kind, map[string]any{"status": machine.Visible()}, opts.Sort)
		return err
	})
	if actor != nil && actor.PreferredTownID != nil {
		g.Go(func() error {
			town, err := s.towns.Town(gctx, *actor.PreferredTownID)
			if err != nil {
				if errors.Is(err, types.ErrNotFound) {
					return nil
				}
				return err
			}
			userTown = town
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	criteria := query.Criteria[*types.Listing]{
		Search: opts.Search,
		Text:   query.ListingText,
		Fields: map[string]string{
			"category":    opts.Category,
			"subcategory": opts.Subcategory,
		},
		Field:    query.ListingField,
		Now:      s.clock.Current(),
		TownOf:   location.ListingTown(location.NewIndex(towns)),
		Location: state,
		UserTown: userTown,
	}
	if kind.Ephemeral() {
		criteria.Expires = query.ListingExpires
	}

	visible := query.Run(listings, criteria)

	page := &types.ListingPage{
		Kind:     kind,
		Filter:   state,
		UserTown: userTown,
		Towns:    towns,
		Listings: s.views(visible),
		Total:    len(visible),
	}

	return page, nil
}

// LoadPosts is the community bulletin board.
func (s *Service) LoadPosts(ctx context.Context, actor *types.User, opts types.ListingOptions, saved *types.LocationFilterState) (*types.ListingPage, error) {
	return s.LoadPublic(ctx, actor, types.ListingKindBulletinPost, opts, saved)
}

// LoadOwned returns every listing of kind the caller owns, in any status.
func (s *Service) LoadOwned(ctx context.Context, actor *types.User, kind types.ListingKind) ([]*types.ListingView, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}

	listings, err := s.listings.ListingsByOwner(ctx, kind, actor.ID)
	if err != nil {
		return nil, err
	}

	return s.views(listings), nil
}

// Listing returns a single listing. Listings that are not publicly visible
// are reported as missing unless the caller owns them or is an admin.
func (s *Service) Listing(ctx context.Context, actor *types.User, kind types.ListingKind, listingID string) (*types.ListingView, error) {
	listing, err := s.listingOfKind(ctx, kind, listingID)
	if err != nil {
		return nil, err
	}

	if !s.public(listing) && !canEdit(actor, listing) {
		return nil, types.ErrListingNotFound
	}

	return s.view(listing), nil
}

func (s *Service) CreateListing(ctx context.Context, actor *types.User, kind types.ListingKind, input types.ListingInput) (*types.Listing, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	if err := s.check(input); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(deref(input.Title))
	if title == "" {
		return nil, types.FieldError("title", "title is required")
	}

	listing := &types.Listing{
		Kind:        kind,
		Title:       title,
		Description: optional(input.Description),
		Category:    optional(input.Category),
		Subcategory: optional(input.Subcategory),
		ImageURL:    optional(input.ImageURL),
		Attributes:  input.Attributes,
		CreatedBy:   actor.ID,
		Status:      lifecycle.ForKind(kind).Initial(actor.IsAdmin()),
	}

	// Admin entries are directory data nobody owns until it is claimed.
	if !actor.IsAdmin() {
		owner := actor.ID
		listing.OwnerID = &owner
	}

	if err := checkAttributes(kind, input.Attributes); err != nil {
		return nil, err
	}

	townID, town, _, err := s.resolveTown(ctx, input.TownID, input.Town)
	if err != nil {
		return nil, err
	}
	listing.TownID, listing.Town = townID, town

	sl, err := slug.FromInput(input.Slug, title)
	switch {
	case err == nil:
		listing.Slug = &sl
	case kind.Slugged() || input.Slug != nil:
		return nil, err
	}

	if kind.Slugged() {
		taken, err := s.listings.SlugExists(ctx, kind, sl, "")
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, slugConflict(sl)
		}
	}

	if kind.Ephemeral() {
		days := expiry.DefaultDays
		if input.ExpiresInDays != nil {
			days, err = expiry.ParseDays(input.ExpiresInDays.String())
			if err != nil {
				return nil, err
			}
		}
		at := s.clock.Compute(days)
		listing.ExpiresAt = &at
	} else if input.ExpiresInDays != nil {
		return nil, notEphemeral(kind)
	}

	if err := s.listings.CreateListing(ctx, listing); err != nil {
		return nil, err
	}

	s.logger.WithField("listing_id", listing.ID).
		WithField("kind", kind).
		WithField("status", listing.Status).
		Info("listing created")

	return listing, nil
}

// UpdateListing applies the non-nil fields of input. Status, ownership and
// identity fields are not editable here.
func (s *Service) UpdateListing(ctx context.Context, actor *types.User, kind types.ListingKind, listingID string, input types.ListingInput) (*types.Listing, error) {
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

	if err := s.check(input); err != nil {
		return nil, err
	}

	fields := make(map[string]any)

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, types.FieldError("title", "title is required")
		}
		fields["title"] = title
	}

	setOptional(fields, "description", input.Description)
	setOptional(fields, "category", input.Category)
	setOptional(fields, "subcategory", input.Subcategory)
	setOptional(fields, "image_url", input.ImageURL)

	townID, town, set, err := s.resolveTown(ctx, input.TownID, input.Town)
	if err != nil {
		return nil, err
	}
	if set {
		fields["town_id"] = townID
		fields["town"] = town
	}

	if input.Slug != nil {
		sl := strings.TrimSpace(*input.Slug)
		switch {
		case sl == "" && kind.Slugged():
			return nil, types.FieldError("slug", "slug is required")
		case sl == "":
			fields["slug"] = nil
		default:
			if err := slug.Validate(sl); err != nil {
				return nil, err
			}
			if kind.Slugged() {
				taken, err := s.listings.SlugExists(ctx, kind, sl, listing.ID)
				if err != nil {
					return nil, err
				}
				if taken {
					return nil, slugConflict(sl)
				}
			}
			fields["slug"] = sl
		}
	}

	if input.Attributes != nil {
		if err := checkAttributes(kind, input.Attributes); err != nil {
			return nil, err
		}
		fields["attributes"] = input.Attributes
	}

	if input.ExpiresInDays != nil {
		if !kind.Ephemeral() {
			return nil, notEphemeral(kind)
		}
		days, err := expiry.ParseDays(input.ExpiresInDays.String())
		if err != nil {
			return nil, err
		}
		fields["expires_at"] = s.clock.Compute(days)
	}

	if len(fields) == 0 {
		return listing, nil
	}

	updated, err := s.listings.UpdateListing(ctx, listing.ID, fields)
	if err != nil {
		return nil, err
	}

	s.logger.WithField("listing_id", listing.ID).WithField("fields", len(fields)).Debug("listing updated")

	return updated, nil
}

func (s *Service) DeleteListing(ctx context.Context, actor *types.User, kind types.ListingKind, listingID string) error {
	if err := requireUser(actor); err != nil {
		return err
	}

	listing, err := s.listingOfKind(ctx, kind, listingID)
	if err != nil {
		return err
	}
	if !canEdit(actor, listing) {
		return types.ErrPermissionDenied
	}

	if err := s.listings.DeleteListing(ctx, listing.ID); err != nil {
		return err
	}

	s.logger.WithField("listing_id", listing.ID).WithField("actor_id", actor.ID).Info("listing deleted")
	return nil
}

func (s *Service) listingOfKind(ctx context.Context, kind types.ListingKind, listingID string) (*types.Listing, error) {
	listing, err := s.listings.Listing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.Kind != kind {
		return nil, types.ErrListingNotFound
	}
	return listing, nil
}

// resolveTown reconciles the town reference of a write. town_id wins over
// the display name; the stored name is always the town's current name. set
// is false when neither field was supplied. Empty values mean county-wide.
func (s *Service) resolveTown(ctx context.Context, townID, townName *string) (id, name *string, set bool, err error) {

	switch {
	case townID != nil && strings.TrimSpace(*townID) != "":
		town, err := s.towns.Town(ctx, strings.TrimSpace(*townID))
		if err != nil {
			if errors.Is(err, types.ErrNotFound) {
				return nil, nil, false, types.FieldError("town_id", "unknown town")
			}
			return nil, nil, false, err
		}
		return &town.ID, &town.Name, true, nil

	case townName != nil && strings.TrimSpace(*townName) != "":
		towns, err := s.towns.AllTowns(ctx)
		if err != nil {
			return nil, nil, false, err
		}
		town := location.NewIndex(towns).ByName(*townName)
		if town == nil {
			return nil, nil, false, types.FieldError("town", fmt.Sprintf("unknown town %q", strings.TrimSpace(*townName)))
		}
		return &town.ID, &town.Name, true, nil

	case townID != nil || townName != nil:
		return nil, nil, true, nil
	}

	return nil, nil, false, nil
}

// checkAttributes enforces the per-kind rules on free-form attributes.
func checkAttributes(kind types.ListingKind, attrs map[string]any) error {
	if kind != types.ListingKindEvent {
		return nil
	}

	startsAt, err := attributeTime(attrs, "starts_at")
	if err != nil {
		return err
	}
	endsAt, err := attributeTime(attrs, "ends_at")
	if err != nil {
		return err
	}

	if startsAt != nil && endsAt != nil && endsAt.Before(*startsAt) {
		return types.FieldError("ends_at", "ends_at must not be before starts_at")
	}
	return nil
}

func attributeTime(attrs map[string]any, key string) (*time.Time, error) {
	raw, ok := attrs[key]
	if !ok || raw == nil {
		return nil, nil
	}
	v, ok := raw.(string)
	if !ok {
		return nil, types.FieldError(key, fmt.Sprintf("%s must be an RFC 3339 timestamp", key))
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, types.FieldError(key, fmt.Sprintf("%s must be an RFC 3339 timestamp", key))
	}
	return &t, nil
}

func (s *Service) views(listings []*types.Listing) []*types.ListingView {
	out := make([]*types.ListingView, 0, len(listings))
	for _, l := range listings {
		out = append(out, s.view(l))
	}
	return out
}

func (s *Service) view(l *types.Listing) *types.ListingView {
	v := &types.ListingView{Listing: l}
	if l.ExpiresAt != nil {
		v.DaysRemaining = s.clock.DaysRemaining(l.ExpiresAt)
		v.Expired = s.clock.IsExpired(l.ExpiresAt)
	}
	return v
}

// public reports whether anonymous visitors may see the listing.
func (s *Service) public(l *types.Listing) bool {
	return l.Status == lifecycle.ForKind(l.Kind).Visible() && !s.clock.IsExpired(l.ExpiresAt)
}

func canEdit(actor *types.User, listing *types.Listing) bool {
	if actor == nil {
		return false
	}
	return actor.IsAdmin() || listing.OwnedBy(actor.ID)
}

func slugConflict(sl string) error {
	return fmt.Errorf("%w: slug %q is already taken", types.ErrConflict, sl)
}

func notEphemeral(kind types.ListingKind) error {
	return types.FieldError("expires_in_days", fmt.Sprintf("%s listings do not expire", kind))
}

func optional(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}

func setOptional(fields map[string]any, name string, v *string) {
	if v == nil {
		return
	}
	fields[name] = optional(v)
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
