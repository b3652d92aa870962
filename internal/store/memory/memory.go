// Package memory is a process local implementation of the directory
// repositories. It backs the test suites and `serve --in-memory`.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"countyconnect/internal/store"
	"countyconnect/internal/utils"
	"countyconnect/pkg/types"
)

type Store struct {
	mu          sync.RWMutex
	now         func() time.Time
	listings    map[string]*types.Listing
	towns       map[string]*types.Town
	users       map[string]*types.User
	claims      map[string]*types.ClaimRequest
	transitions []*types.StatusTransition
}

func New() *Store {
	return &Store{
		now:      time.Now,
		listings: make(map[string]*types.Listing),
		towns:    make(map[string]*types.Town),
		users:    make(map[string]*types.User),
		claims:   make(map[string]*types.ClaimRequest),
	}
}

// WithClock pins the timestamps written by the store.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Listings

func (s *Store) List(ctx context.Context, kind types.ListingKind, sort string) ([]*types.Listing, error) {
	return s.Filter(ctx, kind, nil, sort)
}

func (s *Store) Filter(_ context.Context, kind types.ListingKind, match map[string]any, sortSpec string) ([]*types.Listing, error) {
	spec, err := store.ParseSort(sortSpec)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*types.Listing, 0)
	for _, l := range s.listings {
		if l.Kind != kind {
			continue
		}
		ok, err := matches(l, match)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, cloneListing(l))
		}
	}

	sortListings(out, spec)
	return out, nil
}

func (s *Store) ListingsByOwner(_ context.Context, kind types.ListingKind, userID string) ([]*types.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*types.Listing, 0)
	for _, l := range s.listings {
		if l.Kind == kind && l.OwnedBy(userID) {
			out = append(out, cloneListing(l))
		}
	}
	sortListings(out, store.SortSpec{Column: "created_at", Desc: true})
	return out, nil
}

func (s *Store) Listing(_ context.Context, listingID string) (*types.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.listings[listingID]
	if !ok {
		return nil, types.ErrListingNotFound
	}
	return cloneListing(l), nil
}

func (s *Store) SlugExists(_ context.Context, kind types.ListingKind, slug, exceptID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slugTaken(kind, slug, exceptID), nil
}

func (s *Store) slugTaken(kind types.ListingKind, slug, exceptID string) bool {
	for _, l := range s.listings {
		if l.Kind == kind && l.ID != exceptID && l.Slug != nil && *l.Slug == slug {
			return true
		}
	}
	return false
}

func (s *Store) CreateListing(_ context.Context, listing *types.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if listing.ID == "" {
		listing.ID = utils.NewID()
	}
	if _, ok := s.listings[listing.ID]; ok {
		return fmt.Errorf("%w: listing %s already exists", types.ErrConflict, listing.ID)
	}
	if listing.Kind.Slugged() && listing.Slug != nil && s.slugTaken(listing.Kind, *listing.Slug, "") {
		return fmt.Errorf("%w: slug %q is taken", types.ErrConflict, *listing.Slug)
	}

	now := s.now()
	listing.CreatedAt = now
	listing.UpdatedAt = now
	s.listings[listing.ID] = cloneListing(listing)
	return nil
}

func (s *Store) UpdateListing(_ context.Context, listingID string, fields map[string]any) (*types.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.listings[listingID]
	if !ok {
		return nil, types.ErrListingNotFound
	}

	next := cloneListing(current)
	for k, v := range fields {
		if err := setListingField(next, k, v); err != nil {
			return nil, err
		}
	}
	if next.Kind.Slugged() && next.Slug != nil && s.slugTaken(next.Kind, *next.Slug, next.ID) {
		return nil, fmt.Errorf("%w: slug %q is taken", types.ErrConflict, *next.Slug)
	}

	next.UpdatedAt = s.now()
	s.listings[listingID] = next
	return cloneListing(next), nil
}

func (s *Store) UpdateStatus(_ context.Context, listingID string, from, to types.ListingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.listings[listingID]
	if !ok {
		return types.ErrListingNotFound
	}
	if l.Status != from {
		return fmt.Errorf("%w: listing %s is no longer %s", types.ErrConflict, listingID, from)
	}

	l.Status = to
	return nil
}

func (s *Store) DeleteListing(_ context.Context, listingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.listings[listingID]; !ok {
		return types.ErrListingNotFound
	}
	delete(s.listings, listingID)

	for id, c := range s.claims {
		if c.EntityID == listingID {
			delete(s.claims, id)
		}
	}
	kept := s.transitions[:0]
	for _, t := range s.transitions {
		if t.ListingID != listingID {
			kept = append(kept, t)
		}
	}
	s.transitions = kept
	return nil
}

func (s *Store) CountByStatus(_ context.Context, status types.ListingStatus) (map[types.ListingKind]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[types.ListingKind]int)
	for _, l := range s.listings {
		if l.Status == status {
			out[l.Kind]++
		}
	}
	return out, nil
}

// Towns

func (s *Store) AllTowns(_ context.Context) ([]*types.Town, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*types.Town, 0, len(s.towns))
	for _, t := range s.towns {
		c := *t
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) Town(_ context.Context, townID string) (*types.Town, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.towns[townID]
	if !ok {
		return nil, types.ErrTownNotFound
	}
	c := *t
	return &c, nil
}

func (s *Store) TownBySlug(_ context.Context, slug string) (*types.Town, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.towns {
		if t.Slug == slug {
			c := *t
			return &c, nil
		}
	}
	return nil, types.ErrTownNotFound
}

func (s *Store) CreateTown(_ context.Context, town *types.Town) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if town.ID == "" {
		town.ID = utils.NewID()
	}
	for _, t := range s.towns {
		if t.ID == town.ID || t.Slug == town.Slug {
			return fmt.Errorf("%w: town %s already exists", types.ErrConflict, town.Slug)
		}
	}
	town.CreatedAt = s.now()
	c := *town
	s.towns[town.ID] = &c
	return nil
}

func (s *Store) UpsertTown(_ context.Context, town *types.Town) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if town.CreatedAt.IsZero() {
		town.CreatedAt = s.now()
	}
	c := *town
	s.towns[town.ID] = &c
	return nil
}

// Users

func (s *Store) User(_ context.Context, userID string) (*types.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, types.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (s *Store) UpsertIdentity(_ context.Context, userID, email string) (*types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	u, ok := s.users[userID]
	if !ok {
		u = &types.User{ID: userID, Role: types.UserRoleMember, CreatedAt: now}
		s.users[userID] = u
	}
	if email = strings.TrimSpace(email); email != "" {
		u.Email = &email
	}
	u.UpdatedAt = now
	return cloneUser(u), nil
}

func (s *Store) UpsertUser(_ context.Context, user *types.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = cloneUser(user)
	return nil
}

func (s *Store) UpdateUser(_ context.Context, userID string, fields map[string]any) (*types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, types.ErrUserNotFound
	}

	next := cloneUser(u)
	for k, v := range fields {
		p, err := stringPtr(k, v)
		if err != nil {
			return nil, err
		}
		switch k {
		case "full_name":
			next.FullName = p
		case "preferred_town_id":
			next.PreferredTownID = p
		case "email":
			next.Email = p
		default:
			return nil, types.FieldError(k, fmt.Sprintf("%s cannot be changed", k))
		}
	}
	next.UpdatedAt = s.now()
	s.users[userID] = next
	return cloneUser(next), nil
}

// Claims

func (s *Store) CreateClaim(_ context.Context, claim *types.ClaimRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if claim.ID == "" {
		claim.ID = utils.NewID()
	}
	for _, c := range s.claims {
		if c.Status == types.ClaimStatusPending && c.EntityID == claim.EntityID && c.UserID == claim.UserID {
			return fmt.Errorf("%w: a claim on %s is already pending", types.ErrConflict, claim.EntityID)
		}
	}
	claim.CreatedAt = s.now()
	c := *claim
	s.claims[claim.ID] = &c
	return nil
}

func (s *Store) Claim(_ context.Context, claimID string) (*types.ClaimRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.claims[claimID]
	if !ok {
		return nil, types.ErrClaimNotFound
	}
	out := *c
	return &out, nil
}

func (s *Store) ClaimsByStatus(_ context.Context, status types.ClaimStatus) ([]*types.ClaimRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*types.ClaimRequest, 0)
	for _, c := range s.claims {
		if status == "" || c.Status == status {
			cc := *c
			out = append(out, &cc)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) PendingClaimExists(_ context.Context, entityID, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.claims {
		if c.Status == types.ClaimStatusPending && c.EntityID == entityID && c.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) ResolveClaim(_ context.Context, claim *types.ClaimRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.claims[claim.ID]
	if !ok {
		return types.ErrClaimNotFound
	}
	if current.Status != types.ClaimStatusPending {
		return fmt.Errorf("%w: claim %s is no longer pending", types.ErrConflict, claim.ID)
	}

	var listing *types.Listing
	if claim.Status == types.ClaimStatusApproved {
		listing, ok = s.listings[claim.EntityID]
		if !ok {
			return types.ErrListingNotFound
		}
		if listing.OwnerID != nil {
			return fmt.Errorf("%w: listing %s is already claimed", types.ErrConflict, listing.ID)
		}
	}

	c := *claim
	s.claims[claim.ID] = &c
	if listing != nil {
		owner := claim.UserID
		listing.OwnerID = &owner
		listing.UpdatedAt = s.now()
	}
	return nil
}

// Transitions

func (s *Store) RecordTransition(_ context.Context, transition *types.StatusTransition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	transition.ID = utils.NewID()
	transition.CreatedAt = s.now()
	c := *transition
	s.transitions = append(s.transitions, &c)
	return nil
}

func (s *Store) TransitionsByListing(_ context.Context, listingID string) ([]*types.StatusTransition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*types.StatusTransition, 0)
	for _, t := range s.transitions {
		if t.ListingID == listingID {
			c := *t
			out = append(out, &c)
		}
	}
	return out, nil
}
