// Package directory implements the County Connect use cases: public and
// owner listing pages, moderation, ownership claims, towns and the caller's
// own profile. HTTP handlers and CLI commands call into it; it never talks
// to a database directly.
package directory

import (
	"context"

	"countyconnect/internal/expiry"
	"countyconnect/pkg/types"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

type ListingStore interface {
	Filter(ctx context.Context, kind types.ListingKind, match map[string]any, sort string) ([]*types.Listing, error)
	ListingsByOwner(ctx context.Context, kind types.ListingKind, userID string) ([]*types.Listing, error)
	Listing(ctx context.Context, listingID string) (*types.Listing, error)
	SlugExists(ctx context.Context, kind types.ListingKind, slug, exceptID string) (bool, error)
	CreateListing(ctx context.Context, listing *types.Listing) error
	UpdateListing(ctx context.Context, listingID string, fields map[string]any) (*types.Listing, error)
	UpdateStatus(ctx context.Context, listingID string, from, to types.ListingStatus) error
	DeleteListing(ctx context.Context, listingID string) error
	CountByStatus(ctx context.Context, status types.ListingStatus) (map[types.ListingKind]int, error)
}

type TownStore interface {
	AllTowns(ctx context.Context) ([]*types.Town, error)
	Town(ctx context.Context, townID string) (*types.Town, error)
	TownBySlug(ctx context.Context, slug string) (*types.Town, error)
	CreateTown(ctx context.Context, town *types.Town) error
}

type UserStore interface {
	User(ctx context.Context, userID string) (*types.User, error)
	UpsertIdentity(ctx context.Context, userID, email string) (*types.User, error)
	UpdateUser(ctx context.Context, userID string, fields map[string]any) (*types.User, error)
}

type ClaimStore interface {
	CreateClaim(ctx context.Context, claim *types.ClaimRequest) error
	Claim(ctx context.Context, claimID string) (*types.ClaimRequest, error)
	ClaimsByStatus(ctx context.Context, status types.ClaimStatus) ([]*types.ClaimRequest, error)
	PendingClaimExists(ctx context.Context, entityID, userID string) (bool, error)
	ResolveClaim(ctx context.Context, claim *types.ClaimRequest) error
}

type TransitionLog interface {
	RecordTransition(ctx context.Context, transition *types.StatusTransition) error
	TransitionsByListing(ctx context.Context, listingID string) ([]*types.StatusTransition, error)
}

// ProfileLookup fills in name and email from the identity provider.
type ProfileLookup interface {
	Profile(ctx context.Context, userID string) (*types.Profile, error)
}

type Stores struct {
	Listings    ListingStore
	Towns       TownStore
	Users       UserStore
	Claims      ClaimStore
	Transitions TransitionLog
}

type Service struct {
	logger      *logrus.Logger
	listings    ListingStore
	towns       TownStore
	users       UserStore
	claims      ClaimStore
	transitions TransitionLog
	profiles    ProfileLookup
	clock       *expiry.Calculator
	validate    *validator.Validate
}

// New wires a Service. profiles may be nil when no identity provider is
// configured.
func New(logger *logrus.Logger, stores Stores, profiles ProfileLookup, clock *expiry.Calculator) *Service {
	if clock == nil {
		clock = expiry.New()
	}
	return &Service{
		logger:      logger,
		listings:    stores.Listings,
		towns:       stores.Towns,
		users:       stores.Users,
		claims:      stores.Claims,
		transitions: stores.Transitions,
		profiles:    profiles,
		clock:       clock,
		validate:    newValidator(),
	}
}

func requireUser(actor *types.User) error {
	if actor == nil || actor.ID == "" {
		return types.ErrNotAuthenticated
	}
	return nil
}

func requireAdmin(actor *types.User) error {
	if err := requireUser(actor); err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return types.ErrPermissionDenied
	}
	return nil
}
