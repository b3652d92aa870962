package directory

import (
	"context"
	"errors"
	"strings"

	"countyconnect/internal/slug"
	"countyconnect/pkg/types"
)

// EnsureUser returns the local row for an authenticated subject, creating
// it on first sight.
func (s *Service) EnsureUser(ctx context.Context, userID, email string) (*types.User, error) {
	user, err := s.users.User(ctx, userID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, types.ErrNotFound) {
		return nil, err
	}

	user, err = s.users.UpsertIdentity(ctx, userID, email)
	if err != nil {
		return nil, err
	}

	s.logger.WithField("user_id", userID).Info("user registered")
	return user, nil
}

func (s *Service) Me(ctx context.Context, actor *types.User) (*types.User, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	return s.users.User(ctx, actor.ID)
}

// UpdateMe edits the caller's own profile. An empty preferred_town_id
// clears the preference.
func (s *Service) UpdateMe(ctx context.Context, actor *types.User, input types.UserUpdate) (*types.User, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	if err := s.check(input); err != nil {
		return nil, err
	}

	fields := make(map[string]any)
	setOptional(fields, "full_name", input.FullName)

	if input.PreferredTownID != nil {
		townID := strings.TrimSpace(*input.PreferredTownID)
		if townID == "" {
			fields["preferred_town_id"] = nil
		} else {
			town, err := s.towns.Town(ctx, townID)
			if err != nil {
				if errors.Is(err, types.ErrNotFound) {
					return nil, types.FieldError("preferred_town_id", "unknown town")
				}
				return nil, err
			}
			fields["preferred_town_id"] = town.ID
		}
	}

	if len(fields) == 0 {
		return s.users.User(ctx, actor.ID)
	}

	return s.users.UpdateUser(ctx, actor.ID, fields)
}

func (s *Service) Towns(ctx context.Context) ([]*types.Town, error) {
	return s.towns.AllTowns(ctx)
}

func (s *Service) Town(ctx context.Context, townID string) (*types.Town, error) {
	return s.towns.Town(ctx, townID)
}

func (s *Service) CreateTown(ctx context.Context, actor *types.User, input types.TownInput) (*types.Town, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := s.check(input); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, types.FieldError("name", "name is required")
	}

	sl, err := slug.FromInput(input.Slug, name)
	if err != nil {
		return nil, err
	}

	_, err = s.towns.TownBySlug(ctx, sl)
	switch {
	case err == nil:
		return nil, slugConflict(sl)
	case !errors.Is(err, types.ErrNotFound):
		return nil, err
	}

	town := &types.Town{Name: name, Slug: sl}
	if err := s.towns.CreateTown(ctx, town); err != nil {
		return nil, err
	}

	s.logger.WithField("town_id", town.ID).WithField("slug", sl).Info("town created")
	return town, nil
}
