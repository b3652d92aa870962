package seed

import (
	"context"
	"errors"
	"fmt"

	"countyconnect/internal/utils"
	"countyconnect/pkg/types"
)

type UserRepository interface {
	User(ctx context.Context, userID string) (*types.User, error)
	UpsertUser(ctx context.Context, user *types.User) error
}

type fakeUserSeed struct {
	ID       string
	Email    string
	FullName string
	Role     types.UserRole
	TownID   string
}

// Demo accounts. Their IDs stand in for Cognito subjects, so they can only
// sign in against a user pool that uses the same values.
var fakeUsers = []fakeUserSeed{
	{ID: "11111111-1111-1111-1111-111111111111", Email: "clerk+seed1@example.com", FullName: "County Clerk", Role: types.UserRoleAdmin},
	{ID: "22222222-2222-2222-2222-222222222222", Email: "ava.williams+seed2@example.com", FullName: "Ava Williams", Role: types.UserRoleMember, TownID: Towns[0].ID},
	{ID: "33333333-3333-3333-3333-333333333333", Email: "liam.johnson+seed3@example.com", FullName: "Liam Johnson", Role: types.UserRoleMember, TownID: Towns[1].ID},
	{ID: "44444444-4444-4444-4444-444444444444", Email: "mia.davis+seed4@example.com", FullName: "Mia Davis", Role: types.UserRoleMember},
}

// SeedFakeUsers creates the demo accounts that don't exist yet. Existing
// rows are left alone so role changes made through the app survive.
func SeedFakeUsers(ctx context.Context, repo UserRepository) (int, error) {
	seeded := 0
	for _, fakeUser := range fakeUsers {
		_, err := repo.User(ctx, fakeUser.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, types.ErrUserNotFound) {
			return seeded, fmt.Errorf("failed to fetch fake user %s: %w", fakeUser.ID, err)
		}

		user := &types.User{
			ID:       fakeUser.ID,
			Email:    utils.StringPtr(fakeUser.Email),
			FullName: utils.StringPtr(fakeUser.FullName),
			Role:     fakeUser.Role,
		}
		if fakeUser.TownID != "" {
			user.PreferredTownID = utils.StringPtr(fakeUser.TownID)
		}

		if err := repo.UpsertUser(ctx, user); err != nil {
			return seeded, fmt.Errorf("failed to create fake user %s: %w", fakeUser.ID, err)
		}
		seeded++
	}

	return seeded, nil
}

// PromoteAdmin grants the admin role to an existing or not yet seen user.
func PromoteAdmin(ctx context.Context, repo UserRepository, userID string) error {
	user, err := repo.User(ctx, userID)
	if err != nil {
		if !errors.Is(err, types.ErrUserNotFound) {
			return fmt.Errorf("failed to fetch user %s: %w", userID, err)
		}
		user = &types.User{ID: userID}
	}

	user.Role = types.UserRoleAdmin
	return repo.UpsertUser(ctx, user)
}
