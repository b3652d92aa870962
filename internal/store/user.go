package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"countyconnect/internal/utils"
	"countyconnect/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

var userColumns = utils.Columns(types.User{})

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) User(ctx context.Context, userID string) (*types.User, error) {
	query, args, err := psql().
		Select(userColumns...).
		From(userTableName).
		Where(sq.Eq{"id": userID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user query: %w", err)
	}

	var user types.User
	err = pgxscan.Get(ctx, r.pool, &user, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	return &user, nil
}

// UpdateUser writes the given columns and returns the stored row.
func (r *UserRepository) UpdateUser(ctx context.Context, userID string, fields map[string]any) (*types.User, error) {
	set := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		switch k {
		case "full_name", "preferred_town_id", "email":
			set[k] = v
		default:
			return nil, types.FieldError(k, fmt.Sprintf("%s cannot be changed", k))
		}
	}
	set["updated_at"] = time.Now()

	query, args, err := psql().
		Update(userTableName).
		SetMap(set).
		Where(sq.Eq{"id": userID}).
		Suffix("RETURNING " + strings.Join(userColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate update user query: %w", err)
	}

	var user types.User
	err = pgxscan.Get(ctx, r.pool, &user, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return &user, nil
}

// UpsertIdentity makes sure a row exists for an authenticated subject. Role
// and preferences already on the row are kept.
func (r *UserRepository) UpsertIdentity(ctx context.Context, userID, email string) (*types.User, error) {
	now := time.Now()

	var emailPtr *string
	trimmedEmail := strings.TrimSpace(email)
	if trimmedEmail != "" {
		emailPtr = &trimmedEmail
	}

	query, args, err := psql().
		Insert(userTableName).
		Columns("id", "email", "role", "created_at", "updated_at").
		Values(userID, emailPtr, types.UserRoleMember, now, now).
		Suffix("ON CONFLICT (id) DO UPDATE SET email = COALESCE(EXCLUDED.email, users.email), updated_at = EXCLUDED.updated_at RETURNING " + strings.Join(userColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate upsert identity user query: %w", err)
	}

	var user types.User
	err = pgxscan.Get(ctx, r.pool, &user, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user identity fields: %w", err)
	}

	return &user, nil
}

// UpsertUser is used by the seeder.
func (r *UserRepository) UpsertUser(ctx context.Context, user *types.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	query, args, err := psql().
		Insert(userTableName).
		SetMap(utils.ColumnValues(user)).
		Suffix("ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email, full_name = EXCLUDED.full_name, role = EXCLUDED.role, preferred_town_id = EXCLUDED.preferred_town_id, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate upsert user query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to upsert user")
}
