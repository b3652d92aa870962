package store

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"countyconnect/pkg/types"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListingsQuery(t *testing.T) {
	query, args, err := listingsQuery(types.ListingKindBulletinPost, map[string]any{"status": types.ListingStatusActive}, "title")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(query, "SELECT id, kind, title, slug"))
	assert.Contains(t, query, "FROM listings")
	assert.Contains(t, query, "WHERE kind = $1 AND status = $2")
	assert.True(t, strings.HasSuffix(query, "ORDER BY title ASC, id ASC"))
	assert.Equal(t, []any{types.ListingKindBulletinPost, types.ListingStatusActive}, args)
}

func TestListingsQueryDefaultsToNewestFirst(t *testing.T) {
	query, _, err := listingsQuery(types.ListingKindChurch, nil, "")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(query, "ORDER BY created_at DESC, id DESC"))
}

func TestListingsQueryRejectsUnknownColumns(t *testing.T) {
	_, _, err := listingsQuery(types.ListingKindChurch, map[string]any{"1=1 OR status": "x"}, "")
	assert.ErrorIs(t, err, types.ErrValidation)

	_, _, err = listingsQuery(types.ListingKindChurch, map[string]any{"attributes": "x"}, "")
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestSlugExistsQuery(t *testing.T) {
	query, args, err := slugExistsQuery(types.ListingKindStore, "joes-diner", "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(query, "SELECT EXISTS ("))
	assert.True(t, strings.HasSuffix(query, ")"))
	assert.Contains(t, query, "WHERE kind = $1 AND slug = $2")
	assert.NotContains(t, query, "id <>")
	assert.Equal(t, []any{types.ListingKindStore, "joes-diner"}, args)

	query, args, err = slugExistsQuery(types.ListingKindStore, "joes-diner", "abc")
	require.NoError(t, err)
	assert.Contains(t, query, "id <> $3")
	assert.Equal(t, "abc", args[2])
}

func TestUpdateListingQuery(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	query, args, err := updateListingQuery("abc", map[string]any{"title": "Renamed"}, now)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(query, "UPDATE listings SET title = $1, updated_at = $2 WHERE id = $3"))
	assert.Contains(t, query, "RETURNING id, kind, title")
	assert.Equal(t, []any{"Renamed", now, "abc"}, args)
}

func TestUpdateListingQueryRefusesProtectedColumns(t *testing.T) {
	for _, column := range []string{"status", "owner_id", "created_by", "kind", "id"} {
		_, _, err := updateListingQuery("abc", map[string]any{column: "x"}, time.Now())
		assert.ErrorIs(t, err, types.ErrValidation, column)
	}

	_, _, err := updateListingQuery("abc", map[string]any{"nope": "x"}, time.Now())
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestConflictOr(t *testing.T) {
	assert.NoError(t, conflictOr(nil, "x"))

	unique := &pgconn.PgError{Code: pgUniqueViolation, TableName: "listings", ConstraintName: "listings_kind_slug_key"}
	err := conflictOr(fmt.Errorf("exec: %w", unique), "failed to create listing")
	assert.ErrorIs(t, err, types.ErrConflict)

	other := &pgconn.PgError{Code: "23503"}
	err = conflictOr(other, "failed to create listing")
	assert.NotErrorIs(t, err, types.ErrConflict)
	assert.ErrorContains(t, err, "failed to create listing")
}
