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

var listingColumns = utils.Columns(types.Listing{})

// filterable is the set of columns Filter accepts as match keys.
var filterable = func() map[string]bool {
	out := make(map[string]bool, len(listingColumns))
	for _, c := range listingColumns {
		out[c] = c != "attributes"
	}
	return out
}()

type ListingRepository struct {
	pool *pgxpool.Pool
}

func NewListingRepository(pool *pgxpool.Pool) *ListingRepository {
	return &ListingRepository{pool: pool}
}

func listingsQuery(kind types.ListingKind, match map[string]any, sort string) (string, []any, error) {
	spec, err := ParseSort(sort)
	if err != nil {
		return "", nil, err
	}

	where := sq.Eq{"kind": kind}
	for k, v := range match {
		if !filterable[k] {
			return "", nil, types.FieldError(k, fmt.Sprintf("cannot filter listings by %q", k))
		}
		where[k] = v
	}

	query, args, err := psql().
		Select(listingColumns...).
		From(listingTableName).
		Where(where).
		OrderBy(spec.OrderBy()...).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate listings query: %w", err)
	}

	return query, args, nil
}

// List returns every listing of kind in sort order.
func (r *ListingRepository) List(ctx context.Context, kind types.ListingKind, sort string) ([]*types.Listing, error) {
	return r.Filter(ctx, kind, nil, sort)
}

// Filter returns the listings of kind whose columns equal every value in
// match.
func (r *ListingRepository) Filter(ctx context.Context, kind types.ListingKind, match map[string]any, sort string) ([]*types.Listing, error) {
	query, args, err := listingsQuery(kind, match, sort)
	if err != nil {
		return nil, err
	}

	listings := make([]*types.Listing, 0)
	err = pgxscan.Select(ctx, r.pool, &listings, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s listings: %w", kind, err)
	}

	return listings, nil
}

// ListingsByOwner returns kind listings owned by userID, falling back to the
// creator for unclaimed rows.
func (r *ListingRepository) ListingsByOwner(ctx context.Context, kind types.ListingKind, userID string) ([]*types.Listing, error) {
	query, args, err := psql().
		Select(listingColumns...).
		From(listingTableName).
		Where(sq.Eq{"kind": kind}).
		Where(sq.Or{
			sq.Eq{"owner_id": userID},
			sq.And{sq.Eq{"owner_id": nil}, sq.Eq{"created_by": userID}},
		}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate owner listings query: %w", err)
	}

	listings := make([]*types.Listing, 0)
	err = pgxscan.Select(ctx, r.pool, &listings, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listings for owner %s: %w", userID, err)
	}

	return listings, nil
}

func (r *ListingRepository) Listing(ctx context.Context, listingID string) (*types.Listing, error) {
	query, args, err := psql().
		Select(listingColumns...).
		From(listingTableName).
		Where(sq.Eq{"id": listingID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate listing query: %w", err)
	}

	var listing = new(types.Listing)
	err = pgxscan.Get(ctx, r.pool, listing, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to fetch listing %s: %w", listingID, err)
	}

	return listing, nil
}

func (r *ListingRepository) SlugExists(ctx context.Context, kind types.ListingKind, slug, exceptID string) (bool, error) {
	query, args, err := slugExistsQuery(kind, slug, exceptID)
	if err != nil {
		return false, err
	}

	var exists bool
	err = r.pool.QueryRow(ctx, query, args...).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check slug %q: %w", slug, err)
	}

	return exists, nil
}

func slugExistsQuery(kind types.ListingKind, slug, exceptID string) (string, []any, error) {
	builder := psql().
		Select("1").
		From(listingTableName).
		Where(sq.Eq{"kind": kind, "slug": slug}).
		Prefix("SELECT EXISTS (").
		Suffix(")")

	if exceptID != "" {
		builder = builder.Where(sq.NotEq{"id": exceptID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate slug exists query: %w", err)
	}
	return query, args, nil
}

func (r *ListingRepository) CreateListing(ctx context.Context, listing *types.Listing) error {

	now := time.Now()
	if listing.ID == "" {
		listing.ID = utils.NewID()
	}
	listing.CreatedAt = now
	listing.UpdatedAt = now

	query, args, err := psql().Insert(listingTableName).SetMap(utils.ColumnValues(listing)).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert listing query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return conflictOr(err, "failed to create listing")

}

// UpdateListing writes fields (column -> value) and returns the stored row.
// Last write wins for non-status fields.
func (r *ListingRepository) UpdateListing(ctx context.Context, listingID string, fields map[string]any) (*types.Listing, error) {
	query, args, err := updateListingQuery(listingID, fields, time.Now())
	if err != nil {
		return nil, err
	}

	var listing = new(types.Listing)
	err = pgxscan.Get(ctx, r.pool, listing, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrListingNotFound
		}
		return nil, conflictOr(err, fmt.Sprintf("failed to update listing %s", listingID))
	}

	return listing, nil
}

func updateListingQuery(listingID string, fields map[string]any, now time.Time) (string, []any, error) {
	set := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		switch k {
		case "id", "kind", "status", "owner_id", "created_by", "created_at":
			return "", nil, types.FieldError(k, fmt.Sprintf("%s cannot be changed by an update", k))
		}
		if !filterable[k] && k != "attributes" {
			return "", nil, types.FieldError(k, fmt.Sprintf("unknown listing field %q", k))
		}
		set[k] = v
	}
	set["updated_at"] = now

	query, args, err := psql().
		Update(listingTableName).
		SetMap(set).
		Where(sq.Eq{"id": listingID}).
		Suffix("RETURNING " + strings.Join(listingColumns, ", ")).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate update listing query for listing %s: %w", listingID, err)
	}
	return query, args, nil
}

// UpdateStatus moves a listing from one status to another and touches no
// other column. The write only lands if the row is still in from, so two
// moderators acting at once can't silently overwrite each other.
func (r *ListingRepository) UpdateStatus(ctx context.Context, listingID string, from, to types.ListingStatus) error {

	query, args, err := psql().
		Update(listingTableName).
		Set("status", to).
		Where(sq.Eq{"id": listingID, "status": from}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate status update query for listing %s: %w", listingID, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update status of listing %s: %w", listingID, err)
	}

	if tag.RowsAffected() == 0 {
		if _, err := r.Listing(ctx, listingID); err != nil {
			return err
		}
		return fmt.Errorf("%w: listing %s is no longer %s", types.ErrConflict, listingID, from)
	}

	return nil
}

func (r *ListingRepository) DeleteListing(ctx context.Context, listingID string) error {

	query, args, err := psql().Delete(listingTableName).Where(sq.Eq{"id": listingID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete listing query for listing %s: %w", listingID, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete listing %s: %w", listingID, err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrListingNotFound
	}

	return nil
}

type kindCount struct {
	Kind  types.ListingKind `db:"kind"`
	Count int               `db:"count"`
}

// CountByStatus returns how many listings of each kind sit in status.
func (r *ListingRepository) CountByStatus(ctx context.Context, status types.ListingStatus) (map[types.ListingKind]int, error) {
	query, args, err := psql().
		Select("kind", "count(*) AS count").
		From(listingTableName).
		Where(sq.Eq{"status": status}).
		GroupBy("kind").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate count query: %w", err)
	}

	var rows []*kindCount
	err = pgxscan.Select(ctx, r.pool, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count %s listings: %w", status, err)
	}

	out := make(map[types.ListingKind]int, len(rows))
	for _, row := range rows {
		out[row.Kind] = row.Count
	}
	return out, nil
}
