package store

import (
	"context"
	"fmt"
	"time"

	"countyconnect/internal/utils"
	"countyconnect/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var claimColumns = utils.Columns(types.ClaimRequest{})

type ClaimRepository struct {
	pool *pgxpool.Pool
}

func NewClaimRepository(pool *pgxpool.Pool) *ClaimRepository {
	return &ClaimRepository{pool: pool}
}

func (r *ClaimRepository) CreateClaim(ctx context.Context, claim *types.ClaimRequest) error {
	if claim.ID == "" {
		claim.ID = utils.NewID()
	}
	claim.CreatedAt = time.Now()

	query, args, err := psql().
		Insert(claimTableName).
		SetMap(utils.ColumnValues(claim)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate create claim query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return conflictOr(err, "failed to create claim request")
}

func (r *ClaimRepository) Claim(ctx context.Context, claimID string) (*types.ClaimRequest, error) {
	query, args, err := psql().
		Select(claimColumns...).
		From(claimTableName).
		Where(sq.Eq{"id": claimID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate claim query: %w", err)
	}

	var claim types.ClaimRequest
	err = pgxscan.Get(ctx, r.pool, &claim, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrClaimNotFound
		}
		return nil, fmt.Errorf("failed to fetch claim request %s: %w", claimID, err)
	}

	return &claim, nil
}

// ClaimsByStatus lists claims oldest first. An empty status returns all.
func (r *ClaimRepository) ClaimsByStatus(ctx context.Context, status types.ClaimStatus) ([]*types.ClaimRequest, error) {
	builder := psql().
		Select(claimColumns...).
		From(claimTableName).
		OrderBy("created_at ASC")
	if status != "" {
		builder = builder.Where(sq.Eq{"status": status})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate claims query: %w", err)
	}

	claims := make([]*types.ClaimRequest, 0)
	err = pgxscan.Select(ctx, r.pool, &claims, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch claim requests: %w", err)
	}

	return claims, nil
}

func (r *ClaimRepository) PendingClaimExists(ctx context.Context, entityID, userID string) (bool, error) {
	query, args, err := psql().
		Select("1").
		From(claimTableName).
		Where(sq.Eq{"entity_id": entityID, "user_id": userID, "status": types.ClaimStatusPending}).
		Prefix("SELECT EXISTS (").
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to generate pending claim query: %w", err)
	}

	var exists bool
	err = r.pool.QueryRow(ctx, query, args...).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check pending claims: %w", err)
	}
	return exists, nil
}

// ResolveClaim stores the decision on a pending claim. Approval hands the
// listing to the requester in the same transaction, but only while the
// listing has no owner. A claim that was resolved by someone else first, or
// a listing that was claimed in the meantime, yields types.ErrConflict.
func (r *ClaimRepository) ResolveClaim(ctx context.Context, claim *types.ClaimRequest) error {

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin claim transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query, args, err := psql().
		Update(claimTableName).
		SetMap(map[string]any{
			"status":           claim.Status,
			"rejection_reason": claim.RejectionReason,
			"resolved_at":      claim.ResolvedAt,
			"resolved_by":      claim.ResolvedBy,
		}).
		Where(sq.Eq{"id": claim.ID, "status": types.ClaimStatusPending}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate resolve claim query: %w", err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to resolve claim %s: %w", claim.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: claim %s is no longer pending", types.ErrConflict, claim.ID)
	}

	if claim.Status == types.ClaimStatusApproved {
		query, args, err = psql().
			Update(listingTableName).
			Set("owner_id", claim.UserID).
			Set("updated_at", time.Now()).
			Where(sq.Eq{"id": claim.EntityID, "owner_id": nil}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to generate set owner query: %w", err)
		}

		tag, err = tx.Exec(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to set owner of listing %s: %w", claim.EntityID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: listing %s is missing or already claimed", types.ErrConflict, claim.EntityID)
		}
	}

	return utils.ErrorWrapOrNil(tx.Commit(ctx), "failed to commit claim resolution")
}
