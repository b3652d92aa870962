package store

import (
	"context"
	"fmt"
	"time"

	"countyconnect/internal/utils"
	"countyconnect/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

var transitionColumns = utils.Columns(types.StatusTransition{})

type TransitionRepository struct {
	pool *pgxpool.Pool
}

func NewTransitionRepository(pool *pgxpool.Pool) *TransitionRepository {
	return &TransitionRepository{pool: pool}
}

// RecordTransition appends to the audit log. Rows are never updated.
func (r *TransitionRepository) RecordTransition(ctx context.Context, transition *types.StatusTransition) error {
	transition.ID = utils.NewID()
	transition.CreatedAt = time.Now()

	query, args, err := psql().
		Insert(transitionTableName).
		SetMap(utils.ColumnValues(transition)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert transition query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to record transition")
}

// TransitionsByListing returns the audit log for a listing, oldest first
func (r *TransitionRepository) TransitionsByListing(ctx context.Context, listingID string) ([]*types.StatusTransition, error) {
	query, args, err := psql().
		Select(transitionColumns...).
		From(transitionTableName).
		Where(sq.Eq{"listing_id": listingID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate transitions query: %w", err)
	}

	transitions := make([]*types.StatusTransition, 0)
	err = pgxscan.Select(ctx, r.pool, &transitions, query, args...)
	if err != nil {
		return nil, utils.ErrorWrapOrNil(err, "failed to get transitions")
	}

	return transitions, nil
}
