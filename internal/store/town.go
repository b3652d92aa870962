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

var townColumns = utils.Columns(types.Town{})

type TownRepository struct {
	pool *pgxpool.Pool
}

func NewTownRepository(pool *pgxpool.Pool) *TownRepository {
	return &TownRepository{pool: pool}
}

func (r *TownRepository) AllTowns(ctx context.Context) ([]*types.Town, error) {
	query, args, err := psql().
		Select(townColumns...).
		From(townTableName).
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate towns query: %w", err)
	}

	towns := make([]*types.Town, 0)
	err = pgxscan.Select(ctx, r.pool, &towns, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch towns: %w", err)
	}

	return towns, nil
}

func (r *TownRepository) Town(ctx context.Context, townID string) (*types.Town, error) {
	return r.townBy(ctx, sq.Eq{"id": townID})
}

func (r *TownRepository) TownBySlug(ctx context.Context, slug string) (*types.Town, error) {
	return r.townBy(ctx, sq.Eq{"slug": slug})
}

func (r *TownRepository) townBy(ctx context.Context, where sq.Eq) (*types.Town, error) {
	query, args, err := psql().
		Select(townColumns...).
		From(townTableName).
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate town query: %w", err)
	}

	var town types.Town
	err = pgxscan.Get(ctx, r.pool, &town, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrTownNotFound
		}
		return nil, fmt.Errorf("failed to fetch town: %w", err)
	}

	return &town, nil
}

func (r *TownRepository) CreateTown(ctx context.Context, town *types.Town) error {
	if town.ID == "" {
		town.ID = utils.NewID()
	}
	town.CreatedAt = time.Now()

	query, args, err := psql().
		Insert(townTableName).
		SetMap(utils.ColumnValues(town)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate create town query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return conflictOr(err, "failed to create town")
}

// UpsertTown is used by the seeder so reruns converge on the same rows.
func (r *TownRepository) UpsertTown(ctx context.Context, town *types.Town) error {
	if town.CreatedAt.IsZero() {
		town.CreatedAt = time.Now()
	}

	query, args, err := psql().
		Insert(townTableName).
		SetMap(utils.ColumnValues(town)).
		Suffix("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, slug = EXCLUDED.slug").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate upsert town query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return conflictOr(err, "failed to upsert town")
}
