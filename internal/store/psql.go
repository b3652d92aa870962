package store

import (
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"

	"countyconnect/pkg/types"
)

const (
	listingTableName    = "listings"
	townTableName       = "towns"
	userTableName       = "users"
	claimTableName      = "claim_requests"
	transitionTableName = "status_transitions"
)

const pgUniqueViolation = "23505"

func psql() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

// conflictOr maps unique violations to types.ErrConflict and wraps anything
// else with msg.
func conflictOr(err error, msg string) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %s violates %s", types.ErrConflict, pgErr.TableName, pgErr.ConstraintName)
	}

	return fmt.Errorf("%s: %w", msg, err)
}
