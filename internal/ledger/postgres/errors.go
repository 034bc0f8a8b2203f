package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrRunExists reports an insert of a run id the ledger already holds.
// Run ids are the table's primary key; a duplicate means the caller
// reused an id, not that the database is unhealthy.
var ErrRunExists = errors.New("provisioning run already recorded")

const (
	uniqueViolationCode = "23505"
	runsPKeyConstraint  = "provision_runs_pkey"
)

// recordError maps a failed ledger insert onto the error the caller
// can act on. The primary key is the only constraint an insert into
// the runs table can trip; everything else stays a wrapped driver
// error.
func recordError(runID string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) &&
		pgErr.Code == uniqueViolationCode &&
		pgErr.ConstraintName == runsPKeyConstraint {
		return fmt.Errorf("run %s: %w", runID, ErrRunExists)
	}
	return fmt.Errorf("failed to record provisioning run: %w", err)
}
