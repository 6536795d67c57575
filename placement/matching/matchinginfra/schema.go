package matchinginfra

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schemaLockKey serializes EnsureSchema across instances starting together
const schemaLockKey int64 = 746295201

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS matches (
		id                 TEXT PRIMARY KEY,
		worker_id          TEXT NOT NULL,
		vacancy_id         TEXT NOT NULL,
		company_id         TEXT NOT NULL DEFAULT '',
		worker_name        TEXT NOT NULL DEFAULT '',
		vacancy_title      TEXT NOT NULL DEFAULT '',
		score              NUMERIC(5,2) NOT NULL CHECK (score >= 0 AND score <= 100),
		breakdown          JSONB NOT NULL DEFAULT '{}'::jsonb,
		status             TEXT NOT NULL,
		observations       TEXT NOT NULL DEFAULT '',
		linked_proposal_id TEXT,
		approved_at        TIMESTAMPTZ,
		hired_at           TIMESTAMPTZ,
		created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT matches_worker_vacancy_key UNIQUE (worker_id, vacancy_id)
	)`,
	`CREATE INDEX IF NOT EXISTS matches_status_idx ON matches (status)`,
	`CREATE INDEX IF NOT EXISTS matches_company_idx ON matches (company_id)`,
	`CREATE INDEX IF NOT EXISTS matches_vacancy_idx ON matches (vacancy_id)`,
	`CREATE INDEX IF NOT EXISTS matches_score_idx ON matches (score DESC, created_at ASC)`,
}

// EnsureSchema creates the matches table and its indexes when missing. The
// DDL runs in one transaction holding a transaction-scoped advisory lock, so
// the lock is released on commit or rollback by the connection that took it.
func EnsureSchema(ctx context.Context, db *sqlx.DB) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, schemaLockKey); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	for _, stmt := range schemaStatements {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}
