package database

import (
	"context"
	"fmt"

	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/config"
)

// schema holds the engine's persistent tables: the append-only calibration
// curve store, the prediction log the fitting job reads, and the settled
// tickets feeding threshold re-estimation.
const schema = `
CREATE TABLE IF NOT EXISTS calibration_curves (
	id UUID PRIMARY KEY,
	outcome TEXT NOT NULL CHECK (outcome IN ('H','D','A')),
	league_id TEXT NOT NULL DEFAULT '',
	model_version TEXT NOT NULL,
	knots JSONB NOT NULL,
	sample_count INTEGER NOT NULL,
	active BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE UNIQUE INDEX IF NOT EXISTS calibration_curves_one_active
	ON calibration_curves (outcome, league_id, model_version)
	WHERE active;

CREATE TABLE IF NOT EXISTS prediction_log (
	id BIGSERIAL PRIMARY KEY,
	fixture_id UUID NOT NULL,
	league_id TEXT NOT NULL DEFAULT '',
	model_version TEXT NOT NULL,
	outcome TEXT NOT NULL CHECK (outcome IN ('H','D','A')),
	predicted DOUBLE PRECISION NOT NULL,
	realized SMALLINT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS prediction_log_scope
	ON prediction_log (outcome, league_id, model_version)
	WHERE realized IS NOT NULL;

CREATE TABLE IF NOT EXISTS settled_tickets (
	id UUID PRIMARY KEY,
	score DOUBLE PRECISION NOT NULL,
	won BOOLEAN NOT NULL,
	settled_at TIMESTAMPTZ NOT NULL
);
`

// Initialize creates a connection pool and ensures the schema exists. The
// partial unique index doubles as a database-level guard on the
// one-active-curve-per-scope invariant.
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if _, err := db.pool.Exec(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}
	return db, nil
}
