package database

import (
	"context"
	"fmt"

	"court-reservation-api/core/logger"
)

// schema is applied in order at startup. Every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		username   VARCHAR(64) PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS teams (
		id           VARCHAR(32) PRIMARY KEY,
		name         VARCHAR(128) NOT NULL,
		slug         VARCHAR(160) NOT NULL,
		member_count INT NOT NULL,
		members      TEXT[] NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_teams_members ON teams USING GIN (members)`,
	`CREATE TABLE IF NOT EXISTS court_slots (
		slot_date  VARCHAR(10) NOT NULL,
		time_slot  VARCHAR(16) NOT NULL,
		venues     TEXT[] NOT NULL,
		waitlist   TEXT[] NOT NULL DEFAULT '{}',
		version    BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (slot_date, time_slot)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_court_slots_venues ON court_slots USING GIN (venues)`,
	`CREATE INDEX IF NOT EXISTS idx_court_slots_waitlist ON court_slots USING GIN (waitlist)`,
}

func Migrate(ctx context.Context, db IDatabase) error {
	for i, stmt := range schema {
		if err := db.ExecContext(ctx, stmt); err != nil {
			logger.Error("Database:Migrate", "step", i, "error", err)
			return fmt.Errorf("apply schema step %d: %w", i, err)
		}
	}
	logger.Info("Database:Migrate:Done", "steps", len(schema))
	return nil
}
