package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"court-reservation-api/core/database"
	"court-reservation-api/core/logger"
	"court-reservation-api/modules/reservation/entity"

	"github.com/lib/pq"
)

type slotRow struct {
	Date      string         `db:"slot_date"`
	TimeSlot  string         `db:"time_slot"`
	Venues    pq.StringArray `db:"venues"`
	Waitlist  pq.StringArray `db:"waitlist"`
	Version   int64          `db:"version"`
	UpdatedAt time.Time      `db:"updated_at"`
}

func (r slotRow) toEntity(venues int) *entity.Slot {
	slot := &entity.Slot{
		Date:      r.Date,
		TimeSlot:  r.TimeSlot,
		Venues:    append([]string(nil), r.Venues...),
		Waitlist:  append([]string{}, r.Waitlist...),
		Version:   r.Version,
		UpdatedAt: r.UpdatedAt,
	}
	slot.Normalize(venues)
	return slot
}

// PostgresBackend keeps one row per slot in court_slots and serialises writers
// with SELECT ... FOR UPDATE.
type PostgresBackend struct {
	db database.IDatabase
}

func NewPostgresBackend(db database.IDatabase) *PostgresBackend {
	return &PostgresBackend{db: db}
}

const slotColumns = `slot_date, time_slot, venues, waitlist, version, updated_at`

func (b *PostgresBackend) Load(ctx context.Context, key entity.SlotKey, venues int) (*entity.Slot, error) {
	var row slotRow
	query := `SELECT ` + slotColumns + ` FROM court_slots WHERE slot_date = $1 AND time_slot = $2`
	err := b.db.GetContext(ctx, &row, query, key.Date, key.TimeSlot)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.NewSlot(key, venues), nil
		}
		logger.Error("PostgresBackend:Load", "key", key.String(), "error", err)
		return nil, fmt.Errorf("load slot %s: %w", key, err)
	}
	return row.toEntity(venues), nil
}

func (b *PostgresBackend) Mutate(ctx context.Context, key entity.SlotKey, venues int, fn MutateFunc) (*entity.Slot, error) {
	for i := 0; i < maxConflictRetries; i++ {
		slot, retry, err := b.mutateOnce(ctx, key, venues, fn)
		if err != nil {
			return nil, err
		}
		if !retry {
			return slot, nil
		}
	}
	return nil, fmt.Errorf("mutate slot %s: %w", key, ErrConflict)
}

// mutateOnce reports retry=true when another writer inserted the row first.
func (b *PostgresBackend) mutateOnce(ctx context.Context, key entity.SlotKey, venues int, fn MutateFunc) (*entity.Slot, bool, error) {
	tx, err := b.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var (
		row    slotRow
		slot   *entity.Slot
		exists = true
	)
	query := `SELECT ` + slotColumns + ` FROM court_slots WHERE slot_date = $1 AND time_slot = $2 FOR UPDATE`
	err = tx.GetContext(ctx, &row, query, key.Date, key.TimeSlot)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		exists = false
		slot = entity.NewSlot(key, venues)
	case err != nil:
		logger.Error("PostgresBackend:Mutate:Select", "key", key.String(), "error", err)
		return nil, false, fmt.Errorf("select slot %s: %w", key, err)
	default:
		slot = row.toEntity(venues)
	}

	changed, err := fn(slot)
	if err != nil {
		return nil, false, err
	}
	if !changed {
		return slot, false, nil
	}

	slot.Version++
	slot.UpdatedAt = time.Now().UTC()

	if exists {
		_, err = tx.ExecContext(ctx, `
			UPDATE court_slots
			SET venues = $3, waitlist = $4, version = $5, updated_at = $6
			WHERE slot_date = $1 AND time_slot = $2
		`, key.Date, key.TimeSlot, pq.StringArray(slot.Venues), pq.StringArray(slot.Waitlist), slot.Version, slot.UpdatedAt)
		if err != nil {
			logger.Error("PostgresBackend:Mutate:Update", "key", key.String(), "error", err)
			return nil, false, fmt.Errorf("update slot %s: %w", key, err)
		}
	} else {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO court_slots (`+slotColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (slot_date, time_slot) DO NOTHING
		`, key.Date, key.TimeSlot, pq.StringArray(slot.Venues), pq.StringArray(slot.Waitlist), slot.Version, slot.UpdatedAt)
		if err != nil {
			logger.Error("PostgresBackend:Mutate:Insert", "key", key.String(), "error", err)
			return nil, false, fmt.Errorf("insert slot %s: %w", key, err)
		}
		inserted, err := result.RowsAffected()
		if err != nil {
			return nil, false, fmt.Errorf("insert slot %s: %w", key, err)
		}
		if inserted == 0 {
			return nil, true, nil
		}
	}

	if err := tx.Commit(); err != nil {
		logger.Error("PostgresBackend:Mutate:Commit", "key", key.String(), "error", err)
		return nil, false, fmt.Errorf("commit slot %s: %w", key, err)
	}
	return slot, false, nil
}

func (b *PostgresBackend) list(ctx context.Context, query string, arg any) ([]*entity.Slot, error) {
	var rows []slotRow
	if err := b.db.SelectContext(ctx, &rows, query, arg); err != nil {
		return nil, err
	}
	out := make([]*entity.Slot, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity(len(row.Venues)))
	}
	return out, nil
}

func (b *PostgresBackend) ListByDate(ctx context.Context, date string) ([]*entity.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM court_slots WHERE slot_date = $1 ORDER BY time_slot`
	slots, err := b.list(ctx, query, date)
	if err != nil {
		logger.Error("PostgresBackend:ListByDate", "date", date, "error", err)
		return nil, fmt.Errorf("list slots of %s: %w", date, err)
	}
	return slots, nil
}

func (b *PostgresBackend) ListByTeam(ctx context.Context, teamID string) ([]*entity.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM court_slots
		WHERE $1 = ANY(venues) OR $1 = ANY(waitlist)
		ORDER BY slot_date, time_slot`
	slots, err := b.list(ctx, query, teamID)
	if err != nil {
		logger.Error("PostgresBackend:ListByTeam", "team_id", teamID, "error", err)
		return nil, fmt.Errorf("list slots of team %s: %w", teamID, err)
	}
	return slots, nil
}
