package repository

import (
	"context"
	"testing"
	"time"

	"court-reservation-api/core/database"
	"court-reservation-api/core/metrics"
	"court-reservation-api/modules/reservation/entity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	selectForUpdate = `SELECT .+ FROM court_slots WHERE slot_date = \$1 AND time_slot = \$2 FOR UPDATE`
	insertSlot      = `INSERT INTO court_slots`
	updateSlot      = `UPDATE court_slots\s+SET venues = \$3, waitlist = \$4, version = \$5, updated_at = \$6`
)

var slotRowColumns = []string{"slot_date", "time_slot", "venues", "waitlist", "version", "updated_at"}

func newPostgresTestRepo(t *testing.T) (*SlotRepository, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	db := database.New(sqlx.NewDb(mockDB, "postgres"))
	cfg := testConfig(2)
	cfg.RetryAttempts = 1
	return NewSlotRepository(NewPostgresBackend(db), cfg, metrics.New()), mock
}

func slotRows(venues, waitlist string, version int64) *sqlmock.Rows {
	return sqlmock.NewRows(slotRowColumns).
		AddRow(testKey.Date, testKey.TimeSlot, venues, waitlist, version, time.Now())
}

func TestPostgresBackend_FirstWriteInserts(t *testing.T) {
	repo, mock := newPostgresTestRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(selectForUpdate).
		WithArgs(testKey.Date, testKey.TimeSlot).
		WillReturnRows(sqlmock.NewRows(slotRowColumns))
	mock.ExpectExec(insertSlot).
		WithArgs(testKey.Date, testKey.TimeSlot, sqlmock.AnyArg(), sqlmock.AnyArg(), int64(1), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	v, err := repo.TryAssign(context.Background(), testKey, "A")
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBackend_UpdatesLockedRow(t *testing.T) {
	repo, mock := newPostgresTestRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(selectForUpdate).
		WithArgs(testKey.Date, testKey.TimeSlot).
		WillReturnRows(slotRows("{A}", "{}", 3))
	mock.ExpectExec(updateSlot).
		WithArgs(testKey.Date, testKey.TimeSlot, sqlmock.AnyArg(), sqlmock.AnyArg(), int64(4), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	v, err := repo.TryAssign(context.Background(), testKey, "B")
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBackend_InsertConflictRetries(t *testing.T) {
	repo, mock := newPostgresTestRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(selectForUpdate).
		WithArgs(testKey.Date, testKey.TimeSlot).
		WillReturnRows(sqlmock.NewRows(slotRowColumns))
	mock.ExpectExec(insertSlot).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	mock.ExpectBegin()
	mock.ExpectQuery(selectForUpdate).
		WithArgs(testKey.Date, testKey.TimeSlot).
		WillReturnRows(slotRows("{X}", "{}", 1))
	mock.ExpectExec(updateSlot).
		WithArgs(testKey.Date, testKey.TimeSlot, sqlmock.AnyArg(), sqlmock.AnyArg(), int64(2), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	v, err := repo.TryAssign(context.Background(), testKey, "A")
	require.NoError(t, err)
	assert.Equal(t, 2, v, "the concurrent insert took venue 1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBackend_DomainErrorRollsBack(t *testing.T) {
	repo, mock := newPostgresTestRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(selectForUpdate).
		WithArgs(testKey.Date, testKey.TimeSlot).
		WillReturnRows(slotRows("{A,B}", "{}", 5))
	mock.ExpectRollback()

	_, err := repo.TryAssign(context.Background(), testKey, "C")
	assert.ErrorIs(t, err, entity.ErrSlotFull)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBackend_LoadAndListByTeam(t *testing.T) {
	repo, mock := newPostgresTestRepo(t)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT .+ FROM court_slots WHERE slot_date = \$1 AND time_slot = \$2$`).
		WithArgs(testKey.Date, testKey.TimeSlot).
		WillReturnRows(sqlmock.NewRows(slotRowColumns))
	slot, err := repo.Get(ctx, testKey)
	require.NoError(t, err)
	assert.Equal(t, []string{"", ""}, slot.Venues)
	assert.Empty(t, slot.Waitlist)

	mock.ExpectQuery(`WHERE \$1 = ANY\(venues\) OR \$1 = ANY\(waitlist\)`).
		WithArgs("A").
		WillReturnRows(sqlmock.NewRows(slotRowColumns).
			AddRow("2024-05-01", "18:00", "{A,B}", "{}", int64(2), time.Now()).
			AddRow("2024-05-02", "19:00", "{C}", "{A}", int64(3), time.Now()))
	slots, err := repo.ListByTeam(ctx, "A")
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, 1, slots[0].VenueOf("A"))
	assert.Equal(t, 1, slots[1].WaitlistPosition("A"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
