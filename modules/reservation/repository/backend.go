package repository

import (
	"context"
	"errors"
	"sort"

	"court-reservation-api/modules/reservation/entity"
)

var (
	// ErrStoreUnavailable is returned once transient failures exhaust the retry budget.
	ErrStoreUnavailable = errors.New("slot store unavailable")
	// ErrConflict reports an optimistic write that kept losing to concurrent writers.
	ErrConflict = errors.New("slot update conflict")
)

// maxConflictRetries bounds the optimistic loops of the redis, postgres and
// mongo backends before they hand ErrConflict back to the repository.
const maxConflictRetries = 32

// MutateFunc changes slot in place and reports whether anything changed. It
// may be called more than once for a single Mutate, so closures must reset any
// captured results on entry.
type MutateFunc func(slot *entity.Slot) (changed bool, err error)

// SlotBackend is the storage engine under SlotRepository. Mutate is an atomic
// read-modify-write of a single key; different keys never block each other.
type SlotBackend interface {
	Load(ctx context.Context, key entity.SlotKey, venues int) (*entity.Slot, error)
	Mutate(ctx context.Context, key entity.SlotKey, venues int, fn MutateFunc) (*entity.Slot, error)
	ListByDate(ctx context.Context, date string) ([]*entity.Slot, error)
	ListByTeam(ctx context.Context, teamID string) ([]*entity.Slot, error)
}

func sortSlots(slots []*entity.Slot) {
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].Date != slots[j].Date {
			return slots[i].Date < slots[j].Date
		}
		return slots[i].TimeSlot < slots[j].TimeSlot
	})
}
