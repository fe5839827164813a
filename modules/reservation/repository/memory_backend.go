package repository

import (
	"context"
	"sync"
	"time"

	"court-reservation-api/modules/reservation/entity"
)

type slotCell struct {
	mu   sync.Mutex
	slot *entity.Slot
}

// MemoryBackend keeps slots in process. The map lock only guards cell lookup;
// each slot is serialised by its own cell mutex.
type MemoryBackend struct {
	mu    sync.RWMutex
	cells map[entity.SlotKey]*slotCell
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{cells: make(map[entity.SlotKey]*slotCell)}
}

func (b *MemoryBackend) cell(key entity.SlotKey, create bool) *slotCell {
	b.mu.RLock()
	c, ok := b.cells[key]
	b.mu.RUnlock()
	if ok || !create {
		return c
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if c, ok = b.cells[key]; ok {
		return c
	}
	c = &slotCell{}
	b.cells[key] = c
	return c
}

func (b *MemoryBackend) Load(ctx context.Context, key entity.SlotKey, venues int) (*entity.Slot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := b.cell(key, false)
	if c == nil {
		return entity.NewSlot(key, venues), nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.slot == nil {
		return entity.NewSlot(key, venues), nil
	}
	slot := c.slot.Clone()
	slot.Normalize(venues)
	return slot, nil
}

func (b *MemoryBackend) Mutate(ctx context.Context, key entity.SlotKey, venues int, fn MutateFunc) (*entity.Slot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := b.cell(key, true)

	c.mu.Lock()
	defer c.mu.Unlock()

	var working *entity.Slot
	if c.slot == nil {
		working = entity.NewSlot(key, venues)
	} else {
		working = c.slot.Clone()
		working.Normalize(venues)
	}

	changed, err := fn(working)
	if err != nil {
		return nil, err
	}
	if !changed {
		return working, nil
	}

	working.Version++
	working.UpdatedAt = time.Now().UTC()
	c.slot = working
	return working.Clone(), nil
}

func (b *MemoryBackend) collect(match func(*entity.Slot) bool) []*entity.Slot {
	b.mu.RLock()
	cells := make([]*slotCell, 0, len(b.cells))
	for _, c := range b.cells {
		cells = append(cells, c)
	}
	b.mu.RUnlock()

	out := make([]*entity.Slot, 0)
	for _, c := range cells {
		c.mu.Lock()
		if c.slot != nil && match(c.slot) {
			out = append(out, c.slot.Clone())
		}
		c.mu.Unlock()
	}
	sortSlots(out)
	return out
}

func (b *MemoryBackend) ListByDate(ctx context.Context, date string) ([]*entity.Slot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return b.collect(func(s *entity.Slot) bool { return s.Date == date }), nil
}

func (b *MemoryBackend) ListByTeam(ctx context.Context, teamID string) ([]*entity.Slot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return b.collect(func(s *entity.Slot) bool { return s.Holds(teamID) }), nil
}
