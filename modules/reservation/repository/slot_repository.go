package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"court-reservation-api/core/config"
	"court-reservation-api/core/logger"
	"court-reservation-api/core/metrics"
	"court-reservation-api/modules/reservation/entity"
)

type SlotStore interface {
	Get(ctx context.Context, key entity.SlotKey) (*entity.Slot, error)
	TryAssign(ctx context.Context, key entity.SlotKey, teamID string) (int, error)
	EnqueueWaitlist(ctx context.Context, key entity.SlotKey, teamID string) (int, error)
	Remove(ctx context.Context, key entity.SlotKey, teamID string) (entity.Removal, error)
	PromoteNext(ctx context.Context, key entity.SlotKey) (entity.Promotion, bool, error)
	ListByDate(ctx context.Context, date string) ([]*entity.Slot, error)
	ListByTeam(ctx context.Context, teamID string) ([]*entity.Slot, error)
	VenuesPerSlot() int
}

type SlotRepository struct {
	backend  SlotBackend
	venues   int
	attempts int
	backoff  time.Duration
	metrics  *metrics.Metrics
}

func NewSlotRepository(backend SlotBackend, cfg config.ReservationConfig, m *metrics.Metrics) *SlotRepository {
	attempts := cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &SlotRepository{
		backend:  backend,
		venues:   cfg.VenuesPerSlot,
		attempts: attempts,
		backoff:  cfg.RetryBackoff,
		metrics:  m,
	}
}

func (r *SlotRepository) VenuesPerSlot() int {
	return r.venues
}

func isDomainError(err error) bool {
	return errors.Is(err, entity.ErrSlotFull) || errors.Is(err, entity.ErrAlreadyHeld)
}

// withRetry runs call until it succeeds, fails with a domain error or the
// attempts run out. Backoff grows linearly with the attempt number.
func (r *SlotRepository) withRetry(ctx context.Context, op string, key string, call func() error) error {
	var lastErr error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		err := call()
		if err == nil || isDomainError(err) {
			return err
		}
		lastErr = err

		if ctx.Err() != nil {
			break
		}
		if attempt == r.attempts {
			break
		}

		if r.metrics != nil {
			r.metrics.StoreRetries.WithLabelValues(op).Inc()
		}
		logger.Warn("SlotRepository:Retry", "op", op, "key", key, "attempt", attempt, "error", err)

		select {
		case <-ctx.Done():
			return fmt.Errorf("%s %s: %w: %w", op, key, ErrStoreUnavailable, ctx.Err())
		case <-time.After(r.backoff * time.Duration(attempt)):
		}
	}

	logger.Error("SlotRepository:Unavailable", "op", op, "key", key, "attempts", r.attempts, "error", lastErr)
	return fmt.Errorf("%s %s: %w: %w", op, key, ErrStoreUnavailable, lastErr)
}

func (r *SlotRepository) mutate(ctx context.Context, op string, key entity.SlotKey, fn MutateFunc) error {
	return r.withRetry(ctx, op, key.String(), func() error {
		_, err := r.backend.Mutate(ctx, key, r.venues, fn)
		return err
	})
}

// Get returns the stored slot or an empty one when nobody has reserved it yet.
func (r *SlotRepository) Get(ctx context.Context, key entity.SlotKey) (*entity.Slot, error) {
	var slot *entity.Slot
	err := r.withRetry(ctx, "get", key.String(), func() error {
		loaded, err := r.backend.Load(ctx, key, r.venues)
		if err != nil {
			return err
		}
		slot = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return slot, nil
}

func (r *SlotRepository) countPromotions(source string, n int) {
	if r.metrics != nil && n > 0 {
		r.metrics.Promotions.WithLabelValues(source).Add(float64(n))
	}
}

// TryAssign binds teamID to the lowest free venue or returns entity.ErrSlotFull.
// Waiting teams are moved into free venues first, in the same write, so a
// venue left free by a failed promotion is never handed past the queue.
//
// A retried write may find the team already seated by an earlier attempt whose
// reply was lost; that venue is reported as the assignment.
func (r *SlotRepository) TryAssign(ctx context.Context, key entity.SlotKey, teamID string) (int, error) {
	var (
		venue     int
		seatedAt  int
		assignErr error
		healed    []entity.Promotion
	)
	err := r.mutate(ctx, "try_assign", key, func(slot *entity.Slot) (bool, error) {
		venue, assignErr = 0, nil
		healed = slot.FillFromWaitlist()

		v, err := slot.Assign(teamID)
		switch {
		case err == nil:
			venue, seatedAt = v, v
			return true, nil
		case errors.Is(err, entity.ErrAlreadyHeld) && seatedAt > 0 && slot.VenueOf(teamID) == seatedAt:
			venue = seatedAt
			return len(healed) > 0, nil
		case len(healed) > 0 && isDomainError(err):
			assignErr = err
			return true, nil
		default:
			return false, err
		}
	})
	if err != nil {
		return 0, err
	}
	for _, p := range healed {
		logger.Info("SlotRepository:TryAssign:Promoted", "key", key.String(), "team_id", p.TeamID, "venue", p.Venue)
	}
	r.countPromotions("assign", len(healed))
	if assignErr != nil {
		return 0, assignErr
	}
	return venue, nil
}

// EnqueueWaitlist appends teamID to the waitlist and returns its position.
func (r *SlotRepository) EnqueueWaitlist(ctx context.Context, key entity.SlotKey, teamID string) (int, error) {
	var position int
	err := r.mutate(ctx, "enqueue_waitlist", key, func(slot *entity.Slot) (bool, error) {
		position = 0
		pos, added, err := slot.Enqueue(teamID)
		if err != nil {
			return false, err
		}
		position = pos
		return added, nil
	})
	if err != nil {
		return 0, err
	}
	return position, nil
}

// Remove takes teamID off its venue or the waitlist. When a retried write no
// longer finds the team after an earlier attempt did, that earlier attempt
// committed and its removal is returned.
func (r *SlotRepository) Remove(ctx context.Context, key entity.SlotKey, teamID string) (entity.Removal, error) {
	var removal, seen entity.Removal
	err := r.mutate(ctx, "remove", key, func(slot *entity.Slot) (bool, error) {
		removal = slot.Remove(teamID)
		if removal.Kind == entity.RemovalNotFound {
			return false, nil
		}
		seen = removal
		return true, nil
	})
	if err != nil {
		return entity.Removal{}, err
	}
	if removal.Kind == entity.RemovalNotFound && seen.Kind != entity.RemovalNotFound {
		logger.Warn("SlotRepository:Remove:AlreadyApplied", "key", key.String(), "team_id", teamID, "removed", seen.Kind.String())
		return seen, nil
	}
	return removal, nil
}

// PromoteNext moves at most one waiting team into a free venue.
func (r *SlotRepository) PromoteNext(ctx context.Context, key entity.SlotKey) (entity.Promotion, bool, error) {
	var (
		promotion entity.Promotion
		promoted  bool
	)
	err := r.mutate(ctx, "promote_next", key, func(slot *entity.Slot) (bool, error) {
		promotion, promoted = slot.PromoteNext()
		return promoted, nil
	})
	if err != nil {
		return entity.Promotion{}, false, err
	}
	return promotion, promoted, nil
}

func (r *SlotRepository) ListByDate(ctx context.Context, date string) ([]*entity.Slot, error) {
	var slots []*entity.Slot
	err := r.withRetry(ctx, "list_by_date", date, func() error {
		listed, err := r.backend.ListByDate(ctx, date)
		if err != nil {
			return err
		}
		slots = listed
		return nil
	})
	return slots, err
}

func (r *SlotRepository) ListByTeam(ctx context.Context, teamID string) ([]*entity.Slot, error) {
	var slots []*entity.Slot
	err := r.withRetry(ctx, "list_by_team", teamID, func() error {
		listed, err := r.backend.ListByTeam(ctx, teamID)
		if err != nil {
			return err
		}
		slots = listed
		return nil
	})
	return slots, err
}
