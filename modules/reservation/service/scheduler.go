package service

import (
	"context"
	"time"

	"court-reservation-api/core/constants"
	"court-reservation-api/core/logger"
	"court-reservation-api/modules/reservation/entity"
)

const localPromotionAttempts = 5

// localScheduler retries a promotion on a goroutine. It is used when no task
// queue is configured, so pending promotions do not survive a restart.
type localScheduler struct {
	promote  func(ctx context.Context, key entity.SlotKey) (int, error)
	attempts int
	backoff  time.Duration
}

func newLocalScheduler(promote func(ctx context.Context, key entity.SlotKey) (int, error), attempts int, backoff time.Duration) *localScheduler {
	if backoff <= 0 {
		backoff = 100 * time.Millisecond
	}
	return &localScheduler{promote: promote, attempts: attempts, backoff: backoff}
}

func (l *localScheduler) SchedulePromotion(_ context.Context, key entity.SlotKey) error {
	go func() {
		for attempt := 1; attempt <= l.attempts; attempt++ {
			time.Sleep(l.backoff * time.Duration(attempt))

			ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultRequestTimeout)
			promoted, err := l.promote(ctx, key)
			cancel()
			if err == nil {
				logger.Info("ReservationService:LocalPromotion:Done", "slot", key.String(), "promoted", promoted, "attempt", attempt)
				return
			}
			logger.Warn("ReservationService:LocalPromotion:Retry", "slot", key.String(), "attempt", attempt, "error", err)
		}
		logger.Error("ReservationService:LocalPromotion:GaveUp", "slot", key.String(), "attempts", l.attempts)
	}()
	return nil
}

// NoopScheduler drops promotion retries. A venue freed by a failed promotion
// is handed to the waitlist by the next reservation attempt on its slot.
type NoopScheduler struct{}

func (NoopScheduler) SchedulePromotion(context.Context, entity.SlotKey) error {
	return nil
}
