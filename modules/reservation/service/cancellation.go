package service

import (
	"context"
	"strings"

	"court-reservation-api/core/constants"
	"court-reservation-api/core/errors"
	"court-reservation-api/core/logger"
	"court-reservation-api/modules/reservation/dto"
	"court-reservation-api/modules/reservation/entity"
)

const (
	promotionSourceCancel = "cancel"
	promotionSourceRetry  = "retry"
)

func (s *ReservationService) countPromotion(source string, n int) {
	if s.metrics != nil && n > 0 {
		s.metrics.Promotions.WithLabelValues(source).Add(float64(n))
	}
}

func (s *ReservationService) validateCancel(req *dto.CancelRequest) *errors.AppError {
	req.TeamID = strings.TrimSpace(req.TeamID)
	if req.TeamID == "" {
		return errors.NewAppError(errors.ErrInvalidInput, "team_id is required", nil)
	}
	if appErr := validateDate(req.Date); appErr != nil {
		return appErr
	}
	return s.validateTimeSlot(req.TimeSlot)
}

// Cancel removes the team's venue or waitlist entry. A freed venue is offered
// to the head of the waitlist straight away; if that fails the venue stays
// free and a retry is scheduled.
func (s *ReservationService) Cancel(ctx context.Context, username string, req *dto.CancelRequest) (*dto.CancelResult, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	if appErr := s.validateCancel(req); appErr != nil {
		return nil, appErr
	}

	team, appErr := s.authorizeTeam(ctx, username, req.TeamID)
	if appErr != nil {
		return nil, appErr
	}

	unlock, err := s.locker.Lock(ctx, lockKey(team.ID, req.Date))
	if err != nil {
		logger.Error("ReservationService:Cancel:Lock", "team_id", team.ID, "date", req.Date, "error", err)
		return nil, storeUnavailable(err)
	}
	defer unlock()

	key := entity.SlotKey{Date: req.Date, TimeSlot: req.TimeSlot}
	removal, err := s.store.Remove(ctx, key, team.ID)
	if err != nil {
		return nil, storeUnavailable(err)
	}
	if s.metrics != nil {
		s.metrics.Cancellations.WithLabelValues(removal.Kind.String()).Inc()
	}

	if removal.Kind == entity.RemovalNotFound {
		logger.Info("ReservationService:Cancel:NotRegistered", "team_id", team.ID, "slot", key.String())
		s.scheduleIfStranded(ctx, key)
		return nil, errors.NewAppError(errors.ErrNotRegistered, "team is not registered for this time slot", nil)
	}

	result := &dto.CancelResult{
		TeamID:   team.ID,
		Date:     req.Date,
		TimeSlot: req.TimeSlot,
		Removed:  removal.Kind.String(),
		Venue:    removal.Venue,
	}
	logger.Info("ReservationService:Cancel:Removed", "team_id", team.ID, "slot", key.String(), "removed", result.Removed, "venue", removal.Venue)

	if removal.Kind != entity.RemovalAssigned {
		return result, nil
	}

	// The removal is committed; finish the promotion even if the caller goes away.
	promoteCtx, cancelPromote := context.WithTimeout(context.WithoutCancel(ctx), constants.DefaultTimeout)
	defer cancelPromote()
	promotion, promoted, err := s.store.PromoteNext(promoteCtx, key)
	if err != nil {
		logger.Error("ReservationService:Cancel:PromoteFailed", "slot", key.String(), "error", err)
		result.PromotionPending = true
		scheduleCtx, cancelSchedule := context.WithTimeout(context.WithoutCancel(ctx), constants.DefaultTimeout)
		defer cancelSchedule()
		if errSchedule := s.scheduler.SchedulePromotion(scheduleCtx, key); errSchedule != nil {
			logger.Error("ReservationService:Cancel:ScheduleFailed", "slot", key.String(), "error", errSchedule)
		}
		return result, nil
	}
	if promoted {
		logger.Info("ReservationService:Cancel:Promoted", "slot", key.String(), "team_id", promotion.TeamID, "venue", promotion.Venue)
		s.countPromotion(promotionSourceCancel, 1)
		result.Promoted = &dto.PromotedTeam{TeamID: promotion.TeamID, Venue: promotion.Venue}
	}
	return result, nil
}

// scheduleIfStranded queues a promotion for a slot that has a free venue while
// teams are still waiting.
func (s *ReservationService) scheduleIfStranded(ctx context.Context, key entity.SlotKey) {
	slot, err := s.store.Get(ctx, key)
	if err != nil || slot.FreeVenues() == 0 || len(slot.Waitlist) == 0 {
		return
	}
	logger.Warn("ReservationService:Cancel:StrandedVenue", "slot", key.String(), "free", slot.FreeVenues(), "waiting", len(slot.Waitlist))
	scheduleCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.DefaultTimeout)
	defer cancel()
	if err := s.scheduler.SchedulePromotion(scheduleCtx, key); err != nil {
		logger.Error("ReservationService:Cancel:ScheduleFailed", "slot", key.String(), "error", err)
	}
}

// PromoteWaiting fills every free venue of the slot from its waitlist and
// returns how many teams moved up.
func (s *ReservationService) PromoteWaiting(ctx context.Context, key entity.SlotKey) (int, error) {
	promoted := 0
	for {
		promotion, ok, err := s.store.PromoteNext(ctx, key)
		if err != nil {
			s.countPromotion(promotionSourceRetry, promoted)
			return promoted, err
		}
		if !ok {
			break
		}
		promoted++
		logger.Info("ReservationService:PromoteWaiting:Promoted", "slot", key.String(), "team_id", promotion.TeamID, "venue", promotion.Venue)
	}
	s.countPromotion(promotionSourceRetry, promoted)
	return promoted, nil
}
