package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"court-reservation-api/core/constants"
	"court-reservation-api/core/errors"
	"court-reservation-api/core/logger"
	"court-reservation-api/modules/reservation/dto"
	"court-reservation-api/modules/reservation/entity"
	teamdto "court-reservation-api/modules/team/dto"
)

const (
	outcomeAssigned    = "assigned"
	outcomeWaitlisted  = "waitlisted"
	outcomeDuplicate   = "duplicate"
	outcomeInvalid     = "invalid"
	outcomeForbidden   = "forbidden"
	outcomeUnavailable = "unavailable"
)

func (s *ReservationService) countOutcome(outcome string) {
	if s.metrics != nil {
		s.metrics.ReservationOutcomes.WithLabelValues(outcome).Inc()
	}
}

func lockKey(teamID, date string) string {
	return teamID + ":" + date
}

func validateDate(date string) *errors.AppError {
	if _, err := time.Parse(constants.DateLayout, date); err != nil {
		return errors.NewAppError(errors.ErrInvalidInput, "date must be formatted as YYYY-MM-DD", err)
	}
	return nil
}

func (s *ReservationService) validateTimeSlot(timeSlot string) *errors.AppError {
	if !s.knownTimeSlots[timeSlot] {
		return errors.NewAppError(errors.ErrInvalidInput, fmt.Sprintf("unknown time slot %q", timeSlot), nil)
	}
	return nil
}

func (s *ReservationService) validateReserve(req *dto.ReserveRequest) *errors.AppError {
	req.TeamID = strings.TrimSpace(req.TeamID)
	if req.TeamID == "" {
		return errors.NewAppError(errors.ErrInvalidInput, "team_id is required", nil)
	}
	if appErr := validateDate(req.Date); appErr != nil {
		return appErr
	}
	if len(req.Preferences) == 0 {
		return errors.NewAppError(errors.ErrInvalidInput, "at least one preferred time slot is required", nil)
	}
	if len(req.Preferences) > s.maxPreferences {
		return errors.NewAppError(errors.ErrInvalidInput, fmt.Sprintf("at most %d preferred time slots are allowed", s.maxPreferences), nil)
	}
	seen := make(map[string]bool, len(req.Preferences))
	for _, ts := range req.Preferences {
		if appErr := s.validateTimeSlot(ts); appErr != nil {
			return appErr
		}
		if seen[ts] {
			return errors.NewAppError(errors.ErrInvalidInput, fmt.Sprintf("time slot %q is listed twice", ts), nil)
		}
		seen[ts] = true
	}
	return nil
}

// authorizeTeam loads the team and checks that username belongs to it.
func (s *ReservationService) authorizeTeam(ctx context.Context, username, teamID string) (*teamdto.TeamResponse, *errors.AppError) {
	team, appErr := s.teams.LookupTeamByID(ctx, teamID)
	if appErr != nil {
		return nil, appErr
	}
	if !team.HasMember(username) {
		logger.Info("ReservationService:AuthorizeTeam:NotMember", "username", username, "team_id", teamID)
		return nil, errors.NewAppError(errors.ErrForbidden, "you are not a member of this team", nil)
	}
	return team, nil
}

func storeUnavailable(err error) *errors.AppError {
	return errors.NewAppError(errors.ErrStoreUnavailable, "reservation store is unavailable, please retry", err)
}

func duplicateBooking(teamID, date, timeSlot string) *errors.AppError {
	return errors.NewAppError(errors.ErrDuplicateBooking, "team already has a reservation on this date", nil).
		WithDetails(map[string]string{"team_id": teamID, "date": date, "time_slot": timeSlot})
}

// Reserve tries each preferred time slot in order and assigns the first free
// venue. When every preference is full the team joins the waitlist of its
// first preference.
func (s *ReservationService) Reserve(ctx context.Context, username string, req *dto.ReserveRequest) (*dto.ReservationOutcome, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	if appErr := s.validateReserve(req); appErr != nil {
		s.countOutcome(outcomeInvalid)
		return nil, appErr
	}

	team, appErr := s.authorizeTeam(ctx, username, req.TeamID)
	if appErr != nil {
		s.countOutcome(outcomeForbidden)
		return nil, appErr
	}

	unlock, err := s.locker.Lock(ctx, lockKey(team.ID, req.Date))
	if err != nil {
		logger.Error("ReservationService:Reserve:Lock", "team_id", team.ID, "date", req.Date, "error", err)
		s.countOutcome(outcomeUnavailable)
		return nil, storeUnavailable(err)
	}
	defer unlock()

	slots, err := s.store.ListByDate(ctx, req.Date)
	if err != nil {
		s.countOutcome(outcomeUnavailable)
		return nil, storeUnavailable(err)
	}
	for _, slot := range slots {
		if slot.Holds(team.ID) {
			logger.Info("ReservationService:Reserve:Duplicate", "team_id", team.ID, "date", req.Date, "time_slot", slot.TimeSlot)
			s.countOutcome(outcomeDuplicate)
			return nil, duplicateBooking(team.ID, req.Date, slot.TimeSlot)
		}
	}

	attempted := make([]string, 0, len(req.Preferences))
	for _, timeSlot := range req.Preferences {
		key := entity.SlotKey{Date: req.Date, TimeSlot: timeSlot}
		attempted = append(attempted, timeSlot)

		venue, err := s.store.TryAssign(ctx, key, team.ID)
		switch {
		case err == nil:
			logger.Info("ReservationService:Reserve:Assigned", "team_id", team.ID, "slot", key.String(), "venue", venue)
			s.countOutcome(outcomeAssigned)
			return &dto.ReservationOutcome{
				Status:    dto.StatusAssigned,
				TeamID:    team.ID,
				Date:      req.Date,
				TimeSlot:  timeSlot,
				Venue:     venue,
				Attempted: attempted,
			}, nil
		case stderrors.Is(err, entity.ErrSlotFull):
			logger.Debug("ReservationService:Reserve:SlotFull", "team_id", team.ID, "slot", key.String())
			continue
		case stderrors.Is(err, entity.ErrAlreadyHeld):
			s.countOutcome(outcomeDuplicate)
			return nil, duplicateBooking(team.ID, req.Date, timeSlot)
		default:
			s.countOutcome(outcomeUnavailable)
			return nil, storeUnavailable(err)
		}
	}

	first := entity.SlotKey{Date: req.Date, TimeSlot: req.Preferences[0]}
	position, err := s.store.EnqueueWaitlist(ctx, first, team.ID)
	if err != nil {
		if stderrors.Is(err, entity.ErrAlreadyHeld) {
			s.countOutcome(outcomeDuplicate)
			return nil, duplicateBooking(team.ID, req.Date, first.TimeSlot)
		}
		s.countOutcome(outcomeUnavailable)
		return nil, storeUnavailable(err)
	}

	logger.Info("ReservationService:Reserve:Waitlisted", "team_id", team.ID, "slot", first.String(), "position", position)
	s.countOutcome(outcomeWaitlisted)
	return &dto.ReservationOutcome{
		Status:           dto.StatusWaitlisted,
		TeamID:           team.ID,
		Date:             req.Date,
		TimeSlot:         first.TimeSlot,
		WaitlistPosition: position,
		Attempted:        attempted,
	}, nil
}
