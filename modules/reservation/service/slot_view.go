package service

import (
	"context"

	"court-reservation-api/core/constants"
	"court-reservation-api/core/errors"
	"court-reservation-api/modules/reservation/dto"
	"court-reservation-api/modules/reservation/entity"
)

func toSlotView(slot *entity.Slot) *dto.SlotView {
	venues := make([]dto.VenueView, 0, len(slot.Venues))
	for i, team := range slot.Venues {
		venues = append(venues, dto.VenueView{Venue: i + 1, TeamID: team})
	}
	return &dto.SlotView{
		Date:        slot.Date,
		TimeSlot:    slot.TimeSlot,
		Venues:      venues,
		Assignments: slot.Assignments(),
		Waitlist:    append([]string{}, slot.Waitlist...),
	}
}

func (s *ReservationService) GetSlot(ctx context.Context, date, timeSlot string) (*dto.SlotView, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	if appErr := validateDate(date); appErr != nil {
		return nil, appErr
	}
	if appErr := s.validateTimeSlot(timeSlot); appErr != nil {
		return nil, appErr
	}

	slot, err := s.store.Get(ctx, entity.SlotKey{Date: date, TimeSlot: timeSlot})
	if err != nil {
		return nil, storeUnavailable(err)
	}
	return toSlotView(slot), nil
}

// GetDateAvailability reports every catalogue time slot of date, including
// slots nobody has reserved yet.
func (s *ReservationService) GetDateAvailability(ctx context.Context, date string) (*dto.DateAvailability, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	if appErr := validateDate(date); appErr != nil {
		return nil, appErr
	}

	slots, err := s.store.ListByDate(ctx, date)
	if err != nil {
		return nil, storeUnavailable(err)
	}
	byTimeSlot := make(map[string]*entity.Slot, len(slots))
	for _, slot := range slots {
		byTimeSlot[slot.TimeSlot] = slot
	}

	venues := s.store.VenuesPerSlot()
	out := &dto.DateAvailability{Date: date, Slots: make([]dto.SlotAvailability, 0, len(s.timeSlots))}
	for _, ts := range s.timeSlots {
		slot, ok := byTimeSlot[ts]
		if !ok {
			slot = entity.NewSlot(entity.SlotKey{Date: date, TimeSlot: ts}, venues)
		}
		out.Slots = append(out.Slots, dto.SlotAvailability{
			TimeSlot:       ts,
			TotalVenues:    len(slot.Venues),
			FreeVenues:     slot.FreeVenues(),
			WaitlistLength: len(slot.Waitlist),
		})
	}
	return out, nil
}

func (s *ReservationService) TimeSlots() *dto.TimeSlotCatalogue {
	return &dto.TimeSlotCatalogue{
		TimeSlots:      append([]string(nil), s.timeSlots...),
		VenuesPerSlot:  s.store.VenuesPerSlot(),
		MaxPreferences: s.maxPreferences,
	}
}
