package service

import (
	"context"

	"court-reservation-api/core/config"
	"court-reservation-api/core/errors"
	"court-reservation-api/core/metrics"
	"court-reservation-api/modules/reservation/dto"
	"court-reservation-api/modules/reservation/entity"
	"court-reservation-api/modules/reservation/repository"
	teamdto "court-reservation-api/modules/team/dto"
)

// TeamDirectory is the part of the team module the reservation core reads.
type TeamDirectory interface {
	LookupTeamByID(ctx context.Context, id string) (*teamdto.TeamResponse, *errors.AppError)
}

// PromotionScheduler queues a later promotion attempt for a slot whose freed
// venue could not be handed out immediately.
type PromotionScheduler interface {
	SchedulePromotion(ctx context.Context, key entity.SlotKey) error
}

type ReservationServiceInterface interface {
	Reserve(ctx context.Context, username string, req *dto.ReserveRequest) (*dto.ReservationOutcome, *errors.AppError)
	Cancel(ctx context.Context, username string, req *dto.CancelRequest) (*dto.CancelResult, *errors.AppError)
	PromoteWaiting(ctx context.Context, key entity.SlotKey) (int, error)
	GetSlot(ctx context.Context, date, timeSlot string) (*dto.SlotView, *errors.AppError)
	GetDateAvailability(ctx context.Context, date string) (*dto.DateAvailability, *errors.AppError)
	TimeSlots() *dto.TimeSlotCatalogue
}

type ReservationService struct {
	store     repository.SlotStore
	locker    repository.Locker
	teams     TeamDirectory
	scheduler PromotionScheduler
	metrics   *metrics.Metrics

	timeSlots      []string
	knownTimeSlots map[string]bool
	maxPreferences int
}

// NewReservationService wires the allocator and the cancellation engine. A nil
// scheduler falls back to retrying promotions in process.
func NewReservationService(
	store repository.SlotStore,
	locker repository.Locker,
	teams TeamDirectory,
	scheduler PromotionScheduler,
	m *metrics.Metrics,
	cfg config.ReservationConfig,
) *ReservationService {
	known := make(map[string]bool, len(cfg.TimeSlots))
	for _, ts := range cfg.TimeSlots {
		known[ts] = true
	}
	s := &ReservationService{
		store:          store,
		locker:         locker,
		teams:          teams,
		scheduler:      scheduler,
		metrics:        m,
		timeSlots:      append([]string(nil), cfg.TimeSlots...),
		knownTimeSlots: known,
		maxPreferences: cfg.MaxPreferences,
	}
	if s.scheduler == nil {
		s.scheduler = newLocalScheduler(s.PromoteWaiting, localPromotionAttempts, cfg.RetryBackoff)
	}
	return s
}
