package service

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"court-reservation-api/core/constants"
	coredto "court-reservation-api/core/dto"
	"court-reservation-api/core/errors"
	"court-reservation-api/core/logger"
	"court-reservation-api/core/params"
	"court-reservation-api/core/storage"
	"court-reservation-api/modules/record/dto"
	reservationdto "court-reservation-api/modules/reservation/dto"
	"court-reservation-api/modules/reservation/entity"
	teamdto "court-reservation-api/modules/team/dto"
)

type TeamLister interface {
	LookupTeamsByUsername(ctx context.Context, username string) ([]teamdto.TeamResponse, *errors.AppError)
}

type SlotReader interface {
	ListByTeam(ctx context.Context, teamID string) ([]*entity.Slot, error)
	ListByDate(ctx context.Context, date string) ([]*entity.Slot, error)
}

type RecordServiceInterface interface {
	ListRecords(ctx context.Context, username string, params params.QueryParams) (*dto.PaginatedRecordResponse, *errors.AppError)
	ExportDate(ctx context.Context, username, date string) (*dto.ArchiveResult, *errors.AppError)
}

type RecordService struct {
	teams    TeamLister
	slots    SlotReader
	uploader storage.ObjectUploader
	prefix   string
	admins   map[string]bool
}

// NewRecordService builds the projector. uploader may be nil when archiving is
// disabled; only admins may export.
func NewRecordService(teams TeamLister, slots SlotReader, uploader storage.ObjectUploader, prefix string, admins []string) *RecordService {
	allowed := make(map[string]bool, len(admins))
	for _, a := range admins {
		allowed[a] = true
	}
	return &RecordService{teams: teams, slots: slots, uploader: uploader, prefix: prefix, admins: allowed}
}

func toRecord(team teamdto.TeamResponse, slot *entity.Slot) (dto.RecordResponse, bool) {
	record := dto.RecordResponse{
		ID:       fmt.Sprintf("%s-%s-%s", team.ID, slot.Date, slot.TimeSlot),
		TeamID:   team.ID,
		TeamName: team.Name,
		Date:     slot.Date,
		TimeSlot: slot.TimeSlot,
	}
	if venue := slot.VenueOf(team.ID); venue > 0 {
		record.Status = reservationdto.StatusAssigned
		record.Venue = venue
		return record, true
	}
	if pos := slot.WaitlistPosition(team.ID); pos > 0 {
		record.Status = reservationdto.StatusWaitlisted
		record.WaitlistPosition = pos
		return record, true
	}
	return record, false
}

func matchesSearch(r dto.RecordResponse, search string) bool {
	if search == "" {
		return true
	}
	search = strings.ToLower(search)
	return strings.Contains(strings.ToLower(r.TeamName), search) || strings.Contains(r.Date, search)
}

// ListRecords joins the caller's teams with the slots they hold. Records are
// ordered by team name, then newest date first.
func (s *RecordService) ListRecords(ctx context.Context, username string, params params.QueryParams) (*dto.PaginatedRecordResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	logger.Info("RecordService:ListRecords:Request", "username", username, "page_number", params.PageNumber, "page_size", params.PageSize, "search", params.Search)

	teams, appErr := s.teams.LookupTeamsByUsername(ctx, username)
	if appErr != nil {
		return nil, appErr
	}

	records := make([]dto.RecordResponse, 0)
	for _, team := range teams {
		slots, err := s.slots.ListByTeam(ctx, team.ID)
		if err != nil {
			return nil, errors.NewAppError(errors.ErrStoreUnavailable, "reservation store is unavailable, please retry", err)
		}
		for _, slot := range slots {
			record, ok := toRecord(team, slot)
			if ok && matchesSearch(record, params.Search) {
				records = append(records, record)
			}
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.TeamName != b.TeamName {
			return a.TeamName < b.TeamName
		}
		if a.Date != b.Date {
			return a.Date > b.Date
		}
		return a.TimeSlot < b.TimeSlot
	})

	page := coredto.Paginate(records, params.PageNumber, params.PageSize)
	logger.Info("RecordService:ListRecords:Result", "username", username, "total_items", page.TotalItems)
	return page, nil
}

func (s *RecordService) archiveKey(date string) string {
	return path.Join(s.prefix, date+".json")
}

// ExportDate uploads a JSON snapshot of every stored slot of date.
func (s *RecordService) ExportDate(ctx context.Context, username, date string) (*dto.ArchiveResult, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	logger.Info("RecordService:ExportDate:Request", "username", username, "date", date)

	if s.uploader == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "archive export is not enabled", nil)
	}
	if !s.admins[username] {
		logger.Warn("RecordService:ExportDate:Forbidden", "username", username, "date", date)
		return nil, errors.NewAppError(errors.ErrForbidden, "archive export is restricted to administrators", nil)
	}
	if _, err := time.Parse(constants.DateLayout, date); err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "date must be formatted as YYYY-MM-DD", err)
	}

	slots, err := s.slots.ListByDate(ctx, date)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrStoreUnavailable, "reservation store is unavailable, please retry", err)
	}

	archive := dto.DateArchive{
		Date:       date,
		ExportedAt: time.Now().UTC(),
		Slots:      make([]dto.ArchivedSlot, 0, len(slots)),
	}
	for _, slot := range slots {
		archive.Slots = append(archive.Slots, dto.ArchivedSlot{
			TimeSlot: slot.TimeSlot,
			Venues:   slot.Venues,
			Waitlist: slot.Waitlist,
			Version:  slot.Version,
		})
	}

	body, err := json.Marshal(archive)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "encode archive failed", err)
	}

	location, err := s.uploader.Upload(ctx, s.archiveKey(date), body, "application/json")
	if err != nil {
		return nil, errors.NewAppError(errors.ErrCreateFailed, "upload archive failed", err)
	}

	logger.Info("RecordService:ExportDate:Uploaded", "username", username, "date", date, "location", location, "slots", len(archive.Slots))
	return &dto.ArchiveResult{Date: date, Location: location, Slots: len(archive.Slots)}, nil
}
