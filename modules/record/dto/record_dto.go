package dto

import (
	"time"

	"court-reservation-api/core/dto"
)

type RecordResponse struct {
	ID               string `json:"id"`
	TeamID           string `json:"team_id"`
	TeamName         string `json:"team_name"`
	Date             string `json:"date"`
	TimeSlot         string `json:"time_slot"`
	Status           string `json:"status"`
	Venue            int    `json:"venue,omitempty"`
	WaitlistPosition int    `json:"waitlist_position,omitempty"`
}

type PaginatedRecordResponse = dto.Pagination[RecordResponse]

type ArchivedSlot struct {
	TimeSlot string   `json:"time_slot"`
	Venues   []string `json:"venues"`
	Waitlist []string `json:"waitlist"`
	Version  int64    `json:"version"`
}

type DateArchive struct {
	Date       string         `json:"date"`
	ExportedAt time.Time      `json:"exported_at"`
	Slots      []ArchivedSlot `json:"slots"`
}

type ArchiveResult struct {
	Date     string `json:"date"`
	Location string `json:"location"`
	Slots    int    `json:"slots"`
}
