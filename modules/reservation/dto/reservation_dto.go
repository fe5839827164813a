package dto

const (
	StatusAssigned   = "assigned"
	StatusWaitlisted = "waitlisted"
)

type ReserveRequest struct {
	TeamID      string   `json:"team_id"`
	Date        string   `json:"date"`
	Preferences []string `json:"preferences"`
}

type ReservationOutcome struct {
	Status           string   `json:"status"`
	TeamID           string   `json:"team_id"`
	Date             string   `json:"date"`
	TimeSlot         string   `json:"time_slot"`
	Venue            int      `json:"venue,omitempty"`
	WaitlistPosition int      `json:"waitlist_position,omitempty"`
	Attempted        []string `json:"attempted"`
}

type CancelRequest struct {
	TeamID   string `json:"team_id"`
	Date     string `json:"date"`
	TimeSlot string `json:"time_slot"`
}

type PromotedTeam struct {
	TeamID string `json:"team_id"`
	Venue  int    `json:"venue"`
}

type CancelResult struct {
	TeamID   string `json:"team_id"`
	Date     string `json:"date"`
	TimeSlot string `json:"time_slot"`
	// Removed is "assigned" or "waitlisted".
	Removed          string        `json:"removed"`
	Venue            int           `json:"venue,omitempty"`
	Promoted         *PromotedTeam `json:"promoted,omitempty"`
	PromotionPending bool          `json:"promotion_pending,omitempty"`
}

type SlotView struct {
	Date        string         `json:"date"`
	TimeSlot    string         `json:"time_slot"`
	Venues      []VenueView    `json:"venues"`
	Assignments map[string]int `json:"assignments"`
	Waitlist    []string       `json:"waitlist"`
}

type VenueView struct {
	Venue  int    `json:"venue"`
	TeamID string `json:"team_id,omitempty"`
}

type SlotAvailability struct {
	TimeSlot       string `json:"time_slot"`
	TotalVenues    int    `json:"total_venues"`
	FreeVenues     int    `json:"free_venues"`
	WaitlistLength int    `json:"waitlist_length"`
}

type DateAvailability struct {
	Date  string             `json:"date"`
	Slots []SlotAvailability `json:"slots"`
}

type TimeSlotCatalogue struct {
	TimeSlots      []string `json:"time_slots"`
	VenuesPerSlot  int      `json:"venues_per_slot"`
	MaxPreferences int      `json:"max_preferences"`
}
