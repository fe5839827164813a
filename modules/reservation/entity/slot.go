package entity

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrSlotFull means no venue can be handed out right now.
	ErrSlotFull = errors.New("slot is full")
	// ErrAlreadyHeld means the team already has a venue or a waitlist entry in the slot.
	ErrAlreadyHeld = errors.New("team already holds this slot")
)

type SlotKey struct {
	Date     string `json:"date"`
	TimeSlot string `json:"time_slot"`
}

func (k SlotKey) String() string {
	return k.Date + "|" + k.TimeSlot
}

// Slot is the reservation state of one (date, time slot) pair. Venues[i] holds
// the team occupying venue i+1, or "" when the venue is free.
type Slot struct {
	Date      string    `json:"date"`
	TimeSlot  string    `json:"time_slot"`
	Venues    []string  `json:"venues"`
	Waitlist  []string  `json:"waitlist"`
	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

type RemovalKind int

const (
	RemovalNotFound RemovalKind = iota
	RemovalAssigned
	RemovalWaitlisted
)

func (k RemovalKind) String() string {
	switch k {
	case RemovalAssigned:
		return "assigned"
	case RemovalWaitlisted:
		return "waitlisted"
	default:
		return "not_found"
	}
}

type Removal struct {
	Kind  RemovalKind
	Venue int
}

type Promotion struct {
	TeamID string
	Venue  int
}

func NewSlot(key SlotKey, venues int) *Slot {
	return &Slot{
		Date:     key.Date,
		TimeSlot: key.TimeSlot,
		Venues:   make([]string, venues),
		Waitlist: []string{},
	}
}

func (s *Slot) Key() SlotKey {
	return SlotKey{Date: s.Date, TimeSlot: s.TimeSlot}
}

// Normalize grows the venue list to the configured capacity and replaces nil
// slices. Stored slots never shrink.
func (s *Slot) Normalize(venues int) {
	for len(s.Venues) < venues {
		s.Venues = append(s.Venues, "")
	}
	if s.Waitlist == nil {
		s.Waitlist = []string{}
	}
}

func (s *Slot) Clone() *Slot {
	c := *s
	c.Venues = append([]string(nil), s.Venues...)
	c.Waitlist = append([]string{}, s.Waitlist...)
	return &c
}

// VenueOf returns the 1-based venue held by team, or 0.
func (s *Slot) VenueOf(team string) int {
	for i, occupant := range s.Venues {
		if occupant == team {
			return i + 1
		}
	}
	return 0
}

// WaitlistPosition returns the 1-based waitlist position of team, or 0.
func (s *Slot) WaitlistPosition(team string) int {
	for i, waiting := range s.Waitlist {
		if waiting == team {
			return i + 1
		}
	}
	return 0
}

func (s *Slot) IsWaitlisted(team string) bool {
	return s.WaitlistPosition(team) > 0
}

func (s *Slot) Holds(team string) bool {
	return s.VenueOf(team) > 0 || s.IsWaitlisted(team)
}

func (s *Slot) FreeVenues() int {
	free := 0
	for _, occupant := range s.Venues {
		if occupant == "" {
			free++
		}
	}
	return free
}

// Assignments maps team id to venue.
func (s *Slot) Assignments() map[string]int {
	out := make(map[string]int, len(s.Venues))
	for i, occupant := range s.Venues {
		if occupant != "" {
			out[occupant] = i + 1
		}
	}
	return out
}

func (s *Slot) lowestFreeVenue() int {
	for i, occupant := range s.Venues {
		if occupant == "" {
			return i + 1
		}
	}
	return 0
}

// Assign binds team to the lowest free venue. Callers run FillFromWaitlist
// first so that queued teams are served before a newcomer.
func (s *Slot) Assign(team string) (int, error) {
	if team == "" {
		return 0, fmt.Errorf("assign: empty team id")
	}
	if s.Holds(team) {
		return 0, ErrAlreadyHeld
	}
	venue := s.lowestFreeVenue()
	if venue == 0 {
		return 0, ErrSlotFull
	}
	s.Venues[venue-1] = team
	return venue, nil
}

// Enqueue appends team to the waitlist. Enqueueing a team that is already
// waiting is a no-op reporting its current position.
func (s *Slot) Enqueue(team string) (int, bool, error) {
	if team == "" {
		return 0, false, fmt.Errorf("enqueue: empty team id")
	}
	if s.VenueOf(team) > 0 {
		return 0, false, ErrAlreadyHeld
	}
	if pos := s.WaitlistPosition(team); pos > 0 {
		return pos, false, nil
	}
	s.Waitlist = append(s.Waitlist, team)
	return len(s.Waitlist), true, nil
}

func (s *Slot) Remove(team string) Removal {
	if venue := s.VenueOf(team); venue > 0 {
		s.Venues[venue-1] = ""
		return Removal{Kind: RemovalAssigned, Venue: venue}
	}
	if pos := s.WaitlistPosition(team); pos > 0 {
		s.Waitlist = append(s.Waitlist[:pos-1], s.Waitlist[pos:]...)
		return Removal{Kind: RemovalWaitlisted}
	}
	return Removal{Kind: RemovalNotFound}
}

// PromoteNext moves the head of the waitlist into the lowest free venue.
func (s *Slot) PromoteNext() (Promotion, bool) {
	if len(s.Waitlist) == 0 {
		return Promotion{}, false
	}
	venue := s.lowestFreeVenue()
	if venue == 0 {
		return Promotion{}, false
	}
	team := s.Waitlist[0]
	s.Waitlist = s.Waitlist[1:]
	s.Venues[venue-1] = team
	return Promotion{TeamID: team, Venue: venue}, true
}

// FillFromWaitlist promotes waiting teams, oldest first, until no venue is
// free or nobody is waiting.
func (s *Slot) FillFromWaitlist() []Promotion {
	var promotions []Promotion
	for {
		p, ok := s.PromoteNext()
		if !ok {
			return promotions
		}
		promotions = append(promotions, p)
	}
}
