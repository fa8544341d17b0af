package models

import (
	"fmt"
	"time"
)

// Review workflow states for a game record. Scraped rows enter the store as
// pending; only approved rows are canonical.
const (
	ReviewPending   = "pending"
	ReviewApproved  = "approved"
	ReviewDismissed = "dismissed"
)

// Recurring-game assignment states.
const (
	AssignmentPending   = "pending_assignment"
	AssignmentConfirmed = "confirmed"
	AssignmentRejected  = "rejected"
)

// FinalDaySentinel is the reserved day number meaning "final day, day
// number unspecified".
const FinalDaySentinel = 99

// Game is a tournament event record as stored. Zero values mean "unset":
// an empty string, 0 or false field is treated as absent, and detected
// structural values only ever fill such fields, never overwrite them.
type Game struct {
	ID                    string  `json:"id"`
	Name                  string  `json:"name"`
	VenueID               string  `json:"venue_id,omitempty"`
	BuyIn                 float64 `json:"buy_in,omitempty"`
	GameStartDateTime     string  `json:"game_start_datetime,omitempty"` // RFC3339 text
	EventNumber           int     `json:"event_number,omitempty"`
	DayNumber             int     `json:"day_number,omitempty"`
	FlightLetter          string  `json:"flight_letter,omitempty"`
	FinalDay              bool    `json:"final_day,omitempty"`
	IsMainEvent           bool    `json:"is_main_event,omitempty"`
	TournamentSeriesID    string  `json:"tournament_series_id,omitempty"`
	SeriesName            string  `json:"series_name,omitempty"`
	ReviewStatus          string  `json:"review_status"`
	ConsolidatedIntoID    string  `json:"consolidated_into_id,omitempty"`
	IsConsolidationParent bool    `json:"is_consolidation_parent,omitempty"`

	// Recurring-game assignment (weekly games only, never multi-day events).
	RecurringGameID      string  `json:"recurring_game_id,omitempty"`
	AssignmentConfidence float64 `json:"recurring_assignment_confidence,omitempty"`
	AssignmentStatus     string  `json:"recurring_assignment_status,omitempty"`
	WasScheduledInstance bool    `json:"was_scheduled_instance,omitempty"`
	DeviationNotes       string  `json:"deviation_notes,omitempty"`
	InstanceNumber       int     `json:"instance_number,omitempty"`

	SourceIDs map[string]string `json:"source_ids,omitempty"` // e.g. {"kingsclub": "kc-553"}
	CreatedAt time.Time         `json:"created_at,omitempty"`
	UpdatedAt time.Time         `json:"updated_at,omitempty"`
}

// Validate enforces the save-path invariants. The name detector may parse
// flight letters A-Z out of a display name, but a stored record only ever
// carries A-H.
func (g *Game) Validate() error {
	if g.Name == "" {
		return fmt.Errorf("name is required")
	}
	if g.FlightLetter != "" {
		if len(g.FlightLetter) != 1 || g.FlightLetter[0] < 'A' || g.FlightLetter[0] > 'H' {
			return fmt.Errorf("flight_letter must be a single letter A-H, got %q", g.FlightLetter)
		}
	}
	if g.DayNumber < 0 {
		return fmt.Errorf("day_number must be >= 0")
	}
	if g.EventNumber < 0 {
		return fmt.Errorf("event_number must be >= 0")
	}
	if g.BuyIn < 0 {
		return fmt.Errorf("buy_in must be >= 0")
	}
	switch g.ReviewStatus {
	case "", ReviewPending, ReviewApproved, ReviewDismissed:
	default:
		return fmt.Errorf("invalid review_status %q", g.ReviewStatus)
	}
	return nil
}

// GameCanonical is the normalized, internal form of a scraped tournament
// used by the scrape and persistence layer.
//
// All external sources are mapped into this structure first, then it is
// written to the store as a pending game from this representation.
type GameCanonical struct {
	Name              string            `json:"name"`
	VenueName         string            `json:"venue_name"` // resolved to a venue row on persist
	BuyIn             float64           `json:"buy_in,omitempty"`
	GameStartDateTime string            `json:"game_start_datetime,omitempty"`
	EventNumber       int               `json:"event_number,omitempty"`
	DayNumber         int               `json:"day_number,omitempty"`
	FlightLetter      string            `json:"flight_letter,omitempty"`
	FinalDay          bool              `json:"final_day,omitempty"`
	IsMainEvent       bool              `json:"is_main_event,omitempty"`
	SeriesName        string            `json:"series_name,omitempty"`
	SourceIDs         map[string]string `json:"source_ids,omitempty"`
}
