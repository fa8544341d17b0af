package models

import "time"

// TournamentSeries is an explicit series record (e.g. a festival) that
// games can be attached to by id. Records scraped before the series is
// known carry only a free-text series_name label.
type TournamentSeries struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	VenueID   string    `json:"venue_id,omitempty"`
	StartsOn  string    `json:"starts_on,omitempty"` // YYYY-MM-DD
	EndsOn    string    `json:"ends_on,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}
