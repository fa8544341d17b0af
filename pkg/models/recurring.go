package models

import "time"

// RecurringGame is a canonical weekly game (e.g. "Tuesday $150 Deepstack")
// that scraped one-off records can be assigned to as instances. Weekday
// follows time.Weekday numbering, 0 = Sunday.
type RecurringGame struct {
	ID        string    `json:"id"`
	VenueID   string    `json:"venue_id"`
	Name      string    `json:"name"`
	Weekday   int       `json:"weekday"`
	StartTime string    `json:"start_time,omitempty"` // "19:00" local
	BuyIn     float64   `json:"buy_in,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}
