package sync

import "time"

// Event types fanned out to followers (floor displays, other admin
// instances, the CLI).
const (
	EventGameScraped      = "game.scraped"
	EventGameUpdated      = "game.updated"
	EventGameApproved     = "game.approved"
	EventGameConsolidated = "game.consolidated"
)

// GameEvent is one change notification. ParentID is set on consolidation
// events only.
type GameEvent struct {
	Type     string    `json:"type"`
	GameID   string    `json:"game_id"`
	VenueID  string    `json:"venue_id,omitempty"`
	Name     string    `json:"name,omitempty"`
	ParentID string    `json:"parent_id,omitempty"`
	At       time.Time `json:"at"`
}
