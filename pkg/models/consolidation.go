package models

import "time"

// Consolidation match criteria and deciders, recorded in the audit trail.
// name_pattern marks a parent created for a multi-day record that had no
// sibling matches yet.
const (
	MatchedByEventNumber    = "event_number"
	MatchedByVenueBuyInName = "venue_buyin_name"
	MatchedByNamePattern    = "name_pattern"
	MatchedByManual         = "manual"

	DecidedByAuto     = "auto"
	DecidedByReviewer = "reviewer"
)

// GameConsolidation records that a child record was grouped under a parent
// tournament record, and why, so merges stay traceable.
type GameConsolidation struct {
	ID           int64     `json:"id"`
	ChildGameID  string    `json:"child_game_id"`
	ParentGameID string    `json:"parent_game_id"`
	MatchedBy    string    `json:"matched_by"`
	DecidedBy    string    `json:"decided_by"`
	CreatedAt    time.Time `json:"created_at"`
}
