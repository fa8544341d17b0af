package models

import "time"

// GameNote is a reviewer note attached to a game record.
type GameNote struct {
	ID        int64     `json:"id"`
	GameID    string    `json:"game_id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}
