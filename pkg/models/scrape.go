package models

import "time"

// ScrapeRun is the audit row written for every scraper invocation.
type ScrapeRun struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"` // comma-joined source names
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Fetched    int       `json:"fetched"`
	Merged     int       `json:"merged"`
	Persisted  int       `json:"persisted"`
	Error      string    `json:"error,omitempty"`
}
