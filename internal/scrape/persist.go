package scrape

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"tourneyhub/internal/pattern"
	"tourneyhub/pkg/models"
)

// SavePending writes merged canonical records into the store as pending
// games. Venue names resolve to venue rows, created on first sight inside
// the same transaction, and structural fields the source left empty are
// filled from the name. A row already in the store (same venue, name and
// start) only gains fields it is missing; its review status is never
// touched. A failed run rolls everything back, new venues included.
//
// Records without a name, venue or start time are skipped: they cannot be
// deduplicated on later runs.
func SavePending(ctx context.Context, db *sql.DB, list []models.GameCanonical) (int, error) {
	venueIDs := make(map[string]string)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO games (
			id, name, venue_id, buy_in, game_start_datetime, event_number,
			day_number, flight_letter, final_day, is_main_event, series_name,
			review_status, source_ids
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(venue_id, name, game_start_datetime) DO UPDATE SET
			buy_in = COALESCE(games.buy_in, excluded.buy_in),
			event_number = COALESCE(games.event_number, excluded.event_number),
			day_number = COALESCE(games.day_number, excluded.day_number),
			flight_letter = COALESCE(games.flight_letter, excluded.flight_letter),
			final_day = MAX(games.final_day, excluded.final_day),
			is_main_event = MAX(games.is_main_event, excluded.is_main_event),
			series_name = COALESCE(games.series_name, excluded.series_name),
			source_ids = COALESCE(excluded.source_ids, games.source_ids),
			updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	persisted := 0
	for _, gc := range list {
		if gc.Name == "" || gc.VenueName == "" || gc.GameStartDateTime == "" {
			continue
		}

		venueID, ok := venueIDs[gc.VenueName]
		if !ok {
			venueID, err = resolveVenue(ctx, tx, gc.VenueName)
			if err != nil {
				return persisted, fmt.Errorf("resolve venue %q: %w", gc.VenueName, err)
			}
			venueIDs[gc.VenueName] = venueID
		}

		g := models.Game{
			Name:              gc.Name,
			VenueID:           venueID,
			BuyIn:             gc.BuyIn,
			GameStartDateTime: gc.GameStartDateTime,
			EventNumber:       gc.EventNumber,
			DayNumber:         gc.DayNumber,
			FlightLetter:      gc.FlightLetter,
			FinalDay:          gc.FinalDay,
			IsMainEvent:       gc.IsMainEvent,
			SeriesName:        gc.SeriesName,
		}
		pattern.Fill(&g, pattern.Detect(g.Name))

		var sourceIDs any
		if len(gc.SourceIDs) > 0 {
			b, _ := json.Marshal(gc.SourceIDs)
			sourceIDs = string(b)
		}

		if _, err := stmt.ExecContext(ctx,
			uuid.NewString(), g.Name, g.VenueID, nullFloat(g.BuyIn), g.GameStartDateTime, nullInt(g.EventNumber),
			nullInt(g.DayNumber), nullString(g.FlightLetter), g.FinalDay, g.IsMainEvent, nullString(g.SeriesName),
			models.ReviewPending, sourceIDs,
		); err != nil {
			return persisted, fmt.Errorf("upsert %q: %w", g.Name, err)
		}
		persisted++
	}

	if err := tx.Commit(); err != nil {
		return persisted, fmt.Errorf("commit tx: %w", err)
	}
	return persisted, nil
}

// resolveVenue finds or creates the venue row through the save
// transaction. Going through the pool here instead would compete with
// the open tx for a connection and wedge on a single-connection pool.
func resolveVenue(ctx context.Context, tx *sql.Tx, name string) (string, error) {
	name = strings.TrimSpace(name)

	var id string
	err := tx.QueryRowContext(ctx, `SELECT id FROM venues WHERE name = ?`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("lookup venue: %w", err)
	}

	id = uuid.NewString()
	if _, err := tx.ExecContext(ctx, `INSERT INTO venues (id, name) VALUES (?, ?)`, id, name); err != nil {
		return "", fmt.Errorf("insert venue: %w", err)
	}
	return id, nil
}

// Run is one scrape_runs audit row. Every scraper invocation records a
// row per source plus a summary row.
type Run struct {
	ID         string
	Source     string
	StartedAt  time.Time
	FinishedAt time.Time
	Fetched    int
	Merged     int
	Persisted  int
	Err        error
}

func RecordRun(ctx context.Context, db *sql.DB, run Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	var errText any
	if run.Err != nil {
		errText = run.Err.Error()
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO scrape_runs (id, source, started_at, finished_at, fetched, merged, persisted, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Source, run.StartedAt, run.FinishedAt, run.Fetched, run.Merged, run.Persisted, errText)
	if err != nil {
		return fmt.Errorf("insert scrape run: %w", err)
	}
	return nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullFloat(f float64) any {
	if f == 0 {
		return nil
	}
	return f
}

func nullInt(n int) any {
	if n == 0 {
		return nil
	}
	return n
}
