package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"tourneyhub/pkg/database"
)

func main() {
	var (
		venuesOut = flag.String("venues", "data/venues.csv", "output CSV path for venues")
		gamesOut  = flag.String("games", "data/games.csv", "output CSV path for games")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	if err := exportVenues(ctx, db, *venuesOut); err != nil {
		log.Fatalf("export venues failed: %v", err)
	}
	if err := exportGames(ctx, db, *gamesOut); err != nil {
		log.Fatalf("export games failed: %v", err)
	}

	log.Printf("✅ exported venues to %s and games to %s", *venuesOut, *gamesOut)
}

func exportVenues(ctx context.Context, db *sql.DB, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"id", "name", "city", "region", "timezone"}); err != nil {
		return err
	}

	rows, err := db.QueryContext(ctx, `
        SELECT id, name, city, region, timezone
        FROM venues
        ORDER BY name
    `)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id       string
			name     string
			city     sql.NullString
			region   sql.NullString
			timezone sql.NullString
		)

		if err := rows.Scan(&id, &name, &city, &region, &timezone); err != nil {
			return err
		}

		if err := w.Write([]string{
			id,
			name,
			city.String,
			region.String,
			timezone.String,
		}); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}

func exportGames(ctx context.Context, db *sql.DB, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{
		"id", "name", "venue_id", "buy_in", "game_start_datetime", "event_number",
		"day_number", "flight_letter", "final_day", "is_main_event", "series_name", "review_status",
	}); err != nil {
		return err
	}

	rows, err := db.QueryContext(ctx, `
        SELECT id, name, venue_id, buy_in, game_start_datetime, event_number,
               day_number, flight_letter, final_day, is_main_event, series_name, review_status
        FROM games
        ORDER BY game_start_datetime, name
    `)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id           string
			name         string
			venueID      sql.NullString
			buyIn        sql.NullFloat64
			start        sql.NullString
			eventNumber  sql.NullInt64
			dayNumber    sql.NullInt64
			flightLetter sql.NullString
			finalDay     bool
			isMainEvent  bool
			seriesName   sql.NullString
			reviewStatus string
		)

		if err := rows.Scan(
			&id, &name, &venueID, &buyIn, &start, &eventNumber,
			&dayNumber, &flightLetter, &finalDay, &isMainEvent, &seriesName, &reviewStatus,
		); err != nil {
			return err
		}

		if err := w.Write([]string{
			id,
			name,
			venueID.String,
			floatOrEmpty(buyIn),
			start.String,
			intOrEmpty(eventNumber),
			intOrEmpty(dayNumber),
			flightLetter.String,
			strconv.FormatBool(finalDay),
			strconv.FormatBool(isMainEvent),
			seriesName.String,
			reviewStatus,
		}); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}

func intOrEmpty(n sql.NullInt64) string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatInt(n.Int64, 10)
}

func floatOrEmpty(f sql.NullFloat64) string {
	if !f.Valid {
		return ""
	}
	return strconv.FormatFloat(f.Float64, 'f', -1, 64)
}
