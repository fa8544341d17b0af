package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"tourneyhub/pkg/database"
	"tourneyhub/pkg/models"
)

func main() {
	var (
		venuesIn = flag.String("venues", "data/venues.csv", "input CSV path for venues")
		gamesIn  = flag.String("games", "data/games.csv", "input CSV path for games")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	if err := importVenues(ctx, db, *venuesIn); err != nil {
		log.Fatalf("import venues failed: %v", err)
	}
	if err := importGames(ctx, db, *gamesIn); err != nil {
		log.Fatalf("import games failed: %v", err)
	}

	log.Printf("✅ imported venues from %s and games from %s", *venuesIn, *gamesIn)
}

func importVenues(ctx context.Context, db *sql.DB, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := readHeader(r)
	if err != nil {
		return err
	}

	stmt, err := db.PrepareContext(ctx, `
		INSERT INTO venues (id, name, city, region, timezone)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		  name = excluded.name,
		  city = excluded.city,
		  region = excluded.region,
		  timezone = excluded.timezone
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if len(row) == 0 {
			continue
		}

		id := valueAt(header, row, "id")
		name := valueAt(header, row, "name")
		if name == "" {
			continue
		}
		if id == "" {
			id = uuid.NewString()
		}

		if _, err := stmt.ExecContext(
			ctx,
			id,
			name,
			nullString(valueAt(header, row, "city")),
			nullString(valueAt(header, row, "region")),
			nullString(valueAt(header, row, "timezone")),
		); err != nil {
			return err
		}
	}

	return nil
}

func importGames(ctx context.Context, db *sql.DB, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := readHeader(r)
	if err != nil {
		return err
	}

	stmt, err := db.PrepareContext(ctx, `
		INSERT INTO games (
			id, name, venue_id, buy_in, game_start_datetime, event_number,
			day_number, flight_letter, final_day, is_main_event, series_name, review_status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		  name = excluded.name,
		  venue_id = excluded.venue_id,
		  buy_in = excluded.buy_in,
		  game_start_datetime = excluded.game_start_datetime,
		  event_number = excluded.event_number,
		  day_number = excluded.day_number,
		  flight_letter = excluded.flight_letter,
		  final_day = excluded.final_day,
		  is_main_event = excluded.is_main_event,
		  series_name = excluded.series_name,
		  review_status = excluded.review_status,
		  updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if len(row) == 0 {
			continue
		}

		id := valueAt(header, row, "id")
		name := valueAt(header, row, "name")
		if name == "" {
			continue
		}
		if id == "" {
			id = uuid.NewString()
		}

		buyIn, err := parseNullFloat(valueAt(header, row, "buy_in"))
		if err != nil {
			return fmt.Errorf("parse buy_in for %s: %w", id, err)
		}
		eventNumber, err := parseNullInt(valueAt(header, row, "event_number"))
		if err != nil {
			return fmt.Errorf("parse event_number for %s: %w", id, err)
		}
		dayNumber, err := parseNullInt(valueAt(header, row, "day_number"))
		if err != nil {
			return fmt.Errorf("parse day_number for %s: %w", id, err)
		}

		status := valueAt(header, row, "review_status")
		if status == "" {
			status = models.ReviewPending
		}

		if _, err := stmt.ExecContext(
			ctx,
			id,
			name,
			nullString(valueAt(header, row, "venue_id")),
			buyIn,
			nullString(valueAt(header, row, "game_start_datetime")),
			eventNumber,
			dayNumber,
			nullString(strings.ToUpper(valueAt(header, row, "flight_letter"))),
			parseBool(valueAt(header, row, "final_day")),
			parseBool(valueAt(header, row, "is_main_event")),
			nullString(valueAt(header, row, "series_name")),
			status,
		); err != nil {
			return err
		}
	}

	return nil
}

func readHeader(r *csv.Reader) (map[string]int, error) {
	row, err := r.Read()
	if err != nil {
		return nil, err
	}
	header := make(map[string]int, len(row))
	for idx, name := range row {
		header[strings.TrimSpace(strings.ToLower(name))] = idx
	}
	return header, nil
}

func valueAt(header map[string]int, row []string, key string) string {
	idx, ok := header[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseNullInt(raw string) (sql.NullInt64, error) {
	if raw == "" {
		return sql.NullInt64{}, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return sql.NullInt64{}, err
	}
	if n == 0 {
		return sql.NullInt64{}, nil
	}
	return sql.NullInt64{Int64: n, Valid: true}, nil
}

func parseNullFloat(raw string) (sql.NullFloat64, error) {
	if raw == "" {
		return sql.NullFloat64{}, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return sql.NullFloat64{}, err
	}
	if f == 0 {
		return sql.NullFloat64{}, nil
	}
	return sql.NullFloat64{Float64: f, Valid: true}, nil
}

func parseBool(raw string) bool {
	b, err := strconv.ParseBool(strings.ToLower(raw))
	if err != nil {
		return false
	}
	return b
}

func nullString(raw string) sql.NullString {
	if raw == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: raw, Valid: true}
}
