package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"tourneyhub/pkg/database"
)

// MirrorEntry matches the Kings Club feed shape, so the mirror-server
// can serve exported data straight back to the scraper.
type MirrorEntry struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Venue       string `json:"venue"`
	Series      string `json:"series,omitempty"`
	BuyIn       string `json:"buyin,omitempty"`
	StartsAt    string `json:"starts_at,omitempty"`
	EventNumber int    `json:"event_number,omitempty"`
	Day         int    `json:"day,omitempty"`
	Flight      string `json:"flight,omitempty"`
	FinalDay    bool   `json:"final_day,omitempty"`
	MainEvent   bool   `json:"main_event,omitempty"`
}

func main() {
	var (
		outPath = flag.String("out", "data/mirror.json", "output JSON path")
		limit   = flag.Int("limit", 200, "how many games to export")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT g.id, g.name, v.name, g.series_name, g.buy_in, g.game_start_datetime,
		       g.event_number, g.day_number, g.flight_letter, g.final_day, g.is_main_event,
		       g.source_ids
		FROM games g
		JOIN venues v ON v.id = g.venue_id
		ORDER BY g.game_start_datetime, g.name
		LIMIT ?
	`, *limit)
	if err != nil {
		log.Fatalf("query failed: %v", err)
	}
	defer rows.Close()

	var out []MirrorEntry
	for rows.Next() {
		var (
			id           string
			name         string
			venueName    string
			seriesName   sql.NullString
			buyIn        sql.NullFloat64
			start        sql.NullString
			eventNumber  sql.NullInt64
			dayNumber    sql.NullInt64
			flightLetter sql.NullString
			finalDay     bool
			isMainEvent  bool
			sourceIDs    sql.NullString
		)

		if err := rows.Scan(
			&id, &name, &venueName, &seriesName, &buyIn, &start,
			&eventNumber, &dayNumber, &flightLetter, &finalDay, &isMainEvent, &sourceIDs,
		); err != nil {
			log.Fatalf("scan failed: %v", err)
		}

		out = append(out, MirrorEntry{
			Slug:        toSlug(id, name, sourceIDs.String),
			Title:       name,
			Venue:       venueName,
			Series:      seriesName.String,
			BuyIn:       moneyOrEmpty(buyIn),
			StartsAt:    start.String,
			EventNumber: int(eventNumber.Int64),
			Day:         int(dayNumber.Int64),
			Flight:      flightLetter.String,
			FinalDay:    finalDay,
			MainEvent:   isMainEvent,
		})
	}
	if err := rows.Err(); err != nil {
		log.Fatalf("rows error: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		log.Fatalf("mkdir failed: %v", err)
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		log.Fatalf("marshal failed: %v", err)
	}

	if err := os.WriteFile(*outPath, b, 0o644); err != nil {
		log.Fatalf("write failed: %v", err)
	}

	log.Printf("✅ exported %d games to %s", len(out), *outPath)
}

// toSlug prefers the original scrape slug when the record carries one,
// so a round trip through the mirror deduplicates against the source.
func toSlug(id, name, sourceIDsJSON string) string {
	if sourceIDsJSON != "" {
		var ids map[string]string
		if err := json.Unmarshal([]byte(sourceIDsJSON), &ids); err == nil {
			if slug := ids["kingsclub"]; slug != "" {
				return slug
			}
		}
	}
	if looksLikeUUID(id) {
		return slugify(name)
	}
	return slugify(id)
}

func looksLikeUUID(s string) bool {
	// quick heuristic; good enough for this tool
	return len(s) >= 32 && strings.Count(s, "-") >= 3
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	lastDash := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastDash = false
		} else {
			if !lastDash {
				b.WriteRune('-')
				lastDash = true
			}
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		out = "untitled"
	}
	return out
}

func moneyOrEmpty(f sql.NullFloat64) string {
	if !f.Valid || f.Float64 <= 0 {
		return ""
	}
	return strconv.FormatFloat(f.Float64, 'f', -1, 64)
}
