package main

import (
	"context"
	"log"
	"time"

	"tourneyhub/internal/scrape"
	"tourneyhub/pkg/database"
	"tourneyhub/pkg/utils"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	// Ensure schema exists
	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	cfg := utils.LoadScraperConfig()

	// Kings Club JSON feed; defaults to the local mirror server (demo-safe)
	sources := []scrape.Source{
		scrape.NewKingsClubSource(cfg.KingsClubURL, cfg.RequestsPerSecond),
	}

	// Venue HTML schedule pages, if configured
	var pages []scrape.VenuePage
	for name, url := range cfg.VenuePages {
		pages = append(pages, scrape.VenuePage{VenueName: name, URL: url})
	}
	if len(pages) > 0 {
		sources = append(sources, scrape.NewVenuePagesSource(pages...))
	}

	agg := scrape.NewAggregator(sources...)

	started := time.Now().UTC()
	merged, results := agg.FetchAndMerge(ctx)
	log.Printf("merged games: %d", len(merged))

	persisted, err := scrape.SavePending(ctx, db, merged)
	if err != nil {
		log.Fatalf("save failed: %v", err)
	}
	finished := time.Now().UTC()

	// One audit row per source plus a run summary
	for _, res := range results {
		run := scrape.Run{
			Source:     res.Source,
			StartedAt:  started,
			FinishedAt: finished,
			Fetched:    res.Fetched,
			Err:        res.Err,
		}
		if err := scrape.RecordRun(ctx, db, run); err != nil {
			log.Printf("record run for %s failed: %v", res.Source, err)
		}
	}
	if err := scrape.RecordRun(ctx, db, scrape.Run{
		Source:     "all",
		StartedAt:  started,
		FinishedAt: finished,
		Merged:     len(merged),
		Persisted:  persisted,
	}); err != nil {
		log.Printf("record run summary failed: %v", err)
	}

	log.Printf("✅ %d pending games persisted", persisted)
}
