package scrape

import (
	"context"
	"log"
	"strings"
	"unicode"

	"golang.org/x/sync/errgroup"

	"tourneyhub/pkg/models"
)

// Source is implemented by each external schedule provider (JSON API,
// venue HTML page, local mirror). A source fetches its own data format
// and maps it into GameCanonical.
type Source interface {
	Name() string
	FetchAll(ctx context.Context) ([]models.GameCanonical, error)
}

// SourceResult is the per-source tally of one aggregator run.
type SourceResult struct {
	Source  string
	Fetched int
	Err     error
}

// Aggregator coordinates calls to multiple sources and merges them into
// a single canonical set of tournament records.
type Aggregator struct {
	Sources []Source
}

func NewAggregator(sources ...Source) *Aggregator {
	return &Aggregator{Sources: sources}
}

// FetchAndMerge fetches all sources concurrently and merges entries that
// describe the same game at the same venue on the same date. A broken
// source is logged and tallied, it never kills the whole run. Merging
// happens in declared source order, so conflict resolution stays
// deterministic regardless of which fetch finishes first.
func (a *Aggregator) FetchAndMerge(ctx context.Context) ([]models.GameCanonical, []SourceResult) {
	perSource := make([][]models.GameCanonical, len(a.Sources))
	results := make([]SourceResult, len(a.Sources))

	var g errgroup.Group
	for i, src := range a.Sources {
		i, src := i, src
		g.Go(func() error {
			log.Printf("[scrape] fetching from %s", src.Name())
			games, err := src.FetchAll(ctx)
			if err != nil {
				log.Printf("[scrape] source %s error: %v", src.Name(), err)
				results[i] = SourceResult{Source: src.Name(), Err: err}
				return nil
			}
			perSource[i] = games
			results[i] = SourceResult{Source: src.Name(), Fetched: len(games)}
			return nil
		})
	}
	// per-source errors land in results, so Wait never fails
	_ = g.Wait()

	byKey := make(map[string]models.GameCanonical)
	var order []string
	for i := range a.Sources {
		for _, gc := range perSource[i] {
			key := canonicalKey(gc)
			if existing, ok := byKey[key]; ok {
				byKey[key] = mergeGames(existing, gc)
			} else {
				byKey[key] = gc
				order = append(order, key)
			}
		}
	}

	merged := make([]models.GameCanonical, 0, len(order))
	for _, key := range order {
		merged = append(merged, byKey[key])
	}
	return merged, results
}

// canonicalKey defines how entries from different sources are recognized
// as the same game: same venue, same normalized name, same calendar day.
// Flights are distinct records, so day/flight tokens stay in the key.
func canonicalKey(g models.GameCanonical) string {
	return normalizeKey(g.VenueName) + "|" + normalizeKey(g.Name) + "|" + datePart(g.GameStartDateTime)
}

// normalizeKey converts a string to a canonical form: lowercase, remove
// non-letter/digit characters and compress spaces.
func normalizeKey(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))

	prevSpace := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			prevSpace = false
			continue
		}
		if !prevSpace {
			b.WriteRune(' ')
			prevSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

func datePart(start string) string {
	if len(start) >= 10 {
		return start[:10]
	}
	return start
}

// mergeGames resolves two source records for the same game. The first
// source to mention a field wins; later sources only fill what is still
// unset. SourceIDs are unioned so the record remembers everyone who saw
// it.
func mergeGames(base, incoming models.GameCanonical) models.GameCanonical {
	if base.BuyIn == 0 && incoming.BuyIn > 0 {
		base.BuyIn = incoming.BuyIn
	}
	if base.GameStartDateTime == "" && incoming.GameStartDateTime != "" {
		base.GameStartDateTime = incoming.GameStartDateTime
	}
	if base.EventNumber == 0 && incoming.EventNumber != 0 {
		base.EventNumber = incoming.EventNumber
	}
	if base.DayNumber == 0 && incoming.DayNumber != 0 {
		base.DayNumber = incoming.DayNumber
	}
	if base.FlightLetter == "" && incoming.FlightLetter != "" {
		base.FlightLetter = incoming.FlightLetter
	}
	if incoming.FinalDay {
		base.FinalDay = true
	}
	if incoming.IsMainEvent {
		base.IsMainEvent = true
	}
	if base.SeriesName == "" && incoming.SeriesName != "" {
		base.SeriesName = incoming.SeriesName
	}

	if base.SourceIDs == nil && len(incoming.SourceIDs) > 0 {
		base.SourceIDs = make(map[string]string)
	}
	for k, v := range incoming.SourceIDs {
		base.SourceIDs[k] = v
	}
	return base
}
