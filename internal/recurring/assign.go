package recurring

import (
	"fmt"
	"strings"
	"time"

	"tourneyhub/internal/pattern"
	"tourneyhub/pkg/models"
)

// Proposal is a suggested recurring-game assignment for a scraped record,
// offered to the reviewer to confirm or reject.
type Proposal struct {
	RecurringGameID string   `json:"recurring_game_id"`
	RecurringName   string   `json:"recurring_name"`
	Confidence      float64  `json:"confidence"`
	Status          string   `json:"status"`
	Indicators      []string `json:"indicators"`
}

// proposeThreshold is the minimum combined score a recurring game must
// reach before Propose suggests it.
const proposeThreshold = 0.5

// Score weights. Weekday is the strongest signal a weekly game has.
const (
	weekdayWeight   = 0.4
	buyInWeight     = 0.3
	nameWeight      = 0.3
	startTimeWeight = 0.1
)

// Propose scores g against the venue's recurring games and returns the
// best match above the threshold, or nil when nothing qualifies.
// Multi-day records are never instances of a weekly game.
func Propose(g models.Game, recs []models.RecurringGame) *Proposal {
	if isMultiDay(g) {
		return nil
	}

	var best *Proposal
	for _, rec := range recs {
		if !rec.Active {
			continue
		}
		s, indicators := Score(g, rec)
		if s < proposeThreshold {
			continue
		}
		if best == nil || s > best.Confidence {
			best = &Proposal{
				RecurringGameID: rec.ID,
				RecurringName:   rec.Name,
				Confidence:      s,
				Status:          models.AssignmentPending,
				Indicators:      indicators,
			}
		}
	}
	return best
}

// Deviations describes how an instance drifted from its recurring game's
// schedule. The strings end up in the record's deviation notes when the
// assignment is confirmed.
func Deviations(g models.Game, rec models.RecurringGame) []string {
	var out []string

	if start, ok := parseStart(g.GameStartDateTime); ok {
		if int(start.Weekday()) != rec.Weekday {
			out = append(out, fmt.Sprintf("ran on %s instead of %s", start.Weekday(), time.Weekday(rec.Weekday)))
		}
		if rec.StartTime != "" && minutesApart(start, rec.StartTime) > 30 {
			out = append(out, fmt.Sprintf("started %02d:%02d instead of %s", start.Hour(), start.Minute(), rec.StartTime))
		}
	}

	if g.BuyIn > 0 && rec.BuyIn > 0 && g.BuyIn != rec.BuyIn {
		out = append(out, fmt.Sprintf("buy-in %.0f instead of %.0f", g.BuyIn, rec.BuyIn))
	}

	return out
}

func isMultiDay(g models.Game) bool {
	if g.EventNumber != 0 || g.DayNumber != 0 || g.FlightLetter != "" || g.FinalDay {
		return true
	}
	d := pattern.Detect(g.Name)
	return d.DayNumber != 0 || d.FlightLetter != "" || d.FinalDay
}

// Score rates how well g fits a recurring game's schedule, 0 to 1, along
// with the indicators that matched. Venue mismatch scores zero outright.
func Score(g models.Game, rec models.RecurringGame) (float64, []string) {
	if g.VenueID == "" || g.VenueID != rec.VenueID {
		return 0, nil
	}

	var s float64
	var indicators []string

	start, hasStart := parseStart(g.GameStartDateTime)
	if hasStart && int(start.Weekday()) == rec.Weekday {
		s += weekdayWeight
		indicators = append(indicators, "weekday")
	}

	if g.BuyIn > 0 && rec.BuyIn > 0 && buyInClose(g.BuyIn, rec.BuyIn) {
		s += buyInWeight
		indicators = append(indicators, "buy_in")
	}

	if nameSimilar(g.Name, rec.Name) {
		s += nameWeight
		indicators = append(indicators, "name")
	}

	if hasStart && rec.StartTime != "" && minutesApart(start, rec.StartTime) <= 60 {
		s += startTimeWeight
		indicators = append(indicators, "start_time")
	}

	if s > 1 {
		s = 1
	}
	return s, indicators
}

// nameSimilar compares the two names with day/flight tokens stripped and
// case folded: containment either way counts, as does sharing at least
// half of the recurring name's words.
func nameSimilar(gameName, recName string) bool {
	ka, kb := pattern.MatchKey(gameName), pattern.MatchKey(recName)
	if ka == "" || kb == "" {
		return false
	}
	if strings.Contains(ka, kb) || strings.Contains(kb, ka) {
		return true
	}

	seen := make(map[string]bool)
	for _, w := range strings.Fields(ka) {
		seen[w] = true
	}
	shared := 0
	words := strings.Fields(kb)
	for _, w := range words {
		if seen[w] {
			shared++
		}
	}
	return shared > 0 && shared*2 >= len(words)
}

// buyInClose mirrors the consolidation tolerance: within 10% of the
// larger amount.
func buyInClose(a, b float64) bool {
	larger := a
	if b > larger {
		larger = b
	}
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff <= 0.10*larger
}

func minutesApart(start time.Time, hhmm string) int {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return 24 * 60
	}
	a := start.Hour()*60 + start.Minute()
	b := t.Hour()*60 + t.Minute()
	d := a - b
	if d < 0 {
		d = -d
	}
	return d
}

func parseStart(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
