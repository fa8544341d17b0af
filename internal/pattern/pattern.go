package pattern

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"tourneyhub/pkg/models"
)

// DetectedValues is the sparse result of running the name detector.
// A zero field means "no signal found", the same falsy-means-unset
// convention Fill uses. A detected Day 0 or Event 0 (which cannot
// occur in this domain) would be indistinguishable from no detection,
// and applying it would be a no-op anyway.
type DetectedValues struct {
	IsMainEvent  bool   `json:"is_main_event,omitempty"`
	EventNumber  int    `json:"event_number,omitempty"`
	DayNumber    int    `json:"day_number,omitempty"`
	FlightLetter string `json:"flight_letter,omitempty"`
	FinalDay     bool   `json:"final_day,omitempty"`
}

// Empty reports whether no signal was found at all.
func (d DetectedValues) Empty() bool {
	return d == DetectedValues{}
}

var (
	mainEventRe   = regexp.MustCompile(`(?i)\bmain\s*event\b`)
	eventNumberRe = regexp.MustCompile(`(?i)\bevent\s*#?\s*(\d+)`)
	dayNumberRe   = regexp.MustCompile(`(?i)\bday\s*(\d+)`)
	finalRe       = regexp.MustCompile(`(?i)\b(final\s*(day|table)|ft)\b`)

	// Flight patterns, tried in order; the first one whose last captured
	// group is a genuine single uppercase letter wins.
	flightRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bflight\s*([A-Z])`),
		regexp.MustCompile(`(?i)\bday\s*\d+([A-Z])\b`),
		regexp.MustCompile(`(?i)\b(\d+)([A-Z])\b`),
	}
)

// Detect inspects a tournament display name and returns every structural
// signal found in it: event number, day number, flight letter, main-event
// and final-day flags.
//
// Keyword matching is case-insensitive ("DAY 1b" still reads as a day
// token), but a flight letter is only accepted when it is written in
// uppercase, so "Day 1a" carries no flight signal. Matching never errors;
// a name with no structure yields the zero value.
func Detect(name string) DetectedValues {
	var d DetectedValues
	if strings.TrimSpace(name) == "" {
		return d
	}

	if mainEventRe.MatchString(name) {
		d.IsMainEvent = true
	}

	if m := eventNumberRe.FindStringSubmatch(name); m != nil {
		d.EventNumber = parseIntOrZero(m[1])
	}

	if m := dayNumberRe.FindStringSubmatch(name); m != nil {
		d.DayNumber = parseIntOrZero(m[1])
	}

	for _, re := range flightRes {
		m := re.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		letter := m[len(m)-1]
		if len(letter) == 1 && letter[0] >= 'A' && letter[0] <= 'Z' {
			d.FlightLetter = letter
			break
		}
		// lowercase capture: treat as a non-match and try the next pattern
	}

	if finalRe.MatchString(name) {
		d.FinalDay = true
		if d.DayNumber == 0 {
			d.DayNumber = models.FinalDaySentinel
		}
	}

	return d
}

// Fill applies detected values to g, filling only fields that are
// currently unset (zero value). An already-set field is never changed.
// It returns the names of the fields it filled, in a stable order.
func Fill(g *models.Game, d DetectedValues) []string {
	var applied []string

	if d.IsMainEvent && !g.IsMainEvent {
		g.IsMainEvent = true
		applied = append(applied, "is_main_event")
	}
	if d.EventNumber != 0 && g.EventNumber == 0 {
		g.EventNumber = d.EventNumber
		applied = append(applied, "event_number")
	}
	if d.DayNumber != 0 && g.DayNumber == 0 {
		g.DayNumber = d.DayNumber
		applied = append(applied, "day_number")
	}
	if d.FlightLetter != "" && g.FlightLetter == "" {
		g.FlightLetter = d.FlightLetter
		applied = append(applied, "flight_letter")
	}
	if d.FinalDay && !g.FinalDay {
		g.FinalDay = true
		applied = append(applied, "final_day")
	}

	return applied
}

var (
	dayTokenRe    = regexp.MustCompile(`(?i)\bday\s*\d+[A-Z]?\b`)
	flightTokenRe = regexp.MustCompile(`(?i)\bflight\s*[A-Z]\b`)
	bareFlightRe  = regexp.MustCompile(`(?i)\b\d+[A-Z]\b`)
	eventTokenRe  = regexp.MustCompile(`(?i)\bevent\s*#?\s*\d+\b`)
)

// MatchKey reduces a name to the form used for sibling comparison:
// day, flight, event and final tokens are removed, everything else is
// lowercased with punctuation squashed to single spaces. Two per-day
// records of the same tournament produce the same key.
func MatchKey(name string) string {
	s := stripTokens(name, true)
	return normalizeText(s)
}

// ParentName derives the display name of a consolidated parent from one
// of its member names: day, flight and final tokens are removed but the
// event designation is kept, since it names the event.
// "WSOP Event #8 Day 1B" becomes "WSOP Event #8".
func ParentName(name string) string {
	s := stripTokens(name, false)
	s = strings.Join(strings.Fields(s), " ")
	return strings.Trim(s, " -–,:;/")
}

func stripTokens(name string, dropEvent bool) string {
	s := dayTokenRe.ReplaceAllString(name, " ")
	s = flightTokenRe.ReplaceAllString(s, " ")
	s = bareFlightRe.ReplaceAllString(s, " ")
	s = finalRe.ReplaceAllString(s, " ")
	if dropEvent {
		s = eventTokenRe.ReplaceAllString(s, " ")
	}
	return s
}

// normalizeText converts a string to a canonical form: lowercase,
// remove non-letter/digit characters and compress spaces.
func normalizeText(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// parseIntOrZero parses digits already validated by a regex capture; a
// parse failure (overflow) reads as "no signal".
func parseIntOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
