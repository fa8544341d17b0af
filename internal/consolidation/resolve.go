package consolidation

import (
	"math"

	"tourneyhub/internal/pattern"
	"tourneyhub/pkg/models"
)

// Detection sources, strongest first. Explicit fields win over the name
// parser when both indicate a multi-day structure.
const (
	SourceExplicitFields = "explicitFields"
	SourceNamePattern    = "namePattern"
	SourceNone           = "none"
)

// buyInTolerance is the allowed relative gap between two buy-ins for the
// venue+buyIn+name criterion, as a fraction of the larger amount.
const buyInTolerance = 0.10

// Options controls how much detail Resolve returns.
type Options struct {
	// IncludeSiblingDetails requests the full matched-sibling list in the
	// decision instead of just the summary fields.
	IncludeSiblingDetails bool
}

// DetectedPattern explains why (or why not) a record reads as multi-day.
// The Parsed values always reflect the name alone, even when explicit
// fields disagree, so a reviewer can still apply the name-derived values
// by hand.
type DetectedPattern struct {
	IsMultiDay         bool   `json:"is_multi_day"`
	DetectionSource    string `json:"detection_source"`
	ParsedDayNumber    int    `json:"parsed_day_number,omitempty"`
	ParsedFlightLetter string `json:"parsed_flight_letter,omitempty"`
	IsFinalDay         bool   `json:"is_final_day,omitempty"`
}

// SiblingMatch is one candidate that matched, with the criterion that
// fired for it.
type SiblingMatch struct {
	Game      models.Game `json:"game"`
	MatchedBy string      `json:"matched_by"`
}

// Decision is the grouping verdict for one record.
type Decision struct {
	WillConsolidate bool   `json:"will_consolidate"`
	ParentName      string `json:"parent_name,omitempty"`

	// ParentGameID is set when an existing consolidation parent sits in
	// the candidate set; the record should attach to it rather than have
	// a new parent created.
	ParentGameID    string          `json:"parent_game_id,omitempty"`
	DetectedPattern DetectedPattern `json:"detected_pattern"`
	Siblings        []SiblingMatch  `json:"siblings,omitempty"`
}

// Resolve decides whether rec belongs to a multi-day group and which
// parent it should join. Candidates are typically pre-filtered to the
// same venue and a comparable buy-in; entries missing a venue or buy-in
// are skipped rather than treated as errors. Resolve performs no I/O and
// never mutates its inputs, so identical inputs always produce the same
// decision.
func Resolve(rec models.Game, candidates []models.Game, opts Options) Decision {
	detected := pattern.Detect(rec.Name)

	dp := DetectedPattern{
		ParsedDayNumber:    detected.DayNumber,
		ParsedFlightLetter: detected.FlightLetter,
		IsFinalDay:         detected.FinalDay,
	}

	explicit := rec.EventNumber != 0 || rec.DayNumber != 0 || rec.FlightLetter != ""
	byName := detected.DayNumber != 0 || detected.FlightLetter != "" || detected.FinalDay

	switch {
	case explicit:
		dp.IsMultiDay = true
		dp.DetectionSource = SourceExplicitFields
	case byName:
		dp.IsMultiDay = true
		dp.DetectionSource = SourceNamePattern
	default:
		// Not multi-day. The parsed values still ride along so the UI can
		// offer them as a suggestion.
		dp.DetectionSource = SourceNone
		return Decision{DetectedPattern: dp}
	}

	recEvent := rec.EventNumber
	if recEvent == 0 {
		recEvent = detected.EventNumber
	}
	recKey := pattern.MatchKey(rec.Name)

	// Shared event number is the stronger signal, so those siblings are
	// collected separately and listed first.
	var byEvent, byKey []SiblingMatch
	for _, c := range candidates {
		if c.ID == rec.ID {
			continue
		}
		if c.VenueID == "" || c.BuyIn <= 0 {
			continue
		}
		if c.VenueID != rec.VenueID {
			continue
		}

		candEvent := c.EventNumber
		if candEvent == 0 {
			candEvent = pattern.Detect(c.Name).EventNumber
		}
		// Conflicting event numbers rule a candidate out even when the
		// stripped names agree.
		if recEvent != 0 && candEvent != 0 && recEvent != candEvent {
			continue
		}

		switch {
		case recEvent != 0 && candEvent == recEvent:
			byEvent = append(byEvent, SiblingMatch{Game: c, MatchedBy: models.MatchedByEventNumber})
		case recKey != "" && buyInClose(rec.BuyIn, c.BuyIn) && pattern.MatchKey(c.Name) == recKey:
			byKey = append(byKey, SiblingMatch{Game: c, MatchedBy: models.MatchedByVenueBuyInName})
		}
	}
	siblings := append(byEvent, byKey...)

	dec := Decision{
		WillConsolidate: true,
		DetectedPattern: dp,
	}

	// An existing parent in the group keeps its name verbatim; otherwise
	// the parent name is derived by stripping the day/flight tokens.
	for _, s := range siblings {
		if s.Game.IsConsolidationParent {
			dec.ParentName = s.Game.Name
			dec.ParentGameID = s.Game.ID
			break
		}
	}
	if dec.ParentName == "" {
		dec.ParentName = pattern.ParentName(rec.Name)
	}
	if dec.ParentName == "" && len(siblings) > 0 {
		dec.ParentName = pattern.ParentName(siblings[0].Game.Name)
	}

	if opts.IncludeSiblingDetails {
		dec.Siblings = siblings
	}
	return dec
}

// buyInClose reports whether two buy-ins sit within the tolerance of the
// larger one. Unset (zero) buy-ins never compare close.
func buyInClose(a, b float64) bool {
	if a <= 0 || b <= 0 {
		return false
	}
	larger := a
	if b > larger {
		larger = b
	}
	return math.Abs(a-b) <= buyInTolerance*larger
}
