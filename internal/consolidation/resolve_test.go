package consolidation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourneyhub/pkg/models"
)

func game(id, name, venueID string, buyIn float64) models.Game {
	return models.Game{ID: id, Name: name, VenueID: venueID, BuyIn: buyIn}
}

func TestResolveNoStructuralSignal(t *testing.T) {
	rec := game("g1", "Sunday Million", "v1", 215)

	dec := Resolve(rec, nil, Options{IncludeSiblingDetails: true})

	assert.False(t, dec.WillConsolidate)
	assert.Empty(t, dec.ParentName)
	assert.Empty(t, dec.ParentGameID)
	assert.Empty(t, dec.Siblings)
	assert.Equal(t, SourceNone, dec.DetectedPattern.DetectionSource)
	assert.False(t, dec.DetectedPattern.IsMultiDay)
}

func TestResolveSharedEventNumber(t *testing.T) {
	rec := game("g1", "Event 8 Day 1A", "v1", 400)
	cands := []models.Game{
		game("g2", "Event 8 Day 1B", "v1", 400),
	}

	dec := Resolve(rec, cands, Options{IncludeSiblingDetails: true})

	assert.True(t, dec.WillConsolidate)
	assert.Equal(t, "Event 8", dec.ParentName)
	require.Len(t, dec.Siblings, 1)
	assert.Equal(t, "g2", dec.Siblings[0].Game.ID)
	assert.Equal(t, models.MatchedByEventNumber, dec.Siblings[0].MatchedBy)
}

func TestResolveVenueBuyInNameCriterion(t *testing.T) {
	rec := game("g1", "Mystery Bounty Day 1A", "v1", 400)
	cands := []models.Game{
		game("g2", "Mystery Bounty Day 1B", "v1", 420), // within 10% of the larger
	}

	dec := Resolve(rec, cands, Options{IncludeSiblingDetails: true})

	assert.True(t, dec.WillConsolidate)
	assert.Equal(t, "Mystery Bounty", dec.ParentName)
	require.Len(t, dec.Siblings, 1)
	assert.Equal(t, models.MatchedByVenueBuyInName, dec.Siblings[0].MatchedBy)
}

func TestResolveBuyInOutsideTolerance(t *testing.T) {
	rec := game("g1", "Mystery Bounty Day 1A", "v1", 400)
	cands := []models.Game{
		game("g2", "Mystery Bounty Day 1B", "v1", 600),
	}

	dec := Resolve(rec, cands, Options{IncludeSiblingDetails: true})

	// Still consolidates as the first member of a new group.
	assert.True(t, dec.WillConsolidate)
	assert.Equal(t, "Mystery Bounty", dec.ParentName)
	assert.Empty(t, dec.Siblings)
}

func TestResolveConflictingEventNumbersExclude(t *testing.T) {
	rec := game("g1", "Deepstack Event 3 Day 1A", "v1", 400)
	cands := []models.Game{
		// stripped name and buy-in agree, but the event number does not
		game("g2", "Deepstack Event 4 Day 1B", "v1", 400),
	}

	dec := Resolve(rec, cands, Options{IncludeSiblingDetails: true})

	assert.True(t, dec.WillConsolidate)
	assert.Empty(t, dec.Siblings)
}

func TestResolveReusesExistingParent(t *testing.T) {
	rec := game("g1", "WSOP Event #8 Day 1B", "v1", 400)
	parent := game("p1", "WSOP Event #8", "v1", 400)
	parent.IsConsolidationParent = true
	cands := []models.Game{
		game("g2", "WSOP Event #8 Day 1A", "v1", 400),
		parent,
	}

	dec := Resolve(rec, cands, Options{IncludeSiblingDetails: true})

	assert.True(t, dec.WillConsolidate)
	assert.Equal(t, "WSOP Event #8", dec.ParentName, "existing parent name is reused verbatim")
	assert.Equal(t, "p1", dec.ParentGameID)
	assert.Len(t, dec.Siblings, 2)
}

func TestResolveDetectionSourcePriority(t *testing.T) {
	// Explicit fields win, but the name-derived values are still reported
	// so a reviewer can apply them manually.
	rec := game("g1", "Marathon Day 1", "v1", 400)
	rec.DayNumber = 2

	dec := Resolve(rec, nil, Options{})

	assert.Equal(t, SourceExplicitFields, dec.DetectedPattern.DetectionSource)
	assert.True(t, dec.DetectedPattern.IsMultiDay)
	assert.Equal(t, 1, dec.DetectedPattern.ParsedDayNumber)
}

func TestResolveExplicitEventNumberAlone(t *testing.T) {
	rec := game("g1", "Seniors Championship", "v1", 300)
	rec.EventNumber = 8

	dec := Resolve(rec, nil, Options{})

	assert.True(t, dec.WillConsolidate)
	assert.Equal(t, SourceExplicitFields, dec.DetectedPattern.DetectionSource)
	assert.Equal(t, "Seniors Championship", dec.ParentName)
}

func TestResolveNamePatternSource(t *testing.T) {
	rec := game("g1", "Colossus 2A", "v1", 150)

	dec := Resolve(rec, nil, Options{})

	assert.True(t, dec.WillConsolidate)
	assert.Equal(t, SourceNamePattern, dec.DetectedPattern.DetectionSource)
	assert.Equal(t, "A", dec.DetectedPattern.ParsedFlightLetter)
	assert.Equal(t, "Colossus", dec.ParentName)
}

func TestResolveSkipsMalformedAndForeignCandidates(t *testing.T) {
	rec := game("g1", "Event 8 Day 1A", "v1", 400)
	noVenue := game("g2", "Event 8 Day 1B", "", 400)
	noBuyIn := game("g3", "Event 8 Day 1C", "v1", 0)
	otherVenue := game("g4", "Event 8 Day 1D", "v2", 400)
	self := game("g1", "Event 8 Day 1A", "v1", 400)

	dec := Resolve(rec, []models.Game{noVenue, noBuyIn, otherVenue, self}, Options{IncludeSiblingDetails: true})

	assert.True(t, dec.WillConsolidate)
	assert.Empty(t, dec.Siblings)
}

func TestResolveOrdersEventMatchesFirst(t *testing.T) {
	rec := game("g1", "Deepstack Event 3 Day 1A", "v1", 400)
	cands := []models.Game{
		// first candidate matches by name only, second by event number
		game("g2", "Deepstack Day 1B", "v1", 400),
		game("g3", "Deepstack Event 3 Day 2", "v1", 400),
	}

	dec := Resolve(rec, cands, Options{IncludeSiblingDetails: true})

	require.Len(t, dec.Siblings, 2)
	assert.Equal(t, "g3", dec.Siblings[0].Game.ID)
	assert.Equal(t, models.MatchedByEventNumber, dec.Siblings[0].MatchedBy)
	assert.Equal(t, "g2", dec.Siblings[1].Game.ID)
	assert.Equal(t, models.MatchedByVenueBuyInName, dec.Siblings[1].MatchedBy)
}

func TestResolveWithoutSiblingDetails(t *testing.T) {
	rec := game("g1", "Event 8 Day 1A", "v1", 400)
	cands := []models.Game{
		game("g2", "Event 8 Day 1B", "v1", 400),
	}

	dec := Resolve(rec, cands, Options{})

	assert.True(t, dec.WillConsolidate)
	assert.Equal(t, "Event 8", dec.ParentName)
	assert.Nil(t, dec.Siblings, "details are opt-in")
}

func TestBuyInClose(t *testing.T) {
	tests := []struct {
		a, b float64
		want bool
	}{
		{400, 400, true},
		{400, 440, true},  // exactly 10% of the larger
		{400, 445, false}, // just past
		{100, 91, true},
		{0, 400, false},
		{400, 0, false},
		{0, 0, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, buyInClose(tt.a, tt.b), "buyInClose(%v, %v)", tt.a, tt.b)
	}
}
