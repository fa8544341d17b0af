package recurring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourneyhub/pkg/models"
)

// 2026-08-14 is a Friday.
const fridayStart = "2026-08-14T19:00:00Z"

func weeklyDeepstack() models.RecurringGame {
	return models.RecurringGame{
		ID:        "rec-1",
		VenueID:   "v1",
		Name:      "Friday $150 Deepstack",
		Weekday:   5,
		StartTime: "19:00",
		BuyIn:     150,
		Active:    true,
	}
}

func TestProposeFullMatch(t *testing.T) {
	g := models.Game{
		Name:              "Friday Night Deepstack",
		VenueID:           "v1",
		BuyIn:             150,
		GameStartDateTime: fridayStart,
	}

	p := Propose(g, []models.RecurringGame{weeklyDeepstack()})

	require.NotNil(t, p)
	assert.Equal(t, "rec-1", p.RecurringGameID)
	assert.Equal(t, "Friday $150 Deepstack", p.RecurringName)
	assert.InDelta(t, 1.0, p.Confidence, 1e-9)
	assert.Equal(t, models.AssignmentPending, p.Status)
	assert.Equal(t, []string{"weekday", "buy_in", "name", "start_time"}, p.Indicators)
}

func TestProposeSkipsMultiDayRecords(t *testing.T) {
	recs := []models.RecurringGame{weeklyDeepstack()}

	byName := models.Game{Name: "Deepstack Day 2", VenueID: "v1", BuyIn: 150, GameStartDateTime: fridayStart}
	assert.Nil(t, Propose(byName, recs))

	byField := models.Game{Name: "Deepstack", VenueID: "v1", BuyIn: 150, GameStartDateTime: fridayStart, FlightLetter: "A"}
	assert.Nil(t, Propose(byField, recs))
}

func TestProposeBelowThreshold(t *testing.T) {
	// name similarity alone scores 0.3, under the 0.5 threshold
	g := models.Game{Name: "Friday Night Deepstack", VenueID: "v1", BuyIn: 500}

	p := Propose(g, []models.RecurringGame{weeklyDeepstack()})
	assert.Nil(t, p)
}

func TestProposeWrongVenue(t *testing.T) {
	g := models.Game{Name: "Friday Night Deepstack", VenueID: "v2", BuyIn: 150, GameStartDateTime: fridayStart}

	p := Propose(g, []models.RecurringGame{weeklyDeepstack()})
	assert.Nil(t, p)
}

func TestProposeSkipsInactive(t *testing.T) {
	rec := weeklyDeepstack()
	rec.Active = false
	g := models.Game{Name: "Friday Night Deepstack", VenueID: "v1", BuyIn: 150, GameStartDateTime: fridayStart}

	p := Propose(g, []models.RecurringGame{rec})
	assert.Nil(t, p)
}

func TestProposeWithoutBuyIn(t *testing.T) {
	g := models.Game{Name: "Friday Night Deepstack", VenueID: "v1", GameStartDateTime: fridayStart}

	p := Propose(g, []models.RecurringGame{weeklyDeepstack()})

	require.NotNil(t, p)
	assert.InDelta(t, 0.8, p.Confidence, 1e-9) // weekday + name + start_time
	assert.NotContains(t, p.Indicators, "buy_in")
}

func TestProposePicksBestOfSeveral(t *testing.T) {
	other := models.RecurringGame{
		ID:      "rec-2",
		VenueID: "v1",
		Name:    "Friday Turbo",
		Weekday: 5,
		BuyIn:   80,
		Active:  true,
	}
	g := models.Game{Name: "Friday Night Deepstack", VenueID: "v1", BuyIn: 150, GameStartDateTime: fridayStart}

	p := Propose(g, []models.RecurringGame{other, weeklyDeepstack()})

	require.NotNil(t, p)
	assert.Equal(t, "rec-1", p.RecurringGameID)
}

func TestDeviations(t *testing.T) {
	rec := weeklyDeepstack()

	t.Run("none on schedule", func(t *testing.T) {
		g := models.Game{Name: "Friday Night Deepstack", VenueID: "v1", BuyIn: 150, GameStartDateTime: fridayStart}
		assert.Empty(t, Deviations(g, rec))
	})

	t.Run("time and buy-in drift", func(t *testing.T) {
		g := models.Game{
			Name:              "Friday Night Deepstack",
			VenueID:           "v1",
			BuyIn:             180,
			GameStartDateTime: "2026-08-14T20:15:00Z",
		}
		got := Deviations(g, rec)
		assert.Equal(t, []string{
			"started 20:15 instead of 19:00",
			"buy-in 180 instead of 150",
		}, got)
	})

	t.Run("wrong weekday", func(t *testing.T) {
		g := models.Game{
			Name:              "Friday Night Deepstack",
			VenueID:           "v1",
			BuyIn:             150,
			GameStartDateTime: "2026-08-15T19:00:00Z", // a Saturday
		}
		got := Deviations(g, rec)
		assert.Equal(t, []string{"ran on Saturday instead of Friday"}, got)
	})
}

func TestNameSimilar(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"Friday Night Deepstack", "Friday $150 Deepstack", true},
		{"Tuesday Deepstack", "Tuesday Deepstack", true},
		{"Big O Eight Game", "Friday $150 Deepstack", false},
		{"", "Friday $150 Deepstack", false},
		{"Monster Stack", "Monster Stack Special Edition", true}, // containment
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, nameSimilar(tt.a, tt.b), "nameSimilar(%q, %q)", tt.a, tt.b)
	}
}
