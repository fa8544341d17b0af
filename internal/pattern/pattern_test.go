package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourneyhub/pkg/models"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want DetectedValues
	}{
		{
			name: "event day flight",
			in:   "WSOP Event #8 Day 1B",
			want: DetectedValues{EventNumber: 8, DayNumber: 1, FlightLetter: "B"},
		},
		{
			name: "no structural signal",
			in:   "Sunday Million",
			want: DetectedValues{},
		},
		{
			name: "bare digit-letter pair",
			in:   "Colossus 2A",
			want: DetectedValues{FlightLetter: "A"},
		},
		{
			name: "main event",
			in:   "WSOP Main Event Day 2",
			want: DetectedValues{IsMainEvent: true, DayNumber: 2},
		},
		{
			name: "main event without space",
			in:   "MainEvent",
			want: DetectedValues{IsMainEvent: true},
		},
		{
			name: "event number with hash and spaces",
			in:   "Event # 12 NLH",
			want: DetectedValues{EventNumber: 12},
		},
		{
			name: "event number without hash",
			in:   "Event 5 Final Table",
			want: DetectedValues{EventNumber: 5, FinalDay: true, DayNumber: models.FinalDaySentinel},
		},
		{
			name: "final table keeps detected day",
			in:   "Event 5 Day 2 Final Table",
			want: DetectedValues{EventNumber: 5, DayNumber: 2, FinalDay: true},
		},
		{
			name: "final day wording",
			in:   "Mystery Bounty Final Day",
			want: DetectedValues{FinalDay: true, DayNumber: models.FinalDaySentinel},
		},
		{
			name: "FT abbreviation",
			in:   "Big Stack FT",
			want: DetectedValues{FinalDay: true, DayNumber: models.FinalDaySentinel},
		},
		{
			name: "explicit flight wording wins over day suffix",
			in:   "Event 8 Day 1A Flight B",
			want: DetectedValues{EventNumber: 8, DayNumber: 1, FlightLetter: "B"},
		},
		{
			name: "day suffix wins over bare pair",
			in:   "Deepstack 3C Day 2B",
			want: DetectedValues{DayNumber: 2, FlightLetter: "B"},
		},
		{
			name: "lowercase keywords still match",
			in:   "wsop event #3 day 4",
			want: DetectedValues{EventNumber: 3, DayNumber: 4},
		},
		{
			name: "lowercase flight letter is not a flight",
			in:   "Turbo Day 1a",
			want: DetectedValues{DayNumber: 1},
		},
		{
			name: "lowercase flight keyword uppercase letter",
			in:   "flight C starts at noon",
			want: DetectedValues{FlightLetter: "C"},
		},
		{
			name: "empty name",
			in:   "",
			want: DetectedValues{},
		},
		{
			name: "whitespace only",
			in:   "   ",
			want: DetectedValues{},
		},
		{
			name: "day without flight letter",
			in:   "Monster Stack Day 3",
			want: DetectedValues{DayNumber: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(tt.in)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectIsIdempotent(t *testing.T) {
	names := []string{
		"WSOP Event #8 Day 1B",
		"Colossus 2A",
		"Event 5 Final Table",
		"Sunday Million",
	}
	for _, name := range names {
		first := Detect(name)
		second := Detect(name)
		assert.Equal(t, first, second, "Detect(%q) must be stable", name)
	}
}

func TestFillOnlyFillsEmptyFields(t *testing.T) {
	g := models.Game{
		Name:        "WSOP Event #8 Day 1B",
		EventNumber: 42, // explicit value must survive
	}
	d := Detect(g.Name)

	applied := Fill(&g, d)

	assert.Equal(t, []string{"day_number", "flight_letter"}, applied)
	assert.Equal(t, 42, g.EventNumber, "already-set field must never be overwritten")
	assert.Equal(t, 1, g.DayNumber)
	assert.Equal(t, "B", g.FlightLetter)
}

func TestFillAllEmpty(t *testing.T) {
	g := models.Game{Name: "WSOP Main Event Day 1A"}
	applied := Fill(&g, Detect(g.Name))

	assert.Equal(t, []string{"is_main_event", "day_number", "flight_letter"}, applied)
	assert.True(t, g.IsMainEvent)
	assert.Equal(t, 1, g.DayNumber)
	assert.Equal(t, "A", g.FlightLetter)
}

func TestFillNoSignalChangesNothing(t *testing.T) {
	g := models.Game{Name: "Sunday Million", BuyIn: 215}
	before := g

	applied := Fill(&g, Detect(g.Name))

	require.Empty(t, applied)
	assert.Equal(t, before, g)
}

func TestFillTreatsZeroDayAsUnset(t *testing.T) {
	// A day number of 0 is not meaningful in this domain (days are
	// 1-based), so the falsy-means-empty contract fills right over it.
	g := models.Game{Name: "Event 7 Day 2", DayNumber: 0}
	applied := Fill(&g, Detect(g.Name))

	assert.Contains(t, applied, "day_number")
	assert.Equal(t, 2, g.DayNumber)
}

func TestMatchKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"WSOP Event #8 Day 1B", "wsop"},
		{"WSOP Event #8 Day 1A", "wsop"},
		{"Colossus 2A", "colossus"},
		{"Colossus 2B", "colossus"},
		{"Main Event Flight C", "main event"},
		{"Event 5 Final Table", ""},
		{"Sunday Million", "sunday million"},
		{"Mystery Bounty - Day 2", "mystery bounty"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MatchKey(tt.in), "MatchKey(%q)", tt.in)
	}
}

func TestMatchKeyGroupsFlightsTogether(t *testing.T) {
	a := MatchKey("King's Summer Special Event #3 Day 1A")
	b := MatchKey("KINGS Summer Special Event #3 Flight B")
	c := MatchKey("King's Summer Special Event #3 Final Day")
	assert.NotEmpty(t, a)
	// apostrophes and case fold away, so all three land in one group
	assert.Equal(t, a, b)
	assert.Equal(t, a, c)
}

func TestParentName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"WSOP Event #8 Day 1B", "WSOP Event #8"},
		{"Event 5 Final Table", "Event 5"},
		{"Colossus 2A", "Colossus"},
		{"Mystery Bounty - Day 2", "Mystery Bounty"},
		{"Main Event Day 1A", "Main Event"},
		{"Deepstack Flight C", "Deepstack"},
		{"Day 1A", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParentName(tt.in), "ParentName(%q)", tt.in)
	}
}
