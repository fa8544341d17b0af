package games

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourneyhub/pkg/database"
	"tourneyhub/pkg/models"
)

// setupTestDB opens an in-memory database with the embedded schema applied.
// A single connection keeps the :memory: database alive across queries.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func TestCreateAndGetByID(t *testing.T) {
	repo := NewRepo(setupTestDB(t))
	ctx := context.Background()

	g := models.Game{
		Name:              "WSOP Event #8 Day 1B",
		VenueID:           "v1",
		BuyIn:             400,
		GameStartDateTime: "2026-08-10T18:00:00Z",
		EventNumber:       8,
		DayNumber:         1,
		FlightLetter:      "B",
		SeriesName:        "WSOP Circuit",
		SourceIDs:         map[string]string{"kingsclub": "kc-553"},
	}
	require.NoError(t, repo.Create(ctx, &g))
	require.NotEmpty(t, g.ID, "Create assigns an ID")
	assert.Equal(t, models.ReviewPending, g.ReviewStatus, "Create defaults review status")

	got, err := repo.GetByID(ctx, g.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, g.Name, got.Name)
	assert.Equal(t, g.VenueID, got.VenueID)
	assert.Equal(t, g.BuyIn, got.BuyIn)
	assert.Equal(t, g.GameStartDateTime, got.GameStartDateTime)
	assert.Equal(t, 8, got.EventNumber)
	assert.Equal(t, 1, got.DayNumber)
	assert.Equal(t, "B", got.FlightLetter)
	assert.Equal(t, models.ReviewPending, got.ReviewStatus)
	assert.Equal(t, models.AssignmentPending, got.AssignmentStatus)
	assert.Equal(t, map[string]string{"kingsclub": "kc-553"}, got.SourceIDs)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestGetByIDNotFound(t *testing.T) {
	repo := NewRepo(setupTestDB(t))

	got, err := repo.GetByID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListFilters(t *testing.T) {
	repo := NewRepo(setupTestDB(t))
	ctx := context.Background()

	mk := func(name, venueID, status, start string) models.Game {
		g := models.Game{Name: name, VenueID: venueID, ReviewStatus: status, GameStartDateTime: start, BuyIn: 100}
		require.NoError(t, repo.Create(ctx, &g))
		return g
	}

	mk("Mystery Bounty Day 1A", "v1", models.ReviewPending, "2026-08-10T18:00:00Z")
	mk("Mystery Bounty Day 1B", "v1", models.ReviewApproved, "2026-08-11T18:00:00Z")
	mk("Sunday Special", "v2", models.ReviewPending, "2026-08-16T12:00:00Z")

	t.Run("by venue", func(t *testing.T) {
		items, err := repo.List(ctx, ListQuery{VenueID: "v1"})
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})

	t.Run("by review status", func(t *testing.T) {
		q := ListQuery{ReviewStatus: "pending"}
		items, err := repo.List(ctx, q)
		require.NoError(t, err)
		assert.Len(t, items, 2)

		total, err := repo.Count(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, 2, total)
	})

	t.Run("by keyword", func(t *testing.T) {
		items, err := repo.List(ctx, ListQuery{Q: "mystery"})
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})

	t.Run("by date range", func(t *testing.T) {
		items, err := repo.List(ctx, ListQuery{From: "2026-08-11T00:00:00Z", To: "2026-08-16T00:00:00Z"})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "Mystery Bounty Day 1B", items[0].Name)
	})

	t.Run("ordered by start time", func(t *testing.T) {
		items, err := repo.List(ctx, ListQuery{})
		require.NoError(t, err)
		require.Len(t, items, 3)
		assert.Equal(t, "Mystery Bounty Day 1A", items[0].Name)
		assert.Equal(t, "Sunday Special", items[2].Name)
	})
}

func TestUpdate(t *testing.T) {
	repo := NewRepo(setupTestDB(t))
	ctx := context.Background()

	g := models.Game{Name: "Deepstack", VenueID: "v1", BuyIn: 150}
	require.NoError(t, repo.Create(ctx, &g))

	g.Name = "Deepstack Day 1A"
	g.DayNumber = 1
	g.FlightLetter = "A"
	ok, err := repo.Update(ctx, g)
	require.NoError(t, err)
	require.True(t, ok)

	got, err := repo.GetByID(ctx, g.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Deepstack Day 1A", got.Name)
	assert.Equal(t, 1, got.DayNumber)
	assert.Equal(t, "A", got.FlightLetter)

	missing := models.Game{ID: "nope", Name: "x"}
	ok, err = repo.Update(ctx, missing)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCandidateSiblings(t *testing.T) {
	repo := NewRepo(setupTestDB(t))
	ctx := context.Background()

	mk := func(name, venueID string, buyIn float64, start, status string) models.Game {
		g := models.Game{Name: name, VenueID: venueID, BuyIn: buyIn, GameStartDateTime: start, ReviewStatus: status}
		require.NoError(t, repo.Create(ctx, &g))
		return g
	}

	subject := mk("Event 8 Day 1A", "v1", 400, "2026-08-10T18:00:00Z", models.ReviewPending)
	near := mk("Event 8 Day 1B", "v1", 420, "2026-08-11T18:00:00Z", models.ReviewPending)
	noDate := mk("Event 8 Satellite", "v1", 400, "", models.ReviewPending) // NULL start stays in

	// none of these may come back: wrong venue, buy-in outside the wide
	// prefilter, outside the date window, dismissed
	mk("Event 8 Day 1C", "v2", 400, "2026-08-11T18:00:00Z", models.ReviewPending)
	mk("High Roller", "v1", 5000, "2026-08-11T18:00:00Z", models.ReviewPending)
	mk("Event 8 Day 1D", "v1", 400, "2026-09-20T18:00:00Z", models.ReviewPending)
	mk("Event 8 Day 1E", "v1", 400, "2026-08-12T18:00:00Z", models.ReviewDismissed)

	got, err := repo.CandidateSiblings(ctx, "v1", 400, "2026-08-10T18:00:00Z", 14, subject.ID)
	require.NoError(t, err)

	ids := make([]string, 0, len(got))
	for _, g := range got {
		ids = append(ids, g.ID)
	}
	assert.ElementsMatch(t, []string{near.ID, noDate.ID}, ids)
}

func TestCandidateSiblingsNoVenue(t *testing.T) {
	repo := NewRepo(setupTestDB(t))

	got, err := repo.CandidateSiblings(context.Background(), "", 400, "", 14, "x")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAttachToParent(t *testing.T) {
	repo := NewRepo(setupTestDB(t))
	ctx := context.Background()

	parent := models.Game{Name: "Event 8", VenueID: "v1", BuyIn: 400}
	child := models.Game{Name: "Event 8 Day 1A", VenueID: "v1", BuyIn: 400}
	require.NoError(t, repo.Create(ctx, &parent))
	require.NoError(t, repo.Create(ctx, &child))

	require.NoError(t, repo.AttachToParent(ctx, child.ID, parent.ID))

	gotChild, err := repo.GetByID(ctx, child.ID)
	require.NoError(t, err)
	assert.Equal(t, parent.ID, gotChild.ConsolidatedIntoID)

	gotParent, err := repo.GetByID(ctx, parent.ID)
	require.NoError(t, err)
	assert.True(t, gotParent.IsConsolidationParent)

	assert.Error(t, repo.AttachToParent(ctx, "nope", parent.ID))
}

func TestSetReviewStatus(t *testing.T) {
	repo := NewRepo(setupTestDB(t))
	ctx := context.Background()

	g := models.Game{Name: "Turbo"}
	require.NoError(t, repo.Create(ctx, &g))

	ok, err := repo.SetReviewStatus(ctx, g.ID, models.ReviewApproved)
	require.NoError(t, err)
	require.True(t, ok)

	got, err := repo.GetByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReviewApproved, got.ReviewStatus)

	ok, err = repo.SetReviewStatus(ctx, "nope", models.ReviewApproved)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConfirmRecurring(t *testing.T) {
	repo := NewRepo(setupTestDB(t))
	ctx := context.Background()

	g := models.Game{Name: "Friday Night Deepstack", VenueID: "v1", BuyIn: 150}
	require.NoError(t, repo.Create(ctx, &g))

	ok, err := repo.ConfirmRecurring(ctx, g.ID, "rec-1", 0.82, 14, "buy-in 180 instead of 150")
	require.NoError(t, err)
	require.True(t, ok)

	got, err := repo.GetByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "rec-1", got.RecurringGameID)
	assert.InDelta(t, 0.82, got.AssignmentConfidence, 1e-9)
	assert.Equal(t, models.AssignmentConfirmed, got.AssignmentStatus)
	assert.True(t, got.WasScheduledInstance)
	assert.Equal(t, 14, got.InstanceNumber)
	assert.Equal(t, "buy-in 180 instead of 150", got.DeviationNotes)
}

func TestRejectRecurring(t *testing.T) {
	repo := NewRepo(setupTestDB(t))
	ctx := context.Background()

	g := models.Game{Name: "Friday Night Deepstack", VenueID: "v1", BuyIn: 150}
	require.NoError(t, repo.Create(ctx, &g))

	ok, err := repo.ConfirmRecurring(ctx, g.ID, "rec-1", 0.82, 14, "")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.RejectRecurring(ctx, g.ID)
	require.NoError(t, err)
	require.True(t, ok)

	got, err := repo.GetByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Empty(t, got.RecurringGameID)
	assert.Zero(t, got.AssignmentConfidence)
	assert.Equal(t, models.AssignmentRejected, got.AssignmentStatus)
	assert.False(t, got.WasScheduledInstance)
	assert.Zero(t, got.InstanceNumber)
}
