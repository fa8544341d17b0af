package review

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourneyhub/internal/consolidation"
	"tourneyhub/internal/games"
	"tourneyhub/internal/recurring"
	"tourneyhub/pkg/database"
	"tourneyhub/pkg/models"
)

func setupService(t *testing.T) *Service {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(db))

	return NewService(games.NewRepo(db), recurring.NewRepo(db), NewRepo(db), nil, nil)
}

func mustCreate(t *testing.T, svc *Service, g models.Game) models.Game {
	t.Helper()
	require.NoError(t, svc.Games.Create(context.Background(), &g))
	return g
}

func TestPreviewGame(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	subject := mustCreate(t, svc, models.Game{
		Name:              "WSOP Event #8 Day 1A",
		VenueID:           "v1",
		BuyIn:             400,
		GameStartDateTime: "2026-09-01T18:00:00Z",
	})
	mustCreate(t, svc, models.Game{
		Name:              "WSOP Event #8 Day 1B",
		VenueID:           "v1",
		BuyIn:             400,
		GameStartDateTime: "2026-09-02T18:00:00Z",
	})

	p, err := svc.PreviewGame(ctx, subject.ID, true)
	require.NoError(t, err)
	require.NotNil(t, p)

	// fill-in ran on a copy of the record
	assert.Equal(t, []string{"event_number", "day_number", "flight_letter"}, p.Applied)
	assert.Equal(t, 8, p.Record.EventNumber)
	assert.Equal(t, "A", p.Record.FlightLetter)

	assert.True(t, p.Decision.WillConsolidate)
	assert.Equal(t, consolidation.SourceExplicitFields, p.Decision.DetectedPattern.DetectionSource)
	assert.Equal(t, "WSOP Event #8", p.Decision.ParentName)
	require.Len(t, p.Decision.Siblings, 1)
	assert.Equal(t, models.MatchedByEventNumber, p.Decision.Siblings[0].MatchedBy)

	// the stored row is untouched
	stored, err := svc.Games.GetByID(ctx, subject.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.EventNumber)
	assert.Empty(t, stored.FlightLetter)
}

func TestPreviewGameNotFound(t *testing.T) {
	svc := setupService(t)

	p, err := svc.PreviewGame(context.Background(), "nope", false)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestPreviewDraftDoesNotStore(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	draft := models.Game{Name: "Colossus Day 2", VenueID: "v1", BuyIn: 250}
	p, err := svc.PreviewDraft(ctx, draft, false)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.True(t, p.Decision.WillConsolidate)
	assert.Equal(t, "Colossus", p.Decision.ParentName)

	total, err := svc.Games.Count(ctx, games.ListQuery{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestApproveCreatesParentAndAudit(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	subject := mustCreate(t, svc, models.Game{
		Name:              "WSOP Event #8 Day 1A",
		VenueID:           "v1",
		BuyIn:             400,
		GameStartDateTime: "2026-09-01T18:00:00Z",
	})
	mustCreate(t, svc, models.Game{
		Name:              "WSOP Event #8 Day 1B",
		VenueID:           "v1",
		BuyIn:             400,
		GameStartDateTime: "2026-09-02T18:00:00Z",
	})

	res, err := svc.Approve(ctx, subject.ID, ApproveRequest{ApplyDetected: true, AcceptConsolidation: true})
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.True(t, res.ParentCreated)
	require.NotEmpty(t, res.ParentID)
	assert.Equal(t, []string{"event_number", "day_number", "flight_letter"}, res.AppliedFields)

	updated, err := svc.Games.GetByID(ctx, subject.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReviewApproved, updated.ReviewStatus)
	assert.Equal(t, res.ParentID, updated.ConsolidatedIntoID)
	assert.Equal(t, 8, updated.EventNumber)
	assert.Equal(t, 1, updated.DayNumber)
	assert.Equal(t, "A", updated.FlightLetter)

	parent, err := svc.Games.GetByID(ctx, res.ParentID)
	require.NoError(t, err)
	require.NotNil(t, parent)
	assert.Equal(t, "WSOP Event #8", parent.Name)
	assert.True(t, parent.IsConsolidationParent)
	assert.Equal(t, models.ReviewApproved, parent.ReviewStatus)
	assert.Equal(t, 8, parent.EventNumber)
	assert.Equal(t, "v1", parent.VenueID)

	audit, err := svc.Consolidations.ListByGame(ctx, subject.ID)
	require.NoError(t, err)
	require.Len(t, audit, 1)
	assert.Equal(t, subject.ID, audit[0].ChildGameID)
	assert.Equal(t, res.ParentID, audit[0].ParentGameID)
	assert.Equal(t, models.MatchedByEventNumber, audit[0].MatchedBy)
	assert.Equal(t, models.DecidedByReviewer, audit[0].DecidedBy)
}

func TestApproveAttachesToExistingParent(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	parent := mustCreate(t, svc, models.Game{
		Name:                  "WSOP Event #8",
		VenueID:               "v1",
		BuyIn:                 400,
		ReviewStatus:          models.ReviewApproved,
		IsConsolidationParent: true,
	})
	subject := mustCreate(t, svc, models.Game{
		Name:              "WSOP Event #8 Day 1B",
		VenueID:           "v1",
		BuyIn:             400,
		GameStartDateTime: "2026-09-02T18:00:00Z",
	})

	res, err := svc.Approve(ctx, subject.ID, ApproveRequest{AcceptConsolidation: true})
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.False(t, res.ParentCreated)
	assert.Equal(t, parent.ID, res.ParentID)
	assert.Equal(t, "WSOP Event #8", res.Decision.ParentName)

	updated, err := svc.Games.GetByID(ctx, subject.ID)
	require.NoError(t, err)
	assert.Equal(t, parent.ID, updated.ConsolidatedIntoID)

	audit, err := svc.Consolidations.ListByGame(ctx, parent.ID)
	require.NoError(t, err)
	require.Len(t, audit, 1)
	assert.Equal(t, models.MatchedByEventNumber, audit[0].MatchedBy)
}

func TestApproveWithoutConsolidation(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	subject := mustCreate(t, svc, models.Game{
		Name:    "Colossus Day 2",
		VenueID: "v1",
		BuyIn:   250,
	})

	res, err := svc.Approve(ctx, subject.ID, ApproveRequest{})
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.True(t, res.Decision.WillConsolidate)
	assert.Empty(t, res.ParentID)
	assert.Empty(t, res.AppliedFields)

	updated, err := svc.Games.GetByID(ctx, subject.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReviewApproved, updated.ReviewStatus)
	assert.Empty(t, updated.ConsolidatedIntoID)
	assert.Zero(t, updated.DayNumber) // fill-in is opt-in
}

func TestApproveInvalidAfterFill(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	// "Day 1K" parses to flight K, which is outside the allowed range.
	subject := mustCreate(t, svc, models.Game{Name: "Turbo Day 1K", VenueID: "v1", BuyIn: 100})

	_, err := svc.Approve(ctx, subject.ID, ApproveRequest{ApplyDetected: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRecord)

	updated, err := svc.Games.GetByID(ctx, subject.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReviewPending, updated.ReviewStatus)
}

func TestApproveOverrideParent(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	override := mustCreate(t, svc, models.Game{
		Name:         "Summer Series Opener",
		VenueID:      "v1",
		BuyIn:        400,
		ReviewStatus: models.ReviewApproved,
	})
	subject := mustCreate(t, svc, models.Game{
		Name:              "Opener Day 1A",
		VenueID:           "v1",
		BuyIn:             400,
		GameStartDateTime: "2026-09-01T18:00:00Z",
	})

	res, err := svc.Approve(ctx, subject.ID, ApproveRequest{
		AcceptConsolidation: true,
		OverrideParentID:    override.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, override.ID, res.ParentID)
	assert.False(t, res.ParentCreated)

	marked, err := svc.Games.GetByID(ctx, override.ID)
	require.NoError(t, err)
	assert.True(t, marked.IsConsolidationParent)

	audit, err := svc.Consolidations.ListByGame(ctx, subject.ID)
	require.NoError(t, err)
	require.Len(t, audit, 1)
	assert.Equal(t, models.MatchedByManual, audit[0].MatchedBy)
}

func TestApproveOverrideParentMissing(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	subject := mustCreate(t, svc, models.Game{Name: "Opener Day 1A", VenueID: "v1", BuyIn: 400})

	_, err := svc.Approve(ctx, subject.ID, ApproveRequest{
		AcceptConsolidation: true,
		OverrideParentID:    "missing",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestApproveNotFound(t *testing.T) {
	svc := setupService(t)

	res, err := svc.Approve(context.Background(), "nope", ApproveRequest{})
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestDismiss(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	g := mustCreate(t, svc, models.Game{Name: "Turbo", VenueID: "v1"})

	ok, err := svc.Dismiss(ctx, g.ID)
	require.NoError(t, err)
	require.True(t, ok)

	updated, err := svc.Games.GetByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReviewDismissed, updated.ReviewStatus)

	ok, err = svc.Dismiss(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPending(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	mustCreate(t, svc, models.Game{Name: "Pending One", VenueID: "v1"})
	mustCreate(t, svc, models.Game{Name: "Pending Two", VenueID: "v1"})
	mustCreate(t, svc, models.Game{Name: "Already Done", VenueID: "v1", ReviewStatus: models.ReviewApproved})

	items, total, err := svc.Pending(ctx, games.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, items, 2)
	for _, g := range items {
		assert.Equal(t, models.ReviewPending, g.ReviewStatus)
	}
}

func weeklyFixture(t *testing.T, svc *Service) models.RecurringGame {
	t.Helper()
	rec := models.RecurringGame{
		VenueID:   "v1",
		Name:      "Friday $150 Deepstack",
		Weekday:   5,
		StartTime: "19:00",
		BuyIn:     150,
		Active:    true,
	}
	require.NoError(t, svc.Recurring.Create(context.Background(), &rec))
	return rec
}

func TestProposeRecurring(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	rec := weeklyFixture(t, svc)

	// 2026-08-14 is a Friday
	g := mustCreate(t, svc, models.Game{
		Name:              "Friday Deepstack",
		VenueID:           "v1",
		BuyIn:             150,
		GameStartDateTime: "2026-08-14T19:00:00Z",
	})

	p, err := svc.ProposeRecurring(ctx, g.ID)
	require.NoError(t, err)
	require.NotNil(t, p)
	require.NotNil(t, p.Proposal)
	assert.Equal(t, rec.ID, p.Proposal.RecurringGameID)
	assert.Empty(t, p.Deviations)

	multiDay := mustCreate(t, svc, models.Game{
		Name:              "Friday Deepstack Day 2",
		VenueID:           "v1",
		BuyIn:             150,
		GameStartDateTime: "2026-08-14T19:00:00Z",
	})
	p, err = svc.ProposeRecurring(ctx, multiDay.ID)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Nil(t, p.Proposal)
}

func TestAssignRecurringConfirm(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	rec := weeklyFixture(t, svc)

	// Saturday, later start, higher buy-in: all three deviations recorded
	g := mustCreate(t, svc, models.Game{
		Name:              "Friday Deepstack",
		VenueID:           "v1",
		BuyIn:             180,
		GameStartDateTime: "2026-08-15T20:00:00Z",
	})

	updated, err := svc.AssignRecurring(ctx, g.ID, AssignRequest{RecurringGameID: rec.ID, Action: "confirm"})
	require.NoError(t, err)
	require.NotNil(t, updated)

	assert.Equal(t, rec.ID, updated.RecurringGameID)
	assert.Equal(t, models.AssignmentConfirmed, updated.AssignmentStatus)
	assert.True(t, updated.WasScheduledInstance)
	assert.Equal(t, 1, updated.InstanceNumber)
	assert.Contains(t, updated.DeviationNotes, "ran on Saturday instead of Friday")
	assert.Contains(t, updated.DeviationNotes, "started 20:00 instead of 19:00")
	assert.Contains(t, updated.DeviationNotes, "buy-in 180 instead of 150")

	// the next confirmed instance gets the next number
	second := mustCreate(t, svc, models.Game{
		Name:              "Friday Deepstack",
		VenueID:           "v1",
		BuyIn:             150,
		GameStartDateTime: "2026-08-21T19:00:00Z",
	})
	updated, err = svc.AssignRecurring(ctx, second.ID, AssignRequest{RecurringGameID: rec.ID, Action: "confirm"})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, 2, updated.InstanceNumber)
	assert.Empty(t, updated.DeviationNotes)
}

func TestAssignRecurringReject(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	rec := weeklyFixture(t, svc)

	g := mustCreate(t, svc, models.Game{
		Name:              "Friday Deepstack",
		VenueID:           "v1",
		BuyIn:             150,
		GameStartDateTime: "2026-08-14T19:00:00Z",
	})

	updated, err := svc.AssignRecurring(ctx, g.ID, AssignRequest{RecurringGameID: rec.ID, Action: "confirm"})
	require.NoError(t, err)
	require.Equal(t, models.AssignmentConfirmed, updated.AssignmentStatus)

	updated, err = svc.AssignRecurring(ctx, g.ID, AssignRequest{Action: "reject"})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Empty(t, updated.RecurringGameID)
	assert.Equal(t, models.AssignmentRejected, updated.AssignmentStatus)
	assert.False(t, updated.WasScheduledInstance)
}

func TestAssignRecurringWrongVenue(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	rec := models.RecurringGame{VenueID: "v2", Name: "Other Venue Weekly", Weekday: 2, Active: true}
	require.NoError(t, svc.Recurring.Create(ctx, &rec))

	g := mustCreate(t, svc, models.Game{Name: "Tuesday Turbo", VenueID: "v1", BuyIn: 100})

	_, err := svc.AssignRecurring(ctx, g.ID, AssignRequest{RecurringGameID: rec.ID, Action: "confirm"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRecord)
}
