package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"tourneyhub/internal/consolidation"
	"tourneyhub/internal/games"
	"tourneyhub/internal/notify"
	"tourneyhub/internal/pattern"
	"tourneyhub/internal/recurring"
	"tourneyhub/internal/sync"
	"tourneyhub/pkg/models"
)

// ErrInvalidRecord marks failures the reviewer can fix by changing the
// request: a record that fails validation after fill-in, an unknown
// override parent, a recurring game from another venue.
var ErrInvalidRecord = errors.New("invalid record")

// candidateTTL bounds how stale the candidate-sibling lookup may be.
// Decisions themselves are always computed fresh.
const candidateTTL = 30 * time.Second

// Service runs the review workflow: preview what approving a scraped
// record would do, approve it (with optional fill-in and consolidation),
// dismiss it, or link it to a recurring game.
type Service struct {
	Games          *games.Repo
	Recurring      *recurring.Repo
	Consolidations *Repo
	Hub            *sync.Hub
	Notify         *notify.Server
	WindowDays     int

	candidates *cache.Cache
}

func NewService(g *games.Repo, rec *recurring.Repo, cons *Repo, hub *sync.Hub, notifier *notify.Server) *Service {
	return &Service{
		Games:          g,
		Recurring:      rec,
		Consolidations: cons,
		Hub:            hub,
		Notify:         notifier,
		WindowDays:     14,
		candidates:     cache.New(candidateTTL, candidateTTL*2),
	}
}

// Preview is the dry-run result for one record: the values the name
// parser found, the fields fill-in would set, and the consolidation
// verdict. Nothing is written.
type Preview struct {
	Record   models.Game            `json:"record"`
	Detected pattern.DetectedValues `json:"detected_values"`
	Applied  []string               `json:"would_apply,omitempty"`
	Decision consolidation.Decision `json:"consolidation"`
}

// PreviewGame runs the preview for a stored record. Returns nil when the
// record does not exist.
func (s *Service) PreviewGame(ctx context.Context, id string, includeSiblings bool) (*Preview, error) {
	g, err := s.Games.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, nil
	}
	return s.preview(ctx, *g, includeSiblings)
}

// PreviewDraft runs the preview for a record that has not been stored,
// typically the editor's current form state.
func (s *Service) PreviewDraft(ctx context.Context, g models.Game, includeSiblings bool) (*Preview, error) {
	return s.preview(ctx, g, includeSiblings)
}

func (s *Service) preview(ctx context.Context, g models.Game, includeSiblings bool) (*Preview, error) {
	detected := pattern.Detect(g.Name)
	applied := pattern.Fill(&g, detected) // g is a copy; the store is untouched

	cands, err := s.candidateSiblings(ctx, g)
	if err != nil {
		return nil, err
	}

	dec := consolidation.Resolve(g, cands, consolidation.Options{IncludeSiblingDetails: includeSiblings})
	return &Preview{Record: g, Detected: detected, Applied: applied, Decision: dec}, nil
}

// candidateSiblings loads same-venue rows near the record's start date,
// through a short-TTL cache keyed on the query inputs. Approvals and
// dismissals flush it.
func (s *Service) candidateSiblings(ctx context.Context, g models.Game) ([]models.Game, error) {
	key := fmt.Sprintf("cand:%s:%s:%.2f:%s", g.VenueID, g.GameStartDateTime, g.BuyIn, g.ID)
	if cached, found := s.candidates.Get(key); found {
		if cands, ok := cached.([]models.Game); ok {
			return cands, nil
		}
	}

	cands, err := s.Games.CandidateSiblings(ctx, g.VenueID, g.BuyIn, g.GameStartDateTime, s.WindowDays, g.ID)
	if err != nil {
		return nil, err
	}
	s.candidates.Set(key, cands, cache.DefaultExpiration)
	return cands, nil
}

// ApproveRequest carries the reviewer's choices for one approval.
type ApproveRequest struct {
	// ApplyDetected writes the name-derived values into the record's empty
	// structural fields before approving.
	ApplyDetected bool `json:"apply_detected"`

	// AcceptConsolidation attaches the record to its multi-day parent,
	// creating the parent row if none exists yet.
	AcceptConsolidation bool `json:"accept_consolidation"`

	// OverrideParentID forces a specific parent instead of the resolved
	// one. Implies a manual match in the audit trail.
	OverrideParentID string `json:"override_parent_id"`

	DecidedBy string `json:"decided_by"`
}

// ApproveResult reports what an approval changed.
type ApproveResult struct {
	Game          models.Game            `json:"game"`
	AppliedFields []string               `json:"applied_fields,omitempty"`
	ParentID      string                 `json:"parent_id,omitempty"`
	ParentCreated bool                   `json:"parent_created,omitempty"`
	Decision      consolidation.Decision `json:"consolidation"`
}

// Approve marks a record approved, optionally filling in detected fields
// and attaching it to a consolidation parent. Returns nil when the record
// does not exist and ErrInvalidRecord when the reviewer's input cannot be
// applied.
func (s *Service) Approve(ctx context.Context, id string, req ApproveRequest) (*ApproveResult, error) {
	g, err := s.Games.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, nil
	}

	detected := pattern.Detect(g.Name)
	var applied []string
	if req.ApplyDetected {
		applied = pattern.Fill(g, detected)
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	cands, err := s.candidateSiblings(ctx, *g)
	if err != nil {
		return nil, err
	}
	dec := consolidation.Resolve(*g, cands, consolidation.Options{IncludeSiblingDetails: true})

	res := &ApproveResult{AppliedFields: applied, Decision: dec}

	if dec.WillConsolidate && req.AcceptConsolidation {
		parentID, created, matchedBy, err := s.resolveParent(ctx, *g, detected, dec, req.OverrideParentID)
		if err != nil {
			return nil, err
		}
		if err := s.Games.AttachToParent(ctx, g.ID, parentID); err != nil {
			return nil, err
		}

		decidedBy := req.DecidedBy
		if decidedBy == "" {
			decidedBy = models.DecidedByReviewer
		}
		if _, err := s.Consolidations.Create(ctx, g.ID, parentID, matchedBy, decidedBy); err != nil {
			return nil, err
		}

		g.ConsolidatedIntoID = parentID
		res.ParentID = parentID
		res.ParentCreated = created
	}

	g.ReviewStatus = models.ReviewApproved
	if _, err := s.Games.Update(ctx, *g); err != nil {
		return nil, err
	}
	res.Game = *g

	s.candidates.Flush()
	s.announceApproval(*g, res.ParentID)
	return res, nil
}

// resolveParent picks the parent a child attaches to: the reviewer's
// override, an existing parent found among the candidates, or a fresh
// parent row named after the record's stripped base name.
func (s *Service) resolveParent(ctx context.Context, g models.Game, detected pattern.DetectedValues, dec consolidation.Decision, overrideID string) (string, bool, string, error) {
	if overrideID != "" {
		parent, err := s.Games.GetByID(ctx, overrideID)
		if err != nil {
			return "", false, "", err
		}
		if parent == nil {
			return "", false, "", fmt.Errorf("%w: override parent %s not found", ErrInvalidRecord, overrideID)
		}
		return parent.ID, false, models.MatchedByManual, nil
	}

	if dec.ParentGameID != "" {
		return dec.ParentGameID, false, matchedByFor(dec, dec.ParentGameID), nil
	}

	eventNumber := g.EventNumber
	if eventNumber == 0 {
		eventNumber = detected.EventNumber
	}

	// The parent is an umbrella for all flights, so it carries no start
	// time of its own.
	parent := models.Game{
		Name:                  dec.ParentName,
		VenueID:               g.VenueID,
		BuyIn:                 g.BuyIn,
		EventNumber:           eventNumber,
		IsMainEvent:           g.IsMainEvent || detected.IsMainEvent,
		TournamentSeriesID:    g.TournamentSeriesID,
		SeriesName:            g.SeriesName,
		ReviewStatus:          models.ReviewApproved,
		IsConsolidationParent: true,
	}
	if err := s.Games.Create(ctx, &parent); err != nil {
		return "", false, "", err
	}
	return parent.ID, true, matchedByFor(dec, ""), nil
}

// matchedByFor reports which criterion linked the record to its parent.
// With no sibling matches at all, only the name pattern vouched for the
// grouping.
func matchedByFor(dec consolidation.Decision, parentID string) string {
	for _, sib := range dec.Siblings {
		if parentID == "" || sib.Game.ID == parentID {
			return sib.MatchedBy
		}
	}
	return models.MatchedByNamePattern
}

// Dismiss drops a record out of the review queue without deleting it.
func (s *Service) Dismiss(ctx context.Context, id string) (bool, error) {
	ok, err := s.Games.SetReviewStatus(ctx, id, models.ReviewDismissed)
	if err != nil || !ok {
		return ok, err
	}

	s.candidates.Flush()
	if s.Hub != nil {
		go s.Hub.Broadcast(sync.GameEvent{Type: sync.EventGameUpdated, GameID: id})
	}
	return true, nil
}

// Pending returns the review queue, oldest start first.
func (s *Service) Pending(ctx context.Context, q games.ListQuery) ([]models.Game, int, error) {
	q.ReviewStatus = models.ReviewPending

	total, err := s.Games.Count(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	items, err := s.Games.List(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// RecurringProposal pairs a stored record with the recurring game it most
// likely is an instance of, plus how the instance drifted from schedule.
type RecurringProposal struct {
	Game       models.Game         `json:"game"`
	Proposal   *recurring.Proposal `json:"proposal"`
	Deviations []string            `json:"deviations,omitempty"`
}

// ProposeRecurring scores a record against its venue's active recurring
// games. Proposal is nil when nothing reaches the threshold or the record
// is multi-day.
func (s *Service) ProposeRecurring(ctx context.Context, id string) (*RecurringProposal, error) {
	g, err := s.Games.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, nil
	}

	out := &RecurringProposal{Game: *g}
	if g.VenueID == "" {
		return out, nil
	}

	recs, err := s.Recurring.ListActiveByVenue(ctx, g.VenueID)
	if err != nil {
		return nil, err
	}

	if p := recurring.Propose(*g, recs); p != nil {
		out.Proposal = p
		for _, rec := range recs {
			if rec.ID == p.RecurringGameID {
				out.Deviations = recurring.Deviations(*g, rec)
				break
			}
		}
	}
	return out, nil
}

// AssignRequest is the reviewer's verdict on a recurring-game proposal.
type AssignRequest struct {
	RecurringGameID string `json:"recurring_game_id"`
	Action          string `json:"action"` // confirm | reject
}

// AssignRecurring confirms or rejects a record's link to a recurring
// game. Confirming stamps the instance number and any deviation notes;
// rejecting clears the link. Returns the updated record.
func (s *Service) AssignRecurring(ctx context.Context, gameID string, req AssignRequest) (*models.Game, error) {
	g, err := s.Games.GetByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, nil
	}

	if req.Action == "reject" {
		if _, err := s.Games.RejectRecurring(ctx, g.ID); err != nil {
			return nil, err
		}
		return s.Games.GetByID(ctx, g.ID)
	}

	rec, err := s.Recurring.GetByID(ctx, req.RecurringGameID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: recurring game %s not found", ErrInvalidRecord, req.RecurringGameID)
	}
	if rec.VenueID != g.VenueID {
		return nil, fmt.Errorf("%w: recurring game belongs to another venue", ErrInvalidRecord)
	}

	confidence, _ := recurring.Score(*g, *rec)
	existing, err := s.Games.Count(ctx, games.ListQuery{RecurringID: rec.ID})
	if err != nil {
		return nil, err
	}
	notes := strings.Join(recurring.Deviations(*g, *rec), "; ")

	if _, err := s.Games.ConfirmRecurring(ctx, g.ID, rec.ID, confidence, existing+1, notes); err != nil {
		return nil, err
	}

	updated, err := s.Games.GetByID(ctx, g.ID)
	if err != nil {
		return nil, err
	}
	if s.Hub != nil && updated != nil {
		go s.Hub.Broadcast(sync.GameEvent{
			Type:    sync.EventGameUpdated,
			GameID:  updated.ID,
			VenueID: updated.VenueID,
			Name:    updated.Name,
		})
	}
	return updated, nil
}

func (s *Service) announceApproval(g models.Game, parentID string) {
	if s.Hub != nil {
		go s.Hub.Broadcast(sync.GameEvent{
			Type:    sync.EventGameApproved,
			GameID:  g.ID,
			VenueID: g.VenueID,
			Name:    g.Name,
		})
		if parentID != "" {
			go s.Hub.Broadcast(sync.GameEvent{
				Type:     sync.EventGameConsolidated,
				GameID:   g.ID,
				VenueID:  g.VenueID,
				Name:     g.Name,
				ParentID: parentID,
			})
		}
	}
	if s.Notify != nil {
		go s.Notify.BroadcastApproval(g.ID, g.Name, g.VenueID, parentID)
	}
}
