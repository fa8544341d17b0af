package games

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"tourneyhub/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

type ListQuery struct {
	Q            string // keyword search in name/series_name
	VenueID      string
	SeriesID     string
	RecurringID  string
	ReviewStatus string
	From         string // inclusive lower bound on game_start_datetime
	To           string // exclusive upper bound
	Limit        int
	Offset       int
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// gameColumns is the select list every scan in this package shares.
const gameColumns = `id, name, venue_id, buy_in, game_start_datetime, event_number,
	day_number, flight_letter, final_day, is_main_event, tournament_series_id,
	series_name, review_status, consolidated_into_id, is_consolidation_parent,
	recurring_game_id, recurring_assignment_confidence, recurring_assignment_status,
	was_scheduled_instance, deviation_notes, instance_number, source_ids,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (models.Game, error) {
	var (
		g          models.Game
		venueID    sql.NullString
		buyIn      sql.NullFloat64
		start      sql.NullString
		eventNum   sql.NullInt64
		dayNum     sql.NullInt64
		flight     sql.NullString
		seriesID   sql.NullString
		seriesName sql.NullString
		parentID   sql.NullString
		recID      sql.NullString
		confidence sql.NullFloat64
		deviation  sql.NullString
		instance   sql.NullInt64
		sourceIDs  sql.NullString
	)

	if err := row.Scan(
		&g.ID, &g.Name, &venueID, &buyIn, &start, &eventNum,
		&dayNum, &flight, &g.FinalDay, &g.IsMainEvent, &seriesID,
		&seriesName, &g.ReviewStatus, &parentID, &g.IsConsolidationParent,
		&recID, &confidence, &g.AssignmentStatus,
		&g.WasScheduledInstance, &deviation, &instance, &sourceIDs,
		&g.CreatedAt, &g.UpdatedAt,
	); err != nil {
		return models.Game{}, err
	}

	g.VenueID = venueID.String
	g.BuyIn = buyIn.Float64
	g.GameStartDateTime = start.String
	if eventNum.Valid {
		g.EventNumber = int(eventNum.Int64)
	}
	if dayNum.Valid {
		g.DayNumber = int(dayNum.Int64)
	}
	g.FlightLetter = flight.String
	g.TournamentSeriesID = seriesID.String
	g.SeriesName = seriesName.String
	g.ConsolidatedIntoID = parentID.String
	g.RecurringGameID = recID.String
	g.AssignmentConfidence = confidence.Float64
	g.DeviationNotes = deviation.String
	if instance.Valid {
		g.InstanceNumber = int(instance.Int64)
	}
	if sourceIDs.Valid && sourceIDs.String != "" {
		_ = json.Unmarshal([]byte(sourceIDs.String), &g.SourceIDs)
	}
	return g, nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*models.Game, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+gameColumns+` FROM games WHERE id = ?`, id)

	g, err := scanGame(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan getByID: %w", err)
	}
	return &g, nil
}

func (r *Repo) Count(ctx context.Context, q ListQuery) (int, error) {
	sqlStr, args := buildListSQL(q, true)
	row := r.DB.QueryRowContext(ctx, sqlStr, args...)
	var total int
	if err := row.Scan(&total); err != nil {
		return 0, fmt.Errorf("count scan: %w", err)
	}
	return total, nil
}

func (r *Repo) List(ctx context.Context, q ListQuery) ([]models.Game, error) {
	sqlStr, args := buildListSQL(q, false)

	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list query: %w", err)
	}
	defer rows.Close()

	out := make([]models.Game, 0, q.Limit)
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("list scan: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// Create inserts a new game row. A missing ID is generated and a missing
// review status defaults to pending; both are written back to g.
func (r *Repo) Create(ctx context.Context, g *models.Game) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.ReviewStatus == "" {
		g.ReviewStatus = models.ReviewPending
	}

	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO games (
			id, name, venue_id, buy_in, game_start_datetime, event_number,
			day_number, flight_letter, final_day, is_main_event, tournament_series_id,
			series_name, review_status, consolidated_into_id, is_consolidation_parent,
			recurring_game_id, recurring_assignment_confidence, recurring_assignment_status,
			was_scheduled_instance, deviation_notes, instance_number, source_ids
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, insertArgs(*g)...)
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	return nil
}

// Update rewrites every mutable column of an existing row.
func (r *Repo) Update(ctx context.Context, g models.Game) (bool, error) {
	args := insertArgs(g)
	// shift id from first position to the WHERE clause
	args = append(args[1:], g.ID)

	res, err := r.DB.ExecContext(ctx, `
		UPDATE games SET
			name = ?, venue_id = ?, buy_in = ?, game_start_datetime = ?, event_number = ?,
			day_number = ?, flight_letter = ?, final_day = ?, is_main_event = ?,
			tournament_series_id = ?, series_name = ?, review_status = ?,
			consolidated_into_id = ?, is_consolidation_parent = ?,
			recurring_game_id = ?, recurring_assignment_confidence = ?,
			recurring_assignment_status = ?, was_scheduled_instance = ?,
			deviation_notes = ?, instance_number = ?, source_ids = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, args...)
	if err != nil {
		return false, fmt.Errorf("update game: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// insertArgs flattens a game into the column order shared by Create and
// Update, mapping zero values of nullable columns to NULL.
func insertArgs(g models.Game) []any {
	var sourceIDs any
	if len(g.SourceIDs) > 0 {
		b, _ := json.Marshal(g.SourceIDs)
		sourceIDs = string(b)
	}
	status := g.AssignmentStatus
	if status == "" {
		status = models.AssignmentPending
	}
	return []any{
		g.ID, g.Name, nullString(g.VenueID), nullFloat(g.BuyIn), nullString(g.GameStartDateTime), nullInt(g.EventNumber),
		nullInt(g.DayNumber), nullString(g.FlightLetter), g.FinalDay, g.IsMainEvent, nullString(g.TournamentSeriesID),
		nullString(g.SeriesName), g.ReviewStatus, nullString(g.ConsolidatedIntoID), g.IsConsolidationParent,
		nullString(g.RecurringGameID), nullFloat(g.AssignmentConfidence), status,
		g.WasScheduledInstance, nullString(g.DeviationNotes), nullInt(g.InstanceNumber), sourceIDs,
	}
}

// CandidateSiblings returns games at the same venue with a buy-in inside
// the consolidation tolerance, starting within windowDays of start. The
// subject row itself is excluded; dismissed rows never come back.
func (r *Repo) CandidateSiblings(ctx context.Context, venueID string, buyIn float64, start string, windowDays int, excludeID string) ([]models.Game, error) {
	if venueID == "" {
		return nil, nil
	}
	if windowDays <= 0 {
		windowDays = 14
	}

	var where []string
	var args []any

	where = append(where, "venue_id = ?")
	args = append(args, venueID)

	where = append(where, "id != ?")
	args = append(args, excludeID)

	where = append(where, "review_status != ?")
	args = append(args, models.ReviewDismissed)

	// wide prefilter only; the resolver applies the exact tolerance
	if buyIn > 0 {
		where = append(where, "(buy_in IS NULL OR buy_in BETWEEN ? AND ?)")
		args = append(args, buyIn*0.5, buyIn*2)
	}

	if start != "" {
		if t, err := time.Parse(time.RFC3339, start); err == nil {
			window := time.Duration(windowDays) * 24 * time.Hour
			where = append(where, "(game_start_datetime IS NULL OR game_start_datetime BETWEEN ? AND ?)")
			args = append(args, t.Add(-window).Format(time.RFC3339), t.Add(window).Format(time.RFC3339))
		}
	}

	sqlStr := `SELECT ` + gameColumns + ` FROM games WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY game_start_datetime ASC, name ASC LIMIT 200`

	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("candidate query: %w", err)
	}
	defer rows.Close()

	var out []models.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("candidate scan: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// AttachToParent links a child row under a consolidation parent and marks
// the parent as such.
func (r *Repo) AttachToParent(ctx context.Context, childID, parentID string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE games SET consolidated_into_id = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, parentID, childID)
	if err != nil {
		return fmt.Errorf("attach child: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("attach child: game %s not found", childID)
	}

	_, err = r.DB.ExecContext(ctx, `
		UPDATE games SET is_consolidation_parent = 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, parentID)
	if err != nil {
		return fmt.Errorf("mark parent: %w", err)
	}
	return nil
}

func (r *Repo) SetReviewStatus(ctx context.Context, id, status string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE games SET review_status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, status, id)
	if err != nil {
		return false, fmt.Errorf("set review status: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ConfirmRecurring records a confirmed recurring-game assignment and marks
// the row as a scheduled instance.
func (r *Repo) ConfirmRecurring(ctx context.Context, gameID, recurringID string, confidence float64, instanceNumber int, deviationNotes string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE games SET
			recurring_game_id = ?,
			recurring_assignment_confidence = ?,
			recurring_assignment_status = ?,
			was_scheduled_instance = 1,
			instance_number = ?,
			deviation_notes = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, recurringID, confidence, models.AssignmentConfirmed, nullInt(instanceNumber), nullString(deviationNotes), gameID)
	if err != nil {
		return false, fmt.Errorf("confirm recurring: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// RejectRecurring clears any recurring-game link from a game row.
func (r *Repo) RejectRecurring(ctx context.Context, gameID string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE games SET
			recurring_game_id = NULL,
			recurring_assignment_confidence = NULL,
			recurring_assignment_status = ?,
			was_scheduled_instance = 0,
			instance_number = NULL,
			deviation_notes = NULL,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, models.AssignmentRejected, gameID)
	if err != nil {
		return false, fmt.Errorf("reject recurring: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// buildListSQL builds either COUNT(*) or the SELECT list for ListQuery.
func buildListSQL(q ListQuery, countOnly bool) (string, []any) {
	baseSelect := `SELECT ` + gameColumns + ` FROM games`
	if countOnly {
		baseSelect = `SELECT COUNT(*) FROM games`
	}

	var where []string
	var args []any

	if strings.TrimSpace(q.Q) != "" {
		where = append(where, "(LOWER(name) LIKE ? OR LOWER(series_name) LIKE ?)")
		kw := "%" + strings.ToLower(strings.TrimSpace(q.Q)) + "%"
		args = append(args, kw, kw)
	}

	if q.VenueID != "" {
		where = append(where, "venue_id = ?")
		args = append(args, q.VenueID)
	}

	if q.SeriesID != "" {
		where = append(where, "tournament_series_id = ?")
		args = append(args, q.SeriesID)
	}

	if q.RecurringID != "" {
		where = append(where, "recurring_game_id = ?")
		args = append(args, q.RecurringID)
	}

	if strings.TrimSpace(q.ReviewStatus) != "" {
		where = append(where, "review_status = ?")
		args = append(args, strings.ToLower(strings.TrimSpace(q.ReviewStatus)))
	}

	if q.From != "" {
		where = append(where, "game_start_datetime >= ?")
		args = append(args, q.From)
	}
	if q.To != "" {
		where = append(where, "game_start_datetime < ?")
		args = append(args, q.To)
	}

	sqlStr := baseSelect
	if len(where) > 0 {
		sqlStr += " WHERE " + strings.Join(where, " AND ")
	}

	if !countOnly {
		sqlStr += " ORDER BY game_start_datetime ASC, name ASC"
		sqlStr += " LIMIT ? OFFSET ?"
		limit := q.Limit
		if limit <= 0 || limit > 100 {
			limit = 20
		}
		offset := q.Offset
		if offset < 0 {
			offset = 0
		}
		args = append(args, limit, offset)
	}

	return sqlStr, args
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullFloat(f float64) any {
	if f == 0 {
		return nil
	}
	return f
}

func nullInt(n int) any {
	if n == 0 {
		return nil
	}
	return n
}
