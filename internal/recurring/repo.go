package recurring

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"tourneyhub/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) GetByID(ctx context.Context, id string) (*models.RecurringGame, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, venue_id, name, weekday, start_time, buy_in, active, created_at
		FROM recurring_games
		WHERE id = ?
	`, id)

	var (
		rec       models.RecurringGame
		startTime sql.NullString
		buyIn     sql.NullFloat64
	)
	if err := row.Scan(&rec.ID, &rec.VenueID, &rec.Name, &rec.Weekday, &startTime, &buyIn, &rec.Active, &rec.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan recurring: %w", err)
	}
	rec.StartTime = startTime.String
	rec.BuyIn = buyIn.Float64
	return &rec, nil
}

func (r *Repo) List(ctx context.Context, venueID string, activeOnly bool, limit, offset int) ([]models.RecurringGame, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	where := " WHERE 1=1"
	var args []any
	if venueID != "" {
		where += " AND venue_id = ?"
		args = append(args, venueID)
	}
	if activeOnly {
		where += " AND active = 1"
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM recurring_games`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count recurring: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, venue_id, name, weekday, start_time, buy_in, active, created_at
		FROM recurring_games`+where+`
		ORDER BY weekday ASC, name ASC
		LIMIT ? OFFSET ?
	`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list recurring: %w", err)
	}
	defer rows.Close()

	out := make([]models.RecurringGame, 0, limit)
	for rows.Next() {
		var (
			rec       models.RecurringGame
			startTime sql.NullString
			buyIn     sql.NullFloat64
		)
		if err := rows.Scan(&rec.ID, &rec.VenueID, &rec.Name, &rec.Weekday, &startTime, &buyIn, &rec.Active, &rec.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan recurring row: %w", err)
		}
		rec.StartTime = startTime.String
		rec.BuyIn = buyIn.Float64
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows err: %w", err)
	}
	return out, total, nil
}

// ListActiveByVenue returns every active recurring game at a venue, the
// candidate set the assignment proposer scores against.
func (r *Repo) ListActiveByVenue(ctx context.Context, venueID string) ([]models.RecurringGame, error) {
	recs, _, err := r.List(ctx, venueID, true, 100, 0)
	return recs, err
}

func (r *Repo) Create(ctx context.Context, rec *models.RecurringGame) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO recurring_games (id, venue_id, name, weekday, start_time, buy_in, active)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.VenueID, rec.Name, rec.Weekday, nullString(rec.StartTime), nullFloat(rec.BuyIn), rec.Active)
	if err != nil {
		return fmt.Errorf("insert recurring: %w", err)
	}
	return nil
}

func (r *Repo) Update(ctx context.Context, rec models.RecurringGame) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE recurring_games SET venue_id = ?, name = ?, weekday = ?, start_time = ?, buy_in = ?, active = ?
		WHERE id = ?
	`, rec.VenueID, rec.Name, rec.Weekday, nullString(rec.StartTime), nullFloat(rec.BuyIn), rec.Active, rec.ID)
	if err != nil {
		return false, fmt.Errorf("update recurring: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
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
