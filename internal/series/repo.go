package series

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

func (r *Repo) GetByID(ctx context.Context, id string) (*models.TournamentSeries, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, name, venue_id, starts_on, ends_on, created_at
		FROM tournament_series
		WHERE id = ?
	`, id)

	var (
		s       models.TournamentSeries
		venueID sql.NullString
		starts  sql.NullString
		ends    sql.NullString
	)
	if err := row.Scan(&s.ID, &s.Name, &venueID, &starts, &ends, &s.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan series: %w", err)
	}
	s.VenueID = venueID.String
	s.StartsOn = starts.String
	s.EndsOn = ends.String
	return &s, nil
}

func (r *Repo) List(ctx context.Context, venueID string, limit, offset int) ([]models.TournamentSeries, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var where string
	var args []any
	if venueID != "" {
		where = " WHERE venue_id = ?"
		args = append(args, venueID)
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM tournament_series`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count series: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, name, venue_id, starts_on, ends_on, created_at
		FROM tournament_series`+where+`
		ORDER BY starts_on DESC, name ASC
		LIMIT ? OFFSET ?
	`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list series: %w", err)
	}
	defer rows.Close()

	out := make([]models.TournamentSeries, 0, limit)
	for rows.Next() {
		var (
			s       models.TournamentSeries
			venueID sql.NullString
			starts  sql.NullString
			ends    sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.Name, &venueID, &starts, &ends, &s.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan series row: %w", err)
		}
		s.VenueID = venueID.String
		s.StartsOn = starts.String
		s.EndsOn = ends.String
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows err: %w", err)
	}
	return out, total, nil
}

func (r *Repo) Create(ctx context.Context, s *models.TournamentSeries) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO tournament_series (id, name, venue_id, starts_on, ends_on)
		VALUES (?, ?, ?, ?, ?)
	`, s.ID, s.Name, nullString(s.VenueID), nullString(s.StartsOn), nullString(s.EndsOn))
	if err != nil {
		return fmt.Errorf("insert series: %w", err)
	}
	return nil
}

func (r *Repo) Update(ctx context.Context, s models.TournamentSeries) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE tournament_series SET name = ?, venue_id = ?, starts_on = ?, ends_on = ?
		WHERE id = ?
	`, s.Name, nullString(s.VenueID), nullString(s.StartsOn), nullString(s.EndsOn), s.ID)
	if err != nil {
		return false, fmt.Errorf("update series: %w", err)
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
