package venues

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"tourneyhub/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) GetByID(ctx context.Context, id string) (*models.Venue, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, name, city, region, timezone, created_at
		FROM venues
		WHERE id = ?
	`, id)
	return scanVenue(row)
}

// GetByName looks a venue up by its exact name. Venue names are unique.
func (r *Repo) GetByName(ctx context.Context, name string) (*models.Venue, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, name, city, region, timezone, created_at
		FROM venues
		WHERE name = ?
	`, name)
	return scanVenue(row)
}

func scanVenue(row *sql.Row) (*models.Venue, error) {
	var (
		v        models.Venue
		city     sql.NullString
		region   sql.NullString
		timezone sql.NullString
	)
	if err := row.Scan(&v.ID, &v.Name, &city, &region, &timezone, &v.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan venue: %w", err)
	}
	v.City = city.String
	v.Region = region.String
	v.Timezone = timezone.String
	return &v, nil
}

func (r *Repo) List(ctx context.Context, q string, limit, offset int) ([]models.Venue, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var where string
	var args []any
	if strings.TrimSpace(q) != "" {
		where = " WHERE LOWER(name) LIKE ?"
		args = append(args, "%"+strings.ToLower(strings.TrimSpace(q))+"%")
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM venues`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count venues: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, name, city, region, timezone, created_at
		FROM venues`+where+`
		ORDER BY name ASC
		LIMIT ? OFFSET ?
	`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list venues: %w", err)
	}
	defer rows.Close()

	out := make([]models.Venue, 0, limit)
	for rows.Next() {
		var (
			v        models.Venue
			city     sql.NullString
			region   sql.NullString
			timezone sql.NullString
		)
		if err := rows.Scan(&v.ID, &v.Name, &city, &region, &timezone, &v.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan venue row: %w", err)
		}
		v.City = city.String
		v.Region = region.String
		v.Timezone = timezone.String
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows err: %w", err)
	}
	return out, total, nil
}

func (r *Repo) Create(ctx context.Context, v *models.Venue) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO venues (id, name, city, region, timezone)
		VALUES (?, ?, ?, ?, ?)
	`, v.ID, v.Name, nullString(v.City), nullString(v.Region), nullString(v.Timezone))
	if err != nil {
		return fmt.Errorf("insert venue: %w", err)
	}
	return nil
}

func (r *Repo) Update(ctx context.Context, v models.Venue) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE venues SET name = ?, city = ?, region = ?, timezone = ?
		WHERE id = ?
	`, v.Name, nullString(v.City), nullString(v.Region), nullString(v.Timezone), v.ID)
	if err != nil {
		return false, fmt.Errorf("update venue: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ResolveOrCreate returns the venue with the given name, creating it on
// first sight. The scraper feeds venue names, not ids.
func (r *Repo) ResolveOrCreate(ctx context.Context, name string) (*models.Venue, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("venue name is empty")
	}

	v, err := r.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if v != nil {
		return v, nil
	}

	nv := models.Venue{Name: name}
	if err := r.Create(ctx, &nv); err != nil {
		return nil, err
	}
	return &nv, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
