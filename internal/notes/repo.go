package notes

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"tourneyhub/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) Create(ctx context.Context, gameID, author, text string) (*models.GameNote, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO game_notes (game_id, author, text)
		VALUES (?, ?, ?)
	`, gameID, author, text)
	if err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*models.GameNote, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, game_id, author, text, timestamp
		FROM game_notes
		WHERE id = ?
	`, id)

	var note models.GameNote
	var ts time.Time
	if err := row.Scan(&note.ID, &note.GameID, &note.Author, &note.Text, &ts); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan note: %w", err)
	}

	note.Timestamp = ts
	return &note, nil
}

func (r *Repo) ListByGame(ctx context.Context, gameID string, limit, offset int) ([]models.GameNote, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, game_id, author, text, timestamp
		FROM game_notes
		WHERE game_id = ?
		ORDER BY timestamp DESC
		LIMIT ? OFFSET ?
	`, gameID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	out := make([]models.GameNote, 0, limit)
	for rows.Next() {
		var note models.GameNote
		var ts time.Time

		if err := rows.Scan(&note.ID, &note.GameID, &note.Author, &note.Text, &ts); err != nil {
			return nil, fmt.Errorf("scan note row: %w", err)
		}

		note.Timestamp = ts
		out = append(out, note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM game_notes
		WHERE id = ?
	`, id)
	if err != nil {
		return false, fmt.Errorf("delete note: %w", err)
	}
	rows, _ := res.RowsAffected()
	return rows > 0, nil
}
