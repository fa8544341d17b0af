package review

import (
	"context"
	"database/sql"
	"fmt"

	"tourneyhub/pkg/models"
)

// Repo persists the consolidation audit trail. Every attach of a child
// to a parent leaves one row here, regardless of who decided it.
type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) Create(ctx context.Context, childID, parentID, matchedBy, decidedBy string) (*models.GameConsolidation, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO game_consolidations (child_game_id, parent_game_id, matched_by, decided_by)
		VALUES (?, ?, ?, ?)
	`, childID, parentID, matchedBy, decidedBy)
	if err != nil {
		return nil, fmt.Errorf("insert consolidation: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*models.GameConsolidation, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, child_game_id, parent_game_id, matched_by, decided_by, created_at
		FROM game_consolidations WHERE id = ?
	`, id)

	var gc models.GameConsolidation
	if err := row.Scan(&gc.ID, &gc.ChildGameID, &gc.ParentGameID, &gc.MatchedBy, &gc.DecidedBy, &gc.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan consolidation: %w", err)
	}
	return &gc, nil
}

// ListByGame returns the audit rows touching a game on either side of
// the link, newest first.
func (r *Repo) ListByGame(ctx context.Context, gameID string) ([]models.GameConsolidation, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, child_game_id, parent_game_id, matched_by, decided_by, created_at
		FROM game_consolidations
		WHERE child_game_id = ? OR parent_game_id = ?
		ORDER BY created_at DESC, id DESC
	`, gameID, gameID)
	if err != nil {
		return nil, fmt.Errorf("list consolidations: %w", err)
	}
	defer rows.Close()

	out := make([]models.GameConsolidation, 0)
	for rows.Next() {
		var gc models.GameConsolidation
		if err := rows.Scan(&gc.ID, &gc.ChildGameID, &gc.ParentGameID, &gc.MatchedBy, &gc.DecidedBy, &gc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan consolidation: %w", err)
		}
		out = append(out, gc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}
