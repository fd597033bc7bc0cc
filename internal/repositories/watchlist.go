package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
)

var _ models.Repository[*models.Watchlist] = (*WatchlistRepository)(nil)

const watchlistSelect = `
	SELECT w.id, w.user_id, w.name, w.image, w.description, w.tint_color, w.created_at, w.updated_at,
		(SELECT COUNT(*) FROM watchlist_entries e WHERE e.watchlist_id = w.id)
	FROM watchlists w
`

// WatchlistRepository implements [models.Repository] for [models.Watchlist].
type WatchlistRepository struct {
	db DBTX
}

// NewWatchlistRepository creates a new [WatchlistRepository] with the given database connection
func NewWatchlistRepository(db DBTX) *WatchlistRepository {
	return &WatchlistRepository{db: db}
}

// Create inserts a watchlist. A name already used by the same owner is reported as [shared.ErrConflict].
func (r *WatchlistRepository) Create(ctx context.Context, w *models.Watchlist) error {
	w.Name = strings.TrimSpace(w.Name)
	if err := w.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO watchlists (user_id, name, image, description, tint_color, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	res, err := r.db.ExecContext(ctx, query, w.UserID, w.Name, w.Image, w.Description, w.TintColor, w.CreatedAt, w.UpdatedAt)
	if err != nil {
		return classify(fmt.Sprintf("create watchlist %q", w.Name), err)
	}
	if w.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("failed to read watchlist id: %w", err)
	}
	return nil
}

// Get retrieves a watchlist by ID with its entry count
func (r *WatchlistRepository) Get(ctx context.Context, id int64) (*models.Watchlist, error) {
	w, err := scanWatchlist(r.db.QueryRowContext(ctx, watchlistSelect+" WHERE w.id = ?", id))
	if err != nil {
		return nil, classify(fmt.Sprintf("get watchlist %d", id), err)
	}
	return w, nil
}

// Update writes the name and presentation fields of an existing watchlist
func (r *WatchlistRepository) Update(ctx context.Context, w *models.Watchlist) error {
	w.Name = strings.TrimSpace(w.Name)
	if err := w.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	w.UpdatedAt = shared.Now()

	query := `
		UPDATE watchlists
		SET name = ?, image = ?, description = ?, tint_color = ?, updated_at = ?
		WHERE id = ?
	`
	res, err := r.db.ExecContext(ctx, query, w.Name, w.Image, w.Description, w.TintColor, w.UpdatedAt, w.ID)
	if err != nil {
		return classify(fmt.Sprintf("update watchlist %d", w.ID), err)
	}
	return requireAffected(res, "watchlist", w.ID)
}

// Delete removes a watchlist. Its entries cascade in the same statement.
func (r *WatchlistRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM watchlists WHERE id = ?`, id)
	if err != nil {
		return classify(fmt.Sprintf("delete watchlist %d", id), err)
	}
	return requireAffected(res, "watchlist", id)
}

// List retrieves watchlists in creation order.
//
// Supported criteria: "user_id" (int64), "name" (string, exact).
func (r *WatchlistRepository) List(ctx context.Context, criteria map[string]any) ([]*models.Watchlist, error) {
	query := watchlistSelect + " WHERE 1 = 1"
	args := []any{}

	if userID, ok := criteria["user_id"].(int64); ok && userID != 0 {
		query += " AND w.user_id = ?"
		args = append(args, userID)
	}
	if name, ok := criteria["name"].(string); ok && name != "" {
		query += " AND w.name = ?"
		args = append(args, name)
	}

	query += " ORDER BY w.created_at ASC, w.id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("query watchlists", err)
	}
	defer rows.Close()

	lists := []*models.Watchlist{}
	for rows.Next() {
		w, err := scanWatchlist(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan watchlist: %w", err)
		}
		lists = append(lists, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return lists, nil
}

// Earliest returns the user's oldest watchlist, or [shared.ErrNotFound] when the user owns none.
func (r *WatchlistRepository) Earliest(ctx context.Context, userID int64) (*models.Watchlist, error) {
	query := watchlistSelect + " WHERE w.user_id = ? ORDER BY w.created_at ASC, w.id ASC LIMIT 1"
	w, err := scanWatchlist(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		return nil, classify(fmt.Sprintf("get earliest watchlist for user %d", userID), err)
	}
	return w, nil
}

func scanWatchlist(s scanner) (*models.Watchlist, error) {
	var w models.Watchlist
	err := s.Scan(&w.ID, &w.UserID, &w.Name, &w.Image, &w.Description, &w.TintColor, &w.CreatedAt, &w.UpdatedAt, &w.EntryCount)
	if err != nil {
		return nil, err
	}
	return &w, nil
}
