package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
)

const entrySelect = `
	SELECT e.id, e.watchlist_id, e.user_id, e.movie_id, e.rank, e.date_added, e.date_watched,
		m.title, m.poster_url,
		(SELECT AVG(r.rating) FROM ratings r WHERE r.movie_id = e.movie_id) AS avg_rating
	FROM watchlist_entries e
	JOIN movies m ON m.id = e.movie_id
`

var entryOrder = map[models.SortKey]string{
	models.SortRank:    " ORDER BY e.rank ASC, e.id ASC",
	models.SortRating:  " ORDER BY avg_rating IS NULL ASC, avg_rating DESC, e.rank ASC, e.id ASC",
	models.SortWatched: " ORDER BY e.date_watched IS NOT NULL ASC, e.rank ASC, e.id ASC",
}

// EntryRepository persists [models.WatchlistEntry] rows.
//
// Methods that touch several rows (Remove, Reorder) must run on a transaction to keep ranks contiguous.
type EntryRepository struct {
	db DBTX
}

// NewEntryRepository creates a new [EntryRepository] with the given database connection
func NewEntryRepository(db DBTX) *EntryRepository {
	return &EntryRepository{db: db}
}

// Append adds movieID to the end of a watchlist in a single statement.
//
// A movie already present is reported as [shared.ErrConflict]. An unknown movie is [shared.ErrNotFound].
func (r *EntryRepository) Append(ctx context.Context, watchlistID, userID, movieID int64, at time.Time) (*models.WatchlistEntry, error) {
	query := `
		INSERT INTO watchlist_entries (watchlist_id, user_id, movie_id, rank, date_added)
		SELECT ?, ?, ?, COALESCE(MAX(rank), 0) + 1, ?
		FROM watchlist_entries WHERE watchlist_id = ?
	`
	res, err := r.db.ExecContext(ctx, query, watchlistID, userID, movieID, at, watchlistID)
	if err != nil {
		return nil, classify(fmt.Sprintf("add movie %d to watchlist %d", movieID, watchlistID), err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read entry id: %w", err)
	}
	return r.Get(ctx, id)
}

// Get retrieves an entry with its movie title and average rating
func (r *EntryRepository) Get(ctx context.Context, id int64) (*models.WatchlistEntry, error) {
	e, err := scanEntry(r.db.QueryRowContext(ctx, entrySelect+" WHERE e.id = ?", id))
	if err != nil {
		return nil, classify(fmt.Sprintf("get entry %d", id), err)
	}
	return e, nil
}

// List returns a watchlist's entries in the requested order
func (r *EntryRepository) List(ctx context.Context, watchlistID int64, sort models.SortKey) ([]models.WatchlistEntry, error) {
	order, ok := entryOrder[sort]
	if !ok {
		return nil, fmt.Errorf("%w: unknown sort key %q", shared.ErrInvalidInput, sort)
	}

	rows, err := r.db.QueryContext(ctx, entrySelect+" WHERE e.watchlist_id = ?"+order, watchlistID)
	if err != nil {
		return nil, classify("query entries", err)
	}
	defer rows.Close()

	entries := []models.WatchlistEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return entries, nil
}

// IDs returns a watchlist's entry ids in rank order
func (r *EntryRepository) IDs(ctx context.Context, watchlistID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM watchlist_entries WHERE watchlist_id = ? ORDER BY rank ASC, id ASC`, watchlistID)
	if err != nil {
		return nil, classify("query entry ids", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan entry id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Remove deletes an entry and closes the gap it leaves in the ranks.
func (r *EntryRepository) Remove(ctx context.Context, e *models.WatchlistEntry) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM watchlist_entries WHERE id = ?`, e.ID)
	if err != nil {
		return classify(fmt.Sprintf("delete entry %d", e.ID), err)
	}
	if err := requireAffected(res, "entry", e.ID); err != nil {
		return err
	}

	// Two passes through negative ranks keep UNIQUE(watchlist_id, rank) satisfied row by row.
	shift := []struct {
		query string
		args  []any
	}{
		{`UPDATE watchlist_entries SET rank = -(rank - 1) WHERE watchlist_id = ? AND rank > ?`, []any{e.WatchlistID, e.Rank}},
		{`UPDATE watchlist_entries SET rank = -rank WHERE watchlist_id = ? AND rank < 0`, []any{e.WatchlistID}},
	}
	for _, s := range shift {
		if _, err := r.db.ExecContext(ctx, s.query, s.args...); err != nil {
			return classify("renumber entries", err)
		}
	}
	return nil
}

// Reorder assigns ranks 1..n following ids, which must list every entry of the watchlist exactly once.
func (r *EntryRepository) Reorder(ctx context.Context, watchlistID int64, ids []int64) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE watchlist_entries SET rank = -rank WHERE watchlist_id = ?`, watchlistID); err != nil {
		return classify("park entry ranks", err)
	}

	for i, id := range ids {
		res, err := r.db.ExecContext(ctx,
			`UPDATE watchlist_entries SET rank = ? WHERE id = ? AND watchlist_id = ?`, i+1, id, watchlistID)
		if err != nil {
			return classify(fmt.Sprintf("rank entry %d", id), err)
		}
		if err := requireAffected(res, "entry", id); err != nil {
			return err
		}
	}
	return nil
}

// SetWatched stores the watched date, clearing it when at is nil
func (r *EntryRepository) SetWatched(ctx context.Context, id int64, at *time.Time) error {
	var value sql.NullTime
	if at != nil {
		value = sql.NullTime{Time: at.UTC(), Valid: true}
	}

	res, err := r.db.ExecContext(ctx, `UPDATE watchlist_entries SET date_watched = ? WHERE id = ?`, value, id)
	if err != nil {
		return classify(fmt.Sprintf("set watched on entry %d", id), err)
	}
	return requireAffected(res, "entry", id)
}

func scanEntry(s scanner) (*models.WatchlistEntry, error) {
	var (
		e       models.WatchlistEntry
		watched sql.NullTime
		rating  sql.NullFloat64
	)
	err := s.Scan(&e.ID, &e.WatchlistID, &e.UserID, &e.MovieID, &e.Rank, &e.DateAdded, &watched,
		&e.MovieTitle, &e.PosterURL, &rating)
	if err != nil {
		return nil, err
	}
	e.DateWatched = nullTime(watched)
	e.Rating = nullFloat(rating)
	return &e, nil
}
