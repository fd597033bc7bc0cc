// package watchlist implements the watchlist engine: named, user-owned lists of ranked movies
package watchlist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/marquee/internal/auth"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/repositories"
	"github.com/desertthunder/marquee/internal/shared"
)

// Details are the presentation fields of a watchlist.
type Details struct {
	Name        string `json:"name"`
	Image       string `json:"image"`
	Description string `json:"description"`
	TintColor   string `json:"tintColor"`
}

// Patch lists the watchlist fields to change. Nil fields are left alone.
type Patch struct {
	Name        *string `json:"name"`
	Image       *string `json:"image"`
	Description *string `json:"description"`
	TintColor   *string `json:"tintColor"`
}

// Engine implements the watchlist operations. Every operation runs as an explicit [auth.Caller];
// multi-row changes run in one transaction.
type Engine struct {
	db     *sql.DB
	logger *log.Logger
	now    func() time.Time
}

// New creates an [Engine].
func New(db *sql.DB, logger *log.Logger) *Engine {
	return &Engine{db: db, logger: shared.WithLogger(logger, "component", "watchlist"), now: shared.Now}
}

// CreateWatchlist creates a watchlist owned by the caller. Names are unique per owner, compared exactly.
func (e *Engine) CreateWatchlist(ctx context.Context, caller auth.Caller, d Details) (*models.Watchlist, error) {
	if err := caller.RequireUser(); err != nil {
		return nil, err
	}

	w := models.NewWatchlist(caller.UserID, d.Name)
	w.Image = strings.TrimSpace(d.Image)
	w.Description = strings.TrimSpace(d.Description)
	w.TintColor = strings.TrimSpace(d.TintColor)

	if err := repositories.NewWatchlistRepository(e.db).Create(ctx, w); err != nil {
		return nil, duplicateName(err, w.Name)
	}

	e.logger.Info("watchlist created", "watchlist_id", w.ID, "user_id", caller.UserID)
	return w, nil
}

// UpdateWatchlist applies patch to one of the caller's watchlists.
func (e *Engine) UpdateWatchlist(ctx context.Context, caller auth.Caller, id int64, patch Patch) (*models.Watchlist, error) {
	lists := repositories.NewWatchlistRepository(e.db)
	w, err := e.owned(ctx, lists, caller, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		w.Name = *patch.Name
	}
	if patch.Image != nil {
		w.Image = strings.TrimSpace(*patch.Image)
	}
	if patch.Description != nil {
		w.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.TintColor != nil {
		w.TintColor = strings.TrimSpace(*patch.TintColor)
	}

	if err := lists.Update(ctx, w); err != nil {
		return nil, duplicateName(err, w.Name)
	}
	return w, nil
}

// DeleteWatchlist removes one of the caller's watchlists together with its entries.
func (e *Engine) DeleteWatchlist(ctx context.Context, caller auth.Caller, id int64) error {
	err := repositories.WithTx(ctx, e.db, func(tx *sql.Tx) error {
		lists := repositories.NewWatchlistRepository(tx)
		if _, err := e.owned(ctx, lists, caller, id); err != nil {
			return err
		}
		return lists.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	e.logger.Info("watchlist deleted", "watchlist_id", id, "user_id", caller.UserID)
	return nil
}

// ListWatchlists returns the caller's watchlists, earliest first.
func (e *Engine) ListWatchlists(ctx context.Context, caller auth.Caller) ([]*models.Watchlist, error) {
	if err := caller.RequireUser(); err != nil {
		return nil, err
	}
	return repositories.NewWatchlistRepository(e.db).List(ctx, map[string]any{"user_id": caller.UserID})
}

// GetWatchlist returns one of the caller's watchlists.
func (e *Engine) GetWatchlist(ctx context.Context, caller auth.Caller, id int64) (*models.Watchlist, error) {
	return e.owned(ctx, repositories.NewWatchlistRepository(e.db), caller, id)
}

// AddMovie appends a movie to a watchlist. Without a watchlist id the caller's earliest watchlist is used,
// and a default one is created when they own none.
//
// Adding a movie that is already on the watchlist is a conflict and leaves the existing entry as it was.
// Private movies are not found unless the caller is an admin.
func (e *Engine) AddMovie(ctx context.Context, caller auth.Caller, movieID int64, watchlistID *int64) (*models.WatchlistEntry, error) {
	if err := caller.RequireUser(); err != nil {
		return nil, err
	}

	var entry *models.WatchlistEntry
	err := repositories.WithTx(ctx, e.db, func(tx *sql.Tx) error {
		lists := repositories.NewWatchlistRepository(tx)

		var (
			w   *models.Watchlist
			err error
		)
		if watchlistID != nil {
			w, err = e.owned(ctx, lists, caller, *watchlistID)
		} else {
			w, err = e.defaultWatchlist(ctx, lists, caller)
		}
		if err != nil {
			return err
		}

		movie, err := repositories.NewMovieRepository(tx).Get(ctx, movieID)
		if err != nil {
			return err
		}
		if movie.Visibility == models.VisibilityPrivate && !caller.Admin {
			return fmt.Errorf("movie %d: %w", movieID, shared.ErrNotFound)
		}

		entry, err = repositories.NewEntryRepository(tx).Append(ctx, w.ID, caller.UserID, movieID, e.now())
		switch {
		case errors.Is(err, shared.ErrConflict):
			return fmt.Errorf("%w: movie %d is already on watchlist %q", shared.ErrConflict, movieID, w.Name)
		case errors.Is(err, shared.ErrNotFound):
			return fmt.Errorf("movie %d: %w", movieID, shared.ErrNotFound)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	e.logger.Debug("movie added", "entry_id", entry.ID, "watchlist_id", entry.WatchlistID, "rank", entry.Rank)
	return entry, nil
}

// RemoveEntry deletes one of the caller's entries. Later entries move up one rank.
func (e *Engine) RemoveEntry(ctx context.Context, caller auth.Caller, entryID int64) error {
	return repositories.WithTx(ctx, e.db, func(tx *sql.Tx) error {
		entries := repositories.NewEntryRepository(tx)
		entry, err := ownedEntry(ctx, entries, caller, entryID)
		if err != nil {
			return err
		}
		return entries.Remove(ctx, entry)
	})
}

// MarkWatched records when the caller watched an entry. A nil time means now.
func (e *Engine) MarkWatched(ctx context.Context, caller auth.Caller, entryID int64, at *time.Time) (*models.WatchlistEntry, error) {
	when := e.now()
	if at != nil && !at.IsZero() {
		when = at.UTC()
	}
	return e.setWatched(ctx, caller, entryID, &when)
}

// UnmarkWatched clears the watched date of an entry.
func (e *Engine) UnmarkWatched(ctx context.Context, caller auth.Caller, entryID int64) (*models.WatchlistEntry, error) {
	return e.setWatched(ctx, caller, entryID, nil)
}

func (e *Engine) setWatched(ctx context.Context, caller auth.Caller, entryID int64, at *time.Time) (*models.WatchlistEntry, error) {
	entries := repositories.NewEntryRepository(e.db)
	if _, err := ownedEntry(ctx, entries, caller, entryID); err != nil {
		return nil, err
	}
	if err := entries.SetWatched(ctx, entryID, at); err != nil {
		return nil, err
	}
	return entries.Get(ctx, entryID)
}

// SetOrder rewrites the ranks of a watchlist to follow entryIDs, which must name every entry exactly once.
// Applying the same order twice leaves the ranks unchanged.
func (e *Engine) SetOrder(ctx context.Context, caller auth.Caller, watchlistID int64, entryIDs []int64) ([]models.WatchlistEntry, error) {
	var result []models.WatchlistEntry
	err := repositories.WithTx(ctx, e.db, func(tx *sql.Tx) error {
		if _, err := e.owned(ctx, repositories.NewWatchlistRepository(tx), caller, watchlistID); err != nil {
			return err
		}

		entries := repositories.NewEntryRepository(tx)
		current, err := entries.IDs(ctx, watchlistID)
		if err != nil {
			return err
		}
		if err := checkPermutation(current, entryIDs); err != nil {
			return err
		}
		if err := entries.Reorder(ctx, watchlistID, entryIDs); err != nil {
			return err
		}

		result, err = entries.List(ctx, watchlistID, models.SortRank)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// MoveEntry moves one entry to rank, shifting the entries in between. Ranks outside 1..n are clamped.
func (e *Engine) MoveEntry(ctx context.Context, caller auth.Caller, entryID int64, rank int) ([]models.WatchlistEntry, error) {
	entries := repositories.NewEntryRepository(e.db)
	entry, err := ownedEntry(ctx, entries, caller, entryID)
	if err != nil {
		return nil, err
	}

	ids, err := entries.IDs(ctx, entry.WatchlistID)
	if err != nil {
		return nil, err
	}
	return e.SetOrder(ctx, caller, entry.WatchlistID, moveTo(ids, entryID, rank))
}

// ListEntries returns a watchlist's entries in the order given by sort.
func (e *Engine) ListEntries(ctx context.Context, caller auth.Caller, watchlistID int64, sort models.SortKey) ([]models.WatchlistEntry, error) {
	if _, err := e.owned(ctx, repositories.NewWatchlistRepository(e.db), caller, watchlistID); err != nil {
		return nil, err
	}
	return repositories.NewEntryRepository(e.db).List(ctx, watchlistID, sort)
}

// Export returns a watchlist with its entries in rank order.
func (e *Engine) Export(ctx context.Context, caller auth.Caller, watchlistID int64) (*models.WatchlistExport, error) {
	w, err := e.GetWatchlist(ctx, caller, watchlistID)
	if err != nil {
		return nil, err
	}
	entries, err := repositories.NewEntryRepository(e.db).List(ctx, watchlistID, models.SortRank)
	if err != nil {
		return nil, err
	}
	return &models.WatchlistExport{Watchlist: *w, Entries: entries}, nil
}

// owned loads a watchlist and checks that the caller owns it.
func (e *Engine) owned(ctx context.Context, lists *repositories.WatchlistRepository, caller auth.Caller, id int64) (*models.Watchlist, error) {
	if err := caller.RequireUser(); err != nil {
		return nil, err
	}
	w, err := lists.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.Owns(w.UserID) {
		return nil, fmt.Errorf("%w: watchlist %d belongs to another user", shared.ErrForbidden, id)
	}
	return w, nil
}

func (e *Engine) defaultWatchlist(ctx context.Context, lists *repositories.WatchlistRepository, caller auth.Caller) (*models.Watchlist, error) {
	w, err := lists.Earliest(ctx, caller.UserID)
	if !errors.Is(err, shared.ErrNotFound) {
		return w, err
	}

	w = models.NewWatchlist(caller.UserID, models.DefaultWatchlistName)
	if err := lists.Create(ctx, w); err != nil {
		return nil, err
	}
	e.logger.Info("default watchlist created", "watchlist_id", w.ID, "user_id", caller.UserID)
	return w, nil
}

func ownedEntry(ctx context.Context, entries *repositories.EntryRepository, caller auth.Caller, id int64) (*models.WatchlistEntry, error) {
	if err := caller.RequireUser(); err != nil {
		return nil, err
	}
	entry, err := entries.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.Owns(entry.UserID) {
		return nil, fmt.Errorf("%w: entry %d belongs to another user", shared.ErrForbidden, id)
	}
	return entry, nil
}

func duplicateName(err error, name string) error {
	if errors.Is(err, shared.ErrConflict) {
		return fmt.Errorf("%w: a watchlist named %q already exists", shared.ErrConflict, name)
	}
	return err
}
