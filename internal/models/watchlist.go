package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/marquee/internal/shared"
)

// DefaultWatchlistName is used when a movie is added without naming a watchlist and the user owns none.
const DefaultWatchlistName = "My Watchlist"

// Watchlist is a named, user-owned collection of ranked movies.
type Watchlist struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	Name        string    `json:"name"`
	Image       string    `json:"image,omitempty"`
	Description string    `json:"description,omitempty"`
	TintColor   string    `json:"tintColor,omitempty"`
	EntryCount  int       `json:"entryCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewWatchlist creates a [Watchlist] owned by userID with a trimmed name.
func NewWatchlist(userID int64, name string) *Watchlist {
	now := shared.Now()
	return &Watchlist{
		UserID:    userID,
		Name:      strings.TrimSpace(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (w *Watchlist) Key() int64 { return w.ID }

func (w *Watchlist) Validate() error {
	if w.UserID == 0 {
		return fmt.Errorf("%w: watchlist owner is required", shared.ErrInvalidInput)
	}
	if strings.TrimSpace(w.Name) == "" {
		return fmt.Errorf("%w: watchlist name is required", shared.ErrInvalidInput)
	}
	return nil
}

// WatchlistEntry is one movie inside a watchlist.
//
// Ranks within one watchlist are always 1..n with no gaps or duplicates.
// DateWatched is nil while the movie is unwatched.
type WatchlistEntry struct {
	ID          int64      `json:"id"`
	WatchlistID int64      `json:"watchlistId"`
	UserID      int64      `json:"userId"`
	MovieID     int64      `json:"movieId"`
	Rank        int        `json:"rank"`
	DateAdded   time.Time  `json:"dateAdded"`
	DateWatched *time.Time `json:"dateWatched"`

	// Read-side fields joined from the movie and its ratings.
	MovieTitle string   `json:"movieTitle,omitempty"`
	PosterURL  string   `json:"posterUrl,omitempty"`
	Rating     *float64 `json:"rating"`
}

func (e *WatchlistEntry) Key() int64 { return e.ID }

// Watched reports whether the entry has a watched date.
func (e *WatchlistEntry) Watched() bool { return e.DateWatched != nil }

func (e *WatchlistEntry) Validate() error {
	if e.WatchlistID == 0 || e.UserID == 0 || e.MovieID == 0 {
		return fmt.Errorf("%w: watchlist, user and movie are required", shared.ErrInvalidInput)
	}
	return nil
}

// SortKey selects the ordering used when listing watchlist entries.
type SortKey string

const (
	SortRank    SortKey = "rank"
	SortRating  SortKey = "rating"
	SortWatched SortKey = "watched"
)

// SortKeys lists the keys in the order the TUI cycles through them.
var SortKeys = []SortKey{SortRank, SortRating, SortWatched}

// ParseSortKey parses s, returning [SortRank] for the empty string.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return SortRank, nil
	case SortRank, SortRating, SortWatched:
		return k, nil
	default:
		return "", fmt.Errorf("%w: unknown sort key %q", shared.ErrInvalidInput, s)
	}
}

// Next returns the key after k in [SortKeys], wrapping around.
func (k SortKey) Next() SortKey {
	for i, key := range SortKeys {
		if key == k {
			return SortKeys[(i+1)%len(SortKeys)]
		}
	}
	return SortRank
}

// WatchlistExport is a watchlist with its entries in rank order.
type WatchlistExport struct {
	Watchlist Watchlist        `json:"watchlist"`
	Entries   []WatchlistEntry `json:"entries"`
}
