package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/marquee/internal/models"
)

var (
	_ list.Item = watchlistItem{}
	_ list.Item = entryItem{}
)

// watchlistItem wraps [models.Watchlist] to implement [list.Item].
type watchlistItem struct {
	watchlist *models.Watchlist
}

func (i watchlistItem) FilterValue() string { return i.watchlist.Name }
func (i watchlistItem) Title() string       { return i.watchlist.Name }
func (i watchlistItem) Description() string {
	desc := fmt.Sprintf("%d movies", i.watchlist.EntryCount)
	if i.watchlist.Description != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.watchlist.Description)
	}
	return desc
}

// entryItem wraps [models.WatchlistEntry] to implement [list.Item].
type entryItem struct {
	entry models.WatchlistEntry
}

func (i entryItem) FilterValue() string { return i.entry.MovieTitle }
func (i entryItem) Title() string {
	title := fmt.Sprintf("%d. %s", i.entry.Rank, i.entry.MovieTitle)
	if i.entry.Watched() {
		return styles.watched.Render(title + " ✓")
	}
	return title
}

func (i entryItem) Description() string {
	desc := "unwatched"
	if i.entry.Watched() {
		desc = "watched " + i.entry.DateWatched.Format("2006-01-02")
	}
	if i.entry.Rating != nil {
		desc = fmt.Sprintf("%s • %.1f/100", desc, *i.entry.Rating)
	}
	return desc
}
