package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/marquee/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgWatchlistsFetched MsgKind = iota
	MsgEntriesFetched
	MsgEntryChanged
)

type watchlistsResult struct {
	watchlists []*models.Watchlist
	err        error
}

type entriesResult struct {
	entries []models.WatchlistEntry
	cursor  int
	err     error
}

type changeResult struct {
	status string
	cursor int
	err    error
}

// watchlistsFetchedMsg is the constructor for [MsgWatchlistsFetched]
func watchlistsFetchedMsg(watchlists []*models.Watchlist, err error) Msg {
	return Msg{kind: MsgWatchlistsFetched, data: watchlistsResult{watchlists, err}}
}

// entriesFetchedMsg is the constructor for [MsgEntriesFetched].
// cursor is the index to select once the entries are shown.
func entriesFetchedMsg(entries []models.WatchlistEntry, cursor int, err error) Msg {
	return Msg{kind: MsgEntriesFetched, data: entriesResult{entries, cursor, err}}
}

// entryChangedMsg is the constructor for [MsgEntryChanged]
func entryChangedMsg(status string, cursor int, err error) Msg {
	return Msg{kind: MsgEntryChanged, data: changeResult{status, cursor, err}}
}
