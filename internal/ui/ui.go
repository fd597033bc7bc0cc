package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/marquee/internal/auth"
	"github.com/desertthunder/marquee/internal/models"
)

// Store is the part of the watchlist engine the TUI drives.
type Store interface {
	ListWatchlists(ctx context.Context, caller auth.Caller) ([]*models.Watchlist, error)
	ListEntries(ctx context.Context, caller auth.Caller, watchlistID int64, sort models.SortKey) ([]models.WatchlistEntry, error)
	MarkWatched(ctx context.Context, caller auth.Caller, entryID int64, at *time.Time) (*models.WatchlistEntry, error)
	UnmarkWatched(ctx context.Context, caller auth.Caller, entryID int64) (*models.WatchlistEntry, error)
	MoveEntry(ctx context.Context, caller auth.Caller, entryID int64, rank int) ([]models.WatchlistEntry, error)
}

// ViewState represents the current view in the TUI.
type ViewState int

const (
	WatchlistListView ViewState = iota
	EntryListView
)

// Model represents the TUI application state.
type Model struct {
	ctx           context.Context
	store         Store
	caller        auth.Caller
	view          ViewState
	width         int
	height        int
	watchlistList list.Model
	entryList     list.Model
	current       *models.Watchlist
	sort          models.SortKey
	status        string
	err           error
	help          help.Model
	keys          keyMap
}

// NewModel creates a TUI model that browses the watchlists owned by caller.
func NewModel(ctx context.Context, store Store, caller auth.Caller) *Model {
	watchlists := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	watchlists.Title = "Watchlists"
	watchlists.SetShowHelp(false)

	entries := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	entries.SetFilteringEnabled(false)
	entries.SetShowHelp(false)

	return &Model{
		ctx:           ctx,
		store:         store,
		caller:        caller,
		view:          WatchlistListView,
		watchlistList: watchlists,
		entryList:     entries,
		sort:          models.SortRank,
		help:          help.New(),
		keys:          newKeyMap(),
	}
}

// Init loads the caller's watchlists.
func (m *Model) Init() tea.Cmd {
	return m.fetchWatchlists()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		w, h := max(msg.Width-4, 0), max(msg.Height-8, 0)
		m.watchlistList.SetSize(w, h)
		m.entryList.SetSize(w, h)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case WatchlistListView:
			return m.handleWatchlistKeys(msg)
		case EntryListView:
			return m.handleEntryKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgWatchlistsFetched:
		r := msg.data.(watchlistsResult)
		if r.err != nil {
			m.err = r.err
			return m, nil
		}
		items := make([]list.Item, len(r.watchlists))
		for i, wl := range r.watchlists {
			items[i] = watchlistItem{watchlist: wl}
		}
		m.watchlistList.SetItems(items)

	case MsgEntriesFetched:
		r := msg.data.(entriesResult)
		if r.err != nil {
			m.err = r.err
			return m, nil
		}
		items := make([]list.Item, len(r.entries))
		for i, e := range r.entries {
			items[i] = entryItem{entry: e}
		}
		m.entryList.SetItems(items)
		if len(items) > 0 {
			m.entryList.Select(min(max(r.cursor, 0), len(items)-1))
		}
		m.entryList.Title = fmt.Sprintf("%s (by %s)", m.current.Name, m.sort)
		m.view = EntryListView

	case MsgEntryChanged:
		r := msg.data.(changeResult)
		if r.err != nil {
			m.err = r.err
			return m, nil
		}
		m.status = r.status
		return m, m.fetchEntries(r.cursor)
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch m.view {
	case WatchlistListView:
		body = m.renderWatchlists()
	case EntryListView:
		body = m.renderEntries()
	}

	switch {
	case m.err != nil:
		return fmt.Sprintf("%s\n%s", body, styles.err.Render(fmt.Sprintf("Error: %v", m.err)))
	case m.status != "":
		return fmt.Sprintf("%s\n%s", body, styles.ok.Render(m.status))
	default:
		return body
	}
}

func (m *Model) handleWatchlistKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.watchlistList.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}
	m.err, m.status = nil, ""

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.watchlistList.SelectedItem().(watchlistItem); ok {
			m.current = item.watchlist
			m.sort = models.SortRank
			return m, m.fetchEntries(0)
		}
		return m, nil
	}
	return m.updateLists(msg)
}

func (m *Model) handleEntryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err, m.status = nil, ""

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = WatchlistListView
		m.current = nil
		return m, m.fetchWatchlists()
	case key.Matches(msg, m.keys.sort):
		m.sort = m.sort.Next()
		return m, m.fetchEntries(0)
	case key.Matches(msg, m.keys.watched):
		return m, m.toggleWatched()
	case key.Matches(msg, m.keys.moveUp):
		return m, m.move(-1)
	case key.Matches(msg, m.keys.moveDown):
		return m, m.move(1)
	}
	return m.updateLists(msg)
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case WatchlistListView:
		m.watchlistList, cmd = m.watchlistList.Update(msg)
	case EntryListView:
		m.entryList, cmd = m.entryList.Update(msg)
	}
	return m, cmd
}

func (m *Model) selectedEntry() (models.WatchlistEntry, bool) {
	item, ok := m.entryList.SelectedItem().(entryItem)
	return item.entry, ok
}

func (m *Model) fetchWatchlists() tea.Cmd {
	return func() tea.Msg {
		lists, err := m.store.ListWatchlists(m.ctx, m.caller)
		return watchlistsFetchedMsg(lists, err)
	}
}

func (m *Model) fetchEntries(cursor int) tea.Cmd {
	id, sort := m.current.ID, m.sort
	return func() tea.Msg {
		entries, err := m.store.ListEntries(m.ctx, m.caller, id, sort)
		return entriesFetchedMsg(entries, cursor, err)
	}
}

func (m *Model) toggleWatched() tea.Cmd {
	e, ok := m.selectedEntry()
	if !ok {
		return nil
	}
	cursor := m.entryList.Index()
	return func() tea.Msg {
		if e.Watched() {
			_, err := m.store.UnmarkWatched(m.ctx, m.caller, e.ID)
			return entryChangedMsg(fmt.Sprintf("%s marked unwatched", e.MovieTitle), cursor, err)
		}
		_, err := m.store.MarkWatched(m.ctx, m.caller, e.ID, nil)
		return entryChangedMsg(fmt.Sprintf("%s marked watched", e.MovieTitle), cursor, err)
	}
}

// move shifts the selected entry by delta ranks. Ranks only line up with list positions in rank order.
func (m *Model) move(delta int) tea.Cmd {
	if m.sort != models.SortRank {
		m.status = "press s until sorted by rank to reorder"
		return nil
	}
	e, ok := m.selectedEntry()
	if !ok {
		return nil
	}
	rank := e.Rank + delta
	if rank < 1 || rank > len(m.entryList.Items()) {
		return nil
	}
	return func() tea.Msg {
		_, err := m.store.MoveEntry(m.ctx, m.caller, e.ID, rank)
		return entryChangedMsg(fmt.Sprintf("%s moved to #%d", e.MovieTitle, rank), rank-1, err)
	}
}

func (m *Model) renderWatchlists() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	return fmt.Sprintf("%s\n\n%s", m.watchlistList.View(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderEntries() string {
	helpKeys := []key.Binding{m.keys.watched, m.keys.moveUp, m.keys.moveDown, m.keys.sort, m.keys.back, m.keys.quit}
	return fmt.Sprintf("%s\n\n%s", m.entryList.View(), m.help.ShortHelpView(helpKeys))
}
