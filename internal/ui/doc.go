// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI has two views:
//  1. [WatchlistListView] : Browse the signed-in user's watchlists
//  2. [EntryListView] : Work through one watchlist's movies
//
// In the entry view w toggles the watched date, K and J move the selected movie up or down one rank
// (persisted immediately) and s cycles the sort key. Reordering is only offered while sorted by rank.
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving results from
// its [Store] via the Msg union type. Every change is re-read from the store so the view never drifts
// from the persisted ranks.
package ui
