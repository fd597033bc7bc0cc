package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Phase of a bulk export
type Phase int

const (
	FetchWatchlists Phase = iota
	ExportWatchlist
)

func (p Phase) String() string {
	switch p {
	case FetchWatchlists:
		return "fetch_watchlists"
	case ExportWatchlist:
		return "export_watchlist"
	default:
		return ""
	}
}

// sendProgress sends an update without blocking. A nil channel or a full buffer drops the update.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func fetchingWatchlistsUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchWatchlists,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d watchlists", total),
	}
}

func exportingUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportWatchlist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting: %s...", step, total, name),
	}
}

func exportCompletedUpdate(step, total int, res WatchlistExportResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportWatchlist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, res.Name, len(res.Files)),
		Data:    res,
	}
}

func exportFailedUpdate(step, total int, res WatchlistExportResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportWatchlist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, res.Name, res.Error),
		Data:    res,
	}
}
