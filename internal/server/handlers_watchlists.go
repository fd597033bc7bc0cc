package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/marquee/internal/formatter"
	"github.com/desertthunder/marquee/internal/httputil"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/desertthunder/marquee/internal/watchlist"
)

type addEntryRequest struct {
	MovieID     int64  `json:"movieId"`
	WatchlistID *int64 `json:"watchlistId"`
}

type orderRequest struct {
	EntryIDs []int64 `json:"entryIds"`
}

type rankRequest struct {
	Rank int `json:"rank"`
}

type watchedRequest struct {
	DateWatched *time.Time `json:"dateWatched"`
}

func (a *API) listWatchlists(w http.ResponseWriter, r *http.Request) error {
	lists, err := a.watchlists.ListWatchlists(r.Context(), caller(r))
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, lists)
	return nil
}

func (a *API) createWatchlist(w http.ResponseWriter, r *http.Request) error {
	var d watchlist.Details
	if err := httputil.ReadJSON(r, &d); err != nil {
		return err
	}
	list, err := a.watchlists.CreateWatchlist(r.Context(), caller(r), d)
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusCreated, list)
	return nil
}

func (a *API) getWatchlist(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	list, err := a.watchlists.GetWatchlist(r.Context(), caller(r), id)
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, list)
	return nil
}

func (a *API) updateWatchlist(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	var patch watchlist.Patch
	if err := httputil.ReadJSON(r, &patch); err != nil {
		return err
	}
	list, err := a.watchlists.UpdateWatchlist(r.Context(), caller(r), id, patch)
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, list)
	return nil
}

func (a *API) deleteWatchlist(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	if err := a.watchlists.DeleteWatchlist(r.Context(), caller(r), id); err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, nil)
	return nil
}

func (a *API) listEntries(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	sort, err := models.ParseSortKey(r.URL.Query().Get("sort"))
	if err != nil {
		return err
	}
	entries, err := a.watchlists.ListEntries(r.Context(), caller(r), id, sort)
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, entries)
	return nil
}

func (a *API) setOrder(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	var req orderRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		return err
	}
	entries, err := a.watchlists.SetOrder(r.Context(), caller(r), id, req.EntryIDs)
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, entries)
	return nil
}

// exportWatchlist serves the watchlist as a file download in the format named by ?format= (json by default).
func (a *API) exportWatchlist(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	name := r.URL.Query().Get("format")
	if name == "" {
		name = string(formatter.FormatJSON)
	}
	format, err := formatter.ParseFormat(name)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	export, err := a.watchlists.Export(r.Context(), caller(r), id)
	if err != nil {
		return err
	}
	data, err := formatter.Export(export, format)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", formatter.DefaultFilename(export, format)))
	w.WriteHeader(http.StatusOK)
	_, err = w.Write(data)
	if err != nil {
		a.logger.Warn("export write failed", "watchlist_id", id, "error", err)
	}
	return nil
}

func (a *API) addEntry(w http.ResponseWriter, r *http.Request) error {
	var req addEntryRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		return err
	}
	if req.MovieID <= 0 {
		return fmt.Errorf("%w: movieId is required", shared.ErrInvalidInput)
	}
	entry, err := a.watchlists.AddMovie(r.Context(), caller(r), req.MovieID, req.WatchlistID)
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusCreated, entry)
	return nil
}

func (a *API) removeEntry(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	if err := a.watchlists.RemoveEntry(r.Context(), caller(r), id); err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, nil)
	return nil
}

func (a *API) moveEntry(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	var req rankRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		return err
	}
	entries, err := a.watchlists.MoveEntry(r.Context(), caller(r), id, req.Rank)
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, entries)
	return nil
}

func (a *API) markWatched(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	var req watchedRequest
	if err := readOptionalJSON(r, &req); err != nil {
		return err
	}
	entry, err := a.watchlists.MarkWatched(r.Context(), caller(r), id, req.DateWatched)
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, entry)
	return nil
}

func (a *API) unmarkWatched(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	entry, err := a.watchlists.UnmarkWatched(r.Context(), caller(r), id)
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, entry)
	return nil
}
