package server

import (
	"net/http"

	"github.com/desertthunder/marquee/internal/catalog"
	"github.com/desertthunder/marquee/internal/httputil"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/ratings"
)

type tagRequest struct {
	Name     string `json:"name"`
	Image    string `json:"image"`
	Birthday string `json:"birthday"`
}

func (a *API) searchMovies(w http.ResponseWriter, r *http.Request) error {
	page, err := queryPage(r)
	if err != nil {
		return err
	}
	q := r.URL.Query()
	result, err := a.catalog.SearchMovies(r.Context(), caller(r), catalog.SearchQuery{
		Query:      q.Get("query"),
		Visibility: q.Get("visibility"),
		Page:       page,
	})
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, result)
	return nil
}

func (a *API) leaderboard(w http.ResponseWriter, r *http.Request) error {
	kind, err := models.ParseLeaderboardKind(r.URL.Query().Get("type"))
	if err != nil {
		return err
	}
	page, err := queryPage(r)
	if err != nil {
		return err
	}
	board, err := a.ratings.Leaderboard(r.Context(), kind, page)
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, board)
	return nil
}

func (a *API) createMovie(w http.ResponseWriter, r *http.Request) error {
	var in catalog.MovieInput
	if err := httputil.ReadJSON(r, &in); err != nil {
		return err
	}
	movie, err := a.catalog.CreateMovie(r.Context(), caller(r), in)
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusCreated, movie)
	return nil
}

func (a *API) getMovie(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	movie, err := a.catalog.GetMovie(r.Context(), caller(r), id)
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, movie)
	return nil
}

func (a *API) updateMovie(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	var in catalog.MovieInput
	if err := httputil.ReadJSON(r, &in); err != nil {
		return err
	}
	movie, err := a.catalog.UpdateMovie(r.Context(), caller(r), id, in)
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, movie)
	return nil
}

func (a *API) deleteMovie(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	if err := a.catalog.DeleteMovie(r.Context(), caller(r), id); err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, nil)
	return nil
}

// reviews answers three queries on one route: ?user=me returns the caller's review, ?period= returns
// the daily chart and anything else returns the sorted reviews with the rating summary.
func (a *API) reviews(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	q := r.URL.Query()
	c := caller(r)

	switch {
	case q.Get("user") == "me":
		if err := c.RequireUser(); err != nil {
			return err
		}
		review, err := a.ratings.MyReview(r.Context(), c, id)
		if err != nil {
			return err
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"review": review})

	case q.Get("period") != "":
		period, err := models.ParsePeriod(q.Get("period"))
		if err != nil {
			return err
		}
		chart, err := a.ratings.Chart(r.Context(), c, id, period)
		if err != nil {
			return err
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"chart": chart})

	default:
		sort, err := models.ParseReviewSort(q.Get("sort"))
		if err != nil {
			return err
		}
		// every review unless the client pages
		var page models.Page
		if q.Has("limit") || q.Has("page") {
			if page, err = queryPage(r); err != nil {
				return err
			}
		}
		reviews, err := a.ratings.ListReviews(r.Context(), c, id, sort, page)
		if err != nil {
			return err
		}
		summary, err := a.ratings.Summary(r.Context(), c, id)
		if err != nil {
			return err
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"reviews": reviews, "summary": summary})
	}
	return nil
}

func (a *API) submitReview(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	var review ratings.Review
	if err := httputil.ReadJSON(r, &review); err != nil {
		return err
	}
	entry, err := a.ratings.SubmitReview(r.Context(), caller(r), id, review)
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusCreated, entry)
	return nil
}

func (a *API) listTags(w http.ResponseWriter, r *http.Request) error {
	kind, err := models.ParseTagKind(r.PathValue("kind"))
	if err != nil {
		return err
	}
	tags, err := a.catalog.ListTags(r.Context(), kind)
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, tags)
	return nil
}

func (a *API) createTag(w http.ResponseWriter, r *http.Request) error {
	kind, err := models.ParseTagKind(r.PathValue("kind"))
	if err != nil {
		return err
	}
	var req tagRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		return err
	}
	tag := &models.Tag{Kind: kind, Name: req.Name, Image: req.Image, Birthday: req.Birthday}
	if err := a.catalog.CreateTag(r.Context(), caller(r), tag); err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusCreated, tag)
	return nil
}
