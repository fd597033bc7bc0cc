package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/marquee/internal/auth"
	"github.com/desertthunder/marquee/internal/catalog"
	"github.com/desertthunder/marquee/internal/httputil"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/ratings"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/desertthunder/marquee/internal/watchlist"
)

// API holds the services behind the JSON handlers.
type API struct {
	db         *sql.DB
	accounts   *auth.Accounts
	catalog    *catalog.Service
	watchlists *watchlist.Engine
	ratings    *ratings.Service
	logger     *log.Logger
}

// apiFunc is a handler that reports failures by returning them.
type apiFunc func(w http.ResponseWriter, r *http.Request) error

// handle adapts fn to [http.Handler], writing returned errors as error envelopes.
func (a *API) handle(fn apiFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			httputil.WriteErr(w, a.logger.With("request_id", RequestIDFrom(r.Context())), err)
		}
	})
}

func (a *API) health(w http.ResponseWriter, r *http.Request) error {
	if err := shared.Ping(r.Context(), a.db); err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"database": "ok"})
	return nil
}

func notFound(w http.ResponseWriter, r *http.Request) {
	httputil.WriteError(w, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("no route for %s %s", r.Method, r.URL.Path))
}

func caller(r *http.Request) auth.Caller {
	return auth.CallerFrom(r.Context())
}

// pathID parses the positive integer path value name.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", shared.ErrInvalidInput, name)
	}
	return id, nil
}

// queryInt parses an optional integer query parameter. A missing value is zero.
func queryInt(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", shared.ErrInvalidInput, name)
	}
	return n, nil
}

func queryPage(r *http.Request) (models.Page, error) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		return models.Page{}, err
	}
	page, err := queryInt(r, "page")
	if err != nil {
		return models.Page{}, err
	}
	return models.Page{Limit: limit, Page: page}.Normalize(), nil
}

// readOptionalJSON decodes the body into dst when one was sent.
func readOptionalJSON(r *http.Request, dst any) error {
	if r.ContentLength == 0 {
		return nil
	}
	return httputil.ReadJSON(r, dst)
}
