package server

import (
	"net/http"

	"github.com/desertthunder/marquee/internal/auth"
)

func (s *Server) routes(guard *auth.Middleware) {
	r, a := s.router, s.api
	session, admin := Middleware(guard.RequireAuth), Middleware(guard.RequireAdmin)

	r.Handle(http.MethodGet, "/health", a.handle(a.health))

	r.Handle(http.MethodPost, "/auth/signup", a.handle(a.signup))
	r.Handle(http.MethodPost, "/auth/login", a.handle(a.login))
	r.Handle(http.MethodGet, "/account", a.handle(a.account), session)
	r.Handle(http.MethodPatch, "/account", a.handle(a.updateAccount), session)
	r.Handle(http.MethodPost, "/account/password", a.handle(a.changePassword), session)

	r.Handle(http.MethodGet, "/watchlists", a.handle(a.listWatchlists), session)
	r.Handle(http.MethodPost, "/watchlists", a.handle(a.createWatchlist), session)
	r.Handle(http.MethodGet, "/watchlists/{id}", a.handle(a.getWatchlist), session)
	r.Handle(http.MethodPatch, "/watchlists/{id}", a.handle(a.updateWatchlist), session)
	r.Handle(http.MethodDelete, "/watchlists/{id}", a.handle(a.deleteWatchlist), session)
	r.Handle(http.MethodGet, "/watchlists/{id}/entries", a.handle(a.listEntries), session)
	r.Handle(http.MethodPut, "/watchlists/{id}/order", a.handle(a.setOrder), session)
	r.Handle(http.MethodGet, "/watchlists/{id}/export", a.handle(a.exportWatchlist), session)

	r.Handle(http.MethodPost, "/watchlist-entries", a.handle(a.addEntry), session)
	r.Handle(http.MethodDelete, "/watchlist-entries/{id}", a.handle(a.removeEntry), session)
	r.Handle(http.MethodPut, "/watchlist-entries/{id}/rank", a.handle(a.moveEntry), session)
	r.Handle(http.MethodPost, "/watchlist-entries/{id}/watched", a.handle(a.markWatched), session)
	r.Handle(http.MethodDelete, "/watchlist-entries/{id}/watched", a.handle(a.unmarkWatched), session)

	r.Handle(http.MethodGet, "/movies/search", a.handle(a.searchMovies))
	r.Handle(http.MethodGet, "/movies/leaderboard", a.handle(a.leaderboard))
	r.Handle(http.MethodPost, "/movies", a.handle(a.createMovie), admin)
	r.Handle(http.MethodGet, "/movies/{id}", a.handle(a.getMovie))
	r.Handle(http.MethodPut, "/movies/{id}", a.handle(a.updateMovie), admin)
	r.Handle(http.MethodDelete, "/movies/{id}", a.handle(a.deleteMovie), admin)
	r.Handle(http.MethodGet, "/movies/{id}/reviews", a.handle(a.reviews))
	r.Handle(http.MethodPost, "/movies/{id}/reviews", a.handle(a.submitReview), session)

	r.Handle(http.MethodGet, "/tags/{kind}", a.handle(a.listTags))
	r.Handle(http.MethodPost, "/tags/{kind}", a.handle(a.createTag), admin)

	r.mux.HandleFunc("/", notFound)
}
