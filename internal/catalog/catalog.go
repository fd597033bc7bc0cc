// package catalog manages movies and the tag-like entities linked to them
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/marquee/internal/auth"
	"github.com/desertthunder/marquee/internal/cache"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/repositories"
	"github.com/desertthunder/marquee/internal/shared"
)

// CastInput credits a cast member, referenced by id or name, in a role.
type CastInput struct {
	Cast models.TagRef `json:"cast"`
	Role string        `json:"role"`
}

// MovieInput is the full editable state of a movie. Relations replace the existing ones.
type MovieInput struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	PosterURL   string          `json:"posterUrl"`
	BannerURL   string          `json:"bannerUrl"`
	Visibility  string          `json:"visibility"`
	Genres      []models.TagRef `json:"genres"`
	Studios     []models.TagRef `json:"studios"`
	Publishers  []models.TagRef `json:"publishers"`
	Platforms   []models.TagRef `json:"platforms"`
	Cast        []CastInput     `json:"cast"`
}

func (in MovieInput) relations() map[models.TagKind][]models.TagRef {
	return map[models.TagKind][]models.TagRef{
		models.TagGenre:     in.Genres,
		models.TagStudio:    in.Studios,
		models.TagPublisher: in.Publishers,
		models.TagPlatform:  in.Platforms,
	}
}

// SearchQuery filters [Service.SearchMovies].
type SearchQuery struct {
	Query      string
	Visibility string
	Page       models.Page
}

// SearchResult is one page of search hits.
type SearchResult struct {
	Movies []*models.Movie `json:"movies"`
	Page   int             `json:"page"`
	Limit  int             `json:"limit"`
}

// Service implements the catalog operations. Writes run in a single transaction so a failed movie
// write never leaves newly created tags behind.
type Service struct {
	db     *sql.DB
	cache  cache.Store
	logger *log.Logger
}

// NewService creates a catalog [Service]. store may be nil.
func NewService(db *sql.DB, store cache.Store, logger *log.Logger) *Service {
	if store == nil {
		store = cache.Nop{}
	}
	return &Service{db: db, cache: store, logger: shared.WithLogger(logger, "component", "catalog")}
}

// ResolveByID returns the tag of kind with id.
func (s *Service) ResolveByID(ctx context.Context, kind models.TagKind, id int64) (*models.Tag, error) {
	return repositories.NewTagRepository(s.db).Get(ctx, kind, id)
}

// ResolveOrCreateByName returns the tag of kind named name, creating it when missing.
func (s *Service) ResolveOrCreateByName(ctx context.Context, kind models.TagKind, name string) (*models.Tag, error) {
	return repositories.NewTagRepository(s.db).Ensure(ctx, kind, name)
}

// Resolve resolves ref by id when one is given and by name otherwise.
func (s *Service) Resolve(ctx context.Context, kind models.TagKind, ref models.TagRef) (*models.Tag, error) {
	return resolve(ctx, repositories.NewTagRepository(s.db), kind, ref)
}

func resolve(ctx context.Context, tags *repositories.TagRepository, kind models.TagKind, ref models.TagRef) (*models.Tag, error) {
	if ref.ID != nil {
		return tags.Get(ctx, kind, *ref.ID)
	}
	if strings.TrimSpace(ref.Name) == "" {
		return nil, fmt.Errorf("%w: %s reference needs an id or a name", shared.ErrInvalidInput, kind)
	}
	return tags.Ensure(ctx, kind, ref.Name)
}

// CreateMovie adds a movie with its relations. Admin only.
func (s *Service) CreateMovie(ctx context.Context, caller auth.Caller, in MovieInput) (*models.MovieDetail, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}
	movie, err := in.movie()
	if err != nil {
		return nil, err
	}

	err = repositories.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := repositories.NewMovieRepository(tx).Create(ctx, movie); err != nil {
			return err
		}
		return s.link(ctx, tx, movie.ID, in)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, 0)
	s.logger.Info("movie created", "movie_id", movie.ID, "title", movie.Title)
	return s.detail(ctx, movie)
}

// UpdateMovie replaces a movie's fields and relations. Admin only.
func (s *Service) UpdateMovie(ctx context.Context, caller auth.Caller, id int64, in MovieInput) (*models.MovieDetail, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}
	movie, err := in.movie()
	if err != nil {
		return nil, err
	}
	movie.ID = id

	err = repositories.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		movies := repositories.NewMovieRepository(tx)
		existing, err := movies.Get(ctx, id)
		if err != nil {
			return err
		}
		movie.CreatedAt = existing.CreatedAt

		if err := movies.Update(ctx, movie); err != nil {
			return err
		}
		return s.link(ctx, tx, id, in)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, 0)
	s.logger.Info("movie updated", "movie_id", id)
	return s.detail(ctx, movie)
}

// DeleteMovie removes a movie. Watchlist entries and ratings go with it. Admin only.
func (s *Service) DeleteMovie(ctx context.Context, caller auth.Caller, id int64) error {
	if err := caller.RequireAdmin(); err != nil {
		return err
	}
	if err := repositories.NewMovieRepository(s.db).Delete(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx, id)
	s.logger.Info("movie deleted", "movie_id", id)
	return nil
}

// invalidate retires cached leaderboards and, for a deleted movie, its rating summary.
// Cache failures are logged and never fail the write.
func (s *Service) invalidate(ctx context.Context, deletedID int64) {
	if deletedID != 0 {
		if err := s.cache.Delete(ctx, cache.SummaryKey(deletedID)); err != nil {
			s.logger.Warn("failed to drop cached summary", "movie_id", deletedID, "error", err)
		}
	}
	if _, err := s.cache.Incr(ctx, cache.LeaderboardGeneration); err != nil {
		s.logger.Warn("failed to bump leaderboard generation", "error", err)
	}
}

// GetMovie returns a movie with its relations. Private movies are hidden from everyone but admins.
func (s *Service) GetMovie(ctx context.Context, caller auth.Caller, id int64) (*models.MovieDetail, error) {
	movie, err := repositories.NewMovieRepository(s.db).Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if movie.Visibility == models.VisibilityPrivate && !caller.Admin {
		return nil, fmt.Errorf("movie %d: %w", id, shared.ErrNotFound)
	}
	return s.detail(ctx, movie)
}

// SearchMovies finds movies whose title contains the query. Non-admins only see public movies;
// admins may ask for one visibility or all of them.
func (s *Service) SearchMovies(ctx context.Context, caller auth.Caller, q SearchQuery) (*SearchResult, error) {
	page := q.Page.Normalize()
	criteria := map[string]any{
		"query":  q.Query,
		"limit":  page.Limit,
		"offset": page.Offset(),
	}

	switch {
	case !caller.Admin:
		criteria["visibility"] = []models.Visibility{models.VisibilityPublic}
	case q.Visibility != "":
		v, err := models.ParseVisibility(q.Visibility)
		if err != nil {
			return nil, err
		}
		criteria["visibility"] = []models.Visibility{v}
	}

	movies, err := repositories.NewMovieRepository(s.db).List(ctx, criteria)
	if err != nil {
		return nil, err
	}
	return &SearchResult{Movies: movies, Page: page.Page, Limit: page.Limit}, nil
}

// ListTags returns every tag of kind ordered by name.
func (s *Service) ListTags(ctx context.Context, kind models.TagKind) ([]models.Tag, error) {
	return repositories.NewTagRepository(s.db).List(ctx, kind)
}

// CreateTag adds a tag. Admin only. A duplicate name is a conflict.
func (s *Service) CreateTag(ctx context.Context, caller auth.Caller, tag *models.Tag) error {
	if err := caller.RequireAdmin(); err != nil {
		return err
	}
	if err := repositories.NewTagRepository(s.db).Create(ctx, tag); err != nil {
		if errors.Is(err, shared.ErrConflict) {
			return fmt.Errorf("%w: %s %q already exists", shared.ErrConflict, tag.Kind, tag.Name)
		}
		return err
	}
	s.logger.Info("tag created", "kind", tag.Kind, "tag_id", tag.ID)
	return nil
}

func (in MovieInput) movie() (*models.Movie, error) {
	vis, err := models.ParseVisibility(in.Visibility)
	if err != nil {
		return nil, err
	}
	m := &models.Movie{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		PosterURL:   strings.TrimSpace(in.PosterURL),
		BannerURL:   strings.TrimSpace(in.BannerURL),
		Visibility:  vis,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// link resolves every relation of in on tx and replaces the movie's relations with them.
func (s *Service) link(ctx context.Context, tx *sql.Tx, movieID int64, in MovieInput) error {
	tags := repositories.NewTagRepository(tx)
	movies := repositories.NewMovieRepository(tx)

	for _, kind := range models.TagKinds {
		if kind == models.TagCast {
			continue
		}
		refs := in.relations()[kind]
		ids := make([]int64, 0, len(refs))
		for _, ref := range refs {
			tag, err := resolve(ctx, tags, kind, ref)
			if err != nil {
				return err
			}
			ids = append(ids, tag.ID)
		}
		if err := movies.SetTags(ctx, movieID, kind, ids); err != nil {
			return err
		}
	}

	links := make([]repositories.CastLink, 0, len(in.Cast))
	for _, c := range in.Cast {
		tag, err := resolve(ctx, tags, models.TagCast, c.Cast)
		if err != nil {
			return err
		}
		links = append(links, repositories.CastLink{CastID: tag.ID, Role: c.Role})
	}
	return movies.SetCast(ctx, movieID, links)
}

func (s *Service) detail(ctx context.Context, movie *models.Movie) (*models.MovieDetail, error) {
	movies := repositories.NewMovieRepository(s.db)
	d := &models.MovieDetail{Movie: *movie}

	targets := map[models.TagKind]*[]models.Tag{
		models.TagGenre:     &d.Genres,
		models.TagStudio:    &d.Studios,
		models.TagPublisher: &d.Publishers,
		models.TagPlatform:  &d.Platforms,
	}
	for kind, dst := range targets {
		tags, err := movies.Tags(ctx, movie.ID, kind)
		if err != nil {
			return nil, err
		}
		*dst = tags
	}

	cast, err := movies.Cast(ctx, movie.ID)
	if err != nil {
		return nil, err
	}
	d.Cast = cast
	return d, nil
}
