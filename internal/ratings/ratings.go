// package ratings records user reviews and derives the aggregates built on them: per-movie summaries,
// daily charts and the public leaderboards.
package ratings

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/marquee/internal/auth"
	"github.com/desertthunder/marquee/internal/cache"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/repositories"
	"github.com/desertthunder/marquee/internal/shared"
)

// LeaderboardWindow bounds the leaderboards that look at recent activity.
const LeaderboardWindow = 30 * 24 * time.Hour

// Review is the caller-supplied part of a rating.
type Review struct {
	Rating  *int   `json:"rating"`
	Subject string `json:"subject"`
	Comment string `json:"comment"`
}

// Service implements the rating operations.
type Service struct {
	db     *sql.DB
	cache  cache.Store
	ttl    time.Duration
	logger *log.Logger
	now    func() time.Time
}

// NewService creates a ratings [Service]. Aggregates are cached in store for ttl; store may be nil.
func NewService(db *sql.DB, store cache.Store, ttl time.Duration, logger *log.Logger) *Service {
	if store == nil {
		store = cache.Nop{}
	}
	return &Service{
		db:     db,
		cache:  store,
		ttl:    ttl,
		logger: shared.WithLogger(logger, "component", "ratings"),
		now:    shared.Now,
	}
}

// SubmitReview stores the caller's review of a movie. A second submission replaces the first and
// counts as created now.
func (s *Service) SubmitReview(ctx context.Context, caller auth.Caller, movieID int64, r Review) (*models.RatingEntry, error) {
	if err := caller.RequireUser(); err != nil {
		return nil, err
	}
	if r.Rating == nil {
		return nil, fmt.Errorf("%w: rating is required", shared.ErrInvalidInput)
	}
	if _, err := s.movie(ctx, caller, movieID); err != nil {
		return nil, err
	}

	entry := &models.RatingEntry{
		UserID:  caller.UserID,
		MovieID: movieID,
		Rating:  *r.Rating,
		Subject: strings.TrimSpace(r.Subject),
		Comment: strings.TrimSpace(r.Comment),
	}
	if err := repositories.NewRatingRepository(s.db).Upsert(ctx, entry); err != nil {
		return nil, err
	}

	s.invalidate(ctx, movieID)
	s.logger.Info("review submitted", "movie_id", movieID, "user_id", caller.UserID, "rating", entry.Rating)
	return entry, nil
}

// ListReviews returns a movie's reviews with reviewer names. A zero page returns all of them.
func (s *Service) ListReviews(ctx context.Context, caller auth.Caller, movieID int64, sort models.ReviewSort, page models.Page) ([]models.RatingEntry, error) {
	if _, err := s.movie(ctx, caller, movieID); err != nil {
		return nil, err
	}
	return repositories.NewRatingRepository(s.db).List(ctx, movieID, sort, page)
}

// MyReview returns the caller's review of a movie, or nil when they have not reviewed it.
func (s *Service) MyReview(ctx context.Context, caller auth.Caller, movieID int64) (*models.RatingEntry, error) {
	if err := caller.RequireUser(); err != nil {
		return nil, err
	}
	if _, err := s.movie(ctx, caller, movieID); err != nil {
		return nil, err
	}

	entry, err := repositories.NewRatingRepository(s.db).ForUser(ctx, caller.UserID, movieID)
	if isNotFound(err) {
		return nil, nil
	}
	return entry, err
}

// Summary returns the average and count of a movie's ratings.
func (s *Service) Summary(ctx context.Context, caller auth.Caller, movieID int64) (*models.RatingSummary, error) {
	if _, err := s.movie(ctx, caller, movieID); err != nil {
		return nil, err
	}

	key := cache.SummaryKey(movieID)
	if cached, ok, err := cache.GetJSON[models.RatingSummary](ctx, s.cache, key); err != nil {
		s.logger.Warn("cache read failed", "key", key, "error", err)
	} else if ok {
		return cached, nil
	}

	summary, err := repositories.NewRatingRepository(s.db).Summary(ctx, movieID)
	if err != nil {
		return nil, err
	}
	if err := cache.SetJSON(ctx, s.cache, key, summary, s.ttl); err != nil {
		s.logger.Warn("cache write failed", "key", key, "error", err)
	}
	return summary, nil
}

// Chart buckets a movie's ratings by UTC calendar day over the trailing period, oldest day first.
// Days without ratings are omitted.
func (s *Service) Chart(ctx context.Context, caller auth.Caller, movieID int64, period models.Period) ([]models.ChartBucket, error) {
	if _, err := s.movie(ctx, caller, movieID); err != nil {
		return nil, err
	}

	points, err := repositories.NewRatingRepository(s.db).Points(ctx, movieID, period.Since(s.now()))
	if err != nil {
		return nil, err
	}
	return bucket(points), nil
}

// Leaderboard returns one page of a public leaderboard. Pages are cached until the next review
// or for the cache TTL, whichever comes first.
func (s *Service) Leaderboard(ctx context.Context, kind models.LeaderboardKind, page models.Page) (*models.Leaderboard, error) {
	page = page.Normalize()

	gen, err := cache.Counter(ctx, s.cache, cache.LeaderboardGeneration)
	if err != nil {
		s.logger.Warn("cache read failed", "key", cache.LeaderboardGeneration, "error", err)
	}
	key := cache.LeaderboardKey(gen, string(kind), page.Limit, page.Page)
	if cached, ok, err := cache.GetJSON[models.Leaderboard](ctx, s.cache, key); err == nil && ok {
		return cached, nil
	}

	board, err := repositories.NewRatingRepository(s.db).Leaderboard(ctx, kind, s.now().Add(-LeaderboardWindow), page)
	if err != nil {
		return nil, err
	}
	if err := cache.SetJSON(ctx, s.cache, key, board, s.ttl); err != nil {
		s.logger.Warn("cache write failed", "key", key, "error", err)
	}
	return board, nil
}

// movie loads a movie the caller may see. Private movies are reported missing to non-admins.
func (s *Service) movie(ctx context.Context, caller auth.Caller, id int64) (*models.Movie, error) {
	m, err := repositories.NewMovieRepository(s.db).Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.Visibility == models.VisibilityPrivate && !caller.Admin {
		return nil, fmt.Errorf("movie %d: %w", id, shared.ErrNotFound)
	}
	return m, nil
}

func (s *Service) invalidate(ctx context.Context, movieID int64) {
	if err := s.cache.Delete(ctx, cache.SummaryKey(movieID)); err != nil {
		s.logger.Warn("failed to drop cached summary", "movie_id", movieID, "error", err)
	}
	if _, err := s.cache.Incr(ctx, cache.LeaderboardGeneration); err != nil {
		s.logger.Warn("failed to bump leaderboard generation", "error", err)
	}
}
