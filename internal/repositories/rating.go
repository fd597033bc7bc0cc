package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
)

const ratingSelect = `
	SELECT r.id, r.user_id, r.movie_id, r.rating, r.subject, r.comment, r.created_at, r.updated_at,
		u.name, u.image
	FROM ratings r
	JOIN users u ON u.id = r.user_id
`

var reviewOrder = map[models.ReviewSort]string{
	models.ReviewsRecent:  " ORDER BY r.created_at DESC, r.id DESC",
	models.ReviewsHighest: " ORDER BY r.rating DESC, r.created_at DESC, r.id DESC",
	models.ReviewsLowest:  " ORDER BY r.rating ASC, r.created_at DESC, r.id DESC",
}

// board describes one leaderboard query. Every board selects movieColumns followed by
// score, average and count, and counts its movies with total.
type board struct {
	from  string
	where string
	order string
	score string
	total string
	since bool
}

const (
	avgOf   = `(SELECT AVG(x.rating) FROM ratings x WHERE x.movie_id = m.id)`
	countOf = `(SELECT COUNT(*) FROM ratings x WHERE x.movie_id = m.id)`
)

var boards = map[models.LeaderboardKind]board{
	models.LeaderboardRecentlyAdded: {
		from:  "watchlist_entries e JOIN movies m ON m.id = e.movie_id",
		where: "e.date_added >= ?",
		score: "COUNT(*)",
		order: "MAX(e.date_added) DESC, m.id ASC",
		total: "SELECT COUNT(DISTINCT e.movie_id) FROM watchlist_entries e JOIN movies m ON m.id = e.movie_id WHERE m.visibility = 'public' AND e.date_added >= ?",
		since: true,
	},
	models.LeaderboardTopWatched: {
		from:  "watchlist_entries e JOIN movies m ON m.id = e.movie_id",
		where: "e.date_watched IS NOT NULL",
		score: "COUNT(*)",
		order: "COUNT(*) DESC, m.id ASC",
		total: "SELECT COUNT(DISTINCT e.movie_id) FROM watchlist_entries e JOIN movies m ON m.id = e.movie_id WHERE m.visibility = 'public' AND e.date_watched IS NOT NULL",
	},
	models.LeaderboardHighlyRated: {
		from:  "ratings r JOIN movies m ON m.id = r.movie_id",
		where: "1 = 1",
		score: "AVG(r.rating)",
		order: "AVG(r.rating) DESC, m.id ASC",
		total: "SELECT COUNT(DISTINCT r.movie_id) FROM ratings r JOIN movies m ON m.id = r.movie_id WHERE m.visibility = 'public'",
	},
	models.LeaderboardNewestHighRate: {
		from:  "movies m LEFT JOIN ratings r ON r.movie_id = m.id",
		where: "m.created_at >= ?",
		score: "COALESCE(AVG(r.rating), 0)",
		order: "COALESCE(AVG(r.rating), 0) DESC, m.created_at DESC, m.id ASC",
		total: "SELECT COUNT(*) FROM movies m WHERE m.visibility = 'public' AND m.created_at >= ?",
		since: true,
	},
}

// RatingRepository persists [models.RatingEntry] rows and answers the aggregate queries built on them.
type RatingRepository struct {
	db DBTX
}

// NewRatingRepository creates a new [RatingRepository] with the given database connection
func NewRatingRepository(db DBTX) *RatingRepository {
	return &RatingRepository{db: db}
}

// Upsert stores the user's rating of a movie, replacing any earlier one.
//
// A replaced rating takes the new creation time so it moves to the day it was resubmitted in charts.
func (r *RatingRepository) Upsert(ctx context.Context, entry *models.RatingEntry) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	now := shared.Now()

	query := `
		INSERT INTO ratings (user_id, movie_id, rating, subject, comment, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, movie_id) DO UPDATE SET
			rating = excluded.rating,
			subject = excluded.subject,
			comment = excluded.comment,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		entry.UserID, entry.MovieID, entry.Rating, entry.Subject, entry.Comment, now, now)
	if err != nil {
		return classify(fmt.Sprintf("rate movie %d", entry.MovieID), err)
	}

	stored, err := r.ForUser(ctx, entry.UserID, entry.MovieID)
	if err != nil {
		return err
	}
	*entry = *stored
	return nil
}

// ForUser returns the user's rating of a movie
func (r *RatingRepository) ForUser(ctx context.Context, userID, movieID int64) (*models.RatingEntry, error) {
	row := r.db.QueryRowContext(ctx, ratingSelect+" WHERE r.user_id = ? AND r.movie_id = ?", userID, movieID)
	entry, err := scanRating(row)
	if err != nil {
		return nil, classify(fmt.Sprintf("get rating of movie %d by user %d", movieID, userID), err)
	}
	return entry, nil
}

// List returns a movie's reviews in the requested order. A zero page limit returns every review.
func (r *RatingRepository) List(ctx context.Context, movieID int64, sort models.ReviewSort, page models.Page) ([]models.RatingEntry, error) {
	order, ok := reviewOrder[sort]
	if !ok {
		return nil, fmt.Errorf("%w: unknown review sort %q", shared.ErrInvalidInput, sort)
	}
	query := ratingSelect + " WHERE r.movie_id = ?" + order
	args := []any{movieID}
	if page.Limit > 0 {
		page = page.Normalize()
		query += " LIMIT ? OFFSET ?"
		args = append(args, page.Limit, page.Offset())
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("query reviews", err)
	}
	defer rows.Close()

	reviews := []models.RatingEntry{}
	for rows.Next() {
		entry, err := scanRating(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return reviews, nil
}

// Summary returns the mean and count of a movie's ratings. A movie with no ratings has a zero summary.
func (r *RatingRepository) Summary(ctx context.Context, movieID int64) (*models.RatingSummary, error) {
	var avg sql.NullFloat64
	summary := &models.RatingSummary{MovieID: movieID}
	err := r.db.QueryRowContext(ctx,
		`SELECT AVG(rating), COUNT(*) FROM ratings WHERE movie_id = ?`, movieID).Scan(&avg, &summary.Count)
	if err != nil {
		return nil, classify(fmt.Sprintf("summarize ratings of movie %d", movieID), err)
	}
	summary.Average = avg.Float64
	return summary, nil
}

// Points returns the ratings of a movie created at or after since, oldest first.
// Only Rating and CreatedAt are populated.
func (r *RatingRepository) Points(ctx context.Context, movieID int64, since time.Time) ([]models.RatingEntry, error) {
	query := `SELECT rating, created_at FROM ratings WHERE movie_id = ?`
	args := []any{movieID}
	if !since.IsZero() {
		query += " AND created_at >= ?"
		args = append(args, since.UTC())
	}
	query += " ORDER BY created_at ASC, id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("query rating points", err)
	}
	defer rows.Close()

	points := []models.RatingEntry{}
	for rows.Next() {
		p := models.RatingEntry{MovieID: movieID}
		if err := rows.Scan(&p.Rating, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan rating point: %w", err)
		}
		p.CreatedAt = p.CreatedAt.UTC()
		points = append(points, p)
	}
	return points, rows.Err()
}

// Leaderboard returns one page of a public leaderboard. since bounds the boards that look at a
// trailing window and is ignored by the others.
func (r *RatingRepository) Leaderboard(ctx context.Context, kind models.LeaderboardKind, since time.Time, page models.Page) (*models.Leaderboard, error) {
	b, ok := boards[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown leaderboard %q", shared.ErrInvalidInput, kind)
	}
	page = page.Normalize()

	var window []any
	if b.since {
		window = []any{since.UTC()}
	}

	result := &models.Leaderboard{Kind: kind, Rows: []models.LeaderboardRow{}, Page: page.Page, Limit: page.Limit}
	if err := r.db.QueryRowContext(ctx, b.total, window...).Scan(&result.Total); err != nil {
		return nil, classify("count "+string(kind), err)
	}

	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s
		FROM %s
		WHERE m.visibility = 'public' AND %s
		GROUP BY m.id
		ORDER BY %s
		LIMIT ? OFFSET ?`, movieColumns, b.score, avgOf, countOf, b.from, b.where, b.order)

	rows, err := r.db.QueryContext(ctx, query, append(window, page.Limit, page.Offset())...)
	if err != nil {
		return nil, classify("query "+string(kind), err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			row models.LeaderboardRow
			avg sql.NullFloat64
		)
		m := &row.Movie
		err := rows.Scan(&m.ID, &m.Title, &m.Description, &m.PosterURL, &m.BannerURL, &m.Visibility,
			&m.CreatedAt, &m.UpdatedAt, &row.Score, &avg, &row.Count)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		row.Average = nullFloat(avg)
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return result, nil
}

func scanRating(s scanner) (*models.RatingEntry, error) {
	var e models.RatingEntry
	err := s.Scan(&e.ID, &e.UserID, &e.MovieID, &e.Rating, &e.Subject, &e.Comment, &e.CreatedAt, &e.UpdatedAt,
		&e.UserName, &e.UserImage)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
