package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/marquee/internal/shared"
)

const (
	MinRating = 0
	MaxRating = 100
)

// RatingEntry is one user's rating and review of one movie. There is at most one per (user, movie).
type RatingEntry struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	MovieID   int64     `json:"movieId"`
	Rating    int       `json:"rating"`
	Subject   string    `json:"subject"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Reviewer fields joined from users.
	UserName  string `json:"userName,omitempty"`
	UserImage string `json:"userImage,omitempty"`
}

func (r *RatingEntry) Key() int64 { return r.ID }

func (r *RatingEntry) Validate() error {
	if r.UserID == 0 || r.MovieID == 0 {
		return fmt.Errorf("%w: user and movie are required", shared.ErrInvalidInput)
	}
	if r.Rating < MinRating || r.Rating > MaxRating {
		return fmt.Errorf("%w: rating must be between %d and %d", shared.ErrInvalidInput, MinRating, MaxRating)
	}
	return nil
}

// ReviewSort orders a movie's reviews.
type ReviewSort string

const (
	ReviewsRecent  ReviewSort = "recent"
	ReviewsHighest ReviewSort = "highest"
	ReviewsLowest  ReviewSort = "lowest"
)

// ParseReviewSort parses s, returning [ReviewsRecent] for the empty string.
func ParseReviewSort(s string) (ReviewSort, error) {
	switch v := ReviewSort(strings.ToLower(strings.TrimSpace(s))); v {
	case "":
		return ReviewsRecent, nil
	case ReviewsRecent, ReviewsHighest, ReviewsLowest:
		return v, nil
	default:
		return "", fmt.Errorf("%w: unknown review sort %q", shared.ErrInvalidInput, s)
	}
}

// Period is a trailing chart window in days. Zero means all time.
type Period int

// ParsePeriod accepts 7, 30, 90, 365 or "all".
func ParsePeriod(s string) (Period, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "all" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: unknown period %q", shared.ErrInvalidInput, s)
	}
	switch n {
	case 7, 30, 90, 365:
		return Period(n), nil
	default:
		return 0, fmt.Errorf("%w: period must be 7, 30, 90, 365 or all", shared.ErrInvalidInput)
	}
}

// Since returns the start of the window ending at now, or the zero time for all time.
func (p Period) Since(now time.Time) time.Time {
	if p == 0 {
		return time.Time{}
	}
	return now.AddDate(0, 0, -int(p))
}

// ChartBucket aggregates the ratings created on one UTC calendar day.
type ChartBucket struct {
	Date  string  `json:"date"`
	Avg   float64 `json:"avg"`
	Count int     `json:"count"`
}

// RatingSummary is the mean and count of a movie's ratings.
type RatingSummary struct {
	MovieID int64   `json:"movieId"`
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// LeaderboardKind selects a leaderboard query.
type LeaderboardKind string

const (
	LeaderboardRecentlyAdded  LeaderboardKind = "recently_added"
	LeaderboardTopWatched     LeaderboardKind = "top_watched"
	LeaderboardHighlyRated    LeaderboardKind = "highly_rated"
	LeaderboardNewestHighRate LeaderboardKind = "top_newest_highest_rated"
)

// ParseLeaderboardKind parses s. The empty string is rejected.
func ParseLeaderboardKind(s string) (LeaderboardKind, error) {
	switch k := LeaderboardKind(strings.ToLower(strings.TrimSpace(s))); k {
	case LeaderboardRecentlyAdded, LeaderboardTopWatched, LeaderboardHighlyRated, LeaderboardNewestHighRate:
		return k, nil
	default:
		return "", fmt.Errorf("%w: unknown leaderboard %q", shared.ErrInvalidInput, s)
	}
}

// LeaderboardRow is one movie on a leaderboard. Score is the count or average the board is ranked by.
type LeaderboardRow struct {
	Movie   Movie    `json:"movie"`
	Score   float64  `json:"score"`
	Average *float64 `json:"average"`
	Count   int      `json:"count"`
}

// Page is a limit/page pair. Page numbers start at 1.
type Page struct {
	Limit int
	Page  int
}

// Normalize clamps the limit to [1, 100] defaulting to 20 and the page to >= 1.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	if p.Page <= 0 {
		p.Page = 1
	}
	return p
}

// Offset returns the row offset for the page.
func (p Page) Offset() int {
	p = p.Normalize()
	return (p.Page - 1) * p.Limit
}

// Leaderboard is one page of a leaderboard. Total counts every movie on the board.
type Leaderboard struct {
	Kind  LeaderboardKind  `json:"type"`
	Rows  []LeaderboardRow `json:"movies"`
	Total int              `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}
