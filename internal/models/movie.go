package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/marquee/internal/shared"
)

// Visibility controls who can see a movie.
//
// Public movies are listed and searchable. Unlisted movies are reachable by id only.
// Private movies are visible to admins only.
type Visibility string

const (
	VisibilityPublic   Visibility = "public"
	VisibilityPrivate  Visibility = "private"
	VisibilityUnlisted Visibility = "unlisted"
)

// ParseVisibility parses s, returning [VisibilityPublic] for the empty string.
func ParseVisibility(s string) (Visibility, error) {
	switch v := Visibility(strings.ToLower(strings.TrimSpace(s))); v {
	case "":
		return VisibilityPublic, nil
	case VisibilityPublic, VisibilityPrivate, VisibilityUnlisted:
		return v, nil
	default:
		return "", fmt.Errorf("%w: unknown visibility %q", shared.ErrInvalidInput, s)
	}
}

// Movie is a catalog entry.
type Movie struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	PosterURL   string     `json:"posterUrl,omitempty"`
	BannerURL   string     `json:"bannerUrl,omitempty"`
	Visibility  Visibility `json:"visibility"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (m *Movie) Key() int64 { return m.ID }

func (m *Movie) Validate() error {
	if strings.TrimSpace(m.Title) == "" {
		return fmt.Errorf("%w: title is required", shared.ErrInvalidInput)
	}
	if _, err := ParseVisibility(string(m.Visibility)); err != nil {
		return err
	}
	return nil
}

// CastRole is a cast member credited on a movie.
type CastRole struct {
	Cast Tag    `json:"cast"`
	Role string `json:"role"`
}

// MovieDetail is a movie with all of its relations loaded.
type MovieDetail struct {
	Movie
	Genres     []Tag      `json:"genres"`
	Studios    []Tag      `json:"studios"`
	Publishers []Tag      `json:"publishers"`
	Platforms  []Tag      `json:"platforms"`
	Cast       []CastRole `json:"cast"`
}
