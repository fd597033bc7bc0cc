package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/desertthunder/marquee/internal/shared"
)

// TagKind names one of the tag-like catalog entities.
type TagKind string

const (
	TagGenre     TagKind = "genres"
	TagCast      TagKind = "cast"
	TagStudio    TagKind = "studios"
	TagPublisher TagKind = "publishers"
	TagPlatform  TagKind = "platforms"
)

// TagKinds lists every kind in display order.
var TagKinds = []TagKind{TagGenre, TagCast, TagStudio, TagPublisher, TagPlatform}

// TagTable describes where a [TagKind] is stored. Only these fixed identifiers are ever interpolated into SQL.
type TagTable struct {
	Table     string // entity table
	Junction  string // movie junction table
	Column    string // foreign key column in Junction
	ImageCol  string // image column, empty when the kind has none
	HasExtras bool   // casts carry birthday and a role on the junction
}

var tagTables = map[TagKind]TagTable{
	TagGenre:     {Table: "genres", Junction: "movie_genres", Column: "genre_id"},
	TagCast:      {Table: "casts", Junction: "movie_cast", Column: "cast_id", ImageCol: "profile_url", HasExtras: true},
	TagStudio:    {Table: "studios", Junction: "movie_studios", Column: "studio_id", ImageCol: "picture_url"},
	TagPublisher: {Table: "publishers", Junction: "movie_publishers", Column: "publisher_id", ImageCol: "picture_url"},
	TagPlatform:  {Table: "platforms", Junction: "movie_platforms", Column: "platform_id", ImageCol: "image"},
}

// ParseTagKind accepts the plural route names plus a few singular aliases.
func ParseTagKind(s string) (TagKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "genres", "genre":
		return TagGenre, nil
	case "cast", "casts":
		return TagCast, nil
	case "studios", "studio":
		return TagStudio, nil
	case "publishers", "publisher":
		return TagPublisher, nil
	case "platforms", "platform":
		return TagPlatform, nil
	default:
		return "", fmt.Errorf("%w: unknown tag kind %q", shared.ErrInvalidInput, s)
	}
}

// Storage returns the table layout for k. It panics on an unknown kind.
func (k TagKind) Storage() TagTable {
	t, ok := tagTables[k]
	if !ok {
		panic(fmt.Sprintf("unknown tag kind %q", k))
	}
	return t
}

// Tag is a named catalog entity. Image holds the profile, picture or logo URL depending on the kind.
type Tag struct {
	ID       int64   `json:"id"`
	Kind     TagKind `json:"kind"`
	Name     string  `json:"name"`
	Image    string  `json:"image,omitempty"`
	Birthday string  `json:"birthday,omitempty"`
}

var birthdayPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func (t *Tag) Key() int64 { return t.ID }

func (t *Tag) Validate() error {
	if _, ok := tagTables[t.Kind]; !ok {
		return fmt.Errorf("%w: unknown tag kind %q", shared.ErrInvalidInput, t.Kind)
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: name is required", shared.ErrInvalidInput)
	}
	if t.Birthday != "" {
		if t.Kind != TagCast {
			return fmt.Errorf("%w: only cast members have a birthday", shared.ErrInvalidInput)
		}
		if !birthdayPattern.MatchString(t.Birthday) {
			return fmt.Errorf("%w: birthday must be YYYY-MM-DD", shared.ErrInvalidInput)
		}
		if _, err := time.Parse(time.DateOnly, t.Birthday); err != nil {
			return fmt.Errorf("%w: birthday %q is not a calendar date", shared.ErrInvalidInput, t.Birthday)
		}
	}
	return nil
}

// TagRef references a tag either by id or by name. When ID is set the name is ignored.
type TagRef struct {
	ID   *int64 `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}
