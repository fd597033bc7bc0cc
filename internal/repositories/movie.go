package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
)

var _ models.Repository[*models.Movie] = (*MovieRepository)(nil)

const movieColumns = `m.id, m.title, m.description, m.poster_url, m.banner_url, m.visibility, m.created_at, m.updated_at`

// CastLink credits a cast member on a movie.
type CastLink struct {
	CastID int64
	Role   string
}

// MovieRepository implements [models.Repository] for [models.Movie] and manages its tag relations.
type MovieRepository struct {
	db DBTX
}

// NewMovieRepository creates a new [MovieRepository] with the given database connection
func NewMovieRepository(db DBTX) *MovieRepository {
	return &MovieRepository{db: db}
}

// Create inserts a movie and assigns its ID
func (r *MovieRepository) Create(ctx context.Context, movie *models.Movie) error {
	movie.Title = strings.TrimSpace(movie.Title)
	if movie.Visibility == "" {
		movie.Visibility = models.VisibilityPublic
	}
	if err := movie.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := shared.Now()
	movie.CreatedAt, movie.UpdatedAt = now, now

	query := `
		INSERT INTO movies (title, description, poster_url, banner_url, visibility, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	res, err := r.db.ExecContext(ctx, query,
		movie.Title, movie.Description, movie.PosterURL, movie.BannerURL, movie.Visibility, now, now,
	)
	if err != nil {
		return classify("insert movie", err)
	}
	if movie.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("failed to read movie id: %w", err)
	}
	return nil
}

// Get retrieves a movie by ID regardless of visibility
func (r *MovieRepository) Get(ctx context.Context, id int64) (*models.Movie, error) {
	query := `SELECT ` + movieColumns + ` FROM movies m WHERE m.id = ?`
	movie, err := scanMovie(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, classify(fmt.Sprintf("get movie %d", id), err)
	}
	return movie, nil
}

// Update writes the scalar fields of an existing movie
func (r *MovieRepository) Update(ctx context.Context, movie *models.Movie) error {
	movie.Title = strings.TrimSpace(movie.Title)
	if err := movie.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	movie.UpdatedAt = shared.Now()

	query := `
		UPDATE movies
		SET title = ?, description = ?, poster_url = ?, banner_url = ?, visibility = ?, updated_at = ?
		WHERE id = ?
	`
	res, err := r.db.ExecContext(ctx, query,
		movie.Title, movie.Description, movie.PosterURL, movie.BannerURL, movie.Visibility, movie.UpdatedAt, movie.ID,
	)
	if err != nil {
		return classify("update movie", err)
	}
	return requireAffected(res, "movie", movie.ID)
}

// Delete removes a movie. Watchlist entries, ratings and relations cascade.
func (r *MovieRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM movies WHERE id = ?`, id)
	if err != nil {
		return classify("delete movie", err)
	}
	return requireAffected(res, "movie", id)
}

// List retrieves movies ordered by title.
//
// Supported criteria:
//   - "query" (string): case-insensitive substring of the title
//   - "visibility" ([]models.Visibility): allowed visibilities, all when absent
//   - "limit", "offset" (int)
func (r *MovieRepository) List(ctx context.Context, criteria map[string]any) ([]*models.Movie, error) {
	query := `SELECT ` + movieColumns + ` FROM movies m WHERE 1 = 1`
	args := []any{}

	if q, ok := criteria["query"].(string); ok && strings.TrimSpace(q) != "" {
		query += ` AND m.title LIKE ? ESCAPE '\'`
		args = append(args, "%"+escapeLike(strings.TrimSpace(q))+"%")
	}

	if vis, ok := criteria["visibility"].([]models.Visibility); ok && len(vis) > 0 {
		query += " AND m.visibility IN (?" + strings.Repeat(", ?", len(vis)-1) + ")"
		for _, v := range vis {
			args = append(args, v)
		}
	}

	query += " ORDER BY m.title COLLATE NOCASE ASC, m.id ASC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		offset, _ := criteria["offset"].(int)
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("query movies", err)
	}
	defer rows.Close()

	movies := []*models.Movie{}
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan movie: %w", err)
		}
		movies = append(movies, movie)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return movies, nil
}

// SetTags replaces the movie's relations of one kind with ids. Cast is handled by [MovieRepository.SetCast].
func (r *MovieRepository) SetTags(ctx context.Context, movieID int64, kind models.TagKind, ids []int64) error {
	if kind == models.TagCast {
		return fmt.Errorf("%w: cast relations carry roles, use SetCast", shared.ErrInvalidInput)
	}
	s := kind.Storage()

	if _, err := r.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE movie_id = ?", s.Junction), movieID); err != nil {
		return classify("clear "+string(kind), err)
	}

	link := fmt.Sprintf("INSERT INTO %s (movie_id, %s) VALUES (?, ?) ON CONFLICT DO NOTHING", s.Junction, s.Column)
	for _, id := range ids {
		if _, err := r.db.ExecContext(ctx, link, movieID, id); err != nil {
			return classify(fmt.Sprintf("link %s %d", kind, id), err)
		}
	}
	return nil
}

// SetCast replaces the movie's cast. A repeated cast id keeps the last role given.
func (r *MovieRepository) SetCast(ctx context.Context, movieID int64, links []CastLink) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM movie_cast WHERE movie_id = ?`, movieID); err != nil {
		return classify("clear cast", err)
	}

	query := `
		INSERT INTO movie_cast (movie_id, cast_id, role) VALUES (?, ?, ?)
		ON CONFLICT(movie_id, cast_id) DO UPDATE SET role = excluded.role
	`
	for _, l := range links {
		if _, err := r.db.ExecContext(ctx, query, movieID, l.CastID, strings.TrimSpace(l.Role)); err != nil {
			return classify(fmt.Sprintf("link cast %d", l.CastID), err)
		}
	}
	return nil
}

// Tags lists the movie's relations of one kind ordered by name
func (r *MovieRepository) Tags(ctx context.Context, movieID int64, kind models.TagKind) ([]models.Tag, error) {
	s := kind.Storage()
	image := "''"
	if s.ImageCol != "" {
		image = "t." + s.ImageCol
	}
	query := fmt.Sprintf(`
		SELECT t.id, t.name, %s, '' FROM %s t
		JOIN %s j ON j.%s = t.id
		WHERE j.movie_id = ?
		ORDER BY t.name ASC`, image, s.Table, s.Junction, s.Column)

	rows, err := r.db.QueryContext(ctx, query, movieID)
	if err != nil {
		return nil, classify("query movie "+string(kind), err)
	}
	defer rows.Close()

	tags := []models.Tag{}
	for rows.Next() {
		tag, err := scanTag(kind, rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", kind, err)
		}
		tags = append(tags, *tag)
	}
	return tags, rows.Err()
}

// Cast lists the movie's credited cast ordered by name
func (r *MovieRepository) Cast(ctx context.Context, movieID int64) ([]models.CastRole, error) {
	query := `
		SELECT c.id, c.name, c.profile_url, c.birthday, mc.role
		FROM casts c JOIN movie_cast mc ON mc.cast_id = c.id
		WHERE mc.movie_id = ?
		ORDER BY c.name ASC
	`
	rows, err := r.db.QueryContext(ctx, query, movieID)
	if err != nil {
		return nil, classify("query movie cast", err)
	}
	defer rows.Close()

	cast := []models.CastRole{}
	for rows.Next() {
		cr := models.CastRole{Cast: models.Tag{Kind: models.TagCast}}
		if err := rows.Scan(&cr.Cast.ID, &cr.Cast.Name, &cr.Cast.Image, &cr.Cast.Birthday, &cr.Role); err != nil {
			return nil, fmt.Errorf("failed to scan cast: %w", err)
		}
		cast = append(cast, cr)
	}
	return cast, rows.Err()
}

func scanMovie(s scanner) (*models.Movie, error) {
	var m models.Movie
	err := s.Scan(&m.ID, &m.Title, &m.Description, &m.PosterURL, &m.BannerURL, &m.Visibility, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
