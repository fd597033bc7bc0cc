package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/marquee/internal/models"
)

// TagRepository persists the tag-like catalog entities. Table names come from [models.TagKind.Storage],
// never from user input.
type TagRepository struct {
	db DBTX
}

// NewTagRepository creates a new [TagRepository] with the given database connection
func NewTagRepository(db DBTX) *TagRepository {
	return &TagRepository{db: db}
}

func tagSelect(kind models.TagKind) string {
	s := kind.Storage()
	image := "''"
	if s.ImageCol != "" {
		image = s.ImageCol
	}
	birthday := "''"
	if s.HasExtras {
		birthday = "birthday"
	}
	return fmt.Sprintf("SELECT id, name, %s, %s FROM %s", image, birthday, s.Table)
}

// Create inserts a tag. A duplicate name is reported as [shared.ErrConflict].
func (r *TagRepository) Create(ctx context.Context, tag *models.Tag) error {
	tag.Name = strings.TrimSpace(tag.Name)
	if err := tag.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	s := tag.Kind.Storage()
	cols, args := []string{"name"}, []any{tag.Name}
	if s.ImageCol != "" {
		cols, args = append(cols, s.ImageCol), append(args, tag.Image)
	}
	if s.HasExtras {
		cols, args = append(cols, "birthday"), append(args, tag.Birthday)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (?%s)",
		s.Table, strings.Join(cols, ", "), strings.Repeat(", ?", len(cols)-1))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return classify("insert "+string(tag.Kind), err)
	}
	if tag.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("failed to read tag id: %w", err)
	}
	return nil
}

// Get retrieves a tag by kind and id
func (r *TagRepository) Get(ctx context.Context, kind models.TagKind, id int64) (*models.Tag, error) {
	tag, err := scanTag(kind, r.db.QueryRowContext(ctx, tagSelect(kind)+" WHERE id = ?", id))
	if err != nil {
		return nil, classify(fmt.Sprintf("get %s %d", kind, id), err)
	}
	return tag, nil
}

// GetByName retrieves a tag by its exact name
func (r *TagRepository) GetByName(ctx context.Context, kind models.TagKind, name string) (*models.Tag, error) {
	tag, err := scanTag(kind, r.db.QueryRowContext(ctx, tagSelect(kind)+" WHERE name = ?", strings.TrimSpace(name)))
	if err != nil {
		return nil, classify(fmt.Sprintf("get %s %q", kind, name), err)
	}
	return tag, nil
}

// Ensure returns the tag with the given name, inserting it first when missing.
//
// Concurrent callers racing on the same name both end up with the single stored row.
func (r *TagRepository) Ensure(ctx context.Context, kind models.TagKind, name string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	probe := &models.Tag{Kind: kind, Name: name}
	if err := probe.Validate(); err != nil {
		return nil, err
	}

	query := fmt.Sprintf("INSERT INTO %s (name) VALUES (?) ON CONFLICT(name) DO NOTHING", kind.Storage().Table)
	if _, err := r.db.ExecContext(ctx, query, name); err != nil {
		return nil, classify("ensure "+string(kind), err)
	}
	return r.GetByName(ctx, kind, name)
}

// List returns every tag of a kind ordered by name
func (r *TagRepository) List(ctx context.Context, kind models.TagKind) ([]models.Tag, error) {
	rows, err := r.db.QueryContext(ctx, tagSelect(kind)+" ORDER BY name ASC, id ASC")
	if err != nil {
		return nil, classify("query "+string(kind), err)
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return tags, nil
}

func scanTag(kind models.TagKind, s scanner) (*models.Tag, error) {
	tag := models.Tag{Kind: kind}
	if err := s.Scan(&tag.ID, &tag.Name, &tag.Image, &tag.Birthday); err != nil {
		return nil, err
	}
	return &tag, nil
}
