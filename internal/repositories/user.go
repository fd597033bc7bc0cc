package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
)

// scanner is satisfied by both [sql.Row] and [sql.Rows].
type scanner interface {
	Scan(dest ...any) error
}

const userColumns = `id, name, email, password_hash, provider, admin, image, created_at, updated_at`

// UserRepository persists [models.User] accounts.
type UserRepository struct {
	db DBTX
}

// NewUserRepository creates a new [UserRepository] with the given database connection
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user and assigns its ID. A duplicate email is reported as [shared.ErrConflict].
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO users (name, email, password_hash, provider, admin, image, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	res, err := r.db.ExecContext(ctx, query,
		user.Name, user.Email, nullString(user.PasswordHash), user.Provider, user.Admin, user.Image,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return classify("insert user", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read user id: %w", err)
	}
	user.ID = id
	return nil
}

// Get retrieves a user by ID
func (r *UserRepository) Get(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, classify(fmt.Sprintf("get user %d", id), err)
	}
	return user, nil
}

// GetByEmail retrieves a user by normalized email address
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, shared.NormalizeEmail(email)))
	if err != nil {
		return nil, classify("get user by email", err)
	}
	return user, nil
}

// Update writes the profile fields (name, email, image, admin) of an existing user
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	user.UpdatedAt = shared.Now()

	query := `
		UPDATE users
		SET name = ?, email = ?, image = ?, admin = ?, updated_at = ?
		WHERE id = ?
	`

	res, err := r.db.ExecContext(ctx, query, user.Name, user.Email, user.Image, user.Admin, user.UpdatedAt, user.ID)
	if err != nil {
		return classify("update user", err)
	}
	return requireAffected(res, "user", user.ID)
}

// SetPassword replaces the stored password hash
func (r *UserRepository) SetPassword(ctx context.Context, id int64, hash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		nullString(hash), shared.Now(), id,
	)
	if err != nil {
		return classify("set password", err)
	}
	return requireAffected(res, "user", id)
}

// List retrieves users matching the given criteria ordered by id.
//
// Supported criteria: "email" (string), "admin" (bool).
func (r *UserRepository) List(ctx context.Context, criteria map[string]any) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE 1 = 1`
	args := []any{}

	if email, ok := criteria["email"].(string); ok && email != "" {
		query += " AND email = ?"
		args = append(args, shared.NormalizeEmail(email))
	}
	if admin, ok := criteria["admin"].(bool); ok {
		query += " AND admin = ?"
		args = append(args, admin)
	}

	query += " ORDER BY id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("query users", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return users, nil
}

func scanUser(s scanner) (*models.User, error) {
	var (
		user models.User
		hash sql.NullString
	)

	err := s.Scan(
		&user.ID, &user.Name, &user.Email, &hash, &user.Provider, &user.Admin, &user.Image,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = hash.String
	return &user, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
