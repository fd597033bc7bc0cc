// package testing contains shared testing utilities
package testing

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/desertthunder/marquee/internal/shared"
)

// NewTestDB opens an in-memory database with every migration applied. It is closed when the test ends.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := shared.RunMigrations(context.Background(), db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

// SeedUser inserts a credentials user with the given email and returns its id.
func SeedUser(t *testing.T, db *sql.DB, email string, admin bool) int64 {
	t.Helper()
	now := shared.Now()
	res, err := db.Exec(
		`INSERT INTO users (name, email, provider, admin, image, created_at, updated_at) VALUES (?, ?, 'credentials', ?, '', ?, ?)`,
		email, shared.NormalizeEmail(email), admin, now, now,
	)
	if err != nil {
		t.Fatalf("failed to seed user %s: %v", email, err)
	}
	id, _ := res.LastInsertId()
	return id
}

// SeedMovie inserts a movie with the given title and visibility and returns its id.
func SeedMovie(t *testing.T, db *sql.DB, title, visibility string) int64 {
	t.Helper()
	return SeedMovieAt(t, db, title, visibility, shared.Now())
}

// SeedMovieAt is [SeedMovie] with an explicit creation time.
func SeedMovieAt(t *testing.T, db *sql.DB, title, visibility string, at time.Time) int64 {
	t.Helper()
	res, err := db.Exec(
		`INSERT INTO movies (title, visibility, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		title, visibility, at.UTC(), at.UTC(),
	)
	if err != nil {
		t.Fatalf("failed to seed movie %q: %v", title, err)
	}
	id, _ := res.LastInsertId()
	return id
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites int, target io.Writer) *LimitedWriter {
	return &LimitedWriter{maxWrites: maxWrites, target: target}
}

// MockRoundTripper returns a fixed response or error for every request and records the last request
type MockRoundTripper struct {
	response *http.Response
	err      error
	Last     *http.Request
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	m.Last = req
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
