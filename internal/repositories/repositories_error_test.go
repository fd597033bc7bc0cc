package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
	tu "github.com/desertthunder/marquee/internal/testing"
)

func TestUserRepositoryErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("ValidationError", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))
		err := repo.Create(ctx, models.NewUser("Test User", "not-an-email", models.ProviderCredentials))
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Fatalf("expected invalid input, got %v", err)
		}
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))
		if err := repo.Create(ctx, models.NewUser("One", "test@example.com", models.ProviderCredentials)); err != nil {
			t.Fatalf("failed to create first user: %v", err)
		}

		err := repo.Create(ctx, models.NewUser("Two", "TEST@example.com", models.ProviderGoogle))
		if !errors.Is(err, shared.ErrConflict) {
			t.Fatalf("expected conflict, got %v", err)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))

		if _, err := repo.Get(ctx, 99); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected not found from Get, got %v", err)
		}
		if err := repo.SetPassword(ctx, 99, "hash"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected not found from SetPassword, got %v", err)
		}

		user := models.NewUser("Ghost", "ghost@example.com", models.ProviderCredentials)
		user.ID = 99
		if err := repo.Update(ctx, user); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected not found from Update, got %v", err)
		}
	})
}

func TestMovieRepositoryErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("EmptyTitle", func(t *testing.T) {
		repo := NewMovieRepository(setupTestDB(t))
		if err := repo.Create(ctx, &models.Movie{Title: "   "}); !errors.Is(err, shared.ErrInvalidInput) {
			t.Fatalf("expected invalid input, got %v", err)
		}
	})

	t.Run("DeleteMissing", func(t *testing.T) {
		repo := NewMovieRepository(setupTestDB(t))
		if err := repo.Delete(ctx, 42); !errors.Is(err, shared.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("SetTagsRejectsCast", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewMovieRepository(db)
		err := repo.SetTags(ctx, tu.SeedMovie(t, db, "Heat", "public"), models.TagCast, []int64{1})
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Fatalf("expected invalid input, got %v", err)
		}
	})

	t.Run("SetTagsUnknownTag", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewMovieRepository(db)
		err := repo.SetTags(ctx, tu.SeedMovie(t, db, "Heat", "public"), models.TagGenre, []int64{404})
		if !errors.Is(err, shared.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})
}

func TestTagRepositoryErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("DuplicateName", func(t *testing.T) {
		repo := NewTagRepository(setupTestDB(t))
		if err := repo.Create(ctx, &models.Tag{Kind: models.TagGenre, Name: "Drama"}); err != nil {
			t.Fatalf("failed to create genre: %v", err)
		}
		err := repo.Create(ctx, &models.Tag{Kind: models.TagGenre, Name: "Drama"})
		if !errors.Is(err, shared.ErrConflict) {
			t.Fatalf("expected conflict, got %v", err)
		}
	})

	t.Run("MissingByName", func(t *testing.T) {
		repo := NewTagRepository(setupTestDB(t))
		if _, err := repo.GetByName(ctx, models.TagStudio, "Nobody"); !errors.Is(err, shared.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("EnsureBlankName", func(t *testing.T) {
		repo := NewTagRepository(setupTestDB(t))
		if _, err := repo.Ensure(ctx, models.TagGenre, "  "); !errors.Is(err, shared.ErrInvalidInput) {
			t.Fatalf("expected invalid input, got %v", err)
		}
	})
}

func TestWatchlistRepositoryErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("DuplicateNameSameOwner", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewWatchlistRepository(db)
		userID := tu.SeedUser(t, db, "a@example.com", false)

		if err := repo.Create(ctx, models.NewWatchlist(userID, "Later")); err != nil {
			t.Fatalf("failed to create watchlist: %v", err)
		}
		if err := repo.Create(ctx, models.NewWatchlist(userID, " Later ")); !errors.Is(err, shared.ErrConflict) {
			t.Fatalf("expected conflict, got %v", err)
		}
		if err := repo.Create(ctx, models.NewWatchlist(userID, "later")); err != nil {
			t.Errorf("names differing in case should be allowed: %v", err)
		}
	})

	t.Run("UnknownOwner", func(t *testing.T) {
		repo := NewWatchlistRepository(setupTestDB(t))
		if err := repo.Create(ctx, models.NewWatchlist(77, "Later")); !errors.Is(err, shared.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("EarliestWithoutWatchlists", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewWatchlistRepository(db)
		if _, err := repo.Earliest(ctx, tu.SeedUser(t, db, "a@example.com", false)); !errors.Is(err, shared.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})
}

func TestEntryRepositoryErrors(t *testing.T) {
	ctx := context.Background()

	db := setupTestDB(t)
	userID := tu.SeedUser(t, db, "a@example.com", false)
	movieID := tu.SeedMovie(t, db, "Heat", "public")
	w := models.NewWatchlist(userID, "Later")
	if err := NewWatchlistRepository(db).Create(ctx, w); err != nil {
		t.Fatalf("failed to create watchlist: %v", err)
	}
	repo := NewEntryRepository(db)
	entry, err := repo.Append(ctx, w.ID, userID, movieID, shared.Now())
	if err != nil {
		t.Fatalf("failed to append: %v", err)
	}

	t.Run("DuplicateMovie", func(t *testing.T) {
		if _, err := repo.Append(ctx, w.ID, userID, movieID, shared.Now()); !errors.Is(err, shared.ErrConflict) {
			t.Fatalf("expected conflict, got %v", err)
		}
	})

	t.Run("UnknownMovie", func(t *testing.T) {
		if _, err := repo.Append(ctx, w.ID, userID, 404, shared.Now()); !errors.Is(err, shared.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("ReorderForeignEntry", func(t *testing.T) {
		err := WithTx(ctx, db, func(tx *sql.Tx) error {
			return NewEntryRepository(tx).Reorder(ctx, w.ID, []int64{entry.ID + 100})
		})
		if !errors.Is(err, shared.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}

		got, err := repo.Get(ctx, entry.ID)
		if err != nil {
			t.Fatalf("failed to get entry: %v", err)
		}
		if got.Rank != 1 {
			t.Errorf("expected rollback to keep rank 1, got %d", got.Rank)
		}
	})

	t.Run("UnknownSort", func(t *testing.T) {
		if _, err := repo.List(ctx, w.ID, models.SortKey("title")); !errors.Is(err, shared.ErrInvalidInput) {
			t.Fatalf("expected invalid input, got %v", err)
		}
	})

	t.Run("SetWatchedMissing", func(t *testing.T) {
		if err := repo.SetWatched(ctx, 404, nil); !errors.Is(err, shared.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})
}

func TestRatingRepositoryErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("OutOfRange", func(t *testing.T) {
		repo := NewRatingRepository(setupTestDB(t))
		err := repo.Upsert(ctx, &models.RatingEntry{UserID: 1, MovieID: 1, Rating: 101})
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Fatalf("expected invalid input, got %v", err)
		}
	})

	t.Run("UnknownMovie", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewRatingRepository(db)
		err := repo.Upsert(ctx, &models.RatingEntry{UserID: tu.SeedUser(t, db, "a@example.com", false), MovieID: 404, Rating: 50})
		if !errors.Is(err, shared.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("UnknownLeaderboard", func(t *testing.T) {
		repo := NewRatingRepository(setupTestDB(t))
		if _, err := repo.Leaderboard(ctx, "worst", shared.Now(), models.Page{}); !errors.Is(err, shared.ErrInvalidInput) {
			t.Fatalf("expected invalid input, got %v", err)
		}
	})
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"deadline", context.DeadlineExceeded, shared.ErrTransient},
		{"canceled", context.Canceled, shared.ErrTransient},
		{"already classified", shared.ErrConflict, shared.ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify("do thing", tt.err)
			if tt.want == nil {
				if got != nil {
					t.Fatalf("expected nil, got %v", got)
				}
				return
			}
			if !errors.Is(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
