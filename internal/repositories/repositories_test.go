package repositories

import (
	"context"
	"database/sql"
	"strconv"
	"testing"
	"time"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
	tu "github.com/desertthunder/marquee/internal/testing"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	return tu.NewTestDB(t)
}

func assertRanks(t *testing.T, entries []models.WatchlistEntry, movieIDs ...int64) {
	t.Helper()
	if len(entries) != len(movieIDs) {
		t.Fatalf("expected %d entries, got %d", len(movieIDs), len(entries))
	}
	for i, e := range entries {
		if e.Rank != i+1 {
			t.Errorf("entry %d: expected rank %d, got %d", e.ID, i+1, e.Rank)
		}
		if e.MovieID != movieIDs[i] {
			t.Errorf("rank %d: expected movie %d, got %d", i+1, movieIDs[i], e.MovieID)
		}
	}
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))
		user := models.NewUser("Test User", "Test@Example.com", models.ProviderCredentials)
		user.PasswordHash = "hash"

		if err := repo.Create(ctx, user); err != nil {
			t.Fatalf("failed to create user: %v", err)
		}
		if user.ID == 0 {
			t.Error("user ID should be set after creation")
		}
	})

	t.Run("GetByEmail", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))
		user := models.NewUser("Test User", "test@example.com", models.ProviderCredentials)
		if err := repo.Create(ctx, user); err != nil {
			t.Fatalf("failed to create user: %v", err)
		}

		retrieved, err := repo.GetByEmail(ctx, "  TEST@example.com ")
		if err != nil {
			t.Fatalf("failed to get user: %v", err)
		}
		if retrieved.ID != user.ID {
			t.Errorf("expected ID %d, got %d", user.ID, retrieved.ID)
		}
		if retrieved.HasPassword() {
			t.Error("user created without a hash should have no password")
		}
	})

	t.Run("UpdateAndSetPassword", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))
		user := models.NewUser("Test User", "test@example.com", models.ProviderCredentials)
		if err := repo.Create(ctx, user); err != nil {
			t.Fatalf("failed to create user: %v", err)
		}

		user.Name = "Renamed"
		user.Admin = true
		if err := repo.Update(ctx, user); err != nil {
			t.Fatalf("failed to update user: %v", err)
		}
		if err := repo.SetPassword(ctx, user.ID, "new-hash"); err != nil {
			t.Fatalf("failed to set password: %v", err)
		}

		retrieved, err := repo.Get(ctx, user.ID)
		if err != nil {
			t.Fatalf("failed to get user: %v", err)
		}
		if retrieved.Name != "Renamed" || !retrieved.Admin {
			t.Errorf("update not persisted: %+v", retrieved)
		}
		if retrieved.PasswordHash != "new-hash" {
			t.Errorf("expected password hash to be stored, got %q", retrieved.PasswordHash)
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserRepository(db)
		tu.SeedUser(t, db, "a@example.com", false)
		tu.SeedUser(t, db, "b@example.com", true)

		all, err := repo.List(ctx, nil)
		if err != nil {
			t.Fatalf("failed to list users: %v", err)
		}
		if len(all) != 2 {
			t.Errorf("expected 2 users, got %d", len(all))
		}

		admins, err := repo.List(ctx, map[string]any{"admin": true})
		if err != nil {
			t.Fatalf("failed to list admins: %v", err)
		}
		if len(admins) != 1 || admins[0].Email != "b@example.com" {
			t.Errorf("expected only b@example.com, got %+v", admins)
		}
	})
}

func TestMovieRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("CreateDefaultsToPublic", func(t *testing.T) {
		repo := NewMovieRepository(setupTestDB(t))
		movie := &models.Movie{Title: "  Heat  "}
		if err := repo.Create(ctx, movie); err != nil {
			t.Fatalf("failed to create movie: %v", err)
		}

		got, err := repo.Get(ctx, movie.ID)
		if err != nil {
			t.Fatalf("failed to get movie: %v", err)
		}
		if got.Title != "Heat" {
			t.Errorf("expected trimmed title, got %q", got.Title)
		}
		if got.Visibility != models.VisibilityPublic {
			t.Errorf("expected public visibility, got %q", got.Visibility)
		}
	})

	t.Run("ListFiltersAndEscapes", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewMovieRepository(db)
		tu.SeedMovie(t, db, "Alien", "public")
		tu.SeedMovie(t, db, "Aliens", "private")
		tu.SeedMovie(t, db, "100% Wolf", "public")
		tu.SeedMovie(t, db, "Arrival", "unlisted")

		tests := []struct {
			name     string
			criteria map[string]any
			want     []string
		}{
			{"all", nil, []string{"100% Wolf", "Alien", "Aliens", "Arrival"}},
			{"query", map[string]any{"query": "alien"}, []string{"Alien", "Aliens"}},
			{"public", map[string]any{"query": "alien", "visibility": []models.Visibility{models.VisibilityPublic}}, []string{"Alien"}},
			{"percent is literal", map[string]any{"query": "%"}, []string{"100% Wolf"}},
			{"limit", map[string]any{"limit": 2, "offset": 1}, []string{"Alien", "Aliens"}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				movies, err := repo.List(ctx, tt.criteria)
				if err != nil {
					t.Fatalf("failed to list movies: %v", err)
				}
				if len(movies) != len(tt.want) {
					t.Fatalf("expected %d movies, got %d", len(tt.want), len(movies))
				}
				for i, m := range movies {
					if m.Title != tt.want[i] {
						t.Errorf("position %d: expected %q, got %q", i, tt.want[i], m.Title)
					}
				}
			})
		}
	})

	t.Run("TagsAndCast", func(t *testing.T) {
		db := setupTestDB(t)
		movies, tags := NewMovieRepository(db), NewTagRepository(db)
		movieID := tu.SeedMovie(t, db, "Heat", "public")

		drama, err := tags.Ensure(ctx, models.TagGenre, "Drama")
		if err != nil {
			t.Fatalf("failed to ensure genre: %v", err)
		}
		crime, _ := tags.Ensure(ctx, models.TagGenre, "Crime")
		pacino, _ := tags.Ensure(ctx, models.TagCast, "Al Pacino")

		if err := movies.SetTags(ctx, movieID, models.TagGenre, []int64{drama.ID, crime.ID, drama.ID}); err != nil {
			t.Fatalf("failed to set genres: %v", err)
		}
		if err := movies.SetCast(ctx, movieID, []CastLink{{CastID: pacino.ID, Role: "Hanna"}}); err != nil {
			t.Fatalf("failed to set cast: %v", err)
		}

		genres, err := movies.Tags(ctx, movieID, models.TagGenre)
		if err != nil {
			t.Fatalf("failed to read genres: %v", err)
		}
		if len(genres) != 2 || genres[0].Name != "Crime" || genres[1].Name != "Drama" {
			t.Errorf("unexpected genres: %+v", genres)
		}

		cast, err := movies.Cast(ctx, movieID)
		if err != nil {
			t.Fatalf("failed to read cast: %v", err)
		}
		if len(cast) != 1 || cast[0].Role != "Hanna" || cast[0].Cast.Name != "Al Pacino" {
			t.Errorf("unexpected cast: %+v", cast)
		}
	})

	t.Run("DeleteCascades", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewMovieRepository(db)
		userID := tu.SeedUser(t, db, "a@example.com", false)
		movieID := tu.SeedMovie(t, db, "Heat", "public")

		w := models.NewWatchlist(userID, "Later")
		if err := NewWatchlistRepository(db).Create(ctx, w); err != nil {
			t.Fatalf("failed to create watchlist: %v", err)
		}
		if _, err := NewEntryRepository(db).Append(ctx, w.ID, userID, movieID, shared.Now()); err != nil {
			t.Fatalf("failed to append entry: %v", err)
		}

		if err := repo.Delete(ctx, movieID); err != nil {
			t.Fatalf("failed to delete movie: %v", err)
		}

		var n int
		if err := db.QueryRow(`SELECT COUNT(*) FROM watchlist_entries`).Scan(&n); err != nil {
			t.Fatalf("failed to count entries: %v", err)
		}
		if n != 0 {
			t.Errorf("expected entries to cascade, %d left", n)
		}
	})
}

func TestTagRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("EnsureIsIdempotent", func(t *testing.T) {
		repo := NewTagRepository(setupTestDB(t))

		first, err := repo.Ensure(ctx, models.TagStudio, "A24")
		if err != nil {
			t.Fatalf("failed to ensure studio: %v", err)
		}
		second, err := repo.Ensure(ctx, models.TagStudio, " A24 ")
		if err != nil {
			t.Fatalf("failed to ensure studio again: %v", err)
		}
		if first.ID != second.ID {
			t.Errorf("expected the same studio, got %d and %d", first.ID, second.ID)
		}
	})

	t.Run("CreateWithExtras", func(t *testing.T) {
		repo := NewTagRepository(setupTestDB(t))
		tag := &models.Tag{Kind: models.TagCast, Name: "Val Kilmer", Image: "https://img/val.jpg", Birthday: "1959-12-31"}
		if err := repo.Create(ctx, tag); err != nil {
			t.Fatalf("failed to create cast: %v", err)
		}

		got, err := repo.Get(ctx, models.TagCast, tag.ID)
		if err != nil {
			t.Fatalf("failed to get cast: %v", err)
		}
		if got.Birthday != "1959-12-31" || got.Image != "https://img/val.jpg" {
			t.Errorf("extras not stored: %+v", got)
		}
	})

	t.Run("ListByKind", func(t *testing.T) {
		repo := NewTagRepository(setupTestDB(t))
		for _, name := range []string{"Netflix", "Hulu"} {
			if _, err := repo.Ensure(ctx, models.TagPlatform, name); err != nil {
				t.Fatalf("failed to ensure platform: %v", err)
			}
		}
		if _, err := repo.Ensure(ctx, models.TagGenre, "Drama"); err != nil {
			t.Fatalf("failed to ensure genre: %v", err)
		}

		platforms, err := repo.List(ctx, models.TagPlatform)
		if err != nil {
			t.Fatalf("failed to list platforms: %v", err)
		}
		if len(platforms) != 2 || platforms[0].Name != "Hulu" {
			t.Errorf("unexpected platforms: %+v", platforms)
		}
	})
}

func TestWatchlistRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("CreateListEarliest", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewWatchlistRepository(db)
		userID := tu.SeedUser(t, db, "a@example.com", false)
		otherID := tu.SeedUser(t, db, "b@example.com", false)

		first := models.NewWatchlist(userID, "First")
		second := models.NewWatchlist(userID, "Second")
		second.CreatedAt = first.CreatedAt.Add(time.Second)
		for _, w := range []*models.Watchlist{first, second, models.NewWatchlist(otherID, "First")} {
			if err := repo.Create(ctx, w); err != nil {
				t.Fatalf("failed to create watchlist: %v", err)
			}
		}

		mine, err := repo.List(ctx, map[string]any{"user_id": userID})
		if err != nil {
			t.Fatalf("failed to list watchlists: %v", err)
		}
		if len(mine) != 2 {
			t.Fatalf("expected 2 watchlists, got %d", len(mine))
		}

		earliest, err := repo.Earliest(ctx, userID)
		if err != nil {
			t.Fatalf("failed to get earliest: %v", err)
		}
		if earliest.ID != first.ID {
			t.Errorf("expected watchlist %d, got %d", first.ID, earliest.ID)
		}
	})

	t.Run("EntryCount", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewWatchlistRepository(db)
		userID := tu.SeedUser(t, db, "a@example.com", false)
		w := models.NewWatchlist(userID, "Later")
		if err := repo.Create(ctx, w); err != nil {
			t.Fatalf("failed to create watchlist: %v", err)
		}

		entries := NewEntryRepository(db)
		for _, title := range []string{"Heat", "Ronin"} {
			if _, err := entries.Append(ctx, w.ID, userID, tu.SeedMovie(t, db, title, "public"), shared.Now()); err != nil {
				t.Fatalf("failed to append: %v", err)
			}
		}

		got, err := repo.Get(ctx, w.ID)
		if err != nil {
			t.Fatalf("failed to get watchlist: %v", err)
		}
		if got.EntryCount != 2 {
			t.Errorf("expected 2 entries, got %d", got.EntryCount)
		}
	})
}

func TestEntryRepository(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*sql.DB, int64, int64, []int64) {
		db := setupTestDB(t)
		userID := tu.SeedUser(t, db, "a@example.com", false)
		w := models.NewWatchlist(userID, "Later")
		if err := NewWatchlistRepository(db).Create(ctx, w); err != nil {
			t.Fatalf("failed to create watchlist: %v", err)
		}
		movies := []int64{
			tu.SeedMovie(t, db, "Heat", "public"),
			tu.SeedMovie(t, db, "Ronin", "public"),
			tu.SeedMovie(t, db, "Thief", "public"),
			tu.SeedMovie(t, db, "Collateral", "public"),
		}
		return db, userID, w.ID, movies
	}

	appendAll := func(t *testing.T, repo *EntryRepository, watchlistID, userID int64, movies []int64) []*models.WatchlistEntry {
		t.Helper()
		var out []*models.WatchlistEntry
		for _, m := range movies {
			e, err := repo.Append(ctx, watchlistID, userID, m, shared.Now())
			if err != nil {
				t.Fatalf("failed to append movie %d: %v", m, err)
			}
			out = append(out, e)
		}
		return out
	}

	t.Run("AppendAssignsNextRank", func(t *testing.T) {
		db, userID, watchlistID, movies := setup(t)
		repo := NewEntryRepository(db)
		appendAll(t, repo, watchlistID, userID, movies)

		entries, err := repo.List(ctx, watchlistID, models.SortRank)
		if err != nil {
			t.Fatalf("failed to list entries: %v", err)
		}
		assertRanks(t, entries, movies...)
		if entries[0].MovieTitle != "Heat" {
			t.Errorf("expected joined title, got %q", entries[0].MovieTitle)
		}
	})

	t.Run("RemoveClosesGap", func(t *testing.T) {
		db, userID, watchlistID, movies := setup(t)
		repo := NewEntryRepository(db)
		added := appendAll(t, repo, watchlistID, userID, movies)

		if err := repo.Remove(ctx, added[1]); err != nil {
			t.Fatalf("failed to remove entry: %v", err)
		}

		entries, _ := repo.List(ctx, watchlistID, models.SortRank)
		assertRanks(t, entries, movies[0], movies[2], movies[3])
	})

	t.Run("Reorder", func(t *testing.T) {
		db, userID, watchlistID, movies := setup(t)
		repo := NewEntryRepository(db)
		added := appendAll(t, repo, watchlistID, userID, movies)

		order := []int64{added[3].ID, added[0].ID, added[2].ID, added[1].ID}
		if err := repo.Reorder(ctx, watchlistID, order); err != nil {
			t.Fatalf("failed to reorder: %v", err)
		}

		entries, _ := repo.List(ctx, watchlistID, models.SortRank)
		assertRanks(t, entries, movies[3], movies[0], movies[2], movies[1])

		ids, err := repo.IDs(ctx, watchlistID)
		if err != nil {
			t.Fatalf("failed to list ids: %v", err)
		}
		for i, id := range ids {
			if id != order[i] {
				t.Errorf("position %d: expected entry %d, got %d", i, order[i], id)
			}
		}
	})

	t.Run("SortByRatingAndWatched", func(t *testing.T) {
		db, userID, watchlistID, movies := setup(t)
		repo := NewEntryRepository(db)
		added := appendAll(t, repo, watchlistID, userID, movies)

		ratings := NewRatingRepository(db)
		for movie, score := range map[int64]int{movies[1]: 40, movies[2]: 90} {
			if err := ratings.Upsert(ctx, &models.RatingEntry{UserID: userID, MovieID: movie, Rating: score}); err != nil {
				t.Fatalf("failed to rate: %v", err)
			}
		}
		at := shared.Now()
		if err := repo.SetWatched(ctx, added[0].ID, &at); err != nil {
			t.Fatalf("failed to mark watched: %v", err)
		}

		byRating, _ := repo.List(ctx, watchlistID, models.SortRating)
		want := []int64{movies[2], movies[1], movies[0], movies[3]}
		for i, e := range byRating {
			if e.MovieID != want[i] {
				t.Errorf("rating sort position %d: expected movie %d, got %d", i, want[i], e.MovieID)
			}
		}

		byWatched, _ := repo.List(ctx, watchlistID, models.SortWatched)
		if last := byWatched[len(byWatched)-1]; last.MovieID != movies[0] || !last.Watched() {
			t.Errorf("expected watched movie last, got %+v", last)
		}

		if err := repo.SetWatched(ctx, added[0].ID, nil); err != nil {
			t.Fatalf("failed to unmark watched: %v", err)
		}
		e, _ := repo.Get(ctx, added[0].ID)
		if e.Watched() {
			t.Error("expected entry to be unwatched")
		}
	})
}

func TestRatingRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("UpsertReplaces", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewRatingRepository(db)
		userID := tu.SeedUser(t, db, "a@example.com", false)
		movieID := tu.SeedMovie(t, db, "Heat", "public")

		first := &models.RatingEntry{UserID: userID, MovieID: movieID, Rating: 60, Subject: "ok"}
		if err := repo.Upsert(ctx, first); err != nil {
			t.Fatalf("failed to rate: %v", err)
		}
		second := &models.RatingEntry{UserID: userID, MovieID: movieID, Rating: 95, Subject: "great"}
		if err := repo.Upsert(ctx, second); err != nil {
			t.Fatalf("failed to re-rate: %v", err)
		}

		if second.ID != first.ID {
			t.Errorf("expected the same row, got %d and %d", first.ID, second.ID)
		}
		if second.UserName != "a@example.com" {
			t.Errorf("expected reviewer name to be joined, got %q", second.UserName)
		}

		summary, err := repo.Summary(ctx, movieID)
		if err != nil {
			t.Fatalf("failed to summarize: %v", err)
		}
		if summary.Count != 1 || summary.Average != 95 {
			t.Errorf("unexpected summary: %+v", summary)
		}
	})

	t.Run("ListSorts", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewRatingRepository(db)
		movieID := tu.SeedMovie(t, db, "Heat", "public")
		for i, score := range []int{50, 80, 20} {
			userID := tu.SeedUser(t, db, string(rune('a'+i))+"@example.com", false)
			if err := repo.Upsert(ctx, &models.RatingEntry{UserID: userID, MovieID: movieID, Rating: score}); err != nil {
				t.Fatalf("failed to rate: %v", err)
			}
		}

		tests := []struct {
			sort  models.ReviewSort
			first int
		}{
			{models.ReviewsHighest, 80},
			{models.ReviewsLowest, 20},
		}
		for _, tt := range tests {
			t.Run(string(tt.sort), func(t *testing.T) {
				reviews, err := repo.List(ctx, movieID, tt.sort, models.Page{})
				if err != nil {
					t.Fatalf("failed to list reviews: %v", err)
				}
				if len(reviews) != 3 || reviews[0].Rating != tt.first {
					t.Errorf("expected first rating %d, got %+v", tt.first, reviews)
				}
			})
		}

		for i := range 22 {
			userID := tu.SeedUser(t, db, "more"+strconv.Itoa(i)+"@example.com", false)
			if err := repo.Upsert(ctx, &models.RatingEntry{UserID: userID, MovieID: movieID, Rating: 60}); err != nil {
				t.Fatalf("failed to rate: %v", err)
			}
		}
		all, err := repo.List(ctx, movieID, models.ReviewsHighest, models.Page{})
		if err != nil || len(all) != 25 {
			t.Errorf("expected every review without a limit, got %d (%v)", len(all), err)
		}

		page, _ := repo.List(ctx, movieID, models.ReviewsHighest, models.Page{Limit: 1, Page: 25})
		if len(page) != 1 || page[0].Rating != 20 {
			t.Errorf("expected the lowest review alone, got %+v", page)
		}
	})

	t.Run("SummaryWithoutRatings", func(t *testing.T) {
		db := setupTestDB(t)
		summary, err := NewRatingRepository(db).Summary(ctx, tu.SeedMovie(t, db, "Heat", "public"))
		if err != nil {
			t.Fatalf("failed to summarize: %v", err)
		}
		if summary.Count != 0 || summary.Average != 0 {
			t.Errorf("expected zero summary, got %+v", summary)
		}
	})

	t.Run("PointsSince", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewRatingRepository(db)
		movieID := tu.SeedMovie(t, db, "Heat", "public")
		old := tu.SeedUser(t, db, "old@example.com", false)
		recent := tu.SeedUser(t, db, "new@example.com", false)

		for _, id := range []int64{old, recent} {
			if err := repo.Upsert(ctx, &models.RatingEntry{UserID: id, MovieID: movieID, Rating: 70}); err != nil {
				t.Fatalf("failed to rate: %v", err)
			}
		}
		if _, err := db.Exec(`UPDATE ratings SET created_at = ? WHERE user_id = ?`, shared.Now().AddDate(0, 0, -40), old); err != nil {
			t.Fatalf("failed to backdate rating: %v", err)
		}

		all, _ := repo.Points(ctx, movieID, time.Time{})
		if len(all) != 2 {
			t.Errorf("expected 2 points, got %d", len(all))
		}
		window, _ := repo.Points(ctx, movieID, shared.Now().AddDate(0, 0, -30))
		if len(window) != 1 {
			t.Errorf("expected 1 point in window, got %d", len(window))
		}
	})
}

func TestLeaderboards(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	ratings, entries := NewRatingRepository(db), NewEntryRepository(db)
	alice := tu.SeedUser(t, db, "alice@example.com", false)
	bob := tu.SeedUser(t, db, "bob@example.com", false)

	heat := tu.SeedMovie(t, db, "Heat", "public")
	ronin := tu.SeedMovie(t, db, "Ronin", "public")
	hidden := tu.SeedMovie(t, db, "Hidden", "private")
	oldie := tu.SeedMovieAt(t, db, "Oldie", "public", shared.Now().AddDate(-1, 0, 0))

	for _, r := range []models.RatingEntry{
		{UserID: alice, MovieID: heat, Rating: 80},
		{UserID: bob, MovieID: heat, Rating: 60},
		{UserID: alice, MovieID: ronin, Rating: 90},
		{UserID: alice, MovieID: hidden, Rating: 100},
		{UserID: alice, MovieID: oldie, Rating: 95},
	} {
		if err := ratings.Upsert(ctx, &r); err != nil {
			t.Fatalf("failed to rate: %v", err)
		}
	}

	watched := shared.Now()
	for _, user := range []int64{alice, bob} {
		w := models.NewWatchlist(user, "Later")
		if err := NewWatchlistRepository(db).Create(ctx, w); err != nil {
			t.Fatalf("failed to create watchlist: %v", err)
		}
		for _, movie := range []int64{heat, ronin, hidden} {
			e, err := entries.Append(ctx, w.ID, user, movie, shared.Now())
			if err != nil {
				t.Fatalf("failed to append: %v", err)
			}
			if movie != ronin || user == alice {
				if err := entries.SetWatched(ctx, e.ID, &watched); err != nil {
					t.Fatalf("failed to mark watched: %v", err)
				}
			}
		}
	}

	since := shared.Now().AddDate(0, 0, -30)
	tests := []struct {
		kind  models.LeaderboardKind
		want  []int64
		total int
	}{
		{models.LeaderboardHighlyRated, []int64{oldie, ronin, heat}, 3},
		{models.LeaderboardTopWatched, []int64{heat, ronin}, 2},
		{models.LeaderboardNewestHighRate, []int64{ronin, heat}, 2},
		{models.LeaderboardRecentlyAdded, []int64{ronin, heat}, 2},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			board, err := ratings.Leaderboard(ctx, tt.kind, since, models.Page{Limit: 10})
			if err != nil {
				t.Fatalf("failed to load leaderboard: %v", err)
			}
			if board.Total != tt.total {
				t.Errorf("expected total %d, got %d", tt.total, board.Total)
			}
			if len(board.Rows) != len(tt.want) {
				t.Fatalf("expected %d rows, got %d", len(tt.want), len(board.Rows))
			}
			for i, row := range board.Rows {
				if row.Movie.ID != tt.want[i] {
					t.Errorf("position %d: expected movie %d, got %d (%s)", i, tt.want[i], row.Movie.ID, row.Movie.Title)
				}
			}
		})
	}

	t.Run("HighlyRatedScores", func(t *testing.T) {
		board, _ := ratings.Leaderboard(ctx, models.LeaderboardHighlyRated, since, models.Page{Limit: 10})
		last := board.Rows[2]
		if last.Score != 70 || last.Count != 2 || last.Average == nil || *last.Average != 70 {
			t.Errorf("unexpected heat row: %+v", last)
		}
	})

	t.Run("Paging", func(t *testing.T) {
		board, err := ratings.Leaderboard(ctx, models.LeaderboardHighlyRated, since, models.Page{Limit: 1, Page: 2})
		if err != nil {
			t.Fatalf("failed to load leaderboard: %v", err)
		}
		if len(board.Rows) != 1 || board.Rows[0].Movie.ID != ronin || board.Total != 3 {
			t.Errorf("unexpected page: %+v", board)
		}
	})
}
