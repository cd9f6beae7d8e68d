package testutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"

	"github.com/inkwell/inkwell/internal/fixture"
	"github.com/inkwell/inkwell/internal/migrations"
	"github.com/inkwell/inkwell/internal/model"
	"github.com/inkwell/inkwell/internal/repository"
)

// TestDatabaseURLEnv names the connection string used by integration tests.
const TestDatabaseURLEnv = "TEST_DATABASE_URL"

// SeedSize is the number of posts seeded before each API test.
const SeedSize = 9

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

// RequireDatabaseURL returns TEST_DATABASE_URL, skipping the test when it is
// unset or does not use one of the given schemes.
func RequireDatabaseURL(t testing.TB, schemes ...string) string {
	t.Helper()
	url := RequireEnv(t, TestDatabaseURLEnv)
	if len(schemes) == 0 {
		return url
	}
	for _, scheme := range schemes {
		if strings.HasPrefix(url, scheme+":") {
			return url
		}
	}
	t.Skipf("%s is not a %s URL", TestDatabaseURLEnv, strings.Join(schemes, "/"))
	return ""
}

// DiscardLogger returns a logger that writes nowhere.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const advisoryLockID int64 = 424242

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetPostgresSchema reverts and reapplies the embedded migrations.
func ResetPostgresSchema(ctx context.Context, databaseURL string) error {
	db, err := migrations.Open(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrations.Reset(ctx, db); err != nil {
		return fmt.Errorf("reset schema: %w", err)
	}
	return nil
}

// SeedBlogPosts inserts n fake posts and returns them with IDs assigned.
func SeedBlogPosts(ctx context.Context, repo repository.PostRepository, n int) ([]*model.BlogPost, error) {
	posts := fixture.New(time.Now().UnixNano()).Posts(n)
	if err := repo.CreateMany(ctx, posts); err != nil {
		return nil, fmt.Errorf("seed blog posts: %w", err)
	}
	return posts, nil
}

// TearDownDB deletes every post so the next test starts empty.
func TearDownDB(ctx context.Context, repo repository.PostRepository) error {
	if err := repo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("tear down database: %w", err)
	}
	return nil
}

// SeedWithTeardown seeds n posts for the duration of t and registers teardown.
func SeedWithTeardown(t testing.TB, repo repository.PostRepository, n int) []*model.BlogPost {
	t.Helper()
	ctx := context.Background()

	posts, err := SeedBlogPosts(ctx, repo, n)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	t.Cleanup(func() {
		if err := TearDownDB(context.Background(), repo); err != nil {
			t.Errorf("teardown: %v", err)
		}
	})

	return posts
}

// NewTestPost creates a post with fixed, readable values.
func NewTestPost(t testing.TB, title string) *model.BlogPost {
	t.Helper()
	return &model.BlogPost{
		Author:  model.Author{FirstName: "Test", LastName: "Author"},
		Title:   title,
		Content: "Content for " + title,
	}
}

// RandomSuffix returns a unique lowercase token for test keys.
func RandomSuffix() string {
	return strings.ToLower(ulid.Make().String())
}
