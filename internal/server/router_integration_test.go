//go:build integration

package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell/inkwell/internal/handler/dto"
	"github.com/inkwell/inkwell/internal/metrics"
	"github.com/inkwell/inkwell/internal/repository"
	"github.com/inkwell/inkwell/internal/storage"
	"github.com/inkwell/inkwell/internal/testutil"
)

// openTestStorage connects to TEST_DATABASE_URL, applying migrations for Postgres.
func openTestStorage(t *testing.T) repository.PostRepository {
	t.Helper()

	url := testutil.RequireDatabaseURL(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if backend, _ := storage.Scheme(url); backend == storage.BackendPostgres {
		lockPool, err := pgxpool.New(ctx, url)
		require.NoError(t, err)
		unlock, err := testutil.AcquireDBLock(context.Background(), lockPool)
		require.NoError(t, err)
		t.Cleanup(func() {
			_ = unlock()
			lockPool.Close()
		})
		require.NoError(t, testutil.ResetPostgresSchema(ctx, url))
	}

	repo, err := storage.Open(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	require.NoError(t, testutil.TearDownDB(ctx, repo))
	return repo
}

func TestIntegration_ListPosts(t *testing.T) {
	repo := openTestStorage(t)
	seeded := testutil.SeedWithTeardown(t, repo, testutil.SeedSize)

	router := NewRouter(RouterConfig{Version: "test"}, Dependencies{
		Repo:    repo,
		Metrics: metrics.NewInMemory(),
		Logger:  testutil.DiscardLogger(),
	})

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var posts []dto.PostResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &posts))

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, int(count))
	require.Len(t, posts, len(seeded))

	stored, err := repo.Get(context.Background(), posts[0].ID)
	require.NoError(t, err)
	assert.Equal(t, stored.AuthorName(), posts[0].Author)
	assert.Equal(t, stored.Title, posts[0].Title)
	assert.Equal(t, stored.Content, posts[0].Content)

	created, err := time.Parse(time.RFC3339Nano, posts[0].Created)
	require.NoError(t, err)
	assert.True(t, stored.Created.Equal(created))
}

func TestIntegration_CreateThenDelete(t *testing.T) {
	repo := openTestStorage(t)
	t.Cleanup(func() { _ = testutil.TearDownDB(context.Background(), repo) })

	api := &testAPI{
		handler: NewRouter(RouterConfig{}, Dependencies{Repo: repo, Logger: testutil.DiscardLogger()}),
	}

	rec := api.do(t, http.MethodPost, "/posts", map[string]any{
		"title":   "Integration",
		"content": "Stored in a real database",
		"author":  map[string]string{"firstName": "Test", "lastName": "Runner"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created dto.PostResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = api.do(t, http.MethodDelete, "/posts/"+created.ID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do(t, http.MethodGet, "/posts/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
