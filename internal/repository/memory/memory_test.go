package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell/inkwell/internal/model"
	"github.com/inkwell/inkwell/internal/repository"
	"github.com/inkwell/inkwell/internal/repository/repotest"
)

func newPost(title string) *model.BlogPost {
	return &model.BlogPost{
		Author:  model.Author{FirstName: "Ada", LastName: "Lovelace"},
		Title:   title,
		Content: "content of " + title,
	}
}

func TestRepository_CreateAssignsIDAndCreated(t *testing.T) {
	ctx := context.Background()
	repo := New()

	post := newPost("first")
	require.NoError(t, repo.Create(ctx, post))

	assert.NotEmpty(t, post.ID)
	assert.False(t, post.Created.IsZero())

	loaded, err := repo.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post, loaded)
}

func TestRepository_ListOrderedByCreated(t *testing.T) {
	ctx := context.Background()
	repo := New()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	later := newPost("later")
	later.Created = base.Add(time.Hour)
	earlier := newPost("earlier")
	earlier.Created = base

	require.NoError(t, repo.CreateMany(ctx, []*model.BlogPost{later, earlier}))

	posts, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "earlier", posts[0].Title)
	assert.Equal(t, "later", posts[1].Title)
}

func TestRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := New()

	post := newPost("original")
	require.NoError(t, repo.Create(ctx, post))

	post.Title = "mutated by caller"
	loaded, err := repo.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", loaded.Title)

	loaded.Title = "mutated again"
	again, err := repo.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", again.Title)
}

func TestRepository_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := New()

	post := newPost("draft")
	require.NoError(t, repo.Create(ctx, post))
	created := post.Created

	post.Title = "final"
	post.Created = time.Time{}
	require.NoError(t, repo.Update(ctx, post))

	loaded, err := repo.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "final", loaded.Title)
	assert.Equal(t, created, loaded.Created, "update must not touch created")

	require.NoError(t, repo.Delete(ctx, post.ID))
	_, err = repo.Get(ctx, post.ID)
	assert.ErrorIs(t, err, repository.ErrPostNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, post.ID), repository.ErrPostNotFound)
	assert.ErrorIs(t, repo.Update(ctx, post), repository.ErrPostNotFound)
}

func TestRepository_CountAndDeleteAll(t *testing.T) {
	ctx := context.Background()
	repo := New()

	for _, title := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Create(ctx, newPost(title)))
	}

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	require.NoError(t, repo.DeleteAll(ctx))

	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRepository_RejectsTakenID(t *testing.T) {
	ctx := context.Background()
	repo := New()

	post := newPost("kept")
	require.NoError(t, repo.Create(ctx, post))

	err := repo.Create(ctx, &model.BlogPost{ID: post.ID, Title: "replacement"})
	require.ErrorIs(t, err, repository.ErrPostExists)

	loaded, err := repo.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "kept", loaded.Title)
}

func TestRepository_CreateManyRepeatedIDInBatch(t *testing.T) {
	ctx := context.Background()
	repo := New()

	first := newPost("first")
	first.ID = "01HZZZZZZZZZZZZZZZZZZZZZZZ"
	second := newPost("second")
	second.ID = first.ID
	other := newPost("other")

	err := repo.CreateMany(ctx, []*model.BlogPost{other, first, second})
	require.ErrorIs(t, err, repository.ErrPostExists)
	assert.Empty(t, other.ID)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRepository_Contract(t *testing.T) {
	repotest.Run(t, func(t *testing.T) repository.PostRepository {
		return New()
	})
}
