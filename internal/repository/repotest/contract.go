// Package repotest holds the behavioural contract every post repository must meet.
// Backend test files call Run with a factory that returns an empty repository.
package repotest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell/inkwell/internal/model"
	"github.com/inkwell/inkwell/internal/repository"
)

// Factory returns an empty repository for one subtest.
type Factory func(t *testing.T) repository.PostRepository

// Run executes the repository contract against the backend built by newRepo.
func Run(t *testing.T, newRepo Factory) {
	t.Run("CreateAssignsIDAndCreated", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)

		post := samplePost(1)
		require.NoError(t, repo.Create(ctx, post))
		assert.NotEmpty(t, post.ID)
		assert.False(t, post.Created.IsZero())

		loaded, err := repo.Get(ctx, post.ID)
		require.NoError(t, err)
		assertSamePost(t, post, loaded)
	})

	t.Run("GetMissing", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.Get(context.Background(), "000000000000000000000000")
		assert.ErrorIs(t, err, repository.ErrPostNotFound)
	})

	t.Run("IDsAreUnique", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)

		posts := samplePosts(20)
		require.NoError(t, repo.CreateMany(ctx, posts))

		seen := make(map[string]bool, len(posts))
		for _, p := range posts {
			require.NotEmpty(t, p.ID)
			assert.False(t, seen[p.ID], "duplicate id %s", p.ID)
			seen[p.ID] = true
		}
	})

	t.Run("DuplicateID", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)

		original := samplePost(1)
		require.NoError(t, repo.Create(ctx, original))

		clash := samplePost(2)
		clash.ID = original.ID
		assert.ErrorIs(t, repo.Create(ctx, clash), repository.ErrPostExists)
		assert.True(t, clash.Created.IsZero(), "created must not be set on failure")

		loaded, err := repo.Get(ctx, original.ID)
		require.NoError(t, err)
		assertSamePost(t, original, loaded)

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("CreateManyFailureLeavesInputs", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)

		original := samplePost(1)
		require.NoError(t, repo.Create(ctx, original))

		clash := samplePost(2)
		clash.ID = original.ID
		fresh := samplePost(3)

		err := repo.CreateMany(ctx, []*model.BlogPost{clash, fresh})
		assert.ErrorIs(t, err, repository.ErrPostExists)

		assert.True(t, clash.Created.IsZero())
		assert.Empty(t, fresh.ID)
		assert.True(t, fresh.Created.IsZero())

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("ListMatchesCount", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)

		for _, n := range []int{0, 1, 9} {
			require.NoError(t, repo.DeleteAll(ctx))
			require.NoError(t, repo.CreateMany(ctx, samplePosts(n)))

			posts, err := repo.List(ctx)
			require.NoError(t, err)
			count, err := repo.Count(ctx)
			require.NoError(t, err)

			assert.Equal(t, int64(n), count)
			assert.Len(t, posts, int(count))
		}
	})

	t.Run("ListOldestFirst", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)

		base := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
		newer := samplePost(1)
		newer.Created = base.Add(2 * time.Hour)
		older := samplePost(2)
		older.Created = base

		require.NoError(t, repo.Create(ctx, newer))
		require.NoError(t, repo.Create(ctx, older))

		posts, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, posts, 2)
		assert.Equal(t, older.ID, posts[0].ID)
		assert.Equal(t, newer.ID, posts[1].ID)
	})

	t.Run("UpdateKeepsCreated", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)

		post := samplePost(1)
		require.NoError(t, repo.Create(ctx, post))
		created := post.Created

		post.Title = "updated title"
		post.Content = "updated content"
		post.Author = model.Author{FirstName: "Updated", LastName: "Author"}
		require.NoError(t, repo.Update(ctx, post))

		loaded, err := repo.Get(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, "updated title", loaded.Title)
		assert.Equal(t, "updated content", loaded.Content)
		assert.Equal(t, "Updated Author", loaded.AuthorName())
		assert.True(t, created.Equal(loaded.Created))
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		repo := newRepo(t)

		post := samplePost(1)
		post.ID = "000000000000000000000000"
		assert.ErrorIs(t, repo.Update(context.Background(), post), repository.ErrPostNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)

		posts := samplePosts(3)
		require.NoError(t, repo.CreateMany(ctx, posts))

		require.NoError(t, repo.Delete(ctx, posts[1].ID))
		assert.ErrorIs(t, repo.Delete(ctx, posts[1].ID), repository.ErrPostNotFound)

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("DeleteAll", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)

		require.NoError(t, repo.CreateMany(ctx, samplePosts(5)))
		require.NoError(t, repo.DeleteAll(ctx))

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)

		posts, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, posts)
	})

	t.Run("Ping", func(t *testing.T) {
		repo := newRepo(t)
		assert.NoError(t, repo.Ping(context.Background()))
		assert.NotEmpty(t, repo.Name())
	})
}

func samplePost(i int) *model.BlogPost {
	return &model.BlogPost{
		Author:  model.Author{FirstName: fmt.Sprintf("First%d", i), LastName: fmt.Sprintf("Last%d", i)},
		Title:   fmt.Sprintf("Title %d", i),
		Content: fmt.Sprintf("Content for post %d", i),
	}
}

func samplePosts(n int) []*model.BlogPost {
	posts := make([]*model.BlogPost, 0, n)
	for i := 0; i < n; i++ {
		posts = append(posts, samplePost(i))
	}
	return posts
}

func assertSamePost(t *testing.T, want, got *model.BlogPost) {
	t.Helper()
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Title, got.Title)
	assert.Equal(t, want.Content, got.Content)
	assert.Equal(t, want.Author, got.Author)
	assert.True(t, want.Created.Equal(got.Created), "created: want %v, got %v", want.Created, got.Created)
}
