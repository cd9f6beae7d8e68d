// Package memory implements the post repository in process memory.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/inkwell/inkwell/internal/model"
	"github.com/inkwell/inkwell/internal/repository"
)

// Repository keeps posts in a map guarded by a mutex.
type Repository struct {
	mu    sync.RWMutex
	posts map[string]*model.BlogPost
}

var _ repository.PostRepository = (*Repository)(nil)

// New returns an empty in-memory repository.
func New() *Repository {
	return &Repository{posts: make(map[string]*model.BlogPost)}
}

// Name returns the backend name.
func (r *Repository) Name() string {
	return "memory"
}

// Ping always succeeds.
func (r *Repository) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Close is a no-op.
func (r *Repository) Close() error {
	return nil
}

// List returns copies of every post, oldest first.
func (r *Repository) List(ctx context.Context) ([]*model.BlogPost, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	posts := make([]*model.BlogPost, 0, len(r.posts))
	for _, p := range r.posts {
		posts = append(posts, p.Clone())
	}

	sort.Slice(posts, func(i, j int) bool {
		if posts[i].Created.Equal(posts[j].Created) {
			return posts[i].ID < posts[j].ID
		}
		return posts[i].Created.Before(posts[j].Created)
	})

	return posts, nil
}

// Get returns a copy of the post with the given ID.
func (r *Repository) Get(ctx context.Context, id string) (*model.BlogPost, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.posts[id]
	if !ok {
		return nil, repository.ErrPostNotFound
	}
	return p.Clone(), nil
}

// Create stores a copy of post.
func (r *Repository) Create(ctx context.Context, post *model.BlogPost) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.insert([]*model.BlogPost{post})
}

// CreateMany stores copies of posts.
func (r *Repository) CreateMany(ctx context.Context, posts []*model.BlogPost) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.insert(posts)
}

// Update replaces the mutable fields of an existing post.
func (r *Repository) Update(ctx context.Context, post *model.BlogPost) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.posts[post.ID]
	if !ok {
		return repository.ErrPostNotFound
	}

	existing.Author = post.Author
	existing.Title = post.Title
	existing.Content = post.Content
	return nil
}

// Delete removes a post.
func (r *Repository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.posts[id]; !ok {
		return repository.ErrPostNotFound
	}
	delete(r.posts, id)
	return nil
}

// Count returns the number of stored posts.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.posts)), nil
}

// DeleteAll drops every post.
func (r *Repository) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.posts = make(map[string]*model.BlogPost)
	return nil
}

// insert stores posts only when none of their IDs are taken.
// Callers' posts are left untouched on error.
func (r *Repository) insert(posts []*model.BlogPost) error {
	now := time.Now().UTC()
	batch := make([]*model.BlogPost, 0, len(posts))
	seen := make(map[string]bool, len(posts))

	for _, post := range posts {
		p := post.Clone()
		if p.ID == "" {
			p.ID = ulid.Make().String()
		}
		if p.Created.IsZero() {
			p.Created = now
		}
		if _, ok := r.posts[p.ID]; ok || seen[p.ID] {
			return fmt.Errorf("post %s: %w", p.ID, repository.ErrPostExists)
		}
		seen[p.ID] = true
		batch = append(batch, p)
	}

	for i, p := range batch {
		r.posts[p.ID] = p
		posts[i].ID = p.ID
		posts[i].Created = p.Created
	}
	return nil
}
