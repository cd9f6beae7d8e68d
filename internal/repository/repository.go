// Package repository defines the storage contract for blog posts.
// Backends live in subpackages; use the storage package to open one by URL.
package repository

import (
	"context"
	"errors"

	"github.com/inkwell/inkwell/internal/model"
)

// Common errors for post repository operations.
var (
	ErrPostNotFound = errors.New("post not found")
	ErrPostExists   = errors.New("post already exists")
)

// PostRepository provides persistence for blog posts.
type PostRepository interface {
	// List returns every stored post, oldest first.
	List(ctx context.Context) ([]*model.BlogPost, error)

	// Get returns the post with the given ID or ErrPostNotFound.
	Get(ctx context.Context, id string) (*model.BlogPost, error)

	// Create stores a post. ID and Created are assigned when empty and
	// written back only on success. A stored ID yields ErrPostExists.
	Create(ctx context.Context, post *model.BlogPost) error

	// CreateMany stores posts in bulk, all or none.
	CreateMany(ctx context.Context, posts []*model.BlogPost) error

	// Update replaces the author, title and content of an existing post.
	Update(ctx context.Context, post *model.BlogPost) error

	// Delete removes a post or returns ErrPostNotFound.
	Delete(ctx context.Context, id string) error

	// Count returns the number of stored posts.
	Count(ctx context.Context) (int64, error)

	// DeleteAll removes every post. Used for test teardown.
	DeleteAll(ctx context.Context) error

	// Ping checks backend connectivity.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error

	// Name identifies the backend in logs and health checks.
	Name() string
}
