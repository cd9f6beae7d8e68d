// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/inkwell/inkwell/internal/metrics"
	"github.com/inkwell/inkwell/internal/model"
	"github.com/inkwell/inkwell/internal/repository"
)

// Service errors.
var (
	ErrPostNotFound = errors.New("post not found")
	ErrMissingField = errors.New("missing required field")
	ErrEmptyField   = errors.New("field must not be empty")
	ErrIDMismatch   = errors.New("path id and body id do not match")
)

// Required fields of a new post, in the order they are checked.
const (
	FieldTitle   = "title"
	FieldContent = "content"
	FieldAuthor  = "author"
)

// FieldError reports a problem with one request field.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// PostService handles blog post business logic.
type PostService struct {
	repo    repository.PostRepository
	metrics metrics.Recorder
}

// NewPostService creates a new PostService.
func NewPostService(repo repository.PostRepository, recorder metrics.Recorder) *PostService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &PostService{
		repo:    repo,
		metrics: recorder,
	}
}

// CreatePostInput defines input for creating a post.
// Nil fields were absent from the request.
type CreatePostInput struct {
	Title   *string
	Content *string
	Author  *model.Author
}

// UpdatePostInput defines input for updating a post.
type UpdatePostInput struct {
	PathID  string
	BodyID  string
	Title   *string
	Content *string
	Author  *model.Author
}

// ListPosts returns every post, oldest first.
func (s *PostService) ListPosts(ctx context.Context) ([]*model.BlogPost, error) {
	start := time.Now()
	posts, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	s.metrics.ObserveListDuration(time.Since(start))
	s.metrics.IncPostsListed()

	return posts, nil
}

// GetPost retrieves a post by ID.
func (s *PostService) GetPost(ctx context.Context, id string) (*model.BlogPost, error) {
	post, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

// CreatePost validates input and stores a new post.
func (s *PostService) CreatePost(ctx context.Context, input CreatePostInput) (*model.BlogPost, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	post := &model.BlogPost{
		Author:  *input.Author,
		Title:   *input.Title,
		Content: *input.Content,
	}

	if err := s.repo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	s.metrics.IncPostCreated()

	return post, nil
}

// UpdatePost changes the title, content and author of an existing post.
// Fields absent from the input keep their stored values.
func (s *PostService) UpdatePost(ctx context.Context, input UpdatePostInput) (*model.BlogPost, error) {
	if input.PathID == "" || input.BodyID == "" || input.PathID != input.BodyID {
		return nil, ErrIDMismatch
	}

	update := model.PostUpdate{
		Title:   input.Title,
		Content: input.Content,
		Author:  input.Author,
	}
	if err := validateUpdate(update); err != nil {
		return nil, err
	}

	post, err := s.GetPost(ctx, input.PathID)
	if err != nil {
		return nil, err
	}

	if update.IsEmpty() {
		return post, nil
	}

	update.Apply(post)

	if err := s.repo.Update(ctx, post); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	s.metrics.IncPostUpdated()

	return post, nil
}

// DeletePost removes a post.
func (s *PostService) DeletePost(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return ErrPostNotFound
		}
		return fmt.Errorf("failed to delete post: %w", err)
	}

	s.metrics.IncPostDeleted()

	return nil
}

// CountPosts returns the number of stored posts.
func (s *PostService) CountPosts(ctx context.Context) (int64, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return count, nil
}

func validateCreate(input CreatePostInput) error {
	if input.Title == nil {
		return &FieldError{Field: FieldTitle, Err: ErrMissingField}
	}
	if input.Content == nil {
		return &FieldError{Field: FieldContent, Err: ErrMissingField}
	}
	if input.Author == nil {
		return &FieldError{Field: FieldAuthor, Err: ErrMissingField}
	}
	return validateUpdate(model.PostUpdate{
		Title:   input.Title,
		Content: input.Content,
		Author:  input.Author,
	})
}

func validateUpdate(update model.PostUpdate) error {
	if update.Title != nil && strings.TrimSpace(*update.Title) == "" {
		return &FieldError{Field: FieldTitle, Err: ErrEmptyField}
	}
	if update.Content != nil && strings.TrimSpace(*update.Content) == "" {
		return &FieldError{Field: FieldContent, Err: ErrEmptyField}
	}
	if update.Author != nil && update.Author.IsZero() {
		return &FieldError{Field: FieldAuthor, Err: ErrEmptyField}
	}
	return nil
}
