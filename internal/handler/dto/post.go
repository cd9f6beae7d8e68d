// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/inkwell/inkwell/internal/model"
)

// PostResponse is the public representation of a blog post.
type PostResponse struct {
	ID      string `json:"id"`
	Author  string `json:"author"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Created string `json:"created"`
}

// NewPostResponse converts a BlogPost model to its API form.
func NewPostResponse(post *model.BlogPost) *PostResponse {
	return &PostResponse{
		ID:      post.ID,
		Author:  post.AuthorName(),
		Title:   post.Title,
		Content: post.Content,
		Created: post.Created.UTC().Format(time.RFC3339Nano),
	}
}

// Render implements render.Renderer.
func (p *PostResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// NewPostListResponse converts posts for render.RenderList.
func NewPostListResponse(posts []*model.BlogPost) []render.Renderer {
	list := make([]render.Renderer, 0, len(posts))
	for _, post := range posts {
		list = append(list, NewPostResponse(post))
	}
	return list
}

// CreatePostRequest is the body of POST /posts.
// Pointer fields distinguish absent keys from empty values.
type CreatePostRequest struct {
	Title   *string       `json:"title"`
	Content *string       `json:"content"`
	Author  *model.Author `json:"author"`
}

// Bind implements render.Binder.
func (c *CreatePostRequest) Bind(r *http.Request) error {
	return nil
}

// UpdatePostRequest is the body of PUT /posts/{id}.
type UpdatePostRequest struct {
	ID      string        `json:"id"`
	Title   *string       `json:"title"`
	Content *string       `json:"content"`
	Author  *model.Author `json:"author"`
}

// Bind implements render.Binder.
func (u *UpdatePostRequest) Bind(r *http.Request) error {
	return nil
}
