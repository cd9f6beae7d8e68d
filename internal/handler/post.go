package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/inkwell/inkwell/internal/handler/dto"
	"github.com/inkwell/inkwell/internal/service"
)

// PostHandler handles HTTP requests for blog posts.
type PostHandler struct {
	svc    *service.PostService
	logger *slog.Logger
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(svc *service.PostService, logger *slog.Logger) *PostHandler {
	return &PostHandler{
		svc:    svc,
		logger: logger,
	}
}

// Register adds the post endpoints to r, which is mounted at /posts.
func (h *PostHandler) Register(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// List handles GET /posts.
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.svc.ListPosts(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	if err := render.RenderList(w, r, dto.NewPostListResponse(posts)); err != nil {
		h.handleServiceError(w, r, err)
	}
}

// Get handles GET /posts/{id}.
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.svc.GetPost(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	if err := render.Render(w, r, dto.NewPostResponse(post)); err != nil {
		h.handleServiceError(w, r, err)
	}
}

// Create handles POST /posts.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePostRequest
	if err := render.Bind(r, &req); err != nil {
		h.handleBindError(w, r, err)
		return
	}

	post, err := h.svc.CreatePost(r.Context(), service.CreatePostInput{
		Title:   req.Title,
		Content: req.Content,
		Author:  req.Author,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("post_created", "post_id", post.ID)

	render.Status(r, http.StatusCreated)
	if err := render.Render(w, r, dto.NewPostResponse(post)); err != nil {
		h.logger.Error("render_failed", "error", err)
	}
}

// Update handles PUT /posts/{id}.
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdatePostRequest
	if err := render.Bind(r, &req); err != nil {
		h.handleBindError(w, r, err)
		return
	}

	post, err := h.svc.UpdatePost(r.Context(), service.UpdatePostInput{
		PathID:  chi.URLParam(r, "id"),
		BodyID:  req.ID,
		Title:   req.Title,
		Content: req.Content,
		Author:  req.Author,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("post_updated", "post_id", post.ID)

	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /posts/{id}.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeletePost(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("post_deleted", "post_id", id)

	w.WriteHeader(http.StatusNoContent)
}

func (h *PostHandler) handleBindError(w http.ResponseWriter, r *http.Request, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		_ = render.Render(w, r, dto.ErrBodyTooLarge)
		return
	}
	_ = render.Render(w, r, dto.ErrInvalidJSON(err))
}

// handleServiceError maps service errors to HTTP responses.
func (h *PostHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var fieldErr *service.FieldError

	switch {
	case errors.Is(err, service.ErrPostNotFound):
		_ = render.Render(w, r, dto.ErrPostNotFound)
	case errors.Is(err, service.ErrIDMismatch):
		_ = render.Render(w, r, dto.ErrIDMismatch)
	case errors.As(err, &fieldErr) && errors.Is(err, service.ErrMissingField):
		_ = render.Render(w, r, dto.ErrMissingField(fieldErr.Field))
	case errors.As(err, &fieldErr) && errors.Is(err, service.ErrEmptyField):
		_ = render.Render(w, r, dto.ErrEmptyField(fieldErr.Field))
	default:
		h.logger.Error("internal_error", "error", err)
		_ = render.Render(w, r, dto.ErrInternal(err))
	}
}
