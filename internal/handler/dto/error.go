package dto

import (
	"net/http"

	"github.com/go-chi/render"
)

// ErrResponse renders an API error as {"error": ..., "code": ...}.
type ErrResponse struct {
	Err            error `json:"-"`
	HTTPStatusCode int   `json:"-"`

	ErrorText string `json:"error"`
	Code      string `json:"code"`
}

// Render implements render.Renderer.
func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

// NewErrResponse builds an error payload.
func NewErrResponse(status int, code, message string) *ErrResponse {
	return &ErrResponse{
		HTTPStatusCode: status,
		ErrorText:      message,
		Code:           code,
	}
}

// ErrInvalidJSON reports a body that could not be decoded.
func ErrInvalidJSON(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		ErrorText:      "Invalid request body",
		Code:           "INVALID_JSON",
	}
}

// ErrMissingField reports an absent required field.
func ErrMissingField(field string) render.Renderer {
	return NewErrResponse(http.StatusBadRequest, "MISSING_FIELD", "Missing `"+field+"` in request body")
}

// ErrEmptyField reports a field that is present but blank.
func ErrEmptyField(field string) render.Renderer {
	return NewErrResponse(http.StatusBadRequest, "EMPTY_FIELD", "`"+field+"` must not be empty")
}

// ErrInternal hides err from the client.
func ErrInternal(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusInternalServerError,
		ErrorText:      "An internal error occurred",
		Code:           "INTERNAL_ERROR",
	}
}

// Fixed error payloads.
var (
	ErrIDMismatch       = NewErrResponse(http.StatusBadRequest, "ID_MISMATCH", "Request path id and request body id values must match")
	ErrPostNotFound     = NewErrResponse(http.StatusNotFound, "POST_NOT_FOUND", "Post not found")
	ErrNotFound         = NewErrResponse(http.StatusNotFound, "NOT_FOUND", "Not Found")
	ErrMethodNotAllowed = NewErrResponse(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method Not Allowed")
	ErrBodyTooLarge     = NewErrResponse(http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large")
)
