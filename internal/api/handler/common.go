package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/bcnelson/yatube/internal/domain"
	"github.com/bcnelson/yatube/internal/paginator"
)

// respondJSON writes a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError writes a JSON error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, &domain.APIError{
		Code:    status,
		Message: message,
	})
}

// handleError converts domain errors to HTTP errors.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrAlreadyExists):
		respondError(w, http.StatusConflict, "already exists")
	case errors.Is(err, domain.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, "invalid input")
	case errors.Is(err, domain.ErrUnauthorized):
		respondError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		respondError(w, http.StatusForbidden, "forbidden")
	default:
		log.Printf("API %s %s failed: %v", r.Method, r.URL.Path, err)
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// PageResponse is one page of a paginated listing.
type PageResponse[T any] struct {
	Count       int  `json:"count"`
	NumPages    int  `json:"num_pages"`
	Page        int  `json:"page"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
	Results     []T  `json:"results"`
}

// newPageResponse converts a paginator page to its JSON form.
func newPageResponse[T any](p *paginator.Page[T]) *PageResponse[T] {
	return &PageResponse[T]{
		Count:       p.Count,
		NumPages:    p.NumPages,
		Page:        p.Number,
		HasNext:     p.HasNext(),
		HasPrevious: p.HasPrevious(),
		Results:     p.Items,
	}
}

// NotFound responds to unknown API paths.
func NotFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusNotFound, "not found")
}
