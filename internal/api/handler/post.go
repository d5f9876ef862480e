package handler

import (
	"net/http"

	"github.com/bcnelson/yatube/internal/domain"
	"github.com/bcnelson/yatube/internal/service"
	"github.com/go-chi/chi/v5"
)

// PostHandler handles read-only post endpoints.
type PostHandler struct {
	posts *service.PostService
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(posts *service.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// PostDetailResponse is a post with its author's public profile.
type PostDetailResponse struct {
	*domain.Post
	Author          *domain.User `json:"author_profile"`
	AuthorPostCount int          `json:"author_post_count"`
}

// List returns a page of all posts.
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	feed, err := h.posts.Index(r.Context(), r.URL.Query().Get("page"))
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondCachedJSON(w, r, newPageResponse(feed.Page))
}

// Get returns a post by id.
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.posts.Detail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondCachedJSON(w, r, &PostDetailResponse{
		Post:            detail.Post,
		Author:          detail.Author,
		AuthorPostCount: detail.AuthorPostCount,
	})
}

// ListByAuthor returns a page of the posts written by a user.
func (h *PostHandler) ListByAuthor(w http.ResponseWriter, r *http.Request) {
	feed, err := h.posts.ProfileFeed(r.Context(), chi.URLParam(r, "username"), r.URL.Query().Get("page"))
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondCachedJSON(w, r, newPageResponse(feed.Page))
}
