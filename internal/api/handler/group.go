package handler

import (
	"net/http"

	"github.com/bcnelson/yatube/internal/service"
	"github.com/go-chi/chi/v5"
)

// GroupHandler handles read-only group endpoints.
type GroupHandler struct {
	posts *service.PostService
}

// NewGroupHandler creates a new GroupHandler.
func NewGroupHandler(posts *service.PostService) *GroupHandler {
	return &GroupHandler{posts: posts}
}

// List returns all groups.
func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	groups, err := h.posts.Groups(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondCachedJSON(w, r, groups)
}

// ListPosts returns a page of the posts in a group.
func (h *GroupHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	feed, err := h.posts.GroupFeed(r.Context(), chi.URLParam(r, "slug"), r.URL.Query().Get("page"))
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondCachedJSON(w, r, newPageResponse(feed.Page))
}
