package web

import (
	"bytes"
	"errors"
	"log"
	"net/http"

	"github.com/bcnelson/yatube/internal/domain"
	"github.com/bcnelson/yatube/internal/service"
	"github.com/bcnelson/yatube/internal/validation"
	"github.com/go-chi/chi/v5"
)

// FeedData holds data for the index, group and profile pages.
type FeedData struct {
	Feed *service.Feed
}

// handleIndex renders the feed of all posts.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	feed, err := s.posts.Index(r.Context(), r.URL.Query().Get("page"))
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.render(w, r, http.StatusOK, "index", PageData{
		Title:   "Latest posts",
		Active:  "index",
		Content: FeedData{Feed: feed},
	})
}

// handleGroupFeed renders the feed of one group.
func (s *Server) handleGroupFeed(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	feed, err := s.posts.GroupFeed(r.Context(), slug, r.URL.Query().Get("page"))
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.render(w, r, http.StatusOK, "group_list", PageData{
		Title:   "Posts in " + feed.Group.Title,
		Content: FeedData{Feed: feed},
	})
}

// handleProfile renders the feed of one author.
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	feed, err := s.posts.ProfileFeed(r.Context(), username, r.URL.Query().Get("page"))
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.render(w, r, http.StatusOK, "profile", PageData{
		Title:   "Posts by " + feed.Author.DisplayName(),
		Content: FeedData{Feed: feed},
	})
}

// PostDetailData holds data for the post detail page.
type PostDetailData struct {
	*service.PostDetail
	CanEdit bool
}

// handlePostDetail renders a single post.
func (s *Server) handlePostDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := s.posts.Detail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	req := getRequester(r.Context())
	s.render(w, r, http.StatusOK, "post_detail", PageData{
		Title: truncateWords(6, detail.Post.Text),
		Content: PostDetailData{
			PostDetail: detail,
			CanEdit:    req.UserID == detail.Post.AuthorID,
		},
	})
}

// PostFormData holds data for the post create/edit form.
type PostFormData struct {
	IsEdit bool
	PostID string
	Form   validation.PostForm
	Errors map[string][]string
	Groups []*domain.Group
}

// renderPostForm renders the create or edit form with the current groups.
func (s *Server) renderPostForm(w http.ResponseWriter, r *http.Request, data PostFormData) {
	groups, err := s.posts.Groups(r.Context())
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	data.Groups = groups

	title := "New post"
	active := "create"
	if data.IsEdit {
		title = "Edit post"
		active = ""
	}
	s.render(w, r, http.StatusOK, "create_post", PageData{
		Title:   title,
		Active:  active,
		Content: data,
	})
}

// postFormFromRequest reads the submitted post fields.
func postFormFromRequest(r *http.Request) validation.PostForm {
	return validation.PostForm{
		Text:  r.PostFormValue("text"),
		Group: r.PostFormValue("group"),
	}
}

// handlePostCreateForm renders an empty post form.
func (s *Server) handlePostCreateForm(w http.ResponseWriter, r *http.Request) {
	s.renderPostForm(w, r, PostFormData{})
}

// handlePostCreate publishes a new post.
func (s *Server) handlePostCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Invalid form data")
		return
	}

	req := getRequester(r.Context())
	form := postFormFromRequest(r)

	_, verrs, err := s.posts.CreatePost(r.Context(), req, form)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if verrs.HasErrors() {
		s.renderPostForm(w, r, PostFormData{Form: form, Errors: verrs.ByField()})
		return
	}

	http.Redirect(w, r, profilePath(req.Username), http.StatusSeeOther)
}

// handlePostEditForm renders the edit form pre-filled with the post.
func (s *Server) handlePostEditForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	post, err := s.posts.EditablePost(r.Context(), getRequester(r.Context()), id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	form := validation.PostForm{Text: post.Text}
	if post.HasGroup() {
		form.Group = *post.GroupID
	}
	s.renderPostForm(w, r, PostFormData{IsEdit: true, PostID: post.ID, Form: form})
}

// handlePostEdit applies an edit to the post.
func (s *Server) handlePostEdit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Invalid form data")
		return
	}

	id := chi.URLParam(r, "id")
	form := postFormFromRequest(r)

	post, verrs, err := s.posts.EditPost(r.Context(), getRequester(r.Context()), id, form)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if verrs.HasErrors() {
		s.renderPostForm(w, r, PostFormData{IsEdit: true, PostID: post.ID, Form: form, Errors: verrs.ByField()})
		return
	}

	http.Redirect(w, r, postPath(post.ID), http.StatusSeeOther)
}

// handleStatic returns a handler for a page without data.
func (s *Server) handleStatic(page, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, http.StatusOK, page, PageData{Title: title, Active: page})
	}
}

// handleNotFound renders the 404 page for unknown paths.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.renderError(w, r, http.StatusNotFound, "The page you requested does not exist.")
}

// handleError converts domain errors to responses.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.handleNotFound(w, r)
	case errors.Is(err, domain.ErrUnauthorized):
		redirectToLogin(w, r)
	case errors.Is(err, domain.ErrForbidden):
		// Only authors edit; everyone else goes back to the post
		http.Redirect(w, r, postPath(chi.URLParam(r, "id")), http.StatusSeeOther)
	default:
		log.Printf("Request %s %s failed: %v", r.Method, r.URL.Path, err)
		s.renderError(w, r, http.StatusInternalServerError, "Something went wrong. Please try again later.")
	}
}

// ErrorData holds data for the error page.
type ErrorData struct {
	Status  int
	Message string
}

// renderError renders the error page with the given status.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	s.render(w, r, status, "error", PageData{
		Title:   http.StatusText(status),
		Content: ErrorData{Status: status, Message: message},
	})
}

// render renders a page template inside the base layout.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, data PageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	tmpl, ok := s.templates[page]
	if !ok {
		http.Error(w, "Template not found: "+page, http.StatusInternalServerError)
		return
	}

	data.User = getRequester(r.Context())

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		log.Printf("Template %s failed: %v", page, err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	buf.WriteTo(w)
}
