package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/bcnelson/yatube/internal/auth"
	"github.com/bcnelson/yatube/internal/service"
	"github.com/go-chi/chi/v5"
)

//go:embed templates
var content embed.FS

// OIDCComponents holds the OIDC pieces the web UI needs when OIDC login is enabled.
type OIDCComponents struct {
	Provider   *auth.OIDCProvider
	StateStore *auth.StateStore
}

// Server holds dependencies for web handlers.
type Server struct {
	posts     *service.PostService
	accounts  *service.AccountService
	sessions  *auth.SessionManager
	oidc      *OIDCComponents
	templates map[string]*template.Template
	funcMap   template.FuncMap
}

// NewRouter creates a new web router with all routes configured.
// oidc may be nil, which disables the OIDC login routes.
func NewRouter(posts *service.PostService, accounts *service.AccountService, sessions *auth.SessionManager, oidc *OIDCComponents) http.Handler {
	s := &Server{
		posts:    posts,
		accounts: accounts,
		sessions: sessions,
		oidc:     oidc,
	}

	// Parse all templates
	s.templates = s.parseTemplates()

	r := chi.NewRouter()
	r.Use(s.loadSession)
	r.NotFound(s.handleNotFound)

	// Feeds and posts
	r.Get("/", s.handleIndex)
	r.Get("/group/{slug}/", s.handleGroupFeed)
	r.Get("/profile/{username}/", s.handleProfile)
	r.Get("/posts/{id}/", s.handlePostDetail)

	// Writing requires a signed-in user
	r.Group(func(r chi.Router) {
		r.Use(s.requireLogin)

		r.Get("/create/", s.handlePostCreateForm)
		r.Post("/create/", s.handlePostCreate)
		r.Get("/posts/{id}/edit/", s.handlePostEditForm)
		r.Post("/posts/{id}/edit/", s.handlePostEdit)
	})

	// Accounts
	r.Get("/auth/signup/", s.handleSignupPage)
	r.Post("/auth/signup/", s.handleSignup)
	r.Get("/auth/login/", s.handleLoginPage)
	r.Post("/auth/login/", s.handleLogin)
	r.Get("/auth/logout/", s.handleLogout)
	r.Get("/auth/oidc/login", s.handleOIDCLogin)
	r.Get("/auth/oidc/callback", s.handleOIDCCallback)

	// Static pages
	r.Get("/about/author/", s.handleStatic("about_author", "About the author"))
	r.Get("/about/tech/", s.handleStatic("about_tech", "Technologies"))

	return r
}

// parseTemplates parses all templates with custom functions.
func (s *Server) parseTemplates() map[string]*template.Template {
	s.funcMap = template.FuncMap{
		"date":          formatDate,
		"truncateWords": truncateWords,
		"pathEscape":    url.PathEscape,
		"deref":         deref,
		"dict":          dict,
	}

	templates := make(map[string]*template.Template)

	// Read base template and components
	baseContent, _ := content.ReadFile("templates/base.html")
	componentFiles, _ := fs.Glob(content, "templates/components/*.html")

	// Combine base with components
	var base strings.Builder
	base.Write(baseContent)
	for _, path := range componentFiles {
		component, _ := content.ReadFile(path)
		base.Write(component)
	}

	// Parse each page template separately with the base
	pageFiles, _ := fs.Glob(content, "templates/pages/*.html")
	for _, pagePath := range pageFiles {
		pageName := filepath.Base(pagePath)
		pageName = strings.TrimSuffix(pageName, ".html")

		pageContent, _ := content.ReadFile(pagePath)

		// Create new template for this page
		tmpl := template.New(pageName).Funcs(s.funcMap)
		tmpl, err := tmpl.Parse(base.String() + string(pageContent))
		if err != nil {
			panic("failed to parse template " + pageName + ": " + err.Error())
		}

		templates[pageName] = tmpl
	}

	return templates
}

// formatDate renders a publication date the way feeds show it.
func formatDate(t time.Time) string {
	return t.Format("2 January 2006")
}

// truncateWords shortens s to at most n words, marking the cut with an ellipsis.
func truncateWords(n int, s string) string {
	words := strings.Fields(s)
	if len(words) <= n {
		return s
	}
	return strings.Join(words[:n], " ") + " …"
}

// deref returns the value of an optional string, or "".
func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// dict creates a map from key-value pairs for use in templates.
func dict(values ...any) map[string]any {
	if len(values)%2 != 0 {
		return nil
	}
	m := make(map[string]any, len(values)/2)
	for i := 0; i < len(values); i += 2 {
		key, ok := values[i].(string)
		if !ok {
			continue
		}
		m[key] = values[i+1]
	}
	return m
}

// PageData holds common data passed to all page templates.
type PageData struct {
	Title   string
	Active  string // Current nav item
	User    service.Requester
	Flash   *FlashMessage
	Content any
}

// FlashMessage represents a flash message.
type FlashMessage struct {
	Type    string // "success", "error", "info"
	Message string
}
