package api

import (
	"net/http"

	"github.com/bcnelson/yatube/internal/api/handler"
	"github.com/bcnelson/yatube/internal/api/middleware"
	"github.com/bcnelson/yatube/internal/auth"
	"github.com/bcnelson/yatube/internal/config"
	"github.com/bcnelson/yatube/internal/service"
	"github.com/bcnelson/yatube/internal/web"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates a new HTTP router with all routes configured.
// oidcComponents may be nil when OIDC login is disabled.
func NewRouter(
	posts *service.PostService,
	accounts *service.AccountService,
	sessions *auth.SessionManager,
	security config.SecurityConfig,
	oidcComponents *web.OIDCComponents,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.SecureHeaders(security))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Read-only JSON API
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.ContentType)
		r.NotFound(handler.NotFound)

		postHandler := handler.NewPostHandler(posts)
		r.Get("/posts", postHandler.List)
		r.Get("/posts/{id}", postHandler.Get)
		r.Get("/profiles/{username}/posts", postHandler.ListByAuthor)

		groupHandler := handler.NewGroupHandler(posts)
		r.Get("/groups", groupHandler.List)
		r.Get("/groups/{slug}/posts", groupHandler.ListPosts)
	})

	// Mount web UI (no Content-Type middleware - serves HTML)
	r.Mount("/", web.NewRouter(posts, accounts, sessions, oidcComponents))

	return r
}
