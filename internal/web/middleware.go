package web

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"

	"github.com/bcnelson/yatube/internal/domain"
	"github.com/bcnelson/yatube/internal/service"
)

// LoginPath is where anonymous writers are sent to sign in.
const LoginPath = "/auth/login/"

type contextKey string

const requesterContextKey contextKey = "requester"

// loadSession resolves the requester from the session cookie. Requests
// without a valid session continue as anonymous.
func (s *Server) loadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := service.Anonymous

		if session, err := s.sessions.Get(r); err == nil {
			user, err := s.accounts.User(r.Context(), session.UserID)
			switch {
			case err == nil:
				req = service.Requester{UserID: user.ID, Username: user.Username}
			case errors.Is(err, domain.ErrNotFound):
				// Account is gone
				s.sessions.Clear(w)
			default:
				log.Printf("Failed to load session user %s: %v", session.UserID, err)
			}
		}

		next.ServeHTTP(w, r.WithContext(withRequester(r.Context(), req)))
	})
}

// requireLogin redirects anonymous requesters to the login page, carrying
// the requested path in the next parameter.
func (s *Server) requireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !getRequester(r.Context()).Authenticated() {
			redirectToLogin(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// redirectToLogin sends the client to the login page with next set to the current path.
func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	q := url.Values{"next": {r.URL.RequestURI()}}
	http.Redirect(w, r, LoginPath+"?"+q.Encode(), http.StatusSeeOther)
}

func withRequester(ctx context.Context, req service.Requester) context.Context {
	return context.WithValue(ctx, requesterContextKey, req)
}

// getRequester retrieves the requester from context.
func getRequester(ctx context.Context) service.Requester {
	req, _ := ctx.Value(requesterContextKey).(service.Requester)
	return req
}
