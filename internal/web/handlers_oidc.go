package web

import (
	"log"
	"net/http"
	"net/url"

	"github.com/bcnelson/yatube/internal/service"
)

// loginError sends the client back to the login page with an error message.
func loginError(w http.ResponseWriter, r *http.Request, msg string) {
	http.Redirect(w, r, LoginPath+"?error="+url.QueryEscape(msg), http.StatusSeeOther)
}

// handleOIDCLogin initiates the OIDC login flow.
func (s *Server) handleOIDCLogin(w http.ResponseWriter, r *http.Request) {
	if s.oidc == nil {
		s.handleNotFound(w, r)
		return
	}

	// Generate state and nonce
	stateData, err := s.oidc.StateStore.Generate(w, safeNext(r.URL.Query().Get("next")))
	if err != nil {
		log.Printf("Failed to generate OIDC state: %v", err)
		loginError(w, r, "Failed to initiate login")
		return
	}

	// Redirect to OIDC provider
	authURL := s.oidc.Provider.AuthCodeURL(stateData.State, stateData.Nonce)
	http.Redirect(w, r, authURL, http.StatusSeeOther)
}

// handleOIDCCallback handles the OIDC callback after authentication.
func (s *Server) handleOIDCCallback(w http.ResponseWriter, r *http.Request) {
	if s.oidc == nil {
		s.handleNotFound(w, r)
		return
	}

	ctx := r.Context()

	// Check for error from provider
	if errParam := r.URL.Query().Get("error"); errParam != "" {
		errDesc := r.URL.Query().Get("error_description")
		if errDesc == "" {
			errDesc = errParam
		}
		log.Printf("OIDC provider returned error: %s - %s", errParam, errDesc)
		loginError(w, r, errDesc)
		return
	}

	// Get authorization code
	code := r.URL.Query().Get("code")
	if code == "" {
		loginError(w, r, "No authorization code received")
		return
	}

	// Validate state
	stateData, err := s.oidc.StateStore.Validate(r, r.URL.Query().Get("state"))
	if err != nil {
		log.Printf("OIDC state validation failed: %v", err)
		loginError(w, r, "Invalid state parameter")
		return
	}

	// Clear state cookie
	s.oidc.StateStore.Clear(w)

	// Exchange code for tokens
	claims, err := s.oidc.Provider.Exchange(ctx, code, stateData.Nonce)
	if err != nil {
		log.Printf("OIDC token exchange failed: %v", err)
		loginError(w, r, "Failed to complete authentication")
		return
	}

	// Validate claims (domain restriction, etc.)
	if err := s.oidc.Provider.ValidateClaims(claims); err != nil {
		log.Printf("OIDC claims validation failed: %v", err)
		loginError(w, r, err.Error())
		return
	}

	user, err := s.accounts.FindOrCreateExternal(ctx, service.ExternalIdentity{
		Issuer:       claims.Issuer,
		Subject:      claims.Subject,
		UsernameHint: claims.UsernameHint(),
		Email:        claims.Email,
		FullName:     claims.Name,
	})
	if err != nil {
		log.Printf("Failed to resolve OIDC user %s: %v", claims.Email, err)
		loginError(w, r, "Failed to sign in")
		return
	}

	if err := s.sessions.Create(w, user); err != nil {
		log.Printf("Failed to create session: %v", err)
		loginError(w, r, "Failed to create session")
		return
	}

	http.Redirect(w, r, safeNext(stateData.Next), http.StatusSeeOther)
}
