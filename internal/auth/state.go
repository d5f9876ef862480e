package auth

import (
	"fmt"
	"net/http"
	"time"
)

const (
	// StateCookieName is the name of the state cookie.
	StateCookieName = "yatube_oidc_state"
	// StateCookieMaxAge is how long the state cookie is valid (5 minutes).
	StateCookieMaxAge = 5 * 60
)

// StateStore manages state and nonce for OIDC CSRF protection.
type StateStore struct {
	codec  *codec
	secure bool
}

// StateData holds the state and nonce for an OIDC request, plus the local
// path to return to once the login completes.
type StateData struct {
	State     string    `json:"state"`
	Nonce     string    `json:"nonce"`
	Next      string    `json:"next,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewStateStore creates a new state store with encryption.
func NewStateStore(key []byte, secure bool) (*StateStore, error) {
	c, err := newCodec(key)
	if err != nil {
		return nil, fmt.Errorf("state store: %w", err)
	}

	return &StateStore{
		codec:  c,
		secure: secure,
	}, nil
}

// Generate creates a new state/nonce pair and stores it in an encrypted cookie.
func (ss *StateStore) Generate(w http.ResponseWriter, next string) (*StateData, error) {
	state, err := GenerateSecureString(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate state: %w", err)
	}

	nonce, err := GenerateSecureString(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	data := &StateData{
		State:     state,
		Nonce:     nonce,
		Next:      next,
		ExpiresAt: time.Now().Add(StateCookieMaxAge * time.Second),
	}

	encoded, err := ss.codec.seal(data)
	if err != nil {
		return nil, err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     StateCookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   StateCookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   ss.secure,
	})

	return data, nil
}

// Validate retrieves and validates the state from the cookie.
func (ss *StateStore) Validate(r *http.Request, state string) (*StateData, error) {
	cookie, err := r.Cookie(StateCookieName)
	if err != nil {
		return nil, fmt.Errorf("state cookie not found: %w", err)
	}

	var data StateData
	if err := ss.codec.open(cookie.Value, &data); err != nil {
		return nil, err
	}

	// Check expiration
	if time.Now().After(data.ExpiresAt) {
		return nil, fmt.Errorf("state expired")
	}

	// Validate state matches (constant-time comparison)
	if !ConstantTimeCompare(data.State, state) {
		return nil, fmt.Errorf("state mismatch")
	}

	return &data, nil
}

// Clear clears the state cookie.
func (ss *StateStore) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     StateCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   ss.secure,
	})
}
