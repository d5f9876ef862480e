package auth

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"time"

	"github.com/bcnelson/yatube/internal/domain"
)

const (
	// SessionCookieName is the name of the login session cookie.
	SessionCookieName = "yatube_session"
)

// SessionManager handles encrypted session cookies.
type SessionManager struct {
	codec    *codec
	duration time.Duration
	secure   bool // Use Secure flag on cookies (for HTTPS)
}

// Session represents the session data stored in the encrypted cookie.
type Session struct {
	UserID    string    `json:"uid"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// NewSessionManager creates a new session manager with the given encryption key.
// The key must be exactly 32 bytes for AES-256.
func NewSessionManager(key []byte, duration time.Duration, secure bool) (*SessionManager, error) {
	c, err := newCodec(key)
	if err != nil {
		return nil, fmt.Errorf("session manager: %w", err)
	}

	return &SessionManager{
		codec:    c,
		duration: duration,
		secure:   secure,
	}, nil
}

// Create signs the user in by setting an encrypted session cookie.
func (sm *SessionManager) Create(w http.ResponseWriter, user *domain.User) error {
	now := time.Now()
	session := &Session{
		UserID:    user.ID,
		Username:  user.Username,
		CreatedAt: now,
		ExpiresAt: now.Add(sm.duration),
	}

	encoded, err := sm.codec.seal(session)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   int(sm.duration.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   sm.secure,
	})

	return nil
}

// Get retrieves and validates the session from the cookie.
func (sm *SessionManager) Get(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return nil, fmt.Errorf("session cookie not found: %w", err)
	}

	var session Session
	if err := sm.codec.open(cookie.Value, &session); err != nil {
		return nil, err
	}

	// Check expiration
	if time.Now().After(session.ExpiresAt) {
		return nil, fmt.Errorf("session expired")
	}

	return &session, nil
}

// Clear clears the session cookie.
func (sm *SessionManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   sm.secure,
	})
}

// ConstantTimeCompare performs a constant-time comparison of two strings.
func ConstantTimeCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
