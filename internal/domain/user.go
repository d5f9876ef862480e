package domain

import "time"

// User is an account that can author posts.
type User struct {
	ID           string    `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	FullName     string    `json:"full_name" db:"full_name"`
	Email        string    `json:"-" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"` // empty for OIDC-only accounts
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	// Set together for accounts created through an OIDC provider.
	OIDCIssuer  *string `json:"-" db:"oidc_issuer"`
	OIDCSubject *string `json:"-" db:"oidc_subject"`
}

// DisplayName returns the full name, falling back to the username.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}
