package domain

import "time"

// Group is a named category that posts may belong to.
// Groups are created by an administrator; posts only reference them.
type Group struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Slug        string    `json:"slug" db:"slug"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
