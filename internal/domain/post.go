package domain

import "time"

// Post is a single authored text entry, optionally tagged with a group.
//
// The Author* and Group* read fields are filled by store lookups and are
// ignored on writes.
type Post struct {
	ID       string    `json:"id" db:"id"`
	Text     string    `json:"text" db:"text"`
	PubDate  time.Time `json:"pub_date" db:"pub_date"`
	AuthorID string    `json:"author_id" db:"author_id"`
	GroupID  *string   `json:"group_id,omitempty" db:"group_id"`

	AuthorUsername string  `json:"author" db:"author_username"`
	AuthorFullName string  `json:"author_full_name,omitempty" db:"author_full_name"`
	GroupSlug      *string `json:"group_slug,omitempty" db:"group_slug"`
	GroupTitle     *string `json:"group_title,omitempty" db:"group_title"`
}

// HasGroup reports whether the post is assigned to a group.
func (p *Post) HasGroup() bool {
	return p.GroupID != nil && *p.GroupID != ""
}

// AuthorDisplayName returns the author's full name or username.
func (p *Post) AuthorDisplayName() string {
	if p.AuthorFullName != "" {
		return p.AuthorFullName
	}
	return p.AuthorUsername
}

// PostFilter narrows a post query. Empty fields do not constrain.
type PostFilter struct {
	GroupID  string
	AuthorID string
}

// PostInput holds the editable fields of a post after validation.
type PostInput struct {
	Text    string
	GroupID *string
}
