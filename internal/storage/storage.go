package storage

import (
	"context"

	"github.com/bcnelson/yatube/internal/domain"
	"github.com/bcnelson/yatube/internal/paginator"
)

// Storage defines the interface for the storage layer.
// Implementations must be safe for concurrent use.
//
// Lookups return domain.ErrNotFound when the record does not exist.
// Post listings are ordered newest first.
type Storage interface {
	// Close closes the storage connection.
	Close() error

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	// GetUserByExternalID finds the account linked to an OIDC issuer and subject.
	GetUserByExternalID(ctx context.Context, issuer, subject string) (*domain.User, error)

	// Groups
	CreateGroup(ctx context.Context, group *domain.Group) error
	GetGroup(ctx context.Context, id string) (*domain.Group, error)
	GetGroupBySlug(ctx context.Context, slug string) (*domain.Group, error)
	ListGroups(ctx context.Context) ([]*domain.Group, error)
	// DeleteGroup removes the group and clears the group of its posts.
	DeleteGroup(ctx context.Context, id string) error

	// Posts
	CreatePost(ctx context.Context, post *domain.Post) error
	GetPost(ctx context.Context, id string) (*domain.Post, error)
	// UpdatePost writes only the editable fields (text, group).
	UpdatePost(ctx context.Context, post *domain.Post) error
	ListPosts(ctx context.Context, filter domain.PostFilter, offset, limit int) ([]*domain.Post, error)
	CountPosts(ctx context.Context, filter domain.PostFilter) (int, error)
}

// PostSource adapts a filtered post query to paginator.Source.
type PostSource struct {
	Store  Storage
	Filter domain.PostFilter
}

var _ paginator.Source[*domain.Post] = PostSource{}

// Count returns the number of posts matching the filter.
func (s PostSource) Count(ctx context.Context) (int, error) {
	return s.Store.CountPosts(ctx, s.Filter)
}

// Fetch returns a window of matching posts, newest first.
func (s PostSource) Fetch(ctx context.Context, offset, limit int) ([]*domain.Post, error) {
	return s.Store.ListPosts(ctx, s.Filter, offset, limit)
}
