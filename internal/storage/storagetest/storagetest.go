// Package storagetest holds a conformance suite shared by every
// storage.Storage implementation.
package storagetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bcnelson/yatube/internal/domain"
	"github.com/bcnelson/yatube/internal/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty store. The suite closes it when the test ends.
type Factory func(t *testing.T) storage.Storage

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// Run exercises the storage contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s storage.Storage)
	}{
		{"Users", testUsers},
		{"ExternalUsers", testExternalUsers},
		{"Groups", testGroups},
		{"PostOrdering", testPostOrdering},
		{"PostFilters", testPostFilters},
		{"PostWindow", testPostWindow},
		{"UpdatePost", testUpdatePost},
		{"DeleteGroupClearsPosts", testDeleteGroupClearsPosts},
		{"PostReferences", testPostReferences},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			t.Cleanup(func() { s.Close() })
			tt.fn(t, s)
		})
	}
}

// NewUser creates and stores a user.
func NewUser(t *testing.T, s storage.Storage, username string) *domain.User {
	t.Helper()
	u := &domain.User{
		ID:        uuid.New().String(),
		Username:  username,
		FullName:  "",
		Email:     username + "@example.com",
		CreatedAt: base,
	}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

// NewGroup creates and stores a group.
func NewGroup(t *testing.T, s storage.Storage, slug string) *domain.Group {
	t.Helper()
	g := &domain.Group{
		ID:          uuid.New().String(),
		Title:       "Group " + slug,
		Slug:        slug,
		Description: "About " + slug,
		CreatedAt:   base,
	}
	require.NoError(t, s.CreateGroup(context.Background(), g))
	return g
}

// NewPost creates and stores a post published offset after a fixed base time.
func NewPost(t *testing.T, s storage.Storage, author *domain.User, group *domain.Group, text string, offset time.Duration) *domain.Post {
	t.Helper()
	p := &domain.Post{
		ID:       uuid.New().String(),
		Text:     text,
		PubDate:  base.Add(offset),
		AuthorID: author.ID,
	}
	if group != nil {
		id := group.ID
		p.GroupID = &id
	}
	require.NoError(t, s.CreatePost(context.Background(), p))
	return p
}

func ids(posts []*domain.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}

func testUsers(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	alice := NewUser(t, s, "alice")

	got, err := s.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	got, err = s.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	_, err = s.GetUserByUsername(ctx, "bob")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = s.GetUser(ctx, uuid.New().String())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	dup := &domain.User{ID: uuid.New().String(), Username: "alice", CreatedAt: base}
	assert.ErrorIs(t, s.CreateUser(ctx, dup), domain.ErrAlreadyExists)
}

func testExternalUsers(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	issuer, subject := "https://id.example.com", "sub-123"

	local := NewUser(t, s, "local")
	assert.Nil(t, local.OIDCSubject)

	linked := &domain.User{
		ID:          uuid.New().String(),
		Username:    "linked",
		Email:       "local@example.com",
		CreatedAt:   base,
		OIDCIssuer:  &issuer,
		OIDCSubject: &subject,
	}
	require.NoError(t, s.CreateUser(ctx, linked))

	got, err := s.GetUserByExternalID(ctx, issuer, subject)
	require.NoError(t, err)
	assert.Equal(t, linked.ID, got.ID)
	require.NotNil(t, got.OIDCSubject)
	assert.Equal(t, subject, *got.OIDCSubject)

	got, err = s.GetUser(ctx, local.ID)
	require.NoError(t, err)
	assert.Nil(t, got.OIDCIssuer)
	assert.Nil(t, got.OIDCSubject)

	_, err = s.GetUserByExternalID(ctx, "https://other.example.com", subject)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.GetUserByExternalID(ctx, "", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	dup := &domain.User{
		ID:          uuid.New().String(),
		Username:    "linked-2",
		CreatedAt:   base,
		OIDCIssuer:  &issuer,
		OIDCSubject: &subject,
	}
	assert.ErrorIs(t, s.CreateUser(ctx, dup), domain.ErrAlreadyExists)
}

func testGroups(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	cats := NewGroup(t, s, "cats")
	NewGroup(t, s, "birds")

	got, err := s.GetGroupBySlug(ctx, "cats")
	require.NoError(t, err)
	assert.Equal(t, cats.ID, got.ID)
	assert.Equal(t, "About cats", got.Description)

	got, err = s.GetGroup(ctx, cats.ID)
	require.NoError(t, err)
	assert.Equal(t, "cats", got.Slug)

	_, err = s.GetGroupBySlug(ctx, "dogs")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	groups, err := s.ListGroups(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "birds", groups[0].Slug)
	assert.Equal(t, "cats", groups[1].Slug)

	dup := &domain.Group{ID: uuid.New().String(), Title: "Again", Slug: "cats", CreatedAt: base}
	assert.ErrorIs(t, s.CreateGroup(ctx, dup), domain.ErrAlreadyExists)

	assert.ErrorIs(t, s.DeleteGroup(ctx, uuid.New().String()), domain.ErrNotFound)
}

func testPostOrdering(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	alice := NewUser(t, s, "alice")

	oldest := NewPost(t, s, alice, nil, "first", time.Minute)
	newest := NewPost(t, s, alice, nil, "third", 3*time.Minute)
	middle := NewPost(t, s, alice, nil, "second", 2*time.Minute)

	posts, err := s.ListPosts(ctx, domain.PostFilter{}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{newest.ID, middle.ID, oldest.ID}, ids(posts))

	assert.Equal(t, "alice", posts[0].AuthorUsername)
	assert.Nil(t, posts[0].GroupID)
	assert.Nil(t, posts[0].GroupSlug)
}

func testPostFilters(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	alice := NewUser(t, s, "alice")
	bob := NewUser(t, s, "bob")
	cats := NewGroup(t, s, "cats")

	a1 := NewPost(t, s, alice, cats, "alice in cats", time.Minute)
	NewPost(t, s, alice, nil, "alice alone", 2*time.Minute)
	b1 := NewPost(t, s, bob, cats, "bob in cats", 3*time.Minute)

	tests := []struct {
		name   string
		filter domain.PostFilter
		want   int
	}{
		{"all", domain.PostFilter{}, 3},
		{"author", domain.PostFilter{AuthorID: alice.ID}, 2},
		{"group", domain.PostFilter{GroupID: cats.ID}, 2},
		{"author and group", domain.PostFilter{AuthorID: bob.ID, GroupID: cats.ID}, 1},
		{"unknown author", domain.PostFilter{AuthorID: uuid.New().String()}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count, err := s.CountPosts(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, count)

			posts, err := s.ListPosts(ctx, tt.filter, 0, 10)
			require.NoError(t, err)
			assert.Len(t, posts, tt.want)
		})
	}

	posts, err := s.ListPosts(ctx, domain.PostFilter{GroupID: cats.ID}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{b1.ID, a1.ID}, ids(posts))
	require.NotNil(t, posts[0].GroupSlug)
	assert.Equal(t, "cats", *posts[0].GroupSlug)
	assert.Equal(t, "Group cats", *posts[0].GroupTitle)
}

func testPostWindow(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	alice := NewUser(t, s, "alice")

	var all []*domain.Post
	for i := range 13 {
		all = append(all, NewPost(t, s, alice, nil, fmt.Sprintf("post %d", i), time.Duration(i)*time.Minute))
	}

	page, err := s.ListPosts(ctx, domain.PostFilter{}, 10, 10)
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Equal(t, []string{all[2].ID, all[1].ID, all[0].ID}, ids(page))

	empty, err := s.ListPosts(ctx, domain.PostFilter{}, 20, 10)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func testUpdatePost(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	alice := NewUser(t, s, "alice")
	cats := NewGroup(t, s, "cats")
	birds := NewGroup(t, s, "birds")

	p := NewPost(t, s, alice, cats, "before", time.Minute)

	groupID := birds.ID
	p.Text = "after"
	p.GroupID = &groupID
	require.NoError(t, s.UpdatePost(ctx, p))

	got, err := s.GetPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "after", got.Text)
	require.NotNil(t, got.GroupID)
	assert.Equal(t, birds.ID, *got.GroupID)
	assert.Equal(t, alice.ID, got.AuthorID)
	assert.True(t, got.PubDate.Equal(p.PubDate))

	count, err := s.CountPosts(ctx, domain.PostFilter{GroupID: cats.ID})
	require.NoError(t, err)
	assert.Zero(t, count)

	p.GroupID = nil
	require.NoError(t, s.UpdatePost(ctx, p))
	got, err = s.GetPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.GroupID)

	missing := &domain.Post{ID: uuid.New().String(), Text: "x"}
	assert.ErrorIs(t, s.UpdatePost(ctx, missing), domain.ErrNotFound)

	_, err = s.GetPost(ctx, missing.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testDeleteGroupClearsPosts(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	alice := NewUser(t, s, "alice")
	cats := NewGroup(t, s, "cats")

	p := NewPost(t, s, alice, cats, "in cats", time.Minute)

	require.NoError(t, s.DeleteGroup(ctx, cats.ID))

	got, err := s.GetPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.GroupID)
	assert.Equal(t, "in cats", got.Text)

	_, err = s.GetGroupBySlug(ctx, "cats")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	count, err := s.CountPosts(ctx, domain.PostFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func testPostReferences(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	alice := NewUser(t, s, "alice")

	missing := uuid.New().String()
	p := &domain.Post{
		ID:       uuid.New().String(),
		Text:     "orphan",
		PubDate:  base,
		AuthorID: alice.ID,
		GroupID:  &missing,
	}
	assert.ErrorIs(t, s.CreatePost(ctx, p), domain.ErrInvalidInput)
}
