package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bcnelson/yatube/internal/domain"
	"github.com/bcnelson/yatube/internal/paginator"
	"github.com/bcnelson/yatube/internal/storage"
	"github.com/bcnelson/yatube/internal/validation"
	"github.com/google/uuid"
)

// PostService serves feeds, post details and the post create/edit flow.
type PostService struct {
	store storage.Storage
	now   func() time.Time
}

// NewPostService creates a new PostService.
func NewPostService(store storage.Storage) *PostService {
	return &PostService{
		store: store,
		now:   time.Now,
	}
}

// Feed is one page of posts, plus the group or author it was filtered by.
type Feed struct {
	Page   *paginator.Page[*domain.Post]
	Group  *domain.Group
	Author *domain.User
}

// Count is the total number of posts in the feed, across all pages.
func (f *Feed) Count() int {
	return f.Page.Count
}

// PostDetail is a single post with its author.
type PostDetail struct {
	Post            *domain.Post
	Author          *domain.User
	AuthorPostCount int
}

func (s *PostService) feed(ctx context.Context, filter domain.PostFilter, pageToken string) (*paginator.Page[*domain.Post], error) {
	src := storage.PostSource{Store: s.store, Filter: filter}
	return paginator.Paginate[*domain.Post](ctx, src, pageToken)
}

// Index returns a page of all posts, newest first.
func (s *PostService) Index(ctx context.Context, pageToken string) (*Feed, error) {
	page, err := s.feed(ctx, domain.PostFilter{}, pageToken)
	if err != nil {
		return nil, fmt.Errorf("index feed: %w", err)
	}
	return &Feed{Page: page}, nil
}

// GroupFeed returns a page of the posts in the group with the given slug.
// It returns domain.ErrNotFound when no such group exists.
func (s *PostService) GroupFeed(ctx context.Context, slug, pageToken string) (*Feed, error) {
	group, err := s.store.GetGroupBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	page, err := s.feed(ctx, domain.PostFilter{GroupID: group.ID}, pageToken)
	if err != nil {
		return nil, fmt.Errorf("group feed %s: %w", slug, err)
	}
	return &Feed{Page: page, Group: group}, nil
}

// ProfileFeed returns a page of the posts written by username.
// It returns domain.ErrNotFound when no such user exists.
func (s *PostService) ProfileFeed(ctx context.Context, username, pageToken string) (*Feed, error) {
	author, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	page, err := s.feed(ctx, domain.PostFilter{AuthorID: author.ID}, pageToken)
	if err != nil {
		return nil, fmt.Errorf("profile feed %s: %w", username, err)
	}
	return &Feed{Page: page, Author: author}, nil
}

// Detail returns one post with its author and the author's post count.
func (s *PostService) Detail(ctx context.Context, id string) (*PostDetail, error) {
	post, err := s.getPost(ctx, id)
	if err != nil {
		return nil, err
	}

	author, err := s.store.GetUser(ctx, post.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("loading author of post %s: %w", id, err)
	}

	count, err := s.store.CountPosts(ctx, domain.PostFilter{AuthorID: author.ID})
	if err != nil {
		return nil, fmt.Errorf("counting posts of %s: %w", author.Username, err)
	}

	return &PostDetail{Post: post, Author: author, AuthorPostCount: count}, nil
}

// Groups returns every group, for the post form's group choice.
func (s *PostService) Groups(ctx context.Context) ([]*domain.Group, error) {
	return s.store.ListGroups(ctx)
}

// getPost looks up a post, treating malformed ids as absent.
func (s *PostService) getPost(ctx context.Context, id string) (*domain.Post, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	return s.store.GetPost(ctx, id)
}

// EditablePost returns the post with the given id if req may edit it.
//
// Errors: domain.ErrUnauthorized for anonymous requesters,
// domain.ErrNotFound for unknown posts and domain.ErrForbidden when req
// is not the author.
func (s *PostService) EditablePost(ctx context.Context, req Requester, id string) (*domain.Post, error) {
	if !req.Authenticated() {
		return nil, domain.ErrUnauthorized
	}

	post, err := s.getPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != req.UserID {
		return nil, domain.ErrForbidden
	}
	return post, nil
}

// CreatePost validates form and publishes it as a new post by req.
// Invalid forms return ValidationErrors and store nothing.
func (s *PostService) CreatePost(ctx context.Context, req Requester, form validation.PostForm) (*domain.Post, validation.ValidationErrors, error) {
	if !req.Authenticated() {
		return nil, nil, domain.ErrUnauthorized
	}

	groups, err := s.chosenGroup(ctx, form.Group)
	if err != nil {
		return nil, nil, err
	}

	input, verrs := validation.ValidatePostForm(form, groups)
	if verrs.HasErrors() {
		return nil, verrs, nil
	}

	post := &domain.Post{
		ID:       uuid.New().String(),
		Text:     input.Text,
		PubDate:  s.now().UTC().Truncate(time.Microsecond),
		AuthorID: req.UserID,
		GroupID:  input.GroupID,
	}
	if err := s.store.CreatePost(ctx, post); err != nil {
		return nil, nil, fmt.Errorf("creating post: %w", err)
	}

	return post, nil, nil
}

// chosenGroup returns the group a form names as the only valid choice,
// or no choices when the group does not exist.
func (s *PostService) chosenGroup(ctx context.Context, id string) ([]*domain.Group, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	group, err := s.store.GetGroup(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up group %s: %w", id, err)
	}
	return []*domain.Group{group}, nil
}

// EditPost validates form and applies it to the post with the given id.
// Only the text and group change. Authorization errors match EditablePost.
func (s *PostService) EditPost(ctx context.Context, req Requester, id string, form validation.PostForm) (*domain.Post, validation.ValidationErrors, error) {
	post, err := s.EditablePost(ctx, req, id)
	if err != nil {
		return nil, nil, err
	}

	groups, err := s.chosenGroup(ctx, form.Group)
	if err != nil {
		return nil, nil, err
	}

	input, verrs := validation.ValidatePostForm(form, groups)
	if verrs.HasErrors() {
		return post, verrs, nil
	}

	post.Text = input.Text
	post.GroupID = input.GroupID
	if err := s.store.UpdatePost(ctx, post); err != nil {
		return nil, nil, fmt.Errorf("updating post %s: %w", id, err)
	}

	return post, nil, nil
}
