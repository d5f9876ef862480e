package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/bcnelson/yatube/internal/domain"
)

// Store is an in-memory implementation of the storage interface for testing.
type Store struct {
	mu sync.RWMutex

	users  map[string]*domain.User  // key: id
	groups map[string]*domain.Group // key: id
	posts  map[string]*post         // key: id
	seq    int64
}

// post keeps the insertion sequence used to break pub_date ties.
type post struct {
	domain.Post
	seq int64
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		users:  make(map[string]*domain.User),
		groups: make(map[string]*domain.Group),
		posts:  make(map[string]*post),
	}
}

func (s *Store) Close() error { return nil }

// ============================================
// Users
// ============================================

func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; ok {
		return domain.ErrAlreadyExists
	}
	for _, u := range s.users {
		if u.Username == user.Username {
			return domain.ErrAlreadyExists
		}
		if user.OIDCIssuer != nil && user.OIDCSubject != nil && sameExternalID(u, *user.OIDCIssuer, *user.OIDCSubject) {
			return domain.ErrAlreadyExists
		}
	}
	u := *user
	s.users[user.ID] = &u
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			out := *u
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func sameExternalID(u *domain.User, issuer, subject string) bool {
	return u.OIDCIssuer != nil && u.OIDCSubject != nil &&
		*u.OIDCIssuer == issuer && *u.OIDCSubject == subject
}

func (s *Store) GetUserByExternalID(ctx context.Context, issuer, subject string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if issuer == "" || subject == "" {
		return nil, domain.ErrNotFound
	}
	for _, u := range s.users {
		if sameExternalID(u, issuer, subject) {
			out := *u
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

// ============================================
// Groups
// ============================================

func (s *Store) CreateGroup(ctx context.Context, group *domain.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[group.ID]; ok {
		return domain.ErrAlreadyExists
	}
	for _, g := range s.groups {
		if g.Slug == group.Slug {
			return domain.ErrAlreadyExists
		}
	}
	g := *group
	s.groups[group.ID] = &g
	return nil
}

func (s *Store) GetGroup(ctx context.Context, id string) (*domain.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.groups[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *g
	return &out, nil
}

func (s *Store) GetGroupBySlug(ctx context.Context, slug string) (*domain.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, g := range s.groups {
		if g.Slug == slug {
			out := *g
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Store) ListGroups(ctx context.Context) ([]*domain.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := make([]*domain.Group, 0, len(s.groups))
	for _, g := range s.groups {
		out := *g
		groups = append(groups, &out)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Title < groups[j].Title
	})
	return groups, nil
}

func (s *Store) DeleteGroup(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[id]; !ok {
		return domain.ErrNotFound
	}
	for _, p := range s.posts {
		if p.GroupID != nil && *p.GroupID == id {
			p.GroupID = nil
		}
	}
	delete(s.groups, id)
	return nil
}

// ============================================
// Posts
// ============================================

func (s *Store) CreatePost(ctx context.Context, p *domain.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[p.ID]; ok {
		return domain.ErrAlreadyExists
	}
	if _, ok := s.users[p.AuthorID]; !ok {
		return domain.ErrInvalidInput
	}
	if p.GroupID != nil {
		if _, ok := s.groups[*p.GroupID]; !ok {
			return domain.ErrInvalidInput
		}
	}

	s.seq++
	stored := &post{Post: domain.Post{
		ID:       p.ID,
		Text:     p.Text,
		PubDate:  p.PubDate,
		AuthorID: p.AuthorID,
		GroupID:  copyString(p.GroupID),
	}, seq: s.seq}
	s.posts[p.ID] = stored
	return nil
}

func (s *Store) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s.view(p), nil
}

func (s *Store) UpdatePost(ctx context.Context, p *domain.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.posts[p.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if p.GroupID != nil {
		if _, ok := s.groups[*p.GroupID]; !ok {
			return domain.ErrInvalidInput
		}
	}
	stored.Text = p.Text
	stored.GroupID = copyString(p.GroupID)
	return nil
}

func (s *Store) ListPosts(ctx context.Context, filter domain.PostFilter, offset, limit int) ([]*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.filter(filter)
	if offset >= len(matched) {
		return []*domain.Post{}, nil
	}
	end := len(matched)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	posts := make([]*domain.Post, 0, end-offset)
	for _, p := range matched[offset:end] {
		posts = append(posts, s.view(p))
	}
	return posts, nil
}

func (s *Store) CountPosts(ctx context.Context, filter domain.PostFilter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.filter(filter)), nil
}

// filter returns matching posts newest first. Callers hold the lock.
func (s *Store) filter(f domain.PostFilter) []*post {
	var matched []*post
	for _, p := range s.posts {
		if f.AuthorID != "" && p.AuthorID != f.AuthorID {
			continue
		}
		if f.GroupID != "" && (p.GroupID == nil || *p.GroupID != f.GroupID) {
			continue
		}
		matched = append(matched, p)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].PubDate.Equal(matched[j].PubDate) {
			return matched[i].PubDate.After(matched[j].PubDate)
		}
		return matched[i].seq > matched[j].seq
	})
	return matched
}

// view copies a stored post and fills the author and group read fields.
// Callers hold the lock.
func (s *Store) view(p *post) *domain.Post {
	out := p.Post
	out.GroupID = copyString(p.GroupID)
	if u, ok := s.users[p.AuthorID]; ok {
		out.AuthorUsername = u.Username
		out.AuthorFullName = u.FullName
	}
	if p.GroupID != nil {
		if g, ok := s.groups[*p.GroupID]; ok {
			out.GroupSlug = copyString(&g.Slug)
			out.GroupTitle = copyString(&g.Title)
		}
	}
	return &out
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
