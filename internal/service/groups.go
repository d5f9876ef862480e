package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bcnelson/yatube/internal/domain"
	"github.com/bcnelson/yatube/internal/storage"
	"github.com/bcnelson/yatube/internal/validation"
	"github.com/google/uuid"
)

// GroupService administers groups. Groups are managed out of band, from
// the admin CLI, never through the web surface.
type GroupService struct {
	store storage.Storage
	now   func() time.Time
}

// NewGroupService creates a new GroupService.
func NewGroupService(store storage.Storage) *GroupService {
	return &GroupService{
		store: store,
		now:   time.Now,
	}
}

// CreateGroup validates and stores a group. An empty slug is derived
// from the title.
func (s *GroupService) CreateGroup(ctx context.Context, title, slug, description string) (*domain.Group, error) {
	title = strings.TrimSpace(title)
	slug = strings.TrimSpace(slug)
	if slug == "" {
		slug = validation.Slugify(title)
	}

	group := &domain.Group{
		ID:          uuid.New().String(),
		Title:       title,
		Slug:        slug,
		Description: strings.TrimSpace(description),
		CreatedAt:   s.now().UTC().Truncate(time.Microsecond),
	}
	if verrs := validation.ValidateGroup(group); verrs.HasErrors() {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, verrs.Error())
	}

	if err := s.store.CreateGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("creating group %s: %w", slug, err)
	}
	return group, nil
}

// ListGroups returns every group ordered by title.
func (s *GroupService) ListGroups(ctx context.Context) ([]*domain.Group, error) {
	return s.store.ListGroups(ctx)
}

// DeleteGroup removes the group with the given slug. Its posts stay
// published without a group.
func (s *GroupService) DeleteGroup(ctx context.Context, slug string) error {
	group, err := s.store.GetGroupBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if err := s.store.DeleteGroup(ctx, group.ID); err != nil {
		return fmt.Errorf("deleting group %s: %w", slug, err)
	}
	return nil
}
