package service

import (
	"context"
	"testing"

	"github.com/bcnelson/yatube/internal/domain"
	"github.com/bcnelson/yatube/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateGroup(t *testing.T) {
	svc := NewGroupService(memory.New())
	ctx := context.Background()

	g, err := svc.CreateGroup(ctx, "Тестовая группа", "", "Описание")
	require.NoError(t, err)
	assert.Equal(t, "testovaia-gruppa", g.Slug)
	assert.Equal(t, "Описание", g.Description)

	g, err = svc.CreateGroup(ctx, "Cats", "felines", "")
	require.NoError(t, err)
	assert.Equal(t, "felines", g.Slug)

	_, err = svc.CreateGroup(ctx, "More cats", "felines", "")
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	_, err = svc.CreateGroup(ctx, "", "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.CreateGroup(ctx, "Bad", "Not A Slug", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	groups, err := svc.ListGroups(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "Cats", groups[0].Title)
}

func TestDeleteGroupBySlug(t *testing.T) {
	svc := NewGroupService(memory.New())
	ctx := context.Background()

	_, err := svc.CreateGroup(ctx, "Cats", "cats", "")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteGroup(ctx, "cats"))
	assert.ErrorIs(t, svc.DeleteGroup(ctx, "cats"), domain.ErrNotFound)
}
