package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workguide/guide-server/internal/domain"
	"github.com/workguide/guide-server/internal/store"
)

func newGuide(id, slug string) *domain.Guide {
	g := &domain.Guide{ID: id, Title: "Guide " + slug, Slug: slug, Version: 1}
	g.InitTimestamps()
	return g
}

func TestGuide_CreateGet(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	g := newGuide("guide-1", "install-window-handle")
	require.NoError(t, s.CreateGuide(ctx, g))

	byID, err := s.GetGuide(ctx, "guide-1")
	require.NoError(t, err)
	assert.Equal(t, "install-window-handle", byID.Slug)
	assert.Equal(t, 1, byID.Version)

	bySlug, err := s.GetGuideBySlug(ctx, "install-window-handle")
	require.NoError(t, err)
	assert.Equal(t, "guide-1", bySlug.ID)

	exists, err := s.GuideExists(ctx, "guide-1")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = s.GetGuide(ctx, "guide-2")
	require.ErrorIs(t, err, store.ErrGuideNotFound)
}

func TestGuide_CreateSlugTaken(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, s.CreateGuide(ctx, newGuide("guide-1", "door")))
	err := s.CreateGuide(ctx, newGuide("guide-2", "door"))
	require.ErrorIs(t, err, store.ErrSlugTaken)
}

func TestGuide_UpdateBumpsVersion(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, s.CreateGuide(ctx, newGuide("guide-1", "door")))

	updated, err := s.UpdateGuide(ctx, "guide-1", 0, func(g *domain.Guide) error {
		g.Title = "Door hinge"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)
	assert.Equal(t, "Door hinge", updated.Title)

	updated, err = s.UpdateGuide(ctx, "guide-1", 2, func(g *domain.Guide) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Version)
}

func TestGuide_UpdateVersionMismatch(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, s.CreateGuide(ctx, newGuide("guide-1", "door")))

	_, err := s.UpdateGuide(ctx, "guide-1", 5, func(g *domain.Guide) error {
		g.Title = "never"
		return nil
	})
	require.ErrorIs(t, err, store.ErrVersionConflict)

	stored, err := s.GetGuide(ctx, "guide-1")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Version)
	assert.NotEqual(t, "never", stored.Title)
}

func TestGuide_UpdateMutateErrorWritesNothing(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, s.CreateGuide(ctx, newGuide("guide-1", "door")))

	boom := errors.New("boom")
	_, err := s.UpdateGuide(ctx, "guide-1", 0, func(g *domain.Guide) error {
		g.Title = "never"
		return boom
	})
	require.ErrorIs(t, err, boom)

	stored, err := s.GetGuide(ctx, "guide-1")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Version)
}

func TestGuide_UpdateMovesSlug(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, s.CreateGuide(ctx, newGuide("guide-1", "door")))
	require.NoError(t, s.CreateGuide(ctx, newGuide("guide-2", "window")))

	_, err := s.UpdateGuide(ctx, "guide-1", 0, func(g *domain.Guide) error {
		g.Slug = "front-door"
		return nil
	})
	require.NoError(t, err)

	_, err = s.GetGuideBySlug(ctx, "door")
	require.ErrorIs(t, err, store.ErrGuideNotFound)

	moved, err := s.GetGuideBySlug(ctx, "front-door")
	require.NoError(t, err)
	assert.Equal(t, "guide-1", moved.ID)

	_, err = s.UpdateGuide(ctx, "guide-1", 0, func(g *domain.Guide) error {
		g.Slug = "window"
		return nil
	})
	require.ErrorIs(t, err, store.ErrSlugTaken)
}

func TestGuide_UpdateMissing(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := s.UpdateGuide(context.Background(), "guide-x", 0, func(*domain.Guide) error { return nil })
	require.ErrorIs(t, err, store.ErrGuideNotFound)
}

func TestGuide_DeleteIdempotent(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, s.CreateGuide(ctx, newGuide("guide-1", "door")))
	require.NoError(t, s.DeleteGuide(ctx, "guide-1"))
	require.NoError(t, s.DeleteGuide(ctx, "guide-1"))

	_, err := s.GetGuideBySlug(ctx, "door")
	require.ErrorIs(t, err, store.ErrGuideNotFound)

	// Slug can be reused after delete.
	require.NoError(t, s.CreateGuide(ctx, newGuide("guide-2", "door")))
}

func TestGuide_List(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, s.CreateGuide(ctx, newGuide("guide-1", "door")))
	require.NoError(t, s.CreateGuide(ctx, newGuide("guide-2", "window")))

	guides, err := s.ListGuides(ctx)
	require.NoError(t, err)
	assert.Len(t, guides, 2)
}
