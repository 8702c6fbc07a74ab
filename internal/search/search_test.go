package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workguide/guide-server/internal/domain"
)

func setupTestIndex(t *testing.T) *GuideIndex {
	t.Helper()

	index, fresh, err := NewGuideIndex(Options{})
	require.NoError(t, err)
	require.True(t, fresh)
	t.Cleanup(func() { _ = index.Close() })
	return index
}

func testGuide(id, title, slug string, tags ...string) *domain.GuideAggregate {
	g := &domain.GuideAggregate{
		Guide: domain.Guide{ID: id, Title: title, Slug: slug, Version: 1, UpdatedAt: time.Now()},
		Steps: []domain.Step{{ID: "s1", GuideID: id, Number: 1, Text: "Vyvrtejte otvor do rámu"}},
	}
	for _, name := range tags {
		g.ProductTags = append(g.ProductTags, &domain.Tag{ID: "tag-" + name, Name: name, Kind: domain.TagKindProduct})
	}
	return g
}

func TestGuideIndex_IndexAndSearch(t *testing.T) {
	index := setupTestIndex(t)
	ctx := context.Background()

	require.NoError(t, index.IndexGuide(ctx, testGuide("guide-1", "Install Window Handle", "install-window-handle", "okno")))
	require.NoError(t, index.IndexGuide(ctx, testGuide("guide-2", "Montáž dveří", "montaz-dveri", "dveře")))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)

	res, err := index.Search(ctx, "window", 10)
	require.NoError(t, err)
	require.NotEmpty(t, res.Hits)
	assert.Equal(t, "guide-1", res.Hits[0].ID)
	assert.Equal(t, "Install Window Handle", res.Hits[0].Title)
	assert.Equal(t, "install-window-handle", res.Hits[0].Slug)
}

func TestGuideIndex_SearchIgnoresDiacritics(t *testing.T) {
	index := setupTestIndex(t)
	ctx := context.Background()

	require.NoError(t, index.IndexGuide(ctx, testGuide("guide-2", "Montáž dveří", "montaz-dveri")))

	for _, q := range []string{"montaz", "Montáž", "dveri"} {
		res, err := index.Search(ctx, q, 10)
		require.NoError(t, err)
		require.Len(t, res.Hits, 1, q)
		assert.Equal(t, "guide-2", res.Hits[0].ID)
	}
}

func TestGuideIndex_SearchByTagAndBody(t *testing.T) {
	index := setupTestIndex(t)
	ctx := context.Background()

	require.NoError(t, index.IndexGuide(ctx, testGuide("guide-1", "Handle", "handle", "okno")))

	res, err := index.Search(ctx, "okno", 10)
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)

	res, err = index.Search(ctx, "ramu", 10)
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
}

func TestGuideIndex_PrefixMatch(t *testing.T) {
	index := setupTestIndex(t)
	ctx := context.Background()

	require.NoError(t, index.IndexGuide(ctx, testGuide("guide-1", "Install Window Handle", "install-window-handle")))

	res, err := index.Search(ctx, "inst", 10)
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
}

func TestGuideIndex_Delete(t *testing.T) {
	index := setupTestIndex(t)
	ctx := context.Background()

	require.NoError(t, index.IndexGuide(ctx, testGuide("guide-1", "Handle", "handle")))
	require.NoError(t, index.DeleteGuide(ctx, "guide-1"))
	require.NoError(t, index.DeleteGuide(ctx, "guide-1"))

	res, err := index.Search(ctx, "handle", 10)
	require.NoError(t, err)
	assert.Empty(t, res.Hits)
}

func TestGuideIndex_EmptyQuery(t *testing.T) {
	index := setupTestIndex(t)

	res, err := index.Search(context.Background(), "   ", 10)
	require.NoError(t, err)
	assert.Empty(t, res.Hits)
	assert.Zero(t, res.Total)
}

func TestGuideIndex_RebuildAndBatch(t *testing.T) {
	index := setupTestIndex(t)
	ctx := context.Background()

	require.NoError(t, index.IndexGuides(ctx, []*domain.GuideAggregate{
		testGuide("guide-1", "Handle", "handle"),
		testGuide("guide-2", "Hinge", "hinge"),
	}))
	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)

	require.NoError(t, index.Rebuild())
	count, err = index.DocumentCount()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestNewGuideIndex_OnDisk(t *testing.T) {
	dir := t.TempDir()

	index, fresh, err := NewGuideIndex(Options{DataPath: dir})
	require.NoError(t, err)
	assert.True(t, fresh)
	require.NoError(t, index.IndexGuide(context.Background(), testGuide("guide-1", "Handle", "handle")))
	require.NoError(t, index.Close())

	reopened, fresh, err := NewGuideIndex(Options{DataPath: dir})
	require.NoError(t, err)
	defer reopened.Close()
	assert.False(t, fresh)

	count, err := reopened.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}
