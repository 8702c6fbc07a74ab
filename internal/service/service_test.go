package service

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/workguide/guide-server/internal/blob"
	"github.com/workguide/guide-server/internal/domain"
	"github.com/workguide/guide-server/internal/search"
	"github.com/workguide/guide-server/internal/store"
	"github.com/workguide/guide-server/internal/validation"
)

// testServices is every service wired the way the container wires them,
// over an in-memory store and index.
type testServices struct {
	store       *store.Store
	blobs       *blob.Storage
	tags        *TagService
	accounts    *AccountService
	guides      *GuideService
	attachments *AttachmentService
	imports     *ImportService
	visits      *VisitService
	feedback    *FeedbackService
	search      *SearchService
}

func setupTestServices(t *testing.T) *testServices {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := store.New("", logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	blobs, err := blob.NewStorage(t.TempDir(), "http://guides.test")
	require.NoError(t, err)

	index, _, err := search.NewGuideIndex(search.Options{Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	v := validation.New()

	s := &testServices{store: st, blobs: blobs}
	s.tags = NewTagService(st, v, logger)
	s.accounts = NewAccountService(st, v, logger)
	s.guides = NewGuideService(st, s.tags, v, logger)
	s.attachments = NewAttachmentService(st, blobs, v, logger)
	s.guides.SetAttachmentCleaner(s.attachments)
	s.search = NewSearchService(index, s.guides, logger)
	s.guides.SetIndexer(s.search)
	s.imports = NewImportService(st, s.tags, s.accounts, s.guides, logger)
	s.visits = NewVisitService(st, logger)
	s.feedback = NewFeedbackService(st, v, logger)
	return s
}

// windowHandleInput is the guide used throughout these tests.
func windowHandleInput() GuideInput {
	return GuideInput{
		Title:        "Install Window Handle",
		Slug:         "install-window-handle",
		WorkTypeTags: []string{"drilling"},
		ProductTags:  []string{"window"},
		Tools: []ItemInput{
			{Text: "Screwdriver PZ2"},
			{Text: "Drill 4 mm"},
		},
		Steps: []StepInput{
			{Number: 2, Text: "Drill the pilot holes"},
			{Number: 1, Text: "Mark the handle position"},
			{Number: 3, Text: "Screw the handle on"},
		},
		Warnings: []ItemInput{{Text: "Check the frame for hidden fittings"}},
	}
}

func createAccount(t *testing.T, s *testServices, email, name string) *domain.Account {
	t.Helper()
	a, _, err := s.accounts.GetOrCreate(context.Background(), AccountInput{Email: email, Name: name})
	require.NoError(t, err)
	return a
}

func putBlob(t *testing.T, s *testServices, content string) (string, int64) {
	t.Helper()
	ref, size, err := s.blobs.Put(strings.NewReader(content))
	require.NoError(t, err)
	return ref, size
}

// childRowCount sums the rows a guide owns across every child collection
// and both link categories.
func childRowCount(t *testing.T, s *testServices, guideID string) int {
	t.Helper()
	ctx := context.Background()

	total := 0
	for _, c := range store.ChildCollections {
		n, err := s.store.CountChildren(ctx, c, guideID)
		require.NoError(t, err)
		total += n
	}
	for _, category := range domain.LinkCategories {
		links, err := s.store.ListGuideTagLinks(ctx, guideID, category)
		require.NoError(t, err)
		total += len(links)
	}
	return total
}
