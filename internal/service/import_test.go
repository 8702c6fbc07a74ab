package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workguide/guide-server/internal/domain"
	domainerrors "github.com/workguide/guide-server/internal/errors"
)

func testDataset() ImportDataset {
	noted := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	resolved := noted.Add(48 * time.Hour)
	step := 2

	return ImportDataset{
		Tags: []ImportTag{
			{LocalID: "t1", Name: "Drilling", Kind: domain.TagKindWorkType},
			{LocalID: "t2", Name: "Window", Kind: domain.TagKindProduct, Color: "#3366ff"},
			{LocalID: "t3", Name: "   "},
		},
		Accounts: []ImportAccount{
			{LocalID: "u1", AccountInput: AccountInput{Email: "Tech@Example.com", Name: "Tech"}},
			{LocalID: "u2", AccountInput: AccountInput{Email: "lead@example.com", Name: "Lead", Role: "admin"}},
			{LocalID: "u3", AccountInput: AccountInput{Email: "not-an-email"}},
		},
		Guides: []ImportGuide{
			{LocalID: "g1", GuideInput: windowHandleInput()},
		},
		Feedback: []ImportFeedback{
			{GuideRef: "g1", UserRef: "u1", Message: "Step 2 needs a photo", StepNumber: &step, CreatedAt: noted},
			{GuideRef: "install-window-handle", UserRef: "lead@example.com", Message: "Done", State: domain.FeedbackResolved, CreatedAt: noted, ResolvedAt: &resolved},
			{GuideRef: "g-unknown", UserRef: "u1", Message: "Orphan"},
			{GuideRef: "g1", UserRef: "u-unknown", Message: "Anonymous"},
		},
	}
}

func TestImportService_ImportAll(t *testing.T) {
	s := setupTestServices(t)
	ctx := context.Background()

	result, err := s.imports.ImportAll(ctx, testDataset(), ImportOptions{})
	require.NoError(t, err)

	c := result.Counts
	assert.Equal(t, 2, c.TagsCreated)
	assert.Equal(t, 1, c.TagsSkipped)
	assert.Equal(t, 2, c.AccountsCreated)
	assert.Equal(t, 1, c.AccountsSkipped)
	assert.Equal(t, 1, c.GuidesCreated)
	assert.Equal(t, 2, c.FeedbackImported)
	assert.Equal(t, 2, c.FeedbackSkipped)

	assert.Len(t, result.TagIDs, 2)
	assert.Len(t, result.AccountIDs, 2)
	require.Len(t, result.GuideIDs, 1)
	assert.Len(t, result.FeedbackIDs, 2)

	g, err := s.guides.Get(ctx, result.GuideIDs[0])
	require.NoError(t, err)
	assert.Equal(t, 1, g.Version)
	require.Len(t, g.WorkTypeTags, 1)
	assert.Equal(t, result.TagIDs[0], g.WorkTypeTags[0].ID, "guide reuses the imported tag")
	assert.Equal(t, "Drilling", g.WorkTypeTags[0].Name)
	assert.Equal(t, "#3366ff", g.ProductTags[0].Color)

	notes, err := s.feedback.ListByGuide(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	for _, n := range notes {
		switch n.Message {
		case "Step 2 needs a photo":
			assert.Equal(t, result.AccountIDs[0], n.UserID)
			assert.Equal(t, domain.FeedbackOpen, n.State)
			require.NotNil(t, n.StepNumber)
			assert.Equal(t, 2, *n.StepNumber)
		case "Done":
			assert.Equal(t, result.AccountIDs[1], n.UserID)
			assert.Equal(t, domain.FeedbackResolved, n.State)
			assert.NotNil(t, n.ResolvedAt)
		default:
			t.Fatalf("unexpected note %q", n.Message)
		}
	}
}

func TestImportService_SecondRunCreatesNothing(t *testing.T) {
	s := setupTestServices(t)
	ctx := context.Background()

	first, err := s.imports.ImportAll(ctx, testDataset(), ImportOptions{FeedbackPolicy: FeedbackAppend})
	require.NoError(t, err)
	second, err := s.imports.ImportAll(ctx, testDataset(), ImportOptions{FeedbackPolicy: FeedbackAppend})
	require.NoError(t, err)

	c := second.Counts
	assert.Zero(t, c.TagsCreated)
	assert.Equal(t, 2, c.TagsReused)
	assert.Zero(t, c.AccountsCreated)
	assert.Equal(t, 2, c.AccountsReused)
	assert.Zero(t, c.GuidesCreated)
	assert.Equal(t, 1, c.GuidesUpdated)
	assert.Equal(t, 2, c.FeedbackImported, "append keeps every snapshot")

	assert.Equal(t, first.TagIDs, second.TagIDs)
	assert.Equal(t, first.AccountIDs, second.AccountIDs)
	assert.Equal(t, first.GuideIDs, second.GuideIDs)

	tags, err := s.tags.List(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 2)
	accounts, err := s.accounts.List(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, 2)
	guides, err := s.guides.List(ctx)
	require.NoError(t, err)
	require.Len(t, guides, 1)
	assert.Equal(t, 2, guides[0].Version)

	notes, err := s.feedback.ListByGuide(ctx, guides[0].ID)
	require.NoError(t, err)
	assert.Len(t, notes, 4)
}

func TestImportService_SkipDuplicateFeedback(t *testing.T) {
	s := setupTestServices(t)
	ctx := context.Background()

	opts := ImportOptions{FeedbackPolicy: FeedbackSkipDuplicates}

	ds := testDataset()
	// A repeat inside one dataset is caught too.
	ds.Feedback = append(ds.Feedback, ds.Feedback[0])

	first, err := s.imports.ImportAll(ctx, ds, opts)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Counts.FeedbackImported)
	assert.Equal(t, 1, first.Counts.FeedbackDuplicates)

	second, err := s.imports.ImportAll(ctx, ds, opts)
	require.NoError(t, err)
	assert.Zero(t, second.Counts.FeedbackImported)
	assert.Equal(t, 3, second.Counts.FeedbackDuplicates)
	assert.Equal(t, 2, second.Counts.FeedbackSkipped)

	notes, err := s.feedback.ListByGuide(ctx, first.GuideIDs[0])
	require.NoError(t, err)
	assert.Len(t, notes, 2)
}

func TestImportService_GuideFailureStopsRun(t *testing.T) {
	s := setupTestServices(t)
	ctx := context.Background()

	ds := testDataset()
	ds.Guides = append(ds.Guides, ImportGuide{LocalID: "g2", GuideInput: GuideInput{Title: "Broken", Slug: "Not A Slug"}})

	result, err := s.imports.ImportAll(ctx, ds, ImportOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	// Rows before the failure stay imported and are reported.
	require.NotNil(t, result)
	assert.Equal(t, 1, result.Counts.GuidesCreated)
	assert.Len(t, result.GuideIDs, 1)
	assert.Zero(t, result.Counts.FeedbackImported)
}

func TestImportService_RejectsUnknownPolicy(t *testing.T) {
	s := setupTestServices(t)

	_, err := s.imports.ImportAll(context.Background(), testDataset(), ImportOptions{FeedbackPolicy: "merge"})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestParseFeedbackPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    FeedbackPolicy
		wantErr bool
	}{
		{"", FeedbackAppend, false},
		{"append", FeedbackAppend, false},
		{" Skip-Duplicates ", FeedbackSkipDuplicates, false},
		{"dedupe", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFeedbackPolicy(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, domainerrors.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestImportService_GuideTagsByLocalID(t *testing.T) {
	s := setupTestServices(t)
	ctx := context.Background()

	input := windowHandleInput()
	input.WorkTypeTags = []string{"t1"}
	input.ProductTags = []string{" t2 ", "Handle"}

	ds := ImportDataset{
		Tags: []ImportTag{
			{LocalID: "t1", Name: "Montáž", Kind: domain.TagKindWorkType},
			{LocalID: "t2", Name: "okno", Kind: domain.TagKindProduct},
		},
		Guides: []ImportGuide{{LocalID: "g1", GuideInput: input}},
	}

	result, err := s.imports.ImportAll(ctx, ds, ImportOptions{})
	require.NoError(t, err)
	require.Len(t, result.GuideIDs, 1)

	g, err := s.guides.Get(ctx, result.GuideIDs[0])
	require.NoError(t, err)
	assert.Equal(t, []string{"Montáž"}, g.TagNames(domain.LinkWorkType))
	assert.ElementsMatch(t, []string{"okno", "Handle"}, g.TagNames(domain.LinkProduct))

	tags, err := s.tags.List(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 3, "no tag is created for a local ID")
	for _, tag := range tags {
		assert.NotContains(t, []string{"t1", "t2"}, tag.Name)
	}

	// The dataset itself is not rewritten.
	assert.Equal(t, []string{"t1"}, ds.Guides[0].WorkTypeTags)
}
