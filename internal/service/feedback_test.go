package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workguide/guide-server/internal/domain"
	domainerrors "github.com/workguide/guide-server/internal/errors"
)

func TestFeedbackService_Lifecycle(t *testing.T) {
	s := setupTestServices(t)
	ctx := context.Background()

	g, err := s.guides.Create(ctx, windowHandleInput())
	require.NoError(t, err)
	user := createAccount(t, s, "tech@example.com", "Tech")

	step := 2
	first, err := s.feedback.Create(ctx, FeedbackInput{GuideID: g.ID, UserID: user.ID, Message: "  Add a photo ", StepNumber: &step})
	require.NoError(t, err)
	assert.Equal(t, "Add a photo", first.Message)
	assert.Equal(t, domain.FeedbackOpen, first.State)
	assert.Nil(t, first.ResolvedAt)

	second, err := s.feedback.Create(ctx, FeedbackInput{GuideID: g.ID, UserID: user.ID, Message: "Works"})
	require.NoError(t, err)

	resolved, err := s.feedback.Resolve(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FeedbackResolved, resolved.State)
	require.NotNil(t, resolved.ResolvedAt)

	again, err := s.feedback.Resolve(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, resolved.ResolvedAt.Equal(*again.ResolvedAt), "resolving twice keeps the first timestamp")

	notes, err := s.feedback.ListByGuide(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, first.ID, notes[0].ID)
	assert.Equal(t, second.ID, notes[1].ID)
	assert.Equal(t, domain.FeedbackResolved, notes[0].State)
}

func TestFeedbackService_Rejects(t *testing.T) {
	s := setupTestServices(t)
	ctx := context.Background()

	g, err := s.guides.Create(ctx, windowHandleInput())
	require.NoError(t, err)
	user := createAccount(t, s, "tech@example.com", "Tech")

	_, err = s.feedback.Create(ctx, FeedbackInput{GuideID: "guide-missing", UserID: user.ID, Message: "x"})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = s.feedback.Create(ctx, FeedbackInput{GuideID: g.ID, UserID: "account-missing", Message: "x"})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = s.feedback.Create(ctx, FeedbackInput{GuideID: g.ID, UserID: user.ID, Message: "   "})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	zero := 0
	_, err = s.feedback.Create(ctx, FeedbackInput{GuideID: g.ID, UserID: user.ID, Message: "x", StepNumber: &zero})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = s.feedback.Resolve(ctx, "feedback-missing")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}
