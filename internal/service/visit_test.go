package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/workguide/guide-server/internal/errors"
)

func TestVisitService_RecordVisit(t *testing.T) {
	s := setupTestServices(t)
	ctx := context.Background()

	g, err := s.guides.Create(ctx, windowHandleInput())
	require.NoError(t, err)
	user := createAccount(t, s, "tech@example.com", "Tech")

	v, err := s.visits.RecordVisit(ctx, g.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, g.ID, v.GuideID)
	assert.Equal(t, user.ID, v.UserID)
	assert.Equal(t, "Install Window Handle", v.CachedGuideTitle)
	assert.Equal(t, "Tech", v.CachedUserName)
	assert.Equal(t, "tech@example.com", v.CachedUserEmail)
	assert.False(t, v.Timestamp.IsZero())

	_, err = s.visits.RecordVisit(ctx, g.ID, user.ID)
	require.NoError(t, err)

	account, err := s.accounts.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, account.TotalVisits)
}

func TestVisitService_RecordVisitUnknownRefs(t *testing.T) {
	s := setupTestServices(t)
	ctx := context.Background()

	g, err := s.guides.Create(ctx, windowHandleInput())
	require.NoError(t, err)
	user := createAccount(t, s, "tech@example.com", "Tech")

	_, err = s.visits.RecordVisit(ctx, "guide-missing", user.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = s.visits.RecordVisit(ctx, g.ID, "account-missing")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestVisitService_StatsByGuide(t *testing.T) {
	s := setupTestServices(t)
	ctx := context.Background()

	busy, err := s.guides.Create(ctx, GuideInput{Title: "Busy", Slug: "busy"})
	require.NoError(t, err)
	quiet, err := s.guides.Create(ctx, GuideInput{Title: "Quiet", Slug: "quiet"})
	require.NoError(t, err)
	gone, err := s.guides.Create(ctx, GuideInput{Title: "Gone", Slug: "gone"})
	require.NoError(t, err)

	alice := createAccount(t, s, "alice@example.com", "Alice")
	bob := createAccount(t, s, "bob@example.com", "Bob")

	for _, visit := range []struct{ guideID, userID string }{
		{busy.ID, alice.ID},
		{busy.ID, bob.ID},
		{busy.ID, alice.ID},
		{gone.ID, bob.ID},
	} {
		_, err := s.visits.RecordVisit(ctx, visit.guideID, visit.userID)
		require.NoError(t, err)
	}
	require.NoError(t, s.guides.Delete(ctx, gone.ID))

	stats, err := s.visits.StatsByGuide(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 2, "visits of deleted guides are not reported")

	assert.Equal(t, busy.ID, stats[0].Guide.ID)
	assert.Equal(t, 3, stats[0].VisitCount)
	assert.Equal(t, 2, stats[0].UniqueUserCount)
	require.Len(t, stats[0].Visits, 3)
	require.NotNil(t, stats[0].LastVisit)
	assert.True(t, stats[0].LastVisit.Equal(stats[0].Visits[0].Timestamp), "visits are newest first")

	assert.Equal(t, quiet.ID, stats[1].Guide.ID)
	assert.Zero(t, stats[1].VisitCount)
	assert.Zero(t, stats[1].UniqueUserCount)
	assert.NotNil(t, stats[1].Visits)
	assert.Empty(t, stats[1].Visits)
	assert.Nil(t, stats[1].LastVisit)
}
