package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/workguide/guide-server/internal/errors"
)

func TestAttachmentService_SaveAndList(t *testing.T) {
	s := setupTestServices(t)
	ctx := context.Background()

	ref, size := putBlob(t, s, "first")
	a, err := s.attachments.Save(ctx, AttachmentInput{
		BlobRef: ref, Filename: " manual.pdf ", ContentType: "application/pdf", Size: size, GuideID: "install-window-handle",
	})
	require.NoError(t, err)
	assert.Equal(t, "manual.pdf", a.Filename)
	assert.Equal(t, "http://guides.test/api/v1/blobs/"+ref, a.URL)
	assert.False(t, a.UploadedAt.IsZero())

	ref2, size2 := putBlob(t, s, "second")
	_, err = s.attachments.Save(ctx, AttachmentInput{
		BlobRef: ref2, Filename: "photo.jpg", ContentType: "image/jpeg", Size: size2, GuideID: "install-window-handle",
	})
	require.NoError(t, err)

	// Another key is a separate bucket.
	ref3, size3 := putBlob(t, s, "other")
	_, err = s.attachments.Save(ctx, AttachmentInput{
		BlobRef: ref3, Filename: "other.txt", ContentType: "text/plain", Size: size3, GuideID: "other-guide",
	})
	require.NoError(t, err)

	list, err := s.attachments.ListByGuide(ctx, "install-window-handle")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "manual.pdf", list[0].Filename)
	assert.Equal(t, "photo.jpg", list[1].Filename)
	for _, item := range list {
		assert.NotEmpty(t, item.URL)
	}

	empty, err := s.attachments.ListByGuide(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestAttachmentService_SaveValidates(t *testing.T) {
	s := setupTestServices(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input AttachmentInput
	}{
		{"missing blob", AttachmentInput{Filename: "a.txt", ContentType: "text/plain", GuideID: "g"}},
		{"blank filename", AttachmentInput{BlobRef: "r", Filename: " ", ContentType: "text/plain", GuideID: "g"}},
		{"missing guide key", AttachmentInput{BlobRef: "r", Filename: "a.txt", ContentType: "text/plain"}},
		{"negative size", AttachmentInput{BlobRef: "r", Filename: "a.txt", ContentType: "text/plain", GuideID: "g", Size: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.attachments.Save(ctx, tt.input)
			assert.ErrorIs(t, err, domainerrors.ErrValidation)
		})
	}
}

func TestAttachmentService_DeleteAllByGuideIsBestEffort(t *testing.T) {
	s := setupTestServices(t)
	ctx := context.Background()

	present, size := putBlob(t, s, "still here")
	_, err := s.attachments.Save(ctx, AttachmentInput{
		BlobRef: present, Filename: "a.txt", ContentType: "text/plain", Size: size, GuideID: "g1",
	})
	require.NoError(t, err)

	missing, size := putBlob(t, s, "about to vanish")
	_, err = s.attachments.Save(ctx, AttachmentInput{
		BlobRef: missing, Filename: "b.txt", ContentType: "text/plain", Size: size, GuideID: "g1",
	})
	require.NoError(t, err)
	require.NoError(t, s.blobs.Delete(missing))

	removed, err := s.attachments.DeleteAllByGuide(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, 2, removed, "metadata goes even when the blob is already gone")
	assert.False(t, s.blobs.Exists(present))

	list, err := s.attachments.ListByGuide(ctx, "g1")
	require.NoError(t, err)
	assert.Empty(t, list)

	removed, err = s.attachments.DeleteAllByGuide(ctx, "g1")
	require.NoError(t, err)
	assert.Zero(t, removed)

	require.NoError(t, s.attachments.DeleteByGuide(ctx, "g1"))
}
