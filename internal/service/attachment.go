package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/workguide/guide-server/internal/domain"
	domainerrors "github.com/workguide/guide-server/internal/errors"
	"github.com/workguide/guide-server/internal/id"
	"github.com/workguide/guide-server/internal/store"
	"github.com/workguide/guide-server/internal/validation"
)

// BlobStorage is the subset of blob storage attachments need.
type BlobStorage interface {
	Delete(ref string) error
	URL(ref string) string
}

// AttachmentService keeps attachment metadata keyed by a guide correlation
// string. The key is not checked against guides: uploads may be filed under
// a slug before the guide exists.
type AttachmentService struct {
	store     *store.Store
	blobs     BlobStorage
	validator *validation.Validator
	logger    *slog.Logger
}

// NewAttachmentService creates a new attachment service.
func NewAttachmentService(store *store.Store, blobs BlobStorage, validator *validation.Validator, logger *slog.Logger) *AttachmentService {
	return &AttachmentService{
		store:     store,
		blobs:     blobs,
		validator: validator,
		logger:    logger,
	}
}

// AttachmentInput describes a blob that has already been stored.
type AttachmentInput struct {
	BlobRef     string `json:"blob_ref" validate:"required"`
	Filename    string `json:"filename" validate:"notblank,max=255"`
	ContentType string `json:"content_type" validate:"required,max=255"`
	Size        int64  `json:"size" validate:"gte=0"`
	GuideID     string `json:"guide_id" validate:"notblank,max=200"`
}

// Save records metadata for a stored blob and returns it with its URL.
func (s *AttachmentService) Save(ctx context.Context, input AttachmentInput) (*domain.Attachment, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	attachmentID, err := id.Generate(id.Attachment)
	if err != nil {
		return nil, err
	}

	a := &domain.Attachment{
		ID:          attachmentID,
		BlobRef:     input.BlobRef,
		Filename:    strings.TrimSpace(input.Filename),
		ContentType: input.ContentType,
		Size:        input.Size,
		GuideID:     strings.TrimSpace(input.GuideID),
		UploadedAt:  time.Now(),
	}
	if err := s.store.Attachments.Create(ctx, a.ID, a); err != nil {
		return nil, translate(err, "save attachment %q", a.Filename)
	}

	s.logger.Info("attachment saved",
		"attachment_id", a.ID,
		"guide_id", a.GuideID,
		"filename", a.Filename,
		"size", a.Size,
	)

	a.URL = s.blobs.URL(a.BlobRef)
	return a, nil
}

// ListByGuide returns a guide's attachments, oldest first, with retrieval URLs.
func (s *AttachmentService) ListByGuide(ctx context.Context, guideID string) ([]*domain.Attachment, error) {
	attachments, err := s.store.Attachments.ListByIndex(ctx, "guide", guideID)
	if err != nil {
		return nil, translate(err, "list attachments of %s", guideID)
	}

	sort.Slice(attachments, func(i, j int) bool {
		if !attachments[i].UploadedAt.Equal(attachments[j].UploadedAt) {
			return attachments[i].UploadedAt.Before(attachments[j].UploadedAt)
		}
		return attachments[i].ID < attachments[j].ID
	})
	for _, a := range attachments {
		a.URL = s.blobs.URL(a.BlobRef)
	}
	return attachments, nil
}

// DeleteByGuide removes every attachment of a guide.
func (s *AttachmentService) DeleteByGuide(ctx context.Context, guideID string) error {
	_, err := s.DeleteAllByGuide(ctx, guideID)
	return err
}

// DeleteAllByGuide removes every attachment of a guide and returns how many
// metadata rows were removed.
//
// Blob removal is best effort. A blob that is already gone, or that fails to
// delete, is logged as a storage inconsistency and its metadata row is
// removed anyway. Only metadata failures are returned.
func (s *AttachmentService) DeleteAllByGuide(ctx context.Context, guideID string) (int, error) {
	attachments, err := s.store.Attachments.ListByIndex(ctx, "guide", guideID)
	if err != nil {
		return 0, translate(err, "list attachments of %s", guideID)
	}

	removed := 0
	var errs []error
	for _, a := range attachments {
		if err := ctx.Err(); err != nil {
			return removed, err
		}

		if err := s.blobs.Delete(a.BlobRef); err != nil {
			inconsistency := domainerrors.StorageInconsistency("attachment blob could not be deleted", err)
			s.logger.Warn("attachment blob missing or undeletable",
				"guide_id", guideID,
				"attachment_id", a.ID,
				"blob_ref", a.BlobRef,
				"code", inconsistency.Code,
				"error", inconsistency,
			)
		}

		if err := s.store.Attachments.Delete(ctx, a.ID); err != nil {
			errs = append(errs, translate(err, "delete attachment %s", a.ID))
			continue
		}
		removed++
	}

	if removed > 0 {
		s.logger.Info("attachments deleted", "guide_id", guideID, "count", removed)
	}
	return removed, errors.Join(errs...)
}
