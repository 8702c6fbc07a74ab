package api

import (
	"bytes"
	"context"
	"mime"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/workguide/guide-server/internal/domain"
	domainerrors "github.com/workguide/guide-server/internal/errors"
	"github.com/workguide/guide-server/internal/service"
)

func (s *Server) registerAttachmentRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "uploadAttachment",
		Method:        http.MethodPost,
		Path:          "/api/v1/attachments",
		Summary:       "Upload attachment",
		Description:   "Stores the request body as a blob and records it under guide_id. The guide does not need to exist yet.",
		Tags:          []string{"Attachments"},
		DefaultStatus: http.StatusCreated,
		MaxBodyBytes:  MaxUploadSize,
	}, s.handleUploadAttachment)

	huma.Register(s.api, huma.Operation{
		OperationID: "listAttachments",
		Method:      http.MethodGet,
		Path:        "/api/v1/attachments/{guideId}",
		Summary:     "List attachments",
		Description: "Returns the attachments filed under a guide key, oldest first",
		Tags:        []string{"Attachments"},
	}, s.handleListAttachments)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteAttachments",
		Method:      http.MethodDelete,
		Path:        "/api/v1/attachments/{guideId}",
		Summary:     "Delete attachments",
		Description: "Deletes every attachment filed under a guide key and reports how many were removed",
		Tags:        []string{"Attachments"},
	}, s.handleDeleteAttachments)
}

// === DTOs ===

// UploadAttachmentInput carries raw file bytes.
type UploadAttachmentInput struct {
	GuideID     string `query:"guide_id" required:"true" doc:"Guide ID or slug the file belongs to"`
	Filename    string `query:"filename" required:"true" doc:"Original file name"`
	ContentType string `header:"Content-Type"`
	RawBody     []byte `contentType:"application/octet-stream"`
}

// AttachmentGuideInput names the guide key.
type AttachmentGuideInput struct {
	GuideID string `path:"guideId" doc:"Guide ID or slug"`
}

// AttachmentOutput wraps one attachment.
type AttachmentOutput struct {
	Body *domain.Attachment
}

// AttachmentListResponse contains a guide's attachments.
type AttachmentListResponse struct {
	Attachments []*domain.Attachment `json:"attachments"`
}

// AttachmentListOutput wraps the attachment list for Huma.
type AttachmentListOutput struct {
	Body AttachmentListResponse
}

// AttachmentDeleteResponse reports a bulk delete.
type AttachmentDeleteResponse struct {
	Deleted int `json:"deleted" doc:"Number of attachments removed"`
}

// AttachmentDeleteOutput wraps the delete result for Huma.
type AttachmentDeleteOutput struct {
	Body AttachmentDeleteResponse
}

// === Handlers ===

func (s *Server) handleUploadAttachment(ctx context.Context, input *UploadAttachmentInput) (*AttachmentOutput, error) {
	if s.blobs == nil {
		return nil, domainerrors.Wrap(nil, domainerrors.CodeInternal, "blob storage is not available")
	}
	if len(input.RawBody) == 0 {
		return nil, domainerrors.Validation("upload is empty")
	}

	ref, size, err := s.blobs.Put(bytes.NewReader(input.RawBody))
	if err != nil {
		return nil, err
	}

	contentType := declaredContentType(input.ContentType)
	if contentType == "" {
		contentType, err = s.blobs.ContentType(ref)
		if err != nil {
			_ = s.blobs.Delete(ref)
			return nil, err
		}
	}

	a, err := s.services.Attachment.Save(ctx, service.AttachmentInput{
		BlobRef:     ref,
		Filename:    input.Filename,
		ContentType: contentType,
		Size:        size,
		GuideID:     input.GuideID,
	})
	if err != nil {
		if derr := s.blobs.Delete(ref); derr != nil {
			s.logger.Warn("failed to remove blob of rejected upload", "blob_ref", ref, "error", derr)
		}
		return nil, err
	}

	return &AttachmentOutput{Body: a}, nil
}

func (s *Server) handleListAttachments(ctx context.Context, input *AttachmentGuideInput) (*AttachmentListOutput, error) {
	attachments, err := s.services.Attachment.ListByGuide(ctx, input.GuideID)
	if err != nil {
		return nil, err
	}
	if attachments == nil {
		attachments = []*domain.Attachment{}
	}
	return &AttachmentListOutput{Body: AttachmentListResponse{Attachments: attachments}}, nil
}

func (s *Server) handleDeleteAttachments(ctx context.Context, input *AttachmentGuideInput) (*AttachmentDeleteOutput, error) {
	n, err := s.services.Attachment.DeleteAllByGuide(ctx, input.GuideID)
	if err != nil {
		return nil, err
	}
	return &AttachmentDeleteOutput{Body: AttachmentDeleteResponse{Deleted: n}}, nil
}

// declaredContentType returns the client's media type unless it is missing
// or the generic octet-stream, in which case the bytes decide.
func declaredContentType(header string) string {
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil || mediaType == "application/octet-stream" {
		return ""
	}
	return header
}
