package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/workguide/guide-server/internal/domain"
	"github.com/workguide/guide-server/internal/service"
)

func (s *Server) registerFeedbackRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createFeedback",
		Method:        http.MethodPost,
		Path:          "/api/v1/feedback",
		Summary:       "Create feedback",
		Description:   "Stores an open feedback note on a guide, optionally about one step",
		Tags:          []string{"Feedback"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateFeedback)

	huma.Register(s.api, huma.Operation{
		OperationID: "listGuideFeedback",
		Method:      http.MethodGet,
		Path:        "/api/v1/guides/{id}/feedback",
		Summary:     "List guide feedback",
		Description: "Returns a guide's feedback notes, oldest first",
		Tags:        []string{"Feedback"},
	}, s.handleListFeedback)

	huma.Register(s.api, huma.Operation{
		OperationID: "resolveFeedback",
		Method:      http.MethodPost,
		Path:        "/api/v1/feedback/{id}/resolve",
		Summary:     "Resolve feedback",
		Description: "Marks a note resolved. Resolving twice keeps the first resolution time.",
		Tags:        []string{"Feedback"},
	}, s.handleResolveFeedback)
}

// === DTOs ===

// CreateFeedbackInput wraps the feedback request for Huma.
type CreateFeedbackInput struct {
	Body service.FeedbackInput
}

// FeedbackIDInput identifies a feedback note.
type FeedbackIDInput struct {
	ID string `path:"id" doc:"Feedback ID"`
}

// FeedbackOutput wraps one note.
type FeedbackOutput struct {
	Body *domain.FeedbackNote
}

// FeedbackListResponse contains a guide's notes.
type FeedbackListResponse struct {
	Feedback []*domain.FeedbackNote `json:"feedback"`
}

// FeedbackListOutput wraps the note list for Huma.
type FeedbackListOutput struct {
	Body FeedbackListResponse
}

// === Handlers ===

func (s *Server) handleCreateFeedback(ctx context.Context, input *CreateFeedbackInput) (*FeedbackOutput, error) {
	note, err := s.services.Feedback.Create(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &FeedbackOutput{Body: note}, nil
}

func (s *Server) handleListFeedback(ctx context.Context, input *GuideIDInput) (*FeedbackListOutput, error) {
	notes, err := s.services.Feedback.ListByGuide(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if notes == nil {
		notes = []*domain.FeedbackNote{}
	}
	return &FeedbackListOutput{Body: FeedbackListResponse{Feedback: notes}}, nil
}

func (s *Server) handleResolveFeedback(ctx context.Context, input *FeedbackIDInput) (*FeedbackOutput, error) {
	note, err := s.services.Feedback.Resolve(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &FeedbackOutput{Body: note}, nil
}
