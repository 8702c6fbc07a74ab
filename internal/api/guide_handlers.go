package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/workguide/guide-server/internal/domain"
	"github.com/workguide/guide-server/internal/service"
)

func (s *Server) registerGuideRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listGuides",
		Method:      http.MethodGet,
		Path:        "/api/v1/guides",
		Summary:     "List guides",
		Description: "Returns every guide root, ordered by title",
		Tags:        []string{"Guides"},
	}, s.handleListGuides)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createGuide",
		Method:        http.MethodPost,
		Path:          "/api/v1/guides",
		Summary:       "Create guide",
		Description:   "Creates a guide with its tags, tools, steps, warnings, errors and images",
		Tags:          []string{"Guides"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateGuide)

	huma.Register(s.api, huma.Operation{
		OperationID: "getGuide",
		Method:      http.MethodGet,
		Path:        "/api/v1/guides/{id}",
		Summary:     "Get guide",
		Description: "Returns the assembled guide",
		Tags:        []string{"Guides"},
	}, s.handleGetGuide)

	huma.Register(s.api, huma.Operation{
		OperationID: "getGuideBySlug",
		Method:      http.MethodGet,
		Path:        "/api/v1/guides/by-slug/{slug}",
		Summary:     "Get guide by slug",
		Description: "Returns the assembled guide with the given slug",
		Tags:        []string{"Guides"},
	}, s.handleGetGuideBySlug)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateGuide",
		Method:      http.MethodPut,
		Path:        "/api/v1/guides/{id}",
		Summary:     "Update guide",
		Description: "Replaces the guide's content. Send the version you read to reject concurrent edits.",
		Tags:        []string{"Guides"},
	}, s.handleUpdateGuide)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteGuide",
		Method:        http.MethodDelete,
		Path:          "/api/v1/guides/{id}",
		Summary:       "Delete guide",
		Description:   "Deletes the guide and every row that belongs to it",
		Tags:          []string{"Guides"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteGuide)
}

// === DTOs ===

// GuideIDInput identifies a guide by ID.
type GuideIDInput struct {
	ID string `path:"id" doc:"Guide ID"`
}

// GuideSlugInput identifies a guide by slug.
type GuideSlugInput struct {
	Slug string `path:"slug" doc:"Guide slug"`
}

// CreateGuideInput wraps the create request for Huma.
type CreateGuideInput struct {
	Body service.GuideInput
}

// UpdateGuideRequest is the update payload.
type UpdateGuideRequest struct {
	service.GuideInput
	Version int `json:"version,omitempty" minimum:"0" doc:"Expected current version; 0 skips the check"`
}

// UpdateGuideInput wraps the update request for Huma.
type UpdateGuideInput struct {
	ID   string `path:"id" doc:"Guide ID"`
	Body UpdateGuideRequest
}

// GuideListResponse contains guide roots.
type GuideListResponse struct {
	Guides []*domain.Guide `json:"guides"`
}

// GuideListOutput wraps the guide list response for Huma.
type GuideListOutput struct {
	Body GuideListResponse
}

// GuideOutput wraps an assembled guide for Huma.
type GuideOutput struct {
	Body *domain.GuideAggregate
}

// === Handlers ===

func (s *Server) handleListGuides(ctx context.Context, _ *struct{}) (*GuideListOutput, error) {
	guides, err := s.services.Guide.List(ctx)
	if err != nil {
		return nil, err
	}
	if guides == nil {
		guides = []*domain.Guide{}
	}
	return &GuideListOutput{Body: GuideListResponse{Guides: guides}}, nil
}

func (s *Server) handleCreateGuide(ctx context.Context, input *CreateGuideInput) (*GuideOutput, error) {
	g, err := s.services.Guide.Create(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &GuideOutput{Body: g}, nil
}

func (s *Server) handleGetGuide(ctx context.Context, input *GuideIDInput) (*GuideOutput, error) {
	g, err := s.services.Guide.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &GuideOutput{Body: g}, nil
}

func (s *Server) handleGetGuideBySlug(ctx context.Context, input *GuideSlugInput) (*GuideOutput, error) {
	g, err := s.services.Guide.GetBySlug(ctx, input.Slug)
	if err != nil {
		return nil, err
	}
	return &GuideOutput{Body: g}, nil
}

func (s *Server) handleUpdateGuide(ctx context.Context, input *UpdateGuideInput) (*GuideOutput, error) {
	g, err := s.services.Guide.Update(ctx, input.ID, input.Body.GuideInput, input.Body.Version)
	if err != nil {
		return nil, err
	}
	return &GuideOutput{Body: g}, nil
}

func (s *Server) handleDeleteGuide(ctx context.Context, input *GuideIDInput) (*struct{}, error) {
	if err := s.services.Guide.Delete(ctx, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}
