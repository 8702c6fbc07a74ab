package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/workguide/guide-server/internal/domain"
	"github.com/workguide/guide-server/internal/service"
)

func (s *Server) registerTagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags",
		Summary:     "List tags",
		Description: "Returns every tag ordered by name",
		Tags:        []string{"Tags"},
	}, s.handleListTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "upsertTag",
		Method:      http.MethodPost,
		Path:        "/api/v1/tags",
		Summary:     "Create or update tag",
		Description: "Creates a tag, or updates kind and color of the tag with the same name. Names compare without case or accents.",
		Tags:        []string{"Tags"},
	}, s.handleUpsertTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTag",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags/{id}",
		Summary:     "Get tag",
		Description: "Returns a tag by ID",
		Tags:        []string{"Tags"},
	}, s.handleGetTag)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteTag",
		Method:        http.MethodDelete,
		Path:          "/api/v1/tags/{id}",
		Summary:       "Delete tag",
		Description:   "Deletes a tag no guide uses. Fails with TAG_IN_USE otherwise.",
		Tags:          []string{"Tags"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteTag)
}

// === DTOs ===

// TagIDInput identifies a tag.
type TagIDInput struct {
	ID string `path:"id" doc:"Tag ID"`
}

// UpsertTagInput wraps the upsert request for Huma.
type UpsertTagInput struct {
	Body service.TagInput
}

// TagListResponse contains all tags.
type TagListResponse struct {
	Tags []*domain.Tag `json:"tags"`
}

// TagListOutput wraps the tag list response for Huma.
type TagListOutput struct {
	Body TagListResponse
}

// TagOutput wraps a single tag. Status is 201 when the upsert created it.
type TagOutput struct {
	Status int
	Body   *domain.Tag
}

// === Handlers ===

func (s *Server) handleListTags(ctx context.Context, _ *struct{}) (*TagListOutput, error) {
	tags, err := s.services.Tag.List(ctx)
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []*domain.Tag{}
	}
	return &TagListOutput{Body: TagListResponse{Tags: tags}}, nil
}

func (s *Server) handleUpsertTag(ctx context.Context, input *UpsertTagInput) (*TagOutput, error) {
	t, created, err := s.services.Tag.Upsert(ctx, input.Body)
	if err != nil {
		return nil, err
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return &TagOutput{Status: status, Body: t}, nil
}

func (s *Server) handleGetTag(ctx context.Context, input *TagIDInput) (*TagOutput, error) {
	t, err := s.services.Tag.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &TagOutput{Status: http.StatusOK, Body: t}, nil
}

func (s *Server) handleDeleteTag(ctx context.Context, input *TagIDInput) (*struct{}, error) {
	if err := s.services.Tag.Delete(ctx, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}
