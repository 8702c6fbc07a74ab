package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/workguide/guide-server/internal/errors"
	"github.com/workguide/guide-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchGuides",
		Method:      http.MethodGet,
		Path:        "/api/v1/guides/search",
		Summary:     "Search guides",
		Description: "Full-text search over titles, tags, steps, tools, warnings and errors. Accents and case are ignored.",
		Tags:        []string{"Search"},
	}, s.handleSearch)
}

// === DTOs ===

// SearchInput contains parameters for searching guides.
type SearchInput struct {
	Query string `query:"q" maxLength:"200" doc:"Search query"`
	Limit int    `query:"limit" minimum:"0" maximum:"100" doc:"Max results (default 20)"`
}

// SearchOutput wraps the search response for Huma.
type SearchOutput struct {
	Body *search.Result
}

// === Handlers ===

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	if s.services.Search == nil {
		return nil, domainerrors.Wrap(nil, domainerrors.CodeInternal, "search is not available")
	}

	result, err := s.services.Search.Search(ctx, input.Query, input.Limit)
	if err != nil {
		return nil, err
	}
	return &SearchOutput{Body: result}, nil
}
