package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/workguide/guide-server/internal/errors"
	"github.com/workguide/guide-server/internal/service"
)

func (s *Server) registerImportRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:  "importDataset",
		Method:       http.MethodPost,
		Path:         "/api/v1/import",
		Summary:      "Import dataset",
		Description:  "Imports tags, accounts, guides and feedback. Tags, accounts and guides are matched by name, email and slug, so re-running an import converges.",
		Tags:         []string{"Import"},
		MaxBodyBytes: MaxImportSize,
		Middlewares:  huma.Middlewares{s.limitImports},
	}, s.handleImport)
}

// === DTOs ===

// ImportRequest is a dataset plus run options.
type ImportRequest struct {
	service.ImportDataset
	FeedbackPolicy string `json:"feedback_policy,omitempty" enum:"append,skip-duplicates" doc:"What to do with feedback rows already stored"`
}

// ImportInput wraps the import request for Huma.
type ImportInput struct {
	Body ImportRequest
}

// ImportOutput wraps the import result for Huma.
type ImportOutput struct {
	Body *service.ImportResult
}

// === Handlers ===

func (s *Server) handleImport(ctx context.Context, input *ImportInput) (*ImportOutput, error) {
	policy := s.opts.FeedbackPolicy
	if input.Body.FeedbackPolicy != "" {
		p, err := service.ParseFeedbackPolicy(input.Body.FeedbackPolicy)
		if err != nil {
			return nil, err
		}
		policy = p
	}

	result, err := s.services.Import.ImportAll(ctx, input.Body.ImportDataset, service.ImportOptions{FeedbackPolicy: policy})
	if err != nil {
		// A run stopped by a bad guide still wrote earlier rows; report them.
		var domainErr *domainerrors.Error
		if result != nil && errors.As(err, &domainErr) {
			return nil, domainErr.WithDetails(result)
		}
		return nil, err
	}

	return &ImportOutput{Body: result}, nil
}
