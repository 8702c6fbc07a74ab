package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/workguide/guide-server/internal/domain"
)

func (s *Server) registerVisitRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "recordVisit",
		Method:        http.MethodPost,
		Path:          "/api/v1/visits",
		Summary:       "Record visit",
		Description:   "Records that a user opened a guide",
		Tags:          []string{"Visits"},
		DefaultStatus: http.StatusCreated,
	}, s.handleRecordVisit)

	huma.Register(s.api, huma.Operation{
		OperationID: "visitStats",
		Method:      http.MethodGet,
		Path:        "/api/v1/visits/stats",
		Summary:     "Visit statistics",
		Description: "Returns visit counts, last visit and unique users for every guide, busiest first",
		Tags:        []string{"Visits"},
	}, s.handleVisitStats)
}

// === DTOs ===

// RecordVisitRequest names the guide and the visitor.
type RecordVisitRequest struct {
	GuideID string `json:"guide_id" minLength:"1" doc:"Guide ID"`
	UserID  string `json:"user_id" minLength:"1" doc:"Account ID"`
}

// RecordVisitInput wraps the visit request for Huma.
type RecordVisitInput struct {
	Body RecordVisitRequest
}

// VisitOutput wraps a recorded visit.
type VisitOutput struct {
	Body *domain.VisitRecord
}

// VisitStatsResponse contains per-guide statistics.
type VisitStatsResponse struct {
	Guides []*domain.GuideVisitStats `json:"guides"`
}

// VisitStatsOutput wraps the statistics for Huma.
type VisitStatsOutput struct {
	Body VisitStatsResponse
}

// === Handlers ===

func (s *Server) handleRecordVisit(ctx context.Context, input *RecordVisitInput) (*VisitOutput, error) {
	v, err := s.services.Visit.RecordVisit(ctx, input.Body.GuideID, input.Body.UserID)
	if err != nil {
		return nil, err
	}
	return &VisitOutput{Body: v}, nil
}

func (s *Server) handleVisitStats(ctx context.Context, _ *struct{}) (*VisitStatsOutput, error) {
	stats, err := s.services.Visit.StatsByGuide(ctx)
	if err != nil {
		return nil, err
	}
	return &VisitStatsOutput{Body: VisitStatsResponse{Guides: stats}}, nil
}
