package service

import (
	"context"
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

// FeedbackService manages notes users leave on guides.
type FeedbackService struct {
	store     *store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewFeedbackService creates a new feedback service.
func NewFeedbackService(store *store.Store, validator *validation.Validator, logger *slog.Logger) *FeedbackService {
	return &FeedbackService{store: store, validator: validator, logger: logger}
}

// FeedbackInput is a new note on a guide, optionally about one step.
type FeedbackInput struct {
	GuideID    string `json:"guide_id" validate:"required"`
	UserID     string `json:"user_id" validate:"required"`
	Message    string `json:"message" validate:"notblank,max=5000"`
	StepNumber *int   `json:"step_number,omitempty" validate:"omitempty,gte=1"`
}

// Create stores an open note. The guide and the author must exist.
func (s *FeedbackService) Create(ctx context.Context, input FeedbackInput) (*domain.FeedbackNote, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	exists, err := s.store.GuideExists(ctx, input.GuideID)
	if err != nil {
		return nil, translate(err, "check guide %s", input.GuideID)
	}
	if !exists {
		return nil, domainerrors.NotFoundf("guide %s not found", input.GuideID)
	}
	if _, err := s.store.Accounts.Get(ctx, input.UserID); err != nil {
		return nil, translate(err, "account %s not found", input.UserID)
	}

	noteID, err := id.Generate(id.Feedback)
	if err != nil {
		return nil, err
	}
	note := &domain.FeedbackNote{
		ID:         noteID,
		GuideID:    input.GuideID,
		UserID:     input.UserID,
		Message:    strings.TrimSpace(input.Message),
		StepNumber: input.StepNumber,
		State:      domain.FeedbackOpen,
		CreatedAt:  time.Now(),
	}
	if err := s.store.Feedback.Create(ctx, note.ID, note); err != nil {
		return nil, translate(err, "save feedback")
	}

	s.logger.Info("feedback created", "feedback_id", note.ID, "guide_id", note.GuideID, "user_id", note.UserID)
	return note, nil
}

// Resolve marks a note resolved. Resolving twice is harmless.
func (s *FeedbackService) Resolve(ctx context.Context, feedbackID string) (*domain.FeedbackNote, error) {
	note, err := s.store.Feedback.Mutate(ctx, feedbackID, func(f *domain.FeedbackNote) error {
		f.Resolve()
		return nil
	})
	if err != nil {
		return nil, translate(err, "feedback %s not found", feedbackID)
	}
	return note, nil
}

// ListByGuide returns a guide's notes, oldest first. Notes survive their
// guide, so this also works for deleted guide IDs.
func (s *FeedbackService) ListByGuide(ctx context.Context, guideID string) ([]*domain.FeedbackNote, error) {
	notes, err := s.store.Feedback.ListByIndex(ctx, "guide", guideID)
	if err != nil {
		return nil, translate(err, "list feedback of %s", guideID)
	}
	sort.Slice(notes, func(i, j int) bool {
		if !notes[i].CreatedAt.Equal(notes[j].CreatedAt) {
			return notes[i].CreatedAt.Before(notes[j].CreatedAt)
		}
		return notes[i].ID < notes[j].ID
	})
	return notes, nil
}
