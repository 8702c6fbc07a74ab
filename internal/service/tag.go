package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/workguide/guide-server/internal/domain"
	domainerrors "github.com/workguide/guide-server/internal/errors"
	"github.com/workguide/guide-server/internal/id"
	"github.com/workguide/guide-server/internal/store"
	"github.com/workguide/guide-server/internal/util"
	"github.com/workguide/guide-server/internal/validation"
)

// getOrCreateAttempts bounds retries when a concurrent writer claims a name
// between our lookup and our insert.
const getOrCreateAttempts = 3

// TagService is the tag registry: one global namespace of typed names.
type TagService struct {
	store     *store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewTagService creates a new tag service.
func NewTagService(store *store.Store, validator *validation.Validator, logger *slog.Logger) *TagService {
	return &TagService{
		store:     store,
		validator: validator,
		logger:    logger,
	}
}

// TagInput is the explicit upsert payload.
type TagInput struct {
	Name  string         `json:"name" yaml:"name" validate:"notblank,max=100"`
	Kind  domain.TagKind `json:"kind" yaml:"kind" validate:"required,tagkind"`
	Color *string        `json:"color,omitempty" yaml:"color,omitempty" validate:"omitempty,max=32"`
}

// List returns every tag ordered by name.
func (s *TagService) List(ctx context.Context) ([]*domain.Tag, error) {
	tags, err := s.store.ListTags(ctx)
	return tags, translate(err, "list tags")
}

// Get returns a tag by ID.
func (s *TagService) Get(ctx context.Context, tagID string) (*domain.Tag, error) {
	t, err := s.store.GetTag(ctx, tagID)
	if err != nil {
		return nil, translate(err, "tag %s not found", tagID)
	}
	return t, nil
}

// GetOrCreate returns the tag named name, creating it with kind if absent.
// An existing tag keeps its kind: the first writer wins, which is what makes
// repeated imports converge.
func (s *TagService) GetOrCreate(ctx context.Context, name string, kind domain.TagKind) (*domain.Tag, bool, error) {
	return s.getOrCreate(ctx, name, kind, "")
}

func (s *TagService) getOrCreate(ctx context.Context, name string, kind domain.TagKind, color string) (*domain.Tag, bool, error) {
	name = util.CleanTagName(name)
	if name == "" {
		return nil, false, domainerrors.Validation("tag name is required")
	}
	if !kind.Valid() {
		return nil, false, domainerrors.Validationf("unknown tag kind %q", kind)
	}

	for range getOrCreateAttempts {
		existing, err := s.store.GetTagByName(ctx, name)
		if err == nil {
			return existing, false, nil
		}
		if !errors.Is(err, store.ErrTagNotFound) {
			return nil, false, translate(err, "look up tag %q", name)
		}

		tagID, err := id.Generate(id.Tag)
		if err != nil {
			return nil, false, err
		}
		now := time.Now()
		t := &domain.Tag{ID: tagID, Name: name, Kind: kind, Color: color, CreatedAt: now, UpdatedAt: now}

		err = s.store.CreateTag(ctx, t)
		if err == nil {
			s.logger.Info("tag created",
				"tag_id", t.ID,
				"name", t.Name,
				"kind", t.Kind,
			)
			return t, true, nil
		}
		if !errors.Is(err, store.ErrTagNameTaken) {
			return nil, false, translate(err, "create tag %q", name)
		}
		// Lost the race; the winner's row is visible on the next lookup.
	}

	return nil, false, domainerrors.Conflictf("tag %q is being created concurrently", name)
}

// Upsert creates the tag or overwrites the kind and color of an existing one.
// The stored display name is kept.
func (s *TagService) Upsert(ctx context.Context, input TagInput) (*domain.Tag, bool, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, false, err
	}

	color := ""
	if input.Color != nil {
		color = *input.Color
	}

	t, created, err := s.getOrCreate(ctx, input.Name, input.Kind, color)
	if err != nil || created {
		return t, created, err
	}

	t.Kind = input.Kind
	if input.Color != nil {
		t.Color = *input.Color
	}
	t.Touch()
	if err := s.store.UpdateTag(ctx, t); err != nil {
		return nil, false, translate(err, "update tag %q", t.Name)
	}

	s.logger.Info("tag updated", "tag_id", t.ID, "kind", t.Kind, "color", t.Color)
	return t, false, nil
}

// CanDelete reports whether no guide links to the tag in either category.
// The answer can be stale by the time the caller acts on it.
func (s *TagService) CanDelete(ctx context.Context, tagID string) (bool, error) {
	linked, err := s.store.TagHasLinks(ctx, tagID)
	if err != nil {
		return false, translate(err, "check links of tag %s", tagID)
	}
	return !linked, nil
}

// Delete removes an unused tag.
// Returns NOT_FOUND for an unknown tag and TAG_IN_USE while any guide links to it.
func (s *TagService) Delete(ctx context.Context, tagID string) error {
	t, err := s.Get(ctx, tagID)
	if err != nil {
		return err
	}

	ok, err := s.CanDelete(ctx, tagID)
	if err != nil {
		return err
	}
	if !ok {
		count, err := s.store.CountTagGuides(ctx, tagID)
		if err != nil {
			return translate(err, "count links of tag %s", tagID)
		}
		return domainerrors.TagInUse(fmt.Sprintf("tag %q is used by %d guide(s)", t.Name, count)).
			WithDetails(map[string]any{"tag_id": tagID, "guide_count": count})
	}

	if err := s.store.DeleteTag(ctx, tagID); err != nil {
		return translate(err, "delete tag %s", tagID)
	}

	s.logger.Info("tag deleted", "tag_id", tagID, "name", t.Name)
	return nil
}
