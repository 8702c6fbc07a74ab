package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/workguide/guide-server/internal/domain"
	domainerrors "github.com/workguide/guide-server/internal/errors"
	"github.com/workguide/guide-server/internal/id"
	"github.com/workguide/guide-server/internal/store"
	"github.com/workguide/guide-server/internal/validation"
)

// GuideIndexer keeps a search index in step with guide writes.
type GuideIndexer interface {
	IndexGuide(ctx context.Context, g *domain.GuideAggregate) error
	DeleteGuide(ctx context.Context, guideID string) error
}

// AttachmentCleaner removes attachment metadata and blobs for a guide key.
type AttachmentCleaner interface {
	DeleteAllByGuide(ctx context.Context, guideID string) (int, error)
}

// GuideService writes and reads guide aggregates.
//
// A guide is a root row plus independent child rows. Nothing here is
// transactional across rows: create writes the root then each child, update
// bumps the root then deletes and re-inserts every child, delete removes
// children before the root. Re-running update or delete with the same input
// converges to the same state.
type GuideService struct {
	store       *store.Store
	tags        *TagService
	attachments AttachmentCleaner
	indexer     GuideIndexer
	validator   *validation.Validator
	logger      *slog.Logger
}

// NewGuideService creates a new guide service.
func NewGuideService(store *store.Store, tags *TagService, validator *validation.Validator, logger *slog.Logger) *GuideService {
	return &GuideService{
		store:     store,
		tags:      tags,
		validator: validator,
		logger:    logger,
	}
}

// SetIndexer sets the search indexer.
// Set after construction because the index is built from this service's reads.
func (s *GuideService) SetIndexer(indexer GuideIndexer) {
	s.indexer = indexer
}

// SetAttachmentCleaner sets the collaborator that removes attachments on delete.
func (s *GuideService) SetAttachmentCleaner(cleaner AttachmentCleaner) {
	s.attachments = cleaner
}

// Create stores a new guide with version 1 and all of its children.
// A slug already used by another guide is a CONFLICT.
func (s *GuideService) Create(ctx context.Context, input GuideInput) (*domain.GuideAggregate, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	// Rejections must not leave freshly created tags behind.
	if err := s.checkSlugFree(ctx, input.Slug, ""); err != nil {
		return nil, err
	}

	tags, err := s.resolveTags(ctx, &input)
	if err != nil {
		return nil, err
	}

	guideID, err := id.Generate(id.Guide)
	if err != nil {
		return nil, err
	}
	g := &domain.Guide{
		ID:       guideID,
		Title:    strings.TrimSpace(input.Title),
		Slug:     input.Slug,
		VideoURL: strings.TrimSpace(input.VideoURL),
		Version:  1,
	}
	g.InitTimestamps()

	if err := s.store.CreateGuide(ctx, g); err != nil {
		if errors.Is(err, store.ErrSlugTaken) {
			return nil, slugConflict(g.Slug)
		}
		return nil, translate(err, "create guide %q", g.Slug)
	}

	if err := s.writeChildren(ctx, g.ID, &input, tags); err != nil {
		return nil, err
	}

	s.logger.Info("guide created",
		"guide_id", g.ID,
		"slug", g.Slug,
		"steps", len(input.Steps),
		"tags", len(tags[domain.LinkWorkType])+len(tags[domain.LinkProduct]),
	)

	return s.afterWrite(ctx, g)
}

// Update replaces a guide's scalars and every child row.
//
// expectedVersion > 0 makes the root update a compare-and-swap: a guide whose
// version has moved on is rejected with CONFLICT and left untouched. Zero
// updates unconditionally. The version grows by exactly one per call.
func (s *GuideService) Update(ctx context.Context, guideID string, input GuideInput, expectedVersion int) (*domain.GuideAggregate, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}
	if expectedVersion < 0 {
		return nil, domainerrors.Validationf("version must not be negative, got %d", expectedVersion)
	}

	current, err := s.store.GetGuide(ctx, guideID)
	if err != nil {
		return nil, translate(err, "guide %s not found", guideID)
	}

	// Checked here so a rejected update creates no tags. The store repeats
	// both checks atomically with the write.
	if expectedVersion > 0 && current.Version != expectedVersion {
		return nil, versionConflict(guideID, expectedVersion, current.Version)
	}
	if err := s.checkSlugFree(ctx, input.Slug, guideID); err != nil {
		return nil, err
	}

	tags, err := s.resolveTags(ctx, &input)
	if err != nil {
		return nil, err
	}

	g, err := s.store.UpdateGuide(ctx, guideID, expectedVersion, func(g *domain.Guide) error {
		g.Title = strings.TrimSpace(input.Title)
		g.Slug = input.Slug
		g.VideoURL = strings.TrimSpace(input.VideoURL)
		return nil
	})
	switch {
	case errors.Is(err, store.ErrVersionConflict):
		return nil, domainerrors.Conflictf("guide %s was modified: expected version %d", guideID, expectedVersion).
			WithCause(err)
	case errors.Is(err, store.ErrSlugTaken):
		return nil, slugConflict(input.Slug)
	case err != nil:
		return nil, translate(err, "update guide %s", guideID)
	}

	removed, err := s.clearChildren(ctx, guideID)
	if err != nil {
		return nil, err
	}

	if input.ReplaceAttachments && s.attachments != nil {
		if _, err := s.attachments.DeleteAllByGuide(ctx, guideID); err != nil {
			return nil, fmt.Errorf("replace attachments of %s: %w", guideID, err)
		}
	}

	if err := s.writeChildren(ctx, guideID, &input, tags); err != nil {
		return nil, err
	}

	s.logger.Info("guide updated",
		"guide_id", guideID,
		"version", g.Version,
		"children_replaced", removed,
	)

	return s.afterWrite(ctx, g)
}

// checkSlugFree fails with CONFLICT when slug belongs to a guide other than
// ownerID.
func (s *GuideService) checkSlugFree(ctx context.Context, slug, ownerID string) error {
	other, err := s.store.GetGuideBySlug(ctx, slug)
	switch {
	case errors.Is(err, store.ErrGuideNotFound):
		return nil
	case err != nil:
		return translate(err, "look up slug %q", slug)
	case other.ID != ownerID:
		return slugConflict(slug)
	}
	return nil
}

func slugConflict(slug string) *domainerrors.Error {
	return domainerrors.Conflictf("slug %q is already used by another guide", slug).
		WithDetails(map[string]string{"slug": slug})
}

func versionConflict(guideID string, expected, current int) *domainerrors.Error {
	return domainerrors.Conflictf("guide %s was modified: expected version %d", guideID, expected).
		WithDetails(map[string]int{"expected_version": expected, "current_version": current})
}

// Delete removes a guide's children, tag links and attachments, then the
// root. Feedback and visit rows are kept. Deleting an unknown guide clears
// any orphaned children and succeeds.
func (s *GuideService) Delete(ctx context.Context, guideID string) error {
	g, err := s.store.GetGuide(ctx, guideID)
	if err != nil && !errors.Is(err, store.ErrGuideNotFound) {
		return translate(err, "load guide %s", guideID)
	}

	removed, err := s.clearChildren(ctx, guideID)
	if err != nil {
		return err
	}

	attachments := 0
	if s.attachments != nil {
		keys := []string{guideID}
		if g != nil && g.Slug != guideID {
			// Uploads made before the guide existed are filed under its slug.
			keys = append(keys, g.Slug)
		}
		for _, key := range keys {
			n, err := s.attachments.DeleteAllByGuide(ctx, key)
			if err != nil {
				return fmt.Errorf("delete attachments of %s: %w", key, err)
			}
			attachments += n
		}
	}

	if err := s.store.DeleteGuide(ctx, guideID); err != nil {
		return translate(err, "delete guide %s", guideID)
	}

	if s.indexer != nil {
		if err := s.indexer.DeleteGuide(ctx, guideID); err != nil {
			s.logger.Warn("failed to remove guide from search index", "guide_id", guideID, "error", err)
		}
	}

	s.logger.Info("guide deleted",
		"guide_id", guideID,
		"existed", g != nil,
		"children_removed", removed,
		"attachments_removed", attachments,
	)
	return nil
}

// Get assembles the aggregate for guideID.
func (s *GuideService) Get(ctx context.Context, guideID string) (*domain.GuideAggregate, error) {
	g, err := s.store.GetGuide(ctx, guideID)
	if err != nil {
		return nil, translate(err, "guide %s not found", guideID)
	}
	return s.assemble(ctx, g)
}

// GetBySlug assembles the aggregate for the guide owning slug.
func (s *GuideService) GetBySlug(ctx context.Context, slug string) (*domain.GuideAggregate, error) {
	g, err := s.store.GetGuideBySlug(ctx, slug)
	if err != nil {
		return nil, translate(err, "no guide with slug %q", slug)
	}
	return s.assemble(ctx, g)
}

// List returns every guide root ordered by title.
func (s *GuideService) List(ctx context.Context) ([]*domain.Guide, error) {
	guides, err := s.store.ListGuides(ctx)
	if err != nil {
		return nil, translate(err, "list guides")
	}
	sortGuidesByTitle(guides)
	return guides, nil
}

// sortGuidesByTitle orders guides by title using Unicode collation, so
// accented titles sort next to their base letters.
func sortGuidesByTitle(guides []*domain.Guide) {
	c := collate.New(language.Und, collate.IgnoreCase, collate.IgnoreDiacritics)
	sort.SliceStable(guides, func(i, j int) bool {
		if r := c.CompareString(guides[i].Title, guides[j].Title); r != 0 {
			return r < 0
		}
		return guides[i].ID < guides[j].ID
	})
}

// resolveTags turns both tag name lists into tags, creating missing ones with
// the category's kind. Blank names are skipped and repeats collapse.
func (s *GuideService) resolveTags(ctx context.Context, input *GuideInput) (map[domain.LinkCategory][]*domain.Tag, error) {
	resolved := make(map[domain.LinkCategory][]*domain.Tag, len(domain.LinkCategories))
	for _, category := range domain.LinkCategories {
		seen := make(map[string]struct{})
		for _, name := range input.tagNames(category) {
			if strings.TrimSpace(name) == "" {
				continue
			}
			t, _, err := s.tags.GetOrCreate(ctx, name, category.TagKind())
			if err != nil {
				return nil, fmt.Errorf("resolve %s tag %q: %w", category, name, err)
			}
			if _, dup := seen[t.ID]; dup {
				continue
			}
			seen[t.ID] = struct{}{}
			resolved[category] = append(resolved[category], t)
		}
	}
	return resolved, nil
}

// writeChildren inserts links and child rows one key at a time.
func (s *GuideService) writeChildren(ctx context.Context, guideID string, input *GuideInput, tags map[domain.LinkCategory][]*domain.Tag) error {
	for _, category := range domain.LinkCategories {
		for i, t := range tags[category] {
			link := &domain.GuideTagLink{GuideID: guideID, TagID: t.ID, Category: category, Order: i}
			if err := s.store.AddGuideTagLink(ctx, link); err != nil {
				return translate(err, "link tag %s to guide %s", t.ID, guideID)
			}
		}
	}

	lists := []struct {
		collection store.Collection
		prefix     string
		items      []ItemInput
	}{
		{store.CollectionTools, id.Tool, input.Tools},
		{store.CollectionWarnings, id.Warning, input.Warnings},
		{store.CollectionErrors, id.ErrorItem, input.Errors},
	}
	for _, list := range lists {
		for i, it := range list.items {
			item := &domain.ListItem{ID: id.MustGenerate(list.prefix), GuideID: guideID, Order: i, Text: strings.TrimSpace(it.Text)}
			if err := s.store.InsertListItem(ctx, list.collection, item); err != nil {
				return translate(err, "insert %s %d of guide %s", list.collection, i, guideID)
			}
		}
	}

	for _, st := range input.Steps {
		step := &domain.Step{ID: id.MustGenerate(id.Step), GuideID: guideID, Number: st.Number, Text: strings.TrimSpace(st.Text)}
		if err := s.store.InsertStep(ctx, step); err != nil {
			return translate(err, "insert step %d of guide %s", st.Number, guideID)
		}
	}

	for i, im := range input.Images {
		img := &domain.Image{
			ID:         id.MustGenerate(id.Image),
			GuideID:    guideID,
			URL:        strings.TrimSpace(im.URL),
			StepNumber: im.StepNumber,
			Caption:    strings.TrimSpace(im.Caption),
			Order:      i,
		}
		if err := s.store.InsertImage(ctx, img); err != nil {
			return translate(err, "insert image %d of guide %s", i, guideID)
		}
	}

	return nil
}

// clearChildren deletes every child row and tag link of a guide.
// Returns the number of rows removed.
func (s *GuideService) clearChildren(ctx context.Context, guideID string) (int, error) {
	removed := 0
	for _, c := range store.ChildCollections {
		n, err := s.store.DeleteChildren(ctx, c, guideID)
		if err != nil {
			return removed, translate(err, "clear %s rows of guide %s", c, guideID)
		}
		removed += n
	}
	for _, category := range domain.LinkCategories {
		n, err := s.store.DeleteGuideTagLinks(ctx, guideID, category)
		if err != nil {
			return removed, translate(err, "clear %s links of guide %s", category, guideID)
		}
		removed += n
	}
	return removed, nil
}

// assemble reads every child collection of g.
func (s *GuideService) assemble(ctx context.Context, g *domain.Guide) (*domain.GuideAggregate, error) {
	agg := &domain.GuideAggregate{Guide: *g}

	for _, category := range domain.LinkCategories {
		links, err := s.store.ListGuideTagLinks(ctx, g.ID, category)
		if err != nil {
			return nil, translate(err, "read %s links of guide %s", category, g.ID)
		}
		tags := make([]*domain.Tag, 0, len(links))
		for _, link := range links {
			t, err := s.store.GetTag(ctx, link.TagID)
			if errors.Is(err, store.ErrTagNotFound) {
				// Tag deletion raced a link write; skip the dangling link.
				s.logger.Warn("guide links to missing tag", "guide_id", g.ID, "tag_id", link.TagID)
				continue
			}
			if err != nil {
				return nil, translate(err, "read tag %s", link.TagID)
			}
			tags = append(tags, t)
		}
		if category == domain.LinkProduct {
			agg.ProductTags = tags
		} else {
			agg.WorkTypeTags = tags
		}
	}

	var err error
	if agg.Tools, err = s.store.ListListItems(ctx, store.CollectionTools, g.ID); err != nil {
		return nil, translate(err, "read tools of guide %s", g.ID)
	}
	if agg.Warnings, err = s.store.ListListItems(ctx, store.CollectionWarnings, g.ID); err != nil {
		return nil, translate(err, "read warnings of guide %s", g.ID)
	}
	if agg.Errors, err = s.store.ListListItems(ctx, store.CollectionErrors, g.ID); err != nil {
		return nil, translate(err, "read errors of guide %s", g.ID)
	}
	if agg.Steps, err = s.store.ListSteps(ctx, g.ID); err != nil {
		return nil, translate(err, "read steps of guide %s", g.ID)
	}
	if agg.Images, err = s.store.ListImages(ctx, g.ID); err != nil {
		return nil, translate(err, "read images of guide %s", g.ID)
	}

	return agg, nil
}

// afterWrite reads the aggregate back and refreshes the search index.
func (s *GuideService) afterWrite(ctx context.Context, g *domain.Guide) (*domain.GuideAggregate, error) {
	agg, err := s.assemble(ctx, g)
	if err != nil {
		return nil, err
	}
	if s.indexer != nil {
		if err := s.indexer.IndexGuide(ctx, agg); err != nil {
			s.logger.Warn("failed to index guide", "guide_id", g.ID, "error", err)
		}
	}
	return agg, nil
}
