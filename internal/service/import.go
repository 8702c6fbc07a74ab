package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/workguide/guide-server/internal/domain"
	domainerrors "github.com/workguide/guide-server/internal/errors"
	"github.com/workguide/guide-server/internal/id"
	"github.com/workguide/guide-server/internal/store"
)

// FeedbackPolicy decides what a re-import does with feedback rows that
// already exist. Feedback has no natural key, so this is a choice.
type FeedbackPolicy string

// Feedback policies.
const (
	// FeedbackAppend inserts every row; each import is an archival snapshot.
	FeedbackAppend FeedbackPolicy = "append"
	// FeedbackSkipDuplicates skips rows matching an existing note on guide,
	// author, message and creation time.
	FeedbackSkipDuplicates FeedbackPolicy = "skip-duplicates"
)

// ParseFeedbackPolicy parses a policy name. Empty means FeedbackAppend.
func ParseFeedbackPolicy(s string) (FeedbackPolicy, error) {
	switch p := FeedbackPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return FeedbackAppend, nil
	case FeedbackAppend, FeedbackSkipDuplicates:
		return p, nil
	default:
		return "", domainerrors.Validationf("unknown feedback policy %q (want append or skip-duplicates)", s)
	}
}

// ImportTag is a tag row. LocalID is the source system's identifier; guide
// tag lists may name the tag by it or by name.
type ImportTag struct {
	LocalID string         `json:"id,omitempty" yaml:"id,omitempty"`
	Name    string         `json:"name" yaml:"name"`
	Kind    domain.TagKind `json:"kind,omitempty" yaml:"kind,omitempty"`
	Color   string         `json:"color,omitempty" yaml:"color,omitempty"`
}

// ImportAccount is an account row, matched by email.
type ImportAccount struct {
	LocalID      string `json:"id,omitempty" yaml:"id,omitempty"`
	AccountInput `yaml:",inline"`
}

// ImportGuide is a guide row, matched by slug.
type ImportGuide struct {
	LocalID    string `json:"id,omitempty" yaml:"id,omitempty"`
	GuideInput `yaml:",inline"`
}

// ImportFeedback is a feedback row. GuideRef and UserRef name rows of the
// same dataset by local ID, or by slug and email.
type ImportFeedback struct {
	LocalID    string               `json:"id,omitempty" yaml:"id,omitempty"`
	GuideRef   string               `json:"guide_id" yaml:"guide_id"`
	UserRef    string               `json:"user_id" yaml:"user_id"`
	Message    string               `json:"message" yaml:"message"`
	StepNumber *int                 `json:"step_number,omitempty" yaml:"step_number,omitempty"`
	State      domain.FeedbackState `json:"state,omitempty" yaml:"state,omitempty"`
	CreatedAt  time.Time            `json:"created_at,omitzero" yaml:"created_at,omitempty" required:"false"`
	ResolvedAt *time.Time           `json:"resolved_at,omitempty" yaml:"resolved_at,omitempty"`
}

// ImportDataset is a whole catalog snapshot.
type ImportDataset struct {
	Tags     []ImportTag      `json:"tags,omitempty" yaml:"tags,omitempty"`
	Accounts []ImportAccount  `json:"accounts,omitempty" yaml:"accounts,omitempty"`
	Guides   []ImportGuide    `json:"guides,omitempty" yaml:"guides,omitempty"`
	Feedback []ImportFeedback `json:"feedback,omitempty" yaml:"feedback,omitempty"`
}

// ImportOptions tunes an import run.
type ImportOptions struct {
	FeedbackPolicy FeedbackPolicy
}

// ImportCounts tallies what an import did per category.
type ImportCounts struct {
	TagsCreated        int `json:"tags_created"`
	TagsReused         int `json:"tags_reused"`
	TagsSkipped        int `json:"tags_skipped"`
	AccountsCreated    int `json:"accounts_created"`
	AccountsReused     int `json:"accounts_reused"`
	AccountsSkipped    int `json:"accounts_skipped"`
	GuidesCreated      int `json:"guides_created"`
	GuidesUpdated      int `json:"guides_updated"`
	FeedbackImported   int `json:"feedback_imported"`
	FeedbackSkipped    int `json:"feedback_skipped"`
	FeedbackDuplicates int `json:"feedback_duplicates"`
}

// ImportResult lists the backend IDs assigned to imported rows, in input
// order. Skipped rows have no entry.
type ImportResult struct {
	TagIDs      []string     `json:"tag_ids"`
	AccountIDs  []string     `json:"account_ids"`
	GuideIDs    []string     `json:"guide_ids"`
	FeedbackIDs []string     `json:"feedback_ids"`
	Counts      ImportCounts `json:"counts"`
}

// ImportService loads a dataset in dependency order: tags, accounts,
// guides, then feedback. Re-running the same dataset creates no new tags,
// accounts or guides.
type ImportService struct {
	store    *store.Store
	tags     *TagService
	accounts *AccountService
	guides   *GuideService
	logger   *slog.Logger
}

// NewImportService creates a new import service.
func NewImportService(
	store *store.Store,
	tags *TagService,
	accounts *AccountService,
	guides *GuideService,
	logger *slog.Logger,
) *ImportService {
	return &ImportService{
		store:    store,
		tags:     tags,
		accounts: accounts,
		guides:   guides,
		logger:   logger,
	}
}

// importRun carries the reference maps built while importing.
type importRun struct {
	opts     ImportOptions
	result   *ImportResult
	tags     map[string]string // local ID → stored tag name
	accounts map[string]string // local ID or normalized email → account ID
	guides   map[string]string // local ID or slug → guide ID

	// Fingerprints of stored notes per guide, loaded on first use.
	seen map[string]map[string]struct{}
}

// ImportAll imports a dataset.
//
// Bad tag and account rows are skipped and counted. A guide that fails to
// import stops the run, since later rows may depend on it; the partial
// result is returned with the error. Feedback rows whose guide or author
// cannot be resolved are skipped and counted.
func (s *ImportService) ImportAll(ctx context.Context, ds ImportDataset, opts ImportOptions) (*ImportResult, error) {
	if opts.FeedbackPolicy == "" {
		opts.FeedbackPolicy = FeedbackAppend
	}
	if _, err := ParseFeedbackPolicy(string(opts.FeedbackPolicy)); err != nil {
		return nil, err
	}

	run := &importRun{
		opts:     opts,
		result:   &ImportResult{TagIDs: []string{}, AccountIDs: []string{}, GuideIDs: []string{}, FeedbackIDs: []string{}},
		tags:     make(map[string]string, len(ds.Tags)),
		accounts: make(map[string]string, len(ds.Accounts)),
		guides:   make(map[string]string, len(ds.Guides)),
		seen:     make(map[string]map[string]struct{}),
	}

	start := time.Now()
	if err := s.importTags(ctx, run, ds.Tags); err != nil {
		return run.result, err
	}
	if err := s.importAccounts(ctx, run, ds.Accounts); err != nil {
		return run.result, err
	}
	if err := s.importGuides(ctx, run, ds.Guides); err != nil {
		return run.result, err
	}
	if err := s.importFeedback(ctx, run, ds.Feedback); err != nil {
		return run.result, err
	}

	c := run.result.Counts
	s.logger.Info("import completed",
		"tags_created", c.TagsCreated,
		"tags_reused", c.TagsReused,
		"accounts_created", c.AccountsCreated,
		"guides_created", c.GuidesCreated,
		"guides_updated", c.GuidesUpdated,
		"feedback_imported", c.FeedbackImported,
		"feedback_skipped", c.FeedbackSkipped,
		"feedback_duplicates", c.FeedbackDuplicates,
		"feedback_policy", opts.FeedbackPolicy,
		"duration", time.Since(start),
	)
	return run.result, nil
}

func (s *ImportService) importTags(ctx context.Context, run *importRun, rows []ImportTag) error {
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return err
		}

		kind := row.Kind
		if kind == "" {
			kind = domain.TagKindWorkType
		}
		t, created, err := s.tags.getOrCreate(ctx, row.Name, kind, row.Color)
		if errors.Is(err, domainerrors.ErrValidation) {
			s.logger.Warn("skipping invalid tag row", "row", i, "name", row.Name, "error", err)
			run.result.Counts.TagsSkipped++
			continue
		}
		if err != nil {
			return fmt.Errorf("import tag %q: %w", row.Name, err)
		}

		if created {
			run.result.Counts.TagsCreated++
		} else {
			run.result.Counts.TagsReused++
		}
		if row.LocalID != "" {
			run.tags[row.LocalID] = t.Name
		}
		run.result.TagIDs = append(run.result.TagIDs, t.ID)
	}
	return nil
}

func (s *ImportService) importAccounts(ctx context.Context, run *importRun, rows []ImportAccount) error {
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return err
		}

		a, created, err := s.accounts.GetOrCreate(ctx, row.AccountInput)
		if errors.Is(err, domainerrors.ErrValidation) {
			s.logger.Warn("skipping invalid account row", "row", i, "email", row.Email, "error", err)
			run.result.Counts.AccountsSkipped++
			continue
		}
		if err != nil {
			return fmt.Errorf("import account %q: %w", row.Email, err)
		}

		if created {
			run.result.Counts.AccountsCreated++
		} else {
			run.result.Counts.AccountsReused++
		}
		if row.LocalID != "" {
			run.accounts[row.LocalID] = a.ID
		}
		run.accounts[strings.ToLower(strings.TrimSpace(row.Email))] = a.ID
		run.result.AccountIDs = append(run.result.AccountIDs, a.ID)
	}
	return nil
}

func (s *ImportService) importGuides(ctx context.Context, run *importRun, rows []ImportGuide) error {
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return err
		}

		input := row.GuideInput
		input.ReplaceAttachments = false
		input.WorkTypeTags = run.tagNames(input.WorkTypeTags)
		input.ProductTags = run.tagNames(input.ProductTags)

		var agg *domain.GuideAggregate
		existing, err := s.store.GetGuideBySlug(ctx, input.Slug)
		switch {
		case err == nil:
			agg, err = s.guides.Update(ctx, existing.ID, input, 0)
			if err == nil {
				run.result.Counts.GuidesUpdated++
			}
		case errors.Is(err, store.ErrGuideNotFound):
			agg, err = s.guides.Create(ctx, input)
			if err == nil {
				run.result.Counts.GuidesCreated++
			}
		}
		if err != nil {
			return fmt.Errorf("import guide %q: %w", input.Slug, err)
		}

		if row.LocalID != "" {
			run.guides[row.LocalID] = agg.ID
		}
		run.guides[agg.Slug] = agg.ID
		run.result.GuideIDs = append(run.result.GuideIDs, agg.ID)
	}
	return nil
}

// tagNames replaces references to dataset tags by local ID with the tag's
// name. A local ID wins over a tag that happens to be named the same.
func (run *importRun) tagNames(refs []string) []string {
	if len(refs) == 0 || len(run.tags) == 0 {
		return refs
	}
	names := make([]string, len(refs))
	for i, ref := range refs {
		if name, ok := run.tags[strings.TrimSpace(ref)]; ok {
			names[i] = name
			continue
		}
		names[i] = ref
	}
	return names
}

func (s *ImportService) importFeedback(ctx context.Context, run *importRun, rows []ImportFeedback) error {
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return err
		}

		guideID, okGuide := run.guides[row.GuideRef]
		userID, okUser := run.accounts[row.UserRef]
		if !okUser {
			userID, okUser = run.accounts[strings.ToLower(strings.TrimSpace(row.UserRef))]
		}
		if !okGuide || !okUser {
			unresolved := domainerrors.UnresolvedReferencef("feedback row %d: guide %q or user %q is not in this dataset", i, row.GuideRef, row.UserRef)
			s.logger.Debug("skipping feedback row", "code", unresolved.Code, "error", unresolved)
			run.result.Counts.FeedbackSkipped++
			continue
		}

		message := strings.TrimSpace(row.Message)
		if message == "" {
			run.result.Counts.FeedbackSkipped++
			continue
		}

		note := &domain.FeedbackNote{
			GuideID:    guideID,
			UserID:     userID,
			Message:    message,
			StepNumber: row.StepNumber,
			State:      row.State,
			CreatedAt:  row.CreatedAt,
			ResolvedAt: row.ResolvedAt,
		}
		if note.State != domain.FeedbackResolved {
			note.State = domain.FeedbackOpen
			note.ResolvedAt = nil
		}
		if note.CreatedAt.IsZero() {
			note.CreatedAt = time.Now()
		}

		if run.opts.FeedbackPolicy == FeedbackSkipDuplicates {
			dup, err := s.isDuplicate(ctx, run, note)
			if err != nil {
				return err
			}
			if dup {
				run.result.Counts.FeedbackDuplicates++
				continue
			}
		}

		noteID, err := id.Generate(id.Feedback)
		if err != nil {
			return err
		}
		note.ID = noteID
		if err := s.store.Feedback.Create(ctx, note.ID, note); err != nil {
			return translate(err, "import feedback row %d", i)
		}
		if prints, ok := run.seen[guideID]; ok {
			prints[fingerprint(note)] = struct{}{}
		}

		run.result.Counts.FeedbackImported++
		run.result.FeedbackIDs = append(run.result.FeedbackIDs, note.ID)
	}
	return nil
}

// isDuplicate reports whether a note with the same fingerprint is stored or
// was imported earlier in this run.
func (s *ImportService) isDuplicate(ctx context.Context, run *importRun, note *domain.FeedbackNote) (bool, error) {
	prints, ok := run.seen[note.GuideID]
	if !ok {
		existing, err := s.store.Feedback.ListByIndex(ctx, "guide", note.GuideID)
		if err != nil {
			return false, translate(err, "load feedback of %s", note.GuideID)
		}
		prints = make(map[string]struct{}, len(existing))
		for _, f := range existing {
			prints[fingerprint(f)] = struct{}{}
		}
		run.seen[note.GuideID] = prints
	}
	_, dup := prints[fingerprint(note)]
	return dup, nil
}

func fingerprint(f *domain.FeedbackNote) string {
	return strings.Join([]string{
		f.GuideID,
		f.UserID,
		strings.Join(strings.Fields(f.Message), " "),
		f.CreatedAt.UTC().Format(time.RFC3339Nano),
	}, "\x00")
}
