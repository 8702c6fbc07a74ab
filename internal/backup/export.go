package backup

import (
	"archive/zip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/workguide/guide-server/internal/backup/stream"
	"github.com/workguide/guide-server/internal/service"
	"github.com/workguide/guide-server/internal/store"
)

// Exporter writes the catalog as an archive that ImportAll can load.
// Local IDs in the archive are the backend IDs, so feedback rows refer to
// guides and accounts of the same archive.
type Exporter struct {
	store   *store.Store
	guides  *service.GuideService
	version string
	logger  *slog.Logger
}

// NewExporter creates an Exporter.
func NewExporter(s *store.Store, guides *service.GuideService, version string, logger *slog.Logger) *Exporter {
	return &Exporter{store: s, guides: guides, version: version, logger: logger}
}

// ExportFile writes an archive to path. The file appears only once complete.
func (e *Exporter) ExportFile(ctx context.Context, path string) (*Manifest, error) {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("create archive file: %w", err)
	}
	defer os.Remove(tmpPath)
	defer f.Close()

	hash := sha256.New()
	manifest, err := e.Export(ctx, io.MultiWriter(f, hash))
	if err != nil {
		return nil, err
	}

	if err := f.Sync(); err != nil {
		return nil, fmt.Errorf("sync archive: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}

	manifest.Checksum = hex.EncodeToString(hash.Sum(nil))
	return manifest, nil
}

// Export streams an archive to w.
func (e *Exporter) Export(ctx context.Context, w io.Writer) (*Manifest, error) {
	start := time.Now()
	zw := zip.NewWriter(w)

	manifest := &Manifest{
		Version:       FormatVersion,
		CreatedAt:     time.Now().UTC(),
		ServerVersion: e.version,
	}
	counts := &manifest.Counts

	accounts := make(map[string]struct{})
	guides := make(map[string]struct{})

	steps := []struct {
		name string
		file string
		fn   func(context.Context, *stream.Writer) error
		dest *int
	}{
		{"tags", tagsFile, e.exportTags, &counts.Tags},
		{"accounts", accountsFile, func(ctx context.Context, sw *stream.Writer) error {
			return e.exportAccounts(ctx, sw, accounts)
		}, &counts.Accounts},
		{"guides", guidesFile, func(ctx context.Context, sw *stream.Writer) error {
			return e.exportGuides(ctx, sw, guides)
		}, &counts.Guides},
		{"feedback", feedbackFile, func(ctx context.Context, sw *stream.Writer) error {
			return e.exportFeedback(ctx, sw, guides, accounts)
		}, &counts.Feedback},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sw, err := stream.NewWriter(zw, step.file)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", step.file, err)
		}
		if err := step.fn(ctx, sw); err != nil {
			return nil, fmt.Errorf("export %s: %w", step.name, err)
		}
		*step.dest = sw.Count()
	}

	mw, err := zw.Create(manifestFile)
	if err != nil {
		return nil, fmt.Errorf("create manifest: %w", err)
	}
	enc := json.NewEncoder(mw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(manifest); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close zip: %w", err)
	}

	e.logger.Info("catalog exported",
		"tags", counts.Tags,
		"accounts", counts.Accounts,
		"guides", counts.Guides,
		"feedback", counts.Feedback,
		"duration", time.Since(start),
	)
	return manifest, nil
}

func (e *Exporter) exportTags(ctx context.Context, sw *stream.Writer) error {
	tags, err := e.store.ListTags(ctx)
	if err != nil {
		return err
	}
	for _, t := range tags {
		row := service.ImportTag{LocalID: t.ID, Name: t.Name, Kind: t.Kind, Color: t.Color}
		if err := sw.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func (e *Exporter) exportAccounts(ctx context.Context, sw *stream.Writer, seen map[string]struct{}) error {
	for a, err := range e.store.Accounts.List(ctx) {
		if err != nil {
			return err
		}
		row := service.ImportAccount{
			LocalID:      a.ID,
			AccountInput: service.AccountInput{Email: a.Email, Name: a.Name, Role: a.Role},
		}
		if err := sw.Write(row); err != nil {
			return err
		}
		seen[a.ID] = struct{}{}
	}
	return nil
}

func (e *Exporter) exportGuides(ctx context.Context, sw *stream.Writer, seen map[string]struct{}) error {
	roots, err := e.guides.List(ctx)
	if err != nil {
		return err
	}
	for _, g := range roots {
		if err := ctx.Err(); err != nil {
			return err
		}
		agg, err := e.guides.Get(ctx, g.ID)
		if err != nil {
			return fmt.Errorf("read guide %s: %w", g.ID, err)
		}
		row := service.ImportGuide{LocalID: agg.ID, GuideInput: service.InputFromAggregate(agg)}
		if err := sw.Write(row); err != nil {
			return err
		}
		seen[agg.ID] = struct{}{}
	}
	return nil
}

// exportFeedback writes notes whose guide and author are both in the
// archive. Notes left behind by deleted guides could not be imported.
func (e *Exporter) exportFeedback(ctx context.Context, sw *stream.Writer, guides, accounts map[string]struct{}) error {
	dropped := 0
	for f, err := range e.store.Feedback.List(ctx) {
		if err != nil {
			return err
		}
		_, okGuide := guides[f.GuideID]
		_, okUser := accounts[f.UserID]
		if !okGuide || !okUser {
			dropped++
			continue
		}
		row := service.ImportFeedback{
			LocalID:    f.ID,
			GuideRef:   f.GuideID,
			UserRef:    f.UserID,
			Message:    f.Message,
			StepNumber: f.StepNumber,
			State:      f.State,
			CreatedAt:  f.CreatedAt,
			ResolvedAt: f.ResolvedAt,
		}
		if err := sw.Write(row); err != nil {
			return err
		}
	}
	if dropped > 0 {
		e.logger.Debug("skipped orphaned feedback during export", "count", dropped)
	}
	return nil
}
