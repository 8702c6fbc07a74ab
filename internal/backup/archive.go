package backup

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/workguide/guide-server/internal/backup/stream"
	"github.com/workguide/guide-server/internal/service"
)

// ReadArchive loads a dataset from a zip archive on disk.
func ReadArchive(path string) (*service.ImportDataset, *Manifest, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open archive: %w", err)
	}
	defer zr.Close()

	return readZip(&zr.Reader)
}

// ReadArchiveFrom loads a dataset from an in-memory or uploaded archive.
func ReadArchiveFrom(r io.ReaderAt, size int64) (*service.ImportDataset, *Manifest, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, nil, fmt.Errorf("open archive: %w", err)
	}
	return readZip(zr)
}

// readZip decodes every dataset file. Missing files are empty sections;
// the manifest is optional so hand-built archives load too.
func readZip(zr *zip.Reader) (*service.ImportDataset, *Manifest, error) {
	manifest, err := readManifest(zr)
	if err != nil {
		return nil, nil, err
	}

	ds := &service.ImportDataset{}
	if ds.Tags, err = readFile[service.ImportTag](zr, tagsFile); err != nil {
		return nil, nil, err
	}
	if ds.Accounts, err = readFile[service.ImportAccount](zr, accountsFile); err != nil {
		return nil, nil, err
	}
	if ds.Guides, err = readFile[service.ImportGuide](zr, guidesFile); err != nil {
		return nil, nil, err
	}
	if ds.Feedback, err = readFile[service.ImportFeedback](zr, feedbackFile); err != nil {
		return nil, nil, err
	}

	manifest.Counts = EntityCounts{
		Tags:     len(ds.Tags),
		Accounts: len(ds.Accounts),
		Guides:   len(ds.Guides),
		Feedback: len(ds.Feedback),
	}
	return ds, manifest, nil
}

func readManifest(zr *zip.Reader) (*Manifest, error) {
	rc, err := stream.OpenFile(zr, manifestFile)
	if errors.Is(err, stream.ErrFileNotFound) {
		return &Manifest{Version: FormatVersion}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer rc.Close()

	var m Manifest
	if err := json.NewDecoder(rc).Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}
	if !compatible(m.Version) {
		return nil, fmt.Errorf("%w: %q", ErrVersionMismatch, m.Version)
	}
	return &m, nil
}

func readFile[T any](zr *zip.Reader, name string) ([]T, error) {
	rc, err := stream.OpenFile(zr, name)
	if errors.Is(err, stream.ErrFileNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}

	rows, err := stream.Collect[T](rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", name, ErrCorruptedArchive, err)
	}
	return rows, nil
}
