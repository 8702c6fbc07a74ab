package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/workguide/guide-server/internal/service"
)

// Load reads a dataset file of any supported format. The format is
// detected from content first and the extension second.
func Load(path string) (*service.ImportDataset, error) {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("detect format: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case isA(mt, "application/zip"):
		ds, _, err := ReadArchive(path)
		return ds, err

	case isA(mt, "application/json"):
		return readJSON(path)

	case ext == ".yaml" || ext == ".yml" || isA(mt, "text/plain"):
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return ReadYAML(f)

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, mt.String())
	}
}

func readJSON(path string) (*service.ImportDataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var ds service.ImportDataset
	if err := json.NewDecoder(f).Decode(&ds); err != nil {
		return nil, fmt.Errorf("decode json dataset: %w", err)
	}
	return &ds, nil
}

// isA reports whether mt or one of its parents is mime.
func isA(mt *mimetype.MIME, mime string) bool {
	for m := mt; m != nil; m = m.Parent() {
		if m.Is(mime) {
			return true
		}
	}
	return false
}
