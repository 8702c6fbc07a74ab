package backup

import (
	"strings"
	"time"
)

// FormatVersion is the archive format version. Increment major on breaking changes.
const FormatVersion = "1.0"

// Archive file names.
const (
	manifestFile = "manifest.json"
	tagsFile     = "tags.jsonl"
	accountsFile = "accounts.jsonl"
	guidesFile   = "guides.jsonl"
	feedbackFile = "feedback.jsonl"
)

// Manifest describes archive contents.
type Manifest struct {
	Version       string       `json:"version"`
	CreatedAt     time.Time    `json:"created_at"`
	ServerVersion string       `json:"server_version,omitempty"`
	Counts        EntityCounts `json:"counts"`
	Checksum      string       `json:"-"` // SHA-256 of the whole archive, set by ExportFile
}

// EntityCounts tracks row counts per file.
type EntityCounts struct {
	Tags     int `json:"tags"`
	Accounts int `json:"accounts"`
	Guides   int `json:"guides"`
	Feedback int `json:"feedback"`
}

// compatible reports whether an archive written as version can be read.
// Only the major component has to match.
func compatible(version string) bool {
	major, _, _ := strings.Cut(version, ".")
	want, _, _ := strings.Cut(FormatVersion, ".")
	return major == want
}
