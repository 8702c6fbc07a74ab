// Package backup reads and writes whole-catalog datasets: zip archives of
// JSONL files and hand-written YAML documents.
package backup

import "errors"

var (
	// ErrInvalidManifest indicates the manifest is malformed.
	ErrInvalidManifest = errors.New("invalid manifest")

	// ErrVersionMismatch indicates the archive format version is not supported.
	ErrVersionMismatch = errors.New("archive version not supported")

	// ErrCorruptedArchive indicates a dataset file failed to decode.
	ErrCorruptedArchive = errors.New("archive integrity check failed")

	// ErrUnsupportedFormat indicates the file is neither a zip archive nor YAML.
	ErrUnsupportedFormat = errors.New("unsupported dataset format")
)
