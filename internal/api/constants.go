package api

// API limits and constants.
const (
	// MaxUploadSize is the maximum allowed size for attachment uploads (25 MB).
	MaxUploadSize = 25 << 20

	// MaxImportSize caps a JSON import request body (32 MB).
	MaxImportSize = 32 << 20
)

// Cache-Control header values.
const (
	// Blob refs are never reused, so their bytes never change.
	CacheImmutable = "public, max-age=31536000, immutable"
	CacheNoStore   = "no-cache"
)
