package domain

import "time"

// Attachment is metadata for a stored file belonging to a guide.
//
// GuideID is a caller-supplied correlation string, not a checked reference:
// uploads can happen before the guide exists, keyed by its slug. Keeping that
// key unique and stable is the caller's job.
type Attachment struct {
	ID          string    `json:"id"`
	BlobRef     string    `json:"blob_ref"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	GuideID     string    `json:"guide_id"`
	UploadedAt  time.Time `json:"uploaded_at"`

	// URL is resolved from BlobRef on read and never persisted.
	URL string `json:"url,omitempty"`
}
