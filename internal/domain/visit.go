package domain

import "time"

// VisitRecord is one view of a guide by a user.
// User and guide fields are copied at write time so reports need no joins.
type VisitRecord struct {
	ID               string    `json:"id"`
	GuideID          string    `json:"guide_id"`
	UserID           string    `json:"user_id"`
	Timestamp        time.Time `json:"timestamp"`
	CachedUserName   string    `json:"cached_user_name"`
	CachedUserEmail  string    `json:"cached_user_email"`
	CachedGuideTitle string    `json:"cached_guide_title"`
}

// GuideVisitStats is the per-guide fold over visit records.
type GuideVisitStats struct {
	Guide           *Guide         `json:"guide"`
	Visits          []*VisitRecord `json:"visits"`
	VisitCount      int            `json:"visit_count"`
	LastVisit       *time.Time     `json:"last_visit,omitempty"`
	UniqueUserCount int            `json:"unique_user_count"`
}
