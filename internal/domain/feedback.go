package domain

import "time"

// FeedbackState is the lifecycle state of a feedback note.
type FeedbackState string

// Feedback states.
const (
	FeedbackOpen     FeedbackState = "open"
	FeedbackResolved FeedbackState = "resolved"
)

// FeedbackNote is a user's remark on a guide.
// Notes outlive their guide; a dangling GuideID renders as an unknown guide.
type FeedbackNote struct {
	ID         string        `json:"id"`
	GuideID    string        `json:"guide_id"`
	UserID     string        `json:"user_id"`
	Message    string        `json:"message"`
	StepNumber *int          `json:"step_number,omitempty"`
	State      FeedbackState `json:"state"`
	CreatedAt  time.Time     `json:"created_at"`
	ResolvedAt *time.Time    `json:"resolved_at,omitempty"`
}

// Resolve marks the note resolved. Resolving twice keeps the first timestamp.
func (f *FeedbackNote) Resolve() {
	if f.State == FeedbackResolved && f.ResolvedAt != nil {
		return
	}
	now := time.Now()
	f.State = FeedbackResolved
	f.ResolvedAt = &now
}
