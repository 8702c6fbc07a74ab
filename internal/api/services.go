package api

import (
	"github.com/workguide/guide-server/internal/ratelimit"
	"github.com/workguide/guide-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Tag        *service.TagService
	Account    *service.AccountService
	Guide      *service.GuideService
	Import     *service.ImportService
	Attachment *service.AttachmentService
	Visit      *service.VisitService
	Feedback   *service.FeedbackService
	Search     *service.SearchService // nil disables the search endpoint
}

// Options tunes request handling.
type Options struct {
	// ImportLimiter throttles POST /import per client address. Nil disables it.
	ImportLimiter *ratelimit.KeyedRateLimiter

	// FeedbackPolicy applies to imports that do not name one.
	FeedbackPolicy service.FeedbackPolicy

	// AllowedOrigins for CORS. Empty allows any origin.
	AllowedOrigins []string
}
