package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/workguide/guide-server/internal/api"
	"github.com/workguide/guide-server/internal/blob"
	"github.com/workguide/guide-server/internal/config"
	"github.com/workguide/guide-server/internal/logger"
	"github.com/workguide/guide-server/internal/ratelimit"
	"github.com/workguide/guide-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideImportLimiter provides the per-client limiter for POST /import.
// The limiter's cleanup goroutine stops when the container shuts down.
func ProvideImportLimiter(i do.Injector) (*ratelimit.KeyedRateLimiter, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return ratelimit.PerMinute(cfg.Import.RatePerMinute, cfg.Import.Burst), nil
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	blobs := do.MustInvoke[*blob.Storage](i)
	limiter := do.MustInvoke[*ratelimit.KeyedRateLimiter](i)
	log := do.MustInvoke[*logger.Logger](i)

	policy, err := service.ParseFeedbackPolicy(cfg.Import.FeedbackPolicy)
	if err != nil {
		return nil, err
	}

	services := &api.Services{
		Tag:        do.MustInvoke[*service.TagService](i),
		Account:    do.MustInvoke[*service.AccountService](i),
		Guide:      do.MustInvoke[*service.GuideService](i),
		Import:     do.MustInvoke[*service.ImportService](i),
		Attachment: do.MustInvoke[*service.AttachmentService](i),
		Visit:      do.MustInvoke[*service.VisitService](i),
		Feedback:   do.MustInvoke[*service.FeedbackService](i),
		Search:     do.MustInvoke[*service.SearchService](i),
	}

	handler := api.NewServer(storeHandle.Store, services, blobs, api.Options{
		ImportLimiter:  limiter,
		FeedbackPolicy: policy,
	}, log.For("http"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv}, nil
}
