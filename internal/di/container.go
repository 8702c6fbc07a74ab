// Package di provides dependency injection configuration for the guide server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/workguide/guide-server/internal/blob"
	"github.com/workguide/guide-server/internal/config"
	"github.com/workguide/guide-server/internal/di/providers"
	"github.com/workguide/guide-server/internal/logger"
	"github.com/workguide/guide-server/internal/ratelimit"
	"github.com/workguide/guide-server/internal/service"
	"github.com/workguide/guide-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()
	do.Provide(injector, providers.ProvideConfig)
	registerCore(injector)

	// Server
	do.Provide(injector, providers.ProvideImportLimiter)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// NewCLIContainer wires everything except the HTTP server, for one-shot
// commands that work on the same data directory. The caller loads cfg,
// since command-line arguments belong to the command.
func NewCLIContainer(cfg *config.Config) *do.RootScope {
	injector := do.New()
	do.ProvideValue(injector, cfg)
	registerCore(injector)
	return injector
}

func registerCore(injector do.Injector) {
	// Core infrastructure
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)
	do.Provide(injector, providers.ProvideValidator)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideBlobStorage)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideSearchService)

	// Business services
	do.Provide(injector, providers.ProvideTagService)
	do.Provide(injector, providers.ProvideAccountService)
	do.Provide(injector, providers.ProvideGuideService)
	do.Provide(injector, providers.ProvideAttachmentService)
	do.Provide(injector, providers.ProvideImportService)
	do.Provide(injector, providers.ProvideVisitService)
	do.Provide(injector, providers.ProvideFeedbackService)
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	if err := bootstrapCore(injector); err != nil {
		return err
	}

	// Server
	_ = do.MustInvoke[*ratelimit.KeyedRateLimiter](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	// Trigger search reindex if needed
	providers.TriggerSearchReindexIfNeeded(injector)

	return nil
}

// BootstrapCLI initializes everything a command needs. The search index is
// kept in step by guide writes; it is not rebuilt here.
func BootstrapCLI(injector *do.RootScope) error {
	return bootstrapCore(injector)
}

func bootstrapCore(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*validation.Validator](injector)

	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*blob.Storage](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.SearchIndexHandle](injector); err != nil {
		return err
	}

	// Business services. The attachment and search providers wire their
	// hooks into the guide service, so they must run before any write.
	_ = do.MustInvoke[*service.TagService](injector)
	_ = do.MustInvoke[*service.AccountService](injector)
	_ = do.MustInvoke[*service.GuideService](injector)
	_ = do.MustInvoke[*service.AttachmentService](injector)
	_ = do.MustInvoke[*service.SearchService](injector)
	_ = do.MustInvoke[*service.ImportService](injector)
	_ = do.MustInvoke[*service.VisitService](injector)
	_ = do.MustInvoke[*service.FeedbackService](injector)

	return nil
}
