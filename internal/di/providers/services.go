package providers

import (
	"github.com/samber/do/v2"

	"github.com/workguide/guide-server/internal/blob"
	"github.com/workguide/guide-server/internal/logger"
	"github.com/workguide/guide-server/internal/service"
	"github.com/workguide/guide-server/internal/validation"
)

// ProvideValidator provides the shared request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideTagService provides the tag registry service.
func ProvideTagService(i do.Injector) (*service.TagService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewTagService(storeHandle.Store, v, log.For("tags")), nil
}

// ProvideAccountService provides the account mirror service.
func ProvideAccountService(i do.Injector) (*service.AccountService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAccountService(storeHandle.Store, v, log.For("accounts")), nil
}

// ProvideGuideService provides the guide writer and reader.
func ProvideGuideService(i do.Injector) (*service.GuideService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tags := do.MustInvoke[*service.TagService](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewGuideService(storeHandle.Store, tags, v, log.For("guides")), nil
}

// ProvideAttachmentService provides attachment metadata handling.
func ProvideAttachmentService(i do.Injector) (*service.AttachmentService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	blobs := do.MustInvoke[*blob.Storage](i)
	guides := do.MustInvoke[*service.GuideService](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	svc := service.NewAttachmentService(storeHandle.Store, blobs, v, log.For("attachments"))

	// Guide deletes cascade to attachments
	guides.SetAttachmentCleaner(svc)

	return svc, nil
}

// ProvideImportService provides the bulk importer.
func ProvideImportService(i do.Injector) (*service.ImportService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tags := do.MustInvoke[*service.TagService](i)
	accounts := do.MustInvoke[*service.AccountService](i)
	guides := do.MustInvoke[*service.GuideService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewImportService(storeHandle.Store, tags, accounts, guides, log.For("import")), nil
}

// ProvideVisitService provides visit recording and statistics.
func ProvideVisitService(i do.Injector) (*service.VisitService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewVisitService(storeHandle.Store, log.For("visits")), nil
}

// ProvideFeedbackService provides feedback notes.
func ProvideFeedbackService(i do.Injector) (*service.FeedbackService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewFeedbackService(storeHandle.Store, v, log.For("feedback")), nil
}
