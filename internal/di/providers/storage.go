package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/workguide/guide-server/internal/blob"
	"github.com/workguide/guide-server/internal/config"
	"github.com/workguide/guide-server/internal/logger"
)

// ProvideBlobStorage provides attachment file storage under the data path.
func ProvideBlobStorage(i do.Injector) (*blob.Storage, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	blobs, err := blob.NewStorage(cfg.Storage.DataPath, cfg.Server.PublicURL)
	if err != nil {
		return nil, fmt.Errorf("blob storage: %w", err)
	}

	log.Info("Blob storage initialized", "public_url", cfg.Server.PublicURL)

	return blobs, nil
}
