package blob

import (
	"context"
	"fmt"

	"groundcms/internal/config"
)

// NewStoreFromConfig creates a Store implementation based on the blob
// config type.
func NewStoreFromConfig(ctx context.Context, cfg config.BlobConfig) (Store, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(), nil
	case "s3":
		return NewS3Store(ctx, cfg)
	case "filesystem":
		if cfg.UploadsDir == "" {
			return nil, fmt.Errorf("filesystem blob store requires uploads_dir to be set")
		}
		return NewFileStore(cfg.UploadsDir)
	default:
		return nil, fmt.Errorf("unknown blob store type: %s", cfg.Type)
	}
}
