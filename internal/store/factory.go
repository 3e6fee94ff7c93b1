package store

import (
	"fmt"

	"groundcms/internal/config"
)

// NewStoreFromConfig creates a Store implementation based on the storage
// config type. Backend selection happens once here, at process start;
// nothing below this point branches on the environment.
func NewStoreFromConfig(cfg config.StorageConfig) (Store, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(), nil
	case "redis":
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("redis storage requires redis_addr to be set")
		}
		return NewRedisStore(cfg.RedisAddr, cfg.RedisPassword)
	case "filesystem":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("filesystem storage requires data_dir to be set")
		}
		return NewFileStore(cfg.DataDir)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
