package cache

import (
	"go.uber.org/zap"

	"github.com/medirent/backend/internal/domain/shared"
	"github.com/medirent/backend/internal/infrastructure/config"
)

// NewIdempotencyStore picks the store implementation from configuration:
// Redis when enabled and reachable, the in-memory store otherwise. A Redis
// outage at startup degrades to in-memory rather than failing the boot; the
// guard is best-effort by contract.
func NewIdempotencyStore(cfg config.RedisConfig, logger *zap.Logger) shared.IdempotencyStore {
	if logger == nil {
		logger = zap.NewNop()
	}

	if !cfg.Enabled {
		logger.Info("idempotency store: in-memory (redis disabled)")
		return NewInMemoryIdempotencyStore()
	}

	store, err := NewRedisIdempotencyStore(cfg)
	if err != nil {
		logger.Warn("idempotency store: redis unreachable, falling back to in-memory",
			zap.String("addr", cfg.Addr()), zap.Error(err))
		return NewInMemoryIdempotencyStore()
	}

	logger.Info("idempotency store: redis", zap.String("addr", cfg.Addr()))
	return store
}
