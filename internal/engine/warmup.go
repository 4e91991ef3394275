package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/xela07ax/rustchain-node-api/internal/infra"
	"go.uber.org/zap"
)

const warmupLockTTL = 30 * time.Second

// Warmup прогревает Redis значениями first_attest для переданных майнеров.
// Распределенная блокировка (SetNX) гарантирует, что пишет только один инстанс.
// Возвращает число записанных ключей.
func (c *FirstAttestCache) Warmup(ctx context.Context, miners []string) (int, error) {
	if len(miners) == 0 {
		return 0, nil
	}

	ok, err := c.rdb.SetNX(ctx, infra.RedisKeyFirstAttestWarmupLock, "processing", warmupLockTTL).Result()
	if err != nil {
		return 0, fmt.Errorf("first_attest warmup: lock: %w", err)
	}
	if !ok {
		c.logger.Debug("warmup skipped, another instance holds the lock")
		return 0, nil
	}

	values := make(map[string]int64, len(miners))
	for _, m := range miners {
		first, err := c.next.FirstAttestation(ctx, m)
		if err != nil {
			c.logger.Warn("warmup lookup failed", zap.String("miner", m), zap.Error(err))
			continue
		}
		if first != nil {
			values[m] = *first
		}
	}
	if len(values) == 0 {
		return 0, nil
	}

	pipe := c.rdb.Pipeline()
	for m, v := range values {
		pipe.Set(ctx, infra.FirstAttestKey(m), v, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("first_attest warmup: %w", err)
	}

	c.logger.Info("first_attest cache warmed", zap.Int("count", len(values)))
	return len(values), nil
}
