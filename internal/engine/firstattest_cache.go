package engine

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"github.com/xela07ax/rustchain-node-api/internal/infra"
	"go.uber.org/zap"
)

// FirstAttestLookup — источник времени первой аттестации майнера.
type FirstAttestLookup interface {
	FirstAttestation(ctx context.Context, miner string) (*int64, error)
}

const firstAttestBreakerName = "first-attest-redis"

// FirstAttestCache — read-through кэш поверх хранилища.
// Первая аттестация не меняется после записи, поэтому кэшируются только найденные значения.
// Любой сбой Redis или открытый предохранитель — идем напрямую в базу, ответ не страдает.
type FirstAttestCache struct {
	next   FirstAttestLookup
	rdb    *redis.Client
	cb     *gobreaker.CircuitBreaker
	ttl    time.Duration
	logger *zap.Logger
}

func NewFirstAttestCache(next FirstAttestLookup, rdb *redis.Client, ttl time.Duration, cfg infra.EngineConfig, metrics *Metrics, logger *zap.Logger) *FirstAttestCache {
	logger = logger.With(zap.String("mod", "first-attest-cache"))

	maxFailures := cfg.CBMaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        firstAttestBreakerName,
		MaxRequests: cfg.CBMaxRequests,
		Interval:    cfg.CBInterval,
		Timeout:     cfg.CBTimeout, // Время, через которое CB попробует "закрыться"
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CacheBreakerState.WithLabelValues(name).Set(float64(to))
			logger.Warn("cache breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &FirstAttestCache{
		next:   next,
		rdb:    rdb,
		cb:     cb,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *FirstAttestCache) FirstAttestation(ctx context.Context, miner string) (*int64, error) {
	if v, ok := c.get(ctx, miner); ok {
		return &v, nil
	}

	first, err := c.next.FirstAttestation(ctx, miner)
	if err != nil || first == nil {
		return first, err
	}

	c.set(ctx, miner, *first)
	return first, nil
}

// BreakerState отдает текущее состояние предохранителя. Наружу оно публикуется гейджем rustchain_cache_breaker_state.
func (c *FirstAttestCache) BreakerState() gobreaker.State {
	return c.cb.State()
}

func (c *FirstAttestCache) get(ctx context.Context, miner string) (int64, bool) {
	res, err := c.cb.Execute(func() (interface{}, error) {
		v, err := c.rdb.Get(ctx, infra.FirstAttestKey(miner)).Int64()
		if errors.Is(err, redis.Nil) {
			return nil, nil // промах — не сбой Redis
		}
		if err != nil {
			return nil, err
		}
		return v, nil
	})
	if err != nil {
		c.logger.Debug("cache read skipped", zap.String("miner", miner), zap.Error(err))
		return 0, false
	}
	if res == nil {
		return 0, false
	}
	return res.(int64), true
}

func (c *FirstAttestCache) set(ctx context.Context, miner string, v int64) {
	_, err := c.cb.Execute(func() (interface{}, error) {
		return nil, c.rdb.Set(ctx, infra.FirstAttestKey(miner), v, c.ttl).Err()
	})
	if err != nil {
		c.logger.Debug("cache write skipped", zap.String("miner", miner), zap.Error(err))
	}
}
