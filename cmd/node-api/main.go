package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xela07ax/rustchain-node-api/internal/api/handler"
	"github.com/xela07ax/rustchain-node-api/internal/api/server"
	"github.com/xela07ax/rustchain-node-api/internal/audit"
	"github.com/xela07ax/rustchain-node-api/internal/chain"
	"github.com/xela07ax/rustchain-node-api/internal/engine"
	"github.com/xela07ax/rustchain-node-api/internal/infra"
	"github.com/xela07ax/rustchain-node-api/internal/policy"
	"github.com/xela07ax/rustchain-node-api/internal/repository/sqlstore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "node-api: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Конфиг и логгер
	cfg, err := infra.LoadConfig()
	if err != nil {
		return err
	}
	logger, err := infra.NewLogger(cfg.Logger)
	if err != nil {
		return err
	}
	defer logger.Sync()

	// Контекст старта: SIGTERM во время ожидания базы прерывает ретраи
	appCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Хранилище
	store, err := sqlstore.Open(appCtx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	if cfg.Database.Migrate {
		if err := store.Migrate(appCtx); err != nil {
			return err
		}
		logger.Info("schema migrated", zap.String("dialect", string(store.Dialect())))
	}

	// 3. Метрики
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := engine.NewMetrics(reg)

	// 4. Кэш first_attest (опционально)
	var firstAttest engine.FirstAttestLookup = store
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(appCtx, 2*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			// Не фатально: предохранитель уведет запросы в базу
			logger.Warn("redis unreachable at startup", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		cancel()

		cache := engine.NewFirstAttestCache(store, rdb, cfg.Redis.FirstAttestTTL, cfg.Engine, metrics, logger)
		firstAttest = cache

		// Прогрев в фоне, старт сервера не ждет
		go warmFirstAttest(appCtx, cache, store, logger)
	}

	trustedProxies, err := engine.ParseTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		return fmt.Errorf("config: server.trusted_proxies: %w", err)
	}

	// 5. Политика доступа
	classifier := policy.NewClassifier(cfg.Auth.AdminKey)
	if !classifier.Enabled() {
		logger.Warn("admin key is not configured: all requests are anonymous, /wallet/balance always returns 401")
	}

	// 6. Журнал доступа
	journal := audit.NewJournal(store, cfg.Engine.AuditBufferSize, cfg.Engine.AuditFlushInterval, logger)
	journal.Start()
	defer journal.Stop()

	// 7. Сервисы и обработчики
	params := chain.ParamsFromConfig(cfg.Chain)
	clock := time.Now
	weights := engine.HardwareWeights(cfg.Hardware.Weights)

	deps := handler.Deps{
		Classifier: classifier,
		Metrics:    metrics,
		Journal:    journal,
		Logger:     logger,
	}

	nodeServer := server.New(server.Options{
		Logger:   logger,
		Metrics:  metrics,
		Gatherer: reg,
		Limiter:  engine.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst, classifier),
		Store:    store,
		Miners:   handler.NewMinersHandler(engine.NewMinerService(store, firstAttest, weights, clock, metrics, logger), deps),
		Wallet:   handler.NewWalletHandler(engine.NewWalletService(store, params), deps),
		Epoch:    handler.NewEpochHandler(engine.NewEpochService(store, params, clock, metrics), deps),

		TrustedProxies: trustedProxies,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      nodeServer,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 8. Graceful Shutdown
	errCh := make(chan error, 1)
	go func() {
		logger.Info("node api started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-appCtx.Done():
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	}
	logger.Info("node api stopping...")

	// Даем 5 секунд на завершение запросов
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logger.Info("node api exited properly")
	return nil
}

// warmFirstAttest заливает в Redis first_attest майнеров, аттестовавшихся за последний час.
func warmFirstAttest(ctx context.Context, cache *engine.FirstAttestCache, store *sqlstore.Store, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	rows, err := store.RecentAttestations(ctx, time.Now().Add(-engine.RecencyWindow).Unix())
	if err != nil {
		logger.Warn("first_attest warmup: cannot list miners", zap.Error(err))
		return
	}
	miners := make([]string, 0, len(rows))
	for _, r := range rows {
		miners = append(miners, r.Miner)
	}

	if _, err := cache.Warmup(ctx, miners); err != nil {
		logger.Warn("first_attest warmup failed", zap.Error(err))
	}
}
