package server

import (
	"context"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xela07ax/rustchain-node-api/internal/api/handler"
	"github.com/xela07ax/rustchain-node-api/internal/engine"
	"go.uber.org/zap"
)

// Pinger — проверка живости хранилища для /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	Logger   *zap.Logger
	Metrics  *engine.Metrics
	Gatherer prometheus.Gatherer // nil — /metrics не публикуется
	Limiter  *engine.RateLimiter // nil — без ограничения
	Store    Pinger              // nil — /health всегда ok

	// Адреса прокси, которым доверяем X-Forwarded-For/X-Real-IP. Пусто — не доверяем никому.
	TrustedProxies []netip.Prefix

	Miners *handler.MinersHandler
	Wallet *handler.WalletHandler
	Epoch  *handler.EpochHandler
}

type NodeServer struct {
	router *chi.Mux
	logger *zap.Logger
	opts   Options
}

// New инициализирует роутер ноды со всеми зависимостями
func New(opts Options) *NodeServer {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = engine.NewMetrics(nil)
	}

	s := &NodeServer{
		router: chi.NewRouter(),
		logger: opts.Logger.Named("node-api"),
		opts:   opts,
	}
	s.routes()
	return s
}

func (s *NodeServer) routes() {
	r := s.router

	// --- 1. Глобальные инфраструктурные Middleware ---
	r.Use(engine.TrustedRealIP(s.opts.TrustedProxies))
	r.Use(middleware.Recoverer)
	r.Use(engine.TracingMiddleware)
	r.Use(engine.AccessLog(s.logger, s.opts.Metrics))

	// --- 2. Служебные роуты (без лимита) ---
	r.Get("/health", s.health)
	if s.opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))
	}

	// --- 3. Баланс: ключ обязателен, без него всегда 401, поэтому вне лимитера ---
	r.Get("/wallet/balance", s.opts.Wallet.Balance)

	// --- 4. Публичное API ноды: ключ необязателен, аноним режется по IP ---
	r.Group(func(r chi.Router) {
		if s.opts.Limiter != nil && s.opts.Limiter.Enabled() {
			r.Use(s.opts.Limiter.Middleware)
		}

		r.Get("/api/miners", s.opts.Miners.List)
		r.Get("/epoch", s.opts.Epoch.Get)
	})
}

func (s *NodeServer) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if s.opts.Store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.opts.Store.Ping(ctx); err != nil {
			s.logger.Warn("health: store unreachable", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"ok":false,"error":"store_unavailable"}`))
			return
		}
	}
	w.Write([]byte(`{"ok":true}`))
}

// ServeHTTP позволяет использовать NodeServer как стандартный http.Handler
func (s *NodeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
