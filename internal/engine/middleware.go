package engine

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/xela07ax/rustchain-node-api/internal/policy"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Тип для ключа в контексте (избегаем коллизий)
type ctxKey string

const traceIDKey ctxKey = "trace_id"

const HeaderTraceID = "X-Trace-ID"

// TracingMiddleware инициализирует Trace-ID для каждого запроса
func TracingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Пришел от прокси — используем, иначе генерируем
		traceID := r.Header.Get(HeaderTraceID)
		if traceID == "" {
			traceID = uuid.New().String()
		}

		ctx := context.WithValue(r.Context(), traceIDKey, traceID)
		w.Header().Set(HeaderTraceID, traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// TraceID помогает безопасно достать ID в любом месте кода
func TraceID(ctx context.Context) string {
	if id, ok := ctx.Value(traceIDKey).(string); ok {
		return id
	}
	return "00000000-0000-0000-0000-000000000000" // Fallback
}

const routeUnmatched = "unmatched"

// AccessLog пишет строку на каждый запрос и наблюдает latency по шаблону маршрута.
func AccessLog(logger *zap.Logger, metrics *Metrics) func(http.Handler) http.Handler {
	logger = logger.Named("http")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			// Сырой путь в лейбл не кладем: иначе кардинальность растет от любого 404
			route := routeUnmatched
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			elapsed := time.Since(start)
			metrics.RequestDuration.WithLabelValues(route, strconv.Itoa(status)).Observe(elapsed.Seconds())

			logger.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Duration("duration", elapsed),
				zap.String("trace_id", TraceID(r.Context())),
				zap.String("remote", r.RemoteAddr),
			)
		})
	}
}

// Предел мапы лимитеров. При переполнении сначала вычищаются простаивающие записи,
// новые адреса сверх предела делят один общий бакет.
const (
	maxVisitors    = 10000
	visitorIdleTTL = 3 * time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter ограничивает анонимный трафик по IP. Запросы с валидным ключом не режутся.
type RateLimiter struct {
	mu          sync.Mutex
	visitors    map[string]*visitor
	overflow    *rate.Limiter
	maxVisitors int
	limit       rate.Limit
	burst       int
	classifier  *policy.Classifier
	now         func() time.Time
}

// NewRateLimiter: rps <= 0 выключает ограничение.
func NewRateLimiter(rps float64, burst int, classifier *policy.Classifier) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		visitors:    make(map[string]*visitor),
		overflow:    rate.NewLimiter(rate.Limit(rps), burst),
		maxVisitors: maxVisitors,
		limit:       rate.Limit(rps),
		burst:       burst,
		classifier:  classifier,
		now:         time.Now,
	}
}

func (rl *RateLimiter) Enabled() bool { return rl.limit > 0 }

func (rl *RateLimiter) limiterFor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if v, ok := rl.visitors[ip]; ok {
		v.lastSeen = now
		return v.limiter
	}

	if len(rl.visitors) >= rl.maxVisitors {
		rl.evictIdle(now)
	}
	if len(rl.visitors) >= rl.maxVisitors {
		return rl.overflow
	}

	v := &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst), lastSeen: now}
	rl.visitors[ip] = v
	return v.limiter
}

// evictIdle удаляет лимитеры адресов, молчавших дольше visitorIdleTTL. Вызывается под mu.
func (rl *RateLimiter) evictIdle(now time.Time) {
	for ip, v := range rl.visitors {
		if now.Sub(v.lastSeen) > visitorIdleTTL {
			delete(rl.visitors, ip)
		}
	}
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Enabled() || rl.classifier.ClassifyRequest(r).IsAdmin() {
			next.ServeHTTP(w, r)
			return
		}

		if !rl.limiterFor(clientIP(r)).Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"ok":false,"error":"rate_limited"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ParseTrustedProxies разбирает список адресов и CIDR доверенных прокси.
func ParseTrustedProxies(entries []string) ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(entries))
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if strings.Contains(e, "/") {
			p, err := netip.ParsePrefix(e)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", e, err)
			}
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(e)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", e, err)
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}

// TrustedRealIP применяет chi RealIP только к запросам от доверенных прокси.
// Без списка X-Forwarded-For/X-Real-IP игнорируются и в RemoteAddr остается адрес сокета.
func TrustedRealIP(proxies []netip.Prefix) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		withRealIP := middleware.RealIP(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if peerTrusted(proxies, r.RemoteAddr) {
				withRealIP.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func peerTrusted(proxies []netip.Prefix, remoteAddr string) bool {
	if len(proxies) == 0 {
		return false
	}
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range proxies {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// clientIP — RemoteAddr без порта (за доверенным прокси там уже адрес клиента).
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
