package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// Текущая эпоха, обновляется каждым запросом /epoch
	CurrentEpoch prometheus.Gauge

	// Traffic: запросы по эндпоинту и уровню доступа
	Requests *prometheus.CounterVec

	// Latency по шаблону маршрута
	RequestDuration *prometheus.HistogramVec

	// Отказы на эндпоинтах с обязательной авторизацией
	AuthFailures *prometheus.CounterVec

	// Сбои вторичного запроса first_attest (поле деградирует в null)
	FirstAttestFailures prometheus.Counter

	// Saturation: состояние Circuit Breaker кэша (0 - closed, 1 - half-open, 2 - open)
	CacheBreakerState *prometheus.GaugeVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	// Null Object Pattern - Если рег не передан, используем локальный, который никуда не подключен
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		CurrentEpoch: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "rustchain_current_epoch",
			Help: "Current epoch number as computed by the node.",
		}),

		Requests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "rustchain_api_requests_total",
			Help: "Total number of API requests by endpoint and access level.",
		}, []string{"endpoint", "access"}),

		RequestDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rustchain_api_request_duration_seconds",
			Help:    "Histogram of request latencies.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"route", "status"}),

		AuthFailures: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "rustchain_api_auth_failures_total",
			Help: "Requests rejected for missing or invalid admin key.",
		}, []string{"endpoint"}),

		FirstAttestFailures: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "rustchain_first_attest_lookup_failures_total",
			Help: "Failed first-attestation lookups degraded to null.",
		}),

		CacheBreakerState: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Name: "rustchain_cache_breaker_state",
			Help: "Current state of the cache circuit breaker (0=closed, 1=half-open, 2=open).",
		}, []string{"cache"}),
	}
}
