package metrics

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	redis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	UsageResultAccepted = "accepted"
	UsageResultRejected = "rejected"
	UsageResultError    = "error"
)

const (
	StoreErrorDeadlineExceeded     = "deadline_exceeded"
	StoreErrorDBLockTimeout        = "db_lock_timeout"
	StoreErrorSerializationFailure = "serialization_failure"
	StoreErrorUniqueViolation      = "unique_violation"
	StoreErrorRedis                = "redis"
	StoreErrorUnknown              = "unknown"
)

// UsageMetrics captures usage counter store health: reservation outcomes,
// latency and failure classes per backend.
type UsageMetrics struct {
	reserveTotal    *prometheus.CounterVec
	reserveDuration *prometheus.HistogramVec
	releaseTotal    *prometheus.CounterVec
	storeErrors     *prometheus.CounterVec
}

// NewUsageMetrics registers the usage counter collectors on the default registerer.
func NewUsageMetrics(cfg Config) (*UsageMetrics, error) {
	return NewUsageMetricsWithRegisterer(prometheus.DefaultRegisterer, cfg)
}

// NewUsageMetricsWithRegisterer registers the collectors on registerer.
func NewUsageMetricsWithRegisterer(registerer prometheus.Registerer, cfg Config) (*UsageMetrics, error) {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "discount-engine"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	reserveTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "discount_usage_reserve_total",
		Help:        "Usage reservations by backend and result.",
		ConstLabels: constLabels,
	}, []string{"backend", "result"})
	reserveDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "discount_usage_reserve_duration_seconds",
		Help:        "Usage reservation latency including retries.",
		Buckets:     []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		ConstLabels: constLabels,
	}, []string{"backend"})
	releaseTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "discount_usage_release_total",
		Help:        "Usage releases by backend and result.",
		ConstLabels: constLabels,
	}, []string{"backend", "result"})
	storeErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "discount_usage_store_errors_total",
		Help:        "Usage store errors by low-cardinality reason.",
		ConstLabels: constLabels,
	}, []string{"backend", "reason"})

	for _, c := range []prometheus.Collector{reserveTotal, reserveDuration, releaseTotal, storeErrors} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}

	return &UsageMetrics{
		reserveTotal:    reserveTotal,
		reserveDuration: reserveDuration,
		releaseTotal:    releaseTotal,
		storeErrors:     storeErrors,
	}, nil
}

// ObserveReserve records one reservation call.
func (m *UsageMetrics) ObserveReserve(backend, result string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.reserveTotal.WithLabelValues(backend, result).Inc()
	m.reserveDuration.WithLabelValues(backend).Observe(duration.Seconds())
	if err != nil {
		m.storeErrors.WithLabelValues(backend, ClassifyStoreError(err)).Inc()
	}
}

// ObserveRelease records one release call.
func (m *UsageMetrics) ObserveRelease(backend string, err error) {
	if m == nil {
		return
	}
	result := UsageResultAccepted
	if err != nil {
		result = UsageResultError
		m.storeErrors.WithLabelValues(backend, ClassifyStoreError(err)).Inc()
	}
	m.releaseTotal.WithLabelValues(backend, result).Inc()
}

// ClassifyStoreError maps a usage store error to a metric reason.
func ClassifyStoreError(err error) string {
	if err == nil {
		return StoreErrorUnknown
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return StoreErrorDeadlineExceeded
	}
	if hasPGCode(err, "55P03") {
		return StoreErrorDBLockTimeout
	}
	if hasPGCode(err, "40001") {
		return StoreErrorSerializationFailure
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || hasPGCode(err, "23505") {
		return StoreErrorUniqueViolation
	}
	var redisErr redis.Error
	if errors.As(err, &redisErr) {
		return StoreErrorRedis
	}
	return StoreErrorUnknown
}

func hasPGCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code
	}
	return false
}
