// Package observability provides the service's metrics and tracing.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthFailures counts rejected credentials by error code.
	AuthFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spotboard_auth_failures_total",
		Help: "Total number of rejected tokens and logins by error code",
	}, []string{"code"})

	// CascadeDeletes counts completed cascading deletions by root entity.
	CascadeDeletes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spotboard_cascade_deletes_total",
		Help: "Total number of committed cascading deletions",
	}, []string{"entity"})

	// CascadeFiles counts post-commit file removals by outcome.
	CascadeFiles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spotboard_cascade_files_total",
		Help: "Files handled after a cascading deletion by result (removed, missing, error)",
	}, []string{"result"})

	// MediaOperations counts media store calls.
	MediaOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spotboard_media_operations_total",
		Help: "Total media store operations by type and result",
	}, []string{"op", "result"})

	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spotboard_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// BreakerState reports circuit breaker state (0 closed, 1 half-open, 2 open).
	BreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "spotboard_breaker_state",
		Help: "Circuit breaker state by breaker name",
	}, []string{"name"})
)
