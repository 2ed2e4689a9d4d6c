package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "acquiring"

// Registry holds every collector of this module. It is pushed, not scraped,
// since the binaries here are short-lived.
var Registry = prometheus.NewRegistry()

var (
	GatewayRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_requests_total",
			Help:      "Gateway calls by operation and outcome.",
		},
		[]string{"operation", "result"},
	)

	GatewayDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gateway_request_duration_seconds",
			Help:      "Gateway call latency by operation.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	RefreshedPayments = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_refresh_payments_total",
			Help:      "Payments visited by the status refresh command.",
		},
		[]string{"result"},
	)
)

func init() {
	Registry.MustRegister(GatewayRequests, GatewayDuration, RefreshedPayments)
}

// ObserveGatewayCall records one finished gateway call.
func ObserveGatewayCall(operation, result string, d time.Duration) {
	GatewayRequests.WithLabelValues(operation, result).Inc()
	GatewayDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// Push sends the registry to a Prometheus pushgateway under job.
func Push(ctx context.Context, url, job string) error {
	return push.New(url, job).Gatherer(Registry).PushContext(ctx)
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
