package hooks

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	sdk "github.com/plaidnox/veta/sdk/go"
)

// Collectors holds the Prometheus series fed by the SDK metric hook.
type Collectors struct {
	RequestLatency   *prometheus.HistogramVec
	SessionRefreshes *prometheus.CounterVec
	SessionTeardowns *prometheus.CounterVec
}

// NewCollectors builds the collectors and registers them on reg
// (prometheus.DefaultRegisterer when nil).
func NewCollectors(reg prometheus.Registerer) (*Collectors, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &Collectors{
		RequestLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "veta_sdk_http_request_duration_seconds",
				Help:    "Console API request latency by method and status.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "status"},
		),
		SessionRefreshes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "veta_sdk_session_refresh_total",
				Help: "Token refreshes by outcome.",
			},
			[]string{"outcome"},
		),
		SessionTeardowns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "veta_sdk_session_teardown_total",
				Help: "Session teardowns by triggering status.",
			},
			[]string{"status"},
		),
	}
	for _, col := range []prometheus.Collector{c.RequestLatency, c.SessionRefreshes, c.SessionTeardowns} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Hooks returns the metric hook that feeds the collectors.
func (c *Collectors) Hooks() sdk.TelemetryHooks {
	return sdk.TelemetryHooks{
		OnMetric: func(_ context.Context, m sdk.Metric) {
			switch m.Name {
			case sdk.MetricHTTPLatency:
				c.RequestLatency.WithLabelValues(m.Labels["method"], m.Labels["status"]).Observe(m.Value / 1000)
			case sdk.MetricSessionRefresh:
				c.SessionRefreshes.WithLabelValues(m.Labels["outcome"]).Add(m.Value)
			case sdk.MetricSessionTeardown:
				c.SessionTeardowns.WithLabelValues(m.Labels["status"]).Add(m.Value)
			}
		},
	}
}
