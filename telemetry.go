package sdk

import (
	"context"
	"net/http"
	"time"
)

// TelemetryHooks receives what the gateway observes. Every field is optional.
// The hooks package turns them into zerolog lines and Prometheus series.
type TelemetryHooks struct {
	// OnHTTPRequest runs before every attempt, post-refresh replays included.
	OnHTTPRequest func(ctx context.Context, req *http.Request)
	// OnHTTPResponse runs after every attempt; resp is nil on transport errors.
	OnHTTPResponse func(ctx context.Context, req *http.Request, resp *http.Response, err error, latency time.Duration)
	OnLogEntry     func(ctx context.Context, entry LogEntry)
	OnMetric       func(ctx context.Context, metric Metric)
}

// LogLevel is the severity of a LogEntry.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Log events. LogEntry.Message is always one of these.
const (
	EventHTTPRequest            = "http_request"
	EventLoginSucceeded         = "login_succeeded"
	EventLogoutFailed           = "logout_failed"
	EventSessionRecoveryFailed  = "session_recovery_failed"
	EventSessionRefreshStarted  = "session_refresh_started"
	EventSessionRefreshOK       = "session_refresh_succeeded"
	EventSessionRefreshFailed   = "session_refresh_failed"
	EventSessionTeardown        = "session_teardown"
	EventSessionTeardownStorage = "session_teardown_store_failed"
)

// LogEntry is one structured event.
type LogEntry struct {
	Level   LogLevel
	Message string
	Fields  map[string]any
}

// Metric is one datapoint. Latency values are milliseconds.
type Metric struct {
	Name   string
	Value  float64
	Labels map[string]string
}

// Metric names and their labels:
//
//	MetricHTTPLatency      method, status ("error" without a response)
//	MetricSessionRefresh   outcome ("succeeded" or "failed")
//	MetricSessionTeardown  status (the triggering HTTP status)
const (
	MetricHTTPLatency     = "sdk_http_request_latency_ms"
	MetricSessionRefresh  = "sdk_session_refresh_total"
	MetricSessionTeardown = "sdk_session_teardown_total"
)

func (t TelemetryHooks) log(ctx context.Context, level LogLevel, event string, fields map[string]any) {
	if t.OnLogEntry != nil {
		t.OnLogEntry(ctx, LogEntry{Level: level, Message: event, Fields: fields})
	}
}

func (t TelemetryHooks) metric(ctx context.Context, name string, value float64, labels map[string]string) {
	if t.OnMetric != nil {
		t.OnMetric(ctx, Metric{Name: name, Value: value, Labels: labels})
	}
}

// refreshOutcome records the end of one shared refresh.
func (t TelemetryHooks) refreshOutcome(ctx context.Context, err error) {
	if err != nil {
		t.metric(ctx, MetricSessionRefresh, 1, map[string]string{"outcome": "failed"})
		t.log(ctx, LogLevelError, EventSessionRefreshFailed, map[string]any{"error": err.Error()})
		return
	}
	t.metric(ctx, MetricSessionRefresh, 1, map[string]string{"outcome": "succeeded"})
	t.log(ctx, LogLevelInfo, EventSessionRefreshOK, nil)
}
