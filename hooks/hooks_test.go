package hooks

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	sdk "github.com/plaidnox/veta/sdk/go"
)

func TestZerologWritesEntries(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.InfoLevel)
	h := Zerolog(logger)

	h.OnLogEntry(context.Background(), sdk.LogEntry{Level: sdk.LogLevelDebug, Message: "http_request"})
	require.Zero(t, buf.Len(), "debug entries are below the logger level")

	h.OnLogEntry(context.Background(), sdk.LogEntry{
		Level:   sdk.LogLevelWarn,
		Message: "session_teardown",
		Fields:  map[string]any{"status": 403, "path": "/me"},
	})
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "warn", line["level"])
	require.Equal(t, "session_teardown", line["message"])
	require.Equal(t, float64(403), line["status"])
	require.Equal(t, "/me", line["path"])
}

func TestCollectorsRecordMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollectors(reg)
	require.NoError(t, err)
	h := c.Hooks()
	ctx := context.Background()

	h.OnMetric(ctx, sdk.Metric{Name: sdk.MetricSessionRefresh, Value: 1, Labels: map[string]string{"outcome": "succeeded"}})
	h.OnMetric(ctx, sdk.Metric{Name: sdk.MetricSessionRefresh, Value: 1, Labels: map[string]string{"outcome": "succeeded"}})
	h.OnMetric(ctx, sdk.Metric{Name: sdk.MetricSessionTeardown, Value: 1, Labels: map[string]string{"status": "403"}})
	h.OnMetric(ctx, sdk.Metric{Name: sdk.MetricHTTPLatency, Value: 250, Labels: map[string]string{"method": "GET", "status": "200"}})
	h.OnMetric(ctx, sdk.Metric{Name: "unknown", Value: 1})

	families, err := reg.Gather()
	require.NoError(t, err)
	got := map[string]float64{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				got[mf.GetName()] += m.GetCounter().GetValue()
			case m.GetHistogram() != nil:
				got[mf.GetName()] += m.GetHistogram().GetSampleSum()
			}
		}
	}
	require.Equal(t, 2.0, got["veta_sdk_session_refresh_total"])
	require.Equal(t, 1.0, got["veta_sdk_session_teardown_total"])
	require.InDelta(t, 0.25, got["veta_sdk_http_request_duration_seconds"], 1e-9)
}

func TestNewCollectorsRejectsDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewCollectors(reg)
	require.NoError(t, err)
	_, err = NewCollectors(reg)
	require.Error(t, err)
}

func TestMergeCallsEveryHook(t *testing.T) {
	var logs, metrics, requests, responses []string
	a := sdk.TelemetryHooks{
		OnLogEntry: func(_ context.Context, e sdk.LogEntry) { logs = append(logs, "a:"+e.Message) },
		OnMetric:   func(_ context.Context, m sdk.Metric) { metrics = append(metrics, "a:"+m.Name) },
	}
	b := sdk.TelemetryHooks{
		OnLogEntry:    func(_ context.Context, e sdk.LogEntry) { logs = append(logs, "b:"+e.Message) },
		OnHTTPRequest: func(_ context.Context, r *http.Request) { requests = append(requests, r.URL.Path) },
		OnHTTPResponse: func(_ context.Context, _ *http.Request, resp *http.Response, _ error, _ time.Duration) {
			responses = append(responses, resp.Status)
		},
	}
	merged := Merge(a, b)
	ctx := context.Background()
	req, err := http.NewRequest(http.MethodGet, "http://x.test/me", nil)
	require.NoError(t, err)

	merged.OnLogEntry(ctx, sdk.LogEntry{Message: "hello"})
	merged.OnMetric(ctx, sdk.Metric{Name: "m"})
	merged.OnHTTPRequest(ctx, req)
	merged.OnHTTPResponse(ctx, req, &http.Response{Status: "200 OK"}, nil, time.Millisecond)

	require.Equal(t, []string{"a:hello", "b:hello"}, logs)
	require.Equal(t, []string{"a:m"}, metrics)
	require.Equal(t, []string{"/me"}, requests)
	require.Equal(t, []string{"200 OK"}, responses)
}

func TestHooksDriveClientTelemetry(t *testing.T) {
	srv := newStatusServer(t, http.StatusForbidden)
	var buf bytes.Buffer
	reg := prometheus.NewRegistry()
	c, err := NewCollectors(reg)
	require.NoError(t, err)

	client, err := sdk.NewClient(sdk.Config{
		BaseURL:     srv,
		AccessToken: "tok",
		Telemetry:   Merge(Zerolog(zerolog.New(&buf)), c.Hooks()),
	})
	require.NoError(t, err)

	_, err = client.Auth.Me(context.Background())
	require.True(t, sdk.IsForbidden(err))
	require.Contains(t, buf.String(), `"message":"session_teardown"`)
	require.True(t, strings.Contains(buf.String(), `"status":403`))

	families, err := reg.Gather()
	require.NoError(t, err)
	var teardowns float64
	for _, mf := range families {
		if mf.GetName() == "veta_sdk_session_teardown_total" {
			teardowns = mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	require.Equal(t, 1.0, teardowns)
}

// newStatusServer answers every request with status and a JSON error body.
func newStatusServer(t *testing.T, status int) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"message":"denied"}`))
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}
