// Package hooks adapts sdk.TelemetryHooks to zerolog and Prometheus.
package hooks

import (
	"context"
	"net/http"
	"time"

	sdk "github.com/plaidnox/veta/sdk/go"
)

// Merge fans every callback out to each of the given hooks in order.
func Merge(all ...sdk.TelemetryHooks) sdk.TelemetryHooks {
	return sdk.TelemetryHooks{
		OnHTTPRequest: func(ctx context.Context, req *http.Request) {
			for _, h := range all {
				if h.OnHTTPRequest != nil {
					h.OnHTTPRequest(ctx, req)
				}
			}
		},
		OnHTTPResponse: func(ctx context.Context, req *http.Request, resp *http.Response, err error, latency time.Duration) {
			for _, h := range all {
				if h.OnHTTPResponse != nil {
					h.OnHTTPResponse(ctx, req, resp, err, latency)
				}
			}
		},
		OnLogEntry: func(ctx context.Context, entry sdk.LogEntry) {
			for _, h := range all {
				if h.OnLogEntry != nil {
					h.OnLogEntry(ctx, entry)
				}
			}
		},
		OnMetric: func(ctx context.Context, metric sdk.Metric) {
			for _, h := range all {
				if h.OnMetric != nil {
					h.OnMetric(ctx, metric)
				}
			}
		},
	}
}
