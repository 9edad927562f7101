// Package headers defines HTTP header constants used by the console SDK.
package headers

const (
	// RequestID correlates one logical request across its post-refresh replay.
	RequestID = "X-Request-Id"

	// Authorization carries "<scheme> <access token>".
	Authorization = "Authorization"

	// ContentType is the standard content type header.
	ContentType = "Content-Type"

	// Traceparent is the W3C trace context header.
	Traceparent = "Traceparent"
)
