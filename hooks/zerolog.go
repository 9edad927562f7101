package hooks

import (
	"context"

	"github.com/rs/zerolog"

	sdk "github.com/plaidnox/veta/sdk/go"
)

// Zerolog writes SDK log entries to logger. Entries below the logger's level
// are dropped by zerolog itself.
func Zerolog(logger zerolog.Logger) sdk.TelemetryHooks {
	return sdk.TelemetryHooks{
		OnLogEntry: func(_ context.Context, entry sdk.LogEntry) {
			event := logger.WithLevel(zerologLevel(entry.Level))
			if event == nil {
				return
			}
			event.Fields(entry.Fields).Msg(entry.Message)
		},
	}
}

func zerologLevel(level sdk.LogLevel) zerolog.Level {
	switch level {
	case sdk.LogLevelDebug:
		return zerolog.DebugLevel
	case sdk.LogLevelWarn:
		return zerolog.WarnLevel
	case sdk.LogLevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
