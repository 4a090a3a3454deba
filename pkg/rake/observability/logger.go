// Package observability provides structured logging, metrics and tracing
// for rake clients.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
)

// EnrichLogger adds client context to a logger.
// Returns a new logger with the token and scope fields.
//
// Example:
//
//	enriched := EnrichLogger(logger, "tok-123", "app")
//	enriched.Info("tracking") // includes token, scope
func EnrichLogger(logger *slog.Logger, token, scope string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("token", token),
		slog.String("scope", scope),
	)
}

// LogInstanceCreated logs the creation of a client for a token.
func LogInstanceCreated(logger *slog.Logger, endpoint string, devServer bool) {
	if logger == nil {
		return
	}
	logger.Info("rake instance created",
		slog.String("endpoint", endpoint),
		slog.Bool("dev_server", devServer),
	)
}

// LogTrack logs a composed event handed to the delivery queue.
func LogTrack(logger *slog.Logger, propertyCount int, schemaID string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("event tracked",
		slog.Int("properties", propertyCount),
		slog.String("schema_id", schemaID),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogTrackDropped logs an event that could not be composed or enqueued.
func LogTrackDropped(logger *slog.Logger, err error) {
	if logger == nil {
		return
	}
	logger.Error("exception tracking event",
		slog.String("error", err.Error()),
	)
}

// LogPropertySkipped logs a single property that could not be merged.
func LogPropertySkipped(logger *slog.Logger, op, key string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("property skipped",
		slog.String("operation", op),
		slog.String("key", key),
		slog.String("error", err.Error()),
	)
}

// LogOverlayLoaded logs the super properties read from the store.
func LogOverlayLoaded(logger *slog.Logger, payload string) {
	if logger == nil {
		return
	}
	logger.Debug("loading super properties",
		slog.String("payload", payload),
	)
}

// LogOverlayStored logs the super properties written to the store.
func LogOverlayStored(logger *slog.Logger, payload string) {
	if logger == nil {
		return
	}
	logger.Debug("storing super properties",
		slog.String("payload", payload),
	)
}

// LogOverlayReset logs recovery from an unreadable stored overlay (non-fatal).
func LogOverlayReset(logger *slog.Logger, err error) {
	if logger == nil {
		return
	}
	logger.Warn("cannot parse stored super properties, resetting",
		slog.String("error", err.Error()),
	)
}

// LogOverlayError logs a failed super property operation (non-fatal).
func LogOverlayError(logger *slog.Logger, op string, err error) {
	if logger == nil {
		return
	}
	logger.Error("super properties operation failed",
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
}

// LogFlush logs an explicit flush request.
func LogFlush(logger *slog.Logger) {
	if logger == nil {
		return
	}
	logger.Debug("flush events")
}

// LogDelivery logs a delivered batch.
func LogDelivery(logger *slog.Logger, endpoint string, events, attempts int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("batch delivered",
		slog.String("endpoint", endpoint),
		slog.Int("events", events),
		slog.Int("attempts", attempts),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogDeliveryError logs a batch that could not be delivered.
func LogDeliveryError(logger *slog.Logger, endpoint string, events int, err error) {
	if logger == nil {
		return
	}
	logger.Error("batch delivery failed",
		slog.String("endpoint", endpoint),
		slog.Int("events", events),
		slog.String("error", err.Error()),
	)
}
