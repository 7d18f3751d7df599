package log

import (
	"context"
	"log/slog"
	"net/http"
)

// StructuredLogger provides the audit-style log lines for the main
// business events, using the shared field vocabulary.
type StructuredLogger struct {
	logger *Logger
}

// NewStructuredLogger creates a new structured logger
func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{
		logger: logger,
	}
}

// LogHTTPStart logs the start of an HTTP request
func (sl *StructuredLogger) LogHTTPStart(ctx context.Context, r *http.Request, clientIP string) {
	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent"), r.Header.Get("Referer")).
		WithClientIP(clientIP).
		WithComponent(ComponentHTTP)

	sl.logger.InfoContext(ctx, "HTTP request started", fields.ToSlice()...)
}

// LogHTTPEnd logs the completion of an HTTP request
func (sl *StructuredLogger) LogHTTPEnd(ctx context.Context, r *http.Request, statusCode int, durationMs int64, clientIP string) {
	level := slog.LevelInfo
	if statusCode >= 400 && statusCode < 500 {
		level = slog.LevelWarn
	} else if statusCode >= 500 {
		level = slog.LevelError
	}

	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "", "").
		WithHTTPResponse(statusCode, durationMs, statusCode < 400).
		WithClientIP(clientIP).
		WithComponent(ComponentHTTP)

	sl.logger.Logger.Log(ctx, level, "HTTP request completed", fields.ToSlice()...)
}

// LogChargeRecorded logs successful charge creation
func (sl *StructuredLogger) LogChargeRecorded(ctx context.Context, chargeID, clientID string, amountCents int64, serviceType string) {
	fields := NewFields().
		WithCharge(chargeID, clientID, amountCents, serviceType).
		WithOperation(OpCreate).
		WithComponent(ComponentLedger)

	sl.logger.InfoContext(ctx, "Charge recorded", fields.ToSlice()...)
}

// LogAppointmentScheduled logs a successful booking
func (sl *StructuredLogger) LogAppointmentScheduled(ctx context.Context, appointmentID, clientID string, serviceType string) {
	fields := NewFields().
		WithAppointment(appointmentID, clientID, serviceType).
		WithOperation(OpSchedule).
		WithComponent(ComponentScheduler)

	sl.logger.InfoContext(ctx, "Appointment scheduled", fields.ToSlice()...)
}

// LogError logs an error with structured context
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, component string, operation string, fields LogFields) {
	allFields := fields.
		WithError(err).
		WithOperation(operation).
		WithComponent(component)

	sl.logger.ErrorContext(ctx, msg, allFields.ToSlice()...)
}
