package otel

import (
	"context"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"fleetdesk/core/internal/telemetry"
	"fleetdesk/core/internal/telemetry/domain"
)

// NewEventEmitter returns an EventEmitter that sends security events as OTel
// log records via the given LoggerProvider. If provider is nil, returns a
// no-op emitter.
func NewEventEmitter(provider *sdklog.LoggerProvider) telemetry.EventEmitter {
	if provider == nil {
		return noopEmitter{}
	}
	return &otelEmitter{logger: provider.Logger("fleetdesk.security")}
}

// NewEventEmitterWithLogger returns an EventEmitter that emits through the
// given logger directly. Tests use it to capture records.
func NewEventEmitterWithLogger(logger otellog.Logger) telemetry.EventEmitter {
	return &otelEmitter{logger: logger}
}

type noopEmitter struct{}

func (noopEmitter) Emit(context.Context, *domain.SecurityEvent) error { return nil }

type otelEmitter struct {
	logger otellog.Logger
}

// Emit converts the security event to an OTel log record and emits it. Best-effort.
func (e *otelEmitter) Emit(ctx context.Context, event *domain.SecurityEvent) error {
	if event == nil {
		return nil
	}
	rec := otellog.Record{}
	if !event.CreatedAt.IsZero() {
		rec.SetTimestamp(event.CreatedAt)
	}
	if event.Metadata != "" {
		rec.SetBody(otellog.StringValue(event.Metadata))
	}
	if event.TenantID != "" {
		rec.AddAttributes(otellog.String("tenant_id", event.TenantID))
	}
	if event.UserID != "" {
		rec.AddAttributes(otellog.String("user_id", event.UserID))
	}
	if event.EmployeeID != "" {
		rec.AddAttributes(otellog.String("employee_id", event.EmployeeID))
	}
	if event.Event != "" {
		rec.AddAttributes(otellog.String("event", event.Event))
	}
	if event.Entity != "" {
		rec.AddAttributes(otellog.String("entity", event.Entity))
	}
	if rec.Timestamp().IsZero() {
		rec.SetTimestamp(time.Now().UTC())
	}
	e.logger.Emit(ctx, rec)
	return nil
}
