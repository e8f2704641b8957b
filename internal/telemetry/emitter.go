// Package telemetry fans security events out to external sinks (Kafka, OTel
// Logs). Everything here is best-effort: sinks being down never affects the
// data operation that produced the event.
package telemetry

import (
	"context"

	"fleetdesk/core/internal/telemetry/domain"
)

// EventEmitter emits security events. Best-effort; callers log and ignore errors.
type EventEmitter interface {
	Emit(ctx context.Context, event *domain.SecurityEvent) error
}
