package telemetry

import (
	"context"
	"errors"

	"fleetdesk/core/internal/telemetry/domain"
)

// FanOut forwards each event to every configured sink. One sink failing does
// not stop delivery to the others.
type FanOut struct {
	emitters []EventEmitter
}

// NewFanOut returns an emitter delivering to all non-nil emitters.
func NewFanOut(emitters ...EventEmitter) *FanOut {
	f := &FanOut{}
	for _, e := range emitters {
		if e != nil {
			f.emitters = append(f.emitters, e)
		}
	}
	return f
}

// Emit delivers the event to every sink and returns the joined errors, if any.
func (f *FanOut) Emit(ctx context.Context, event *domain.SecurityEvent) error {
	var errs []error
	for _, e := range f.emitters {
		if err := e.Emit(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
