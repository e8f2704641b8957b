package telemetry

import (
	"context"
	"sync"
	"testing"
	"time"

	"fleetdesk/core/internal/telemetry/domain"
)

// mockEventEmitter implements EventEmitter for tests.
type mockEventEmitter struct {
	mu      sync.Mutex
	events  []*domain.SecurityEvent
	emitErr error
	delay   time.Duration
}

func (m *mockEventEmitter) Emit(ctx context.Context, event *domain.SecurityEvent) error {
	if m.delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.delay):
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.emitErr
}

func (m *mockEventEmitter) getEvents() []*domain.SecurityEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events
}

func TestEmitAsync_NilEmitter(t *testing.T) {
	// Should not panic.
	EmitAsync(nil, context.Background(), &domain.SecurityEvent{TenantID: "t1", Event: "access_denied"})
}

func TestEmitAsync_NilEvent(t *testing.T) {
	emitter := &mockEventEmitter{}

	EmitAsync(emitter, context.Background(), nil)

	time.Sleep(10 * time.Millisecond)
	if n := len(emitter.getEvents()); n != 0 {
		t.Errorf("expected 0 events, got %d", n)
	}
}

func TestEmitAsync_SuccessfulEmit(t *testing.T) {
	emitter := &mockEventEmitter{}
	event := &domain.SecurityEvent{
		TenantID: "t1",
		UserID:   "user-1",
		Event:    "access_denied",
		Entity:   "attendance",
	}

	EmitAsync(emitter, context.Background(), event)

	time.Sleep(100 * time.Millisecond)
	events := emitter.getEvents()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].TenantID != "t1" {
		t.Errorf("tenant = %q, want t1", events[0].TenantID)
	}
	if events[0].Event != "access_denied" {
		t.Errorf("event = %q, want access_denied", events[0].Event)
	}
}

func TestEmitAsync_UsesBackgroundContext(t *testing.T) {
	emitter := &mockEventEmitter{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // the request context is already gone

	EmitAsync(emitter, ctx, &domain.SecurityEvent{TenantID: "t1", Event: "access_denied"})

	time.Sleep(100 * time.Millisecond)
	if n := len(emitter.getEvents()); n != 1 {
		t.Errorf("expected 1 event (context.Background used), got %d", n)
	}
}

func TestEmitAsync_ErrorHandling(t *testing.T) {
	emitter := &mockEventEmitter{emitErr: context.DeadlineExceeded}

	// Errors are logged, never surfaced; must not panic.
	EmitAsync(emitter, context.Background(), &domain.SecurityEvent{TenantID: "t1", Event: "access_denied"})

	time.Sleep(100 * time.Millisecond)
}

func TestEmitAsync_ConcurrentAccess(t *testing.T) {
	emitter := &mockEventEmitter{}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			EmitAsync(emitter, context.Background(), &domain.SecurityEvent{TenantID: "t1", Event: "access_denied"})
		}()
	}
	wg.Wait()

	time.Sleep(200 * time.Millisecond)
	if n := len(emitter.getEvents()); n != 10 {
		t.Errorf("expected 10 events, got %d", n)
	}
}
