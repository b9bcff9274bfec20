package notify

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type captureHandler struct {
	mu      sync.Mutex
	batches [][]ComponentChange
	err     error
}

func (h *captureHandler) ID() string { return "capture" }

func (h *captureHandler) HandleChanges(_ context.Context, changes []ComponentChange) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.batches = append(h.batches, changes)
	return h.err
}

func (h *captureHandler) all() []ComponentChange {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []ComponentChange
	for _, b := range h.batches {
		out = append(out, b...)
	}
	return out
}

func event(issueKey, componentKey, author string) ChangeEvent {
	return ChangeEvent{
		IssueKey:     issueKey,
		ComponentKey: componentKey,
		ProjectKey:   "proj",
		Author:       author,
		Fields:       []string{"status"},
		At:           time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC),
	}
}

func TestDispatcherCoalescesByComponent(t *testing.T) {
	h := &captureHandler{}
	d := NewDispatcher(zerolog.Nop(), []Handler{h}, WithFlushWindow(time.Hour))
	defer d.Stop()

	d.IssueChanged(event("PROJ-1", "proj:a.go", "arthur"))
	d.IssueChanged(event("PROJ-2", "proj:a.go", "arthur"))
	d.IssueChanged(event("PROJ-3", "proj:b.go", "trillian"))

	d.Flush(context.Background())

	changes := h.all()
	if len(changes) != 2 {
		t.Fatalf("expected 2 component batches, got %d: %+v", len(changes), changes)
	}
	// Flush sorts batches by component key.
	if changes[0].ComponentKey != "proj:a.go" || changes[1].ComponentKey != "proj:b.go" {
		t.Errorf("unexpected batch order: %+v", changes)
	}
	if !reflect.DeepEqual(changes[0].IssueKeys, []string{"PROJ-1", "PROJ-2"}) {
		t.Errorf("a.go issue keys wrong: %v", changes[0].IssueKeys)
	}
	if !reflect.DeepEqual(changes[0].Authors, []string{"arthur"}) {
		t.Errorf("authors should be deduped: %v", changes[0].Authors)
	}
}

func TestDispatcherFlushClearsPending(t *testing.T) {
	h := &captureHandler{}
	d := NewDispatcher(zerolog.Nop(), []Handler{h}, WithFlushWindow(time.Hour))
	defer d.Stop()

	d.IssueChanged(event("PROJ-1", "proj:a.go", "arthur"))
	d.Flush(context.Background())
	d.Flush(context.Background())

	h.mu.Lock()
	n := len(h.batches)
	h.mu.Unlock()
	if n != 1 {
		t.Errorf("second flush with nothing pending should not call handlers, got %d batches", n)
	}
}

func TestDispatcherHandlerErrorSwallowed(t *testing.T) {
	failing := &captureHandler{err: errors.New("smtp down")}
	ok := &captureHandler{}
	d := NewDispatcher(zerolog.Nop(), []Handler{failing, ok}, WithFlushWindow(time.Hour))
	defer d.Stop()

	d.IssueChanged(event("PROJ-1", "proj:a.go", "arthur"))
	d.Flush(context.Background())

	if len(ok.all()) != 1 {
		t.Error("a failing handler must not prevent delivery to the others")
	}
}

func TestDispatcherStopFlushes(t *testing.T) {
	h := &captureHandler{}
	d := NewDispatcher(zerolog.Nop(), []Handler{h}, WithFlushWindow(time.Hour))

	d.IssueChanged(event("PROJ-1", "proj:a.go", "arthur"))
	d.Stop()

	if len(h.all()) != 1 {
		t.Error("Stop should flush pending events")
	}
	// Stop is idempotent.
	d.Stop()
}

func TestDispatcherBackgroundFlush(t *testing.T) {
	h := &captureHandler{}
	d := NewDispatcher(zerolog.Nop(), []Handler{h}, WithFlushWindow(20*time.Millisecond))
	defer d.Stop()

	d.IssueChanged(event("PROJ-1", "proj:a.go", "arthur"))

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(h.all()) > 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("background flush never fired")
}
