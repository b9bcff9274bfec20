package notify

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const defaultFlushWindow = 2 * time.Second

// Dispatcher buffers change events and flushes them to handlers in
// per-component batches. A slow or failing handler never blocks the caller:
// IssueChanged only appends to the buffer, flushing happens on a background
// goroutine, and handler errors are logged and swallowed.
type Dispatcher struct {
	log      zerolog.Logger
	window   time.Duration
	handlers []Handler

	mu      sync.Mutex
	pending map[string]*ComponentChange // component key -> accumulated change

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithFlushWindow overrides the coalescing window.
func WithFlushWindow(d time.Duration) Option {
	return func(dp *Dispatcher) { dp.window = d }
}

// NewDispatcher creates a running dispatcher. Call Stop to flush and shut
// down.
func NewDispatcher(log zerolog.Logger, handlers []Handler, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		log:      log,
		window:   defaultFlushWindow,
		handlers: handlers,
		pending:  make(map[string]*ComponentChange),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	go d.run()
	return d
}

// IssueChanged implements Notifier. Events for the same component within one
// flush window are coalesced into a single ComponentChange.
func (d *Dispatcher) IssueChanged(ev ChangeEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cc, ok := d.pending[ev.ComponentKey]
	if !ok {
		cc = &ComponentChange{
			ComponentKey: ev.ComponentKey,
			ProjectKey:   ev.ProjectKey,
			At:           ev.At,
		}
		d.pending[ev.ComponentKey] = cc
	}
	cc.IssueKeys = appendUnique(cc.IssueKeys, ev.IssueKey)
	cc.Authors = appendUnique(cc.Authors, ev.Author)
	if ev.At.After(cc.At) {
		cc.At = ev.At
	}
}

// Flush delivers all pending batches immediately. Used on shutdown and in
// tests.
func (d *Dispatcher) Flush(ctx context.Context) {
	d.mu.Lock()
	if len(d.pending) == 0 {
		d.mu.Unlock()
		return
	}
	changes := make([]ComponentChange, 0, len(d.pending))
	for _, cc := range d.pending {
		changes = append(changes, *cc)
	}
	d.pending = make(map[string]*ComponentChange)
	d.mu.Unlock()

	sort.Slice(changes, func(i, j int) bool { return changes[i].ComponentKey < changes[j].ComponentKey })

	for _, h := range d.handlers {
		if err := h.HandleChanges(ctx, changes); err != nil {
			d.log.Warn().Str("handler", h.ID()).Err(err).Msg("notification handler failed")
		}
	}
}

// Stop flushes pending events and stops the background goroutine.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		close(d.stop)
		<-d.done
	})
}

func (d *Dispatcher) run() {
	defer close(d.done)
	ticker := time.NewTicker(d.window)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			d.Flush(context.Background())
		case <-d.stop:
			d.Flush(context.Background())
			return
		}
	}
}

func appendUnique(list []string, v string) []string {
	if v == "" {
		return list
	}
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

// LogHandler writes coalesced changes to the log. It is the default handler
// wired by the CLI; real deliveries (mail, webhooks) plug in beside it.
type LogHandler struct {
	Log zerolog.Logger
}

// ID implements Handler.
func (LogHandler) ID() string { return "log" }

// HandleChanges implements Handler.
func (h LogHandler) HandleChanges(_ context.Context, changes []ComponentChange) error {
	for _, cc := range changes {
		h.Log.Info().
			Str("component", cc.ComponentKey).
			Str("project", cc.ProjectKey).
			Strs("issues", cc.IssueKeys).
			Strs("authors", cc.Authors).
			Msg("issues changed")
	}
	return nil
}
