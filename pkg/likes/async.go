package likes

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrQueueFull is returned by Async.Record when the buffer is full.
var ErrQueueFull = errors.New("likes: record queue full")

// ErrClosed is returned by Async.Record after Close.
var ErrClosed = errors.New("likes: recorder closed")

// AsyncConfig configures an Async recorder.
type AsyncConfig struct {
	// Buffer is the number of pending events. Default: 256.
	Buffer int

	// Timeout bounds each call to the wrapped recorder. Default: 5s.
	Timeout time.Duration
}

// Async records events on a background goroutine so that slow backends
// never block a session's event loop.
type Async struct {
	next    Recorder
	timeout time.Duration
	logger  *slog.Logger

	mu     sync.RWMutex
	queue  chan Event
	closed bool
	wg     sync.WaitGroup
}

// NewAsync starts a background worker feeding next.
func NewAsync(next Recorder, cfg AsyncConfig, logger *slog.Logger) *Async {
	if cfg.Buffer <= 0 {
		cfg.Buffer = 256
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	a := &Async{
		next:    next,
		timeout: cfg.Timeout,
		logger:  logger.With("component", "likes"),
		queue:   make(chan Event, cfg.Buffer),
	}
	a.wg.Add(1)
	go a.run()
	return a
}

// Record enqueues ev. It never blocks; when the buffer is full the event is
// dropped and ErrQueueFull returned.
func (a *Async) Record(_ context.Context, ev Event) error {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		return ErrClosed
	}
	select {
	case a.queue <- ev:
		return nil
	default:
		a.logger.Warn("dropping like event", "widget", ev.Widget, "session_id", ev.SessionID)
		return ErrQueueFull
	}
}

func (a *Async) run() {
	defer a.wg.Done()
	for ev := range a.queue {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		if err := a.next.Record(ctx, ev); err != nil {
			a.logger.Error("like recording failed",
				"widget", ev.Widget,
				"session_id", ev.SessionID,
				"error", err)
		}
		cancel()
	}
}

// Close stops accepting events and waits for queued ones to be recorded.
func (a *Async) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	close(a.queue)
	a.mu.Unlock()

	a.wg.Wait()
	return nil
}
