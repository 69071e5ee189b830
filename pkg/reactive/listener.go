package reactive

import "sync/atomic"

// Listener is anything that can be notified when a dependency changes.
// Component instances implement it to schedule a re-render.
type Listener interface {
	// MarkDirty notifies the listener that one of its dependencies changed.
	MarkDirty()

	// ID returns a unique identifier used for deduplication.
	ID() uint64
}

// globalIDCounter is the source of unique listener IDs.
var globalIDCounter atomic.Uint64

// NextID returns the next unique listener ID. IDs are never reused.
func NextID() uint64 {
	return globalIDCounter.Add(1)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc struct {
	id uint64
	fn func()
}

// NewListenerFunc wraps fn as a Listener with a fresh ID.
func NewListenerFunc(fn func()) *ListenerFunc {
	return &ListenerFunc{id: NextID(), fn: fn}
}

// MarkDirty calls the wrapped function.
func (l *ListenerFunc) MarkDirty() {
	if l.fn != nil {
		l.fn()
	}
}

// ID implements Listener.
func (l *ListenerFunc) ID() uint64 { return l.id }
