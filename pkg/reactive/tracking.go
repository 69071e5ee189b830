package reactive

import (
	"runtime"
	"sync"
)

// trackingContext holds the reactive state for one goroutine.
type trackingContext struct {
	// currentListener is subscribed by every signal read. nil disables tracking.
	currentListener Listener
}

// trackingContexts stores per-goroutine tracking contexts keyed by goroutine ID.
var trackingContexts sync.Map

// goroutineID parses the current goroutine ID from the runtime stack header
// ("goroutine <id> [...]").
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] < '0' || buf[i] > '9' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}

// acquire returns the tracking context for the current goroutine, creating
// one when missing.
func acquire() (*trackingContext, uint64) {
	gid := goroutineID()
	if ctx, ok := trackingContexts.Load(gid); ok {
		return ctx.(*trackingContext), gid
	}
	ctx := &trackingContext{}
	trackingContexts.Store(gid, ctx)
	return ctx, gid
}

// release drops the goroutine's context once it carries no state.
func release(ctx *trackingContext, gid uint64) {
	if ctx.currentListener == nil {
		trackingContexts.Delete(gid)
	}
}

// currentListener returns the listener tracking reads on this goroutine.
func currentListener() Listener {
	ctx, ok := trackingContexts.Load(goroutineID())
	if !ok {
		return nil
	}
	return ctx.(*trackingContext).currentListener
}

// WithListener runs fn with l as the tracking listener. Signals read inside
// fn subscribe l.
func WithListener(l Listener, fn func()) {
	ctx, gid := acquire()
	old := ctx.currentListener
	ctx.currentListener = l
	defer func() {
		ctx.currentListener = old
		release(ctx, gid)
	}()
	fn()
}

// notifyAll marks every listener dirty. No lock is held by the caller.
func notifyAll(subs []Listener) {
	for _, sub := range subs {
		sub.MarkDirty()
	}
}
