package reactive

import (
	"sync"
	"testing"
)

type countingListener struct {
	id    uint64
	mu    sync.Mutex
	dirty int
}

func newCountingListener() *countingListener {
	return &countingListener{id: NextID()}
}

func (c *countingListener) MarkDirty() {
	c.mu.Lock()
	c.dirty++
	c.mu.Unlock()
}

func (c *countingListener) ID() uint64 { return c.id }

func (c *countingListener) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty
}

func TestSignalGetSet(t *testing.T) {
	s := NewSignal(false)
	if s.Get() {
		t.Fatal("initial value should be false")
	}
	s.Set(true)
	if !s.Peek() {
		t.Fatal("value should be true after Set")
	}
}

func TestSignalTracksListener(t *testing.T) {
	s := NewSignal(false)
	l := newCountingListener()

	WithListener(l, func() {
		_ = s.Get()
		_ = s.Get()
	})

	s.Set(true)
	if l.count() != 1 {
		t.Errorf("expected 1 notification, got %d", l.count())
	}

	// Setting the same value is not a change.
	s.Set(true)
	if l.count() != 1 {
		t.Errorf("unchanged Set should not notify, got %d", l.count())
	}
}

func TestSignalPeekDoesNotSubscribe(t *testing.T) {
	s := NewSignal(1)
	l := newCountingListener()

	WithListener(l, func() { _ = s.Peek() })

	s.Set(2)
	if l.count() != 0 {
		t.Errorf("expected no notifications, got %d", l.count())
	}
}

func TestWithListenerRestoresOuter(t *testing.T) {
	a := NewSignal(0)
	b := NewSignal(0)
	outer := newCountingListener()
	inner := newCountingListener()

	WithListener(outer, func() {
		WithListener(inner, func() { _ = b.Get() })
		_ = a.Get()
	})

	a.Set(1)
	if outer.count() != 1 || inner.count() != 0 {
		t.Errorf("after a.Set: outer=%d inner=%d", outer.count(), inner.count())
	}
	b.Set(1)
	if outer.count() != 1 || inner.count() != 1 {
		t.Errorf("after b.Set: outer=%d inner=%d", outer.count(), inner.count())
	}
}

func TestSignalUpdateComparesSlices(t *testing.T) {
	s := NewSignal([]int{1})
	l := newCountingListener()
	WithListener(l, func() { _ = s.Get() })

	s.Set([]int{1})
	if l.count() != 0 {
		t.Error("deep-equal slice should not notify")
	}
	s.Update(func(v []int) []int { return append(v, 2) })
	if l.count() != 1 {
		t.Errorf("expected 1 notification, got %d", l.count())
	}
}

func TestTrackingIsPerGoroutine(t *testing.T) {
	s := NewSignal(0)
	l := newCountingListener()

	var wg sync.WaitGroup
	WithListener(l, func() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Get()
		}()
		wg.Wait()
	})

	s.Set(1)
	if l.count() != 0 {
		t.Errorf("read on another goroutine subscribed the listener")
	}
}

func TestListenerFunc(t *testing.T) {
	calls := 0
	l := NewListenerFunc(func() { calls++ })
	s := NewSignal(0)
	WithListener(l, func() { _ = s.Get() })
	s.Set(1)
	if calls != 1 {
		t.Errorf("calls = %d", calls)
	}
}
