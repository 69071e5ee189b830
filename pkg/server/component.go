package server

import (
	"sync/atomic"

	"github.com/sputnik-dev/sputnik/pkg/reactive"
	"github.com/sputnik-dev/sputnik/pkg/vdom"
)

// Widget is a component that a session mounts and can persist.
type Widget interface {
	vdom.Component

	// Snapshot returns the widget state for session resume.
	Snapshot() ([]byte, error)

	// Restore loads state produced by Snapshot.
	Restore(data []byte) error
}

// WidgetFactory builds a fresh widget for a session.
type WidgetFactory func(sessionID string) Widget

// PageFunc returns the page body. It must contain an element whose id is
// the configured mount point.
type PageFunc func() *vdom.VNode

// ComponentInstance is a mounted widget. It is the reactive listener for
// everything the widget reads while rendering.
type ComponentInstance struct {
	Widget Widget

	id      uint64
	dirty   atomic.Bool
	renderC chan<- struct{}
}

var _ reactive.Listener = (*ComponentInstance)(nil)

func newComponentInstance(w Widget, renderC chan<- struct{}) *ComponentInstance {
	return &ComponentInstance{
		Widget:  w,
		id:      reactive.NextID(),
		renderC: renderC,
	}
}

// MarkDirty schedules a re-render on the session's event loop.
func (c *ComponentInstance) MarkDirty() {
	c.dirty.Store(true)
	select {
	case c.renderC <- struct{}{}:
	default:
	}
}

// ID implements reactive.Listener.
func (c *ComponentInstance) ID() uint64 {
	return c.id
}

// IsDirty reports whether the widget needs re-rendering.
func (c *ComponentInstance) IsDirty() bool {
	return c.dirty.Load()
}

// mount renders the widget inside a mount element with hydration ID
// MountHID. Signals read during render subscribe c.
func (c *ComponentInstance) mount() *vdom.VNode {
	tree := vdom.Div(c.Widget)
	tree.HID = MountHID
	c.dirty.Store(false)
	reactive.WithListener(c, func() {
		vdom.Resolve(tree)
	})
	return tree
}
