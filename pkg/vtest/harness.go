package vtest

import (
	"testing"

	"github.com/sputnik-dev/sputnik/pkg/reactive"
	"github.com/sputnik-dev/sputnik/pkg/render"
	"github.com/sputnik-dev/sputnik/pkg/vdom"
)

// MountHID is the hydration ID of the harness mount element.
const MountHID = "h0"

// Harness hosts one component inside a mount element.
type Harness struct {
	t        testing.TB
	comp     vdom.Component
	hids     *vdom.HIDGenerator
	listener *reactive.ListenerFunc
	dirty    bool

	tree     *vdom.VNode
	handlers map[string]any
	patches  [][]vdom.Patch
}

// Mount renders comp into a fresh mount element.
func Mount(t testing.TB, comp vdom.Component) *Harness {
	t.Helper()
	h := &Harness{t: t, comp: comp, hids: vdom.NewHIDGenerator()}
	h.listener = reactive.NewListenerFunc(func() { h.dirty = true })
	h.tree = h.resolve()
	h.hydrate()
	return h
}

func (h *Harness) resolve() *vdom.VNode {
	tree := vdom.Div(h.comp)
	tree.HID = MountHID
	reactive.WithListener(h.listener, func() {
		vdom.Resolve(tree)
	})
	h.dirty = false
	return tree
}

// hydrate assigns HIDs to elements that did not inherit one from the diff
// and rebuilds the handler table.
func (h *Harness) hydrate() {
	vdom.AssignHIDs(h.tree, h.hids)
	h.handlers = vdom.CollectHandlers(h.tree)
}

// HTML returns the rendered contents of the mount element.
func (h *Harness) HTML() string {
	h.t.Helper()
	r := render.NewRenderer(render.RendererConfig{})
	html, err := r.RenderChildren(h.tree)
	if err != nil {
		h.t.Fatalf("render failed: %v", err)
	}
	return html
}

// Click dispatches a click to hid. It reports false, and changes nothing,
// when no element with that hydration ID has a click handler; that is what
// happens to a stale click in a live session.
func (h *Harness) Click(hid string) bool {
	h.t.Helper()
	return h.dispatch(hid, "onclick", "")
}

func (h *Harness) dispatch(hid, event, value string) bool {
	handler, ok := h.handlers[hid+"_"+event]
	if !ok {
		return false
	}
	if err := vdom.Invoke(handler, value); err != nil {
		h.t.Fatalf("handler %s_%s: %v", hid, event, err)
	}
	if h.dirty {
		next := h.resolve()
		h.patches = append(h.patches, vdom.Diff(h.tree, next))
		h.tree = next
		h.hydrate()
	}
	return true
}

// HIDOf returns the hydration ID of the first element with tag, or "".
func (h *Harness) HIDOf(tag string) string {
	if n := findTag(h.tree, tag); n != nil {
		return n.HID
	}
	return ""
}

// Patches returns the patch batches produced by every re-render so far.
func (h *Harness) Patches() [][]vdom.Patch {
	return h.patches
}

// Renders returns how many times the component re-rendered after mount.
func (h *Harness) Renders() int {
	return len(h.patches)
}
