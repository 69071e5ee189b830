package vdom

import (
	"strconv"
	"sync/atomic"
)

// HIDGenerator hands out hydration IDs "h1", "h2", ... in tree order.
// "h0" is never produced; it belongs to the mount element.
type HIDGenerator struct {
	n atomic.Uint32
}

func NewHIDGenerator() *HIDGenerator {
	return &HIDGenerator{}
}

// Next returns the next unused ID.
func (g *HIDGenerator) Next() string {
	return "h" + strconv.FormatUint(uint64(g.n.Add(1)), 10)
}

// Reset restarts numbering at h1. Used before a full re-render.
func (g *HIDGenerator) Reset() {
	g.n.Store(0)
}

// AssignHIDs walks the tree and assigns HIDs to interactive elements that
// don't have one yet.
func AssignHIDs(node *VNode, gen *HIDGenerator) {
	if node == nil {
		return
	}
	if node.HID == "" && node.IsInteractive() {
		node.HID = gen.Next()
	}
	for _, child := range node.Children {
		AssignHIDs(child, gen)
	}
}

// FindByHID returns the first node in depth-first order whose HID is hid.
func FindByHID(node *VNode, hid string) *VNode {
	if node == nil || hid == "" {
		return nil
	}
	if node.HID == hid {
		return node
	}
	for _, child := range node.Children {
		if found := FindByHID(child, hid); found != nil {
			return found
		}
	}
	return nil
}

// CollectHandlers returns every event handler in the tree keyed by
// "hid_eventname" (e.g., "h1_onclick"). Nodes without an HID are skipped.
func CollectHandlers(node *VNode) map[string]any {
	out := make(map[string]any)
	collectHandlers(node, out)
	return out
}

func collectHandlers(node *VNode, out map[string]any) {
	if node == nil {
		return
	}
	if node.HID != "" {
		for event, h := range node.Handlers() {
			out[node.HID+"_"+event] = h
		}
	}
	for _, child := range node.Children {
		collectHandlers(child, out)
	}
}
