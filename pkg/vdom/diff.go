package vdom

import (
	"fmt"
	"reflect"
	"strconv"
)

// Diff compares two VNode trees and returns the patches needed to transform
// prev into next. HIDs of matched elements are copied from prev to next so
// the next tree stays addressable.
//
// The root of prev should carry an HID. Changes that cannot be addressed
// anywhere below it become a ReplaceChildren patch on the root.
func Diff(prev, next *VNode) []Patch {
	var patches []Patch
	if diff(prev, next, "", true, &patches) {
		patches = append(patches[:0], Patch{
			Op:   PatchReplaceNode,
			HID:  prev.HID,
			Node: next,
		})
	}
	return patches
}

// diff compares two nodes and appends patches. parentHID is the HID of the
// nearest element ancestor, used for text patches. sole reports whether the
// node is the only content of that ancestor.
//
// It returns true when the change cannot be expressed against an addressable
// node; the nearest ancestor with an HID then replaces its children.
func diff(prev, next *VNode, parentHID string, sole bool, patches *[]Patch) bool {
	if prev == nil && next == nil {
		return false
	}

	// Node added (handled by parent via InsertNode)
	if prev == nil {
		return false
	}

	if next == nil {
		if prev.HID == "" {
			return true
		}
		*patches = append(*patches, Patch{
			Op:  PatchRemoveNode,
			HID: prev.HID,
		})
		return false
	}

	if prev.Kind != next.Kind {
		return replace(prev, next, patches)
	}

	switch prev.Kind {
	case KindText:
		return diffText(prev, next, parentHID, sole, patches)
	case KindRaw:
		return prev.Text != next.Text
	case KindElement:
		return diffElement(prev, next, patches)
	case KindFragment:
		next.HID = prev.HID
		return diffChildren(prev.Children, next.Children, parentHID, false, sole, patches)
	case KindComponent:
		next.HID = prev.HID
		if reflect.TypeOf(prev.Comp) != reflect.TypeOf(next.Comp) {
			return true
		}
		return diffChildren(prev.Children, next.Children, parentHID, false, sole, patches)
	}
	return false
}

// replace swaps prev for next when prev is addressable.
func replace(prev, next *VNode, patches *[]Patch) bool {
	if prev.HID == "" {
		return true
	}
	*patches = append(*patches, Patch{
		Op:   PatchReplaceNode,
		HID:  prev.HID,
		Node: next,
	})
	return false
}

// diffText compares text nodes. Text nodes never have HIDs, so a change is
// sent as SetText on the parent element when the text is its only content.
func diffText(prev, next *VNode, parentHID string, sole bool, patches *[]Patch) bool {
	if prev.Text == next.Text {
		return false
	}
	if !sole || parentHID == "" {
		return true
	}
	*patches = append(*patches, Patch{
		Op:    PatchSetText,
		HID:   parentHID,
		Value: next.Text,
	})
	return false
}

// diffElement compares element nodes.
func diffElement(prev, next *VNode, patches *[]Patch) bool {
	if prev.Tag != next.Tag {
		return replace(prev, next, patches)
	}

	next.HID = prev.HID
	mark := len(*patches)

	if diffProps(prev, next, patches) {
		return true
	}

	sole := len(prev.Children) == 1 && len(next.Children) == 1
	if !diffChildren(prev.Children, next.Children, prev.HID, true, sole, patches) {
		return false
	}

	if prev.HID == "" {
		return true
	}
	*patches = append((*patches)[:mark], Patch{
		Op:   PatchReplaceChildren,
		HID:  prev.HID,
		Node: next,
	})
	return false
}

// diffChildren compares children positionally. direct is true when the
// children belong to the element identified by hostHID, making their index a
// DOM index.
func diffChildren(prev, next []*VNode, hostHID string, direct, sole bool, patches *[]Patch) bool {
	n := len(prev)
	if len(next) > n {
		n = len(next)
	}
	childSole := sole && len(prev) == 1 && len(next) == 1

	for i := 0; i < n; i++ {
		var prevChild, nextChild *VNode
		if i < len(prev) {
			prevChild = prev[i]
		}
		if i < len(next) {
			nextChild = next[i]
		}

		if prevChild == nil && nextChild != nil {
			if !direct || hostHID == "" {
				return true
			}
			*patches = append(*patches, Patch{
				Op:       PatchInsertNode,
				ParentID: hostHID,
				Index:    i,
				Node:     nextChild,
			})
			continue
		}

		if diff(prevChild, nextChild, hostHID, childSole, patches) {
			return true
		}
	}
	return false
}

// diffProps compares attributes. Event handlers are excluded; the runtime
// rebinds them after every render.
func diffProps(prev, next *VNode, patches *[]Patch) bool {
	var out []Patch

	for key, prevVal := range prev.Props {
		if isEventHandler(key) {
			continue
		}
		nextVal, exists := next.Props[key]
		switch {
		case !exists || nextVal == false:
			if prevVal != false {
				out = append(out, Patch{Op: PatchRemoveAttr, HID: prev.HID, Key: key})
			}
		case !propsEqual(prevVal, nextVal):
			out = append(out, Patch{Op: PatchSetAttr, HID: prev.HID, Key: key, Value: propToString(nextVal)})
		}
	}

	for key, nextVal := range next.Props {
		if isEventHandler(key) || nextVal == false {
			continue
		}
		if _, exists := prev.Props[key]; !exists {
			out = append(out, Patch{Op: PatchSetAttr, HID: prev.HID, Key: key, Value: propToString(nextVal)})
		}
	}

	if len(out) == 0 {
		return false
	}
	if prev.HID == "" {
		return true
	}
	*patches = append(*patches, out...)
	return false
}

// propsEqual compares two prop values for equality.
func propsEqual(a, b any) bool {
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case int:
		bv, ok := b.(int)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	}
	return reflect.DeepEqual(a, b)
}

// propToString converts a prop value to its attribute string form.
func propToString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		if val {
			return ""
		}
		return "false"
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(val)
	}
}
