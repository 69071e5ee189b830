// Package vdom provides the virtual DOM used by the Sputnik runtime.
//
// Components render VNode trees on the server. The runtime diffs successive
// trees and sends the resulting patches to the thin browser client, which
// applies them to the real DOM.
//
// # Core Types
//
// VNode is the building block for elements, text, fragments, components and
// raw HTML. Props holds attributes and event handlers. Attr and EventHandler
// are the values accepted by the element factories.
//
// # Element API
//
//	Button(Class("like"),
//	    OnClick(func() { liked.Set(true) }),
//	    Text("Like"),
//	)
//
// # Hydration
//
// Interactive elements (those with an on* handler) receive a hydration ID
// when rendered. The HID links a server VNode to its client DOM node and is
// the address used by events and patches.
//
// # Diffing
//
// Diff compares two trees and returns the patches that turn the first into
// the second. When a change cannot be expressed against an addressable node
// the diff falls back to replacing the children of the nearest element that
// has an HID.
package vdom
