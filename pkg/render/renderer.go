package render

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sputnik-dev/sputnik/pkg/vdom"
)

// booleanAttrs are rendered as a bare name when true and omitted when false.
var booleanAttrs = map[string]bool{
	"async":     true,
	"autofocus": true,
	"checked":   true,
	"defer":     true,
	"disabled":  true,
	"hidden":    true,
	"multiple":  true,
	"readonly":  true,
	"required":  true,
	"selected":  true,
}

// RendererConfig configures the HTML renderer.
type RendererConfig struct {
	// HIDs generates hydration IDs. Sessions pass their own generator so IDs
	// stay unique across the initial render and later patches. A fresh
	// generator is used when nil.
	HIDs *vdom.HIDGenerator
}

// Renderer handles server-side rendering of VNode trees to HTML.
type Renderer struct {
	hids     *vdom.HIDGenerator
	handlers map[string]any
}

// NewRenderer creates a new Renderer with the given configuration.
func NewRenderer(config RendererConfig) *Renderer {
	hids := config.HIDs
	if hids == nil {
		hids = vdom.NewHIDGenerator()
	}
	return &Renderer{
		hids:     hids,
		handlers: make(map[string]any),
	}
}

// RenderToString renders a VNode tree to an HTML string.
func (r *Renderer) RenderToString(node *vdom.VNode) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToWriter(&buf, node); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderChildren renders only the children of node, the payload of a
// ReplaceChildren patch.
func (r *Renderer) RenderChildren(node *vdom.VNode) (string, error) {
	var buf bytes.Buffer
	if node != nil {
		for _, child := range node.Children {
			if err := r.renderNode(&buf, child); err != nil {
				return "", err
			}
		}
	}
	return buf.String(), nil
}

// RenderToWriter streams a VNode tree to the given writer.
func (r *Renderer) RenderToWriter(w io.Writer, node *vdom.VNode) error {
	return r.renderNode(w, node)
}

// Handlers returns the handlers collected during rendering, keyed
// "hid_eventname" (e.g., "h1_onclick").
func (r *Renderer) Handlers() map[string]any {
	return r.handlers
}

// Reset clears the handler registry and restarts hydration IDs.
func (r *Renderer) Reset() {
	r.hids.Reset()
	r.handlers = make(map[string]any)
}

func (r *Renderer) renderNode(w io.Writer, node *vdom.VNode) error {
	if node == nil {
		return nil
	}

	switch node.Kind {
	case vdom.KindElement:
		return r.renderElement(w, node)
	case vdom.KindText:
		_, err := io.WriteString(w, escapeHTML(node.Text))
		return err
	case vdom.KindFragment:
		return r.renderChildren(w, node)
	case vdom.KindComponent:
		return r.renderComponent(w, node)
	case vdom.KindRaw:
		_, err := io.WriteString(w, node.Text)
		return err
	default:
		return fmt.Errorf("render: unknown node kind %d", node.Kind)
	}
}

func (r *Renderer) renderChildren(w io.Writer, node *vdom.VNode) error {
	for _, child := range node.Children {
		if err := r.renderNode(w, child); err != nil {
			return err
		}
	}
	return nil
}

// renderComponent renders a resolved component's children, or renders the
// component on the spot when it has not been resolved yet.
func (r *Renderer) renderComponent(w io.Writer, node *vdom.VNode) error {
	if len(node.Children) == 0 && node.Comp != nil {
		vdom.Resolve(node)
	}
	return r.renderChildren(w, node)
}

func (r *Renderer) renderElement(w io.Writer, node *vdom.VNode) error {
	tag := node.Tag
	if !validAttrName(tag) {
		return fmt.Errorf("render: invalid tag name %q", tag)
	}

	if _, err := io.WriteString(w, "<"+tag); err != nil {
		return err
	}
	if err := r.renderAttributes(w, node); err != nil {
		return err
	}

	if node.HID == "" && node.IsInteractive() {
		node.HID = r.hids.Next()
	}
	if node.HID != "" {
		if _, err := fmt.Fprintf(w, ` data-hid="%s"`, escapeAttr(node.HID)); err != nil {
			return err
		}
		for event, h := range node.Handlers() {
			r.handlers[node.HID+"_"+event] = h
		}
	}

	if _, err := io.WriteString(w, ">"); err != nil {
		return err
	}
	if vdom.IsVoidElement(tag) {
		return nil
	}

	if err := r.renderChildren(w, node); err != nil {
		return err
	}

	_, err := io.WriteString(w, "</"+tag+">")
	return err
}

// renderAttributes renders attributes in sorted order for deterministic output.
func (r *Renderer) renderAttributes(w io.Writer, node *vdom.VNode) error {
	if len(node.Props) == 0 {
		return nil
	}

	keys := make([]string, 0, len(node.Props))
	for key := range node.Props {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := node.Props[key]

		// Handlers are bound through data-hid, never rendered.
		if strings.HasPrefix(strings.ToLower(key), "on") {
			continue
		}
		if key == "data-hid" || !validAttrName(key) {
			continue
		}

		if b, ok := value.(bool); ok && booleanAttrs[key] {
			if b {
				if _, err := io.WriteString(w, " "+key); err != nil {
					return err
				}
			}
			continue
		}

		if value == nil {
			continue
		}
		if _, err := fmt.Fprintf(w, ` %s="%s"`, key, escapeAttr(attrToString(value))); err != nil {
			return err
		}
	}
	return nil
}

// attrToString converts an attribute value to a string.
func attrToString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	case int:
		return fmt.Sprintf("%d", v)
	case int64:
		return fmt.Sprintf("%d", v)
	case float64:
		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
