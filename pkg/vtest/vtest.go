package vtest

import (
	"strings"
	"testing"

	"github.com/sputnik-dev/sputnik/pkg/render"
	"github.com/sputnik-dev/sputnik/pkg/vdom"
)

// RenderToString renders a node with a fresh hydration ID generator, so the
// first interactive element gets "h1". Render errors fail the test.
func RenderToString(t testing.TB, node *vdom.VNode) string {
	t.Helper()
	r := render.NewRenderer(render.RendererConfig{HIDs: vdom.NewHIDGenerator()})
	html, err := r.RenderToString(node)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	return html
}

// ExpectContains asserts that html contains expected.
func ExpectContains(t testing.TB, html, expected string) {
	t.Helper()
	if !strings.Contains(html, expected) {
		t.Errorf("expected rendered output to contain %q, got:\n%s", expected, truncate(html, 500))
	}
}

// ExpectNotContains asserts that html does not contain unexpected.
func ExpectNotContains(t testing.TB, html, unexpected string) {
	t.Helper()
	if strings.Contains(html, unexpected) {
		t.Errorf("expected rendered output to NOT contain %q, got:\n%s", unexpected, truncate(html, 500))
	}
}

// ExpectElement returns the first element with the given tag in the tree,
// failing the test if there is none. Components must be resolved first.
func ExpectElement(t testing.TB, node *vdom.VNode, tag string) *vdom.VNode {
	t.Helper()
	if found := findTag(node, tag); found != nil {
		return found
	}
	t.Fatalf("expected a <%s> element in the tree", tag)
	return nil
}

func findTag(node *vdom.VNode, tag string) *vdom.VNode {
	if node == nil {
		return nil
	}
	if node.Kind == vdom.KindElement && node.Tag == tag {
		return node
	}
	for _, child := range node.Children {
		if found := findTag(child, tag); found != nil {
			return found
		}
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
