package components

import "github.com/sputnik-dev/sputnik/pkg/vdom"

// Label renders its text as a single escaped text node.
type Label struct {
	Text string
}

// Render implements vdom.Component.
func (l Label) Render() *vdom.VNode {
	return vdom.Text(l.Text)
}
