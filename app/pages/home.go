// Package pages builds the HTML pages the server renders.
package pages

import "github.com/sputnik-dev/sputnik/pkg/vdom"

// DefaultMountID is the element the LikeButton is mounted into.
const DefaultMountID = "login"

// Home returns the body of the home page. The element with id mountID is
// left empty; the server mounts the widget into it.
func Home(title, mountID string) *vdom.VNode {
	return vdom.Main(vdom.Class("home"),
		vdom.Header(vdom.H1(vdom.Text(title))),
		vdom.Section(vdom.Class("like"),
			vdom.Div(vdom.ID(mountID), vdom.AriaLive("polite")),
		),
		vdom.Noscript(vdom.P(vdom.Text("Enable JavaScript to like this page."))),
	)
}
