// Package vtest provides testing helpers for Sputnik components.
//
// # Render Assertions
//
//	html := vtest.RenderToString(t, components.NewLikeButton().Render())
//	vtest.ExpectContains(t, html, "Like")
//	vtest.ExpectNotContains(t, html, "You liked this.")
//
// # Harness
//
// Harness mounts a component the way a server session does, without a
// network connection. Clicks run the handler registered for a hydration ID,
// re-render and diff, so tests see the same patches a browser would get:
//
//	h := vtest.Mount(t, components.NewLikeButton())
//	h.Click("h1")
//	if h.HTML() != "You liked this." {
//	    t.Errorf("got %q", h.HTML())
//	}
package vtest
