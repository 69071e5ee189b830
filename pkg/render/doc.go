// Package render provides server-side rendering (SSR) for Sputnik components.
//
// The render package converts VNode trees into HTML, handling:
//
//   - Text and attribute escaping
//   - Void elements (input, br, meta, ...)
//   - Boolean attributes (disabled, checked, ...)
//   - Hydration IDs for interactive elements
//   - Full page rendering with DOCTYPE, head, body and the thin client script
//
// # Basic Usage
//
//	renderer := render.NewRenderer(render.RendererConfig{})
//	html, err := renderer.RenderToString(node)
//
// # Hydration IDs
//
// Elements with event handlers receive a data-hid attribute. Elements that
// already carry an HID keep it, so patches rendered later in a session stay
// consistent with the tree the session diffed. Handlers are collected during
// rendering and can be retrieved with Handlers.
//
// # Security
//
// All text content is escaped. KindRaw nodes are written verbatim and must
// only hold trusted content.
package render
