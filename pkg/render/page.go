package render

import (
	"io"

	"github.com/sputnik-dev/sputnik/pkg/vdom"
)

// DefaultClientScript is where the server serves the thin client.
const DefaultClientScript = "/_sputnik/client.js"

// PageData contains all data needed to render a complete HTML page.
type PageData struct {
	// Body is the content placed inside <body>.
	Body *vdom.VNode

	// Title is the page title.
	Title string

	// Meta contains extra meta tags for the head.
	Meta []MetaTag

	// SessionID is handed to the client for WebSocket resume.
	SessionID string

	// WebSocketPath is the endpoint the client connects to.
	WebSocketPath string

	// ClientScript is the path to the thin client JavaScript.
	// Defaults to DefaultClientScript.
	ClientScript string

	// Lang is the language attribute for the html element. Defaults to "en".
	Lang string
}

// MetaTag represents a meta element in the document head.
type MetaTag struct {
	Name    string
	Content string
}

// RenderPage renders a complete HTML document to the given writer.
func (r *Renderer) RenderPage(w io.Writer, page PageData) error {
	lang := page.Lang
	if lang == "" {
		lang = "en"
	}
	script := page.ClientScript
	if script == "" {
		script = DefaultClientScript
	}

	doc := vdom.Html(vdom.Lang(lang),
		pageHead(page),
		vdom.Body(
			page.Body,
			vdom.Script(vdom.Src(script), vdom.Defer()),
		),
	)

	if _, err := io.WriteString(w, "<!DOCTYPE html>\n"); err != nil {
		return err
	}
	if err := r.RenderToWriter(w, doc); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func pageHead(page PageData) *vdom.VNode {
	meta := page.Meta
	if page.SessionID != "" {
		meta = append(meta, MetaTag{Name: "sputnik-session", Content: page.SessionID})
	}
	if page.WebSocketPath != "" {
		meta = append(meta, MetaTag{Name: "sputnik-ws", Content: page.WebSocketPath})
	}

	tags := make([]*vdom.VNode, 0, len(meta))
	for _, m := range meta {
		tags = append(tags, vdom.Meta(vdom.Name(m.Name), vdom.ContentAttr(m.Content)))
	}

	return vdom.Head(
		vdom.Meta(vdom.Charset("utf-8")),
		vdom.Meta(vdom.Name("viewport"), vdom.ContentAttr("width=device-width, initial-scale=1")),
		vdom.If(page.Title != "", vdom.Title(vdom.Text(page.Title))),
		tags,
	)
}
