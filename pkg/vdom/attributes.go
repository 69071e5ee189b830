package vdom

import "strings"

// attr creates an Attr with the given key and value.
func attr(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// AttrOf creates an arbitrary attribute.
func AttrOf(key string, value any) Attr { return attr(key, value) }

// ID sets the id attribute.
func ID(id string) Attr { return attr("id", id) }

// Class sets the class attribute, joining multiple classes with spaces.
func Class(classes ...string) Attr { return attr("class", strings.Join(classes, " ")) }

// Key sets the reconciliation key. It is never rendered.
func Key(key string) Attr { return attr("key", key) }

// Data creates a data-* attribute.
// Example: Data("widget", "like") → data-widget="like"
func Data(key, value string) Attr { return attr("data-"+key, value) }

// Type sets the type attribute.
func Type(t string) Attr { return attr("type", t) }

// Name sets the name attribute.
func Name(name string) Attr { return attr("name", name) }

// Src sets the src attribute.
func Src(src string) Attr { return attr("src", src) }

// ContentAttr sets the content attribute (meta).
func ContentAttr(content string) Attr { return attr("content", content) }

// Charset sets the charset attribute (meta).
func Charset(charset string) Attr { return attr("charset", charset) }

// Lang sets the lang attribute.
func Lang(lang string) Attr { return attr("lang", lang) }

// Disabled marks the element disabled.
func Disabled() Attr { return attr("disabled", true) }

// Defer marks a script as deferred.
func Defer() Attr { return attr("defer", true) }

// AriaLive sets the aria-live attribute.
func AriaLive(mode string) Attr { return attr("aria-live", mode) }
