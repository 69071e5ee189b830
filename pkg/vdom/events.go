package vdom

import (
	"errors"
	"fmt"
)

// event creates an EventHandler with the given name and handler.
// The name is prefixed with "on" (e.g., "click" becomes "onclick").
func event(name string, handler any) EventHandler {
	return EventHandler{Event: "on" + name, Handler: handler}
}

// OnClick handles click events.
func OnClick(handler any) EventHandler { return event("click", handler) }

// ErrUnsupportedHandler is returned by Invoke for handler values it cannot call.
var ErrUnsupportedHandler = errors.New("vdom: unsupported handler type")

// Invoke calls an event handler. Supported shapes are func() and
// func(string), where the string is the event value (input text for
// oninput, empty for clicks).
func Invoke(handler any, value string) error {
	switch h := handler.(type) {
	case func():
		h()
	case func(string):
		h(value)
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedHandler, handler)
	}
	return nil
}
