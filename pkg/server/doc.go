// Package server hosts server-driven widgets over HTTP and WebSockets.
//
// A Server renders the page on GET /, serves the thin client, and accepts
// WebSocket connections. Each connection becomes a Session that mounts one
// widget into the page's mount element and runs three goroutines:
//
//	ReadLoop   decodes frames and queues events
//	WriteLoop  sends heartbeats
//	EventLoop  runs handlers one at a time and sends patches
//
// Handlers run on the event loop only, so widget state needs no locking. A
// handler that changes a signal marks the widget dirty; after the handler
// returns the widget re-renders, the new tree is diffed against the previous
// one, and the patches go out in a single sequenced frame.
//
// When a connection drops, the widget state is snapshotted into the session
// manager and, if configured, a session.Store. A client that reconnects with
// the same session ID inside the resume window gets its state back.
package server
