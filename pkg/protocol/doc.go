// Package protocol implements the binary wire protocol between the Sputnik
// server and the thin browser client.
//
// Every WebSocket message is one frame:
//
//	┌─────────────┬──────────────┬───────────────────────────────┐
//	│ Frame Type  │ Flags        │ Payload Length                │
//	│ (1 byte)    │ (1 byte)     │ (2 bytes, big-endian)         │
//	└─────────────┴──────────────┴───────────────────────────────┘
//	│  Payload (variable length)                                  │
//	└─────────────────────────────────────────────────────────────┘
//
// Payloads use unsigned varints for integers and varint length-prefixed UTF-8
// for strings.
//
// # Flow
//
//	client                                server
//	  │ ── Handshake(ClientHello) ──────────▶ │
//	  │ ◀────────── Handshake(ServerHello) ── │
//	  │ ◀──────── Patches(seq 1, full sync) ─ │
//	  │ ── Event(click h1) ─────────────────▶ │
//	  │ ◀──────────────── Patches(seq 2) ──── │
//	  │ ◀──── Control(ping) / ── pong ──────▶ │
//
// Node payloads (InsertNode, ReplaceNode, ReplaceChildren) travel as HTML
// rendered by the server, so the client never builds DOM from a tree format.
package protocol
