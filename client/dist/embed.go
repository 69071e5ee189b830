// Package clientdist embeds the thin browser client served at
// /_sputnik/client.js.
package clientdist

import _ "embed"

// SputnikJS is the thin client JavaScript.
//
//go:embed sputnik.js
var SputnikJS []byte
