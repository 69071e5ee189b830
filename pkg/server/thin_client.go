package server

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"

	clientdist "github.com/sputnik-dev/sputnik/client/dist"
)

var clientETag = func() string {
	sum := sha256.Sum256(clientdist.SputnikJS)
	return `"` + hex.EncodeToString(sum[:8]) + `"`
}()

// handleClientScript serves the embedded thin client with an ETag.
func (s *Server) handleClientScript(w http.ResponseWriter, r *http.Request) {
	h := w.Header()
	h.Set("Content-Type", "application/javascript; charset=utf-8")
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("ETag", clientETag)
	if s.config.DevMode {
		h.Set("Cache-Control", "no-cache")
	} else {
		h.Set("Cache-Control", "public, max-age=3600")
	}

	if match := r.Header.Get("If-None-Match"); match == clientETag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Write(clientdist.SputnikJS)
}
