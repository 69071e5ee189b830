package session

import (
	"encoding/json"
	"fmt"
	"time"
)

// SnapshotVersion is bumped on incompatible format changes.
const SnapshotVersion = 1

// Snapshot is the persisted form of a session. Widgets holds each mounted
// widget's state keyed by its mount point ID.
type Snapshot struct {
	ID         string                     `json:"id"`
	CreatedAt  time.Time                  `json:"created_at"`
	LastActive time.Time                  `json:"last_active"`
	Widgets    map[string]json.RawMessage `json:"widgets,omitempty"`
	Version    int                        `json:"version"`
}

// Encode serializes the snapshot, stamping the current version.
func (s *Snapshot) Encode() ([]byte, error) {
	s.Version = SnapshotVersion
	return json.Marshal(s)
}

// DecodeSnapshot parses a snapshot and rejects unknown versions.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if s.Version != SnapshotVersion {
		return nil, fmt.Errorf("decode snapshot: unsupported version %d", s.Version)
	}
	return &s, nil
}
