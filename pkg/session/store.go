package session

import (
	"context"
	"errors"
	"time"
)

// Store defines the interface for session persistence backends.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save persists a snapshot, overwriting any previous one for sessionID.
	Save(ctx context.Context, sessionID string, data []byte, expiresAt time.Time) error

	// Load returns (nil, nil) if the session doesn't exist or has expired.
	Load(ctx context.Context, sessionID string) ([]byte, error)

	// Delete removes a session. Missing sessions are not an error.
	Delete(ctx context.Context, sessionID string) error

	// Touch extends the expiration without rewriting the snapshot.
	// Missing sessions are not an error.
	Touch(ctx context.Context, sessionID string, expiresAt time.Time) error

	// SaveAll persists many sessions, used on graceful shutdown.
	SaveAll(ctx context.Context, sessions map[string]Data) error

	// Close releases any resources held by the store.
	Close() error
}

// Data is a serialized snapshot with its expiration.
type Data struct {
	Bytes     []byte
	ExpiresAt time.Time
}

// ErrStoreClosed is returned when operations are attempted on a closed store.
var ErrStoreClosed = errors.New("session: store is closed")

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
