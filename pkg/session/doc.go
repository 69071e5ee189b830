// Package session persists widget state for detached sessions so a client
// that reconnects within the resume window sees the state it left.
//
// A Store holds opaque snapshots keyed by session ID. MemoryStore serves a
// single process; RedisStore and S3Store share snapshots across instances.
// Manager tracks live and detached sessions, evicts the least recently used
// detached session when over capacity, and flushes everything to the store
// on shutdown.
package session
