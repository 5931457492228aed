package storage

import (
	"errors"
	"time"
)

// Result is one stored generation: the full enriched response payload as
// JSON, addressable by a short shareable ID until it expires.
type Result struct {
	ID        string
	Payload   []byte
	CreatedAt time.Time
	ExpiresAt time.Time
}

var (
	// ErrNotFound means no result row exists for the ID.
	ErrNotFound = errors.New("storage: result not found")
	// ErrExpired means the result existed but its TTL has passed.
	ErrExpired = errors.New("storage: result expired")
)
