// Package cache holds short-lived key/value stores shared across requests:
// replayable responses for Idempotency-Key handling.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrEmptyKey is returned when a store is called with an empty key
var ErrEmptyKey = errors.New("cache: empty key")

// StoredResponse is a completed HTTP response kept for replay. Fingerprint
// identifies the request body that produced it.
type StoredResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty"`
}

// IdempotencyStore tracks idempotency keys through two states: reserved while
// the first request is in flight, then completed with the response to replay.
type IdempotencyStore interface {
	// Reserve claims key for ttl. It returns false when the key is already
	// reserved or completed.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Complete stores the response for key, replacing the reservation.
	Complete(ctx context.Context, key string, resp StoredResponse, ttl time.Duration) error
	// Lookup returns the completed response for key, or nil when the key is
	// unknown, expired or still reserved.
	Lookup(ctx context.Context, key string) (*StoredResponse, error)
	// Release drops key so the request can be retried.
	Release(ctx context.Context, key string) error
	Close() error
}
