package shared

import (
	"context"
	"time"
)

// IdempotencyState is the state of a claimed idempotency key
type IdempotencyState string

const (
	// IdempotencyPending means the first request holding the key has not finished
	IdempotencyPending IdempotencyState = "pending"
	// IdempotencyCompleted means the request finished and recorded its result
	IdempotencyCompleted IdempotencyState = "completed"
)

// IdempotencyRecord is what a store holds for a key
type IdempotencyRecord struct {
	State IdempotencyState
	// Value is the result reference recorded on completion (e.g. an order ID)
	Value string
}

// IdempotencyStore makes client retries of non-idempotent requests safe
type IdempotencyStore interface {
	// Claim atomically reserves key in the pending state.
	// Returns true if the key was newly claimed, false if it already exists.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Complete records the result for a claimed key
	Complete(ctx context.Context, key, value string, ttl time.Duration) error

	// Lookup returns the record for key, or nil if the key is unknown or expired
	Lookup(ctx context.Context, key string) (*IdempotencyRecord, error)

	// Release drops a claim so the request may be retried (used on failure)
	Release(ctx context.Context, key string) error

	// Close closes the store and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is how long a completed key is remembered
	TTL time.Duration

	// PendingTTL bounds how long a claim survives if the holder never completes
	PendingTTL time.Duration

	// Enabled determines whether the Idempotency-Key header is honored
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:        24 * time.Hour,
		PendingTTL: time.Minute,
		Enabled:    true,
	}
}
