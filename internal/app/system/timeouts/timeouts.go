// Package timeouts provides centralized timeout values for handler and
// store operations.
//
// These are used with context.WithTimeout around database I/O so that a
// slow or unavailable store turns into a bounded, retryable failure
// instead of a hung request.
//
// Guidelines:
//   - Ping: health checks and connectivity verification
//   - Short: single-document reads (form lookup, student lookup)
//   - Medium: list queries and moderate writes
//   - Txn: the full registration transaction, validation through commit;
//     if the transaction cannot complete inside this bound the caller
//     gets a retryable error and no partial effects
package timeouts

import (
	"sync"
	"time"
)

// Default timeout values (used if Configure is not called).
const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultTxn    = 15 * time.Second
)

// mu protects all timeout values from concurrent access.
var mu sync.RWMutex

var (
	ping   = DefaultPing
	short  = DefaultShort
	medium = DefaultMedium
	txn    = DefaultTxn
)

// Ping returns the timeout for health checks.
func Ping() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return ping
}

// Short returns the timeout for simple single-document operations.
func Short() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return short
}

// Medium returns the timeout for list queries and moderate writes.
func Medium() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return medium
}

// Txn returns the bound on a whole registration transaction attempt.
func Txn() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return txn
}

// Config holds timeout configuration values. Zero values are ignored
// (current values are kept).
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Txn    time.Duration
}

// Configure sets custom timeout values during application startup,
// before handlers are registered. Zero values in the config are ignored.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Ping > 0 {
		ping = cfg.Ping
	}
	if cfg.Short > 0 {
		short = cfg.Short
	}
	if cfg.Medium > 0 {
		medium = cfg.Medium
	}
	if cfg.Txn > 0 {
		txn = cfg.Txn
	}
}

// Reset restores all timeouts to their default values. Useful for testing.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	ping = DefaultPing
	short = DefaultShort
	medium = DefaultMedium
	txn = DefaultTxn
}
