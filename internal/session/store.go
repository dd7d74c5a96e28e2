// Package session keeps per-visitor values keyed by the visitor's cookie.
package session

import (
	"context"
	"time"
)

type Store[T any] interface {
	Get(ctx context.Context, id string) (T, bool, error)
	Put(ctx context.Context, id string, v T) error
	// GetOrCreate returns the value for id, building and storing it with
	// create when absent. Concurrent callers for one id share one value.
	GetOrCreate(ctx context.Context, id string, create func() (T, error)) (T, error)
	// Sweep removes values not touched for longer than idle and returns
	// them so the caller can release their resources.
	Sweep(idle time.Duration) []T
	NewID() string
}
