package journey

import (
	"context"
	"encoding/json"
	"fmt"

	"journey/internal/storage"
)

// DefaultStateKey names the persisted unlock record inside a storage scope.
const DefaultStateKey = "journeyUnlocked"

// DefaultUnlocks is the state of a visitor with no history: only the first
// chapter is open.
func DefaultUnlocks(n int) []bool {
	u := make([]bool, n)
	if n > 0 {
		u[0] = true
	}
	return u
}

// EncodeUnlocks serialises the unlock vector as a JSON array of booleans.
func EncodeUnlocks(u []bool) []byte {
	b, _ := json.Marshal(u)
	return b
}

// DecodeUnlocks parses a persisted record for a catalog of n chapters.
// Missing or malformed records yield DefaultUnlocks. A record written for
// a catalog of a different size keeps the overlapping prefix. Chapter 0 is
// always unlocked, and only the contiguous run of unlocked chapters after
// it survives: chapter i opens only once chapter i-1 has been solved.
func DecodeUnlocks(b []byte, n int) []bool {
	u := DefaultUnlocks(n)
	var raw []bool
	if len(b) == 0 || json.Unmarshal(b, &raw) != nil {
		return u
	}
	for i := 1; i < n && i < len(raw) && raw[i]; i++ {
		u[i] = true
	}
	return u
}

func loadUnlocks(ctx context.Context, s storage.Store, key string, n int) ([]bool, error) {
	b, ok, err := s.Get(ctx, key)
	if err != nil {
		return DefaultUnlocks(n), fmt.Errorf("%w: load %s: %v", ErrPersistenceUnavailable, key, err)
	}
	if !ok {
		return DefaultUnlocks(n), nil
	}
	return DecodeUnlocks(b, n), nil
}

func saveUnlocks(ctx context.Context, s storage.Store, key string, u []bool) error {
	if err := s.Put(ctx, key, EncodeUnlocks(u)); err != nil {
		return fmt.Errorf("%w: save %s: %v", ErrPersistenceUnavailable, key, err)
	}
	return nil
}
