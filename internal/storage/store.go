// Package storage persists small named records, one namespace per
// storage scope (a browser visitor, a local install).
package storage

import "context"

type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, v []byte) error
	Delete(ctx context.Context, key string) error
}

// Scoped prefixes every key with scope so several visitors can share one
// backing store without seeing each other's records.
func Scoped(s Store, scope string) Store {
	return &scopedStore{inner: s, prefix: scope + "/"}
}

type scopedStore struct {
	inner  Store
	prefix string
}

func (s *scopedStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *scopedStore) Put(ctx context.Context, key string, v []byte) error {
	return s.inner.Put(ctx, s.prefix+key, v)
}

func (s *scopedStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}
