package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type entry[T any] struct {
	v    T
	seen time.Time
}

type MemoryStore[T any] struct {
	mu  sync.Mutex
	m   map[string]*entry[T]
	now func() time.Time
}

func NewMemoryStore[T any]() *MemoryStore[T] {
	return &MemoryStore[T]{m: map[string]*entry[T]{}, now: time.Now}
}

func (s *MemoryStore[T]) Get(_ context.Context, id string) (T, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.m[id]
	if !ok {
		var zero T
		return zero, false, nil
	}
	e.seen = s.now()
	return e.v, true, nil
}

func (s *MemoryStore[T]) Put(_ context.Context, id string, v T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[id] = &entry[T]{v: v, seen: s.now()}
	return nil
}

func (s *MemoryStore[T]) GetOrCreate(_ context.Context, id string, create func() (T, error)) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.m[id]; ok {
		e.seen = s.now()
		return e.v, nil
	}
	v, err := create()
	if err != nil {
		var zero T
		return zero, err
	}
	s.m[id] = &entry[T]{v: v, seen: s.now()}
	return v, nil
}

func (s *MemoryStore[T]) Sweep(idle time.Duration) []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-idle)
	var gone []T
	for id, e := range s.m {
		if e.seen.Before(cutoff) {
			gone = append(gone, e.v)
			delete(s.m, id)
		}
	}
	return gone
}

// Len reports how many values are held.
func (s *MemoryStore[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

func (s *MemoryStore[T]) NewID() string {
	return uuid.NewString()
}
