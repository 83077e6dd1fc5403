package cache

import (
	"container/list"
	"time"
)

type entry[T any] struct {
	key        string
	value      T
	insertedAt time.Time
	deadline   time.Time // zero means the entry never expires
	gen        uint64
	elem       *list.Element
}

func (e *entry[T]) expired(now time.Time) bool {
	return !e.deadline.IsZero() && !now.Before(e.deadline)
}

// store holds the key to entry mapping. Implementations are not safe for
// concurrent use; LocalCache serializes access with its mutex.
type store[T any] interface {
	// put inserts or replaces the entry for e.key. It returns the replaced
	// entry, if any, and the entry evicted to honour the capacity bound.
	put(e *entry[T]) (prev, evicted *entry[T])
	// get returns the entry for key. When promote is true the store may
	// update its access order.
	get(key string, promote bool) (*entry[T], bool)
	remove(key string) (*entry[T], bool)
	len() int
	keys() []string
	clear()
}

// mapStore is the unbounded store used by the TTL-only cache.
type mapStore[T any] struct {
	items map[string]*entry[T]
}

func newMapStore[T any]() *mapStore[T] {
	return &mapStore[T]{items: make(map[string]*entry[T])}
}

func (s *mapStore[T]) put(e *entry[T]) (*entry[T], *entry[T]) {
	prev := s.items[e.key]
	if prev != nil {
		e.insertedAt = prev.insertedAt
	}
	s.items[e.key] = e
	return prev, nil
}

func (s *mapStore[T]) get(key string, _ bool) (*entry[T], bool) {
	e, ok := s.items[key]
	return e, ok
}

func (s *mapStore[T]) remove(key string) (*entry[T], bool) {
	e, ok := s.items[key]
	if ok {
		delete(s.items, key)
	}
	return e, ok
}

func (s *mapStore[T]) len() int { return len(s.items) }

func (s *mapStore[T]) keys() []string {
	keys := make([]string, 0, len(s.items))
	for k := range s.items {
		keys = append(keys, k)
	}
	return keys
}

func (s *mapStore[T]) clear() {
	s.items = make(map[string]*entry[T])
}
