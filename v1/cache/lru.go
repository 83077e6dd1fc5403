package cache

import (
	"container/list"

	cerrors "github.com/mirkobrombin/go-localcache/v1/errors"
)

// lruStore keeps its keys in a list ordered by access, most recently used
// at the front.
type lruStore[T any] struct {
	items    map[string]*entry[T]
	order    *list.List
	capacity int
}

func newLRUStore[T any](capacity int) *lruStore[T] {
	return &lruStore[T]{
		items:    make(map[string]*entry[T]),
		order:    list.New(),
		capacity: capacity,
	}
}

func (s *lruStore[T]) put(e *entry[T]) (*entry[T], *entry[T]) {
	if prev, ok := s.items[e.key]; ok {
		e.insertedAt = prev.insertedAt
		e.elem = prev.elem
		s.items[e.key] = e
		s.order.MoveToFront(e.elem)
		return prev, nil
	}
	e.elem = s.order.PushFront(e.key)
	s.items[e.key] = e
	if len(s.items) <= s.capacity {
		return nil, nil
	}
	tail := s.order.Back()
	victim := s.items[tail.Value.(string)]
	s.order.Remove(tail)
	delete(s.items, victim.key)
	return nil, victim
}

func (s *lruStore[T]) get(key string, promote bool) (*entry[T], bool) {
	e, ok := s.items[key]
	if ok && promote {
		s.order.MoveToFront(e.elem)
	}
	return e, ok
}

func (s *lruStore[T]) remove(key string) (*entry[T], bool) {
	e, ok := s.items[key]
	if !ok {
		return nil, false
	}
	s.order.Remove(e.elem)
	delete(s.items, key)
	return e, true
}

func (s *lruStore[T]) len() int { return len(s.items) }

// keys returns the keys from most to least recently used.
func (s *lruStore[T]) keys() []string {
	keys := make([]string, 0, len(s.items))
	for el := s.order.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Value.(string))
	}
	return keys
}

func (s *lruStore[T]) clear() {
	s.items = make(map[string]*entry[T])
	s.order.Init()
}

// NewLRU returns a cache bounded to the configured capacity (DefaultCapacity
// unless WithCapacity is given). Inserting past the bound evicts the least
// recently used entry. Get counts as a use.
//
// It returns errors.ErrInvalidCapacity for a non-positive capacity.
func NewLRU[T any](opts ...Option) (*LocalCache[T], error) {
	cfg := newConfig(opts)
	if cfg.capacity <= 0 {
		return nil, cerrors.ErrInvalidCapacity
	}
	return newLocalCache[T](newLRUStore[T](cfg.capacity), true, cfg)
}
