package cache

import (
	"container/heap"
	"context"
	"sync"
	"time"
)

// task is a pending expiration. index is its position in the heap.
type task struct {
	key    string
	gen    uint64
	fireAt time.Time
	index  int
}

type taskHeap []*task

func (h taskHeap) Len() int           { return len(h) }
func (h taskHeap) Less(i, j int) bool { return h[i].fireAt.Before(h[j].fireAt) }

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *taskHeap) Push(x any) {
	t := x.(*task)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}

// scheduler fires one callback per key once the key's deadline is reached.
// A key has at most one pending task: scheduling it again replaces the
// previous deadline and generation.
type scheduler struct {
	mu     sync.Mutex
	tasks  taskHeap
	byKey  map[string]*task
	closed bool

	fire func(key string, gen uint64)
	now  func() time.Time
	wake chan struct{}

	ctx  context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup
}

func newScheduler(fire func(key string, gen uint64), now func() time.Time) *scheduler {
	ctx, stop := context.WithCancel(context.Background())
	s := &scheduler{
		byKey: make(map[string]*task),
		fire:  fire,
		now:   now,
		wake:  make(chan struct{}, 1),
		ctx:   ctx,
		stop:  stop,
	}
	s.wg.Add(1)
	go s.run()
	return s
}

// schedule arranges for fire(key, gen) to be called at the given time.
func (s *scheduler) schedule(key string, gen uint64, at time.Time) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	t, ok := s.byKey[key]
	if ok {
		t.gen = gen
		t.fireAt = at
		heap.Fix(&s.tasks, t.index)
	} else {
		t = &task{key: key, gen: gen, fireAt: at}
		heap.Push(&s.tasks, t)
		s.byKey[key] = t
	}
	first := s.tasks[0] == t
	s.mu.Unlock()
	if first {
		s.notify()
	}
}

// cancel drops the pending task for key, if any.
func (s *scheduler) cancel(key string) {
	s.mu.Lock()
	if t, ok := s.byKey[key]; ok {
		heap.Remove(&s.tasks, t.index)
		delete(s.byKey, key)
	}
	s.mu.Unlock()
}

// cancelAll drops every pending task. The scheduler stays usable.
func (s *scheduler) cancelAll() {
	s.mu.Lock()
	s.tasks = nil
	s.byKey = make(map[string]*task)
	s.mu.Unlock()
	s.notify()
}

func (s *scheduler) pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// close stops the background goroutine and waits for it to exit.
func (s *scheduler) close() {
	s.mu.Lock()
	s.closed = true
	s.tasks = nil
	s.byKey = make(map[string]*task)
	s.mu.Unlock()
	s.stop()
	s.wg.Wait()
}

func (s *scheduler) notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// due pops every task whose deadline has passed. When tasks remain it also
// reports how long to wait for the next one.
func (s *scheduler) due() ([]*task, time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	var fired []*task
	for len(s.tasks) > 0 && !s.tasks[0].fireAt.After(now) {
		t := heap.Pop(&s.tasks).(*task)
		delete(s.byKey, t.key)
		fired = append(fired, t)
	}
	if len(s.tasks) == 0 {
		return fired, 0, false
	}
	return fired, s.tasks[0].fireAt.Sub(now), true
}

func (s *scheduler) run() {
	defer s.wg.Done()
	timer := time.NewTimer(time.Hour)
	defer timer.Stop()
	for {
		fired, wait, ok := s.due()
		// The callback takes the cache lock, so it must run without s.mu.
		for _, t := range fired {
			s.fire(t.key, t.gen)
		}
		if len(fired) > 0 {
			continue
		}
		var timeout <-chan time.Time
		if ok {
			timer.Reset(wait)
			timeout = timer.C
		} else {
			timer.Stop()
		}
		select {
		case <-s.ctx.Done():
			return
		case <-s.wake:
		case <-timeout:
		}
	}
}
