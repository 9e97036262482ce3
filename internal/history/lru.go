package history

import (
	"container/list"
	"sync"
)

// LRUStore keeps the most recently used records in memory in front of a
// backing Store. Saves are written through; loads that miss the cache are
// read from the backing store and cached.
type LRUStore struct {
	mu    sync.Mutex
	size  int
	back  Store
	order *list.List               // front is most recently used
	index map[string]*list.Element // run ID -> element holding *Record
}

// NewLRUStore creates a cache of the given size over back.
// A size below 1 is treated as 1.
func NewLRUStore(size int, back Store) *LRUStore {
	size = max(size, 1)
	return &LRUStore{
		size:  size,
		back:  back,
		order: list.New(),
		index: make(map[string]*list.Element, size),
	}
}

// Save caches rec and writes it to the backing store.
func (s *LRUStore) Save(rec *Record) error {
	s.mu.Lock()
	s.touch(rec)
	s.mu.Unlock()

	return s.back.Save(rec)
}

// Load returns a cached record, or reads it from the backing store.
func (s *LRUStore) Load(runID string) (*Record, error) {
	s.mu.Lock()
	if el, ok := s.index[runID]; ok {
		s.order.MoveToFront(el)
		rec := el.Value.(*Record)
		s.mu.Unlock()
		return rec, nil
	}
	s.mu.Unlock()

	rec, err := s.back.Load(runID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.touch(rec)
	s.mu.Unlock()
	return rec, nil
}

// List delegates to the backing store, which holds every record.
func (s *LRUStore) List(limit int) ([]*Record, error) {
	return s.back.List(limit)
}

// Len returns the number of cached records.
func (s *LRUStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

// touch inserts or refreshes rec and evicts beyond size. Caller holds s.mu.
func (s *LRUStore) touch(rec *Record) {
	if el, ok := s.index[rec.ID]; ok {
		el.Value = rec
		s.order.MoveToFront(el)
		return
	}
	s.index[rec.ID] = s.order.PushFront(rec)
	for s.order.Len() > s.size {
		oldest := s.order.Back()
		s.order.Remove(oldest)
		delete(s.index, oldest.Value.(*Record).ID)
	}
}
