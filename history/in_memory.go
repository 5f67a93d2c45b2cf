package history

import (
	"context"
	"sync"

	"github.com/callwise/callwise/core"
)

// InMemoryStore is a RecordStore backed by in-process maps. It is safe for
// concurrent use and suited to tests and single-process deployments.
type InMemoryStore struct {
	mu    sync.RWMutex
	lists map[string][]string
}

var _ core.RecordStore = (*InMemoryStore)(nil)

// NewInMemoryStore creates an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{lists: make(map[string][]string)}
}

// PushFront prepends values to the list at key. The last value given ends at
// index 0.
func (s *InMemoryStore) PushFront(ctx context.Context, key string, values ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.lists[key]
	for _, v := range values {
		list = append([]string{v}, list...)
	}
	s.lists[key] = list
	return nil
}

// Range returns values between start and stop inclusive. Negative indices
// count from the end, -1 being the last element.
func (s *InMemoryStore) Range(ctx context.Context, key string, start, stop int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.lists[key]
	n := len(list)
	if n == 0 {
		return []string{}, nil
	}
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop {
		return []string{}, nil
	}
	out := make([]string, stop-start+1)
	copy(out, list[start:stop+1])
	return out, nil
}

// Delete removes the list at key. Deleting a missing key is not an error.
func (s *InMemoryStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.lists, key)
	return nil
}

// Len reports the number of values stored under key.
func (s *InMemoryStore) Len(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lists[key])
}
