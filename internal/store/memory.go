package store

import (
	"context"
	"errors"
	"sync"
)

// MemoryStore is a process-local Store. Nothing survives the process, so
// it is meant for tests.
type MemoryStore struct {
	mu          sync.Mutex
	ids         []string
	index       map[string]struct{}
	changed     bool
	subscribers map[chan struct{}]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		index:       make(map[string]struct{}),
		subscribers: make(map[chan struct{}]struct{}),
	}
}

func (s *MemoryStore) AddBookingID(_ context.Context, id string) (bool, error) {
	if id == "" {
		return false, errors.New("store: booking id required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[id]; ok {
		return false, nil
	}
	s.index[id] = struct{}{}
	s.ids = append(s.ids, id)
	return true, nil
}

func (s *MemoryStore) BookingIDs(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out, nil
}

func (s *MemoryStore) ClearBookingIDs(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ids = nil
	s.index = make(map[string]struct{})
	return nil
}

func (s *MemoryStore) MarkBookingsChanged(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.changed = true
	for ch := range s.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return nil
}

func (s *MemoryStore) BookingsChanged(_ context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.changed, nil
}

func (s *MemoryStore) ClearBookingsChanged(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changed = false
	return nil
}

func (s *MemoryStore) Subscribe(ctx context.Context) (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subscribers, ch)
		close(ch)
		s.mu.Unlock()
	}()
	return ch, nil
}
