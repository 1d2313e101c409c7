package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// fileState is the on-disk layout of a FileStore.
type fileState struct {
	BookingIDs      []string `json:"booking_ids"`
	BookingsChanged bool     `json:"bookings_changed"`
	// Notifications counts MarkBookingsChanged calls so watchers can tell a
	// change apart from an unrelated rewrite of the file.
	Notifications uint64 `json:"notifications"`
}

// FileStore keeps the state in a JSON file, <dir>/<namespace>.json. Every
// call reads the file again, so several CLI processes sharing the directory
// see each other's writes. Writes replace the file with a rename.
type FileStore struct {
	mu   sync.Mutex
	dir  string
	path string
}

func NewFileStore(dir, namespace string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("store: directory required")
	}
	if namespace == "" {
		return nil, errors.New("store: namespace required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("store: create directory: %w", err)
	}
	return &FileStore{
		dir:  dir,
		path: filepath.Join(dir, namespace+".json"),
	}, nil
}

// Path is the file holding the state.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) read() (fileState, error) {
	var st fileState
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return st, fmt.Errorf("store: read %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return st, nil
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return st, fmt.Errorf("store: decode %s: %w", s.path, err)
	}
	return st, nil
}

func (s *FileStore) write(st fileState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode state: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("store: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("store: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("store: close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("store: replace %s: %w", s.path, err)
	}
	return nil
}

// update runs fn on the current state and writes the result back.
func (s *FileStore) update(fn func(*fileState) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.read()
	if err != nil {
		return err
	}
	if !fn(&st) {
		return nil
	}
	return s.write(st)
}

func (s *FileStore) AddBookingID(_ context.Context, id string) (bool, error) {
	if id == "" {
		return false, errors.New("store: booking id required")
	}

	var added bool
	err := s.update(func(st *fileState) bool {
		for _, existing := range st.BookingIDs {
			if existing == id {
				return false
			}
		}
		st.BookingIDs = append(st.BookingIDs, id)
		added = true
		return true
	})
	if err != nil {
		return false, err
	}
	return added, nil
}

func (s *FileStore) BookingIDs(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.read()
	if err != nil {
		return nil, err
	}
	out := make([]string, len(st.BookingIDs))
	copy(out, st.BookingIDs)
	return out, nil
}

func (s *FileStore) ClearBookingIDs(_ context.Context) error {
	return s.update(func(st *fileState) bool {
		st.BookingIDs = nil
		return true
	})
}

func (s *FileStore) MarkBookingsChanged(_ context.Context) error {
	return s.update(func(st *fileState) bool {
		st.BookingsChanged = true
		st.Notifications++
		return true
	})
}

func (s *FileStore) BookingsChanged(_ context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.read()
	if err != nil {
		return false, err
	}
	return st.BookingsChanged, nil
}

func (s *FileStore) ClearBookingsChanged(_ context.Context) error {
	return s.update(func(st *fileState) bool {
		if !st.BookingsChanged {
			return false
		}
		st.BookingsChanged = false
		return true
	})
}

func (s *FileStore) notifications() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.read()
	if err != nil {
		return 0
	}
	return st.Notifications
}

// Subscribe watches the store directory and sends a value whenever the
// notification counter in the file moves forward, whichever process wrote it.
func (s *FileStore) Subscribe(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store: create watcher: %w", err)
	}
	// The file is replaced on every write, so watch its directory.
	if err := watcher.Add(s.dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("store: watch %s: %w", s.dir, err)
	}

	last := s.notifications()
	ch := make(chan struct{}, 1)
	go func() {
		defer close(ch)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != s.path {
					continue
				}
				if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Rename) {
					continue
				}
				current := s.notifications()
				if current <= last {
					continue
				}
				last = current
				select {
				case ch <- struct{}{}:
				default:
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return ch, nil
}
