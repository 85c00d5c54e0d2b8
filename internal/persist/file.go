package persist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
)

// FileStore keeps the save in one YAML file. Writes go to a temp file in
// the same directory and are renamed over the target.
type FileStore struct {
	path   string
	mu     sync.Mutex
	logger *log.Logger
}

// NewFileStore creates a store at path. A leading ~ expands to the home
// directory.
func NewFileStore(path string, logger *log.Logger) (*FileStore, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if path != "" && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("persist: cannot expand home directory: %w", err)
		}
		path = filepath.Join(home, path[1:])
	}
	return &FileStore{path: path, logger: logger.With("component", "persist")}, nil
}

// Path returns the save file location.
func (s *FileStore) Path() string {
	return s.path
}

// Save writes st atomically.
func (s *FileStore) Save(ctx context.Context, st State) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("persist: save: %w", err)
	}
	data, err := Encode(st)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("persist: cannot create directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".save-*.tmp")
	if err != nil {
		return fmt.Errorf("persist: create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("persist: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("persist: sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("persist: close temp: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("persist: rename: %w", err)
	}
	s.logger.Debug("saved", "path", s.path, "floor", st.Floor, "room", st.Room)
	return nil
}

// SaveAsync runs Save on a goroutine.
func (s *FileStore) SaveAsync(ctx context.Context, st State) <-chan error {
	return async(ctx, s.Save, st)
}

// Load reads the save. Missing, unreadable or corrupt files report ok=false.
func (s *FileStore) Load(ctx context.Context) (State, bool) {
	if ctx.Err() != nil {
		return State{}, false
	}
	s.mu.Lock()
	data, err := os.ReadFile(s.path)
	s.mu.Unlock()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("cannot read save", "path", s.path, "err", err)
		}
		return State{}, false
	}
	st, err := Decode(data)
	if err != nil {
		s.logger.Warn("discarding save", "path", s.path, "err", err)
		return State{}, false
	}
	return st, true
}

// Clear deletes the save file.
func (s *FileStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("persist: clear: %w", err)
	}
	return nil
}
