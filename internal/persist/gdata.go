package persist

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/quasilyte/gdata/v2"
)

const (
	runObject   = "run"
	runProperty = "current"
)

// GdataStore keeps the save in the platform data directory through gdata.
// A nil manager runs in memory only.
type GdataStore struct {
	manager *gdata.Manager
	mu      sync.Mutex
	memory  []byte
	logger  *log.Logger
}

// OpenGdata opens the gdata store for appName. When the platform store
// cannot be opened the returned store keeps saves in memory.
func OpenGdata(appName string, logger *log.Logger) *GdataStore {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	logger = logger.With("component", "persist")
	manager, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		logger.Warn("gdata unavailable, saves stay in memory", "err", err)
		manager = nil
	}
	return NewGdataStore(manager, logger)
}

// NewGdataStore wraps an existing manager, which may be nil.
func NewGdataStore(manager *gdata.Manager, logger *log.Logger) *GdataStore {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &GdataStore{manager: manager, logger: logger}
}

// Save writes st.
func (s *GdataStore) Save(ctx context.Context, st State) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("persist: save: %w", err)
	}
	data, err := Encode(st)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.manager == nil {
		s.memory = data
		return nil
	}
	if err := s.manager.SaveObjectProp(runObject, runProperty, data); err != nil {
		return fmt.Errorf("persist: gdata save: %w", err)
	}
	return nil
}

// SaveAsync runs Save on a goroutine.
func (s *GdataStore) SaveAsync(ctx context.Context, st State) <-chan error {
	return async(ctx, s.Save, st)
}

// Load reads the save.
func (s *GdataStore) Load(ctx context.Context) (State, bool) {
	if ctx.Err() != nil {
		return State{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var data []byte
	if s.manager == nil {
		data = s.memory
	} else {
		if !s.manager.ObjectPropExists(runObject, runProperty) {
			return State{}, false
		}
		var err error
		data, err = s.manager.LoadObjectProp(runObject, runProperty)
		if err != nil {
			s.logger.Warn("cannot read save", "err", err)
			return State{}, false
		}
	}
	if len(data) == 0 {
		return State{}, false
	}
	st, err := Decode(data)
	if err != nil {
		s.logger.Warn("discarding save", "err", err)
		return State{}, false
	}
	return st, true
}

// Clear removes the save.
func (s *GdataStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memory = nil
	if s.manager == nil || !s.manager.ObjectPropExists(runObject, runProperty) {
		return nil
	}
	// An empty property reads back as no save.
	if err := s.manager.SaveObjectProp(runObject, runProperty, nil); err != nil {
		return fmt.Errorf("persist: gdata clear: %w", err)
	}
	return nil
}
