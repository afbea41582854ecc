package persistence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// StateVersion is the current version of the state file format.
const StateVersion = 1

// FileName is the state file name inside the state directory.
const FileName = "state.json"

// HostState contains the runtime state for the host.
type HostState struct {
	// Version is the state file format version.
	Version int `json:"version"`

	// SavedAt is when the state was last saved.
	SavedAt time.Time `json:"saved_at"`

	// Join describes the last successful join, if any.
	Join *JoinRecord `json:"join,omitempty"`

	// ExtAddr is the coprocessor IEEE address as 16 hex digits.
	ExtAddr string `json:"ext_addr,omitempty"`

	// History holds accepted command lines, oldest first.
	History []string `json:"history,omitempty"`
}

// JoinRecord captures the operator's choices for a new network.
type JoinRecord struct {
	// Role is the logical type name (coordinator, router, end-device).
	Role string `json:"role"`

	// Channel is the radio channel (11-26).
	Channel int `json:"channel,omitempty"`

	// JoinedAt is when the device reached its joined state.
	JoinedAt time.Time `json:"joined_at"`
}

// HostStateStore manages persistence of host state to a JSON file.
type HostStateStore struct {
	mu   sync.Mutex
	path string
}

// NewHostStateStore creates a store for the given file path.
func NewHostStateStore(path string) *HostStateStore {
	return &HostStateStore{path: path}
}

// NewHostStateStoreInDir creates a store for FileName inside dir.
func NewHostStateStoreInDir(dir string) *HostStateStore {
	return NewHostStateStore(filepath.Join(dir, FileName))
}

// Path returns the state file path.
func (s *HostStateStore) Path() string {
	return s.path
}

// Save persists the host state to disk. The file is replaced atomically.
func (s *HostStateStore) Save(state *HostState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	state.Version = StateVersion
	state.SavedAt = time.Now()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Load reads the host state from disk.
// Returns nil, nil if the file doesn't exist (empty state).
func (s *HostStateStore) Load() (*HostState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	state := &HostState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	if state.Version > StateVersion {
		return nil, fmt.Errorf("%s: unsupported state version %d", s.path, state.Version)
	}

	return state, nil
}

// Update loads the current state, applies fn and saves the result. A missing
// file starts from an empty state.
func (s *HostStateStore) Update(fn func(*HostState)) error {
	state, err := s.Load()
	if err != nil {
		return err
	}
	if state == nil {
		state = &HostState{}
	}
	fn(state)
	return s.Save(state)
}

// Clear removes the state file.
func (s *HostStateStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// TrimHistory keeps the newest max entries of lines.
func TrimHistory(lines []string, max int) []string {
	if max <= 0 {
		return nil
	}
	if len(lines) <= max {
		return lines
	}
	return lines[len(lines)-max:]
}
