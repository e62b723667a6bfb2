package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// DefaultStateDir is the default directory for durable session state,
// relative to the user's home directory.
const DefaultStateDir = ".config/gdconnect/state"

// stateFileName is the single JSON file holding the key namespace.
const stateFileName = "state.json"

// FileStore persists the key namespace as one JSON file.
//
// SECURITY: the namespace holds refresh tokens and PKCE verifiers. The
// state file is created with 0600 permissions and its directory with 0700;
// values are never logged.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a file-backed store rooted at dir. An empty dir
// defaults to ~/.config/gdconnect/state.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(homeDir, DefaultStateDir)
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	return &FileStore{path: filepath.Join(dir, stateFileName)}, nil
}

// Path returns the location of the state file. Used by watchers that want
// to observe externally completed flows.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return "", err
	}
	value, ok := values[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (s *FileStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return err
	}
	values[key] = value
	return s.write(values)
}

func (s *FileStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return s.write(values)
}

func (s *FileStore) Keys(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	return keys, nil
}

func (s *FileStore) Close() error { return nil }

// read loads the namespace from disk. A missing file is an empty namespace.
func (s *FileStore) read() (map[string]string, error) {
	// #nosec G304 -- path is constructed from configuration, not user input
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	values := make(map[string]string)
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state file: %w", err)
	}
	return values, nil
}

// write persists the namespace with owner-only permissions.
func (s *FileStore) write(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return nil
}
