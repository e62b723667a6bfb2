package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/zalando/go-keyring"
)

// DefaultKeyringService is the service name session state is filed under
// in the OS keyring.
const DefaultKeyringService = "gdconnect"

// keyringIndexKey tracks the set of stored keys. The OS keyring has no
// enumeration API, so the index is maintained alongside the values.
const keyringIndexKey = "__gdconnect_keys"

// KeyringStore keeps the key namespace in the operating system keyring.
// Values sit behind the OS credential manager instead of a world-readable
// location, at the cost of a per-key secret entry.
type KeyringStore struct {
	mu      sync.Mutex
	service string
}

// NewKeyringStore creates a keyring-backed store under the given service
// name.
func NewKeyringStore(service string) *KeyringStore {
	if service == "" {
		service = DefaultKeyringService
	}
	return &KeyringStore{service: service}
}

func (s *KeyringStore) Get(_ context.Context, key string) (string, error) {
	value, err := keyring.Get(s.service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("keyring read failed for %q: %w", key, err)
	}
	return value, nil
}

func (s *KeyringStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := keyring.Set(s.service, key, value); err != nil {
		return fmt.Errorf("keyring write failed for %q: %w", key, err)
	}
	return s.updateIndex(func(keys map[string]struct{}) {
		keys[key] = struct{}{}
	})
}

func (s *KeyringStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := keyring.Delete(s.service, key)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("keyring delete failed for %q: %w", key, err)
	}
	return s.updateIndex(func(keys map[string]struct{}) {
		delete(keys, key)
	})
}

func (s *KeyringStore) Keys(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index, err := s.readIndex()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(index))
	for key := range index {
		keys = append(keys, key)
	}
	return keys, nil
}

func (s *KeyringStore) Close() error { return nil }

func (s *KeyringStore) readIndex() (map[string]struct{}, error) {
	raw, err := keyring.Get(s.service, keyringIndexKey)
	if errors.Is(err, keyring.ErrNotFound) {
		return make(map[string]struct{}), nil
	}
	if err != nil {
		return nil, fmt.Errorf("keyring index read failed: %w", err)
	}

	var keys []string
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		return nil, fmt.Errorf("keyring index is corrupt: %w", err)
	}

	index := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		index[key] = struct{}{}
	}
	return index, nil
}

func (s *KeyringStore) updateIndex(mutate func(map[string]struct{})) error {
	index, err := s.readIndex()
	if err != nil {
		return err
	}
	mutate(index)

	keys := make([]string, 0, len(index))
	for key := range index {
		keys = append(keys, key)
	}
	data, err := json.Marshal(keys)
	if err != nil {
		return fmt.Errorf("failed to marshal keyring index: %w", err)
	}
	if err := keyring.Set(s.service, keyringIndexKey, string(data)); err != nil {
		return fmt.Errorf("keyring index write failed: %w", err)
	}
	return nil
}
