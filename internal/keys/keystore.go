// Package keys stores provider API keys and checks them against the live
// services. Keys are ordered per provider; the head of the list is the key
// every call uses. Rotation is always an explicit user action, never an
// automatic failover.
package keys

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/thuanndbxvp/Thai-news/internal/script"
)

// StoreFile is the on-disk name, kept identical to the browser release's
// local-storage key so exported data moves over unchanged.
const StoreFile = "ai-api-keys.json"

// Store persists ordered key lists per provider as a single JSON file.
// All methods are safe for concurrent use.
type Store struct {
	mu   sync.Mutex
	path string
	keys map[script.Provider][]string
}

// NewStore loads the key file under dir, creating an empty store when the
// file does not exist yet.
func NewStore(dir string) (*Store, error) {
	s := &Store{
		path: filepath.Join(dir, StoreFile),
		keys: map[script.Provider][]string{},
	}
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read key store: %w", err)
	}
	if err := json.Unmarshal(data, &s.keys); err != nil {
		return nil, fmt.Errorf("parse key store: %w", err)
	}
	if s.keys == nil {
		s.keys = map[script.Provider][]string{}
	}
	return s, nil
}

func (s *Store) save() error {
	data, err := json.MarshalIndent(s.keys, "", "  ")
	if err != nil {
		return fmt.Errorf("encode key store: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write key store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace key store: %w", err)
	}
	return nil
}

// List returns the provider's keys in precedence order.
func (s *Store) List(provider script.Provider) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.keys[provider]...)
}

// Active returns the key all calls for the provider use, or "" when none
// is stored.
func (s *Store) Active(provider script.Provider) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if list := s.keys[provider]; len(list) > 0 {
		return list[0]
	}
	return ""
}

// Add appends a key to the end of the provider's list. It reports false
// without changing anything when the key is already stored.
func (s *Store) Add(provider script.Provider, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range s.keys[provider] {
		if k == key {
			return false, nil
		}
	}
	s.keys[provider] = append(s.keys[provider], key)
	if err := s.save(); err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes a key. Removing a key that is not stored is a no-op.
func (s *Store) Delete(provider script.Provider, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.keys[provider]
	for i, k := range list {
		if k == key {
			s.keys[provider] = append(list[:i:i], list[i+1:]...)
			return s.save()
		}
	}
	return nil
}

// Promote moves a stored key to the front of its provider's list, making it
// the active key. Promoting an unknown key is an error.
func (s *Store) Promote(provider script.Provider, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.keys[provider]
	for i, k := range list {
		if k == key {
			if i == 0 {
				return nil
			}
			reordered := make([]string, 0, len(list))
			reordered = append(reordered, key)
			reordered = append(reordered, list[:i]...)
			reordered = append(reordered, list[i+1:]...)
			s.keys[provider] = reordered
			return s.save()
		}
	}
	return fmt.Errorf("promote key: key not stored for %s", provider)
}

// ReplaceAll swaps the provider's whole list for the given one. The order
// given IS the new precedence order: the first entry becomes the active key.
// Duplicates and blank entries are dropped, first occurrence wins.
func (s *Store) ReplaceAll(provider script.Provider, keys []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[string]bool{}
	deduped := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		deduped = append(deduped, k)
	}
	s.keys[provider] = deduped
	return s.save()
}
