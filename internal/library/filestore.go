package library

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

const (
	itemsFile = "library.json"
	ideasFile = "saved-ideas.json"
)

// FileStore keeps the library as two JSON files next to the key store.
// All methods are safe for concurrent use.
type FileStore struct {
	mu    sync.Mutex
	dir   string
	items []Item
	ideas []Idea
}

// NewFileStore loads (or initializes) the library under dir.
func NewFileStore(dir string) (*FileStore, error) {
	s := &FileStore{dir: dir}
	if err := loadJSON(filepath.Join(dir, itemsFile), &s.items); err != nil {
		return nil, fmt.Errorf("load library: %w", err)
	}
	if err := loadJSON(filepath.Join(dir, ideasFile), &s.ideas); err != nil {
		return nil, fmt.Errorf("load ideas: %w", err)
	}
	return s, nil
}

func loadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return os.Rename(tmp, path)
}

func (s *FileStore) saveItems() error {
	return writeJSON(filepath.Join(s.dir, itemsFile), s.items)
}

func (s *FileStore) saveIdeas() error {
	return writeJSON(filepath.Join(s.dir, ideasFile), s.ideas)
}

// SaveItem upserts by ID. New items without an ID get one assigned.
func (s *FileStore) SaveItem(ctx context.Context, item Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item.ID == "" {
		id, err := NewID()
		if err != nil {
			return err
		}
		item.ID = id
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	for i, existing := range s.items {
		if existing.ID == item.ID {
			s.items[i] = item
			return s.saveItems()
		}
	}
	s.items = append(s.items, item)
	return s.saveItems()
}

// GetItem returns a copy of the stored item, or nil when absent.
func (s *FileStore) GetItem(ctx context.Context, id string) (*Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if item.ID == id {
			found := item
			return &found, nil
		}
	}
	return nil, nil
}

// ListItems returns items newest first.
func (s *FileStore) ListItems(ctx context.Context) ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]Item(nil), s.items...)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// DeleteItem removes an item; deleting an unknown ID is a no-op.
func (s *FileStore) DeleteItem(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, item := range s.items {
		if item.ID == id {
			s.items = append(s.items[:i:i], s.items[i+1:]...)
			return s.saveItems()
		}
	}
	return nil
}

// SaveIdea appends an idea unless an identical one exists. Identity is the
// exact (title, outline) pair.
func (s *FileStore) SaveIdea(ctx context.Context, idea Idea) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.ideas {
		if existing.Title == idea.Title && existing.Outline == idea.Outline {
			return false, nil
		}
	}
	if idea.ID == "" {
		id, err := NewID()
		if err != nil {
			return false, err
		}
		idea.ID = id
	}
	s.ideas = append(s.ideas, idea)
	if err := s.saveIdeas(); err != nil {
		return false, err
	}
	return true, nil
}

// ListIdeas returns ideas in insertion order.
func (s *FileStore) ListIdeas(ctx context.Context) ([]Idea, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Idea(nil), s.ideas...), nil
}

// DeleteIdea removes an idea; deleting an unknown ID is a no-op.
func (s *FileStore) DeleteIdea(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, idea := range s.ideas {
		if idea.ID == id {
			s.ideas = append(s.ideas[:i:i], s.ideas[i+1:]...)
			return s.saveIdeas()
		}
	}
	return nil
}
