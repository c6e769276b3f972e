package keys

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/thuanndbxvp/Thai-news/internal/script"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s
}

func TestAddAndActive(t *testing.T) {
	s := newTestStore(t)

	added, err := s.Add(script.ProviderGemini, "key-a")
	if err != nil || !added {
		t.Fatalf("add key-a: added=%v err=%v", added, err)
	}
	if _, err := s.Add(script.ProviderGemini, "key-b"); err != nil {
		t.Fatalf("add key-b: %v", err)
	}

	if got := s.Active(script.ProviderGemini); got != "key-a" {
		t.Errorf("active = %q, want first added key", got)
	}
	if got := s.Active(script.ProviderOpenAI); got != "" {
		t.Errorf("active for empty provider = %q, want empty", got)
	}
}

func TestAddDuplicate(t *testing.T) {
	s := newTestStore(t)
	s.Add(script.ProviderGemini, "key-a")

	added, err := s.Add(script.ProviderGemini, "key-a")
	if err != nil {
		t.Fatalf("re-add: %v", err)
	}
	if added {
		t.Error("duplicate add should report false")
	}
	if got := s.List(script.ProviderGemini); len(got) != 1 {
		t.Errorf("list = %v, want single key", got)
	}
}

func TestDeleteAbsentIsNoop(t *testing.T) {
	s := newTestStore(t)
	s.Add(script.ProviderGemini, "key-a")
	if err := s.Delete(script.ProviderGemini, "missing"); err != nil {
		t.Fatalf("delete absent: %v", err)
	}
	if got := s.List(script.ProviderGemini); len(got) != 1 {
		t.Errorf("list = %v", got)
	}
}

func TestPromote(t *testing.T) {
	s := newTestStore(t)
	s.Add(script.ProviderGemini, "key-a")
	s.Add(script.ProviderGemini, "key-b")
	s.Add(script.ProviderGemini, "key-c")

	if err := s.Promote(script.ProviderGemini, "key-c"); err != nil {
		t.Fatalf("promote: %v", err)
	}
	want := []string{"key-c", "key-a", "key-b"}
	if got := s.List(script.ProviderGemini); !reflect.DeepEqual(got, want) {
		t.Errorf("list = %v, want %v", got, want)
	}
	if err := s.Promote(script.ProviderGemini, "missing"); err == nil {
		t.Error("promoting unknown key should error")
	}
}

func TestReplaceAllOrderIsPrecedence(t *testing.T) {
	s := newTestStore(t)
	s.Add(script.ProviderOpenAI, "old-1")
	s.Add(script.ProviderOpenAI, "old-2")

	if err := s.ReplaceAll(script.ProviderOpenAI, []string{"new-1", "new-2", "old-1"}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	want := []string{"new-1", "new-2", "old-1"}
	if got := s.List(script.ProviderOpenAI); !reflect.DeepEqual(got, want) {
		t.Errorf("list = %v, want %v (given order is precedence)", got, want)
	}
	if got := s.Active(script.ProviderOpenAI); got != "new-1" {
		t.Errorf("active = %q, want first of new list", got)
	}
}

func TestReplaceAllDedupes(t *testing.T) {
	s := newTestStore(t)
	if err := s.ReplaceAll(script.ProviderGemini, []string{"a", "", "b", "a"}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	want := []string{"a", "b"}
	if got := s.List(script.ProviderGemini); !reflect.DeepEqual(got, want) {
		t.Errorf("list = %v, want %v", got, want)
	}
}

func TestPersistence(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	s.Add(script.ProviderGemini, "key-a")
	s.Add(script.ProviderOpenAI, "key-b")

	reloaded, err := NewStore(dir)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := reloaded.Active(script.ProviderGemini); got != "key-a" {
		t.Errorf("reloaded gemini active = %q", got)
	}
	if got := reloaded.Active(script.ProviderOpenAI); got != "key-b" {
		t.Errorf("reloaded openai active = %q", got)
	}
}

func TestCorruptFile(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, StoreFile), []byte("{broken"), 0o600)
	if _, err := NewStore(dir); err == nil {
		t.Error("corrupt store file should error")
	}
}
