package library

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/thuanndbxvp/Thai-news/internal/script"
)

func newTestStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s, dir
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, dir := newTestStore(t)

	params := script.DefaultParams()
	params.Title = "ข่าวเด่น"
	item := Item{
		Title:          "ข่าวเด่น",
		OutlineContent: "โครงร่าง",
		Script:         "ตัวกิจกรรมข่าว",
		Params:         params,
		Cached: &CachedData{
			VisualPrompts: map[string]script.VisualPrompt{
				"intro": {English: "aerial shot", Thai: "ภาพมุมสูง"},
			},
			ExtractedDialogue: map[string]string{"Intro": "สวัสดีค่ะ"},
		},
	}
	if err := s.SaveItem(ctx, item); err != nil {
		t.Fatalf("save: %v", err)
	}

	items, err := s.ListItems(ctx)
	if err != nil || len(items) != 1 {
		t.Fatalf("list: %v, %d items", err, len(items))
	}
	saved := items[0]
	if saved.ID == "" {
		t.Error("saved item should be assigned an ID")
	}

	// Reload from disk: everything must survive unchanged.
	reloaded, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	got, err := reloaded.GetItem(ctx, saved.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("item lost on reload")
	}
	if got.Script != item.Script || got.Title != item.Title {
		t.Errorf("round trip changed content: %+v", got)
	}
	if got.Params.Title != "ข่าวเด่น" {
		t.Errorf("params lost: %+v", got.Params)
	}
	if got.Cached == nil || got.Cached.VisualPrompts["intro"].Thai != "ภาพมุมสูง" {
		t.Errorf("cached data lost: %+v", got.Cached)
	}
}

func TestSaveItemUpsert(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	item := Item{Title: "v1", Script: "first"}
	s.SaveItem(ctx, item)
	items, _ := s.ListItems(ctx)

	update := items[0]
	update.Script = "second"
	if err := s.SaveItem(ctx, update); err != nil {
		t.Fatalf("update: %v", err)
	}
	items, _ = s.ListItems(ctx)
	if len(items) != 1 {
		t.Fatalf("upsert duplicated the item: %d entries", len(items))
	}
	if items[0].Script != "second" {
		t.Errorf("script = %q, want updated text", items[0].Script)
	}
}

func TestGetMissingItem(t *testing.T) {
	s, _ := newTestStore(t)
	got, err := s.GetItem(context.Background(), "01JUNKULID")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Error("missing item should return nil")
	}
}

func TestDeleteItem(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	s.SaveItem(ctx, Item{Title: "x"})
	items, _ := s.ListItems(ctx)

	if err := s.DeleteItem(ctx, items[0].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if items, _ := s.ListItems(ctx); len(items) != 0 {
		t.Error("item not deleted")
	}
	if err := s.DeleteItem(ctx, "missing"); err != nil {
		t.Errorf("deleting unknown id should be a no-op: %v", err)
	}
}

func TestSaveIdeaDedupes(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	idea := Idea{Title: "หัวข้อ", ThaiTitle: "หัวข้อ", Outline: "โครงร่าง"}
	added, err := s.SaveIdea(ctx, idea)
	if err != nil || !added {
		t.Fatalf("first save: added=%v err=%v", added, err)
	}

	added, err = s.SaveIdea(ctx, Idea{Title: "หัวข้อ", Outline: "โครงร่าง"})
	if err != nil {
		t.Fatalf("duplicate save: %v", err)
	}
	if added {
		t.Error("identical (title, outline) should be rejected")
	}

	// Same title with a different outline is a different idea.
	added, err = s.SaveIdea(ctx, Idea{Title: "หัวข้อ", Outline: "โครงร่างอื่น"})
	if err != nil || !added {
		t.Fatalf("distinct idea: added=%v err=%v", added, err)
	}

	ideas, _ := s.ListIdeas(ctx)
	if len(ideas) != 2 {
		t.Errorf("ideas = %d, want 2", len(ideas))
	}
}

func TestExportScript(t *testing.T) {
	dir := t.TempDir()
	text := "## Intro\nสวัสดีค่ะ\n"

	path, err := ExportScript(dir, text)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if filepath.Base(path) != ExportFilename {
		t.Errorf("filename = %s, want %s", filepath.Base(path), ExportFilename)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if string(data) != text {
		t.Error("export must be the raw script with no front matter")
	}
	if strings.HasPrefix(string(data), "---") {
		t.Error("export must not carry front matter")
	}
}

func TestExportEmptyScript(t *testing.T) {
	if _, err := ExportScript(t.TempDir(), "  \n"); err == nil {
		t.Error("empty script should not export")
	}
}
