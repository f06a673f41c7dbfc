package fileio

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestListOrdersDirectoriesFirst(t *testing.T) {
	dir := t.TempDir()
	mustWriteFile(t, filepath.Join(dir, "b.txt"), "b")
	mustWriteFile(t, filepath.Join(dir, "a.txt"), "a")
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	raw, _ := json.Marshal(map[string]interface{}{"path": dir})
	res, cErr := List(raw)
	if cErr != nil {
		t.Fatalf("unexpected error: %v", cErr)
	}
	result := res.(ListResult)
	if result.TotalCount != 3 || result.DirectoryCount != 1 || result.FileCount != 2 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	if len(result.Entries) != 3 || result.Entries[0].Name != "sub" {
		t.Fatalf("expected directory first, got %+v", result.Entries)
	}
	if result.Entries[1].Name != "a.txt" || result.Entries[2].Name != "b.txt" {
		t.Fatalf("expected case-insensitive name order, got %+v", result.Entries)
	}
}

func TestListTruncatesAtMaxEntries(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 5; i++ {
		mustWriteFile(t, filepath.Join(dir, "f"+string(rune('a'+i))+".txt"), "x")
	}
	raw, _ := json.Marshal(map[string]interface{}{"path": dir, "maxEntries": 2})
	res, cErr := List(raw)
	if cErr != nil {
		t.Fatalf("unexpected error: %v", cErr)
	}
	result := res.(ListResult)
	if !result.Truncated || len(result.Entries) != 2 || result.TotalCount != 5 {
		t.Fatalf("unexpected truncation: %+v", result)
	}
}

func TestListIncludeEntriesFalseOmitsEntries(t *testing.T) {
	dir := t.TempDir()
	mustWriteFile(t, filepath.Join(dir, "a.txt"), "a")
	raw, _ := json.Marshal(map[string]interface{}{"path": dir, "includeEntries": false})
	res, cErr := List(raw)
	if cErr != nil {
		t.Fatalf("unexpected error: %v", cErr)
	}
	result := res.(ListResult)
	if result.Entries != nil {
		t.Fatalf("expected no entries, got %+v", result.Entries)
	}
	if result.TotalCount != 1 {
		t.Fatalf("expected totalCount still reported, got %+v", result)
	}
}

func TestListRejectsNonDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.txt")
	mustWriteFile(t, path, "x")
	raw, _ := json.Marshal(map[string]interface{}{"path": path})
	_, cErr := List(raw)
	if cErr == nil {
		t.Fatalf("expected error listing a regular file")
	}
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture %s: %v", path, err)
	}
}
