package fileio

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestDeleteMovesFileIntoTrash(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	workDir := filepath.Join(home, "work")
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		t.Fatalf("mkdir workdir: %v", err)
	}
	path := filepath.Join(workDir, "doomed.txt")
	mustWriteFile(t, path, "bye")

	raw, _ := json.Marshal(map[string]interface{}{"path": path})
	res, cErr := Delete(raw)
	if cErr != nil {
		t.Fatalf("unexpected error: %v", cErr)
	}
	result := res.(DeleteResult)
	if !result.Deleted || result.DeleteMode != "trash" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected original path to be gone, stat err: %v", err)
	}

	trashDir, err := trashDirectory()
	if err != nil {
		t.Fatalf("trashDirectory: %v", err)
	}
	entries, err := os.ReadDir(trashDir)
	if err != nil {
		t.Fatalf("read trash dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one trashed entry, got %d", len(entries))
	}
}

func TestDeleteRejectsMissingPath(t *testing.T) {
	raw, _ := json.Marshal(map[string]interface{}{})
	_, cErr := Delete(raw)
	if cErr == nil || cErr.Code != "INVALID_PARAMS" {
		t.Fatalf("expected INVALID_PARAMS, got %v", cErr)
	}
}

func TestDeleteRejectsNonexistentTarget(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	raw, _ := json.Marshal(map[string]interface{}{"path": filepath.Join(home, "nope.txt")})
	_, cErr := Delete(raw)
	if cErr == nil {
		t.Fatalf("expected error deleting nonexistent path")
	}
}
