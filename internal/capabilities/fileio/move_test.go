package fileio

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestMoveRenamesWithinSameVolume(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	mustWriteFile(t, src, "payload")
	dest := filepath.Join(dir, "nested", "dst.txt")

	raw, _ := json.Marshal(map[string]interface{}{"path": src, "destinationPath": dest})
	res, cErr := Move(raw)
	if cErr != nil {
		t.Fatalf("unexpected error: %v", cErr)
	}
	result := res.(MoveResult)
	if !result.Moved || result.Overwritten {
		t.Fatalf("unexpected result: %+v", result)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("expected source removed")
	}
	data, err := os.ReadFile(dest)
	if err != nil || string(data) != "payload" {
		t.Fatalf("unexpected dest content: %v %q", err, data)
	}
}

func TestMoveRequiresOverwriteFlagWhenDestExists(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dest := filepath.Join(dir, "dst.txt")
	mustWriteFile(t, src, "new")
	mustWriteFile(t, dest, "old")

	raw, _ := json.Marshal(map[string]interface{}{"path": src, "destinationPath": dest})
	if _, cErr := Move(raw); cErr == nil {
		t.Fatalf("expected error when destination exists without overwrite")
	}

	raw, _ = json.Marshal(map[string]interface{}{"path": src, "destinationPath": dest, "overwrite": true})
	res, cErr := Move(raw)
	if cErr != nil {
		t.Fatalf("unexpected error with overwrite: %v", cErr)
	}
	result := res.(MoveResult)
	if !result.Overwritten {
		t.Fatalf("expected overwritten=true, got %+v", result)
	}
	data, err := os.ReadFile(dest)
	if err != nil || string(data) != "new" {
		t.Fatalf("unexpected dest content after overwrite: %v %q", err, data)
	}
}

func TestMoveRejectsSamePath(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "same.txt")
	mustWriteFile(t, src, "x")
	raw, _ := json.Marshal(map[string]interface{}{"path": src, "destinationPath": src})
	_, cErr := Move(raw)
	if cErr == nil || cErr.Code != "INVALID_PARAMS" {
		t.Fatalf("expected INVALID_PARAMS, got %v", cErr)
	}
}
