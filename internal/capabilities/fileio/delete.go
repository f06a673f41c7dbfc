package fileio

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/openclaw/openclaw-node/internal/capabilities"
)

type deleteParams struct {
	Path string `json:"path"`
}

// DeleteResult is the file.write/delete payload shape.
type DeleteResult struct {
	Operation  string `json:"operation"`
	Path       string `json:"path"`
	TargetType string `json:"targetType"`
	Deleted    bool   `json:"deleted"`
	DeleteMode string `json:"deleteMode"`
}

// Delete implements the file.write "delete"/"remove" operation: the target
// is moved to the platform recycle bin, never hard-unlinked.
func Delete(raw json.RawMessage) (interface{}, *capabilities.Error) {
	var p deleteParams
	if cErr := decodeParams(raw, &p); cErr != nil {
		return nil, cErr
	}
	if p.Path == "" {
		return nil, capabilities.InvalidParams("path is required")
	}

	absPath, err := filepath.Abs(p.Path)
	if err != nil {
		return nil, capabilities.NewError("FILE_WRITE_FAILED", err.Error())
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, capabilities.NewError("FILE_WRITE_FAILED", "target does not exist: "+err.Error())
	}
	targetType := "file"
	if info.IsDir() {
		targetType = "directory"
	}

	if err := moveToTrash(absPath); err != nil {
		return nil, capabilities.NewError("FILE_WRITE_FAILED", err.Error())
	}

	return DeleteResult{
		Operation:  "delete",
		Path:       absPath,
		TargetType: targetType,
		Deleted:    true,
		DeleteMode: "trash",
	}, nil
}

// moveToTrash relocates path into the platform's recycle-bin convention:
// the freedesktop.org Trash spec on Linux, ~/.Trash on macOS, and a
// per-user trash folder on Windows (no stdlib shell API binding exists for
// the native Recycle Bin). Never performs a hard unlink.
func moveToTrash(path string) error {
	trashDir, err := trashDirectory()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(trashDir, 0o755); err != nil {
		return fmt.Errorf("create trash directory: %w", err)
	}

	base := filepath.Base(path)
	dest := filepath.Join(trashDir, base)
	if _, err := os.Stat(dest); err == nil {
		dest = filepath.Join(trashDir, fmt.Sprintf("%s.%d", base, time.Now().UnixNano()))
	}

	if err := os.Rename(path, dest); err != nil {
		return fmt.Errorf("move to trash: %w", err)
	}
	return nil
}

func trashDirectory() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, ".Trash"), nil
	case "windows":
		return filepath.Join(home, "AppData", "Local", "jqopenclaw", "Trash"), nil
	default:
		return filepath.Join(home, ".local", "share", "Trash", "files"), nil
	}
}
