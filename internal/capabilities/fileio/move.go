package fileio

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/openclaw/openclaw-node/internal/capabilities"
)

type moveParams struct {
	Path            string `json:"path"`
	DestinationPath string `json:"destinationPath"`
	ToPath          string `json:"toPath"`
	Overwrite       bool   `json:"overwrite"`
	CreateDirs      *bool  `json:"createDirs"`
}

// MoveResult is the file.write/move payload shape.
type MoveResult struct {
	Operation   string `json:"operation"`
	FromPath    string `json:"fromPath"`
	ToPath      string `json:"toPath"`
	Path        string `json:"path"`
	TargetType  string `json:"targetType"`
	Overwritten bool   `json:"overwritten"`
	Moved       bool   `json:"moved"`
}

// Move implements the file.write "move"/"cut" operation.
func Move(raw json.RawMessage) (interface{}, *capabilities.Error) {
	var p moveParams
	if cErr := decodeParams(raw, &p); cErr != nil {
		return nil, cErr
	}
	if p.Path == "" {
		return nil, capabilities.InvalidParams("path is required")
	}
	dest := p.DestinationPath
	if dest == "" {
		dest = p.ToPath
	}
	if dest == "" {
		return nil, capabilities.InvalidParams("destinationPath is required")
	}

	fromAbs, err := filepath.Abs(p.Path)
	if err != nil {
		return nil, capabilities.NewError("FILE_WRITE_FAILED", err.Error())
	}
	toAbs, err := filepath.Abs(dest)
	if err != nil {
		return nil, capabilities.NewError("FILE_WRITE_FAILED", err.Error())
	}
	if strings.EqualFold(fromAbs, toAbs) {
		return nil, capabilities.InvalidParams("source and destination must differ")
	}

	srcInfo, err := os.Stat(fromAbs)
	if err != nil {
		return nil, capabilities.NewError("FILE_WRITE_FAILED", "source does not exist: "+err.Error())
	}

	overwritten := false
	if destInfo, err := os.Stat(toAbs); err == nil {
		if !p.Overwrite {
			return nil, capabilities.NewError("FILE_WRITE_FAILED", "destination exists and overwrite is false")
		}
		_ = destInfo
		if err := os.RemoveAll(toAbs); err != nil {
			return nil, capabilities.NewError("FILE_WRITE_FAILED", "failed to remove existing destination: "+err.Error())
		}
		overwritten = true
	}

	createDirs := true
	if p.CreateDirs != nil {
		createDirs = *p.CreateDirs
	}
	if createDirs {
		if err := os.MkdirAll(filepath.Dir(toAbs), 0o755); err != nil {
			return nil, capabilities.NewError("FILE_WRITE_FAILED", err.Error())
		}
	}

	targetType := "file"
	if srcInfo.IsDir() {
		targetType = "directory"
	}

	if err := os.Rename(fromAbs, toAbs); err != nil {
		if srcInfo.IsDir() {
			return nil, capabilities.NewError("FILE_WRITE_FAILED", "rename failed for directory: "+err.Error())
		}
		if copyErr := copyFile(fromAbs, toAbs); copyErr != nil {
			_ = os.Remove(toAbs)
			return nil, capabilities.NewError("FILE_WRITE_FAILED", "copy fallback failed: "+copyErr.Error())
		}
		if rmErr := os.Remove(fromAbs); rmErr != nil {
			_ = os.Remove(toAbs)
			return nil, capabilities.NewError("FILE_WRITE_FAILED", "failed to remove source after copy: "+rmErr.Error())
		}
	}

	return MoveResult{
		Operation:   "move",
		FromPath:    fromAbs,
		ToPath:      toAbs,
		Path:        toAbs,
		TargetType:  targetType,
		Overwritten: overwritten,
		Moved:       true,
	}, nil
}

func copyFile(from, to string) error {
	src, err := os.Open(from)
	if err != nil {
		return err
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return err
	}

	dst, err := os.OpenFile(to, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return err
	}
	return dst.Sync()
}
