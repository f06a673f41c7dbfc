package fileio

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/openclaw/openclaw-node/internal/capabilities"
)

type writeSelector struct {
	Operation string `json:"operation"`
	AllowWrite bool  `json:"allowWrite"`
}

type writeParams struct {
	Path       string `json:"path"`
	Content    string `json:"content"`
	Encoding   string `json:"encoding"`
	Append     bool   `json:"append"`
	CreateDirs *bool  `json:"createDirs"`
}

// WriteResult is the file.write/write payload shape.
type WriteResult struct {
	Operation    string `json:"operation"`
	Path         string `json:"path"`
	Encoding     string `json:"encoding"`
	Appended     bool   `json:"appended"`
	BytesWritten int    `json:"bytesWritten"`
	SizeBytes    int64  `json:"sizeBytes"`
}

var errDisabled = capabilities.NewError("FILE_WRITE_DISABLED", "file.write is disabled by default")

// Dispatch routes a file.write invoke to write/move/delete based on the
// operation selector, after checking the allowWrite gate.
func Dispatch(raw json.RawMessage) (interface{}, *capabilities.Error) {
	var sel writeSelector
	if cErr := decodeParams(raw, &sel); cErr != nil {
		return nil, cErr
	}
	if !sel.AllowWrite {
		return nil, errDisabled
	}
	switch normalizeOperation(sel.Operation) {
	case "", "write":
		return Write(raw)
	case "move", "cut":
		return Move(raw)
	case "delete", "remove":
		return Delete(raw)
	default:
		return nil, capabilities.InvalidParams("unsupported file.write operation: " + sel.Operation)
	}
}

// Write implements the file.write "write" operation.
func Write(raw json.RawMessage) (interface{}, *capabilities.Error) {
	var p writeParams
	if cErr := decodeParams(raw, &p); cErr != nil {
		return nil, cErr
	}
	if p.Path == "" {
		return nil, capabilities.InvalidParams("path is required")
	}
	encoding := p.Encoding
	if encoding == "" {
		encoding = "utf8"
	}
	data, cErr := decodeContent(p.Content, encoding)
	if cErr != nil {
		return nil, cErr
	}
	if len(data) > maxReadBytesCap {
		return nil, capabilities.InvalidParams("content exceeds maximum size")
	}

	absPath, err := filepath.Abs(p.Path)
	if err != nil {
		return nil, capabilities.NewError("FILE_WRITE_FAILED", err.Error())
	}

	createDirs := true
	if p.CreateDirs != nil {
		createDirs = *p.CreateDirs
	}
	if createDirs {
		if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
			return nil, capabilities.NewError("FILE_WRITE_FAILED", err.Error())
		}
	}

	flags := os.O_WRONLY | os.O_CREATE
	if p.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(absPath, flags, 0o644)
	if err != nil {
		return nil, capabilities.NewError("FILE_WRITE_FAILED", err.Error())
	}
	defer f.Close()

	n, err := f.Write(data)
	if err != nil {
		return nil, capabilities.NewError("FILE_WRITE_FAILED", err.Error())
	}
	if n != len(data) {
		return nil, capabilities.NewError("FILE_WRITE_FAILED", "short write")
	}
	if err := f.Sync(); err != nil {
		return nil, capabilities.NewError("FILE_WRITE_FAILED", err.Error())
	}

	info, err := os.Stat(absPath)
	var size int64
	if err == nil {
		size = info.Size()
	}

	return WriteResult{
		Operation:    "write",
		Path:         absPath,
		Encoding:     encoding,
		Appended:     p.Append,
		BytesWritten: n,
		SizeBytes:    size,
	}, nil
}
