package fileio

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/openclaw/openclaw-node/internal/capabilities"
)

const defaultMaxBytes = 1 << 20 // 2^20

type readParams struct {
	Path     string `json:"path"`
	Encoding string `json:"encoding"`
	MaxBytes *int   `json:"maxBytes"`
}

// ReadResult is the file.read/read payload shape.
type ReadResult struct {
	Path       string `json:"path"`
	Operation  string `json:"operation"`
	TargetType string `json:"targetType"`
	Encoding   string `json:"encoding"`
	SizeBytes  int64  `json:"sizeBytes"`
	ReadBytes  int    `json:"readBytes"`
	Truncated  bool   `json:"truncated"`
	Content    string `json:"content"`
}

// Read implements the file.read "read" operation: reads up to maxBytes
// (default 2^20, capped at 20*2^20) of a regular file and reports whether
// the content was truncated.
func Read(raw json.RawMessage) (interface{}, *capabilities.Error) {
	var p readParams
	if cErr := decodeParams(raw, &p); cErr != nil {
		return nil, cErr
	}
	if p.Path == "" {
		return nil, capabilities.InvalidParams("path is required")
	}
	maxBytes := defaultMaxBytes
	if p.MaxBytes != nil {
		maxBytes = *p.MaxBytes
		if maxBytes < 1 || maxBytes > maxReadBytesCap {
			return nil, capabilities.InvalidParams(fmt.Sprintf("maxBytes out of range: %d", maxBytes))
		}
	}
	encoding := p.Encoding
	if encoding == "" {
		encoding = "utf8"
	}
	if encoding != "utf8" && encoding != "base64" {
		return nil, capabilities.InvalidParams("unsupported encoding: " + encoding)
	}

	absPath, err := filepath.Abs(p.Path)
	if err != nil {
		return nil, capabilities.NewError("FILE_READ_FAILED", err.Error())
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, capabilities.NewError("FILE_READ_FAILED", err.Error())
	}
	if !info.Mode().IsRegular() {
		return nil, capabilities.NewError("FILE_READ_FAILED", "target is not a regular file")
	}

	f, err := os.Open(absPath)
	if err != nil {
		return nil, capabilities.NewError("FILE_READ_FAILED", err.Error())
	}
	defer f.Close()

	buf := make([]byte, maxBytes+1)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, capabilities.NewError("FILE_READ_FAILED", err.Error())
	}

	truncated := n > maxBytes
	if truncated {
		n = maxBytes
	}
	content := buf[:n]

	return ReadResult{
		Path:       absPath,
		Operation:  "read",
		TargetType: "file",
		Encoding:   encoding,
		SizeBytes:  info.Size(),
		ReadBytes:  n,
		Truncated:  truncated,
		Content:    encodeContent(content, encoding),
	}, nil
}
