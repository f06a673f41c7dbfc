package fileio

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/openclaw/openclaw-node/internal/capabilities"
)

const defaultMaxEntries = 200
const maxEntriesCap = 5000

type listParams struct {
	Path           string `json:"path"`
	IncludeEntries *bool  `json:"includeEntries"`
	MaxEntries     *int   `json:"maxEntries"`
}

// ListEntry is one directory entry in a file.read/list result.
type ListEntry struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	Type      string `json:"type"`
	IsSymLink bool   `json:"isSymLink"`
	SizeBytes *int64 `json:"sizeBytes,omitempty"`
}

// ListResult is the file.read/list payload shape.
type ListResult struct {
	Path            string      `json:"path"`
	Operation       string      `json:"operation"`
	TargetType      string      `json:"targetType"`
	DirectoryCount  int         `json:"directoryCount"`
	FileCount       int         `json:"fileCount"`
	OtherCount      int         `json:"otherCount"`
	TotalCount      int         `json:"totalCount"`
	Truncated       bool        `json:"truncated"`
	Entries         []ListEntry `json:"entries,omitempty"`
}

// List implements the file.read "list" operation: enumerates a directory's
// entries, directories first then case-insensitive name order.
func List(raw json.RawMessage) (interface{}, *capabilities.Error) {
	var p listParams
	if cErr := decodeParams(raw, &p); cErr != nil {
		return nil, cErr
	}
	if p.Path == "" {
		return nil, capabilities.InvalidParams("path is required")
	}
	includeEntries := true
	if p.IncludeEntries != nil {
		includeEntries = *p.IncludeEntries
	}
	maxEntries := defaultMaxEntries
	if p.MaxEntries != nil {
		maxEntries = *p.MaxEntries
		if maxEntries < 1 || maxEntries > maxEntriesCap {
			return nil, capabilities.InvalidParams(fmt.Sprintf("maxEntries out of range: %d", maxEntries))
		}
	}

	absPath, err := filepath.Abs(p.Path)
	if err != nil {
		return nil, capabilities.NewError("FILE_READ_FAILED", err.Error())
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, capabilities.NewError("FILE_READ_FAILED", err.Error())
	}
	if !info.IsDir() {
		return nil, capabilities.NewError("FILE_READ_FAILED", "target is not a directory")
	}

	dirEntries, err := os.ReadDir(absPath)
	if err != nil {
		return nil, capabilities.NewError("FILE_READ_FAILED", err.Error())
	}

	type classified struct {
		entry ListEntry
		isDir bool
	}
	var all []classified
	var dirCount, fileCount, otherCount int
	for _, de := range dirEntries {
		name := de.Name()
		if name == "." || name == ".." {
			continue
		}
		entryInfo, statErr := de.Info()
		isSymlink := de.Type()&os.ModeSymlink != 0
		var kind string
		switch {
		case de.IsDir():
			kind = "directory"
			dirCount++
		case entryInfo != nil && entryInfo.Mode().IsRegular():
			kind = "file"
			fileCount++
		default:
			kind = "other"
			otherCount++
		}
		item := ListEntry{
			Name:      name,
			Path:      filepath.Join(absPath, name),
			Type:      kind,
			IsSymLink: isSymlink,
		}
		if kind == "file" && statErr == nil {
			size := entryInfo.Size()
			item.SizeBytes = &size
		}
		all = append(all, classified{entry: item, isDir: de.IsDir()})
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].isDir != all[j].isDir {
			return all[i].isDir
		}
		return strings.ToLower(all[i].entry.Name) < strings.ToLower(all[j].entry.Name)
	})

	total := len(all)
	result := ListResult{
		Path:           absPath,
		Operation:      "list",
		TargetType:     "directory",
		DirectoryCount: dirCount,
		FileCount:      fileCount,
		OtherCount:     otherCount,
		TotalCount:     total,
	}
	if includeEntries {
		limit := total
		if limit > maxEntries {
			limit = maxEntries
			result.Truncated = true
		}
		result.Entries = make([]ListEntry, 0, limit)
		for i := 0; i < limit; i++ {
			result.Entries = append(result.Entries, all[i].entry)
		}
	}
	return result, nil
}
