// Package fileio implements the file.read and file.write invoke
// capabilities: read/list/rg under file.read, write/move/delete under
// file.write.
package fileio

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/openclaw/openclaw-node/internal/capabilities"
)

const maxReadBytesCap = 20 * 1024 * 1024

// normalizeOperation strips "-", "_" and spaces and lowercases, matching
// the operation-selector normalization rule shared by read and write.
func normalizeOperation(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer("-", "", "_", "", " ", "").Replace(s)
	return s
}

func decodeParams(raw json.RawMessage, v interface{}) *capabilities.Error {
	if len(raw) == 0 {
		return capabilities.InvalidParams("missing params")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return capabilities.InvalidParams("malformed params: " + err.Error())
	}
	return nil
}

func decodeContent(content string, encoding string) ([]byte, *capabilities.Error) {
	switch encoding {
	case "", "utf8":
		return []byte(content), nil
	case "base64":
		if content == "" {
			return []byte{}, nil
		}
		data, err := base64.StdEncoding.DecodeString(content)
		if err != nil {
			return nil, capabilities.InvalidParams("invalid base64 content: " + err.Error())
		}
		return data, nil
	default:
		return nil, capabilities.InvalidParams("unsupported encoding: " + encoding)
	}
}

func encodeContent(data []byte, encoding string) string {
	if encoding == "base64" {
		return base64.StdEncoding.EncodeToString(data)
	}
	return string(data)
}
