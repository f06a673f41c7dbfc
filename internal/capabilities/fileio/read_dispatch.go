package fileio

import (
	"context"
	"encoding/json"

	"github.com/openclaw/openclaw-node/internal/capabilities"
)

type readSelector struct {
	Operation string `json:"operation"`
}

// DispatchRead routes a file.read invoke to read/list/rg based on the
// operation selector.
func DispatchRead(ctx context.Context, raw json.RawMessage, invokeTimeoutMs int) (interface{}, *capabilities.Error) {
	var sel readSelector
	if cErr := decodeParams(raw, &sel); cErr != nil {
		return nil, cErr
	}
	switch normalizeOperation(sel.Operation) {
	case "", "read":
		return Read(raw)
	case "list":
		return List(raw)
	case "rg":
		return Rg(ctx, raw, invokeTimeoutMs)
	default:
		return nil, capabilities.InvalidParams("unsupported file.read operation: " + sel.Operation)
	}
}
