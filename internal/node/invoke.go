package node

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openclaw/openclaw-node/internal/capabilities"
	"github.com/openclaw/openclaw-node/internal/capabilities/fileio"
	"github.com/openclaw/openclaw-node/internal/capabilities/procexec"
	"github.com/openclaw/openclaw-node/internal/capabilities/screenshot"
	"github.com/openclaw/openclaw-node/internal/capabilities/sysinfo"
	"github.com/openclaw/openclaw-node/internal/gateway"
)

type invokeHandler func(ctx context.Context, raw json.RawMessage, invokeTimeoutMs int) (interface{}, *capabilities.Error)

func (a *Application) buildDispatchTable() map[string]invokeHandler {
	return map[string]invokeHandler{
		"file.read": func(ctx context.Context, raw json.RawMessage, timeoutMs int) (interface{}, *capabilities.Error) {
			return fileio.DispatchRead(ctx, raw, timeoutMs)
		},
		"file.write": func(ctx context.Context, raw json.RawMessage, timeoutMs int) (interface{}, *capabilities.Error) {
			return fileio.Dispatch(raw)
		},
		"process.exec": func(ctx context.Context, raw json.RawMessage, timeoutMs int) (interface{}, *capabilities.Error) {
			return procexec.Exec(ctx, raw)
		},
		"system.info": func(ctx context.Context, raw json.RawMessage, timeoutMs int) (interface{}, *capabilities.Error) {
			return sysinfo.Collect(raw)
		},
		"system.screenshot": func(ctx context.Context, raw json.RawMessage, timeoutMs int) (interface{}, *capabilities.Error) {
			return a.captureAndUploadScreenshot(ctx)
		},
	}
}

func (a *Application) captureAndUploadScreenshot(ctx context.Context) (interface{}, *capabilities.Error) {
	if strings.TrimSpace(a.opts.FileServerURI) == "" {
		return nil, capabilities.NewError("SCREENSHOT_UPLOAD_FAILED", "no file server configured")
	}
	return screenshot.CaptureAndUpload(ctx, screenshot.DefaultCapturer{}, screenshot.Uploader{
		BaseURI: a.opts.FileServerURI,
		Token:   a.opts.FileServerToken,
	})
}

// onInvokeRequestReceived runs the Invoke Pipeline: derive params, dispatch
// on command, and emit node.invoke.result with either the success payload
// or a structured error.
func (a *Application) onInvokeRequestReceived(payload gateway.InvokePayload) {
	id := strings.TrimSpace(payload.ID)
	nodeID := strings.TrimSpace(payload.NodeID)
	command := strings.TrimSpace(payload.Command)
	// gateway.Client already drops envelopes missing any of these before
	// this handler fires; the checks here are a defensive second gate.
	if id == "" || nodeID == "" || command == "" {
		return
	}

	paramsRaw, cErr := deriveParams(payload)
	if cErr != nil {
		a.sendInvokeError(id, nodeID, cErr)
		return
	}

	handler, ok := a.dispatch[command]
	if !ok {
		a.sendInvokeError(id, nodeID, capabilities.NewError("COMMAND_NOT_SUPPORTED", "unsupported invoke command: "+command))
		return
	}

	result, cErr := handler(context.Background(), paramsRaw, payload.InvokeTimeoutMs)
	if cErr != nil {
		a.sendInvokeError(id, nodeID, cErr)
		return
	}
	a.sendInvokeSuccess(id, nodeID, result)
}

func deriveParams(payload gateway.InvokePayload) (json.RawMessage, *capabilities.Error) {
	if strings.TrimSpace(payload.ParamsJSON) != "" {
		trimmed := strings.TrimSpace(payload.ParamsJSON)
		if !json.Valid([]byte(trimmed)) {
			return nil, capabilities.InvalidParams("paramsJSON is not valid JSON")
		}
		if !isObjectOrArray(trimmed) {
			return nil, capabilities.InvalidParams("paramsJSON must be an object or array")
		}
		return json.RawMessage(trimmed), nil
	}
	if len(payload.Params) > 0 {
		if !isObjectOrArray(string(bytes.TrimSpace(payload.Params))) {
			return nil, capabilities.InvalidParams("params must be an object or array")
		}
		return payload.Params, nil
	}
	return json.RawMessage("{}"), nil
}

func isObjectOrArray(s string) bool {
	if s == "" {
		return false
	}
	switch s[0] {
	case '{', '[':
		return true
	default:
		return false
	}
}

func (a *Application) sendInvokeSuccess(id, nodeID string, payload interface{}) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		a.sendInvokeError(id, nodeID, capabilities.NewError("INVALID_PARAMS", fmt.Sprintf("failed to encode result: %v", err)))
		return
	}
	payloadJSON := string(encoded)
	params := gateway.InvokeResultParams{ID: id, NodeID: nodeID, OK: true, PayloadJSON: &payloadJSON}
	if err := a.client.SendInvokeResult(context.Background(), params); err != nil {
		a.logger.Warn().Err(err).Msg("node: failed to send invoke result")
	}
}

func (a *Application) sendInvokeError(id, nodeID string, cErr *capabilities.Error) {
	message := strings.TrimSpace(cErr.Message)
	if message == "" {
		message = "invoke command failed"
	}
	code := strings.TrimSpace(cErr.Code)
	nodeErr := &gateway.NodeInvokeError{Message: message}
	if code != "" {
		nodeErr.Code = code
	}
	params := gateway.InvokeResultParams{ID: id, NodeID: nodeID, OK: false, Error: nodeErr}
	if err := a.client.SendInvokeResult(context.Background(), params); err != nil {
		a.logger.Warn().Err(err).Msg("node: failed to send invoke error result")
	}
}
