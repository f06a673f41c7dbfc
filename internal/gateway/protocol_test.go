package gateway

import (
	"encoding/json"
	"testing"
)

func TestConnectParamsRoundTrip(t *testing.T) {
	params := ConnectParams{
		MinProtocol: ProtocolVersion,
		MaxProtocol: ProtocolVersion,
		Client: ClientInfo{
			ID:           "node-host",
			Version:      "1.0.0",
			Platform:     "linux",
			Mode:         "node",
			DeviceFamily: "windows-pc",
		},
		Role:        "node",
		Scopes:      []string{},
		Caps:        []string{"file", "process", "system"},
		Commands:    []string{"file.read", "process.exec"},
		Permissions: map[string]bool{"file.read": true},
		UserAgent:   "jqopenclaw-node/1.0.0",
		Device: DeviceAuthParams{
			ID:        "device-id",
			PublicKey: "pub",
			Signature: "sig",
			SignedAt:  123,
			Nonce:     "nonce",
		},
	}
	encoded, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded ConnectParams
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Device.ID != params.Device.ID || decoded.Client.ID != params.Client.ID {
		t.Fatalf("round trip mismatch: %+v", decoded)
	}
}

func TestConnectParamsAuthOmittedWhenNil(t *testing.T) {
	params := ConnectParams{Client: ClientInfo{ID: "node-host"}}
	encoded, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(encoded, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, present := raw["auth"]; present {
		t.Fatalf("expected auth field to be omitted when nil")
	}
}

func TestConnectParamsAuthIncludedWhenTokenSet(t *testing.T) {
	params := ConnectParams{Client: ClientInfo{ID: "node-host"}, Auth: &TokenAuthParams{Token: "abc"}}
	encoded, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(encoded, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, present := raw["auth"]; !present {
		t.Fatalf("expected auth field present")
	}
}

func TestInvokePayloadDecode(t *testing.T) {
	raw := []byte(`{"id":"I1","nodeId":"D1","command":"system.info","paramsJSON":"{\"a\":1}"}`)
	var payload InvokePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload.ID != "I1" || payload.NodeID != "D1" || payload.Command != "system.info" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if payload.ParamsJSON != `{"a":1}` {
		t.Fatalf("unexpected paramsJSON: %s", payload.ParamsJSON)
	}
}

func TestInvokeResultParamsErrorOmittedOnSuccess(t *testing.T) {
	params := InvokeResultParams{ID: "I1", NodeID: "D1", OK: true}
	encoded, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(encoded, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, present := raw["error"]; present {
		t.Fatalf("expected error omitted on success")
	}
}
