package gateway

import (
	"crypto/ed25519"
	"path/filepath"
	"testing"

	"github.com/openclaw/openclaw-node/internal/cryptoutil"
	"github.com/openclaw/openclaw-node/internal/identity"
	"github.com/openclaw/openclaw-node/internal/profile"
)

func newTestIdentity(t *testing.T) *identity.DeviceIdentity {
	t.Helper()
	path := filepath.Join(t.TempDir(), "device.json")
	id, err := identity.LoadOrCreateIdentity(path)
	if err != nil {
		t.Fatalf("create identity: %v", err)
	}
	return id
}

func TestBuildConnectParamsRejectsEmptyNonce(t *testing.T) {
	id := newTestIdentity(t)
	_, err := BuildConnectParams(id, "   ", RegistrarOptions{}, profile.New())
	if err != errEmptyNonce {
		t.Fatalf("expected errEmptyNonce, got %v", err)
	}
}

func TestBuildConnectParamsSignatureVerifies(t *testing.T) {
	id := newTestIdentity(t)
	params, err := BuildConnectParams(id, "nonce-1", RegistrarOptions{Token: "tok", DeviceFamily: "kobo"}, profile.New())
	if err != nil {
		t.Fatalf("build connect params: %v", err)
	}
	payload := identity.BuildDeviceAuthPayloadV3(
		params.Device.ID, params.Client.ID, params.Client.Mode, params.Role,
		params.Scopes, params.Device.SignedAt, "tok", params.Device.Nonce,
		params.Client.Platform, params.Client.DeviceFamily,
	)
	sigBytes, err := cryptoutil.FromBase64URL(params.Device.Signature)
	if err != nil {
		t.Fatalf("decode signature: %v", err)
	}
	if !ed25519.Verify(id.PublicKey, []byte(payload), sigBytes) {
		t.Fatalf("connect params signature did not verify")
	}
}

func TestBuildConnectParamsOmitsAuthWhenTokenEmpty(t *testing.T) {
	id := newTestIdentity(t)
	params, err := BuildConnectParams(id, "nonce-1", RegistrarOptions{}, profile.New())
	if err != nil {
		t.Fatalf("build connect params: %v", err)
	}
	if params.Auth != nil {
		t.Fatalf("expected no auth block when token empty")
	}
}

func TestBuildConnectParamsOmitsDisplayNameAndInstanceIDWhenBlank(t *testing.T) {
	id := newTestIdentity(t)
	params, err := BuildConnectParams(id, "nonce-1", RegistrarOptions{DisplayName: "  ", NodeID: ""}, profile.New())
	if err != nil {
		t.Fatalf("build connect params: %v", err)
	}
	if params.Client.DisplayName != "" || params.Client.InstanceID != "" {
		t.Fatalf("expected displayName/instanceId omitted, got %+v", params.Client)
	}
}

func TestBuildConnectParamsUsesProtocolAndProfile(t *testing.T) {
	id := newTestIdentity(t)
	params, err := BuildConnectParams(id, "nonce-1", RegistrarOptions{}, profile.New())
	if err != nil {
		t.Fatalf("build connect params: %v", err)
	}
	if params.MinProtocol != profile.ProtocolMin || params.MaxProtocol != profile.ProtocolMax {
		t.Fatalf("unexpected protocol range: %d-%d", params.MinProtocol, params.MaxProtocol)
	}
	if len(params.Caps) == 0 || len(params.Commands) == 0 {
		t.Fatalf("expected caps/commands to be populated")
	}
	if params.Role != "node" {
		t.Fatalf("expected role node, got %q", params.Role)
	}
}
