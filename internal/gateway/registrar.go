package gateway

import (
	"errors"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/openclaw/openclaw-node/internal/cryptoutil"
	"github.com/openclaw/openclaw-node/internal/identity"
	"github.com/openclaw/openclaw-node/internal/profile"
)

// RegistrarOptions carries the subset of NodeOptions the registrar needs to
// build connect params.
type RegistrarOptions struct {
	Token        string
	DisplayName  string
	NodeID       string
	DeviceFamily string
}

var errEmptyNonce = errors.New("gateway: nonce must not be empty")

// BuildConnectParams assembles the signed "connect" request params per the
// device-auth v3 payload, the node's static capability profile, and the
// challenge nonce. Grounded on the original registrar's buildConnectParams:
// platform falls back to "windows" when undetectable, and displayName /
// instanceId are included only when non-empty after trim.
func BuildConnectParams(id *identity.DeviceIdentity, nonce string, opts RegistrarOptions, prof profile.Profile) (ConnectParams, error) {
	nonce = strings.TrimSpace(nonce)
	if nonce == "" {
		return ConnectParams{}, errEmptyNonce
	}

	signedAtMs := time.Now().UnixMilli()
	const role = "node"
	scopes := []string{}

	platform := platformName()
	deviceFamily := opts.DeviceFamily

	payload := identity.BuildDeviceAuthPayloadV3(
		id.DeviceID,
		profile.ClientID,
		"node",
		role,
		scopes,
		signedAtMs,
		opts.Token,
		nonce,
		platform,
		deviceFamily,
	)
	signature := id.Sign(payload)

	client := ClientInfo{
		ID:           profile.ClientID,
		Version:      profile.ClientVersion,
		Platform:     cryptoutil.NormalizeMetadataForAuth(platform),
		Mode:         "node",
		DeviceFamily: cryptoutil.NormalizeMetadataForAuth(deviceFamily),
	}
	if displayName := strings.TrimSpace(opts.DisplayName); displayName != "" {
		client.DisplayName = displayName
	}
	if instanceID := strings.TrimSpace(opts.NodeID); instanceID != "" {
		client.InstanceID = instanceID
	}

	params := ConnectParams{
		MinProtocol: profile.ProtocolMin,
		MaxProtocol: profile.ProtocolMax,
		Client:      client,
		Role:        role,
		Scopes:      scopes,
		Caps:        prof.Caps(),
		Commands:    prof.Commands(),
		Permissions: prof.Permissions(),
		Locale:      systemLocale(),
		UserAgent:   "jqopenclaw-node/" + profile.ClientVersion,
		Device: DeviceAuthParams{
			ID:        id.DeviceID,
			PublicKey: id.PublicKeyRawBase64Url(),
			Signature: signature,
			SignedAt:  signedAtMs,
			Nonce:     nonce,
		},
	}
	if opts.Token != "" {
		params.Auth = &TokenAuthParams{Token: opts.Token}
	}
	return params, nil
}

// platformName returns a best-effort product-type string, falling back to
// "windows" when the runtime platform cannot be classified, matching the
// original registrar's fallback.
func platformName() string {
	switch runtime.GOOS {
	case "windows":
		return "windows"
	case "darwin":
		return "macos"
	case "linux":
		return "linux"
	default:
		return "windows"
	}
}

// systemLocale returns a BCP-47-shaped locale string derived from the
// process environment, falling back to "en-US".
func systemLocale() string {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := os.Getenv(key); v != "" {
			v = strings.SplitN(v, ".", 2)[0]
			v = strings.ReplaceAll(v, "_", "-")
			if v != "" {
				return v
			}
		}
	}
	return "en-US"
}
