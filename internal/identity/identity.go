// Package identity implements the node's device identity: a deterministic
// Ed25519 keypair derived identity, its atomic on-disk storage, and the
// canonical device-auth signing payload used to authenticate to a gateway.
package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/openclaw/openclaw-node/internal/cryptoutil"
)

const identityFileVersion = 1

// IdentityFile is the on-disk JSON shape of a device identity: raw
// base64url-encoded key material, never PEM/x509.
type IdentityFile struct {
	Version     int    `json:"version"`
	DeviceID    string `json:"deviceId"`
	PublicKey   string `json:"publicKey"`
	SecretKey   string `json:"secretKey"`
	CreatedAtMs int64  `json:"createdAtMs"`
}

// DeviceIdentity holds a loaded or freshly-created device identity.
type DeviceIdentity struct {
	DeviceID    string
	PublicKey   ed25519.PublicKey
	SecretKey   ed25519.PrivateKey
	CreatedAtMs int64
}

var (
	errMissingKeys        = errors.New("identity: stored identity is missing key material")
	errBadKeyLength       = errors.New("identity: decoded key has unexpected length")
	errUnsupportedVersion = errors.New("identity: unsupported identity file version")
)

// deviceIDFromPublicKey derives the deterministic device id: the lowercase
// hex SHA-256 digest of the raw 32-byte Ed25519 public key.
func deviceIDFromPublicKey(pub ed25519.PublicKey) string {
	sum := sha256.Sum256(pub)
	return hex.EncodeToString(sum[:])
}

// normalizeSecretKeySeed accepts either a 32-byte seed or a 64-byte
// seed‖public-key secret key and returns the 32-byte seed, matching the
// normalization the original device-auth signer applies before signing.
func normalizeSecretKeySeed(raw []byte) ([]byte, error) {
	switch len(raw) {
	case ed25519.SeedSize:
		return raw, nil
	case ed25519.PrivateKeySize:
		return raw[:ed25519.SeedSize], nil
	default:
		return nil, errBadKeyLength
	}
}

// LoadOrCreateIdentity loads the identity stored at path, creating a fresh
// one if the file does not exist. The stored version must be 1. If the
// stored device id does not match the one derivable from the stored public
// key, the in-memory identity is corrected and a rewrite of the file is
// attempted best-effort: a rewrite failure is logged but never fails the
// load (mirroring the teacher's rewrite-on-mismatch behavior).
func LoadOrCreateIdentity(path string) (*DeviceIdentity, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return createIdentity(path)
	}
	if err != nil {
		return nil, fmt.Errorf("identity: read %s: %w", path, err)
	}

	var stored IdentityFile
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("identity: parse %s: %w", path, err)
	}
	if stored.Version != identityFileVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", errUnsupportedVersion, stored.Version, identityFileVersion)
	}
	if stored.PublicKey == "" || stored.SecretKey == "" {
		return nil, errMissingKeys
	}

	pubRaw, err := cryptoutil.FromBase64URL(stored.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("identity: decode public key: %w", err)
	}
	if len(pubRaw) != ed25519.PublicKeySize {
		return nil, errBadKeyLength
	}
	seedRaw, err := cryptoutil.FromBase64URL(stored.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("identity: decode secret key: %w", err)
	}
	seed, err := normalizeSecretKeySeed(seedRaw)
	if err != nil {
		return nil, err
	}

	pub := ed25519.PublicKey(pubRaw)
	secret := ed25519.NewKeyFromSeed(seed)

	expectedID := deviceIDFromPublicKey(pub)
	if stored.DeviceID != expectedID {
		stored.DeviceID = expectedID
		// Best-effort: a rewrite failure here must not fail the load, the
		// in-memory identity below is already correct.
		if err := writeIdentityFile(path, stored); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("identity: failed to rewrite corrected device id")
		}
	}

	return &DeviceIdentity{
		DeviceID:    expectedID,
		PublicKey:   pub,
		SecretKey:   secret,
		CreatedAtMs: stored.CreatedAtMs,
	}, nil
}

func createIdentity(path string) (*DeviceIdentity, error) {
	pub, secret, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("identity: generate key: %w", err)
	}
	deviceID := deviceIDFromPublicKey(pub)
	stored := IdentityFile{
		Version:   identityFileVersion,
		DeviceID:  deviceID,
		PublicKey: cryptoutil.ToBase64URL(pub),
		SecretKey: cryptoutil.ToBase64URL(secret.Seed()),
	}
	if err := writeIdentityFile(path, stored); err != nil {
		return nil, err
	}
	return &DeviceIdentity{
		DeviceID:  deviceID,
		PublicKey: pub,
		SecretKey: secret,
	}, nil
}

// writeIdentityFile writes the identity file atomically: write to a temp
// file in the same directory, fsync it, then rename over the target.
func writeIdentityFile(path string, stored IdentityFile) error {
	encoded, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return fmt.Errorf("identity: marshal: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("identity: create dir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".device-*.json.tmp")
	if err != nil {
		return fmt.Errorf("identity: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(encoded); err != nil {
		tmp.Close()
		return fmt.Errorf("identity: write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("identity: sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("identity: close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o600); err != nil {
		return fmt.Errorf("identity: chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("identity: rename into place: %w", err)
	}
	return nil
}

// Sign produces a detached 64-byte Ed25519 signature over payload, encoded
// as base64url.
func (d *DeviceIdentity) Sign(payload string) string {
	sig := ed25519.Sign(d.SecretKey, []byte(payload))
	return cryptoutil.ToBase64URL(sig)
}

// PublicKeyRawBase64Url returns the raw 32-byte public key, base64url
// encoded.
func (d *DeviceIdentity) PublicKeyRawBase64Url() string {
	return cryptoutil.ToBase64URL(d.PublicKey)
}

// BuildDeviceAuthPayloadV3 builds the canonical v3 pipe-joined signing
// payload: v3|deviceId|clientId|clientMode|role|scopes_csv|signedAtMs|token|
// nonce|platform_norm|deviceFamily_norm. Platform and device family are
// normalized (trimmed, lowercased) before inclusion, matching the gateway's
// verification side.
func BuildDeviceAuthPayloadV3(
	deviceID, clientID, clientMode, role string,
	scopes []string,
	signedAtMs int64,
	token, nonce, platform, deviceFamily string,
) string {
	fields := []string{
		"v3",
		deviceID,
		clientID,
		clientMode,
		role,
		strings.Join(scopes, ","),
		strconv.FormatInt(signedAtMs, 10),
		token,
		nonce,
		cryptoutil.NormalizeMetadataForAuth(platform),
		cryptoutil.NormalizeMetadataForAuth(deviceFamily),
	}
	return strings.Join(fields, "|")
}
