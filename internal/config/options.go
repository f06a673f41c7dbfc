// Package config loads NodeOptions from CLI flags and an optional JSON
// config file, CLI taking precedence. This layer is intentionally thin:
// out of scope for deep engineering, it stays a contract-shaped mirror of
// the wire/CLI surface.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// NodeOptions is the immutable configuration snapshot validated once at
// startup.
type NodeOptions struct {
	Host             string `json:"host"`
	Port             int    `json:"port"`
	Token            string `json:"token"`
	TLS              bool   `json:"tls"`
	TLSFingerprint   string `json:"tlsFingerprint"`
	DisplayName      string `json:"displayName"`
	NodeID           string `json:"nodeId"`
	IdentityPath     string `json:"identityPath"`
	FileServerURI    string `json:"fileServerUri"`
	FileServerToken  string `json:"fileServerToken"`
	DeviceFamily     string `json:"deviceFamily"`
	ExitAfterRegister bool  `json:"exitAfterRegister"`
	Overlay          string `json:"overlay"`
}

func defaults() NodeOptions {
	return NodeOptions{DeviceFamily: "windows-pc"}
}

// Load parses CLI flags from args, merges an optional --config JSON file
// underneath them (CLI overrides file), and validates the result.
func Load(args []string) (NodeOptions, error) {
	fs := flag.NewFlagSet("openclaw-node", flag.ContinueOnError)
	var (
		configPath        = fs.String("config", "", "path to JSON config file")
		host              = fs.String("host", "", "gateway host")
		port              = fs.Int("port", 0, "gateway port")
		token             = fs.String("token", "", "gateway auth token")
		tlsFlag           = fs.Bool("tls", false, "use TLS")
		tlsFingerprint    = fs.String("tls-fingerprint", "", "pinned TLS certificate SHA-256 fingerprint")
		displayName       = fs.String("display-name", "", "node display name")
		nodeID            = fs.String("node-id", "", "node instance id")
		identityPath      = fs.String("identity-path", "", "identity file path")
		fileServerURI     = fs.String("file-server-uri", "", "screenshot upload base URI")
		fileServerToken   = fs.String("file-server-token", "", "screenshot upload bearer token")
		deviceFamily      = fs.String("device-family", "", "device family string")
		exitAfterRegister = fs.Bool("exit-after-register", false, "exit 0 immediately after registration")
		overlay           = fs.String("overlay", "", "tsnet state directory; when set, dial the gateway through an embedded tailnet node")
	)
	if err := fs.Parse(args); err != nil {
		return NodeOptions{}, err
	}

	opts := defaults()
	if *configPath != "" {
		fromFile, err := loadFile(*configPath)
		if err != nil {
			return NodeOptions{}, fmt.Errorf("config: %w", err)
		}
		opts = fromFile
	}

	applyOverride(&opts.Host, *host)
	if *port != 0 {
		opts.Port = *port
	}
	applyOverride(&opts.Token, *token)
	if *tlsFlag {
		opts.TLS = true
	}
	applyOverride(&opts.TLSFingerprint, *tlsFingerprint)
	applyOverride(&opts.DisplayName, *displayName)
	applyOverride(&opts.NodeID, *nodeID)
	applyOverride(&opts.IdentityPath, *identityPath)
	applyOverride(&opts.FileServerURI, *fileServerURI)
	applyOverride(&opts.FileServerToken, *fileServerToken)
	applyOverride(&opts.DeviceFamily, *deviceFamily)
	applyOverride(&opts.Overlay, *overlay)
	if *exitAfterRegister {
		opts.ExitAfterRegister = true
	}

	if err := Validate(opts); err != nil {
		return NodeOptions{}, err
	}
	return opts, nil
}

func applyOverride(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func loadFile(path string) (NodeOptions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return NodeOptions{}, err
	}
	opts := defaults()
	if err := json.Unmarshal(data, &opts); err != nil {
		return NodeOptions{}, err
	}
	return opts, nil
}

// Validate enforces the CLI/config validation rules: host/port/token
// required and non-empty; port in range; tlsFingerprint requires tls;
// fileServerToken requires fileServerUri; fileServerUri must parse with a
// scheme and host.
func Validate(opts NodeOptions) error {
	if strings.TrimSpace(opts.Host) == "" {
		return errors.New("config: host is required")
	}
	if opts.Port < 1 || opts.Port > 65535 {
		return fmt.Errorf("config: port must be in [1,65535], got %d", opts.Port)
	}
	if strings.TrimSpace(opts.Token) == "" {
		return errors.New("config: token is required")
	}
	if opts.TLSFingerprint != "" && !opts.TLS {
		return errors.New("config: tls-fingerprint requires tls")
	}
	if opts.FileServerToken != "" && opts.FileServerURI == "" {
		return errors.New("config: file-server-token requires file-server-uri")
	}
	if opts.FileServerURI != "" {
		u, err := url.Parse(opts.FileServerURI)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return errors.New("config: file-server-uri must be an absolute URL with scheme and host")
		}
	}
	return nil
}
