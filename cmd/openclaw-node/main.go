// Command openclaw-node is the headless endpoint agent: it enrolls with a
// gateway over a persistent WebSocket session and services remote
// capability invocations until the session ends.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/openclaw/openclaw-node/internal/config"
	"github.com/openclaw/openclaw-node/internal/cryptoutil"
	"github.com/openclaw/openclaw-node/internal/gateway"
	"github.com/openclaw/openclaw-node/internal/identity"
	"github.com/openclaw/openclaw-node/internal/lock"
	"github.com/openclaw/openclaw-node/internal/node"
	"github.com/openclaw/openclaw-node/internal/tailnet"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "openclaw-node: %v\n", err)
		return node.ExitFatalBeforeRegister
	}

	setupLogger("info")

	stateDir := defaultStateDir()
	handle, err := lock.Acquire(stateDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "openclaw-node: %v\n", err)
		return node.ExitFatalBeforeRegister
	}
	defer func() { _ = handle.Release() }()

	if err := cryptoutil.SecretBoxSelfTest(); err != nil {
		log.Error().Err(err).Msg("openclaw-node: secretbox self-test failed")
		return node.ExitFatalBeforeRegister
	}

	identityPath := opts.IdentityPath
	if identityPath == "" {
		identityPath = filepath.Join(stateDir, "identity", "device.json")
	}
	id, err := identity.LoadOrCreateIdentity(identityPath)
	if err != nil {
		log.Error().Err(err).Msg("openclaw-node: failed to load or create identity")
		return node.ExitFatalBeforeRegister
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var dialer gateway.DialContextFunc
	if opts.Overlay != "" {
		tail := tailnet.New(tailnet.Config{
			Hostname: opts.NodeID,
			StateDir: opts.Overlay,
			Logger:   log.Logger,
		})
		defer func() { _ = tail.Close() }()
		if err := tail.Up(ctx); err != nil {
			log.Error().Err(err).Msg("openclaw-node: overlay tailnet failed to come up")
			return node.ExitFatalBeforeRegister
		}
		dialer = tail.DialContext
	}

	app := node.New(opts, id, log.Logger, dialer)
	return app.Run(ctx)
}

func setupLogger(level string) {
	zerolog.TimeFieldFormat = time.RFC3339
	if parsed, err := zerolog.ParseLevel(level); err == nil {
		log.Logger = log.Logger.Level(parsed)
	}
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".jqopenclaw")
	}
	return filepath.Join(home, ".jqopenclaw")
}
