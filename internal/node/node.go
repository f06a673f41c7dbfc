// Package node implements the session lifecycle and invoke dispatcher:
// the sole consumer of gateway.Client's signals, and the sole caller of
// the capability implementations.
package node

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/openclaw/openclaw-node/internal/config"
	"github.com/openclaw/openclaw-node/internal/gateway"
	"github.com/openclaw/openclaw-node/internal/identity"
	"github.com/openclaw/openclaw-node/internal/profile"
)

// Exit codes per the session lifecycle contract.
const (
	ExitOK                   = 0
	ExitFatalBeforeRegister  = 1
	ExitConnectRejected      = 2
	ExitDisconnectedAfterReg = 3
)

// Application owns the session state machine and the invoke dispatcher.
// It is the sole caller of gateway.Client's Send* methods and the sole
// consumer of its Handlers signals.
type Application struct {
	opts     config.NodeOptions
	identity *identity.DeviceIdentity
	profile  profile.Profile
	logger   zerolog.Logger
	client   *gateway.Client

	dispatch map[string]invokeHandler

	mu         sync.Mutex
	registered bool

	done chan int
}

// New constructs an Application and its GatewayClient, wiring the five
// event handlers. It does not open the socket; call Run for that.
func New(opts config.NodeOptions, id *identity.DeviceIdentity, logger zerolog.Logger, dialer gateway.DialContextFunc) *Application {
	app := &Application{
		opts:     opts,
		identity: id,
		profile:  profile.New(),
		logger:   logger,
		done:     make(chan int, 1),
	}
	app.dispatch = app.buildDispatchTable()

	scheme := "ws"
	if opts.TLS {
		scheme = "wss"
	}
	app.client = gateway.New(gateway.Config{
		URL:            fmt.Sprintf("%s://%s:%d", scheme, opts.Host, opts.Port),
		TLS:            opts.TLS,
		TLSFingerprint: opts.TLSFingerprint,
		Dialer:         dialer,
		Logger:         logger,
		Handlers: gateway.Handlers{
			OnChallengeReceived:     app.onChallengeReceived,
			OnConnectAccepted:       app.onConnectAccepted,
			OnConnectRejected:       app.onConnectRejected,
			OnInvokeRequestReceived: app.onInvokeRequestReceived,
			OnTransportError:        app.onTransportError,
			OnClosed:                app.onClosed,
		},
	})
	return app
}

// Run opens the gateway socket and blocks until the session reaches one
// of its terminal states, returning the resulting exit code.
func (a *Application) Run(ctx context.Context) int {
	if err := a.client.Open(ctx); err != nil {
		a.logger.Error().Err(err).Msg("node: failed to open gateway session")
		return ExitFatalBeforeRegister
	}
	select {
	case code := <-a.done:
		return code
	case <-ctx.Done():
		_ = a.client.Close()
		return ExitFatalBeforeRegister
	}
}

func (a *Application) finish(code int) {
	select {
	case a.done <- code:
	default:
	}
}

func (a *Application) isRegistered() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.registered
}

func (a *Application) setRegistered(v bool) {
	a.mu.Lock()
	a.registered = v
	a.mu.Unlock()
}

func (a *Application) onChallengeReceived(nonce string) {
	params, err := gateway.BuildConnectParams(a.identity, nonce, gateway.RegistrarOptions{
		Token:        a.opts.Token,
		DisplayName:  a.opts.DisplayName,
		NodeID:       a.opts.NodeID,
		DeviceFamily: a.opts.DeviceFamily,
	}, a.profile)
	if err != nil {
		a.logger.Error().Err(err).Msg("node: failed to build connect params")
		a.finish(ExitFatalBeforeRegister)
		return
	}
	if err := a.client.SendConnect(context.Background(), params); err != nil {
		a.logger.Error().Err(err).Msg("node: failed to send connect request")
		a.finish(ExitFatalBeforeRegister)
	}
}

func (a *Application) onConnectAccepted(payloadRaw json.RawMessage) {
	a.setRegistered(true)
	a.logger.Info().Msg("node: registered with gateway")
	if a.opts.ExitAfterRegister {
		a.finish(ExitOK)
	}
}

func (a *Application) onConnectRejected(gwErr *gateway.GatewayError) {
	message := "unknown connect error"
	if gwErr != nil && strings.TrimSpace(gwErr.Message) != "" {
		message = gwErr.Message
	}
	a.logger.Error().Str("message", message).Msg("node: gateway connect rejected")
	a.finish(ExitConnectRejected)
}

func (a *Application) onTransportError(msg string) {
	a.logger.Warn().Str("error", msg).Msg("node: transport error")
	if !a.isRegistered() {
		a.finish(ExitFatalBeforeRegister)
	}
}

func (a *Application) onClosed(err error) {
	if !a.isRegistered() {
		a.finish(ExitFatalBeforeRegister)
		return
	}
	if !a.opts.ExitAfterRegister {
		a.finish(ExitDisconnectedAfterReg)
	}
}
