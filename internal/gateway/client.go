package gateway

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/openclaw/openclaw-node/internal/cryptoutil"
)

// SocketState is the gateway session's connection state.
type SocketState int

const (
	StateIdle SocketState = iota
	StateOpening
	StateOpen
	StateClosing
	StateClosed
)

func (s SocketState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOpening:
		return "opening"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// DialContextFunc dials the underlying transport; swap in a tailnet dialer
// to route the connection through an embedded private-network node.
type DialContextFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// wsConn is the minimal surface Client needs from a WebSocket connection,
// narrow enough to fake in tests.
type wsConn interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, p []byte, err error)
	SetWriteDeadline(t time.Time) error
	SetReadDeadline(t time.Time) error
	SetReadLimit(limit int64)
	Close() error
	PeerCertificateSHA256() (string, bool)
}

// realConn adapts *websocket.Conn to wsConn, adding peer-certificate
// fingerprint access for TLS pinning.
type realConn struct {
	*websocket.Conn
}

func (r *realConn) PeerCertificateSHA256() (string, bool) {
	tlsConn, ok := r.UnderlyingConn().(*tls.Conn)
	if !ok {
		return "", false
	}
	state := tlsConn.ConnectionState()
	if len(state.PeerCertificates) == 0 {
		return "", false
	}
	sum := sha256.Sum256(state.PeerCertificates[0].Raw)
	return hex.EncodeToString(sum[:]), true
}

// Handlers are the signals C7 emits; NodeApplication (C8) is the sole
// consumer. Each is optional; a nil handler drops the signal silently.
type Handlers struct {
	OnOpened                func()
	OnClosed                func(err error)
	OnChallengeReceived     func(nonce string)
	OnInvokeRequestReceived func(payload InvokePayload)
	OnConnectAccepted       func(payload json.RawMessage)
	OnConnectRejected       func(gwErr *GatewayError)
	OnTransportError        func(msg string)
}

// Config configures a Client.
type Config struct {
	URL            string
	TLS            bool
	TLSFingerprint string
	Header         http.Header
	Dialer         DialContextFunc
	Logger         zerolog.Logger
	Handlers       Handlers
}

// Client is the gateway session's WebSocket transport: framing, the single
// connect-request correlation slot, TLS fingerprint pinning, and signal
// fan-out to the application layer.
type Client struct {
	url            string
	tlsEnabled     bool
	tlsFingerprint string
	header         http.Header
	dialer         DialContextFunc
	logger         zerolog.Logger
	handlers       Handlers

	mu                  sync.Mutex
	state               SocketState
	conn                wsConn
	pendingConnectReqID string
	registered          bool

	writeMu sync.Mutex
}

// New constructs a Client in the Idle state.
func New(cfg Config) *Client {
	return &Client{
		url:            cfg.URL,
		tlsEnabled:     cfg.TLS,
		tlsFingerprint: cryptoutil.NormalizeFingerprint(cfg.TLSFingerprint),
		header:         cfg.Header,
		dialer:         cfg.Dialer,
		logger:         cfg.Logger,
		handlers:       cfg.Handlers,
		state:          StateIdle,
	}
}

// State returns the current socket state.
func (c *Client) State() SocketState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Registered reports whether a connect request has been accepted.
func (c *Client) Registered() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registered
}

func (c *Client) setState(s SocketState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Open dials the gateway, performs TLS fingerprint pinning when configured,
// and starts the read loop. It blocks until the socket reaches Open (or
// fails pinning), then returns; frame dispatch continues on a background
// goroutine until the connection closes.
func (c *Client) Open(ctx context.Context) error {
	c.setState(StateOpening)

	dialer := c.dialer
	if dialer == nil {
		dialer = (&net.Dialer{}).DialContext
	}

	wsDialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: 10 * time.Second,
		NetDialContext:   dialer,
	}
	if c.tlsEnabled && c.tlsFingerprint != "" {
		wsDialer.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // trust delegated to the pin below
	}

	conn, _, err := wsDialer.DialContext(ctx, c.url, c.header)
	if err != nil {
		c.emitTransportError(fmt.Sprintf("dial failed: %v", err))
		c.setState(StateClosed)
		return err
	}
	wrapped := &realConn{conn}
	wrapped.SetReadLimit(8 << 20)

	if c.tlsEnabled && c.tlsFingerprint != "" {
		peerFingerprint, ok := wrapped.PeerCertificateSHA256()
		if !ok || cryptoutil.NormalizeFingerprint(peerFingerprint) != c.tlsFingerprint {
			c.emitTransportError("TLS certificate fingerprint mismatch")
			c.setState(StateClosing)
			_ = wrapped.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "fingerprint mismatch"))
			_ = wrapped.Close()
			c.setState(StateClosed)
			return errors.New("gateway: TLS certificate fingerprint mismatch")
		}
	}

	c.setConn(wrapped)
	c.setState(StateOpen)
	if c.handlers.OnOpened != nil {
		c.handlers.OnOpened()
	}
	go c.readLoop(ctx)
	return nil
}

func (c *Client) setConn(conn wsConn) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
}

func (c *Client) getConn() wsConn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}

func (c *Client) emitTransportError(msg string) {
	c.logger.Warn().Msg("gateway: " + msg)
	if c.handlers.OnTransportError != nil {
		c.handlers.OnTransportError(msg)
	}
}

// SendConnect transmits a framed "connect" request, recording its id as the
// single pending connect correlation slot. Fails if the socket is not Open.
func (c *Client) SendConnect(ctx context.Context, params ConnectParams) error {
	if c.State() != StateOpen {
		c.emitTransportError("sendConnect called while socket not open")
		return errors.New("gateway: socket not open")
	}
	id := uuid.NewString()
	payload, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("gateway: marshal connect params: %w", err)
	}
	c.mu.Lock()
	c.pendingConnectReqID = id
	c.mu.Unlock()
	frame := RequestFrame{Type: "req", ID: id, Method: "connect", Params: payload}
	return c.sendFrame(frame)
}

// SendInvokeResult transmits a framed "node.invoke.result" request,
// fire-and-forget (no response correlation). Fails if the socket is not
// Open.
func (c *Client) SendInvokeResult(ctx context.Context, params InvokeResultParams) error {
	if c.State() != StateOpen {
		c.emitTransportError("sendInvokeResult called while socket not open")
		return errors.New("gateway: socket not open")
	}
	payload, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("gateway: marshal invoke result: %w", err)
	}
	frame := RequestFrame{Type: "req", ID: uuid.NewString(), Method: "node.invoke.result", Params: payload}
	return c.sendFrame(frame)
}

func (c *Client) sendFrame(frame RequestFrame) error {
	conn := c.getConn()
	if conn == nil {
		return errors.New("gateway: no connection")
	}
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, data)
}

// Close initiates an application-driven close of the socket.
func (c *Client) Close() error {
	c.setState(StateClosing)
	conn := c.getConn()
	if conn == nil {
		c.setState(StateClosed)
		return nil
	}
	err := conn.Close()
	c.setState(StateClosed)
	return err
}

func (c *Client) readLoop(ctx context.Context) {
	conn := c.getConn()
	var loopErr error
	for {
		if ctx.Err() != nil {
			loopErr = ctx.Err()
			break
		}
		_, data, err := conn.ReadMessage()
		if err != nil {
			loopErr = err
			break
		}
		c.dispatchFrame(data)
	}
	c.setState(StateClosed)
	if loopErr != nil && !errors.Is(loopErr, context.Canceled) {
		c.emitTransportError(loopErr.Error())
	}
	if c.handlers.OnClosed != nil {
		c.handlers.OnClosed(loopErr)
	}
}

func (c *Client) dispatchFrame(data []byte) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		c.emitTransportError("malformed frame: not a JSON object")
		return
	}
	switch probe.Type {
	case "event":
		c.dispatchEvent(data)
	case "res":
		c.dispatchResponse(data)
	default:
		// unknown frame type dropped
	}
}

func (c *Client) dispatchEvent(data []byte) {
	var evt EventFrame
	if err := json.Unmarshal(data, &evt); err != nil {
		c.emitTransportError("malformed event frame")
		return
	}
	switch evt.Event {
	case "connect.challenge":
		var payload ChallengePayload
		if err := json.Unmarshal(evt.Payload, &payload); err != nil {
			c.emitTransportError("malformed connect.challenge payload")
			return
		}
		nonce := strings.TrimSpace(payload.Nonce)
		if nonce == "" {
			c.emitTransportError("connect.challenge missing nonce")
			return
		}
		if c.handlers.OnChallengeReceived != nil {
			c.handlers.OnChallengeReceived(nonce)
		}
	case "node.invoke.request":
		var payload InvokePayload
		if err := json.Unmarshal(evt.Payload, &payload); err != nil {
			c.logger.Warn().Err(err).Msg("gateway: dropping malformed invoke envelope")
			return
		}
		if strings.TrimSpace(payload.ID) == "" || strings.TrimSpace(payload.NodeID) == "" || strings.TrimSpace(payload.Command) == "" {
			c.logger.Warn().Msg("gateway: dropping invoke envelope with missing id/nodeId/command")
			return
		}
		if c.handlers.OnInvokeRequestReceived != nil {
			c.handlers.OnInvokeRequestReceived(payload)
		}
	default:
		// other events are dropped
	}
}

func (c *Client) dispatchResponse(data []byte) {
	var res ResponseFrame
	if err := json.Unmarshal(data, &res); err != nil {
		c.emitTransportError("malformed response frame")
		return
	}
	c.mu.Lock()
	pending := c.pendingConnectReqID
	if res.ID != pending || pending == "" {
		c.mu.Unlock()
		return
	}
	c.pendingConnectReqID = ""
	if res.OK {
		c.registered = true
	}
	c.mu.Unlock()

	if res.OK {
		if c.handlers.OnConnectAccepted != nil {
			c.handlers.OnConnectAccepted(res.Payload)
		}
		return
	}
	if c.handlers.OnConnectRejected != nil {
		c.handlers.OnConnectRejected(res.Error)
	}
}
