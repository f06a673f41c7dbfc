// Package tailnet wires an embedded tsnet node into the gateway dial path,
// so the WebSocket session can be routed over a private WireGuard mesh
// instead of a direct socket.
package tailnet

import (
	"context"
	"net"

	"github.com/rs/zerolog"
	"tailscale.com/tsnet"
)

// Config configures the embedded tsnet server.
type Config struct {
	Hostname string
	StateDir string
	AuthKey  string
	Logger   zerolog.Logger
}

// Server wraps a tsnet.Server, exposing only what GatewayClient needs: a
// dial function and an explicit Up/Close lifecycle.
type Server struct {
	srv *tsnet.Server
}

// New constructs a Server; it does not bring the tailnet up.
func New(cfg Config) *Server {
	logger := cfg.Logger
	return &Server{
		srv: &tsnet.Server{
			Hostname: cfg.Hostname,
			Dir:      cfg.StateDir,
			AuthKey:  cfg.AuthKey,
			Logf: func(format string, args ...interface{}) {
				logger.Debug().Msgf(format, args...)
			},
		},
	}
}

// DialContext satisfies gateway.DialContextFunc, routing connections
// through the tailnet instead of a direct network dial.
func (s *Server) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	return s.srv.Dial(ctx, network, address)
}

// Up blocks until the tailnet node is authenticated and running.
func (s *Server) Up(ctx context.Context) error {
	_, err := s.srv.Up(ctx)
	return err
}

// Close tears down the tailnet node, releasing its state directory lock.
func (s *Server) Close() error {
	return s.srv.Close()
}
