package tailnet

import "testing"

func TestNewServer(t *testing.T) {
	s := New(Config{Hostname: "openclaw-node", StateDir: "/tmp"})
	if s == nil || s.srv == nil {
		t.Fatalf("expected constructed server")
	}
	if s.srv.Hostname != "openclaw-node" {
		t.Fatalf("unexpected hostname: %s", s.srv.Hostname)
	}
}
