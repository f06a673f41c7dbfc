package main

import (
	"strings"
	"testing"
)

func TestDefaultStateDirNonEmpty(t *testing.T) {
	dir := defaultStateDir()
	if dir == "" {
		t.Fatalf("expected non-empty default state dir")
	}
	if !strings.Contains(dir, ".jqopenclaw") {
		t.Fatalf("expected state dir under .jqopenclaw, got %q", dir)
	}
}

func TestSetupLoggerAcceptsKnownLevel(t *testing.T) {
	setupLogger("debug")
	setupLogger("not-a-real-level")
}
