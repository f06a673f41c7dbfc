// Package lock implements the single-instance guard: at most one process
// holding the node's lock token runs at a time. Contention exits
// immediately with a message rather than queuing or retrying.
package lock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nightlyone/lockfile"
)

// Token is the fixed lock identity this node's instances contend on.
const Token = "8a6f4ab6-68d7-4a09-9e89-0e651f573b69"

// ErrAlreadyRunning is returned by Acquire when another instance already
// holds the lock.
var ErrAlreadyRunning = fmt.Errorf("openclaw-node: another instance is already running (lock %s)", Token)

// Handle is a held single-instance lock; call Release to give it up.
type Handle struct {
	lf lockfile.Lockfile
}

// Acquire attempts to take the single-instance lock in the given state
// directory, named after Token so contention is scoped to this node
// identity. Returns ErrAlreadyRunning if another live process holds it.
func Acquire(stateDir string) (*Handle, error) {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, fmt.Errorf("lock: create state dir: %w", err)
	}
	path := filepath.Join(stateDir, Token+".lock")
	lf, err := lockfile.New(path)
	if err != nil {
		return nil, fmt.Errorf("lock: init: %w", err)
	}
	if err := lf.TryLock(); err != nil {
		if err == lockfile.ErrBusy {
			return nil, ErrAlreadyRunning
		}
		return nil, fmt.Errorf("lock: acquire: %w", err)
	}
	return &Handle{lf: lf}, nil
}

// Release gives up the lock.
func (h *Handle) Release() error {
	return h.lf.Unlock()
}
