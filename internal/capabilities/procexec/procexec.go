// Package procexec implements the process.exec capability: spawn a
// program (never through a shell), bound its lifetime with start/run/kill
// budgets, and report a structured result or a typed failure.
//
// Budgets and the resultClass/processErrorName taxonomies are grounded on
// the richer processexec.cpp variant: program+arguments only (no shell
// "command" string mode), clamped timeoutMs, merge-channels and
// environment-inheritance options.
package procexec

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/openclaw/openclaw-node/internal/capabilities"
)

const (
	startTimeoutMs   = 5000
	defaultTimeoutMs = 30000
	minTimeoutMs     = 100
	maxTimeoutMs     = 300000
	killWaitTimeout  = 3 * time.Second
)

type execParams struct {
	Program            string            `json:"program"`
	Arguments          []string          `json:"arguments"`
	WorkingDirectory   string            `json:"workingDirectory"`
	Stdin              string            `json:"stdin"`
	TimeoutMs          *int              `json:"timeoutMs"`
	MergeChannels      bool              `json:"mergeChannels"`
	Environment        map[string]string `json:"environment"`
	InheritEnvironment *bool             `json:"inheritEnvironment"`
}

// Result is the process.exec payload shape on success and on most
// failures (resultClass distinguishes timeout/crash/non_zero_exit/ok).
type Result struct {
	Program          string `json:"program"`
	Arguments        []string `json:"arguments"`
	WorkingDirectory string `json:"workingDirectory,omitempty"`
	TimeoutMs        int    `json:"timeoutMs"`
	ElapsedMs        int64  `json:"elapsedMs"`
	TimedOut         bool   `json:"timedOut"`
	ExitCode         int    `json:"exitCode"`
	ExitStatus       string `json:"exitStatus"`
	Stdout           string `json:"stdout"`
	Stderr           string `json:"stderr,omitempty"`
	OK               bool   `json:"ok"`
	ResultClass      string `json:"resultClass"`

	ProcessError       string `json:"processError,omitempty"`
	ProcessErrorName   string `json:"processErrorName,omitempty"`
	ProcessErrorString string `json:"processErrorString,omitempty"`
}

// resultClass values.
const (
	ClassOK          = "ok"
	ClassTimeout     = "timeout"
	ClassCrash       = "crash"
	ClassNonZeroExit = "non_zero_exit"
)

// processErrorName values.
const (
	ErrFailedToStart = "failed_to_start"
	ErrCrashed       = "crashed"
	ErrTimedOut      = "timed_out"
	ErrReadError     = "read_error"
	ErrWriteError    = "write_error"
	ErrUnknown       = "unknown"
)

// Exec implements process.exec.
func Exec(ctx context.Context, raw json.RawMessage) (interface{}, *capabilities.Error) {
	var p execParams
	if len(raw) == 0 {
		return nil, capabilities.InvalidParams("missing params")
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, capabilities.InvalidParams("malformed params: " + err.Error())
	}
	if p.Program == "" {
		return nil, capabilities.InvalidParams("program is required")
	}

	timeoutMs := defaultTimeoutMs
	if p.TimeoutMs != nil {
		timeoutMs = *p.TimeoutMs
	}
	if timeoutMs < minTimeoutMs {
		timeoutMs = minTimeoutMs
	}
	if timeoutMs > maxTimeoutMs {
		timeoutMs = maxTimeoutMs
	}

	runCtx, cancel := context.WithTimeout(ctx, time.Duration(startTimeoutMs+timeoutMs)*time.Millisecond)
	defer cancel()

	cmd := exec.CommandContext(runCtx, p.Program, p.Arguments...)
	// WaitDelay bounds how long Wait lingers for the child's stdout/stderr
	// pipes to drain after the context deadline kills it; past this it
	// force closes the pipes so Wait returns instead of blocking forever.
	cmd.WaitDelay = killWaitTimeout
	if p.WorkingDirectory != "" {
		cmd.Dir = p.WorkingDirectory
	}
	if p.Stdin != "" {
		cmd.Stdin = bytes.NewBufferString(p.Stdin)
	}

	inherit := true
	if p.InheritEnvironment != nil {
		inherit = *p.InheritEnvironment
	}
	cmd.Env = buildEnv(inherit, p.Environment)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	if p.MergeChannels {
		cmd.Stderr = &stdout
	} else {
		cmd.Stderr = &stderr
	}

	start := time.Now()
	err := cmd.Start()
	if err != nil {
		return resultForStartFailure(p, timeoutMs, err), nil
	}

	waitErr := cmd.Wait()
	elapsed := time.Since(start)

	res := Result{
		Program:          p.Program,
		Arguments:        p.Arguments,
		WorkingDirectory: p.WorkingDirectory,
		TimeoutMs:        timeoutMs,
		ElapsedMs:        elapsed.Milliseconds(),
		Stdout:           stdout.String(),
	}
	if !p.MergeChannels {
		res.Stderr = stderr.String()
	}

	if runCtx.Err() == context.DeadlineExceeded {
		res.TimedOut = true
		res.OK = false
		res.ResultClass = ClassTimeout
		res.ProcessError = "timeout"
		res.ProcessErrorName = ErrTimedOut
		res.ProcessErrorString = "process timed out and was killed"
		res.ExitStatus = "killed"
		return res, nil
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			if exitErr.ExitCode() < 0 {
				res.OK = false
				res.ResultClass = ClassCrash
				res.ExitStatus = "crashed"
				res.ProcessError = "crash"
				res.ProcessErrorName = ErrCrashed
				res.ProcessErrorString = exitErr.Error()
				return res, nil
			}
			res.OK = false
			res.ResultClass = ClassNonZeroExit
			res.ExitStatus = "exited"
			return res, nil
		}
		res.OK = false
		res.ResultClass = ClassCrash
		res.ExitStatus = "error"
		res.ProcessError = "wait_failed"
		res.ProcessErrorName = ErrUnknown
		res.ProcessErrorString = waitErr.Error()
		return res, nil
	}

	res.OK = true
	res.ResultClass = ClassOK
	res.ExitStatus = "exited"
	return res, nil
}

func resultForStartFailure(p execParams, timeoutMs int, err error) Result {
	return Result{
		Program:            p.Program,
		Arguments:          p.Arguments,
		WorkingDirectory:   p.WorkingDirectory,
		TimeoutMs:          timeoutMs,
		OK:                 false,
		ResultClass:        ClassCrash,
		ProcessError:       "failed_to_start",
		ProcessErrorName:   ErrFailedToStart,
		ProcessErrorString: fmt.Sprintf("failed to start process: %v", err),
	}
}

func buildEnv(inherit bool, overrides map[string]string) []string {
	var env []string
	if inherit {
		env = append(env, defaultEnviron()...)
	}
	for k, v := range overrides {
		env = append(env, k+"="+v)
	}
	return env
}
