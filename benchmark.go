package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// Benchmark executes adapter invocations one at a time under a fixed wall
// clock budget. Runs are strictly sequential: concurrent subprocesses would
// contend for the GPU and skew the total time measurements.
type Benchmark struct {
	Timeout time.Duration
	Dir     string // working directory the commands run in
}

// Invocation is the raw outcome of a single subprocess run. TotalTime is
// always measured, including the timeout and launch failure paths.
type Invocation struct {
	ExitCode  int
	Stdout    string
	Stderr    string
	TotalTime float64 // seconds
	TimedOut  bool
	Err       error // set on timeout or when the process could not be run
}

func (i Invocation) Succeeded() bool { return i.Err == nil && i.ExitCode == 0 }

// FailureReason returns the most specific description of what went wrong:
// the launch or timeout error when there is one, otherwise whatever the
// subprocess printed to stderr.
func (i Invocation) FailureReason() string {
	if i.Err != nil {
		return i.Err.Error()
	}
	return i.Stderr
}

// RunCmd runs argv with the given environment and captures its output. A nil
// environ inherits the parent environment. Failures of any kind end up in the
// returned Invocation; the caller decides whether they are fatal.
func (b *Benchmark) RunCmd(argv []string, environ []string) Invocation {
	ctx, cancel := context.WithTimeout(context.Background(), b.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = b.Dir
	cmd.Env = environ
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	invocation := Invocation{
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		TotalTime: elapsed.Seconds(),
	}
	if ctx.Err() == context.DeadlineExceeded {
		invocation.ExitCode = -1
		invocation.TimedOut = true
		invocation.Err = fmt.Errorf("command timed out after %v", b.Timeout)
		return invocation
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			invocation.ExitCode = exitErr.ExitCode()
		} else {
			invocation.ExitCode = -1
			invocation.Err = err
		}
	}
	return invocation
}
