package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRunCmdCapturesOutput(t *testing.T) {
	bench := Benchmark{Timeout: 5 * time.Second}
	invocation := bench.RunCmd([]string{"sh", "-c", "echo out; echo err >&2"}, nil)
	require.True(t, invocation.Succeeded())
	require.Equal(t, 0, invocation.ExitCode)
	require.Equal(t, "out\n", invocation.Stdout)
	require.Equal(t, "err\n", invocation.Stderr)
	require.Greater(t, invocation.TotalTime, 0.0)
	require.False(t, invocation.TimedOut)
}

func TestRunCmdExitCode(t *testing.T) {
	bench := Benchmark{Timeout: 5 * time.Second}
	invocation := bench.RunCmd([]string{"sh", "-c", "exit 3"}, nil)
	require.False(t, invocation.Succeeded())
	require.Equal(t, 3, invocation.ExitCode)
	require.Nil(t, invocation.Err)
}

func TestRunCmdTimeout(t *testing.T) {
	bench := Benchmark{Timeout: 100 * time.Millisecond}
	invocation := bench.RunCmd([]string{"sleep", "5"}, nil)
	require.False(t, invocation.Succeeded())
	require.True(t, invocation.TimedOut)
	require.Equal(t, -1, invocation.ExitCode)
	require.ErrorContains(t, invocation.Err, "timed out")
	require.Less(t, invocation.TotalTime, 5.0)
}

func TestRunCmdLaunchFailure(t *testing.T) {
	bench := Benchmark{Timeout: time.Second}
	invocation := bench.RunCmd([]string{"./no-such-binary-here"}, nil)
	require.False(t, invocation.Succeeded())
	require.Equal(t, -1, invocation.ExitCode)
	require.NotNil(t, invocation.Err)
	require.False(t, invocation.TimedOut)
}

func TestRunCmdEnviron(t *testing.T) {
	bench := Benchmark{Timeout: 5 * time.Second}
	environ := []string{"BENCH_MARKER=42", "PATH=" + os.Getenv("PATH")}
	invocation := bench.RunCmd([]string{"sh", "-c", "echo $BENCH_MARKER"}, environ)
	require.True(t, invocation.Succeeded())
	require.Equal(t, "42\n", invocation.Stdout)
}

func TestRunCmdDir(t *testing.T) {
	dir := t.TempDir()
	resolved, err := filepath.EvalSymlinks(dir)
	require.Nil(t, err)

	bench := Benchmark{Timeout: 5 * time.Second, Dir: dir}
	invocation := bench.RunCmd([]string{"pwd"}, nil)
	require.True(t, invocation.Succeeded())
	require.Equal(t, resolved, strings.TrimSpace(invocation.Stdout))
}

func TestFailureReason(t *testing.T) {
	bench := Benchmark{Timeout: 5 * time.Second}
	invocation := bench.RunCmd([]string{"sh", "-c", "echo boom >&2; exit 1"}, nil)
	require.Equal(t, "boom\n", invocation.FailureReason())

	invocation = bench.RunCmd([]string{"./no-such-binary-here"}, nil)
	require.Equal(t, invocation.Err.Error(), invocation.FailureReason())
}
