package pump

import (
	"bytes"
	"context"
	"os/exec"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_Run_When_BothStreamsInterleaved(t *testing.T) {
	t.Parallel()

	// Five stdout lines and three stderr lines in overlapping timing. Each
	// stream must arrive complete and in order; the result must carry all of
	// both, assembled only once both pipes hit EOF and the process exited.
	script := `
for i in 1 2 3 4 5; do echo "out $i"; done &
for i in 1 2 3; do echo "err $i" 1>&2; done &
wait`

	var (
		mu     sync.Mutex
		outCbs []string
		errCbs []string
	)
	r := &Runner{
		Path: "sh",
		Args: []string{"-c", script},
		OnStdout: func(l string) {
			mu.Lock()
			outCbs = append(outCbs, l)
			mu.Unlock()
		},
		OnStderr: func(l string) {
			mu.Lock()
			errCbs = append(errCbs, l)
			mu.Unlock()
		},
	}

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "out 1\nout 2\nout 3\nout 4\nout 5", res.Stdout)
	assert.Equal(t, "err 1\nerr 2\nerr 3", res.Stderr)
	assert.Equal(t, []string{"out 1", "out 2", "out 3", "out 4", "out 5"}, outCbs)
	assert.Equal(t, []string{"err 1", "err 2", "err 3"}, errCbs)
}

func TestRunner_Run_When_NonZeroExit(t *testing.T) {
	t.Parallel()

	r := &Runner{
		Path: "sh",
		Args: []string{"-c", `echo "build failed" 1>&2; exit 65`},
	}

	res, err := r.Run(context.Background())
	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 65, exitErr.Code)
	assert.Equal(t, "build failed", exitErr.Stderr)
	assert.Equal(t, 65, res.ExitCode)

	// The typed error still unwraps to the underlying exec error.
	var underlying *exec.ExitError
	assert.ErrorAs(t, err, &underlying)
}

func TestRunner_Run_When_TrailingPartialLine(t *testing.T) {
	t.Parallel()

	r := &Runner{
		Path: "sh",
		Args: []string{"-c", `printf "complete\npartial"`},
	}

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "complete\npartial", res.Stdout)
}

func TestRunner_Run_When_CommandNotFound(t *testing.T) {
	t.Parallel()

	r := &Runner{Path: "definitely_not_a_command_12345"}

	res, err := r.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, 127, res.ExitCode)
}

func TestRunner_Run_When_ContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	r := &Runner{Path: "sh", Args: []string{"-c", "sleep 30"}}

	done := make(chan struct{})
	var err error
	go func() {
		_, err = r.Run(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not return after cancellation")
	}
	assert.Error(t, err)
}

func TestRunner_Run_When_CancelledWithBackgroundChild(t *testing.T) {
	t.Parallel()

	// The shell backgrounds a child that inherits the pipe write ends. If
	// cancellation killed only the shell, the child would keep the pipes
	// open and both pumps would block long past the context. Signalling the
	// process group must bring Run back promptly.
	ctx, cancel := context.WithCancel(context.Background())
	r := &Runner{Path: "sh", Args: []string{"-c", "sleep 10 & sleep 30"}}

	done := make(chan struct{})
	var err error
	go func() {
		_, err = r.Run(ctx)
		close(done)
	}()

	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not return after cancellation with a live grandchild")
	}
	assert.Error(t, err)
}

func TestRunner_Run_When_KilledBySignal(t *testing.T) {
	t.Parallel()

	// A signal death has no exit code; it must map to a deliberate 1, not
	// the -1 placeholder that os.Exit would wrap to 255.
	r := &Runner{Path: "sh", Args: []string{"-c", `kill -TERM $$`}}

	res, err := r.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, res.ExitCode)
}

func TestRunner_Run_When_EmptyOutput(t *testing.T) {
	t.Parallel()

	called := 0
	r := &Runner{
		Path:     "true",
		OnStdout: func(string) { called++ },
	}

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, called, "no lines expected from a silent process")
	assert.Equal(t, "", res.Stdout)
}

func TestRunner_Passthrough_When_NoFraming(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer
	r := &Runner{Path: "sh", Args: []string{"-c", `printf "raw out"; printf "raw err" 1>&2`}}

	code, err := r.Passthrough(context.Background(), &out, &errOut)
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "raw out", out.String())
	assert.Equal(t, "raw err", errOut.String())
}

func TestRunner_Environ_When_PathAugmented(t *testing.T) {
	t.Parallel()

	r := &Runner{ExtraPath: []string{"/opt/buildtools/bin"}}
	env := r.environ()

	assert.Contains(t, lookupEnv(env, "PATH"), "/opt/buildtools/bin")

	// Idempotent: augmenting again adds nothing.
	path := lookupEnv(env, "PATH")
	assert.Equal(t, path, augmentPath(path, []string{"/opt/buildtools/bin"}))
}

func TestRunner_Environ_When_OverrideReplacesInherited(t *testing.T) {
	t.Setenv("RUNLOG_TEST_VAR", "inherited")

	r := &Runner{Env: []string{"RUNLOG_TEST_VAR=override"}}
	env := r.environ()

	assert.Equal(t, "override", lookupEnv(env, "RUNLOG_TEST_VAR"))
}
