package pump

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
)

// Result carries the combined output of a finished subprocess. It is
// assembled only after both streams reached EOF and the process exited.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// ExitError is returned when the subprocess ran but exited non-zero. It
// carries the captured stderr text and the numeric code, and unwraps to the
// underlying exec error.
type ExitError struct {
	Code   int
	Stderr string
	err    error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command exited with code %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.err }

// Runner launches one subprocess and drains its stdout and stderr
// concurrently and independently, so neither pipe can fill while the other
// is being read. Each invocation is attempted exactly once.
type Runner struct {
	Path string
	Args []string

	// Dir is the working directory; empty means inherit.
	Dir string

	// Env entries are merged onto the inherited environment as KEY=VALUE
	// overrides.
	Env []string

	// ExtraPath directories are appended to PATH when not already present,
	// covering tool installations outside the default search path.
	ExtraPath []string

	// OnStdout and OnStderr receive completed lines in per-stream arrival
	// order, each called from its own pump goroutine. Nil callbacks are
	// skipped. No ordering holds between the two streams.
	OnStdout func(string)
	OnStderr func(string)
}

// Run starts the process and blocks until the process has exited AND both
// stream pumps have signaled completion — a two-count rendezvous, not a race
// on whichever finishes first. Cancelling ctx kills the process; the pumps
// then observe pipe closure and take their flush path.
//
// A non-zero exit returns the Result together with an *ExitError. Failures to
// set up pipes or start the process return exit code 127 for a missing
// executable and 1 otherwise, matching shell conventions.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	cmd := exec.CommandContext(ctx, r.Path, r.Args...)
	cmd.Dir = r.Dir
	cmd.Env = r.environ()
	setProcessGroup(cmd)

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return &Result{ExitCode: 1}, fmt.Errorf("stdout pipe: %w", err)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return &Result{ExitCode: 1}, fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		code := exitCode(err)
		return &Result{ExitCode: code}, fmt.Errorf("starting %s: %w", r.Path, err)
	}

	var (
		stdoutLines []string
		stderrLines []string
		wg          sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = New(stdoutPipe, func(line string) {
			stdoutLines = append(stdoutLines, line)
			if r.OnStdout != nil {
				r.OnStdout(line)
			}
		}).Run()
	}()
	go func() {
		defer wg.Done()
		_ = New(stderrPipe, func(line string) {
			stderrLines = append(stderrLines, line)
			if r.OnStderr != nil {
				r.OnStderr(line)
			}
		}).Run()
	}()

	// Pipes must be drained before Wait; Wait closes them.
	wg.Wait()
	runErr := cmd.Wait()

	res := &Result{
		Stdout:   strings.Join(stdoutLines, "\n"),
		Stderr:   strings.Join(stderrLines, "\n"),
		ExitCode: exitCode(runErr),
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			return res, &ExitError{Code: res.ExitCode, Stderr: res.Stderr, err: runErr}
		}
		return res, runErr
	}
	return res, nil
}

// Passthrough runs the process with its streams wired directly to the given
// writers: no line framing, no buffering, no classification. Used when
// logging is disabled. Returns the exit code and, for non-zero exits, an
// *ExitError without captured stderr.
func (r *Runner) Passthrough(ctx context.Context, stdout, stderr io.Writer) (int, error) {
	cmd := exec.CommandContext(ctx, r.Path, r.Args...)
	cmd.Dir = r.Dir
	cmd.Env = r.environ()
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	setProcessGroup(cmd)

	runErr := cmd.Run()
	code := exitCode(runErr)
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			return code, &ExitError{Code: code, err: runErr}
		}
		return code, runErr
	}
	return 0, nil
}

// environ merges Env overrides onto the inherited environment and augments
// PATH with ExtraPath directories that are not already listed.
func (r *Runner) environ() []string {
	env := os.Environ()
	for _, kv := range r.Env {
		key, _, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		env = setEnv(env, key, kv)
	}
	if len(r.ExtraPath) > 0 {
		env = setEnv(env, "PATH", "PATH="+augmentPath(lookupEnv(env, "PATH"), r.ExtraPath))
	}
	return env
}

func setEnv(env []string, key, kv string) []string {
	prefix := key + "="
	for i, e := range env {
		if strings.HasPrefix(e, prefix) {
			env[i] = kv
			return env
		}
	}
	return append(env, kv)
}

func lookupEnv(env []string, key string) string {
	prefix := key + "="
	for _, e := range env {
		if strings.HasPrefix(e, prefix) {
			return e[len(prefix):]
		}
	}
	return ""
}

func augmentPath(path string, extra []string) string {
	parts := strings.Split(path, string(os.PathListSeparator))
	seen := make(map[string]bool, len(parts))
	for _, p := range parts {
		seen[p] = true
	}
	for _, dir := range extra {
		if dir == "" || seen[dir] {
			continue
		}
		parts = append(parts, dir)
		seen[dir] = true
	}
	return strings.Join(parts, string(os.PathListSeparator))
}

// exitCode maps a cmd.Wait/Start error to a shell-style exit code.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// A signal death reports -1, which os.Exit would wrap to 255.
		if code, ok := exitCodeFromError(exitErr); ok && code >= 0 {
			return code
		}
		return 1
	}
	if isCommandNotFound(err) {
		return 127
	}
	return 1
}

// isCommandNotFound checks the standard exec.ErrNotFound plus the platform
// string fallbacks for edge cases.
func isCommandNotFound(err error) bool {
	if errors.Is(err, exec.ErrNotFound) {
		return true
	}
	msg := err.Error()
	if strings.Contains(msg, "executable file not found") {
		return true
	}
	if runtime.GOOS != "windows" && strings.Contains(msg, "no such file or directory") {
		return true
	}
	return false
}
