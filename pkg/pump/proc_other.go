//go:build !unix

package pump

import (
	"os"
	"os/exec"
)

// setProcessGroup is a no-op on non-Unix platforms.
func setProcessGroup(cmd *exec.Cmd) {
	// No process group support on this platform
}

// exitCodeFromError extracts the exit code from an exec.ExitError on
// non-Unix platforms. ProcessState.ExitCode() is available cross-platform.
func exitCodeFromError(exitErr *exec.ExitError) (int, bool) {
	if exitErr.ProcessState != nil {
		return exitErr.ProcessState.ExitCode(), true
	}
	return 0, false
}

// InterruptSignals returns the signals a caller should forward to the
// subprocess on non-Unix platforms.
func InterruptSignals() []os.Signal {
	return []os.Signal{os.Interrupt}
}
