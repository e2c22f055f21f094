//go:build unix

package pump

import (
	"os"
	"os/exec"
	"syscall"
	"time"
)

// SignalTimeout is the grace period between signalling the process group and
// escalating to SIGKILL.
const SignalTimeout = 2 * time.Second

// setProcessGroup runs the command in its own process group and wires
// cancellation to signal that whole group. Build tools fork compilers and
// helper daemons; killing only the direct child would leave grandchildren
// holding the pipe write ends open, and the pumps blocked with them.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		err := killProcessGroup(cmd, syscall.SIGTERM)
		time.AfterFunc(SignalTimeout, func() {
			_ = killProcessGroupWithSIGKILL(cmd)
		})
		return err
	}
}

// killProcessGroup sends a signal to the entire process group.
func killProcessGroup(cmd *exec.Cmd, sig os.Signal) error {
	if cmd.Process == nil {
		return nil
	}
	pgid, err := syscall.Getpgid(cmd.Process.Pid)
	if err != nil {
		return cmd.Process.Signal(sig)
	}
	sigVal, ok := sig.(syscall.Signal)
	if !ok {
		return cmd.Process.Signal(sig)
	}
	return syscall.Kill(-pgid, sigVal)
}

// killProcessGroupWithSIGKILL sends SIGKILL to the entire process group.
func killProcessGroupWithSIGKILL(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	pgid, err := syscall.Getpgid(cmd.Process.Pid)
	if err != nil {
		return cmd.Process.Kill()
	}
	return syscall.Kill(-pgid, syscall.SIGKILL)
}

// exitCodeFromError extracts the exit code from an exec.ExitError.
func exitCodeFromError(exitErr *exec.ExitError) (int, bool) {
	waitStatus, ok := exitErr.Sys().(syscall.WaitStatus)
	if ok {
		return waitStatus.ExitStatus(), true
	}
	return 0, false
}

// InterruptSignals returns the signals a caller should forward to the
// subprocess on Unix.
func InterruptSignals() []os.Signal {
	return []os.Signal{syscall.SIGINT, syscall.SIGTERM}
}
