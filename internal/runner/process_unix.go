//go:build !windows

package runner

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
)

// killProcessGroup kills the process group with the given PID.
func killProcessGroup(pid int) error {
	return syscall.Kill(-pid, syscall.SIGKILL)
}

// setProcessGroup starts cmd in a new process group so that children
// spawned by it are killed together.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// cancelProcessGroup returns an exec.Cmd.Cancel func that kills the group
// cmd leads. A group that is already gone reports os.ErrProcessDone so
// that Wait keeps the exit status.
func cancelProcessGroup(cmd *exec.Cmd) func() error {
	return func() error {
		err := killProcessGroup(cmd.Process.Pid)
		if errors.Is(err, syscall.ESRCH) {
			return os.ErrProcessDone
		}
		return err
	}
}
