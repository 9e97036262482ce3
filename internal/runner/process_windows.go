//go:build windows

package runner

import (
	"os/exec"
	"strconv"
)

// killProcessGroup kills the process tree rooted at pid.
func killProcessGroup(pid int) error {
	return exec.Command("taskkill", "/T", "/F", "/PID", strconv.Itoa(pid)).Run()
}

func setProcessGroup(_ *exec.Cmd) {}

// cancelProcessGroup returns an exec.Cmd.Cancel func that kills the tree
// rooted at cmd, falling back to the process alone.
func cancelProcessGroup(cmd *exec.Cmd) func() error {
	return func() error {
		if err := killProcessGroup(cmd.Process.Pid); err != nil {
			return cmd.Process.Kill()
		}
		return nil
	}
}
