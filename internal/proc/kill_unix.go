//go:build !windows

package proc

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

func configureSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killTree tears down the shell and everything it spawned. The spawned
// process is itself a shell, so the user command runs as its child. A
// SIGTERM to the negative PGID reaches the shell and all descendants in one
// call; if the group signal cannot be delivered (group already reaped, or
// the child never became a group leader), fall back to signalling each
// direct child found in the process table. The shell itself is then killed
// through its own handle.
func killTree(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	pid := cmd.Process.Pid

	if err := syscall.Kill(-pid, syscall.SIGTERM); err != nil && !errors.Is(err, syscall.ESRCH) {
		for _, child := range listChildren(pid) {
			_ = syscall.Kill(child, syscall.SIGTERM)
		}
	}

	if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("kill shell pid %d: %w", pid, err)
	}
	return nil
}
