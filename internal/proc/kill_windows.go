//go:build windows

package proc

import (
	"fmt"
	"os/exec"
	"strconv"
)

func configureSysProcAttr(cmd *exec.Cmd) {}

// killTree terminates the tree rooted at the child's PID with taskkill.
// /T takes the whole tree, /F forces it.
func killTree(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	pid := cmd.Process.Pid
	if err := exec.Command("taskkill", "/T", "/F", "/PID", strconv.Itoa(pid)).Run(); err != nil {
		return fmt.Errorf("taskkill pid %d: %w", pid, err)
	}
	return nil
}
