//go:build !windows

package proc

import (
	"os/exec"
	"strconv"
	"strings"
)

// listChildren returns the direct children of pid. A single best-effort
// read of the process table; a failed query or a child that vanished in
// the meantime yields an empty slice, never an error.
func listChildren(pid int) []int {
	out, err := exec.Command("pgrep", "-P", strconv.Itoa(pid)).Output()
	if err != nil {
		return nil
	}
	return parsePIDs(out)
}

// parsePIDs reads the listing utility's output contract: one PID per line,
// no header. Unparseable lines are skipped.
func parsePIDs(out []byte) []int {
	var pids []int
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		pid, err := strconv.Atoi(line)
		if err != nil {
			continue
		}
		pids = append(pids, pid)
	}
	return pids
}
