// Package shell maps an opaque command string to the platform shell
// invocation that executes it.
package shell

import "strings"

// Resolve returns the shell program and argument vector that run command
// through the host platform's shell. goos follows the GOOS naming
// convention; anything in the windows family gets cmd, everything else sh.
func Resolve(goos, command string) (string, []string) {
	if strings.HasPrefix(goos, "windows") {
		return "cmd", []string{"/c", command}
	}
	return "sh", []string{"-c", command}
}
