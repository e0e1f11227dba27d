// Package proc supervises a single shell-wrapped child process.
//
// A Handle owns exactly one spawned process for its whole lifetime. On POSIX
// platforms the child is started as the leader of a new process group so that
// teardown can signal the shell and everything it spawned in one call; when
// the group signal cannot be delivered the handle falls back to discovering
// the shell's direct children through the process table and signalling each
// of them. On Windows teardown shells out to taskkill, which terminates the
// whole tree rooted at the child's PID.
//
// Dispose blocks until the operating system confirms the process has exited.
// There is no internal timeout: a wedged process that never reports its exit
// keeps Dispose waiting until the caller's context expires.
package proc
