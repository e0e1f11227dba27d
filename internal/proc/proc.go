package proc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/relaunch-cli/relaunch/internal/domain"
	"github.com/relaunch-cli/relaunch/internal/shell"
)

// Notifier observes lifecycle transitions of one handle. OnStart fires
// before Start returns; OnExit fires exactly once, before Done is closed.
type Notifier interface {
	OnStart(generation, pid int)
	OnExit(result domain.RunResult)
}

type Options struct {
	Generation int
	Stdout     io.Writer
	Stderr     io.Writer
	Notify     Notifier
}

// Handle wraps one running shell-wrapped process.
type Handle struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	notify Notifier

	disposed atomic.Bool
	exited   atomic.Bool
	done     chan struct{}

	copiers sync.WaitGroup
	result  domain.RunResult
}

// Start resolves command through the platform shell, spawns it and returns a
// handle immediately; output streaming and exit tracking run in the
// background. A spawn failure is returned synchronously.
func Start(command string, opts Options) (*Handle, error) {
	prog, args := shell.Resolve(runtime.GOOS, command)
	cmd := exec.Command(prog, args...)
	configureSysProcAttr(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %q: %w", command, err)
	}

	h := &Handle{
		cmd:    cmd,
		stdin:  stdin,
		notify: opts.Notify,
		done:   make(chan struct{}),
	}
	h.result.Generation = opts.Generation
	h.result.StartedAt = time.Now()

	if h.notify != nil {
		h.notify.OnStart(opts.Generation, cmd.Process.Pid)
	}

	h.copiers.Add(2)
	go h.forward(stdout, opts.Stdout)
	go h.forward(stderr, opts.Stderr)
	go h.reap()

	return h, nil
}

// forward copies child output bytes verbatim. A byte copier rather than a
// line scanner, so multi-byte sequences split across chunks survive intact.
func (h *Handle) forward(r io.Reader, w io.Writer) {
	defer h.copiers.Done()
	if w == nil {
		w = io.Discard
	}
	_, _ = io.Copy(w, r)
}

// reap drains the pipes, waits for the process and publishes the result.
// Exit confirmation ordering: result is complete and OnExit has fired before
// done is closed, so anyone unblocked by Done sees the final state.
func (h *Handle) reap() {
	h.copiers.Wait()
	err := h.cmd.Wait()

	h.result.FinishedAt = time.Now()
	h.result.Duration = h.result.FinishedAt.Sub(h.result.StartedAt)
	h.result.Disposed = h.disposed.Load()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			h.result.ExitCode = exitErr.ExitCode()
		} else {
			h.result.ExitCode = -1
			h.result.Err = err
		}
	}

	h.exited.Store(true)
	if h.notify != nil {
		h.notify.OnExit(h.result)
	}
	close(h.done)
}

// Done is closed once the process has fully exited.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Result is only meaningful after Done is closed.
func (h *Handle) Result() domain.RunResult {
	return h.result
}

func (h *Handle) Exited() bool {
	return h.exited.Load()
}

func (h *Handle) Disposed() bool {
	return h.disposed.Load()
}

func (h *Handle) PID() int {
	return h.cmd.Process.Pid
}

// Dispose terminates the whole process tree and blocks until exit is
// confirmed. It is idempotent: only the first call on a still-running
// process performs teardown; repeated calls, and calls after a natural
// exit, just honor the wait barrier.
func (h *Handle) Dispose(ctx context.Context) error {
	if h.disposed.CompareAndSwap(false, true) && !h.exited.Load() {
		_ = h.stdin.Close()
		if err := killTree(h.cmd); err != nil {
			return err
		}
	}
	select {
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
