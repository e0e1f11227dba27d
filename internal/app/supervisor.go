package app

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/relaunch-cli/relaunch/internal/domain"
	"github.com/relaunch-cli/relaunch/internal/proc"
	"github.com/relaunch-cli/relaunch/internal/watch"
)

// Handler presents supervision events to the user. Implementations receive
// the handle lifecycle signals plus a final OnFinish once supervision ends.
type Handler interface {
	proc.Notifier
	OnFinish()
	GetOutputWriters() (stdout, stderr io.Writer)
}

// ExitError carries the supervised command's non-zero exit code to main.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command exited with code %d", e.Code)
}

// Supervisor runs the command once, or keeps relaunching it on watched
// changes. At most one generation is ever alive: every relaunch first
// disposes the previous handle and waits for its confirmed exit.
type Supervisor struct{}

func NewSupervisor() *Supervisor {
	return &Supervisor{}
}

func (s *Supervisor) Execute(ctx context.Context, cfg *domain.RunConfig, handler Handler) error {
	if len(cfg.Watch) == 0 {
		return s.runOnce(ctx, cfg, handler)
	}

	changes := make(chan watch.ChangeSet, 1)
	watcher := watch.New(cfg.Watch, cfg.Interval)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return watcher.Run(gctx, changes)
	})
	g.Go(func() error {
		return s.supervise(gctx, cfg, handler, changes)
	})
	return g.Wait()
}

func (s *Supervisor) runOnce(ctx context.Context, cfg *domain.RunConfig, handler Handler) error {
	defer handler.OnFinish()

	stdout, stderr := handler.GetOutputWriters()
	h, err := proc.Start(cfg.Command, proc.Options{
		Generation: 1,
		Stdout:     stdout,
		Stderr:     stderr,
		Notify:     handler,
	})
	if err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		// The wait barrier deliberately outlives the cancelled context.
		if derr := h.Dispose(context.Background()); derr != nil {
			return derr
		}
		return ctx.Err()
	case <-h.Done():
	}

	res := h.Result()
	if res.Err != nil {
		return res.Err
	}
	if res.ExitCode != 0 {
		return &ExitError{Code: res.ExitCode}
	}
	return nil
}

// supervise relaunches the command on every change until ctx is cancelled.
// A generation that exits on its own stays down until the next change.
func (s *Supervisor) supervise(ctx context.Context, cfg *domain.RunConfig, handler Handler, changes <-chan watch.ChangeSet) error {
	defer handler.OnFinish()

	for generation := 1; ; generation++ {
		stdout, stderr := handler.GetOutputWriters()
		h, err := proc.Start(cfg.Command, proc.Options{
			Generation: generation,
			Stdout:     stdout,
			Stderr:     stderr,
			Notify:     handler,
		})
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			if derr := h.Dispose(context.Background()); derr != nil {
				return derr
			}
			return ctx.Err()
		case <-changes:
			if derr := h.Dispose(context.Background()); derr != nil {
				return derr
			}
		case <-h.Done():
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-changes:
			}
		}
	}
}
