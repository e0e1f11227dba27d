package app

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/relaunch-cli/relaunch/internal/domain"
	"github.com/relaunch-cli/relaunch/internal/ui"
)

type Orchestrator struct {
	validator  *domain.ConfigValidator
	supervisor *Supervisor
}

func NewOrchestrator() *Orchestrator {
	return &Orchestrator{
		validator:  domain.NewConfigValidator(),
		supervisor: NewSupervisor(),
	}
}

func (o *Orchestrator) Execute(ctx context.Context, cfg *domain.RunConfig) error {
	if err := o.validator.Validate(cfg); err != nil {
		return err
	}

	handler := getFormatter(cfg)

	if cfg.Format == domain.FormatTUI {
		tuiHandler, ok := handler.(*ui.TUIFormatter)
		if !ok {
			return fmt.Errorf("tui formatter not available")
		}
		return o.executeTUI(ctx, cfg, tuiHandler)
	}

	return o.supervisor.Execute(ctx, cfg, handler)
}

func (o *Orchestrator) executeTUI(ctx context.Context, cfg *domain.RunConfig, tui *ui.TUIFormatter) error {
	ctxRun, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctxRun)

	// Start TUI; when it exits (quit or finish), cancel to stop the supervisor
	g.Go(func() error {
		defer cancel()
		return tui.Run(gctx)
	})

	// Ensure the TUI program is initialized before supervising so streaming works
	if err := tui.WaitReady(gctx); err != nil {
		return err
	}

	g.Go(func() error {
		if err := o.supervisor.Execute(gctx, cfg, tui); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		return nil
	})

	return g.Wait()
}

func getFormatter(cfg *domain.RunConfig) Handler {
	switch cfg.Format {
	case domain.FormatJSON:
		return ui.NewJSONFormatter(cfg)
	case domain.FormatTUI:
		return ui.NewTUIFormatter(cfg)
	default:
		return ui.NewRawFormatter(cfg)
	}
}
