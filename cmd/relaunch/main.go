package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/relaunch-cli/relaunch/internal/app"
	"github.com/relaunch-cli/relaunch/internal/domain"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

type options struct {
	watch     []string
	interval  time.Duration
	json      bool
	raw       bool
	tui       bool
	verbosity string
}

func commandString(args []string) string {
	for i, arg := range args {
		if arg == "--" {
			return strings.Join(args[i+1:], " ")
		}
	}
	return strings.Join(args, " ")
}

func buildRunConfig(command string, opts *options) *domain.RunConfig {
	var format string
	switch {
	case opts.json:
		format = "json"
	case opts.tui:
		format = "tui"
	case opts.raw:
		format = "raw"
	default:
		format = "raw"
	}
	cfg := &domain.RunConfig{
		Command:   command,
		Watch:     opts.watch,
		Interval:  opts.interval,
		Verbosity: domain.VerbosityLevel(opts.verbosity),
		Format:    domain.OutputFormat(format),
	}
	return cfg
}

func run(args []string, opts *options) error {
	command := commandString(args)
	cfg := buildRunConfig(command, opts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orchestrator := app.NewOrchestrator()
	if err := orchestrator.Execute(ctx, cfg); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	return nil
}

func newRootCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "relaunch [flags] -- <command>",
		Short:         "Supervise a shell command",
		Long:          "relaunch - run a shell command under supervision and relaunch it when watched files change",
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args, opts)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringArrayVarP(&opts.watch, "watch", "w", nil, "Glob pattern to watch; relaunch the command on change (repeatable)")
	cmd.Flags().DurationVar(&opts.interval, "interval", 250*time.Millisecond, "Watch polling interval")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Output lifecycle events as JSON")
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "Output in raw format (default)")
	cmd.Flags().BoolVar(&opts.tui, "tui", false, "Output in TUI format")
	cmd.Flags().StringVarP(&opts.verbosity, "verbosity", "v", "normal", "Verbosity level (silent|normal|verbose)")
	cmd.Version = version

	return cmd
}

func main() {
	opts := &options{}
	rootCmd := newRootCmd(opts)
	if err := rootCmd.Execute(); err != nil {
		var exitErr *app.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		fmt.Fprintln(os.Stderr)
		rootCmd.Usage()
		os.Exit(1)
	}
}
