package ui

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/relaunch-cli/relaunch/internal/domain"
)

var (
	styleRun    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	styleEnd    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	styleDetail = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// RawFormatter writes bracketed status lines around the child's verbatim
// output. Child stdout and stderr both land on the caller's stdout,
// interleaved in arrival order.
type RawFormatter struct {
	out       io.Writer
	verbosity domain.VerbosityLevel
}

func NewRawFormatter(cfg *domain.RunConfig) *RawFormatter {
	return &RawFormatter{out: os.Stdout, verbosity: cfg.Verbosity}
}

func (f *RawFormatter) GetOutputWriters() (stdout, stderr io.Writer) {
	return f.out, f.out
}

func (f *RawFormatter) OnStart(generation, pid int) {
	if f.verbosity == domain.VerbositySilent {
		return
	}
	line := styleRun.Render("[run]")
	if f.verbosity == domain.VerbosityVerbose {
		line += styleDetail.Render(fmt.Sprintf(" #%d pid %d", generation, pid))
	}
	fmt.Fprintln(f.out, line)
}

func (f *RawFormatter) OnExit(result domain.RunResult) {
	if f.verbosity == domain.VerbositySilent {
		return
	}
	line := styleEnd.Render("[end]")
	if f.verbosity == domain.VerbosityVerbose {
		line += styleDetail.Render(fmt.Sprintf(" #%d exit %d after %s",
			result.Generation, result.ExitCode, result.Duration.Round(time.Millisecond)))
	}
	fmt.Fprintln(f.out, line)
}

func (f *RawFormatter) OnFinish() {
	// No-op
}
