package domain

import (
	"time"
)

type VerbosityLevel string
type OutputFormat string

const (
	VerbositySilent  VerbosityLevel = "silent"
	VerbosityNormal  VerbosityLevel = "normal"
	VerbosityVerbose VerbosityLevel = "verbose"
)

const (
	FormatRaw  OutputFormat = "raw"
	FormatJSON OutputFormat = "json"
	FormatTUI  OutputFormat = "tui"
)

type RunConfig struct {
	Command   string
	Watch     []string
	Interval  time.Duration
	Verbosity VerbosityLevel
	Format    OutputFormat
}

// RunResult describes the outcome of one generation of the supervised
// command. Disposed is true when the supervisor tore the process tree
// down instead of the command exiting on its own.
type RunResult struct {
	Generation int
	ExitCode   int
	Disposed   bool
	StartedAt  time.Time
	FinishedAt time.Time
	Duration   time.Duration
	Err        error
}
