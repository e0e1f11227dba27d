package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/relaunch-cli/relaunch/internal/domain"
)

type startEvent struct {
	Event      string    `json:"event"`
	Generation int       `json:"generation"`
	PID        int       `json:"pid"`
	Time       time.Time `json:"ts"`
}

type endEvent struct {
	Event      string    `json:"event"`
	Generation int       `json:"generation"`
	ExitCode   int       `json:"exit_code"`
	Duration   float64   `json:"duration_ms"`
	Disposed   bool      `json:"disposed,omitempty"`
	Error      string    `json:"error,omitempty"`
	Time       time.Time `json:"ts"`
}

// JSONFormatter streams one NDJSON lifecycle event per line. Child output
// still passes through verbatim on stdout, interleaved with the events.
type JSONFormatter struct {
	out io.Writer
	enc *json.Encoder
	mu  sync.Mutex
}

func NewJSONFormatter(cfg *domain.RunConfig) *JSONFormatter {
	return &JSONFormatter{out: os.Stdout, enc: json.NewEncoder(os.Stdout)}
}

func (f *JSONFormatter) GetOutputWriters() (stdout, stderr io.Writer) {
	return f.out, f.out
}

func (f *JSONFormatter) OnStart(generation, pid int) {
	f.emit(startEvent{
		Event:      "run",
		Generation: generation,
		PID:        pid,
		Time:       time.Now(),
	})
}

func (f *JSONFormatter) OnExit(result domain.RunResult) {
	ev := endEvent{
		Event:      "end",
		Generation: result.Generation,
		ExitCode:   result.ExitCode,
		Duration:   float64(result.Duration.Milliseconds()),
		Disposed:   result.Disposed,
		Time:       time.Now(),
	}
	if result.Err != nil {
		ev.Error = result.Err.Error()
	}
	f.emit(ev)
}

func (f *JSONFormatter) OnFinish() {
	// No-op; events were already streamed
}

func (f *JSONFormatter) emit(ev any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enc.Encode(ev); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON output: %v\n", err)
	}
}
