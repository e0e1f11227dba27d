package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/relaunch-cli/relaunch/internal/domain"
)

func TestRawFormatterStatusLines(t *testing.T) {
	var buf bytes.Buffer
	f := &RawFormatter{out: &buf, verbosity: domain.VerbosityNormal}

	f.OnStart(1, 42)
	f.OnExit(domain.RunResult{Generation: 1, ExitCode: 0, Duration: 12 * time.Millisecond})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d status lines, want 2: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "[run]") {
		t.Errorf("first line = %q, want it to contain [run]", lines[0])
	}
	if !strings.Contains(lines[1], "[end]") {
		t.Errorf("second line = %q, want it to contain [end]", lines[1])
	}
}

func TestRawFormatterSilent(t *testing.T) {
	var buf bytes.Buffer
	f := &RawFormatter{out: &buf, verbosity: domain.VerbositySilent}

	f.OnStart(1, 42)
	f.OnExit(domain.RunResult{Generation: 1})

	if buf.Len() != 0 {
		t.Errorf("silent verbosity wrote %q, want nothing", buf.String())
	}
}

func TestRawFormatterVerbose(t *testing.T) {
	var buf bytes.Buffer
	f := &RawFormatter{out: &buf, verbosity: domain.VerbosityVerbose}

	f.OnStart(2, 42)
	f.OnExit(domain.RunResult{Generation: 2, ExitCode: 3, Duration: time.Second})

	got := buf.String()
	if !strings.Contains(got, "#2 pid 42") {
		t.Errorf("verbose run line missing generation/pid: %q", got)
	}
	if !strings.Contains(got, "exit 3") {
		t.Errorf("verbose end line missing exit code: %q", got)
	}
}

func TestRawFormatterWritersShareStdout(t *testing.T) {
	var buf bytes.Buffer
	f := &RawFormatter{out: &buf, verbosity: domain.VerbosityNormal}

	stdout, stderr := f.GetOutputWriters()
	stdout.Write([]byte("a"))
	stderr.Write([]byte("b"))

	if got := buf.String(); got != "ab" {
		t.Errorf("interleaved output = %q, want %q", got, "ab")
	}
}
