package proc

import (
	"bytes"
	"context"
	stdruntime "runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/relaunch-cli/relaunch/internal/domain"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type recordingNotifier struct {
	mu      sync.Mutex
	events  []string
	results []domain.RunResult
}

func (n *recordingNotifier) OnStart(generation, pid int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, "run")
}

func (n *recordingNotifier) OnExit(result domain.RunResult) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, "end")
	n.results = append(n.results, result)
}

func (n *recordingNotifier) snapshot() ([]string, []domain.RunResult) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.events...), append([]domain.RunResult(nil), n.results...)
}

func skipOnWindows(t *testing.T) {
	t.Helper()
	if stdruntime.GOOS == "windows" {
		t.Skip("process handle tests skipped on windows")
	}
}

func waitDone(t *testing.T, h *Handle) {
	t.Helper()
	select {
	case <-h.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for process exit")
	}
}

func TestStartStreamsOutputAndTracksExit(t *testing.T) {
	skipOnWindows(t)

	var out syncBuffer
	notifier := &recordingNotifier{}

	h, err := Start("echo hello", Options{Generation: 1, Stdout: &out, Stderr: &out, Notify: notifier})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	waitDone(t, h)

	if got := out.String(); got != "hello\n" {
		t.Errorf("output = %q, want %q", got, "hello\n")
	}
	if !h.Exited() {
		t.Error("handle not marked exited after Done")
	}
	res := h.Result()
	if res.ExitCode != 0 {
		t.Errorf("exit code = %d, want 0", res.ExitCode)
	}
	if res.Disposed {
		t.Error("natural exit should not be marked disposed")
	}

	events, _ := notifier.snapshot()
	if len(events) != 2 || events[0] != "run" || events[1] != "end" {
		t.Errorf("lifecycle events = %v, want [run end]", events)
	}
}

func TestOutputForwardedVerbatimUTF8(t *testing.T) {
	skipOnWindows(t)

	var out syncBuffer
	payload := "日本語テキスト ✓ émojis"
	h, err := Start("printf '"+payload+"'", Options{Generation: 1, Stdout: &out})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	waitDone(t, h)

	if got := out.String(); got != payload {
		t.Errorf("output = %q, want %q", got, payload)
	}
}

func TestStderrForwardedToSameWriter(t *testing.T) {
	skipOnWindows(t)

	var out syncBuffer
	h, err := Start("echo out; echo err 1>&2", Options{Generation: 1, Stdout: &out, Stderr: &out})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	waitDone(t, h)

	got := out.String()
	if !strings.Contains(got, "out\n") || !strings.Contains(got, "err\n") {
		t.Errorf("output = %q, want both stdout and stderr lines", got)
	}
}

func TestDisposeTerminatesRunningTree(t *testing.T) {
	skipOnWindows(t)

	notifier := &recordingNotifier{}
	h, err := Start("sleep 100", Options{Generation: 1, Notify: notifier})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.Dispose(ctx); err != nil {
		t.Fatalf("dispose: %v", err)
	}

	if !h.Exited() {
		t.Error("handle not exited after Dispose returned")
	}
	if !h.Disposed() {
		t.Error("handle not marked disposed")
	}
	if res := h.Result(); !res.Disposed {
		t.Errorf("result.Disposed = false, want true")
	}
}

func TestDisposeIsIdempotent(t *testing.T) {
	skipOnWindows(t)

	notifier := &recordingNotifier{}
	h, err := Start("sleep 100", Options{Generation: 1, Notify: notifier})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.Dispose(ctx); err != nil {
		t.Fatalf("first dispose: %v", err)
	}
	if err := h.Dispose(ctx); err != nil {
		t.Fatalf("second dispose: %v", err)
	}

	_, results := notifier.snapshot()
	if len(results) != 1 {
		t.Errorf("exit notifications = %d, want exactly 1", len(results))
	}
}

func TestDisposeAfterNaturalExitIsNoop(t *testing.T) {
	skipOnWindows(t)

	h, err := Start("true", Options{Generation: 1})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	waitDone(t, h)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := h.Dispose(ctx); err != nil {
		t.Fatalf("dispose after natural exit: %v", err)
	}
	if res := h.Result(); res.Disposed {
		t.Error("natural exit should stay unmarked even after a late Dispose")
	}
}

func TestNonZeroExitCodeRecorded(t *testing.T) {
	skipOnWindows(t)

	h, err := Start("exit 3", Options{Generation: 1})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	waitDone(t, h)

	if res := h.Result(); res.ExitCode != 3 {
		t.Errorf("exit code = %d, want 3", res.ExitCode)
	}
}

func TestHandlesAreIndependent(t *testing.T) {
	skipOnWindows(t)

	first, err := Start("sleep 100", Options{Generation: 1})
	if err != nil {
		t.Fatalf("start first: %v", err)
	}
	second, err := Start("sleep 100", Options{Generation: 2})
	if err != nil {
		t.Fatalf("start second: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := first.Dispose(ctx); err != nil {
		t.Fatalf("dispose first: %v", err)
	}
	if second.Exited() {
		t.Error("disposing one handle terminated another handle's process")
	}
	if err := second.Dispose(ctx); err != nil {
		t.Fatalf("dispose second: %v", err)
	}
}
