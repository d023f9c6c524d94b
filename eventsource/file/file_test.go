package file

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/thisisjab/logview/entity"
	"github.com/thisisjab/logview/fault"
)

type eventSink struct {
	mu     sync.Mutex
	events []entity.RawEvent
}

func (s *eventSink) record(ev entity.RawEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *eventSink) snapshot() []entity.RawEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.RawEvent, len(s.events))
	copy(out, s.events)
	return out
}

// waitFor polls until cond holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func appendLine(t *testing.T, path, line string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open for append: %v", err)
	}
	defer f.Close()
	if _, err := f.WriteString(line + "\n"); err != nil {
		t.Fatalf("append: %v", err)
	}
}

func TestOpenMissingFile(t *testing.T) {
	open, err := NewOpener(Options{})
	if err != nil {
		t.Fatalf("NewOpener() = %v", err)
	}

	_, err = open(filepath.Join(t.TempDir(), "absent.log"), ".", "", nil)

	var f fault.Fault
	if !errors.As(err, &f) || f.Code() != fault.SourceUnavailableCode {
		t.Fatalf("open missing file = %v, want source_unavailable fault", err)
	}
}

func TestOpenRemoteHostRejected(t *testing.T) {
	open, err := NewOpener(Options{})
	if err != nil {
		t.Fatalf("NewOpener() = %v", err)
	}

	_, err = open("/var/log/app.log", "otherhost", "", nil)

	var f fault.Fault
	if !errors.As(err, &f) || f.Code() != fault.SourceUnavailableCode {
		t.Fatalf("open on remote host = %v, want source_unavailable fault", err)
	}
}

func TestNewOpenerUnknownFormat(t *testing.T) {
	_, err := NewOpener(Options{Format: "xml"})

	var f fault.Fault
	if !errors.As(err, &f) || f.Code() != fault.InvalidConfigCode {
		t.Fatalf("NewOpener(xml) = %v, want invalid_config fault", err)
	}
}

func TestBindingDeliversAppendedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	if err := os.WriteFile(path, []byte("old line\n"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	open, err := NewOpener(Options{Format: "json"})
	if err != nil {
		t.Fatalf("NewOpener() = %v", err)
	}
	b, err := open(path, ".", "", nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer b.Close()

	sink := &eventSink{}
	b.SetCallback(sink.record)
	b.Enable()

	appendLine(t, path, `{"source":"AppX","level":"error","message":"boom"}`)

	waitFor(t, func() bool { return len(sink.snapshot()) == 1 })

	got := sink.snapshot()[0]
	if got.Source != "AppX" || got.Severity != "error" || got.Message != "boom" {
		t.Fatalf("delivered event = %+v", got)
	}
}

func TestBindingSkipsHistoryAndDisabledDelivery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	if err := os.WriteFile(path, []byte("history\n"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	open, err := NewOpener(Options{})
	if err != nil {
		t.Fatalf("NewOpener() = %v", err)
	}
	b, err := open(path, ".", "", nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer b.Close()

	sink := &eventSink{}
	b.SetCallback(sink.record)

	// Delivery starts disabled: this line is read but not delivered.
	appendLine(t, path, "while disabled")
	time.Sleep(100 * time.Millisecond)

	b.Enable()
	appendLine(t, path, "while enabled")

	waitFor(t, func() bool { return len(sink.snapshot()) >= 1 })

	for _, ev := range sink.snapshot() {
		if ev.Message == "history" || ev.Message == "while disabled" {
			t.Fatalf("delivered %q, want only post-enable lines", ev.Message)
		}
	}
}

func TestBindingCloseIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	open, err := NewOpener(Options{})
	if err != nil {
		t.Fatalf("NewOpener() = %v", err)
	}
	b, err := open(path, ".", "", nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	b.Disable()
	if err := b.Close(); err != nil {
		t.Fatalf("first Close() = %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("second Close() = %v", err)
	}
}
