// Package eventlog implements the eventlog receiver: a log provider that
// attaches to an external, asynchronously updating event log through an
// eventsource.Binding, normalizes each accepted entry, and pushes it to the
// handler registered by the host.
package eventlog

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/thisisjab/logview/entity"
	"github.com/thisisjab/logview/eventsource"
	"github.com/thisisjab/logview/fault"
	"github.com/thisisjab/logview/provider"
)

const receiverName = "Eventlog Receiver"

var columns = []provider.Column{
	{ID: 0, Title: "Number"},
	{ID: 1, Title: "Level"},
	{ID: 2, Title: "Timestamp"},
	{ID: 3, Title: "Logger"},
	{ID: 4, Title: "Category"},
	{ID: 5, Title: "Username"},
	{ID: 6, Title: "Instance ID"},
	{ID: 7, Title: "Message"},
}

// Config is the static configuration of one receiver. Set at construction,
// never mutated.
type Config struct {
	// Log identifies which log stream to open. Required.
	Log string `yaml:"log"`

	// Host is the machine exposing the log. Blank means the local machine.
	Host string `yaml:"host"`

	// Source restricts accepted entries to those reporting exactly this
	// originating component. Blank accepts every entry.
	Source string `yaml:"source"`
}

// Receiver implements provider.Provider on top of an eventsource.Binding.
//
// The receiver runs no goroutines of its own; the binding's delivery
// goroutine is the only origin of concurrency, and deliveries may overlap.
// The dispatch path therefore takes no locks: the sequence counter is
// atomic and the handler reference is an atomic pointer swapped by
// Initialize and Shutdown. Only the binding lifecycle itself serializes on
// a mutex.
type Receiver struct {
	cfg    Config
	host   string
	open   eventsource.Opener
	logger *slog.Logger

	seq     provider.Sequence
	handler atomic.Pointer[provider.Handler]

	mu      sync.Mutex
	binding eventsource.Binding
}

// New creates a receiver that acquires its subscription through open.
// A nil logger disables logging.
func New(cfg Config, open eventsource.Opener, logger *slog.Logger) *Receiver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Receiver{
		cfg:    cfg,
		host:   normalizeHost(cfg.Host),
		open:   open,
		logger: logger.With("component", "eventlog", "log", cfg.Log),
	}
}

func (r *Receiver) Name() string {
	return receiverName
}

// Description renders the configured scope; a blank source filter shows as
// the wildcard marker.
func (r *Receiver) Description() string {
	source := r.cfg.Source
	if source == "" {
		source = "*"
	}
	return fmt.Sprintf("%s (%s - %s)", receiverName, r.cfg.Log, source)
}

func (r *Receiver) ExportFileName() string {
	return r.Description()
}

func (r *Receiver) Columns() []provider.Column {
	cols := make([]provider.Column, len(columns))
	copy(cols, columns)
	return cols
}

// SupportsReload is false: the receiver is push-only and cannot re-read
// historical entries on demand.
func (r *Receiver) SupportsReload() bool {
	return false
}

// SupportedLevels declares which levels this receiver kind can ever emit,
// so the host can configure level filters before any data arrives.
func (r *Receiver) SupportedLevels() []entity.LogLevel {
	return []entity.LogLevel{entity.LogLevelInfo, entity.LogLevelWarning, entity.LogLevelError}
}

// Initialize opens the event source binding and registers the
// translate-and-dispatch callback. It fails with an invalid_config fault
// when no log name is configured, and with whatever the opener reports
// (typically source_unavailable) when the log cannot be opened; in both
// cases the receiver stays un-initialized and the caller may retry with
// corrected configuration.
//
// Calling Initialize on an already-initialized receiver replaces the
// subscription: the previous binding is torn down first, so the receiver
// never holds two subscriptions at once.
func (r *Receiver) Initialize(h provider.Handler) error {
	if strings.TrimSpace(r.cfg.Log) == "" {
		return fault.New(fault.InvalidConfigCode, "event log name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.teardownLocked()

	b, err := r.open(r.cfg.Log, r.host, r.cfg.Source, r.logger)
	if err != nil {
		return err
	}

	// The handler must be visible before delivery is enabled so the first
	// entries are not discarded by the handler-absent check.
	r.handler.Store(&h)
	b.SetCallback(r.dispatch)
	b.Enable()
	r.binding = b

	r.logger.Info("receiver initialized", "host", r.host, "source", r.cfg.Source)
	return nil
}

// Shutdown disables delivery, drops the handler, and releases the binding.
// Safe to call repeatedly and safe when Initialize was never called.
func (r *Receiver) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.teardownLocked()
}

// teardownLocked releases the current binding, if any. Failures while
// closing the external resource are logged and swallowed so shutdown always
// completes. Caller must hold r.mu.
func (r *Receiver) teardownLocked() {
	if r.binding == nil {
		return
	}

	r.binding.Disable()
	r.handler.Store(nil)

	if err := r.binding.Close(); err != nil {
		f := fault.New(fault.TeardownCode, "closing event source binding").WithOriginal(err)
		r.logger.Warn("binding teardown failed", "error", f)
	}
	r.binding = nil

	r.logger.Info("receiver shut down")
}

// Clear resets message numbering to its baseline. The subscription is not
// touched; messages dispatched after Clear resume numbering from 1. Safe
// to call concurrently with in-flight delivery.
func (r *Receiver) Clear() {
	r.seq.Reset()
}

func (r *Receiver) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.binding != nil
}

// dispatch is the translate-and-dispatch step, invoked by the binding once
// per raw entry on the source's delivery goroutine. Entries rejected by the
// source filter are discarded without consuming a sequence number.
func (r *Receiver) dispatch(ev entity.RawEvent) {
	if !matchesSource(ev.Source, r.cfg.Source) {
		return
	}

	msg := normalize(ev, r.seq.Next())

	// The handler goes absent when a shutdown races an in-flight delivery;
	// such entries are discarded silently.
	h := r.handler.Load()
	if h == nil {
		return
	}
	(*h).HandleMessage(msg)
}

// normalize maps a raw entry into the canonical message shape. Fields the
// source did not report keep their zero values; a malformed entry degrades
// to defaults instead of failing the dispatch.
func normalize(ev entity.RawEvent, number int64) entity.LogMessage {
	ts := ev.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	return entity.LogMessage{
		Number:     number,
		Level:      parseSeverity(ev.Severity),
		Timestamp:  ts,
		Logger:     ev.Source,
		Category:   ev.Category,
		Username:   ev.Username,
		InstanceID: ev.InstanceID,
		Message:    ev.Message,
	}
}

// parseSeverity maps a source-native severity onto the levels this receiver
// emits. Anything unrecognized counts as informational.
func parseSeverity(severity string) entity.LogLevel {
	switch strings.ToUpper(strings.TrimSpace(severity)) {
	case "WARN", "WARNING":
		return entity.LogLevelWarning
	case "ERR", "ERROR", "FAILURE":
		return entity.LogLevelError
	default:
		return entity.LogLevelInfo
	}
}

// localHost is the sentinel for the machine the receiver runs on.
const localHost = "."

// normalizeHost maps a blank host to the local sentinel. Applied once at
// construction.
func normalizeHost(host string) string {
	if strings.TrimSpace(host) == "" {
		return localHost
	}
	return host
}
