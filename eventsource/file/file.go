// Package file provides an event source binding over an append-only log
// file. It works by watching the file for changes and mapping new lines to
// raw events as they are written.
package file

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"github.com/thisisjab/logview/entity"
	"github.com/thisisjab/logview/eventsource"
	"github.com/thisisjab/logview/fault"
)

// Options selects how lines are mapped to raw events.
type Options struct {
	// Format is one of "plain", "json", "lua". Defaults to "plain".
	Format string `yaml:"format"`

	// ScriptPath locates the Lua mapping script. Required for Format "lua".
	ScriptPath string `yaml:"script_path"`

	// Fields overrides the JSON field names read by the "json" format.
	Fields FieldNames `yaml:"fields"`
}

// NewOpener returns an Opener that tails the log file named by the log
// argument. The host must be the local sentinel: this backend cannot reach
// files on other machines.
func NewOpener(opts Options) (eventsource.Opener, error) {
	newMapper, err := mapperBuilder(opts)
	if err != nil {
		return nil, err
	}

	return func(log, host, source string, logger *slog.Logger) (eventsource.Binding, error) {
		if host != "." {
			return nil, fault.New(fault.SourceUnavailableCode,
				fmt.Sprintf("file backend cannot open logs on host %q", host))
		}

		f, err := os.Open(log)
		if err != nil {
			return nil, fault.New(fault.SourceUnavailableCode,
				fmt.Sprintf("cannot open log file %q", log)).WithOriginal(err)
		}

		// Start at the end: a live binding only sees entries appended after
		// it was opened.
		if _, err := f.Seek(0, io.SeekEnd); err != nil {
			_ = f.Close()
			return nil, fault.New(fault.SourceUnavailableCode,
				fmt.Sprintf("cannot seek log file %q", log)).WithOriginal(err)
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			_ = f.Close()
			return nil, fault.New(fault.SourceUnavailableCode, "cannot create watcher").WithOriginal(err)
		}
		if err := watcher.Add(log); err != nil {
			_ = watcher.Close()
			_ = f.Close()
			return nil, fault.New(fault.SourceUnavailableCode,
				fmt.Sprintf("cannot watch log file %q", log)).WithOriginal(err)
		}

		if logger == nil {
			logger = slog.New(slog.DiscardHandler)
		}

		b := &binding{
			path:    log,
			mapper:  newMapper(),
			logger:  logger.With("backend", "file", "path", log),
			file:    f,
			reader:  bufio.NewReader(f),
			watcher: watcher,
			done:    make(chan struct{}),
		}
		go b.run()
		return b, nil
	}, nil
}

func mapperBuilder(opts Options) (func() Mapper, error) {
	switch opts.Format {
	case "", "plain":
		return func() Mapper { return plainMapper{} }, nil
	case "json":
		m := newJSONMapper(opts.Fields)
		return func() Mapper { return m }, nil
	case "lua":
		if opts.ScriptPath == "" {
			return nil, fault.New(fault.InvalidConfigCode, "lua format requires script_path")
		}
		m, err := newLuaMapper(opts.ScriptPath)
		if err != nil {
			return nil, err
		}
		return func() Mapper { return m }, nil
	default:
		return nil, fault.New(fault.InvalidConfigCode,
			fmt.Sprintf("unknown file mapping format %q", opts.Format))
	}
}

type binding struct {
	path   string
	mapper Mapper
	logger *slog.Logger

	cbMu sync.Mutex
	cb   func(entity.RawEvent)

	enabled atomic.Bool

	file    *os.File
	reader  *bufio.Reader
	watcher *fsnotify.Watcher

	// pending holds a partially written line until its terminator arrives.
	// Touched only by the delivery goroutine.
	pending []byte

	closeOnce sync.Once
	closeErr  error
	done      chan struct{}
}

func (b *binding) SetCallback(fn func(entity.RawEvent)) {
	b.cbMu.Lock()
	defer b.cbMu.Unlock()
	b.cb = fn
}

func (b *binding) Enable() {
	b.enabled.Store(true)
}

func (b *binding) Disable() {
	b.enabled.Store(false)
}

func (b *binding) Close() error {
	b.closeOnce.Do(func() {
		close(b.done)
		b.closeErr = errors.Join(b.watcher.Close(), b.file.Close())
	})
	return b.closeErr
}

// run is the delivery goroutine. It exits when the binding is closed or the
// watcher channels close underneath it.
func (b *binding) run() {
	for {
		select {
		case <-b.done:
			return

		case event, ok := <-b.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) {
				// Rotation via rename/recreate is not followed; the binding
				// tracks a single open handle for its whole lifetime.
				b.logger.Debug("ignoring file event", "event", event.String())
				continue
			}
			b.drain()

		case err, ok := <-b.watcher.Errors:
			if !ok {
				return
			}
			b.logger.Warn("watcher error", "error", err)
		}
	}
}

// drain reads every complete line appended since the last read and delivers
// each as one raw event.
func (b *binding) drain() {
	for {
		line, err := b.reader.ReadBytes('\n')
		if err != nil {
			// An unterminated tail is a line still being written; hold it
			// until the terminator shows up.
			b.pending = append(b.pending, line...)
			if !errors.Is(err, io.EOF) {
				b.logger.Warn("read failed", "error", err)
			}
			return
		}

		if len(b.pending) > 0 {
			line = append(b.pending, line...)
			b.pending = nil
		}
		if trimmed := trimEOL(line); len(trimmed) > 0 {
			b.deliver(b.mapper.Map(trimmed))
		}
	}
}

func (b *binding) deliver(ev entity.RawEvent) {
	if !b.enabled.Load() {
		return
	}
	b.cbMu.Lock()
	cb := b.cb
	b.cbMu.Unlock()
	if cb != nil {
		cb(ev)
	}
}

func trimEOL(line []byte) []byte {
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	return line
}
