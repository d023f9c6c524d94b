// Package chatter provides a synthetic event source binding that invents
// plausible raw events at a randomized interval. It exists for demos and
// soak testing: no external daemon or file is needed to watch a receiver
// work.
package chatter

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/thisisjab/logview/entity"
	"github.com/thisisjab/logview/eventsource"
	"github.com/thisisjab/logview/fault"
)

const (
	defaultMinInterval = 200 * time.Millisecond
	defaultMaxInterval = 2 * time.Second
)

var (
	defaultSources = []string{"AppService", "Scheduler", "UpdateAgent", "Netlogon"}
	defaultUsers   = []string{"", "SYSTEM", "svc-backup"}

	severities = []string{"info", "info", "info", "warning", "error"}

	templates = []string{
		"service entered the running state",
		"configuration reloaded from disk",
		"request took longer than expected",
		"connection to peer lost, retrying",
	}
)

// Options tunes the generator. Zero values fall back to defaults.
type Options struct {
	MinInterval time.Duration `yaml:"min_interval"`
	MaxInterval time.Duration `yaml:"max_interval"`
	Sources     []string      `yaml:"sources"`
	Users       []string      `yaml:"users"`
}

// NewOpener returns an Opener producing synthetic bindings. The log and
// host arguments are accepted for interface symmetry and only recorded in
// log output.
func NewOpener(opts Options) (eventsource.Opener, error) {
	if opts.MinInterval == 0 {
		opts.MinInterval = defaultMinInterval
	}
	if opts.MaxInterval == 0 {
		opts.MaxInterval = defaultMaxInterval
	}
	if opts.MinInterval < 0 || opts.MaxInterval < 0 {
		return nil, fault.New(fault.InvalidConfigCode, "chatter intervals must be non-negative")
	}
	if opts.MinInterval > opts.MaxInterval {
		return nil, fault.New(fault.InvalidConfigCode,
			fmt.Sprintf("chatter min_interval (%v) must not exceed max_interval (%v)",
				opts.MinInterval, opts.MaxInterval))
	}
	if len(opts.Sources) == 0 {
		opts.Sources = defaultSources
	}
	if len(opts.Users) == 0 {
		opts.Users = defaultUsers
	}

	return func(log, host, source string, logger *slog.Logger) (eventsource.Binding, error) {
		if logger == nil {
			logger = slog.New(slog.DiscardHandler)
		}

		b := &binding{
			opts:   opts,
			rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
			logger: logger.With("backend", "chatter", "log", log),
			done:   make(chan struct{}),
		}
		go b.run()
		return b, nil
	}, nil
}

type binding struct {
	opts   Options
	rng    *rand.Rand
	logger *slog.Logger

	cbMu sync.Mutex
	cb   func(entity.RawEvent)

	enabled atomic.Bool

	closeOnce sync.Once
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
	})
	return nil
}

func (b *binding) run() {
	for {
		select {
		case <-b.done:
			return
		case <-time.After(b.nextInterval()):
			b.deliver(b.generate())
		}
	}
}

func (b *binding) nextInterval() time.Duration {
	span := b.opts.MaxInterval - b.opts.MinInterval
	if span <= 0 {
		return b.opts.MinInterval
	}
	return b.opts.MinInterval + time.Duration(b.rng.Int64N(int64(span)))
}

func (b *binding) generate() entity.RawEvent {
	msg := templates[b.rng.IntN(len(templates))]
	if b.rng.IntN(100) < 20 {
		msg = fmt.Sprintf("scheduled task finished with code %d", b.rng.IntN(4))
	}

	return entity.RawEvent{
		Source:     b.opts.Sources[b.rng.IntN(len(b.opts.Sources))],
		Severity:   severities[b.rng.IntN(len(severities))],
		Timestamp:  time.Now(),
		Category:   "synthetic",
		Username:   b.opts.Users[b.rng.IntN(len(b.opts.Users))],
		InstanceID: int64(1000 + b.rng.IntN(9000)),
		Message:    msg,
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
