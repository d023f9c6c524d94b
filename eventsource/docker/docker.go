// Package docker provides an event source binding over the Docker engine
// event stream. The daemon is a push-based external log: every lifecycle
// event it emits becomes one raw entry, with the container (or other actor)
// name as the reported source.
package docker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/docker/docker/api/types/events"
	"github.com/docker/docker/api/types/filters"
	dockerclient "github.com/docker/docker/client"

	"github.com/thisisjab/logview/entity"
	"github.com/thisisjab/logview/eventsource"
	"github.com/thisisjab/logview/fault"
)

// Open establishes a binding against a Docker daemon.
//
// log selects the event type stream ("container", "image", "network", ...);
// blank or "all" subscribes to every type. host selects the daemon: the
// local sentinel "." uses the environment default (DOCKER_HOST or the unix
// socket), anything else is passed to the client as the daemon address.
func Open(log, host, source string, logger *slog.Logger) (eventsource.Binding, error) {
	opts := []dockerclient.Opt{
		dockerclient.FromEnv,
		dockerclient.WithAPIVersionNegotiation(),
	}
	if host != "." {
		opts = append(opts, dockerclient.WithHost(host))
	}

	cli, err := dockerclient.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fault.New(fault.SourceUnavailableCode, "cannot create docker client").WithOriginal(err)
	}

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := cli.Ping(pingCtx); err != nil {
		_ = cli.Close()
		return nil, fault.New(fault.SourceUnavailableCode,
			fmt.Sprintf("docker daemon on %q is unreachable", host)).WithOriginal(err)
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	ctx, stop := context.WithCancel(context.Background())
	b := &binding{
		cli:    cli,
		stop:   stop,
		logger: logger.With("backend", "docker", "host", host),
	}
	go b.run(ctx, eventFilter(log))
	return b, nil
}

func eventFilter(log string) filters.Args {
	if log == "" || log == "all" {
		return filters.NewArgs()
	}
	return filters.NewArgs(filters.Arg("type", log))
}

type binding struct {
	cli    *dockerclient.Client
	stop   context.CancelFunc
	logger *slog.Logger

	cbMu sync.Mutex
	cb   func(entity.RawEvent)

	enabled atomic.Bool

	closeOnce sync.Once
	closeErr  error
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
		b.stop()
		b.closeErr = b.cli.Close()
	})
	return b.closeErr
}

// run is the delivery goroutine: it resubscribes to the daemon's event
// stream until the binding is closed.
func (b *binding) run(ctx context.Context, filter filters.Args) {
	for ctx.Err() == nil {
		msgCh, errCh := b.cli.Events(ctx, events.ListOptions{Filters: filter})
		b.consume(ctx, msgCh, errCh)

		// The stream broke; back off before resubscribing, the daemon may
		// be restarting.
		select {
		case <-time.After(time.Second):
		case <-ctx.Done():
		}
	}
}

// consume drains one event stream until it errors or the context ends.
func (b *binding) consume(ctx context.Context, msgCh <-chan events.Message, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return

		case msg, ok := <-msgCh:
			if !ok {
				return
			}
			b.deliver(mapMessage(msg))

		case err, ok := <-errCh:
			if ok && ctx.Err() == nil {
				b.logger.Warn("event stream broke, resubscribing", "error", err)
			}
			return
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

// mapMessage converts one daemon event into the raw entry shape.
func mapMessage(msg events.Message) entity.RawEvent {
	ts := time.Unix(0, msg.TimeNano)
	if msg.TimeNano == 0 {
		ts = time.Unix(msg.Time, 0)
	}

	return entity.RawEvent{
		Source:    actorName(msg),
		Severity:  severityForAction(string(msg.Action)),
		Timestamp: ts,
		Category:  string(msg.Type),
		Message:   fmt.Sprintf("%s %s %s", msg.Type, msg.Action, actorName(msg)),
	}
}

// actorName extracts the display name of the event's actor, falling back to
// a shortened ID when the daemon reports no name attribute.
func actorName(msg events.Message) string {
	if name := msg.Actor.Attributes["name"]; name != "" {
		return name
	}
	id := msg.Actor.ID
	if len(id) > 12 {
		id = id[:12]
	}
	return id
}

// severityForAction maps daemon actions onto native severities: abnormal
// terminations rank as errors, everything else is informational.
func severityForAction(action string) string {
	switch action {
	case "die", "kill", "oom", "destroy":
		return "error"
	default:
		return "info"
	}
}
