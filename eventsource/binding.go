// Package eventsource abstracts push-based external log sources behind a
// uniform subscription handle. A Binding owns exactly one subscription to
// one external source; providers acquire a binding on Initialize and release
// it on Shutdown, never reusing a binding across lifecycles.
package eventsource

import (
	"log/slog"

	"github.com/thisisjab/logview/entity"
)

// Binding is one live subscription to an external push-based log source.
//
// The raw-event callback is invoked on whatever goroutine the source
// chooses to deliver on: thread identity and delivery rate are unspecified,
// and invocations may overlap if the source supports concurrent
// notifications. Bindings start with delivery disabled.
//
// Disable guarantees that no new callback invocation begins after it
// returns; a single invocation that already started may still complete.
// Close releases the underlying resource and is safe after Disable, and
// safe when the subscription was never successfully established.
type Binding interface {
	SetCallback(fn func(entity.RawEvent))
	Enable()
	Disable()
	Close() error
}

// Opener establishes a Binding against a named log stream.
//
// log identifies the stream within the source; what it names is backend
// specific (file path, event channel). host identifies the machine exposing
// it; the local sentinel "." means this machine. source is a hint naming
// the originating component the caller cares about; backends may use it to
// narrow the subscription but filtering remains the caller's job.
//
// Openers return a fault with code source_unavailable when the log does
// not exist on the given host or cannot be accessed.
type Opener func(log, host, source string, logger *slog.Logger) (Binding, error)
