// Package provider defines the contract between the host application and
// pluggable log providers. A provider attaches to some external log source,
// normalizes whatever that source emits into entity.LogMessage values, and
// pushes them into the Handler the host registered via Initialize.
package provider

import "github.com/thisisjab/logview/entity"

// Handler consumes normalized log messages pushed by a provider.
// Implementations are supplied by the host application. Providers do not
// inspect or react to the outcome of HandleMessage; handler failures are
// the handler's responsibility.
type Handler interface {
	HandleMessage(msg entity.LogMessage)
}

// Column describes one display column of a provider's message schema.
// Column order is significant and fixed per provider kind.
type Column struct {
	ID    int
	Title string
}

// Provider is the capability set every log provider exposes to the host.
//
// Lifecycle: Initialize opens the underlying subscription and registers the
// handler; Shutdown tears it down and must be idempotent and safe to call
// when Initialize was never called or failed. Clear resets per-lifetime
// message numbering without touching the subscription.
//
// Metadata accessors (Name, Description, Columns, SupportedLevels,
// CSVHeader, ...) are pure with respect to the provider's configuration and
// may be called at any time, including before Initialize.
type Provider interface {
	Name() string
	Description() string
	ExportFileName() string
	Columns() []Column
	SupportsReload() bool
	SupportedLevels() []entity.LogLevel
	CSVHeader() string

	Initialize(h Handler) error
	Shutdown()
	Clear()

	// Active reports whether the provider currently holds a live
	// subscription. A provider whose Initialize failed is not active,
	// which distinguishes "not receiving" from "receiving but idle".
	Active() bool
}
