// Package host manages the set of configured log providers on behalf of
// the application shell: registration, initialization, teardown, and the
// opaque UI factory hooks the shell attaches to each provider.
package host

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/thisisjab/logview/entity"
	"github.com/thisisjab/logview/provider"
)

// Views carries the UI factory hooks for one provider. The concrete view
// types are supplied by the application shell; this package never looks
// inside them. Either hook may be nil when the shell has no view for it.
type Views struct {
	Settings func(p provider.Provider) any
	Details  func(msg entity.LogMessage) any
}

type entry struct {
	provider provider.Provider
	handler  provider.Handler
	views    Views
}

// Manager owns the registered providers. Registration is expected at
// startup, before InitializeAll; lifecycle calls may come later from other
// goroutines, so all access is serialized on a mutex.
type Manager struct {
	logger *slog.Logger

	mu      sync.Mutex
	order   []uuid.UUID
	entries map[uuid.UUID]*entry
}

func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{
		logger:  logger.With("component", "host"),
		entries: make(map[uuid.UUID]*entry),
	}
}

// Register adds a provider with the handler its messages go to and the
// shell's view hooks, returning the identity the manager knows it by.
func (m *Manager) Register(p provider.Provider, h provider.Handler, views Views) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.New()
	m.order = append(m.order, id)
	m.entries[id] = &entry{provider: p, handler: h, views: views}

	m.logger.Debug("provider registered", "id", id, "provider", p.Description())
	return id
}

// InitializeAll initializes every registered provider. Providers that fail
// stay un-initialized while the rest proceed; the joined failures are
// returned so the shell can mark those providers as not receiving.
func (m *Manager) InitializeAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for _, id := range m.order {
		e := m.entries[id]
		if err := e.provider.Initialize(e.handler); err != nil {
			m.logger.Error("provider failed to initialize", "id", id, "provider", e.provider.Description(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", e.provider.Description(), err))
			continue
		}
	}
	return errors.Join(errs...)
}

// ShutdownAll tears every provider down. Shutdown never propagates errors,
// so this always completes.
func (m *Manager) ShutdownAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range m.order {
		m.entries[id].provider.Shutdown()
	}
}

// ClearAll resets message numbering on every provider.
func (m *Manager) ClearAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range m.order {
		m.entries[id].provider.Clear()
	}
}

// Provider looks up a registered provider by identity.
func (m *Manager) Provider(id uuid.UUID) (provider.Provider, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok {
		return nil, false
	}
	return e.provider, true
}

// Views returns the UI hooks registered for a provider.
func (m *Manager) Views(id uuid.UUID) (Views, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok {
		return Views{}, false
	}
	return e.views, true
}

// IDs returns the provider identities in registration order.
func (m *Manager) IDs() []uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]uuid.UUID, len(m.order))
	copy(out, m.order)
	return out
}
