// Package namespace manages one condition registry per isolated context.
// Contexts are explicit objects: creating one allocates a registry and its
// mount root, destroying one tears both down. Nothing here touches kernel
// namespaces; the isolation boundary is handed to us by name.
package namespace

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"grimm.is/nfcond/internal/condition"
	"grimm.is/nfcond/internal/events"
	"grimm.is/nfcond/internal/logging"
)

var (
	// ErrExists is returned when creating a context that is already live.
	ErrExists = errors.New("namespace: already exists")

	// ErrNotFound is returned for operations on an unknown context.
	ErrNotFound = errors.New("namespace: not found")
)

// State tracks a context through its lifecycle.
type State int

const (
	StateCreated State = iota
	StateLive
	StateDestroying
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateLive:
		return "live"
	case StateDestroying:
		return "destroying"
	default:
		return "destroyed"
	}
}

// MountFactory builds the external mount root for a new context. Returning
// an error aborts context creation.
type MountFactory func(name string) (condition.Mount, error)

// syncer is implemented by mounts that re-render state after a toggle from
// another control surface (condfs.DiskDir).
type syncer interface {
	Sync(name string)
}

// Options configures a Manager.
type Options struct {
	Logger   *logging.Logger
	Hub      *events.Hub
	NewMount MountFactory
}

// Manager owns all live contexts.
type Manager struct {
	log      *logging.Logger
	hub      *events.Hub
	newMount MountFactory

	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	reg   *condition.Registry
	mount condition.Mount
	state State
}

// NewManager creates an empty context manager. A nil mount factory means
// contexts get no external surface.
func NewManager(opts Options) *Manager {
	log := opts.Logger
	if log == nil {
		log = logging.Default()
	}
	return &Manager{
		log:      log.WithComponent("namespace"),
		hub:      opts.Hub,
		newMount: opts.NewMount,
		entries:  make(map[string]*entry),
	}
}

// Create allocates a context: registry plus mount root. The context is
// live and accepting acquires when Create returns.
func (m *Manager) Create(name string) (*condition.Registry, error) {
	if err := condition.ValidateName(name); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[name]; ok {
		return nil, fmt.Errorf("%w: %q", ErrExists, name)
	}

	var mount condition.Mount
	if m.newMount != nil {
		var err error
		mount, err = m.newMount(name)
		if err != nil {
			return nil, fmt.Errorf("mount root for %q: %w", name, err)
		}
	}

	e := &entry{state: StateCreated, mount: mount}
	e.reg = condition.New(name, mount, condition.Options{
		Logger: m.log,
		OnCreate: func(cond string) {
			if m.hub != nil {
				m.hub.EmitConditionLifecycle(events.EventConditionCreated, name, cond)
			}
		},
		OnDestroy: func(cond string) {
			if m.hub != nil {
				m.hub.EmitConditionLifecycle(events.EventConditionDestroyed, name, cond)
			}
		},
		OnToggle: func(cond string, enabled, applied bool) {
			if s, ok := mount.(syncer); ok && applied {
				s.Sync(cond)
			}
			if m.hub != nil {
				m.hub.EmitConditionToggled(name, cond, enabled, applied)
			}
		},
	})
	e.state = StateLive
	m.entries[name] = e

	m.log.Info("context created", "namespace", name)
	if m.hub != nil {
		m.hub.EmitNamespace(events.EventNamespaceCreated, name)
	}
	return e.reg, nil
}

// Get returns the registry of a live context.
func (m *Manager) Get(name string) (*condition.Registry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[name]
	if !ok || e.state != StateLive {
		return nil, false
	}
	return e.reg, true
}

// Destroy tears a context down: the registry stops accepting acquires, the
// mount root is removed recursively, and the context is forgotten. Rules
// should have detached first; leaked variables are logged, not fatal.
func (m *Manager) Destroy(name string) error {
	m.mu.Lock()
	e, ok := m.entries[name]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	e.state = StateDestroying
	delete(m.entries, name)
	m.mu.Unlock()

	e.reg.Close()
	e.state = StateDestroyed

	m.log.Info("context destroyed", "namespace", name)
	if m.hub != nil {
		m.hub.EmitNamespace(events.EventNamespaceDestroyed, name)
	}
	return nil
}

// Names returns the names of all live contexts, sorted.
func (m *Manager) Names() []string {
	m.mu.Lock()
	names := make([]string, 0, len(m.entries))
	for n := range m.entries {
		names = append(names, n)
	}
	m.mu.Unlock()
	sort.Strings(names)
	return names
}

// Close destroys every remaining context.
func (m *Manager) Close() {
	for _, name := range m.Names() {
		if err := m.Destroy(name); err != nil && !errors.Is(err, ErrNotFound) {
			m.log.Warn("context teardown failed", "namespace", name, "error", err)
		}
	}
}
