package condition

import (
	"fmt"
	"sort"
	"sync"

	"grimm.is/nfcond/internal/logging"
	"grimm.is/nfcond/internal/metrics"
)

// Mount is the directory-like substrate a registry publishes its endpoints
// into. Implementations live outside the core (see internal/condfs); the
// registry only relies on create/remove being bounded local operations.
type Mount interface {
	// Create publishes the endpoint for a newly created variable. An error
	// aborts the acquire that triggered it.
	Create(name string, f *StatusFile) error

	// Remove unpublishes the endpoint of a destroyed variable.
	Remove(name string)

	// RemoveAll tears down the mount root and anything still published
	// under it.
	RemoveAll()
}

// nopMount backs registries that need no external surface (tests, embedded use).
type nopMount struct{}

func (nopMount) Create(string, *StatusFile) error { return nil }
func (nopMount) Remove(string)                    {}
func (nopMount) RemoveAll()                       {}

// Options configures a Registry.
type Options struct {
	Logger *logging.Logger

	// OnCreate/OnDestroy observe variable lifecycle, called outside the
	// registry mutex.
	OnCreate  func(name string)
	OnDestroy func(name string)

	// OnToggle observes endpoint writes; applied reports whether the write
	// carried a recognized first byte.
	OnToggle func(name string, enabled, applied bool)
}

// Registry owns the condition variables of one isolated context. A single
// mutex serializes every structural change — lookup-or-create, refcount
// changes, and removal at refcount zero — so concurrent rule attach/detach
// cannot observe partial state. The mutex is never taken on the match path.
type Registry struct {
	name  string
	mount Mount
	opts  Options
	log   *logging.Logger

	mu     sync.Mutex
	vars   map[string]*Variable
	closed bool
}

// VariableInfo is a point-in-time snapshot of one live variable.
type VariableInfo struct {
	Name     string `json:"name"`
	Enabled  bool   `json:"enabled"`
	Refcount int    `json:"refcount"`
}

// New creates a registry for the isolated context identified by name.
// A nil mount means the registry has no external surface.
func New(name string, mount Mount, opts Options) *Registry {
	if mount == nil {
		mount = nopMount{}
	}
	log := opts.Logger
	if log == nil {
		log = logging.Default()
	}
	metrics.Get().RegistriesLive.Inc()
	return &Registry{
		name:  name,
		mount: mount,
		opts:  opts,
		log:   log,
		vars:  make(map[string]*Variable),
	}
}

// Name returns the context name this registry belongs to.
func (r *Registry) Name() string { return r.name }

// Acquire returns a handle to the variable called name, creating it with
// enabled=false on first reference. Every successful Acquire must be paired
// with exactly one Release. Validation or endpoint-creation failure leaves
// the registry unchanged.
func (r *Registry) Acquire(name string) (*Handle, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrRegistryClosed
	}

	if v, ok := r.vars[name]; ok {
		v.refcount++
		r.mu.Unlock()
		metrics.Get().AcquiresTotal.WithLabelValues(r.name).Inc()
		return &Handle{v: v}, nil
	}

	v := &Variable{name: name, refcount: 1}
	f := newStatusFile(v, r.toggled)
	if err := r.mount.Create(name, f); err != nil {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: endpoint for %q: %v", ErrResourceExhausted, name, err)
	}
	v.file = f
	r.vars[name] = v
	r.mu.Unlock()

	metrics.Get().AcquiresTotal.WithLabelValues(r.name).Inc()
	metrics.Get().VariablesLive.WithLabelValues(r.name).Inc()
	r.log.Debug("condition variable created", "registry", r.name, "name", name)
	if r.opts.OnCreate != nil {
		r.opts.OnCreate(name)
	}
	return &Handle{v: v}, nil
}

// Release returns a handle obtained from Acquire. When the last reference
// is dropped the variable and its endpoint are destroyed atomically with
// the count reaching zero. Calling Release more than once per Acquire is a
// caller contract violation.
func (r *Registry) Release(h *Handle) {
	v := h.v

	r.mu.Lock()
	v.refcount--
	last := v.refcount == 0
	if last {
		delete(r.vars, v.name)
		r.mount.Remove(v.name)
	}
	r.mu.Unlock()

	metrics.Get().ReleasesTotal.WithLabelValues(r.name).Inc()
	if last {
		metrics.Get().VariablesLive.WithLabelValues(r.name).Dec()
		r.log.Debug("condition variable destroyed", "registry", r.name, "name", v.name)
		if r.opts.OnDestroy != nil {
			r.opts.OnDestroy(v.name)
		}
	}
}

// File returns the endpoint of a live variable, for control surfaces that
// expose it (HTTP, CLI). The second result is false if no such variable
// exists.
func (r *Registry) File(name string) (*StatusFile, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vars[name]
	if !ok {
		return nil, false
	}
	return v.file, true
}

// Len returns the number of live variables.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.vars)
}

// Names returns the names of all live variables, sorted.
func (r *Registry) Names() []string {
	r.mu.Lock()
	names := make([]string, 0, len(r.vars))
	for n := range r.vars {
		names = append(names, n)
	}
	r.mu.Unlock()
	sort.Strings(names)
	return names
}

// Snapshot returns the state of all live variables, sorted by name.
func (r *Registry) Snapshot() []VariableInfo {
	r.mu.Lock()
	infos := make([]VariableInfo, 0, len(r.vars))
	for _, v := range r.vars {
		infos = append(infos, VariableInfo{Name: v.name, Enabled: v.Enabled(), Refcount: v.refcount})
	}
	r.mu.Unlock()
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// Close begins teardown: subsequent Acquires fail with ErrRegistryClosed,
// the mount root is removed recursively, and the collection is discarded.
// Teardown normally runs after every rule has detached; variables still
// live at this point are logged and dropped rather than left to corrupt
// state. Close is idempotent.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	leaked := make([]string, 0, len(r.vars))
	for n := range r.vars {
		leaked = append(leaked, n)
	}
	r.vars = make(map[string]*Variable)
	r.mount.RemoveAll()
	r.mu.Unlock()

	metrics.Get().RegistriesLive.Dec()
	for _, n := range leaked {
		metrics.Get().VariablesLive.WithLabelValues(r.name).Dec()
		r.log.Warn("condition variable leaked at registry teardown", "registry", r.name, "name", n)
	}
}

// toggled is the registry's endpoint-write observer, fanned out to metrics
// and the configured hook. Runs on the writer's goroutine, no lock held.
func (r *Registry) toggled(name string, enabled, applied bool) {
	result := "ignored"
	if applied {
		result = "applied"
	}
	metrics.Get().ToggleWrites.WithLabelValues(r.name, result).Inc()
	if r.opts.OnToggle != nil {
		r.opts.OnToggle(name, enabled, applied)
	}
}
