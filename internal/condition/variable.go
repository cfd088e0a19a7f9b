package condition

import "sync/atomic"

// Variable is a named boolean owned by exactly one Registry. The flag is a
// single atomic word: the match path reads it without ordering guarantees
// beyond eventual visibility, which is sufficient for an operator-driven
// on/off toggle. The refcount and the endpoint pointer are registry-private
// and only touched under the registry mutex.
type Variable struct {
	name    string
	enabled atomic.Bool

	// Guarded by Registry.mu.
	refcount int
	file     *StatusFile
}

// Name returns the variable's immutable name.
func (v *Variable) Name() string { return v.name }

// Enabled reads the flag. Safe to call concurrently with SetEnabled.
func (v *Variable) Enabled() bool { return v.enabled.Load() }

// SetEnabled writes the flag. Safe to call concurrently with Enabled.
func (v *Variable) SetEnabled(on bool) { v.enabled.Store(on) }

// Handle is the opaque reference a rule holds to its acquired variable.
// It stays valid until released back to the registry exactly once; the
// refcount guarantees the variable is not freed while any handle is
// outstanding.
type Handle struct {
	v *Variable
}

// Name returns the name of the referenced variable.
func (h *Handle) Name() string { return h.v.name }

// Enabled reads the referenced variable's flag without locking.
func (h *Handle) Enabled() bool { return h.v.Enabled() }
