// Package condfs provides the directory-like substrates a condition
// registry publishes its variable endpoints into: an in-memory directory
// for tests and embedded use, and an on-disk directory of status files
// mirroring the original /proc/net/nf_condition layout.
package condfs

import (
	"sync"

	"grimm.is/nfcond/internal/condition"
)

// MemDir is an in-memory condition.Mount.
type MemDir struct {
	mu      sync.Mutex
	files   map[string]*condition.StatusFile
	removed bool
}

// NewMemDir creates an empty in-memory mount.
func NewMemDir() *MemDir {
	return &MemDir{files: make(map[string]*condition.StatusFile)}
}

// Create implements condition.Mount.
func (d *MemDir) Create(name string, f *condition.StatusFile) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.files[name] = f
	return nil
}

// Remove implements condition.Mount.
func (d *MemDir) Remove(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.files, name)
}

// RemoveAll implements condition.Mount.
func (d *MemDir) RemoveAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.files = make(map[string]*condition.StatusFile)
	d.removed = true
}

// Lookup returns the endpoint published under name, if any.
func (d *MemDir) Lookup(name string) (*condition.StatusFile, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	f, ok := d.files[name]
	return f, ok
}

// Len returns the number of published endpoints.
func (d *MemDir) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.files)
}

// Removed reports whether RemoveAll has run.
func (d *MemDir) Removed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.removed
}
