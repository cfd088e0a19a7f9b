package condfs

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"grimm.is/nfcond/internal/condition"
	"grimm.is/nfcond/internal/logging"
)

// DiskDir is a condition.Mount backed by a real directory: one file per
// live variable holding "0\n" or "1\n". Operators toggle a variable by
// writing into its file; Watch picks the edit up and feeds it through the
// endpoint's first-byte write semantics, then re-renders the canonical
// representation.
type DiskDir struct {
	root string
	mode os.FileMode
	log  *logging.Logger

	mu    sync.Mutex
	files map[string]*condition.StatusFile
}

// NewDiskDir creates (or reuses) the directory parent/name and returns a
// mount rooted there.
func NewDiskDir(parent, name string, mode os.FileMode, logger *logging.Logger) (*DiskDir, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if mode == 0 {
		mode = 0o644
	}
	root := filepath.Join(parent, name)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create mount root %s: %w", root, err)
	}
	return &DiskDir{
		root:  root,
		mode:  mode,
		log:   logger.WithComponent("condfs"),
		files: make(map[string]*condition.StatusFile),
	}, nil
}

// Root returns the directory this mount renders into.
func (d *DiskDir) Root() string { return d.root }

// Create implements condition.Mount: renders the initial state file.
func (d *DiskDir) Create(name string, f *condition.StatusFile) error {
	path := filepath.Join(d.root, name)
	if err := os.WriteFile(path, f.ReadAll(), d.mode); err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	d.mu.Lock()
	d.files[name] = f
	d.mu.Unlock()
	return nil
}

// Remove implements condition.Mount.
func (d *DiskDir) Remove(name string) {
	d.mu.Lock()
	delete(d.files, name)
	d.mu.Unlock()
	if err := os.Remove(filepath.Join(d.root, name)); err != nil && !os.IsNotExist(err) {
		d.log.Warn("failed to remove status file", "name", name, "error", err)
	}
}

// RemoveAll implements condition.Mount: tears down the root recursively,
// including any file still present.
func (d *DiskDir) RemoveAll() {
	d.mu.Lock()
	d.files = make(map[string]*condition.StatusFile)
	d.mu.Unlock()
	if err := os.RemoveAll(d.root); err != nil {
		d.log.Warn("failed to remove mount root", "root", d.root, "error", err)
	}
}

// Sync re-renders the canonical state of one variable, after a toggle from
// another control surface (API, trigger).
func (d *DiskDir) Sync(name string) {
	d.mu.Lock()
	f, ok := d.files[name]
	d.mu.Unlock()
	if !ok {
		return
	}
	d.render(name, f)
}

// Ingest applies an operator payload to a published endpoint, as if it had
// been written into the file, and re-renders. Returns the consumed length.
func (d *DiskDir) Ingest(name string, payload []byte) (int, bool) {
	d.mu.Lock()
	f, ok := d.files[name]
	d.mu.Unlock()
	if !ok {
		return 0, false
	}
	n, _ := f.Write(payload)
	d.render(name, f)
	return n, true
}

// Watch polls the rendered files and feeds operator edits through the
// endpoint write path. It returns when ctx is done. Direct file edits are
// the slow, human-driven path; polling keeps the substrate free of
// platform-specific watchers.
func (d *DiskDir) Watch(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.sweep()
		}
	}
}

// sweep compares each rendered file with its canonical state and applies
// any divergence as an operator write.
func (d *DiskDir) sweep() {
	d.mu.Lock()
	snapshot := make(map[string]*condition.StatusFile, len(d.files))
	for name, f := range d.files {
		snapshot[name] = f
	}
	d.mu.Unlock()

	for name, f := range snapshot {
		path := filepath.Join(d.root, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if bytes.Equal(data, f.ReadAll()) {
			continue
		}
		if len(data) > 0 {
			f.Write(data)
		}
		d.render(name, f)
	}
}

func (d *DiskDir) render(name string, f *condition.StatusFile) {
	path := filepath.Join(d.root, name)
	if err := os.WriteFile(path, f.ReadAll(), d.mode); err != nil {
		d.log.Warn("failed to render status file", "name", name, "error", err)
	}
}
