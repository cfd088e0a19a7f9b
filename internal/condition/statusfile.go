package condition

// StatusFile is the file-like endpoint through which operators inspect and
// toggle one variable. It implements the procfs-style contract: reads yield
// a single line "0\n" or "1\n", writes are interpreted by their first byte
// only, and unrecognized payloads are consumed without effect rather than
// rejected. The permissive write behavior is deliberate and covered by
// tests; upgrading it to an error would break the established echo-based
// operator workflow.
type StatusFile struct {
	v *Variable

	// notify, when set, observes every write: applied reports whether the
	// payload actually carried a '0' or '1' first byte. Called outside any
	// registry lock.
	notify func(name string, enabled, applied bool)
}

func newStatusFile(v *Variable, notify func(name string, enabled, applied bool)) *StatusFile {
	return &StatusFile{v: v, notify: notify}
}

// Name returns the name of the backing variable.
func (f *StatusFile) Name() string { return f.v.name }

// ReadAll returns the current textual representation: "1\n" if the variable
// is enabled, "0\n" otherwise.
func (f *StatusFile) ReadAll() []byte {
	if f.v.Enabled() {
		return []byte("1\n")
	}
	return []byte("0\n")
}

// Write implements io.Writer. Only the first byte matters: '0' disables,
// '1' enables, anything else is ignored. The full length is reported as
// consumed in every case, including the empty write.
func (f *StatusFile) Write(p []byte) (int, error) {
	applied := false
	if len(p) > 0 {
		switch p[0] {
		case '0':
			f.v.SetEnabled(false)
			applied = true
		case '1':
			f.v.SetEnabled(true)
			applied = true
		}
	}
	if f.notify != nil && len(p) > 0 {
		f.notify(f.v.name, f.v.Enabled(), applied)
	}
	return len(p), nil
}
