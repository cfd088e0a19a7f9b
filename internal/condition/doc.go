// Package condition implements named, runtime-toggleable boolean variables
// that packet-filter rules match against.
//
// Each isolated context (e.g. one network namespace) owns a Registry of
// refcounted variables. Rules acquire a handle to a variable at install time
// and release it at removal time; the variable is created on first acquire
// and destroyed, together with its external endpoint, when the last handle
// is released. Operators flip a variable through its file-like endpoint
// (see StatusFile); the per-packet match path reads the flag without taking
// any lock.
package condition
