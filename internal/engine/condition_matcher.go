package engine

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"grimm.is/nfcond/internal/condition"
	"grimm.is/nfcond/internal/metrics"
)

// ConditionMatcher matches packets against a named condition variable,
// optionally inverted. Construction is the checkentry path: it validates
// the name and acquires a refcounted handle from the registry; a failed
// construction leaves nothing to release.
type ConditionMatcher struct {
	reg    *condition.Registry
	handle *condition.Handle
	invert bool

	once sync.Once

	// Counters are resolved once at install time to keep the packet path
	// down to an atomic flag read plus an atomic add.
	hits, misses prometheus.Counter
}

// NewConditionMatcher validates name and acquires the variable, creating
// it on first reference within reg.
func NewConditionMatcher(reg *condition.Registry, name string, invert bool) (*ConditionMatcher, error) {
	h, err := reg.Acquire(name)
	if err != nil {
		return nil, err
	}
	m := metrics.Get()
	return &ConditionMatcher{
		reg:    reg,
		handle: h,
		invert: invert,
		hits:   m.MatchesTotal.WithLabelValues("match"),
		misses: m.MatchesTotal.WithLabelValues("nomatch"),
	}, nil
}

// Name returns the matched variable's name.
func (cm *ConditionMatcher) Name() string { return cm.handle.Name() }

// Invert returns the configured invert flag.
func (cm *ConditionMatcher) Invert() bool { return cm.invert }

// Match implements Matcher: the variable's flag XOR the invert option. No
// lock is taken; safe concurrently with endpoint writes.
func (cm *ConditionMatcher) Match(pkt *Packet) bool {
	ok := condition.Match(cm.handle, cm.invert)
	if ok {
		cm.hits.Inc()
	} else {
		cm.misses.Inc()
	}
	return ok
}

// Destroy implements Destroyer: releases the handle back to the registry.
// The variable is destroyed when the last rule referencing it detaches.
// Safe to call more than once; only the first call releases.
func (cm *ConditionMatcher) Destroy() {
	cm.once.Do(func() {
		cm.reg.Release(cm.handle)
	})
}
