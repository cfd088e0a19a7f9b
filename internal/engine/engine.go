// Package engine is the boundary toward the packet-filtering rule engine.
// It defines the pluggable matcher interface, a minimal rule set that
// drives matchers through their install/evaluate/destroy lifecycle, and
// the condition matcher that plugs registry-backed variables into rules.
package engine

import (
	"net/netip"
	"sync"

	"github.com/google/uuid"
)

// Transport protocol numbers used by matchers and install-time checks.
const (
	ProtoTCP     uint8 = 6
	ProtoUDP     uint8 = 17
	ProtoUDPLite uint8 = 136
)

// Packet carries the metadata matchers see. Header parsing happens
// upstream; matchers never touch raw bytes.
type Packet struct {
	Src      netip.Addr
	Dst      netip.Addr
	Protocol uint8
	SrcPort  uint16
	DstPort  uint16
	Length   int
	Payload  []byte
}

// Verdict is a rule engine decision.
type Verdict int

const (
	VerdictAccept Verdict = iota
	VerdictDrop
)

func (v Verdict) String() string {
	if v == VerdictDrop {
		return "drop"
	}
	return "accept"
}

// Matcher is the interface for per-rule match extensions. Match must be
// safe to call concurrently from many packet contexts and must not block.
type Matcher interface {
	Match(pkt *Packet) bool
}

// Destroyer is implemented by matchers holding resources that must be
// released exactly once when their rule is removed.
type Destroyer interface {
	Destroy()
}

// Rule is one installed rule: all matchers must match (AND semantics) for
// the verdict to apply.
type Rule struct {
	ID       uuid.UUID
	Comment  string
	Matchers []Matcher
	Verdict  Verdict
}

// RuleSet is an ordered list of rules with a default policy. It exists to
// exercise matcher lifecycles; chain traversal, jumps, and kernel
// installation are out of scope.
type RuleSet struct {
	mu     sync.RWMutex
	rules  []*Rule
	policy Verdict
}

// NewRuleSet creates a rule set with the given default policy.
func NewRuleSet(policy Verdict) *RuleSet {
	return &RuleSet{policy: policy}
}

// Append installs a rule and returns it. The caller transfers matcher
// ownership: Remove (or Flush) will destroy them.
func (rs *RuleSet) Append(verdict Verdict, comment string, matchers ...Matcher) *Rule {
	r := &Rule{
		ID:       uuid.New(),
		Comment:  comment,
		Matchers: matchers,
		Verdict:  verdict,
	}
	rs.mu.Lock()
	rs.rules = append(rs.rules, r)
	rs.mu.Unlock()
	return r
}

// Remove uninstalls a rule and destroys its matchers. Returns false if the
// rule is not installed.
func (rs *RuleSet) Remove(id uuid.UUID) bool {
	rs.mu.Lock()
	var removed *Rule
	for i, r := range rs.rules {
		if r.ID == id {
			removed = r
			rs.rules = append(rs.rules[:i], rs.rules[i+1:]...)
			break
		}
	}
	rs.mu.Unlock()

	if removed == nil {
		return false
	}
	destroyMatchers(removed)
	return true
}

// Flush uninstalls every rule, destroying all matchers.
func (rs *RuleSet) Flush() {
	rs.mu.Lock()
	rules := rs.rules
	rs.rules = nil
	rs.mu.Unlock()

	for _, r := range rules {
		destroyMatchers(r)
	}
}

// Len returns the number of installed rules.
func (rs *RuleSet) Len() int {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return len(rs.rules)
}

// Evaluate runs the packet through the rules in order and returns the
// verdict of the first full match, or the default policy.
func (rs *RuleSet) Evaluate(pkt *Packet) Verdict {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	for _, r := range rs.rules {
		matched := true
		for _, m := range r.Matchers {
			if !m.Match(pkt) {
				matched = false
				break
			}
		}
		if matched {
			return r.Verdict
		}
	}
	return rs.policy
}

func destroyMatchers(r *Rule) {
	for _, m := range r.Matchers {
		if d, ok := m.(Destroyer); ok {
			d.Destroy()
		}
	}
}
