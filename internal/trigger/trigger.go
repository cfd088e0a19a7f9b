// Package trigger implements the remote-trigger companion to the condition
// match: a password-gated, stateless command dispatcher. The first byte of
// a datagram payload names a command, the remainder must match the
// process-wide password exactly. The gate only decides accept or reject;
// what a command does is up to the handler the host registers.
package trigger

import (
	"crypto/subtle"
	"errors"
	"sync"

	"grimm.is/nfcond/internal/engine"
	"grimm.is/nfcond/internal/logging"
	"grimm.is/nfcond/internal/metrics"
)

// ErrConfigurationRejected is returned at install time when the rule's
// transport does not fit the trigger: commands ride in datagrams only.
var ErrConfigurationRejected = errors.New("trigger: rule must match a datagram transport")

// Verdict is the gate's decision for one payload.
type Verdict int

const (
	VerdictDrop Verdict = iota
	VerdictAccept
)

func (v Verdict) String() string {
	if v == VerdictAccept {
		return "accept"
	}
	return "drop"
}

// Handler receives dispatched command bytes. Registered once by the host;
// the gate never interprets commands itself.
type Handler func(cmd byte)

// Gate holds the single piece of trigger state: the password configured at
// startup. An empty password disables the gate entirely.
type Gate struct {
	password string
	handler  Handler
	log      *logging.Logger

	warnOnce sync.Once
}

// NewGate creates a gate with the configured password and handler.
func NewGate(password string, handler Handler, logger *logging.Logger) *Gate {
	if logger == nil {
		logger = logging.Default()
	}
	return &Gate{
		password: password,
		handler:  handler,
		log:      logger.WithComponent("trigger"),
	}
}

// CheckEntry validates a rule configuration at install time: the protocol
// must be UDP or UDP-Lite and must not be an inverted protocol match.
func (g *Gate) CheckEntry(protocol uint8, invertProto bool) error {
	if invertProto {
		return ErrConfigurationRejected
	}
	switch protocol {
	case engine.ProtoUDP, engine.ProtoUDPLite:
		return nil
	default:
		return ErrConfigurationRejected
	}
}

// Process gates one payload. With no password configured everything is
// rejected, logging once. Otherwise payload[0] is the command and
// payload[1:] must equal the password exactly; a match dispatches the
// command and accepts the packet.
func (g *Gate) Process(payload []byte) Verdict {
	if g.password == "" {
		g.warnOnce.Do(func() {
			g.log.Info("no password set, rejecting all triggers")
		})
		return g.reject()
	}
	if len(payload) == 0 {
		return g.reject()
	}

	cmd := payload[0]
	if subtle.ConstantTimeCompare(payload[1:], []byte(g.password)) != 1 {
		g.log.Info("failed trigger attempt, password mismatch")
		return g.reject()
	}

	if g.handler != nil {
		g.handler(cmd)
	}
	metrics.Get().TriggerTotal.WithLabelValues("accept").Inc()
	return VerdictAccept
}

func (g *Gate) reject() Verdict {
	metrics.Get().TriggerTotal.WithLabelValues("reject").Inc()
	return VerdictDrop
}
