package condition

// Match is the per-packet evaluation: the variable's flag XOR the rule's
// invert option. It takes no lock and has no side effects, so it is safe
// to call from any number of packet-processing goroutines concurrently
// with endpoint writes to the same variable.
func Match(h *Handle, invert bool) bool {
	return h.Enabled() != invert
}
