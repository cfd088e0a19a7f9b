package condition

import "fmt"

// MaxNameLen is the longest accepted variable name, matching the fixed-size
// name field of the wire format used by iptables condition matches.
const MaxNameLen = 31

// ValidateName checks a condition variable name. Names become entries in a
// directory-like namespace, so path traversal and control characters are
// rejected outright.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidName)
	}
	if len(name) > MaxNameLen {
		return fmt.Errorf("%w: %q exceeds %d bytes", ErrInvalidName, name, MaxNameLen)
	}
	if name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c == '/' {
			return fmt.Errorf("%w: %q contains '/'", ErrInvalidName, name)
		}
		if c < 0x20 || c == 0x7f || c == ' ' {
			return fmt.Errorf("%w: %q contains forbidden byte 0x%02x", ErrInvalidName, name, c)
		}
	}
	return nil
}
