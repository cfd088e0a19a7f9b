package condition

import (
	"testing"
)

func newTestFile(t *testing.T) (*Registry, *StatusFile, *Handle) {
	t.Helper()
	reg := New("testns", newFakeMount(), Options{})
	t.Cleanup(reg.Close)
	h, err := reg.Acquire("f")
	if err != nil {
		t.Fatal(err)
	}
	f, ok := reg.File("f")
	if !ok {
		t.Fatal("endpoint missing for live variable")
	}
	return reg, f, h
}

func TestStatusFileRoundTrip(t *testing.T) {
	_, f, _ := newTestFile(t)

	if got := string(f.ReadAll()); got != "0\n" {
		t.Fatalf("initial read: got %q, want %q", got, "0\n")
	}

	n, err := f.Write([]byte("1"))
	if err != nil || n != 1 {
		t.Fatalf("write '1': n=%d err=%v", n, err)
	}
	if got := string(f.ReadAll()); got != "1\n" {
		t.Errorf("after write '1': got %q, want %q", got, "1\n")
	}

	n, err = f.Write([]byte("0"))
	if err != nil || n != 1 {
		t.Fatalf("write '0': n=%d err=%v", n, err)
	}
	if got := string(f.ReadAll()); got != "0\n" {
		t.Errorf("after write '0': got %q, want %q", got, "0\n")
	}
}

func TestStatusFileFirstByteOnly(t *testing.T) {
	_, f, h := newTestFile(t)

	// Trailing bytes are irrelevant, as with `echo 1 > file`.
	n, err := f.Write([]byte("1\n"))
	if err != nil || n != 2 {
		t.Fatalf("write: n=%d err=%v", n, err)
	}
	if !h.Enabled() {
		t.Error("first byte '1' should enable")
	}

	if _, err := f.Write([]byte("0 with trailing garbage")); err != nil {
		t.Fatal(err)
	}
	if h.Enabled() {
		t.Error("first byte '0' should disable")
	}
}

// Any other first byte is accepted but ignored: the full length is
// reported as consumed and the value is untouched. Deliberately permissive,
// not a validation gap.
func TestStatusFileWriteIgnoresUnknown(t *testing.T) {
	_, f, h := newTestFile(t)

	f.Write([]byte("1"))

	payload := []byte("x nonsense")
	n, err := f.Write(payload)
	if err != nil {
		t.Fatalf("unrecognized write should not error: %v", err)
	}
	if n != len(payload) {
		t.Errorf("consumed %d bytes, want full length %d", n, len(payload))
	}
	if !h.Enabled() {
		t.Error("unrecognized write must leave the value unchanged")
	}
	if got := string(f.ReadAll()); got != "1\n" {
		t.Errorf("read after unrecognized write: got %q, want %q", got, "1\n")
	}
}

func TestStatusFileEmptyWrite(t *testing.T) {
	_, f, h := newTestFile(t)

	n, err := f.Write(nil)
	if err != nil || n != 0 {
		t.Fatalf("empty write: n=%d err=%v", n, err)
	}
	if h.Enabled() {
		t.Error("empty write must not toggle")
	}
}

func TestStatusFileNotify(t *testing.T) {
	type call struct {
		enabled, applied bool
	}
	var calls []call

	reg := New("testns", newFakeMount(), Options{
		OnToggle: func(name string, enabled, applied bool) {
			if name != "n" {
				t.Errorf("unexpected name %q", name)
			}
			calls = append(calls, call{enabled, applied})
		},
	})
	defer reg.Close()

	h, _ := reg.Acquire("n")
	defer reg.Release(h)
	f, _ := reg.File("n")

	f.Write([]byte("1"))
	f.Write([]byte("z"))
	f.Write(nil) // no payload, no notification

	want := []call{{true, true}, {true, false}}
	if len(calls) != len(want) {
		t.Fatalf("got %d notifications, want %d", len(calls), len(want))
	}
	for i, c := range calls {
		if c != want[i] {
			t.Errorf("notification %d: got %+v, want %+v", i, c, want[i])
		}
	}
}
