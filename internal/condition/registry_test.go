package condition

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

// fakeMount records endpoint lifecycle for assertions.
type fakeMount struct {
	mu      sync.Mutex
	entries map[string]*StatusFile
	removed bool
	failOn  string
}

func newFakeMount() *fakeMount {
	return &fakeMount{entries: make(map[string]*StatusFile)}
}

func (m *fakeMount) Create(name string, f *StatusFile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if name == m.failOn {
		return errors.New("injected create failure")
	}
	m.entries[name] = f
	return nil
}

func (m *fakeMount) Remove(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, name)
}

func (m *fakeMount) RemoveAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]*StatusFile)
	m.removed = true
}

func (m *fakeMount) has(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[name]
	return ok
}

func TestAcquireCreatesOnce(t *testing.T) {
	mount := newFakeMount()
	reg := New("testns", mount, Options{})
	defer reg.Close()

	h1, err := reg.Acquire("web_down")
	if err != nil {
		t.Fatalf("first acquire failed: %v", err)
	}
	h2, err := reg.Acquire("web_down")
	if err != nil {
		t.Fatalf("second acquire failed: %v", err)
	}

	if reg.Len() != 1 {
		t.Errorf("expected exactly one variable, got %d", reg.Len())
	}
	if h1.v != h2.v {
		t.Error("both handles should reference the same variable")
	}
	if !mount.has("web_down") {
		t.Error("endpoint should exist for live variable")
	}

	snap := reg.Snapshot()
	if len(snap) != 1 || snap[0].Refcount != 2 {
		t.Errorf("expected refcount 2, got %+v", snap)
	}

	// New variables start disabled.
	if h1.Enabled() {
		t.Error("new variable should start disabled")
	}
}

func TestReleaseDestroysAtZero(t *testing.T) {
	mount := newFakeMount()
	reg := New("testns", mount, Options{})
	defer reg.Close()

	h1, _ := reg.Acquire("maint")
	h2, _ := reg.Acquire("maint")

	reg.Release(h1)
	if reg.Len() != 1 {
		t.Fatal("variable destroyed while a reference is outstanding")
	}
	if !mount.has("maint") {
		t.Fatal("endpoint removed while a reference is outstanding")
	}

	reg.Release(h2)
	if reg.Len() != 0 {
		t.Error("variable should be destroyed at refcount zero")
	}
	if mount.has("maint") {
		t.Error("endpoint should be removed at refcount zero")
	}

	// A fresh acquire after destruction starts from scratch, disabled.
	h3, err := reg.Acquire("maint")
	if err != nil {
		t.Fatalf("re-acquire failed: %v", err)
	}
	if h3.Enabled() {
		t.Error("re-created variable should start disabled")
	}
	reg.Release(h3)
}

func TestAcquireRollsBackOnEndpointFailure(t *testing.T) {
	mount := newFakeMount()
	mount.failOn = "doomed"
	reg := New("testns", mount, Options{})
	defer reg.Close()

	_, err := reg.Acquire("doomed")
	if !errors.Is(err, ErrResourceExhausted) {
		t.Fatalf("expected ErrResourceExhausted, got %v", err)
	}
	if reg.Len() != 0 {
		t.Error("failed acquire must leave no variable registered")
	}

	// The name is not poisoned once the mount recovers.
	mount.failOn = ""
	h, err := reg.Acquire("doomed")
	if err != nil {
		t.Fatalf("acquire after recovery failed: %v", err)
	}
	reg.Release(h)
}

func TestAcquireRejectsInvalidNames(t *testing.T) {
	reg := New("testns", newFakeMount(), Options{})
	defer reg.Close()

	long := ""
	for i := 0; i <= MaxNameLen; i++ {
		long += "x"
	}

	for _, name := range []string{"", "a/b", long, ".", "..", "bad\x00name", "has space"} {
		if _, err := reg.Acquire(name); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Acquire(%q): expected ErrInvalidName, got %v", name, err)
		}
	}
	if reg.Len() != 0 {
		t.Error("rejected names must leave the registry unchanged")
	}
}

func TestAcquireAfterClose(t *testing.T) {
	mount := newFakeMount()
	reg := New("testns", mount, Options{})

	h, _ := reg.Acquire("stays")
	reg.Close()

	if _, err := reg.Acquire("other"); !errors.Is(err, ErrRegistryClosed) {
		t.Errorf("expected ErrRegistryClosed, got %v", err)
	}
	if !mount.removed {
		t.Error("close should remove the mount root")
	}

	// Close with a live variable must not corrupt anything; the leaked
	// handle still reads safely.
	_ = h.Enabled()

	// Idempotent.
	reg.Close()
}

func TestConcurrentAcquireCollapse(t *testing.T) {
	const n = 64

	mount := newFakeMount()
	reg := New("testns", mount, Options{})
	defer reg.Close()

	handles := make([]*Handle, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h, err := reg.Acquire("shared")
			if err != nil {
				t.Errorf("acquire %d failed: %v", i, err)
				return
			}
			handles[i] = h
		}(i)
	}
	wg.Wait()

	if reg.Len() != 1 {
		t.Fatalf("expected one variable after %d concurrent acquires, got %d", n, reg.Len())
	}
	if snap := reg.Snapshot(); snap[0].Refcount != n {
		t.Fatalf("expected refcount %d, got %d", n, snap[0].Refcount)
	}

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reg.Release(handles[i])
		}(i)
	}
	wg.Wait()

	if reg.Len() != 0 {
		t.Errorf("expected destruction after all releases, got %d live", reg.Len())
	}
	if mount.has("shared") {
		t.Error("endpoint should be gone after last release")
	}
}

func TestRefcountConservation(t *testing.T) {
	reg := New("testns", newFakeMount(), Options{})
	defer reg.Close()

	var handles []*Handle
	for i := 0; i < 10; i++ {
		h, err := reg.Acquire("ctr")
		if err != nil {
			t.Fatal(err)
		}
		handles = append(handles, h)
		if got := reg.Snapshot()[0].Refcount; got != i+1 {
			t.Fatalf("after %d acquires refcount is %d", i+1, got)
		}
	}
	for i, h := range handles {
		reg.Release(h)
		want := len(handles) - i - 1
		if want == 0 {
			if reg.Len() != 0 {
				t.Fatal("variable should be gone after final release")
			}
			break
		}
		if got := reg.Snapshot()[0].Refcount; got != want {
			t.Fatalf("after %d releases refcount is %d, want %d", i+1, got, want)
		}
	}
}

func TestConcurrentToggleDuringMatch(t *testing.T) {
	reg := New("testns", newFakeMount(), Options{})
	defer reg.Close()

	h, _ := reg.Acquire("hot")
	defer reg.Release(h)
	f, _ := reg.File("hot")

	// Hammer the flag from a control goroutine while readers evaluate.
	// The race detector is the real assertion here.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			fmt.Fprint(f, map[bool]string{true: "1", false: "0"}[i%2 == 0])
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				_ = Match(h, false)
				_ = Match(h, true)
			}
		}()
	}
	wg.Wait()
	<-done
}
