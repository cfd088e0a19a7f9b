package namespace

import (
	"errors"
	"testing"

	"grimm.is/nfcond/internal/condfs"
	"grimm.is/nfcond/internal/condition"
	"grimm.is/nfcond/internal/events"
)

func memManager(hub *events.Hub) *Manager {
	return NewManager(Options{
		Hub: hub,
		NewMount: func(name string) (condition.Mount, error) {
			return condfs.NewMemDir(), nil
		},
	})
}

func TestManagerLifecycle(t *testing.T) {
	m := memManager(nil)
	defer m.Close()

	reg, err := m.Create("blue")
	if err != nil {
		t.Fatal(err)
	}
	if reg.Name() != "blue" {
		t.Errorf("registry name = %q", reg.Name())
	}

	if _, err := m.Create("blue"); !errors.Is(err, ErrExists) {
		t.Errorf("duplicate create: got %v, want ErrExists", err)
	}

	got, ok := m.Get("blue")
	if !ok || got != reg {
		t.Error("Get should return the live registry")
	}

	if err := m.Destroy("blue"); err != nil {
		t.Fatal(err)
	}
	if _, ok := m.Get("blue"); ok {
		t.Error("destroyed context should not be gettable")
	}
	if err := m.Destroy("blue"); !errors.Is(err, ErrNotFound) {
		t.Errorf("double destroy: got %v, want ErrNotFound", err)
	}

	// The registry refuses acquires once its context is gone.
	if _, err := reg.Acquire("x"); !errors.Is(err, condition.ErrRegistryClosed) {
		t.Errorf("acquire after destroy: got %v", err)
	}
}

func TestManagerIsolation(t *testing.T) {
	m := memManager(nil)
	defer m.Close()

	blue, _ := m.Create("blue")
	green, _ := m.Create("green")

	hb, err := blue.Acquire("same-name")
	if err != nil {
		t.Fatal(err)
	}
	hg, err := green.Acquire("same-name")
	if err != nil {
		t.Fatal(err)
	}

	// Distinct contexts hold distinct variables under the same name.
	fb, _ := blue.File("same-name")
	fb.Write([]byte("1"))

	if !hb.Enabled() {
		t.Error("blue variable should be enabled")
	}
	if hg.Enabled() {
		t.Error("green variable must be unaffected by blue's toggle")
	}
}

func TestManagerRejectsBadNames(t *testing.T) {
	m := memManager(nil)
	defer m.Close()

	for _, name := range []string{"", "a/b", ".."} {
		if _, err := m.Create(name); !errors.Is(err, condition.ErrInvalidName) {
			t.Errorf("Create(%q): got %v, want ErrInvalidName", name, err)
		}
	}
}

func TestManagerEvents(t *testing.T) {
	hub := events.NewHub()
	m := memManager(hub)
	defer m.Close()

	ch := hub.Subscribe(16)

	reg, _ := m.Create("evt")
	h, _ := reg.Acquire("cond")
	f, _ := reg.File("cond")
	f.Write([]byte("1"))
	reg.Release(h)
	m.Destroy("evt")

	want := []events.EventType{
		events.EventNamespaceCreated,
		events.EventConditionCreated,
		events.EventConditionToggled,
		events.EventConditionDestroyed,
		events.EventNamespaceDestroyed,
	}
	for _, wt := range want {
		select {
		case ev := <-ch:
			if ev.Type != wt {
				t.Fatalf("got event %s, want %s", ev.Type, wt)
			}
		default:
			t.Fatalf("missing event %s", wt)
		}
	}
}

func TestManagerCloseDestroysAll(t *testing.T) {
	m := memManager(nil)

	m.Create("a")
	m.Create("b")
	if len(m.Names()) != 2 {
		t.Fatal("expected two live contexts")
	}

	m.Close()
	if len(m.Names()) != 0 {
		t.Error("Close should destroy every context")
	}
}
