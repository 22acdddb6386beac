package theme

import (
	"testing"

	"github.com/ppiankov/factlens/internal/store"
)

func TestCurrent_FollowsSystemUntilToggled(t *testing.T) {
	s := store.NewMemoryStore()
	m := NewManager(s)

	if got := m.Current(Dark); got != Dark {
		t.Errorf("Current(Dark) = %q, want dark", got)
	}
	if got := m.Current(Light); got != Light {
		t.Errorf("Current(Light) = %q, want light", got)
	}
	if _, ok := s.Get(Key); ok {
		t.Fatal("system preference must not be persisted")
	}

	next, err := m.Toggle(Dark)
	if err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if next != Light {
		t.Errorf("Toggle(Dark) = %q, want light", next)
	}

	// Explicit choice now wins over the system preference
	if got := m.Current(Dark); got != Light {
		t.Errorf("Current(Dark) after toggle = %q, want light", got)
	}
	if raw, _ := s.Get(Key); string(raw) != "light" {
		t.Errorf("stored = %q, want light", raw)
	}
}

func TestStored_IgnoresGarbage(t *testing.T) {
	s := store.NewMemoryStore()
	_ = s.Set(Key, []byte("purple"))

	m := NewManager(s)
	if _, ok := m.Stored(); ok {
		t.Error("expected unknown stored value to be ignored")
	}
	if got := m.Current(Dark); got != Dark {
		t.Errorf("Current() = %q, want system preference", got)
	}
}

func TestReset(t *testing.T) {
	m := NewManager(store.NewMemoryStore())
	if err := m.Set(Dark); err != nil {
		t.Fatal(err)
	}
	if err := m.Reset(); err != nil {
		t.Fatal(err)
	}
	if _, ok := m.Stored(); ok {
		t.Error("expected preference cleared")
	}
	if err := m.Set("sepia"); err == nil {
		t.Error("expected error for unknown theme")
	}
}

func TestFromColorFGBG(t *testing.T) {
	tests := []struct {
		value string
		want  Theme
	}{
		{"15;0", Dark},
		{"0;15", Light},
		{"15;default;8", Dark},
		{"", Light},
		{"7;7", Light},
	}
	for _, tt := range tests {
		if got := FromColorFGBG(tt.value); got != tt.want {
			t.Errorf("FromColorFGBG(%q) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestFromClientHint(t *testing.T) {
	if got := FromClientHint(`"dark"`); got != Dark {
		t.Errorf("FromClientHint(dark) = %q", got)
	}
	if got := FromClientHint(""); got != Light {
		t.Errorf("FromClientHint(empty) = %q", got)
	}
}
