// Package theme resolves and persists the light/dark display preference.
package theme

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ppiankov/factlens/internal/store"
)

// Key is the store key holding the explicit preference
const Key = "ai-fc-theme"

// Theme is a display theme
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// Parse accepts "light" or "dark" in any case
func Parse(s string) (Theme, bool) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case Light:
		return Light, true
	case Dark:
		return Dark, true
	default:
		return "", false
	}
}

// Opposite returns the other theme
func (t Theme) Opposite() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

// Manager reads and toggles the stored preference
type Manager struct {
	store store.Store
}

// NewManager creates a manager over s
func NewManager(s store.Store) *Manager {
	return &Manager{store: s}
}

// Stored returns the explicit preference, if one was ever saved
func (m *Manager) Stored() (Theme, bool) {
	raw, ok := m.store.Get(Key)
	if !ok {
		return "", false
	}
	return Parse(string(raw))
}

// Current returns the stored preference, else the system preference.
// The system preference is consulted live and never persisted.
func (m *Manager) Current(system Theme) Theme {
	if t, ok := m.Stored(); ok {
		return t
	}
	if _, ok := Parse(string(system)); ok {
		return system
	}
	return Light
}

// Toggle flips the current theme and persists the result
func (m *Manager) Toggle(system Theme) (Theme, error) {
	next := m.Current(system).Opposite()
	if err := m.Set(next); err != nil {
		return "", err
	}
	return next, nil
}

// Set persists an explicit preference
func (m *Manager) Set(t Theme) error {
	if _, ok := Parse(string(t)); !ok {
		return fmt.Errorf("unknown theme %q", t)
	}
	if err := m.store.Set(Key, []byte(t)); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	return nil
}

// Reset forgets the explicit preference
func (m *Manager) Reset() error {
	return m.store.Delete(Key)
}

// FromColorFGBG derives the terminal preference from a COLORFGBG value
// such as "15;0". A background of 0-6 or 8 is dark.
func FromColorFGBG(value string) Theme {
	parts := strings.Split(value, ";")
	bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1]))
	if err != nil {
		return Light
	}
	if bg <= 6 || bg == 8 {
		return Dark
	}
	return Light
}

// FromClientHint reads a Sec-CH-Prefers-Color-Scheme header value
func FromClientHint(value string) Theme {
	if t, ok := Parse(strings.Trim(strings.TrimSpace(value), `"`)); ok {
		return t
	}
	return Light
}
