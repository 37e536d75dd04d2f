package state

import (
	"sync"

	"github.com/smartexpense/smartexpense/internal/store"
)

const (
	modeDark  = "dark"
	modeLight = "light"
)

// Theme holds the dark/light mode flag.
type Theme struct {
	p Persister

	mu   sync.RWMutex
	dark bool

	subs observers[bool]
}

// NewTheme restores the stored mode from p, falling back to defaultDark.
func NewTheme(p Persister, defaultDark bool) *Theme {
	t := &Theme{p: p, dark: defaultDark}
	if p == nil {
		return t
	}
	switch v, err := p.Get(store.KeyTheme); {
	case err != nil:
	case v == modeDark:
		t.dark = true
	case v == modeLight:
		t.dark = false
	}
	return t
}

// Dark reports whether dark mode is active.
func (t *Theme) Dark() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.dark
}

// Set switches mode, persists it and notifies subscribers.
// Persistence failures are returned but the in-memory mode still changes.
func (t *Theme) Set(dark bool) error {
	t.mu.Lock()
	t.dark = dark
	t.mu.Unlock()

	var err error
	if t.p != nil {
		mode := modeLight
		if dark {
			mode = modeDark
		}
		err = t.p.Set(store.KeyTheme, mode)
	}
	t.subs.notify(dark)
	return err
}

// Toggle flips the mode and returns the new value.
func (t *Theme) Toggle() (bool, error) {
	dark := !t.Dark()
	return dark, t.Set(dark)
}

// Subscribe registers fn for mode changes.
func (t *Theme) Subscribe(fn func(dark bool)) (unsubscribe func()) {
	return t.subs.add(fn)
}
