package expert

import "sync"

// Toggles is the live expert on/off registry. The dashboard control path is
// the only writer; dispatch paths read it on every decision. Readers may see
// a flip one frame late, which is acceptable by design.
type Toggles struct {
	mu      sync.RWMutex
	enabled map[string]bool
}

// NewToggles creates an empty toggle registry.
func NewToggles() *Toggles {
	return &Toggles{enabled: make(map[string]bool)}
}

// Set records the enabled state for an expert.
func (t *Toggles) Set(name string, enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled[name] = enabled
}

// Enabled reports whether the named expert is enabled. Unknown experts are
// disabled.
func (t *Toggles) Enabled(name string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled[name]
}

// Flip inverts the state of a known expert and returns the new state.
// Flipping an unknown expert returns ok=false.
func (t *Toggles) Flip(name string) (enabled bool, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	current, exists := t.enabled[name]
	if !exists {
		return false, false
	}
	t.enabled[name] = !current
	return !current, true
}

// Snapshot returns a copy of all toggle states.
func (t *Toggles) Snapshot() map[string]bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]bool, len(t.enabled))
	for name, enabled := range t.enabled {
		out[name] = enabled
	}
	return out
}
