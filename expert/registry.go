package expert

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Mentat-Vision/moe/util/logger"
)

// Registry holds the set of registered expert workers keyed by name and
// consults the toggle registry to decide which of them participate in a
// dispatch. Active() is recomputed on every call so a toggle flip takes
// effect on the very next frame.
type Registry struct {
	mu      sync.RWMutex
	workers map[string]*Worker
	toggles *Toggles
	logger  *logger.Logger
}

// NewRegistry creates a registry backed by the given toggle state.
func NewRegistry(toggles *Toggles) *Registry {
	return &Registry{
		workers: make(map[string]*Worker),
		toggles: toggles,
		logger:  logger.NewLogger("Registry"),
	}
}

// Register adds a worker and enables its toggle. Duplicate names are an error.
func (r *Registry) Register(w *Worker) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.workers[w.Name()]; exists {
		return fmt.Errorf("expert %s already registered", w.Name())
	}
	r.workers[w.Name()] = w
	r.toggles.Set(w.Name(), true)
	r.logger.Infof("Registered expert: %s", w.Name())
	return nil
}

// Get returns the worker for an expert name.
func (r *Registry) Get(name string) (*Worker, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, exists := r.workers[name]
	return w, exists
}

// Active returns the workers whose toggle is currently enabled, in sorted
// name order.
func (r *Registry) Active() []*Worker {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.workers))
	for name := range r.workers {
		if r.toggles.Enabled(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	active := make([]*Worker, 0, len(names))
	for _, name := range names {
		active = append(active, r.workers[name])
	}
	return active
}

// Names returns all registered expert names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.workers))
	for name := range r.workers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Toggles returns the toggle registry shared with the control plane.
func (r *Registry) Toggles() *Toggles {
	return r.toggles
}

// StatsSnapshot returns each registered worker's current stats.
func (r *Registry) StatsSnapshot() map[string]WorkerStats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]WorkerStats, len(r.workers))
	for name, w := range r.workers {
		out[name] = w.Stats()
	}
	return out
}
