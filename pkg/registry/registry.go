// Package registry implements the concurrency-safe store of capability
// modules available to the bridge.
package registry

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/morezero/webview-bridge/pkg/capability"
)

const logPrefix = "registry:registry"

// Registry maps module names to capability instances. Registration and lookup
// are safe from any goroutine; a lookup never observes a partially written
// entry. Entries are only ever added or replaced, never implicitly removed.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]capability.Capability
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]capability.Capability)}
}

// Register inserts the module under its name, replacing any previous entry
// (last registration wins; replacement is logged). Reports whether
// registration occurred, which for Register is always true.
func (r *Registry) Register(mod capability.Capability) bool {
	name := mod.Name()

	r.mu.Lock()
	_, replaced := r.modules[name]
	r.modules[name] = mod
	r.mu.Unlock()

	if replaced {
		slog.Warn(fmt.Sprintf("%s - Replacing previously registered module %q", logPrefix, name))
	} else {
		slog.Debug(fmt.Sprintf("%s - Registered module %q", logPrefix, name))
	}
	return true
}

// RegisterIf registers the module only when cond is true, for feature-flagged
// modules. Reports whether registration occurred.
func (r *Registry) RegisterIf(mod capability.Capability, cond bool) bool {
	if !cond {
		slog.Debug(fmt.Sprintf("%s - Skipping module %q (condition false)", logPrefix, mod.Name()))
		return false
	}
	return r.Register(mod)
}

// Lookup returns the module registered under name, or ok=false.
func (r *Registry) Lookup(name string) (capability.Capability, bool) {
	r.mu.RLock()
	mod, ok := r.modules[name]
	r.mu.RUnlock()
	return mod, ok
}

// Count returns the number of registered modules.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.modules)
}

// Names returns the registered module names, sorted for stable output.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)
	return names
}
