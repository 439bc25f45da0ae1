package diag

import (
	"sort"
	"sync"
)

// globalRegistry is the single registry of diagnostic codes.
var globalRegistry = &Registry{
	defs: make(map[Code]Definition),
}

// Registry stores diagnostic definitions for lookup and documentation.
type Registry struct {
	mu   sync.RWMutex
	defs map[Code]Definition
}

// Register adds a definition to the global registry.
// Call this from init() functions.
func Register(def Definition) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.defs[def.Code] = def
}

// Lookup returns the definition for a code.
func Lookup(code Code) (Definition, bool) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	def, ok := globalRegistry.defs[code]
	return def, ok
}

// All returns every registered definition sorted by code.
func All() []Definition {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	defs := make([]Definition, 0, len(globalRegistry.defs))
	for _, def := range globalRegistry.defs {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Code < defs[j].Code })
	return defs
}

// Count returns the number of registered definitions.
func Count() int {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	return len(globalRegistry.defs)
}
