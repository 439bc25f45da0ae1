package dialect

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/leapstack-labs/leaplua/pkg/core"
)

// Dialect registry
var (
	dialectsMu sync.RWMutex
	dialects   = make(map[string]*Dialect)
	byTarget   = make(map[core.Target]*Dialect)
)

// ErrDialectRequired is returned when a dialect is required but not provided.
var ErrDialectRequired = errors.New("dialect is required")

// Get returns a dialect by name.
func Get(name string) (*Dialect, bool) {
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()
	d, ok := dialects[strings.ToLower(name)]
	return d, ok
}

// ForTarget returns the dialect registered for a target.
func ForTarget(t core.Target) (*Dialect, error) {
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()
	d, ok := byTarget[t]
	if !ok {
		return nil, fmt.Errorf("%w: no dialect registered for %s", core.ErrUnknownTarget, t)
	}
	return d, nil
}

// CapabilitiesOf returns the capability flags of the dialect registered for a target.
func CapabilitiesOf(t core.Target) (CapabilityFlags, error) {
	d, err := ForTarget(t)
	if err != nil {
		return CapabilityFlags{}, err
	}
	return d.Capabilities(), nil
}

// Register registers a dialect in the global registry.
// Called by dialect implementations in their init() functions.
func Register(d *Dialect) {
	dialectsMu.Lock()
	defer dialectsMu.Unlock()
	dialects[strings.ToLower(d.Name)] = d
	byTarget[d.Target] = d
}

// List returns all registered dialect names (sorted).
func List() []string {
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()
	names := make([]string, 0, len(dialects))
	for name := range dialects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns the registered dialects ordered by target.
func All() []*Dialect {
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()
	out := make([]*Dialect, 0, len(byTarget))
	for _, d := range byTarget {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Target < out[j].Target })
	return out
}
