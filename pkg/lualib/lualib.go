// Package lualib defines the runtime helpers lowered code may depend on and
// tracks which of them one compile unit requires.
package lualib

import (
	"sort"
	"strings"
	"sync"
)

// Kind classifies a helper.
type Kind int

const (
	// KindLibrary is a table of functions provided by the runtime (bit32, bit).
	KindLibrary Kind = iota
	// KindPolyfill is a function whose definition is emitted into the chunk.
	KindPolyfill
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindLibrary:
		return "library"
	case KindPolyfill:
		return "polyfill"
	default:
		return "unknown"
	}
}

// Helper describes one runtime dependency.
type Helper struct {
	Name   string
	Kind   Kind
	Source string // Lua emitted once per chunk; empty when the runtime provides it globally
}

// UnsignedRightShift is the polyfill used for >>> on dialects without bitwise support.
const UnsignedRightShift = "__TS__UnsignedRightShift"

// Helper registry
var (
	helpersMu sync.RWMutex
	helpers   = make(map[string]Helper)
)

func init() {
	Register(Helper{Name: "bit32", Kind: KindLibrary})
	Register(Helper{Name: "bit", Kind: KindLibrary, Source: `local bit = require("bit")`})
	Register(Helper{
		Name: UnsignedRightShift,
		Kind: KindPolyfill,
		Source: strings.Join([]string{
			"local function __TS__UnsignedRightShift(a, b)",
			"    if a >= 0 then a = math.floor(a) else a = math.ceil(a) end",
			"    if b >= 0 then b = math.floor(b) else b = math.ceil(b) end",
			"    a = a - math.floor(a / 4294967296) * 4294967296",
			"    b = b - math.floor(b / 32) * 32",
			"    return math.floor(a / 2 ^ b)",
			"end",
		}, "\n"),
	})
}

// Register adds a helper definition. Called from init() functions.
func Register(h Helper) {
	helpersMu.Lock()
	defer helpersMu.Unlock()
	helpers[h.Name] = h
}

// Lookup returns a helper by name.
func Lookup(name string) (Helper, bool) {
	helpersMu.RLock()
	defer helpersMu.RUnlock()
	h, ok := helpers[name]
	return h, ok
}

// All returns every helper, libraries first, then by name.
func All() []Helper {
	helpersMu.RLock()
	defer helpersMu.RUnlock()
	out := make([]Helper, 0, len(helpers))
	for _, h := range helpers {
		out = append(out, h)
	}
	sortHelpers(out)
	return out
}

func sortHelpers(hs []Helper) {
	sort.Slice(hs, func(i, j int) bool {
		if hs[i].Kind != hs[j].Kind {
			return hs[i].Kind < hs[j].Kind
		}
		return hs[i].Name < hs[j].Name
	})
}
