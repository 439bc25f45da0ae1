package lualib

import "github.com/leapstack-labs/leaplua/pkg/lua"

// Set records the helpers one compile unit requires. Each helper is
// emitted at most once no matter how often it is used.
// A Set is owned by one unit and is not safe for concurrent use.
type Set struct {
	used map[string]int
}

// NewSet creates an empty set.
func NewSet() *Set {
	return &Set{used: make(map[string]int)}
}

// Use records one use of the named helper.
func (s *Set) Use(name string) {
	s.used[name]++
}

// Has reports whether the helper was used.
func (s *Set) Has(name string) bool {
	return s.used[name] > 0
}

// Uses returns how many times the helper was requested.
func (s *Set) Uses(name string) int {
	return s.used[name]
}

// Len returns the number of distinct helpers used.
func (s *Set) Len() int {
	return len(s.used)
}

// Merge adds every use recorded in o.
func (s *Set) Merge(o *Set) {
	for name, n := range o.used {
		s.used[name] += n
	}
}

// Helpers returns the used helpers, libraries first, then by name.
// Names without a registered definition are returned as polyfills without source.
func (s *Set) Helpers() []Helper {
	out := make([]Helper, 0, len(s.used))
	for name := range s.used {
		h, ok := Lookup(name)
		if !ok {
			h = Helper{Name: name, Kind: KindPolyfill}
		}
		out = append(out, h)
	}
	sortHelpers(out)
	return out
}

// Names returns the used helper names in emission order.
func (s *Set) Names() []string {
	hs := s.Helpers()
	out := make([]string, len(hs))
	for i, h := range hs {
		out[i] = h.Name
	}
	return out
}

// Statements returns the definitions to place at the top of the chunk.
func (s *Set) Statements() []lua.Statement {
	var out []lua.Statement
	for _, h := range s.Helpers() {
		if h.Source == "" {
			continue
		}
		out = append(out, &lua.RawStatement{Code: h.Source})
	}
	return out
}
