package core

import (
	"errors"
	"fmt"
	"strings"
)

// Target names one Lua runtime dialect. It is fixed for a compile unit.
type Target int

// Target constants in release order. LuaJIT implements the 5.1 language.
const (
	Lua50 Target = iota
	Lua51
	Lua52
	Lua53
	Lua54
	LuaJIT
)

// AllTargets lists every target. Tables keyed by Target must cover it.
var AllTargets = []Target{Lua50, Lua51, Lua52, Lua53, Lua54, LuaJIT}

// ErrUnknownTarget is returned when a target name cannot be parsed.
var ErrUnknownTarget = errors.New("unknown lua target")

var targetNames = map[Target]string{
	Lua50:  "5.0",
	Lua51:  "5.1",
	Lua52:  "5.2",
	Lua53:  "5.3",
	Lua54:  "5.4",
	LuaJIT: "JIT",
}

// String returns the canonical target name ("5.0".."5.4", "JIT").
func (t Target) String() string {
	if name, ok := targetNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Target(%d)", int(t))
}

// DisplayName returns the human name used in messages ("Lua 5.3", "LuaJIT").
func (t Target) DisplayName() string {
	if t == LuaJIT {
		return "LuaJIT"
	}
	return "Lua " + t.String()
}

// IsValid reports whether t is one of AllTargets.
func (t Target) IsValid() bool {
	_, ok := targetNames[t]
	return ok
}

// ParseTarget accepts "5.3", "lua5.3", "lua53", "jit" and "luajit" (case-insensitive).
func ParseTarget(s string) (Target, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.TrimPrefix(name, "lua")
	name = strings.TrimSpace(strings.TrimPrefix(name, "-"))
	if name == "jit" {
		return LuaJIT, nil
	}
	if len(name) == 2 && !strings.Contains(name, ".") {
		name = name[:1] + "." + name[1:]
	}
	for t, n := range targetNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTarget, s)
}

// MarshalText implements encoding.TextMarshaler.
func (t Target) MarshalText() ([]byte, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTarget, int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Target) UnmarshalText(b []byte) error {
	parsed, err := ParseTarget(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
