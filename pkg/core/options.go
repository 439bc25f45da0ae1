package core

import (
	"fmt"
	"strings"
)

// LibraryImportMode controls whether runtime library calls may be emitted.
type LibraryImportMode int

const (
	// LibraryImportRequire allows library calls (bit32, bit) and imports them as needed.
	LibraryImportRequire LibraryImportMode = iota
	// LibraryImportNone forbids library calls. Operators that need one are unsupported.
	LibraryImportNone
)

// String returns the configuration spelling of the mode.
func (m LibraryImportMode) String() string {
	switch m {
	case LibraryImportRequire:
		return "require"
	case LibraryImportNone:
		return "none"
	default:
		return "unknown"
	}
}

// ParseLibraryImportMode converts a configuration value to a mode.
// "enabled" and "disabled" are accepted as aliases.
func ParseLibraryImportMode(s string) (LibraryImportMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "require", "enabled", "":
		return LibraryImportRequire, nil
	case "none", "disabled":
		return LibraryImportNone, nil
	default:
		return LibraryImportRequire, fmt.Errorf("invalid library import mode %q (want require or none)", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m LibraryImportMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *LibraryImportMode) UnmarshalText(b []byte) error {
	parsed, err := ParseLibraryImportMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// CompileOptions is the configuration surface of one compile unit.
type CompileOptions struct {
	Target        Target
	LibraryImport LibraryImportMode
}

// SourceExt is the extension of compilable source files.
const SourceExt = ".ts"
