// Package config provides configuration management for the leaplua CLI.
//
// Values are layered with koanf: built-in defaults, then leaplua.yaml, then
// LEAPLUA_* environment variables, then explicitly set command-line flags.
package config

import "github.com/leapstack-labs/leaplua/pkg/core"

// Config holds all CLI configuration options.
type Config struct {
	Target        core.Target            `koanf:"target"`
	LibraryImport core.LibraryImportMode `koanf:"library_import"`
	OutputFormat  string                 `koanf:"output"`
	OutDir        string                 `koanf:"out_dir"`
	Jobs          int                    `koanf:"jobs"`
	EmitHelpers   bool                   `koanf:"emit_helpers"`
	Cache         string                 `koanf:"cache"`
	Dialect       string                 `koanf:"dialect"`
	StripTypes    bool                   `koanf:"strip_types"`
	Verbose       bool                   `koanf:"verbose"`
	UI            *UIConfig              `koanf:"ui"`

	// ProjectRoot is the directory holding the config file, or the working
	// directory when none was found.
	ProjectRoot string `koanf:"-"`
}

// UIConfig holds configuration for the playground server.
type UIConfig struct {
	Port     int  `koanf:"port"`
	AutoOpen bool `koanf:"auto_open"`
	Watch    bool `koanf:"watch"`
}

// DefaultUIPort is the port the playground listens on when none is configured.
const DefaultUIPort = 8765

// DefaultUIConfig returns a UIConfig with default values.
func DefaultUIConfig() *UIConfig {
	return &UIConfig{
		Port:     DefaultUIPort,
		AutoOpen: true,
		Watch:    true,
	}
}

// GetUIConfig returns the UI config with defaults applied for any unset values.
func (c *Config) GetUIConfig() *UIConfig {
	if c.UI == nil {
		return DefaultUIConfig()
	}
	ui := *c.UI
	if ui.Port == 0 {
		ui.Port = DefaultUIPort
	}
	return &ui
}

// Default configuration values.
const (
	DefaultTarget        = "5.4"
	DefaultLibraryImport = "require"
	DefaultOutput        = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultEmitHelpers   = true
)

// ConfigFileNames lists the file names searched for, in order.
var ConfigFileNames = []string{"leaplua.yaml", "leaplua.yml"}

// OutputFormats lists the accepted values of the output key.
var OutputFormats = []string{"auto", "text", "markdown", "json", "yaml"}

// Default returns the configuration used when nothing was loaded.
func Default() *Config {
	return &Config{
		Target:        core.Lua54,
		LibraryImport: core.LibraryImportRequire,
		OutputFormat:  DefaultOutput,
		EmitHelpers:   DefaultEmitHelpers,
	}
}

// CompileOptions returns the options passed to the compiler.
func (c *Config) CompileOptions() core.CompileOptions {
	return core.CompileOptions{
		Target:        c.Target,
		LibraryImport: c.LibraryImport,
	}
}
