package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/leapstack-labs/leaplua/internal/starlark"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !c.Target.IsValid() {
		return fmt.Errorf("invalid target %d", int(c.Target))
	}
	if !slices.Contains(OutputFormats, c.OutputFormat) {
		return fmt.Errorf("invalid output format %q (available: %s)", c.OutputFormat, strings.Join(OutputFormats, ", "))
	}
	if c.Jobs < 0 {
		return fmt.Errorf("jobs must not be negative, got %d", c.Jobs)
	}
	if c.Dialect != "" && filepath.Ext(c.Dialect) != starlark.FileExt {
		return fmt.Errorf("dialect must be a %s file, got %q", starlark.FileExt, c.Dialect)
	}
	if c.UI != nil && (c.UI.Port < 0 || c.UI.Port > 65535) {
		return fmt.Errorf("ui.port out of range: %d", c.UI.Port)
	}
	return nil
}
