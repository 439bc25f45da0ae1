package config

import (
	"log/slog"

	"github.com/leapstack-labs/leaplua/internal/loader"
	"github.com/leapstack-labs/leaplua/internal/starlark"
	"github.com/leapstack-labs/leaplua/pkg/transform"
)

// CompilerConfig returns the compiler configuration of the project. A
// custom dialect file replaces the built-in dialect, and its target wins
// over the configured one.
func (c *Config) CompilerConfig(logger *slog.Logger) (transform.Config, error) {
	tc := transform.Config{
		Options: c.CompileOptions(),
		Logger:  logger,
	}
	if c.Dialect != "" {
		d, err := starlark.LoadDialect(c.Dialect, logger)
		if err != nil {
			return tc, err
		}
		tc.Dialect = d
		tc.Options.Target = d.Target
	}
	if c.StripTypes {
		tc.Preprocess = loader.StripTypes
	}
	return tc, nil
}
