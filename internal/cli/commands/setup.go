package commands

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leaplua/internal/cli/config"
	"github.com/leapstack-labs/leaplua/internal/cli/output"
	"github.com/leapstack-labs/leaplua/pkg/transform"
)

// ErrDiagnostics is returned when a command reported error diagnostics.
// The diagnostics themselves have already been rendered.
var ErrDiagnostics = errors.New("compilation reported errors")

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext from the loaded configuration.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	mode, err := output.ParseMode(cfg.OutputFormat)
	if err != nil {
		logger.Warn("unknown output mode, using auto", "output", cfg.OutputFormat)
	}
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// Compiler creates a compiler for the loaded configuration, including its
// custom dialect and type stripping.
func (c *CommandContext) Compiler() (*transform.Compiler, error) {
	tc, err := c.Cfg.CompilerConfig(c.Logger)
	if err != nil {
		return nil, err
	}
	return transform.New(tc)
}

// getConfig returns the current configuration, or the defaults when none was loaded.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Default()
}
