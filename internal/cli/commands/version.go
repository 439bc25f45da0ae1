package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leaplua/pkg/core"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display leaplua version, build information and supported Lua targets.`,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "leaplua v%s\n", version)
			_, _ = fmt.Fprintf(out, "Operator lowering to Lua, built with %s\n", runtime.Version())

			targets := make([]string, 0, len(core.AllTargets))
			for _, t := range core.AllTargets {
				targets = append(targets, t.String())
			}
			_, _ = fmt.Fprintf(out, "Targets: %v\n", targets)
		},
	}
}
