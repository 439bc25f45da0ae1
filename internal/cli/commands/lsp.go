package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leaplua/internal/cli/config"
	"github.com/leapstack-labs/leaplua/internal/lsp"
)

// NewLSPCommand creates the lsp command.
func NewLSPCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		Long: `Start the LSP server for IDE integration.

The server communicates over stdin/stdout using JSON-RPC. Open .ts
documents are compiled for the configured target and their lowering
diagnostics are published as you type. A leaplua.yaml in the client's
workspace root (rootUri) overrides the target given here.`,
		Example: `  # Start LSP server (usually called by an IDE)
  leaplua lsp

  # Default to LuaJIT when the workspace has no config
  leaplua lsp --target JIT`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLSP(cmd)
		},
	}

	return cmd
}

func runLSP(cmd *cobra.Command) error {
	cfg := getConfig()
	server, err := lsp.NewServer(cmd.InOrStdin(), cmd.OutOrStdout(), lsp.Config{
		Options: cfg.CompileOptions(),
		Version: cmd.Root().Version,
		Logger:  config.GetLogger(cmd.Context()),
	})
	if err != nil {
		return err
	}
	return server.Run(cmd.Context())
}
