// Package cli provides the command-line interface for leaplua.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leaplua/internal/cli/commands"
	"github.com/leapstack-labs/leaplua/internal/cli/config"
	"github.com/leapstack-labs/leaplua/internal/cli/output"
	"github.com/leapstack-labs/leaplua/pkg/core"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "leaplua",
		Short: "leaplua - operator lowering for Lua targets",
		Long: `leaplua compiles expression-oriented source code to Lua.

Every operator is lowered according to what the selected Lua target
supports: native syntax, calls into a bit library (bit32, bit), injected
polyfills, or a diagnostic when the target has no faithful representation.
Increments, compound assignments and comma expressions are desugared into
statements Lua accepts.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.LoadConfig(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}

			logger := config.NewLogger(cmd.ErrOrStderr(), cfg.Verbose)
			cmd.SetContext(config.WithLogger(cmd.Context(), logger))

			if configFile := config.GetConfigFileUsed(); configFile != "" {
				logger.Debug("using config file", "path", configFile)
			}
			logger.Debug("configuration loaded",
				"target", cfg.Target.String(),
				"library_import", cfg.LibraryImport.String(),
				"output", cfg.OutputFormat,
			)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set version template
	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
Operator lowering for Lua 5.0 through 5.4 and LuaJIT
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./leaplua.yaml)")
	rootCmd.PersistentFlags().StringP("target", "t", "", "Lua target (5.0, 5.1, 5.2, 5.3, 5.4, JIT)")
	rootCmd.PersistentFlags().String("library-import", "", "Library import mode (require|none)")
	rootCmd.PersistentFlags().String("dialect", "", "Custom dialect file (.star)")
	rootCmd.PersistentFlags().Bool("strip-types", false, "Strip TypeScript type annotations before compiling")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format (auto|text|markdown|json|yaml)")

	// Register completion for output flag
	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		modes := make([]string, 0, len(output.Modes))
		for _, m := range output.Modes {
			modes = append(modes, string(m))
		}
		return modes, cobra.ShellCompDirectiveNoFileComp
	})

	// Register completion for target flag
	_ = rootCmd.RegisterFlagCompletionFunc("target", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		targets := make([]string, 0, len(core.AllTargets))
		for _, t := range core.AllTargets {
			targets = append(targets, t.String()+"\t"+t.DisplayName())
		}
		return targets, cobra.ShellCompDirectiveNoFileComp
	})

	_ = rootCmd.RegisterFlagCompletionFunc("library-import", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"require", "none"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewCompileCommand())
	rootCmd.AddCommand(commands.NewLowerCommand())
	rootCmd.AddCommand(commands.NewMatrixCommand())
	rootCmd.AddCommand(commands.NewCodesCommand())
	rootCmd.AddCommand(commands.NewReplCommand())
	rootCmd.AddCommand(commands.NewCacheCommand())
	rootCmd.AddCommand(commands.NewLSPCommand())
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		// Diagnostics were already printed next to the code they concern.
		if !errors.Is(err, commands.ErrDiagnostics) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for leaplua.

To load completions:

Bash:
  $ source <(leaplua completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ leaplua completion bash > /etc/bash_completion.d/leaplua
  # macOS:
  $ leaplua completion bash > $(brew --prefix)/etc/bash_completion.d/leaplua

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ leaplua completion zsh > "${fpath[1]}/_leaplua"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ leaplua completion fish | source

  # To load completions for each session, execute once:
  $ leaplua completion fish > ~/.config/fish/completions/leaplua.fish

PowerShell:
  PS> leaplua completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> leaplua completion powershell > leaplua.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}
