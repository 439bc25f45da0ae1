package commands

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leaplua/internal/state"
	"github.com/leapstack-labs/leaplua/internal/ui"
)

// sessionSecretEnv names the variable holding the playground's cookie key.
const sessionSecretEnv = "LEAPLUA_SESSION_SECRET"

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Port      int
	NoBrowser bool
	Watch     bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the leaplua playground",
		Long: `Start a local web server hosting the leaplua playground.

The playground provides:
- An editor that compiles snippets for any Lua target
- The project's source files, refreshed as they change
- The operator capability matrix and diagnostic codes as JSON
- The compile run history when a cache is configured

The target and library mode picked in the browser are remembered per
visitor. The project's configured options are the initial choice.`,
		Example: `  # Start the playground on the default port
  leaplua serve

  # Start on a custom port
  leaplua serve --port 3000

  # Start without auto-opening the browser
  leaplua serve --no-browser`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Port, "port", 0, "Port to serve on (default: 8765)")
	cmd.Flags().BoolVar(&opts.NoBrowser, "no-browser", false, "Don't auto-open browser")
	cmd.Flags().BoolVar(&opts.Watch, "watch", true, "Watch project sources for changes")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg
	logger := cmdCtx.Logger

	uiCfg := cfg.GetUIConfig()

	// CLI flags override config file
	port := uiCfg.Port
	if opts.Port != 0 {
		port = opts.Port
	}

	autoOpen := uiCfg.AutoOpen
	if opts.NoBrowser {
		autoOpen = false
	}

	watch := uiCfg.Watch
	if cmd.Flags().Changed("watch") {
		watch = opts.Watch
	}

	var store state.Store
	if cfg.Cache != "" {
		sqlite, err := state.OpenSQLite(cmd.Context(), cfg.Cache, logger)
		if err != nil {
			return fmt.Errorf("open cache: %w", err)
		}
		defer func() { _ = sqlite.Close() }()
		store = sqlite
	}

	server := ui.NewServer(ui.Config{
		Options:       cfg.CompileOptions(),
		Store:         store,
		Root:          cfg.ProjectRoot,
		Port:          port,
		Watch:         watch,
		SessionSecret: sessionSecret(),
		Logger:        logger,
	})

	url := fmt.Sprintf("http://localhost:%d", port)
	if autoOpen {
		go openBrowser(url)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Starting playground on %s\n", url)
	_, _ = fmt.Fprintln(out, "Press Ctrl+C to stop")

	return server.Serve(cmd.Context())
}

// sessionSecret returns the cookie key from the environment. Without one,
// a random key is used and sessions end when the server stops.
func sessionSecret() string {
	if secret := os.Getenv(sessionSecretEnv); secret != "" {
		return secret
	}
	return uuid.NewString() + uuid.NewString()
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return
	}

	_ = cmd.Start()
}
