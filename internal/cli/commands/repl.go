package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leaplua/internal/cli/output"
	"github.com/leapstack-labs/leaplua/pkg/core"
	"github.com/leapstack-labs/leaplua/pkg/transform"
)

const (
	replPrompt         = "leaplua> "
	replContinuePrompt = "    ...> "
	replHistoryName    = ".leaplua_history"
)

// NewReplCommand creates the repl command.
func NewReplCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactively compile statements",
		Long: `Start an interactive session that compiles each entered statement
for the configured target and prints the generated Lua.

Input spanning several lines is accumulated until every bracket is closed.
Dot-commands change the session:
  .target <t>        switch the Lua target
  .library <mode>    switch the library import mode (require, none)
  .help              show help
  .quit / .exit      leave the session`,
		Args: cobra.NoArgs,
		RunE: runRepl,
	}
}

func runRepl(cmd *cobra.Command, _ []string) error {
	cmdCtx := NewCommandContext(cmd)

	s, err := newReplSession(cmdCtx.Cfg.CompileOptions(), cmdCtx.Renderer, cmdCtx.Logger)
	if err != nil {
		return err
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     replHistoryFile(),
		AutoComplete:    newReplCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	s.r.Printf("leaplua REPL (target %s)\n", s.opts.Target.DisplayName())
	s.r.Println("Type .help for commands, .quit to exit")
	s.r.Println()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			s.reset()
			rl.SetPrompt(s.prompt())
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if quit := s.eval(line); quit {
			return nil
		}
		rl.SetPrompt(s.prompt())
	}
}

// replHistoryFile returns the history path in the user's home directory,
// or an empty path (no history) when the home directory is unknown.
func replHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, replHistoryName)
}

func newReplCompleter() *readline.PrefixCompleter {
	targets := make([]readline.PrefixCompleterInterface, 0, len(core.AllTargets))
	for _, t := range core.AllTargets {
		targets = append(targets, readline.PcItem(t.String()))
	}

	return readline.NewPrefixCompleter(
		readline.PcItem(".help"),
		readline.PcItem(".target", targets...),
		readline.PcItem(".library", readline.PcItem("require"), readline.PcItem("none")),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}

// replSession holds the state of one interactive session.
type replSession struct {
	opts     core.CompileOptions
	compiler *transform.Compiler
	r        *output.Renderer
	logger   *slog.Logger

	buf   strings.Builder
	depth int
	count int
}

func newReplSession(opts core.CompileOptions, r *output.Renderer, logger *slog.Logger) (*replSession, error) {
	s := &replSession{r: r, logger: logger}
	if err := s.configure(opts); err != nil {
		return nil, err
	}
	return s, nil
}

// configure rebuilds the compiler for opts.
func (s *replSession) configure(opts core.CompileOptions) error {
	c, err := transform.New(transform.Config{Options: opts, Logger: s.logger})
	if err != nil {
		return err
	}
	s.opts = opts
	s.compiler = c
	return nil
}

func (s *replSession) prompt() string {
	if s.buf.Len() > 0 {
		return replContinuePrompt
	}
	return replPrompt
}

func (s *replSession) reset() {
	s.buf.Reset()
	s.depth = 0
}

// eval handles one input line and reports whether the session should end.
func (s *replSession) eval(line string) bool {
	trimmed := strings.TrimSpace(line)
	if s.buf.Len() == 0 {
		if trimmed == "" {
			return false
		}
		if strings.HasPrefix(trimmed, ".") {
			return s.command(trimmed)
		}
	}

	s.buf.WriteString(line)
	s.buf.WriteByte('\n')
	s.depth += bracketDepth(line)
	if s.depth > 0 {
		return false
	}

	src := s.buf.String()
	s.reset()
	s.compile(src)
	return false
}

func (s *replSession) compile(src string) {
	s.count++
	name := fmt.Sprintf("<repl:%d>", s.count)

	res, err := s.compiler.CompileSource(name, src)
	if err != nil {
		s.r.Error(err.Error())
		return
	}
	for _, d := range res.Diagnostics {
		s.r.Diagnostic("", d)
	}
	s.r.Code("lua", res.Chunk())
}

// command runs a dot-command and reports whether the session should end.
func (s *replSession) command(line string) bool {
	parts := strings.Fields(line)
	name := strings.ToLower(parts[0])

	switch name {
	case ".quit", ".exit":
		return true

	case ".help":
		printReplHelp(s.r.Writer())

	case ".target":
		if len(parts) < 2 {
			s.r.Println(s.opts.Target.DisplayName())
			return false
		}
		t, err := core.ParseTarget(parts[1])
		if err != nil {
			s.r.Error(err.Error())
			return false
		}
		opts := s.opts
		opts.Target = t
		s.apply(opts, "target is now "+t.DisplayName())

	case ".library":
		if len(parts) < 2 {
			s.r.Println(s.opts.LibraryImport.String())
			return false
		}
		m, err := core.ParseLibraryImportMode(parts[1])
		if err != nil {
			s.r.Error(err.Error())
			return false
		}
		opts := s.opts
		opts.LibraryImport = m
		s.apply(opts, "library import is now "+m.String())

	default:
		s.r.Error(fmt.Sprintf("unknown command: %s (type .help for commands)", name))
	}
	return false
}

func (s *replSession) apply(opts core.CompileOptions, msg string) {
	if err := s.configure(opts); err != nil {
		s.r.Error(err.Error())
		return
	}
	s.r.Success(msg)
}

// bracketDepth returns the net number of brackets opened by line,
// ignoring brackets inside string literals and line comments.
func bracketDepth(line string) int {
	depth := 0
	var quote rune
	prev := rune(0)
	for _, ch := range line {
		switch {
		case quote != 0:
			if ch == quote && prev != '\\' {
				quote = 0
			}
		case ch == '"' || ch == '\'' || ch == '`':
			quote = ch
		case ch == '/' && prev == '/':
			return depth
		case ch == '{' || ch == '(' || ch == '[':
			depth++
		case ch == '}' || ch == ')' || ch == ']':
			depth--
		}
		prev = ch
	}
	return depth
}

func printReplHelp(w io.Writer) {
	help := `
Commands:
  .help              Show this help message
  .target [t]        Show or switch the Lua target (5.0, 5.1, 5.2, 5.3, 5.4, JIT)
  .library [mode]    Show or switch the library import mode (require, none)
  .quit / .exit      Exit the REPL

Tips:
  - Each complete statement is compiled as its own unit
  - Unclosed brackets continue the input on the next line
  - Use arrow keys to navigate history
`
	_, _ = fmt.Fprintln(w, help)
}
