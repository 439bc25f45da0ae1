package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leaplua/pkg/core"
	"github.com/leapstack-labs/leaplua/pkg/desugar"
	"github.com/leapstack-labs/leaplua/pkg/diag"
	"github.com/leapstack-labs/leaplua/pkg/format"
	"github.com/leapstack-labs/leaplua/pkg/lua"
	"github.com/leapstack-labs/leaplua/pkg/parser"
	"github.com/leapstack-labs/leaplua/pkg/transform"
)

// LowerOptions holds options for the lower command.
type LowerOptions struct {
	Shape string
}

// NewLowerCommand creates the lower command.
func NewLowerCommand() *cobra.Command {
	opts := &LowerOptions{}

	cmd := &cobra.Command{
		Use:   "lower <expression>",
		Short: "Lower a single expression and show the generated Lua",
		Long: `Lower one source expression for the configured target.

The shape selects the Lua construct the expression must become:
  expression  prelude statements followed by the value (default)
  statements  prelude statements only, the value is discarded
  single      one expression; a prelude is wrapped in an immediately
              invoked function

The output is a runnable chunk: helpers, then the prelude, then a return
of the value.`,
		Example: `  leaplua lower 'x++' --target 5.1
  leaplua lower '(f(), g())' --shape single
  leaplua lower 'a >>> b' -t 5.0 -o json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLower(cmd, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Shape, "shape", "expression", "Result shape: expression, statements, single")
	_ = cmd.RegisterFlagCompletionFunc("shape", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"expression", "statements", "single"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// LowerOutput is the structured output of the lower command.
type LowerOutput struct {
	Source      string            `json:"source" yaml:"source"`
	Target      core.Target       `json:"target" yaml:"target"`
	Shape       string            `json:"shape" yaml:"shape"`
	Prelude     string            `json:"prelude" yaml:"prelude"`
	Value       string            `json:"value,omitempty" yaml:"value,omitempty"`
	Helpers     []string          `json:"helpers" yaml:"helpers"`
	Chunk       string            `json:"chunk" yaml:"chunk"`
	Diagnostics []diag.Diagnostic `json:"diagnostics" yaml:"diagnostics"`
}

func runLower(cmd *cobra.Command, src string, opts *LowerOptions) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	shape, err := desugar.ParseShape(opts.Shape)
	if err != nil {
		return err
	}

	compiler, err := cmdCtx.Compiler()
	if err != nil {
		return err
	}

	out, err := lowerExpression(compiler, src, shape)
	if err != nil {
		return err
	}

	if ok, err := r.Structured(out); ok {
		return err
	}
	for _, d := range out.Diagnostics {
		r.Diagnostic("", d)
	}
	r.Code("lua", out.Chunk)

	for _, d := range out.Diagnostics {
		if d.Severity == diag.SeverityError {
			return ErrDiagnostics
		}
	}
	return nil
}

// lowerExpression parses and lowers src into shape.
func lowerExpression(c *transform.Compiler, src string, shape desugar.Shape) (*LowerOutput, error) {
	expr, err := parser.ParseExpression(src)
	if err != nil {
		return nil, err
	}

	res, err := c.Expression(expr, shape)
	if err != nil {
		return nil, err
	}

	body := append([]lua.Statement{}, res.Prelude...)
	out := &LowerOutput{
		Source:      src,
		Target:      c.Dialect().Target,
		Shape:       shape.String(),
		Prelude:     format.Chunk(res.Prelude),
		Helpers:     res.Helpers.Names(),
		Diagnostics: res.Diagnostics,
	}
	if res.Expr != nil {
		out.Value = format.Expression(res.Expr)
		body = append(body, lua.Return(res.Expr))
	}
	out.Chunk = format.Chunk(transform.Assemble(res.Helpers, body))
	return out, nil
}
