package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leaplua/internal/cli/output"
	"github.com/leapstack-labs/leaplua/pkg/core"
	"github.com/leapstack-labs/leaplua/pkg/dialect"
	"github.com/leapstack-labs/leaplua/pkg/lower"

	// Register the Lua dialects
	_ "github.com/leapstack-labs/leaplua/pkg/dialects/lua"
)

// MatrixOptions holds options for the matrix command.
type MatrixOptions struct {
	Operators bool
}

// NewMatrixCommand creates the matrix command.
func NewMatrixCommand() *cobra.Command {
	opts := &MatrixOptions{}

	cmd := &cobra.Command{
		Use:   "matrix",
		Short: "Show the operator capability matrix",
		Long: `Show how every operator category is lowered for each Lua target.

With --operators, every operator is resolved individually under the
configured library import mode, showing the exact Lua operator, library
function or polyfill used.`,
		Example: `  leaplua matrix
  leaplua matrix --operators --library-import none
  leaplua matrix -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMatrix(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Operators, "operators", false, "Resolve each operator instead of each category")

	return cmd
}

// MatrixRow is one dialect of the capability matrix.
type MatrixRow struct {
	Target       core.Target       `json:"target" yaml:"target"`
	Dialect      string            `json:"dialect" yaml:"dialect"`
	BitLibrary   string            `json:"bit_library,omitempty" yaml:"bit_library,omitempty"`
	Capabilities map[string]string `json:"capabilities" yaml:"capabilities"`
}

// OperatorRow is one operator resolved under every dialect.
type OperatorRow struct {
	Operator   string            `json:"operator" yaml:"operator"`
	Arity      int               `json:"arity" yaml:"arity"`
	Category   string            `json:"category" yaml:"category"`
	Strategies map[string]string `json:"strategies" yaml:"strategies"`
}

func runMatrix(cmd *cobra.Command, opts *MatrixOptions) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer
	dialects := dialect.All()

	if opts.Operators {
		rows, err := buildOperatorRows(dialects, lower.Options{LibraryImport: cmdCtx.Cfg.LibraryImport})
		if err != nil {
			return err
		}
		if ok, err := r.Structured(rows); ok {
			return err
		}
		renderOperatorRows(r, dialects, rows)
		return nil
	}

	rows := buildMatrixRows(dialects)
	if ok, err := r.Structured(rows); ok {
		return err
	}
	renderMatrixRows(r, rows)
	return nil
}

func buildMatrixRows(dialects []*dialect.Dialect) []MatrixRow {
	rows := make([]MatrixRow, 0, len(dialects))
	for _, d := range dialects {
		row := MatrixRow{
			Target:       d.Target,
			Dialect:      d.Name,
			BitLibrary:   d.BitLibrary(),
			Capabilities: make(map[string]string, len(dialect.AllCategories)),
		}
		for _, c := range dialect.AllCategories {
			row.Capabilities[c.String()] = familyLabel(d, c)
		}
		rows = append(rows, row)
	}
	return rows
}

// familyLabel describes a category's family, naming the library for library calls.
func familyLabel(d *dialect.Dialect, c dialect.Category) string {
	f, ok := d.Family(c)
	if !ok {
		return "missing"
	}
	if f == dialect.FamilyLibrary {
		return fmt.Sprintf("%s (%s)", f, d.BitLibrary())
	}
	return f.String()
}

func renderMatrixRows(r *output.Renderer, rows []MatrixRow) {
	header := []string{"Target"}
	for _, c := range dialect.AllCategories {
		header = append(header, output.Title(c.String()))
	}

	cells := make([][]string, 0, len(rows))
	for _, row := range rows {
		line := []string{row.Target.DisplayName()}
		for _, c := range dialect.AllCategories {
			line = append(line, row.Capabilities[c.String()])
		}
		cells = append(cells, line)
	}

	r.Header(1, "Operator capability matrix")
	r.Table(header, cells)
}

func buildOperatorRows(dialects []*dialect.Dialect, opts lower.Options) ([]OperatorRow, error) {
	rows := make([]OperatorRow, 0, len(dialect.LuaOperators))
	for _, def := range dialect.LuaOperators {
		row := OperatorRow{
			Operator:   def.Token.String(),
			Arity:      def.Arity,
			Category:   def.Category.String(),
			Strategies: make(map[string]string, len(dialects)),
		}
		for _, d := range dialects {
			s, err := lower.Resolve(def.Token, def.Arity, d, opts)
			if err != nil {
				return nil, err
			}
			row.Strategies[d.Target.String()] = s.String()
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func renderOperatorRows(r *output.Renderer, dialects []*dialect.Dialect, rows []OperatorRow) {
	header := []string{"Operator"}
	for _, d := range dialects {
		header = append(header, d.Target.DisplayName())
	}

	cells := make([][]string, 0, len(rows))
	for _, row := range rows {
		op := row.Operator
		if row.Arity == 1 {
			op = "unary " + op
		}
		line := []string{op}
		for _, d := range dialects {
			line = append(line, row.Strategies[d.Target.String()])
		}
		cells = append(cells, line)
	}

	r.Header(1, "Operator lowering")
	r.Table(header, cells)
}
