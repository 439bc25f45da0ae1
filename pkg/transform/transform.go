// Package transform drives the compilation of whole units: it parses or
// accepts source statements, desugars and lowers them for one target dialect,
// and assembles the Lua chunk with the runtime helpers it needs.
//
// Each call to Unit owns a fresh diagnostics reporter, helper set and
// temporary scope, so a Compiler may compile several units concurrently.
package transform

import (
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leaplua/pkg/core"
	"github.com/leapstack-labs/leaplua/pkg/desugar"
	"github.com/leapstack-labs/leaplua/pkg/diag"
	"github.com/leapstack-labs/leaplua/pkg/dialect"
	"github.com/leapstack-labs/leaplua/pkg/format"
	"github.com/leapstack-labs/leaplua/pkg/lower"
	"github.com/leapstack-labs/leaplua/pkg/lua"
	"github.com/leapstack-labs/leaplua/pkg/lualib"
	"github.com/leapstack-labs/leaplua/pkg/parser"

	// Register the Lua dialects looked up by target
	_ "github.com/leapstack-labs/leaplua/pkg/dialects/lua"
)

// Compiler compiles units for one target and option set.
type Compiler struct {
	dialect    *dialect.Dialect
	opts       core.CompileOptions
	preprocess Preprocessor
	logger     *slog.Logger
}

// Preprocessor rewrites a unit's source before it is parsed.
type Preprocessor func(name, src string) (string, error)

// Config holds compiler configuration.
type Config struct {
	// Options select the target dialect and library import mode
	Options core.CompileOptions
	// Dialect overrides the registered dialect for Options.Target (optional)
	Dialect *dialect.Dialect
	// Preprocess runs on every source before parsing (optional)
	Preprocess Preprocessor
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// New creates a compiler. The target must name a registered dialect.
func New(cfg Config) (*Compiler, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	d := cfg.Dialect
	if d == nil {
		var err error
		d, err = dialect.ForTarget(cfg.Options.Target)
		if err != nil {
			return nil, fmt.Errorf("resolve dialect: %w", err)
		}
	}

	return &Compiler{
		dialect:    d,
		opts:       cfg.Options,
		preprocess: cfg.Preprocess,
		logger:     logger.With("dialect", d.Name),
	}, nil
}

// Dialect returns the compiler's target dialect.
func (c *Compiler) Dialect() *dialect.Dialect {
	return c.dialect
}

// Options returns the compiler's options.
func (c *Compiler) Options() core.CompileOptions {
	return c.opts
}

// Result is one compiled unit.
type Result struct {
	// Name identifies the unit, usually its file path
	Name string
	// Target is the dialect the unit was compiled for
	Target core.Target
	// Body holds the lowered statements, without helpers
	Body []lua.Statement
	// Helpers names the runtime helpers the body uses
	Helpers *lualib.Set
	// Diagnostics lists the reported problems sorted by position
	Diagnostics []diag.Diagnostic
}

// HasErrors reports whether any diagnostic is an error.
func (r *Result) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == diag.SeverityError {
			return true
		}
	}
	return false
}

// Statements returns the assembled chunk: helpers first, then the body.
func (r *Result) Statements() []lua.Statement {
	return Assemble(r.Helpers, r.Body)
}

// Chunk returns the formatted Lua source of the unit.
func (r *Result) Chunk() string {
	return format.Chunk(r.Statements())
}

// Assemble prepends the definitions of every used helper to body. Each
// helper is emitted once, libraries before polyfills.
func Assemble(helpers *lualib.Set, body []lua.Statement) []lua.Statement {
	var out []lua.Statement
	if helpers != nil {
		out = append(out, helpers.Statements()...)
	}
	return append(out, body...)
}

// newUnit builds the per-unit lowerer and transformer.
func (c *Compiler) newUnit() (*lower.Lowerer, *desugar.Transformer, error) {
	l, err := lower.New(lower.Config{
		Dialect:  c.dialect,
		Options:  lower.Options{LibraryImport: c.opts.LibraryImport},
		Reporter: diag.NewReporter(),
		Helpers:  lualib.NewSet(),
		Logger:   c.logger,
	})
	if err != nil {
		return nil, nil, err
	}
	return l, desugar.New(l, c.logger), nil
}

// Unit compiles a list of source statements. Unsupported operators become
// diagnostics on the result; the error is reserved for internal invariant
// violations, which abort the unit.
func (c *Compiler) Unit(name string, stmts []core.Stmt) (*Result, error) {
	l, tr, err := c.newUnit()
	if err != nil {
		return nil, err
	}

	c.logger.Debug("compiling unit", "unit", name, "statements", len(stmts))

	var body []lua.Statement
	for i, s := range stmts {
		out, err := tr.Statement(s)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		// Lua only allows return as the last statement of a block.
		if _, ok := s.(*core.ReturnStmt); ok && i < len(stmts)-1 {
			out = []lua.Statement{&lua.DoStatement{Body: out}}
		}
		body = append(body, out...)
	}

	res := &Result{
		Name:        name,
		Target:      c.dialect.Target,
		Body:        body,
		Helpers:     l.Helpers(),
		Diagnostics: l.Reporter().Sorted(),
	}
	c.logger.Debug("compiled unit",
		"unit", name,
		"diagnostics", len(res.Diagnostics),
		"helpers", res.Helpers.Names(),
	)
	return res, nil
}

// CompileSource parses src and compiles it as one unit.
func (c *Compiler) CompileSource(name, src string) (*Result, error) {
	if c.preprocess != nil {
		out, err := c.preprocess(name, src)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		src = out
	}
	stmts, err := parser.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return c.Unit(name, stmts)
}

// ExprResult is one lowered expression.
type ExprResult struct {
	desugar.Result
	Helpers     *lualib.Set
	Diagnostics []diag.Diagnostic
}

// Expression lowers a single expression into the requested shape.
func (c *Compiler) Expression(e core.Expr, shape desugar.Shape) (*ExprResult, error) {
	l, tr, err := c.newUnit()
	if err != nil {
		return nil, err
	}
	r, err := tr.Expression(e, shape)
	if err != nil {
		return nil, err
	}
	return &ExprResult{
		Result:      r,
		Helpers:     l.Helpers(),
		Diagnostics: l.Reporter().Sorted(),
	}, nil
}

// CompileSource compiles src with opts. It is a shorthand for New followed
// by Compiler.CompileSource.
func CompileSource(name, src string, opts core.CompileOptions) (*Result, error) {
	c, err := New(Config{Options: opts})
	if err != nil {
		return nil, err
	}
	return c.CompileSource(name, src)
}
