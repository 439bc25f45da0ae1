// Package starlark loads custom Lua dialects from Starlark files.
//
// A dialect file calls dialect() exactly once:
//
//	families = base("JIT")
//	families["unsigned-right-shift"] = "polyfill"
//
//	dialect(
//	    name = "openresty",
//	    target = "JIT",
//	    description = "OpenResty with the bit module",
//	    families = families,
//	    bit_library = "bit",
//	)
//
// base(target) returns the strategy families of a built-in dialect as a
// mutable dict keyed by category name, and categories lists every
// category. Family names are native, library, polyfill, unsupported and
// mismatch.
package starlark

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/leapstack-labs/leaplua/pkg/core"
	"github.com/leapstack-labs/leaplua/pkg/dialect"
	"github.com/leapstack-labs/leaplua/pkg/lower"

	// Register the built-in dialects used by base()
	_ "github.com/leapstack-labs/leaplua/pkg/dialects/lua"
)

// FileExt is the extension of dialect definition files.
const FileExt = ".star"

// LoadError represents an error loading a dialect file.
type LoadError struct {
	File    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("dialect %s: %s", filepath.Base(e.File), e.Message)
}

// LoadDialect executes the dialect file at path and returns the dialect it defines.
func LoadDialect(path string, logger *slog.Logger) (*dialect.Dialect, error) {
	content, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the project config
	if err != nil {
		return nil, &LoadError{File: path, Message: fmt.Sprintf("failed to read file: %v", err)}
	}
	return LoadDialectSource(path, content, logger)
}

// LoadDialectSource executes src as a dialect file named filename.
func LoadDialectSource(filename string, src []byte, logger *slog.Logger) (*dialect.Dialect, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	def := &definition{}
	thread := &starlark.Thread{
		Name: "dialect:" + filepath.Base(filename),
		Print: func(_ *starlark.Thread, msg string) {
			logger.Debug(msg, "file", filename)
		},
	}

	if _, err := starlark.ExecFileOptions(&syntax.FileOptions{}, thread, filename, src, def.predeclared()); err != nil {
		var evalErr *starlark.EvalError
		if errors.As(err, &evalErr) {
			return nil, &LoadError{File: filename, Message: evalErr.Backtrace()}
		}
		return nil, &LoadError{File: filename, Message: err.Error()}
	}
	if def.dialect == nil {
		return nil, &LoadError{File: filename, Message: "dialect() was never called"}
	}

	logger.Debug("loaded custom dialect", "file", filename, "dialect", def.dialect.Name)
	return def.dialect, nil
}

// definition collects the result of the dialect() call of one file.
type definition struct {
	dialect *dialect.Dialect
}

func (def *definition) predeclared() starlark.StringDict {
	names := make([]starlark.Value, len(dialect.AllCategories))
	for i, c := range dialect.AllCategories {
		names[i] = starlark.String(c.String())
	}
	categories := starlark.NewList(names)
	categories.Freeze()

	return starlark.StringDict{
		"dialect":    starlark.NewBuiltin("dialect", def.define),
		"base":       starlark.NewBuiltin("base", base),
		"categories": categories,
	}
}

// define implements dialect(name, target, families, description?, bit_library?, integer_division?).
func (def *definition) define(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if def.dialect != nil {
		return nil, fmt.Errorf("%s: called more than once", b.Name())
	}

	var (
		name, target, description, bitLibrary string
		families                              *starlark.Dict
		intDiv                                bool
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs,
		"name", &name,
		"target", &target,
		"families", &families,
		"description?", &description,
		"bit_library?", &bitLibrary,
		"integer_division?", &intDiv,
	); err != nil {
		return nil, err
	}

	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%s: name must not be empty", b.Name())
	}
	t, err := core.ParseTarget(target)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}

	byFamily, err := groupFamilies(families)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	if len(byFamily[dialect.FamilyLibrary]) > 0 && bitLibrary == "" {
		return nil, fmt.Errorf("%s: library categories need bit_library", b.Name())
	}

	builder := dialect.NewDialect(t).Named(name).Describe(description).
		Native(byFamily[dialect.FamilyNative]...).
		Polyfill(byFamily[dialect.FamilyPolyfill]...).
		Unsupported(byFamily[dialect.FamilyUnsupported]...).
		SemanticMismatch(byFamily[dialect.FamilySemanticMismatch]...)
	if cats := byFamily[dialect.FamilyLibrary]; len(cats) > 0 {
		builder.Library(bitLibrary, cats...)
	}
	if intDiv {
		builder.IntegerDivision()
	}
	if builtin, err := dialect.ForTarget(t); err == nil {
		// Operator spellings are a property of the runtime.
		builder.NativeCallsOf(builtin)
	}

	d := builder.Build()
	if missing := d.MissingCategories(); len(missing) > 0 {
		return nil, fmt.Errorf("%s: no family for %s", b.Name(), joinCategories(missing))
	}
	if err := checkOperators(d); err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}

	def.dialect = d
	return starlark.None, nil
}

// checkOperators resolves every operator so that families without a
// library function or polyfill for some operator fail at load time.
func checkOperators(d *dialect.Dialect) error {
	opts := lower.Options{LibraryImport: core.LibraryImportRequire}
	for _, def := range dialect.LuaOperators {
		if _, err := lower.Resolve(def.Token, def.Arity, d, opts); err != nil {
			var ie *lower.InvariantError
			if errors.As(err, &ie) {
				return fmt.Errorf("%s cannot be lowered as %s: %s", def.Token, familyOf(d, def.Category), ie.Reason)
			}
			return err
		}
	}
	return nil
}

func familyOf(d *dialect.Dialect, c dialect.Category) string {
	f, _ := d.Family(c)
	return f.String()
}

// base implements base(target): the families of a built-in dialect.
func base(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var target string
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &target); err != nil {
		return nil, err
	}
	t, err := core.ParseTarget(target)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	d, err := dialect.ForTarget(t)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}

	dict := starlark.NewDict(len(dialect.AllCategories))
	for _, c := range d.Categories() {
		f, _ := d.Family(c)
		if err := dict.SetKey(starlark.String(c.String()), starlark.String(f.String())); err != nil {
			return nil, err
		}
	}
	return dict, nil
}

// groupFamilies converts a {category: family} dict into categories per family.
func groupFamilies(families *starlark.Dict) (map[dialect.Family][]dialect.Category, error) {
	out := make(map[dialect.Family][]dialect.Category)
	if families == nil {
		return out, nil
	}
	for _, item := range families.Items() {
		key, ok := starlark.AsString(item[0])
		if !ok {
			return nil, fmt.Errorf("families key must be a string, got %s", item[0].Type())
		}
		value, ok := starlark.AsString(item[1])
		if !ok {
			return nil, fmt.Errorf("family of %q must be a string, got %s", key, item[1].Type())
		}

		c, ok := parseCategory(key)
		if !ok {
			return nil, fmt.Errorf("unknown category %q", key)
		}
		f, ok := parseFamily(value)
		if !ok {
			return nil, fmt.Errorf("unknown family %q for %s", value, key)
		}
		out[f] = append(out[f], c)
	}
	return out, nil
}

func parseCategory(s string) (dialect.Category, bool) {
	for _, c := range dialect.AllCategories {
		if c.String() == s {
			return c, true
		}
	}
	return 0, false
}

var allFamilies = []dialect.Family{
	dialect.FamilyNative,
	dialect.FamilyLibrary,
	dialect.FamilyPolyfill,
	dialect.FamilyUnsupported,
	dialect.FamilySemanticMismatch,
}

func parseFamily(s string) (dialect.Family, bool) {
	for _, f := range allFamilies {
		if f.String() == s {
			return f, true
		}
	}
	return 0, false
}

func joinCategories(cats []dialect.Category) string {
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = c.String()
	}
	return strings.Join(names, ", ")
}
