package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/leaplua/internal/cli/output"
	"github.com/leapstack-labs/leaplua/pkg/core"
	"github.com/leapstack-labs/leaplua/pkg/dialect"
	"github.com/leapstack-labs/leaplua/pkg/lower"

	// Register the Lua dialects
	_ "github.com/leapstack-labs/leaplua/pkg/dialects/lua"
)

// generateMatrixDocs generates the operator capability reference.
func generateMatrixDocs(outDir string) error {
	log.Printf("Generating capability matrix docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := generateMatrixPage(outDir, dialect.All()); err != nil {
		return fmt.Errorf("failed to generate operators.md: %w", err)
	}
	log.Printf("  Generated operators.md")

	return nil
}

// generateMatrixPage writes the category matrix and the per-operator
// strategies for both library import modes.
func generateMatrixPage(outDir string, dialects []*dialect.Dialect) error {
	w := NewMarkdownWriter()

	w.Frontmatter("Operators", "How each Lua target lowers every operator")
	w.GeneratedMarker()

	w.Header(1, "Operators")
	w.Paragraph("Arithmetic, comparison and logical operators are native on every target. " +
		"Bitwise operators and shifts depend on the target.")

	w.Header(2, "Capability Matrix")
	header := []string{"Target"}
	for _, c := range dialect.AllCategories {
		header = append(header, output.Title(c.String()))
	}
	var rows [][]string
	for _, d := range dialects {
		row := []string{d.Target.DisplayName()}
		for _, c := range dialect.AllCategories {
			row = append(row, familyCell(d, c))
		}
		rows = append(rows, row)
	}
	w.Table(header, rows)

	for _, mode := range []core.LibraryImportMode{core.LibraryImportRequire, core.LibraryImportNone} {
		w.Header(2, fmt.Sprintf("Operators with %s", InlineCode("library_import: "+mode.String())))
		if err := writeOperatorTable(w, dialects, lower.Options{LibraryImport: mode}); err != nil {
			return err
		}
	}

	return os.WriteFile(filepath.Join(outDir, "operators.md"), w.Bytes(), 0600)
}

func familyCell(d *dialect.Dialect, c dialect.Category) string {
	f, ok := d.Family(c)
	if !ok {
		return "-"
	}
	if f == dialect.FamilyLibrary {
		return fmt.Sprintf("%s (%s)", f, InlineCode(d.BitLibrary()))
	}
	return f.String()
}

func writeOperatorTable(w *MarkdownWriter, dialects []*dialect.Dialect, opts lower.Options) error {
	header := []string{"Operator"}
	for _, d := range dialects {
		header = append(header, d.Target.String())
	}

	var rows [][]string
	for _, def := range dialect.LuaOperators {
		op := InlineCode(def.Token.String())
		if def.Arity == 1 {
			op = "unary " + op
		}
		row := []string{op}
		for _, d := range dialects {
			s, err := lower.Resolve(def.Token, def.Arity, d, opts)
			if err != nil {
				return err
			}
			row = append(row, InlineCode(s.String()))
		}
		rows = append(rows, row)
	}

	w.Table(header, rows)
	return nil
}
