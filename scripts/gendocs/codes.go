package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/leaplua/pkg/diag"
)

// generateCodesDocs generates the diagnostic code reference.
func generateCodesDocs(outDir string) error {
	log.Printf("Generating diagnostic docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	defs := diag.All()
	if err := generateCodesPage(outDir, defs); err != nil {
		return err
	}
	log.Printf("  Generated index.md (%d codes)", len(defs))

	return nil
}

// generateCodesPage generates the diagnostics overview with one section per code.
func generateCodesPage(outDir string, defs []diag.Definition) error {
	w := NewMarkdownWriter()

	w.Frontmatter("Diagnostics", "Diagnostic codes reported while lowering operators")
	w.GeneratedMarker()

	w.Header(1, "Diagnostics")
	w.Paragraph(fmt.Sprintf("leaplua reports **%d diagnostic codes**. Codes are stable: match on the code, never on the message.", len(defs)))

	w.Header(2, "Severity Levels")
	w.Table(
		[]string{"Severity", "Description"},
		[][]string{
			{InlineCode("error"), "The construct was not emitted; the command exits with status 1"},
			{InlineCode("warning"), "Potential issue that should be reviewed"},
			{InlineCode("info"), "Informational feedback"},
			{InlineCode("hint"), "Suggestion for improvement"},
		},
	)

	w.Header(2, "Codes")
	var rows [][]string
	for _, def := range defs {
		link := fmt.Sprintf("[%s](#%s)", def.Code, def.Code)
		rows = append(rows, []string{link, InlineCode(def.Name), def.Severity.String(), cleanDescription(def.Description)})
	}
	w.Table([]string{"Code", "Name", "Severity", "Description"}, rows)

	for _, def := range defs {
		writeCodeDoc(w, def)
	}

	return os.WriteFile(filepath.Join(outDir, "index.md"), w.Bytes(), 0600)
}

// writeCodeDoc writes detailed documentation for a single code.
func writeCodeDoc(w *MarkdownWriter, def diag.Definition) {
	// Code header with anchor: ### LW01 - unsupported-for-target {#LW01}
	w.Line(fmt.Sprintf("### %s - %s {#%s}", def.Code, def.Name, def.Code))
	w.Newline()

	w.Line(fmt.Sprintf("**Severity:** %s", InlineCode(def.Severity.String())))
	w.Newline()

	w.Paragraph(cleanDescription(def.Description))

	if def.Rationale != "" {
		w.Header(4, "Why This Matters")
		w.Paragraph(strings.TrimSpace(def.Rationale))
	}

	if def.BadExample != "" {
		w.Header(4, "Triggers")
		w.CodeBlock("ts", def.BadExample)
	}

	if def.GoodExample != "" {
		w.Header(4, "Alternative")
		w.CodeBlock("ts", def.GoodExample)
	}

	if def.Fix != "" {
		w.Header(4, "How to Fix")
		w.Paragraph(strings.TrimSpace(def.Fix))
	}

	w.Line("---")
	w.Newline()
}
