package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/leaplua/internal/cli/config"
	"github.com/leapstack-labs/leaplua/internal/cli/output"
	"github.com/leapstack-labs/leaplua/pkg/core"
)

// generateConfigDocs generates the configuration reference.
func generateConfigDocs(outDir string) error {
	log.Printf("Generating configuration docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := generateConfigurationDoc(outDir); err != nil {
		return fmt.Errorf("failed to generate configuration.md: %w", err)
	}
	log.Printf("  Generated configuration.md")

	return nil
}

// ConfigField represents a configuration key.
type ConfigField struct {
	Name        string
	Type        string
	Default     string
	Description string
}

// EnvVar returns the environment variable that sets the field.
func (f ConfigField) EnvVar() string {
	return "LEAPLUA_" + strings.ToUpper(f.Name)
}

// Flag returns the command-line flag that sets the field.
func (f ConfigField) Flag() string {
	return "--" + strings.ReplaceAll(f.Name, "_", "-")
}

// getConfigSchema returns the configuration keys.
// This is based on internal/cli/config/types.go Config.
func getConfigSchema() []ConfigField {
	def := config.Default()

	targets := make([]string, 0, len(core.AllTargets))
	for _, t := range core.AllTargets {
		targets = append(targets, t.String())
	}
	modes := make([]string, 0, len(output.Modes))
	for _, m := range output.Modes {
		modes = append(modes, string(m))
	}

	return []ConfigField{
		{Name: "target", Type: "string", Default: def.Target.String(), Description: "Lua target: " + strings.Join(targets, ", ")},
		{Name: "library_import", Type: "string", Default: def.LibraryImport.String(), Description: "Whether bit library calls may be emitted: require, none"},
		{Name: "output", Type: "string", Default: def.OutputFormat, Description: "Output format: " + strings.Join(modes, ", ")},
		{Name: "out_dir", Type: "string", Default: "", Description: "Directory for compiled .lua files, relative to leaplua.yaml"},
		{Name: "jobs", Type: "int", Default: "0", Description: "Files compiled concurrently (0 uses the number of CPUs)"},
		{Name: "emit_helpers", Type: "bool", Default: fmt.Sprint(def.EmitHelpers), Description: "Emit runtime helper definitions at the top of each chunk"},
		{Name: "cache", Type: "string", Default: "", Description: "SQLite compile cache, relative to leaplua.yaml (empty disables caching)"},
		{Name: "dialect", Type: "string", Default: "", Description: "Custom dialect file (.star), relative to leaplua.yaml; its target replaces target"},
		{Name: "strip_types", Type: "bool", Default: "false", Description: "Strip TypeScript type annotations before compiling"},
		{Name: "verbose", Type: "bool", Default: "false", Description: "Log debug output to stderr"},
	}
}

// generateConfigurationDoc generates the configuration reference page.
func generateConfigurationDoc(outDir string) error {
	w := NewMarkdownWriter()

	w.Frontmatter("Configuration", "leaplua configuration reference")
	w.GeneratedMarker()

	w.Header(1, "Configuration")
	w.Paragraph("leaplua reads " + InlineCode("leaplua.yaml") + " (or " + InlineCode("leaplua.yml") +
		") from the working directory or the nearest parent directory that has one.")

	w.Header(2, "Keys")

	var rows [][]string
	for _, f := range getConfigSchema() {
		defVal := f.Default
		if defVal == "" {
			defVal = "-"
		}
		rows = append(rows, []string{
			InlineCode(f.Name),
			f.Type,
			InlineCode(defVal),
			InlineCode(f.Flag()),
			InlineCode(f.EnvVar()),
			f.Description,
		})
	}
	w.Table([]string{"Key", "Type", "Default", "Flag", "Environment", "Description"}, rows)

	w.Header(2, "Precedence")
	w.BulletList([]string{
		"Command-line flags",
		"Environment variables",
		InlineCode("leaplua.yaml"),
		"Built-in defaults",
	})

	w.Header(2, "Example")
	w.CodeBlock("yaml", `target: 5.1
library_import: require
out_dir: build
jobs: 4`)
	w.Paragraph("Numeric targets such as " + InlineCode("5.1") + " may be written unquoted.")

	return os.WriteFile(filepath.Join(outDir, "configuration.md"), w.Bytes(), 0600)
}
