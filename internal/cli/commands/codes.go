package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leaplua/internal/cli/output"
	"github.com/leapstack-labs/leaplua/pkg/diag"
)

// NewCodesCommand creates the codes command.
func NewCodesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "codes [code]",
		Short: "List diagnostic codes",
		Long: `List the stable diagnostic codes reported during lowering.

With a code argument, show its full documentation: rationale, an example
that triggers it and how to fix it.`,
		Example: `  leaplua codes
  leaplua codes LW02
  leaplua codes -o json`,
		Args: cobra.MaximumNArgs(1),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			var codes []string
			for _, def := range diag.All() {
				codes = append(codes, string(def.Code)+"\t"+def.Description)
			}
			return codes, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return runCodeShow(cmd, args[0])
			}
			return runCodesList(cmd)
		},
	}

	return cmd
}

func runCodesList(cmd *cobra.Command) error {
	r := NewCommandContext(cmd).Renderer
	defs := diag.All()

	if ok, err := r.Structured(defs); ok {
		return err
	}

	rows := make([][]string, 0, len(defs))
	for _, def := range defs {
		rows = append(rows, []string{string(def.Code), def.Name, def.Severity.String(), def.Description})
	}

	r.Header(1, "Diagnostic codes")
	r.Table([]string{"Code", "Name", "Severity", "Description"}, rows)
	return nil
}

func runCodeShow(cmd *cobra.Command, code string) error {
	r := NewCommandContext(cmd).Renderer

	def, ok := diag.Lookup(diag.Code(strings.ToUpper(code)))
	if !ok {
		return fmt.Errorf("unknown diagnostic code %q", code)
	}

	if ok, err := r.Structured(def); ok {
		return err
	}

	renderDefinition(r, def)
	return nil
}

func renderDefinition(r *output.Renderer, def diag.Definition) {
	r.Header(1, fmt.Sprintf("%s %s", def.Code, def.Name))
	r.Println(output.FormatKeyValue("Severity", def.Severity.String()))
	r.Println(output.FormatKeyValue("Description", def.Description))

	if def.Rationale != "" {
		r.Println()
		r.Header(2, "Rationale")
		r.Println(def.Rationale)
	}
	if def.BadExample != "" {
		r.Println()
		r.Header(2, "Example")
		r.Code("ts", def.BadExample)
	}
	if def.GoodExample != "" {
		r.Println()
		r.Header(2, "Alternative")
		r.Code("ts", def.GoodExample)
	}
	if def.Fix != "" {
		r.Println()
		r.Header(2, "Fix")
		r.Println(def.Fix)
	}
}
