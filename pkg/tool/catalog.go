package tool

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"src.shadegraph.dev/pkg/graph"
	"src.shadegraph.dev/pkg/prog"
)

func (e *env) catalogCommand() *cobra.Command {
	var format, category string
	cmd := &cobra.Command{
		Use:   "catalog [QUERY]",
		Short: "List the node kinds",
		Long: "List the node kinds whose name contains QUERY, ignoring case.\n" +
			"When nothing matches, kinds with similar names are suggested.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := e.registry()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("format") {
				format = e.f.Config.Catalog.Format
			}
			query := ""
			if len(args) > 0 {
				query = args[0]
			}
			var defs []*graph.Definition
			for _, def := range reg.Filter(query) {
				if category == "" || def.HasCategory(category) {
					defs = append(defs, def)
				}
			}
			if len(defs) == 0 {
				msg := fmt.Sprintf("no node kinds match %q", query)
				if s := reg.Suggest(query, 3); len(s) > 0 && category == "" {
					msg += "; did you mean " + strings.Join(s, ", ") + "?"
				}
				return errors.New(msg)
			}
			out, err := renderCatalog(defs, format, terminalWidth(e.fds[1]))
			if err != nil {
				return err
			}
			fmt.Fprintln(e.fds[1], out)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "table `format`, ascii or markdown")
	cmd.Flags().StringVar(&category, "category", "", "only list kinds in this category")
	return cmd
}

// renderCatalog renders definitions as a table. A positive width limits the
// length of rows of ASCII tables.
func renderCatalog(defs []*graph.Definition, format string, width int) (string, error) {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Name", "Categories", "Inputs", "Outputs", "Parameters"})
	for _, def := range defs {
		t.AppendRow(table.Row{
			def.Name,
			strings.Join(def.Categories, ", "),
			portList(def.Inputs),
			portList(def.Outputs),
			paramList(def.Params),
		})
	}
	switch format {
	case "", "ascii":
		t.SetStyle(table.StyleLight)
		t.SetColumnConfigs([]table.ColumnConfig{
			{Number: 3, WidthMax: 32, WidthMaxEnforcer: text.WrapSoft},
			{Number: 5, WidthMax: 32, WidthMaxEnforcer: text.WrapSoft},
		})
		if width > 0 {
			t.SetAllowedRowLength(width)
		}
		return t.Render(), nil
	case "markdown":
		return t.RenderMarkdown(), nil
	}
	return "", prog.BadUsage(fmt.Sprintf("unknown catalog format %q", format))
}

func portList(ports []graph.PortDecl) string {
	s := make([]string, len(ports))
	for i, p := range ports {
		s[i] = p.Name + ": " + p.Type.String()
	}
	return strings.Join(s, ", ")
}

func paramList(params []graph.ParamDecl) string {
	s := make([]string, len(params))
	for i, p := range params {
		if p.Kind == graph.SelectParam {
			s[i] = p.Name + ": " + strings.Join(p.Options, "|")
		} else {
			s[i] = p.Name + ": " + p.Type.String()
		}
	}
	return strings.Join(s, ", ")
}
