package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/grammargen/pkg/grammar"
)

// NewFragmentsCommand creates the fragments command.
func NewFragmentsCommand(global *GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fragments <spec-file>",
		Short: "Show the regex fragments each placeholder expands to",
		Long: `Fragments prints the expansion of every placeholder of a specification,
followed by each rule's expanded match pattern.

Examples:
  grammargen fragments gen.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := global.setup(cmd)
			if err != nil {
				return err
			}

			return rt.close(runFragments(cmd, rt, args[0]))
		},
	}

	return cmd
}

func runFragments(cmd *cobra.Command, rt *runtime, path string) error {
	doc, result, err := buildDocument(cmd.Context(), rt, path)
	if err != nil {
		return err
	}

	spec, frag := result.spec, result.fragments

	rt.printf(nil, "%s\n\n", renderTable("Placeholders",
		table.Row{"placeholder", "token", "expansion"},
		[]table.Row{
			{"word", spec.WordPlaceholder, frag.Word},
			{"breaking behind", spec.BreakingBehindPlaceholder, frag.Behind},
			{"breaking ahead", spec.BreakingAheadPlaceholder, frag.Ahead},
		},
	))

	rows := make([]table.Row, 0, len(spec.Comments)+len(spec.Expressions))

	addRows := func(kind string, rules []grammar.Rule) {
		for _, r := range rules {
			entry, _ := doc.Repository.Get(r.Name)

			ruleEntry, ok := entry.(grammar.RuleEntry)
			if !ok {
				continue
			}

			rows = append(rows, table.Row{kind, r.Name, ruleEntry.Name, ruleEntry.Match})
		}
	}

	addRows(grammar.CommentKey, spec.Comments)
	addRows(grammar.ExpressionKey, spec.Expressions)

	rt.printf(nil, "%s\n", renderTable("Rules", table.Row{"kind", "name", "token type", "match"}, rows))

	return nil
}

func renderTable(title string, header table.Row, rows []table.Row) string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.DrawBorder = false
	tbl.SetTitle(title)
	tbl.AppendHeader(header)
	tbl.AppendRows(rows)
	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d", len(rows))})

	return tbl.Render()
}
