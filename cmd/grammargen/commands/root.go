package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/grammargen/pkg/version"
)

// NewRootCommand builds the grammargen command tree.
func NewRootCommand() *cobra.Command {
	global := &GlobalOptions{}

	rootCmd := &cobra.Command{
		Use:   "grammargen",
		Short: "Generate TextMate grammars from compact specifications",
		Long: `Grammargen expands the placeholders of a grammar specification and writes
a TextMate grammar, usually into a freshly staged editor extension.

Commands:
  generate   Stage an extension skeleton and write its grammar
  validate   Check a specification against its schema and lint rules
  fragments  Show placeholder expansions and expanded rules
  check      Compare an existing grammar with its specification`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	global.Bind(rootCmd)

	rootCmd.AddCommand(NewGenerateCommand(global))
	rootCmd.AddCommand(NewValidateCommand(global))
	rootCmd.AddCommand(NewFragmentsCommand(global))
	rootCmd.AddCommand(NewCheckCommand(global))
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "grammargen %s\n", version.String())
		},
	}
}
