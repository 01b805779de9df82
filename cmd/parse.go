package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/wikicore/internal/di"
	"github.com/conneroisu/wikicore/internal/errors"
	"github.com/conneroisu/wikicore/internal/syntax"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Print the event stream of a document",
	Long: `Parse a document and print the events its block tree produces, one per
line, in the event/1.0 syntax. Macros are left unexpanded unless
--transform is given.

Examples:
  wikicore parse page.xwiki
  echo '= Title =' | wikicore parse -f xwiki/2.1`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

var (
	parseFrom      string
	parseTransform bool
)

func init() {
	rootCmd.AddCommand(parseCmd)

	addSyntaxFlags(parseCmd, &parseFrom, nil)
	parseCmd.Flags().BoolVar(&parseTransform, "transform", false, "run the transformations first")
}

func runParse(cmd *cobra.Command, args []string) error {
	source, path, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	c, err := newContainer(cmd, nil)
	if err != nil {
		return err
	}
	from, err := inputSyntax(parseFrom, path, c.Config.Parser.DefaultSyntax)
	if err != nil {
		return err
	}

	diagnostics := errors.NewCollector()
	out, err := c.Render(commandContext(cmd), source, di.RenderOptions{
		From:        from,
		To:          syntax.Event10,
		Transform:   parseTransform,
		Diagnostics: diagnostics,
	})
	if err != nil {
		return errors.New(errors.FormatWithSource(err, source, 2))
	}
	printDiagnostics(cmd.ErrOrStderr(), diagnostics)
	fmt.Fprint(cmd.OutOrStdout(), terminate(out))
	return nil
}
