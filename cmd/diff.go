package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conneroisu/wikicore/internal/block"
	"github.com/conneroisu/wikicore/internal/di"
	"github.com/conneroisu/wikicore/internal/diff"
	"github.com/conneroisu/wikicore/internal/errors"
	"github.com/conneroisu/wikicore/internal/parser"
)

var diffCmd = &cobra.Command{
	Use:   "diff <a> <b>",
	Short: "Diff the renderings of two documents",
	Long: `Render two documents and print the unified diff of the outputs. The
documents may use different syntaxes: comparing their renderings shows
whether a conversion changed the content.

Examples:
  wikicore diff old.xwiki new.xwiki
  wikicore diff -t plain/1.0 page.xwiki page.md`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

var (
	diffTo          string
	diffNoTransform bool
)

func init() {
	rootCmd.AddCommand(diffCmd)

	addSyntaxFlags(diffCmd, nil, &diffTo)
	diffCmd.Flags().BoolVar(&diffNoTransform, "no-transform", false, "skip the transformations")
}

func runDiff(cmd *cobra.Command, args []string) error {
	c, err := newContainer(cmd, nil)
	if err != nil {
		return err
	}
	to, err := outputSyntax(diffTo, c.Config.Renderer.DefaultSyntax)
	if err != nil {
		return err
	}
	f, err := c.Renderer(to, nil)
	if err != nil {
		return err
	}

	diagnostics := errors.NewCollector()
	trees := make([]*block.XDOM, len(args))
	for i, path := range args {
		if trees[i], err = loadTree(cmd, c, path, diagnostics); err != nil {
			return err
		}
	}
	printDiagnostics(cmd.ErrOrStderr(), diagnostics)

	unified, err := diff.Rendered(f, args[0], trees[0], args[1], trees[1])
	if err != nil {
		return err
	}
	printUnified(cmd.OutOrStdout(), unified)
	return nil
}

// loadTree parses the file at path in the syntax of its extension and runs
// the transformations over it.
func loadTree(cmd *cobra.Command, c *di.Container, path string, diagnostics *errors.Collector) (*block.XDOM, error) {
	source, _, err := readInput(cmd, []string{path})
	if err != nil {
		return nil, err
	}
	from, err := inputSyntax("", path, c.Config.Parser.DefaultSyntax)
	if err != nil {
		return nil, err
	}
	p, err := c.Parser(from)
	if err != nil {
		return nil, err
	}
	xdom, err := parser.ParseString(p, source)
	if err != nil {
		return nil, fmt.Errorf("%s: %s", path, errors.FormatWithSource(err, source, 2))
	}
	if !diffNoTransform {
		if err := c.Transform(commandContext(cmd), xdom, from, nil, diagnostics); err != nil {
			return nil, err
		}
	}
	return xdom, nil
}

func printUnified(out io.Writer, unified string) {
	if unified == "" {
		fmt.Fprintln(out, successStyle.Render("no differences"))
		return
	}
	for _, line := range strings.SplitAfter(unified, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			line = headerStyle.Render(strings.TrimSuffix(line, "\n")) + "\n"
		case strings.HasPrefix(line, "+"):
			line = successStyle.Render(strings.TrimSuffix(line, "\n")) + "\n"
		case strings.HasPrefix(line, "-"):
			line = errorStyle.Render(strings.TrimSuffix(line, "\n")) + "\n"
		}
		fmt.Fprint(out, line)
	}
	added, removed := diff.Stat(unified)
	fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("%d insertions(+), %d deletions(-)", added, removed)))
}
