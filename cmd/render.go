package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conneroisu/wikicore/internal/di"
	"github.com/conneroisu/wikicore/internal/errors"
	"github.com/conneroisu/wikicore/internal/syntax"
)

var renderCmd = &cobra.Command{
	Use:     "render [file]",
	Aliases: []string{"r"},
	Short:   "Parse, transform and render a document",
	Long: `Parse a document, run the enabled transformations (macro expansion) and
render the result in another syntax. The document is read from standard
input when no file is given.

Examples:
  wikicore render page.xwiki                   # XHTML from the file extension
  wikicore render -t plain/1.0 page.md         # plain text
  wikicore render --no-transform page.xwiki    # leave macros unexpanded
  echo '**bold**' | wikicore render -f xwiki/2.1
  wikicore render --page Sandbox.Test page.xwiki  # resolve links from Sandbox.Test`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

var (
	renderFrom        string
	renderTo          string
	renderNoTransform bool
	renderPage        string
)

func init() {
	rootCmd.AddCommand(renderCmd)

	addSyntaxFlags(renderCmd, &renderFrom, &renderTo)
	renderCmd.Flags().BoolVar(&renderNoTransform, "no-transform", false, "skip the transformations")
	renderCmd.Flags().StringVarP(&renderPage, "page", "p", "", "reference of the document being rendered (wiki:Space.Page)")
}

func runRender(cmd *cobra.Command, args []string) error {
	source, path, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	c, err := newContainer(cmd, nil)
	if err != nil {
		return err
	}

	from, err := inputSyntax(renderFrom, path, c.Config.Parser.DefaultSyntax)
	if err != nil {
		return err
	}
	to, err := outputSyntax(renderTo, c.Config.Renderer.DefaultSyntax)
	if err != nil {
		return err
	}
	opts := di.RenderOptions{
		From:        from,
		To:          to,
		Transform:   !renderNoTransform,
		Diagnostics: errors.NewCollector(),
	}
	if renderPage != "" {
		opts.Document = c.Resolver.ResolveDocument(renderPage, nil)
	}

	out, err := c.Render(commandContext(cmd), source, opts)
	if err != nil {
		return errors.New(errors.FormatWithSource(err, source, 2))
	}
	printDiagnostics(cmd.ErrOrStderr(), opts.Diagnostics)
	fmt.Fprint(cmd.OutOrStdout(), terminate(out))
	return nil
}

func outputSyntax(flag, fallback string) (syntax.Syntax, error) {
	if flag != "" {
		return syntax.Parse(flag)
	}
	return syntax.Parse(fallback)
}

// terminate appends a final newline when s lacks one.
func terminate(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
