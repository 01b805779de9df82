package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/wikicore/internal/errors"
	"github.com/conneroisu/wikicore/internal/parser"
)

var linksCmd = &cobra.Command{
	Use:   "links [file]",
	Short: "List the entities a document points to",
	Long: `List the documents, spaces and attachments a document references through
links, images and macro parameters (include, display, ...), resolved
relative to --page.

Examples:
  wikicore links page.xwiki
  wikicore links --page Sandbox.Test page.xwiki`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLinks,
}

var (
	linksFrom string
	linksPage string
)

func init() {
	rootCmd.AddCommand(linksCmd)

	addSyntaxFlags(linksCmd, &linksFrom, nil)
	linksCmd.Flags().StringVarP(&linksPage, "page", "p", "", "reference of the document (wiki:Space.Page)")
}

func runLinks(cmd *cobra.Command, args []string) error {
	source, path, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	c, err := newContainer(cmd, nil)
	if err != nil {
		return err
	}
	from, err := inputSyntax(linksFrom, path, c.Config.Parser.DefaultSyntax)
	if err != nil {
		return err
	}
	p, err := c.Parser(from)
	if err != nil {
		return err
	}
	xdom, err := parser.ParseString(p, source)
	if err != nil {
		return errors.New(errors.FormatWithSource(err, source, 2))
	}

	base := c.Resolver.ResolveDocument(linksPage, nil)
	for _, entity := range c.Links.Extract(commandContext(cmd), xdom, base, nil) {
		fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", entity.Type.String(), entity.String())
	}
	return nil
}
