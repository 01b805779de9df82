package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conneroisu/wikicore/internal/errors"
	"github.com/conneroisu/wikicore/internal/query"
)

var queryCmd = &cobra.Command{
	Use:     "query <statement>",
	Aliases: []string{"q"},
	Short:   "Translate an XWQL statement to HQL",
	Long: `Translate an XWQL statement into the HQL run against the storage layer.
Object property types come from query.property_types in the configuration.

Examples:
  wikicore query "where doc.space = 'Main'"
  wikicore query "from doc.object(XWiki.XWikiUsers) as user where user.active = 1"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

var queryLanguage string

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().StringVarP(&queryLanguage, "language", "L", query.XWQL, "statement language (xwql, hql)")
	AddFlagValidation(queryCmd, "language", func(v string) error {
		return ValidateChoice(strings.ToLower(v), []string{query.XWQL, query.HQL})
	})
}

func runQuery(cmd *cobra.Command, args []string) error {
	c, err := newContainer(cmd, nil)
	if err != nil {
		return err
	}
	statement := strings.Join(args, " ")
	hql, err := c.Queries.Translate(commandContext(cmd), query.Query{
		Statement: statement,
		Language:  queryLanguage,
	})
	if err != nil {
		return errors.New(errors.FormatWithSource(err, statement, 0))
	}
	fmt.Fprintln(cmd.OutOrStdout(), hql)
	return nil
}
