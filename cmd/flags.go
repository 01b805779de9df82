package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/conneroisu/wikicore/internal/errors"
	"github.com/conneroisu/wikicore/internal/syntax"
)

// OutputFormats are the structured formats of the listing commands.
var OutputFormats = []string{"table", "json", "yaml"}

// AddFlagValidation makes the flag named flagName reject values refused by
// validator at parse time.
func AddFlagValidation(cmd *cobra.Command, flagName string, validator func(string) error) {
	flag := cmd.Flags().Lookup(flagName)
	if flag == nil {
		return
	}
	flag.Value = &validatingValue{Value: flag.Value, validator: validator}
}

type validatingValue struct {
	pflag.Value
	validator func(string) error
}

func (v *validatingValue) Set(val string) error {
	if err := v.validator(val); err != nil {
		return err
	}
	return v.Value.Set(val)
}

// ValidateChoice accepts one of choices, suggesting the closest on error.
func ValidateChoice(value string, choices []string) error {
	for _, c := range choices {
		if value == c {
			return nil
		}
	}
	msg := fmt.Sprintf("invalid value %q (supported: %s)", value, strings.Join(choices, ", "))
	if s := errors.Suggest(value, choices); len(s) > 0 {
		msg += ". Did you mean " + s[0] + "?"
	}
	return fmt.Errorf("%s", msg)
}

// ValidateSyntax accepts registered syntax ids.
func ValidateSyntax(value string) error {
	all := syntax.All()
	ids := make([]string, len(all))
	for i, s := range all {
		ids[i] = s.String()
	}
	return ValidateChoice(value, ids)
}

// addSyntaxFlags adds --from and --to with syntax validation.
func addSyntaxFlags(cmd *cobra.Command, from, to *string) {
	if from != nil {
		cmd.Flags().StringVarP(from, "from", "f", "", "input syntax (default: from the file extension, else parser.default_syntax)")
		AddFlagValidation(cmd, "from", ValidateSyntax)
	}
	if to != nil {
		cmd.Flags().StringVarP(to, "to", "t", "", "output syntax (default: renderer.default_syntax)")
		AddFlagValidation(cmd, "to", ValidateSyntax)
	}
}

// addOutputFlag adds --output with validation against OutputFormats.
func addOutputFlag(cmd *cobra.Command, output *string) {
	cmd.Flags().StringVarP(output, "output", "o", "table", "output format ("+strings.Join(OutputFormats, "|")+")")
	AddFlagValidation(cmd, "output", func(v string) error { return ValidateChoice(v, OutputFormats) })
}
