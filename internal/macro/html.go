package macro

import (
	"context"

	"github.com/microcosm-cc/bluemonday"

	"github.com/conneroisu/wikicore/internal/block"
	"github.com/conneroisu/wikicore/internal/params"
	"github.com/conneroisu/wikicore/internal/syntax"
)

// HTML inserts raw HTML. Unless clean is false the markup is sanitized
// first.
type HTML struct{}

func (HTML) Descriptor() Descriptor {
	return Descriptor{
		ID:             "html",
		Name:           "HTML",
		Description:    "Inserts HTML code into the page.",
		Content:        ContentPlain,
		SupportsInline: true,
		Parameters: []ParameterDescriptor{
			{Name: "clean", Description: "Remove scripts and event handlers.", Default: "true"},
		},
	}
}

func (HTML) Execute(_ context.Context, p *params.Map, content string, _ *Context) ([]block.Block, error) {
	clean, err := boolParam(p, "clean", true)
	if err != nil {
		return nil, err
	}
	if clean {
		content = Sanitize(content)
	}
	return []block.Block{block.NewRaw(content, syntax.HTML50)}, nil
}

// policy is safe for concurrent use once built.
var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).Globally()
	return p
}

// Sanitize reduces an HTML fragment to user-generated-content markup. URL
// attributes are parsed after entity decoding and only http, https, mailto
// and relative URLs survive.
func Sanitize(fragment string) string {
	return policy.Sanitize(fragment)
}
