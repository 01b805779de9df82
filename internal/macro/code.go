package macro

import (
	"context"
	"strings"

	"github.com/conneroisu/wikicore/internal/block"
	"github.com/conneroisu/wikicore/internal/listener"
	"github.com/conneroisu/wikicore/internal/params"
)

// Code displays its content as source code.
type Code struct{}

func (Code) Descriptor() Descriptor {
	return Descriptor{
		ID:             "code",
		Name:           "Code",
		Description:    "Displays content as source code.",
		Content:        ContentPlain,
		SupportsInline: true,
		Parameters: []ParameterDescriptor{
			{Name: "language", Description: "Language of the code, used for highlighting by the client."},
		},
	}
}

func (Code) Execute(_ context.Context, p *params.Map, content string, mctx *Context) ([]block.Block, error) {
	var attrs *params.Map
	if lang := p.Value("language"); lang != "" && lang != "none" {
		attrs = params.New("data-language", lang)
	}
	content = strings.Trim(content, "\n")
	if mctx.Inline {
		return []block.Block{block.NewFormat(listener.FormatNone, []block.Block{block.NewVerbatim(content, true, attrs)}, params.New("class", "code"))}, nil
	}
	return []block.Block{block.NewGroup([]block.Block{block.NewVerbatim(content, false, attrs)}, params.New("class", "code"))}, nil
}
