package macro

import (
	"context"

	"github.com/conneroisu/wikicore/internal/block"
	"github.com/conneroisu/wikicore/internal/listener"
	"github.com/conneroisu/wikicore/internal/params"
)

// Box is a message box macro: info, warning, error or success.
type Box struct {
	id string
}

// NewBox returns the message box macro with the given id.
func NewBox(id string) *Box { return &Box{id: id} }

func (b *Box) Descriptor() Descriptor {
	return Descriptor{
		ID:             b.id,
		Name:           b.id + " message",
		Description:    "Displays the content in a " + b.id + " message box.",
		Content:        ContentWiki,
		SupportsInline: true,
		Parameters: []ParameterDescriptor{
			{Name: "title", Description: "Title shown above the message."},
			{Name: "cssClass", Description: "Extra CSS classes."},
		},
	}
}

func (b *Box) Execute(_ context.Context, p *params.Map, content string, mctx *Context) ([]block.Block, error) {
	children, err := mctx.ParseContent(content)
	if err != nil {
		return nil, Failed(b.id, err)
	}
	class := "box " + b.id + "message"
	if extra := p.Value("cssClass"); extra != "" {
		class += " " + extra
	}
	attrs := params.New("class", class)

	if mctx.Inline {
		return []block.Block{block.NewFormat(listener.FormatNone, children, attrs)}, nil
	}
	if title := p.Value("title"); title != "" {
		heading := block.NewParagraph([]block.Block{
			block.NewFormat(listener.FormatBold, mctx.textBlocks(title), nil),
		}, params.New("class", "title"))
		children = append([]block.Block{heading}, children...)
	}
	return []block.Block{block.NewGroup(children, attrs)}, nil
}
