package macro

import (
	"context"
	"fmt"

	"github.com/conneroisu/wikicore/internal/block"
	"github.com/conneroisu/wikicore/internal/errors"
	"github.com/conneroisu/wikicore/internal/listener"
	"github.com/conneroisu/wikicore/internal/params"
	"github.com/conneroisu/wikicore/internal/parser"
	"github.com/conneroisu/wikicore/internal/reference"
)

// TOCPriority makes the table of contents run after the macros that may
// add headings, such as include.
const TOCPriority = 2000

// TOC generates a table of contents from the headings of the document.
type TOC struct{}

func (TOC) Descriptor() Descriptor {
	return Descriptor{
		ID:          "toc",
		Name:        "Table Of Contents",
		Description: "Generates a table of contents.",
		Content:     ContentNone,
		Priority:    TOCPriority,
		Parameters: []ParameterDescriptor{
			{Name: "start", Description: "Minimum heading level.", Default: "1"},
			{Name: "depth", Description: "Maximum heading level.", Default: "6"},
			{Name: "numbered", Description: "Use numbered lists.", Default: "false"},
			{Name: "scope", Description: "page, or local for the current section.", Default: "page"},
		},
	}
}

func (TOC) Execute(_ context.Context, p *params.Map, _ string, mctx *Context) ([]block.Block, error) {
	if mctx.Inline {
		return nil, Unsupported("toc")
	}
	start, err := intParam(p, "start", 1)
	if err != nil {
		return nil, err
	}
	depth, err := intParam(p, "depth", 6)
	if err != nil {
		return nil, err
	}
	numbered, err := boolParam(p, "numbered", false)
	if err != nil {
		return nil, err
	}
	scope := p.Value("scope")
	if scope != "" && scope != "page" && scope != "local" {
		return nil, errors.NewTransformationError(errors.ErrCodeMacroFailed,
			fmt.Sprintf("unknown toc scope [%s]", scope), nil)
	}

	if mctx.XDOM == nil {
		return nil, nil
	}
	var root block.Block = mctx.XDOM
	local := false
	if scope == "local" && mctx.Block != nil {
		for a := mctx.Block.Parent(); a != nil; a = a.Parent() {
			if _, ok := a.(*block.Section); ok {
				root, local = a, true
				break
			}
		}
	}

	var headers []*block.Header
	for _, h := range block.Find[*block.Header](root) {
		if local && h.Parent() == root {
			// the section's own heading
			continue
		}
		if int(h.Level) >= start && int(h.Level) <= depth && h.ID != "" {
			headers = append(headers, h)
		}
	}
	if len(headers) == 0 {
		return nil, nil
	}

	t := listener.ListBulleted
	if numbered {
		t = listener.ListNumbered
	}
	return []block.Block{buildTOC(headers, t)}, nil
}

type tocLevel struct {
	level listener.HeaderLevel
	list  *block.List
}

func buildTOC(headers []*block.Header, t listener.ListType) *block.List {
	root := block.NewList(t, nil, params.New("class", "wikitoc"))
	stack := []tocLevel{{level: headers[0].Level, list: root}}

	for _, h := range headers {
		for len(stack) > 1 && stack[len(stack)-1].level > h.Level {
			stack = stack[:len(stack)-1]
		}
		top := stack[len(stack)-1]
		if h.Level > top.level {
			items := top.list.Children()
			var parent block.Block
			if len(items) > 0 {
				parent = items[len(items)-1]
			} else {
				parent = block.NewListItem(nil, nil)
				_ = top.list.AddChild(parent)
			}
			nested := block.NewList(t, nil, nil)
			_ = parent.AddChild(nested)
			stack = append(stack, tocLevel{level: h.Level, list: nested})
			top = stack[len(stack)-1]
		}

		ref := reference.New("", reference.Document).SetParameter(reference.ParamAnchor, h.ID)
		link := block.NewLink(ref, false, parser.TextBlocks(block.Text(h)), nil)
		_ = top.list.AddChild(block.NewListItem([]block.Block{link}, nil))
	}
	return root
}
