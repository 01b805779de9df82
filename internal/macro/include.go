package macro

import (
	"context"
	"fmt"

	"github.com/conneroisu/wikicore/internal/block"
	"github.com/conneroisu/wikicore/internal/errors"
	"github.com/conneroisu/wikicore/internal/model"
	"github.com/conneroisu/wikicore/internal/params"
)

// IncludePriority runs include before the macros that inspect the whole
// document.
const IncludePriority = 10

// DocumentLoader loads the tree of another document.
type DocumentLoader interface {
	LoadXDOM(ctx context.Context, ref *model.EntityReference) (*block.XDOM, error)
}

// Include inserts the content of another document.
type Include struct {
	Loader   DocumentLoader
	Resolver *model.Resolver
}

// NewInclude returns an include macro reading documents from loader.
func NewInclude(loader DocumentLoader, resolver *model.Resolver) *Include {
	if resolver == nil {
		resolver = model.NewResolver(model.DefaultDefaults)
	}
	return &Include{Loader: loader, Resolver: resolver}
}

func (m *Include) Descriptor() Descriptor {
	return Descriptor{
		ID:          "include",
		Name:        "Include",
		Description: "Includes another document.",
		Content:     ContentNone,
		Priority:    IncludePriority,
		Parameters: []ParameterDescriptor{
			{Name: "reference", Description: "The document to include.", Required: true},
			{Name: "section", Description: "Id of the heading whose section is included."},
		},
	}
}

// ReferenceParameters are the parameter names that can hold the included
// document, in order of precedence.
var ReferenceParameters = []string{"reference", "page", "document"}

// Target returns the document an include call points to.
func (m *Include) Target(p *params.Map, base *model.EntityReference) (*model.EntityReference, error) {
	for _, name := range ReferenceParameters {
		if v := p.Value(name); v != "" {
			return m.Resolver.ResolveDocument(v, base), nil
		}
	}
	return nil, errors.NewTransformationError(errors.ErrCodeMacroFailed, "the [include] macro requires the [reference] parameter", nil)
}

func (m *Include) Execute(ctx context.Context, p *params.Map, _ string, mctx *Context) ([]block.Block, error) {
	if mctx.Inline {
		return nil, Unsupported("include")
	}
	if m.Loader == nil {
		return nil, errors.NewTransformationError(errors.ErrCodeMacroFailed, "no document source configured for [include]", nil)
	}
	target, err := m.Target(p, mctx.Document)
	if err != nil {
		return nil, err
	}
	if mctx.Document != nil && target.Equal(mctx.Document) {
		return nil, errors.NewTransformationError(errors.ErrCodeMacroFailed,
			fmt.Sprintf("document [%s] cannot include itself", target), nil)
	}

	xdom, err := m.Loader.LoadXDOM(ctx, target)
	if err != nil {
		return nil, Failed("include", err)
	}

	section := p.Value("section")
	if section == "" {
		return append([]block.Block(nil), xdom.Children()...), nil
	}
	for _, h := range block.Find[*block.Header](xdom) {
		if h.ID != section {
			continue
		}
		if s, ok := h.Parent().(*block.Section); ok {
			return []block.Block{s}, nil
		}
		return []block.Block{h}, nil
	}
	return nil, errors.NewTransformationError(errors.ErrCodeMacroFailed,
		fmt.Sprintf("cannot find section [%s] in document [%s]", section, target), nil)
}
