package links

import (
	"context"

	"github.com/conneroisu/wikicore/internal/block"
	"github.com/conneroisu/wikicore/internal/component"
	"github.com/conneroisu/wikicore/internal/macro"
	"github.com/conneroisu/wikicore/internal/parser"
	"github.com/conneroisu/wikicore/internal/reference"
)

// DefaultHint is the hint of the refactoring used for macros that have no
// dedicated one.
const DefaultHint = "default"

// MacroRefactoring knows where a macro keeps references.
type MacroRefactoring interface {
	ExtractReferences(ctx context.Context, call *block.Macro) ([]*reference.ResourceReference, error)
}

// DefaultRefactoring reads document parameters and, for macros with wiki
// content, the links found in the parsed content.
type DefaultRefactoring struct {
	extractor *Extractor
}

var _ MacroRefactoring = (*DefaultRefactoring)(nil)

// NewDefaultRefactoring returns the default refactoring. Nested macros are
// handed back to e.
func NewDefaultRefactoring(e *Extractor) *DefaultRefactoring {
	return &DefaultRefactoring{extractor: e}
}

func (r *DefaultRefactoring) ExtractReferences(ctx context.Context, call *block.Macro) ([]*reference.ResourceReference, error) {
	refs := parameterReferences(call)

	m, err := macro.Lookup(r.extractor.components, call.ID)
	if err != nil || m.Descriptor().Content != macro.ContentWiki || call.Content == "" {
		return refs, nil
	}
	p, err := component.Lookup[parser.Parser](r.extractor.components, r.extractor.syntax.String())
	if err != nil {
		return refs, nil
	}
	xdom, err := parser.ParseString(p, call.Content)
	if err != nil {
		return refs, err
	}
	return append(refs, r.extractor.References(ctx, xdom)...), nil
}

// parameterReferences returns the documents named by the reference
// parameters of call.
func parameterReferences(call *block.Macro) []*reference.ResourceReference {
	for _, name := range macro.ReferenceParameters {
		if v := call.Parameter(name); v != "" {
			return []*reference.ResourceReference{reference.New(v, reference.Document)}
		}
	}
	return nil
}

// IncludeRefactoring extracts the included document, anchored at the
// included section when there is one.
type IncludeRefactoring struct{}

func (IncludeRefactoring) ExtractReferences(_ context.Context, call *block.Macro) ([]*reference.ResourceReference, error) {
	refs := parameterReferences(call)
	if s := call.Parameter("section"); s != "" && len(refs) == 1 {
		refs[0].SetParameter(reference.ParamAnchor, s)
	}
	return refs, nil
}

// Register registers the default refactoring of e and the include one.
func Register(m *component.Manager, e *Extractor) error {
	if err := component.RegisterInstance[MacroRefactoring](m, DefaultHint, NewDefaultRefactoring(e)); err != nil {
		return err
	}
	return component.RegisterInstance[MacroRefactoring](m, "include", IncludeRefactoring{})
}
