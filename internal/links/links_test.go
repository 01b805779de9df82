package links

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/wikicore/internal/block"
	"github.com/conneroisu/wikicore/internal/component"
	"github.com/conneroisu/wikicore/internal/macro"
	"github.com/conneroisu/wikicore/internal/model"
	"github.com/conneroisu/wikicore/internal/parser"
	"github.com/conneroisu/wikicore/internal/parser/xwiki"
	"github.com/conneroisu/wikicore/internal/reference"
	"github.com/conneroisu/wikicore/internal/syntax"
)

const page = `[[Other]] [[image:pic.png]] [[https://x.org]] [[Main.Other]]

{{include reference="Sandbox.Inc" section="HTitle"/}}

{{info}}see [[Help.Page]]{{/info}}

{{unknown page="Some.Page"/}}`

func setup(t *testing.T) (*Extractor, *block.XDOM) {
	t.Helper()
	m := component.NewManager()
	require.NoError(t, macro.Register(m, macro.Builtins(nil, nil)...))
	require.NoError(t, component.RegisterInstance[parser.Parser](m, syntax.XWiki21.String(), xwiki.New()))

	e := NewExtractor(m, model.NewResolver(model.DefaultDefaults))
	require.NoError(t, Register(m, e))

	xdom, err := parser.ParseString(xwiki.New(), page)
	require.NoError(t, err)
	return e, xdom
}

func keys(refs []*model.EntityReference) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.String())
	}
	return out
}

var base = model.NewDocumentReference("xwiki", []string{"Main"}, "WebHome")

func TestReferences(t *testing.T) {
	e, xdom := setup(t)
	refs := e.References(context.Background(), xdom)

	var raw []string
	for _, r := range refs {
		raw = append(raw, r.Reference)
	}
	assert.Equal(t, []string{"Other", "pic.png", "https://x.org", "Main.Other", "Sandbox.Inc", "Help.Page", "Some.Page"}, raw)
	assert.Equal(t, "HTitle", refs[4].Parameter(reference.ParamAnchor))
}

func TestExtractDefaultRestrictions(t *testing.T) {
	e, xdom := setup(t)
	got := e.Extract(context.Background(), xdom, base, nil)
	assert.Equal(t, []string{
		"xwiki:Main.Other",
		"xwiki:Main.WebHome@pic.png",
		"xwiki:Sandbox.Inc",
		"xwiki:Help.Page",
		"xwiki:Some.Page",
	}, keys(got))
}

func TestExtractRestrictions(t *testing.T) {
	e, xdom := setup(t)

	docsOnly := Restrictions{model.EntityDocument: {reference.Document, reference.Attachment}}
	got := e.Extract(context.Background(), xdom, base, docsOnly)
	assert.Equal(t, []string{
		"xwiki:Main.Other",
		"xwiki:Main.WebHome",
		"xwiki:Sandbox.Inc",
		"xwiki:Help.Page",
		"xwiki:Some.Page",
	}, keys(got))

	attachments := Restrictions{model.EntityAttachment: {reference.Attachment}}
	got = e.Extract(context.Background(), xdom, base, attachments)
	assert.Equal(t, []string{"xwiki:Main.WebHome@pic.png"}, keys(got))

	assert.Empty(t, e.Extract(context.Background(), xdom, base, Restrictions{}))
}

type fixed []string

func (f fixed) ExtractReferences(context.Context, *block.Macro) ([]*reference.ResourceReference, error) {
	var refs []*reference.ResourceReference
	for _, s := range f {
		refs = append(refs, reference.New(s, reference.Document))
	}
	return refs, nil
}

func TestMacroSpecificRefactoring(t *testing.T) {
	e, xdom := setup(t)
	m := e.components.(*component.Manager)
	require.NoError(t, component.RegisterInstance[MacroRefactoring](m, "unknown", fixed{"Custom.Target"}))

	got := e.Extract(context.Background(), xdom, base, nil)
	assert.Contains(t, keys(got), "xwiki:Custom.Target")
	assert.NotContains(t, keys(got), "xwiki:Some.Page")
}

func TestNoRefactoringRegistered(t *testing.T) {
	m := component.NewManager()
	e := NewExtractor(m, model.NewResolver(model.DefaultDefaults), WithSyntax(syntax.XWiki21))
	xdom, err := parser.ParseString(xwiki.New(), "{{include reference=\"A.B\"/}} [[C.D]]")
	require.NoError(t, err)

	assert.Equal(t, []string{"xwiki:C.D"}, keys(e.Extract(context.Background(), xdom, base, nil)))

	_, err = e.Refactoring("include")
	assert.Error(t, err)
}
