package plain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/wikicore/internal/parser"
	"github.com/conneroisu/wikicore/internal/parser/xwiki"
	"github.com/conneroisu/wikicore/internal/reference"
	"github.com/conneroisu/wikicore/internal/renderer"
)

func render(t *testing.T, f Factory, src string) string {
	t.Helper()
	xdom, err := parser.ParseString(xwiki.New(), src)
	require.NoError(t, err)
	out, err := renderer.RenderString(f, xdom)
	require.NoError(t, err)
	return out
}

func TestRenderText(t *testing.T) {
	out := render(t, Factory{}, "= Title =\n\nSome **bold** text.\n\n* one\n* two")
	assert.Equal(t, "Title\n\nSome bold text.\n\none\ntwo", out)
}

func TestRenderLinkLabels(t *testing.T) {
	out := render(t, Factory{}, "[[Space.Page]] and [[named>>Other]] [[attach:Doc@file.pdf]]")
	assert.Equal(t, "Page and named file.pdf", out)
}

func TestRenderCustomLabels(t *testing.T) {
	f := Factory{Labels: renderer.LabelFunc(func(ref *reference.ResourceReference) string {
		return "<" + ref.Reference + ">"
	})}
	assert.Equal(t, "<Main.WebHome>", render(t, f, "[[Main.WebHome]]"))
}

func TestRenderTable(t *testing.T) {
	out := render(t, Factory{}, "|=a|=b\n|1|2")
	assert.Equal(t, "a\tb\n1\t2", out)
}
