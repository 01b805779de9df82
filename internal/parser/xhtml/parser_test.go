package xhtml

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/wikicore/internal/block"
	"github.com/conneroisu/wikicore/internal/listener"
	"github.com/conneroisu/wikicore/internal/parser"
	"github.com/conneroisu/wikicore/internal/reference"
	"github.com/conneroisu/wikicore/internal/syntax"
)

func parse(t *testing.T, src string) *block.XDOM {
	t.Helper()
	xdom, err := parser.ParseString(NewXHTML(nil), src)
	require.NoError(t, err)
	require.NoError(t, block.Validate(xdom))
	return xdom
}

func TestParseHeadingAndFormats(t *testing.T) {
	xdom := parse(t, "<h1>Hello  World</h1><p>Some <b>bold</b> and <em>it</em>.</p>")

	h, ok := block.FindFirst[*block.Header](xdom)
	require.True(t, ok)
	assert.Equal(t, "HHelloWorld", h.ID)
	assert.Len(t, block.Find[*block.Section](xdom), 1)

	p, ok := block.FindFirst[*block.Paragraph](xdom)
	require.True(t, ok)
	assert.Equal(t, "Some bold and it.", block.Text(p))

	var formats []listener.Format
	for _, f := range block.Find[*block.Format](xdom) {
		formats = append(formats, f.Format)
	}
	assert.Equal(t, []listener.Format{listener.FormatBold, listener.FormatItalic}, formats)
}

func TestParseHeadingKeepsID(t *testing.T) {
	xdom := parse(t, `<h2 id="custom" class="c">T</h2>`)
	h, ok := block.FindFirst[*block.Header](xdom)
	require.True(t, ok)
	assert.Equal(t, "custom", h.ID)
	assert.Equal(t, "c", h.Parameter("class"))
	assert.False(t, h.Parameters().Has("id"))
}

func TestParseImplicitParagraphs(t *testing.T) {
	xdom := parse(t, `text <i>x</i><div class="box"><p>in</p></div>tail`)

	paras := block.Find[*block.Paragraph](xdom)
	require.Len(t, paras, 3)
	assert.Equal(t, "text x", block.Text(paras[0]))
	assert.Equal(t, "in", block.Text(paras[1]))
	assert.Equal(t, "tail", block.Text(paras[2]))

	g, ok := block.FindFirst[*block.Group](xdom)
	require.True(t, ok)
	assert.Equal(t, "box", g.Parameter("class"))
}

func TestParseWhitespaceCollapse(t *testing.T) {
	var q listener.Queue
	require.NoError(t, NewXHTML(nil).Parse(strings.NewReader("<p>  a \n  b  </p>"), &q))

	assert.Equal(t, []string{
		"beginDocument [[[syntax] = [xhtml/1.0]]]",
		"beginParagraph",
		"onWord [a]",
		"onSpace",
		"onWord [b]",
		"endParagraph",
		"endDocument [[[syntax] = [xhtml/1.0]]]",
	}, q.Strings())
}

func TestParseLinks(t *testing.T) {
	xdom := parse(t, `<p><a href="https://x.org" title="t">site</a> <a href="doc:Main.Page">p</a> <a href="#top">up</a><a name="here"></a></p>`)

	links := block.Find[*block.Link](xdom)
	require.Len(t, links, 3)

	assert.Equal(t, reference.URL, links[0].Reference.Type)
	assert.Equal(t, "https://x.org", links[0].Reference.Reference)
	assert.Equal(t, "t", links[0].Parameter("title"))
	assert.False(t, links[0].Parameters().Has("href"))

	assert.True(t, links[1].Reference.Typed)
	assert.Equal(t, reference.Document, links[1].Reference.Type)
	assert.Equal(t, "Main.Page", links[1].Reference.Reference)

	assert.Equal(t, "", links[2].Reference.Reference)
	assert.Equal(t, "top", links[2].Reference.Parameter(reference.ParamAnchor))

	id, ok := block.FindFirst[*block.Id](xdom)
	require.True(t, ok)
	assert.Equal(t, "here", id.Name)
}

func TestParseListsAndTables(t *testing.T) {
	xdom := parse(t, "<ul><li>a<ol><li>b</li></ol></li></ul><table><tr><th>h</th></tr><tr><td>c</td></tr></table>")

	lists := block.Find[*block.List](xdom)
	require.Len(t, lists, 2)
	assert.Equal(t, listener.ListBulleted, lists[0].Type)
	assert.Equal(t, listener.ListNumbered, lists[1].Type)
	assert.Equal(t, "ab", block.Text(lists[0]))

	assert.Len(t, block.Find[*block.TableRow](xdom), 2)
	assert.Len(t, block.Find[*block.TableHeadCell](xdom), 1)
	assert.Len(t, block.Find[*block.TableCell](xdom), 1)
}

func TestParseVerbatimBreaksAndScripts(t *testing.T) {
	xdom := parse(t, "<pre>\n  code &lt;x&gt;\n</pre><p>a<br/>b</p><script>alert(1)</script><hr/>")

	v, ok := block.FindFirst[*block.Verbatim](xdom)
	require.True(t, ok)
	assert.Equal(t, "  code <x>", v.Content)

	assert.Len(t, block.Find[*block.NewLine](xdom), 1)
	assert.Len(t, block.Find[*block.HorizontalLine](xdom), 1)
	assert.NotContains(t, block.Text(xdom), "alert")
}

func TestParseImage(t *testing.T) {
	xdom := parse(t, `<p><img src="logo.png" alt="L"/></p>`)
	img, ok := block.FindFirst[*block.Image](xdom)
	require.True(t, ok)
	assert.Equal(t, "logo.png", img.Reference.Reference)
	assert.Equal(t, "L", img.Parameter("alt"))
	assert.False(t, img.Parameters().Has("src"))
}

func TestParseQuotation(t *testing.T) {
	xdom := parse(t, "<blockquote><p>a</p><blockquote>b</blockquote></blockquote>")
	assert.Len(t, block.Find[*block.Quotation](xdom), 2)
	assert.Len(t, block.Find[*block.QuotationLine](xdom), 2)
}

func TestSyntax(t *testing.T) {
	assert.Equal(t, syntax.XHTML10, NewXHTML(nil).Syntax())
	assert.Equal(t, syntax.HTML50, NewHTML(nil).Syntax())

	xdom, err := parser.ParseString(NewHTML(nil), "<p>x</p>")
	require.NoError(t, err)
	assert.Equal(t, syntax.HTML50, xdom.Syntax())
}

func FuzzParse(f *testing.F) {
	for _, seed := range []string{
		"<p>a <b>b</b></p>",
		"<ul><li><h1>x</h1></li></ul>",
		"<table><td>x</td></table>",
		"<blockquote>a<div>b</div></blockquote>",
		"text<h2>h</h2><span style='x'>y</span>",
	} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, src string) {
		xdom, err := parser.ParseString(NewHTML(nil), src)
		if err != nil {
			return
		}
		if err := block.Validate(xdom); err != nil {
			t.Fatalf("invalid tree for %q: %v", src, err)
		}
	})
}
