package xhtml

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/wikicore/internal/model"
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

func TestRenderBlocks(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"heading", "= Hello World =", `<h1 id="HHelloWorld"><span>Hello World</span></h1>`},
		{"formats", "**b** //i// __u__ --s-- ##m## ^^p^^ ,,d,,", "<p><strong>b</strong> <em>i</em> <ins>u</ins> <del>s</del> <tt>m</tt> <sup>p</sup> <sub>d</sub></p>"},
		{"escaping", "a < b & c", "<p>a &lt; b &amp; c</p>"},
		{"list", "* a\n** b", "<ul><li>a<ul><li>b</li></ul></li></ul>"},
		{"table", "|=h\n|c", "<table><tr><th>h</th></tr><tr><td>c</td></tr></table>"},
		{"parameters", "(% class=\"x\" onclick=\"evil()\" %)\npara", `<p class="x">para</p>`},
		{"verbatim", "{{{<b>}}}", "<pre>&lt;b&gt;</pre>"},
		{"quotation", "> a\n> b", "<blockquote>a<br/>b</blockquote>"},
		{"rule", "----", "<hr/>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, render(t, Factory{}, tt.src))
		})
	}
}

func TestRenderLinks(t *testing.T) {
	urls := DefaultURLs()
	urls.Base = model.NewDocumentReference("xwiki", []string{"Main"}, "WebHome")
	f := Factory{URLs: urls}

	assert.Equal(t,
		`<p><span class="wikilink"><a href="/xwiki/view/Sandbox/Test#top">Test</a></span></p>`,
		render(t, f, "[[Sandbox.Test#top]]"))
	assert.Equal(t,
		`<p><span class="wikiexternallink"><a href="https://x.org">site</a></span></p>`,
		render(t, f, "[[site>>https://x.org]]"))
	assert.Equal(t,
		`<p><span class="wikiexternallink"><a class="wikimodel-freestanding" href="https://x.org">https://x.org</a></span></p>`,
		render(t, f, "https://x.org"))
	assert.Equal(t,
		`<p><span class="wikiattachmentlink"><a href="/xwiki/download/Main/WebHome/a.pdf">a.pdf</a></span></p>`,
		render(t, f, "[[attach:a.pdf]]"))
}

func TestRenderUnsafeURL(t *testing.T) {
	out := render(t, Factory{}, "[[x>>url:javascript:alert(1)]]")
	assert.NotContains(t, out, "javascript:")
}

func TestRenderImage(t *testing.T) {
	out := render(t, Factory{}, "[[image:Main.Page@logo.png||width=\"10\"]]")
	assert.Equal(t, `<p><img src="/xwiki/download/Main/Page/logo.png" alt="logo.png" width="10"/></p>`, out)
}

func TestViewURLsForNonEntities(t *testing.T) {
	u := DefaultURLs()
	assert.Equal(t, "mailto:a@b.c", u.URL(reference.NewTyped("a@b.c", reference.Mailto)))
	assert.Equal(t, "", u.URL(reference.NewTyped("x", reference.Interwiki)))
	assert.Equal(t, "#sec", u.URL(reference.New("", reference.Document).SetParameter(reference.ParamAnchor, "sec")))
}

func TestComponent(t *testing.T) {
	xdom, err := parser.ParseString(xwiki.New(), "hi")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Component(Factory{}, xdom).Render(context.Background(), &buf))
	assert.Equal(t, "<p>hi</p>", buf.String())
}
