package document

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/wikicore/internal/block"
	"github.com/conneroisu/wikicore/internal/cache"
	"github.com/conneroisu/wikicore/internal/component"
	"github.com/conneroisu/wikicore/internal/errors"
	"github.com/conneroisu/wikicore/internal/model"
	"github.com/conneroisu/wikicore/internal/parser"
	"github.com/conneroisu/wikicore/internal/parser/markdown"
	"github.com/conneroisu/wikicore/internal/parser/plain"
	"github.com/conneroisu/wikicore/internal/parser/xhtml"
	"github.com/conneroisu/wikicore/internal/parser/xwiki"
	"github.com/conneroisu/wikicore/internal/syntax"
)

const exported = `<?xml version="1.1" encoding="UTF-8"?>
<xwikidoc version="1.5">
  <web>Help</web>
  <name>Start</name>
  <title>Getting started</title>
  <syntaxId>xwiki/2.1</syntaxId>
  <content>= Welcome =

Read **this**.</content>
</xwikidoc>
`

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func components(t *testing.T) *component.Manager {
	t.Helper()
	m := component.NewManager()
	for _, p := range []parser.Parser{xwiki.New(), markdown.New(), plain.New(), xhtml.NewXHTML(nil)} {
		require.NoError(t, component.RegisterInstance[parser.Parser](m, p.Syntax().String(), p))
	}
	return m
}

func newSource(t *testing.T, opts ...Option) (*Source, string) {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "Top.md", "# Top\n\nSome *text*.")
	writeFile(t, root, "Main/WebHome.xwiki", "= Home =\n\n[[Sandbox.Sub.Page]]")
	writeFile(t, root, "Sandbox/Sub/Page.txt", "plain words")
	writeFile(t, root, "Sandbox/Other.html", "<p>Hello <b>you</b></p>")
	writeFile(t, root, "export.xml", exported)
	writeFile(t, root, "notes.pdf", "ignored")
	writeFile(t, root, ".git/HEAD.txt", "ignored")
	s, err := NewSource(root, components(t), opts...)
	require.NoError(t, err)
	return s, root
}

func refStrings(refs []*model.EntityReference) []string {
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = r.String()
	}
	return out
}

func TestScan(t *testing.T) {
	s, _ := newSource(t)
	refs, err := s.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"xwiki:Help.Start",
		"xwiki:Main.Top",
		"xwiki:Main.WebHome",
		"xwiki:Sandbox.Other",
		"xwiki:Sandbox.Sub.Page",
	}, refStrings(refs))
}

func TestReferenceFromPath(t *testing.T) {
	s, root := newSource(t, WithDefaults(model.Defaults{Wiki: "dev", Space: "Root"}))

	ref, err := s.Reference("Top.md")
	require.NoError(t, err)
	assert.Equal(t, "dev:Root.Top", ref.String())

	ref, err = s.Reference(filepath.Join(root, "Sandbox", "Sub", "Page.txt"))
	require.NoError(t, err)
	assert.Equal(t, "dev:Sandbox.Sub.Page", ref.String())

	ref, err = s.Reference("export.xml")
	require.NoError(t, err)
	assert.Equal(t, "dev:Help.Start", ref.String())

	_, err = s.Reference("../outside.xwiki")
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	s, _ := newSource(t)
	ctx := context.Background()

	doc, err := s.Load(ctx, model.NewDocumentReference("xwiki", []string{"Help"}, "Start"))
	require.NoError(t, err)
	assert.Equal(t, "Getting started", doc.Title)
	assert.Equal(t, syntax.XWiki21, doc.Syntax)
	assert.Equal(t, "= Welcome =\n\nRead **this**.", doc.Content)
	assert.Equal(t, "export.xml", doc.Path)

	doc, err = s.Load(ctx, model.NewDocumentReference("xwiki", []string{"Main"}, "Top"))
	require.NoError(t, err)
	assert.Equal(t, syntax.Markdown12, doc.Syntax)
	assert.False(t, doc.ModTime.IsZero())

	_, err = s.Load(ctx, model.NewDocumentReference("xwiki", []string{"Main"}, "Missing"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadXDOMEverySyntax(t *testing.T) {
	s, _ := newSource(t)
	ctx := context.Background()
	tests := []struct {
		space []string
		page  string
		text  string
	}{
		{[]string{"Help"}, "Start", "WelcomeRead this."},
		{[]string{"Main"}, "Top", "TopSome text."},
		{[]string{"Sandbox", "Sub"}, "Page", "plain words"},
		{[]string{"Sandbox"}, "Other", "Hello you"},
	}
	for _, tt := range tests {
		t.Run(tt.page, func(t *testing.T) {
			ref := model.NewDocumentReference("xwiki", tt.space, tt.page)
			xdom, err := s.LoadXDOM(ctx, ref)
			require.NoError(t, err)
			assert.Equal(t, tt.text, block.Text(xdom))
			assert.Equal(t, ref.String(), xdom.Parameter("source"))
		})
	}
}

func TestLoadXDOMReturnsCopies(t *testing.T) {
	c, err := cache.NewDocumentCache[*block.XDOM]("xdom", cache.Config{MaxEntries: 10}, nil)
	require.NoError(t, err)
	s, root := newSource(t, WithCache(c))
	ctx := context.Background()
	ref := model.NewDocumentReference("xwiki", []string{"Main"}, "WebHome")

	first, err := s.LoadXDOM(ctx, ref)
	require.NoError(t, err)
	link, ok := block.FindFirst[*block.Link](first)
	require.True(t, ok)
	require.NoError(t, block.RemoveChild(link.Parent(), link))

	// served from the cache even though the file changed
	writeFile(t, root, "Main/WebHome.xwiki", "changed")
	second, err := s.LoadXDOM(ctx, ref)
	require.NoError(t, err)
	_, ok = block.FindFirst[*block.Link](second)
	assert.True(t, ok)
	assert.Equal(t, int64(1), c.Stats().Hits)

	c.Remove(ref.String())
	third, err := s.LoadXDOM(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, "changed", block.Text(third))
}

func TestParseWithoutParser(t *testing.T) {
	s, err := NewSource(t.TempDir(), component.NewManager())
	require.NoError(t, err)
	_, err = s.Parse(&Document{
		Reference: model.NewDocumentReference("xwiki", []string{"Main"}, "A"),
		Syntax:    syntax.XWiki21,
	})
	assert.True(t, errors.IsComponentLookupError(err))
}

func TestNewSourceErrors(t *testing.T) {
	_, err := NewSource(filepath.Join(t.TempDir(), "missing"), nil)
	assert.ErrorIs(t, err, os.ErrNotExist)

	file := writeFile(t, t.TempDir(), "f.txt", "x")
	_, err = NewSource(file, nil)
	assert.Error(t, err)
}

func TestParseXWikiDoc(t *testing.T) {
	tests := []struct {
		name    string
		xml     string
		ref     string
		syntax  syntax.Syntax
		wantErr bool
	}{
		{"reference attribute", `<xwikidoc reference="Dev.Notes"><content>x</content></xwikidoc>`, "xwiki:Dev.Notes", syntax.XWiki21, false},
		{"default space", `<xwikidoc><name>Solo</name><syntaxId>plain/1.0</syntaxId></xwikidoc>`, "xwiki:Main.Solo", syntax.Plain10, false},
		{"no name", `<xwikidoc><web>A</web></xwikidoc>`, "", syntax.Syntax{}, true},
		{"not xwikidoc", `<page><name>x</name></page>`, "", syntax.Syntax{}, true},
		{"bad syntax", `<xwikidoc><name>x</name><syntaxId>garbage</syntaxId></xwikidoc>`, "", syntax.Syntax{}, true},
		{"xml 1.1 export", exported, "xwiki:Help.Start", syntax.XWiki21, false},
		{"xml 1.1 single quotes", `<?xml version='1.1' encoding='UTF-8'?>
<xwikidoc><web>Dev</web><name>Q</name></xwikidoc>`, "xwiki:Dev.Q", syntax.XWiki21, false},
		{"xml 1.0", `<?xml version="1.0"?><xwikidoc><name>Old</name></xwikidoc>`, "xwiki:Main.Old", syntax.XWiki21, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := parseXWikiDoc([]byte(tt.xml), model.DefaultDefaults)
			if tt.wantErr {
				assert.True(t, errors.IsParseError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.ref, doc.Reference.String())
			assert.Equal(t, tt.syntax, doc.Syntax)
		})
	}
}

func TestDowngradeProlog(t *testing.T) {
	assert.Equal(t, `<?xml version="1.0" encoding="UTF-8"?><a/>`,
		string(downgradeProlog([]byte(`<?xml version="1.1" encoding="UTF-8"?><a/>`))))
	assert.Equal(t, "\ufeff<?xml version='1.0'?><a/>",
		string(downgradeProlog([]byte("\ufeff<?xml version='1.1'?><a/>"))))

	unchanged := `<a>version="1.1"</a>`
	assert.Equal(t, unchanged, string(downgradeProlog([]byte(unchanged))))

	doc, err := parseXWikiDoc([]byte(exported), model.DefaultDefaults)
	require.NoError(t, err)
	assert.Equal(t, "Getting started", doc.Title)
	assert.Contains(t, doc.Content, "Read **this**.")
}
