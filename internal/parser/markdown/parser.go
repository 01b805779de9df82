// Package markdown parses CommonMark with the GitHub table, strikethrough
// and autolink extensions into Listener events.
package markdown

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/conneroisu/wikicore/internal/block"
	"github.com/conneroisu/wikicore/internal/listener"
	"github.com/conneroisu/wikicore/internal/logging"
	"github.com/conneroisu/wikicore/internal/params"
	"github.com/conneroisu/wikicore/internal/parser"
	"github.com/conneroisu/wikicore/internal/reference"
	"github.com/conneroisu/wikicore/internal/syntax"
)

// Option configures a Parser.
type Option func(*Parser)

// WithReferenceParser sets the parser used for link destinations that are
// not URLs.
func WithReferenceParser(rp *reference.Parser) Option {
	return func(p *Parser) { p.refs = rp }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(p *Parser) { p.logger = l }
}

// Parser parses markdown/1.2 content. Fenced code with a language becomes
// a "code" macro call and raw HTML becomes an "html" macro call, so both
// go through the macro transformation like their wiki syntax equivalents.
type Parser struct {
	md     goldmark.Markdown
	refs   *reference.Parser
	logger logging.Logger
}

var _ parser.Parser = (*Parser)(nil)

// New returns a markdown parser.
func New(opts ...Option) *Parser {
	p := &Parser{
		md: goldmark.New(goldmark.WithExtensions(
			extension.Table,
			extension.Strikethrough,
			extension.Linkify,
		)),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.refs == nil {
		p.refs = reference.NewParser()
	}
	if p.logger == nil {
		p.logger = logging.Discard()
	}
	return p
}

func (p *Parser) Syntax() syntax.Syntax { return syntax.Markdown12 }

func (p *Parser) Parse(r io.Reader, l listener.Listener) error {
	s, err := parser.ReadAll(r)
	if err != nil {
		return err
	}
	src := []byte(s)
	doc := p.md.Parser().Parse(text.NewReader(src))

	meta := params.New(listener.MetaSyntax, syntax.Markdown12.String())
	w := &walker{p: p, l: l, src: src, ids: block.NewIDGenerator()}
	l.BeginDocument(meta)
	w.blocks(doc)
	w.closeSections(0)
	l.EndDocument(meta)
	return nil
}

type walker struct {
	p        *Parser
	l        listener.Listener
	src      []byte
	ids      *block.IDGenerator
	sections []listener.HeaderLevel
	// nested counts the open lists and quotations; headings inside them
	// do not start sections.
	nested int
}

func (w *walker) blocks(n ast.Node) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		w.block(c)
	}
}

func (w *walker) block(n ast.Node) {
	switch n := n.(type) {
	case *ast.Heading:
		w.heading(n)
	case *ast.Paragraph:
		w.l.BeginParagraph(nil)
		w.inlines(n)
		w.l.EndParagraph(nil)
	case *ast.TextBlock:
		w.inlines(n)
	case *ast.ThematicBreak:
		w.l.OnHorizontalLine(nil)
	case *ast.List:
		w.list(n)
	case *ast.Blockquote:
		w.quotation(n)
	case *ast.FencedCodeBlock:
		content := w.lines(n.Lines())
		if lang := string(n.Language(w.src)); lang != "" {
			w.l.OnMacro("code", params.New("language", lang), content, false)
			return
		}
		w.l.OnVerbatim(content, false, nil)
	case *ast.CodeBlock:
		w.l.OnVerbatim(w.lines(n.Lines()), false, nil)
	case *ast.HTMLBlock:
		content := w.lines(n.Lines())
		if n.HasClosure() {
			content += "\n" + string(n.ClosureLine.Value(w.src))
		}
		w.l.OnMacro("html", nil, strings.TrimSuffix(content, "\n"), false)
	case *east.Table:
		w.table(n)
	default:
		w.p.logger.Debug(context.Background(), "skipping markdown block", "kind", n.Kind().String())
	}
}

func (w *walker) lines(segs *text.Segments) string {
	var buf bytes.Buffer
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		buf.Write(seg.Value(w.src))
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

func (w *walker) closeSections(level listener.HeaderLevel) {
	for len(w.sections) > 0 && w.sections[len(w.sections)-1] >= level {
		w.sections = w.sections[:len(w.sections)-1]
		w.l.EndSection(nil)
	}
}

func (w *walker) heading(n *ast.Heading) {
	level := listener.HeaderLevel(n.Level)
	if w.nested == 0 {
		w.closeSections(level)
		w.l.BeginSection(nil)
		w.sections = append(w.sections, level)
	}

	id := w.ids.Generate("H", w.plainText(n))
	w.l.BeginHeader(level, id, nil)
	w.inlines(n)
	w.l.EndHeader(level, id, nil)
}

func (w *walker) list(n *ast.List) {
	t := listener.ListBulleted
	if n.IsOrdered() {
		t = listener.ListNumbered
	}
	w.nested++
	defer func() { w.nested-- }()
	w.l.BeginList(t, nil)
	for item := n.FirstChild(); item != nil; item = item.NextSibling() {
		w.l.BeginListItem(nil)
		first := true
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			switch c := c.(type) {
			case *ast.Paragraph, *ast.TextBlock:
				if !first {
					w.l.OnNewLine()
				}
				w.inlines(c)
			default:
				w.block(c)
			}
			first = false
		}
		w.l.EndListItem(nil)
	}
	w.l.EndList(t, nil)
}

func (w *walker) quotation(n *ast.Blockquote) {
	w.nested++
	defer func() { w.nested-- }()
	w.l.BeginQuotation(nil)
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if q, ok := c.(*ast.Blockquote); ok {
			w.quotation(q)
			continue
		}
		w.l.BeginQuotationLine()
		if _, ok := c.(*ast.Paragraph); ok {
			w.inlines(c)
		} else {
			w.block(c)
		}
		w.l.EndQuotationLine()
	}
	w.l.EndQuotation(nil)
}

func (w *walker) table(n *east.Table) {
	w.l.BeginTable(nil)
	for row := n.FirstChild(); row != nil; row = row.NextSibling() {
		_, head := row.(*east.TableHeader)
		w.l.BeginTableRow(nil)
		for c := row.FirstChild(); c != nil; c = c.NextSibling() {
			cell, ok := c.(*east.TableCell)
			if !ok {
				continue
			}
			var p *params.Map
			if cell.Alignment != east.AlignNone {
				p = params.New("style", "text-align:"+cell.Alignment.String())
			}
			if head {
				w.l.BeginTableHeadCell(p)
				w.inlines(cell)
				w.l.EndTableHeadCell(p)
			} else {
				w.l.BeginTableCell(p)
				w.inlines(cell)
				w.l.EndTableCell(p)
			}
		}
		w.l.EndTableRow(nil)
	}
	w.l.EndTable(nil)
}

func (w *walker) inlines(n ast.Node) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		w.inline(c)
	}
}

func (w *walker) inline(n ast.Node) {
	switch n := n.(type) {
	case *ast.Text:
		parser.EmitText(w.l, string(n.Segment.Value(w.src)))
		if n.HardLineBreak() || (n.SoftLineBreak() && n.NextSibling() != nil) {
			w.l.OnNewLine()
		}
	case *ast.String:
		parser.EmitText(w.l, string(n.Value))
	case *ast.Emphasis:
		f := listener.FormatItalic
		if n.Level >= 2 {
			f = listener.FormatBold
		}
		w.format(f, n)
	case *east.Strikethrough:
		w.format(listener.FormatStrikedout, n)
	case *ast.CodeSpan:
		w.l.OnVerbatim(w.plainText(n), true, nil)
	case *ast.Link:
		w.link(n)
	case *ast.AutoLink:
		var ref *reference.ResourceReference
		if n.AutoLinkType == ast.AutoLinkEmail {
			ref = reference.New(string(n.Label(w.src)), reference.Mailto)
		} else {
			ref = reference.New(string(n.URL(w.src)), reference.URL)
		}
		w.l.BeginLink(ref, true, nil)
		w.l.EndLink(ref, true, nil)
	case *ast.Image:
		ref := w.target(string(n.Destination), reference.Attachment)
		p := params.New("alt", w.plainText(n))
		if len(n.Title) > 0 {
			p.Set("title", string(n.Title))
		}
		w.l.OnImage(ref, false, p)
	case *ast.RawHTML:
		var buf bytes.Buffer
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			buf.Write(seg.Value(w.src))
		}
		w.l.OnMacro("html", nil, buf.String(), true)
	default:
		w.inlines(n)
	}
}

func (w *walker) format(f listener.Format, n ast.Node) {
	w.l.BeginFormat(f, nil)
	w.inlines(n)
	w.l.EndFormat(f, nil)
}

func (w *walker) link(n *ast.Link) {
	dest := string(n.Destination)
	if strings.TrimSpace(dest) == "" {
		w.inlines(n)
		return
	}
	ref := w.target(dest, reference.Document)
	var p *params.Map
	if len(n.Title) > 0 {
		p = params.New("title", string(n.Title))
	}
	w.l.BeginLink(ref, false, p)
	w.inlines(n)
	w.l.EndLink(ref, false, p)
}

// target classifies a link or image destination. URLs and typed references
// ("doc:", "attach:", ...) are parsed as such; anything else is an untyped
// reference of type fallback.
func (w *walker) target(dest string, fallback reference.ResourceType) *reference.ResourceReference {
	ref, err := w.p.refs.Parse(dest)
	if err != nil {
		return reference.New(dest, fallback)
	}
	if !ref.Typed && ref.Type == reference.Document && fallback != reference.Document {
		return reference.New(ref.Reference, fallback)
	}
	return ref
}

// plainText collects the text content of n's inline children.
func (w *walker) plainText(n ast.Node) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch c := c.(type) {
		case *ast.Text:
			sb.Write(c.Segment.Value(w.src))
			if c.SoftLineBreak() || c.HardLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(c.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}
