// Package xhtml parses XHTML and HTML5 documents into Listener events.
//
// Block elements map to their wiki equivalents. Text directly inside a
// block container is wrapped in an implicit paragraph, and whitespace is
// collapsed the way a browser would display it.
package xhtml

import (
	"io"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/conneroisu/wikicore/internal/block"
	"github.com/conneroisu/wikicore/internal/errors"
	"github.com/conneroisu/wikicore/internal/listener"
	"github.com/conneroisu/wikicore/internal/params"
	"github.com/conneroisu/wikicore/internal/parser"
	"github.com/conneroisu/wikicore/internal/reference"
	"github.com/conneroisu/wikicore/internal/syntax"
)

// Parser parses one HTML flavour.
type Parser struct {
	syn  syntax.Syntax
	refs *reference.Parser
}

var _ parser.Parser = (*Parser)(nil)

// NewXHTML returns a parser for xhtml/1.0.
func NewXHTML(refs *reference.Parser) *Parser { return newParser(syntax.XHTML10, refs) }

// NewHTML returns a parser for html/5.0.
func NewHTML(refs *reference.Parser) *Parser { return newParser(syntax.HTML50, refs) }

func newParser(s syntax.Syntax, refs *reference.Parser) *Parser {
	if refs == nil {
		refs = reference.NewParser()
	}
	return &Parser{syn: s, refs: refs}
}

func (p *Parser) Syntax() syntax.Syntax { return p.syn }

func (p *Parser) Parse(r io.Reader, l listener.Listener) error {
	s, err := parser.ReadAll(r)
	if err != nil {
		return err
	}
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return errors.NewParseError(errors.ErrCodeSyntax, "invalid "+p.syn.String()+" document", err)
	}

	meta := params.New(listener.MetaSyntax, p.syn.String())
	w := &walker{p: p, l: l, ids: block.NewIDGenerator()}
	l.BeginDocument(meta)
	if body := find(doc, atom.Body); body != nil {
		w.blocks(body)
	}
	w.closeSections(0)
	l.EndDocument(meta)
	return nil
}

func find(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if f := find(c, a); f != nil {
			return f
		}
	}
	return nil
}

var formats = map[atom.Atom]listener.Format{
	atom.Strong: listener.FormatBold,
	atom.B:      listener.FormatBold,
	atom.Em:     listener.FormatItalic,
	atom.I:      listener.FormatItalic,
	atom.U:      listener.FormatUnderlined,
	atom.Ins:    listener.FormatUnderlined,
	atom.Del:    listener.FormatStrikedout,
	atom.S:      listener.FormatStrikedout,
	atom.Strike: listener.FormatStrikedout,
	atom.Sup:    listener.FormatSuperscript,
	atom.Sub:    listener.FormatSubscript,
	atom.Tt:     listener.FormatMonospace,
	atom.Code:   listener.FormatMonospace,
	atom.Kbd:    listener.FormatMonospace,
	atom.Samp:   listener.FormatMonospace,
}

var groups = []atom.Atom{
	atom.Div, atom.Section, atom.Article, atom.Header, atom.Footer,
	atom.Nav, atom.Main, atom.Aside, atom.Figure,
}

var skipped = []atom.Atom{atom.Script, atom.Style, atom.Head, atom.Template, atom.Noscript}

func isBlock(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.DataAtom {
	case atom.P, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.Ul, atom.Ol, atom.Dl, atom.Blockquote, atom.Pre, atom.Table, atom.Hr:
		return true
	}
	return slices.Contains(groups, n.DataAtom)
}

func isBlank(n *html.Node) bool {
	return n.Type == html.TextNode && strings.TrimSpace(n.Data) == ""
}

// attrs converts the attributes of n, minus skip, into parameters.
func attrs(n *html.Node, skip ...string) *params.Map {
	var p *params.Map
	for _, a := range n.Attr {
		if a.Namespace != "" || slices.Contains(skip, a.Key) {
			continue
		}
		if p == nil {
			p = params.New()
		}
		p.Set(a.Key, a.Val)
	}
	return p
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// ignorable reports whether n produces no output outside a paragraph.
func ignorable(n *html.Node) bool {
	switch n.Type {
	case html.TextNode:
		return isBlank(n)
	case html.ElementNode:
		return slices.Contains(skipped, n.DataAtom)
	}
	return true
}

type walker struct {
	p        *Parser
	l        listener.Listener
	ids      *block.IDGenerator
	sections []listener.HeaderLevel
	nested   int

	// inline whitespace state
	atStart bool
	space   bool
}

func (w *walker) closeSections(level listener.HeaderLevel) {
	for len(w.sections) > 0 && w.sections[len(w.sections)-1] >= level {
		w.sections = w.sections[:len(w.sections)-1]
		w.l.EndSection(nil)
	}
}

// blocks emits the children of a block container, wrapping runs of inline
// content in paragraphs.
func (w *walker) blocks(n *html.Node) {
	open := false
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case isBlock(c):
			if open {
				w.l.EndParagraph(nil)
				open = false
			}
			w.block(c)
		case !open && ignorable(c):
		default:
			if !open {
				w.l.BeginParagraph(nil)
				w.startInline()
				open = true
			}
			w.inline(c)
		}
	}
	if open {
		w.l.EndParagraph(nil)
	}
}

// flow emits the children of a list item, cell or term: inline content
// directly, block children as blocks.
func (w *walker) flow(n *html.Node) {
	w.startInline()
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isBlock(c) {
			w.block(c)
			w.startInline()
			continue
		}
		w.inline(c)
	}
}

func (w *walker) block(n *html.Node) {
	switch a := n.DataAtom; a {
	case atom.P:
		p := attrs(n)
		w.l.BeginParagraph(p)
		w.startInline()
		w.inlines(n)
		w.l.EndParagraph(p)
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		w.heading(n, listener.HeaderLevel(a.String()[1]-'0'))
	case atom.Ul, atom.Ol:
		w.list(n)
	case atom.Dl:
		w.definitionList(n)
	case atom.Blockquote:
		w.quotation(n)
	case atom.Pre:
		w.l.OnVerbatim(strings.TrimSuffix(textContent(n), "\n"), false, attrs(n))
	case atom.Table:
		w.table(n)
	case atom.Hr:
		w.l.OnHorizontalLine(attrs(n))
	default:
		p := attrs(n)
		w.nested++
		w.l.BeginGroup(p)
		w.blocks(n)
		w.l.EndGroup(p)
		w.nested--
	}
}

func (w *walker) heading(n *html.Node, level listener.HeaderLevel) {
	if w.nested == 0 {
		w.closeSections(level)
		w.l.BeginSection(nil)
		w.sections = append(w.sections, level)
	}
	id, ok := attr(n, "id")
	if ok {
		w.ids.Reserve(id)
	} else {
		id = w.ids.Generate("H", strings.Join(strings.Fields(textContent(n)), " "))
	}
	p := attrs(n, "id")
	w.l.BeginHeader(level, id, p)
	w.startInline()
	w.inlines(n)
	w.l.EndHeader(level, id, p)
}

func (w *walker) list(n *html.Node) {
	t := listener.ListBulleted
	if n.DataAtom == atom.Ol {
		t = listener.ListNumbered
	}
	p := attrs(n)
	w.nested++
	w.l.BeginList(t, p)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.DataAtom != atom.Li {
			continue
		}
		ip := attrs(c)
		w.l.BeginListItem(ip)
		w.flow(c)
		w.l.EndListItem(ip)
	}
	w.l.EndList(t, p)
	w.nested--
}

func (w *walker) definitionList(n *html.Node) {
	p := attrs(n)
	w.nested++
	w.l.BeginDefinitionList(p)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case c.DataAtom == atom.Dt:
			w.l.BeginDefinitionTerm()
			w.flow(c)
			w.l.EndDefinitionTerm()
		case c.DataAtom == atom.Dd:
			w.l.BeginDefinitionDescription()
			w.flow(c)
			w.l.EndDefinitionDescription()
		}
	}
	w.l.EndDefinitionList(p)
	w.nested--
}

func (w *walker) quotation(n *html.Node) {
	p := attrs(n)
	w.nested++
	w.l.BeginQuotation(p)
	line := false
	closeLine := func() {
		if line {
			w.l.EndQuotationLine()
			line = false
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case c.DataAtom == atom.Blockquote:
			closeLine()
			w.quotation(c)
		case c.DataAtom == atom.P:
			closeLine()
			w.l.BeginQuotationLine()
			w.startInline()
			w.inlines(c)
			w.l.EndQuotationLine()
		case isBlock(c):
			closeLine()
			w.l.BeginQuotationLine()
			w.block(c)
			w.l.EndQuotationLine()
		case !line && ignorable(c):
		default:
			if !line {
				w.l.BeginQuotationLine()
				w.startInline()
				line = true
			}
			w.inline(c)
		}
	}
	closeLine()
	w.l.EndQuotation(p)
	w.nested--
}

func (w *walker) table(n *html.Node) {
	p := attrs(n)
	w.nested++
	w.l.BeginTable(p)
	var rows func(*html.Node)
	rows = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.DataAtom {
			case atom.Thead, atom.Tbody, atom.Tfoot:
				rows(c)
			case atom.Tr:
				w.row(c)
			}
		}
	}
	rows(n)
	w.l.EndTable(p)
	w.nested--
}

func (w *walker) row(n *html.Node) {
	p := attrs(n)
	w.l.BeginTableRow(p)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		cp := attrs(c)
		switch c.DataAtom {
		case atom.Th:
			w.l.BeginTableHeadCell(cp)
			w.flow(c)
			w.l.EndTableHeadCell(cp)
		case atom.Td:
			w.l.BeginTableCell(cp)
			w.flow(c)
			w.l.EndTableCell(cp)
		}
	}
	w.l.EndTableRow(p)
}

func (w *walker) startInline() {
	w.atStart = true
	w.space = false
}

func (w *walker) inlines(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.inline(c)
	}
}

// emit runs f after the whitespace pending before it.
func (w *walker) emit(f func()) {
	if w.space && !w.atStart {
		w.l.OnSpace()
	}
	w.space = false
	w.atStart = false
	f()
}

func (w *walker) text(s string) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		if s != "" {
			w.space = true
		}
		return
	}
	if strings.TrimLeft(s, " \t\r\n\f") != s {
		w.space = true
	}
	w.emit(func() { parser.EmitText(w.l, strings.Join(fields, " ")) })
	if strings.TrimRight(s, " \t\r\n\f") != s {
		w.space = true
	}
}

func (w *walker) inline(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.text(n.Data)
		return
	case html.ElementNode:
	default:
		return
	}
	if slices.Contains(skipped, n.DataAtom) {
		return
	}

	if f, ok := formats[n.DataAtom]; ok {
		w.format(f, nil, n)
		return
	}
	switch n.DataAtom {
	case atom.Span:
		if p := attrs(n); p.Len() > 0 {
			w.format(listener.FormatNone, p, n)
			return
		}
		w.inlines(n)
	case atom.Br:
		w.emit(w.l.OnNewLine)
		w.atStart = true
	case atom.A:
		w.link(n)
	case atom.Img:
		src, _ := attr(n, "src")
		if src == "" {
			return
		}
		ref := w.target(src)
		w.emit(func() { w.l.OnImage(ref, false, attrs(n, "src")) })
	default:
		w.inlines(n)
	}
}

func (w *walker) format(f listener.Format, p *params.Map, n *html.Node) {
	w.emit(func() { w.l.BeginFormat(f, p) })
	w.inlines(n)
	w.l.EndFormat(f, p)
}

func (w *walker) link(n *html.Node) {
	href, ok := attr(n, "href")
	if !ok || href == "" {
		if name, ok := attr(n, "name"); ok && name != "" {
			w.emit(func() { w.l.OnId(name) })
		}
		w.inlines(n)
		return
	}
	ref := w.target(href)
	p := attrs(n, "href")
	w.emit(func() { w.l.BeginLink(ref, false, p) })
	w.inlines(n)
	w.l.EndLink(ref, false, p)
}

// target classifies an href or src. Registered wiki schemes ("doc:",
// "attach:", "mailto:", ...) are parsed as references, "#x" links to an
// anchor of the current document and anything else is a URL.
func (w *walker) target(s string) *reference.ResourceReference {
	if strings.HasPrefix(s, "#") {
		return reference.New("", reference.Document).SetParameter(reference.ParamAnchor, s[1:])
	}
	if i := strings.IndexByte(s, ':'); i > 0 && slices.Contains(w.p.refs.Schemes(), s[:i]) {
		if ref, err := w.p.refs.Parse(s); err == nil {
			return ref
		}
	}
	return reference.New(s, reference.URL)
}
