// Package xwiki serializes documents back to xwiki/2.1 markup.
package xwiki

import (
	"io"
	"strings"

	"github.com/conneroisu/wikicore/internal/listener"
	"github.com/conneroisu/wikicore/internal/params"
	xwikiparser "github.com/conneroisu/wikicore/internal/parser/xwiki"
	"github.com/conneroisu/wikicore/internal/reference"
	"github.com/conneroisu/wikicore/internal/renderer"
	"github.com/conneroisu/wikicore/internal/syntax"
)

// Factory creates xwiki/2.1 renderers.
type Factory struct{}

var _ renderer.Factory = Factory{}

func (Factory) Syntax() syntax.Syntax { return syntax.XWiki21 }

func (Factory) NewRenderer(w io.Writer) renderer.Renderer {
	return &Renderer{Printer: renderer.NewPrinter(w)}
}

var formatMarkers = map[listener.Format]string{
	listener.FormatBold:        "**",
	listener.FormatItalic:      "//",
	listener.FormatUnderlined:  "__",
	listener.FormatStrikedout:  "--",
	listener.FormatMonospace:   "##",
	listener.FormatSuperscript: "^^",
	listener.FormatSubscript:   ",,",
}

// Renderer writes xwiki/2.1. Inline text is buffered until the next
// structural event so that markup characters can be escaped with "~".
type Renderer struct {
	*renderer.Printer

	text       strings.Builder
	lineStart  bool
	captures   []*strings.Builder
	wrote      bool
	emptyLines int
	inLine     int

	lists      []listener.ListType
	listItems  int
	quoteDepth int
	quoteLines int
	defItems   int
	rows       int
}

func (r *Renderer) write(s string) {
	if n := len(r.captures); n > 0 {
		r.captures[n-1].WriteString(s)
		return
	}
	r.Print(s)
}

func (r *Renderer) flushText() {
	if r.text.Len() == 0 {
		return
	}
	s := r.text.String()
	r.text.Reset()
	r.write(escape(s, r.lineStart))
	r.lineStart = strings.HasSuffix(s, "\n")
}

// inline flushes pending text before an inline construct.
func (r *Renderer) inline() {
	r.flushText()
	r.lineStart = false
}

// block starts a new top-level block, separated from the previous one by a
// blank line plus any recorded empty lines.
func (r *Renderer) block(p *params.Map) {
	r.flushText()
	if r.wrote {
		r.write("\n\n")
	}
	if r.emptyLines > 0 {
		r.write(strings.Repeat("\n", r.emptyLines))
		r.emptyLines = 0
	}
	if p.Len() > 0 {
		r.write("(% " + xwikiparser.FormatParameters(p) + " %)\n")
	}
	r.wrote = true
	r.lineStart = false
}

func (r *Renderer) newLine(first bool) {
	r.flushText()
	if !first {
		r.write("\n")
	}
}

func (r *Renderer) BeginDocument(*listener.MetaData) {}
func (r *Renderer) EndDocument(*listener.MetaData)   { r.flushText() }

func (r *Renderer) BeginGroup(p *params.Map) {
	r.block(p)
	r.write("(((\n")
	r.wrote = false
}

func (r *Renderer) EndGroup(*params.Map) {
	r.flushText()
	r.write("\n)))")
	r.wrote = true
}

func (r *Renderer) BeginFormat(f listener.Format, p *params.Map) {
	r.inline()
	if f == listener.FormatNone {
		if p.Len() > 0 {
			r.write("(% " + xwikiparser.FormatParameters(p) + " %)")
		}
		return
	}
	r.write(formatMarkers[f])
}

func (r *Renderer) EndFormat(f listener.Format, p *params.Map) {
	r.inline()
	if f == listener.FormatNone {
		if p.Len() > 0 {
			r.write("(%%)")
		}
		return
	}
	r.write(formatMarkers[f])
}

func (r *Renderer) BeginParagraph(p *params.Map) {
	r.block(p)
	r.lineStart = true
}

func (r *Renderer) EndParagraph(*params.Map) { r.flushText() }

func (r *Renderer) BeginList(t listener.ListType, p *params.Map) {
	if len(r.lists) == 0 {
		r.block(p)
		r.listItems = 0
	}
	r.lists = append(r.lists, t)
}

func (r *Renderer) EndList(listener.ListType, *params.Map) {
	r.flushText()
	r.lists = r.lists[:len(r.lists)-1]
}

func (r *Renderer) BeginListItem(*params.Map) {
	r.newLine(r.listItems == 0)
	r.listItems++
	var sb strings.Builder
	for _, t := range r.lists {
		if t == listener.ListNumbered {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('*')
		}
	}
	if r.lists[len(r.lists)-1] == listener.ListNumbered {
		sb.WriteByte('.')
	}
	r.write(sb.String() + " ")
	r.inLine++
}

func (r *Renderer) EndListItem(*params.Map) {
	r.flushText()
	r.inLine--
}

func (r *Renderer) BeginDefinitionList(p *params.Map) {
	r.block(p)
	r.defItems = 0
}

func (r *Renderer) EndDefinitionList(*params.Map) { r.flushText() }

func (r *Renderer) BeginDefinitionTerm() { r.definitionItem("; ") }
func (r *Renderer) EndDefinitionTerm()   { r.endLine() }

func (r *Renderer) BeginDefinitionDescription() { r.definitionItem(": ") }
func (r *Renderer) EndDefinitionDescription()   { r.endLine() }

func (r *Renderer) definitionItem(prefix string) {
	r.newLine(r.defItems == 0)
	r.defItems++
	r.write(prefix)
	r.inLine++
}

func (r *Renderer) endLine() {
	r.flushText()
	r.inLine--
}

func (r *Renderer) BeginQuotation(p *params.Map) {
	if r.quoteDepth == 0 {
		r.block(p)
		r.quoteLines = 0
	}
	r.quoteDepth++
}

func (r *Renderer) EndQuotation(*params.Map) {
	r.flushText()
	r.quoteDepth--
}

func (r *Renderer) BeginQuotationLine() {
	r.newLine(r.quoteLines == 0)
	r.quoteLines++
	r.write(strings.Repeat(">", r.quoteDepth) + " ")
	r.inLine++
}

func (r *Renderer) EndQuotationLine() { r.endLine() }

func (r *Renderer) BeginSection(*params.Map) {}
func (r *Renderer) EndSection(*params.Map)   {}

func (r *Renderer) BeginHeader(level listener.HeaderLevel, _ string, p *params.Map) {
	r.block(p)
	r.write(strings.Repeat("=", int(level)) + " ")
	r.inLine++
}

func (r *Renderer) EndHeader(level listener.HeaderLevel, _ string, _ *params.Map) {
	r.flushText()
	r.write(" " + strings.Repeat("=", int(level)))
	r.inLine--
}

func (r *Renderer) BeginTable(p *params.Map) {
	r.block(p)
	r.rows = 0
}

func (r *Renderer) EndTable(*params.Map) { r.flushText() }

func (r *Renderer) BeginTableRow(*params.Map) {
	r.newLine(r.rows == 0)
	r.rows++
}

func (r *Renderer) EndTableRow(*params.Map) { r.flushText() }

func (r *Renderer) BeginTableCell(*params.Map) {
	r.inline()
	r.write("|")
	r.inLine++
}

func (r *Renderer) EndTableCell(*params.Map) { r.endLine() }

func (r *Renderer) BeginTableHeadCell(*params.Map) {
	r.inline()
	r.write("|=")
	r.inLine++
}

func (r *Renderer) EndTableHeadCell(*params.Map) { r.endLine() }

func (r *Renderer) BeginLink(*reference.ResourceReference, bool, *params.Map) {
	r.inline()
	r.captures = append(r.captures, &strings.Builder{})
}

func (r *Renderer) EndLink(ref *reference.ResourceReference, freestanding bool, p *params.Map) {
	r.flushText()
	n := len(r.captures)
	label := r.captures[n-1].String()
	r.captures = r.captures[:n-1]

	if freestanding && label == "" && p.Len() == 0 {
		r.write(ref.Reference)
		return
	}
	var sb strings.Builder
	sb.WriteString("[[")
	if label != "" {
		sb.WriteString(label + ">>")
	}
	sb.WriteString(reference.Serialize(ref))
	if p.Len() > 0 {
		sb.WriteString("||" + xwikiparser.FormatParameters(p))
	}
	sb.WriteString("]]")
	r.write(sb.String())
}

func (r *Renderer) BeginMacroMarker(id string, p *params.Map, content string, inline bool) {
	r.OnMacro(id, p, content, inline)
	// the generated content is not part of the source
	r.captures = append(r.captures, &strings.Builder{})
}

func (r *Renderer) EndMacroMarker(string, *params.Map, string, bool) {
	r.flushText()
	r.captures = r.captures[:len(r.captures)-1]
}

func (r *Renderer) OnMacro(id string, p *params.Map, content string, inline bool) {
	if inline {
		r.inline()
	} else {
		r.block(nil)
	}
	r.write(macroCall(id, p, content))
}

func macroCall(id string, p *params.Map, content string) string {
	call := "{{" + id
	if p.Len() > 0 {
		call += " " + xwikiparser.FormatParameters(p)
	}
	if content == "" {
		return call + "/}}"
	}
	return call + "}}" + content + "{{/" + id + "}}"
}

func (r *Renderer) OnWord(word string)          { r.text.WriteString(word) }
func (r *Renderer) OnSpace()                    { r.text.WriteByte(' ') }
func (r *Renderer) OnSpecialSymbol(symbol rune) { r.text.WriteRune(symbol) }

func (r *Renderer) OnNewLine() {
	if r.inLine > 0 {
		r.inline()
		r.write(`\\`)
		return
	}
	r.text.WriteByte('\n')
}

func (r *Renderer) OnHorizontalLine(p *params.Map) {
	r.block(p)
	r.write("----")
}

func (r *Renderer) OnEmptyLines(count int) {
	r.flushText()
	r.emptyLines += count
}

func (r *Renderer) OnVerbatim(content string, inline bool, p *params.Map) {
	if inline {
		r.inline()
	} else {
		r.block(p)
	}
	r.write("{{{" + content + "}}}")
}

func (r *Renderer) OnRawText(content string, s syntax.Syntax) {
	r.inline()
	if s.Type == syntax.TypeXHTML || s.Type == syntax.TypeHTML {
		r.write(macroCall("html", params.New("clean", "false"), content))
		return
	}
	r.write("{{{" + content + "}}}")
}

func (r *Renderer) OnId(name string) {
	r.inline()
	r.write(macroCall("id", params.New("name", name), ""))
}

func (r *Renderer) OnImage(ref *reference.ResourceReference, _ bool, p *params.Map) {
	r.inline()
	call := "[[image:" + reference.Serialize(ref)
	if p.Len() > 0 {
		call += "||" + xwikiparser.FormatParameters(p)
	}
	r.write(call + "]]")
}

var markupPairs = []string{
	"**", "//", "__", "--", "##", "^^", ",,",
	"[[", "]]", "{{", "}}", "((", "))", "(%", "%)", `\\`,
}

// escape prefixes with "~" every character that would otherwise start
// markup when the text is parsed again.
func escape(s string, lineStart bool) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		needs := c == '~' || c == '|'
		if lineStart && !needs {
			needs = strings.IndexByte("=*;:>", c) >= 0 ||
				strings.HasPrefix(s[i:], "1. ") ||
				strings.HasPrefix(s[i:], "----")
		}
		if !needs && i+1 < len(s) {
			for _, pair := range markupPairs {
				if strings.HasPrefix(s[i:], pair) {
					needs = true
					break
				}
			}
		}
		if needs {
			sb.WriteByte('~')
		}
		sb.WriteByte(c)
		lineStart = c == '\n' || (lineStart && (c == ' ' || c == '\t'))
	}
	return sb.String()
}
