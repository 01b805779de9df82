// Package xhtml renders documents as HTML fragments.
package xhtml

import (
	"context"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/conneroisu/wikicore/internal/block"
	"github.com/conneroisu/wikicore/internal/listener"
	"github.com/conneroisu/wikicore/internal/params"
	"github.com/conneroisu/wikicore/internal/reference"
	"github.com/conneroisu/wikicore/internal/renderer"
	"github.com/conneroisu/wikicore/internal/syntax"
)

// Factory creates xhtml/1.0 renderers.
type Factory struct {
	Labels renderer.LinkLabelGenerator
	URLs   URLResolver
}

var _ renderer.Factory = Factory{}

func (Factory) Syntax() syntax.Syntax { return syntax.XHTML10 }

func (f Factory) NewRenderer(w io.Writer) renderer.Renderer {
	r := &Renderer{Printer: renderer.NewPrinter(w), labels: f.Labels, urls: f.URLs}
	if r.labels == nil {
		r.labels = renderer.DefaultLabels
	}
	if r.urls == nil {
		r.urls = DefaultURLs()
	}
	return r
}

// Component wraps the rendering of b as a templ component so it can be
// embedded in templ pages.
func Component(f Factory, b block.Block) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return renderer.Render(f, b, w)
	})
}

var formatTags = map[listener.Format]string{
	listener.FormatBold:        "strong",
	listener.FormatItalic:      "em",
	listener.FormatUnderlined:  "ins",
	listener.FormatStrikedout:  "del",
	listener.FormatSuperscript: "sup",
	listener.FormatSubscript:   "sub",
	listener.FormatMonospace:   "tt",
	listener.FormatNone:        "span",
}

var attrName = regexp.MustCompile(`^[a-zA-Z_:][a-zA-Z0-9_:.\-]*$`)

// Renderer writes HTML as events arrive.
type Renderer struct {
	*renderer.Printer

	labels     renderer.LinkLabelGenerator
	urls       URLResolver
	captures   []*strings.Builder
	quoteLines []int
}

func (r *Renderer) write(s ...string) {
	if n := len(r.captures); n > 0 {
		for _, part := range s {
			r.captures[n-1].WriteString(part)
		}
		return
	}
	r.Print(s...)
}

// attrs formats p as HTML attributes. Invalid names are dropped.
func attrs(p *params.Map) string {
	var sb strings.Builder
	p.Each(func(k, v string) {
		if !attrName.MatchString(k) || strings.HasPrefix(strings.ToLower(k), "on") {
			return
		}
		sb.WriteString(" " + k + `="` + templ.EscapeString(v) + `"`)
	})
	return sb.String()
}

func (r *Renderer) open(tag string, p *params.Map, extra ...string) {
	r.write("<" + tag + strings.Join(extra, "") + attrs(p) + ">")
}

func (r *Renderer) close(tag string) {
	r.write("</" + tag + ">")
}

func (r *Renderer) BeginDocument(*listener.MetaData) {}
func (r *Renderer) EndDocument(*listener.MetaData)   {}

func (r *Renderer) BeginGroup(p *params.Map) { r.open("div", p) }
func (r *Renderer) EndGroup(*params.Map)     { r.close("div") }

func (r *Renderer) BeginFormat(f listener.Format, p *params.Map) { r.open(formatTags[f], p) }
func (r *Renderer) EndFormat(f listener.Format, _ *params.Map)   { r.close(formatTags[f]) }

func (r *Renderer) BeginParagraph(p *params.Map) { r.open("p", p) }
func (r *Renderer) EndParagraph(*params.Map)     { r.close("p") }

func listTag(t listener.ListType) string {
	if t == listener.ListNumbered {
		return "ol"
	}
	return "ul"
}

func (r *Renderer) BeginList(t listener.ListType, p *params.Map) { r.open(listTag(t), p) }
func (r *Renderer) EndList(t listener.ListType, _ *params.Map)   { r.close(listTag(t)) }
func (r *Renderer) BeginListItem(p *params.Map)                  { r.open("li", p) }
func (r *Renderer) EndListItem(*params.Map)                      { r.close("li") }

func (r *Renderer) BeginDefinitionList(p *params.Map) { r.open("dl", p) }
func (r *Renderer) EndDefinitionList(*params.Map)     { r.close("dl") }
func (r *Renderer) BeginDefinitionTerm()              { r.write("<dt>") }
func (r *Renderer) EndDefinitionTerm()                { r.close("dt") }
func (r *Renderer) BeginDefinitionDescription()       { r.write("<dd>") }
func (r *Renderer) EndDefinitionDescription()         { r.close("dd") }

func (r *Renderer) BeginQuotation(p *params.Map) {
	r.open("blockquote", p)
	r.quoteLines = append(r.quoteLines, 0)
}

func (r *Renderer) EndQuotation(*params.Map) {
	r.quoteLines = r.quoteLines[:len(r.quoteLines)-1]
	r.close("blockquote")
}

func (r *Renderer) BeginQuotationLine() {
	n := len(r.quoteLines) - 1
	if r.quoteLines[n] > 0 {
		r.write("<br/>")
	}
	r.quoteLines[n]++
}

func (r *Renderer) EndQuotationLine() {}

func (r *Renderer) BeginSection(*params.Map) {}
func (r *Renderer) EndSection(*params.Map)   {}

func headerTag(level listener.HeaderLevel) string {
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	return "h" + strconv.Itoa(int(level))
}

func (r *Renderer) BeginHeader(level listener.HeaderLevel, id string, p *params.Map) {
	extra := ""
	if id != "" && !p.Has("id") {
		extra = ` id="` + templ.EscapeString(id) + `"`
	}
	r.open(headerTag(level), p, extra)
	r.write("<span>")
}

func (r *Renderer) EndHeader(level listener.HeaderLevel, _ string, _ *params.Map) {
	r.write("</span>")
	r.close(headerTag(level))
}

func (r *Renderer) BeginTable(p *params.Map)         { r.open("table", p) }
func (r *Renderer) EndTable(*params.Map)             { r.close("table") }
func (r *Renderer) BeginTableRow(p *params.Map)      { r.open("tr", p) }
func (r *Renderer) EndTableRow(*params.Map)          { r.close("tr") }
func (r *Renderer) BeginTableCell(p *params.Map)     { r.open("td", p) }
func (r *Renderer) EndTableCell(*params.Map)         { r.close("td") }
func (r *Renderer) BeginTableHeadCell(p *params.Map) { r.open("th", p) }
func (r *Renderer) EndTableHeadCell(*params.Map)     { r.close("th") }

func (r *Renderer) BeginLink(*reference.ResourceReference, bool, *params.Map) {
	r.captures = append(r.captures, &strings.Builder{})
}

func (r *Renderer) EndLink(ref *reference.ResourceReference, freestanding bool, p *params.Map) {
	n := len(r.captures)
	label := r.captures[n-1].String()
	r.captures = r.captures[:n-1]
	if label == "" {
		label = templ.EscapeString(r.labels.Label(ref))
	}

	class := "wikiexternallink"
	switch ref.Type {
	case reference.Document, reference.Page, reference.Space:
		class = "wikilink"
	case reference.Attachment:
		class = "wikiattachmentlink"
	}

	href := r.urls.URL(ref)
	if href == "" {
		r.write(`<span class="wikicreatelink">`, label, "</span>")
		return
	}
	anchorClass := ""
	if freestanding {
		anchorClass = ` class="wikimodel-freestanding"`
	}
	r.write(`<span class="`+class+`">`, "<a", anchorClass, ` href="`, templ.EscapeString(string(templ.URL(href))), `"`, attrs(p), ">", label, "</a></span>")
}

// Macro markers only wrap their generated children; unexecuted macros
// render nothing.
func (r *Renderer) BeginMacroMarker(string, *params.Map, string, bool) {}
func (r *Renderer) EndMacroMarker(string, *params.Map, string, bool)   {}
func (r *Renderer) OnMacro(string, *params.Map, string, bool)          {}

func (r *Renderer) OnWord(word string)          { r.write(templ.EscapeString(word)) }
func (r *Renderer) OnSpace()                    { r.write(" ") }
func (r *Renderer) OnSpecialSymbol(symbol rune) { r.write(templ.EscapeString(string(symbol))) }
func (r *Renderer) OnNewLine()                  { r.write("<br/>") }

func (r *Renderer) OnHorizontalLine(p *params.Map) { r.write("<hr" + attrs(p) + "/>") }

func (r *Renderer) OnEmptyLines(count int) {
	r.write(strings.Repeat(`<div class="wikimodel-emptyline"></div>`, count))
}

func (r *Renderer) OnVerbatim(content string, inline bool, p *params.Map) {
	if inline {
		r.write(`<tt class="wikimodel-verbatim"`+attrs(p)+">", templ.EscapeString(content), "</tt>")
		return
	}
	r.write("<pre"+attrs(p)+">", templ.EscapeString(content), "</pre>")
}

func (r *Renderer) OnRawText(content string, s syntax.Syntax) {
	if s.Type == syntax.TypeXHTML || s.Type == syntax.TypeHTML {
		r.write(content)
		return
	}
	r.write(templ.EscapeString(content))
}

func (r *Renderer) OnId(name string) {
	r.write(`<span id="`, templ.EscapeString(name), `"></span>`)
}

func (r *Renderer) OnImage(ref *reference.ResourceReference, _ bool, p *params.Map) {
	src := r.urls.URL(ref)
	extra := ""
	if !p.Has("alt") {
		extra = ` alt="` + templ.EscapeString(r.labels.Label(ref)) + `"`
	}
	r.write(`<img src="`, templ.EscapeString(string(templ.URL(src))), `"`, extra, attrs(p), "/>")
}
