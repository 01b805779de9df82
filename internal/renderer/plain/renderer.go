// Package plain renders documents as plain text.
package plain

import (
	"io"
	"strings"

	"github.com/conneroisu/wikicore/internal/listener"
	"github.com/conneroisu/wikicore/internal/params"
	"github.com/conneroisu/wikicore/internal/reference"
	"github.com/conneroisu/wikicore/internal/renderer"
	"github.com/conneroisu/wikicore/internal/syntax"
)

// Factory creates plain/1.0 renderers.
type Factory struct {
	Labels renderer.LinkLabelGenerator
}

var _ renderer.Factory = Factory{}

func (Factory) Syntax() syntax.Syntax { return syntax.Plain10 }

func (f Factory) NewRenderer(w io.Writer) renderer.Renderer {
	labels := f.Labels
	if labels == nil {
		labels = renderer.DefaultLabels
	}
	return &Renderer{Printer: renderer.NewPrinter(w), labels: labels}
}

// Renderer writes the text of a document. Blocks are separated by a blank
// line; list items, table rows and quotation lines by a new line.
type Renderer struct {
	listener.Base
	*renderer.Printer

	labels  renderer.LinkLabelGenerator
	wrote   bool
	pending int
	links   []bool
	cells   int
}

func (r *Renderer) separate(n int) {
	if r.wrote && n > r.pending {
		r.pending = n
	}
}

func (r *Renderer) text(s string) {
	if s == "" {
		return
	}
	if r.pending > 0 {
		r.Print(strings.Repeat("\n", r.pending))
		r.pending = 0
	}
	r.Print(s)
	r.wrote = true
	if n := len(r.links); n > 0 {
		r.links[n-1] = true
	}
}

func (r *Renderer) BeginParagraph(*params.Map)                            { r.separate(2) }
func (r *Renderer) BeginHeader(listener.HeaderLevel, string, *params.Map) { r.separate(2) }
func (r *Renderer) BeginList(listener.ListType, *params.Map)              { r.separate(2) }
func (r *Renderer) BeginListItem(*params.Map)                             { r.separate(1) }
func (r *Renderer) BeginDefinitionList(*params.Map)                       { r.separate(2) }
func (r *Renderer) BeginDefinitionTerm()                                  { r.separate(1) }
func (r *Renderer) BeginDefinitionDescription()                           { r.separate(1) }
func (r *Renderer) BeginQuotation(*params.Map)                            { r.separate(2) }
func (r *Renderer) BeginQuotationLine()                                   { r.separate(1) }
func (r *Renderer) BeginTable(*params.Map)                                { r.separate(2) }
func (r *Renderer) BeginGroup(*params.Map)                                { r.separate(2) }
func (r *Renderer) OnHorizontalLine(*params.Map)                          { r.separate(2) }

func (r *Renderer) BeginTableRow(*params.Map) {
	r.separate(1)
	r.cells = 0
}

func (r *Renderer) BeginTableCell(*params.Map)     { r.cell() }
func (r *Renderer) BeginTableHeadCell(*params.Map) { r.cell() }

func (r *Renderer) cell() {
	if r.cells > 0 {
		r.text("\t")
	}
	r.cells++
}

func (r *Renderer) BeginLink(*reference.ResourceReference, bool, *params.Map) {
	r.links = append(r.links, false)
}

func (r *Renderer) EndLink(ref *reference.ResourceReference, _ bool, _ *params.Map) {
	n := len(r.links)
	labelled := r.links[n-1]
	r.links = r.links[:n-1]
	if !labelled {
		r.text(r.labels.Label(ref))
	}
}

func (r *Renderer) OnWord(word string)          { r.text(word) }
func (r *Renderer) OnSpace()                    { r.text(" ") }
func (r *Renderer) OnSpecialSymbol(symbol rune) { r.text(string(symbol)) }
func (r *Renderer) OnNewLine()                  { r.text("\n") }

func (r *Renderer) OnEmptyLines(count int) {
	r.separate(2 + count)
}

func (r *Renderer) OnVerbatim(content string, inline bool, _ *params.Map) {
	if !inline {
		r.separate(2)
	}
	r.text(content)
}

func (r *Renderer) OnRawText(content string, s syntax.Syntax) {
	if s.Type == syntax.TypePlain {
		r.text(content)
	}
}
