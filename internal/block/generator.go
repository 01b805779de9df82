package block

import (
	"fmt"

	"github.com/conneroisu/wikicore/internal/errors"
	"github.com/conneroisu/wikicore/internal/listener"
	"github.com/conneroisu/wikicore/internal/params"
	"github.com/conneroisu/wikicore/internal/reference"
	"github.com/conneroisu/wikicore/internal/syntax"
)

// entry is one slot of the Generator stack: either a scope marker opened by
// a begin event or a finished block.
type entry struct {
	marker bool
	kind   listener.Kind
	block  Block
}

// Generator is a Listener that builds a Block tree from an event stream.
// Begin events push a marker; leaf events push blocks; end events pop back
// to the matching marker and push the container built from the popped
// blocks. It is not safe for concurrent use.
type Generator struct {
	stack []entry
	root  *XDOM
	err   error
}

var _ listener.Listener = (*Generator)(nil)

// NewGenerator returns an empty Generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// XDOM returns the document built from a complete stream.
func (g *Generator) XDOM() (*XDOM, error) {
	if g.err != nil {
		return nil, g.err
	}
	if g.root == nil {
		if g.open() > 0 {
			return nil, g.fail("unterminated %s", g.lastMarker())
		}
		return nil, g.fail("no document in event stream")
	}
	return g.root, nil
}

// Blocks returns the top-level blocks of a fragment stream that has no
// document events.
func (g *Generator) Blocks() ([]Block, error) {
	if g.err != nil {
		return nil, g.err
	}
	if g.root != nil {
		return []Block{g.root}, nil
	}
	if g.open() > 0 {
		return nil, g.fail("unterminated %s", g.lastMarker())
	}
	out := make([]Block, len(g.stack))
	for i, e := range g.stack {
		out[i] = e.block
	}
	return out, nil
}

// Err returns the first error met while building.
func (g *Generator) Err() error {
	return g.err
}

func (g *Generator) fail(format string, args ...interface{}) error {
	if g.err == nil {
		g.err = errors.NewParseError(errors.ErrCodeUnbalancedEvents, fmt.Sprintf(format, args...), nil)
	}
	return g.err
}

func (g *Generator) open() int {
	n := 0
	for _, e := range g.stack {
		if e.marker {
			n++
		}
	}
	return n
}

func (g *Generator) lastMarker() listener.Kind {
	for i := len(g.stack) - 1; i >= 0; i-- {
		if g.stack[i].marker {
			return g.stack[i].kind
		}
	}
	return -1
}

func (g *Generator) begin(kind listener.Kind) {
	if g.err != nil {
		return
	}
	if g.root != nil {
		g.fail("%s after end of document", kind)
		return
	}
	g.stack = append(g.stack, entry{marker: true, kind: kind})
}

func (g *Generator) push(b Block) {
	if g.err != nil {
		return
	}
	if g.root != nil {
		g.fail("content after end of document")
		return
	}
	g.stack = append(g.stack, entry{block: b})
}

// end pops the children of the innermost scope, in document order. The
// scope must have been opened by the begin event matching kind.
func (g *Generator) end(kind listener.Kind) ([]Block, bool) {
	if g.err != nil {
		return nil, false
	}
	i := len(g.stack) - 1
	for i >= 0 && !g.stack[i].marker {
		i--
	}
	if i < 0 {
		g.fail("%s without matching begin", kind)
		return nil, false
	}
	if want := kind.Begin(); g.stack[i].kind != want {
		g.fail("%s does not close %s", kind, g.stack[i].kind)
		return nil, false
	}

	children := make([]Block, 0, len(g.stack)-i-1)
	for _, e := range g.stack[i+1:] {
		children = append(children, e.block)
	}
	g.stack = g.stack[:i]
	return children, true
}

func (g *Generator) BeginDocument(*listener.MetaData) { g.begin(listener.KindBeginDocument) }

func (g *Generator) EndDocument(meta *listener.MetaData) {
	children, ok := g.end(listener.KindEndDocument)
	if !ok {
		return
	}
	doc := NewXDOM(children, meta)
	if len(g.stack) == 0 {
		g.root = doc
		return
	}
	g.push(doc)
}

func (g *Generator) BeginGroup(*params.Map) { g.begin(listener.KindBeginGroup) }

func (g *Generator) EndGroup(p *params.Map) {
	if children, ok := g.end(listener.KindEndGroup); ok {
		g.push(NewGroup(children, p))
	}
}

func (g *Generator) BeginFormat(listener.Format, *params.Map) { g.begin(listener.KindBeginFormat) }

// EndFormat splices the children back into the parent scope when the pair
// carries neither a style nor parameters.
func (g *Generator) EndFormat(f listener.Format, p *params.Map) {
	children, ok := g.end(listener.KindEndFormat)
	if !ok {
		return
	}
	if f == listener.FormatNone && p.Len() == 0 {
		for _, c := range children {
			g.push(c)
		}
		return
	}
	g.push(NewFormat(f, children, p))
}

func (g *Generator) BeginParagraph(*params.Map) { g.begin(listener.KindBeginParagraph) }

func (g *Generator) EndParagraph(p *params.Map) {
	if children, ok := g.end(listener.KindEndParagraph); ok {
		g.push(NewParagraph(children, p))
	}
}

func (g *Generator) BeginList(listener.ListType, *params.Map) { g.begin(listener.KindBeginList) }

func (g *Generator) EndList(t listener.ListType, p *params.Map) {
	if children, ok := g.end(listener.KindEndList); ok {
		g.push(NewList(t, children, p))
	}
}

func (g *Generator) BeginListItem(*params.Map) { g.begin(listener.KindBeginListItem) }

func (g *Generator) EndListItem(p *params.Map) {
	if children, ok := g.end(listener.KindEndListItem); ok {
		g.push(NewListItem(children, p))
	}
}

func (g *Generator) BeginDefinitionList(*params.Map) { g.begin(listener.KindBeginDefinitionList) }

func (g *Generator) EndDefinitionList(p *params.Map) {
	if children, ok := g.end(listener.KindEndDefinitionList); ok {
		g.push(NewDefinitionList(children, p))
	}
}

func (g *Generator) BeginDefinitionTerm() { g.begin(listener.KindBeginDefinitionTerm) }

func (g *Generator) EndDefinitionTerm() {
	if children, ok := g.end(listener.KindEndDefinitionTerm); ok {
		g.push(NewDefinitionTerm(children))
	}
}

func (g *Generator) BeginDefinitionDescription() { g.begin(listener.KindBeginDefinitionDescription) }

func (g *Generator) EndDefinitionDescription() {
	if children, ok := g.end(listener.KindEndDefinitionDescription); ok {
		g.push(NewDefinitionDescription(children))
	}
}

func (g *Generator) BeginQuotation(*params.Map) { g.begin(listener.KindBeginQuotation) }

func (g *Generator) EndQuotation(p *params.Map) {
	if children, ok := g.end(listener.KindEndQuotation); ok {
		g.push(NewQuotation(children, p))
	}
}

func (g *Generator) BeginQuotationLine() { g.begin(listener.KindBeginQuotationLine) }

func (g *Generator) EndQuotationLine() {
	if children, ok := g.end(listener.KindEndQuotationLine); ok {
		g.push(NewQuotationLine(children))
	}
}

func (g *Generator) BeginSection(*params.Map) { g.begin(listener.KindBeginSection) }

func (g *Generator) EndSection(p *params.Map) {
	if children, ok := g.end(listener.KindEndSection); ok {
		g.push(NewSection(children, p))
	}
}

func (g *Generator) BeginHeader(listener.HeaderLevel, string, *params.Map) {
	g.begin(listener.KindBeginHeader)
}

func (g *Generator) EndHeader(level listener.HeaderLevel, id string, p *params.Map) {
	if children, ok := g.end(listener.KindEndHeader); ok {
		g.push(NewHeader(level, id, children, p))
	}
}

func (g *Generator) BeginTable(*params.Map) { g.begin(listener.KindBeginTable) }

func (g *Generator) EndTable(p *params.Map) {
	if children, ok := g.end(listener.KindEndTable); ok {
		g.push(NewTable(children, p))
	}
}

func (g *Generator) BeginTableRow(*params.Map) { g.begin(listener.KindBeginTableRow) }

func (g *Generator) EndTableRow(p *params.Map) {
	if children, ok := g.end(listener.KindEndTableRow); ok {
		g.push(NewTableRow(children, p))
	}
}

func (g *Generator) BeginTableCell(*params.Map) { g.begin(listener.KindBeginTableCell) }

func (g *Generator) EndTableCell(p *params.Map) {
	if children, ok := g.end(listener.KindEndTableCell); ok {
		g.push(NewTableCell(children, p))
	}
}

func (g *Generator) BeginTableHeadCell(*params.Map) { g.begin(listener.KindBeginTableHeadCell) }

func (g *Generator) EndTableHeadCell(p *params.Map) {
	if children, ok := g.end(listener.KindEndTableHeadCell); ok {
		g.push(NewTableHeadCell(children, p))
	}
}

func (g *Generator) BeginLink(*reference.ResourceReference, bool, *params.Map) {
	g.begin(listener.KindBeginLink)
}

func (g *Generator) EndLink(ref *reference.ResourceReference, freestanding bool, p *params.Map) {
	if children, ok := g.end(listener.KindEndLink); ok {
		g.push(NewLink(ref, freestanding, children, p))
	}
}

func (g *Generator) BeginMacroMarker(string, *params.Map, string, bool) {
	g.begin(listener.KindBeginMacroMarker)
}

func (g *Generator) EndMacroMarker(id string, p *params.Map, content string, inline bool) {
	if children, ok := g.end(listener.KindEndMacroMarker); ok {
		g.push(NewMacroMarker(id, p, content, inline, children))
	}
}

func (g *Generator) OnMacro(id string, p *params.Map, content string, inline bool) {
	g.push(NewMacro(id, p, content, inline))
}

func (g *Generator) OnWord(word string)          { g.push(NewWord(word)) }
func (g *Generator) OnSpace()                    { g.push(NewSpace()) }
func (g *Generator) OnSpecialSymbol(symbol rune) { g.push(NewSpecialSymbol(symbol)) }
func (g *Generator) OnNewLine()                  { g.push(NewNewLine()) }
func (g *Generator) OnHorizontalLine(p *params.Map) {
	g.push(NewHorizontalLine(p))
}
func (g *Generator) OnEmptyLines(count int) { g.push(NewEmptyLines(count)) }

func (g *Generator) OnVerbatim(content string, inline bool, p *params.Map) {
	g.push(NewVerbatim(content, inline, p))
}

func (g *Generator) OnRawText(content string, s syntax.Syntax) { g.push(NewRaw(content, s)) }

func (g *Generator) OnId(name string) { g.push(NewId(name)) }

func (g *Generator) OnImage(ref *reference.ResourceReference, freestanding bool, p *params.Map) {
	g.push(NewImage(ref, freestanding, p))
}
