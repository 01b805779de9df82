package listener

import (
	"fmt"
	"strings"

	"github.com/conneroisu/wikicore/internal/params"
	"github.com/conneroisu/wikicore/internal/reference"
	"github.com/conneroisu/wikicore/internal/syntax"
)

// Kind identifies one Listener method.
type Kind int

const (
	KindBeginDocument Kind = iota
	KindEndDocument
	KindBeginGroup
	KindEndGroup
	KindBeginFormat
	KindEndFormat
	KindBeginParagraph
	KindEndParagraph
	KindBeginList
	KindEndList
	KindBeginListItem
	KindEndListItem
	KindBeginDefinitionList
	KindEndDefinitionList
	KindBeginDefinitionTerm
	KindEndDefinitionTerm
	KindBeginDefinitionDescription
	KindEndDefinitionDescription
	KindBeginQuotation
	KindEndQuotation
	KindBeginQuotationLine
	KindEndQuotationLine
	KindBeginSection
	KindEndSection
	KindBeginHeader
	KindEndHeader
	KindBeginTable
	KindEndTable
	KindBeginTableRow
	KindEndTableRow
	KindBeginTableCell
	KindEndTableCell
	KindBeginTableHeadCell
	KindEndTableHeadCell
	KindBeginLink
	KindEndLink
	KindBeginMacroMarker
	KindEndMacroMarker
	KindOnMacro
	KindOnWord
	KindOnSpace
	KindOnSpecialSymbol
	KindOnNewLine
	KindOnHorizontalLine
	KindOnEmptyLines
	KindOnVerbatim
	KindOnRawText
	KindOnId
	KindOnImage
)

var kindNames = [...]string{
	"beginDocument", "endDocument",
	"beginGroup", "endGroup",
	"beginFormat", "endFormat",
	"beginParagraph", "endParagraph",
	"beginList", "endList",
	"beginListItem", "endListItem",
	"beginDefinitionList", "endDefinitionList",
	"beginDefinitionTerm", "endDefinitionTerm",
	"beginDefinitionDescription", "endDefinitionDescription",
	"beginQuotation", "endQuotation",
	"beginQuotationLine", "endQuotationLine",
	"beginSection", "endSection",
	"beginHeader", "endHeader",
	"beginTable", "endTable",
	"beginTableRow", "endTableRow",
	"beginTableCell", "endTableCell",
	"beginTableHeadCell", "endTableHeadCell",
	"beginLink", "endLink",
	"beginMacroMarker", "endMacroMarker",
	"onMacro", "onWord", "onSpace", "onSpecialSymbol", "onNewLine",
	"onHorizontalLine", "onEmptyLines", "onVerbatim", "onRawText", "onId",
	"onImage",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// IsBegin reports whether k opens a scope.
func (k Kind) IsBegin() bool {
	return k <= KindBeginMacroMarker && k%2 == 0
}

// IsEnd reports whether k closes a scope.
func (k Kind) IsEnd() bool {
	return k <= KindEndMacroMarker && k%2 == 1
}

// Begin returns the begin kind matching an end kind.
func (k Kind) Begin() Kind {
	if k.IsEnd() {
		return k - 1
	}
	return k
}

// Event is one recorded Listener call. Only the fields relevant to Kind are
// set.
type Event struct {
	Kind         Kind
	Params       *params.Map
	Format       Format
	ListType     ListType
	Level        HeaderLevel
	ID           string
	Ref          *reference.ResourceReference
	Freestanding bool
	Content      string
	Inline       bool
	Symbol       rune
	Count        int
	Syntax       syntax.Syntax
}

// String renders the event as used by the event/1.0 syntax, e.g.
// "onWord [Hello]" or "beginFormat [BOLD]".
func (e Event) String() string {
	var args []string
	switch e.Kind {
	case KindBeginFormat, KindEndFormat:
		args = append(args, e.Format.String())
	case KindBeginList, KindEndList:
		args = append(args, e.ListType.String())
	case KindBeginHeader, KindEndHeader:
		args = append(args, fmt.Sprint(int(e.Level)), e.ID)
	case KindBeginLink, KindEndLink, KindOnImage:
		args = append(args, e.Ref.String(), fmt.Sprint(e.Freestanding))
	case KindBeginMacroMarker, KindEndMacroMarker, KindOnMacro:
		args = append(args, e.ID, e.Params.String(), e.Content)
		if e.Kind == KindOnMacro {
			return e.macroName() + " " + bracket(args)
		}
	case KindOnWord, KindOnId:
		args = append(args, e.Content)
	case KindOnSpecialSymbol:
		args = append(args, string(e.Symbol))
	case KindOnEmptyLines:
		args = append(args, fmt.Sprint(e.Count))
	case KindOnVerbatim:
		args = append(args, e.Content)
	case KindOnRawText:
		args = append(args, e.Content, e.Syntax.String())
	}
	if e.Params.Len() > 0 && e.Kind != KindBeginMacroMarker && e.Kind != KindEndMacroMarker {
		args = append(args, e.Params.String())
	}
	if len(args) == 0 {
		return e.kindName()
	}
	return e.kindName() + " " + bracket(args)
}

func (e Event) kindName() string {
	name := e.Kind.String()
	if e.Kind == KindOnVerbatim || e.Kind == KindBeginMacroMarker || e.Kind == KindEndMacroMarker {
		if e.Inline {
			return name + "Inline"
		}
		return name + "Standalone"
	}
	return name
}

func (e Event) macroName() string {
	if e.Inline {
		return "onMacroInline"
	}
	return "onMacroStandalone"
}

func bracket(args []string) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = "[" + a + "]"
	}
	return strings.Join(parts, " ")
}

// Queue records events so they can be replayed later. The zero value is
// ready to use. When Forward is set, events are handed to it instead of
// being recorded.
type Queue struct {
	Events  []Event
	Forward func(Event)
}

var _ Listener = (*Queue)(nil)

// Replay sends every recorded event to l in order.
func (q *Queue) Replay(l Listener) {
	for _, e := range q.Events {
		Dispatch(l, e)
	}
}

// Len returns the number of recorded events.
func (q *Queue) Len() int {
	return len(q.Events)
}

// Strings returns the event/1.0 form of every event.
func (q *Queue) Strings() []string {
	out := make([]string, len(q.Events))
	for i, e := range q.Events {
		out[i] = e.String()
	}
	return out
}

func (q *Queue) push(e Event) {
	if q.Forward != nil {
		q.Forward(e)
		return
	}
	q.Events = append(q.Events, e)
}

// Dispatch calls the Listener method described by e.
func Dispatch(l Listener, e Event) {
	switch e.Kind {
	case KindBeginDocument:
		l.BeginDocument(e.Params)
	case KindEndDocument:
		l.EndDocument(e.Params)
	case KindBeginGroup:
		l.BeginGroup(e.Params)
	case KindEndGroup:
		l.EndGroup(e.Params)
	case KindBeginFormat:
		l.BeginFormat(e.Format, e.Params)
	case KindEndFormat:
		l.EndFormat(e.Format, e.Params)
	case KindBeginParagraph:
		l.BeginParagraph(e.Params)
	case KindEndParagraph:
		l.EndParagraph(e.Params)
	case KindBeginList:
		l.BeginList(e.ListType, e.Params)
	case KindEndList:
		l.EndList(e.ListType, e.Params)
	case KindBeginListItem:
		l.BeginListItem(e.Params)
	case KindEndListItem:
		l.EndListItem(e.Params)
	case KindBeginDefinitionList:
		l.BeginDefinitionList(e.Params)
	case KindEndDefinitionList:
		l.EndDefinitionList(e.Params)
	case KindBeginDefinitionTerm:
		l.BeginDefinitionTerm()
	case KindEndDefinitionTerm:
		l.EndDefinitionTerm()
	case KindBeginDefinitionDescription:
		l.BeginDefinitionDescription()
	case KindEndDefinitionDescription:
		l.EndDefinitionDescription()
	case KindBeginQuotation:
		l.BeginQuotation(e.Params)
	case KindEndQuotation:
		l.EndQuotation(e.Params)
	case KindBeginQuotationLine:
		l.BeginQuotationLine()
	case KindEndQuotationLine:
		l.EndQuotationLine()
	case KindBeginSection:
		l.BeginSection(e.Params)
	case KindEndSection:
		l.EndSection(e.Params)
	case KindBeginHeader:
		l.BeginHeader(e.Level, e.ID, e.Params)
	case KindEndHeader:
		l.EndHeader(e.Level, e.ID, e.Params)
	case KindBeginTable:
		l.BeginTable(e.Params)
	case KindEndTable:
		l.EndTable(e.Params)
	case KindBeginTableRow:
		l.BeginTableRow(e.Params)
	case KindEndTableRow:
		l.EndTableRow(e.Params)
	case KindBeginTableCell:
		l.BeginTableCell(e.Params)
	case KindEndTableCell:
		l.EndTableCell(e.Params)
	case KindBeginTableHeadCell:
		l.BeginTableHeadCell(e.Params)
	case KindEndTableHeadCell:
		l.EndTableHeadCell(e.Params)
	case KindBeginLink:
		l.BeginLink(e.Ref, e.Freestanding, e.Params)
	case KindEndLink:
		l.EndLink(e.Ref, e.Freestanding, e.Params)
	case KindBeginMacroMarker:
		l.BeginMacroMarker(e.ID, e.Params, e.Content, e.Inline)
	case KindEndMacroMarker:
		l.EndMacroMarker(e.ID, e.Params, e.Content, e.Inline)
	case KindOnMacro:
		l.OnMacro(e.ID, e.Params, e.Content, e.Inline)
	case KindOnWord:
		l.OnWord(e.Content)
	case KindOnSpace:
		l.OnSpace()
	case KindOnSpecialSymbol:
		l.OnSpecialSymbol(e.Symbol)
	case KindOnNewLine:
		l.OnNewLine()
	case KindOnHorizontalLine:
		l.OnHorizontalLine(e.Params)
	case KindOnEmptyLines:
		l.OnEmptyLines(e.Count)
	case KindOnVerbatim:
		l.OnVerbatim(e.Content, e.Inline, e.Params)
	case KindOnRawText:
		l.OnRawText(e.Content, e.Syntax)
	case KindOnId:
		l.OnId(e.Content)
	case KindOnImage:
		l.OnImage(e.Ref, e.Freestanding, e.Params)
	}
}

func (q *Queue) BeginDocument(meta *MetaData) { q.push(Event{Kind: KindBeginDocument, Params: meta}) }
func (q *Queue) EndDocument(meta *MetaData)   { q.push(Event{Kind: KindEndDocument, Params: meta}) }
func (q *Queue) BeginGroup(p *params.Map)     { q.push(Event{Kind: KindBeginGroup, Params: p}) }
func (q *Queue) EndGroup(p *params.Map)       { q.push(Event{Kind: KindEndGroup, Params: p}) }

func (q *Queue) BeginFormat(f Format, p *params.Map) {
	q.push(Event{Kind: KindBeginFormat, Format: f, Params: p})
}

func (q *Queue) EndFormat(f Format, p *params.Map) {
	q.push(Event{Kind: KindEndFormat, Format: f, Params: p})
}

func (q *Queue) BeginParagraph(p *params.Map) { q.push(Event{Kind: KindBeginParagraph, Params: p}) }
func (q *Queue) EndParagraph(p *params.Map)   { q.push(Event{Kind: KindEndParagraph, Params: p}) }

func (q *Queue) BeginList(t ListType, p *params.Map) {
	q.push(Event{Kind: KindBeginList, ListType: t, Params: p})
}

func (q *Queue) EndList(t ListType, p *params.Map) {
	q.push(Event{Kind: KindEndList, ListType: t, Params: p})
}

func (q *Queue) BeginListItem(p *params.Map) { q.push(Event{Kind: KindBeginListItem, Params: p}) }
func (q *Queue) EndListItem(p *params.Map)   { q.push(Event{Kind: KindEndListItem, Params: p}) }

func (q *Queue) BeginDefinitionList(p *params.Map) {
	q.push(Event{Kind: KindBeginDefinitionList, Params: p})
}

func (q *Queue) EndDefinitionList(p *params.Map) {
	q.push(Event{Kind: KindEndDefinitionList, Params: p})
}

func (q *Queue) BeginDefinitionTerm()        { q.push(Event{Kind: KindBeginDefinitionTerm}) }
func (q *Queue) EndDefinitionTerm()          { q.push(Event{Kind: KindEndDefinitionTerm}) }
func (q *Queue) BeginDefinitionDescription() { q.push(Event{Kind: KindBeginDefinitionDescription}) }
func (q *Queue) EndDefinitionDescription()   { q.push(Event{Kind: KindEndDefinitionDescription}) }
func (q *Queue) BeginQuotation(p *params.Map) {
	q.push(Event{Kind: KindBeginQuotation, Params: p})
}
func (q *Queue) EndQuotation(p *params.Map) { q.push(Event{Kind: KindEndQuotation, Params: p}) }
func (q *Queue) BeginQuotationLine()        { q.push(Event{Kind: KindBeginQuotationLine}) }
func (q *Queue) EndQuotationLine()          { q.push(Event{Kind: KindEndQuotationLine}) }
func (q *Queue) BeginSection(p *params.Map) { q.push(Event{Kind: KindBeginSection, Params: p}) }
func (q *Queue) EndSection(p *params.Map)   { q.push(Event{Kind: KindEndSection, Params: p}) }

func (q *Queue) BeginHeader(level HeaderLevel, id string, p *params.Map) {
	q.push(Event{Kind: KindBeginHeader, Level: level, ID: id, Params: p})
}

func (q *Queue) EndHeader(level HeaderLevel, id string, p *params.Map) {
	q.push(Event{Kind: KindEndHeader, Level: level, ID: id, Params: p})
}

func (q *Queue) BeginTable(p *params.Map)    { q.push(Event{Kind: KindBeginTable, Params: p}) }
func (q *Queue) EndTable(p *params.Map)      { q.push(Event{Kind: KindEndTable, Params: p}) }
func (q *Queue) BeginTableRow(p *params.Map) { q.push(Event{Kind: KindBeginTableRow, Params: p}) }
func (q *Queue) EndTableRow(p *params.Map)   { q.push(Event{Kind: KindEndTableRow, Params: p}) }
func (q *Queue) BeginTableCell(p *params.Map) {
	q.push(Event{Kind: KindBeginTableCell, Params: p})
}
func (q *Queue) EndTableCell(p *params.Map) { q.push(Event{Kind: KindEndTableCell, Params: p}) }
func (q *Queue) BeginTableHeadCell(p *params.Map) {
	q.push(Event{Kind: KindBeginTableHeadCell, Params: p})
}
func (q *Queue) EndTableHeadCell(p *params.Map) {
	q.push(Event{Kind: KindEndTableHeadCell, Params: p})
}

func (q *Queue) BeginLink(ref *reference.ResourceReference, freestanding bool, p *params.Map) {
	q.push(Event{Kind: KindBeginLink, Ref: ref, Freestanding: freestanding, Params: p})
}

func (q *Queue) EndLink(ref *reference.ResourceReference, freestanding bool, p *params.Map) {
	q.push(Event{Kind: KindEndLink, Ref: ref, Freestanding: freestanding, Params: p})
}

func (q *Queue) BeginMacroMarker(id string, p *params.Map, content string, inline bool) {
	q.push(Event{Kind: KindBeginMacroMarker, ID: id, Params: p, Content: content, Inline: inline})
}

func (q *Queue) EndMacroMarker(id string, p *params.Map, content string, inline bool) {
	q.push(Event{Kind: KindEndMacroMarker, ID: id, Params: p, Content: content, Inline: inline})
}

func (q *Queue) OnMacro(id string, p *params.Map, content string, inline bool) {
	q.push(Event{Kind: KindOnMacro, ID: id, Params: p, Content: content, Inline: inline})
}

func (q *Queue) OnWord(word string)          { q.push(Event{Kind: KindOnWord, Content: word}) }
func (q *Queue) OnSpace()                    { q.push(Event{Kind: KindOnSpace}) }
func (q *Queue) OnSpecialSymbol(symbol rune) { q.push(Event{Kind: KindOnSpecialSymbol, Symbol: symbol}) }
func (q *Queue) OnNewLine()                  { q.push(Event{Kind: KindOnNewLine}) }
func (q *Queue) OnHorizontalLine(p *params.Map) {
	q.push(Event{Kind: KindOnHorizontalLine, Params: p})
}
func (q *Queue) OnEmptyLines(count int) { q.push(Event{Kind: KindOnEmptyLines, Count: count}) }

func (q *Queue) OnVerbatim(content string, inline bool, p *params.Map) {
	q.push(Event{Kind: KindOnVerbatim, Content: content, Inline: inline, Params: p})
}

func (q *Queue) OnRawText(content string, s syntax.Syntax) {
	q.push(Event{Kind: KindOnRawText, Content: content, Syntax: s})
}

func (q *Queue) OnId(name string) { q.push(Event{Kind: KindOnId, Content: name}) }

func (q *Queue) OnImage(ref *reference.ResourceReference, freestanding bool, p *params.Map) {
	q.push(Event{Kind: KindOnImage, Ref: ref, Freestanding: freestanding, Params: p})
}
