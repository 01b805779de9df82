// Package listener defines the push-style begin/end/on event protocol shared
// by every syntax parser, the tree builder, transformations and renderers.
//
// Every Begin call must be matched by exactly one End call at the same
// nesting depth before the enclosing scope closes. On calls are leaves.
package listener

import (
	"github.com/conneroisu/wikicore/internal/params"
	"github.com/conneroisu/wikicore/internal/reference"
	"github.com/conneroisu/wikicore/internal/syntax"
)

// Format is an inline text style.
type Format int

const (
	FormatNone Format = iota
	FormatBold
	FormatItalic
	FormatUnderlined
	FormatStrikedout
	FormatSuperscript
	FormatSubscript
	FormatMonospace
)

var formatNames = [...]string{"NONE", "BOLD", "ITALIC", "UNDERLINED", "STRIKEDOUT", "SUPERSCRIPT", "SUBSCRIPT", "MONOSPACE"}

func (f Format) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return "UNKNOWN"
	}
	return formatNames[f]
}

// ListType distinguishes bulleted from numbered lists.
type ListType int

const (
	ListBulleted ListType = iota
	ListNumbered
)

func (t ListType) String() string {
	if t == ListNumbered {
		return "NUMBERED"
	}
	return "BULLETED"
}

// HeaderLevel is a heading level from 1 to 6.
type HeaderLevel int

// MetaData carries document level information such as the source syntax.
type MetaData = params.Map

// Metadata keys.
const (
	MetaSyntax = "syntax"
	MetaSource = "source"
)

// Listener receives the parse events of a document.
type Listener interface {
	BeginDocument(meta *MetaData)
	EndDocument(meta *MetaData)

	BeginGroup(p *params.Map)
	EndGroup(p *params.Map)

	BeginFormat(f Format, p *params.Map)
	EndFormat(f Format, p *params.Map)

	BeginParagraph(p *params.Map)
	EndParagraph(p *params.Map)

	BeginList(t ListType, p *params.Map)
	EndList(t ListType, p *params.Map)
	BeginListItem(p *params.Map)
	EndListItem(p *params.Map)

	BeginDefinitionList(p *params.Map)
	EndDefinitionList(p *params.Map)
	BeginDefinitionTerm()
	EndDefinitionTerm()
	BeginDefinitionDescription()
	EndDefinitionDescription()

	BeginQuotation(p *params.Map)
	EndQuotation(p *params.Map)
	BeginQuotationLine()
	EndQuotationLine()

	BeginSection(p *params.Map)
	EndSection(p *params.Map)
	BeginHeader(level HeaderLevel, id string, p *params.Map)
	EndHeader(level HeaderLevel, id string, p *params.Map)

	BeginTable(p *params.Map)
	EndTable(p *params.Map)
	BeginTableRow(p *params.Map)
	EndTableRow(p *params.Map)
	BeginTableCell(p *params.Map)
	EndTableCell(p *params.Map)
	BeginTableHeadCell(p *params.Map)
	EndTableHeadCell(p *params.Map)

	BeginLink(ref *reference.ResourceReference, freestanding bool, p *params.Map)
	EndLink(ref *reference.ResourceReference, freestanding bool, p *params.Map)

	BeginMacroMarker(id string, p *params.Map, content string, inline bool)
	EndMacroMarker(id string, p *params.Map, content string, inline bool)

	OnMacro(id string, p *params.Map, content string, inline bool)
	OnWord(word string)
	OnSpace()
	OnSpecialSymbol(symbol rune)
	OnNewLine()
	OnHorizontalLine(p *params.Map)
	OnEmptyLines(count int)
	OnVerbatim(content string, inline bool, p *params.Map)
	OnRawText(content string, s syntax.Syntax)
	OnId(name string)
	OnImage(ref *reference.ResourceReference, freestanding bool, p *params.Map)
}

// IsSpecialSymbol reports whether r is emitted as OnSpecialSymbol rather than
// as part of a word. Any printable ASCII character that is not a letter or a
// digit qualifies.
func IsSpecialSymbol(r rune) bool {
	if r <= ' ' || r >= 0x7f {
		return false
	}
	return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
}
