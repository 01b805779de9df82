package block

import (
	"github.com/conneroisu/wikicore/internal/listener"
	"github.com/conneroisu/wikicore/internal/params"
	"github.com/conneroisu/wikicore/internal/reference"
	"github.com/conneroisu/wikicore/internal/syntax"
)

// XDOM is the root of a parsed document. Its parameters are the document
// metadata.
type XDOM struct{ base }

// NewXDOM creates a document root.
func NewXDOM(children []Block, meta *listener.MetaData) *XDOM {
	b := &XDOM{}
	b.init(b, children, meta)
	return b
}

func (b *XDOM) BeforeTraverse(l listener.Listener) { l.BeginDocument(b.params) }
func (b *XDOM) AfterTraverse(l listener.Listener)  { l.EndDocument(b.params) }

// Syntax returns the source syntax recorded in the metadata.
func (b *XDOM) Syntax() syntax.Syntax {
	s, err := syntax.Parse(b.Parameter(listener.MetaSyntax))
	if err != nil {
		return syntax.Syntax{}
	}
	return s
}

// Group is an anonymous container, "(((...)))" in xwiki syntax.
type Group struct{ base }

func NewGroup(children []Block, p *params.Map) *Group {
	b := &Group{}
	b.init(b, children, p)
	return b
}

func (b *Group) BeforeTraverse(l listener.Listener) { l.BeginGroup(b.params) }
func (b *Group) AfterTraverse(l listener.Listener)  { l.EndGroup(b.params) }

// Format applies an inline style to its children.
type Format struct {
	base
	Format listener.Format
}

func NewFormat(f listener.Format, children []Block, p *params.Map) *Format {
	b := &Format{Format: f}
	b.init(b, children, p)
	return b
}

func (b *Format) BeforeTraverse(l listener.Listener) { l.BeginFormat(b.Format, b.params) }
func (b *Format) AfterTraverse(l listener.Listener)  { l.EndFormat(b.Format, b.params) }

type Paragraph struct{ base }

func NewParagraph(children []Block, p *params.Map) *Paragraph {
	b := &Paragraph{}
	b.init(b, children, p)
	return b
}

func (b *Paragraph) BeforeTraverse(l listener.Listener) { l.BeginParagraph(b.params) }
func (b *Paragraph) AfterTraverse(l listener.Listener)  { l.EndParagraph(b.params) }

type List struct {
	base
	Type listener.ListType
}

func NewList(t listener.ListType, children []Block, p *params.Map) *List {
	b := &List{Type: t}
	b.init(b, children, p)
	return b
}

func (b *List) BeforeTraverse(l listener.Listener) { l.BeginList(b.Type, b.params) }
func (b *List) AfterTraverse(l listener.Listener)  { l.EndList(b.Type, b.params) }

type ListItem struct{ base }

func NewListItem(children []Block, p *params.Map) *ListItem {
	b := &ListItem{}
	b.init(b, children, p)
	return b
}

func (b *ListItem) BeforeTraverse(l listener.Listener) { l.BeginListItem(b.params) }
func (b *ListItem) AfterTraverse(l listener.Listener)  { l.EndListItem(b.params) }

type DefinitionList struct{ base }

func NewDefinitionList(children []Block, p *params.Map) *DefinitionList {
	b := &DefinitionList{}
	b.init(b, children, p)
	return b
}

func (b *DefinitionList) BeforeTraverse(l listener.Listener) { l.BeginDefinitionList(b.params) }
func (b *DefinitionList) AfterTraverse(l listener.Listener)  { l.EndDefinitionList(b.params) }

type DefinitionTerm struct{ base }

func NewDefinitionTerm(children []Block) *DefinitionTerm {
	b := &DefinitionTerm{}
	b.init(b, children, nil)
	return b
}

func (b *DefinitionTerm) BeforeTraverse(l listener.Listener) { l.BeginDefinitionTerm() }
func (b *DefinitionTerm) AfterTraverse(l listener.Listener)  { l.EndDefinitionTerm() }

type DefinitionDescription struct{ base }

func NewDefinitionDescription(children []Block) *DefinitionDescription {
	b := &DefinitionDescription{}
	b.init(b, children, nil)
	return b
}

func (b *DefinitionDescription) BeforeTraverse(l listener.Listener) {
	l.BeginDefinitionDescription()
}
func (b *DefinitionDescription) AfterTraverse(l listener.Listener) { l.EndDefinitionDescription() }

type Quotation struct{ base }

func NewQuotation(children []Block, p *params.Map) *Quotation {
	b := &Quotation{}
	b.init(b, children, p)
	return b
}

func (b *Quotation) BeforeTraverse(l listener.Listener) { l.BeginQuotation(b.params) }
func (b *Quotation) AfterTraverse(l listener.Listener)  { l.EndQuotation(b.params) }

type QuotationLine struct{ base }

func NewQuotationLine(children []Block) *QuotationLine {
	b := &QuotationLine{}
	b.init(b, children, nil)
	return b
}

func (b *QuotationLine) BeforeTraverse(l listener.Listener) { l.BeginQuotationLine() }
func (b *QuotationLine) AfterTraverse(l listener.Listener)  { l.EndQuotationLine() }

// Section groups a Header with the content up to the next header of the same
// or a higher level.
type Section struct{ base }

func NewSection(children []Block, p *params.Map) *Section {
	b := &Section{}
	b.init(b, children, p)
	return b
}

func (b *Section) BeforeTraverse(l listener.Listener) { l.BeginSection(b.params) }
func (b *Section) AfterTraverse(l listener.Listener)  { l.EndSection(b.params) }

type Header struct {
	base
	Level listener.HeaderLevel
	ID    string
}

func NewHeader(level listener.HeaderLevel, id string, children []Block, p *params.Map) *Header {
	b := &Header{Level: level, ID: id}
	b.init(b, children, p)
	return b
}

func (b *Header) BeforeTraverse(l listener.Listener) { l.BeginHeader(b.Level, b.ID, b.params) }
func (b *Header) AfterTraverse(l listener.Listener)  { l.EndHeader(b.Level, b.ID, b.params) }

type Table struct{ base }

func NewTable(children []Block, p *params.Map) *Table {
	b := &Table{}
	b.init(b, children, p)
	return b
}

func (b *Table) BeforeTraverse(l listener.Listener) { l.BeginTable(b.params) }
func (b *Table) AfterTraverse(l listener.Listener)  { l.EndTable(b.params) }

type TableRow struct{ base }

func NewTableRow(children []Block, p *params.Map) *TableRow {
	b := &TableRow{}
	b.init(b, children, p)
	return b
}

func (b *TableRow) BeforeTraverse(l listener.Listener) { l.BeginTableRow(b.params) }
func (b *TableRow) AfterTraverse(l listener.Listener)  { l.EndTableRow(b.params) }

type TableCell struct{ base }

func NewTableCell(children []Block, p *params.Map) *TableCell {
	b := &TableCell{}
	b.init(b, children, p)
	return b
}

func (b *TableCell) BeforeTraverse(l listener.Listener) { l.BeginTableCell(b.params) }
func (b *TableCell) AfterTraverse(l listener.Listener)  { l.EndTableCell(b.params) }

type TableHeadCell struct{ base }

func NewTableHeadCell(children []Block, p *params.Map) *TableHeadCell {
	b := &TableHeadCell{}
	b.init(b, children, p)
	return b
}

func (b *TableHeadCell) BeforeTraverse(l listener.Listener) { l.BeginTableHeadCell(b.params) }
func (b *TableHeadCell) AfterTraverse(l listener.Listener)  { l.EndTableHeadCell(b.params) }

// Link points to a resource. Its children are the label; an empty label is
// generated by the renderer.
type Link struct {
	base
	Reference    *reference.ResourceReference
	Freestanding bool
}

func NewLink(ref *reference.ResourceReference, freestanding bool, children []Block, p *params.Map) *Link {
	b := &Link{Reference: ref, Freestanding: freestanding}
	b.init(b, children, p)
	return b
}

func (b *Link) BeforeTraverse(l listener.Listener) {
	l.BeginLink(b.Reference, b.Freestanding, b.params)
}

func (b *Link) AfterTraverse(l listener.Listener) {
	l.EndLink(b.Reference, b.Freestanding, b.params)
}

// MacroMarker wraps the blocks a macro expanded to, keeping the original
// macro call so the content can be serialized back.
type MacroMarker struct {
	base
	ID      string
	Content string
	Inline  bool
}

func NewMacroMarker(id string, p *params.Map, content string, inline bool, children []Block) *MacroMarker {
	b := &MacroMarker{ID: id, Content: content, Inline: inline}
	b.init(b, children, p)
	return b
}

func (b *MacroMarker) BeforeTraverse(l listener.Listener) {
	l.BeginMacroMarker(b.ID, b.params, b.Content, b.Inline)
}

func (b *MacroMarker) AfterTraverse(l listener.Listener) {
	l.EndMacroMarker(b.ID, b.params, b.Content, b.Inline)
}

// leaf provides the empty AfterTraverse of leaf blocks.
type leaf struct{ base }

func (leaf) AfterTraverse(listener.Listener) {}

func (*leaf) AddChild(Block) error { return ErrLeaf }

// Macro is an unexpanded macro call. Parameter order is preserved.
type Macro struct {
	leaf
	ID      string
	Content string
	Inline  bool
}

func NewMacro(id string, p *params.Map, content string, inline bool) *Macro {
	b := &Macro{ID: id, Content: content, Inline: inline}
	b.init(b, nil, p)
	return b
}

func (b *Macro) BeforeTraverse(l listener.Listener) { l.OnMacro(b.ID, b.params, b.Content, b.Inline) }

type Word struct {
	leaf
	Text string
}

func NewWord(text string) *Word {
	b := &Word{Text: text}
	b.init(b, nil, nil)
	return b
}

func (b *Word) BeforeTraverse(l listener.Listener) { l.OnWord(b.Text) }

type Space struct{ leaf }

func NewSpace() *Space {
	b := &Space{}
	b.init(b, nil, nil)
	return b
}

func (b *Space) BeforeTraverse(l listener.Listener) { l.OnSpace() }

type SpecialSymbol struct {
	leaf
	Symbol rune
}

func NewSpecialSymbol(r rune) *SpecialSymbol {
	b := &SpecialSymbol{Symbol: r}
	b.init(b, nil, nil)
	return b
}

func (b *SpecialSymbol) BeforeTraverse(l listener.Listener) { l.OnSpecialSymbol(b.Symbol) }

// NewLine is a forced line break.
type NewLine struct{ leaf }

func NewNewLine() *NewLine {
	b := &NewLine{}
	b.init(b, nil, nil)
	return b
}

func (b *NewLine) BeforeTraverse(l listener.Listener) { l.OnNewLine() }

type HorizontalLine struct{ leaf }

func NewHorizontalLine(p *params.Map) *HorizontalLine {
	b := &HorizontalLine{}
	b.init(b, nil, p)
	return b
}

func (b *HorizontalLine) BeforeTraverse(l listener.Listener) { l.OnHorizontalLine(b.params) }

type EmptyLines struct {
	leaf
	Count int
}

func NewEmptyLines(count int) *EmptyLines {
	b := &EmptyLines{Count: count}
	b.init(b, nil, nil)
	return b
}

func (b *EmptyLines) BeforeTraverse(l listener.Listener) { l.OnEmptyLines(b.Count) }

type Verbatim struct {
	leaf
	Content string
	Inline  bool
}

func NewVerbatim(content string, inline bool, p *params.Map) *Verbatim {
	b := &Verbatim{Content: content, Inline: inline}
	b.init(b, nil, p)
	return b
}

func (b *Verbatim) BeforeTraverse(l listener.Listener) { l.OnVerbatim(b.Content, b.Inline, b.params) }

// Raw is content in a target syntax passed through untouched by renderers of
// that syntax.
type Raw struct {
	leaf
	Content string
	Syntax  syntax.Syntax
}

func NewRaw(content string, s syntax.Syntax) *Raw {
	b := &Raw{Content: content, Syntax: s}
	b.init(b, nil, nil)
	return b
}

func (b *Raw) BeforeTraverse(l listener.Listener) { l.OnRawText(b.Content, b.Syntax) }

// Id is an anchor target.
type Id struct {
	leaf
	Name string
}

func NewId(name string) *Id {
	b := &Id{Name: name}
	b.init(b, nil, nil)
	return b
}

func (b *Id) BeforeTraverse(l listener.Listener) { l.OnId(b.Name) }

type Image struct {
	leaf
	Reference    *reference.ResourceReference
	Freestanding bool
}

func NewImage(ref *reference.ResourceReference, freestanding bool, p *params.Map) *Image {
	b := &Image{Reference: ref, Freestanding: freestanding}
	b.init(b, nil, p)
	return b
}

func (b *Image) BeforeTraverse(l listener.Listener) {
	l.OnImage(b.Reference, b.Freestanding, b.params)
}
