package listener

import (
	"github.com/conneroisu/wikicore/internal/params"
	"github.com/conneroisu/wikicore/internal/reference"
	"github.com/conneroisu/wikicore/internal/syntax"
)

// Base implements Listener with no-ops. Embed it to handle a subset of
// events.
type Base struct{}

var _ Listener = Base{}

func (Base) BeginDocument(*MetaData)                                   {}
func (Base) EndDocument(*MetaData)                                     {}
func (Base) BeginGroup(*params.Map)                                    {}
func (Base) EndGroup(*params.Map)                                      {}
func (Base) BeginFormat(Format, *params.Map)                           {}
func (Base) EndFormat(Format, *params.Map)                             {}
func (Base) BeginParagraph(*params.Map)                                {}
func (Base) EndParagraph(*params.Map)                                  {}
func (Base) BeginList(ListType, *params.Map)                           {}
func (Base) EndList(ListType, *params.Map)                             {}
func (Base) BeginListItem(*params.Map)                                 {}
func (Base) EndListItem(*params.Map)                                   {}
func (Base) BeginDefinitionList(*params.Map)                           {}
func (Base) EndDefinitionList(*params.Map)                             {}
func (Base) BeginDefinitionTerm()                                      {}
func (Base) EndDefinitionTerm()                                        {}
func (Base) BeginDefinitionDescription()                               {}
func (Base) EndDefinitionDescription()                                 {}
func (Base) BeginQuotation(*params.Map)                                {}
func (Base) EndQuotation(*params.Map)                                  {}
func (Base) BeginQuotationLine()                                       {}
func (Base) EndQuotationLine()                                         {}
func (Base) BeginSection(*params.Map)                                  {}
func (Base) EndSection(*params.Map)                                    {}
func (Base) BeginHeader(HeaderLevel, string, *params.Map)              {}
func (Base) EndHeader(HeaderLevel, string, *params.Map)                {}
func (Base) BeginTable(*params.Map)                                    {}
func (Base) EndTable(*params.Map)                                      {}
func (Base) BeginTableRow(*params.Map)                                 {}
func (Base) EndTableRow(*params.Map)                                   {}
func (Base) BeginTableCell(*params.Map)                                {}
func (Base) EndTableCell(*params.Map)                                  {}
func (Base) BeginTableHeadCell(*params.Map)                            {}
func (Base) EndTableHeadCell(*params.Map)                              {}
func (Base) BeginLink(*reference.ResourceReference, bool, *params.Map) {}
func (Base) EndLink(*reference.ResourceReference, bool, *params.Map)   {}
func (Base) BeginMacroMarker(string, *params.Map, string, bool)        {}
func (Base) EndMacroMarker(string, *params.Map, string, bool)          {}
func (Base) OnMacro(string, *params.Map, string, bool)                 {}
func (Base) OnWord(string)                                             {}
func (Base) OnSpace()                                                  {}
func (Base) OnSpecialSymbol(rune)                                      {}
func (Base) OnNewLine()                                                {}
func (Base) OnHorizontalLine(*params.Map)                              {}
func (Base) OnEmptyLines(int)                                          {}
func (Base) OnVerbatim(string, bool, *params.Map)                      {}
func (Base) OnRawText(string, syntax.Syntax)                           {}
func (Base) OnId(string)                                               {}
func (Base) OnImage(*reference.ResourceReference, bool, *params.Map)   {}
