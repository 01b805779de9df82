// Package syntax identifies markup syntaxes such as "xwiki/2.1".
package syntax

import (
	"fmt"
	"strings"
)

// Type is a syntax family, e.g. xwiki or markdown.
type Type struct {
	ID   string
	Name string
}

// Syntax is a syntax family at a given version.
type Syntax struct {
	Type    Type
	Version string
}

var (
	TypeXWiki    = Type{ID: "xwiki", Name: "XWiki"}
	TypeXHTML    = Type{ID: "xhtml", Name: "XHTML"}
	TypeHTML     = Type{ID: "html", Name: "HTML"}
	TypeMarkdown = Type{ID: "markdown", Name: "Markdown"}
	TypePlain    = Type{ID: "plain", Name: "Plain"}
	TypeEvent    = Type{ID: "event", Name: "Event"}
)

var (
	XWiki21    = Syntax{Type: TypeXWiki, Version: "2.1"}
	XHTML10    = Syntax{Type: TypeXHTML, Version: "1.0"}
	HTML50     = Syntax{Type: TypeHTML, Version: "5.0"}
	Markdown12 = Syntax{Type: TypeMarkdown, Version: "1.2"}
	Plain10    = Syntax{Type: TypePlain, Version: "1.0"}
	Event10    = Syntax{Type: TypeEvent, Version: "1.0"}
)

var known = []Syntax{XWiki21, XHTML10, HTML50, Markdown12, Plain10, Event10}

// String returns the syntax id, e.g. "xwiki/2.1".
func (s Syntax) String() string {
	return s.Type.ID + "/" + s.Version
}

// IsZero reports whether s is the zero Syntax.
func (s Syntax) IsZero() bool {
	return s.Type.ID == "" && s.Version == ""
}

// Parse converts a syntax id such as "xwiki/2.1" into a Syntax. Known ids
// get their display name; unknown ones are accepted with the id as name.
func Parse(id string) (Syntax, error) {
	id = strings.TrimSpace(id)
	slash := strings.IndexByte(id, '/')
	if slash <= 0 || slash == len(id)-1 {
		return Syntax{}, fmt.Errorf("invalid syntax id %q: expected <type>/<version>", id)
	}

	typeID, version := strings.ToLower(id[:slash]), id[slash+1:]
	for _, s := range known {
		if s.Type.ID == typeID && s.Version == version {
			return s, nil
		}
	}

	return Syntax{Type: Type{ID: typeID, Name: typeID}, Version: version}, nil
}

// MustParse is Parse that panics on malformed ids.
func MustParse(id string) Syntax {
	s, err := Parse(id)
	if err != nil {
		panic(err)
	}
	return s
}

// Known reports whether s is one of the syntaxes shipped with wikicore.
func Known(s Syntax) bool {
	for _, k := range known {
		if k == s {
			return true
		}
	}
	return false
}

// All returns the syntaxes shipped with wikicore.
func All() []Syntax {
	return append([]Syntax(nil), known...)
}
