package model

import (
	"strings"

	"github.com/conneroisu/wikicore/internal/errors"
	"github.com/conneroisu/wikicore/internal/reference"
)

// Defaults fill the parts a relative reference leaves out when there is no
// base reference to take them from.
type Defaults struct {
	Wiki  string
	Space string
	Page  string
}

// DefaultDefaults are the names used by a fresh wiki.
var DefaultDefaults = Defaults{Wiki: "xwiki", Space: "Main", Page: "WebHome"}

// EntityResolver resolves a link or image target to the entity it points
// to, relative to a base entity.
type EntityResolver interface {
	// Resolve returns nil without error when ref does not point to a wiki
	// entity (URLs, mail addresses, interwiki links).
	Resolve(ref *reference.ResourceReference, base *EntityReference) (*EntityReference, error)
}

// Resolver is the default EntityResolver.
type Resolver struct {
	defaults Defaults
}

var _ EntityResolver = (*Resolver)(nil)

// NewResolver returns a resolver using d for missing parts.
func NewResolver(d Defaults) *Resolver {
	if d.Wiki == "" {
		d.Wiki = DefaultDefaults.Wiki
	}
	if d.Space == "" {
		d.Space = DefaultDefaults.Space
	}
	if d.Page == "" {
		d.Page = DefaultDefaults.Page
	}
	return &Resolver{defaults: d}
}

// Defaults returns the configured defaults.
func (r *Resolver) Defaults() Defaults {
	return r.defaults
}

func (r *Resolver) Resolve(ref *reference.ResourceReference, base *EntityReference) (*EntityReference, error) {
	if ref == nil {
		return nil, errors.NewParseError(errors.ErrCodeEmptyReference, "nil resource reference", nil)
	}
	switch ref.Type {
	case reference.Document:
		return r.ResolveDocument(ref.Reference, base), nil
	case reference.Page:
		return r.resolvePage(ref.Reference, base), nil
	case reference.Space:
		return r.ResolveSpace(ref.Reference, base), nil
	case reference.Attachment:
		return r.ResolveAttachment(ref.Reference, base), nil
	}
	return nil, nil
}

func (r *Resolver) baseWiki(base *EntityReference) string {
	if base != nil {
		if w := base.Wiki(); w != "" {
			return w
		}
	}
	return r.defaults.Wiki
}

func (r *Resolver) baseSpaces(base *EntityReference) []string {
	if base != nil {
		if s := base.Spaces(); len(s) > 0 {
			return s
		}
	}
	return []string{r.defaults.Space}
}

// cutWiki splits "wiki:rest". A ":" is only a wiki separator when it comes
// before the first unescaped ".".
func cutWiki(s string) (wiki, rest string) {
	before, after, found := cutEscaped(s, ':')
	if !found || strings.ContainsRune(stripEscaped(before), '.') {
		return "", s
	}
	return unescapeName(before), after
}

// stripEscaped drops escaped characters so that separators can be found.
func stripEscaped(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' {
			i++
			continue
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

// ResolveDocument resolves "wiki:Space.Sub.Page" relative to base. An empty
// string resolves to the base document.
func (r *Resolver) ResolveDocument(s string, base *EntityReference) *EntityReference {
	if s == "" {
		if base != nil {
			if doc := base.Document(); doc != nil {
				return doc
			}
		}
		return NewDocumentReference(r.baseWiki(base), r.baseSpaces(base), r.defaults.Page)
	}
	wiki, rest := cutWiki(s)
	if wiki == "" {
		wiki = r.baseWiki(base)
	}
	parts := splitEscaped(rest, '.')
	page := parts[len(parts)-1]
	spaces := parts[:len(parts)-1]
	if len(spaces) == 0 {
		spaces = r.baseSpaces(base)
	}
	if page == "" {
		page = r.defaults.Page
	}
	return NewDocumentReference(wiki, spaces, page)
}

// ResolveSpace resolves "wiki:Space.Sub".
func (r *Resolver) ResolveSpace(s string, base *EntityReference) *EntityReference {
	wiki, rest := cutWiki(s)
	if wiki == "" {
		wiki = r.baseWiki(base)
	}
	if rest == "" {
		return NewSpaceReference(wiki, r.baseSpaces(base)...)
	}
	return NewSpaceReference(wiki, splitEscaped(rest, '.')...)
}

// ResolveAttachment resolves "Space.Page@file". Without a document part
// the file belongs to the base document.
func (r *Resolver) ResolveAttachment(s string, base *EntityReference) *EntityReference {
	docPart, name, found := cutLastEscaped(s, '@')
	if !found {
		return NewAttachmentReference(r.ResolveDocument("", base), unescapeName(s))
	}
	return NewAttachmentReference(r.ResolveDocument(docPart, base), unescapeName(name))
}

// resolvePage resolves "wiki:A/B" to the home document of the nested space
// A.B.
func (r *Resolver) resolvePage(s string, base *EntityReference) *EntityReference {
	wiki, rest := cutWiki(s)
	if wiki == "" {
		wiki = r.baseWiki(base)
	}
	var spaces []string
	for _, p := range splitEscaped(rest, '/') {
		if p != "" {
			spaces = append(spaces, p)
		}
	}
	if len(spaces) == 0 {
		return r.ResolveDocument("", base)
	}
	return NewDocumentReference(wiki, spaces, r.defaults.Page)
}
