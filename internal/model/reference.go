// Package model identifies wiki entities (wikis, spaces, documents,
// attachments) and resolves link references to them.
package model

import (
	"strings"
)

// EntityType is the kind of a wiki entity.
type EntityType int

const (
	EntityWiki EntityType = iota
	EntitySpace
	EntityDocument
	EntityAttachment
)

var entityNames = [...]string{"WIKI", "SPACE", "DOCUMENT", "ATTACHMENT"}

func (t EntityType) String() string {
	if t < 0 || int(t) >= len(entityNames) {
		return "UNKNOWN"
	}
	return entityNames[t]
}

// ParseEntityType maps a name such as "document" to its EntityType.
func ParseEntityType(name string) (EntityType, bool) {
	for i, n := range entityNames {
		if strings.EqualFold(n, name) {
			return EntityType(i), true
		}
	}
	return 0, false
}

// EntityReference names an entity by its chain of parents, e.g.
// ATTACHMENT(a.png) -> DOCUMENT(Page) -> SPACE(Main) -> WIKI(xwiki).
// Spaces may be nested.
type EntityReference struct {
	Type   EntityType
	Name   string
	Parent *EntityReference
}

// NewWikiReference returns the reference of a wiki.
func NewWikiReference(wiki string) *EntityReference {
	return &EntityReference{Type: EntityWiki, Name: wiki}
}

// NewSpaceReference returns the reference of a (possibly nested) space.
func NewSpaceReference(wiki string, spaces ...string) *EntityReference {
	ref := NewWikiReference(wiki)
	for _, s := range spaces {
		ref = &EntityReference{Type: EntitySpace, Name: s, Parent: ref}
	}
	return ref
}

// NewDocumentReference returns the reference of a document.
func NewDocumentReference(wiki string, spaces []string, page string) *EntityReference {
	return &EntityReference{Type: EntityDocument, Name: page, Parent: NewSpaceReference(wiki, spaces...)}
}

// NewAttachmentReference returns the reference of a file attached to doc.
func NewAttachmentReference(doc *EntityReference, name string) *EntityReference {
	return &EntityReference{Type: EntityAttachment, Name: name, Parent: doc}
}

// Extract returns the closest reference of type t in the parent chain,
// r included.
func (r *EntityReference) Extract(t EntityType) *EntityReference {
	for cur := r; cur != nil; cur = cur.Parent {
		if cur.Type == t {
			return cur
		}
	}
	return nil
}

// Wiki returns the wiki name.
func (r *EntityReference) Wiki() string {
	if w := r.Extract(EntityWiki); w != nil {
		return w.Name
	}
	return ""
}

// Spaces returns the space names from the outermost to the innermost.
func (r *EntityReference) Spaces() []string {
	var spaces []string
	for cur := r; cur != nil; cur = cur.Parent {
		if cur.Type == EntitySpace {
			spaces = append([]string{cur.Name}, spaces...)
		}
	}
	return spaces
}

// Document returns the document part of r, or nil.
func (r *EntityReference) Document() *EntityReference {
	return r.Extract(EntityDocument)
}

// Equal compares the whole parent chains.
func (r *EntityReference) Equal(o *EntityReference) bool {
	for r != nil && o != nil {
		if r.Type != o.Type || r.Name != o.Name {
			return false
		}
		r, o = r.Parent, o.Parent
	}
	return r == nil && o == nil
}

// String serializes r as "wiki:Space.Sub.Page@file". Wiki, space and page
// names escape ".", ":", "@" and "\" with "\"; attachment names escape
// only "@" and "\".
func (r *EntityReference) String() string {
	if r == nil {
		return ""
	}
	var sb strings.Builder
	if w := r.Wiki(); w != "" {
		sb.WriteString(escapeName(w))
		if r.Type == EntityWiki {
			return sb.String()
		}
		sb.WriteByte(':')
	}
	for i, s := range r.Spaces() {
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(escapeName(s))
	}
	if doc := r.Document(); doc != nil {
		sb.WriteByte('.')
		sb.WriteString(escapeName(doc.Name))
	}
	if r.Type == EntityAttachment {
		sb.WriteByte('@')
		sb.WriteString(escapeAttachmentName(r.Name))
	}
	return sb.String()
}

// Key is a stable map key, prefixed by the entity type.
func (r *EntityReference) Key() string {
	return r.Type.String() + ":" + r.String()
}

func escapeName(s string) string {
	if !strings.ContainsAny(s, `.:@\`) {
		return s
	}
	var sb strings.Builder
	for _, c := range s {
		if c == '.' || c == ':' || c == '@' || c == '\\' {
			sb.WriteByte('\\')
		}
		sb.WriteRune(c)
	}
	return sb.String()
}

func escapeAttachmentName(s string) string {
	if !strings.ContainsAny(s, `@\`) {
		return s
	}
	var sb strings.Builder
	for _, c := range s {
		if c == '@' || c == '\\' {
			sb.WriteByte('\\')
		}
		sb.WriteRune(c)
	}
	return sb.String()
}

// splitEscaped splits s at unescaped sep characters and unescapes the parts.
func splitEscaped(s string, sep byte) []string {
	var (
		parts []string
		cur   strings.Builder
	)
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '\\' && i+1 < len(s):
			i++
			cur.WriteByte(s[i])
		case s[i] == sep:
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(s[i])
		}
	}
	return append(parts, cur.String())
}

// cutEscaped splits s at the first unescaped sep.
func cutEscaped(s string, sep byte) (before, after string, found bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' {
			i++
			continue
		}
		if s[i] == sep {
			return s[:i], s[i+1:], true
		}
	}
	return s, "", false
}

// cutLastEscaped splits s at the last unescaped sep.
func cutLastEscaped(s string, sep byte) (before, after string, found bool) {
	at := -1
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' {
			i++
			continue
		}
		if s[i] == sep {
			at = i
		}
	}
	if at < 0 {
		return s, "", false
	}
	return s[:at], s[at+1:], true
}

// unescapeName drops the "\\" escapes of a name.
func unescapeName(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}
