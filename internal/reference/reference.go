// Package reference models link and image targets embedded in wiki content
// and parses them from their authoring syntax.
//
// The string syntax is persisted inside documents, so parsing must stay
// backward compatible: a typed reference is "<scheme>:<content>", anything
// else is an untyped document reference unless it looks like a URL.
package reference

import (
	"github.com/conneroisu/wikicore/internal/params"
)

// ResourceType tags what a reference points to.
type ResourceType struct {
	Scheme string
}

// String returns the scheme.
func (t ResourceType) String() string {
	return t.Scheme
}

// Known resource types.
var (
	Document   = ResourceType{Scheme: "doc"}
	Page       = ResourceType{Scheme: "page"}
	Space      = ResourceType{Scheme: "space"}
	Attachment = ResourceType{Scheme: "attach"}
	URL        = ResourceType{Scheme: "url"}
	Mailto     = ResourceType{Scheme: "mailto"}
	Path       = ResourceType{Scheme: "path"}
	UNC        = ResourceType{Scheme: "unc"}
	Interwiki  = ResourceType{Scheme: "interwiki"}
	Data       = ResourceType{Scheme: "data"}
	Unknown    = ResourceType{Scheme: "unknown"}
)

// Parameter names set by the parser.
const (
	ParamAnchor         = "anchor"
	ParamQueryString    = "queryString"
	ParamInterWikiAlias = "interWikiAlias"
)

// ResourceReference is a typed pointer to a link or image target.
type ResourceReference struct {
	Type       ResourceType
	Reference  string
	Typed      bool
	Parameters *params.Map
}

// New creates an untyped reference of the given type.
func New(ref string, t ResourceType) *ResourceReference {
	return &ResourceReference{Type: t, Reference: ref}
}

// NewTyped creates a typed reference of the given type.
func NewTyped(ref string, t ResourceType) *ResourceReference {
	return &ResourceReference{Type: t, Reference: ref, Typed: true}
}

// SetParameter stores an extra parameter such as the anchor.
func (r *ResourceReference) SetParameter(name, value string) *ResourceReference {
	if r.Parameters == nil {
		r.Parameters = params.New()
	}
	r.Parameters.Set(name, value)
	return r
}

// Parameter returns a parameter value or "".
func (r *ResourceReference) Parameter(name string) string {
	return r.Parameters.Value(name)
}

// Clone returns a deep copy.
func (r *ResourceReference) Clone() *ResourceReference {
	if r == nil {
		return nil
	}
	c := *r
	c.Parameters = r.Parameters.Clone()
	return &c
}

// Equal compares every field, parameters included.
func (r *ResourceReference) Equal(o *ResourceReference) bool {
	if r == nil || o == nil {
		return r == o
	}
	return r.Type == o.Type && r.Reference == o.Reference && r.Typed == o.Typed &&
		r.Parameters.Equal(o.Parameters)
}

// String returns the canonical debug form, for example
// "Typed = [true] Type = [mailto] Reference = [john@smith.com]". Parameters
// are appended only when present. Tests and logs depend on this format.
func (r *ResourceReference) String() string {
	typed := "false"
	if r.Typed {
		typed = "true"
	}
	s := "Typed = [" + typed + "] Type = [" + r.Type.Scheme + "] Reference = [" + r.Reference + "]"
	if r.Parameters.Len() > 0 {
		s += " Parameters = " + r.Parameters.String()
	}
	return s
}
