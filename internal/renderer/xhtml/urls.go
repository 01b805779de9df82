package xhtml

import (
	"net/url"
	"strings"

	"github.com/conneroisu/wikicore/internal/model"
	"github.com/conneroisu/wikicore/internal/reference"
)

// URLResolver turns a reference into the href of a link or the src of an
// image. An empty result marks a target that cannot be linked.
type URLResolver interface {
	URL(ref *reference.ResourceReference) string
}

// Default URL patterns. Placeholders are {wiki}, {space}, {page} and
// {file}; spaces are joined with "/".
const (
	DefaultViewPattern       = "/{wiki}/view/{space}/{page}"
	DefaultAttachmentPattern = "/{wiki}/download/{space}/{page}/{file}"
)

// ViewURLs resolves wiki references with URL patterns.
type ViewURLs struct {
	ViewPattern       string
	AttachmentPattern string
	Resolver          model.EntityResolver
	// Base is the document being rendered; relative references are
	// resolved against it.
	Base *model.EntityReference
}

// DefaultURLs uses the default patterns and resolver.
func DefaultURLs() *ViewURLs {
	return &ViewURLs{
		ViewPattern:       DefaultViewPattern,
		AttachmentPattern: DefaultAttachmentPattern,
		Resolver:          model.NewResolver(model.DefaultDefaults),
	}
}

func (u *ViewURLs) URL(ref *reference.ResourceReference) string {
	switch ref.Type {
	case reference.URL:
		return ref.Reference
	case reference.Mailto:
		return "mailto:" + ref.Reference
	case reference.Data:
		return "data:" + ref.Reference
	case reference.Path:
		return ref.Reference
	case reference.UNC:
		return "file:" + strings.ReplaceAll(ref.Reference, `\`, "/")
	case reference.Document, reference.Page, reference.Space, reference.Attachment:
	default:
		return ""
	}

	entity, err := u.Resolver.Resolve(ref, u.Base)
	if err != nil || entity == nil {
		return ""
	}
	if entity.Type == model.EntityDocument && ref.Type == reference.Document && ref.Reference == "" {
		// anchor in the current document
		if a := ref.Parameter(reference.ParamAnchor); a != "" {
			return "#" + a
		}
	}

	var out string
	switch entity.Type {
	case model.EntityAttachment:
		out = expand(u.AttachmentPattern, entity.Document(), entity.Name)
	case model.EntitySpace:
		out = expand(u.ViewPattern, model.NewDocumentReference(entity.Wiki(), entity.Spaces(), model.DefaultDefaults.Page), "")
	default:
		out = expand(u.ViewPattern, entity, "")
	}
	if q := ref.Parameter(reference.ParamQueryString); q != "" {
		out += "?" + q
	}
	if a := ref.Parameter(reference.ParamAnchor); a != "" {
		out += "#" + a
	}
	return out
}

func expand(pattern string, doc *model.EntityReference, file string) string {
	spaces := doc.Spaces()
	for i, s := range spaces {
		spaces[i] = url.PathEscape(s)
	}
	return strings.NewReplacer(
		"{wiki}", url.PathEscape(doc.Wiki()),
		"{space}", strings.Join(spaces, "/"),
		"{page}", url.PathEscape(doc.Name),
		"{file}", url.PathEscape(file),
	).Replace(pattern)
}
