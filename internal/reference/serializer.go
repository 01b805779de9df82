package reference

// Serialize turns a reference back into the authoring syntax. The scheme
// prefix is written only for typed references.
func Serialize(ref *ResourceReference) string {
	if ref == nil {
		return ""
	}

	content := ref.Reference
	switch ref.Type {
	case Interwiki:
		content = ref.Parameter(ParamInterWikiAlias) + ":" + content
	case Document, Page, Space:
		if q, ok := ref.Parameters.Get(ParamQueryString); ok {
			content += "?" + q
		}
		if a, ok := ref.Parameters.Get(ParamAnchor); ok {
			content += "#" + a
		}
	}

	if ref.Typed {
		return ref.Type.Scheme + ":" + content
	}
	return content
}
