//go:build property
// +build property

package reference

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestTypedPrefixProperties checks that every "<prefix>:<content>" input is
// classified as typed with the prefix's type.
func TestTypedPrefixProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	properties := gopter.NewProperties(parameters)
	p := NewParser()

	plain := []ResourceType{Attachment, Mailto, URL, Path, UNC}

	properties.Property("plain prefixes keep content verbatim", prop.ForAll(
		func(idx int, content string) bool {
			rt := plain[idx]
			ref, err := p.Parse(rt.Scheme + ":" + content)
			return err == nil && ref.Typed && ref.Type == rt && ref.Reference == content
		},
		gen.IntRange(0, len(plain)-1),
		gen.AnyString(),
	))

	properties.Property("document prefix is typed", prop.ForAll(
		func(content string) bool {
			ref, err := p.Parse("doc:" + content)
			return err == nil && ref.Typed && ref.Type == Document
		},
		gen.AnyString(),
	))

	properties.Property("interwiki without colon falls back to document", prop.ForAll(
		func(content string) bool {
			content = strings.ReplaceAll(content, ":", "")
			content = strings.NewReplacer("#", "", "?", "").Replace(content)
			input := "interwiki:" + content
			ref, err := p.Parse(input)
			return err == nil && !ref.Typed && ref.Type == Document && ref.Reference == input
		},
		gen.AlphaString(),
	))

	properties.Property("typed references survive serialization", prop.ForAll(
		func(scheme string, content string) bool {
			ref, err := p.Parse(scheme + ":" + content)
			if err != nil {
				return false
			}
			again, err := p.Parse(Serialize(ref))
			return err == nil && again.Equal(ref)
		},
		gen.OneConstOf("doc", "space", "page", "attach", "mailto", "url"),
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
