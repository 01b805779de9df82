package reference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/wikicore/internal/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "typed mailto keeps query",
			input:    "mailto:john@smith.com?subject=test",
			expected: "Typed = [true] Type = [mailto] Reference = [john@smith.com?subject=test]",
		},
		{
			name:     "typed document",
			input:    "doc:wiki:space.page",
			expected: "Typed = [true] Type = [doc] Reference = [wiki:space.page]",
		},
		{
			name:     "typed attachment",
			input:    "attach:some:content",
			expected: "Typed = [true] Type = [attach] Reference = [some:content]",
		},
		{
			name:     "typed interwiki",
			input:    "interwiki:alias:content",
			expected: "Typed = [true] Type = [interwiki] Reference = [content] Parameters = [[interWikiAlias] = [alias]]",
		},
		{
			name:     "interwiki without alias separator falls back to document",
			input:    "interwiki:invalid_since_doesnt_have_colon",
			expected: "Typed = [false] Type = [doc] Reference = [interwiki:invalid_since_doesnt_have_colon]",
		},
		{
			name:     "legacy interwiki separator is ignored",
			input:    "page@alias",
			expected: "Typed = [false] Type = [doc] Reference = [page@alias]",
		},
		{
			name:     "untyped url",
			input:    "https://xwiki.org/bin/view",
			expected: "Typed = [false] Type = [url] Reference = [https://xwiki.org/bin/view]",
		},
		{
			name:     "typed url",
			input:    "url:http://example.org",
			expected: "Typed = [true] Type = [url] Reference = [http://example.org]",
		},
		{
			name:     "typed path",
			input:    "path:/some/path",
			expected: "Typed = [true] Type = [path] Reference = [/some/path]",
		},
		{
			name:     "typed unc",
			input:    `unc:\\server\share`,
			expected: `Typed = [true] Type = [unc] Reference = [\\server\share]`,
		},
		{
			name:     "typed space",
			input:    "space:Main",
			expected: "Typed = [true] Type = [space] Reference = [Main]",
		},
		{
			name:     "untyped document with anchor and query",
			input:    "Space.Page?xredirect=1#Section",
			expected: "Typed = [false] Type = [doc] Reference = [Space.Page] Parameters = [[queryString] = [xredirect=1], [anchor] = [Section]]",
		},
		{
			name:     "escapes are left untouched",
			input:    `Sp\.ace.Pa\#ge`,
			expected: `Typed = [false] Type = [doc] Reference = [Sp\.ace.Pa\#ge]`,
		},
		{
			name:     "unknown prefix is a document",
			input:    "foo:bar",
			expected: "Typed = [false] Type = [doc] Reference = [foo:bar]",
		},
	}

	p := NewParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := p.Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ref.String())
		})
	}
}

func TestParseEmpty(t *testing.T) {
	p := NewParser()
	for _, input := range []string{"", "   "} {
		_, err := p.Parse(input)
		require.Error(t, err)
		assert.True(t, errors.IsParseError(err))
	}
}

func TestTypedPrefixes(t *testing.T) {
	p := NewParser()
	for _, rt := range []ResourceType{Document, Space, Attachment, Mailto, URL, Path, UNC} {
		ref, err := p.Parse(rt.Scheme + ":content")
		require.NoError(t, err)
		assert.True(t, ref.Typed, rt.Scheme)
		assert.Equal(t, rt, ref.Type)
		assert.Equal(t, "content", ref.Reference)
	}
}

func TestRegisterCustomType(t *testing.T) {
	p := NewParser()
	p.Register(plainParser{t: ResourceType{Scheme: "user"}})

	ref, err := p.Parse("user:XWiki.Admin")
	require.NoError(t, err)
	assert.Equal(t, "Typed = [true] Type = [user] Reference = [XWiki.Admin]", ref.String())
	assert.Contains(t, p.Schemes(), "user")
}

func TestSerializeRoundTrip(t *testing.T) {
	p := NewParser()
	inputs := []string{
		"doc:Space.Page#anchor",
		"Space.Page?a=b#c",
		"interwiki:wikipedia:XWiki",
		"mailto:john@smith.com",
		"https://example.org",
		"attach:Space.Page@file.png",
		"page@alias",
	}
	for _, input := range inputs {
		ref, err := p.Parse(input)
		require.NoError(t, err)
		assert.Equal(t, input, Serialize(ref))

		again, err := p.Parse(Serialize(ref))
		require.NoError(t, err)
		assert.True(t, ref.Equal(again), input)
	}
}

func TestCloneAndEqual(t *testing.T) {
	ref := NewTyped("Main.WebHome", Document).SetParameter(ParamAnchor, "x")
	c := ref.Clone()
	assert.True(t, ref.Equal(c))

	c.SetParameter(ParamAnchor, "y")
	assert.False(t, ref.Equal(c))
	assert.Equal(t, "x", ref.Parameter(ParamAnchor))

	var nilRef *ResourceReference
	assert.True(t, nilRef.Equal(nil))
	assert.False(t, ref.Equal(nil))
}

func FuzzParse(f *testing.F) {
	for _, seed := range []string{"doc:A.B", "interwiki:x", "a#b?c", `\#\?`, "mailto:", "://"} {
		f.Add(seed)
	}
	p := NewParser()
	f.Fuzz(func(t *testing.T, input string) {
		ref, err := p.Parse(input)
		if err != nil {
			return
		}
		if ref.Typed {
			again, err := p.Parse(Serialize(ref))
			if err != nil || !again.Equal(ref) {
				t.Fatalf("typed reference %q did not survive serialization: %v", input, err)
			}
		}
	})
}
