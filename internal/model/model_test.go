package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/wikicore/internal/reference"
)

func TestEntityReferenceString(t *testing.T) {
	doc := NewDocumentReference("xwiki", []string{"Main", "Sub"}, "Page")
	assert.Equal(t, "xwiki:Main.Sub.Page", doc.String())
	assert.Equal(t, "xwiki:Main.Sub.Page@a.png", NewAttachmentReference(doc, "a.png").String())
	assert.Equal(t, `xwiki:Main.Sub.Page@me\@home.png`, NewAttachmentReference(doc, "me@home.png").String())
	assert.Equal(t, `xwiki:Main.Sub.My\.Page@v1.2.png`,
		NewAttachmentReference(NewDocumentReference("xwiki", []string{"Main", "Sub"}, "My.Page"), "v1.2.png").String())
	assert.Equal(t, "xwiki:Main", NewSpaceReference("xwiki", "Main").String())
	assert.Equal(t, "DOCUMENT:xwiki:Main.Sub.Page", doc.Key())
	assert.Equal(t, []string{"Main", "Sub"}, doc.Spaces())
}

func TestAttachmentStringResolvesBack(t *testing.T) {
	r := NewResolver(DefaultDefaults)
	doc := NewDocumentReference("xwiki", []string{"Main"}, "Page")
	for _, name := range []string{"pic.png", "a@b.txt", `back\slash.txt`, "no-dot"} {
		att := NewAttachmentReference(doc, name)
		_, rest, _ := strings.Cut(att.String(), ":")
		got := r.ResolveAttachment(rest, nil)
		assert.True(t, att.Equal(got), "%s resolved to %s", att, got)
	}
}

func TestResolveDocument(t *testing.T) {
	r := NewResolver(Defaults{})
	base := NewDocumentReference("dev", []string{"Sandbox"}, "Test")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"page only", "Other", "dev:Sandbox.Other"},
		{"space and page", "Main.WebHome", "dev:Main.WebHome"},
		{"absolute", "xwiki:Main.Page", "xwiki:Main.Page"},
		{"escaped dot", `Main.a\.b`, `dev:Main.a\.b`},
		{"colon after dot is not a wiki", "Main.a:b", `dev:Main.a\:b`},
		{"empty is base", "", "dev:Sandbox.Test"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.ResolveDocument(tt.in, base).String())
		})
	}
}

func TestResolveWithoutBase(t *testing.T) {
	r := NewResolver(Defaults{})
	assert.Equal(t, "xwiki:Main.Page", r.ResolveDocument("Page", nil).String())
	assert.Equal(t, "xwiki:Main.WebHome", r.ResolveDocument("", nil).String())
}

func TestResolve(t *testing.T) {
	r := NewResolver(Defaults{Wiki: "w", Space: "S"})
	base := NewDocumentReference("w", []string{"S"}, "Home")

	got, err := r.Resolve(reference.New("Other.Page@file.txt", reference.Attachment), base)
	require.NoError(t, err)
	assert.Equal(t, EntityAttachment, got.Type)
	assert.Equal(t, "file.txt", got.Name)
	assert.Equal(t, "w:Other.Page", got.Document().String())

	got, err = r.Resolve(reference.New("img.png", reference.Attachment), base)
	require.NoError(t, err)
	assert.True(t, got.Document().Equal(base))

	got, err = r.Resolve(reference.NewTyped("A/B", reference.Page), base)
	require.NoError(t, err)
	assert.Equal(t, "w:A.B.WebHome", got.String())

	got, err = r.Resolve(reference.NewTyped("Docs", reference.Space), base)
	require.NoError(t, err)
	assert.Equal(t, EntitySpace, got.Type)

	got, err = r.Resolve(reference.New("https://x.org", reference.URL), base)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = r.Resolve(nil, base)
	assert.Error(t, err)
}

func TestParseEntityType(t *testing.T) {
	et, ok := ParseEntityType("document")
	require.True(t, ok)
	assert.Equal(t, EntityDocument, et)
	_, ok = ParseEntityType("object")
	assert.False(t, ok)
}
