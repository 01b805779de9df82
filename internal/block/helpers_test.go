package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/wikicore/internal/listener"
	"github.com/conneroisu/wikicore/internal/params"
	"github.com/conneroisu/wikicore/internal/reference"
)

func words(texts ...string) []Block {
	out := make([]Block, len(texts))
	for i, t := range texts {
		out[i] = NewWord(t)
	}
	return out
}

func TestAddChildDetachesFromPreviousParent(t *testing.T) {
	w := NewWord("x")
	a := NewParagraph([]Block{w}, nil)
	b := NewParagraph(nil, nil)

	require.NoError(t, b.AddChild(w))
	assert.Empty(t, a.Children())
	assert.Same(t, b, w.Parent())
}

func TestAddChildRejectsCycles(t *testing.T) {
	inner := NewGroup(nil, nil)
	outer := NewGroup([]Block{inner}, nil)

	assert.ErrorIs(t, inner.AddChild(outer), ErrCycle)
	assert.ErrorIs(t, outer.AddChild(outer), ErrCycle)
	assert.ErrorIs(t, NewWord("x").AddChild(NewSpace()), ErrLeaf)
}

func TestReplaceAndInsert(t *testing.T) {
	children := words("a", "b", "c")
	p := NewParagraph(children, nil)

	require.NoError(t, ReplaceChild(p, children[1], NewWord("x"), NewWord("y")))
	assert.Equal(t, "axyc", Text(p))
	assert.Nil(t, children[1].Parent())

	require.NoError(t, InsertAfter(p, children[0], NewSpace()))
	assert.Equal(t, "a xyc", Text(p))

	require.NoError(t, InsertBefore(p, children[0], NewWord(">")))
	assert.Equal(t, ">a xyc", Text(p))

	require.NoError(t, RemoveChild(p, children[2]))
	assert.Equal(t, ">a xy", Text(p))

	assert.ErrorIs(t, RemoveChild(p, children[2]), ErrNotChild)
	require.NoError(t, Validate(p))
}

func TestReplaceMovesSibling(t *testing.T) {
	children := words("a", "b", "c")
	p := NewParagraph(children, nil)

	require.NoError(t, ReplaceChild(p, children[0], children[2]))
	assert.Equal(t, "cb", Text(p))
	require.NoError(t, Validate(p))
}

func TestFind(t *testing.T) {
	doc := NewXDOM([]Block{
		NewParagraph([]Block{
			NewLink(reference.New("A", reference.Document), false, nil, nil),
			NewFormat(listener.FormatBold, []Block{
				NewLink(reference.New("B", reference.Document), false, nil, nil),
			}, nil),
		}, nil),
	}, nil)

	links := Find[*Link](doc)
	require.Len(t, links, 2)
	assert.Equal(t, "A", links[0].Reference.Reference)
	assert.Equal(t, "B", links[1].Reference.Reference)

	first, ok := FindFirst[*Format](doc)
	require.True(t, ok)
	assert.Equal(t, listener.FormatBold, first.Format)

	_, ok = FindFirst[*Table](doc)
	assert.False(t, ok)
}

func TestCloneIsDeep(t *testing.T) {
	link := NewLink(reference.NewTyped("A", reference.Document), false, words("label"), params.New("k", "v"))
	doc := NewXDOM([]Block{NewParagraph([]Block{link}, nil)}, params.New())

	c, err := Clone(doc)
	require.NoError(t, err)

	clonedLink, ok := FindFirst[*Link](c)
	require.True(t, ok)
	assert.NotSame(t, link, clonedLink)
	assert.True(t, link.Reference.Equal(clonedLink.Reference))

	clonedLink.SetParameter("k", "changed")
	clonedLink.Reference.Reference = "B"
	assert.Equal(t, "v", link.Parameter("k"))
	assert.Equal(t, "A", link.Reference.Reference)
}

func TestIDGenerator(t *testing.T) {
	g := NewIDGenerator()
	assert.Equal(t, "HGettingStarted", g.Generate("H", "Getting Started"))
	assert.Equal(t, "HGettingStarted-1", g.Generate("H", "Getting Started"))
	assert.Equal(t, "HCafe", g.Generate("H", "Café"))
	assert.Equal(t, "Slug", Slug("  Slug?! "))
}
