package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/wikicore/internal/block"
	"github.com/conneroisu/wikicore/internal/listener"
)

func TestEmitText(t *testing.T) {
	var q listener.Queue
	EmitText(&q, "Hi, you\tthere\nok")

	assert.Equal(t, []string{
		"onWord [Hi]",
		"onSpecialSymbol [,]",
		"onSpace",
		"onWord [you]",
		"onSpace",
		"onWord [there]",
		"onNewLine",
		"onWord [ok]",
	}, q.Strings())
}

func TestReadAllNormalisesNewLines(t *testing.T) {
	s, err := ReadAll(strings.NewReader("a\r\nb\rc"))
	require.NoError(t, err)
	assert.Equal(t, "a\nb\nc", s)
}

func TestTextBlocks(t *testing.T) {
	blocks := TextBlocks("a-b c")
	require.Len(t, blocks, 5)
	assert.IsType(t, &block.Word{}, blocks[0])
	assert.IsType(t, &block.SpecialSymbol{}, blocks[1])
	assert.IsType(t, &block.Space{}, blocks[3])
	for _, b := range blocks {
		assert.Nil(t, b.Parent())
	}
	assert.Empty(t, TextBlocks(""))
}
