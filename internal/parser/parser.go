// Package parser defines the syntax parser contract. A parser turns source
// text into Listener events; ParseXDOM feeds those events to the tree
// builder.
package parser

import (
	"io"
	"strings"

	"github.com/conneroisu/wikicore/internal/block"
	"github.com/conneroisu/wikicore/internal/errors"
	"github.com/conneroisu/wikicore/internal/listener"
	"github.com/conneroisu/wikicore/internal/syntax"
)

// Parser converts source text in one syntax into Listener events. Parse
// emits a complete document (BeginDocument ... EndDocument) and returns a
// parse error on malformed input, in which case the events already emitted
// must be discarded.
type Parser interface {
	Syntax() syntax.Syntax
	Parse(r io.Reader, l listener.Listener) error
}

// ParseXDOM parses r into a document tree.
func ParseXDOM(p Parser, r io.Reader) (*block.XDOM, error) {
	g := block.NewGenerator()
	if err := p.Parse(r, g); err != nil {
		return nil, err
	}
	return g.XDOM()
}

// ParseString parses s into a document tree.
func ParseString(p Parser, s string) (*block.XDOM, error) {
	return ParseXDOM(p, strings.NewReader(s))
}

// ReadAll reads r fully and normalises line endings to "\n".
func ReadAll(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", errors.WrapIO(err, errors.ErrCodeIO, "failed to read source")
	}
	s := strings.ReplaceAll(string(data), "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n"), nil
}

// EmitText emits s as words, spaces, special symbols and new lines.
func EmitText(l listener.Listener, s string) {
	start := -1
	flush := func(end int) {
		if start >= 0 {
			l.OnWord(s[start:end])
			start = -1
		}
	}
	for i, r := range s {
		switch {
		case r == '\n':
			flush(i)
			l.OnNewLine()
		case r == ' ' || r == '\t':
			flush(i)
			l.OnSpace()
		case listener.IsSpecialSymbol(r):
			flush(i)
			l.OnSpecialSymbol(r)
		default:
			if start < 0 {
				start = i
			}
		}
	}
	flush(len(s))
}

// TextBlocks returns s as inline blocks, the way EmitText would emit it.
func TextBlocks(s string) []block.Block {
	g := block.NewGenerator()
	EmitText(g, s)
	blocks, _ := g.Blocks()
	return blocks
}
