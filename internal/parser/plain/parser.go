// Package plain parses plain text. Blank lines separate paragraphs; inside a
// paragraph, text becomes words, spaces, special symbols and new lines.
package plain

import (
	"io"
	"regexp"
	"strings"

	"github.com/conneroisu/wikicore/internal/listener"
	"github.com/conneroisu/wikicore/internal/params"
	"github.com/conneroisu/wikicore/internal/parser"
	"github.com/conneroisu/wikicore/internal/syntax"
)

var blankLines = regexp.MustCompile(`\n[ \t]*\n`)

// Parser parses plain/1.0 text.
type Parser struct{}

var _ parser.Parser = Parser{}

// New returns a plain text parser.
func New() Parser { return Parser{} }

func (Parser) Syntax() syntax.Syntax { return syntax.Plain10 }

func (Parser) Parse(r io.Reader, l listener.Listener) error {
	s, err := parser.ReadAll(r)
	if err != nil {
		return err
	}
	meta := params.New(listener.MetaSyntax, syntax.Plain10.String())
	l.BeginDocument(meta)
	for _, para := range blankLines.Split(s, -1) {
		para = strings.Trim(para, "\n")
		if strings.TrimSpace(para) == "" {
			continue
		}
		l.BeginParagraph(nil)
		parser.EmitText(l, para)
		l.EndParagraph(nil)
	}
	l.EndDocument(meta)
	return nil
}
