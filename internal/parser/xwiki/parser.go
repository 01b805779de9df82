// Package xwiki parses the xwiki/2.1 wiki syntax into Listener events.
package xwiki

import (
	"context"
	"io"
	"regexp"
	"strings"

	"github.com/conneroisu/wikicore/internal/block"
	"github.com/conneroisu/wikicore/internal/listener"
	"github.com/conneroisu/wikicore/internal/logging"
	"github.com/conneroisu/wikicore/internal/params"
	"github.com/conneroisu/wikicore/internal/parser"
	"github.com/conneroisu/wikicore/internal/reference"
	"github.com/conneroisu/wikicore/internal/syntax"
)

// BrokenLinkPolicy decides what happens to a link whose reference cannot
// be parsed.
type BrokenLinkPolicy string

const (
	// BrokenLinksAbort fails the whole parse.
	BrokenLinksAbort BrokenLinkPolicy = "abort"
	// BrokenLinksRender keeps the raw markup, styled as a broken link.
	BrokenLinksRender BrokenLinkPolicy = "render"
)

// BrokenLinkClass is the class parameter set on rendered broken links.
const BrokenLinkClass = "wikicore-broken-link"

var (
	headingLine = regexp.MustCompile(`^\s*(={1,6})\s*(.*?)\s*=*\s*$`)
	listLine    = regexp.MustCompile(`^\s*(\*+|[*1]*1\.)\s+(.*)$`)
	ruleLine    = regexp.MustCompile(`^\s*-{4,}\s*$`)
	paramsLine  = regexp.MustCompile(`^\s*\(%(.*?)%\)\s*$`)
)

// Option configures a Parser.
type Option func(*Parser)

// WithReferenceParser sets the parser used for link and image targets.
func WithReferenceParser(rp *reference.Parser) Option {
	return func(p *Parser) { p.refs = rp }
}

// WithBrokenLinks sets the broken link policy.
func WithBrokenLinks(policy BrokenLinkPolicy) Option {
	return func(p *Parser) { p.broken = policy }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(p *Parser) { p.logger = l }
}

// Parser parses xwiki/2.1 content. It is safe for concurrent use.
type Parser struct {
	refs   *reference.Parser
	broken BrokenLinkPolicy
	logger logging.Logger
}

var _ parser.Parser = (*Parser)(nil)

// New returns a parser that aborts on broken links unless configured
// otherwise.
func New(opts ...Option) *Parser {
	p := &Parser{broken: BrokenLinksAbort}
	for _, opt := range opts {
		opt(p)
	}
	if p.refs == nil {
		p.refs = reference.NewParser()
	}
	if p.logger == nil {
		p.logger = logging.Discard()
	}
	return p
}

// Syntax returns xwiki/2.1.
func (p *Parser) Syntax() syntax.Syntax { return syntax.XWiki21 }

// Parse reads r and emits a complete document to l. Events are buffered so
// that nothing reaches l when parsing fails.
func (p *Parser) Parse(r io.Reader, l listener.Listener) error {
	src, err := parser.ReadAll(r)
	if err != nil {
		return err
	}

	var q listener.Queue
	meta := params.New(listener.MetaSyntax, syntax.XWiki21.String())
	q.BeginDocument(meta)
	st := &state{p: p, l: &q, ids: block.NewIDGenerator()}
	if err := st.blocks(src); err != nil {
		p.logger.Debug(context.Background(), "xwiki parse failed", "error", err)
		return err
	}
	q.EndDocument(meta)

	q.Replay(l)
	return nil
}

// state holds the block level parse of one document or group body.
type state struct {
	p        *Parser
	l        listener.Listener
	ids      *block.IDGenerator
	sections []listener.HeaderLevel
	pending  *params.Map
	emitted  bool
}

// takeParams returns and clears the parameters of a standalone (% %) line.
func (st *state) takeParams() *params.Map {
	p := st.pending
	st.pending = nil
	return p
}

func (st *state) child() *state {
	return &state{p: st.p, l: st.l, ids: st.ids}
}

// blocks parses s as a sequence of blocks.
func (st *state) blocks(s string) error {
	s = strings.TrimSuffix(s, "\n")
	i := 0
	for i <= len(s) && s != "" {
		line, next := lineAt(s, i)

		if strings.TrimSpace(line) == "" {
			n := 0
			for i <= len(s) {
				line, next = lineAt(s, i)
				if strings.TrimSpace(line) != "" {
					break
				}
				n++
				i = next
				if next > len(s) {
					break
				}
			}
			st.emptyLines(n)
			if i > len(s) {
				break
			}
			continue
		}

		end, err := st.block(s, i, line, next)
		if err != nil {
			return err
		}
		st.emitted = true
		i = end
		if i > len(s) {
			break
		}
	}
	st.closeSections(0)
	return nil
}

func (st *state) emptyLines(n int) {
	if !st.emitted {
		if n > 0 {
			st.l.OnEmptyLines(n)
		}
		return
	}
	if n > 1 {
		st.l.OnEmptyLines(n - 1)
	}
}

// lineAt returns the line starting at i and the offset of the next line.
// The returned offset is len(s)+1 for the last line.
func lineAt(s string, i int) (string, int) {
	if i >= len(s) {
		return "", len(s) + 1
	}
	if j := strings.IndexByte(s[i:], '\n'); j >= 0 {
		return s[i : i+j], i + j + 1
	}
	return s[i:], len(s) + 1
}

// block parses the block starting at line and returns the offset after it.
func (st *state) block(s string, i int, line string, next int) (int, error) {
	trimmed := strings.TrimLeft(line, " \t")
	lead := len(line) - len(trimmed)

	switch {
	case paramsLine.MatchString(line) && !strings.HasPrefix(trimmed, "(%%)"):
		st.pending = ParseParameters(paramsLine.FindStringSubmatch(line)[1])
		return next, nil

	case strings.HasPrefix(trimmed, "((("):
		if end, ok, err := st.group(s, i+lead); ok || err != nil {
			return end, err
		}

	case headingLine.MatchString(line):
		m := headingLine.FindStringSubmatch(line)
		return next, st.heading(listener.HeaderLevel(len(m[1])), m[2])

	case ruleLine.MatchString(line):
		st.l.OnHorizontalLine(st.takeParams())
		return next, nil

	case strings.HasPrefix(trimmed, "{{{"):
		if content, end, ok := scanVerbatim(s, i+lead); ok && restIsBlank(s, end) {
			st.l.OnVerbatim(content, false, st.takeParams())
			return skipLine(s, end), nil
		}

	case strings.HasPrefix(trimmed, "{{"):
		if call, ok := scanMacro(s, i+lead); ok && restIsBlank(s, call.end) {
			st.l.OnMacro(call.id, call.params, trimNewLines(call.content), false)
			return skipLine(s, call.end), nil
		}

	case listLine.MatchString(line):
		return st.list(s, i)

	case strings.HasPrefix(trimmed, ";") || strings.HasPrefix(trimmed, ":"):
		return st.definitionList(s, i)

	case strings.HasPrefix(trimmed, ">"):
		return st.quotation(s, i)

	case strings.HasPrefix(trimmed, "|"):
		return st.table(s, i)
	}
	return st.paragraph(s, i)
}

// trimNewLines drops one leading and one trailing new line.
func trimNewLines(s string) string {
	return strings.TrimSuffix(strings.TrimPrefix(s, "\n"), "\n")
}

func restIsBlank(s string, i int) bool {
	line, _ := lineAt(s, i)
	return strings.TrimSpace(line) == ""
}

func skipLine(s string, i int) int {
	_, next := lineAt(s, i)
	return next
}

// startsBlock reports whether line interrupts a paragraph.
func startsBlock(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	return strings.TrimSpace(line) == "" ||
		headingLine.MatchString(line) ||
		ruleLine.MatchString(line) ||
		listLine.MatchString(line) ||
		strings.HasPrefix(trimmed, "|") ||
		strings.HasPrefix(trimmed, ">") ||
		strings.HasPrefix(trimmed, ";") ||
		strings.HasPrefix(trimmed, "(((") ||
		(paramsLine.MatchString(line) && !strings.HasPrefix(trimmed, "(%%)"))
}

func (st *state) closeSections(level listener.HeaderLevel) {
	for len(st.sections) > 0 && st.sections[len(st.sections)-1] >= level {
		st.sections = st.sections[:len(st.sections)-1]
		st.l.EndSection(nil)
	}
}

func (st *state) heading(level listener.HeaderLevel, title string) error {
	st.closeSections(level)
	st.l.BeginSection(nil)
	st.sections = append(st.sections, level)

	p := st.takeParams()
	id := p.Value("id")
	if id == "" {
		id = st.ids.Generate("H", unescape(title))
	} else {
		st.ids.Reserve(id)
	}
	st.l.BeginHeader(level, id, p)
	if err := st.inline(title); err != nil {
		return err
	}
	st.l.EndHeader(level, id, p)
	return nil
}

// group parses "(((...)))" starting at s[i]. It reports false when the
// group is never closed.
func (st *state) group(s string, i int) (int, bool, error) {
	start := i + 3
	depth := 1
	j := start
scan:
	for j < len(s) {
		switch {
		case s[j] == '~':
			j += 2
			continue
		case strings.HasPrefix(s[j:], "{{{"):
			if _, end, ok := scanVerbatim(s, j); ok {
				j = end
				continue
			}
		case strings.HasPrefix(s[j:], "((("):
			depth++
			j += 3
			continue
		case strings.HasPrefix(s[j:], ")))"):
			depth--
			if depth == 0 {
				break scan
			}
			j += 3
			continue
		}
		j++
	}
	if depth != 0 {
		return 0, false, nil
	}

	p := st.takeParams()
	st.l.BeginGroup(p)
	body := trimNewLines(s[start:j])
	if err := st.child().blocks(body); err != nil {
		return 0, true, err
	}
	st.l.EndGroup(p)
	return skipLine(s, j+3), true, nil
}

// paragraph gathers lines up to the next block start.
func (st *state) paragraph(s string, i int) (int, error) {
	var lines []string
	for i <= len(s) {
		line, next := lineAt(s, i)
		// multi-line verbatim stays in one paragraph
		if len(lines) > 0 && startsBlock(line) && !unclosedInline(strings.Join(lines, "\n")) {
			break
		}
		lines = append(lines, line)
		i = next
		if next > len(s) {
			break
		}
	}

	p := st.takeParams()
	st.l.BeginParagraph(p)
	if err := st.inline(strings.Join(lines, "\n")); err != nil {
		return 0, err
	}
	st.l.EndParagraph(p)
	return i, nil
}

// unclosedInline reports whether s ends inside a verbatim or macro call.
func unclosedInline(s string) bool {
	return strings.Count(s, "{{{") > strings.Count(s, "}}}")
}

func (st *state) list(s string, i int) (int, error) {
	var open []listener.ListType
	first := st.takeParams()
	for i <= len(s) {
		line, next := lineAt(s, i)
		m := listLine.FindStringSubmatch(line)
		if m == nil {
			break
		}
		types := listTypes(m[1])
		d := len(types)

		for len(open) > d {
			st.l.EndListItem(nil)
			st.l.EndList(open[len(open)-1], nil)
			open = open[:len(open)-1]
		}
		if len(open) == d {
			st.l.EndListItem(nil)
			if open[d-1] != types[d-1] {
				st.l.EndList(open[d-1], nil)
				open = open[:d-1]
			}
		}
		for len(open) < d {
			t := types[len(open)]
			if len(open) == 0 {
				st.l.BeginList(t, first)
			} else {
				st.l.BeginList(t, nil)
			}
			open = append(open, t)
			if len(open) < d {
				st.l.BeginListItem(nil)
			}
		}

		st.l.BeginListItem(nil)
		if err := st.inline(m[2]); err != nil {
			return 0, err
		}
		i = next
		if next > len(s) {
			break
		}
	}
	for len(open) > 0 {
		st.l.EndListItem(nil)
		if len(open) == 1 {
			st.l.EndList(open[0], first)
		} else {
			st.l.EndList(open[len(open)-1], nil)
		}
		open = open[:len(open)-1]
	}
	return i, nil
}

// listTypes maps a marker such as "*1." to the list type of each level.
func listTypes(marker string) []listener.ListType {
	marker = strings.TrimSuffix(marker, ".")
	types := make([]listener.ListType, 0, len(marker))
	for _, c := range marker {
		if c == '1' {
			types = append(types, listener.ListNumbered)
		} else {
			types = append(types, listener.ListBulleted)
		}
	}
	return types
}

func (st *state) definitionList(s string, i int) (int, error) {
	p := st.takeParams()
	st.l.BeginDefinitionList(p)
	for i <= len(s) {
		line, next := lineAt(s, i)
		trimmed := strings.TrimLeft(line, " \t")
		switch {
		case strings.HasPrefix(trimmed, ";"):
			st.l.BeginDefinitionTerm()
			if err := st.inline(strings.TrimSpace(trimmed[1:])); err != nil {
				return 0, err
			}
			st.l.EndDefinitionTerm()
		case strings.HasPrefix(trimmed, ":"):
			st.l.BeginDefinitionDescription()
			if err := st.inline(strings.TrimSpace(trimmed[1:])); err != nil {
				return 0, err
			}
			st.l.EndDefinitionDescription()
		default:
			st.l.EndDefinitionList(p)
			return i, nil
		}
		i = next
		if next > len(s) {
			break
		}
	}
	st.l.EndDefinitionList(p)
	return i, nil
}

func (st *state) quotation(s string, i int) (int, error) {
	first := st.takeParams()
	depth := 0
	for i <= len(s) {
		line, next := lineAt(s, i)
		trimmed := strings.TrimLeft(line, " \t")
		if !strings.HasPrefix(trimmed, ">") {
			break
		}
		d := len(trimmed) - len(strings.TrimLeft(trimmed, ">"))
		for depth > d {
			st.l.EndQuotation(nil)
			depth--
		}
		for depth < d {
			if depth == 0 {
				st.l.BeginQuotation(first)
			} else {
				st.l.BeginQuotation(nil)
			}
			depth++
		}
		st.l.BeginQuotationLine()
		if err := st.inline(strings.TrimSpace(trimmed[d:])); err != nil {
			return 0, err
		}
		st.l.EndQuotationLine()
		i = next
		if next > len(s) {
			break
		}
	}
	for ; depth > 0; depth-- {
		if depth == 1 {
			st.l.EndQuotation(first)
		} else {
			st.l.EndQuotation(nil)
		}
	}
	return i, nil
}

func (st *state) table(s string, i int) (int, error) {
	p := st.takeParams()
	st.l.BeginTable(p)
	for i <= len(s) {
		line, next := lineAt(s, i)
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "|") {
			break
		}
		st.l.BeginTableRow(nil)
		for _, cell := range splitCells(trimmed) {
			head := strings.HasPrefix(cell, "=")
			text := cell
			if head {
				text = cell[1:]
				st.l.BeginTableHeadCell(nil)
			} else {
				st.l.BeginTableCell(nil)
			}
			if err := st.inline(strings.TrimSpace(text)); err != nil {
				return 0, err
			}
			if head {
				st.l.EndTableHeadCell(nil)
			} else {
				st.l.EndTableCell(nil)
			}
		}
		st.l.EndTableRow(nil)
		i = next
		if next > len(s) {
			break
		}
	}
	st.l.EndTable(p)
	return i, nil
}

// splitCells splits a table row at the top-level "|" separators. Pipes in
// links, macros, verbatim and escapes are kept.
func splitCells(row string) []string {
	var cells []string
	start := 1
	for j := 1; j < len(row); j++ {
		switch {
		case row[j] == '~':
			j++
		case strings.HasPrefix(row[j:], "[["):
			if _, end, ok := scanLink(row, j); ok {
				j = end - 1
			}
		case strings.HasPrefix(row[j:], "{{{"):
			if _, end, ok := scanVerbatim(row, j); ok {
				j = end - 1
			}
		case strings.HasPrefix(row[j:], "{{"):
			if call, ok := scanMacro(row, j); ok {
				j = call.end - 1
			}
		case row[j] == '|':
			cells = append(cells, row[start:j])
			start = j + 1
		}
	}
	if start < len(row) {
		cells = append(cells, row[start:])
	}
	return cells
}
