package xwiki

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/conneroisu/wikicore/internal/errors"
	"github.com/conneroisu/wikicore/internal/listener"
	"github.com/conneroisu/wikicore/internal/params"
	"github.com/conneroisu/wikicore/internal/reference"
)

var (
	freeURL = regexp.MustCompile(`^(?:https?|ftp)://[^\s\[\]{}<>"|]+`)

	formatMarkers = []struct {
		marker string
		format listener.Format
	}{
		{"**", listener.FormatBold},
		{"//", listener.FormatItalic},
		{"__", listener.FormatUnderlined},
		{"--", listener.FormatStrikedout},
		{"##", listener.FormatMonospace},
		{"^^", listener.FormatSuperscript},
		{",,", listener.FormatSubscript},
	}
)

type openFormat struct {
	format listener.Format
	params *params.Map
}

// inlineParser emits the inline events of one block's text.
type inlineParser struct {
	st      *state
	l       listener.Listener
	word    strings.Builder
	formats []openFormat
}

func (st *state) inline(s string) error {
	ip := &inlineParser{st: st, l: st.l}
	return ip.parse(s)
}

func (ip *inlineParser) flush() {
	if ip.word.Len() > 0 {
		ip.l.OnWord(ip.word.String())
		ip.word.Reset()
	}
}

// char emits one literal character.
func (ip *inlineParser) char(r rune) {
	switch {
	case r == '\n':
		ip.flush()
		ip.l.OnNewLine()
	case r == ' ' || r == '\t':
		ip.flush()
		ip.l.OnSpace()
	case listener.IsSpecialSymbol(r):
		ip.flush()
		ip.l.OnSpecialSymbol(r)
	default:
		ip.word.WriteRune(r)
	}
}

func (ip *inlineParser) text(s string) {
	for _, r := range s {
		ip.char(r)
	}
}

func (ip *inlineParser) parse(s string) error {
	i := 0
	for i < len(s) {
		n, err := ip.token(s, i)
		if err != nil {
			return err
		}
		i += n
	}
	ip.flush()
	for len(ip.formats) > 0 {
		ip.close()
	}
	return nil
}

// token consumes the construct at s[i] and returns its length.
func (ip *inlineParser) token(s string, i int) (int, error) {
	rest := s[i:]
	switch {
	case rest[0] == '~' && len(rest) > 1:
		r, size := utf8.DecodeRuneInString(rest[1:])
		ip.char(r)
		return 1 + size, nil

	case strings.HasPrefix(rest, `\\`):
		ip.flush()
		ip.l.OnNewLine()
		return 2, nil

	case strings.HasPrefix(rest, "{{{"):
		if content, end, ok := scanVerbatim(s, i); ok {
			ip.flush()
			ip.l.OnVerbatim(content, true, nil)
			return end - i, nil
		}

	case strings.HasPrefix(rest, "{{"):
		if call, ok := scanMacro(s, i); ok {
			ip.flush()
			ip.l.OnMacro(call.id, call.params, call.content, true)
			return call.end - i, nil
		}

	case strings.HasPrefix(rest, "[["):
		if inner, end, ok := scanLink(s, i); ok {
			ip.flush()
			return end - i, ip.link(inner)
		}

	case strings.HasPrefix(rest, "(%%)"):
		if ip.indexOf(listener.FormatNone) >= 0 {
			ip.flush()
			ip.closeFormat(listener.FormatNone)
			return 4, nil
		}

	case strings.HasPrefix(rest, "(%"):
		if end := strings.Index(rest, "%)"); end > 1 {
			ip.flush()
			p := ParseParameters(rest[2:end])
			ip.l.BeginFormat(listener.FormatNone, p)
			ip.formats = append(ip.formats, openFormat{format: listener.FormatNone, params: p})
			return end + 2, nil
		}

	case ip.word.Len() == 0 && freeURL.MatchString(rest):
		url := strings.TrimRight(freeURL.FindString(rest), ".,;:!?)'")
		ref := reference.New(url, reference.URL)
		ip.l.BeginLink(ref, true, nil)
		ip.l.EndLink(ref, true, nil)
		return len(url), nil
	}

	for _, fm := range formatMarkers {
		if !strings.HasPrefix(rest, fm.marker) {
			continue
		}
		if ip.indexOf(fm.format) >= 0 {
			ip.flush()
			ip.closeFormat(fm.format)
			return 2, nil
		}
		if strings.Contains(rest[2:], fm.marker) {
			ip.flush()
			ip.l.BeginFormat(fm.format, nil)
			ip.formats = append(ip.formats, openFormat{format: fm.format})
			return 2, nil
		}
	}

	r, size := utf8.DecodeRuneInString(rest)
	ip.char(r)
	return size, nil
}

func (ip *inlineParser) indexOf(f listener.Format) int {
	for i := len(ip.formats) - 1; i >= 0; i-- {
		if ip.formats[i].format == f {
			return i
		}
	}
	return -1
}

func (ip *inlineParser) close() {
	top := ip.formats[len(ip.formats)-1]
	ip.formats = ip.formats[:len(ip.formats)-1]
	ip.l.EndFormat(top.format, top.params)
}

// closeFormat closes f and reopens the formats that were nested in it.
func (ip *inlineParser) closeFormat(f listener.Format) {
	at := ip.indexOf(f)
	reopen := append([]openFormat(nil), ip.formats[at+1:]...)
	for len(ip.formats) > at {
		ip.close()
	}
	for _, of := range reopen {
		ip.l.BeginFormat(of.format, of.params)
		ip.formats = append(ip.formats, of)
	}
}

// link handles the inner text of "[[...]]".
func (ip *inlineParser) link(inner string) error {
	body, paramText, _ := splitLastUnescaped(inner, "||")
	p := ParseParameters(paramText)
	if p.Len() == 0 {
		p = nil
	}

	if strings.HasPrefix(body, "image:") {
		ref, err := ip.imageReference(strings.TrimPrefix(body, "image:"))
		if err != nil {
			return ip.broken(inner, err)
		}
		ip.l.OnImage(ref, false, p)
		return nil
	}

	label, target, hasLabel := splitLastUnescaped(body, ">>")
	if !hasLabel {
		target, label = body, ""
	}
	ref, err := ip.st.p.refs.Parse(strings.TrimSpace(target))
	if err != nil {
		return ip.broken(inner, err)
	}

	ip.l.BeginLink(ref, false, p)
	if label != "" {
		nested := &inlineParser{st: ip.st, l: ip.l}
		if err := nested.parse(label); err != nil {
			return err
		}
	}
	ip.l.EndLink(ref, false, p)
	return nil
}

// imageReference parses an image target. Untyped document references
// point to attachments of the current document.
func (ip *inlineParser) imageReference(raw string) (*reference.ResourceReference, error) {
	raw = strings.TrimSpace(raw)
	ref, err := ip.st.p.refs.Parse(raw)
	if err != nil {
		return nil, err
	}
	if !ref.Typed && ref.Type == reference.Document {
		return reference.New(raw, reference.Attachment), nil
	}
	return ref, nil
}

// broken applies the broken link policy to "[[inner]]".
func (ip *inlineParser) broken(inner string, cause error) error {
	if ip.st.p.broken != BrokenLinksRender {
		return errors.NewParseError(errors.ErrCodeBrokenReference, "broken link [["+inner+"]]", cause)
	}
	p := params.New("class", BrokenLinkClass)
	ip.l.BeginFormat(listener.FormatNone, p)
	ip.text("[[" + inner + "]]")
	ip.flush()
	ip.l.EndFormat(listener.FormatNone, p)
	return nil
}
