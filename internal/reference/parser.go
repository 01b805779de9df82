package reference

import (
	"regexp"
	"strings"
	"sync"

	"github.com/conneroisu/wikicore/internal/errors"
)

// TypeParser parses the content following a "<scheme>:" prefix. Returning
// ok=false makes the whole input fall back to untyped parsing.
type TypeParser interface {
	Type() ResourceType
	Parse(content string) (ref *ResourceReference, ok bool)
}

// urlScheme detects untyped URLs such as "https://example.org".
var urlScheme = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.\-]*://`)

// Parser classifies raw reference strings. It is safe for concurrent use.
type Parser struct {
	mu          sync.RWMutex
	typeParsers map[string]TypeParser
}

// NewParser returns a parser with every built-in type registered.
func NewParser() *Parser {
	p := &Parser{typeParsers: make(map[string]TypeParser)}
	for _, t := range []ResourceType{Document, Page, Space} {
		p.Register(anchoredParser{t: t})
	}
	for _, t := range []ResourceType{Attachment, URL, Mailto, Path, UNC, Data} {
		p.Register(plainParser{t: t})
	}
	p.Register(interwikiParser{})
	return p
}

// Register adds or replaces the parser for a scheme.
func (p *Parser) Register(tp TypeParser) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.typeParsers[tp.Type().Scheme] = tp
}

// Schemes returns the registered scheme names.
func (p *Parser) Schemes() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, 0, len(p.typeParsers))
	for s := range p.typeParsers {
		out = append(out, s)
	}
	return out
}

// Parse classifies raw into exactly one resource type. The first matching
// rule wins: a registered "<scheme>:" prefix, then an untyped URL, then an
// untyped document reference. The legacy "page@alias" interwiki form is not
// recognised. Only blank input is an error.
func (p *Parser) Parse(raw string) (*ResourceReference, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.NewParseError(errors.ErrCodeEmptyReference, "empty resource reference", nil)
	}

	if idx := strings.IndexByte(raw, ':'); idx > 0 {
		p.mu.RLock()
		tp, ok := p.typeParsers[raw[:idx]]
		p.mu.RUnlock()
		if ok {
			if ref, ok := tp.Parse(raw[idx+1:]); ok {
				ref.Typed = true
				return ref, nil
			}
		}
	}

	if urlScheme.MatchString(raw) {
		return New(raw, URL), nil
	}

	ref, _ := anchoredParser{t: Document}.Parse(raw)
	return ref, nil
}

// anchoredParser handles document-like types that accept "?query" and
// "#anchor" suffixes.
type anchoredParser struct {
	t ResourceType
}

func (a anchoredParser) Type() ResourceType { return a.t }

func (a anchoredParser) Parse(content string) (*ResourceReference, bool) {
	ref := New(content, a.t)

	anchor, hasAnchor := "", false
	if i := lastUnescaped(ref.Reference, '#'); i >= 0 {
		anchor, hasAnchor = ref.Reference[i+1:], true
		ref.Reference = ref.Reference[:i]
	}
	if i := lastUnescaped(ref.Reference, '?'); i >= 0 {
		ref.SetParameter(ParamQueryString, ref.Reference[i+1:])
		ref.Reference = ref.Reference[:i]
	}
	if hasAnchor {
		ref.SetParameter(ParamAnchor, anchor)
	}
	return ref, true
}

// plainParser keeps the content verbatim.
type plainParser struct {
	t ResourceType
}

func (p plainParser) Type() ResourceType { return p.t }

func (p plainParser) Parse(content string) (*ResourceReference, bool) {
	return New(content, p.t), true
}

// interwikiParser expects "<alias>:<content>".
type interwikiParser struct{}

func (interwikiParser) Type() ResourceType { return Interwiki }

func (interwikiParser) Parse(content string) (*ResourceReference, bool) {
	idx := strings.IndexByte(content, ':')
	if idx < 0 {
		return nil, false
	}
	ref := New(content[idx+1:], Interwiki)
	ref.SetParameter(ParamInterWikiAlias, content[:idx])
	return ref, true
}

// lastUnescaped returns the index of the last c not preceded by an odd number
// of backslashes, or -1.
func lastUnescaped(s string, c byte) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] != c {
			continue
		}
		slashes := 0
		for j := i - 1; j >= 0 && s[j] == '\\'; j-- {
			slashes++
		}
		if slashes%2 == 0 {
			return i
		}
	}
	return -1
}
