package document

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/conneroisu/wikicore/internal/errors"
	"github.com/conneroisu/wikicore/internal/model"
	"github.com/conneroisu/wikicore/internal/syntax"
)

var (
	xpathRoot     = xpath.MustCompile("/xwikidoc")
	xpathWeb      = xpath.MustCompile("/xwikidoc/web")
	xpathName     = xpath.MustCompile("/xwikidoc/name")
	xpathTitle    = xpath.MustCompile("/xwikidoc/title")
	xpathSyntax   = xpath.MustCompile("/xwikidoc/syntaxId")
	xpathContent  = xpath.MustCompile("/xwikidoc/content")
	xpathLocation = xpath.MustCompile("/xwikidoc/@reference")
)

// xml11Prolog matches the XML 1.1 declaration of xwikidoc exports, which
// encoding/xml refuses. The exports use no 1.1-only constructs.
var xml11Prolog = regexp.MustCompile(`^((?:\x{feff})?\s*<\?xml\s+version\s*=\s*)(["'])1\.1["']`)

// downgradeProlog rewrites a leading XML 1.1 declaration to 1.0.
func downgradeProlog(data []byte) []byte {
	return xml11Prolog.ReplaceAll(data, []byte("${1}${2}1.0${2}"))
}

// parseXWikiDoc reads an xwikidoc export: the document reference comes
// from the reference attribute, or from the web and name elements.
func parseXWikiDoc(data []byte, defaults model.Defaults) (*Document, error) {
	root, err := xmlquery.Parse(bytes.NewReader(downgradeProlog(data)))
	if err != nil {
		return nil, errors.NewParseError(errors.ErrCodeSyntax, "invalid xwikidoc", err)
	}
	if xmlquery.QuerySelector(root, xpathRoot) == nil {
		return nil, errors.NewParseError(errors.ErrCodeSyntax, "missing xwikidoc element", nil)
	}

	resolver := model.NewResolver(defaults)
	var ref *model.EntityReference
	if s := text(root, xpathLocation); s != "" {
		ref = resolver.ResolveDocument(s, nil)
	} else {
		web, name := text(root, xpathWeb), text(root, xpathName)
		if name == "" {
			return nil, errors.NewParseError(errors.ErrCodeSyntax, "xwikidoc without name", nil)
		}
		if web == "" {
			web = defaults.Space
		}
		ref = resolver.ResolveDocument(web+"."+escapePage(name), nil)
	}

	s := syntax.XWiki21
	if id := text(root, xpathSyntax); id != "" {
		parsed, err := syntax.Parse(id)
		if err != nil {
			return nil, errors.NewParseError(errors.ErrCodeSyntax, "unknown syntax "+id, err)
		}
		s = parsed
	}
	return &Document{
		Reference: ref,
		Syntax:    s,
		Title:     text(root, xpathTitle),
		Content:   text(root, xpathContent),
	}, nil
}

func text(root *xmlquery.Node, expr *xpath.Expr) string {
	n := xmlquery.QuerySelector(root, expr)
	if n == nil {
		return ""
	}
	return strings.TrimSpace(n.InnerText())
}

func escapePage(name string) string {
	r := strings.NewReplacer(`\`, `\\`, ".", `\.`, ":", `\:`)
	return r.Replace(name)
}
