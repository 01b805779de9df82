// Package query translates XWQL, the wiki's object query language, into
// HQL for the storage layer, and runs the translated queries.
package query

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/alecthomas/participle/v2"

	"github.com/conneroisu/wikicore/internal/errors"
	"github.com/conneroisu/wikicore/internal/logging"
)

// Prefix is prepended to statements that start after the from clause.
const Prefix = "select doc.fullName from Document as doc"

// Storage class names of the XWQL range types.
const (
	StorageDocument = "XWikiDocument"
	StorageObject   = "BaseObject"
	StorageSpace    = "XWikiSpace"
)

var rangeTypes = map[string]string{
	"Document": StorageDocument,
	"Object":   StorageObject,
	"Space":    StorageSpace,
}

// objectColumns are BaseObject columns that are not properties.
var objectColumns = map[string]bool{
	"id": true, "className": true, "name": true, "number": true, "guid": true,
}

var leading = regexp.MustCompile(`(?i)^(where|order|group|from)\b`)

// Normalize completes a short statement with Prefix: an empty statement
// selects every document, a statement starting with where, order or group
// filters them, and one starting with from or "," adds declarations.
func Normalize(statement string) string {
	s := strings.TrimSpace(statement)
	if s == "" {
		return Prefix
	}
	if strings.HasPrefix(s, ",") {
		return Prefix + s
	}
	if m := leading.FindStringSubmatch(s); m != nil {
		if strings.EqualFold(m[1], "from") {
			return Prefix + ", " + strings.TrimSpace(s[len(m[1]):])
		}
		return Prefix + " " + s
	}
	return s
}

// Translator turns XWQL into HQL.
type Translator struct {
	types  PropertyTypeResolver
	logger logging.Logger
}

// NewTranslator returns a translator using types for property joins.
func NewTranslator(types PropertyTypeResolver, logger logging.Logger) *Translator {
	if types == nil {
		types = NewPropertyTypes(DefaultPropertyType, nil)
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Translator{types: types, logger: logger.WithComponent("xwql")}
}

// Parse normalizes and parses statement.
func Parse(statement string) (*Statement, error) {
	normalized := Normalize(statement)
	stmt, err := xwqlParser.ParseString("", normalized)
	if err != nil {
		qerr := errors.NewQueryError(errors.ErrCodeQuerySyntax, "invalid XWQL statement", err).
			WithContext("statement", normalized)
		var perr participle.Error
		if errors.As(err, &perr) {
			pos := perr.Position()
			return nil, errors.WithLocationInfo(qerr, pos.Line, pos.Column)
		}
		return nil, qerr
	}
	return stmt, nil
}

// Translate returns the HQL for an XWQL statement.
func (t *Translator) Translate(ctx context.Context, statement string) (string, error) {
	stmt, err := Parse(statement)
	if err != nil {
		return "", err
	}
	tr := &translation{
		ctx:     ctx,
		t:       t,
		docs:    make(map[string]bool),
		objects:  make(map[string]string),
		joins:    make(map[string]string),
		implicit: make(map[string]string),
	}
	return tr.statement(stmt)
}

// translation is the state of one Translate call.
type translation struct {
	ctx context.Context
	t   *Translator

	docs     map[string]bool
	objects  map[string]string // alias -> class name
	joins    map[string]string // "alias.prop" -> join alias
	implicit map[string]string // "doc(class)" -> object alias

	from   []string
	conds  []string
	n      int
	member bool
	err    error
}

func (tr *translation) statement(s *Statement) (string, error) {
	for _, d := range s.From.Decls {
		if err := tr.decl(d); err != nil {
			return "", err
		}
	}

	var sb strings.Builder
	sb.WriteString("select ")
	if s.Select.Distinct {
		sb.WriteString("distinct ")
	}
	sb.WriteString(tr.terms(s.Select.Terms))

	var where string
	if s.Where != nil {
		where = tr.terms(s.Where.Terms)
	}
	var tail []string
	for _, c := range s.Tail {
		kw := strings.ToLower(c.Keyword)
		if c.By {
			kw += " by"
		}
		tail = append(tail, kw+" "+tr.terms(c.Terms))
	}

	sb.WriteString(" from ")
	sb.WriteString(strings.Join(tr.from, ", "))
	switch {
	case where != "" && len(tr.conds) > 0:
		sb.WriteString(" where (" + where + ") and " + strings.Join(tr.conds, " and "))
	case where != "":
		sb.WriteString(" where " + where)
	case len(tr.conds) > 0:
		sb.WriteString(" where " + strings.Join(tr.conds, " and "))
	}
	for _, c := range tail {
		sb.WriteString(" " + c)
	}

	if tr.err != nil {
		return "", tr.err
	}
	if tr.member {
		tr.t.logger.Warn(tr.ctx, nil, "'member of' translated to '=', only valid for single valued list properties")
	}
	return sb.String(), nil
}

func (tr *translation) decl(d *Decl) error {
	p := d.Path
	if len(p.Parts) == 1 && p.Args == nil {
		if storage, ok := rangeTypes[p.Parts[0]]; ok {
			switch p.Parts[0] {
			case "Document":
				tr.docs[d.Alias] = true
			case "Object":
				tr.objects[d.Alias] = ""
			}
			tr.from = append(tr.from, declare(storage, d.Alias))
			return nil
		}
	}

	if isObjectCall(p) {
		doc := p.Parts[0]
		if len(p.Fields) > 0 {
			return errors.NewQueryError(errors.ErrCodeQuerySyntax,
				fmt.Sprintf("%s.object() declares an object, not a property", doc), nil).WithLocation(d.Pos.Line, d.Pos.Column)
		}
		if !tr.docs[doc] {
			return errors.NewQueryError(errors.ErrCodeUnknownAlias,
				fmt.Sprintf("%s is not a document alias", doc), nil).WithLocation(d.Pos.Line, d.Pos.Column)
		}
		if d.Alias == "" {
			return errors.NewQueryError(errors.ErrCodeQuerySyntax,
				fmt.Sprintf("%s.object() needs an alias", doc), nil).WithLocation(d.Pos.Line, d.Pos.Column)
		}
		tr.declareObject(doc, d.Alias, className(p.Args))
		return nil
	}

	tr.from = append(tr.from, declare(renderPath(p, nil), d.Alias))
	return nil
}

func isObjectCall(p *Path) bool {
	return len(p.Parts) == 2 && p.Parts[1] == "object" && p.Args != nil
}

// declareObject joins the objects of class attached to doc under alias.
func (tr *translation) declareObject(doc, alias, class string) {
	tr.objects[alias] = class
	tr.from = append(tr.from, declare(StorageObject, alias))
	tr.conds = append(tr.conds,
		fmt.Sprintf("%s.name = %s.fullName", alias, doc),
		fmt.Sprintf("%s.className = '%s'", alias, escapeLiteral(class)))
}

func declare(name, alias string) string {
	if alias == "" {
		return name
	}
	return name + " as " + alias
}

// className reads the class of doc.object(...): a dotted name or a string
// literal.
func className(args *Group) string {
	if len(args.Terms) != 1 {
		return renderTerms(args.Terms, nil)
	}
	t := args.Terms[0]
	switch {
	case t.Path != nil && t.Path.Args == nil:
		return strings.Join(t.Path.Parts, ".")
	case t.Literal != nil:
		return unquote(*t.Literal)
	}
	return renderTerms(args.Terms, nil)
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') {
		inner := s[1 : len(s)-1]
		if s[0] == '\'' {
			return strings.ReplaceAll(inner, "''", "'")
		}
		return inner
	}
	return s
}

func escapeLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func (tr *translation) terms(terms []*Term) string {
	return renderTerms(terms, tr)
}

// property rewrites an object property access to the value of its join.
func (tr *translation) property(p *Path) (string, bool) {
	if tr == nil || len(p.Parts) != 2 || p.Args != nil || len(p.Fields) > 0 {
		return "", false
	}
	alias, prop := p.Parts[0], p.Parts[1]
	if _, ok := tr.objects[alias]; !ok || objectColumns[prop] {
		return "", false
	}
	return tr.propertyValue(alias, prop), true
}

// inlineObject rewrites doc.object(Class).prop through an implicit object
// declaration shared by every use of the same document alias and class.
func (tr *translation) inlineObject(p *Path) (string, bool) {
	if tr == nil || !isObjectCall(p) || len(p.Fields) == 0 {
		return "", false
	}
	doc := p.Parts[0]
	switch {
	case !tr.docs[doc]:
		tr.fail(errors.NewQueryError(errors.ErrCodeUnknownAlias,
			fmt.Sprintf("%s is not a document alias", doc), nil).WithLocation(p.Pos.Line, p.Pos.Column))
		return "", false
	case len(p.Fields) > 1:
		tr.fail(errors.NewQueryError(errors.ErrCodeQuerySyntax,
			fmt.Sprintf("%s.object() takes a single property, got %s", doc, strings.Join(p.Fields, ".")), nil).
			WithLocation(p.Pos.Line, p.Pos.Column))
		return "", false
	}

	class := className(p.Args)
	key := doc + "(" + class + ")"
	alias, ok := tr.implicit[key]
	if !ok {
		tr.n++
		alias = fmt.Sprintf("%s_obj%d", doc, tr.n)
		tr.implicit[key] = alias
		tr.declareObject(doc, alias, class)
	}
	prop := p.Fields[0]
	if objectColumns[prop] {
		return alias + "." + prop, true
	}
	return tr.propertyValue(alias, prop), true
}

func (tr *translation) fail(err error) {
	if tr.err == nil {
		tr.err = err
	}
}

// propertyValue returns the value column of the join for alias.prop,
// declaring the join on first use.
func (tr *translation) propertyValue(alias, prop string) string {
	class := tr.objects[alias]
	key := alias + "." + prop
	join, ok := tr.joins[key]
	if !ok {
		tr.n++
		join = fmt.Sprintf("%s_%s%d", alias, prop, tr.n)
		tr.joins[key] = join
		tr.from = append(tr.from, tr.t.types.PropertyType(class, prop)+" as "+join)
		tr.conds = append(tr.conds,
			fmt.Sprintf("%s.id.id = %s.id", join, alias),
			fmt.Sprintf("%s.id.name = '%s'", join, escapeLiteral(prop)))
	}
	return join + ".value"
}

// renderTerms prints terms separated by single spaces. A nil translation
// copies paths unchanged.
func renderTerms(terms []*Term, tr *translation) string {
	var sb strings.Builder
	for i, t := range terms {
		if i > 0 && !t.Comma {
			sb.WriteByte(' ')
		}
		sb.WriteString(renderTerm(t, tr))
	}
	return sb.String()
}

func renderTerm(t *Term, tr *translation) string {
	switch {
	case t.Member:
		if tr != nil {
			tr.member = true
		}
		return "="
	case t.Path != nil:
		return renderPath(t.Path, tr)
	case t.Literal != nil:
		return *t.Literal
	case t.Number != nil:
		return *t.Number
	case t.Param != nil:
		return *t.Param
	case t.Keyword != nil:
		return strings.ToLower(*t.Keyword)
	case t.Group != nil:
		return "(" + renderTerms(t.Group.Terms, tr) + ")"
	case t.Comma:
		return ","
	case t.Operator != nil:
		return *t.Operator
	}
	return ""
}

func renderPath(p *Path, tr *translation) string {
	if v, ok := tr.property(p); ok {
		return v
	}
	if v, ok := tr.inlineObject(p); ok {
		return v
	}
	s := strings.Join(p.Parts, ".")
	if p.Args != nil {
		s += "(" + renderTerms(p.Args.Terms, tr) + ")"
	}
	if len(p.Fields) > 0 {
		s += "." + strings.Join(p.Fields, ".")
	}
	return s
}
