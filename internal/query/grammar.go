package query

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Statement is a parsed XWQL statement. Expressions are kept as flat term
// sequences: translation only rewrites range declarations and property
// paths, the rest is copied through.
type Statement struct {
	Pos    lexer.Position
	Select *Select   `"select" @@`
	From   *From     `"from" @@`
	Where  *Where    `( "where" @@ )?`
	Tail   []*Clause `@@*`
}

// Select is the projection list.
type Select struct {
	Distinct bool    `@"distinct"?`
	Terms    []*Term `@@+`
}

// From is the list of range declarations.
type From struct {
	Decls []*Decl `@@ ( "," @@ )*`
}

// Decl declares a range variable, as in "Document as doc" or
// "doc.object(XWiki.XWikiUsers) as usr".
type Decl struct {
	Pos   lexer.Position
	Path  *Path  `@@`
	Alias string `( "as"? @Ident )?`
}

// Where is the filter expression.
type Where struct {
	Terms []*Term `@@+`
}

// Clause is an "order by", "group by" or "having" clause.
type Clause struct {
	Keyword string  `@( "order" | "group" | "having" )`
	By      bool    `@"by"?`
	Terms   []*Term `@@+`
}

// Term is one element of an expression.
type Term struct {
	Pos      lexer.Position
	Member   bool    `(  @( "member" "of" )`
	Path     *Path   ` | @@`
	Literal  *string ` | @String`
	Number   *string ` | @Number`
	Param    *string ` | @Param`
	Keyword  *string ` | @( "and" | "or" | "not" | "in" | "is" | "null" | "like" | "between" | "escape" | "exists" | "distinct" | "asc" | "desc" | "all" | "any" | "some" | "case" | "when" | "then" | "else" | "end" )`
	Group    *Group  ` | @@`
	Comma    bool    ` | @","`
	Operator *string ` | @Operator )`
}

// Group is a parenthesized term sequence.
type Group struct {
	Terms []*Term `"(" @@* ")"`
}

// Path is a dotted name, optionally called with arguments and followed by
// more names: "doc.fullName", "upper(doc.name)",
// "doc.object(XWiki.XWikiUsers)", "doc.object(XWiki.XWikiUsers).email".
type Path struct {
	Pos    lexer.Position
	Parts  []string `@Ident ( "." @Ident )*`
	Args   *Group   `@@?`
	Fields []string `( "." @Ident )*`
}

var xwqlLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "String", Pattern: `'(?:[^']|'')*'|"(?:[^"\\]|\\.)*"`},
	{Name: "Param", Pattern: `:[a-zA-Z_][a-zA-Z0-9_]*|\?[0-9]*`},
	{Name: "Number", Pattern: `[0-9]+(?:\.[0-9]+)?`},
	{Name: "Keyword", Pattern: `(?i)\b(?:select|distinct|from|where|order|group|having|by|as|and|or|not|member|of|in|is|null|like|between|escape|exists|asc|desc|all|any|some|case|when|then|else|end)\b`},
	{Name: "Ident", Pattern: `[a-zA-Z_$][a-zA-Z0-9_$]*`},
	{Name: "Punct", Pattern: `[.,()]`},
	{Name: "Operator", Pattern: `<>|!=|<=|>=|\|\||[-+*/%=<>]`},
})

var xwqlParser = participle.MustBuild[Statement](
	participle.Lexer(xwqlLexer),
	participle.Elide("Whitespace"),
	participle.CaseInsensitive("Keyword"),
	participle.UseLookahead(4),
)
