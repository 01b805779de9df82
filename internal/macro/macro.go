// Package macro defines wiki macros and the built-in ones.
//
// A macro is registered in the component manager under role Macro with its
// id as hint. The macro transformation looks each Macro block up by id and
// replaces it with the blocks Execute returns.
package macro

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/conneroisu/wikicore/internal/block"
	"github.com/conneroisu/wikicore/internal/errors"
	"github.com/conneroisu/wikicore/internal/listener"
	"github.com/conneroisu/wikicore/internal/model"
	"github.com/conneroisu/wikicore/internal/params"
	"github.com/conneroisu/wikicore/internal/parser"
	"github.com/conneroisu/wikicore/internal/syntax"
)

// ContentKind tells how a macro interprets its content.
type ContentKind int

const (
	// ContentNone macros take no content.
	ContentNone ContentKind = iota
	// ContentWiki content is markup in the syntax of the calling document.
	ContentWiki
	// ContentPlain content is used verbatim.
	ContentPlain
)

func (k ContentKind) String() string {
	switch k {
	case ContentWiki:
		return "wiki"
	case ContentPlain:
		return "plain"
	}
	return "none"
}

// DefaultPriority is the execution priority of macros that do not set one.
const DefaultPriority = 1000

// ParameterDescriptor documents one macro parameter.
type ParameterDescriptor struct {
	Name        string
	Description string
	Required    bool
	Default     string
}

// Descriptor describes a macro.
type Descriptor struct {
	ID             string
	Name           string
	Description    string
	Content        ContentKind
	SupportsInline bool
	// Priority orders execution: lower runs first. Zero means
	// DefaultPriority.
	Priority   int
	Parameters []ParameterDescriptor
}

// ExecutionPriority returns Priority, or DefaultPriority when unset.
func (d Descriptor) ExecutionPriority() int {
	if d.Priority == 0 {
		return DefaultPriority
	}
	return d.Priority
}

// Macro produces blocks from parameters and content.
type Macro interface {
	Descriptor() Descriptor
	Execute(ctx context.Context, p *params.Map, content string, mctx *Context) ([]block.Block, error)
}

// Context is what a macro knows about the call site.
type Context struct {
	// Inline is true when the macro is called inside a paragraph.
	Inline bool
	// XDOM is the document being transformed.
	XDOM *block.XDOM
	// Block is the macro call being executed.
	Block *block.Macro
	// Parser parses wiki content in the syntax of the document.
	Parser parser.Parser
	// Document is the reference of the document being transformed, if
	// known.
	Document *model.EntityReference
	// Depth counts the macro markers above the call.
	Depth int
}

// Syntax returns the syntax wiki content is parsed in.
func (c *Context) Syntax() syntax.Syntax {
	if c.Parser == nil {
		return syntax.Syntax{}
	}
	return c.Parser.Syntax()
}

// ParseContent parses wiki content. In inline context a single paragraph
// is unwrapped so the result fits in the surrounding paragraph.
func (c *Context) ParseContent(content string) ([]block.Block, error) {
	if c.Parser == nil {
		return nil, errors.NewTransformationError(errors.ErrCodeMacroFailed, "no parser for macro content", nil)
	}
	xdom, err := parser.ParseString(c.Parser, content)
	if err != nil {
		return nil, err
	}
	children := xdom.Children()
	if c.Inline && len(children) == 1 {
		if p, ok := children[0].(*block.Paragraph); ok {
			children = p.Children()
		}
	}
	return append([]block.Block(nil), children...), nil
}

// textBlocks parses s as inline wiki content, falling back to plain text.
func (c *Context) textBlocks(s string) []block.Block {
	inline := &Context{Inline: true, Parser: c.Parser}
	if blocks, err := inline.ParseContent(s); err == nil {
		return blocks
	}
	return parser.TextBlocks(s)
}

// ErrorClass is the class of the blocks that replace a failed macro.
const ErrorClass = "box errormessage"

// ErrorBlocks returns the blocks shown in place of a macro that failed.
func ErrorBlocks(inline bool, message string) []block.Block {
	text := parser.TextBlocks(message)
	if inline {
		return []block.Block{block.NewFormat(listener.FormatNone, text, params.New("class", ErrorClass))}
	}
	return []block.Block{block.NewGroup([]block.Block{block.NewParagraph(text, nil)}, params.New("class", ErrorClass))}
}

// Unsupported returns the error for an inline call of a macro that only
// works standalone.
func Unsupported(id string) error {
	return errors.NewTransformationError(errors.ErrCodeMacroFailed,
		fmt.Sprintf("the [%s] macro is a standalone macro and it cannot be used inline", id), nil)
}

// Failed wraps a macro execution failure.
func Failed(id string, cause error) error {
	return errors.NewTransformationError(errors.ErrCodeMacroFailed, fmt.Sprintf("failed to execute the [%s] macro", id), cause)
}

func boolParam(p *params.Map, name string, def bool) (bool, error) {
	v, ok := p.Get(name)
	if !ok || v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(strings.ToLower(v))
	if err != nil {
		return def, errors.NewTransformationError(errors.ErrCodeMacroFailed,
			fmt.Sprintf("parameter [%s] must be true or false, got [%s]", name, v), nil)
	}
	return b, nil
}

func intParam(p *params.Map, name string, def int) (int, error) {
	v, ok := p.Get(name)
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, errors.NewTransformationError(errors.ErrCodeMacroFailed,
			fmt.Sprintf("parameter [%s] must be a number, got [%s]", name, v), nil)
	}
	return n, nil
}

func requiredParam(id string, p *params.Map, name string) (string, error) {
	v := p.Value(name)
	if v == "" {
		return "", errors.NewTransformationError(errors.ErrCodeMacroFailed,
			fmt.Sprintf("the [%s] macro requires the [%s] parameter", id, name), nil)
	}
	return v, nil
}
