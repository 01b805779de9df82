package transformation

import (
	"context"
	"fmt"

	"github.com/conneroisu/wikicore/internal/block"
	"github.com/conneroisu/wikicore/internal/component"
	"github.com/conneroisu/wikicore/internal/errors"
	"github.com/conneroisu/wikicore/internal/logging"
	"github.com/conneroisu/wikicore/internal/macro"
)

const (
	// MacroName is the hint of the macro transformation.
	MacroName = "macro"
	// MacroPriority runs macros before the other transformations.
	MacroPriority = 100
	// DefaultMaxDepth bounds macros generating macros.
	DefaultMaxDepth = 10
	// DefaultMaxExecutions bounds the macro calls in one document.
	DefaultMaxExecutions = 10000
)

// Macros executes Macro blocks. Each call is replaced by a MacroMarker
// holding the generated blocks, which are transformed in turn. Unknown
// and failing macros are replaced by error blocks.
type Macros struct {
	components    component.Resolver
	maxDepth      int
	maxExecutions int
	logger        logging.Logger
}

var _ Transformation = (*Macros)(nil)

// NewMacros creates the macro transformation. maxDepth <= 0 selects
// DefaultMaxDepth.
func NewMacros(components component.Resolver, maxDepth int, logger logging.Logger) *Macros {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Macros{
		components:    components,
		maxDepth:      maxDepth,
		maxExecutions: DefaultMaxExecutions,
		logger:        logger.WithComponent("macro-transformation"),
	}
}

func (t *Macros) Name() string  { return MacroName }
func (t *Macros) Priority() int { return MacroPriority }

// call is a pending Macro block and the macro it resolved to, if any.
type call struct {
	block *block.Macro
	macro macro.Macro
}

// next returns the call to execute first: unknown macros, then the lowest
// execution priority, then document order.
func (t *Macros) next(root block.Block) (call, bool) {
	var (
		best     call
		bestPrio int
		found    bool
	)
	for _, b := range block.Find[*block.Macro](root) {
		m, err := macro.Lookup(t.components, b.ID)
		prio := 0
		if err == nil {
			prio = m.Descriptor().ExecutionPriority()
		} else {
			m = nil
		}
		if !found || prio < bestPrio {
			best, bestPrio, found = call{block: b, macro: m}, prio, true
		}
	}
	return best, found
}

// depth counts the macro markers above b.
func depth(b block.Block) int {
	n := 0
	for p := b.Parent(); p != nil; p = p.Parent() {
		if _, ok := p.(*block.MacroMarker); ok {
			n++
		}
	}
	return n
}

func (t *Macros) Transform(ctx context.Context, root block.Block, tctx *Context) error {
	if tctx == nil {
		tctx = &Context{}
	}
	xdom := tctx.XDOM
	if xdom == nil {
		xdom, _ = root.(*block.XDOM)
	}

	for executed := 0; ; executed++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		c, ok := t.next(root)
		if !ok {
			return nil
		}
		if executed >= t.maxExecutions {
			return errors.NewTransformationError(errors.ErrCodeMacroDepth,
				fmt.Sprintf("more than %d macro executions", t.maxExecutions), nil)
		}
		parent := c.block.Parent()
		if parent == nil {
			return errors.NewTransformationError(errors.ErrCodeMacroFailed,
				fmt.Sprintf("macro [%s] has no parent", c.block.ID), nil)
		}

		generated, err := t.execute(ctx, c, xdom, tctx)
		if err != nil {
			t.logger.Warn(ctx, err, "macro failed", "macro", c.block.ID, "document", tctx.source())
			if tctx.Diagnostics != nil {
				tctx.Diagnostics.AddError(tctx.source(), err)
			}
			generated = macro.ErrorBlocks(c.block.Inline, describe(err))
		}

		marker := block.NewMacroMarker(c.block.ID, c.block.Parameters(), c.block.Content, c.block.Inline, generated)
		if err := block.ReplaceChild(parent, c.block, marker); err != nil {
			return err
		}
	}
}

func (t *Macros) execute(ctx context.Context, c call, xdom *block.XDOM, tctx *Context) ([]block.Block, error) {
	id := c.block.ID
	if c.macro == nil {
		return nil, errors.NewTransformationError(errors.ErrCodeMacroNotFound,
			fmt.Sprintf("unknown macro: %s", id), nil).WithSuggestions(id, macro.IDs(t.components))
	}
	d := depth(c.block)
	if d >= t.maxDepth {
		return nil, errors.NewTransformationError(errors.ErrCodeMacroDepth,
			fmt.Sprintf("maximum macro depth of %d reached by [%s]", t.maxDepth, id), nil)
	}
	if c.block.Inline && !c.macro.Descriptor().SupportsInline {
		return nil, macro.Unsupported(id)
	}

	mctx := &macro.Context{
		Inline:   c.block.Inline,
		XDOM:     xdom,
		Block:    c.block,
		Parser:   tctx.Parser,
		Document: tctx.Document,
		Depth:    d,
	}
	t.logger.Debug(ctx, "executing macro", "macro", id, "depth", d)
	return c.macro.Execute(ctx, c.block.Parameters(), c.block.Content, mctx)
}

// describe is the message shown in place of a failed macro.
func describe(err error) string {
	msg := err.Error()
	var we *errors.WikiError
	if errors.As(err, &we) {
		msg = we.Message
		if we.Cause != nil {
			msg += ": " + describe(we.Cause)
		}
	}
	if s := errors.FormatSuggestions(errors.Suggestions(err)); s != "" {
		msg += " (" + s + ")"
	}
	return msg
}
