// Package transformation runs tree rewrites between parsing and rendering.
// Transformations are components; the Manager looks them up and applies
// them in priority order, lowest first.
package transformation

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/conneroisu/wikicore/internal/block"
	"github.com/conneroisu/wikicore/internal/component"
	"github.com/conneroisu/wikicore/internal/errors"
	"github.com/conneroisu/wikicore/internal/logging"
	"github.com/conneroisu/wikicore/internal/model"
	"github.com/conneroisu/wikicore/internal/parser"
	"github.com/conneroisu/wikicore/internal/syntax"
)

// Transformation rewrites a block tree in place.
type Transformation interface {
	Name() string
	Priority() int
	Transform(ctx context.Context, root block.Block, tctx *Context) error
}

// Context describes the document being transformed.
type Context struct {
	// XDOM is the document root. It defaults to the transformed block when
	// that block is an XDOM.
	XDOM *block.XDOM
	// Syntax is the syntax the document was written in.
	Syntax syntax.Syntax
	// Parser parses wiki content found in the document. When nil it is
	// looked up by Syntax.
	Parser parser.Parser
	// Document is the reference of the document, if known.
	Document *model.EntityReference
	// Diagnostics, when set, records recovered failures.
	Diagnostics *errors.Collector
}

func (c *Context) source() string {
	if c.Document != nil {
		return c.Document.String()
	}
	return ""
}

// Register registers transformations in m under their name.
func Register(m *component.Manager, transformations ...Transformation) error {
	for _, t := range transformations {
		if err := component.RegisterInstance[Transformation](m, t.Name(), t); err != nil {
			return err
		}
	}
	return nil
}

// Manager applies the registered transformations.
type Manager struct {
	components component.Resolver
	enabled    []string
	logger     logging.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithEnabled restricts the manager to the named transformations.
func WithEnabled(names ...string) Option {
	return func(m *Manager) { m.enabled = names }
}

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// NewManager creates a manager resolving transformations from components.
func NewManager(components component.Resolver, opts ...Option) *Manager {
	m := &Manager{components: components}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = logging.Discard()
	}
	m.logger = m.logger.WithComponent("transformation")
	return m
}

// Transformations returns the enabled transformations sorted by priority,
// then name.
func (m *Manager) Transformations() []Transformation {
	all, err := component.LookupList[Transformation](m.components)
	if err != nil {
		return nil
	}
	var out []Transformation
	for _, t := range all {
		if len(m.enabled) == 0 || slices.Contains(m.enabled, t.Name()) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority() != out[j].Priority() {
			return out[i].Priority() < out[j].Priority()
		}
		return out[i].Name() < out[j].Name()
	})
	return out
}

// Perform applies every enabled transformation to root. A failing
// transformation does not stop the next ones; the failures are returned
// joined.
func (m *Manager) Perform(ctx context.Context, root block.Block, tctx *Context) error {
	if tctx == nil {
		tctx = &Context{}
	}
	if tctx.XDOM == nil {
		if x, ok := root.(*block.XDOM); ok {
			tctx.XDOM = x
		}
	}
	if tctx.Parser == nil && !tctx.Syntax.IsZero() {
		if p, err := component.Lookup[parser.Parser](m.components, tctx.Syntax.String()); err == nil {
			tctx.Parser = p
		}
	}

	var errs []error
	for _, t := range m.Transformations() {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.logger.Debug(ctx, "applying transformation", "name", t.Name(), "priority", t.Priority())
		if err := t.Transform(ctx, root, tctx); err != nil {
			m.logger.Error(ctx, err, "transformation failed", "name", t.Name())
			errs = append(errs, errors.NewTransformationError(errors.ErrCodeTransformFailed,
				fmt.Sprintf("transformation [%s] failed", t.Name()), err))
		}
	}
	return errors.Join(errs...)
}
