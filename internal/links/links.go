// Package links finds the wiki entities a document points to: link and
// image targets, plus the references hidden in macro calls.
package links

import (
	"context"
	"sort"

	"github.com/conneroisu/wikicore/internal/block"
	"github.com/conneroisu/wikicore/internal/component"
	"github.com/conneroisu/wikicore/internal/errors"
	"github.com/conneroisu/wikicore/internal/logging"
	"github.com/conneroisu/wikicore/internal/model"
	"github.com/conneroisu/wikicore/internal/reference"
	"github.com/conneroisu/wikicore/internal/syntax"
)

// Restrictions map an entity type to the resource types it is extracted
// from. A reference of a listed resource type is resolved and reduced to
// the entity of the key type.
type Restrictions map[model.EntityType][]reference.ResourceType

// DefaultRestrictions keep documents, spaces and attachments reached
// through their own resource types.
var DefaultRestrictions = Restrictions{
	model.EntityDocument:   {reference.Document, reference.Page},
	model.EntitySpace:      {reference.Space},
	model.EntityAttachment: {reference.Attachment},
}

// entityTypes returns the keys of r in a stable order.
func (r Restrictions) entityTypes() []model.EntityType {
	types := make([]model.EntityType, 0, len(r))
	for t := range r {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] > types[j] })
	return types
}

func (r Restrictions) allows(t model.EntityType, rt reference.ResourceType) bool {
	for _, allowed := range r[t] {
		if allowed == rt {
			return true
		}
	}
	return false
}

// Extractor walks documents for references.
type Extractor struct {
	components component.Resolver
	resolver   model.EntityResolver
	syntax     syntax.Syntax
	logger     logging.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithSyntax sets the syntax macro content is parsed in.
func WithSyntax(s syntax.Syntax) Option {
	return func(e *Extractor) { e.syntax = s }
}

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) Option {
	return func(e *Extractor) { e.logger = logger }
}

// NewExtractor returns an extractor resolving references through resolver
// and macro refactorings registered in components.
func NewExtractor(components component.Resolver, resolver model.EntityResolver, opts ...Option) *Extractor {
	e := &Extractor{components: components, resolver: resolver, syntax: syntax.XWiki21}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logging.Discard()
	}
	e.logger = e.logger.WithComponent("links")
	return e
}

// References returns the resource references of root in document order,
// including the ones extracted from macro calls.
func (e *Extractor) References(ctx context.Context, root block.Block) []*reference.ResourceReference {
	var refs []*reference.ResourceReference
	block.Walk(root, func(b block.Block) bool {
		switch t := b.(type) {
		case *block.Link:
			if t.Reference != nil {
				refs = append(refs, t.Reference)
			}
		case *block.Image:
			if t.Reference != nil {
				refs = append(refs, t.Reference)
			}
		case *block.Macro:
			refs = append(refs, e.macroReferences(ctx, t)...)
		}
		return true
	})
	return refs
}

// Refactoring returns the MacroRefactoring for macro id, falling back to
// the default one.
func (e *Extractor) Refactoring(id string) (MacroRefactoring, error) {
	r, err := component.Lookup[MacroRefactoring](e.components, id)
	if err == nil {
		return r, nil
	}
	if !errors.IsComponentLookupError(err) {
		return nil, err
	}
	return component.Lookup[MacroRefactoring](e.components, DefaultHint)
}

func (e *Extractor) macroReferences(ctx context.Context, call *block.Macro) []*reference.ResourceReference {
	r, err := e.Refactoring(call.ID)
	if err != nil {
		e.logger.Debug(ctx, "no macro refactoring", "macro", call.ID)
		return nil
	}
	refs, err := r.ExtractReferences(ctx, call)
	if err != nil {
		e.logger.Warn(ctx, err, "failed to extract macro references", "macro", call.ID)
		return nil
	}
	return refs
}

// Extract returns the entities reachable from root under restrictions, in
// first-seen order without duplicates. Nil restrictions select
// DefaultRestrictions. References that fail to resolve are skipped.
func (e *Extractor) Extract(ctx context.Context, root block.Block, base *model.EntityReference, restrictions Restrictions) []*model.EntityReference {
	if restrictions == nil {
		restrictions = DefaultRestrictions
	}
	types := restrictions.entityTypes()

	seen := make(map[string]bool)
	var out []*model.EntityReference
	for _, ref := range e.References(ctx, root) {
		var resolved *model.EntityReference
		for _, t := range types {
			if !restrictions.allows(t, ref.Type) {
				continue
			}
			if resolved == nil {
				var err error
				resolved, err = e.resolver.Resolve(ref, base)
				if err != nil {
					e.logger.Warn(ctx, err, "failed to resolve reference", "reference", ref.String())
					break
				}
				if resolved == nil {
					break
				}
			}
			entity := resolved.Extract(t)
			if entity == nil || seen[entity.Key()] {
				continue
			}
			seen[entity.Key()] = true
			out = append(out, entity)
		}
	}
	return out
}
