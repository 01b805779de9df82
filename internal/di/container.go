// Package di bootstraps the rendering pipeline: it builds the component
// registry and registers every parser, renderer, macro, transformation and
// refactoring in it, then wires the supporting services around it.
package di

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/conneroisu/wikicore/internal/block"
	"github.com/conneroisu/wikicore/internal/cache"
	"github.com/conneroisu/wikicore/internal/component"
	"github.com/conneroisu/wikicore/internal/config"
	"github.com/conneroisu/wikicore/internal/document"
	"github.com/conneroisu/wikicore/internal/errors"
	"github.com/conneroisu/wikicore/internal/links"
	"github.com/conneroisu/wikicore/internal/logging"
	"github.com/conneroisu/wikicore/internal/macro"
	"github.com/conneroisu/wikicore/internal/model"
	"github.com/conneroisu/wikicore/internal/observation"
	"github.com/conneroisu/wikicore/internal/parser"
	"github.com/conneroisu/wikicore/internal/parser/markdown"
	"github.com/conneroisu/wikicore/internal/parser/plain"
	"github.com/conneroisu/wikicore/internal/parser/xhtml"
	"github.com/conneroisu/wikicore/internal/parser/xwiki"
	"github.com/conneroisu/wikicore/internal/query"
	"github.com/conneroisu/wikicore/internal/reference"
	"github.com/conneroisu/wikicore/internal/renderer"
	eventrenderer "github.com/conneroisu/wikicore/internal/renderer/event"
	plainrenderer "github.com/conneroisu/wikicore/internal/renderer/plain"
	xhtmlrenderer "github.com/conneroisu/wikicore/internal/renderer/xhtml"
	xwikirenderer "github.com/conneroisu/wikicore/internal/renderer/xwiki"
	"github.com/conneroisu/wikicore/internal/syntax"
	"github.com/conneroisu/wikicore/internal/transformation"
)

// Container holds the services of one wiki.
type Container struct {
	Config      *config.Config
	Logger      logging.Logger
	Components  *component.Manager
	Events      *component.StackingEventManager
	Observation *observation.Manager
	References  *reference.Parser
	Resolver    *model.Resolver
	Transforms  *transformation.Manager
	Links       *links.Extractor
	Queries     *query.Manager
	XDOMCache   *cache.DocumentCache[*block.XDOM]
	RenderCache *cache.RenderCache
	// Documents is nil when the configured root does not exist.
	Documents *document.Source

	urls *xhtmlrenderer.ViewURLs
}

// New builds a container. Registration events are stacked while the
// registry is filled and delivered once bootstrap is complete, so early
// listeners never see a partial registry.
func New(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Container, error) {
	if cfg == nil {
		loaded, err := config.LoadFrom(viper.New())
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if logger == nil {
		logger = logging.Discard()
	}

	c := &Container{
		Config:      cfg,
		Logger:      logger,
		Observation: observation.NewManager(logger),
		References:  reference.NewParser(),
		Resolver: model.NewResolver(model.Defaults{
			Wiki:  cfg.Documents.DefaultWiki,
			Space: cfg.Documents.DefaultSpace,
		}),
	}
	c.Events = component.NewStackingEventManager(c.Observation)
	c.Events.ShouldStack(true)
	c.Components = component.NewManager(
		component.WithEventManager(c.Events),
		component.WithLogger(logger),
	)
	c.Observation.TrackComponents()
	c.urls = &xhtmlrenderer.ViewURLs{
		ViewPattern:       cfg.Renderer.ViewURL,
		AttachmentPattern: cfg.Renderer.AttachmentURL,
		Resolver:          c.Resolver,
	}

	steps := []struct {
		name string
		fn   func() error
	}{
		{"caches", c.initCaches},
		{"documents", c.initDocuments},
		{"parsers", c.registerParsers},
		{"renderers", c.registerRenderers},
		{"macros", c.registerMacros},
		{"transformations", c.registerTransformations},
		{"links", c.registerLinks},
		{"queries", c.initQueries},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			return nil, fmt.Errorf("bootstrap %s: %w", step.name, err)
		}
	}

	c.Events.ShouldStack(false)
	pending := c.Events.Pending()
	c.Events.FlushEvents(ctx)
	logger.Debug(ctx, "bootstrap complete", "events", pending, "listeners", len(c.Observation.Listeners()))
	return c, nil
}

func (c *Container) initCaches() error {
	cfg := cache.Config{MaxEntries: c.Config.Cache.MaxEntries, TTL: c.Config.Cache.TTL}
	xdoms, err := cache.NewDocumentCache[*block.XDOM]("xdom", cfg, c.Logger)
	if err != nil {
		return err
	}
	renders, err := cache.NewRenderCache(cfg)
	if err != nil {
		return err
	}
	c.XDOMCache, c.RenderCache = xdoms, renders
	if err := observation.RegisterListener(c.Components, xdoms.Listener()); err != nil {
		return err
	}
	return observation.RegisterListener(c.Components, renders.Listener())
}

func (c *Container) initDocuments() error {
	root := c.Config.Documents.Root
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		c.Logger.Debug(context.Background(), "no document root", "root", root)
		return nil
	}
	src, err := document.NewSource(root, c.Components,
		document.WithDefaults(c.Resolver.Defaults()),
		document.WithCache(c.XDOMCache),
		document.WithLogger(c.Logger),
	)
	if err != nil {
		return err
	}
	c.Documents = src
	return nil
}

func (c *Container) registerParsers() error {
	parsers := []parser.Parser{
		xwiki.New(
			xwiki.WithReferenceParser(c.References),
			xwiki.WithBrokenLinks(xwiki.BrokenLinkPolicy(c.Config.Parser.BrokenLinks)),
			xwiki.WithLogger(c.Logger),
		),
		markdown.New(markdown.WithReferenceParser(c.References), markdown.WithLogger(c.Logger)),
		xhtml.NewXHTML(c.References),
		xhtml.NewHTML(c.References),
		plain.New(),
	}
	for _, p := range parsers {
		if err := component.RegisterInstance[parser.Parser](c.Components, p.Syntax().String(), p); err != nil {
			return err
		}
	}
	return nil
}

func (c *Container) registerRenderers() error {
	factories := []renderer.Factory{
		xhtmlrenderer.Factory{URLs: c.urls},
		xwikirenderer.Factory{},
		plainrenderer.Factory{},
		eventrenderer.Factory{},
	}
	for _, f := range factories {
		if err := component.RegisterInstance[renderer.Factory](c.Components, f.Syntax().String(), f); err != nil {
			return err
		}
	}
	return nil
}

func (c *Container) registerMacros() error {
	var loader macro.DocumentLoader
	if c.Documents != nil {
		loader = c.Documents
	}
	return macro.Register(c.Components, macro.Builtins(loader, c.Resolver)...)
}

func (c *Container) registerTransformations() error {
	if err := transformation.Register(c.Components,
		transformation.NewMacros(c.Components, c.Config.Transformation.MaxMacroDepth, c.Logger),
	); err != nil {
		return err
	}
	c.Transforms = transformation.NewManager(c.Components,
		transformation.WithEnabled(c.Config.Transformation.Enabled...),
		transformation.WithLogger(c.Logger),
	)
	return nil
}

func (c *Container) registerLinks() error {
	defaultSyntax, err := syntax.Parse(c.Config.Parser.DefaultSyntax)
	if err != nil {
		return err
	}
	c.Links = links.NewExtractor(c.Components, c.Resolver, links.WithSyntax(defaultSyntax), links.WithLogger(c.Logger))
	return links.Register(c.Components, c.Links)
}

func (c *Container) initQueries() error {
	types := query.NewPropertyTypes(c.Config.Query.DefaultPropertyType, nil)
	for _, rule := range c.Config.Query.PropertyTypes {
		types.Set(rule.Class, rule.Property, rule.Type)
	}
	c.Queries = query.NewManager(query.NewTranslator(types, c.Logger), nil, c.Logger)
	return nil
}

// Parser returns the parser of s.
func (c *Container) Parser(s syntax.Syntax) (parser.Parser, error) {
	return component.Lookup[parser.Parser](c.Components, s.String())
}

// Renderer returns the renderer factory of s. Links in xhtml output are
// resolved relative to base.
func (c *Container) Renderer(s syntax.Syntax, base *model.EntityReference) (renderer.Factory, error) {
	f, err := component.Lookup[renderer.Factory](c.Components, s.String())
	if err != nil {
		return nil, err
	}
	if x, ok := f.(xhtmlrenderer.Factory); ok && base != nil {
		urls := *c.urls
		urls.Base = base
		x.URLs = &urls
		f = x
	}
	return f, nil
}

// Transform runs the enabled transformations over xdom. Recovered macro
// failures are added to diagnostics when it is not nil.
func (c *Container) Transform(ctx context.Context, xdom *block.XDOM, s syntax.Syntax, doc *model.EntityReference, diagnostics *errors.Collector) error {
	return c.Transforms.Perform(ctx, xdom, &transformation.Context{
		XDOM:        xdom,
		Syntax:      s,
		Document:    doc,
		Diagnostics: diagnostics,
	})
}

// RenderOptions describe one conversion.
type RenderOptions struct {
	From      syntax.Syntax
	To        syntax.Syntax
	Document  *model.EntityReference
	Transform bool
	// Diagnostics collects recovered failures. Cached results add none.
	Diagnostics *errors.Collector
}

// Render converts source between syntaxes. Results are cached by content.
func (c *Container) Render(ctx context.Context, source string, opts RenderOptions) (string, error) {
	key := cache.Key(source, opts.From, opts.To, opts.Document.String(), fmt.Sprint(opts.Transform))
	out, hit, err := c.RenderCache.GetOrRender(key, func() (string, error) {
		p, err := c.Parser(opts.From)
		if err != nil {
			return "", err
		}
		xdom, err := parser.ParseString(p, source)
		if err != nil {
			return "", err
		}
		return c.renderXDOM(ctx, xdom, opts)
	})
	if err == nil {
		c.Logger.Debug(ctx, "rendered", "from", opts.From.String(), "to", opts.To.String(), "cached", hit)
	}
	return out, err
}

func (c *Container) renderXDOM(ctx context.Context, xdom *block.XDOM, opts RenderOptions) (string, error) {
	if opts.Transform {
		if err := c.Transform(ctx, xdom, opts.From, opts.Document, opts.Diagnostics); err != nil {
			return "", err
		}
	}
	f, err := c.Renderer(opts.To, opts.Document)
	if err != nil {
		return "", err
	}
	return renderer.RenderString(f, xdom)
}

// RenderDocument loads, transforms and renders a document of the source.
func (c *Container) RenderDocument(ctx context.Context, ref *model.EntityReference, to syntax.Syntax, diagnostics *errors.Collector) (string, error) {
	if c.Documents == nil {
		return "", errors.NewConfigError(errors.ErrCodeConfigInvalid, "no document root configured")
	}
	xdom, err := c.Documents.LoadXDOM(ctx, ref)
	if err != nil {
		return "", err
	}
	from, err := syntax.Parse(xdom.Parameter(document.SyntaxParameter))
	if err != nil {
		return "", err
	}
	return c.renderXDOM(ctx, xdom, RenderOptions{
		From:        from,
		To:          to,
		Document:    ref,
		Transform:   true,
		Diagnostics: diagnostics,
	})
}

// Watch starts a watcher firing document events for the source, which
// invalidate the caches.
func (c *Container) Watch(ctx context.Context) (*document.Watcher, error) {
	if c.Documents == nil {
		return nil, errors.NewConfigError(errors.ErrCodeConfigInvalid, "no document root configured")
	}
	w, err := document.NewWatcher(c.Documents, c.Observation, c.Config.Documents.Debounce, c.Logger)
	if err != nil {
		return nil, err
	}
	if err := w.Start(ctx); err != nil {
		w.Stop()
		return nil, err
	}
	return w, nil
}
