// Package document loads wiki documents from a directory tree and keeps
// their parsed trees cached until the files change.
package document

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/conneroisu/wikicore/internal/block"
	"github.com/conneroisu/wikicore/internal/cache"
	"github.com/conneroisu/wikicore/internal/component"
	"github.com/conneroisu/wikicore/internal/errors"
	"github.com/conneroisu/wikicore/internal/listener"
	"github.com/conneroisu/wikicore/internal/logging"
	"github.com/conneroisu/wikicore/internal/macro"
	"github.com/conneroisu/wikicore/internal/model"
	"github.com/conneroisu/wikicore/internal/parser"
	"github.com/conneroisu/wikicore/internal/syntax"
)

// Extensions maps file extensions to the syntax of their content. Files
// ending in ".xml" are xwikidoc exports and carry their own syntax.
var Extensions = map[string]syntax.Syntax{
	".xwiki": syntax.XWiki21,
	".md":    syntax.Markdown12,
	".html":  syntax.XHTML10,
	".txt":   syntax.Plain10,
}

const xwikidocExt = ".xml"

// Parameters set on the root of parsed documents.
const (
	SyntaxParameter = listener.MetaSyntax
	SourceParameter = "source"
)

// Document is a loaded document.
type Document struct {
	Reference *model.EntityReference
	Syntax    syntax.Syntax
	Title     string
	Content   string
	Path      string
	ModTime   time.Time
}

// Source reads documents below a root directory. A file "A/B/Page.xwiki"
// is the document "A.B.Page"; files directly under the root belong to the
// default space.
type Source struct {
	root       string
	defaults   model.Defaults
	components component.Resolver
	cache      *cache.DocumentCache[*block.XDOM]
	logger     logging.Logger

	mu    sync.RWMutex
	index map[string]string
	paths map[string]*model.EntityReference
}

var _ macro.DocumentLoader = (*Source)(nil)

// Option configures a Source.
type Option func(*Source)

// WithDefaults sets the wiki and space given to documents.
func WithDefaults(d model.Defaults) Option {
	return func(s *Source) { s.defaults = model.NewResolver(d).Defaults() }
}

// WithCache caches parsed trees.
func WithCache(c *cache.DocumentCache[*block.XDOM]) Option {
	return func(s *Source) { s.cache = c }
}

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) Option {
	return func(s *Source) { s.logger = logger }
}

// NewSource returns a source reading root. Parsers are looked up in
// components by syntax.
func NewSource(root string, components component.Resolver, opts ...Option) (*Source, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.WrapIO(err, errors.ErrCodeFileNotFound, "document root "+root)
	}
	if !info.IsDir() {
		return nil, errors.NewConfigError(errors.ErrCodeConfigInvalid, "document root is not a directory: "+root)
	}
	s := &Source{
		root:       filepath.Clean(root),
		defaults:   model.DefaultDefaults,
		components: components,
		index:      make(map[string]string),
		paths:      make(map[string]*model.EntityReference),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	s.logger = s.logger.WithComponent("document")
	return s, nil
}

// Root returns the directory read by the source.
func (s *Source) Root() string { return s.root }

// Supported reports whether path names a document file.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	_, ok := Extensions[ext]
	return ok || ext == xwikidocExt
}

// Reference returns the document stored at path, which is absolute or
// relative to the root. xwikidoc files are named by their content, so
// their reference is read from the file.
func (s *Source) Reference(path string) (*model.EntityReference, error) {
	rel, err := s.rel(path)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(rel), xwikidocExt) {
		doc, err := s.read(rel)
		if err != nil {
			return nil, err
		}
		return doc.Reference, nil
	}
	return s.pathReference(rel), nil
}

func (s *Source) rel(path string) (string, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.root, path)
	}
	rel, err := filepath.Rel(s.root, filepath.Clean(path))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.NewConfigError(errors.ErrCodeConfigInvalid, fmt.Sprintf("%s is outside %s", path, s.root))
	}
	return filepath.ToSlash(rel), nil
}

func (s *Source) pathReference(rel string) *model.EntityReference {
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	parts := strings.Split(rel, "/")
	spaces := parts[:len(parts)-1]
	if len(spaces) == 0 {
		spaces = []string{s.defaults.Space}
	}
	return model.NewDocumentReference(s.defaults.Wiki, spaces, parts[len(parts)-1])
}

// Scan walks the root and indexes every document file. Unreadable
// xwikidoc files are logged and skipped.
func (s *Source) Scan(ctx context.Context) ([]*model.EntityReference, error) {
	index := make(map[string]string)
	paths := make(map[string]*model.EntityReference)
	var refs []*model.EntityReference
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if path != s.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !Supported(path) {
			return nil
		}
		ref, err := s.Reference(path)
		if err != nil {
			s.logger.Warn(ctx, err, "skipping document", "path", path)
			return nil
		}
		key := ref.String()
		if prev, ok := index[key]; ok {
			s.logger.Warn(ctx, nil, "duplicate document", "document", key, "path", path, "kept", prev)
			return nil
		}
		rel, _ := s.rel(path)
		index[key] = rel
		paths[rel] = ref
		refs = append(refs, ref)
		return nil
	})
	if err != nil {
		return nil, errors.WrapIO(err, errors.ErrCodeIO, "scan "+s.root)
	}
	s.mu.Lock()
	s.index = index
	s.paths = paths
	s.mu.Unlock()
	sort.Slice(refs, func(i, j int) bool { return refs[i].String() < refs[j].String() })
	s.logger.Debug(ctx, "scanned documents", "root", s.root, "documents", len(refs))
	return refs, nil
}

// Forget drops ref from the index so the next load scans again.
func (s *Source) Forget(ref *model.EntityReference) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rel, ok := s.index[ref.String()]; ok {
		delete(s.paths, rel)
	}
	delete(s.index, ref.String())
}

// Indexed returns the document last seen at path, which may no longer
// exist.
func (s *Source) Indexed(path string) (*model.EntityReference, bool) {
	rel, err := s.rel(path)
	if err != nil {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	ref, ok := s.paths[rel]
	return ref, ok
}

func (s *Source) remember(ref *model.EntityReference, rel string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index[ref.String()] = rel
	s.paths[rel] = ref
}

func (s *Source) lookup(ctx context.Context, ref *model.EntityReference) (string, error) {
	key := ref.String()
	s.mu.RLock()
	rel, ok := s.index[key]
	s.mu.RUnlock()
	if ok {
		return rel, nil
	}
	if _, err := s.Scan(ctx); err != nil {
		return "", err
	}
	s.mu.RLock()
	rel, ok = s.index[key]
	s.mu.RUnlock()
	if !ok {
		return "", errors.WrapIO(fs.ErrNotExist, errors.ErrCodeFileNotFound, "document "+key)
	}
	return rel, nil
}

// Load reads the document ref.
func (s *Source) Load(ctx context.Context, ref *model.EntityReference) (*Document, error) {
	rel, err := s.lookup(ctx, ref)
	if err != nil {
		return nil, err
	}
	doc, err := s.read(rel)
	if err != nil {
		// the file went away since the last scan
		s.Forget(ref)
		return nil, err
	}
	return doc, nil
}

func (s *Source) read(rel string) (*Document, error) {
	path := filepath.Join(s.root, filepath.FromSlash(rel))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO(err, errors.ErrCodeFileNotFound, "read "+rel)
	}
	var modTime time.Time
	if info, err := os.Stat(path); err == nil {
		modTime = info.ModTime()
	}
	ext := strings.ToLower(filepath.Ext(rel))
	if ext == xwikidocExt {
		doc, err := parseXWikiDoc(data, s.defaults)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", rel, err)
		}
		doc.Path = rel
		doc.ModTime = modTime
		return doc, nil
	}
	return &Document{
		Reference: s.pathReference(rel),
		Syntax:    Extensions[ext],
		Content:   string(data),
		Path:      rel,
		ModTime:   modTime,
	}, nil
}

// Parse parses the content of doc with the parser registered for its
// syntax.
func (s *Source) Parse(doc *Document) (*block.XDOM, error) {
	p, err := component.Lookup[parser.Parser](s.components, doc.Syntax.String())
	if err != nil {
		return nil, err
	}
	xdom, err := parser.ParseString(p, doc.Content)
	if err != nil {
		return nil, err
	}
	xdom.SetParameter(SyntaxParameter, doc.Syntax.String())
	xdom.SetParameter(SourceParameter, doc.Reference.String())
	return xdom, nil
}

// LoadXDOM returns the parsed tree of ref. Trees are cached per document;
// callers get a copy they are free to modify.
func (s *Source) LoadXDOM(ctx context.Context, ref *model.EntityReference) (*block.XDOM, error) {
	if s.cache != nil {
		if xdom, ok := s.cache.Get(ref); ok {
			return cloneXDOM(xdom)
		}
	}
	doc, err := s.Load(ctx, ref)
	if err != nil {
		return nil, err
	}
	xdom, err := s.Parse(doc)
	if err != nil {
		return nil, err
	}
	if s.cache == nil {
		return xdom, nil
	}
	s.cache.Set(ref, xdom)
	return cloneXDOM(xdom)
}

func cloneXDOM(xdom *block.XDOM) (*block.XDOM, error) {
	c, err := block.Clone(xdom)
	if err != nil {
		return nil, err
	}
	return c.(*block.XDOM), nil
}
