// Package renderer defines how a block tree is serialized into an output
// syntax.
//
// A Renderer is a Listener that writes to an io.Writer as events arrive;
// block.Traverse drives it over a tree. Write errors are sticky: the first
// one is kept and later writes are dropped, so callers check Err once at
// the end.
package renderer

import (
	"bytes"
	"io"
	"path"
	"strings"

	"github.com/conneroisu/wikicore/internal/block"
	"github.com/conneroisu/wikicore/internal/errors"
	"github.com/conneroisu/wikicore/internal/listener"
	"github.com/conneroisu/wikicore/internal/reference"
	"github.com/conneroisu/wikicore/internal/syntax"
)

// Renderer writes the events it receives in one output syntax.
type Renderer interface {
	listener.Listener
	// Err returns the first write error.
	Err() error
}

// Factory creates renderers for one syntax.
type Factory interface {
	Syntax() syntax.Syntax
	NewRenderer(w io.Writer) Renderer
}

// Render traverses b into a renderer created by f.
func Render(f Factory, b block.Block, w io.Writer) error {
	r := f.NewRenderer(w)
	block.Traverse(b, r)
	if err := r.Err(); err != nil {
		return errors.NewRenderError(errors.ErrCodeRenderFailed, "failed to render "+f.Syntax().String(), err)
	}
	return nil
}

// RenderString renders b to a string.
func RenderString(f Factory, b block.Block) (string, error) {
	var buf bytes.Buffer
	if err := Render(f, b, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Printer accumulates output and remembers the first write error.
type Printer struct {
	w   io.Writer
	err error
}

// NewPrinter returns a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Print writes every string in order.
func (p *Printer) Print(s ...string) {
	for _, part := range s {
		if p.err != nil || part == "" {
			continue
		}
		_, p.err = io.WriteString(p.w, part)
	}
}

// Err returns the first write error.
func (p *Printer) Err() error {
	return p.err
}

// LinkLabelGenerator produces the text of a link that has no label.
type LinkLabelGenerator interface {
	Label(ref *reference.ResourceReference) string
}

// LabelFunc adapts a function to LinkLabelGenerator.
type LabelFunc func(ref *reference.ResourceReference) string

func (f LabelFunc) Label(ref *reference.ResourceReference) string { return f(ref) }

// DefaultLabels uses the page name for document references, the file
// name for attachments and the raw reference otherwise.
var DefaultLabels LinkLabelGenerator = LabelFunc(func(ref *reference.ResourceReference) string {
	if ref == nil {
		return ""
	}
	switch ref.Type {
	case reference.Document:
		if ref.Reference == "" {
			if a := ref.Parameter(reference.ParamAnchor); a != "" {
				return a
			}
		}
		return lastSegment(ref.Reference, '.')
	case reference.Page:
		return lastSegment(ref.Reference, '/')
	case reference.Attachment:
		if at := strings.LastIndexByte(ref.Reference, '@'); at >= 0 {
			return ref.Reference[at+1:]
		}
		return path.Base(ref.Reference)
	case reference.Mailto:
		return ref.Reference
	}
	return ref.Reference
})

// lastSegment returns the part after the last unescaped sep, without its
// "\" escapes.
func lastSegment(s string, sep byte) string {
	at := -1
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' {
			i++
			continue
		}
		if s[i] == sep {
			at = i
		}
	}
	seg := s[at+1:]
	if c := strings.IndexByte(seg, ':'); c >= 0 && at < 0 {
		seg = seg[c+1:]
	}
	return strings.ReplaceAll(seg, `\`, "")
}
