// Package event renders the event/1.0 syntax: one listener event per line.
// It is the reference form used to compare parser output.
package event

import (
	"io"

	"github.com/conneroisu/wikicore/internal/listener"
	"github.com/conneroisu/wikicore/internal/renderer"
	"github.com/conneroisu/wikicore/internal/syntax"
)

// Factory creates event/1.0 renderers.
type Factory struct{}

var _ renderer.Factory = Factory{}

func (Factory) Syntax() syntax.Syntax { return syntax.Event10 }

func (Factory) NewRenderer(w io.Writer) renderer.Renderer {
	p := renderer.NewPrinter(w)
	r := &Renderer{Printer: p}
	r.Queue.Forward = func(e listener.Event) {
		p.Print(e.String(), "\n")
	}
	return r
}

// Renderer prints each event as it arrives.
type Renderer struct {
	listener.Queue
	*renderer.Printer
}
