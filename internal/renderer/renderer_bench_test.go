package renderer

import (
	"io"
	"testing"

	"github.com/conneroisu/wikicore/internal/block"
	"github.com/conneroisu/wikicore/internal/reference"
)

func BenchmarkRender(b *testing.B) {
	words := make([]block.Block, 0, 200)
	for n := 0; n < 100; n++ {
		words = append(words, block.NewWord("word"), block.NewSpace())
	}
	doc := block.NewXDOM([]block.Block{block.NewParagraph(words, nil)}, nil)

	b.ReportAllocs()
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		if err := Render(wordFactory{}, doc, io.Discard); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDefaultLabels(b *testing.B) {
	var refs []*reference.ResourceReference
	for _, r := range []string{"Space.Page", `A.B\.C.D`, "wiki:Main.WebHome"} {
		refs = append(refs, reference.New(r, reference.Document))
	}
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		for _, r := range refs {
			_ = DefaultLabels.Label(r)
		}
	}
}
