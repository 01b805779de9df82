// Package diff compares documents through their renderings.
package diff

import (
	"fmt"
	"strings"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"

	"github.com/conneroisu/wikicore/internal/block"
	"github.com/conneroisu/wikicore/internal/renderer"
)

// Unified returns the unified diff turning a into b, or "" when they are
// equal.
func Unified(nameA, a, nameB, b string) string {
	if a == b {
		return ""
	}
	a, b = terminate(a), terminate(b)
	edits := myers.ComputeEdits(span.URIFromPath(nameA), a, b)
	return fmt.Sprint(gotextdiff.ToUnified(nameA, nameB, a, edits))
}

// terminate ends s with a new line so a missing final new line does not
// show up as a change of the last line.
func terminate(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}

// Rendered renders both trees with f and diffs the outputs.
func Rendered(f renderer.Factory, nameA string, a block.Block, nameB string, b block.Block) (string, error) {
	outA, err := renderer.RenderString(f, a)
	if err != nil {
		return "", err
	}
	outB, err := renderer.RenderString(f, b)
	if err != nil {
		return "", err
	}
	return Unified(nameA, outA, nameB, outB), nil
}

// Stat counts the added and removed lines of a unified diff.
func Stat(unified string) (added, removed int) {
	for _, line := range strings.Split(unified, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"):
			added++
		case strings.HasPrefix(line, "-"):
			removed++
		}
	}
	return added, removed
}
