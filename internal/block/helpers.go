package block

import (
	"strings"
)

// Walk calls fn for b and every descendant, depth first. Returning false
// skips the children of the current block.
func Walk(b Block, fn func(Block) bool) {
	if !fn(b) {
		return
	}
	for _, c := range b.Children() {
		Walk(c, fn)
	}
}

// Find returns every block of type T in the subtree of root, root included,
// in document order.
func Find[T Block](root Block) []T {
	var out []T
	Walk(root, func(b Block) bool {
		if t, ok := b.(T); ok {
			out = append(out, t)
		}
		return true
	})
	return out
}

// FindFirst returns the first block of type T in document order.
func FindFirst[T Block](root Block) (T, bool) {
	var (
		found T
		ok    bool
	)
	Walk(root, func(b Block) bool {
		if ok {
			return false
		}
		if t, match := b.(T); match {
			found, ok = t, true
			return false
		}
		return true
	})
	return found, ok
}

func indexOf(parent, child Block) int {
	for i, c := range parent.Children() {
		if c == child {
			return i
		}
	}
	return -1
}

// ReplaceChild replaces old with the given blocks, in place.
func ReplaceChild(parent, old Block, replacements ...Block) error {
	return splice(parent, old, 0, 1, replacements)
}

// RemoveChild detaches child from parent.
func RemoveChild(parent, child Block) error {
	return splice(parent, child, 0, 1, nil)
}

// InsertAfter inserts blocks right after the sibling ref.
func InsertAfter(parent, ref Block, blocks ...Block) error {
	return splice(parent, ref, 1, 0, blocks)
}

// InsertBefore inserts blocks right before the sibling ref.
func InsertBefore(parent, ref Block, blocks ...Block) error {
	return splice(parent, ref, 0, 0, blocks)
}

// SetChildren replaces all children of parent.
func SetChildren(parent Block, children []Block) error {
	for _, c := range parent.Children() {
		c.node().parent = nil
	}
	parent.node().children = nil
	for _, c := range children {
		if err := parent.AddChild(c); err != nil {
			return err
		}
	}
	return nil
}

// splice removes remove children starting offset positions after anchor and
// inserts blocks there. Blocks are detached from their previous parent first.
func splice(parent, anchor Block, offset, remove int, blocks []Block) error {
	if indexOf(parent, anchor) < 0 {
		return ErrNotChild
	}
	for _, b := range blocks {
		for a := parent; a != nil; a = a.Parent() {
			if a == b {
				return ErrCycle
			}
		}
	}
	for _, b := range blocks {
		if b != anchor {
			detach(b)
		}
	}

	pn := parent.node()
	at := indexOf(parent, anchor) + offset
	for _, r := range pn.children[at : at+remove] {
		r.node().parent = nil
	}
	children := make([]Block, 0, len(pn.children)-remove+len(blocks))
	children = append(children, pn.children[:at]...)
	children = append(children, blocks...)
	children = append(children, pn.children[at+remove:]...)
	for _, b := range blocks {
		b.node().parent = parent
	}
	pn.children = children
	return nil
}

// Clone returns a deep copy of b built by replaying its events.
func Clone(b Block) (Block, error) {
	g := NewGenerator()
	Traverse(b, g)
	blocks, err := g.Blocks()
	if err != nil {
		return nil, err
	}
	if len(blocks) != 1 {
		return nil, ErrNotChild
	}
	c := blocks[0]
	Walk(c, func(n Block) bool {
		nn := n.node()
		nn.params = nn.params.Clone()
		switch t := n.(type) {
		case *Link:
			t.Reference = t.Reference.Clone()
		case *Image:
			t.Reference = t.Reference.Clone()
		}
		return true
	})
	return c, nil
}

// Text returns the plain text of the subtree, as a reader would see it.
func Text(b Block) string {
	var sb strings.Builder
	Walk(b, func(n Block) bool {
		switch t := n.(type) {
		case *Word:
			sb.WriteString(t.Text)
		case *Space:
			sb.WriteByte(' ')
		case *SpecialSymbol:
			sb.WriteRune(t.Symbol)
		case *NewLine:
			sb.WriteByte('\n')
		case *Verbatim:
			sb.WriteString(t.Content)
		case *Link:
			if len(t.Children()) == 0 && t.Reference != nil {
				sb.WriteString(t.Reference.Reference)
			}
		}
		return true
	})
	return sb.String()
}
