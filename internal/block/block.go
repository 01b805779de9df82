// Package block implements the document tree (XDOM) built from parse events
// and traversed back into events by renderers and transformations.
package block

import (
	"github.com/conneroisu/wikicore/internal/errors"
	"github.com/conneroisu/wikicore/internal/listener"
	"github.com/conneroisu/wikicore/internal/params"
)

// ErrCycle is returned when adding a block would make it its own ancestor.
var ErrCycle = errors.New("block: adding child would create a cycle")

// ErrLeaf is returned when adding a child to a leaf block.
var ErrLeaf = errors.New("block: leaf blocks have no children")

// ErrNotChild is returned when a block is not a child of the given parent.
var ErrNotChild = errors.New("block: not a child of parent")

// Block is a node of the document tree. Containers own their children; leaf
// blocks carry literal content.
type Block interface {
	Parent() Block
	Children() []Block
	Parameters() *params.Map
	Parameter(name string) string
	SetParameter(name, value string)

	// AddChild appends child, detaching it from its previous parent.
	AddChild(child Block) error

	// BeforeTraverse emits the begin (or on) event of this block.
	BeforeTraverse(l listener.Listener)
	// AfterTraverse emits the end event of this block, if any.
	AfterTraverse(l listener.Listener)

	node() *base
}

type base struct {
	self     Block
	parent   Block
	children []Block
	params   *params.Map
}

func (b *base) init(self Block, children []Block, p *params.Map) {
	b.self = self
	b.params = p
	for _, c := range children {
		_ = b.AddChild(c)
	}
}

func (b *base) node() *base { return b }

func (b *base) Parent() Block { return b.parent }

func (b *base) Children() []Block { return b.children }

func (b *base) Parameters() *params.Map { return b.params }

func (b *base) Parameter(name string) string { return b.params.Value(name) }

func (b *base) SetParameter(name, value string) {
	if b.params == nil {
		b.params = params.New()
	}
	b.params.Set(name, value)
}

func (b *base) AddChild(child Block) error {
	if child == nil {
		return nil
	}
	for a := b.self; a != nil; a = a.Parent() {
		if a == child {
			return ErrCycle
		}
	}
	detach(child)
	child.node().parent = b.self
	b.children = append(b.children, child)
	return nil
}

func detach(child Block) {
	p := child.Parent()
	if p == nil {
		return
	}
	pn := p.node()
	for i, c := range pn.children {
		if c == child {
			pn.children = append(pn.children[:i:i], pn.children[i+1:]...)
			break
		}
	}
	child.node().parent = nil
}

// Traverse emits the events of b and its subtree depth first.
func Traverse(b Block, l listener.Listener) {
	b.BeforeTraverse(l)
	for _, c := range b.Children() {
		Traverse(c, l)
	}
	b.AfterTraverse(l)
}

// Validate checks the tree invariants below root: every child points back to
// its parent, no block appears twice, and root has no parent.
func Validate(root Block) error {
	if root.Parent() != nil {
		return errors.New("block: root has a parent")
	}
	seen := map[Block]bool{}
	var walk func(Block) error
	walk = func(b Block) error {
		if seen[b] {
			return ErrCycle
		}
		seen[b] = true
		for _, c := range b.Children() {
			if c.Parent() != b {
				return errors.New("block: child does not point to its parent")
			}
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(root)
}
