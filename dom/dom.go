// Package dom provides the element tree consumed by the style
// engine : a flat arena of elements addressed by stable
// ElementId handles, with relations stored as indices.
//
// The package does not implement a full DOM; it carries exactly
// the data the selector matcher and the stylist read : tag, id,
// classes, attributes, tree relations, inline style text and
// dynamic state bits.
package dom

import (
	"fmt"
	"strings"

	"github.com/Corten-Browser/Corten-CSSEngine/css/selector"
	"github.com/Corten-Browser/Corten-CSSEngine/utils"
)

// ElementId is a stable handle into a Tree.
type ElementId int

// NoElement is the null handle (-1), never allocated.
const NoElement ElementId = -1

type node struct {
	tag        string // lower case
	id         string
	classes    utils.Set
	attributes map[string]string
	inline     string // the style attribute text

	parent      ElementId
	prevSibling ElementId
	nextSibling ElementId
	children    []ElementId

	state selector.State
	// index is the 1-based position among element siblings
	index int
}

// Tree is an arena-owned element store. ElementIds are stable
// for the lifetime of the tree; removing an element does not
// renumber the others.
type Tree struct {
	nodes []node
	root  ElementId
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{root: NoElement}
}

// NewElement allocates an element with the given tag and
// returns its handle. The element starts detached; use
// AppendChild or SetRoot to place it.
func (t *Tree) NewElement(tag string) ElementId {
	t.nodes = append(t.nodes, node{
		tag:         utils.AsciiLower(tag),
		classes:     utils.Set{},
		attributes:  map[string]string{},
		parent:      NoElement,
		prevSibling: NoElement,
		nextSibling: NoElement,
	})
	return ElementId(len(t.nodes) - 1)
}

func (t *Tree) node(id ElementId) *node {
	if id < 0 || int(id) >= len(t.nodes) {
		panic(fmt.Sprintf("invalid ElementId %d", id))
	}
	return &t.nodes[int(id)]
}

// SetRoot makes the element the tree root.
func (t *Tree) SetRoot(id ElementId) {
	t.node(id).index = 1
	t.root = id
}

// Root returns the root handle, or NoElement for an empty tree.
func (t *Tree) Root() ElementId { return t.root }

// Len returns the number of allocated elements.
func (t *Tree) Len() int { return len(t.nodes) }

// AppendChild attaches child as the last child of parent.
func (t *Tree) AppendChild(parent, child ElementId) {
	p, c := t.node(parent), t.node(child)
	if c.parent != NoElement {
		panic("element is already attached")
	}
	if n := len(p.children); n != 0 {
		last := p.children[n-1]
		t.node(last).nextSibling = child
		c.prevSibling = last
	}
	c.parent = parent
	c.index = len(p.children) + 1
	p.children = append(p.children, child)
}

// RemoveChild detaches child from its parent. The handle stays
// valid but the element leaves the tree.
func (t *Tree) RemoveChild(child ElementId) {
	c := t.node(child)
	if c.parent == NoElement {
		return
	}
	p := t.node(c.parent)
	for i, other := range p.children {
		if other == child {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	if c.prevSibling != NoElement {
		t.node(c.prevSibling).nextSibling = c.nextSibling
	}
	if c.nextSibling != NoElement {
		t.node(c.nextSibling).prevSibling = c.prevSibling
	}
	c.parent, c.prevSibling, c.nextSibling = NoElement, NoElement, NoElement
	c.index = 0
	// renumber the remaining siblings
	for i, other := range p.children {
		t.node(other).index = i + 1
	}
}

// Accessors, implementing the caller contract.

func (t *Tree) Tag(id ElementId) string { return t.node(id).tag }

func (t *Tree) Id(id ElementId) string { return t.node(id).id }

func (t *Tree) Classes(id ElementId) utils.Set { return t.node(id).classes }

func (t *Tree) Attr(id ElementId, name string) (string, bool) {
	v, ok := t.node(id).attributes[utils.AsciiLower(name)]
	return v, ok
}

func (t *Tree) Parent(id ElementId) ElementId { return t.node(id).parent }

func (t *Tree) PrevSibling(id ElementId) ElementId { return t.node(id).prevSibling }

func (t *Tree) NextSibling(id ElementId) ElementId { return t.node(id).nextSibling }

func (t *Tree) Children(id ElementId) []ElementId { return t.node(id).children }

// InlineStyle returns the style attribute text.
func (t *Tree) InlineStyle(id ElementId) string { return t.node(id).inline }

func (t *Tree) State(id ElementId) selector.State { return t.node(id).state }

// Mutators. The engine must be notified of every mutation
// through its Invalidate operation.

// SetId sets the id attribute.
func (t *Tree) SetId(id ElementId, value string) {
	n := t.node(id)
	n.id = value
	n.attributes["id"] = value
}

// SetAttr sets an attribute. The id, class and style attributes
// are kept in sync with their dedicated accessors.
func (t *Tree) SetAttr(id ElementId, name, value string) {
	n := t.node(id)
	name = utils.AsciiLower(name)
	n.attributes[name] = value
	switch name {
	case "id":
		n.id = value
	case "class":
		n.classes = utils.NewSet(strings.Fields(value)...)
	case "style":
		n.inline = value
	}
}

// AddClass adds one class to the element class set.
func (t *Tree) AddClass(id ElementId, class string) {
	n := t.node(id)
	n.classes.Add(class)
	n.attributes["class"] = strings.Join(n.classList(), " ")
}

// RemoveClass removes one class from the element class set.
func (t *Tree) RemoveClass(id ElementId, class string) {
	n := t.node(id)
	delete(n.classes, class)
	n.attributes["class"] = strings.Join(n.classList(), " ")
}

func (n *node) classList() []string {
	out := make([]string, 0, len(n.classes))
	for c := range n.classes {
		out = append(out, c)
	}
	return out
}

// SetInlineStyle replaces the style attribute text.
func (t *Tree) SetInlineStyle(id ElementId, style string) {
	n := t.node(id)
	n.inline = style
	n.attributes["style"] = style
}

// SetState sets or clears one dynamic state bit.
func (t *Tree) SetState(id ElementId, s selector.State, on bool) {
	n := t.node(id)
	if on {
		n.state |= s
	} else {
		n.state &^= s
	}
}

// Element returns the selector matcher view of an element.
func (t *Tree) Element(id ElementId) Element {
	return Element{tree: t, id: id}
}

// Element adapts (Tree, ElementId) to selector.Element.
type Element struct {
	tree *Tree
	id   ElementId
}

var _ selector.Element = Element{}

// Handle returns the element id.
func (e Element) Handle() ElementId { return e.id }

func (e Element) TagName() string { return e.tree.Tag(e.id) }

func (e Element) ID() string { return e.tree.Id(e.id) }

func (e Element) HasClass(name string) bool { return e.tree.Classes(e.id).Has(name) }

// Classes returns the element class set.
func (e Element) Classes() utils.Set { return e.tree.Classes(e.id) }

func (e Element) Attr(name string) (string, bool) { return e.tree.Attr(e.id, name) }

func (e Element) HasState(s selector.State) bool { return e.tree.State(e.id)&s != 0 }

func (e Element) Parent() selector.Element {
	p := e.tree.Parent(e.id)
	if p == NoElement {
		return nil
	}
	return Element{tree: e.tree, id: p}
}

func (e Element) PrevSibling() selector.Element {
	p := e.tree.PrevSibling(e.id)
	if p == NoElement {
		return nil
	}
	return Element{tree: e.tree, id: p}
}

func (e Element) ChildIndex() int { return e.tree.node(e.id).index }

func (e Element) SiblingCount() int {
	parent := e.tree.Parent(e.id)
	if parent == NoElement {
		return 1
	}
	return len(e.tree.Children(parent))
}
