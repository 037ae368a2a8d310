package style

import (
	"fmt"

	pr "github.com/Corten-Browser/Corten-CSSEngine/css/properties"
	"github.com/Corten-Browser/Corten-CSSEngine/dom"
	"github.com/xlab/treeprint"
)

// StyleTree mirrors the element tree : one node per element
// with its computed values and the computed values of its
// pseudo-elements.
type StyleTree struct {
	Root *StyleNode
}

// StyleNode is one element of the style tree.
type StyleNode struct {
	Element  dom.ElementId
	Style    *ComputedValues
	Pseudos  map[string]*ComputedValues // by pseudo-element name
	Children []*StyleNode
}

// Walk calls fn for every node, parents before children.
func (t *StyleTree) Walk(fn func(*StyleNode)) {
	if t == nil || t.Root == nil {
		return
	}
	t.Root.walk(fn)
}

func (n *StyleNode) walk(fn func(*StyleNode)) {
	fn(n)
	for _, child := range n.Children {
		child.walk(fn)
	}
}

// Find returns the node of the given element, or nil.
func (t *StyleTree) Find(id dom.ElementId) *StyleNode {
	var out *StyleNode
	t.Walk(func(n *StyleNode) {
		if n.Element == id {
			out = n
		}
	})
	return out
}

// Print renders the style tree for debugging, one line per
// element with a few salient computed properties.
func (t *StyleTree) Print(tree *dom.Tree) string {
	if t == nil || t.Root == nil {
		return "(empty style tree)"
	}
	printer := treeprint.New()
	printer.SetValue(nodeLabel(tree, t.Root))
	addBranches(printer, tree, t.Root)
	return printer.String()
}

func addBranches(branch treeprint.Tree, tree *dom.Tree, node *StyleNode) {
	for _, child := range node.Children {
		sub := branch.AddBranch(nodeLabel(tree, child))
		addBranches(sub, tree, child)
	}
}

func nodeLabel(tree *dom.Tree, node *StyleNode) string {
	label := tree.Tag(node.Element)
	if id := tree.Id(node.Element); id != "" {
		label += "#" + id
	}
	for class := range tree.Classes(node.Element) {
		label += "." + class
	}
	return fmt.Sprintf("%s color=%v font-size=%v display=%v",
		label,
		node.Style.Get(pr.PColor),
		node.Style.Get(pr.PFontSize),
		node.Style.Get(pr.PDisplay))
}
