package dom

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/Corten-Browser/Corten-CSSEngine/css/selector"
)

func TestTreeRelations(t *testing.T) {
	tree := NewTree()
	root := tree.NewElement("DIV")
	tree.SetRoot(root)

	a := tree.NewElement("p")
	b := tree.NewElement("p")
	c := tree.NewElement("span")
	tree.AppendChild(root, a)
	tree.AppendChild(root, b)
	tree.AppendChild(root, c)

	assert.Equal(t, "div", tree.Tag(root)) // lower-cased
	assert.Equal(t, []ElementId{a, b, c}, tree.Children(root))
	assert.Equal(t, root, tree.Parent(a))
	assert.Equal(t, NoElement, tree.Parent(root))
	assert.Equal(t, a, tree.PrevSibling(b))
	assert.Equal(t, c, tree.NextSibling(b))
	assert.Equal(t, NoElement, tree.PrevSibling(a))

	el := tree.Element(b)
	assert.Equal(t, 2, el.ChildIndex())
	assert.Equal(t, 3, el.SiblingCount())
}

func TestTreeRemoveChild(t *testing.T) {
	tree := NewTree()
	root := tree.NewElement("div")
	tree.SetRoot(root)
	a := tree.NewElement("p")
	b := tree.NewElement("p")
	c := tree.NewElement("p")
	tree.AppendChild(root, a)
	tree.AppendChild(root, b)
	tree.AppendChild(root, c)

	tree.RemoveChild(b)
	assert.Equal(t, []ElementId{a, c}, tree.Children(root))
	assert.Equal(t, a, tree.PrevSibling(c))
	assert.Equal(t, c, tree.NextSibling(a))
	assert.Equal(t, NoElement, tree.Parent(b))
	// the remaining siblings are renumbered
	assert.Equal(t, 2, tree.Element(c).ChildIndex())
}

func TestAttributesAndClasses(t *testing.T) {
	tree := NewTree()
	el := tree.NewElement("p")
	tree.SetRoot(el)

	tree.SetAttr(el, "Data-X", "42")
	v, ok := tree.Attr(el, "data-x")
	assert.True(t, ok)
	assert.Equal(t, "42", v)

	tree.SetAttr(el, "class", "a b")
	assert.True(t, tree.Classes(el).Has("a"))
	assert.True(t, tree.Classes(el).Has("b"))

	tree.AddClass(el, "c")
	assert.True(t, tree.Classes(el).Has("c"))
	tree.RemoveClass(el, "a")
	assert.False(t, tree.Classes(el).Has("a"))

	tree.SetAttr(el, "id", "main")
	assert.Equal(t, "main", tree.Id(el))

	tree.SetAttr(el, "style", "color: red")
	assert.Equal(t, "color: red", tree.InlineStyle(el))

	tree.SetState(el, selector.StateFocus, true)
	assert.True(t, tree.Element(el).HasState(selector.StateFocus))
	tree.SetState(el, selector.StateFocus, false)
	assert.False(t, tree.Element(el).HasState(selector.StateFocus))
}

const sampleHTML = `<!DOCTYPE html>
<html>
<head>
  <title>t</title>
  <style>p { color: red }</style>
  <link rel="stylesheet" href="base.css">
</head>
<body>
  <p id="x" class="warn big" style="color: blue">hello <span>world</span></p>
</body>
</html>`

func TestFromHTML(t *testing.T) {
	tree, err := FromHTML(strings.NewReader(sampleHTML))
	require.NoError(t, err)

	root := tree.Root()
	require.NotEqual(t, NoElement, root)
	assert.Equal(t, "html", tree.Tag(root))

	// html > head, body
	children := tree.Children(root)
	require.Len(t, children, 2)
	assert.Equal(t, "head", tree.Tag(children[0]))
	assert.Equal(t, "body", tree.Tag(children[1]))

	body := children[1]
	require.Len(t, tree.Children(body), 1)
	p := tree.Children(body)[0]
	assert.Equal(t, "p", tree.Tag(p))
	assert.Equal(t, "x", tree.Id(p))
	assert.True(t, tree.Classes(p).Has("warn"))
	assert.True(t, tree.Classes(p).Has("big"))
	assert.Equal(t, "color: blue", tree.InlineStyle(p))

	// the text nodes are skipped
	require.Len(t, tree.Children(p), 1)
	assert.Equal(t, "span", tree.Tag(tree.Children(p)[0]))
}

func TestDocumentStylesheets(t *testing.T) {
	root, err := html.Parse(strings.NewReader(sampleHTML))
	require.NoError(t, err)
	inline, links := DocumentStylesheets(root)
	require.Len(t, inline, 1)
	assert.Equal(t, "p { color: red }", inline[0])
	assert.Equal(t, []string{"base.css"}, links)
}
