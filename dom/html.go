package dom

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// FromHTML parses an HTML document and builds the element tree
// from its elements, rooted at <html>. Text, comments and other
// non-element nodes are skipped : the style engine only sees
// elements. The style, id and class attributes are mapped to
// their dedicated accessors.
func FromHTML(r io.Reader) (*Tree, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return FromHTMLNode(doc), nil
}

// FromHTMLNode builds the element tree from an already parsed
// document or element node.
func FromHTMLNode(root *html.Node) *Tree {
	tree := NewTree()
	htmlRoot := findRootElement(root)
	if htmlRoot == nil {
		return tree
	}
	id := buildElement(tree, htmlRoot)
	tree.SetRoot(id)
	return tree
}

func findRootElement(n *html.Node) *html.Node {
	if n.Type == html.ElementNode {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if out := findRootElement(c); out != nil {
			return out
		}
	}
	return nil
}

func buildElement(tree *Tree, n *html.Node) ElementId {
	tag := n.Data
	if n.DataAtom != 0 {
		tag = n.DataAtom.String()
	}
	id := tree.NewElement(tag)
	for _, attr := range n.Attr {
		if attr.Namespace != "" {
			continue
		}
		tree.SetAttr(id, attr.Key, attr.Val)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		child := buildElement(tree, c)
		tree.AppendChild(id, child)
	}
	return id
}

// DocumentStylesheets extracts the stylesheet sources declared
// in the document : the text of <style> elements, in tree order.
// <link rel=stylesheet> elements yield their href, to be fetched
// by the caller.
func DocumentStylesheets(root *html.Node) (inline []string, links []string) {
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Style:
				var b strings.Builder
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					if c.Type == html.TextNode {
						b.WriteString(c.Data)
					}
				}
				inline = append(inline, b.String())
			case atom.Link:
				var rel, href string
				for _, attr := range n.Attr {
					switch attr.Key {
					case "rel":
						rel = attr.Val
					case "href":
						href = attr.Val
					}
				}
				if strings.EqualFold(strings.TrimSpace(rel), "stylesheet") && href != "" {
					links = append(links, href)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return inline, links
}
