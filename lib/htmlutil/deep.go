package htmlutil

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Nested sub-trees are serialized shadow roots: a <template shadowrootmode="open"> (or the
// older shadowroot attribute) directly under its host element.

// IsShadowRoot reports whether n is the root of a nested sub-tree.
func IsShadowRoot(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode || n.DataAtom != atom.Template {
		return false
	}
	for _, a := range n.Attr {
		if a.Key == "shadowrootmode" || a.Key == "shadowroot" {
			return true
		}
	}
	return false
}

// walkDeep visits the element descendants of root one tree at a time: first the tree root
// belongs to, then every nested sub-tree in document order, transitively. Returning false from
// visit stops the walk.
func walkDeep(root *html.Node, visit func(n *html.Node) bool) {
	trees := []*html.Node{root}
	for len(trees) > 0 {
		tree := trees[len(trees)-1]
		trees = trees[:len(trees)-1]

		var nested []*html.Node
		stack := pushChildren(nil, tree)
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if n.Type == html.ElementNode {
				if IsShadowRoot(n) {
					nested = append(nested, n)
					continue
				}
				if !visit(n) {
					return
				}
			}
			stack = pushChildren(stack, n)
		}

		for i := len(nested) - 1; i >= 0; i-- {
			trees = append(trees, nested[i])
		}
	}
}

func pushChildren(stack []*html.Node, n *html.Node) []*html.Node {
	for child := n.LastChild; child != nil; child = child.PrevSibling {
		stack = append(stack, child)
	}
	return stack
}

func compile(selector string) cascadia.Selector {
	matcher, err := cascadia.Compile(selector)
	if err != nil {
		return nil
	}
	return matcher
}

// DeepQueryAll returns every element under sel matching selector, including the ones inside
// nested sub-trees. An invalid selector matches nothing.
func DeepQueryAll(sel *goquery.Selection, selector string) *goquery.Selection {
	matcher := compile(selector)
	if matcher == nil {
		return sel.FindNodes()
	}

	var found []*html.Node
	for _, root := range sel.Nodes {
		walkDeep(root, func(n *html.Node) bool {
			if matcher.Match(n) {
				found = append(found, n)
			}
			return true
		})
	}
	return sel.FindNodes(found...)
}

// DeepFirst is DeepQueryAll that stops at the first match.
func DeepFirst(sel *goquery.Selection, selector string) *goquery.Selection {
	matcher := compile(selector)
	if matcher == nil {
		return sel.FindNodes()
	}

	for _, root := range sel.Nodes {
		var found *html.Node
		walkDeep(root, func(n *html.Node) bool {
			if matcher.Match(n) {
				found = n
				return false
			}
			return true
		})
		if found != nil {
			return sel.FindNodes(found)
		}
	}
	return sel.FindNodes()
}

// DeepClosest walks from the first node of sel up through its ancestors, stepping out of
// nested sub-trees into their hosts, and returns the first element matching selector.
func DeepClosest(sel *goquery.Selection, selector string) *goquery.Selection {
	matcher := compile(selector)
	if matcher == nil || sel.Length() == 0 {
		return sel.FilterNodes()
	}

	start := sel.Nodes[0]
	for n := start; n != nil; n = n.Parent {
		if n.Type != html.ElementNode || IsShadowRoot(n) {
			continue
		}
		if !matcher.Match(n) {
			continue
		}
		if n == start {
			return sel.First()
		}
		return sel.First().Parents().FilterNodes(n)
	}
	return sel.FilterNodes()
}

// Outermost drops every node of sel that has an ancestor also in sel.
func Outermost(sel *goquery.Selection) *goquery.Selection {
	members := make(map[*html.Node]bool, len(sel.Nodes))
	for _, n := range sel.Nodes {
		members[n] = true
	}
	return sel.FilterFunction(func(_ int, s *goquery.Selection) bool {
		for p := s.Nodes[0].Parent; p != nil; p = p.Parent {
			if members[p] {
				return false
			}
		}
		return true
	})
}
