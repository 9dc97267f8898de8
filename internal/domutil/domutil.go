// SPDX-License-Identifier: AGPL-3.0-only

// Package domutil provides small helpers shared by every extractor package:
// attribute lookup, class-token splitting and an iterative (non-recursive)
// tree walker.
//
// Attribute and text-content access delegate to github.com/go-shiori/dom,
// a DOM convenience layer over golang.org/x/net/html; the walk itself is
// this package's own, since it must stay an explicit stack rather than
// go-shiori/dom's recursive descent to keep a pathologically deep document
// (100+ levels) from overflowing the call stack.
//
// Everything here operates on *html.Node from golang.org/x/net/html, which
// already normalizes tag names and attribute names to lower case and drops
// duplicate attributes (keeping the first), so callers never need to
// special-case casing themselves.
package domutil

import (
	"iter"
	"strings"

	"github.com/go-shiori/dom"
	"golang.org/x/net/html"
)

// GetAttr returns the value of an attribute and whether it was present.
func GetAttr(n *html.Node, name string) (string, bool) {
	if !dom.HasAttribute(n, name) {
		return "", false
	}
	return dom.GetAttribute(n, name), true
}

// Attr returns the value of an attribute, or "" when absent.
func Attr(n *html.Node, name string) string {
	return dom.GetAttribute(n, name)
}

// HasAttr reports whether an attribute is present, regardless of value.
func HasAttr(n *html.Node, name string) bool {
	return dom.HasAttribute(n, name)
}

// ClassTokens splits a node's class attribute on whitespace.
func ClassTokens(n *html.Node) []string {
	return strings.Fields(Attr(n, "class"))
}

// HasClass reports whether a node carries a given class token verbatim.
func HasClass(n *html.Node, class string) bool {
	for _, c := range ClassTokens(n) {
		if c == class {
			return true
		}
	}
	return false
}

// IsElement reports whether n is an element with the given (lower-case) tag
// name.
func IsElement(n *html.Node, tag string) bool {
	return n != nil && n.Type == html.ElementNode && n.Data == tag
}

// Walk returns an iterator over n and all its descendants, in document
// (pre-order) order, using an explicit stack rather than recursion so that
// pathologically deep documents (100+ levels) cannot overflow the call
// stack.
func Walk(n *html.Node) iter.Seq[*html.Node] {
	return func(yield func(*html.Node) bool) {
		if n == nil {
			return
		}
		stack := []*html.Node{n}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !yield(cur) {
				return
			}
			// Push children in reverse so the leftmost child is processed
			// first (stack is LIFO).
			var children []*html.Node
			for c := cur.FirstChild; c != nil; c = c.NextSibling {
				children = append(children, c)
			}
			for i := len(children) - 1; i >= 0; i-- {
				stack = append(stack, children[i])
			}
		}
	}
}

// Elements is like Walk but yields only element nodes.
func Elements(n *html.Node) iter.Seq[*html.Node] {
	return func(yield func(*html.Node) bool) {
		for node := range Walk(n) {
			if node.Type == html.ElementNode {
				if !yield(node) {
					return
				}
			}
		}
	}
}

// FindFirst returns the first descendant (document order, n included) for
// which pred returns true.
func FindFirst(n *html.Node, pred func(*html.Node) bool) *html.Node {
	for node := range Walk(n) {
		if pred(node) {
			return node
		}
	}
	return nil
}

// TextContent returns the concatenated text of all descendant text nodes,
// with runs of whitespace collapsed to a single space and the result
// trimmed.
func TextContent(n *html.Node) string {
	return strings.Join(strings.Fields(dom.TextContent(n)), " ")
}

// Children returns the direct element children of n, in document order.
func Children(n *html.Node) []*html.Node {
	var out []*html.Node
	if n == nil {
		return out
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// FindFirstByTag returns the first descendant element with the given tag
// name (n included), in document order.
func FindFirstByTag(n *html.Node, tag string) *html.Node {
	return FindFirst(n, func(c *html.Node) bool { return IsElement(c, tag) })
}

// CountByTag returns how many descendants (n included) are elements with
// the given tag name.
func CountByTag(n *html.Node, tag string) int {
	count := 0
	for node := range Elements(n) {
		if node.Data == tag {
			count++
		}
	}
	return count
}

// InnerHTML renders n's children back to their serialized HTML form.
func InnerHTML(n *html.Node) string {
	return dom.InnerHTML(n)
}
