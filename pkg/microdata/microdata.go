// SPDX-License-Identifier: AGPL-3.0-only

// Package microdata extracts HTML5 microdata
// (itemscope/itemprop/itemtype/itemid/itemref) into a tree of Items.
//
// The per-scope property walk and the tag-based value-extraction switch
// (readSchemaNode/readSchemaAttr/getSchemaValue-shaped) follow a common
// pattern for this kind of parser: a node with itemscope+itemprop opens a
// nested item, a node with itemprop alone contributes a scalar value, and a
// node with itemscope but no itemprop (and not the item being built) is a
// separate top-level item and is not descended into.
//
// Three things go beyond that common shape on purpose. First, itemref here
// is guarded against cycles (itemref chains can point into each other,
// which would otherwise recurse forever on a crafted document). Second,
// values keep their declared itemprop identity instead of being merged
// into a bare map, so a property that is both a nested item and carries
// its own @type/@id stays addressable. Third, itemscope nesting depth is
// capped by WithMaxDepth (DefaultMaxDepth if unset) against adversarially
// deep documents.
package microdata

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/metaharvest/metaharvest/internal/domutil"
	"github.com/metaharvest/metaharvest/internal/resolve"
)

// Item is one microdata item (one itemscope subtree).
type Item struct {
	Types      []string         `json:"types,omitempty"`
	ID         string           `json:"id,omitempty"`
	Properties map[string][]any `json:"properties,omitempty"`
}

func newItem() *Item {
	return &Item{Properties: map[string][]any{}}
}

func addProp(item *Item, name string, value any) {
	if name == "" {
		return
	}
	item.Properties[name] = append(item.Properties[name], value)
}

// DefaultMaxDepth bounds how many levels of nested itemscope Parse
// descends into when no WithMaxDepth option is given: deep enough for any
// realistic document, shallow enough to cap an adversarial one built to
// blow the call stack.
const DefaultMaxDepth = 100

type config struct {
	maxDepth int
}

// Option configures Parse.
type Option func(*config)

// WithMaxDepth caps the itemscope nesting depth Parse will descend into.
// Content past the cap is left out of the result rather than causing an
// error.
func WithMaxDepth(n int) Option {
	return func(c *config) { c.maxDepth = n }
}

func newConfig(opts []Option) *config {
	c := &config{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Parse walks doc for top-level microdata items: elements carrying
// itemscope but not itemprop (a nested itemscope+itemprop element is a
// property of its enclosing item, not a document-level item on its own).
func Parse(doc *html.Node, baseURL string, opts ...Option) []*Item {
	cfg := newConfig(opts)
	identified := map[string]*html.Node{}
	var roots []*html.Node

	for n := range domutil.Elements(doc) {
		if id := domutil.Attr(n, "id"); id != "" {
			if _, exists := identified[id]; !exists {
				identified[id] = n
			}
		}
		if domutil.HasAttr(n, "itemscope") && !domutil.HasAttr(n, "itemprop") {
			roots = append(roots, n)
		}
	}

	items := make([]*Item, 0, len(roots))
	for _, n := range roots {
		b := &builder{baseURL: baseURL, identified: identified, expanded: map[string]bool{}, cfg: cfg}
		item := newItem()
		b.readAttrs(item, n)
		b.readChildren(item, n, true, 0)
		items = append(items, item)
	}
	return items
}

type builder struct {
	baseURL    string
	identified map[string]*html.Node
	expanded   map[string]bool // itemref ids already expanded within this top-level item, nested items included
	cfg        *config
}

// readAttrs resolves itemtype/itemid/itemref on the item's own root node.
func (b *builder) readAttrs(item *Item, n *html.Node) {
	if s := domutil.Attr(n, "itemtype"); s != "" {
		for _, t := range strings.Fields(s) {
			item.Types = append(item.Types, t)
		}
	}

	if s := domutil.Attr(n, "itemid"); s != "" {
		item.ID = resolve.URL(b.baseURL, s)
	}

	if s := domutil.Attr(n, "itemref"); s != "" {
		for _, ref := range strings.Fields(s) {
			if ref == "" || b.expanded[ref] {
				continue // already expanded, or would start a cycle
			}
			target, ok := b.identified[ref]
			if !ok {
				continue
			}
			inside := false
			for p := target; p != nil; p = p.Parent {
				if p == n {
					inside = true
					break
				}
			}
			if inside {
				continue // n's own walk already reads this subtree
			}
			b.expanded[ref] = true
			b.readChildren(item, target, false, 0)
		}
	}
}

// readChildren walks n's element children looking for itemprop/itemscope.
// It does not recurse into a nested itemscope's own subtree once that
// nested item has been captured as a property value: that subtree belongs
// to the nested item, not to item. depth is capped by cfg.maxDepth as a
// defense against adversarially deep itemscope nesting.
func (b *builder) readChildren(item *Item, n *html.Node, isItemRoot bool, depth int) {
	if depth >= b.cfg.maxDepth {
		return
	}
	for _, c := range domutil.Children(n) {
		b.visit(item, c, isItemRoot, depth)
	}
}

func (b *builder) visit(item *Item, n *html.Node, parentIsItemRoot bool, depth int) {
	hasProp := domutil.HasAttr(n, "itemprop")
	hasScope := domutil.HasAttr(n, "itemscope")

	switch {
	case hasScope && hasProp:
		sub := newItem()
		sub2 := &builder{baseURL: b.baseURL, identified: b.identified, expanded: b.expanded, cfg: b.cfg}
		sub2.readAttrs(sub, n)
		sub2.readChildren(sub, n, true, depth+1)
		for _, name := range strings.Fields(domutil.Attr(n, "itemprop")) {
			addProp(item, name, sub)
		}
		return

	case !hasScope && hasProp:
		val := b.propValue(n)
		if val != "" {
			for _, name := range strings.Fields(domutil.Attr(n, "itemprop")) {
				addProp(item, name, val)
			}
		}
		// A non-scope itemprop element can still hold further itemprop
		// descendants (e.g. a <span itemprop="author"> wrapping more
		// itemprop spans); keep walking its children for item.
		b.readChildren(item, n, false, depth+1)
		return

	case hasScope:
		// A bare itemscope (no itemprop) nested inside is its own
		// separate top-level item; don't absorb its subtree.
		return
	}

	b.readChildren(item, n, false, depth+1)
}

// propValue implements the per-tag value extraction rules (the same
// getSchemaValue-shaped dispatch table used elsewhere in this package):
// meta uses @content,
// media elements use @src, links use @href, data/meter use @value, time
// uses @datetime, and everything else falls back to its text content (or
// its own @content attribute, which some non-meta tags carry too).
func (b *builder) propValue(n *html.Node) string {
	switch n.DataAtom {
	case atom.Meta:
		return strings.TrimSpace(domutil.Attr(n, "content"))
	case atom.Audio, atom.Embed, atom.Iframe, atom.Img, atom.Source, atom.Track, atom.Video:
		return b.resolvedAttr(n, "src")
	case atom.A, atom.Area, atom.Link:
		return b.resolvedAttr(n, "href")
	case atom.Object:
		return b.resolvedAttr(n, "data")
	case atom.Data, atom.Meter:
		return strings.TrimSpace(domutil.Attr(n, "value"))
	case atom.Time:
		if v := domutil.Attr(n, "datetime"); v != "" {
			return strings.TrimSpace(v)
		}
		return domutil.TextContent(n)
	default:
		if domutil.HasAttr(n, "content") {
			return strings.TrimSpace(domutil.Attr(n, "content"))
		}
		return domutil.TextContent(n)
	}
}

func (b *builder) resolvedAttr(n *html.Node, attr string) string {
	v := strings.TrimSpace(domutil.Attr(n, attr))
	if v == "" {
		return ""
	}
	return resolve.URL(b.baseURL, v)
}
