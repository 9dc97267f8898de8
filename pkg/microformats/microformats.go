// SPDX-License-Identifier: AGPL-3.0-only

// Package microformats implements the microformats2 parsing algorithm:
// root detection via `h-*` class tokens, property extraction via
// `p-`/`u-`/`dt-`/`e-` class tokens, the value-class composition pattern,
// implied name/photo/url, nested-root item assembly, and the document-wide
// rel/rel-urls index.
//
// The top-level root scan reuses the same explicit-stack, non-recursive
// walk shape as internal/domutil.Walk, which is what keeps a deeply nested
// document with no microformats classes at all O(n) and stack-safe. Once a
// root is found, the per-item property walk recurses and is capped by
// WithMaxDepth (DefaultMaxDepth if unset) as a second line of defense
// against adversarial nesting of h-*/p-*/u-*/dt-*/e-* classes themselves.
//
// dt-* properties compose across siblings: a dt-* value with only a time
// portion inherits the date of the first previously-seen dt-* property in
// the same item (dtState, composeDatetime), so dt-end can share dt-start's
// date.
package microformats

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/metaharvest/metaharvest/internal/domutil"
	"github.com/metaharvest/metaharvest/internal/resolve"
)

// DefaultMaxDepth bounds how many levels of nested microformats
// items/property elements Parse descends into when no WithMaxDepth option
// is given: deep enough for any realistic document, shallow enough to cap
// an adversarial one built to blow the call stack.
const DefaultMaxDepth = 100

type config struct {
	maxDepth int
}

// Option configures Parse.
type Option func(*config)

// WithMaxDepth caps the nesting depth Parse will descend into. Content
// past the cap is left out of the result rather than causing an error.
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

// dtState tracks, while walking a single item's properties in document
// order, the date of the first dt-* property that carries one, so a later
// dt-* property missing its own date (e.g. dt-end given only a time) can
// inherit it from that first previously-seen sibling dt-* property, per spec.md §4.9.3.
type dtState struct {
	lastDate string
}

// EmbeddedHTML is the value of an e-* property: a plaintext projection and
// the serialized inner HTML, verbatim (unsanitized — sanitizing would
// strip exactly what callers of an e-* property expect to keep).
type EmbeddedHTML struct {
	Value string `json:"value"`
	HTML  string `json:"html"`
}

// Item is one microformats2 item (one h-* root).
type Item struct {
	Types      []string         `json:"type"`
	Properties map[string][]any `json:"properties"`
	Children   []*Item          `json:"children,omitempty"`
}

// RelURL is the per-href detail record in a Document's RelURLs index.
type RelURL struct {
	Rels     []string `json:"rels"`
	Text     string   `json:"text,omitempty"`
	Hreflang string   `json:"hreflang,omitempty"`
	Media    string   `json:"media,omitempty"`
	Type     string   `json:"type,omitempty"`
	Title    string   `json:"title,omitempty"`
	Lang     string   `json:"lang,omitempty"`
}

// Document is the aggregate result: every top-level item plus the
// document-wide rel index.
type Document struct {
	Items   []*Item             `json:"items"`
	Rels    map[string][]string `json:"rels"`
	RelURLs map[string]*RelURL  `json:"rel-urls"`
}

var (
	rootClassRE = regexp.MustCompile(`^h-[a-z0-9]+(-[a-z0-9]+)*$`)
	propClassRE = regexp.MustCompile(`^(p|u|dt|e)-([a-z0-9]+(?:-[a-z0-9]+)*)$`)
)

func rootTypes(n *html.Node) []string {
	var out []string
	for _, c := range domutil.ClassTokens(n) {
		if rootClassRE.MatchString(c) {
			out = append(out, c)
		}
	}
	return out
}

type propToken struct{ prefix, name string }

func propertyTokens(n *html.Node) []propToken {
	var out []propToken
	for _, c := range domutil.ClassTokens(n) {
		if m := propClassRE.FindStringSubmatch(c); m != nil {
			out = append(out, propToken{prefix: m[1], name: m[2]})
		}
	}
	return out
}

// Parse runs the full microformats2 algorithm over doc.
func Parse(doc *html.Node, baseURL string, opts ...Option) *Document {
	cfg := newConfig(opts)
	roots := findTopLevelRoots(doc)
	items := make([]*Item, 0, len(roots))
	for _, r := range roots {
		items = append(items, parseItem(r, baseURL, cfg, 0))
	}
	rels, relURLs := collectRels(doc, baseURL)
	return &Document{Items: items, Rels: rels, RelURLs: relURLs}
}

// findTopLevelRoots walks doc with an explicit stack (iterative pre-order,
// mirroring domutil.Walk) and returns every h-* element that is not itself
// nested inside another h-* element: descending into an already-found
// root's subtree is the parseItem recursion's job, not this scan's.
func findTopLevelRoots(doc *html.Node) []*html.Node {
	var roots []*html.Node
	if doc == nil {
		return roots
	}
	stack := []*html.Node{doc}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if cur.Type == html.ElementNode && len(rootTypes(cur)) > 0 {
			roots = append(roots, cur)
			continue
		}

		var children []*html.Node
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			children = append(children, c)
		}
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return roots
}

func parseItem(n *html.Node, baseURL string, cfg *config, depth int) *Item {
	item := &Item{Types: rootTypes(n), Properties: map[string][]any{}}
	if depth < cfg.maxDepth {
		walkChildren(n, item, baseURL, cfg, depth+1, &dtState{})
	}
	applyImplied(item, n, baseURL)
	return item
}

func addProp(item *Item, name string, val any) {
	if name == "" {
		return
	}
	item.Properties[name] = append(item.Properties[name], val)
}

func walkChildren(n *html.Node, item *Item, baseURL string, cfg *config, depth int, dt *dtState) {
	for _, c := range domutil.Children(n) {
		walkNode(c, item, baseURL, cfg, depth, dt)
	}
}

// walkNode implements the §4.9.7 state transitions for a single element: an
// h-* element opens a nested item (linked as a property value when it also
// carries a property class, and always added to Children); a property
// class extracts a value for the current item and keeps walking its own
// children for further nested properties of the same item.
func walkNode(c *html.Node, item *Item, baseURL string, cfg *config, depth int, dt *dtState) {
	props := propertyTokens(c)

	if types := rootTypes(c); len(types) > 0 {
		sub := parseItem(c, baseURL, cfg, depth)
		for _, pt := range props {
			addProp(item, pt.name, sub)
		}
		item.Children = append(item.Children, sub)
		return
	}

	if len(props) > 0 {
		for _, pt := range props {
			addProp(item, pt.name, extractPropertyValue(c, pt.prefix, baseURL, dt))
		}
		if depth < cfg.maxDepth {
			walkChildren(c, item, baseURL, cfg, depth+1, dt)
		}
		return
	}

	if depth < cfg.maxDepth {
		walkChildren(c, item, baseURL, cfg, depth+1, dt)
	}
}

// extractPropertyValue implements §4.9.2/§4.9.3: the value-class pattern
// overrides the default per-prefix extraction whenever a "value" or
// "value-title" descendant is present. The "dt" case additionally composes
// across sibling dt-* properties via dt (see dtState, composeDatetime).
func extractPropertyValue(n *html.Node, prefix string, baseURL string, dt *dtState) any {
	switch prefix {
	case "p":
		if frags, found := valueClassFragments(n); found {
			return strings.TrimSpace(strings.Join(frags, ""))
		}
		return plainValue(n)
	case "u":
		if frags, found := valueClassFragments(n); found {
			return resolve.URL(baseURL, strings.TrimSpace(strings.Join(frags, "")))
		}
		return urlValue(n, baseURL)
	case "dt":
		var raw string
		if frags, found := valueClassFragments(n); found {
			raw = strings.Join(frags, "")
		} else {
			raw = dtValue(n)
		}
		return composeDatetime(raw, dt)
	case "e":
		return EmbeddedHTML{
			Value: strings.TrimSpace(domutil.TextContent(n)),
			HTML:  domutil.InnerHTML(n),
		}
	}
	return nil
}

// valueClassFragments gathers, in document order, the literal text nodes
// and "value"/"value-title" element values found within a property
// element, descending through any other descendant element but stopping
// at value/value-title elements and at any nested h-* root so its content isn't
// leaked into the enclosing property (spec.md §4.9.3/§4.9.1). found is
// false when no value/value-title element exists anywhere in the subtree,
// signalling the caller should fall back to the prefix's default
// extraction instead.
func valueClassFragments(n *html.Node) (frags []string, found bool) {
	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				frags = append(frags, c.Data)
			case html.ElementNode:
				classes := domutil.ClassTokens(c)
				switch {
				case containsStr(classes, "value-title"):
					frags = append(frags, domutil.Attr(c, "title"))
					found = true
				case containsStr(classes, "value"):
					frags = append(frags, strings.TrimSpace(domutil.TextContent(c)))
					found = true
				case len(rootTypes(c)) > 0:
					// nested root: excluded from the enclosing property's
					// value-class composition.
				default:
					walk(c)
				}
			}
		}
	}
	walk(n)
	return frags, found
}

func plainValue(n *html.Node) string {
	switch n.Data {
	case "img", "area":
		if v := domutil.Attr(n, "alt"); v != "" {
			return v
		}
	case "abbr":
		if v := domutil.Attr(n, "title"); v != "" {
			return v
		}
	case "data", "input":
		if v := domutil.Attr(n, "value"); v != "" {
			return v
		}
	}
	return strings.TrimSpace(domutil.TextContent(n))
}

func urlValue(n *html.Node, baseURL string) string {
	switch n.Data {
	case "a", "area", "link":
		if v := domutil.Attr(n, "href"); v != "" {
			return resolve.URL(baseURL, v)
		}
	case "img", "audio", "source", "iframe", "video":
		if v := domutil.Attr(n, "src"); v != "" {
			return resolve.URL(baseURL, v)
		}
	case "object":
		if v := domutil.Attr(n, "data"); v != "" {
			return resolve.URL(baseURL, v)
		}
	}
	for _, attr := range []string{"href", "src", "data", "value", "content"} {
		if v := domutil.Attr(n, attr); v != "" {
			return resolve.URL(baseURL, v)
		}
	}
	return resolve.URL(baseURL, strings.TrimSpace(domutil.TextContent(n)))
}

func dtValue(n *html.Node) string {
	switch n.Data {
	case "time", "ins", "del":
		if v := domutil.Attr(n, "datetime"); v != "" {
			return v
		}
	case "abbr":
		if v := domutil.Attr(n, "title"); v != "" {
			return v
		}
	case "data", "input":
		if v := domutil.Attr(n, "value"); v != "" {
			return v
		}
	}
	return strings.TrimSpace(domutil.TextContent(n))
}

var (
	leadingDateRE = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	timeOnlyRE    = regexp.MustCompile(`^\d{1,2}:\d{2}`)
)

// composeDatetime implements §4.9.3's cross-property datetime composition:
// a dt-* value with no date of its own (just a time, such as a dt-end
// given only "17:00") borrows the date portion of the first
// previously-seen dt-* property in the same item, so dt-end can inherit
// the date of dt-start. dt.lastDate is set by the first dt-* value that
// supplies its own date and is not overwritten by later ones.
func composeDatetime(raw string, dt *dtState) string {
	if date := leadingDateRE.FindString(raw); date != "" {
		if dt.lastDate == "" {
			dt.lastDate = date
		}
		return raw
	}
	if dt.lastDate != "" && timeOnlyRE.MatchString(raw) {
		return dt.lastDate + "T" + raw
	}
	return raw
}

// applyImplied fills in name/photo/url per §4.9.4 when not already set
// explicitly, and never when the item has any nested-root child (to avoid
// leaking nested content into the outer item's implied values).
func applyImplied(item *Item, n *html.Node, baseURL string) {
	if len(item.Children) > 0 {
		return
	}
	if _, ok := item.Properties["name"]; !ok {
		if v := impliedName(n); v != "" {
			item.Properties["name"] = []any{v}
		}
	}
	if _, ok := item.Properties["photo"]; !ok {
		if v := impliedPhoto(n, baseURL); v != "" {
			item.Properties["photo"] = []any{v}
		}
	}
	if _, ok := item.Properties["url"]; !ok {
		if v := impliedURL(n, baseURL); v != "" {
			item.Properties["url"] = []any{v}
		}
	}
}

func impliedAltOrTitle(n *html.Node) (string, bool) {
	switch n.Data {
	case "img", "area":
		if v := domutil.Attr(n, "alt"); v != "" {
			return v, true
		}
	case "abbr":
		if v := domutil.Attr(n, "title"); v != "" {
			return v, true
		}
	}
	return "", false
}

func impliedName(n *html.Node) string {
	if v, ok := impliedAltOrTitle(n); ok {
		return v
	}
	if children := domutil.Children(n); len(children) == 1 {
		if v, ok := impliedAltOrTitle(children[0]); ok {
			return v
		}
		if gc := domutil.Children(children[0]); len(gc) == 1 {
			if v, ok := impliedAltOrTitle(gc[0]); ok {
				return v
			}
		}
	}
	return strings.TrimSpace(domutil.TextContent(n))
}

func impliedPhoto(n *html.Node, baseURL string) string {
	if n.Data == "img" {
		if v := domutil.Attr(n, "src"); v != "" {
			return resolve.URL(baseURL, v)
		}
	}
	children := domutil.Children(n)
	if len(children) == 1 {
		if children[0].Data == "img" {
			if v := domutil.Attr(children[0], "src"); v != "" {
				return resolve.URL(baseURL, v)
			}
		}
	}
	if n.Data == "object" {
		if v := domutil.Attr(n, "data"); v != "" {
			return resolve.URL(baseURL, v)
		}
	}
	if len(children) == 1 && children[0].Data == "object" {
		if v := domutil.Attr(children[0], "data"); v != "" {
			return resolve.URL(baseURL, v)
		}
	}
	return ""
}

func impliedURL(n *html.Node, baseURL string) string {
	if n.Data == "a" || n.Data == "area" {
		if v := domutil.Attr(n, "href"); v != "" {
			return resolve.URL(baseURL, v)
		}
	}
	if children := domutil.Children(n); len(children) == 1 {
		if children[0].Data == "a" || children[0].Data == "area" {
			if v := domutil.Attr(children[0], "href"); v != "" {
				return resolve.URL(baseURL, v)
			}
		}
	}
	return ""
}

// collectRels implements §4.9.6, independent of the item tree: every
// rel-carrying <a>/<link> contributes to the rel-token index and the
// per-href detail index.
func collectRels(doc *html.Node, baseURL string) (map[string][]string, map[string]*RelURL) {
	rels := map[string][]string{}
	relURLs := map[string]*RelURL{}
	seen := map[string]map[string]bool{}

	for n := range domutil.Elements(doc) {
		if n.Data != "a" && n.Data != "link" {
			continue
		}
		relAttr := strings.TrimSpace(domutil.Attr(n, "rel"))
		if relAttr == "" {
			continue
		}
		href := strings.TrimSpace(domutil.Attr(n, "href"))
		if href == "" {
			continue
		}
		resolved := resolve.URL(baseURL, href)
		tokens := strings.Fields(relAttr)

		for _, tok := range tokens {
			tok = strings.ToLower(tok)
			if tok == "" {
				continue
			}
			if seen[tok] == nil {
				seen[tok] = map[string]bool{}
			}
			if !seen[tok][resolved] {
				seen[tok][resolved] = true
				rels[tok] = append(rels[tok], resolved)
			}
		}

		ru, ok := relURLs[resolved]
		if !ok {
			ru = &RelURL{}
			relURLs[resolved] = ru
		}
		for _, tok := range tokens {
			tok = strings.ToLower(tok)
			if tok != "" && !containsStr(ru.Rels, tok) {
				ru.Rels = append(ru.Rels, tok)
			}
		}
		if ru.Text == "" {
			ru.Text = strings.TrimSpace(domutil.TextContent(n))
		}
		if ru.Hreflang == "" {
			ru.Hreflang = domutil.Attr(n, "hreflang")
		}
		if ru.Media == "" {
			ru.Media = domutil.Attr(n, "media")
		}
		if ru.Type == "" {
			ru.Type = domutil.Attr(n, "type")
		}
		if ru.Title == "" {
			ru.Title = domutil.Attr(n, "title")
		}
		if ru.Lang == "" {
			ru.Lang = domutil.Attr(n, "lang")
		}
	}

	return rels, relURLs
}

func containsStr(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}

// ByType returns every item of the given h-* type anywhere in the document
// (top-level or nested as a child), in document order, not deduplicated
// beyond visiting each item once.
func ByType(doc *Document, typ string) []*Item {
	var out []*Item
	seen := map[*Item]bool{}
	var visit func(*Item)
	visit = func(it *Item) {
		if it == nil || seen[it] {
			return
		}
		seen[it] = true
		if containsStr(it.Types, typ) {
			out = append(out, it)
		}
		for _, child := range it.Children {
			visit(child)
		}
	}
	for _, it := range doc.Items {
		visit(it)
	}
	return out
}
