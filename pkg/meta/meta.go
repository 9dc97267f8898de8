// SPDX-License-Identifier: AGPL-3.0-only

// Package meta extracts the classic <meta>/<link> family described in
// spec.md §4.1: title, description, keywords, canonical, robots, viewport,
// verification tokens, icons, feeds, hreflang alternates, author, generator,
// charset, theme-color and so on.
//
// The scan is a handful of parse* functions, each evaluating one XPath
// query with antchfx/htmlquery. Record uses plain output keys (title,
// description, canonical, ...) rather than a free-form namespaced bag like
// "html.author" or "graph.title"; meta names it does not recognize are
// passed through under their literal lower-cased name.
package meta

import (
	"sort"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/metaharvest/metaharvest/internal/domutil"
	"github.com/metaharvest/metaharvest/internal/resolve"
)

// Icon describes a <link rel=icon|shortcut icon|apple-touch-icon|mask-icon>.
type Icon struct {
	Rel   string `json:"rel"`
	Href  string `json:"href"`
	Sizes string `json:"sizes,omitempty"`
	Type  string `json:"type,omitempty"`
}

// HreflangLink describes a <link rel=alternate hreflang=... href=...>.
type HreflangLink struct {
	Hreflang string `json:"hreflang"`
	Href     string `json:"href"`
}

// Feed describes a <link rel=alternate type=application/rss+xml|atom+xml>.
type Feed struct {
	Type  string `json:"type"`
	Href  string `json:"href"`
	Title string `json:"title,omitempty"`
}

// Record is the extracted meta-tag document: a key/value map where the
// value is either a string, a []string (keywords), or one of the small list
// types above (icons, hreflang, feeds).
type Record map[string]any

// GetString returns a scalar string field, or "" if absent or not a string.
func (r Record) GetString(key string) string {
	v, _ := r[key].(string)
	return v
}

// namesHandledElsewhere are meta name= prefixes owned by a sibling
// extractor (Open Graph, Twitter, Dublin Core, fediverse discovery); the
// meta extractor does not duplicate them under their literal name.
var namesHandledElsewhere = []string{
	"og:", "article:", "book:", "profile:", "music:", "video:", "fb:",
	"twitter:", "dc.", "dc:", "dcterms.", "dcterms:", "fediverse:",
}

// knownScalarNames map a lower-cased meta "name" attribute directly to its
// output key (the two happen to coincide for all of them).
var knownScalarNames = map[string]bool{
	"description":      true,
	"author":           true,
	"generator":        true,
	"viewport":         true,
	"robots":           true,
	"theme-color":      true,
	"application-name": true,
}

const rssType = "application/rss+xml"
const atomType = "application/atom+xml"

// Parse extracts meta/link metadata from doc. baseURL, when non-empty and
// valid, is used to resolve relative hrefs; otherwise hrefs are returned
// unresolved.
func Parse(doc *html.Node, baseURL string) Record {
	rec := Record{}

	parseTitle(doc, rec)
	parseHTMLAttrs(doc, rec)
	parseMetaNames(doc, rec)
	parseCharset(doc, rec)
	parseLinks(doc, rec, baseURL)

	return rec
}

func parseTitle(doc *html.Node, rec Record) {
	nodes, _ := htmlquery.QueryAll(doc, "//title")
	for _, n := range nodes {
		title := strings.TrimSpace(domutil.TextContent(n))
		if title != "" {
			rec["title"] = title
			return
		}
	}
}

func parseHTMLAttrs(doc *html.Node, rec Record) {
	nodes, _ := htmlquery.QueryAll(doc, "//html[@lang]")
	for _, n := range nodes {
		if lang := strings.TrimSpace(domutil.Attr(n, "lang")); lang != "" {
			rec["language"] = lang
			break
		}
	}
}

func parseMetaNames(doc *html.Node, rec Record) {
	nodes, _ := htmlquery.QueryAll(doc, "//meta[@content]")
	for _, n := range nodes {
		name := strings.ToLower(strings.TrimSpace(domutil.Attr(n, "name")))
		httpEquiv := strings.ToLower(strings.TrimSpace(domutil.Attr(n, "http-equiv")))
		content := strings.TrimSpace(domutil.Attr(n, "content"))
		if content == "" {
			continue
		}

		switch {
		case name == "" && httpEquiv == "":
			continue
		case httpEquiv == "refresh":
			setScalar(rec, "refresh", content)
		case httpEquiv == "content-type":
			if cs := charsetFromContentType(content); cs != "" {
				setScalar(rec, "charset", cs)
			}
		case name == "keywords":
			setKeywords(rec, content)
		case name == "":
			// http-equiv handled above; nothing else to do.
		case isHandledElsewhere(name):
			continue
		case isVerificationToken(name):
			setScalar(rec, verificationKey(name), content)
		case knownScalarNames[name]:
			setScalar(rec, name, content)
		default:
			// Unknown metadata keys are passed through with their literal
			// key (spec §7), e.g. geo.position, ICBM, rating, distribution.
			setScalar(rec, name, content)
		}
	}
}

func parseCharset(doc *html.Node, rec Record) {
	if _, ok := rec["charset"]; ok {
		return
	}
	nodes, _ := htmlquery.QueryAll(doc, "//meta[@charset]")
	for _, n := range nodes {
		if cs := strings.TrimSpace(domutil.Attr(n, "charset")); cs != "" {
			rec["charset"] = cs
			return
		}
	}
}

func parseLinks(doc *html.Node, rec Record, baseURL string) {
	nodes, _ := htmlquery.QueryAll(doc, "//link[@href]")
	for _, n := range nodes {
		href := strings.TrimSpace(domutil.Attr(n, "href"))
		if href == "" {
			continue
		}
		relTokens := strings.Fields(strings.ToLower(domutil.Attr(n, "rel")))
		if len(relTokens) == 0 {
			continue
		}

		switch {
		case containsToken(relTokens, "canonical"):
			setScalar(rec, "canonical", resolve.URL(baseURL, href))
		case isIconRel(relTokens):
			appendIcon(rec, n, relTokens, href, baseURL)
		case containsToken(relTokens, "alternate") && domutil.HasAttr(n, "hreflang"):
			appendHreflang(rec, n, href, baseURL)
		case containsToken(relTokens, "alternate") && isFeedType(domutil.Attr(n, "type")):
			appendFeed(rec, n, href, baseURL)
		}
	}
}

func appendIcon(rec Record, n *html.Node, relTokens []string, href, baseURL string) {
	icon := Icon{
		Rel:   strings.Join(relTokens, " "),
		Href:  resolve.URL(baseURL, href),
		Sizes: strings.TrimSpace(domutil.Attr(n, "sizes")),
		Type:  strings.TrimSpace(domutil.Attr(n, "type")),
	}
	list, _ := rec["icons"].([]Icon)
	rec["icons"] = append(list, icon)
}

func appendHreflang(rec Record, n *html.Node, href, baseURL string) {
	link := HreflangLink{
		Hreflang: strings.TrimSpace(domutil.Attr(n, "hreflang")),
		Href:     resolve.URL(baseURL, href),
	}
	if link.Hreflang == "" {
		return
	}
	list, _ := rec["hreflang"].([]HreflangLink)
	rec["hreflang"] = append(list, link)
}

func appendFeed(rec Record, n *html.Node, href, baseURL string) {
	feed := Feed{
		Type:  strings.ToLower(strings.TrimSpace(domutil.Attr(n, "type"))),
		Href:  resolve.URL(baseURL, href),
		Title: strings.TrimSpace(domutil.Attr(n, "title")),
	}
	list, _ := rec["feeds"].([]Feed)
	rec["feeds"] = append(list, feed)
}

// setScalar sets a first-wins scalar key.
func setScalar(rec Record, key, value string) {
	if key == "" || value == "" {
		return
	}
	if _, exists := rec[key]; exists {
		return
	}
	rec[key] = value
}

func setKeywords(rec Record, content string) {
	if _, exists := rec["keywords"]; exists {
		return
	}
	var words []string
	for _, part := range strings.Split(content, ",") {
		w := strings.TrimSpace(part)
		if w != "" {
			words = append(words, w)
		}
	}
	if len(words) > 0 {
		rec["keywords"] = words
	}
}

func isHandledElsewhere(name string) bool {
	for _, prefix := range namesHandledElsewhere {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

func isVerificationToken(name string) bool {
	return strings.Contains(name, "verif")
}

// verificationKey normalizes a verification meta name to snake_case:
// "google-site-verification" -> "google_site_verification",
// "p:domain_verify" -> "p_domain_verify".
func verificationKey(name string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.Trim(b.String(), "_")
}

func charsetFromContentType(content string) string {
	lower := strings.ToLower(content)
	idx := strings.Index(lower, "charset=")
	if idx < 0 {
		return ""
	}
	rest := content[idx+len("charset="):]
	rest = strings.TrimSpace(rest)
	if end := strings.IndexAny(rest, " ;"); end >= 0 {
		rest = rest[:end]
	}
	return strings.Trim(rest, `"'`)
}

func containsToken(tokens []string, want string) bool {
	for _, t := range tokens {
		if t == want {
			return true
		}
	}
	return false
}

func isIconRel(relTokens []string) bool {
	if containsToken(relTokens, "icon") {
		return true
	}
	joined := strings.Join(relTokens, " ")
	switch joined {
	case "apple-touch-icon", "apple-touch-icon-precomposed", "mask-icon":
		return true
	}
	return false
}

func isFeedType(t string) bool {
	t = strings.ToLower(strings.TrimSpace(t))
	return t == rssType || t == atomType
}

// SortedKeys returns the record's keys sorted, for deterministic output in
// callers that serialize Record directly (map iteration order in Go is
// randomized).
func SortedKeys(rec Record) []string {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
