// SPDX-License-Identifier: AGPL-3.0-only

// Package rellinks extracts every <link>/<a> that carries a rel attribute,
// grouped by rel token, as described in spec.md §4.6.
//
// Grounded on the rel-token grouping idea in willnorris.com/go/microformats'
// "rel" parsing (referenced by the retrieval pack's microformats test
// suites) and on the getAttr/resolveURL attribute-scanning helpers used
// throughout NICOLASGON-web-audit-tools.
//
// Per spec.md §9's second open question: rel-token matching is
// case-insensitive, but output keys are lower-cased.
package rellinks

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/metaharvest/metaharvest/internal/domutil"
	"github.com/metaharvest/metaharvest/internal/resolve"
)

// Entry describes one rel-carrying link.
type Entry struct {
	Href     string `json:"href"`
	Hreflang string `json:"hreflang,omitempty"`
	Type     string `json:"type,omitempty"`
	Title    string `json:"title,omitempty"`
	Media    string `json:"media,omitempty"`
	Sizes    string `json:"sizes,omitempty"`
}

// Record groups rel entries by lower-cased rel token.
type Record map[string][]Entry

// Parse extracts rel-grouped links from doc.
func Parse(doc *html.Node, baseURL string) Record {
	rec := Record{}

	for n := range domutil.Elements(doc) {
		if n.Data != "link" && n.Data != "a" {
			continue
		}
		relAttr := domutil.Attr(n, "rel")
		if strings.TrimSpace(relAttr) == "" {
			continue
		}
		href := strings.TrimSpace(domutil.Attr(n, "href"))
		if href == "" {
			continue
		}

		entry := Entry{
			Href:     resolve.URL(baseURL, href),
			Hreflang: strings.TrimSpace(domutil.Attr(n, "hreflang")),
			Type:     strings.TrimSpace(domutil.Attr(n, "type")),
			Title:    strings.TrimSpace(domutil.Attr(n, "title")),
			Media:    strings.TrimSpace(domutil.Attr(n, "media")),
			Sizes:    strings.TrimSpace(domutil.Attr(n, "sizes")),
		}

		for _, token := range strings.Fields(relAttr) {
			token = strings.ToLower(token)
			if token == "" {
				continue
			}
			rec[token] = append(rec[token], entry)
		}
	}

	return rec
}
