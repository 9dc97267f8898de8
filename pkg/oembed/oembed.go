// SPDX-License-Identifier: AGPL-3.0-only

// Package oembed locates oEmbed discovery links
// (<link rel="alternate" type="application/json+oembed"|"text/xml+oembed">)
// described in spec.md §4.5. Fetching the discovered endpoint is
// explicitly out of scope (spec.md §1 Non-goals); only the link itself is
// surfaced.
package oembed

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/metaharvest/metaharvest/internal/domutil"
	"github.com/metaharvest/metaharvest/internal/resolve"
)

// Link is a single oEmbed discovery link.
type Link struct {
	Href  string `json:"href"`
	Title string `json:"title,omitempty"`
}

// Record holds whichever of the JSON/XML oEmbed discovery links were
// found.
type Record struct {
	JSON *Link `json:"json,omitempty"`
	XML  *Link `json:"xml,omitempty"`
}

const (
	jsonType = "application/json+oembed"
	xmlType  = "text/xml+oembed"
)

// Parse extracts oEmbed discovery links from doc.
func Parse(doc *html.Node, baseURL string) Record {
	var rec Record

	for n := range domutil.Elements(doc) {
		if n.Data != "link" {
			continue
		}
		relTokens := strings.Fields(strings.ToLower(domutil.Attr(n, "rel")))
		if !hasToken(relTokens, "alternate") {
			continue
		}
		href := strings.TrimSpace(domutil.Attr(n, "href"))
		if href == "" {
			continue
		}
		typ := strings.ToLower(strings.TrimSpace(domutil.Attr(n, "type")))

		link := Link{
			Href:  resolve.URL(baseURL, href),
			Title: strings.TrimSpace(domutil.Attr(n, "title")),
		}

		switch typ {
		case jsonType:
			if rec.JSON == nil {
				rec.JSON = &link
			}
		case xmlType:
			if rec.XML == nil {
				rec.XML = &link
			}
		}
	}

	return rec
}

func hasToken(tokens []string, want string) bool {
	for _, t := range tokens {
		if t == want {
			return true
		}
	}
	return false
}
