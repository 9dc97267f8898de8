// SPDX-License-Identifier: AGPL-3.0-only

// Package twitter extracts Twitter Card metadata
// (<meta name="twitter:...">) described in spec.md §4.3, including the
// fallback projection from Open Graph.
package twitter

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/metaharvest/metaharvest/internal/domutil"
	"github.com/metaharvest/metaharvest/internal/resolve"
	"github.com/metaharvest/metaharvest/pkg/opengraph"
)

// SubRecord is a nested Twitter object (the "player" or "app" subtrees).
type SubRecord map[string]string

// Record is the extracted Twitter Card document.
type Record struct {
	Fields map[string]string
	Groups map[string][]SubRecord
}

// Get returns a scalar field value, or "" if absent.
func (r Record) Get(name string) string {
	return r.Fields[name]
}

type groupSpec struct {
	path    string
	baseKey string
	isURL   bool
}

// groups are the "player" and "app" subtrees, which nest the same way
// Open Graph's image/video groups do (spec.md §4.3).
var groups = []groupSpec{
	{path: "player", baseKey: "url", isURL: true},
	{path: "app", baseKey: "value"},
}

// Parse extracts the Twitter Card document from doc.
func Parse(doc *html.Node, baseURL string) Record {
	rec := Record{Fields: map[string]string{}, Groups: map[string][]SubRecord{}}
	openGroup := map[string]int{}

	for n := range domutil.Elements(doc) {
		if n.Data != "meta" {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(domutil.Attr(n, "name")))
		content := strings.TrimSpace(domutil.Attr(n, "content"))
		if content == "" || !strings.HasPrefix(name, "twitter:") {
			continue
		}
		rest := name[len("twitter:"):]
		if rest == "" {
			continue
		}

		spec, qualifier, isGroup := matchGroup(rest)
		switch {
		case isGroup && qualifier == "":
			val := content
			if spec.isURL {
				val = resolve.URL(baseURL, content)
			}
			rec.Groups[spec.path] = append(rec.Groups[spec.path], SubRecord{spec.baseKey: val})
			openGroup[spec.path] = len(rec.Groups[spec.path]) - 1

		case isGroup && qualifier != "":
			idx, open := openGroup[spec.path]
			if !open || idx >= len(rec.Groups[spec.path]) {
				rec.Groups[spec.path] = append(rec.Groups[spec.path], SubRecord{})
				idx = len(rec.Groups[spec.path]) - 1
				openGroup[spec.path] = idx
			}
			val := content
			if spec.isURL && qualifier == "stream" {
				val = resolve.URL(baseURL, content)
			}
			rec.Groups[spec.path][idx][qualifier] = val

		default:
			if _, exists := rec.Fields[rest]; exists {
				continue
			}
			val := content
			if rest == "image" {
				val = resolve.URL(baseURL, content)
			}
			rec.Fields[rest] = val
		}
	}

	return rec
}

func matchGroup(rest string) (spec groupSpec, qualifier string, ok bool) {
	for _, g := range groups {
		if rest == g.path {
			return g, "", true
		}
		if strings.HasPrefix(rest, g.path+":") {
			return g, rest[len(g.path)+1:], true
		}
	}
	return groupSpec{}, "", false
}

// fallbackKeys are the scalars extract_twitter_with_fallback may copy from
// Open Graph when Twitter didn't supply them (spec.md §4.3).
var fallbackKeys = []string{"title", "description", "image", "url"}

// WithFallback runs Parse and then fills in any of {title, description,
// image, url} still missing from Open Graph's equivalent field. Only
// scalar fallbacks are applied; nested Twitter records (player, app) are
// never merged from Open Graph.
func WithFallback(doc *html.Node, baseURL string) Record {
	rec := Parse(doc, baseURL)
	og := opengraph.Parse(doc, baseURL)

	for _, key := range fallbackKeys {
		if rec.Fields[key] != "" {
			continue
		}
		switch key {
		case "title":
			if v := og.Get("og:title"); v != "" {
				rec.Fields["title"] = v
			}
		case "description":
			if v := og.Get("og:description"); v != "" {
				rec.Fields["description"] = v
			}
		case "image":
			if imgs := og.Group("image"); len(imgs) > 0 {
				if v := imgs[0]["url"]; v != "" {
					rec.Fields["image"] = v
				}
			}
		case "url":
			if v := og.Get("og:url"); v != "" {
				rec.Fields["url"] = v
			}
		}
	}

	return rec
}
