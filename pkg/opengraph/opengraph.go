// SPDX-License-Identifier: AGPL-3.0-only

// Package opengraph extracts Facebook's Open Graph protocol
// (<meta property="og:...">, plus the article/book/profile/music/video/fb
// namespaces) described in spec.md §4.2.
//
// Grounded on the retrieval pack's immanent-tech-go-syndication opengraph
// package: that package scans <meta> elements and dispatches on the
// property name into struct fields. Its "scan and dispatch" shape is kept,
// but generalized from a single flat struct (which can't represent a
// repeated og:image) into the nested-subrecord-list grouping spec.md §4.2
// requires.
package opengraph

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/metaharvest/metaharvest/internal/domutil"
	"github.com/metaharvest/metaharvest/internal/resolve"
)

// SubRecord is a nested Open Graph object, e.g. one entry of the "image"
// group: {"url": "...", "width": "100"}.
type SubRecord map[string]string

// Record is the extracted Open Graph document: flat scalar fields plus
// named groups of SubRecord (image, video, audio, ...).
type Record struct {
	Fields map[string]string
	Groups map[string][]SubRecord
}

// Get returns a scalar field value, or "" if absent.
func (r Record) Get(name string) string {
	return r.Fields[name]
}

// Group returns a named group's subrecords (nil if the group never
// appeared).
func (r Record) Group(name string) []SubRecord {
	return r.Groups[name]
}

var recognizedNamespaces = []string{"og", "article", "book", "profile", "music", "video", "fb"}

// groupSpec describes a "base property" that opens a new subrecord, per
// spec.md §4.2's grouping rule.
type groupSpec struct {
	path    string // colon-joined path after the namespace, e.g. "image"
	baseKey string // the key the bare property's value is stored under
	isURL   bool   // whether baseKey (and "url"/"secure_url" qualifiers) get resolved
}

var groupsByNamespace = map[string][]groupSpec{
	"og": {
		{path: "image", baseKey: "url", isURL: true},
		{path: "video", baseKey: "url", isURL: true},
		{path: "audio", baseKey: "url", isURL: true},
		{path: "locale:alternate", baseKey: "value"},
	},
	"article": {
		{path: "tag", baseKey: "value"},
		{path: "author", baseKey: "url", isURL: true},
	},
	"music": {
		{path: "album", baseKey: "url", isURL: true},
		{path: "song", baseKey: "url", isURL: true},
	},
	"video": {
		{path: "actor", baseKey: "url", isURL: true},
		{path: "director", baseKey: "url", isURL: true},
		{path: "writer", baseKey: "url", isURL: true},
		{path: "tag", baseKey: "value"},
	},
}

// urlScalarFields are flat (non-grouped) fields whose value is resolved
// against the base URL.
var urlScalarFields = map[string]bool{
	"og:url": true,
}

// Parse extracts the Open Graph document from doc.
func Parse(doc *html.Node, baseURL string) Record {
	rec := Record{Fields: map[string]string{}, Groups: map[string][]SubRecord{}}
	openGroup := map[string]int{} // namespace:path -> index of last-opened subrecord in Groups[...]

	for n := range domutil.Elements(doc) {
		if n.Data != "meta" {
			continue
		}
		property := firstNonEmpty(domutil.Attr(n, "property"), domutil.Attr(n, "name"))
		property = strings.ToLower(strings.TrimSpace(property))
		content := strings.TrimSpace(domutil.Attr(n, "content"))
		if property == "" || content == "" {
			continue
		}

		ns, rest, ok := splitNamespace(property)
		if !ok {
			continue
		}

		spec, qualifier, isGroup := matchGroup(ns, rest)
		switch {
		case isGroup && qualifier == "":
			// Bare base property: open a new subrecord.
			val := content
			if spec.isURL {
				val = resolve.URL(baseURL, content)
			}
			sub := SubRecord{spec.baseKey: val}
			key := ns + ":" + spec.path
			rec.Groups[key] = append(rec.Groups[key], sub)
			openGroup[key] = len(rec.Groups[key]) - 1

		case isGroup && qualifier != "":
			key := ns + ":" + spec.path
			idx, open := openGroup[key]
			if !open || idx >= len(rec.Groups[key]) {
				// No subrecord open yet: be lenient and start one.
				rec.Groups[key] = append(rec.Groups[key], SubRecord{})
				idx = len(rec.Groups[key]) - 1
				openGroup[key] = idx
			}
			val := content
			if spec.isURL && (qualifier == "url" || qualifier == "secure_url") {
				val = resolve.URL(baseURL, content)
			}
			rec.Groups[key][idx][qualifier] = val

		default:
			// Flat scalar field; first occurrence wins.
			full := ns + ":" + rest
			if _, exists := rec.Fields[full]; exists {
				continue
			}
			val := content
			if urlScalarFields[full] {
				val = resolve.URL(baseURL, content)
			}
			rec.Fields[full] = val
		}
	}

	// Expose groups under their bare name too (e.g. rec.Groups["image"])
	// alongside the namespaced key, matching spec.md's `opengraph.image`
	// examples.
	for key, subs := range rec.Groups {
		if _, namespace, ok := cutOnce(key, ":"); ok && namespace != "" {
			if key == "og:"+namespace {
				rec.Groups[namespace] = subs
			}
		}
	}

	return rec
}

func splitNamespace(property string) (ns, rest string, ok bool) {
	ns, rest, found := cutOnce(property, ":")
	if !found {
		return "", "", false
	}
	for _, n := range recognizedNamespaces {
		if ns == n {
			return ns, rest, true
		}
	}
	return "", "", false
}

// matchGroup checks whether rest (the property path after its namespace)
// is, or extends, one of the namespace's group base paths.
func matchGroup(ns, rest string) (spec groupSpec, qualifier string, ok bool) {
	for _, g := range groupsByNamespace[ns] {
		if rest == g.path {
			return g, "", true
		}
		if strings.HasPrefix(rest, g.path+":") {
			return g, rest[len(g.path)+1:], true
		}
	}
	return groupSpec{}, "", false
}

func cutOnce(s, sep string) (before, after string, found bool) {
	idx := strings.Index(s, sep)
	if idx < 0 {
		return s, "", false
	}
	return s[:idx], s[idx+len(sep):], true
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
