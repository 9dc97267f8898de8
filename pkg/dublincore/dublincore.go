// SPDX-License-Identifier: AGPL-3.0-only

// Package dublincore extracts Dublin Core metadata
// (<meta name="DC.*"|"dc:*"|"DCTERMS.*"|"dcterms:*">) described in
// spec.md §4.4.
package dublincore

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/metaharvest/metaharvest/internal/domutil"
)

// Record maps a lower-cased Dublin Core element name to its value: a plain
// string for single-occurrence elements, or a []string for the
// multi-valued ones (contributor, creator, subject, language, rights).
type Record map[string]any

// GetString returns a scalar field, or "" if absent or list-valued.
func (r Record) GetString(key string) string {
	v, _ := r[key].(string)
	return v
}

var prefixes = []string{"dc.", "dc:", "dcterms.", "dcterms:"}

var listValued = map[string]bool{
	"contributor": true,
	"creator":     true,
	"subject":     true,
	"language":    true,
	"rights":      true,
}

// Parse extracts the Dublin Core document from doc.
func Parse(doc *html.Node) Record {
	rec := Record{}

	for n := range domutil.Elements(doc) {
		if n.Data != "meta" {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(domutil.Attr(n, "name")))
		content := strings.TrimSpace(domutil.Attr(n, "content"))
		if content == "" {
			continue
		}

		suffix, ok := stripPrefix(name)
		if !ok || suffix == "" {
			continue
		}

		if listValued[suffix] {
			list, _ := rec[suffix].([]string)
			rec[suffix] = append(list, content)
			continue
		}

		if _, exists := rec[suffix]; !exists {
			rec[suffix] = content
		}
	}

	return rec
}

func stripPrefix(name string) (string, bool) {
	for _, p := range prefixes {
		if strings.HasPrefix(name, p) {
			return name[len(p):], true
		}
	}
	return "", false
}
