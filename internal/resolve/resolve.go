// SPDX-License-Identifier: AGPL-3.0-only

// Package resolve turns a possibly-relative reference into an absolute URL
// against an optional base, grounded on the resolveURL helper repeated
// across the NICOLASGON-web-audit-tools checkers (internal/canonical,
// internal/crawler, internal/metacheck).
//
// Unlike those checkers (which drop anything they can't make into an
// absolute http(s) URL), URL here is a pure function that hands back the
// reference unchanged whenever resolution isn't possible: an absent or
// unparsable base, or an unparsable reference, per spec §3's invariant that
// resolution "returns the reference unchanged when resolution fails."
package resolve

import (
	"net/url"
	"strings"
)

// URL resolves ref against base. If base is empty, invalid, ref is empty,
// or ref fails to parse, ref is returned unchanged (trimmed).
func URL(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || base == "" {
		return ref
	}

	baseURL, err := url.Parse(base)
	if err != nil || !baseURL.IsAbs() {
		return ref
	}

	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}

	return baseURL.ResolveReference(refURL).String()
}

// Valid reports whether a base URL string is usable for resolution, i.e.
// parses and is absolute.
func Valid(base string) bool {
	u, err := url.Parse(base)
	return err == nil && u.IsAbs()
}
