// SPDX-License-Identifier: AGPL-3.0-only

package meta_test

import (
	"strings"
	"testing"

	"golang.org/x/net/html"

	"github.com/stretchr/testify/require"

	"github.com/metaharvest/metaharvest/pkg/meta"
)

func parse(t *testing.T, src, baseURL string) meta.Record {
	t.Helper()
	root, err := html.Parse(strings.NewReader(src))
	require.NoError(t, err)
	return meta.Parse(root, baseURL)
}

func TestKeywordsSplit(t *testing.T) {
	rec := parse(t, `<meta name="keywords" content="a, b ,c,, d">`, "")
	kw, ok := rec["keywords"].([]string)
	require.True(t, ok)
	require.Equal(t, []string{"a", "b", "c", "d"}, kw)
}

func TestCanonicalResolved(t *testing.T) {
	rec := parse(t, `<link rel="canonical" href="/p/1">`, "https://e.com/")
	require.Equal(t, "https://e.com/p/1", rec.GetString("canonical"))
}

func TestTitleAndDescription(t *testing.T) {
	rec := parse(t, `<title>  Hello  World </title><meta name="description" content="a page">`, "")
	require.Equal(t, "Hello World", rec.GetString("title"))
	require.Equal(t, "a page", rec.GetString("description"))
}

func TestVerificationToken(t *testing.T) {
	rec := parse(t, `<meta name="google-site-verification" content="abc123">`, "")
	require.Equal(t, "abc123", rec.GetString("google_site_verification"))
}

func TestIconsAndFeeds(t *testing.T) {
	rec := parse(t, `
		<link rel="icon" href="/favicon.ico" sizes="16x16">
		<link rel="apple-touch-icon" href="/apple.png">
		<link rel="alternate" type="application/rss+xml" href="/feed.rss" title="Feed">
		<link rel="alternate" hreflang="fr" href="/fr">
	`, "https://e.com/")

	icons, ok := rec["icons"].([]meta.Icon)
	require.True(t, ok)
	require.Len(t, icons, 2)
	require.Equal(t, "https://e.com/favicon.ico", icons[0].Href)

	feeds, ok := rec["feeds"].([]meta.Feed)
	require.True(t, ok)
	require.Len(t, feeds, 1)
	require.Equal(t, "Feed", feeds[0].Title)

	hreflangs, ok := rec["hreflang"].([]meta.HreflangLink)
	require.True(t, ok)
	require.Len(t, hreflangs, 1)
	require.Equal(t, "fr", hreflangs[0].Hreflang)
}

func TestUnknownMetaKeyPassesThrough(t *testing.T) {
	rec := parse(t, `<meta name="geo.position" content="48.85;2.35">`, "")
	require.Equal(t, "48.85;2.35", rec.GetString("geo.position"))
}

func TestOpenGraphNamesNotDuplicated(t *testing.T) {
	rec := parse(t, `<meta property="og:title" content="T">`, "")
	_, ok := rec["og:title"]
	require.False(t, ok)
}

func TestEmptyDocument(t *testing.T) {
	rec := parse(t, ``, "")
	require.Empty(t, rec)
}
