// SPDX-License-Identifier: AGPL-3.0-only

package opengraph_test

import (
	"strings"
	"testing"

	"golang.org/x/net/html"

	"github.com/stretchr/testify/require"

	"github.com/metaharvest/metaharvest/pkg/opengraph"
)

func parse(t *testing.T, src, baseURL string) opengraph.Record {
	t.Helper()
	root, err := html.Parse(strings.NewReader(src))
	require.NoError(t, err)
	return opengraph.Parse(root, baseURL)
}

func TestImageNesting(t *testing.T) {
	rec := parse(t, `
		<meta property="og:image" content="a.jpg">
		<meta property="og:image:width" content="100">
		<meta property="og:image" content="b.jpg">
	`, "https://e.com/")

	images := rec.Group("image")
	require.Len(t, images, 2)
	require.Equal(t, opengraph.SubRecord{"url": "https://e.com/a.jpg", "width": "100"}, images[0])
	require.Equal(t, opengraph.SubRecord{"url": "https://e.com/b.jpg"}, images[1])
}

func TestScalarFirstWins(t *testing.T) {
	rec := parse(t, `
		<meta property="og:title" content="First">
		<meta property="og:title" content="Second">
	`, "")
	require.Equal(t, "First", rec.Get("og:title"))
}

func TestURLScalarResolved(t *testing.T) {
	rec := parse(t, `<meta property="og:url" content="/p/1">`, "https://e.com/")
	require.Equal(t, "https://e.com/p/1", rec.Get("og:url"))
}

func TestArticleAuthorGroup(t *testing.T) {
	rec := parse(t, `
		<meta property="article:author" content="/alice">
		<meta property="article:author" content="/bob">
	`, "https://e.com/")
	authors := rec.Group("article:author")
	require.Len(t, authors, 2)
	require.Equal(t, "https://e.com/alice", authors[0]["url"])
	require.Equal(t, "https://e.com/bob", authors[1]["url"])
}

func TestUnknownNamespaceIgnored(t *testing.T) {
	rec := parse(t, `<meta property="unknown:thing" content="x">`, "")
	require.Empty(t, rec.Fields)
	require.Empty(t, rec.Groups)
}
