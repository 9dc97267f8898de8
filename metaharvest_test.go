// SPDX-License-Identifier: AGPL-3.0-only

package metaharvest_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	metaharvest "github.com/metaharvest/metaharvest"
)

func TestExtractAllFixedKeys(t *testing.T) {
	res, err := metaharvest.ExtractAll(`<html><body>hi</body></html>`, "")
	require.NoError(t, err)

	for _, key := range []string{
		"meta", "opengraph", "twitter", "dublin_core", "oembed",
		"rel_links", "jsonld", "microdata", "microformats",
	} {
		require.NotPanics(t, func() { _ = res.Get(key) }, key)
	}
	require.Nil(t, res.Get("nonexistent"))
}

func TestExtractAllOnEmptyAndNonHTMLInput(t *testing.T) {
	for _, src := range []string{"", "   ", "plain text", `{"a":1}`, `<?xml version="1.0"?><root/>`} {
		res, err := metaharvest.ExtractAll(src, "")
		require.NoError(t, err)
		require.Empty(t, res.JSONLD)
		require.Empty(t, res.Microdata)
	}
}

func TestExtractAllInvalidBaseURLTreatedAsAbsent(t *testing.T) {
	res, err := metaharvest.ExtractAll(`<link rel="canonical" href="/p">`, "::not a url::")
	require.NoError(t, err)
	require.Equal(t, "/p", res.Meta.GetString("canonical"))
}

func TestExtractAllPartialFailureIsolation(t *testing.T) {
	// A broken JSON-LD block must not prevent other extractors from running.
	res, err := metaharvest.ExtractAll(`
		<meta property="og:title" content="T">
		<script type="application/ld+json">{"a":1,}</script>
	`, "")
	require.NoError(t, err)
	require.Empty(t, res.JSONLD)
	require.Equal(t, "T", res.OpenGraph.Get("og:title"))
}

func TestDocumentReusedAcrossExtractors(t *testing.T) {
	doc := metaharvest.Parse(`
		<title>Hi</title>
		<meta property="og:title" content="T">
		<meta name="twitter:title" content="TW">
	`, "")

	require.Equal(t, "Hi", doc.Meta().GetString("title"))
	require.Equal(t, "T", doc.OpenGraph().Get("og:title"))
	require.Equal(t, "TW", doc.Twitter().Get("title"))
}

func TestHCardConvenienceFunction(t *testing.T) {
	cards, err := metaharvest.ExtractHCard(`<a class="h-card" href="/me">Jane</a>`, "")
	require.NoError(t, err)
	require.Len(t, cards, 1)
	require.Equal(t, []any{"Jane"}, cards[0].Properties["name"])
}
