// SPDX-License-Identifier: AGPL-3.0-only

package rellinks_test

import (
	"strings"
	"testing"

	"golang.org/x/net/html"

	"github.com/stretchr/testify/require"

	"github.com/metaharvest/metaharvest/pkg/rellinks"
)

func TestGroupingAndCaseInsensitiveTokens(t *testing.T) {
	root, err := html.Parse(strings.NewReader(`
		<link rel="Next" href="/page/2">
		<a rel="NOFOLLOW external" href="https://other.example/">out</a>
	`))
	require.NoError(t, err)

	rec := rellinks.Parse(root, "https://e.com/")
	require.Len(t, rec["next"], 1)
	require.Equal(t, "https://e.com/page/2", rec["next"][0].Href)

	require.Len(t, rec["nofollow"], 1)
	require.Len(t, rec["external"], 1)
	require.Equal(t, "https://other.example/", rec["external"][0].Href)
}

func TestMissingHrefIgnored(t *testing.T) {
	root, err := html.Parse(strings.NewReader(`<link rel="stylesheet">`))
	require.NoError(t, err)

	rec := rellinks.Parse(root, "")
	require.Empty(t, rec)
}
