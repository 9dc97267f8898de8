// SPDX-License-Identifier: AGPL-3.0-only

package dublincore_test

import (
	"strings"
	"testing"

	"golang.org/x/net/html"

	"github.com/stretchr/testify/require"

	"github.com/metaharvest/metaharvest/pkg/dublincore"
)

func TestScalarAndListValued(t *testing.T) {
	root, err := html.Parse(strings.NewReader(`
		<meta name="DC.title" content="A title">
		<meta name="dc.creator" content="Alice">
		<meta name="DCTERMS.creator" content="Bob">
	`))
	require.NoError(t, err)

	rec := dublincore.Parse(root)
	require.Equal(t, "A title", rec.GetString("title"))

	creators, ok := rec["creator"].([]string)
	require.True(t, ok)
	require.Equal(t, []string{"Alice", "Bob"}, creators)
}

func TestScalarFirstOccurrenceWins(t *testing.T) {
	root, err := html.Parse(strings.NewReader(`
		<meta name="dc.publisher" content="First">
		<meta name="dc.publisher" content="Second">
	`))
	require.NoError(t, err)

	rec := dublincore.Parse(root)
	require.Equal(t, "First", rec.GetString("publisher"))
}

func TestNonDublinCoreMetaIgnored(t *testing.T) {
	root, err := html.Parse(strings.NewReader(`<meta name="description" content="x">`))
	require.NoError(t, err)

	rec := dublincore.Parse(root)
	require.Empty(t, rec)
}
