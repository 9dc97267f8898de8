// SPDX-License-Identifier: AGPL-3.0-only

package oembed_test

import (
	"strings"
	"testing"

	"golang.org/x/net/html"

	"github.com/stretchr/testify/require"

	"github.com/metaharvest/metaharvest/pkg/oembed"
)

func TestJSONAndXMLLinks(t *testing.T) {
	root, err := html.Parse(strings.NewReader(`
		<link rel="alternate" type="application/json+oembed" href="/oembed.json" title="JSON">
		<link rel="alternate" type="text/xml+oembed" href="/oembed.xml">
	`))
	require.NoError(t, err)

	rec := oembed.Parse(root, "https://e.com/")
	require.NotNil(t, rec.JSON)
	require.Equal(t, "https://e.com/oembed.json", rec.JSON.Href)
	require.Equal(t, "JSON", rec.JSON.Title)

	require.NotNil(t, rec.XML)
	require.Equal(t, "https://e.com/oembed.xml", rec.XML.Href)
}

func TestNoDiscoveryLinks(t *testing.T) {
	root, err := html.Parse(strings.NewReader(`<link rel="stylesheet" href="/s.css">`))
	require.NoError(t, err)

	rec := oembed.Parse(root, "")
	require.Nil(t, rec.JSON)
	require.Nil(t, rec.XML)
}

func TestFirstOccurrenceWins(t *testing.T) {
	root, err := html.Parse(strings.NewReader(`
		<link rel="alternate" type="application/json+oembed" href="/first.json">
		<link rel="alternate" type="application/json+oembed" href="/second.json">
	`))
	require.NoError(t, err)

	rec := oembed.Parse(root, "")
	require.Equal(t, "/first.json", rec.JSON.Href)
}
