// SPDX-License-Identifier: AGPL-3.0-only

package microformats_test

import (
	"strings"
	"testing"

	"golang.org/x/net/html"

	"github.com/stretchr/testify/require"

	"github.com/metaharvest/metaharvest/pkg/microformats"
)

func parse(t *testing.T, src, baseURL string) *microformats.Document {
	t.Helper()
	root, err := html.Parse(strings.NewReader(src))
	require.NoError(t, err)
	return microformats.Parse(root, baseURL)
}

func TestImpliedNameAndURL(t *testing.T) {
	doc := parse(t, `<a class="h-card" href="/me">Jane</a>`, "")
	require.Len(t, doc.Items, 1)
	item := doc.Items[0]
	require.Equal(t, []string{"h-card"}, item.Types)
	require.Equal(t, []any{"Jane"}, item.Properties["name"])
	require.Equal(t, []any{"/me"}, item.Properties["url"])
}

func TestImpliedURLResolved(t *testing.T) {
	doc := parse(t, `<a class="h-card" href="/me">Jane</a>`, "https://e.com/")
	require.Equal(t, []any{"https://e.com/me"}, doc.Items[0].Properties["url"])
}

func TestValueClassDatetimeComposition(t *testing.T) {
	doc := parse(t, `<div class="h-event"><span class="dt-start"><span class="value">2024-06-15</span>T<span class="value">10:00</span></span></div>`, "")
	require.Len(t, doc.Items, 1)
	require.Equal(t, []any{"2024-06-15T10:00"}, doc.Items[0].Properties["start"])
}

func TestDtEndInheritsDateFromDtStart(t *testing.T) {
	doc := parse(t, `
		<div class="h-event">
			<time class="dt-start" datetime="2024-06-15T09:00">June 15, 9am</time>
			<time class="dt-end" datetime="17:00">5pm</time>
		</div>
	`, "")
	require.Equal(t, []any{"2024-06-15T09:00"}, doc.Items[0].Properties["start"])
	require.Equal(t, []any{"2024-06-15T17:00"}, doc.Items[0].Properties["end"])
}

func TestMaxDepthCapsPropertyNesting(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<div class="h-entry">`)
	depth := 300
	for i := 0; i < depth; i++ {
		b.WriteString(`<span class="p-name">`)
	}
	b.WriteString("leaf")
	for i := 0; i < depth; i++ {
		b.WriteString("</span>")
	}
	b.WriteString("</div>")

	doc := parse(t, b.String(), "")
	require.Len(t, doc.Items, 1)
}

func TestExplicitNameBeatsImplied(t *testing.T) {
	doc := parse(t, `<div class="h-card"><span class="p-name">Explicit</span></div>`, "")
	require.Equal(t, []any{"Explicit"}, doc.Items[0].Properties["name"])
}

func TestNestedRootAsPropertyAndChild(t *testing.T) {
	doc := parse(t, `
		<div class="h-entry">
			<span class="p-author h-card">
				<span class="p-name">Author Name</span>
			</span>
		</div>
	`, "")

	entry := doc.Items[0]
	require.Len(t, entry.Children, 1)

	authorAsProp, ok := entry.Properties["author"][0].(*microformats.Item)
	require.True(t, ok)
	require.Equal(t, entry.Children[0], authorAsProp)
	require.Equal(t, []any{"Author Name"}, authorAsProp.Properties["name"])
}

func TestEmbeddedHTMLProperty(t *testing.T) {
	doc := parse(t, `<div class="h-entry"><div class="e-content">Hello <b>world</b></div></div>`, "")
	val := doc.Items[0].Properties["content"][0].(microformats.EmbeddedHTML)
	require.Equal(t, "Hello world", val.Value)
	require.Contains(t, val.HTML, "<b>world</b>")
}

func TestRelsAndRelURLs(t *testing.T) {
	doc := parse(t, `
		<a rel="me" href="https://twitter.com/x">Twitter</a>
		<a rel="ME" href="https://twitter.com/x">dup</a>
	`, "")
	require.Equal(t, []string{"https://twitter.com/x"}, doc.Rels["me"])
	require.Contains(t, doc.RelURLs, "https://twitter.com/x")
}

func TestDeepNestingWithoutRootsIsCheap(t *testing.T) {
	var b strings.Builder
	depth := 500
	for i := 0; i < depth; i++ {
		b.WriteString("<div>")
	}
	b.WriteString("<span class=\"h-card\">X</span>")
	for i := 0; i < depth; i++ {
		b.WriteString("</div>")
	}

	doc := parse(t, b.String(), "")
	require.Len(t, doc.Items, 1)
}

func TestByTypeFindsNestedItems(t *testing.T) {
	doc := parse(t, `
		<div class="h-feed">
			<div class="h-entry"><span class="p-name">Entry 1</span></div>
			<div class="h-entry"><span class="p-name">Entry 2</span></div>
		</div>
	`, "")

	entries := microformats.ByType(doc, "h-entry")
	require.Len(t, entries, 2)
}
