// SPDX-License-Identifier: AGPL-3.0-only

package jsonld_test

import (
	"strings"
	"testing"

	"golang.org/x/net/html"

	"github.com/stretchr/testify/require"

	"github.com/metaharvest/metaharvest/pkg/jsonld"
)

func parse(t *testing.T, src string) []jsonld.Object {
	t.Helper()
	root, err := html.Parse(strings.NewReader(src))
	require.NoError(t, err)
	return jsonld.Parse(root)
}

func TestGraphFlattening(t *testing.T) {
	objs := parse(t, `<script type="application/ld+json">
		{"@graph":[{"@type":"BreadcrumbList"},{"@type":"Product","name":"P"}]}
	</script>`)

	require.Len(t, objs, 2)
	name, ok := jsonld.String(objs[1], "name")
	require.True(t, ok)
	require.Equal(t, "P", name)
}

func TestBrokenJSONDropped(t *testing.T) {
	objs := parse(t, `<script type="application/ld+json">{"a":1,}</script>`)
	require.Empty(t, objs)
}

func TestOrderPreservedAcrossBlocksAndKeys(t *testing.T) {
	objs := parse(t, `
		<script type="application/ld+json">{"@type":"First"}</script>
		<script type="application/ld+json">{"z":1,"a":2,"m":3}</script>
	`)
	require.Len(t, objs, 2)

	typ, ok := jsonld.String(objs[0], "@type")
	require.True(t, ok)
	require.Equal(t, "First", typ)

	require.Equal(t, []string{"z", "a", "m"}, jsonld.Keys(objs[1]))
}

func TestTopLevelArrayFlattened(t *testing.T) {
	objs := parse(t, `<script type="application/ld+json">[{"a":1},{"b":2}]</script>`)
	require.Len(t, objs, 2)
}

func TestTypeParameterIgnored(t *testing.T) {
	objs := parse(t, `<script type="application/ld+json; charset=utf-8">{"a":1}</script>`)
	require.Len(t, objs, 1)
}

func TestCDATAStripped(t *testing.T) {
	objs := parse(t, `<script type="application/ld+json">
		<![CDATA[{"a":1}]]>
	</script>`)
	require.Len(t, objs, 1)
	v, ok := jsonld.Get(objs[0], "a")
	require.True(t, ok)
	require.Equal(t, "1", v.(interface{ String() string }).String())
}

func TestNumberPreservesLexicalForm(t *testing.T) {
	val, err := jsonld.Decode(`{"price": 9.50}`)
	require.NoError(t, err)
	v, ok := jsonld.Get(val, "price")
	require.True(t, ok)
	require.Equal(t, "9.50", v.(interface{ String() string }).String())
}

func TestTrailingGarbageRejected(t *testing.T) {
	_, err := jsonld.Decode(`{"a":1} garbage`)
	require.Error(t, err)
}
