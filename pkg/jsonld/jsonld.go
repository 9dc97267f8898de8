// SPDX-License-Identifier: AGPL-3.0-only

// Package jsonld extracts <script type="application/ld+json"> blocks as
// described in spec.md §4.7: a tolerant parse that drops a malformed block
// rather than failing, @graph flattening, array flattening, and
// order-preserving objects (both across script blocks/@graph items, and
// within a single object's own keys).
//
// encoding/json's map[string]interface{} does not preserve source key
// order, so decoding is done by hand, token by token, against
// github.com/wk8/go-ordered-map/v2 (sourced from the ternarybob-quaero
// go.mod in the retrieval pack).
package jsonld

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/metaharvest/metaharvest/internal/domutil"
)

// Object is a decoded JSON-LD value. Object values are represented as
// *orderedmap.OrderedMap[string, any] (preserving source key order),
// arrays as []any, numbers as json.Number (preserving lexical form), and
// everything else as string, bool, or nil.
type Object = any

const ldType = "application/ld+json"

// Parse scans doc for every application/ld+json script block, in document
// order, and returns the emitted objects in source order (with @graph
// items interleaved in the order they appear).
func Parse(doc *html.Node) []Object {
	var out []Object

	for n := range domutil.Elements(doc) {
		if n.Data != "script" {
			continue
		}
		typ := stripParams(strings.ToLower(strings.TrimSpace(domutil.Attr(n, "type"))))
		if typ != ldType {
			continue
		}

		text := stripCDATA(scriptText(n))
		if text == "" {
			continue
		}

		val, err := Decode(text)
		if err != nil {
			// Malformed JSON drops only this block (spec.md §4.7/§7).
			continue
		}

		out = append(out, dispatch(val)...)
	}

	return out
}

// dispatch implements the top-level emission rule: a {"@graph": [...]}
// object yields one entry per graph element, an array yields one entry per
// element, anything else is emitted as-is.
func dispatch(val any) []Object {
	if om, ok := val.(*orderedmap.OrderedMap[string, any]); ok {
		if graph, present := om.Get("@graph"); present {
			if arr, ok := graph.([]any); ok {
				out := make([]Object, len(arr))
				copy(out, arr)
				return out
			}
		}
		return []Object{om}
	}
	if arr, ok := val.([]any); ok {
		out := make([]Object, len(arr))
		copy(out, arr)
		return out
	}
	return []Object{val}
}

func scriptText(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

func stripCDATA(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "<![CDATA[")
	s = strings.TrimSuffix(s, "]]>")
	return strings.TrimSpace(s)
}

func stripParams(s string) string {
	if i := strings.Index(s, ";"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// Decode parses a single JSON text strictly, except that it never panics
// and reports an error for any malformed input instead of returning a
// partial value.
func Decode(text string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	val, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}

	// Reject trailing garbage after the single top-level value.
	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("jsonld: trailing data after top-level value")
		}
		return nil, err
	}

	return val, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeFromToken(dec, tok)
}

func decodeFromToken(dec *json.Decoder, tok json.Token) (any, error) {
	delim, isDelim := tok.(json.Delim)
	if !isDelim {
		// string, json.Number, bool, or nil
		return tok, nil
	}

	switch delim {
	case '{':
		om := orderedmap.New[string, any]()
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("jsonld: expected object key, got %v", keyTok)
			}
			val, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			om.Set(key, val)
		}
		if _, err := dec.Token(); err != nil { // consume '}'
			return nil, err
		}
		return om, nil

	case '[':
		arr := []any{}
		for dec.More() {
			val, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, val)
		}
		if _, err := dec.Token(); err != nil { // consume ']'
			return nil, err
		}
		return arr, nil

	default:
		return nil, fmt.Errorf("jsonld: unexpected delimiter %v", delim)
	}
}

// Get looks up a key on an Object that is a JSON object, returning ok=false
// for anything else (arrays, scalars, or an absent key).
func Get(obj Object, key string) (any, bool) {
	om, ok := obj.(*orderedmap.OrderedMap[string, any])
	if !ok {
		return nil, false
	}
	return om.Get(key)
}

// Keys returns an Object's own keys in source order, or nil if obj isn't a
// JSON object.
func Keys(obj Object) []string {
	om, ok := obj.(*orderedmap.OrderedMap[string, any])
	if !ok {
		return nil
	}
	keys := make([]string, 0, om.Len())
	for p := om.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	return keys
}

// String returns a string-valued key, matching the JSON-LD convention of
// plain-string properties (spec.md §4.7 keeps nested values as JSON rather
// than recursively flattening them).
func String(obj Object, key string) (string, bool) {
	v, ok := Get(obj, key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
