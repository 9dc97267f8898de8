// SPDX-License-Identifier: AGPL-3.0-only

package metaharvest

import (
	"github.com/metaharvest/metaharvest/pkg/dublincore"
	"github.com/metaharvest/metaharvest/pkg/jsonld"
	"github.com/metaharvest/metaharvest/pkg/meta"
	"github.com/metaharvest/metaharvest/pkg/microdata"
	"github.com/metaharvest/metaharvest/pkg/microformats"
	"github.com/metaharvest/metaharvest/pkg/oembed"
	"github.com/metaharvest/metaharvest/pkg/opengraph"
	"github.com/metaharvest/metaharvest/pkg/rellinks"
	"github.com/metaharvest/metaharvest/pkg/twitter"
)

// The package-level Extract* functions are one-shot convenience wrappers
// around Parse for callers who only need a single extractor and don't
// want to hold onto a *Document. Each takes (htmlSrc, baseURL) and returns
// an error for symmetry with a constructor shaped like New(src) (*X, error):
// Parse itself cannot fail on a string source, so these never return a
// non-nil error today.

// ExtractMeta runs the classic meta/link extractor.
func ExtractMeta(htmlSrc, baseURL string) (meta.Record, error) {
	return Parse(htmlSrc, baseURL).Meta(), nil
}

// ExtractOpenGraph runs the Open Graph extractor.
func ExtractOpenGraph(htmlSrc, baseURL string) (opengraph.Record, error) {
	return Parse(htmlSrc, baseURL).OpenGraph(), nil
}

// ExtractTwitter runs the Twitter Card extractor.
func ExtractTwitter(htmlSrc, baseURL string) (twitter.Record, error) {
	return Parse(htmlSrc, baseURL).Twitter(), nil
}

// ExtractTwitterWithFallback runs the Twitter Card extractor with the Open
// Graph scalar fallback applied.
func ExtractTwitterWithFallback(htmlSrc, baseURL string) (twitter.Record, error) {
	return Parse(htmlSrc, baseURL).TwitterWithFallback(), nil
}

// ExtractDublinCore runs the Dublin Core extractor.
func ExtractDublinCore(htmlSrc, baseURL string) (dublincore.Record, error) {
	return Parse(htmlSrc, baseURL).DublinCore(), nil
}

// ExtractOEmbed runs the oEmbed discovery-link extractor.
func ExtractOEmbed(htmlSrc, baseURL string) (oembed.Record, error) {
	return Parse(htmlSrc, baseURL).OEmbed(), nil
}

// ExtractRelLinks runs the rel-token-grouped link extractor.
func ExtractRelLinks(htmlSrc, baseURL string) (rellinks.Record, error) {
	return Parse(htmlSrc, baseURL).RelLinks(), nil
}

// ExtractJSONLD runs the JSON-LD extractor.
func ExtractJSONLD(htmlSrc, baseURL string) ([]jsonld.Object, error) {
	return Parse(htmlSrc, baseURL).JSONLD(), nil
}

// ExtractMicrodata runs the HTML5 microdata extractor.
func ExtractMicrodata(htmlSrc, baseURL string) ([]*microdata.Item, error) {
	return Parse(htmlSrc, baseURL).Microdata(), nil
}

// ExtractMicroformats runs the full microformats2 extractor.
func ExtractMicroformats(htmlSrc, baseURL string) (*microformats.Document, error) {
	return Parse(htmlSrc, baseURL).Microformats(), nil
}

// ExtractHCard returns every h-card item in htmlSrc.
func ExtractHCard(htmlSrc, baseURL string) ([]*microformats.Item, error) {
	return Parse(htmlSrc, baseURL).HCard(), nil
}

// ExtractHEntry returns every h-entry item in htmlSrc.
func ExtractHEntry(htmlSrc, baseURL string) ([]*microformats.Item, error) {
	return Parse(htmlSrc, baseURL).HEntry(), nil
}

// ExtractHEvent returns every h-event item in htmlSrc.
func ExtractHEvent(htmlSrc, baseURL string) ([]*microformats.Item, error) {
	return Parse(htmlSrc, baseURL).HEvent(), nil
}

// ExtractHReview returns every h-review item in htmlSrc.
func ExtractHReview(htmlSrc, baseURL string) ([]*microformats.Item, error) {
	return Parse(htmlSrc, baseURL).HReview(), nil
}

// ExtractHRecipe returns every h-recipe item in htmlSrc.
func ExtractHRecipe(htmlSrc, baseURL string) ([]*microformats.Item, error) {
	return Parse(htmlSrc, baseURL).HRecipe(), nil
}

// ExtractHProduct returns every h-product item in htmlSrc.
func ExtractHProduct(htmlSrc, baseURL string) ([]*microformats.Item, error) {
	return Parse(htmlSrc, baseURL).HProduct(), nil
}

// ExtractHFeed returns every h-feed item in htmlSrc.
func ExtractHFeed(htmlSrc, baseURL string) ([]*microformats.Item, error) {
	return Parse(htmlSrc, baseURL).HFeed(), nil
}

// ExtractHAdr returns every h-adr item in htmlSrc.
func ExtractHAdr(htmlSrc, baseURL string) ([]*microformats.Item, error) {
	return Parse(htmlSrc, baseURL).HAdr(), nil
}

// ExtractHGeo returns every h-geo item in htmlSrc.
func ExtractHGeo(htmlSrc, baseURL string) ([]*microformats.Item, error) {
	return Parse(htmlSrc, baseURL).HGeo(), nil
}

// ExtractAll runs every extractor and returns the fixed-key aggregate.
func ExtractAll(htmlSrc, baseURL string) (Result, error) {
	return Parse(htmlSrc, baseURL).ExtractAll(), nil
}
