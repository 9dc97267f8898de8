// SPDX-License-Identifier: AGPL-3.0-only

/*
Package metaharvest extracts structured metadata from an HTML document:
classic meta/link tags, Open Graph, Twitter Cards, Dublin Core, oEmbed
discovery, rel-links, JSON-LD, HTML5 microdata, and the microformats v2
family.

A single tolerant parse (golang.org/x/net/html) builds the DOM once; each
extractor then walks that same read-only tree and projects it into its own
normalized record. Parse never fails: html.Parse only errors on reader I/O
failure, which a string source can't produce.
*/
package metaharvest

import (
	"log/slog"
	"strings"

	"golang.org/x/net/html"

	"github.com/metaharvest/metaharvest/internal/safe"
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

// Document holds one parsed HTML tree, for callers that want to run
// several extractors without re-parsing the source each time.
type Document struct {
	root              *html.Node
	baseURL           string
	logger            *slog.Logger
	microformatsDepth int
	microdataDepth    int
}

// Option configures a Document.
type Option func(*Document)

// WithLogger sets the logger used for the error-isolation boundary around
// ExtractAll. The zero Document uses slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(d *Document) {
		d.logger = logger
	}
}

// WithMaxMicroformatsDepth caps the nesting depth the microformats
// extractor descends into, both for mf2 item nesting and for per-item
// property assembly. Unset, it uses microformats.DefaultMaxDepth.
func WithMaxMicroformatsDepth(n int) Option {
	return func(d *Document) {
		d.microformatsDepth = n
	}
}

// WithMaxMicrodataDepth caps the itemscope nesting depth the microdata
// extractor descends into. Unset, it uses microdata.DefaultMaxDepth.
func WithMaxMicrodataDepth(n int) Option {
	return func(d *Document) {
		d.microdataDepth = n
	}
}

// Parse builds a DOM from htmlSrc and returns a Document ready for
// extraction. baseURL, when non-empty, is used by every extractor that
// resolves relative URLs; an empty or invalid baseURL simply leaves those
// URLs unresolved rather than erroring.
func Parse(htmlSrc string, baseURL string, opts ...Option) *Document {
	root, err := html.Parse(strings.NewReader(htmlSrc))
	if err != nil {
		// Unreachable for a strings.Reader source, but Document.root must
		// never be nil: fall back to an empty document node.
		root = &html.Node{Type: html.DocumentNode}
	}

	d := &Document{
		root:              root,
		baseURL:           baseURL,
		microformatsDepth: microformats.DefaultMaxDepth,
		microdataDepth:    microdata.DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d
}

// Meta runs the classic meta/link extractor.
func (d *Document) Meta() meta.Record { return meta.Parse(d.root, d.baseURL) }

// OpenGraph runs the Open Graph extractor.
func (d *Document) OpenGraph() opengraph.Record { return opengraph.Parse(d.root, d.baseURL) }

// Twitter runs the Twitter Card extractor.
func (d *Document) Twitter() twitter.Record { return twitter.Parse(d.root, d.baseURL) }

// TwitterWithFallback runs the Twitter Card extractor with the Open Graph
// scalar fallback applied.
func (d *Document) TwitterWithFallback() twitter.Record {
	return twitter.WithFallback(d.root, d.baseURL)
}

// DublinCore runs the Dublin Core extractor.
func (d *Document) DublinCore() dublincore.Record { return dublincore.Parse(d.root) }

// OEmbed runs the oEmbed discovery-link extractor.
func (d *Document) OEmbed() oembed.Record { return oembed.Parse(d.root, d.baseURL) }

// RelLinks runs the rel-token-grouped link extractor.
func (d *Document) RelLinks() rellinks.Record { return rellinks.Parse(d.root, d.baseURL) }

// JSONLD runs the JSON-LD extractor.
func (d *Document) JSONLD() []jsonld.Object { return jsonld.Parse(d.root) }

// Microdata runs the HTML5 microdata extractor.
func (d *Document) Microdata() []*microdata.Item {
	return microdata.Parse(d.root, d.baseURL, microdata.WithMaxDepth(d.microdataDepth))
}

// Microformats runs the full microformats2 extractor.
func (d *Document) Microformats() *microformats.Document {
	return microformats.Parse(d.root, d.baseURL, microformats.WithMaxDepth(d.microformatsDepth))
}

// typeHCard and friends name the h-* vocabularies the vocabulary-specific
// accessor methods filter by. They're plain string constants rather than
// an enum: the vocabulary list is open-ended and spec.md names these nine
// only as the ones with dedicated accessors.
const (
	typeHCard    = "h-card"
	typeHEntry   = "h-entry"
	typeHEvent   = "h-event"
	typeHReview  = "h-review"
	typeHRecipe  = "h-recipe"
	typeHProduct = "h-product"
	typeHFeed    = "h-feed"
	typeHAdr     = "h-adr"
	typeHGeo     = "h-geo"
)

// HCard returns every h-card item in the document.
func (d *Document) HCard() []*microformats.Item {
	return microformats.ByType(d.Microformats(), typeHCard)
}

// HEntry returns every h-entry item in the document.
func (d *Document) HEntry() []*microformats.Item {
	return microformats.ByType(d.Microformats(), typeHEntry)
}

// HEvent returns every h-event item in the document.
func (d *Document) HEvent() []*microformats.Item {
	return microformats.ByType(d.Microformats(), typeHEvent)
}

// HReview returns every h-review item in the document.
func (d *Document) HReview() []*microformats.Item {
	return microformats.ByType(d.Microformats(), typeHReview)
}

// HRecipe returns every h-recipe item in the document.
func (d *Document) HRecipe() []*microformats.Item {
	return microformats.ByType(d.Microformats(), typeHRecipe)
}

// HProduct returns every h-product item in the document.
func (d *Document) HProduct() []*microformats.Item {
	return microformats.ByType(d.Microformats(), typeHProduct)
}

// HFeed returns every h-feed item in the document.
func (d *Document) HFeed() []*microformats.Item {
	return microformats.ByType(d.Microformats(), typeHFeed)
}

// HAdr returns every h-adr item in the document.
func (d *Document) HAdr() []*microformats.Item {
	return microformats.ByType(d.Microformats(), typeHAdr)
}

// HGeo returns every h-geo item in the document.
func (d *Document) HGeo() []*microformats.Item {
	return microformats.ByType(d.Microformats(), typeHGeo)
}

// Result is the fixed-key aggregate ExtractAll returns.
type Result struct {
	Meta         meta.Record          `json:"meta"`
	OpenGraph    opengraph.Record     `json:"opengraph"`
	Twitter      twitter.Record       `json:"twitter"`
	DublinCore   dublincore.Record    `json:"dublin_core"`
	OEmbed       oembed.Record        `json:"oembed"`
	RelLinks     rellinks.Record      `json:"rel_links"`
	JSONLD       []jsonld.Object      `json:"jsonld"`
	Microdata    []*microdata.Item    `json:"microdata"`
	Microformats *microformats.Document `json:"microformats"`
}

// Get returns one of Result's slots by its JSON tag name ("meta",
// "opengraph", "twitter", "dublin_core", "oembed", "rel_links", "jsonld",
// "microdata", "microformats"), or nil for an unknown key.
func (r Result) Get(key string) any {
	switch key {
	case "meta":
		return r.Meta
	case "opengraph":
		return r.OpenGraph
	case "twitter":
		return r.Twitter
	case "dublin_core":
		return r.DublinCore
	case "oembed":
		return r.OEmbed
	case "rel_links":
		return r.RelLinks
	case "jsonld":
		return r.JSONLD
	case "microdata":
		return r.Microdata
	case "microformats":
		return r.Microformats
	default:
		return nil
	}
}

// ExtractAll runs every extractor inside an error-isolation boundary
// (internal/safe): a single extractor panicking leaves its slot at the
// zero value instead of failing the whole call, per the aggregator's
// "never fails as a whole" guarantee.
func (d *Document) ExtractAll() Result {
	var res Result

	safe.Run(d.logger, "meta", func() { res.Meta = meta.Parse(d.root, d.baseURL) })
	safe.Run(d.logger, "opengraph", func() { res.OpenGraph = opengraph.Parse(d.root, d.baseURL) })
	safe.Run(d.logger, "twitter", func() { res.Twitter = twitter.WithFallback(d.root, d.baseURL) })
	safe.Run(d.logger, "dublin_core", func() { res.DublinCore = dublincore.Parse(d.root) })
	safe.Run(d.logger, "oembed", func() { res.OEmbed = oembed.Parse(d.root, d.baseURL) })
	safe.Run(d.logger, "rel_links", func() { res.RelLinks = rellinks.Parse(d.root, d.baseURL) })
	safe.Run(d.logger, "jsonld", func() { res.JSONLD = jsonld.Parse(d.root) })
	safe.Run(d.logger, "microdata", func() { res.Microdata = microdata.Parse(d.root, d.baseURL, microdata.WithMaxDepth(d.microdataDepth)) })
	safe.Run(d.logger, "microformats", func() { res.Microformats = microformats.Parse(d.root, d.baseURL, microformats.WithMaxDepth(d.microformatsDepth)) })

	return res
}
