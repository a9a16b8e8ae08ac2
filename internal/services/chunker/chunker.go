package chunker

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
	"golang.org/x/net/html"

	"github.com/ternarybob/adnota/internal/models"
	"github.com/ternarybob/adnota/internal/services/dom"
)

// containerSelectors are tried in priority order; the first category that
// yields more than one match becomes the boundary set for the document.
// Headings are handled separately because they delimit sibling runs rather
// than containing content themselves.
var containerSelectors = []string{
	"section[id], section[class]",
	"article",
	"div#content, div.content, div#main, div.main, div.post, div.entry, div.article-body",
	"div[id]",
}

// segment is one boundary unit: a single container element or a run of
// consecutive siblings delimited by headings.
type segment []*html.Node

// Chunker splits a full document into bounded-size semantic chunks.
type Chunker struct {
	logger arbor.ILogger
}

// New creates a new Chunker
func New(logger arbor.ILogger) *Chunker {
	return &Chunker{logger: logger}
}

// Chunk splits rawHTML into an ordered list of chunks whose text length is
// within [minChars, maxChars], except that the final chunk may be smaller
// and a single boundary element larger than maxChars is kept whole in its
// own chunk rather than split mid-element.
func (c *Chunker) Chunk(rawHTML string, maxChars, minChars int) ([]models.Chunk, error) {
	if maxChars <= 0 {
		return nil, fmt.Errorf("max chunk size must be positive, got %d", maxChars)
	}

	document, err := dom.Parse(rawHTML)
	if err != nil {
		return nil, err
	}
	context := document.ExtractContext()

	// Single-chunk fast path: the whole input fits.
	if len(rawHTML) <= maxChars {
		return []models.Chunk{{
			Index:   0,
			Total:   1,
			Text:    rawHTML,
			Context: context,
		}}, nil
	}

	segments := c.findBoundaries(document)
	texts := c.pack(segments, maxChars)
	texts = mergeUndersized(texts, maxChars, minChars)

	chunks := make([]models.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = models.Chunk{
			Index:   i,
			Total:   len(texts),
			Text:    text,
			Context: context,
		}
	}

	c.logger.Debug().
		Int("document_chars", len(rawHTML)).
		Int("chunks", len(chunks)).
		Int("max_chars", maxChars).
		Int("min_chars", minChars).
		Msg("Document chunked")

	return chunks, nil
}

// findBoundaries selects the boundary set: the first container category
// yielding more than one match, then heading-delimited sibling runs, then
// paragraph/div fallback.
func (c *Chunker) findBoundaries(document *dom.Document) []segment {
	sel := document.Selection()

	for _, selector := range containerSelectors {
		matches := topLevelNodes(sel.Find(selector))
		if len(matches) > 1 {
			c.logger.Debug().
				Str("selector", selector).
				Int("boundaries", len(matches)).
				Msg("Boundary category selected")
			return singleNodeSegments(matches)
		}
	}

	// Headings split their parent's children into sibling runs, each run
	// starting at an h1/h2.
	headings := topLevelNodes(sel.Find("h1, h2"))
	if len(headings) > 1 {
		segments := headingSegments(headings[0].Parent)
		if len(segments) > 1 {
			c.logger.Debug().
				Int("boundaries", len(segments)).
				Msg("Heading-delimited boundaries selected")
			return segments
		}
	}

	// Fallback: paragraph/div-level splitting.
	fallback := topLevelNodes(sel.Find("body p, body div, body section, body article, body ul, body ol, body table, body blockquote, body pre"))
	if len(fallback) > 0 {
		return singleNodeSegments(fallback)
	}

	if body := sel.Find("body").First(); body.Length() > 0 {
		return singleNodeSegments(body.Nodes)
	}
	return singleNodeSegments(sel.Nodes)
}

// pack greedily appends boundary segments to the current chunk, starting a
// new chunk when the next segment would exceed maxChars and the current
// chunk is non-empty. A segment alone exceeding maxChars becomes its own
// oversized chunk.
func (c *Chunker) pack(segments []segment, maxChars int) []string {
	var chunks []string
	var current strings.Builder

	for _, seg := range segments {
		text := c.renderSegment(seg)
		if text == "" {
			continue
		}

		if current.Len() > 0 && current.Len()+len(text) > maxChars {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		current.WriteString(text)

		if current.Len() > maxChars {
			// Oversized single segment: kept whole, never split mid-element.
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}

	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}

	return chunks
}

// renderSegment serializes a segment's nodes in order.
func (c *Chunker) renderSegment(seg segment) string {
	var sb strings.Builder
	for _, node := range seg {
		text, err := dom.OuterHTML(node)
		if err != nil {
			c.logger.Warn().Err(err).Str("tag", node.Data).Msg("Skipping unrenderable boundary element")
			continue
		}
		sb.WriteString(text)
	}
	return sb.String()
}

// mergeUndersized folds any chunk smaller than minChars into the following
// chunk when the merge stays within maxChars. Merging proceeds left to
// right and is never reordered.
func mergeUndersized(chunks []string, maxChars, minChars int) []string {
	if len(chunks) < 2 {
		return chunks
	}

	merged := make([]string, 0, len(chunks))
	i := 0
	for i < len(chunks) {
		current := chunks[i]
		for i+1 < len(chunks) && len(current) < minChars && len(current)+len(chunks[i+1]) <= maxChars {
			current += chunks[i+1]
			i++
		}
		merged = append(merged, current)
		i++
	}
	return merged
}

// headingSegments splits parent's children into runs, each run starting at
// an h1/h2 element. Content before the first heading forms its own run.
func headingSegments(parent *html.Node) []segment {
	if parent == nil {
		return nil
	}

	var segments []segment
	var current segment
	for child := parent.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != html.ElementNode && !(child.Type == html.TextNode && strings.TrimSpace(child.Data) != "") {
			continue
		}
		if child.Type == html.ElementNode && (child.Data == "h1" || child.Data == "h2") && len(current) > 0 {
			segments = append(segments, current)
			current = nil
		}
		current = append(current, child)
	}
	if len(current) > 0 {
		segments = append(segments, current)
	}
	return segments
}

func singleNodeSegments(nodes []*html.Node) []segment {
	segments := make([]segment, 0, len(nodes))
	for _, n := range nodes {
		segments = append(segments, segment{n})
	}
	return segments
}

// topLevelNodes filters a selection down to nodes that are not descendants
// of other nodes in the same selection, preserving document order. Nested
// matches would otherwise duplicate content across chunks.
func topLevelNodes(sel *goquery.Selection) []*html.Node {
	nodes := sel.Nodes

	inSet := make(map[*html.Node]bool, len(nodes))
	for _, n := range nodes {
		inSet[n] = true
	}

	var top []*html.Node
	for _, n := range nodes {
		nested := false
		for p := n.Parent; p != nil; p = p.Parent {
			if inSet[p] {
				nested = true
				break
			}
		}
		if !nested {
			top = append(top, n)
		}
	}
	return top
}
