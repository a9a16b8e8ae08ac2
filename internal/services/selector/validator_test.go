package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/adnota/internal/services/dom"
)

const validatorHTML = `<!DOCTYPE html>
<html>
<body>
<main id="content">
  <section id="intro">
    <h2>Introduction</h2>
    <p>Streaming replication ships WAL records to the standby as they are generated.</p>
  </section>
  <section id="details">
    <h2>Details</h2>
    <p>The standby applies records in commit order.</p>
    <p>Synchronous mode waits for the standby to confirm.</p>
  </section>
</main>
</body>
</html>`

func newTestService() *Service {
	return NewService(0.6, arbor.NewLogger())
}

func parseDoc(t *testing.T, raw string) *dom.Document {
	t.Helper()
	doc, err := dom.Parse(raw)
	require.NoError(t, err)
	return doc
}

func TestNewService_ThresholdDefaults(t *testing.T) {
	logger := arbor.NewLogger()
	assert.Equal(t, 0.6, NewService(0, logger).threshold)
	assert.Equal(t, 0.6, NewService(1.5, logger).threshold)
	assert.Equal(t, 0.8, NewService(0.8, logger).threshold)
}

func TestValidate_UniqueMatch(t *testing.T) {
	doc := parseDoc(t, validatorHTML)
	svc := newTestService()

	ok, count := svc.Validate(doc, "section#intro > p")
	assert.True(t, ok)
	assert.Equal(t, 1, count)
}

func TestValidate_MultipleMatches(t *testing.T) {
	doc := parseDoc(t, validatorHTML)
	svc := newTestService()

	ok, count := svc.Validate(doc, "section p")
	assert.False(t, ok)
	assert.Equal(t, 3, count)
}

func TestValidate_NoMatchAndInvalid(t *testing.T) {
	doc := parseDoc(t, validatorHTML)
	svc := newTestService()

	ok, count := svc.Validate(doc, "table.missing")
	assert.False(t, ok)
	assert.Equal(t, 0, count)

	ok, count = svc.Validate(doc, "p[[")
	assert.False(t, ok)
	assert.Equal(t, 0, count)
}

func TestValidateWithText(t *testing.T) {
	doc := parseDoc(t, validatorHTML)
	svc := newTestService()

	ok, _ := svc.ValidateWithText(doc, "section#intro > p", "WAL records to the standby")
	assert.True(t, ok)

	// Unique node, wrong text.
	ok, _ = svc.ValidateWithText(doc, "section#intro > p", "completely unrelated phrase")
	assert.False(t, ok)
}

func TestRepair_ChunkRelativeSelectorAgainstFullDocument(t *testing.T) {
	// A selector generated from a chunk subtree resolves against the chunk
	// but not against the full document. Repair must recover the node by
	// text and rebuild a document-valid selector.
	doc := parseDoc(t, validatorHTML)
	svc := newTestService()

	expected := "Synchronous mode waits for the standby to confirm."
	result := svc.Repair(doc, expected, "body > section > p:nth-child(3)", "")

	require.True(t, result.Success)
	assert.Equal(t, 1, result.MatchCount)

	ok, _ := svc.ValidateWithText(doc, result.CSSSelector, expected)
	assert.True(t, ok, "repaired selector %q must resolve to the expected node", result.CSSSelector)
}

func TestRepair_ViaXPathFallback(t *testing.T) {
	doc := parseDoc(t, validatorHTML)
	svc := newTestService()

	expected := "The standby applies records in commit order."
	result := svc.Repair(doc, expected, "div.bogus > p", `//*[@id="details"]/p[1]`)

	require.True(t, result.Success)
	ok, _ := svc.ValidateWithText(doc, result.CSSSelector, expected)
	assert.True(t, ok)
}

func TestRepair_NoMatchBelowThreshold(t *testing.T) {
	doc := parseDoc(t, validatorHTML)
	svc := newTestService()

	result := svc.Repair(doc, "quantum chromodynamics lattice gauge theory", "p.none", "")

	assert.False(t, result.Success)
	assert.Empty(t, result.CSSSelector)
	assert.Less(t, result.TextSimilarity, 0.6)
}

func TestRepair_ApproximateTextStillResolves(t *testing.T) {
	doc := parseDoc(t, validatorHTML)
	svc := newTestService()

	// Model-mangled casing and spacing of the real sentence.
	expected := "streaming   Replication ships WAL records to the standby as they are generated"
	result := svc.Repair(doc, expected, "", "")

	require.True(t, result.Success)
	ok, _ := svc.ValidateWithText(doc, result.CSSSelector, "Streaming replication ships WAL records")
	assert.True(t, ok)
}
