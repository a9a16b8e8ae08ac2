package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func newTestChunker() *Chunker {
	return New(arbor.NewLogger())
}

// sectionedDocument builds a document with n identified sections of roughly
// sectionChars serialized characters each.
func sectionedDocument(n, sectionChars int) string {
	var sb strings.Builder
	sb.WriteString("<html><head><title>Sections</title></head><body>")
	filler := strings.Repeat("lorem ipsum dolor sit amet ", sectionChars/27+1)
	for i := 0; i < n; i++ {
		sb.WriteString(fmt.Sprintf(`<section id="part-%d"><h2>Part %d</h2><p>%s</p></section>`, i, i, filler[:sectionChars]))
	}
	sb.WriteString("</body></html>")
	return sb.String()
}

func TestChunk_SingleChunkFastPath(t *testing.T) {
	raw := "<html><body><p>short document</p></body></html>"

	chunks, err := newTestChunker().Chunk(raw, 40000, 10000)
	require.NoError(t, err)
	require.Len(t, chunks, 1)

	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, 1, chunks[0].Total)
	assert.Equal(t, raw, chunks[0].Text)
	require.NotNil(t, chunks[0].Context)
}

func TestChunk_EmptyDocument(t *testing.T) {
	_, err := newTestChunker().Chunk("", 40000, 10000)
	assert.Error(t, err)
}

func TestChunk_InvalidMaxChars(t *testing.T) {
	_, err := newTestChunker().Chunk("<p>x</p>", 0, 0)
	assert.Error(t, err)
}

func TestChunk_SplitsLargeDocument(t *testing.T) {
	raw := sectionedDocument(10, 5000)
	require.Greater(t, len(raw), 20000)

	chunks, err := newTestChunker().Chunk(raw, 20000, 5000)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Index)
		assert.Equal(t, len(chunks), chunk.Total)
		assert.Equal(t, "Sections", chunk.Context.Title)
	}
}

func TestChunk_CoversAllSections(t *testing.T) {
	raw := sectionedDocument(8, 6000)

	chunks, err := newTestChunker().Chunk(raw, 20000, 5000)
	require.NoError(t, err)

	var combined strings.Builder
	for _, chunk := range chunks {
		combined.WriteString(chunk.Text)
	}
	for i := 0; i < 8; i++ {
		assert.Contains(t, combined.String(), fmt.Sprintf(`id="part-%d"`, i))
	}
}

func TestChunk_PreservesSectionOrder(t *testing.T) {
	raw := sectionedDocument(6, 8000)

	chunks, err := newTestChunker().Chunk(raw, 20000, 5000)
	require.NoError(t, err)

	var combined strings.Builder
	for _, chunk := range chunks {
		combined.WriteString(chunk.Text)
	}
	prev := -1
	for i := 0; i < 6; i++ {
		pos := strings.Index(combined.String(), fmt.Sprintf(`id="part-%d"`, i))
		require.GreaterOrEqual(t, pos, 0)
		assert.Greater(t, pos, prev)
		prev = pos
	}
}

func TestChunk_RespectsMaxSize(t *testing.T) {
	raw := sectionedDocument(12, 4000)

	chunks, err := newTestChunker().Chunk(raw, 15000, 4000)
	require.NoError(t, err)

	// Every boundary section here fits under maxChars, so no chunk may
	// exceed it.
	for i, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk.Text), 15000, "chunk %d", i)
	}
}

func TestChunk_OversizedElementKeptWhole(t *testing.T) {
	huge := strings.Repeat("overflowing content ", 2000)
	raw := fmt.Sprintf(`<html><body><section id="a"><p>small</p></section><section id="b"><p>%s</p></section><section id="c"><p>small too</p></section></body></html>`, huge)

	chunks, err := newTestChunker().Chunk(raw, 10000, 2000)
	require.NoError(t, err)

	found := false
	for _, chunk := range chunks {
		if strings.Contains(chunk.Text, `id="b"`) {
			found = true
			assert.Greater(t, len(chunk.Text), 10000)
			assert.Contains(t, chunk.Text, huge[:100])
		}
	}
	assert.True(t, found, "oversized section must appear in exactly one chunk intact")
}

func TestChunk_MergesUndersizedChunks(t *testing.T) {
	// Many tiny sections under minChars should coalesce instead of
	// producing a run of fragment chunks.
	raw := sectionedDocument(20, 1500)
	require.Greater(t, len(raw), 20000)

	chunks, err := newTestChunker().Chunk(raw, 12000, 6000)
	require.NoError(t, err)

	for i, chunk := range chunks {
		if i == len(chunks)-1 {
			continue // final chunk may be undersized
		}
		assert.GreaterOrEqual(t, len(chunk.Text), 6000, "chunk %d", i)
	}
}

func TestChunk_HeadingBoundariesFallback(t *testing.T) {
	// No container elements at all: h2 runs become the boundaries.
	filler := strings.Repeat("plain text content ", 300)
	var sb strings.Builder
	sb.WriteString("<html><body>")
	for i := 0; i < 6; i++ {
		sb.WriteString(fmt.Sprintf("<h2>Topic %d</h2><p>%s</p>", i, filler))
	}
	sb.WriteString("</body></html>")

	chunks, err := newTestChunker().Chunk(sb.String(), 15000, 4000)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	var combined strings.Builder
	for _, chunk := range chunks {
		combined.WriteString(chunk.Text)
	}
	for i := 0; i < 6; i++ {
		assert.Contains(t, combined.String(), fmt.Sprintf("Topic %d", i))
	}
}

func TestMergeUndersized(t *testing.T) {
	chunks := []string{
		strings.Repeat("a", 100),
		strings.Repeat("b", 100),
		strings.Repeat("c", 5000),
	}

	merged := mergeUndersized(chunks, 6000, 500)
	require.Len(t, merged, 1)
	assert.Equal(t, 5200, len(merged[0]))
}

func TestMergeUndersized_NeverExceedsMax(t *testing.T) {
	chunks := []string{
		strings.Repeat("a", 400),
		strings.Repeat("b", 5800),
		strings.Repeat("c", 400),
	}

	// The first chunk cannot merge forward without exceeding maxChars and
	// the trailing chunk has nothing after it, so all three stay separate.
	merged := mergeUndersized(chunks, 6000, 500)
	require.Len(t, merged, 3)
	for _, chunk := range merged {
		assert.LessOrEqual(t, len(chunk), 6000)
	}
}
