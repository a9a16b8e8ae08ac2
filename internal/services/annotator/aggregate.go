package annotator

import (
	"time"

	"github.com/ternarybob/adnota/internal/common"
	"github.com/ternarybob/adnota/internal/models"
	"github.com/ternarybob/adnota/internal/services/dom"
)

// Display position base and per-collision stagger for notes anchored to the
// same node.
const (
	basePositionX = 32
	basePositionY = 32
	staggerX      = 24
	staggerY      = 18
)

// aggregate validates every resolved annotation against the full document,
// repairs failed selectors, persists survivors, and assembles the run
// result. Results are indexed by each chunk's own index, never arrival
// order.
func (s *Service) aggregate(
	batchID string,
	page *models.Page,
	document *dom.Document,
	candidates []models.CandidateAnnotation,
	chunks []models.Chunk,
	slots []chunkResult,
) *models.RunResult {
	result := &models.RunResult{
		BatchID:            batchID,
		TotalChunks:        len(chunks),
		FailedChunkIndices: []int{},
		Annotations:        []models.Annotation{},
	}

	known := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		known[c.TempID] = true
	}

	// collisions counts annotations already anchored to each node so
	// display offsets stagger deterministically in candidate order.
	collisions := make(map[string]int)

	for index, slot := range slots {
		result.TokensUsed += slot.usage.tokens
		result.CostUSD += slot.usage.cost

		if slot.err != nil {
			result.FailedChunkIndices = append(result.FailedChunkIndices, index)
			continue
		}
		result.SuccessfulChunks++

		for _, resolved := range slot.resolved {
			// A response referencing a candidate we never issued is a
			// hallucinated sub-result; discard it without failing the chunk.
			if !known[resolved.SourceTempID] {
				s.logger.Debug().
					Str("temp_id", resolved.SourceTempID).
					Int("chunk_index", index).
					Msg("Discarding sub-result with unknown candidate reference")
				continue
			}

			annotation, ok := s.resolveAgainstDocument(document, &resolved)
			if !ok {
				result.UnresolvedCount++
				continue
			}

			annotation.PageID = page.ID
			annotation.BatchID = batchID

			n := collisions[annotation.CSSSelector]
			collisions[annotation.CSSSelector] = n + 1
			annotation.PositionX = basePositionX + n*staggerX
			annotation.PositionY = basePositionY + n*staggerY

			if err := s.storage.SaveAnnotation(annotation); err != nil {
				s.logger.Error().
					Err(err).
					Str("annotation_id", annotation.ID).
					Msg("Failed to persist annotation")
				result.UnresolvedCount++
				continue
			}

			result.Annotations = append(result.Annotations, *annotation)
		}
	}

	return result
}

// resolveAgainstDocument confirms a resolved annotation's selector against
// the full document rather than the chunk it came from, repairing it when it
// does not resolve to exactly one node containing the expected text.
func (s *Service) resolveAgainstDocument(document *dom.Document, resolved *models.ResolvedAnnotation) (*models.Annotation, bool) {
	now := time.Now()
	annotation := &models.Annotation{
		ID:              common.NewAnnotationID(),
		Content:         resolved.Commentary,
		HighlightedText: resolved.ExactText,
		Confidence:      resolved.Confidence,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	ok, matchCount := s.validator.ValidateWithText(document, resolved.CSSSelector, resolved.ExactText)
	if ok {
		annotation.CSSSelector = resolved.CSSSelector
		annotation.XPath = resolved.XPath
		annotation.ValidationStatus = models.ValidationExact
		annotation.MatchCount = 1
		return annotation, true
	}

	repair := s.validator.Repair(document, resolved.ExactText, resolved.CSSSelector, resolved.XPath)
	if !repair.Success {
		s.logger.Debug().
			Str("selector", resolved.CSSSelector).
			Int("match_count", matchCount).
			Float64("similarity", repair.TextSimilarity).
			Msg("Annotation unresolved after repair")
		return nil, false
	}

	annotation.CSSSelector = repair.CSSSelector
	annotation.XPath = repair.XPath
	annotation.ValidationStatus = models.ValidationRepaired
	annotation.MatchCount = repair.MatchCount
	return annotation, true
}
