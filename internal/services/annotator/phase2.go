package annotator

import (
	"context"

	"github.com/ternarybob/adnota/internal/interfaces"
	"github.com/ternarybob/adnota/internal/models"
)

// chunkResult is one chunk's Phase 2 outcome. Each slot is written exactly
// once by that chunk's worker and read only after all workers join.
type chunkResult struct {
	resolved []models.ResolvedAnnotation
	usage    usage
	err      error
}

// runPhase2 fans out one position-matching call per chunk with bounded
// concurrency. Dispatch follows chunk index order; a failing chunk is
// recorded in its slot and never cancels its siblings.
func (s *Service) runPhase2(ctx context.Context, chunks []models.Chunk, candidates []models.CandidateAnnotation) []chunkResult {
	slots := make([]chunkResult, len(chunks))
	timeout := s.config.Pipeline.ChunkTimeoutDuration()

	errs := s.pool.Run(ctx, len(chunks), func(ctx context.Context, index int) error {
		chunkCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		resolved, u, err := s.matchChunk(chunkCtx, &chunks[index], candidates)
		slots[index] = chunkResult{resolved: resolved, usage: u, err: err}
		if err != nil {
			s.logger.Warn().
				Err(err).
				Int("chunk_index", index).
				Msg("Phase 2 chunk call failed")
		}
		return nil
	})

	// Chunks never dispatched (run context cancelled) or whose worker
	// panicked have no slot entry of their own; fold the pool's errors in so
	// they count as failed rather than silently successful.
	for index, err := range errs {
		if err != nil && slots[index].err == nil {
			slots[index].err = newChunkError(index, err)
		}
	}

	return slots
}

// matchChunk runs the low-temperature position-matching call for one chunk
// and parses the resolved annotations. A timeout is treated identically to
// any other generation failure.
func (s *Service) matchChunk(ctx context.Context, chunk *models.Chunk, candidates []models.CandidateAnnotation) ([]models.ResolvedAnnotation, usage, error) {
	var u usage

	system, user, err := buildPhase2Prompt(chunk, candidates)
	if err != nil {
		return nil, u, newChunkError(chunk.Index, err)
	}

	resp, err := s.llm.GenerateContent(ctx, &interfaces.GenerateRequest{
		Messages: []interfaces.Message{
			{Role: "user", Content: user},
		},
		SystemInstruction: system,
		Temperature:       s.config.LLM.Phase2Temperature,
	})
	if err != nil {
		return nil, u, newChunkError(chunk.Index, err)
	}
	u.add(resp)

	raw, err := extractJSONBlock(resp.Text)
	if err != nil {
		return nil, u, newChunkError(chunk.Index, err)
	}

	var resolved []models.ResolvedAnnotation
	if err := decodeJSONList(raw, &resolved); err != nil {
		return nil, u, newChunkError(chunk.Index, err)
	}

	s.logger.Debug().
		Int("chunk_index", chunk.Index).
		Int("resolved", len(resolved)).
		Msg("Phase 2 chunk call complete")

	return resolved, u, nil
}
