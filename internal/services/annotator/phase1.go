package annotator

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/adnota/internal/interfaces"
	"github.com/ternarybob/adnota/internal/models"
)

// runPhase1 issues the single creative generation call from page metadata
// only and parses the candidate list. Any failure here is fatal for the
// run: with no candidates there is nothing to position.
func (s *Service) runPhase1(ctx context.Context, page *models.Page, templateType, customInstructions string) ([]models.CandidateAnnotation, usage, error) {
	var u usage

	system, user := buildPhase1Prompt(page, templateType, customInstructions)

	resp, err := s.llm.GenerateContent(ctx, &interfaces.GenerateRequest{
		Messages: []interfaces.Message{
			{Role: "user", Content: user},
		},
		SystemInstruction: system,
		Temperature:       s.config.LLM.Phase1Temperature,
	})
	if err != nil {
		return nil, u, newPhase1Error(err)
	}
	u.add(resp)

	raw, err := extractJSONBlock(resp.Text)
	if err != nil {
		return nil, u, newPhase1Error(err)
	}

	var candidates []models.CandidateAnnotation
	if err := decodeJSONList(raw, &candidates); err != nil {
		return nil, u, newPhase1Error(err)
	}
	if len(candidates) == 0 {
		return nil, u, newPhase1Error(fmt.Errorf("no candidate annotations in response"))
	}

	// Models occasionally omit or duplicate temp IDs; renumber any gaps so
	// Phase 2 references stay unambiguous.
	seen := make(map[string]bool, len(candidates))
	for i := range candidates {
		id := strings.TrimSpace(candidates[i].TempID)
		if id == "" || seen[id] {
			id = fmt.Sprintf("c%d", i+1)
		}
		candidates[i].TempID = id
		seen[id] = true
	}

	s.logger.Debug().
		Int("candidates", len(candidates)).
		Int("tokens", u.tokens).
		Msg("Phase 1 candidate generation complete")

	return candidates, u, nil
}
