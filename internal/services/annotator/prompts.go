package annotator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ternarybob/adnota/internal/models"
)

// templateInstructions maps generation styles to the guidance injected into
// the Phase 1 prompt.
var templateInstructions = map[string]string{
	"study_guide":   "Write annotations a student would pin to the page while studying it: definitions of key terms, questions the passage answers, and connections between sections.",
	"critique":      "Write annotations that critically examine the page: unsupported claims, missing context, logical gaps, and counterpoints worth considering.",
	"summary_notes": "Write annotations that condense each major section into its essential takeaway, as margin notes a returning reader can skim.",
}

const defaultTemplate = "study_guide"

// buildPhase1Prompt assembles the creative candidate-generation prompt.
// Phase 1 sees only page metadata, never the document body.
func buildPhase1Prompt(page *models.Page, templateType, customInstructions string) (system string, user string) {
	instructions, ok := templateInstructions[templateType]
	if !ok {
		instructions = templateInstructions[defaultTemplate]
	}

	system = `You are an expert annotator generating candidate margin notes for a web page.
You will receive only the page's metadata. Propose annotations a thoughtful reader would leave on the page.

` + instructions + `

Respond with ONLY a JSON array. Each element:
{
  "temp_id": "c1",
  "approximate_text": "<the passage the note likely attaches to, paraphrased or quoted from memory of similar pages>",
  "commentary": "<the note's content, 1-3 sentences>",
  "topic_hint": "<short topic label>"
}
Number temp_id sequentially (c1, c2, ...). Produce 3 to 8 candidates.`

	var sb strings.Builder
	sb.WriteString("Page metadata:\n")
	sb.WriteString(fmt.Sprintf("URL: %s\n", page.URL))
	sb.WriteString(fmt.Sprintf("Title: %s\n", page.Title))
	if page.Description != "" {
		sb.WriteString(fmt.Sprintf("Description: %s\n", page.Description))
	}
	if customInstructions != "" {
		sb.WriteString("\nAdditional instructions from the user:\n")
		sb.WriteString(customInstructions)
		sb.WriteString("\n")
	}
	sb.WriteString("\nGenerate the candidate annotations now.")

	return system, sb.String()
}

// buildPhase2Prompt assembles the precise position-matching prompt for one
// chunk: the chunk's HTML plus the full candidate list.
func buildPhase2Prompt(chunk *models.Chunk, candidates []models.CandidateAnnotation) (system string, user string, err error) {
	candidateJSON, err := json.MarshalIndent(candidates, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("failed to encode candidates: %w", err)
	}

	system = `You are a precise document-position matcher.
You will receive one chunk of a larger HTML document and a list of candidate annotations.
For each candidate whose subject appears in THIS chunk, emit an anchor:
- exact_text MUST be a verbatim substring of the chunk's text content (copy it exactly).
- css_selector and xpath identify the single element containing exact_text, expressed against the provided HTML.
- Skip candidates whose subject is not in this chunk.

Respond with ONLY a JSON array. Each element:
{
  "source_temp_id": "<temp_id from the candidate list>",
  "exact_text": "<verbatim substring>",
  "commentary": "<the note's content, refined for this exact passage>",
  "css_selector": "<selector>",
  "xpath": "<xpath>",
  "confidence": 0.0
}
Return [] if no candidate matches this chunk.`

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Chunk %d of %d", chunk.Index+1, chunk.Total))
	if chunk.Context != nil && chunk.Context.Title != "" {
		sb.WriteString(fmt.Sprintf(" from page %q", chunk.Context.Title))
	}
	sb.WriteString(".\n\nCandidate annotations:\n")
	sb.Write(candidateJSON)
	sb.WriteString("\n\nChunk HTML:\n")
	sb.WriteString(chunk.Text)
	sb.WriteString("\n\nEmit the anchored annotations now.")

	return system, sb.String(), nil
}
