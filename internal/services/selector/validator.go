package selector

import (
	"strings"

	"github.com/ternarybob/arbor"
	"golang.org/x/net/html"

	"github.com/ternarybob/adnota/internal/services/dom"
)

// skipTags are elements whose text never anchors an annotation.
var skipTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "head": true,
	"meta": true, "link": true, "title": true, "html": true, "body": true,
}

// RepairResult is the outcome of a selector repair attempt.
type RepairResult struct {
	Success        bool    `json:"success"`
	CSSSelector    string  `json:"css_selector,omitempty"`
	XPath          string  `json:"xpath,omitempty"`
	MatchCount     int     `json:"match_count"`
	TextSimilarity float64 `json:"text_similarity"`
}

// Service validates language-model-produced selectors against the full
// document and repairs failed ones via fuzzy text search. Validation MUST
// run against the full document, never a chunk: chunk-relative selectors
// reference ancestor chains absent from the chunk subtree and fail for
// every chunk after the first.
type Service struct {
	threshold float64
	logger    arbor.ILogger
}

// NewService creates a validator/repairer with the given minimum similarity
// threshold for repair matches.
func NewService(threshold float64, logger arbor.ILogger) *Service {
	if threshold <= 0 || threshold > 1 {
		threshold = 0.6
	}
	return &Service{threshold: threshold, logger: logger}
}

// Validate evaluates a CSS selector against the full document and reports
// whether it resolves to exactly one node, along with the match count.
func (s *Service) Validate(document *dom.Document, selector string) (bool, int) {
	nodes, err := document.Query(selector)
	if err != nil {
		return false, 0
	}
	return len(nodes) == 1, len(nodes)
}

// ValidateWithText additionally requires the single matched node's text to
// contain the expected text (whitespace-normalized, case-insensitive).
func (s *Service) ValidateWithText(document *dom.Document, selector, expectedText string) (bool, int) {
	nodes, err := document.Query(selector)
	if err != nil {
		return false, 0
	}
	if len(nodes) != 1 {
		return false, len(nodes)
	}

	nodeText := NormalizeText(dom.TextContent(nodes[0]))
	if !strings.Contains(nodeText, NormalizeText(expectedText)) {
		return false, 1
	}
	return true, 1
}

// Repair attempts to reconstruct a valid, unique selector for the node the
// expected text belongs to. It tries the failed XPath first, then scans all
// text-bearing nodes scoring each by similarity to the expected text; the
// highest-scoring node above the threshold wins and gets a freshly built
// selector and XPath.
func (s *Service) Repair(document *dom.Document, expectedText, failedSelector, failedXPath string) *RepairResult {
	if target := s.tryXPath(document, expectedText, failedXPath); target != nil {
		return s.rebuild(document, target, 1.0)
	}

	var best *html.Node
	bestScore := 0.0
	document.WalkElements(func(n *html.Node) bool {
		if skipTags[n.Data] {
			return true
		}
		text := dom.TextContent(n)
		if strings.TrimSpace(text) == "" {
			return true
		}
		score := Similarity(text, expectedText)
		if score > bestScore {
			best, bestScore = n, score
		}
		return true
	})

	if best == nil || bestScore < s.threshold {
		s.logger.Debug().
			Str("failed_selector", failedSelector).
			Float64("best_score", bestScore).
			Float64("threshold", s.threshold).
			Msg("Selector repair failed: no node above similarity threshold")
		return &RepairResult{Success: false, TextSimilarity: bestScore}
	}

	return s.rebuild(document, best, bestScore)
}

// tryXPath resolves the failed XPath against the full document; a unique
// match whose text contains the expected text is accepted directly.
func (s *Service) tryXPath(document *dom.Document, expectedText, failedXPath string) *html.Node {
	if failedXPath == "" {
		return nil
	}
	nodes, err := document.QueryXPath(failedXPath)
	if err != nil || len(nodes) != 1 {
		return nil
	}
	nodeText := NormalizeText(dom.TextContent(nodes[0]))
	if !strings.Contains(nodeText, NormalizeText(expectedText)) {
		return nil
	}
	return nodes[0]
}

// rebuild generates a fresh minimal selector and xpath for the matched node
// and verifies uniqueness before reporting success.
func (s *Service) rebuild(document *dom.Document, target *html.Node, score float64) *RepairResult {
	cssSelector := document.BuildSelector(target)
	xpath := document.BuildXPath(target)

	ok, matchCount := s.Validate(document, cssSelector)
	if !ok {
		s.logger.Warn().
			Str("selector", cssSelector).
			Int("match_count", matchCount).
			Msg("Rebuilt selector is not unique")
		return &RepairResult{Success: false, MatchCount: matchCount, TextSimilarity: score}
	}

	s.logger.Debug().
		Str("selector", cssSelector).
		Str("xpath", xpath).
		Float64("similarity", score).
		Msg("Selector repaired")

	return &RepairResult{
		Success:        true,
		CSSSelector:    cssSelector,
		XPath:          xpath,
		MatchCount:     1,
		TextSimilarity: score,
	}
}
