package models

import (
	"time"
)

// ValidationStatus describes how an annotation's selector was confirmed
// against the full document.
type ValidationStatus string

const (
	// ValidationExact indicates the generated selector resolved to exactly one node
	ValidationExact ValidationStatus = "exact"
	// ValidationRepaired indicates the selector was rebuilt via fuzzy text search
	ValidationRepaired ValidationStatus = "repaired"
	// ValidationUnresolved indicates neither validation nor repair succeeded
	ValidationUnresolved ValidationStatus = "unresolved"
)

// Annotation is a persisted note anchored to a node in a page's DOM.
// Only annotations with status exact or repaired and MatchCount == 1 are
// eligible for persistence.
type Annotation struct {
	ID      string `json:"id"` // ann_{uuid}
	PageID  string `json:"page_id"`
	BatchID string `json:"batch_id"` // correlates all annotations from one run

	Content         string `json:"content"`          // commentary shown to the user
	HighlightedText string `json:"highlighted_text"` // verbatim text the anchor points at
	CSSSelector     string `json:"css_selector"`
	XPath           string `json:"xpath"`

	PositionX int `json:"position_x"`
	PositionY int `json:"position_y"`

	ValidationStatus ValidationStatus `json:"validation_status"`
	MatchCount       int              `json:"match_count"`
	Confidence       float64          `json:"confidence"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CandidateAnnotation is the Phase 1 output: a proposed note with only
// approximate positioning information. Transient; consumed by Phase 2.
type CandidateAnnotation struct {
	TempID          string `json:"temp_id"`
	ApproximateText string `json:"approximate_text"`
	Commentary      string `json:"commentary"`
	TopicHint       string `json:"topic_hint,omitempty"`
}

// ResolvedAnnotation is the Phase 2 per-chunk output: a candidate mapped to
// a verbatim text span plus a selector expressed against the chunk's local
// structure. Not yet validated against the full document.
type ResolvedAnnotation struct {
	SourceTempID string  `json:"source_temp_id"`
	ExactText    string  `json:"exact_text"`
	Commentary   string  `json:"commentary"`
	CSSSelector  string  `json:"css_selector"`
	XPath        string  `json:"xpath,omitempty"`
	Confidence   float64 `json:"confidence"`
}
