package models

// DocumentContext carries document-level metadata computed once per run and
// shared by reference across all chunks. Read-only after creation.
type DocumentContext struct {
	Title          string            `json:"title"`
	Language       string            `json:"language,omitempty"`
	RootAttributes map[string]string `json:"root_attributes,omitempty"`
	HasMainContent bool              `json:"has_main_content"`

	// Outline is a truncated markdown rendition of the document used to
	// orient the position-matching prompt. Never fed to the validator.
	Outline string `json:"outline,omitempty"`
}

// Chunk is a bounded-size, document-order-indexed fragment of a larger
// document, processed independently during Phase 2.
type Chunk struct {
	Index   int              `json:"index"` // 0-based, stable for the run
	Total   int              `json:"total"` // fixed once all chunks are built
	Text    string           `json:"text"`  // serialized subtree(s)
	Context *DocumentContext `json:"context"`
}
