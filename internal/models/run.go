package models

// RunRequest is the inbound request for one auto-annotation run.
type RunRequest struct {
	PageID             string `json:"page_id" validate:"required"`
	FullDOM            string `json:"full_dom" validate:"required"`
	LLMProviderID      string `json:"llm_provider_id,omitempty"`
	TemplateType       string `json:"template_type,omitempty"` // e.g. "study_guide"
	CustomInstructions string `json:"custom_instructions,omitempty"`
}

// RunResult is the aggregated outcome of one pipeline run. Immutable after
// the run completes.
type RunResult struct {
	BatchID            string       `json:"batch_id"`
	TotalChunks        int          `json:"total_chunks"`
	SuccessfulChunks   int          `json:"successful_chunks"`
	FailedChunkIndices []int        `json:"failed_chunk_indices"`
	Annotations        []Annotation `json:"annotations"`
	UnresolvedCount    int          `json:"unresolved_count"`
	TokensUsed         int          `json:"tokens_used"`
	CostUSD            float64      `json:"cost_usd"`
	GenerationTimeMs   int64        `json:"generation_time_ms"`
}
