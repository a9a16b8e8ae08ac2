package common

import (
	"github.com/google/uuid"
)

// NewPageID generates a unique page ID with the "page_" prefix
// Format: page_<uuid>
func NewPageID() string {
	return "page_" + uuid.New().String()
}

// NewAnnotationID generates a unique annotation ID with the "ann_" prefix
// Format: ann_<uuid>
func NewAnnotationID() string {
	return "ann_" + uuid.New().String()
}

// NewBatchID generates a unique batch ID with the "batch_" prefix.
// Every annotation produced by one pipeline run shares the same batch ID.
func NewBatchID() string {
	return "batch_" + uuid.New().String()
}
