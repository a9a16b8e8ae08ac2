package annotator

import (
	"errors"
	"fmt"
)

// ErrEmptyDocument indicates the submitted DOM was empty or unparsable.
// Fatal before Phase 1; maps to a 400 at the HTTP surface.
var ErrEmptyDocument = errors.New("document is empty or unparsable")

// GenerationError indicates a language-model call failed or returned
// content that could not be parsed. Fatal in Phase 1; chunk-local in
// Phase 2.
type GenerationError struct {
	Phase string
	Chunk int // -1 outside Phase 2
	Err   error
}

func (e *GenerationError) Error() string {
	if e.Chunk >= 0 {
		return fmt.Sprintf("generation failed in %s (chunk %d): %v", e.Phase, e.Chunk, e.Err)
	}
	return fmt.Sprintf("generation failed in %s: %v", e.Phase, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

func newPhase1Error(err error) error {
	return &GenerationError{Phase: "phase1", Chunk: -1, Err: err}
}

func newChunkError(index int, err error) error {
	return &GenerationError{Phase: "phase2", Chunk: index, Err: err}
}
