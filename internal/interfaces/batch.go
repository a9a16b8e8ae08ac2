package interfaces

// BatchRegistry assigns run-scoped batch identifiers. Every annotation
// produced by one pipeline invocation shares the batch ID it returns.
type BatchRegistry interface {
	// NewBatchID returns a globally unique batch identifier.
	NewBatchID() string
}
