package interfaces

import (
	"context"

	"github.com/ternarybob/adnota/internal/models"
)

// AnnotatorService runs the two-phase auto-annotation pipeline over a full
// document and returns the aggregated result. Partial Phase 2 failure is not
// an error; it is reflected in the result's failed-chunk list.
type AnnotatorService interface {
	Annotate(ctx context.Context, request *models.RunRequest) (*models.RunResult, error)
}
