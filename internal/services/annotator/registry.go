package annotator

import (
	"github.com/ternarybob/adnota/internal/common"
)

// UUIDBatchRegistry issues uuid-backed batch identifiers.
type UUIDBatchRegistry struct{}

// NewBatchRegistry creates the default batch registry.
func NewBatchRegistry() *UUIDBatchRegistry {
	return &UUIDBatchRegistry{}
}

// NewBatchID returns a globally unique batch identifier.
func (r *UUIDBatchRegistry) NewBatchID() string {
	return common.NewBatchID()
}
