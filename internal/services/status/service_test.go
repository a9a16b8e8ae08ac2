package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/arbor"
)

func TestStateTransitions(t *testing.T) {
	svc := NewService(arbor.NewLogger())

	assert.Equal(t, StateIdle, svc.GetState())

	svc.RunStarted("page_1")
	assert.Equal(t, StateAnnotating, svc.GetState())

	svc.RunStarted("page_2")
	svc.RunFinished("batch_1")
	assert.Equal(t, StateAnnotating, svc.GetState())

	svc.RunFinished("batch_2")
	assert.Equal(t, StateIdle, svc.GetState())
}

func TestGetStatus(t *testing.T) {
	svc := NewService(arbor.NewLogger())

	svc.RunStarted("page_1")
	svc.RunFinished("batch_1")
	svc.RunStarted("page_2")

	got := svc.GetStatus()
	assert.Equal(t, "annotating", got["state"])
	assert.Equal(t, 1, got["active_runs"])
	assert.Equal(t, 1, got["total_runs"])
	assert.Equal(t, "batch_1", got["last_batch_id"])
}

func TestRunFinished_FailedRunKeepsLastBatch(t *testing.T) {
	svc := NewService(arbor.NewLogger())

	svc.RunStarted("page_1")
	svc.RunFinished("batch_1")

	// A failed run reports an empty batch ID
	svc.RunStarted("page_2")
	svc.RunFinished("")

	got := svc.GetStatus()
	assert.Equal(t, "batch_1", got["last_batch_id"])
	assert.Equal(t, 2, got["total_runs"])
}
