package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/adnota/internal/interfaces"
	"github.com/ternarybob/adnota/internal/models"
	"github.com/ternarybob/adnota/internal/services/annotator"
	"github.com/ternarybob/adnota/internal/services/status"
)

// stubAnnotator returns a canned result or error.
type stubAnnotator struct {
	result  *models.RunResult
	err     error
	lastReq *models.RunRequest
}

func (s *stubAnnotator) Annotate(ctx context.Context, req *models.RunRequest) (*models.RunResult, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func postAnnotate(t *testing.T, handler *AnnotateHandler, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))

	req := httptest.NewRequest(http.MethodPost, "/api/annotate", &buf)
	rec := httptest.NewRecorder()
	handler.AnnotateHandler(rec, req)
	return rec
}

func TestAnnotateHandler_Success(t *testing.T) {
	stub := &stubAnnotator{result: &models.RunResult{
		BatchID:            "batch_1",
		TotalChunks:        3,
		SuccessfulChunks:   3,
		FailedChunkIndices: []int{},
		Annotations:        []models.Annotation{{ID: "ann_1"}},
	}}
	handler := NewAnnotateHandler(stub, status.NewService(arbor.NewLogger()), arbor.NewLogger())

	rec := postAnnotate(t, handler, &models.RunRequest{
		PageID:  "page_1",
		FullDOM: "<html><body><p>content</p></body></html>",
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var result models.RunResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	assert.Equal(t, "batch_1", result.BatchID)
	assert.Len(t, result.Annotations, 1)
	assert.Equal(t, "page_1", stub.lastReq.PageID)
}

func TestAnnotateHandler_MethodNotAllowed(t *testing.T) {
	handler := NewAnnotateHandler(&stubAnnotator{}, status.NewService(arbor.NewLogger()), arbor.NewLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/annotate", nil)
	rec := httptest.NewRecorder()
	handler.AnnotateHandler(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestAnnotateHandler_InvalidBody(t *testing.T) {
	handler := NewAnnotateHandler(&stubAnnotator{}, status.NewService(arbor.NewLogger()), arbor.NewLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/annotate", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	handler.AnnotateHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnnotateHandler_MissingRequiredFields(t *testing.T) {
	handler := NewAnnotateHandler(&stubAnnotator{}, status.NewService(arbor.NewLogger()), arbor.NewLogger())

	tests := []struct {
		name string
		req  models.RunRequest
	}{
		{"missing page_id", models.RunRequest{FullDOM: "<p>x</p>"}},
		{"missing full_dom", models.RunRequest{PageID: "page_1"}},
		{"both missing", models.RunRequest{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postAnnotate(t, handler, &tt.req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestAnnotateHandler_PageNotFound(t *testing.T) {
	stub := &stubAnnotator{err: interfaces.ErrPageNotFound}
	handler := NewAnnotateHandler(stub, status.NewService(arbor.NewLogger()), arbor.NewLogger())

	rec := postAnnotate(t, handler, &models.RunRequest{PageID: "page_gone", FullDOM: "<p>x</p>"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnnotateHandler_EmptyDocument(t *testing.T) {
	stub := &stubAnnotator{err: annotator.ErrEmptyDocument}
	handler := NewAnnotateHandler(stub, status.NewService(arbor.NewLogger()), arbor.NewLogger())

	rec := postAnnotate(t, handler, &models.RunRequest{PageID: "page_1", FullDOM: " "})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnnotateHandler_GenerationFailure(t *testing.T) {
	stub := &stubAnnotator{err: &annotator.GenerationError{
		Phase: "phase1",
		Chunk: -1,
		Err:   errors.New("model unavailable"),
	}}
	handler := NewAnnotateHandler(stub, status.NewService(arbor.NewLogger()), arbor.NewLogger())

	rec := postAnnotate(t, handler, &models.RunRequest{PageID: "page_1", FullDOM: "<p>x</p>"})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "error", body["status"])
	assert.Contains(t, body["error"], "Generation failed")
}
