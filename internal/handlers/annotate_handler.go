package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/adnota/internal/interfaces"
	"github.com/ternarybob/adnota/internal/models"
	"github.com/ternarybob/adnota/internal/services/annotator"
	"github.com/ternarybob/adnota/internal/services/status"
	"github.com/ternarybob/arbor"
)

// AnnotateHandler handles HTTP requests for auto-annotation runs
type AnnotateHandler struct {
	annotatorService interfaces.AnnotatorService
	statusService    *status.Service
	logger           arbor.ILogger
	validate         *validator.Validate
}

// NewAnnotateHandler creates a new AnnotateHandler
func NewAnnotateHandler(annotatorService interfaces.AnnotatorService, statusService *status.Service, logger arbor.ILogger) *AnnotateHandler {
	return &AnnotateHandler{
		annotatorService: annotatorService,
		statusService:    statusService,
		logger:           logger,
		validate:         validator.New(),
	}
}

// AnnotateHandler handles POST /api/annotate
func (h *AnnotateHandler) AnnotateHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req models.RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	h.statusService.RunStarted(req.PageID)

	result, err := h.annotatorService.Annotate(r.Context(), &req)
	if err != nil {
		h.statusService.RunFinished("")
		h.writeAnnotateError(w, &req, err)
		return
	}
	h.statusService.RunFinished(result.BatchID)

	h.logger.Info().
		Str("page_id", req.PageID).
		Str("batch_id", result.BatchID).
		Int("annotations", len(result.Annotations)).
		Int("failed_chunks", len(result.FailedChunkIndices)).
		Msg("Annotation run completed")

	WriteJSON(w, http.StatusOK, result)
}

func (h *AnnotateHandler) writeAnnotateError(w http.ResponseWriter, req *models.RunRequest, err error) {
	h.logger.Error().Err(err).Str("page_id", req.PageID).Msg("Annotation run failed")

	switch {
	case errors.Is(err, interfaces.ErrPageNotFound):
		WriteError(w, http.StatusNotFound, "Page not found: "+req.PageID)
	case errors.Is(err, annotator.ErrEmptyDocument):
		WriteError(w, http.StatusBadRequest, "Document is empty or unparsable")
	default:
		var genErr *annotator.GenerationError
		if errors.As(err, &genErr) {
			WriteError(w, http.StatusInternalServerError, "Generation failed: "+genErr.Error())
			return
		}
		WriteError(w, http.StatusInternalServerError, "Annotation failed: "+err.Error())
	}
}
