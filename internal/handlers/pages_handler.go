package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ternarybob/adnota/internal/common"
	"github.com/ternarybob/adnota/internal/interfaces"
	"github.com/ternarybob/adnota/internal/models"
	"github.com/ternarybob/arbor"
)

// PagesHandler handles HTTP requests for pages and their annotations
type PagesHandler struct {
	storage interfaces.PageStorage
	logger  arbor.ILogger
}

// NewPagesHandler creates a new PagesHandler
func NewPagesHandler(storage interfaces.PageStorage, logger arbor.ILogger) *PagesHandler {
	return &PagesHandler{
		storage: storage,
		logger:  logger,
	}
}

// CreatePageHandler handles POST /api/pages
func (h *PagesHandler) CreatePageHandler(w http.ResponseWriter, r *http.Request) {
	var page models.Page
	if err := json.NewDecoder(r.Body).Decode(&page); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if page.URL == "" {
		WriteError(w, http.StatusBadRequest, "Page URL is required")
		return
	}
	if page.ID == "" {
		page.ID = common.NewPageID()
	}

	if err := h.storage.SavePage(&page); err != nil {
		h.logger.Error().Err(err).Str("page_id", page.ID).Msg("Failed to save page")
		WriteError(w, http.StatusInternalServerError, "Failed to save page")
		return
	}

	WriteJSON(w, http.StatusCreated, &page)
}

// ListPagesHandler handles GET /api/pages
func (h *PagesHandler) ListPagesHandler(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil && n > 0 {
			limit = n
		}
	}

	pages, err := h.storage.ListPages(limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list pages")
		WriteError(w, http.StatusInternalServerError, "Failed to list pages")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"pages": pages,
		"count": len(pages),
	})
}

// GetPageHandler handles GET /api/pages/{id}
func (h *PagesHandler) GetPageHandler(w http.ResponseWriter, r *http.Request) {
	id := pagePathID(r)
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Page ID is required")
		return
	}

	page, err := h.storage.GetPage(id)
	if err != nil {
		if errors.Is(err, interfaces.ErrPageNotFound) {
			WriteError(w, http.StatusNotFound, "Page not found: "+id)
			return
		}
		h.logger.Error().Err(err).Str("page_id", id).Msg("Failed to get page")
		WriteError(w, http.StatusInternalServerError, "Failed to get page")
		return
	}

	WriteJSON(w, http.StatusOK, page)
}

// DeletePageHandler handles DELETE /api/pages/{id}
func (h *PagesHandler) DeletePageHandler(w http.ResponseWriter, r *http.Request) {
	id := pagePathID(r)
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Page ID is required")
		return
	}

	if err := h.storage.DeletePage(id); err != nil {
		h.logger.Error().Err(err).Str("page_id", id).Msg("Failed to delete page")
		WriteError(w, http.StatusInternalServerError, "Failed to delete page")
		return
	}

	WriteSuccess(w, "Page deleted")
}

// PageAnnotationsHandler handles GET /api/pages/{id}/annotations with an
// optional ?batch= filter
func (h *PagesHandler) PageAnnotationsHandler(w http.ResponseWriter, r *http.Request) {
	id := pagePathID(r)
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Page ID is required")
		return
	}

	annotations, err := h.storage.GetAnnotationsByPage(id)
	if err != nil {
		h.logger.Error().Err(err).Str("page_id", id).Msg("Failed to get annotations")
		WriteError(w, http.StatusInternalServerError, "Failed to get annotations")
		return
	}

	if batchID := r.URL.Query().Get("batch"); batchID != "" {
		filtered := annotations[:0]
		for _, a := range annotations {
			if a.BatchID == batchID {
				filtered = append(filtered, a)
			}
		}
		annotations = filtered
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"page_id":     id,
		"annotations": annotations,
		"count":       len(annotations),
	})
}

// BatchAnnotationsHandler handles GET /api/batches/{id}/annotations
func (h *PagesHandler) BatchAnnotationsHandler(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/batches/")
	batchID := strings.TrimSuffix(path, "/annotations")
	if batchID == "" || strings.Contains(batchID, "/") {
		WriteError(w, http.StatusBadRequest, "Batch ID is required")
		return
	}

	annotations, err := h.storage.GetAnnotationsByBatch(batchID)
	if err != nil {
		h.logger.Error().Err(err).Str("batch_id", batchID).Msg("Failed to get annotations")
		WriteError(w, http.StatusInternalServerError, "Failed to get annotations")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"batch_id":    batchID,
		"annotations": annotations,
		"count":       len(annotations),
	})
}

// DeleteAnnotationHandler handles DELETE /api/annotations/{id}
func (h *PagesHandler) DeleteAnnotationHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/annotations/")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Annotation ID is required")
		return
	}

	if err := h.storage.DeleteAnnotation(id); err != nil {
		h.logger.Error().Err(err).Str("annotation_id", id).Msg("Failed to delete annotation")
		WriteError(w, http.StatusInternalServerError, "Failed to delete annotation")
		return
	}

	WriteSuccess(w, "Annotation deleted")
}

// pagePathID extracts the page ID from /api/pages/{id} or /api/pages/{id}/annotations
func pagePathID(r *http.Request) string {
	path := strings.TrimPrefix(r.URL.Path, "/api/pages/")
	path = strings.TrimSuffix(path, "/annotations")
	if strings.Contains(path, "/") {
		return ""
	}
	return path
}
