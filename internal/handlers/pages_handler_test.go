package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/adnota/internal/interfaces"
	"github.com/ternarybob/adnota/internal/models"
)

// memoryStorage is a map-backed PageStorage for handler tests.
type memoryStorage struct {
	mu          sync.Mutex
	pages       map[string]*models.Page
	annotations map[string]*models.Annotation
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{
		pages:       map[string]*models.Page{},
		annotations: map[string]*models.Annotation{},
	}
}

func (s *memoryStorage) SavePage(page *models.Page) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[page.ID] = page
	return nil
}

func (s *memoryStorage) GetPage(id string) (*models.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	page, ok := s.pages[id]
	if !ok {
		return nil, interfaces.ErrPageNotFound
	}
	return page, nil
}

func (s *memoryStorage) ListPages(limit int) ([]*models.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var pages []*models.Page
	for _, p := range s.pages {
		pages = append(pages, p)
		if limit > 0 && len(pages) >= limit {
			break
		}
	}
	return pages, nil
}

func (s *memoryStorage) DeletePage(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pages, id)
	return nil
}

func (s *memoryStorage) SaveAnnotation(a *models.Annotation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.annotations[a.ID] = a
	return nil
}

func (s *memoryStorage) GetAnnotation(id string) (*models.Annotation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.annotations[id], nil
}

func (s *memoryStorage) GetAnnotationsByPage(pageID string) ([]*models.Annotation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Annotation
	for _, a := range s.annotations {
		if a.PageID == pageID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *memoryStorage) GetAnnotationsByBatch(batchID string) ([]*models.Annotation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Annotation
	for _, a := range s.annotations {
		if a.BatchID == batchID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *memoryStorage) DeleteAnnotation(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.annotations, id)
	return nil
}

func newPagesHandlerUnderTest() (*PagesHandler, *memoryStorage) {
	storage := newMemoryStorage()
	return NewPagesHandler(storage, arbor.NewLogger()), storage
}

func TestCreatePageHandler(t *testing.T) {
	handler, storage := newPagesHandlerUnderTest()

	body, _ := json.Marshal(&models.Page{URL: "https://example.com/a", Title: "A"})
	req := httptest.NewRequest(http.MethodPost, "/api/pages", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.CreatePageHandler(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Page
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.NotEmpty(t, created.ID)
	assert.Contains(t, created.ID, "page_")

	stored, err := storage.GetPage(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a", stored.URL)
}

func TestCreatePageHandler_RequiresURL(t *testing.T) {
	handler, _ := newPagesHandlerUnderTest()

	body, _ := json.Marshal(&models.Page{Title: "no url"})
	req := httptest.NewRequest(http.MethodPost, "/api/pages", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.CreatePageHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPageHandler(t *testing.T) {
	handler, storage := newPagesHandlerUnderTest()
	require.NoError(t, storage.SavePage(&models.Page{ID: "page_x", URL: "https://example.com"}))

	req := httptest.NewRequest(http.MethodGet, "/api/pages/page_x", nil)
	rec := httptest.NewRecorder()
	handler.GetPageHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var page models.Page
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&page))
	assert.Equal(t, "page_x", page.ID)
}

func TestGetPageHandler_NotFound(t *testing.T) {
	handler, _ := newPagesHandlerUnderTest()

	req := httptest.NewRequest(http.MethodGet, "/api/pages/page_missing", nil)
	rec := httptest.NewRecorder()
	handler.GetPageHandler(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPageAnnotationsHandler(t *testing.T) {
	handler, storage := newPagesHandlerUnderTest()
	require.NoError(t, storage.SaveAnnotation(&models.Annotation{ID: "ann_1", PageID: "page_x", BatchID: "batch_1"}))
	require.NoError(t, storage.SaveAnnotation(&models.Annotation{ID: "ann_2", PageID: "page_y", BatchID: "batch_1"}))

	req := httptest.NewRequest(http.MethodGet, "/api/pages/page_x/annotations", nil)
	rec := httptest.NewRecorder()
	handler.PageAnnotationsHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		PageID      string              `json:"page_id"`
		Annotations []models.Annotation `json:"annotations"`
		Count       int                 `json:"count"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "page_x", body.PageID)
	assert.Equal(t, 1, body.Count)
}

func TestPageAnnotationsHandler_BatchFilter(t *testing.T) {
	handler, storage := newPagesHandlerUnderTest()
	require.NoError(t, storage.SaveAnnotation(&models.Annotation{ID: "ann_1", PageID: "page_x", BatchID: "batch_1"}))
	require.NoError(t, storage.SaveAnnotation(&models.Annotation{ID: "ann_2", PageID: "page_x", BatchID: "batch_2"}))

	req := httptest.NewRequest(http.MethodGet, "/api/pages/page_x/annotations?batch=batch_2", nil)
	rec := httptest.NewRecorder()
	handler.PageAnnotationsHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Annotations []models.Annotation `json:"annotations"`
		Count       int                 `json:"count"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "ann_2", body.Annotations[0].ID)
}

func TestBatchAnnotationsHandler(t *testing.T) {
	handler, storage := newPagesHandlerUnderTest()
	require.NoError(t, storage.SaveAnnotation(&models.Annotation{ID: "ann_1", PageID: "page_x", BatchID: "batch_1"}))
	require.NoError(t, storage.SaveAnnotation(&models.Annotation{ID: "ann_2", PageID: "page_x", BatchID: "batch_2"}))

	req := httptest.NewRequest(http.MethodGet, "/api/batches/batch_2/annotations", nil)
	rec := httptest.NewRecorder()
	handler.BatchAnnotationsHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		BatchID     string              `json:"batch_id"`
		Annotations []models.Annotation `json:"annotations"`
		Count       int                 `json:"count"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "batch_2", body.BatchID)
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, "ann_2", body.Annotations[0].ID)
}

func TestDeletePageHandler(t *testing.T) {
	handler, storage := newPagesHandlerUnderTest()
	require.NoError(t, storage.SavePage(&models.Page{ID: "page_x", URL: "https://example.com"}))

	req := httptest.NewRequest(http.MethodDelete, "/api/pages/page_x", nil)
	rec := httptest.NewRecorder()
	handler.DeletePageHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	_, err := storage.GetPage("page_x")
	assert.ErrorIs(t, err, interfaces.ErrPageNotFound)
}
