package badger

import (
	"fmt"
	"time"

	"github.com/ternarybob/adnota/internal/interfaces"
	"github.com/ternarybob/adnota/internal/models"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"
)

// PageStorage implements the PageStorage interface for Badger
type PageStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewPageStorage creates a new PageStorage instance
func NewPageStorage(db *BadgerDB, logger arbor.ILogger) interfaces.PageStorage {
	return &PageStorage{
		db:     db,
		logger: logger,
	}
}

func (s *PageStorage) SavePage(page *models.Page) error {
	if page.ID == "" {
		return fmt.Errorf("page ID is required")
	}

	now := time.Now()
	if page.CreatedAt.IsZero() {
		page.CreatedAt = now
	}
	page.UpdatedAt = now

	if err := s.db.Store().Upsert(page.ID, page); err != nil {
		return fmt.Errorf("failed to save page: %w", err)
	}
	return nil
}

func (s *PageStorage) GetPage(id string) (*models.Page, error) {
	var page models.Page
	if err := s.db.Store().Get(id, &page); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, interfaces.ErrPageNotFound
		}
		return nil, fmt.Errorf("failed to get page: %w", err)
	}
	return &page, nil
}

func (s *PageStorage) ListPages(limit int) ([]*models.Page, error) {
	query := badgerhold.Where("ID").Ne("")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var pages []models.Page
	if err := s.db.Store().Find(&pages, query); err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}

	result := make([]*models.Page, len(pages))
	for i := range pages {
		result[i] = &pages[i]
	}
	return result, nil
}

// DeletePage removes the page and all annotations attached to it.
func (s *PageStorage) DeletePage(id string) error {
	if err := s.db.Store().Delete(id, &models.Page{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete page: %w", err)
	}

	if err := s.db.Store().DeleteMatching(&models.Annotation{}, badgerhold.Where("PageID").Eq(id)); err != nil {
		s.logger.Warn().Err(err).Str("page_id", id).Msg("Failed to delete annotations for page")
	}
	return nil
}

func (s *PageStorage) SaveAnnotation(annotation *models.Annotation) error {
	if annotation.ID == "" {
		return fmt.Errorf("annotation ID is required")
	}
	if annotation.PageID == "" {
		return fmt.Errorf("annotation page ID is required")
	}

	now := time.Now()
	if annotation.CreatedAt.IsZero() {
		annotation.CreatedAt = now
	}
	annotation.UpdatedAt = now

	if err := s.db.Store().Upsert(annotation.ID, annotation); err != nil {
		return fmt.Errorf("failed to save annotation: %w", err)
	}
	return nil
}

func (s *PageStorage) GetAnnotation(id string) (*models.Annotation, error) {
	var annotation models.Annotation
	if err := s.db.Store().Get(id, &annotation); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("annotation not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get annotation: %w", err)
	}
	return &annotation, nil
}

func (s *PageStorage) GetAnnotationsByPage(pageID string) ([]*models.Annotation, error) {
	return s.findAnnotations(badgerhold.Where("PageID").Eq(pageID))
}

func (s *PageStorage) GetAnnotationsByBatch(batchID string) ([]*models.Annotation, error) {
	return s.findAnnotations(badgerhold.Where("BatchID").Eq(batchID))
}

func (s *PageStorage) DeleteAnnotation(id string) error {
	if err := s.db.Store().Delete(id, &models.Annotation{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete annotation: %w", err)
	}
	return nil
}

func (s *PageStorage) findAnnotations(query *badgerhold.Query) ([]*models.Annotation, error) {
	var annotations []models.Annotation
	if err := s.db.Store().Find(&annotations, query); err != nil {
		return nil, fmt.Errorf("failed to find annotations: %w", err)
	}

	result := make([]*models.Annotation, len(annotations))
	for i := range annotations {
		result[i] = &annotations[i]
	}
	return result, nil
}
