package interfaces

import (
	"errors"

	"github.com/ternarybob/adnota/internal/models"
)

// ErrPageNotFound is returned when a page ID does not exist in storage.
var ErrPageNotFound = errors.New("page not found")

// PageStorage defines persistence for pages and their annotations.
type PageStorage interface {
	SavePage(page *models.Page) error
	GetPage(id string) (*models.Page, error)
	ListPages(limit int) ([]*models.Page, error)
	DeletePage(id string) error

	SaveAnnotation(annotation *models.Annotation) error
	GetAnnotation(id string) (*models.Annotation, error)
	GetAnnotationsByPage(pageID string) ([]*models.Annotation, error)
	GetAnnotationsByBatch(batchID string) ([]*models.Annotation, error)
	DeleteAnnotation(id string) error
}

// StorageManager provides access to the storage layer and owns its lifecycle.
type StorageManager interface {
	PageStorage() PageStorage
	Close() error
}
