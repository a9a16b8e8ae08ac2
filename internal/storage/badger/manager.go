package badger

import (
	"github.com/ternarybob/adnota/internal/common"
	"github.com/ternarybob/adnota/internal/interfaces"
	"github.com/ternarybob/arbor"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db     *BadgerDB
	page   interfaces.PageStorage
	logger arbor.ILogger
}

// NewManager creates a new Badger storage manager
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:     db,
		page:   NewPageStorage(db, logger),
		logger: logger,
	}

	logger.Info().Msg("Badger storage manager initialized")

	return manager, nil
}

// PageStorage returns the Page storage interface
func (m *Manager) PageStorage() interfaces.PageStorage {
	return m.page
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
