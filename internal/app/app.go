package app

import (
	"github.com/ternarybob/adnota/internal/common"
	"github.com/ternarybob/adnota/internal/handlers"
	"github.com/ternarybob/adnota/internal/interfaces"
	"github.com/ternarybob/adnota/internal/services/annotator"
	"github.com/ternarybob/adnota/internal/services/llm"
	"github.com/ternarybob/adnota/internal/services/status"
	"github.com/ternarybob/adnota/internal/storage/badger"
	"github.com/ternarybob/arbor"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// LLM provider factory (Gemini and Claude)
	LLMService interfaces.LLMService

	// Annotation pipeline
	AnnotatorService interfaces.AnnotatorService
	StatusService    *status.Service

	// HTTP handlers
	APIHandler      *handlers.APIHandler
	AnnotateHandler *handlers.AnnotateHandler
	PagesHandler    *handlers.PagesHandler
	StatusHandler   *handlers.StatusHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initStorage(); err != nil {
		return nil, err
	}

	if err := app.initServices(); err != nil {
		return nil, err
	}

	app.initHandlers()

	logger.Info().Msg("Application initialized")

	return app, nil
}

func (a *App) initStorage() error {
	manager, err := badger.NewManager(a.Logger, &a.Config.Storage.Badger)
	if err != nil {
		return err
	}
	a.StorageManager = manager
	return nil
}

func (a *App) initServices() error {
	a.LLMService = llm.NewProviderFactory(
		&a.Config.Gemini,
		&a.Config.Claude,
		&a.Config.LLM,
		a.Logger,
	)

	a.AnnotatorService = annotator.NewService(
		a.LLMService,
		a.StorageManager.PageStorage(),
		annotator.NewBatchRegistry(),
		a.Config,
		a.Logger,
	)

	a.StatusService = status.NewService(a.Logger)

	return nil
}

func (a *App) initHandlers() {
	a.APIHandler = handlers.NewAPIHandler()
	a.AnnotateHandler = handlers.NewAnnotateHandler(a.AnnotatorService, a.StatusService, a.Logger)
	a.PagesHandler = handlers.NewPagesHandler(a.StorageManager.PageStorage(), a.Logger)
	a.StatusHandler = handlers.NewStatusHandler(a.StatusService, a.Logger)
}

// Close shuts down application components in reverse dependency order
func (a *App) Close() error {
	if a.LLMService != nil {
		if err := a.LLMService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close LLM service")
		}
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close storage manager")
			return err
		}
	}

	a.Logger.Info().Msg("Application closed")
	return nil
}
