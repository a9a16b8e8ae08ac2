package status

import (
	"sync"
	"time"

	"github.com/ternarybob/arbor"
)

// AppState represents the application state
type AppState string

const (
	StateIdle       AppState = "idle"
	StateAnnotating AppState = "annotating"
)

// Service tracks annotation run activity for the status endpoint
type Service struct {
	mu          sync.RWMutex
	activeRuns  int
	totalRuns   int
	lastBatchID string
	startedAt   time.Time
	logger      arbor.ILogger
}

// NewService creates a new status Service
func NewService(logger arbor.ILogger) *Service {
	return &Service{
		startedAt: time.Now(),
		logger:    logger,
	}
}

// RunStarted records the start of an annotation run
func (s *Service) RunStarted(pageID string) {
	s.mu.Lock()
	s.activeRuns++
	s.mu.Unlock()

	s.logger.Debug().Str("page_id", pageID).Msg("Annotation run started")
}

// RunFinished records the end of an annotation run. batchID is empty when the
// run failed before a batch was minted.
func (s *Service) RunFinished(batchID string) {
	s.mu.Lock()
	if s.activeRuns > 0 {
		s.activeRuns--
	}
	s.totalRuns++
	if batchID != "" {
		s.lastBatchID = batchID
	}
	s.mu.Unlock()
}

// GetState returns the current application state (thread-safe)
func (s *Service) GetState() AppState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.activeRuns > 0 {
		return StateAnnotating
	}
	return StateIdle
}

// GetStatus returns the full status including state, run counters, and uptime
func (s *Service) GetStatus() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := StateIdle
	if s.activeRuns > 0 {
		state = StateAnnotating
	}

	return map[string]interface{}{
		"state":          string(state),
		"active_runs":    s.activeRuns,
		"total_runs":     s.totalRuns,
		"last_batch_id":  s.lastBatchID,
		"uptime_seconds": int(time.Since(s.startedAt).Seconds()),
		"timestamp":      time.Now(),
	}
}
