package annotator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/adnota/internal/common"
	"github.com/ternarybob/adnota/internal/interfaces"
	"github.com/ternarybob/adnota/internal/models"
	"github.com/ternarybob/adnota/internal/services/chunker"
	"github.com/ternarybob/adnota/internal/services/dom"
	"github.com/ternarybob/adnota/internal/services/selector"
	"github.com/ternarybob/adnota/internal/services/workers"
)

// runState tracks pipeline progress for one run.
type runState string

const (
	stateInit          runState = "INIT"
	statePhase1Running runState = "PHASE1_RUNNING"
	stateChunking      runState = "CHUNKING"
	statePhase2Running runState = "PHASE2_RUNNING"
	stateAggregating   runState = "AGGREGATING"
	stateDone          runState = "DONE"
	stateFailed        runState = "FAILED"
)

// Service runs the two-phase auto-annotation pipeline. The chunker and
// validator are pure functions over immutable inputs; the service is the
// only concurrent component.
type Service struct {
	llm       interfaces.LLMService
	storage   interfaces.PageStorage
	registry  interfaces.BatchRegistry
	chunker   *chunker.Chunker
	validator *selector.Service
	pool      *workers.Pool
	config    *common.Config
	logger    arbor.ILogger
}

// NewService creates an annotator service with all pipeline dependencies.
func NewService(
	llmService interfaces.LLMService,
	storage interfaces.PageStorage,
	registry interfaces.BatchRegistry,
	config *common.Config,
	logger arbor.ILogger,
) *Service {
	return &Service{
		llm:       llmService,
		storage:   storage,
		registry:  registry,
		chunker:   chunker.New(logger),
		validator: selector.NewService(config.Pipeline.SimilarityThreshold, logger),
		pool:      workers.NewPool(config.Pipeline.Concurrency, logger),
		config:    config,
		logger:    logger,
	}
}

// Annotate runs the full pipeline for one document. Phase 1 failure is
// fatal; Phase 2 failures are isolated per chunk and reflected in the
// result's failed-chunk list.
func (s *Service) Annotate(ctx context.Context, request *models.RunRequest) (*models.RunResult, error) {
	started := time.Now()
	state := stateInit

	page, err := s.storage.GetPage(request.PageID)
	if err != nil {
		if errors.Is(err, interfaces.ErrPageNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load page %s: %w", request.PageID, err)
	}

	// The document is parsed once and shared read-only across every
	// concurrent validate/repair call.
	document, err := dom.Parse(request.FullDOM)
	if err != nil {
		s.logTransition(request.PageID, state, stateFailed)
		return nil, fmt.Errorf("%w: %v", ErrEmptyDocument, err)
	}

	batchID := s.registry.NewBatchID()
	s.logger.Info().
		Str("batch_id", batchID).
		Str("page_id", page.ID).
		Int("dom_chars", len(request.FullDOM)).
		Msg("Annotation run starting")

	state = s.logTransition(batchID, state, statePhase1Running)
	candidates, phase1Usage, err := s.runPhase1(ctx, page, request.TemplateType, request.CustomInstructions)
	if err != nil {
		s.logTransition(batchID, state, stateFailed)
		return nil, err
	}

	state = s.logTransition(batchID, state, stateChunking)
	chunks, err := s.chunker.Chunk(request.FullDOM, s.config.Pipeline.MaxChunkChars, s.config.Pipeline.MinChunkChars)
	if err != nil {
		s.logTransition(batchID, state, stateFailed)
		return nil, fmt.Errorf("%w: %v", ErrEmptyDocument, err)
	}

	state = s.logTransition(batchID, state, statePhase2Running)
	slots := s.runPhase2(ctx, chunks, candidates)

	state = s.logTransition(batchID, state, stateAggregating)
	result := s.aggregate(batchID, page, document, candidates, chunks, slots)

	result.TokensUsed += phase1Usage.tokens
	result.CostUSD += phase1Usage.cost
	result.GenerationTimeMs = time.Since(started).Milliseconds()

	s.logTransition(batchID, state, stateDone)
	s.logger.Info().
		Str("batch_id", batchID).
		Int("total_chunks", result.TotalChunks).
		Int("successful_chunks", result.SuccessfulChunks).
		Int("annotations", len(result.Annotations)).
		Int("unresolved", result.UnresolvedCount).
		Int("tokens_used", result.TokensUsed).
		Float64("cost_usd", result.CostUSD).
		Msg("Annotation run complete")

	return result, nil
}

func (s *Service) logTransition(batchID string, from, to runState) runState {
	s.logger.Debug().
		Str("batch_id", batchID).
		Str("from", string(from)).
		Str("to", string(to)).
		Msg("Pipeline state transition")
	return to
}

// usage accumulates per-call token and cost totals. Each call returns its
// own usage; totals are summed after workers join.
type usage struct {
	tokens int
	cost   float64
}

func (u *usage) add(resp *interfaces.GenerateResponse) {
	if resp == nil {
		return
	}
	u.tokens += resp.InputTokens + resp.OutputTokens
	u.cost += resp.CostUSD
}
