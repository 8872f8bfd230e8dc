// services/pipeline_service.go
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/saqr-hq/saqr-workflows/internal/config"
	"github.com/saqr-hq/saqr-workflows/internal/models"
	"github.com/saqr-hq/saqr-workflows/internal/session"
	"github.com/saqr-hq/saqr-workflows/internal/store"
)

// sessionCache hands out one company snapshot per pipeline invocation. Every
// query for the same company works against the same session, even when the
// underlying record changes mid-batch.
type sessionCache struct {
	mu        sync.Mutex
	companies store.CompanyRepository
	userID    string
	sessions  map[string]*session.Session
}

func newSessionCache(companies store.CompanyRepository, userID string) *sessionCache {
	return &sessionCache{
		companies: companies,
		userID:    userID,
		sessions:  make(map[string]*session.Session),
	}
}

// get loads the session on first use. A failed load is cached as nil so one
// broken company lookup is not repeated for every query in the batch.
func (c *sessionCache) get(ctx context.Context, companyUID string) *session.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if sess, ok := c.sessions[companyUID]; ok {
		return sess
	}
	sess, err := session.Load(ctx, c.companies, companyUID, c.userID)
	if err != nil {
		fmt.Printf("[Pipeline] Failed to load session for company %s, extracting without client name: %v\n", companyUID, err)
		sess = nil
	}
	c.sessions[companyUID] = sess
	return sess
}

type pipelineService struct {
	cfg        *config.Config
	runner     QueryRunnerService
	extractor  ExtractionService
	companies  store.CompanyRepository
	answers    store.AnswerRepository
	indexer    AnswerIndexService
	providerID string
}

// NewPipelineService creates the orchestrator: runner results flow through
// extraction into immutable answer records, then best-effort indexing.
func NewPipelineService(
	cfg *config.Config,
	runner QueryRunnerService,
	extractor ExtractionService,
	companies store.CompanyRepository,
	answers store.AnswerRepository,
	indexer AnswerIndexService,
	providerID string,
) PipelineService {
	return &pipelineService{
		cfg:        cfg,
		runner:     runner,
		extractor:  extractor,
		companies:  companies,
		answers:    answers,
		indexer:    indexer,
		providerID: providerID,
	}
}

// Process runs the full pipeline. Queries are handled concurrently under the
// configured in-flight limit; runs within one query stay sequential. Per-unit
// failures land in the report, only a batch-level fetch failure fails the
// whole call.
func (s *pipelineService) Process(ctx context.Context, opts *ProcessOptions) *ProcessResult {
	if opts == nil {
		opts = &ProcessOptions{}
	}

	fmt.Printf("[Pipeline] Starting run (company=%q, configs=%d)\n", opts.CompanyUID, len(opts.QueryConfigs))

	results, err := s.runner.Run(ctx, opts.QueryConfigs, opts.CompanyUID)
	if err != nil {
		return &ProcessResult{
			Success: false,
			Error:   err.Error(),
			Report:  BatchReport{Succeeded: []string{}, Failed: []RunFailure{}},
		}
	}

	var (
		mu     sync.Mutex
		report = BatchReport{Succeeded: []string{}, Failed: []RunFailure{}}
	)
	record := func(answerIDs []string, failures []RunFailure) {
		mu.Lock()
		report.Succeeded = append(report.Succeeded, answerIDs...)
		report.Failed = append(report.Failed, failures...)
		mu.Unlock()
	}

	sessions := newSessionCache(s.companies, opts.TriggeredBy)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Pipeline.MaxConcurrentQueries)

	for _, result := range results {
		result := result
		g.Go(func() error {
			ids, failures := s.processQueryResult(gctx, result, sessions)
			record(ids, failures)
			return nil
		})
	}
	// Workers report per-unit failures through the batch report, never as
	// errors, so the group error is always nil.
	_ = g.Wait()

	fmt.Printf("[Pipeline] Completed: %d queries processed, %d answers written, %d failures\n",
		len(results), len(report.Succeeded), len(report.Failed))

	return &ProcessResult{
		Success:   true,
		Processed: len(results),
		Report:    report,
	}
}

// processQueryResult handles one query's runs sequentially against the
// invocation's session snapshot. Returns the written answer ids and the unit
// failures.
func (s *pipelineService) processQueryResult(ctx context.Context, result *QueryRunResult, sessions *sessionCache) ([]string, []RunFailure) {
	failures := append([]RunFailure(nil), result.Failed...)

	companyUID, _, err := store.ParseQueryDocPath(result.QueryDocPath)
	if err != nil {
		// Legacy records predating the path schema are skipped, not fatal.
		fmt.Printf("[Pipeline] Skipping query %s: invalid doc path %q: %v\n", result.QueryID, result.QueryDocPath, err)
		failures = append(failures, RunFailure{
			QueryID: result.QueryID,
			Stage:   "path",
			Error:   err.Error(),
		})
		return nil, failures
	}

	// Display name is prompt context only; matching stays on normalized ids.
	clientName := ""
	if sess := sessions.get(ctx, companyUID); sess != nil {
		clientName = sess.CompanyName()
	}

	var answerIDs []string
	for _, run := range result.Runs {
		extraction := s.extractor.Analyze(ctx, run.RawAnswer, result.QueryText, clientName)

		answer := &models.Answer{
			CompanyUID:  companyUID,
			QueryID:     result.QueryID,
			QueryText:   result.QueryText,
			RawAnswer:   run.RawAnswer,
			Citations:   run.Citations,
			Competitors: extraction.Competitors,
			CreatedAt:   time.Now().UTC(),
			AIProvider: models.ProviderTag{
				ID:    s.providerID,
				Model: result.Model,
			},
			TotalCost: run.Cost + extraction.Cost,
		}

		if err := s.answers.Create(ctx, answer); err != nil {
			fmt.Printf("[Pipeline] Failed to write answer for query %s run %d: %v\n", result.QueryID, run.RunIndex, err)
			failures = append(failures, RunFailure{
				QueryID:  result.QueryID,
				RunIndex: run.RunIndex,
				Stage:    "write",
				Error:    err.Error(),
			})
			continue
		}
		answerIDs = append(answerIDs, answer.ID)

		if s.indexer != nil {
			if err := s.indexer.IndexAnswer(ctx, companyUID, answer); err != nil {
				fmt.Printf("[Pipeline] Indexing answer %s failed (non-fatal): %v\n", answer.ID, err)
			}
		}
	}

	return answerIDs, failures
}
