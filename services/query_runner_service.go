// services/query_runner_service.go
package services

import (
	"context"
	"fmt"

	"github.com/saqr-hq/saqr-workflows/internal/config"
	"github.com/saqr-hq/saqr-workflows/internal/store"
)

type queryRunnerService struct {
	cfg     *config.Config
	queries store.QueryRepository
	engine  AnswerEngine
}

// NewQueryRunnerService creates the runner that executes grounded completions
// for stored queries.
func NewQueryRunnerService(cfg *config.Config, queries store.QueryRepository, engine AnswerEngine) QueryRunnerService {
	return &queryRunnerService{
		cfg:     cfg,
		queries: queries,
		engine:  engine,
	}
}

// Run resolves the candidate queries and executes each selected query's runs.
// Runs within one query are strictly sequential to keep request pressure on
// the answer engine bounded. Queries whose runs all failed are omitted from
// the result set.
func (s *queryRunnerService) Run(ctx context.Context, configs []QueryRunConfig, companyUID string) ([]*QueryRunResult, error) {
	candidates, err := s.resolveCandidates(ctx, companyUID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch candidate queries: %w", err)
	}

	plan := s.resolvePlan(candidates, configs)
	fmt.Printf("[QueryRunner] Executing %d queries (candidates: %d)\n", len(plan), len(candidates))

	var results []*QueryRunResult
	for _, job := range plan {
		result := s.runQuery(ctx, job)
		if len(result.Runs) == 0 {
			fmt.Printf("[QueryRunner] Query %s had zero successful runs, omitting\n", job.query.Query.ID)
			continue
		}
		results = append(results, result)
	}

	return results, nil
}

type runJob struct {
	query *store.StoredQuery
	times int
}

// resolveCandidates returns the company's queries, or the global set
// de-duplicated by query id. When the same id appears under multiple
// companies, the first occurrence wins and later ones are silently dropped.
func (s *queryRunnerService) resolveCandidates(ctx context.Context, companyUID string) ([]*store.StoredQuery, error) {
	if companyUID != "" {
		return s.queries.ListByCompany(ctx, companyUID)
	}

	all, err := s.queries.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var deduped []*store.StoredQuery
	for _, sq := range all {
		if seen[sq.Query.ID] {
			fmt.Printf("[QueryRunner] Duplicate query id %s under %s, keeping first occurrence\n", sq.Query.ID, sq.Query.CompanyUID)
			continue
		}
		seen[sq.Query.ID] = true
		deduped = append(deduped, sq)
	}
	return deduped, nil
}

// resolvePlan maps run configs onto the candidate set. Configs referencing
// unknown ids are ignored; without configs every candidate runs the default
// count. Run counts are bounded by MaxRunCount.
func (s *queryRunnerService) resolvePlan(candidates []*store.StoredQuery, configs []QueryRunConfig) []runJob {
	byID := make(map[string]*store.StoredQuery, len(candidates))
	for _, sq := range candidates {
		byID[sq.Query.ID] = sq
	}

	if len(configs) == 0 {
		plan := make([]runJob, 0, len(candidates))
		for _, sq := range candidates {
			plan = append(plan, runJob{query: sq, times: s.cfg.Pipeline.DefaultRunCount})
		}
		return plan
	}

	var plan []runJob
	for _, cfg := range configs {
		sq, ok := byID[cfg.ID]
		if !ok {
			fmt.Printf("[QueryRunner] Config references unknown query id %s, ignoring\n", cfg.ID)
			continue
		}
		plan = append(plan, runJob{query: sq, times: s.boundTimes(cfg.Times)})
	}
	return plan
}

func (s *queryRunnerService) boundTimes(times int) int {
	if times < 1 {
		return s.cfg.Pipeline.DefaultRunCount
	}
	if times > s.cfg.Pipeline.MaxRunCount {
		return s.cfg.Pipeline.MaxRunCount
	}
	return times
}

func (s *queryRunnerService) runQuery(ctx context.Context, job runJob) *QueryRunResult {
	result := &QueryRunResult{
		QueryID:      job.query.Query.ID,
		QueryText:    job.query.Query.Text,
		QueryDocPath: job.query.DocPath,
		Model:        s.engine.GetModel(),
	}

	for runIndex := 1; runIndex <= job.times; runIndex++ {
		answer, err := s.engine.RunQuery(ctx, job.query.Query.Text)
		if err != nil {
			fmt.Printf("[QueryRunner] Run %d/%d failed for query %s: %v\n", runIndex, job.times, result.QueryID, err)
			result.Failed = append(result.Failed, RunFailure{
				QueryID:  result.QueryID,
				RunIndex: runIndex,
				Stage:    "completion",
				Error:    err.Error(),
			})
			continue
		}

		// Citations pass through as the engine delivered them; deduplication
		// happens downstream in aggregation.
		result.Runs = append(result.Runs, RunResult{
			RawAnswer: answer.Text,
			Citations: answer.Citations,
			RunIndex:  runIndex,
			Cost:      answer.Cost,
		})
	}

	return result
}
