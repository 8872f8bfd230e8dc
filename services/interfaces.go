// services/interfaces.go
package services

import (
	"context"

	"github.com/invopop/jsonschema"

	"github.com/saqr-hq/saqr-workflows/internal/models"
)

// GroundedAnswer is the response from one answer-engine completion.
type GroundedAnswer struct {
	Text         string
	Citations    []models.Citation
	InputTokens  int
	OutputTokens int
	Cost         float64
}

// AnswerEngine runs one grounded completion against an LLM answer engine.
type AnswerEngine interface {
	RunQuery(ctx context.Context, query string) (*GroundedAnswer, error)
	GetProviderName() string
	GetModel() string
}

// QueryRunConfig selects one query and how many times to run it.
type QueryRunConfig struct {
	ID    string `json:"id"`
	Times int    `json:"times"`
}

// RunResult is one successful completion within a query's run batch.
type RunResult struct {
	RawAnswer string            `json:"raw_answer"`
	Citations []models.Citation `json:"citations"`
	RunIndex  int               `json:"run_index"`
	Cost      float64           `json:"cost"`
}

// RunFailure records one dropped unit of work. Failures are collected, never
// propagated; a batch report carries them back to the caller.
type RunFailure struct {
	QueryID  string `json:"query_id"`
	RunIndex int    `json:"run_index,omitempty"`
	Stage    string `json:"stage"` // "completion", "path", "write"
	Error    string `json:"error"`
}

// QueryRunResult is the outcome for one query with at least one successful run.
type QueryRunResult struct {
	QueryID      string       `json:"query_id"`
	QueryText    string       `json:"query_text"`
	QueryDocPath string       `json:"query_doc_path"`
	Model        string       `json:"model"`
	Runs         []RunResult  `json:"runs"`
	Failed       []RunFailure `json:"failed,omitempty"`
}

// QueryRunnerService resolves candidate queries and executes their runs.
type QueryRunnerService interface {
	// Run resolves the candidate set (companyUID scopes to one company;
	// empty means the global set, de-duplicated by query id first-seen-wins)
	// and executes each selected query's runs sequentially. Queries whose
	// runs all failed are omitted from the result.
	Run(ctx context.Context, configs []QueryRunConfig, companyUID string) ([]*QueryRunResult, error)
}

// ExtractionResult is the outcome of one competitor-mention extraction.
// Error is set instead of returned: extraction degrades to an empty
// competitor list rather than failing the pipeline.
type ExtractionResult struct {
	Competitors  []models.CompetitorMention
	Model        string
	InputTokens  int
	OutputTokens int
	Cost         float64
	Error        string
}

// ExtractionService extracts competitor mentions from one raw answer.
type ExtractionService interface {
	Analyze(ctx context.Context, rawText, queryText, clientName string) *ExtractionResult
}

// ProcessOptions selects what the pipeline processes. All fields optional:
// zero value means every query everywhere, default run count. TriggeredBy
// names the actor behind the invocation and is recorded on the session.
type ProcessOptions struct {
	CompanyUID   string           `json:"company_uid,omitempty"`
	QueryConfigs []QueryRunConfig `json:"query_configs,omitempty"`
	TriggeredBy  string           `json:"triggered_by,omitempty"`
}

// BatchReport makes per-unit failures inspectable instead of log-only.
type BatchReport struct {
	Succeeded []string     `json:"succeeded"` // answer ids written
	Failed    []RunFailure `json:"failed"`
}

// ProcessResult is the pipeline's overall outcome. Processed counts every
// query result received from the runner, including those whose doc path
// failed validation and were skipped before writes.
type ProcessResult struct {
	Success   bool        `json:"success"`
	Processed int         `json:"processed"`
	Error     string      `json:"error,omitempty"`
	Report    BatchReport `json:"report"`
}

// PipelineService orchestrates runner → extraction → answer persistence.
type PipelineService interface {
	Process(ctx context.Context, opts *ProcessOptions) *ProcessResult
}

// AggregationService derives rankings from persisted answer sets. Pure: no
// writes, recomputable at any time.
type AggregationService interface {
	DeriveRuns(answers []*models.Answer, targetNormalizedID string) []models.DerivedRun
	Summarize(runs []models.DerivedRun) models.QuerySummary
	RankCompetitors(answers []*models.Answer, clientNormalizedID string) []models.CompetitorRank
	RankCitations(answers []*models.Answer) []models.CitationRank
	Aggregate(answers []*models.Answer, clientNormalizedID string) (*models.QuerySummary, *models.Rankings)
}

// AnswerIndexService mirrors persisted answers into the vector and keyword
// indexes. Best-effort: callers log failures and continue.
type AnswerIndexService interface {
	IndexAnswer(ctx context.Context, companyUID string, answer *models.Answer) error
}

type CostService interface {
	CalculateCost(provider, model string, inputTokens, outputTokens int, webSearch bool) float64
}

// GenerateSchema generates a JSON schema for structured outputs
func GenerateSchema[T any]() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	var zero T
	schema := reflector.Reflect(zero)

	// Convert to the format expected by OpenAI
	result := map[string]interface{}{
		"type":       "object",
		"properties": schema.Properties,
		"required":   schema.Required,
	}

	if schema.AdditionalProperties != nil {
		result["additionalProperties"] = false
	}

	return result
}
