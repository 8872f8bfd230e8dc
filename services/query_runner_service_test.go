// services/query_runner_service_test.go
package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/saqr-hq/saqr-workflows/internal/config"
	"github.com/saqr-hq/saqr-workflows/internal/models"
	"github.com/saqr-hq/saqr-workflows/internal/store"
	"github.com/saqr-hq/saqr-workflows/services"
	"github.com/saqr-hq/saqr-workflows/services/testutil"
)

func testPipelineConfig() *config.Config {
	return &config.Config{
		Pipeline: config.PipelineConfig{
			DefaultRunCount:      6,
			MaxRunCount:          6,
			MaxConcurrentQueries: 4,
		},
	}
}

func storedQuery(companyUID, id, text string) *store.StoredQuery {
	return &store.StoredQuery{
		Query:   &models.Query{ID: id, CompanyUID: companyUID, Text: text},
		DocPath: store.QueryDocPath(companyUID, id),
	}
}

func TestRunDefaultPlan(t *testing.T) {
	queries := &testutil.MockQueryRepo{
		ListByCompanyFunc: func(ctx context.Context, companyUID string) ([]*store.StoredQuery, error) {
			return []*store.StoredQuery{storedQuery(companyUID, "q1", "best platform")}, nil
		},
	}

	calls := 0
	engine := &testutil.MockAnswerEngine{
		Model: "gemini-2.5-flash",
		RunQueryFunc: func(ctx context.Context, query string) (*services.GroundedAnswer, error) {
			calls++
			return &services.GroundedAnswer{Text: fmt.Sprintf("answer %d", calls)}, nil
		},
	}

	runner := services.NewQueryRunnerService(testPipelineConfig(), queries, engine)
	results, err := runner.Run(context.Background(), nil, "company-1")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if calls != 6 {
		t.Errorf("engine called %d times, want 6 (default run count)", calls)
	}
	if len(results[0].Runs) != 6 {
		t.Errorf("got %d runs, want 6", len(results[0].Runs))
	}
	for i, run := range results[0].Runs {
		if run.RunIndex != i+1 {
			t.Errorf("run %d has index %d, want %d", i, run.RunIndex, i+1)
		}
	}
	if results[0].Model != "gemini-2.5-flash" {
		t.Errorf("result model = %q", results[0].Model)
	}
}

func TestRunConfigsBoundAndUnknownIDs(t *testing.T) {
	queries := &testutil.MockQueryRepo{
		ListByCompanyFunc: func(ctx context.Context, companyUID string) ([]*store.StoredQuery, error) {
			return []*store.StoredQuery{
				storedQuery(companyUID, "q1", "first"),
				storedQuery(companyUID, "q2", "second"),
			}, nil
		},
	}

	callsPerQuery := map[string]int{}
	engine := &testutil.MockAnswerEngine{
		RunQueryFunc: func(ctx context.Context, query string) (*services.GroundedAnswer, error) {
			callsPerQuery[query]++
			return &services.GroundedAnswer{Text: "ok"}, nil
		},
	}

	runner := services.NewQueryRunnerService(testPipelineConfig(), queries, engine)
	results, err := runner.Run(context.Background(), []services.QueryRunConfig{
		{ID: "q1", Times: 2},
		{ID: "q2", Times: 99}, // over the cap, bounded to 6
		{ID: "missing", Times: 3},
	}, "company-1")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2 (unknown id ignored)", len(results))
	}
	if callsPerQuery["first"] != 2 {
		t.Errorf("q1 ran %d times, want 2", callsPerQuery["first"])
	}
	if callsPerQuery["second"] != 6 {
		t.Errorf("q2 ran %d times, want 6 (capped)", callsPerQuery["second"])
	}
}

func TestRunGlobalDedupFirstSeenWins(t *testing.T) {
	queries := &testutil.MockQueryRepo{
		ListAllFunc: func(ctx context.Context) ([]*store.StoredQuery, error) {
			return []*store.StoredQuery{
				storedQuery("company-a", "shared", "from company a"),
				storedQuery("company-b", "shared", "from company b"),
			}, nil
		},
	}

	var asked []string
	engine := &testutil.MockAnswerEngine{
		RunQueryFunc: func(ctx context.Context, query string) (*services.GroundedAnswer, error) {
			asked = append(asked, query)
			return &services.GroundedAnswer{Text: "ok"}, nil
		},
	}

	runner := services.NewQueryRunnerService(testPipelineConfig(), queries, engine)
	results, err := runner.Run(context.Background(), []services.QueryRunConfig{{ID: "shared", Times: 1}}, "")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].QueryDocPath != store.QueryDocPath("company-a", "shared") {
		t.Errorf("kept doc path %q, want first occurrence (company-a)", results[0].QueryDocPath)
	}
	if len(asked) != 1 || asked[0] != "from company a" {
		t.Errorf("asked %v, want the first-seen query text exactly once", asked)
	}
}

func TestRunFailureIsolation(t *testing.T) {
	queries := &testutil.MockQueryRepo{
		ListByCompanyFunc: func(ctx context.Context, companyUID string) ([]*store.StoredQuery, error) {
			return []*store.StoredQuery{storedQuery(companyUID, "q1", "flaky query")}, nil
		},
	}

	call := 0
	engine := &testutil.MockAnswerEngine{
		RunQueryFunc: func(ctx context.Context, query string) (*services.GroundedAnswer, error) {
			call++
			if call == 2 {
				return nil, errors.New("provider timeout")
			}
			return &services.GroundedAnswer{Text: fmt.Sprintf("answer %d", call)}, nil
		},
	}

	runner := services.NewQueryRunnerService(testPipelineConfig(), queries, engine)
	results, err := runner.Run(context.Background(), []services.QueryRunConfig{{ID: "q1", Times: 3}}, "company-1")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	result := results[0]
	if len(result.Runs) != 2 {
		t.Fatalf("got %d successful runs, want 2", len(result.Runs))
	}
	if result.Runs[0].RunIndex != 1 || result.Runs[1].RunIndex != 3 {
		t.Errorf("run indexes = %d,%d; want 1,3 (failed run omitted)", result.Runs[0].RunIndex, result.Runs[1].RunIndex)
	}
	if len(result.Failed) != 1 || result.Failed[0].RunIndex != 2 || result.Failed[0].Stage != "completion" {
		t.Errorf("unexpected failure record: %+v", result.Failed)
	}
}

func TestRunZeroSuccessQueryOmitted(t *testing.T) {
	queries := &testutil.MockQueryRepo{
		ListByCompanyFunc: func(ctx context.Context, companyUID string) ([]*store.StoredQuery, error) {
			return []*store.StoredQuery{
				storedQuery(companyUID, "dead", "always fails"),
				storedQuery(companyUID, "alive", "always works"),
			}, nil
		},
	}

	engine := &testutil.MockAnswerEngine{
		RunQueryFunc: func(ctx context.Context, query string) (*services.GroundedAnswer, error) {
			if query == "always fails" {
				return nil, errors.New("provider down")
			}
			return &services.GroundedAnswer{Text: "ok"}, nil
		},
	}

	runner := services.NewQueryRunnerService(testPipelineConfig(), queries, engine)
	results, err := runner.Run(context.Background(), []services.QueryRunConfig{
		{ID: "dead", Times: 2},
		{ID: "alive", Times: 1},
	}, "company-1")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("got %d results, want 1 (zero-success query omitted)", len(results))
	}
	if results[0].QueryID != "alive" {
		t.Errorf("kept query %q, want %q", results[0].QueryID, "alive")
	}
}

func TestRunFetchFailurePropagates(t *testing.T) {
	queries := &testutil.MockQueryRepo{
		ListByCompanyFunc: func(ctx context.Context, companyUID string) ([]*store.StoredQuery, error) {
			return nil, errors.New("db down")
		},
	}
	engine := &testutil.MockAnswerEngine{
		RunQueryFunc: func(ctx context.Context, query string) (*services.GroundedAnswer, error) {
			t.Fatal("engine must not be called when fetch fails")
			return nil, nil
		},
	}

	runner := services.NewQueryRunnerService(testPipelineConfig(), queries, engine)
	if _, err := runner.Run(context.Background(), nil, "company-1"); err == nil {
		t.Fatal("expected fetch error to propagate")
	}
}
