// workflows/query_processor.go
package workflows

import (
	"context"
	"fmt"

	"github.com/inngest/inngestgo"
	"github.com/inngest/inngestgo/step"

	"github.com/saqr-hq/saqr-workflows/services"
)

// QueryProcessEvent triggers the answer-analysis pipeline. Both fields are
// optional: empty means every query everywhere with the default run count.
type QueryProcessEvent struct {
	CompanyUID   string                    `json:"company_uid,omitempty"`
	QueryConfigs []services.QueryRunConfig `json:"query_configs,omitempty"`
	TriggeredBy  string                    `json:"triggered_by,omitempty"`
}

type QueryProcessor struct {
	pipeline services.PipelineService
	client   inngestgo.Client
}

func NewQueryProcessor(pipeline services.PipelineService) *QueryProcessor {
	return &QueryProcessor{
		pipeline: pipeline,
	}
}

func (p *QueryProcessor) SetClient(client inngestgo.Client) {
	p.client = client
}

// ProcessQueries runs the pipeline for one event. Retries stay at 0: answers
// have no idempotency key, so a retried invocation would write duplicates.
func (p *QueryProcessor) ProcessQueries() inngestgo.ServableFunction {
	fn, err := inngestgo.CreateFunction(
		p.client,
		inngestgo.FunctionOpts{
			ID:      "process-queries",
			Name:    "Process Queries - Answer Analysis Pipeline",
			Retries: inngestgo.IntPtr(0),
		},
		inngestgo.EventTrigger("queries.process", nil),
		func(ctx context.Context, input inngestgo.Input[QueryProcessEvent]) (any, error) {
			opts := &services.ProcessOptions{
				CompanyUID:   input.Event.Data.CompanyUID,
				QueryConfigs: input.Event.Data.QueryConfigs,
				TriggeredBy:  input.Event.Data.TriggeredBy,
			}
			fmt.Printf("[ProcessQueries] Triggered by %q (company=%q)\n", input.Event.Data.TriggeredBy, opts.CompanyUID)

			result, err := step.Run(ctx, "run-pipeline", func(ctx context.Context) (*services.ProcessResult, error) {
				return p.pipeline.Process(ctx, opts), nil
			})
			if err != nil {
				return nil, fmt.Errorf("step 'run-pipeline' failed: %w", err)
			}

			return map[string]interface{}{
				"success":   result.Success,
				"processed": result.Processed,
				"error":     result.Error,
				"succeeded": len(result.Report.Succeeded),
				"failed":    len(result.Report.Failed),
			}, nil
		},
	)

	if err != nil {
		fmt.Printf("Failed to create process-queries function: %v\n", err)
	}

	return fn
}

// DailyQueryProcessor fires the global run once a day. It only sends the
// event; the bounded pipeline does the work.
func (p *QueryProcessor) DailyQueryProcessor() inngestgo.ServableFunction {
	fn, err := inngestgo.CreateFunction(
		p.client,
		inngestgo.FunctionOpts{
			ID:   "daily-query-processor",
			Name: "Daily Query Processor - Global Visibility Refresh",
		},
		inngestgo.CronTrigger("0 3 * * *"), // Every day at 3 AM UTC
		func(ctx context.Context, input inngestgo.Input[any]) (any, error) {
			sendResult, err := step.Run(ctx, "trigger-global-run", func(ctx context.Context) (interface{}, error) {
				evt := inngestgo.Event{
					Name: "queries.process",
					Data: map[string]interface{}{
						"triggered_by": "daily_scheduler",
					},
				}
				return p.client.Send(ctx, evt)
			})
			if err != nil {
				return nil, fmt.Errorf("step 'trigger-global-run' failed: %w", err)
			}

			return map[string]interface{}{
				"message":  "Triggered global query processing",
				"event_id": fmt.Sprintf("%v", sendResult),
			}, nil
		},
	)

	if err != nil {
		fmt.Printf("Failed to create daily query processor function: %v\n", err)
	}

	return fn
}
